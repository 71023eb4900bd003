package generator

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/surveyforge/backend/internal/domain"
)

//go:embed fallback.yaml
var fallbackYAML []byte

type fallbackBranchCondition struct {
	QuestionID string   `yaml:"question_id"`
	Operator   string   `yaml:"operator"`
	Value      []string `yaml:"value"`
}

type fallbackQuestion struct {
	ID              string                   `yaml:"id"`
	Text            string                   `yaml:"text"`
	Type            string                   `yaml:"type"`
	Variable        string                   `yaml:"variable"`
	VariableRole    string                   `yaml:"variable_role"`
	Options         []string                 `yaml:"options"`
	Required        bool                     `yaml:"required"`
	BranchFrom      string                   `yaml:"branch_from"`
	BranchCondition *fallbackBranchCondition `yaml:"branch_condition"`
}

type fallbackConfig struct {
	Title        string   `yaml:"title"`
	Goal         string   `yaml:"goal"`
	Population   string   `yaml:"population"`
	Confidence   string   `yaml:"confidence"`
	Margin       string   `yaml:"margin"`
	Language     []string `yaml:"language"`
	Tone         string   `yaml:"tone"`
	MaxQuestions int      `yaml:"max_questions"`
}

type fallbackFile struct {
	SurveyConfig  fallbackConfig       `yaml:"survey_config"`
	VariableModel domain.VariableModel `yaml:"variable_model"`
	Questions     []fallbackQuestion   `yaml:"questions"`
}

var (
	fallbackOnce   sync.Once
	fallbackParsed fallbackFile
)

func loadFallback() fallbackFile {
	fallbackOnce.Do(func() {
		if err := yaml.Unmarshal(fallbackYAML, &fallbackParsed); err != nil {
			panic(fmt.Sprintf("parse embedded fallback data: %v", err))
		}
	})
	return fallbackParsed
}

// FallbackQuestions returns a copy of the embedded demo question set.
func FallbackQuestions() []domain.Question {
	src := loadFallback().Questions
	questions := make([]domain.Question, len(src))
	for i, fq := range src {
		q := domain.Question{
			ID:           fq.ID,
			Text:         fq.Text,
			Type:         domain.QuestionType(fq.Type),
			Variable:     fq.Variable,
			VariableRole: domain.VariableRole(fq.VariableRole),
			Options:      append([]string{}, fq.Options...),
			Required:     fq.Required,
		}
		if fq.BranchFrom != "" {
			from := fq.BranchFrom
			q.BranchFrom = &from
		}
		if fq.BranchCondition != nil {
			q.BranchCondition = &domain.BranchCondition{
				QuestionID: fq.BranchCondition.QuestionID,
				Operator:   domain.BranchOperator(fq.BranchCondition.Operator),
				Value:      domain.ConditionValue(fq.BranchCondition.Value),
			}
		}
		questions[i] = q
	}
	return questions
}

// FallbackVariableModel returns a copy of the embedded demo variable model.
func FallbackVariableModel() domain.VariableModel {
	src := loadFallback().VariableModel
	return domain.VariableModel{
		Dependent: append([]string{}, src.Dependent...),
		Drivers:   append([]string{}, src.Drivers...),
		Controls:  append([]string{}, src.Controls...),
	}
}

// FallbackSurveyConfig returns a copy of the embedded example survey
// configuration, served when config extraction has no backend.
func FallbackSurveyConfig() domain.SurveyConfig {
	src := loadFallback().SurveyConfig
	return domain.SurveyConfig{
		Title:        src.Title,
		Goal:         src.Goal,
		Population:   src.Population,
		Confidence:   src.Confidence,
		Margin:       src.Margin,
		Language:     append([]string{}, src.Language...),
		Tone:         src.Tone,
		MaxQuestions: src.MaxQuestions,
	}
}
