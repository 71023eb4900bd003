package domain

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// QuestionType represents the type of a survey question.
type QuestionType string

const (
	QuestionTypeLikert         QuestionType = "likert"
	QuestionTypeMultipleChoice QuestionType = "multiple_choice"
	QuestionTypeMultiSelect    QuestionType = "multi_select"
	QuestionTypeYesNo          QuestionType = "yes_no"
	QuestionTypeOpenEnded      QuestionType = "open_ended"
	QuestionTypeRating         QuestionType = "rating"
)

// ValidQuestionType reports whether t is one of the closed set of types.
func ValidQuestionType(t QuestionType) bool {
	switch t {
	case QuestionTypeLikert, QuestionTypeMultipleChoice, QuestionTypeMultiSelect,
		QuestionTypeYesNo, QuestionTypeOpenEnded, QuestionTypeRating:
		return true
	}
	return false
}

// VariableRole represents the role of a variable in the measurement model.
type VariableRole string

const (
	RoleDependent VariableRole = "dependent"
	RoleDriver    VariableRole = "driver"
	RoleControl   VariableRole = "control"
)

// BranchOperator represents a skip-logic comparison operator.
type BranchOperator string

const (
	OpEquals    BranchOperator = "equals"
	OpNotEquals BranchOperator = "not_equals"
	OpIncludes  BranchOperator = "includes"
	OpGTE       BranchOperator = "gte"
	OpLTE       BranchOperator = "lte"
)

// ConditionValue holds a branch condition value, which the generator may
// produce as either a single string or a list of strings.
type ConditionValue []string

// UnmarshalJSON accepts either a bare string or an array of strings.
func (v *ConditionValue) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err == nil {
		*v = ConditionValue{s}
		return nil
	}
	var list []string
	if err := json.Unmarshal(data, &list); err == nil {
		*v = ConditionValue(list)
		return nil
	}
	return fmt.Errorf("condition value must be a string or array of strings")
}

// MarshalJSON emits a bare string for single values, matching the wire
// format the question generator produces.
func (v ConditionValue) MarshalJSON() ([]byte, error) {
	if len(v) == 1 {
		return json.Marshal(v[0])
	}
	return json.Marshal([]string(v))
}

// BranchCondition describes when a branched question becomes visible.
type BranchCondition struct {
	QuestionID string         `json:"questionId"`
	Operator   BranchOperator `json:"operator"`
	Value      ConditionValue `json:"value"`
}

// Question represents one survey item.
type Question struct {
	ID              string           `json:"id"`
	Text            string           `json:"text"`
	Type            QuestionType     `json:"type"`
	Variable        string           `json:"variable"`
	VariableRole    VariableRole     `json:"variableRole"`
	Options         []string         `json:"options"`
	Required        bool             `json:"required"`
	BranchFrom      *string          `json:"branchFrom"`
	BranchCondition *BranchCondition `json:"branchCondition"`
}

// VariableModel holds the measurement model: the outcome variables, the
// factors influencing them, and the demographic segmentation variables.
type VariableModel struct {
	Dependent []string `json:"dependent"`
	Drivers   []string `json:"drivers"`
	Controls  []string `json:"controls"`
}

// SurveyConfig holds the admin-authored survey description.
type SurveyConfig struct {
	Title        string   `json:"title"`
	Goal         string   `json:"goal"`
	Population   string   `json:"population"`
	Confidence   string   `json:"confidence"`
	Margin       string   `json:"margin"`
	Language     []string `json:"language"`
	Tone         string   `json:"tone"`
	MaxQuestions int      `json:"maxQuestions"`
}

// Topic returns the text used as the survey topic in evaluation prompts.
func (c SurveyConfig) Topic() string {
	if c.Title != "" {
		return c.Title
	}
	return c.Goal
}

// LLMScores holds the rubric scores assigned by the judge model,
// each an integer in [1,5].
type LLMScores struct {
	Clarity       int `json:"clarity"`
	Neutrality    int `json:"neutrality"`
	Answerability int `json:"answerability"`
	Relevance     int `json:"relevance"`
}

// QuestionIssue ties a cross-question finding to the question it concerns.
type QuestionIssue struct {
	Question string `json:"question"`
	Issue    string `json:"issue"`
}

// EvaluationRecord is the per-question evaluation produced by one
// evaluation pass. Records are created fresh on every pass and replaced
// wholesale on regeneration, never mutated in place.
type EvaluationRecord struct {
	Question               string         `json:"question"`
	Variable               string         `json:"variable"`
	VariableRole           VariableRole   `json:"variableRole"`
	VariableRelevance      float64        `json:"variable_relevance"`
	Readability            float64        `json:"readability"`
	MaxDuplicateSimilarity float64        `json:"max_duplicate_similarity"`
	RuleViolations         []string       `json:"rule_violations"`
	LLMScores              LLMScores      `json:"llm_scores"`
	ResponseOptionIssues   []string       `json:"response_option_issues"`
	SkipLogicIssue         *QuestionIssue `json:"skip_logic_issue"`
	ResponseScaleIssue     *QuestionIssue `json:"response_scale_issue"`
}

// GenerationResult is the terminal output of the generate/evaluate/
// regenerate loop.
type GenerationResult struct {
	Questions    []Question         `json:"questions"`
	Evaluations  []EvaluationRecord `json:"evaluations"`
	Regenerated  bool               `json:"regenerated"`
	AttemptsMade int                `json:"attemptsMade"`
}

// Survey is a persisted authoring draft.
type Survey struct {
	ID            uuid.UUID     `json:"id"`
	Config        SurveyConfig  `json:"config"`
	VariableModel VariableModel `json:"variable_model"`
	CreatedAt     time.Time     `json:"created_at"`
	UpdatedAt     time.Time     `json:"updated_at"`
}

// QuestionSetSnapshot is a persisted generation result for a survey.
// Snapshots are immutable; each generation run appends a new one.
type QuestionSetSnapshot struct {
	ID           uuid.UUID          `json:"id"`
	SurveyID     uuid.UUID          `json:"survey_id"`
	Questions    []Question         `json:"questions"`
	Evaluations  []EvaluationRecord `json:"evaluations"`
	Regenerated  bool               `json:"regenerated"`
	AttemptsMade int                `json:"attempts_made"`
	CreatedAt    time.Time          `json:"created_at"`
}
