package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/surveyforge/backend/internal/domain"
)

// PackContents holds all files for the survey pack.
type PackContents struct {
	QuestionsJSON   []byte
	QuestionnaireMD []byte
	VariablesMD     []byte
	EvaluationMD    []byte
}

// Input holds input for generating an export.
type Input struct {
	Survey   *domain.Survey
	Snapshot *domain.QuestionSetSnapshot
}

// GeneratePack creates all files for the survey pack.
func GeneratePack(input Input) (*PackContents, error) {
	contents := &PackContents{}

	questionsJSON, err := json.MarshalIndent(struct {
		Questions []domain.Question `json:"questions"`
	}{input.Snapshot.Questions}, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("marshal questions: %w", err)
	}
	contents.QuestionsJSON = questionsJSON

	contents.QuestionnaireMD = renderQuestionnaireMarkdown(input.Survey, input.Snapshot)
	contents.VariablesMD = renderVariablesMarkdown(input.Survey)
	contents.EvaluationMD = renderEvaluationMarkdown(input.Snapshot)

	return contents, nil
}

// WriteZip writes the pack contents to a zip archive.
func WriteZip(contents *PackContents, w io.Writer) error {
	zw := zip.NewWriter(w)
	defer zw.Close()

	files := []struct {
		name string
		data []byte
	}{
		{"QUESTIONS.json", contents.QuestionsJSON},
		{"QUESTIONNAIRE.md", contents.QuestionnaireMD},
		{"VARIABLES.md", contents.VariablesMD},
		{"EVALUATION.md", contents.EvaluationMD},
	}

	for _, f := range files {
		fw, err := zw.Create(f.name)
		if err != nil {
			return fmt.Errorf("create %s: %w", f.name, err)
		}
		if _, err := fw.Write(f.data); err != nil {
			return fmt.Errorf("write %s: %w", f.name, err)
		}
	}

	return nil
}

func renderQuestionnaireMarkdown(survey *domain.Survey, snapshot *domain.QuestionSetSnapshot) []byte {
	var buf bytes.Buffer

	title := survey.Config.Title
	if title == "" {
		title = "Survey"
	}
	buf.WriteString(fmt.Sprintf("# %s\n\n", title))
	if survey.Config.Goal != "" {
		buf.WriteString(fmt.Sprintf("Goal: %s\n\n", survey.Config.Goal))
	}
	if survey.Config.Population != "" {
		buf.WriteString(fmt.Sprintf("Target population: %s\n\n", survey.Config.Population))
	}
	buf.WriteString(fmt.Sprintf("Generated: %s\n\n", time.Now().UTC().Format(time.RFC3339)))
	buf.WriteString("---\n\n")

	for i, q := range snapshot.Questions {
		buf.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, q.Text))
		buf.WriteString(fmt.Sprintf("- Type: %s\n", q.Type))
		if q.Variable != "" {
			buf.WriteString(fmt.Sprintf("- Measures: %s (%s)\n", q.Variable, q.VariableRole))
		}
		buf.WriteString(fmt.Sprintf("- Required: %v\n", q.Required))
		if q.BranchFrom != nil && q.BranchCondition != nil {
			buf.WriteString(fmt.Sprintf("- Shown when %s %s %s\n",
				*q.BranchFrom, q.BranchCondition.Operator,
				strings.Join(q.BranchCondition.Value, " or ")))
		}
		if len(q.Options) > 0 {
			buf.WriteString("\nOptions:\n\n")
			for _, o := range q.Options {
				buf.WriteString(fmt.Sprintf("- [ ] %s\n", o))
			}
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

func renderVariablesMarkdown(survey *domain.Survey) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Variable Model\n\n")
	buf.WriteString("The measurement model behind the questionnaire.\n\n")
	buf.WriteString("---\n\n")

	sections := []struct {
		title string
		desc  string
		items []string
	}{
		{"Dependent Variables", "The outcomes the survey measures.", survey.VariableModel.Dependent},
		{"Drivers", "Factors expected to influence the outcomes.", survey.VariableModel.Drivers},
		{"Controls", "Demographic and context variables for segmentation.", survey.VariableModel.Controls},
	}

	for _, s := range sections {
		buf.WriteString(fmt.Sprintf("## %s\n\n%s\n\n", s.title, s.desc))
		for _, v := range s.items {
			buf.WriteString(fmt.Sprintf("- %s\n", v))
		}
		buf.WriteString("\n")
	}

	return buf.Bytes()
}

func renderEvaluationMarkdown(snapshot *domain.QuestionSetSnapshot) []byte {
	var buf bytes.Buffer

	buf.WriteString("# Quality Evaluation Report\n\n")
	buf.WriteString(fmt.Sprintf("- Snapshot: %s\n", snapshot.ID))
	buf.WriteString(fmt.Sprintf("- Created: %s\n", snapshot.CreatedAt.Format(time.RFC3339)))
	buf.WriteString(fmt.Sprintf("- Generation attempts: %d\n", snapshot.AttemptsMade))
	buf.WriteString(fmt.Sprintf("- Regenerated: %v\n\n", snapshot.Regenerated))
	buf.WriteString("---\n\n")

	for i, e := range snapshot.Evaluations {
		buf.WriteString(fmt.Sprintf("## %d. %s\n\n", i+1, e.Question))
		buf.WriteString(fmt.Sprintf("- Readability (Flesch): %.2f\n", e.Readability))
		if e.Variable != "" {
			buf.WriteString(fmt.Sprintf("- Variable relevance: %.4f (%s)\n", e.VariableRelevance, e.Variable))
		}
		buf.WriteString(fmt.Sprintf("- Max similarity to another question: %.4f\n", e.MaxDuplicateSimilarity))
		buf.WriteString(fmt.Sprintf("- Judge scores: clarity %d/5, neutrality %d/5, answerability %d/5, relevance %d/5\n",
			e.LLMScores.Clarity, e.LLMScores.Neutrality, e.LLMScores.Answerability, e.LLMScores.Relevance))
		if len(e.RuleViolations) > 0 {
			buf.WriteString(fmt.Sprintf("- Rule violations: %s\n", strings.Join(e.RuleViolations, ", ")))
		}
		if len(e.ResponseOptionIssues) > 0 {
			buf.WriteString(fmt.Sprintf("- Response option issues: %s\n", strings.Join(e.ResponseOptionIssues, ", ")))
		}
		if e.SkipLogicIssue != nil {
			buf.WriteString(fmt.Sprintf("- Skip logic: %s\n", e.SkipLogicIssue.Issue))
		}
		if e.ResponseScaleIssue != nil {
			buf.WriteString(fmt.Sprintf("- Response scale: %s\n", e.ResponseScaleIssue.Issue))
		}
		buf.WriteString("\n")
	}

	if len(snapshot.Evaluations) == 0 {
		buf.WriteString("No evaluation records for this snapshot.\n")
	}

	return buf.Bytes()
}
