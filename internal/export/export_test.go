package export

import (
	"archive/zip"
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/surveyforge/backend/internal/domain"
)

func testInput() Input {
	branchFrom := "q1"
	survey := &domain.Survey{
		ID: uuid.New(),
		Config: domain.SurveyConfig{
			Title:      "Healthcare Satisfaction",
			Goal:       "Identify drivers of dissatisfaction",
			Population: "Residents (18+)",
		},
		VariableModel: domain.VariableModel{
			Dependent: []string{"Overall satisfaction"},
			Drivers:   []string{"Waiting time", "Staff professionalism"},
			Controls:  []string{"Age group"},
		},
	}
	snapshot := &domain.QuestionSetSnapshot{
		ID:       uuid.New(),
		SurveyID: survey.ID,
		Questions: []domain.Question{
			{ID: "q1", Text: "Were costs clearly communicated?", Type: domain.QuestionTypeYesNo,
				Variable: "Cost clarity", VariableRole: domain.RoleDriver,
				Options: []string{"Yes", "No"}, Required: true},
			{ID: "q2", Text: "What was unclear?", Type: domain.QuestionTypeOpenEnded,
				Variable: "Cost clarity", VariableRole: domain.RoleDriver,
				Options: []string{}, BranchFrom: &branchFrom,
				BranchCondition: &domain.BranchCondition{
					QuestionID: "q1", Operator: domain.OpEquals,
					Value: domain.ConditionValue{"No"},
				}},
		},
		Evaluations: []domain.EvaluationRecord{
			{Question: "Were costs clearly communicated?", Variable: "Cost clarity",
				VariableRelevance: 0.8123, Readability: 74.5, MaxDuplicateSimilarity: 0.12,
				RuleViolations: []string{},
				LLMScores:      domain.LLMScores{Clarity: 5, Neutrality: 5, Answerability: 4, Relevance: 5},
			},
			{Question: "What was unclear?", Variable: "Cost clarity",
				VariableRelevance: 0.7, Readability: 100, MaxDuplicateSimilarity: 0.12,
				RuleViolations: []string{"vague_language"},
				LLMScores:      domain.LLMScores{Clarity: 4, Neutrality: 4, Answerability: 4, Relevance: 4},
			},
		},
		Regenerated:  true,
		AttemptsMade: 2,
		CreatedAt:    time.Now().UTC(),
	}
	return Input{Survey: survey, Snapshot: snapshot}
}

func TestGeneratePack(t *testing.T) {
	contents, err := GeneratePack(testInput())
	if err != nil {
		t.Fatalf("GeneratePack failed: %v", err)
	}

	t.Run("questions json round trips", func(t *testing.T) {
		var doc struct {
			Questions []domain.Question `json:"questions"`
		}
		if err := json.Unmarshal(contents.QuestionsJSON, &doc); err != nil {
			t.Fatalf("QUESTIONS.json not valid JSON: %v", err)
		}
		if len(doc.Questions) != 2 {
			t.Errorf("expected 2 questions, got %d", len(doc.Questions))
		}
		if doc.Questions[1].BranchCondition == nil {
			t.Error("branch condition lost in export")
		}
	})

	t.Run("questionnaire markdown", func(t *testing.T) {
		md := string(contents.QuestionnaireMD)
		for _, want := range []string{
			"# Healthcare Satisfaction",
			"Goal: Identify drivers of dissatisfaction",
			"## 1. Were costs clearly communicated?",
			"- [ ] Yes",
			"Shown when q1 equals No",
		} {
			if !strings.Contains(md, want) {
				t.Errorf("QUESTIONNAIRE.md missing %q", want)
			}
		}
	})

	t.Run("variables markdown", func(t *testing.T) {
		md := string(contents.VariablesMD)
		for _, want := range []string{
			"## Dependent Variables",
			"- Overall satisfaction",
			"## Drivers",
			"- Staff professionalism",
			"## Controls",
			"- Age group",
		} {
			if !strings.Contains(md, want) {
				t.Errorf("VARIABLES.md missing %q", want)
			}
		}
	})

	t.Run("evaluation markdown", func(t *testing.T) {
		md := string(contents.EvaluationMD)
		for _, want := range []string{
			"# Quality Evaluation Report",
			"Generation attempts: 2",
			"Regenerated: true",
			"Readability (Flesch): 74.50",
			"clarity 5/5",
			"Rule violations: vague_language",
		} {
			if !strings.Contains(md, want) {
				t.Errorf("EVALUATION.md missing %q", want)
			}
		}
	})
}

func TestWriteZip(t *testing.T) {
	contents, err := GeneratePack(testInput())
	if err != nil {
		t.Fatalf("GeneratePack failed: %v", err)
	}

	var buf bytes.Buffer
	if err := WriteZip(contents, &buf); err != nil {
		t.Fatalf("WriteZip failed: %v", err)
	}

	zr, err := zip.NewReader(bytes.NewReader(buf.Bytes()), int64(buf.Len()))
	if err != nil {
		t.Fatalf("zip not readable: %v", err)
	}

	want := map[string]bool{
		"QUESTIONS.json":   false,
		"QUESTIONNAIRE.md": false,
		"VARIABLES.md":     false,
		"EVALUATION.md":    false,
	}
	for _, f := range zr.File {
		if _, ok := want[f.Name]; !ok {
			t.Errorf("unexpected file %q in pack", f.Name)
			continue
		}
		want[f.Name] = true
		if f.UncompressedSize64 == 0 {
			t.Errorf("file %q is empty", f.Name)
		}
	}
	for name, seen := range want {
		if !seen {
			t.Errorf("pack missing %q", name)
		}
	}
}
