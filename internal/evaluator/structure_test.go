package evaluator

import (
	"strings"
	"testing"

	"github.com/surveyforge/backend/internal/domain"
)

func strPtr(s string) *string { return &s }

func TestValidateSkipLogic(t *testing.T) {
	base := []domain.Question{
		{ID: "q1", Text: "Do you own a car?", Type: domain.QuestionTypeYesNo},
	}

	t.Run("valid branch", func(t *testing.T) {
		questions := append(base, domain.Question{
			ID:         "q2",
			Text:       "What make is your car?",
			Type:       domain.QuestionTypeOpenEnded,
			BranchFrom: strPtr("q1"),
			BranchCondition: &domain.BranchCondition{
				QuestionID: "q1",
				Operator:   domain.OpEquals,
				Value:      domain.ConditionValue{"Yes"},
			},
		})
		if issues := ValidateSkipLogic(questions); len(issues) != 0 {
			t.Errorf("expected no issues, got %v", issues)
		}
	})

	t.Run("dangling branch reference", func(t *testing.T) {
		questions := append(base, domain.Question{
			ID:         "q2",
			Text:       "What make is your car?",
			BranchFrom: strPtr("q99"),
			BranchCondition: &domain.BranchCondition{
				QuestionID: "q99",
				Operator:   domain.OpEquals,
				Value:      domain.ConditionValue{"Yes"},
			},
		})
		issues := ValidateSkipLogic(questions)
		if len(issues) != 1 {
			t.Fatalf("expected 1 issue, got %v", issues)
		}
		if !strings.Contains(issues[0].Issue, "q99") {
			t.Errorf("issue should name the missing question, got %q", issues[0].Issue)
		}
		if issues[0].Question != "What make is your car?" {
			t.Errorf("issue attributed to wrong question: %q", issues[0].Question)
		}
	})

	t.Run("missing condition", func(t *testing.T) {
		questions := append(base, domain.Question{
			ID:         "q2",
			Text:       "What make is your car?",
			BranchFrom: strPtr("q1"),
		})
		issues := ValidateSkipLogic(questions)
		if len(issues) != 1 {
			t.Fatalf("expected 1 issue, got %v", issues)
		}
		if issues[0].Issue != "Branch condition missing or invalid" {
			t.Errorf("unexpected issue text %q", issues[0].Issue)
		}
	})

	t.Run("no branching", func(t *testing.T) {
		if issues := ValidateSkipLogic(base); len(issues) != 0 {
			t.Errorf("expected no issues, got %v", issues)
		}
	})
}

func likert(text string, points int) domain.Question {
	opts := make([]string, points)
	for i := range opts {
		opts[i] = strings.Repeat("*", i+1)
	}
	return domain.Question{Text: text, Type: domain.QuestionTypeLikert, Options: opts}
}

func TestCheckScaleConsistency(t *testing.T) {
	t.Run("consistent scales", func(t *testing.T) {
		questions := []domain.Question{
			likert("q one", 5), likert("q two", 5), likert("q three", 5),
		}
		if issues := CheckScaleConsistency(questions); len(issues) != 0 {
			t.Errorf("expected no issues, got %v", issues)
		}
	})

	t.Run("odd one out", func(t *testing.T) {
		questions := []domain.Question{
			likert("q one", 5), likert("q two", 5), likert("q odd", 7),
		}
		issues := CheckScaleConsistency(questions)
		if len(issues) != 1 {
			t.Fatalf("expected 1 issue, got %v", issues)
		}
		if issues[0].Question != "q odd" {
			t.Errorf("flagged wrong question: %q", issues[0].Question)
		}
		want := "Inconsistent Likert scale: uses 7-point scale but survey mostly uses 5-point"
		if issues[0].Issue != want {
			t.Errorf("issue = %q, want %q", issues[0].Issue, want)
		}
	})

	t.Run("tie keeps first scale seen", func(t *testing.T) {
		questions := []domain.Question{
			likert("q one", 5), likert("q two", 7),
		}
		issues := CheckScaleConsistency(questions)
		if len(issues) != 1 {
			t.Fatalf("expected 1 issue, got %v", issues)
		}
		if issues[0].Question != "q two" {
			t.Errorf("tie should favor the first scale, flagged %q", issues[0].Question)
		}
	})

	t.Run("likert and rating judged separately", func(t *testing.T) {
		questions := []domain.Question{
			likert("l one", 5), likert("l two", 5),
			{Text: "r one", Type: domain.QuestionTypeRating, Options: []string{"1", "2", "3"}},
		}
		if issues := CheckScaleConsistency(questions); len(issues) != 0 {
			t.Errorf("rating scale should not count against likert, got %v", issues)
		}
	})

	t.Run("single question has nothing to conflict with", func(t *testing.T) {
		if issues := CheckScaleConsistency([]domain.Question{likert("solo", 9)}); len(issues) != 0 {
			t.Errorf("expected no issues, got %v", issues)
		}
	})
}
