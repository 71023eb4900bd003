package generator

import (
	"context"
	"strings"
	"testing"

	"github.com/surveyforge/backend/internal/domain"
	"github.com/surveyforge/backend/internal/embedding"
	"github.com/surveyforge/backend/internal/evaluator"
	"github.com/surveyforge/backend/internal/llm"
)

// Question sets as raw model responses. The "leading" set trips the
// deterministic leading-language rule, so no judge is needed to force a
// regeneration.
const (
	leadingSetJSON = `{
		"questions": [
			{"id": "q1", "text": "Would you agree our buses are excellent?", "type": "yes_no",
			 "options": ["Yes", "No"], "required": true, "branchFrom": null, "branchCondition": null}
		]
	}`
	vagueSetJSON = `{
		"questions": [
			{"id": "q1", "text": "Do you often ride the bus?", "type": "yes_no",
			 "options": ["Yes", "No"], "required": true, "branchFrom": null, "branchCondition": null}
		]
	}`
	cleanSetJSON = `{
		"questions": [
			{"id": "q1", "text": "How satisfied are you with the bus service?", "type": "likert",
			 "options": ["1", "2", "3", "4", "5"], "required": true, "branchFrom": null, "branchCondition": null}
		]
	}`
)

func newTestController(t *testing.T, client llm.Client, maxAttempts int) (*Controller, *llm.MockClient) {
	t.Helper()
	mock, _ := client.(*llm.MockClient)
	gen := newTestGenerator(t, client)
	eval := evaluator.NewService(embedding.FailingProvider(), evaluator.NewJudge(nil, nil),
		evaluator.DefaultThresholds(), nil)
	return NewController(gen, eval, maxAttempts, nil), mock
}

func TestControllerPassesFirstTry(t *testing.T) {
	ctrl, mock := newTestController(t, llm.NewMockClient(cleanSetJSON), 3)

	result, err := ctrl.Run(context.Background(), testConfig(), testModel(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Regenerated {
		t.Error("clean first attempt should not count as regenerated")
	}
	if result.AttemptsMade != 1 {
		t.Errorf("AttemptsMade = %d, want 1", result.AttemptsMade)
	}
	if mock.CallCount != 1 {
		t.Errorf("expected 1 generation call, got %d", mock.CallCount)
	}
	if len(result.Evaluations) != len(result.Questions) {
		t.Errorf("evaluations (%d) must align with questions (%d)",
			len(result.Evaluations), len(result.Questions))
	}
}

func TestControllerConvergesAfterFeedback(t *testing.T) {
	client := llm.NewMockClientSeq(leadingSetJSON, cleanSetJSON)
	ctrl, mock := newTestController(t, client, 3)

	result, err := ctrl.Run(context.Background(), testConfig(), testModel(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !result.Regenerated {
		t.Error("second-attempt success should count as regenerated")
	}
	if result.AttemptsMade != 2 {
		t.Errorf("AttemptsMade = %d, want 2", result.AttemptsMade)
	}
	if result.Questions[0].Text != "How satisfied are you with the bus service?" {
		t.Errorf("expected the clean set, got %q", result.Questions[0].Text)
	}

	// The retry prompt must carry the evaluation feedback and the
	// rejected questions.
	retryPrompt := mock.LastRequest.Messages[1].Content
	if !strings.Contains(retryPrompt, "QUALITY FEEDBACK FROM PREVIOUS ATTEMPT") {
		t.Error("retry prompt missing feedback section")
	}
	if !strings.Contains(retryPrompt, "Would you agree our buses are excellent?") {
		t.Error("retry prompt missing rejected question")
	}
	if !strings.Contains(retryPrompt, "rule violations: leading_language") {
		t.Error("retry prompt missing the concrete violation")
	}
}

func TestControllerGivesUpAtBudget(t *testing.T) {
	ctrl, mock := newTestController(t, llm.NewMockClient(leadingSetJSON), 3)

	result, err := ctrl.Run(context.Background(), testConfig(), testModel(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.AttemptsMade != 3 {
		t.Errorf("AttemptsMade = %d, want 3", result.AttemptsMade)
	}
	if !result.Regenerated {
		t.Error("exhausted budget should count as regenerated")
	}
	if mock.CallCount != 3 {
		t.Errorf("expected 3 generation calls, got %d", mock.CallCount)
	}
	if len(result.Questions) != 1 {
		t.Errorf("flawed best attempt should still be returned, got %d questions", len(result.Questions))
	}
}

func TestControllerKeepsBestAttempt(t *testing.T) {
	// Attempt 1 has two violations, attempt 2 one, attempt 3 two.
	doubleBad := `{
		"questions": [
			{"id": "q1", "text": "Surely you often ride the bus?", "type": "yes_no",
			 "options": ["Yes", "No"], "required": true, "branchFrom": null, "branchCondition": null}
		]
	}`
	client := llm.NewMockClientSeq(doubleBad, vagueSetJSON, doubleBad)
	ctrl, _ := newTestController(t, client, 3)

	result, err := ctrl.Run(context.Background(), testConfig(), testModel(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Questions[0].Text != "Do you often ride the bus?" {
		t.Errorf("expected the least-flawed set, got %q", result.Questions[0].Text)
	}
	if result.AttemptsMade != 3 {
		t.Errorf("AttemptsMade = %d, want 3", result.AttemptsMade)
	}
}

func TestControllerSingleAttemptIsNotRegenerated(t *testing.T) {
	ctrl, mock := newTestController(t, llm.NewMockClient(leadingSetJSON), 1)

	result, err := ctrl.Run(context.Background(), testConfig(), testModel(), Options{})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Regenerated {
		t.Error("a lone failing attempt never regenerated anything")
	}
	if result.AttemptsMade != 1 {
		t.Errorf("AttemptsMade = %d, want 1", result.AttemptsMade)
	}
	if mock.CallCount != 1 {
		t.Errorf("expected 1 generation call, got %d", mock.CallCount)
	}
}

func TestControllerSeedsInitialOptions(t *testing.T) {
	client := llm.NewMockClient(cleanSetJSON)
	ctrl, mock := newTestController(t, client, 3)

	rejected := []domain.Question{{
		ID:   "q9",
		Text: "Would you agree our buses are excellent?",
		Type: domain.QuestionTypeYesNo,
	}}
	result, err := ctrl.Run(context.Background(), testConfig(), testModel(), Options{
		Feedback:          "Avoid leading wording.",
		PreviousQuestions: rejected,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Regenerated {
		t.Error("seeded first attempt is still a first attempt")
	}

	prompt := mock.LastRequest.Messages[1].Content
	if !strings.Contains(prompt, "Avoid leading wording.") {
		t.Error("first prompt missing the seeded feedback")
	}
	if !strings.Contains(prompt, "Would you agree our buses are excellent?") {
		t.Error("first prompt missing the seeded rejected question")
	}
}

func TestControllerCancellation(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	ctrl, _ := newTestController(t, llm.NewMockClient(cleanSetJSON), 3)
	if _, err := ctrl.Run(ctx, testConfig(), testModel(), Options{}); err == nil {
		t.Error("cancelled context should surface an error")
	}
}
