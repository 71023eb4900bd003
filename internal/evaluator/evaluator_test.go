package evaluator

import (
	"context"
	"testing"

	"github.com/surveyforge/backend/internal/domain"
	"github.com/surveyforge/backend/internal/embedding"
)

func newTestService(provider *embedding.Provider) *Service {
	return NewService(provider, NewJudge(nil, nil), DefaultThresholds(), nil)
}

func TestEvaluateEmptySet(t *testing.T) {
	svc := newTestService(embedding.FailingProvider())
	records := svc.Evaluate(context.Background(), "anything", nil)
	if len(records) != 0 {
		t.Errorf("expected no records, got %d", len(records))
	}
}

func TestEvaluateDegradesWithoutBackends(t *testing.T) {
	svc := newTestService(embedding.FailingProvider())
	questions := []domain.Question{
		{ID: "q1", Text: "How satisfied are you with your visit?", Type: domain.QuestionTypeLikert,
			Variable: "satisfaction", VariableRole: domain.RoleDependent,
			Options: []string{"Low", "Medium", "High"}},
		{ID: "q2", Text: "What is your age group?", Type: domain.QuestionTypeMultipleChoice,
			Variable: "age", VariableRole: domain.RoleControl,
			Options: []string{"18-24", "25-34", "35+"}},
	}

	records := svc.Evaluate(context.Background(), "clinic satisfaction", questions)
	if len(records) != 2 {
		t.Fatalf("expected 2 records, got %d", len(records))
	}

	for i, rec := range records {
		if rec.VariableRelevance != 1.0 {
			t.Errorf("record %d: relevance = %v, want neutral 1.0", i, rec.VariableRelevance)
		}
		if rec.MaxDuplicateSimilarity != 0 {
			t.Errorf("record %d: duplicate similarity = %v, want 0", i, rec.MaxDuplicateSimilarity)
		}
		if rec.LLMScores.Clarity != defaultScore {
			t.Errorf("record %d: clarity = %d, want default %d", i, rec.LLMScores.Clarity, defaultScore)
		}
		if rec.Readability <= 0 {
			t.Errorf("record %d: readability = %v, want > 0", i, rec.Readability)
		}
	}

	if NeedsRegeneration(records, svc.Thresholds()) {
		t.Error("degraded evaluation of clean questions should not demand regeneration")
	}
}

func TestEvaluateDetectsDuplicates(t *testing.T) {
	q1 := "How satisfied are you with the clinic?"
	q2 := "How happy are you with the clinic?"
	q3 := "What is your age group?"

	mock := &embedding.MockClient{
		Vectors: map[string][]float64{
			q1: {1, 0},
			q2: {0.99, 0.14},
			q3: {0, 1},
		},
	}
	svc := newTestService(embedding.NewStaticProvider(mock))

	questions := []domain.Question{
		{ID: "q1", Text: q1, Type: domain.QuestionTypeLikert},
		{ID: "q2", Text: q2, Type: domain.QuestionTypeLikert},
		{ID: "q3", Text: q3, Type: domain.QuestionTypeMultipleChoice},
	}

	records := svc.Evaluate(context.Background(), "clinic satisfaction", questions)

	if records[0].MaxDuplicateSimilarity <= svc.Thresholds().MaxDuplicateSimilarity {
		t.Errorf("near-identical questions should exceed the duplicate ceiling, got %v",
			records[0].MaxDuplicateSimilarity)
	}
	if records[1].MaxDuplicateSimilarity != records[0].MaxDuplicateSimilarity {
		t.Errorf("duplicate similarity should be symmetric: %v vs %v",
			records[0].MaxDuplicateSimilarity, records[1].MaxDuplicateSimilarity)
	}
	if records[2].MaxDuplicateSimilarity > 0.5 {
		t.Errorf("unrelated question scored too similar: %v", records[2].MaxDuplicateSimilarity)
	}
	if !NeedsRegeneration(records, svc.Thresholds()) {
		t.Error("duplicate pair should demand regeneration")
	}
}

func TestEvaluateVariableRelevance(t *testing.T) {
	qText := "How often do you feel stressed at work?"
	mock := &embedding.MockClient{
		Vectors: map[string][]float64{
			qText: {1, 0},
		},
		// Role prompts and any other text land on the default vector.
		Default: []float64{0.6, 0.8},
	}
	svc := newTestService(embedding.NewStaticProvider(mock))

	questions := []domain.Question{
		{ID: "q1", Text: qText, Type: domain.QuestionTypeLikert,
			Variable: "stress_level", VariableRole: domain.RoleDriver},
		{ID: "q2", Text: "Any other comments?", Type: domain.QuestionTypeOpenEnded},
	}

	records := svc.Evaluate(context.Background(), "workplace wellbeing", questions)

	// cos((1,0), (0.6,0.8)) = 0.6
	if records[0].VariableRelevance != 0.6 {
		t.Errorf("relevance = %v, want 0.6", records[0].VariableRelevance)
	}
	if records[1].VariableRelevance != 1.0 {
		t.Errorf("question without a variable should score neutral 1.0, got %v", records[1].VariableRelevance)
	}
}

func TestEvaluateAttachesBatchFindings(t *testing.T) {
	svc := newTestService(embedding.FailingProvider())
	questions := []domain.Question{
		{ID: "q1", Text: "Do you own a car?", Type: domain.QuestionTypeYesNo,
			Options: []string{"Yes", "No"}},
		{ID: "q2", Text: "What make is your car?", Type: domain.QuestionTypeOpenEnded,
			BranchFrom: strPtr("missing")},
		{ID: "q3", Text: "Pick your favorite color.", Type: domain.QuestionTypeMultipleChoice,
			Options: []string{"Red", "red", "Blue"}},
	}

	records := svc.Evaluate(context.Background(), "car ownership", questions)

	if records[0].SkipLogicIssue != nil {
		t.Errorf("unbranched question should carry no skip-logic issue, got %v", records[0].SkipLogicIssue)
	}
	if records[1].SkipLogicIssue == nil {
		t.Fatal("dangling branch should surface on its question")
	}
	if len(records[1].ResponseOptionIssues) != 0 {
		t.Errorf("question without options should have no option issues, got %v", records[1].ResponseOptionIssues)
	}
	if len(records[2].ResponseOptionIssues) != 1 || records[2].ResponseOptionIssues[0] != OptionIssueDuplicates {
		t.Errorf("expected duplicate option issue, got %v", records[2].ResponseOptionIssues)
	}
}
