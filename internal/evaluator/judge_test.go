package evaluator

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/surveyforge/backend/internal/domain"
	"github.com/surveyforge/backend/internal/llm"
)

var judgeQuestions = []domain.Question{
	{Text: "How satisfied are you with your commute?", Variable: "commute_satisfaction", VariableRole: domain.RoleDependent},
	{Text: "How long is your commute?", Variable: "commute_length", VariableRole: domain.RoleDriver},
}

func allDefault(scores []domain.LLMScores) bool {
	for _, s := range scores {
		if s.Clarity != defaultScore || s.Neutrality != defaultScore ||
			s.Answerability != defaultScore || s.Relevance != defaultScore {
			return false
		}
	}
	return true
}

func TestJudgeScoreBatch(t *testing.T) {
	t.Run("parses valid scores", func(t *testing.T) {
		client := llm.NewMockClient(`[
			{"clarity": 5, "neutrality": 4, "answerability": 3, "relevance": 5},
			{"clarity": 2, "neutrality": 5, "answerability": 4, "relevance": 1}
		]`)
		judge := NewJudge(client, nil)

		scores := judge.ScoreBatch(context.Background(), "commuting habits", judgeQuestions)
		if len(scores) != 2 {
			t.Fatalf("expected 2 score records, got %d", len(scores))
		}
		if scores[0].Clarity != 5 || scores[0].Answerability != 3 {
			t.Errorf("first record = %+v", scores[0])
		}
		if scores[1].Clarity != 2 || scores[1].Relevance != 1 {
			t.Errorf("second record = %+v", scores[1])
		}
	})

	t.Run("prompt includes every question", func(t *testing.T) {
		client := llm.NewMockClient(`[
			{"clarity": 4, "neutrality": 4, "answerability": 4, "relevance": 4},
			{"clarity": 4, "neutrality": 4, "answerability": 4, "relevance": 4}
		]`)
		judge := NewJudge(client, nil)
		judge.ScoreBatch(context.Background(), "commuting habits", judgeQuestions)

		if client.CallCount != 1 {
			t.Fatalf("expected a single batch call, got %d", client.CallCount)
		}
		prompt := client.LastRequest.Messages[1].Content
		for _, q := range judgeQuestions {
			if !strings.Contains(prompt, q.Text) {
				t.Errorf("prompt missing question %q", q.Text)
			}
		}
		if !strings.Contains(prompt, "commuting habits") {
			t.Error("prompt missing survey topic")
		}
	})

	t.Run("nil client returns defaults", func(t *testing.T) {
		judge := NewJudge(nil, nil)
		scores := judge.ScoreBatch(context.Background(), "topic", judgeQuestions)
		if len(scores) != 2 || !allDefault(scores) {
			t.Errorf("expected uniform defaults, got %+v", scores)
		}
	})

	t.Run("client error returns defaults", func(t *testing.T) {
		client := llm.NewMockClient("")
		client.Error = errors.New("boom")
		judge := NewJudge(client, nil)

		scores := judge.ScoreBatch(context.Background(), "topic", judgeQuestions)
		if !allDefault(scores) {
			t.Errorf("expected uniform defaults, got %+v", scores)
		}
	})

	t.Run("unparseable output returns defaults", func(t *testing.T) {
		judge := NewJudge(llm.NewMockClient("I cannot score these questions."), nil)
		scores := judge.ScoreBatch(context.Background(), "topic", judgeQuestions)
		if !allDefault(scores) {
			t.Errorf("expected uniform defaults, got %+v", scores)
		}
	})

	t.Run("length mismatch returns defaults", func(t *testing.T) {
		client := llm.NewMockClient(`[{"clarity": 1, "neutrality": 1, "answerability": 1, "relevance": 1}]`)
		judge := NewJudge(client, nil)

		scores := judge.ScoreBatch(context.Background(), "topic", judgeQuestions)
		if len(scores) != 2 || !allDefault(scores) {
			t.Errorf("expected uniform defaults, got %+v", scores)
		}
	})

	t.Run("repairs individual bad fields", func(t *testing.T) {
		client := llm.NewMockClient(`[
			{"clarity": 9, "neutrality": "high", "answerability": 0, "relevance": 5},
			{"clarity": 3, "relevance": 2}
		]`)
		judge := NewJudge(client, nil)

		scores := judge.ScoreBatch(context.Background(), "topic", judgeQuestions)
		if scores[0].Clarity != defaultScore || scores[0].Neutrality != defaultScore || scores[0].Answerability != defaultScore {
			t.Errorf("out-of-range fields not repaired: %+v", scores[0])
		}
		if scores[0].Relevance != 5 {
			t.Errorf("valid field should survive, got %+v", scores[0])
		}
		if scores[1].Clarity != 3 || scores[1].Neutrality != defaultScore || scores[1].Relevance != 2 {
			t.Errorf("missing fields should default, got %+v", scores[1])
		}
	})

	t.Run("markdown fenced output still parses", func(t *testing.T) {
		client := llm.NewMockClient("```json\n[\n{\"clarity\": 5, \"neutrality\": 5, \"answerability\": 5, \"relevance\": 5},\n{\"clarity\": 5, \"neutrality\": 5, \"answerability\": 5, \"relevance\": 5}\n]\n```")
		judge := NewJudge(client, nil)

		scores := judge.ScoreBatch(context.Background(), "topic", judgeQuestions)
		if scores[0].Clarity != 5 {
			t.Errorf("fenced JSON not handled, got %+v", scores[0])
		}
	})
}
