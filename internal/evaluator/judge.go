package evaluator

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/surveyforge/backend/internal/domain"
	"github.com/surveyforge/backend/internal/llm"
)

// defaultScore is the deliberately permissive fallback for any judge
// sub-score that could not be obtained: evaluation-engine failures must
// never block question delivery.
const defaultScore = 4

// judgeMaxTokens bounds the judge response; four small integers per
// question leaves plenty of headroom.
const judgeMaxTokens = 2000

// Judge scores question batches against the quality rubric using a
// generative model. A nil client means no model is configured and every
// question receives the neutral default.
type Judge struct {
	client llm.Client
	log    *zap.Logger

	systemPrompt *llm.PromptTemplate
	userPrompt   *llm.PromptTemplate
}

// NewJudge creates a judge over client, which may be nil.
func NewJudge(client llm.Client, log *zap.Logger) *Judge {
	if log == nil {
		log = zap.NewNop()
	}
	return &Judge{
		client:       client,
		log:          log,
		systemPrompt: llm.MustLoadPrompt("judge", llm.PromptVersionV1),
		userPrompt:   llm.MustLoadPrompt("judge_user", llm.PromptVersionV1),
	}
}

// ScoreBatch scores all questions in one model call and returns one
// score record per question, positionally aligned with the input. Any
// batch-level failure (no client, unparseable output, length mismatch)
// yields the uniform neutral default; individual out-of-range fields are
// repaired independently.
func (j *Judge) ScoreBatch(ctx context.Context, topic string, questions []domain.Question) []domain.LLMScores {
	defaults := make([]domain.LLMScores, len(questions))
	for i := range defaults {
		defaults[i] = domain.LLMScores{
			Clarity:       defaultScore,
			Neutrality:    defaultScore,
			Answerability: defaultScore,
			Relevance:     defaultScore,
		}
	}

	if j.client == nil || len(questions) == 0 {
		return defaults
	}

	var lines strings.Builder
	for i, q := range questions {
		variable := q.Variable
		if variable == "" {
			variable = "unknown"
		}
		role := string(q.VariableRole)
		if role == "" {
			role = "unknown"
		}
		fmt.Fprintf(&lines, "%d. Question: %q\n   Variable: %q (%s)\n", i+1, q.Text, variable, role)
	}

	user := j.userPrompt.Render(map[string]string{
		"TOPIC":     topic,
		"QUESTIONS": lines.String(),
		"COUNT":     strconv.Itoa(len(questions)),
	})

	var raw []map[string]any
	if err := llm.DecodeJSON(ctx, j.client, j.systemPrompt.Template, user, judgeMaxTokens, &raw); err != nil {
		j.log.Warn("judge scoring failed, using defaults", zap.Error(err))
		return defaults
	}

	if len(raw) != len(questions) {
		j.log.Warn("judge returned wrong score count, using defaults",
			zap.Int("want", len(questions)), zap.Int("got", len(raw)))
		return defaults
	}

	scores := make([]domain.LLMScores, len(raw))
	for i, r := range raw {
		scores[i] = domain.LLMScores{
			Clarity:       coerceScore(r["clarity"]),
			Neutrality:    coerceScore(r["neutrality"]),
			Answerability: coerceScore(r["answerability"]),
			Relevance:     coerceScore(r["relevance"]),
		}
	}
	return scores
}

// coerceScore validates a single rubric field: a number in [1,5] passes,
// anything else falls back to the neutral default.
func coerceScore(v any) int {
	f, ok := v.(float64)
	if !ok || f < 1 || f > 5 {
		return defaultScore
	}
	return int(f)
}
