package evaluator

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/surveyforge/backend/internal/domain"
	"github.com/surveyforge/backend/internal/embedding"
)

// Role-aware prompts prepended to the variable name before embedding, so
// the similarity is computed against the variable's meaning in context
// rather than the bare label.
const (
	controlRelevancePrompt   = "This is a demographic or background question collecting information about: %s."
	driverRelevancePrompt    = "This question measures a factor that influences the outcome: %s."
	dependentRelevancePrompt = "This question measures the primary outcome variable: %s."
)

// Service runs the full quality evaluation pass over a question set.
// All sub-checks are fail-soft: a missing embedder or judge degrades the
// corresponding signals to neutral defaults instead of returning errors.
type Service struct {
	provider   *embedding.Provider
	judge      *Judge
	thresholds Thresholds
	log        *zap.Logger
}

// NewService creates an evaluation service. provider and judge may be
// built over absent backends; the service degrades accordingly.
func NewService(provider *embedding.Provider, judge *Judge, thresholds Thresholds, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		provider:   provider,
		judge:      judge,
		thresholds: thresholds,
		log:        log,
	}
}

// Thresholds returns the quality floors the service evaluates against.
func (s *Service) Thresholds() Thresholds {
	return s.thresholds
}

// Evaluate produces one EvaluationRecord per question, positionally
// aligned with the input. Batch signals (duplicate similarity, judge
// scores, skip-logic and scale findings) are computed once for the whole
// set and distributed to the per-question records.
func (s *Service) Evaluate(ctx context.Context, topic string, questions []domain.Question) []domain.EvaluationRecord {
	if len(questions) == 0 {
		return []domain.EvaluationRecord{}
	}

	skipIssues := ValidateSkipLogic(questions)
	scaleIssues := CheckScaleConsistency(questions)

	texts := make([]string, len(questions))
	for i, q := range questions {
		texts[i] = q.Text
	}
	similarity := embedding.PairwiseMatrix(ctx, s.provider, texts)

	scores := s.judge.ScoreBatch(ctx, topic, questions)

	records := make([]domain.EvaluationRecord, len(questions))
	for i, q := range questions {
		rec := domain.EvaluationRecord{
			Question:               q.Text,
			Variable:               q.Variable,
			VariableRole:           q.VariableRole,
			VariableRelevance:      s.variableRelevance(ctx, q),
			Readability:            FleschReadingEase(q.Text),
			MaxDuplicateSimilarity: maxOffDiagonal(similarity, i),
			RuleViolations:         RuleViolations(q.Text),
			LLMScores:              scores[i],
			ResponseOptionIssues:   []string{},
			SkipLogicIssue:         findIssue(skipIssues, q.Text),
			ResponseScaleIssue:     findIssue(scaleIssues, q.Text),
		}
		if len(q.Options) > 0 {
			rec.ResponseOptionIssues = ValidateResponseOptions(q.Options)
		}
		records[i] = rec
	}

	s.log.Debug("evaluated question set",
		zap.Int("questions", len(questions)),
		zap.Bool("embedder_available", s.provider.Available()))

	return records
}

// variableRelevance scores how well a question matches its assigned
// variable via embedding similarity against a role-aware description of
// the variable. Questions without a variable, and any embedding failure,
// score a passing 1.0.
func (s *Service) variableRelevance(ctx context.Context, q domain.Question) float64 {
	if q.Variable == "" {
		return 1.0
	}

	var prompt string
	switch q.VariableRole {
	case domain.RoleControl:
		prompt = fmt.Sprintf(controlRelevancePrompt, q.Variable)
	case domain.RoleDriver:
		prompt = fmt.Sprintf(driverRelevancePrompt, q.Variable)
	default:
		prompt = fmt.Sprintf(dependentRelevancePrompt, q.Variable)
	}

	qVec, err := s.provider.Embed(ctx, q.Text)
	if err != nil {
		return 1.0
	}
	vVec, err := s.provider.Embed(ctx, prompt)
	if err != nil {
		return 1.0
	}

	return round4(embedding.CosineSimilarity(qVec, vVec))
}

// maxOffDiagonal returns the highest similarity between row i and any
// other question.
func maxOffDiagonal(matrix [][]float64, i int) float64 {
	max := 0.0
	for j, sim := range matrix[i] {
		if j != i && sim > max {
			max = sim
		}
	}
	return round4(max)
}

// findIssue returns the first batch finding concerning the given
// question text, or nil.
func findIssue(issues []domain.QuestionIssue, questionText string) *domain.QuestionIssue {
	for i := range issues {
		if issues[i].Question == questionText {
			return &issues[i]
		}
	}
	return nil
}
