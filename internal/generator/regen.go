package generator

import (
	"context"

	"go.uber.org/zap"

	"github.com/surveyforge/backend/internal/domain"
	"github.com/surveyforge/backend/internal/evaluator"
)

// DefaultMaxAttempts is the regeneration budget: one initial generation
// plus up to two retries.
const DefaultMaxAttempts = 3

// Controller drives the generate, evaluate, regenerate loop until the
// question set passes every quality check or the attempt budget runs out.
type Controller struct {
	generator   *Generator
	evaluator   *evaluator.Service
	maxAttempts int
	log         *zap.Logger
}

// NewController creates a Controller. maxAttempts values below 1 fall
// back to DefaultMaxAttempts.
func NewController(g *Generator, e *evaluator.Service, maxAttempts int, log *zap.Logger) *Controller {
	if maxAttempts < 1 {
		maxAttempts = DefaultMaxAttempts
	}
	if log == nil {
		log = zap.NewNop()
	}
	return &Controller{
		generator:   g,
		evaluator:   e,
		maxAttempts: maxAttempts,
		log:         log,
	}
}

type attempt struct {
	questions   []domain.Question
	evaluations []domain.EvaluationRecord
	issues      int
}

// Run executes the full loop and returns the best question set seen.
// initial seeds the first attempt, letting callers carry feedback or
// previously-rejected questions into a fresh loop; later attempts use
// the loop's own evaluation feedback. When no attempt passes cleanly,
// the attempt with the fewest tallied issues wins; ties go to the
// earliest attempt.
func (c *Controller) Run(ctx context.Context, cfg domain.SurveyConfig, model domain.VariableModel, initial Options) (*domain.GenerationResult, error) {
	thresholds := c.evaluator.Thresholds()
	topic := cfg.Topic()

	var best *attempt
	opts := initial

	for attemptNo := 1; attemptNo <= c.maxAttempts; attemptNo++ {
		questions, err := c.generator.GenerateQuestions(ctx, cfg, model, opts)
		if err != nil {
			return nil, err
		}
		if len(questions) == 0 {
			// Nothing to evaluate or improve on.
			return &domain.GenerationResult{
				Questions:    []domain.Question{},
				Evaluations:  []domain.EvaluationRecord{},
				Regenerated:  attemptNo > 1,
				AttemptsMade: attemptNo,
			}, nil
		}

		evaluations := c.evaluator.Evaluate(ctx, topic, questions)
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}

		current := &attempt{
			questions:   questions,
			evaluations: evaluations,
			issues:      evaluator.IssueCount(evaluations, thresholds),
		}
		if best == nil || current.issues < best.issues {
			best = current
		}

		if !evaluator.NeedsRegeneration(evaluations, thresholds) {
			c.log.Info("question set passed quality checks",
				zap.Int("attempt", attemptNo),
				zap.Int("questions", len(questions)))
			return &domain.GenerationResult{
				Questions:    questions,
				Evaluations:  evaluations,
				Regenerated:  attemptNo > 1,
				AttemptsMade: attemptNo,
			}, nil
		}

		c.log.Info("question set failed quality checks",
			zap.Int("attempt", attemptNo),
			zap.Int("issues", current.issues))

		opts = Options{
			Feedback:          evaluator.BuildFeedback(evaluations, topic, thresholds),
			PreviousQuestions: questions,
		}
	}

	c.log.Warn("regeneration budget exhausted, returning best attempt",
		zap.Int("attempts", c.maxAttempts),
		zap.Int("remaining_issues", best.issues))

	return &domain.GenerationResult{
		Questions:    best.questions,
		Evaluations:  best.evaluations,
		Regenerated:  c.maxAttempts > 1,
		AttemptsMade: c.maxAttempts,
	}, nil
}
