package generator

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/surveyforge/backend/internal/domain"
	"github.com/surveyforge/backend/internal/llm"
	"github.com/surveyforge/backend/internal/validator"
)

const (
	generateMaxTokens = 8000
	extractMaxTokens  = 1500
)

// Options carries the regeneration context for a generation attempt.
// Both fields are empty on the first attempt.
type Options struct {
	// Feedback is evaluation guidance from the previous attempt.
	Feedback string

	// PreviousQuestions are the rejected questions the model must not
	// reproduce.
	PreviousQuestions []domain.Question
}

// Generator produces survey artifacts from a generative model. A nil
// client degrades every method to its embedded fallback value, so the
// service stays demoable without credentials.
type Generator struct {
	client    llm.Client
	validator *validator.Validator
	log       *zap.Logger

	genSystem     *llm.PromptTemplate
	genUser       *llm.PromptTemplate
	varSystem     *llm.PromptTemplate
	varUser       *llm.PromptTemplate
	extractSystem *llm.PromptTemplate
	extractUser   *llm.PromptTemplate
}

// New creates a Generator. client may be nil.
func New(client llm.Client, v *validator.Validator, log *zap.Logger) *Generator {
	if log == nil {
		log = zap.NewNop()
	}
	return &Generator{
		client:        client,
		validator:     v,
		log:           log,
		genSystem:     llm.MustLoadPrompt("question_gen", llm.PromptVersionV1),
		genUser:       llm.MustLoadPrompt("question_gen_user", llm.PromptVersionV1),
		varSystem:     llm.MustLoadPrompt("variable_model", llm.PromptVersionV1),
		varUser:       llm.MustLoadPrompt("variable_model_user", llm.PromptVersionV1),
		extractSystem: llm.MustLoadPrompt("survey_config", llm.PromptVersionV1),
		extractUser:   llm.MustLoadPrompt("survey_config_user", llm.PromptVersionV1),
	}
}

type rawEnvelope struct {
	Questions []json.RawMessage `json:"questions"`
}

// GenerateQuestions asks the model for a question set. Malformed
// individual questions are dropped; an unusable response as a whole
// yields the embedded fallback set. Context cancellation is the only
// error surfaced to the caller.
func (g *Generator) GenerateQuestions(ctx context.Context, cfg domain.SurveyConfig, model domain.VariableModel, opts Options) ([]domain.Question, error) {
	if g.client == nil {
		return FallbackQuestions(), nil
	}

	user := g.buildGenerationPrompt(cfg, model, opts)

	var raw json.RawMessage
	if err := llm.DecodeJSON(ctx, g.client, g.genSystem.Template, user, generateMaxTokens, &raw); err != nil {
		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
		g.log.Warn("question generation failed, serving fallback set", zap.Error(err))
		return FallbackQuestions(), nil
	}

	if result := g.validator.ValidateQuestionSet(raw); !result.Valid {
		fields := []zap.Field{zap.Int("errors", len(result.Errors))}
		if len(result.Errors) > 0 {
			fields = append(fields, zap.Any("first_error", result.Errors[0]))
		}
		g.log.Warn("generated question set failed schema validation", fields...)
	}

	var env rawEnvelope
	if err := json.Unmarshal(raw, &env); err != nil || len(env.Questions) == 0 {
		g.log.Warn("generated output had no questions, serving fallback set")
		return FallbackQuestions(), nil
	}

	questions := make([]domain.Question, 0, len(env.Questions))
	for _, item := range env.Questions {
		var q domain.Question
		if err := json.Unmarshal(item, &q); err != nil {
			continue
		}
		if q.ID == "" || q.Text == "" || !domain.ValidQuestionType(q.Type) || q.Options == nil {
			continue
		}
		questions = append(questions, q)
	}
	if len(questions) == 0 {
		g.log.Warn("no generated question survived validation, serving fallback set")
		return FallbackQuestions(), nil
	}

	normalizeBranches(questions)
	return questions, nil
}

// GenerateVariableModel derives a measurement model from the survey
// configuration.
func (g *Generator) GenerateVariableModel(ctx context.Context, cfg domain.SurveyConfig) (domain.VariableModel, error) {
	if g.client == nil {
		return FallbackVariableModel(), nil
	}

	maxQuestions := cfg.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = 10
	}
	user := g.varUser.Render(map[string]string{
		"TITLE":         cfg.Title,
		"GOAL":          cfg.Goal,
		"POPULATION":    cfg.Population,
		"CONFIDENCE":    cfg.Confidence,
		"MARGIN":        cfg.Margin,
		"LANGUAGE":      strings.Join(cfg.Language, " + "),
		"TONE":          cfg.Tone,
		"MAX_QUESTIONS": strconv.Itoa(maxQuestions),
	})

	var model domain.VariableModel
	if err := llm.DecodeJSON(ctx, g.client, g.varSystem.Template, user, extractMaxTokens, &model); err != nil {
		if ctx.Err() != nil {
			return domain.VariableModel{}, ctx.Err()
		}
		g.log.Warn("variable model generation failed, serving fallback", zap.Error(err))
		return FallbackVariableModel(), nil
	}

	if model.Dependent == nil || model.Drivers == nil || model.Controls == nil {
		g.log.Warn("variable model output incomplete, serving fallback")
		return FallbackVariableModel(), nil
	}
	return model, nil
}

// ExtractSurveyConfig pulls a structured survey configuration out of
// free-form admin text. Missing fields keep their zero value except
// MaxQuestions, which defaults to 10.
func (g *Generator) ExtractSurveyConfig(ctx context.Context, text string) (domain.SurveyConfig, error) {
	if g.client == nil {
		return FallbackSurveyConfig(), nil
	}

	user := g.extractUser.Render(map[string]string{"TEXT": text})

	var cfg domain.SurveyConfig
	if err := llm.DecodeJSON(ctx, g.client, g.extractSystem.Template, user, extractMaxTokens, &cfg); err != nil {
		if ctx.Err() != nil {
			return domain.SurveyConfig{}, ctx.Err()
		}
		g.log.Warn("survey config extraction failed, serving fallback", zap.Error(err))
		return FallbackSurveyConfig(), nil
	}

	if cfg.Language == nil {
		cfg.Language = []string{}
	}
	if cfg.MaxQuestions <= 0 {
		cfg.MaxQuestions = 10
	}
	return cfg, nil
}

func (g *Generator) buildGenerationPrompt(cfg domain.SurveyConfig, model domain.VariableModel, opts Options) string {
	maxQuestions := cfg.MaxQuestions
	if maxQuestions <= 0 {
		maxQuestions = 10
	}

	feedbackSection := ""
	if opts.Feedback != "" {
		feedbackSection = "QUALITY FEEDBACK FROM PREVIOUS ATTEMPT\n" + opts.Feedback + "\n\n"
	}

	previousSection := ""
	if len(opts.PreviousQuestions) > 0 {
		var b strings.Builder
		b.WriteString("IMPORTANT: AVOID THESE PREVIOUS QUESTIONS\n")
		b.WriteString("Do NOT regenerate these exact questions. Generate completely different questions with different wording, structure, and approach while measuring the same variables:\n")
		for _, q := range opts.PreviousQuestions {
			fmt.Fprintf(&b, "- %q (%s)\n", q.Text, q.Type)
		}
		b.WriteString("\nWhen regenerating, use alternative phrasings, different question types where possible, and different approaches to measure the same constructs.\n\n")
		previousSection = b.String()
	}

	return g.genUser.Render(map[string]string{
		"TITLE":                      cfg.Title,
		"GOAL":                       cfg.Goal,
		"POPULATION":                 cfg.Population,
		"CONFIDENCE":                 cfg.Confidence,
		"MARGIN":                     cfg.Margin,
		"LANGUAGE":                   strings.Join(cfg.Language, " + "),
		"TONE":                       cfg.Tone,
		"MAX_QUESTIONS":              strconv.Itoa(maxQuestions),
		"DEPENDENT":                  strings.Join(model.Dependent, ", "),
		"DRIVERS":                    strings.Join(model.Drivers, ", "),
		"CONTROLS":                   strings.Join(model.Controls, ", "),
		"FEEDBACK_SECTION":           feedbackSection,
		"PREVIOUS_QUESTIONS_SECTION": previousSection,
	})
}

// normalizeBranches nulls out branch references to questions that do not
// exist in the set and conditions orphaned by a missing branchFrom.
func normalizeBranches(questions []domain.Question) {
	ids := make(map[string]bool, len(questions))
	for _, q := range questions {
		ids[q.ID] = true
	}
	for i := range questions {
		q := &questions[i]
		if q.BranchFrom != nil && !ids[*q.BranchFrom] {
			q.BranchFrom = nil
			q.BranchCondition = nil
		}
		if q.BranchFrom == nil {
			q.BranchCondition = nil
		}
	}
}
