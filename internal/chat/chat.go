package chat

import (
	"context"
	"strings"

	"go.uber.org/zap"

	"github.com/surveyforge/backend/internal/domain"
	"github.com/surveyforge/backend/internal/generator"
	"github.com/surveyforge/backend/internal/llm"
)

const replyMaxTokens = 1200

// Actions a chat turn can request.
const (
	ActionChat       = "chat"
	ActionRegenerate = "regenerate_questions"
)

// Service generates assistant replies for the survey authoring chat and
// runs chat-driven question regeneration.
type Service struct {
	client llm.Client
	loop   *generator.Controller
	log    *zap.Logger

	systemPrompt *llm.PromptTemplate
}

// NewService creates a chat service. client may be nil; replies then
// return llm.ErrNotConfigured. loop backs the regenerate action.
func NewService(client llm.Client, loop *generator.Controller, log *zap.Logger) *Service {
	if log == nil {
		log = zap.NewNop()
	}
	return &Service{
		client:       client,
		loop:         loop,
		log:          log,
		systemPrompt: llm.MustLoadPrompt("chat", llm.PromptVersionV1),
	}
}

// Reply produces the assistant's next message given the survey context
// and the conversation so far. The last message is expected to be the
// user's.
func (s *Service) Reply(ctx context.Context, cfg domain.SurveyConfig, model domain.VariableModel, history []llm.Message) (string, error) {
	if s.client == nil {
		return "", llm.ErrNotConfigured
	}

	system := s.systemPrompt.Render(map[string]string{
		"TITLE":      cfg.Title,
		"GOAL":       cfg.Goal,
		"POPULATION": cfg.Population,
		"DEPENDENT":  strings.Join(model.Dependent, ", "),
		"DRIVERS":    strings.Join(model.Drivers, ", "),
		"CONTROLS":   strings.Join(model.Controls, ", "),
	})

	messages := make([]llm.Message, 0, len(history)+1)
	messages = append(messages, llm.Message{Role: "system", Content: system})
	messages = append(messages, history...)

	resp, err := s.client.Complete(ctx, llm.Request{
		Messages:    messages,
		Temperature: 0.7,
		MaxTokens:   replyMaxTokens,
	})
	if err != nil {
		return "", err
	}
	return resp.Content, nil
}

// Regenerate runs the quality loop seeded with the user's feedback and
// the question set being replaced. The returned questions supersede the
// previous set wholesale.
func (s *Service) Regenerate(ctx context.Context, cfg domain.SurveyConfig, model domain.VariableModel, feedback string, previous []domain.Question) (*domain.GenerationResult, error) {
	result, err := s.loop.Run(ctx, cfg, model, generator.Options{
		Feedback:          feedback,
		PreviousQuestions: previous,
	})
	if err != nil {
		return nil, err
	}

	s.log.Info("chat regeneration finished",
		zap.Int("questions", len(result.Questions)),
		zap.Int("attempts", result.AttemptsMade))
	return result, nil
}
