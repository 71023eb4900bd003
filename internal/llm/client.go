package llm

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
)

// Provider represents an LLM provider.
type Provider string

const (
	ProviderOpenAI    Provider = "openai"
	ProviderAnthropic Provider = "anthropic"
	ProviderGoogle    Provider = "google"
	ProviderOllama    Provider = "ollama"
)

// Request represents a chat completion request.
type Request struct {
	Messages    []Message
	Temperature float64
	MaxTokens   int
}

// Message represents a chat message.
type Message struct {
	Role    string `json:"role"` // "system", "user", "assistant"
	Content string `json:"content"`
}

// Response represents a chat completion response.
type Response struct {
	Content string
	Model   string
}

// Client is the interface for LLM providers.
type Client interface {
	Complete(ctx context.Context, req Request) (*Response, error)
	Provider() Provider
	Model() string
}

var (
	// ErrInvalidResponse indicates the LLM returned an invalid response.
	ErrInvalidResponse = errors.New("invalid LLM response")

	// ErrRateLimit indicates rate limiting was hit.
	ErrRateLimit = errors.New("rate limit exceeded")

	// ErrProviderError indicates a provider-specific error.
	ErrProviderError = errors.New("provider error")

	// ErrNotConfigured indicates no provider credentials are available.
	ErrNotConfigured = errors.New("no LLM provider configured")
)

// stripMarkdownCodeBlock removes ```json or ``` wrappers that some models
// put around JSON output despite instructions.
func stripMarkdownCodeBlock(s string) string {
	s = strings.TrimSpace(s)
	for _, prefix := range []string{"```json", "```JSON", "```"} {
		if strings.HasPrefix(s, prefix) {
			s = strings.TrimPrefix(s, prefix)
			break
		}
	}
	s = strings.TrimSuffix(s, "```")
	return strings.TrimSpace(s)
}

// DecodeJSON sends a system+user prompt pair and unmarshals the response
// into out. On a parse failure it retries exactly once with a stricter
// instruction appended; a second failure is returned to the caller, which
// is expected to substitute its documented fallback value.
func DecodeJSON(ctx context.Context, c Client, system, user string, maxTokens int, out any) error {
	const strictSuffix = "\n\nReturn ONLY valid JSON."

	prompt := user
	for attempt := 0; attempt < 2; attempt++ {
		resp, err := c.Complete(ctx, Request{
			Messages: []Message{
				{Role: "system", Content: system},
				{Role: "user", Content: prompt},
			},
			Temperature: 0,
			MaxTokens:   maxTokens,
		})
		if err != nil {
			return err
		}

		content := stripMarkdownCodeBlock(resp.Content)
		if err := json.Unmarshal([]byte(content), out); err == nil {
			return nil
		}

		prompt = user + strictSuffix
	}

	return fmt.Errorf("%w: not valid JSON after retry", ErrInvalidResponse)
}
