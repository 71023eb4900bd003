package llm

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"
)

const defaultOllamaHost = "http://localhost:11434"

// OllamaClient implements Client for a local Ollama server.
type OllamaClient struct {
	baseURL string
	model   string
	client  *http.Client
}

// NewOllamaClient creates a new Ollama client. An empty host falls back to
// the default localhost endpoint.
func NewOllamaClient(host, model string) *OllamaClient {
	if host == "" {
		host = defaultOllamaHost
	}
	if model == "" {
		model = "llama3.2"
	}
	return &OllamaClient{
		baseURL: strings.TrimSuffix(host, "/"),
		model:   model,
		// Local inference can be slow on first load.
		client: &http.Client{Timeout: 600 * time.Second},
	}
}

func (c *OllamaClient) Provider() Provider { return ProviderOllama }
func (c *OllamaClient) Model() string      { return c.model }

type ollamaChatRequest struct {
	Model    string          `json:"model"`
	Messages []ollamaMessage `json:"messages"`
	Stream   bool            `json:"stream"`
	Format   string          `json:"format,omitempty"`
	Options  *ollamaOptions  `json:"options,omitempty"`
}

type ollamaMessage struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type ollamaOptions struct {
	Temperature float64 `json:"temperature,omitempty"`
	NumPredict  int     `json:"num_predict,omitempty"`
}

type ollamaChatResponse struct {
	Model   string        `json:"model"`
	Message ollamaMessage `json:"message"`
	Done    bool          `json:"done"`
	Error   string        `json:"error,omitempty"`
}

// Complete sends a completion request to Ollama's /api/chat endpoint.
func (c *OllamaClient) Complete(ctx context.Context, req Request) (*Response, error) {
	messages := make([]ollamaMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		messages = append(messages, ollamaMessage{Role: m.Role, Content: m.Content})
	}

	chatReq := ollamaChatRequest{
		Model:    c.model,
		Messages: messages,
		Stream:   false,
		Format:   "json",
		Options: &ollamaOptions{
			Temperature: req.Temperature,
			NumPredict:  req.MaxTokens,
		},
	}

	body, err := json.Marshal(chatReq)
	if err != nil {
		return nil, fmt.Errorf("marshal request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/api/chat", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(httpReq)
	if err != nil {
		return nil, fmt.Errorf("send request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("read response: %w", err)
	}

	var chatResp ollamaChatResponse
	if err := json.Unmarshal(respBody, &chatResp); err != nil {
		return nil, fmt.Errorf("unmarshal response: %w", err)
	}
	if chatResp.Error != "" {
		return nil, fmt.Errorf("%w: %s", ErrProviderError, chatResp.Error)
	}
	if chatResp.Message.Content == "" {
		return nil, fmt.Errorf("%w: empty message", ErrInvalidResponse)
	}

	return &Response{
		Content: stripMarkdownCodeBlock(chatResp.Message.Content),
		Model:   chatResp.Model,
	}, nil
}
