package llm

import (
	"fmt"
)

// ModelInfo describes an available model.
type ModelInfo struct {
	ID       string   `json:"id"`
	Name     string   `json:"name"`
	Provider Provider `json:"provider"`
}

// ProviderInfo describes an available provider.
type ProviderInfo struct {
	ID        Provider    `json:"id"`
	Name      string      `json:"name"`
	Available bool        `json:"available"`
	Models    []ModelInfo `json:"models"`
}

// ClientFactory is the interface for LLM client factories.
type ClientFactory interface {
	Available() bool
	DefaultProvider() Provider
	DefaultModel() string
	ListProviders() []ProviderInfo
	CreateClient(provider Provider, model string) (Client, error)
	CreateDefaultClient() (Client, error)
}

// FactoryConfig holds provider credentials and overrides.
type FactoryConfig struct {
	AnthropicKey string
	GeminiKey    string
	OpenAIKey    string
	OllamaHost   string // empty disables Ollama

	// Optional overrides for the auto-detected default.
	Provider Provider
	Model    string
}

// Factory creates LLM clients on demand.
type Factory struct {
	cfg        FactoryConfig
	defaultPrv Provider
	defaultMod string
}

// NewFactory creates a new LLM client factory. Defaults prefer
// Anthropic, then Gemini, then OpenAI, then a configured Ollama host,
// unless an explicit provider override is given.
func NewFactory(cfg FactoryConfig) *Factory {
	f := &Factory{cfg: cfg}

	switch {
	case cfg.Provider != "":
		f.defaultPrv = cfg.Provider
		f.defaultMod = cfg.Model
	case cfg.AnthropicKey != "":
		f.defaultPrv = ProviderAnthropic
		f.defaultMod = "claude-sonnet-4-20250514"
	case cfg.GeminiKey != "":
		f.defaultPrv = ProviderGoogle
		f.defaultMod = "gemini-2.5-flash"
	case cfg.OpenAIKey != "":
		f.defaultPrv = ProviderOpenAI
		f.defaultMod = "gpt-4o-mini"
	case cfg.OllamaHost != "":
		f.defaultPrv = ProviderOllama
		f.defaultMod = "llama3.2"
	}

	if cfg.Model != "" {
		f.defaultMod = cfg.Model
	}

	return f
}

// Available returns true if at least one provider is configured.
func (f *Factory) Available() bool {
	return f.cfg.AnthropicKey != "" || f.cfg.GeminiKey != "" ||
		f.cfg.OpenAIKey != "" || f.cfg.OllamaHost != ""
}

// DefaultProvider returns the default provider.
func (f *Factory) DefaultProvider() Provider { return f.defaultPrv }

// DefaultModel returns the default model.
func (f *Factory) DefaultModel() string { return f.defaultMod }

// ListProviders returns all providers with their availability status.
func (f *Factory) ListProviders() []ProviderInfo {
	return []ProviderInfo{
		{
			ID:        ProviderAnthropic,
			Name:      "Anthropic Claude",
			Available: f.cfg.AnthropicKey != "",
			Models: []ModelInfo{
				{ID: "claude-sonnet-4-20250514", Name: "Claude Sonnet 4", Provider: ProviderAnthropic},
				{ID: "claude-3-5-haiku-20241022", Name: "Claude 3.5 Haiku", Provider: ProviderAnthropic},
			},
		},
		{
			ID:        ProviderGoogle,
			Name:      "Google Gemini",
			Available: f.cfg.GeminiKey != "",
			Models: []ModelInfo{
				{ID: "gemini-2.5-flash", Name: "Gemini 2.5 Flash", Provider: ProviderGoogle},
				{ID: "gemini-2.5-pro", Name: "Gemini 2.5 Pro", Provider: ProviderGoogle},
			},
		},
		{
			ID:        ProviderOpenAI,
			Name:      "OpenAI",
			Available: f.cfg.OpenAIKey != "",
			Models: []ModelInfo{
				{ID: "gpt-4o-mini", Name: "GPT-4o Mini", Provider: ProviderOpenAI},
				{ID: "gpt-4o", Name: "GPT-4o", Provider: ProviderOpenAI},
			},
		},
		{
			ID:        ProviderOllama,
			Name:      "Ollama (local)",
			Available: f.cfg.OllamaHost != "",
			Models: []ModelInfo{
				{ID: "llama3.2", Name: "Llama 3.2", Provider: ProviderOllama},
			},
		},
	}
}

// CreateClient creates a client for the specified provider and model.
func (f *Factory) CreateClient(provider Provider, model string) (Client, error) {
	switch provider {
	case ProviderAnthropic:
		if f.cfg.AnthropicKey == "" {
			return nil, fmt.Errorf("%w: anthropic key missing", ErrNotConfigured)
		}
		return NewAnthropicClient(f.cfg.AnthropicKey, model), nil

	case ProviderGoogle:
		if f.cfg.GeminiKey == "" {
			return nil, fmt.Errorf("%w: gemini key missing", ErrNotConfigured)
		}
		return NewGeminiClient(f.cfg.GeminiKey, model), nil

	case ProviderOpenAI:
		if f.cfg.OpenAIKey == "" {
			return nil, fmt.Errorf("%w: openai key missing", ErrNotConfigured)
		}
		return NewOpenAIClient(f.cfg.OpenAIKey, model), nil

	case ProviderOllama:
		if f.cfg.OllamaHost == "" {
			return nil, fmt.Errorf("%w: ollama host missing", ErrNotConfigured)
		}
		return NewOllamaClient(f.cfg.OllamaHost, model), nil

	default:
		return nil, fmt.Errorf("unsupported provider: %s", provider)
	}
}

// CreateDefaultClient creates a client with the default provider and model.
func (f *Factory) CreateDefaultClient() (Client, error) {
	if !f.Available() {
		return nil, ErrNotConfigured
	}
	return f.CreateClient(f.defaultPrv, f.defaultMod)
}

var _ ClientFactory = (*Factory)(nil)
