package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"

	"github.com/surveyforge/backend/internal/evaluator"
)

// Config is the top-level configuration structure.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Database   DatabaseConfig   `mapstructure:"database"`
	LLM        LLMConfig        `mapstructure:"llm"`
	Embedding  EmbeddingConfig  `mapstructure:"embedding"`
	Evaluation EvaluationConfig `mapstructure:"evaluation"`
	Logging    LoggingConfig    `mapstructure:"logging"`
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port        string   `mapstructure:"port"`
	CORSOrigins []string `mapstructure:"cors_origins"`
}

// DatabaseConfig holds storage settings.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// LLMConfig holds generative model provider settings. Provider and
// Model are optional; with both empty the first provider with
// credentials wins.
type LLMConfig struct {
	Provider     string `mapstructure:"provider"`
	Model        string `mapstructure:"model"`
	AnthropicKey string `mapstructure:"anthropic_key"`
	GeminiKey    string `mapstructure:"gemini_key"`
	OpenAIKey    string `mapstructure:"openai_key"`
	OllamaHost   string `mapstructure:"ollama_host"`
}

// EmbeddingConfig holds embedding backend settings. Provider is
// "openai", "ollama", or empty to disable semantic checks.
type EmbeddingConfig struct {
	Provider   string `mapstructure:"provider"`
	Model      string `mapstructure:"model"`
	OpenAIKey  string `mapstructure:"openai_key"`
	OllamaHost string `mapstructure:"ollama_host"`
}

// EvaluationConfig holds the quality loop settings.
type EvaluationConfig struct {
	MaxAttempts int                  `mapstructure:"max_attempts"`
	Thresholds  evaluator.Thresholds `mapstructure:"thresholds"`
}

// LoggingConfig holds settings for the logger.
type LoggingConfig struct {
	Directory  string `mapstructure:"directory"`
	Level      string `mapstructure:"level"`
	MaxSize    int    `mapstructure:"max_size"`
	MaxBackups int    `mapstructure:"max_backups"`
	MaxAge     int    `mapstructure:"max_age"`
	Compress   bool   `mapstructure:"compress"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", "4000")
	v.SetDefault("server.cors_origins", []string{"*"})

	v.SetDefault("database.path", "surveyforge.db")

	v.SetDefault("llm.provider", "")
	v.SetDefault("llm.model", "")
	v.SetDefault("llm.ollama_host", "")

	v.SetDefault("embedding.provider", "")
	v.SetDefault("embedding.model", "")
	v.SetDefault("embedding.ollama_host", "http://localhost:11434")

	defaults := evaluator.DefaultThresholds()
	v.SetDefault("evaluation.max_attempts", 3)
	v.SetDefault("evaluation.thresholds.min_llm_score", defaults.MinLLMScore)
	v.SetDefault("evaluation.thresholds.min_variable_relevance", defaults.MinVariableRelevance)
	v.SetDefault("evaluation.thresholds.min_control_relevance", defaults.MinControlRelevance)
	v.SetDefault("evaluation.thresholds.max_duplicate_similarity", defaults.MaxDuplicateSimilarity)

	v.SetDefault("logging.directory", "logs")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.max_size", 10)
	v.SetDefault("logging.max_backups", 3)
	v.SetDefault("logging.max_age", 7)
	v.SetDefault("logging.compress", true)
}

// Load reads the configuration from config/config.yaml under configDir
// (optional) and SURVEYFORGE_* environment variables, e.g.
// SURVEYFORGE_SERVER_PORT or SURVEYFORGE_LLM_ANTHROPIC_KEY.
func Load(configDir string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configDir != "" {
		v.AddConfigPath(configDir)
	}
	v.AddConfigPath(".")
	v.SetConfigName("config")
	v.SetConfigType("yaml")

	v.SetEnvPrefix("SURVEYFORGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// The config file is optional; defaults and env vars carry a bare
	// deployment.
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unable to decode config into struct: %w", err)
	}

	return &cfg, nil
}
