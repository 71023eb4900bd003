package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"
	"time"

	"go.uber.org/zap"

	"github.com/surveyforge/backend/internal/api"
	"github.com/surveyforge/backend/internal/chat"
	"github.com/surveyforge/backend/internal/config"
	"github.com/surveyforge/backend/internal/embedding"
	"github.com/surveyforge/backend/internal/evaluator"
	"github.com/surveyforge/backend/internal/generator"
	"github.com/surveyforge/backend/internal/llm"
	"github.com/surveyforge/backend/internal/logging"
	"github.com/surveyforge/backend/internal/repository/sqlite"
	"github.com/surveyforge/backend/internal/validator"
)

func main() {
	cfg, err := config.Load("config")
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	logger, err := logging.Init(logging.Options{
		Directory:  cfg.Logging.Directory,
		Level:      cfg.Logging.Level,
		MaxSize:    cfg.Logging.MaxSize,
		MaxBackups: cfg.Logging.MaxBackups,
		MaxAge:     cfg.Logging.MaxAge,
		Compress:   cfg.Logging.Compress,
	})
	if err != nil {
		log.Fatalf("Failed to initialize logger: %v", err)
	}
	defer logger.Sync()

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("failed to create data directory", zap.Error(err))
		}
	}

	repo, err := sqlite.New(cfg.Database.Path)
	if err != nil {
		logger.Fatal("failed to initialize database", zap.Error(err))
	}
	defer repo.Close()

	val, err := validator.New()
	if err != nil {
		logger.Fatal("failed to initialize validator", zap.Error(err))
	}

	factory := llm.NewFactory(llm.FactoryConfig{
		AnthropicKey: cfg.LLM.AnthropicKey,
		GeminiKey:    cfg.LLM.GeminiKey,
		OpenAIKey:    cfg.LLM.OpenAIKey,
		OllamaHost:   cfg.LLM.OllamaHost,
		Provider:     llm.Provider(cfg.LLM.Provider),
		Model:        cfg.LLM.Model,
	})

	// The server stays up without an LLM; generation falls back to the
	// built-in example survey and chat reports itself unconfigured.
	var client llm.Client
	if factory.Available() {
		client, err = factory.CreateDefaultClient()
		if err != nil {
			logger.Fatal("failed to create LLM client", zap.Error(err))
		}
		logger.Info("LLM client ready",
			zap.String("provider", string(client.Provider())),
			zap.String("model", client.Model()))
	} else {
		logger.Warn("no LLM provider configured, generation will use built-in fallbacks")
	}

	embedder := embeddingProvider(cfg.Embedding, logger)

	judge := evaluator.NewJudge(client, logger)
	eval := evaluator.NewService(embedder, judge, cfg.Evaluation.Thresholds, logger)

	gen := generator.New(client, val, logger)
	loop := generator.NewController(gen, eval, cfg.Evaluation.MaxAttempts, logger)

	handler := api.NewHandler(api.Deps{
		Repo:      repo,
		Generator: gen,
		Loop:      loop,
		Evaluator: eval,
		Chat:      chat.NewService(client, loop, logger),
		Sessions:  chat.NewManager(),
		Factory:   factory,
		Log:       logger,
	})

	mux := http.NewServeMux()

	mux.HandleFunc("GET /health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	handler.RegisterRoutes(mux)

	var h http.Handler = mux
	h = api.Logger(logger)(h)
	h = api.CORS(api.CORSConfig{AllowedOrigins: cfg.Server.CORSOrigins})(h)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      h,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 120 * time.Second, // the quality loop can take several model calls
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		sigChan := make(chan os.Signal, 1)
		signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
		<-sigChan

		ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
		defer cancel()

		logger.Info("shutting down server")
		if err := server.Shutdown(ctx); err != nil {
			logger.Error("server shutdown error", zap.Error(err))
		}
	}()

	logger.Info("server starting",
		zap.String("port", cfg.Server.Port),
		zap.String("database", cfg.Database.Path))
	if err := server.ListenAndServe(); err != http.ErrServerClosed {
		logger.Fatal("server error", zap.Error(err))
	}
	logger.Info("server stopped")
}

// embeddingProvider builds the lazily-initialized embedding backend for
// semantic relevance and duplicate checks. An unset provider disables
// both; the evaluator then degrades to neutral scores.
func embeddingProvider(cfg config.EmbeddingConfig, logger *zap.Logger) *embedding.Provider {
	switch cfg.Provider {
	case "openai":
		return embedding.NewProvider(func() (embedding.Client, error) {
			if cfg.OpenAIKey == "" {
				return nil, embedding.ErrUnavailable
			}
			return embedding.NewOpenAIClient(cfg.OpenAIKey, cfg.Model), nil
		})
	case "ollama":
		return embedding.NewProvider(func() (embedding.Client, error) {
			return embedding.NewOllamaClient(cfg.OllamaHost, cfg.Model), nil
		})
	default:
		if cfg.Provider != "" {
			logger.Warn("unknown embedding provider, semantic checks disabled",
				zap.String("provider", cfg.Provider))
		}
		return embedding.NewStaticProvider(nil)
	}
}
