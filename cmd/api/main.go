// Package main is the entrypoint for the DocQA API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/docqa/docqa/internal/cache"
	"github.com/docqa/docqa/internal/config"
	"github.com/docqa/docqa/internal/document"
	"github.com/docqa/docqa/internal/gemini"
	"github.com/docqa/docqa/internal/handler"
	"github.com/docqa/docqa/internal/history"
	"github.com/docqa/docqa/internal/metrics"
	"github.com/docqa/docqa/internal/middleware"
	"github.com/docqa/docqa/internal/qa"
	"github.com/docqa/docqa/internal/repository"
	"github.com/docqa/docqa/internal/server"
	"github.com/docqa/docqa/internal/service"
	"github.com/docqa/docqa/internal/vectorstore"
)

func main() {
	// Initialize context
	ctx := context.Background()

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		slog.Error("failed to load config", "error", err)
		os.Exit(1)
	}

	// Initialize logger
	logger := initLogger(cfg)

	// Initialize database
	repo, err := repository.New(ctx, cfg.DatabaseURL)
	if err != nil {
		logger.Error(
			"failed to connect to database",
			slog.String("error", sanitizeError(err, cfg.DatabaseURL)),
			slog.String("database_url", redactURL(cfg.DatabaseURL)),
		)
		os.Exit(1)
	}
	defer repo.Close()
	logger.Info("connected to database")

	// Initialize cache
	cacheClient, err := cache.New(ctx, cfg.RedisURL)
	if err != nil {
		logger.Error(
			"failed to connect to Redis",
			slog.String("error", sanitizeError(err, cfg.RedisURL)),
			slog.String("redis_url", redactURL(cfg.RedisURL)),
		)
		os.Exit(1)
	}
	defer cacheClient.Close()
	logger.Info("connected to Redis")

	// Initialize Gemini client
	geminiClient, err := gemini.New(ctx, gemini.Config{
		APIKey:            cfg.GoogleAPIKey,
		EmbeddingModel:    cfg.EmbeddingModel,
		ChatModel:         cfg.ChatModel,
		RequestsPerSecond: cfg.GeminiRPS,
		Temperature:       0.1,
	}, logger)
	if err != nil {
		logger.Error("failed to create Gemini client", "error", err)
		os.Exit(1)
	}
	defer geminiClient.Close()

	// Initialize metrics
	recorder := metrics.NewInMemory()

	// Initialize document pipeline
	fetcher := document.NewFetcher(cfg.MaxDocumentBytes, logger)
	splitter := document.NewSplitter(cfg.ChunkSize, cfg.ChunkOverlap)
	indexes := vectorstore.NewCache(cfg.IndexCacheSize)

	// Initialize services
	docService := service.NewDocumentService(repo, cacheClient, fetcher, splitter, geminiClient, indexes, recorder, logger)
	engine := qa.New(geminiClient, geminiClient, cfg.RetrievalTopK, cfg.QuestionBatchSize, recorder, logger)
	publisher := history.NewPublisher(cacheClient.Client(), logger, recorder)
	qaService := service.NewQAService(docService, indexes, engine, repo, publisher, cfg.MaxQuestions, recorder, logger)

	// Initialize history worker
	workerCtx, stopWorker := context.WithCancel(ctx)
	defer stopWorker()
	worker := history.NewWorker(cacheClient.Client(), repo, logger, history.NewConsumerID(), recorder)
	go func() {
		if err := worker.Run(workerCtx); err != nil && workerCtx.Err() == nil {
			logger.Error("history worker stopped", "error", err)
		}
	}()

	// Pre-warm a document in the background so the first request does not
	// pay the full ingest cost. Deadlined so a slow embedding pass cannot
	// run past startup.
	if cfg.PreWarmDocURL != "" {
		go func() {
			warmCtx, cancel := context.WithTimeout(ctx, 5*time.Minute)
			defer cancel()
			docService.PreWarm(warmCtx, cfg.PreWarmDocURL)
		}()
	}

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(map[string]handler.HealthChecker{
		"postgres": repo,
		"redis":    cacheClient,
	})
	metricsHandler := handler.NewMetricsHandler(recorder)
	qaHandler := handler.NewQAHandler(qaService, logger)
	documentHandler := handler.NewDocumentHandler(docService, logger)
	queryHandler := handler.NewQueryHandler(qaService, logger)
	apiKeyHandler := handler.NewAPIKeyHandler(logger, repo)

	// Setup router
	r := setupRouter(h, healthHandler, metricsHandler, qaHandler, documentHandler, queryHandler, apiKeyHandler, repo, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	srv.OnShutdown("history worker", func(shutdownCtx context.Context) error {
		stopWorker()
		return worker.Shutdown(shutdownCtx)
	})

	logger.Info("starting server",
		"port", cfg.AppPort,
		"env", cfg.AppEnv,
		"chat_model", cfg.ChatModel,
		"embedding_model", cfg.EmbeddingModel,
	)

	if err := srv.Run(); err != nil {
		logger.Error("server error", "error", err)
		os.Exit(1)
	}
}

// initLogger initializes the slog logger based on configuration.
func initLogger(cfg *config.Config) *slog.Logger {
	var h slog.Handler

	level := parseLogLevel(cfg.LogLevel)

	opts := &slog.HandlerOptions{
		Level: level,
	}

	if cfg.LogFormat == "json" {
		h = slog.NewJSONHandler(os.Stdout, opts)
	} else {
		h = slog.NewTextHandler(os.Stdout, opts)
	}

	logger := slog.New(h)
	slog.SetDefault(logger)

	return logger
}

// parseLogLevel converts string log level to slog.Level.
func parseLogLevel(level string) slog.Level {
	switch level {
	case "debug":
		return slog.LevelDebug
	case "info":
		return slog.LevelInfo
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// setupRouter configures the chi router with all routes and middleware.
func setupRouter(
	h *handler.Handler,
	healthHandler *handler.HealthHandler,
	metricsHandler *handler.MetricsHandler,
	qaHandler *handler.QAHandler,
	documentHandler *handler.DocumentHandler,
	queryHandler *handler.QueryHandler,
	apiKeyHandler *handler.APIKeyHandler,
	repo *repository.Repository,
	cacheClient *cache.Cache,
	cfg *config.Config,
	logger *slog.Logger,
) *chi.Mux {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(middleware.Logger(logger))
	r.Use(middleware.Recoverer(logger))
	r.Use(middleware.Security(middleware.SecurityConfig{
		IsDevelopment:      cfg.IsDevelopment(),
		AllowedOrigins:     cfg.GetCORSAllowedOrigins(),
		MaxRequestBodySize: cfg.MaxRequestBodySize,
	}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	corsCfg := middleware.DefaultCORSConfig()
	corsCfg.AllowedOrigins = cfg.GetCORSAllowedOrigins()
	r.Use(middleware.CORS(corsCfg))

	// Health and metrics endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)
	r.Get("/metrics", metricsHandler.Metrics)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:     logger,
		Repository: repo,
		Cache:      cacheClient,
	}

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:     logger,
		Cache:      cacheClient,
		APIEnabled: cfg.RateLimitAPIEnabled,
		IPEnabled:  cfg.RateLimitIPEnabled,
		IPRPS:      cfg.RateLimitIPRPS,
		IPBurst:    cfg.RateLimitIPBurst,
	}

	// API v1 routes (require authentication)
	r.Route("/api/v1", func(r chi.Router) {
		// Apply auth and rate limit middleware to all API routes
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitAPI(rateLimitCfg))

		// Question answering
		r.With(middleware.RequireRead()).Post("/qa/run", qaHandler.Run)

		// Document management (requires write scope for mutations)
		r.Route("/documents", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", documentHandler.List)
			r.With(middleware.RequireRead()).Get("/{id}", documentHandler.Get)
			r.With(middleware.RequireWrite()).Post("/", documentHandler.Ingest)
			r.With(middleware.RequireAdmin()).Delete("/{id}", documentHandler.Delete)
		})

		// Query history
		r.With(middleware.RequireRead()).Get("/queries", queryHandler.List)

		// API key management (requires admin scope for mutations)
		r.Route("/api-keys", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", apiKeyHandler.ListAPIKeys)
			r.With(middleware.RequireAdmin()).Post("/", apiKeyHandler.CreateAPIKey)
			r.With(middleware.RequireAdmin()).Delete("/{key_id}", apiKeyHandler.RevokeAPIKey)
			r.With(middleware.RequireAdmin()).Post("/{key_id}/rotate", apiKeyHandler.RotateAPIKey)
		})
	})

	// 404 and 405 handlers
	r.NotFound(h.NotFound)
	r.MethodNotAllowed(h.MethodNotAllowed)

	return r
}

var passwordPattern = regexp.MustCompile(`(?i)password=[^\s]+`)

func redactURL(raw string) string {
	if raw == "" {
		return ""
	}

	parsed, err := url.Parse(raw)
	if err != nil {
		return "[redacted]"
	}

	if parsed.User != nil {
		username := parsed.User.Username()
		if username == "" {
			parsed.User = url.User("redacted")
		} else {
			parsed.User = url.User(username)
		}
	}

	return parsed.String()
}

func sanitizeError(err error, secrets ...string) string {
	if err == nil {
		return ""
	}

	msg := err.Error()
	for _, secret := range secrets {
		if secret == "" {
			continue
		}
		redacted := redactURL(secret)
		if redacted == "" {
			redacted = "[redacted]"
		}
		msg = strings.ReplaceAll(msg, secret, redacted)
	}

	return passwordPattern.ReplaceAllString(msg, "password=redacted")
}
