// Package main is the entrypoint for the wishadmin API server.
package main

import (
	"context"
	"log/slog"
	"net/url"
	"os"
	"regexp"
	"strings"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"

	"github.com/eventwish/wishadmin/internal/cache"
	"github.com/eventwish/wishadmin/internal/config"
	"github.com/eventwish/wishadmin/internal/handler"
	"github.com/eventwish/wishadmin/internal/metrics"
	"github.com/eventwish/wishadmin/internal/middleware"
	"github.com/eventwish/wishadmin/internal/repository"
	"github.com/eventwish/wishadmin/internal/server"
	"github.com/eventwish/wishadmin/internal/service"
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

	// Resolve the analytics time zone
	location, err := cfg.Location()
	if err != nil {
		logger.Error("invalid time zone", "error", err)
		os.Exit(1)
	}

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

	// Initialize services
	metricsRecorder := metrics.NewInMemory()
	engagementRepo := repository.NewEngagementRepository(repo)
	analyticsRepo := repository.NewAnalyticsRepository(repo)
	shareService := service.NewShareService(repo, engagementRepo, cacheClient, metricsRecorder)
	engagementService := service.NewEngagementService(engagementRepo, metricsRecorder)
	analyticsService := service.NewAnalyticsService(analyticsRepo, repo, cacheClient, metricsRecorder, cfg.AnalyticsTopTemplates, location, cfg.AnalyticsCacheTTL)

	// Initialize handlers
	h := handler.New()
	healthHandler := handler.NewHealthHandler(repo, cacheClient)
	shareHandler := handler.NewShareHandler(shareService, logger, cfg.BaseURL, location)
	engagementHandler := handler.NewEngagementHandler(engagementService, logger)
	analyticsHandler := handler.NewAnalyticsHandler(analyticsService, logger)
	apiKeyHandler := handler.NewAPIKeyHandler(logger, repo)
	metricsHandler := handler.NewMetricsHandler(metricsRecorder)

	// Setup router
	r := setupRouter(h, healthHandler, shareHandler, engagementHandler, analyticsHandler, apiKeyHandler, metricsHandler, repo, cacheClient, cfg, logger)

	// Create and run server
	srv := server.New(
		r,
		cfg.AppPort,
		cfg.ReadTimeout,
		cfg.WriteTimeout,
		cfg.ShutdownTimeout,
		logger,
	)

	logger.Info("starting server",
		"port", cfg.AppPort,
		"base_url", cfg.BaseURL,
		"env", cfg.AppEnv,
		"time_zone", cfg.TimeZone,
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
	shareHandler *handler.ShareHandler,
	engagementHandler *handler.EngagementHandler,
	analyticsHandler *handler.AnalyticsHandler,
	apiKeyHandler *handler.APIKeyHandler,
	metricsHandler *handler.MetricsHandler,
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
	r.Use(middleware.Security(middleware.DefaultSecurityConfig()))
	r.Use(middleware.CORS(middleware.CORSConfig{AllowedOrigins: cfg.GetCORSAllowedOrigins()}))
	r.Use(middleware.MaxBodySize(cfg.MaxRequestBodySize))

	// Health endpoints (no auth required)
	r.Get("/healthz", healthHandler.Healthz)
	r.Get("/readyz", healthHandler.Readyz)

	// Root info endpoint
	r.Get("/", h.Hello)

	// Auth middleware configuration
	authCfg := middleware.AuthConfig{
		Logger:     logger,
		Repository: repo,
		Cache:      cacheClient,
	}

	// Metrics endpoint, admin keys only
	r.With(middleware.Auth(authCfg), middleware.RequireAdmin()).
		Get("/metrics", metricsHandler.Metrics)

	// Rate limit middleware configuration
	rateLimitCfg := middleware.RateLimitConfig{
		Logger:        logger,
		Cache:         cacheClient,
		APIEnabled:    cfg.RateLimitAPIEnabled,
		RecordEnabled: cfg.RateLimitRecordEnabled,
		RecordRPS:     cfg.RateLimitRecordRPS,
		RecordBurst:   cfg.RateLimitRecordBurst,
	}

	// API v1 routes (require authentication)
	r.Route("/api/v1", func(r chi.Router) {
		// Apply auth and rate limit middleware to all API routes
		r.Use(middleware.Auth(authCfg))
		r.Use(middleware.RateLimitAPI(rateLimitCfg))

		// Share management (requires write scope for mutations)
		r.Route("/shares", func(r chi.Router) {
			r.With(middleware.RequireRead()).Get("/", shareHandler.List)
			r.With(middleware.RequireRead()).Get("/{id}", shareHandler.Get)
			r.With(middleware.RequireRead()).Get("/code/{shortCode}", shareHandler.GetByCode)
			r.With(middleware.RequireWrite()).Post("/", shareHandler.Create)
			r.With(middleware.RequireWrite()).Put("/{id}", shareHandler.Update)
			r.With(middleware.RequireAdmin()).Delete("/{id}", shareHandler.Delete)

			// Engagement recording, IP rate limited on top of the key limit
			r.Route("/{id}", func(r chi.Router) {
				r.Use(middleware.RateLimitIP(rateLimitCfg))
				r.With(middleware.RequireWrite()).Post("/views", engagementHandler.RecordView)
				r.With(middleware.RequireWrite()).Post("/engagements", engagementHandler.RecordEngagement)
				r.With(middleware.RequireWrite()).Post("/reshares", engagementHandler.RecordReshare)
			})
		})

		// Analytics rollup
		r.With(middleware.RequireRead()).Get("/analytics/shares", analyticsHandler.GetShareAnalytics)

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
