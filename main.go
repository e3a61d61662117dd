package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
	"github.com/joho/godotenv"

	"github.com/Conceptual-Machines/harmonia-api/internal/api"
	"github.com/Conceptual-Machines/harmonia-api/internal/config"
	"github.com/Conceptual-Machines/harmonia-api/internal/database"
	"github.com/Conceptual-Machines/harmonia-api/internal/metrics"
)

const (
	sentryFlushTimeout = 2 * time.Second
	shutdownTimeout    = 10 * time.Second
	readHeaderTimeout  = 5 * time.Second
)

// releaseVersion is set via ldflags during build
var releaseVersion = "dev"

// GetVersion returns the current release version
func GetVersion() string {
	return releaseVersion
}

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using environment variables")
	}

	cfg := config.Load()

	sentryEnabled := initSentry(cfg)
	if sentryEnabled {
		defer sentry.Flush(sentryFlushTimeout)
	}

	db, err := database.Connect(cfg.DatabaseURL)
	if err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to connect to database:", err)
	}

	if err := database.Migrate(db); err != nil {
		sentry.CaptureException(err)
		log.Fatal("Failed to run migrations:", err)
	}

	if cfg.IsProduction() {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	recorder := metrics.NewRecorder(
		metrics.NewClient(ctx, cfg.Environment, cfg.CloudWatchEnabled),
		metrics.NewSentryMetrics(sentryEnabled),
	)
	router := api.SetupRouter(db, cfg, GetVersion(), recorder)

	srv := &http.Server{
		Addr:              ":" + cfg.Port,
		Handler:           router,
		ReadHeaderTimeout: readHeaderTimeout,
	}

	go func() {
		log.Printf("Starting server on port %s (auth mode: %s)", cfg.Port, cfg.AuthMode)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			sentry.CaptureException(err)
			log.Fatal("Failed to start server:", err)
		}
	}()

	<-ctx.Done()
	log.Println("Shutting down server")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("Server shutdown failed: %v", err)
	}
}

func initSentry(cfg *config.Config) bool {
	if cfg.SentryDSN == "" {
		log.Println("Sentry not configured (SENTRY_DSN not set)")
		return false
	}

	err := sentry.Init(sentry.ClientOptions{
		Dsn:              cfg.SentryDSN,
		Environment:      cfg.Environment,
		Release:          "harmonia-api@" + releaseVersion,
		EnableTracing:    true,
		TracesSampleRate: tracesSampleRate(cfg),
		Debug:            !cfg.IsProduction(),
		BeforeSend: func(event *sentry.Event, _ *sentry.EventHint) *sentry.Event {
			if event.Request != nil {
				event.Request.Headers = filterSensitiveHeaders(event.Request.Headers)
			}
			return event
		},
	})
	if err != nil {
		log.Printf("Failed to initialize Sentry: %v", err)
		return false
	}

	log.Printf("Sentry initialized (environment: %s, release: %s)", cfg.Environment, releaseVersion)
	return true
}

func tracesSampleRate(cfg *config.Config) float64 {
	if cfg.IsProduction() {
		return 0.2
	}
	return 1.0
}

func filterSensitiveHeaders(headers map[string]string) map[string]string {
	filtered := make(map[string]string, len(headers))
	sensitiveKeys := map[string]bool{
		"authorization": true,
		"cookie":        true,
		"x-api-key":     true,
	}

	for k, v := range headers {
		if sensitiveKeys[strings.ToLower(k)] {
			filtered[k] = "[REDACTED]"
		} else {
			filtered[k] = v
		}
	}
	return filtered
}
