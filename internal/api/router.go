package api

import (
	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/Conceptual-Machines/harmonia-api/internal/api/handlers"
	apimiddleware "github.com/Conceptual-Machines/harmonia-api/internal/api/middleware"
	"github.com/Conceptual-Machines/harmonia-api/internal/config"
	"github.com/Conceptual-Machines/harmonia-api/internal/metrics"
	"github.com/Conceptual-Machines/harmonia-api/internal/middleware"
	"github.com/Conceptual-Machines/harmonia-api/internal/services"
)

func SetupRouter(db *gorm.DB, cfg *config.Config, version string, recorder *metrics.Recorder) *gin.Engine {
	router := gin.New()

	// Recovery middleware (must be first)
	router.Use(apimiddleware.RecoverWithSentry())

	// Sentry middleware for error tracking
	router.Use(apimiddleware.SentryMiddleware())

	// Request tracking and structured logging
	router.Use(apimiddleware.RequestTracking(recorder))

	router.Use(apimiddleware.CORS())

	// Health check
	healthHandler := handlers.NewHealthHandler(db)
	router.GET("/health", healthHandler.HealthCheck)

	// Metrics endpoint
	metricsHandler := handlers.NewMetricsHandler(version, recorder)
	router.GET("/api/metrics", metricsHandler.GetMetrics)

	v1 := router.Group("/api/v1")
	v1.Use(authMiddleware(cfg))
	v1.Use(apimiddleware.NewRateLimiter(cfg.RateLimitRPS, cfg.RateLimitBurst).Middleware())
	{
		analysisHandler := handlers.NewAnalysisHandler(
			services.NewAnalysisService(cfg.AnalysisWorkers, cfg.DefaultJazzLevel),
			recorder,
			cfg.DefaultJazzLevel,
		)
		v1.POST("/analysis/functions", analysisHandler.Functions)
		v1.POST("/analysis/tension", analysisHandler.Tension)
		v1.POST("/analysis/voice-leading", analysisHandler.VoiceLeading)
		v1.POST("/analysis/voice-leading/pair", analysisHandler.VoiceLeadingPair)
		v1.POST("/analysis/full", analysisHandler.Full)
		v1.POST("/analysis/batch", analysisHandler.Batch)
		v1.POST("/reharmonize", analysisHandler.Reharmonize)

		v1.GET("/progressions", handlers.ListProgressions)

		// Spaced repetition needs the database
		if db != nil {
			reviewHandler := handlers.NewReviewHandler(services.NewReviewService(db), recorder)
			v1.GET("/reviews/due", reviewHandler.Due)
			v1.GET("/reviews/upcoming", reviewHandler.Upcoming)
			v1.GET("/reviews/stats", reviewHandler.Stats)
			v1.POST("/reviews/:exercise_id", reviewHandler.MarkReviewed)
			v1.DELETE("/reviews/:exercise_id", reviewHandler.Reset)
		}
	}

	return router
}

// authMiddleware picks the auth strategy for AUTH_MODE
func authMiddleware(cfg *config.Config) gin.HandlerFunc {
	switch {
	case cfg.IsGatewayMode():
		return apimiddleware.GatewayAuth()
	case cfg.IsJWTMode():
		return middleware.JWTAuth(cfg)
	default:
		return apimiddleware.NoAuth()
	}
}
