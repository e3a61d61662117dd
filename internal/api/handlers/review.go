package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/harmonia-api/internal/logger"
	"github.com/Conceptual-Machines/harmonia-api/internal/metrics"
	"github.com/Conceptual-Machines/harmonia-api/internal/middleware"
	"github.com/Conceptual-Machines/harmonia-api/internal/models"
	"github.com/Conceptual-Machines/harmonia-api/internal/services"
	"github.com/Conceptual-Machines/harmonia-api/internal/srs"
)

type ReviewHandler struct {
	service  *services.ReviewService
	recorder *metrics.Recorder
}

func NewReviewHandler(service *services.ReviewService, recorder *metrics.Recorder) *ReviewHandler {
	return &ReviewHandler{service: service, recorder: recorder}
}

// MarkReviewed records a practice session rating
// POST /api/v1/reviews/:exercise_id
func (h *ReviewHandler) MarkReviewed(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	exerciseID := c.Param("exercise_id")

	var req models.ReviewRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	resp, err := h.service.MarkReviewed(c.Request.Context(), userID, exerciseID, *req.Quality)
	if err != nil {
		if errors.Is(err, srs.ErrInvalidQuality) {
			c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
			return
		}
		h.fail(c, "Failed to record review", err)
		return
	}

	h.recorder.Review(c.Request.Context(), exerciseID, *req.Quality)
	fields := logger.WithContext(c)
	fields["exercise_id"] = exerciseID
	fields["quality"] = *req.Quality
	fields["interval"] = resp.IntervalDays
	logger.Info("Review recorded", fields)

	c.JSON(http.StatusOK, resp)
}

// Due lists exercises whose review date has passed
// GET /api/v1/reviews/due?limit=20
func (h *ReviewHandler) Due(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	limit, ok := queryInt(c, "limit", services.DefaultDueLimit, maxDueLimit)
	if !ok {
		return
	}

	due, err := h.service.DueExercises(c.Request.Context(), userID, limit)
	if err != nil {
		h.fail(c, "Failed to load due exercises", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercises": due, "total": len(due)})
}

// Upcoming counts reviews per day
// GET /api/v1/reviews/upcoming?days=7
func (h *ReviewHandler) Upcoming(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	days, ok := queryInt(c, "days", services.DefaultUpcomingDays, maxUpcomingDays)
	if !ok {
		return
	}

	upcoming, err := h.service.UpcomingReviews(c.Request.Context(), userID, days)
	if err != nil {
		h.fail(c, "Failed to load upcoming reviews", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"days": days, "schedule": upcoming})
}

// Stats summarizes the caller's schedule
// GET /api/v1/reviews/stats
func (h *ReviewHandler) Stats(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}

	stats, err := h.service.Stats(c.Request.Context(), userID)
	if err != nil {
		h.fail(c, "Failed to load review stats", err)
		return
	}
	c.JSON(http.StatusOK, stats)
}

// Reset puts an exercise back into the never-reviewed state
// DELETE /api/v1/reviews/:exercise_id
func (h *ReviewHandler) Reset(c *gin.Context) {
	userID, ok := currentUser(c)
	if !ok {
		return
	}
	exerciseID := c.Param("exercise_id")

	if err := h.service.Reset(c.Request.Context(), userID, exerciseID); err != nil {
		if errors.Is(err, services.ErrProgressNotFound) {
			c.JSON(http.StatusNotFound, gin.H{"error": "No progress recorded for this exercise"})
			return
		}
		h.fail(c, "Failed to reset exercise", err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"exercise_id": exerciseID, "status": "reset"})
}

func (h *ReviewHandler) fail(c *gin.Context, msg string, err error) {
	logger.Error(msg, err, logger.WithContext(c))
	c.JSON(http.StatusInternalServerError, gin.H{"error": msg})
}

func currentUser(c *gin.Context) (string, bool) {
	userID, ok := middleware.GetCurrentUserID(c)
	if !ok {
		c.JSON(http.StatusUnauthorized, gin.H{"error": "Authentication required"})
		return "", false
	}
	return userID, true
}

// queryInt parses an optional positive query parameter capped at ceiling
func queryInt(c *gin.Context, name string, fallback, ceiling int) (int, bool) {
	raw := c.Query(name)
	if raw == "" {
		return fallback, true
	}
	n, err := strconv.Atoi(raw)
	if err != nil || n < 1 {
		c.JSON(http.StatusBadRequest, gin.H{"error": name + " must be a positive integer"})
		return 0, false
	}
	if n > ceiling {
		n = ceiling
	}
	return n, true
}
