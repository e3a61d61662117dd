package handlers

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/Conceptual-Machines/harmonia-api/internal/harmony"
	"github.com/Conceptual-Machines/harmonia-api/internal/logger"
	"github.com/Conceptual-Machines/harmonia-api/internal/metrics"
	"github.com/Conceptual-Machines/harmonia-api/internal/models"
	"github.com/Conceptual-Machines/harmonia-api/internal/reharm"
	"github.com/Conceptual-Machines/harmonia-api/internal/services"
	"github.com/Conceptual-Machines/harmonia-api/internal/tension"
	"github.com/Conceptual-Machines/harmonia-api/internal/theory"
	"github.com/Conceptual-Machines/harmonia-api/internal/voiceleading"
)

type AnalysisHandler struct {
	service          *services.AnalysisService
	recorder         *metrics.Recorder
	defaultJazzLevel int
}

func NewAnalysisHandler(service *services.AnalysisService, recorder *metrics.Recorder, defaultJazzLevel int) *AnalysisHandler {
	return &AnalysisHandler{
		service:          service,
		recorder:         recorder,
		defaultJazzLevel: defaultJazzLevel,
	}
}

// tensionResponse adds recommendations to the curve
type tensionResponse struct {
	tension.Curve
	Recommendations []tension.Recommendation `json:"recommendations"`
}

// Functions classifies every chord by harmonic function
// POST /api/v1/analysis/functions
func (h *AnalysisHandler) Functions(c *gin.Context) {
	req, chords, ok := bindProgression(c)
	if !ok {
		return
	}

	start := time.Now()
	result, err := harmony.AnalyzeProgression(chords, req.Key, theory.ParseMode(req.Mode))
	h.observe(c, "functions", len(chords), start, err)

	respond(c, result, err)
}

// Tension computes the tension curve. Without a key the estimated key is used.
// POST /api/v1/analysis/tension
func (h *AnalysisHandler) Tension(c *gin.Context) {
	req, chords, ok := bindProgression(c)
	if !ok {
		return
	}

	start := time.Now()
	curve, err := tension.AnalyzeCurve(chords, keyOrEstimate(req.Key, chords), theory.ParseMode(req.Mode))
	h.observe(c, "tension", len(chords), start, err)
	if err != nil {
		respond(c, curve, err)
		return
	}

	c.JSON(http.StatusOK, tensionResponse{Curve: curve, Recommendations: tension.Recommendations(curve)})
}

// VoiceLeading scores every transition of a progression
// POST /api/v1/analysis/voice-leading
func (h *AnalysisHandler) VoiceLeading(c *gin.Context) {
	_, chords, ok := bindProgression(c)
	if !ok {
		return
	}

	start := time.Now()
	result, err := voiceleading.AnalyzeProgression(chords)
	h.observe(c, "voice_leading", len(chords), start, err)

	respond(c, result, err)
}

// VoiceLeadingPair scores a single chord change, including its Tonnetz distance
// POST /api/v1/analysis/voice-leading/pair
func (h *AnalysisHandler) VoiceLeadingPair(c *gin.Context) {
	var req models.ChordPairRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	start := time.Now()
	result := voiceleading.AnalyzePairComprehensive(req.From.Chord, req.To.Chord)
	h.observe(c, "voice_leading_pair", 2, start, nil)

	c.JSON(http.StatusOK, result)
}

// Reharmonize suggests substitutions for every chord
// POST /api/v1/reharmonize
func (h *AnalysisHandler) Reharmonize(c *gin.Context) {
	req, chords, ok := bindProgression(c)
	if !ok {
		return
	}

	jazzLevel := req.JazzLevel
	if jazzLevel == 0 {
		jazzLevel = h.defaultJazzLevel
	}

	start := time.Now()
	result, err := reharm.Reharmonize(chords, keyOrEstimate(req.Key, chords), jazzLevel)
	h.observe(c, "reharmonize", len(chords), start, err)

	respond(c, result, err)
}

// Full runs every analyzer over one progression
// POST /api/v1/analysis/full
func (h *AnalysisHandler) Full(c *gin.Context) {
	req, chords, ok := bindProgression(c)
	if !ok {
		return
	}

	start := time.Now()
	result, err := h.service.Analyze(c.Request.Context(), req)
	h.observe(c, "full", len(chords), start, err)

	respond(c, result, err)
}

// Batch runs the full analysis over several progressions
// POST /api/v1/analysis/batch
func (h *AnalysisHandler) Batch(c *gin.Context) {
	var req models.BatchRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	if len(req.Items) == 0 || len(req.Items) > maxBatchItems {
		c.JSON(http.StatusBadRequest, gin.H{
			"error": fmt.Sprintf("batch must contain between 1 and %d items", maxBatchItems),
		})
		return
	}

	start := time.Now()
	items, err := h.service.AnalyzeBatch(c.Request.Context(), req.Items)
	h.observe(c, "batch", len(req.Items), start, err)
	if err != nil {
		respond(c, nil, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": items, "total": len(items)})
}

func (h *AnalysisHandler) observe(c *gin.Context, kind string, chordCount int, start time.Time, err error) {
	duration := time.Since(start)
	fields := logger.WithContext(c)
	if err != nil {
		fields["error"] = err.Error()
	}
	logger.LogAnalysis(c.Request.Context(), kind, chordCount, duration, fields)
	h.recorder.Analysis(c.Request.Context(), kind, chordCount, duration, err)
}

func bindProgression(c *gin.Context) (models.ProgressionRequest, []theory.Chord, bool) {
	var req models.ProgressionRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return req, nil, false
	}
	return req, models.Chords(req.Chords), true
}

func keyOrEstimate(key string, chords []theory.Chord) string {
	if key != "" || len(chords) == 0 {
		return key
	}
	estimated, _ := harmony.EstimateKey(chords)
	return estimated
}

// respond maps analyzer errors onto status codes; empty progressions are the
// caller's fault
func respond(c *gin.Context, result interface{}, err error) {
	switch {
	case err == nil:
		c.JSON(http.StatusOK, result)
	case isEmptyProgression(err):
		c.JSON(http.StatusBadRequest, gin.H{"error": "No chords provided"})
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		c.JSON(http.StatusServiceUnavailable, gin.H{"error": "request cancelled"})
	default:
		logger.Error("Analysis failed", err, logger.WithContext(c))
		c.JSON(http.StatusInternalServerError, gin.H{"error": err.Error()})
	}
}

func isEmptyProgression(err error) bool {
	return errors.Is(err, harmony.ErrEmptyProgression) ||
		errors.Is(err, tension.ErrEmptyProgression) ||
		errors.Is(err, voiceleading.ErrEmptyProgression) ||
		errors.Is(err, reharm.ErrEmptyProgression)
}
