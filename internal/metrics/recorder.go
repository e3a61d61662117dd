package metrics

import (
	"context"
	"sync"
	"time"
)

// Recorder fans metrics out to CloudWatch and Sentry and keeps in-process
// counters for the /api/metrics endpoint. A nil Recorder is a no-op.
type Recorder struct {
	cloudwatch *Client
	sentry     *SentryMetrics

	mu        sync.Mutex
	analyses  map[string]int64
	failures  map[string]int64
	reviews   int64
	byQuality [6]int64
}

func NewRecorder(cw *Client, sm *SentryMetrics) *Recorder {
	return &Recorder{
		cloudwatch: cw,
		sentry:     sm,
		analyses:   make(map[string]int64),
		failures:   make(map[string]int64),
	}
}

// APIRequest records a finished HTTP request
func (r *Recorder) APIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if r == nil {
		return
	}
	r.cloudwatch.RecordAPIRequest(endpoint, statusCode, duration)
	r.sentry.RecordAPIRequest(ctx, endpoint, statusCode, duration)
}

// Analysis records one analyzer run; err is the analyzer's error, if any
func (r *Recorder) Analysis(ctx context.Context, kind string, chordCount int, duration time.Duration, err error) {
	if r == nil {
		return
	}
	success := err == nil

	r.mu.Lock()
	r.analyses[kind]++
	if !success {
		r.failures[kind]++
	}
	r.mu.Unlock()

	r.cloudwatch.RecordAnalysis(kind, chordCount, duration, success)
	r.sentry.RecordAnalysis(ctx, kind, chordCount, duration, success)
}

// Review records one spaced-repetition review
func (r *Recorder) Review(ctx context.Context, exerciseID string, quality int) {
	if r == nil {
		return
	}

	r.mu.Lock()
	r.reviews++
	if quality >= 0 && quality < len(r.byQuality) {
		r.byQuality[quality]++
	}
	r.mu.Unlock()

	r.cloudwatch.RecordReview(quality)
	r.sentry.RecordReview(ctx, exerciseID, quality)
}

// Snapshot is a copy of the in-process counters
type Snapshot struct {
	Analyses         map[string]int64 `json:"analyses"`
	AnalysisFailures map[string]int64 `json:"analysis_failures"`
	Reviews          int64            `json:"reviews"`
	ReviewsByQuality [6]int64         `json:"reviews_by_quality"`
}

func (r *Recorder) Snapshot() Snapshot {
	s := Snapshot{
		Analyses:         map[string]int64{},
		AnalysisFailures: map[string]int64{},
	}
	if r == nil {
		return s
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	for k, v := range r.analyses {
		s.Analyses[k] = v
	}
	for k, v := range r.failures {
		s.AnalysisFailures[k] = v
	}
	s.Reviews = r.reviews
	s.ReviewsByQuality = r.byQuality
	return s
}
