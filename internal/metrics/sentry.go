package metrics

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
)

const (
	// HTTP status code threshold for considering a request successful
	successStatusCodeThreshold = http.StatusBadRequest
)

// SentryMetrics records performance spans on the request's Sentry transaction
type SentryMetrics struct {
	enabled bool
}

func NewSentryMetrics(enabled bool) *SentryMetrics {
	return &SentryMetrics{enabled: enabled}
}

func (m *SentryMetrics) active() bool {
	return m != nil && m.enabled
}

// RecordAPIRequest records API request metrics
func (m *SentryMetrics) RecordAPIRequest(ctx context.Context, endpoint string, statusCode int, duration time.Duration) {
	if !m.active() {
		return
	}

	span := sentry.StartSpan(ctx, "api.request")
	defer span.Finish()

	span.Description = "API Request: " + endpoint
	span.SetTag("endpoint", endpoint)
	span.SetTag("status_code", fmt.Sprintf("%d", statusCode))
	span.SetData("duration_ms", duration.Milliseconds())

	if statusCode < successStatusCodeThreshold {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInternalError
	}
}

// RecordAnalysis tags the transaction with the analyzer and adds a child span
func (m *SentryMetrics) RecordAnalysis(ctx context.Context, kind string, chordCount int, duration time.Duration, success bool) {
	if !m.active() {
		return
	}

	if transaction := sentry.TransactionFromContext(ctx); transaction != nil {
		transaction.SetTag("analysis.kind", kind)
		transaction.SetData("analysis.chord_count", chordCount)
	}

	span := sentry.StartSpan(ctx, "analysis.run")
	defer span.Finish()

	span.Description = fmt.Sprintf("Analysis: %s", kind)
	span.SetTag("kind", kind)
	span.SetData("chord_count", chordCount)
	span.SetData("duration_ms", duration.Milliseconds())

	if success {
		span.Status = sentry.SpanStatusOK
	} else {
		span.Status = sentry.SpanStatusInvalidArgument
	}
}

// RecordReview adds a span for one spaced-repetition review
func (m *SentryMetrics) RecordReview(ctx context.Context, exerciseID string, quality int) {
	if !m.active() {
		return
	}

	span := sentry.StartSpan(ctx, "review.mark")
	defer span.Finish()

	span.Description = "Review: " + exerciseID
	span.SetTag("quality", fmt.Sprintf("%d", quality))
	span.SetData("exercise_id", exerciseID)
	span.Status = sentry.SpanStatusOK
}
