package logger

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/gin-gonic/gin"
)

// Fields represents structured log fields
type Fields map[string]interface{}

// WithContext extracts request context for logging
func WithContext(c *gin.Context) Fields {
	fields := Fields{
		"request_id": c.GetString("request_id"),
		"method":     c.Request.Method,
		"path":       c.Request.URL.Path,
	}

	if userID := c.GetString("user_id_str"); userID != "" {
		fields["user_id"] = userID
	}

	return fields
}

// Info logs an informational message with structured fields
func Info(msg string, fields Fields) {
	log.Printf("[INFO] %s %s", msg, formatFields(fields))
	breadcrumb("info", "log", msg, fields, sentry.LevelInfo)
}

// Warn logs a warning message with structured fields
func Warn(msg string, fields Fields) {
	log.Printf("[WARN] %s %s", msg, formatFields(fields))
	breadcrumb("warning", "log", msg, fields, sentry.LevelWarning)
}

// Debug logs a debug message with structured fields
func Debug(msg string, fields Fields) {
	log.Printf("[DEBUG] %s %s", msg, formatFields(fields))
	breadcrumb("debug", "log", msg, fields, sentry.LevelDebug)
}

// Error logs an error message with structured fields and sends it to Sentry
func Error(msg string, err error, fields Fields) {
	log.Printf("[ERROR] %s: %v %s", msg, err, formatFields(fields))

	hub := sentry.CurrentHub()
	if hub.Client() == nil {
		return
	}
	hub.WithScope(func(scope *sentry.Scope) {
		for key, value := range fields {
			scope.SetContext(key, map[string]interface{}{"value": value})
		}

		// Tags for filtering in Sentry
		for _, tag := range []string{"request_id", "analysis", "exercise_id"} {
			if v, ok := fields[tag].(string); ok {
				scope.SetTag(tag, v)
			}
		}

		hub.CaptureException(err)
	})
}

// LogAPIRequest logs a completed request. 4xx and 5xx responses log at WARN.
func LogAPIRequest(c *gin.Context, duration time.Duration, statusCode int, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}

	fields["duration_ms"] = duration.Milliseconds()
	fields["status_code"] = statusCode
	fields["request_id"] = c.GetString("request_id")
	fields["method"] = c.Request.Method
	fields["path"] = c.Request.URL.Path
	fields["client_ip"] = c.ClientIP()
	if userID := c.GetString("user_id_str"); userID != "" {
		fields["user_id"] = userID
	}

	switch {
	case statusCode >= http.StatusInternalServerError:
		Warn("Request failed with server error", fields)
	case statusCode >= http.StatusBadRequest:
		Warn("Request failed with client error", fields)
	default:
		Info("Request completed", fields)
	}
}

// LogAnalysis logs one analyzer run and records it as a Sentry span
func LogAnalysis(ctx context.Context, kind string, chordCount int, duration time.Duration, fields Fields) {
	if fields == nil {
		fields = Fields{}
	}

	fields["analysis"] = kind
	fields["chord_count"] = chordCount
	fields["duration_ms"] = duration.Milliseconds()

	Info("Analysis completed", fields)

	if hub := sentry.GetHubFromContext(ctx); hub != nil {
		span := sentry.StartSpan(ctx, "analysis."+kind)
		span.Description = fmt.Sprintf("%s (%d chords)", kind, chordCount)
		span.SetData("chord_count", chordCount)
		span.Finish()
	}
}

func breadcrumb(typ, category, msg string, fields Fields, level sentry.Level) {
	if hub := sentry.CurrentHub(); hub.Client() != nil {
		hub.AddBreadcrumb(&sentry.Breadcrumb{
			Type:     typ,
			Category: category,
			Message:  msg,
			Data:     map[string]interface{}(fields),
			Level:    level,
		}, nil)
	}
}

// formatFields renders fields as {k=v, ...} with keys sorted
func formatFields(fields Fields) string {
	if len(fields) == 0 {
		return ""
	}

	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteString(", ")
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(formatValue(fields[k]))
	}
	b.WriteByte('}')
	return b.String()
}

func formatValue(v interface{}) string {
	switch val := v.(type) {
	case string:
		return val
	case float64:
		return fmt.Sprintf("%.2f", val)
	default:
		return fmt.Sprintf("%v", val)
	}
}
