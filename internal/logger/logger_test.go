package logger

import (
	"bytes"
	"context"
	"errors"
	"log"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func captureLog(t *testing.T) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	log.SetOutput(&buf)
	t.Cleanup(func() { log.SetOutput(os.Stderr) })
	return &buf
}

func TestFormatFields(t *testing.T) {
	assert.Equal(t, "", formatFields(nil))
	assert.Equal(t,
		"{avg=0.24, chords=3, key=C}",
		formatFields(Fields{"key": "C", "chords": 3, "avg": 0.2421}),
	)
}

func TestLevels(t *testing.T) {
	buf := captureLog(t)

	Info("hello", Fields{"a": 1})
	Warn("careful", nil)
	Debug("details", Fields{"b": "x"})
	Error("failed", errors.New("boom"), Fields{"request_id": "r1"})

	out := buf.String()
	assert.Contains(t, out, "[INFO] hello {a=1}")
	assert.Contains(t, out, "[WARN] careful")
	assert.Contains(t, out, "[DEBUG] details {b=x}")
	assert.Contains(t, out, "[ERROR] failed: boom {request_id=r1}")
}

func TestLogAnalysis(t *testing.T) {
	buf := captureLog(t)

	LogAnalysis(context.Background(), "tension", 4, 1500*time.Microsecond, Fields{"key": "F"})

	assert.Contains(t, buf.String(), "analysis=tension")
	assert.Contains(t, buf.String(), "chord_count=4")
	assert.Contains(t, buf.String(), "duration_ms=1")
}

func TestWithContext(t *testing.T) {
	gin.SetMode(gin.TestMode)
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	c.Request = httptest.NewRequest("POST", "/api/v1/analysis/tension", nil)
	c.Set("request_id", "req-1")
	c.Set("user_id_str", "user-7")

	fields := WithContext(c)
	assert.Equal(t, "req-1", fields["request_id"])
	assert.Equal(t, "POST", fields["method"])
	assert.Equal(t, "/api/v1/analysis/tension", fields["path"])
	assert.Equal(t, "user-7", fields["user_id"])
}

func TestLogAPIRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)

	tests := []struct {
		name     string
		status   int
		expected string
	}{
		{name: "success", status: http.StatusOK, expected: "[INFO] Request completed"},
		{name: "client error", status: http.StatusBadRequest, expected: "[WARN] Request failed with client error"},
		{name: "server error", status: http.StatusServiceUnavailable, expected: "[WARN] Request failed with server error"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf := captureLog(t)
			c, _ := gin.CreateTestContext(httptest.NewRecorder())
			c.Request = httptest.NewRequest("GET", "/api/v1/reviews/due", nil)
			c.Set("request_id", "req-9")
			c.Set("user_id_str", "user-3")

			LogAPIRequest(c, 3*time.Millisecond, tt.status, nil)

			out := buf.String()
			assert.Contains(t, out, tt.expected)
			assert.Contains(t, out, "request_id=req-9")
			assert.Contains(t, out, "user_id=user-3")
			assert.Contains(t, out, "path=/api/v1/reviews/due")
		})
	}
}
