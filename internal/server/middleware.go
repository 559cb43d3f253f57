package server

import (
	"context"
	"log/slog"
	"net/http"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// requestIDContextKey is the type for the request ID context key.
type requestIDContextKey struct{}

// loggerContextKey is the type for the enriched logger context key.
type loggerContextKey struct{}

// RequestIDMiddleware extracts or generates a request ID and enriches the
// logger. The request ID is echoed in the X-Request-ID response header for
// correlation.
func RequestIDMiddleware(logger *slog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}

			enriched := logger.With("request_id", requestID)

			ctx := context.WithValue(r.Context(), requestIDContextKey{}, requestID)
			ctx = context.WithValue(ctx, loggerContextKey{}, enriched)

			w.Header().Set("X-Request-ID", requestID)
			next.ServeHTTP(w, r.WithContext(ctx))
		})
	}
}

// LoggerFromContext retrieves the enriched logger from context.
// Returns slog.Default() if no logger is in context.
func LoggerFromContext(ctx context.Context) *slog.Logger {
	if logger, ok := ctx.Value(loggerContextKey{}).(*slog.Logger); ok {
		return logger
	}
	return slog.Default()
}

// RequestIDFromContext retrieves the request ID from context, or "".
func RequestIDFromContext(ctx context.Context) string {
	if id, ok := ctx.Value(requestIDContextKey{}).(string); ok {
		return id
	}
	return ""
}

// statusRecorder captures the response status code for metrics.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// MetricsMiddleware records request count, duration, and body size.
// Must be outermost to capture the full request duration.
func MetricsMiddleware(m *Metrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

			next.ServeHTTP(rec, r)

			m.RequestsTotal.WithLabelValues(r.Method, strconv.Itoa(rec.status)).Inc()
			m.RequestDuration.WithLabelValues(r.Method).Observe(time.Since(start).Seconds())
			if r.ContentLength > 0 {
				m.RequestBytes.Add(float64(r.ContentLength))
			}
		})
	}
}
