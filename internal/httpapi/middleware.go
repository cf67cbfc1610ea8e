package httpapi

import (
	"net/http"
	"time"

	"github.com/google/uuid"

	"github.com/harryzcy/artifact-store/internal/logging"
)

// requestTimeout bounds how long any single request may take, per
// spec.md §5's 10-second request budget.
const requestTimeout = 10 * time.Second

// withTimeout wraps h so it is cancelled and answered with 503 if it
// runs past requestTimeout, using the standard library's own
// http.TimeoutHandler rather than a hand-rolled context deadline
// check — the teacher's server has no request-timeout concern of its
// own to imitate, and net/http already solves this exactly.
func withTimeout(h http.Handler) http.Handler {
	return http.TimeoutHandler(h, requestTimeout, `{"code":503,"message":"request timed out"}`)
}

// statusRecorder captures the status code a handler wrote, so logging
// middleware can report it after the handler returns.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// withLogging assigns each request a correlation id (reusing
// google/uuid, already a teacher dependency for content identifiers,
// repurposed here since content addressing itself is out of scope)
// and logs method, path, status and latency once the handler
// completes.
func withLogging(logger *logging.Logger, h http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requestID := uuid.NewString()
		started := time.Now()
		rec := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		h.ServeHTTP(rec, r)

		logger.Info("request",
			"id", requestID,
			"method", r.Method,
			"path", r.URL.Path,
			"status", rec.status,
			"durationMs", time.Since(started).Milliseconds(),
		)
	})
}
