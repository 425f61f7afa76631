package api

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/okian/matchcore/pkg/metrics"
)

// MetricsMiddleware records request count and latency for endpoint. Failed
// requests are also counted under the error code the handler wrote.
func MetricsMiddleware(next http.HandlerFunc, endpoint string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		wrapped := &responseWriter{ResponseWriter: w, statusCode: http.StatusOK}
		next.ServeHTTP(wrapped, r)

		durationMs := float64(time.Since(start).Microseconds()) / 1000
		status := strconv.Itoa(wrapped.statusCode)

		metrics.RecordHTTPRequest(endpoint, r.Method, status)
		metrics.RecordHTTPRequestDuration(endpoint, r.Method, status, durationMs)

		if wrapped.statusCode >= http.StatusBadRequest {
			code := wrapped.errorCode
			if code == "" {
				code = "http_" + status
			}
			metrics.RecordErrorByEndpoint(endpoint, r.Method, code)
			metrics.RecordErrorByType(code, severity(wrapped.statusCode))
		}
	}
}

// severity is high for server faults, medium for rejected input and low for
// load shedding the client is expected to retry.
func severity(status int) string {
	switch {
	case status >= http.StatusInternalServerError:
		return "high"
	case status == http.StatusTooManyRequests:
		return "low"
	default:
		return "medium"
	}
}

// errorCoder is implemented by writers that keep the code of an error body.
type errorCoder interface {
	setErrorCode(code string)
}

// responseWriter captures the status code and error code of a response.
type responseWriter struct {
	http.ResponseWriter
	statusCode int
	errorCode  string
}

func (rw *responseWriter) WriteHeader(code int) {
	rw.statusCode = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *responseWriter) Write(b []byte) (int, error) {
	n, err := rw.ResponseWriter.Write(b)
	if err != nil {
		return n, fmt.Errorf("failed to write response: %w", err)
	}
	return n, nil
}

func (rw *responseWriter) setErrorCode(code string) { rw.errorCode = code }
