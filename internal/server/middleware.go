package server

import (
	"net/http"
	"time"
)

// knownPaths bounds the path label of HTTP metrics.
var knownPaths = map[string]bool{
	MCPEndpointPath:     true,
	"/healthz":          true,
	"/readyz":           true,
	"/healthz/detailed": true,
}

// statusRecorder captures the response status while passing flushes through
// for streamed responses.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(code int) {
	if r.status == 0 {
		r.status = code
	}
	r.ResponseWriter.WriteHeader(code)
}

func (r *statusRecorder) Write(b []byte) (int, error) {
	if r.status == 0 {
		r.status = http.StatusOK
	}
	return r.ResponseWriter.Write(b)
}

func (r *statusRecorder) Flush() {
	if f, ok := r.ResponseWriter.(http.Flusher); ok {
		f.Flush()
	}
}

func (r *statusRecorder) Unwrap() http.ResponseWriter {
	return r.ResponseWriter
}

// MetricsMiddleware records http_requests_total and
// http_request_duration_seconds for every request.
func MetricsMiddleware(sc *ServerContext, next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		rec := &statusRecorder{ResponseWriter: w}
		next.ServeHTTP(rec, r)

		status := rec.status
		if status == 0 {
			status = http.StatusOK
		}
		path := r.URL.Path
		if !knownPaths[path] {
			path = "other"
		}
		sc.Metrics().RecordHTTPRequest(r.Context(), r.Method, path, status, time.Since(start))
	})
}
