package monitoring

import (
	"net/http"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/mux"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
)

// responseRecorder captures the status code written by a handler
type responseRecorder struct {
	http.ResponseWriter
	statusCode int
}

func (r *responseRecorder) WriteHeader(code int) {
	r.statusCode = code
	r.ResponseWriter.WriteHeader(code)
}

// Middleware returns a mux middleware that assigns a request ID, logs the
// request, and records HTTP metrics.
func Middleware(log *logger.Logger) mux.MiddlewareFunc {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			requestID := r.Header.Get("X-Request-ID")
			if requestID == "" {
				requestID = uuid.New().String()
			}
			w.Header().Set("X-Request-ID", requestID)

			recorder := &responseRecorder{ResponseWriter: w, statusCode: http.StatusOK}
			next.ServeHTTP(recorder, r)

			duration := time.Since(start)
			endpoint := routeTemplate(r)

			RecordHTTPRequest(r.Method, endpoint, recorder.statusCode, duration)
			log.WithRequestID(requestID).WithFields(map[string]interface{}{
				"method":      r.Method,
				"path":        r.URL.Path,
				"status_code": recorder.statusCode,
				"duration_ms": duration.Milliseconds(),
			}).Info("HTTP request completed")
		})
	}
}

// routeTemplate returns the mux path template so metrics are not exploded by
// per-resource URLs. Falls back to the raw path for unmatched requests.
func routeTemplate(r *http.Request) string {
	if route := mux.CurrentRoute(r); route != nil {
		if template, err := route.GetPathTemplate(); err == nil {
			return template
		}
	}
	return r.URL.Path
}
