package monitoring

import (
	"net/http"
	"time"

	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/httpx"
	"github.com/obrunogonzaga/clinic-appointment-scheduling-v2/pkg/logger"
)

// HealthChecker verifies a dependency is reachable
type HealthChecker func() error

// HealthHandler returns a handler reporting service and store health
func HealthHandler(log *logger.Logger, checkStore HealthChecker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		response := map[string]interface{}{
			"status":    "healthy",
			"service":   "lab-scheduler",
			"timestamp": time.Now().UTC(),
		}

		if checkStore != nil {
			if err := checkStore(); err != nil {
				log.Errorf("Health check failed: %v", err)
				response["status"] = "unhealthy"
				response["store"] = err.Error()
				httpx.WriteJSON(w, log, http.StatusServiceUnavailable, response)
				return
			}
			response["store"] = "connected"
		}

		httpx.WriteJSON(w, log, http.StatusOK, response)
	}
}
