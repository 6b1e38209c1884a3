package httpserver

import (
	"context"
	"log/slog"
	"net/http"
	"time"

	"benefits-bff/pkg/platform/httputil"
)

const healthCheckTimeout = 2 * time.Second

// Check pings one backend.
type Check func(ctx context.Context) error

// Health answers 200 when every check passes and 503 otherwise. Check errors
// are logged; the body only names the failing backend.
func Health(logger *slog.Logger, checks map[string]Check) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), healthCheckTimeout)
		defer cancel()

		status := http.StatusOK
		result := map[string]string{"status": "ok"}
		for name, check := range checks {
			if err := check(ctx); err != nil {
				logger.WarnContext(ctx, "health check failed",
					"check", name,
					"error", err,
				)
				status = http.StatusServiceUnavailable
				result["status"] = "degraded"
				result[name] = "unavailable"
				continue
			}
			result[name] = "ok"
		}
		httputil.WriteJSON(w, status, result)
	}
}
