package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/BerylCAtieno/processos-api/internal/utils"
)

// Pinger is satisfied by *sqlx.DB.
type Pinger interface {
	PingContext(ctx context.Context) error
}

func Health(db Pinger, logger *utils.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()

		if err := db.PingContext(ctx); err != nil {
			logger.Error("Health check failed", "error", err)
			respondJSON(w, logger, http.StatusServiceUnavailable, map[string]string{"status": "unhealthy"})
			return
		}

		respondJSON(w, logger, http.StatusOK, map[string]string{"status": "healthy"})
	}
}
