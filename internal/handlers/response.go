package handlers

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/BerylCAtieno/processos-api/internal/middleware"
	"github.com/BerylCAtieno/processos-api/internal/utils"
)

func respondJSON(w http.ResponseWriter, logger *utils.Logger, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		logger.Error("Failed to encode JSON response", "error", err)
	}
}

func respondError(w http.ResponseWriter, r *http.Request, logger *utils.Logger, err error) {
	status := utils.StatusCode(err)
	message := "erro interno do servidor"

	var appErr *utils.AppError
	if errors.As(err, &appErr) {
		message = appErr.Message
	}

	if status >= http.StatusInternalServerError {
		logger.Error("Request error", "status", status, "error", err, "request_id", middleware.RequestID(r.Context()))
	} else {
		logger.Warn("Request rejected", "status", status, "error", message, "request_id", middleware.RequestID(r.Context()))
	}

	respondJSON(w, logger, status, map[string]string{"error": message})
}
