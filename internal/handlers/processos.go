package handlers

import (
	"encoding/json"
	"net/http"

	"github.com/BerylCAtieno/processos-api/internal/models"
	"github.com/BerylCAtieno/processos-api/internal/services"
	"github.com/BerylCAtieno/processos-api/internal/utils"
	"github.com/gorilla/mux"
)

const maxJSONBody = 1 << 20

type CaseHandler struct {
	service services.CaseService
	logger  *utils.Logger
}

func NewCaseHandler(service services.CaseService, logger *utils.Logger) *CaseHandler {
	return &CaseHandler{
		service: service,
		logger:  logger,
	}
}

func (h *CaseHandler) CreateCase(w http.ResponseWriter, r *http.Request) {
	var req models.CreateCaseRequest

	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxJSONBody))
	if err := dec.Decode(&req); err != nil {
		respondError(w, r, h.logger, utils.NewBadRequestError("payload inválido"))
		return
	}

	resp, err := h.service.CreateCase(r.Context(), &req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, resp)
}

func (h *CaseHandler) GetCase(w http.ResponseWriter, r *http.Request) {
	resp, err := h.service.GetCase(r.Context(), mux.Vars(r)["code"])
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}
