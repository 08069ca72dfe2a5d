package handlers

import (
	"errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/BerylCAtieno/processos-api/internal/models"
	"github.com/BerylCAtieno/processos-api/internal/services"
	"github.com/BerylCAtieno/processos-api/internal/utils"
	"github.com/gorilla/mux"
)

type DocumentHandler struct {
	service     services.DocumentService
	maxFileSize int64
	logger      *utils.Logger
}

func NewDocumentHandler(service services.DocumentService, maxFileSize int64, logger *utils.Logger) *DocumentHandler {
	return &DocumentHandler{
		service:     service,
		maxFileSize: maxFileSize,
		logger:      logger,
	}
}

func (h *DocumentHandler) UploadDocument(w http.ResponseWriter, r *http.Request) {
	tooLarge := utils.NewBadRequestError(fmt.Sprintf("arquivo excede o limite de %d bytes", h.maxFileSize))

	if r.ContentLength > h.maxFileSize+(1<<20) {
		respondError(w, r, h.logger, tooLarge)
		return
	}

	// leave room for the multipart framing around the file
	r.Body = http.MaxBytesReader(w, r.Body, h.maxFileSize+(1<<20))

	if err := r.ParseMultipartForm(h.maxFileSize); err != nil {
		var maxErr *http.MaxBytesError
		if errors.As(err, &maxErr) || strings.Contains(err.Error(), "request body too large") {
			respondError(w, r, h.logger, tooLarge)
			return
		}
		respondError(w, r, h.logger, utils.NewBadRequestError("formulário inválido"))
		return
	}
	defer r.MultipartForm.RemoveAll()

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, h.logger, utils.NewBadRequestError("arquivo não enviado"))
		return
	}
	defer file.Close()

	data, err := io.ReadAll(io.LimitReader(file, h.maxFileSize+1))
	if err != nil {
		respondError(w, r, h.logger, utils.WrapInternalError("falha ao ler arquivo", err))
		return
	}
	if int64(len(data)) > h.maxFileSize {
		respondError(w, r, h.logger, tooLarge)
		return
	}
	// emptiness is checked by the service after the case lookup

	req := &models.UploadRequest{
		CaseCode:    mux.Vars(r)["code"],
		File:        data,
		Filename:    header.Filename,
		ContentType: contentTypeOf(header.Filename, header.Header.Get("Content-Type"), data),
	}

	resp, err := h.service.UploadDocument(r.Context(), req)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusCreated, resp)
}

func (h *DocumentHandler) GetDocument(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, ok := documentID(vars["id"])
	if !ok {
		respondError(w, r, h.logger, utils.NewNotFoundError("documento não encontrado"))
		return
	}

	doc, err := h.service.GetDocument(r.Context(), vars["code"], id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, doc)
}

func (h *DocumentHandler) GetStatus(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)
	id, ok := documentID(vars["id"])
	if !ok {
		respondError(w, r, h.logger, utils.NewNotFoundError("documento não encontrado"))
		return
	}

	resp, err := h.service.GetStatus(r.Context(), vars["code"], id)
	if err != nil {
		respondError(w, r, h.logger, err)
		return
	}

	respondJSON(w, h.logger, http.StatusOK, resp)
}

func documentID(raw string) (int64, bool) {
	id, err := strconv.ParseInt(raw, 10, 64)
	return id, err == nil && id > 0
}

// contentTypeOf prefers the file extension, then the part header, then sniffing.
func contentTypeOf(filename, header string, data []byte) string {
	if ct := mime.TypeByExtension(strings.ToLower(filepath.Ext(filename))); ct != "" {
		return ct
	}
	if header != "" && header != "application/octet-stream" {
		return header
	}
	return http.DetectContentType(data)
}
