package router

import (
	"net/http"

	"github.com/BerylCAtieno/processos-api/internal/handlers"
	"github.com/BerylCAtieno/processos-api/internal/middleware"
	"github.com/BerylCAtieno/processos-api/internal/services"
	"github.com/BerylCAtieno/processos-api/internal/utils"

	"github.com/gorilla/mux"
)

type Deps struct {
	Cases       services.CaseService
	Documents   services.DocumentService
	DB          handlers.Pinger
	MaxFileSize int64
	Logger      *utils.Logger
}

func NewRouter(d Deps) http.Handler {
	r := mux.NewRouter()

	// Middlewares
	r.Use(middleware.Logger(d.Logger))
	r.Use(middleware.CORS())
	r.Use(middleware.Recovery(d.Logger))

	caseHandler := handlers.NewCaseHandler(d.Cases, d.Logger)
	docHandler := handlers.NewDocumentHandler(d.Documents, d.MaxFileSize, d.Logger)

	api := r.PathPrefix("/api").Subrouter()

	api.HandleFunc("/health", handlers.Health(d.DB, d.Logger)).Methods(http.MethodGet)

	// Case endpoints
	api.HandleFunc("/processos", caseHandler.CreateCase).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/processos/{code}", caseHandler.GetCase).Methods(http.MethodGet, http.MethodOptions)

	// Document endpoints
	api.HandleFunc("/processos/{code}/documentos", docHandler.UploadDocument).Methods(http.MethodPost, http.MethodOptions)
	api.HandleFunc("/processos/{code}/documentos/{id}", docHandler.GetDocument).Methods(http.MethodGet, http.MethodOptions)
	api.HandleFunc("/processos/{code}/documentos/{id}/status", docHandler.GetStatus).Methods(http.MethodGet, http.MethodOptions)

	return r
}
