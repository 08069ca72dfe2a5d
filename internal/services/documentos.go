package services

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/BerylCAtieno/processos-api/internal/models"
	"github.com/BerylCAtieno/processos-api/internal/queue"
	"github.com/BerylCAtieno/processos-api/internal/repository"
	"github.com/BerylCAtieno/processos-api/internal/storage"
	"github.com/BerylCAtieno/processos-api/internal/utils"
)

type DocumentService interface {
	UploadDocument(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error)
	GetDocument(ctx context.Context, caseCode string, id int64) (*models.Document, error)
	GetStatus(ctx context.Context, caseCode string, id int64) (*models.StatusResponse, error)
}

type documentService struct {
	cases     repository.CaseRepository
	docs      repository.DocumentRepository
	storage   storage.Storage
	publisher queue.Publisher
	logger    *utils.Logger
}

func NewDocumentService(
	cases repository.CaseRepository,
	docs repository.DocumentRepository,
	store storage.Storage,
	publisher queue.Publisher,
	logger *utils.Logger,
) DocumentService {
	return &documentService{
		cases:     cases,
		docs:      docs,
		storage:   store,
		publisher: publisher,
		logger:    logger,
	}
}

// UploadDocument stores the file, commits a NOT_STARTED row and only then
// publishes the extraction message, so a consumer always finds the row.
func (s *documentService) UploadDocument(ctx context.Context, req *models.UploadRequest) (*models.UploadResponse, error) {
	c, err := s.findCase(ctx, req.CaseCode)
	if err != nil {
		return nil, err
	}

	if len(req.File) == 0 {
		return nil, utils.NewBadRequestError(msgEmptyFile)
	}

	checksum := utils.Checksum(req.File)
	filename := cleanFilename(req.Filename)
	key := fmt.Sprintf("%s/%s_%s", c.Code, utils.GenerateID(), filename)

	location, err := s.storage.Upload(ctx, key, req.File, req.ContentType)
	if err != nil {
		s.logger.Error("Failed to store upload", "error", err, "key", key)
		return nil, utils.WrapInternalError(msgStoreFailed, err)
	}

	doc := &models.Document{
		CaseID:      c.ID,
		Filename:    filename,
		ContentType: req.ContentType,
		FileSize:    int64(len(req.File)),
		Checksum:    checksum,
		Path:        location,
	}

	if err := s.docs.Create(ctx, doc); err != nil {
		s.logger.Error("Failed to save document to database", "error", err, "code", c.Code)
		if delErr := s.storage.Delete(ctx, location); delErr != nil {
			s.logger.Warn("Failed to clean up stored upload", "error", delErr, "path", location)
		}
		return nil, utils.WrapInternalError(msgSaveFailed, err)
	}

	if err := s.publisher.Publish(ctx, queue.Message{DocumentID: doc.ID, Path: location}); err != nil {
		// the row is committed; it stays NOT_STARTED until republished
		s.logger.Error("Failed to publish extraction message",
			"error", err,
			"document_id", doc.ID,
			"path", location)
		return nil, utils.WrapInternalError(msgQueueFailed, err)
	}

	s.logger.Info("Document uploaded",
		"document_id", doc.ID,
		"code", c.Code,
		"filename", filename,
		"checksum", checksum,
		"size", doc.FileSize)

	return &models.UploadResponse{
		Status:     msgDocumentCreated,
		Checksum:   checksum,
		DocumentID: doc.ID,
	}, nil
}

func (s *documentService) GetDocument(ctx context.Context, caseCode string, id int64) (*models.Document, error) {
	c, err := s.findCase(ctx, caseCode)
	if err != nil {
		return nil, err
	}

	doc, err := s.docs.GetForCase(ctx, c.ID, id)
	if err != nil {
		s.logger.Error("Failed to get document", "error", err, "code", caseCode, "document_id", id)
		return nil, utils.WrapInternalError(msgRetrieveFailed, err)
	}
	if doc == nil {
		return nil, utils.NewNotFoundError(msgDocumentNotFound)
	}

	return doc, nil
}

func (s *documentService) GetStatus(ctx context.Context, caseCode string, id int64) (*models.StatusResponse, error) {
	doc, err := s.GetDocument(ctx, caseCode, id)
	if err != nil {
		return nil, err
	}

	return &models.StatusResponse{
		Status:    doc.Status,
		CreatedAt: doc.CreatedAt,
		UpdatedAt: doc.UpdatedAt,
	}, nil
}

func (s *documentService) findCase(ctx context.Context, code string) (*models.Case, error) {
	c, err := s.cases.GetByCode(ctx, code)
	if err != nil {
		s.logger.Error("Failed to get case", "error", err, "code", code)
		return nil, utils.WrapInternalError(msgRetrieveFailed, err)
	}
	if c == nil {
		return nil, utils.NewNotFoundError(msgCaseNotFound)
	}
	return c, nil
}

// cleanFilename keeps only the base name of an uploaded file.
func cleanFilename(name string) string {
	name = filepath.Base(strings.ReplaceAll(strings.TrimSpace(name), `\`, "/"))
	if name == "." || name == "/" || name == "" {
		return "documento"
	}
	return name
}
