package services

import (
	"context"
	"errors"
	"strings"

	"github.com/BerylCAtieno/processos-api/internal/models"
	"github.com/BerylCAtieno/processos-api/internal/repository"
	"github.com/BerylCAtieno/processos-api/internal/utils"
)

type CaseService interface {
	CreateCase(ctx context.Context, req *models.CreateCaseRequest) (*models.CreateCaseResponse, error)
	GetCase(ctx context.Context, code string) (*models.CaseDetailResponse, error)
}

type caseService struct {
	cases  repository.CaseRepository
	docs   repository.DocumentRepository
	logger *utils.Logger
}

func NewCaseService(cases repository.CaseRepository, docs repository.DocumentRepository, logger *utils.Logger) CaseService {
	return &caseService{
		cases:  cases,
		docs:   docs,
		logger: logger,
	}
}

func (s *caseService) CreateCase(ctx context.Context, req *models.CreateCaseRequest) (*models.CreateCaseResponse, error) {
	class := strings.TrimSpace(req.Class)
	origin := strings.TrimSpace(req.Origin)
	if class == "" || origin == "" || req.Number == nil || *req.Number < 0 {
		return nil, utils.NewBadRequestError(msgInvalidPayload)
	}

	code := models.CaseCode(class, *req.Number)

	existing, err := s.cases.GetByCode(ctx, code)
	if err != nil {
		s.logger.Error("Failed to look up case", "error", err, "code", code)
		return nil, utils.WrapInternalError(msgRetrieveFailed, err)
	}
	if existing != nil {
		return nil, utils.NewBadRequestError(msgCaseExists)
	}

	c := &models.Case{
		Class:  class,
		Number: *req.Number,
		Origin: origin,
		Code:   code,
	}

	// the unique index still catches a concurrent insert of the same code
	if err := s.cases.Create(ctx, c); err != nil {
		if errors.Is(err, repository.ErrAlreadyExists) {
			return nil, utils.NewBadRequestError(msgCaseExists)
		}
		s.logger.Error("Failed to save case", "error", err, "code", code)
		return nil, utils.WrapInternalError(msgSaveFailed, err)
	}

	s.logger.Info("Case created", "code", code, "origin", origin)

	return &models.CreateCaseResponse{
		Status: msgCaseCreated,
		Class:  c.Class,
		Number: c.Number,
		Code:   c.Code,
	}, nil
}

func (s *caseService) GetCase(ctx context.Context, code string) (*models.CaseDetailResponse, error) {
	c, err := s.cases.GetByCode(ctx, code)
	if err != nil {
		s.logger.Error("Failed to get case", "error", err, "code", code)
		return nil, utils.WrapInternalError(msgRetrieveFailed, err)
	}
	if c == nil {
		return nil, utils.NewNotFoundError(msgCaseNotFound)
	}

	docs, err := s.docs.ListByCase(ctx, c.ID)
	if err != nil {
		s.logger.Error("Failed to list documents", "error", err, "code", code)
		return nil, utils.WrapInternalError(msgRetrieveFailed, err)
	}

	summaries := make([]models.DocumentSummary, 0, len(docs))
	for i := range docs {
		summaries = append(summaries, docs[i].Summary())
	}

	return &models.CaseDetailResponse{
		Case: models.CaseDetail{
			Class:     c.Class,
			Number:    c.Number,
			Origin:    c.Origin,
			Code:      c.Code,
			Documents: summaries,
		},
	}, nil
}
