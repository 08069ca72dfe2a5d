package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/BerylCAtieno/processos-api/internal/models"
	"github.com/jmoiron/sqlx"
)

type DocumentRepository interface {
	Create(ctx context.Context, doc *models.Document) error
	GetByID(ctx context.Context, id int64) (*models.Document, error)
	GetForCase(ctx context.Context, caseID, id int64) (*models.Document, error)
	ListByCase(ctx context.Context, caseID int64) ([]models.Document, error)
	Transition(ctx context.Context, id int64, next models.ExtractionStatus, text *string) (bool, error)
}

type documentRepository struct {
	db *sqlx.DB
}

func NewDocumentRepository(db *sqlx.DB) DocumentRepository {
	return &documentRepository{db: db}
}

const documentColumns = `id, processo_id, filename, content_type, file_size, checksum, path, texto, status, created_at, updated_at`

// Create inserts doc in NOT_STARTED and fills in its ID.
func (r *documentRepository) Create(ctx context.Context, doc *models.Document) error {
	now := time.Now().UTC()
	doc.Status = models.StatusNotStarted
	doc.Text = nil
	doc.CreatedAt = now
	doc.UpdatedAt = now

	query := r.db.Rebind(`
		INSERT INTO documentos (processo_id, filename, content_type, file_size, checksum, path, status, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		RETURNING id
	`)

	return r.db.QueryRowxContext(ctx, query,
		doc.CaseID,
		doc.Filename,
		doc.ContentType,
		doc.FileSize,
		doc.Checksum,
		doc.Path,
		doc.Status,
		doc.CreatedAt,
		doc.UpdatedAt,
	).Scan(&doc.ID)
}

func (r *documentRepository) GetByID(ctx context.Context, id int64) (*models.Document, error) {
	query := r.db.Rebind(`SELECT ` + documentColumns + ` FROM documentos WHERE id = ?`)
	return r.getOne(ctx, query, id)
}

// GetForCase only finds the document when it belongs to caseID.
func (r *documentRepository) GetForCase(ctx context.Context, caseID, id int64) (*models.Document, error) {
	query := r.db.Rebind(`SELECT ` + documentColumns + ` FROM documentos WHERE id = ? AND processo_id = ?`)
	return r.getOne(ctx, query, id, caseID)
}

func (r *documentRepository) getOne(ctx context.Context, query string, args ...any) (*models.Document, error) {
	var doc models.Document

	err := r.db.GetContext(ctx, &doc, query, args...)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &doc, nil
}

func (r *documentRepository) ListByCase(ctx context.Context, caseID int64) ([]models.Document, error) {
	docs := []models.Document{}

	query := r.db.Rebind(`SELECT ` + documentColumns + ` FROM documentos WHERE processo_id = ? ORDER BY id`)
	if err := r.db.SelectContext(ctx, &docs, query, caseID); err != nil {
		return nil, err
	}

	return docs, nil
}

// Transition moves document id to next if its current status is one of
// next.Predecessors(). texto is written only for DONE and cleared otherwise.
// It reports false when the row is missing or in a state next cannot follow.
func (r *documentRepository) Transition(ctx context.Context, id int64, next models.ExtractionStatus, text *string) (bool, error) {
	preds := next.Predecessors()
	if len(preds) == 0 {
		return false, fmt.Errorf("status %q cannot be entered", next)
	}
	if next == models.StatusDone && text == nil {
		return false, fmt.Errorf("status %s requires extracted text", next)
	}
	if next != models.StatusDone {
		text = nil
	}

	query, args, err := sqlx.In(`
		UPDATE documentos
		SET status = ?, texto = ?, updated_at = ?
		WHERE id = ? AND status IN (?)
	`, next, text, time.Now().UTC(), id, preds)
	if err != nil {
		return false, err
	}

	res, err := r.db.ExecContext(ctx, r.db.Rebind(query), args...)
	if err != nil {
		return false, err
	}

	n, err := res.RowsAffected()
	if err != nil {
		return false, err
	}

	return n == 1, nil
}
