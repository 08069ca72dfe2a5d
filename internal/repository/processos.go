package repository

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/BerylCAtieno/processos-api/internal/models"
	"github.com/jmoiron/sqlx"
)

type CaseRepository interface {
	Create(ctx context.Context, c *models.Case) error
	GetByCode(ctx context.Context, code string) (*models.Case, error)
}

type caseRepository struct {
	db *sqlx.DB
}

func NewCaseRepository(db *sqlx.DB) CaseRepository {
	return &caseRepository{db: db}
}

// Create inserts c and fills in its ID. A duplicate code yields ErrAlreadyExists.
func (r *caseRepository) Create(ctx context.Context, c *models.Case) error {
	if c.CreatedAt.IsZero() {
		c.CreatedAt = time.Now().UTC()
	}

	query := r.db.Rebind(`
		INSERT INTO processos (classe, numero, orgao_origem, codigo, created_at)
		VALUES (?, ?, ?, ?, ?)
		RETURNING id
	`)

	err := r.db.QueryRowxContext(ctx, query,
		c.Class,
		c.Number,
		c.Origin,
		c.Code,
		c.CreatedAt,
	).Scan(&c.ID)

	if isUniqueViolation(err) {
		return ErrAlreadyExists
	}

	return err
}

func (r *caseRepository) GetByCode(ctx context.Context, code string) (*models.Case, error) {
	var c models.Case

	query := r.db.Rebind(`
		SELECT id, classe, numero, orgao_origem, codigo, created_at
		FROM processos
		WHERE codigo = ?
	`)

	err := r.db.GetContext(ctx, &c, query, code)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	return &c, nil
}
