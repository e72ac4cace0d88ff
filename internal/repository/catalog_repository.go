package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/testhub-backend/internal/models"
)

// CatalogRepository отвечает за справочник статусов жизненного цикла.
type CatalogRepository struct {
	db *sqlx.DB
}

func NewCatalogRepository(db *sqlx.DB) *CatalogRepository {
	return &CatalogRepository{db: db}
}

// ListStatusDefinitions возвращает все определения статусов.
func (r *CatalogRepository) ListStatusDefinitions(ctx context.Context) ([]models.StatusDefinition, error) {
	var defs []models.StatusDefinition
	err := r.db.SelectContext(ctx, &defs, `
		SELECT code, label, description, progress_weight, terminal
		FROM status_definitions ORDER BY progress_weight, code
	`)
	if err != nil {
		return nil, fmt.Errorf("catalog repository: list status definitions %w", err)
	}
	return defs, nil
}
