package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"

	"github.com/ignatzorin/testhub-backend/internal/models"
)

var (
	ErrArchiveNotFound = errors.New("archive file not found")
)

// ArchiveRepository отвечает за метаданные загруженных архивов.
type ArchiveRepository struct {
	db *sqlx.DB
}

func NewArchiveRepository(db *sqlx.DB) *ArchiveRepository {
	return &ArchiveRepository{db: db}
}

// Create сохраняет метаданные архива.
func (r *ArchiveRepository) Create(ctx context.Context, file *models.ArchiveFile) error {
	query := `
		INSERT INTO archive_files (id, user_id, file_path, file_type, file_size)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		file.ID, file.UserID, file.FilePath, file.FileType, file.FileSize,
	).Scan(&file.CreatedAt); err != nil {
		return fmt.Errorf("archive repository: insert %w", err)
	}
	return nil
}

// GetByID возвращает метаданные архива.
func (r *ArchiveRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.ArchiveFile, error) {
	var file models.ArchiveFile
	query := `
		SELECT id, user_id, file_path, file_type, file_size, created_at
		FROM archive_files WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &file, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrArchiveNotFound
		}
		return nil, fmt.Errorf("archive repository: get by id %w", err)
	}
	return &file, nil
}
