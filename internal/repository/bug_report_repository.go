package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/testhub-backend/internal/models"
)

var (
	ErrBugReportNotFound = errors.New("bug report not found")
)

// BugReportRepository отвечает за хранение баг-репортов и комментариев к ним.
type BugReportRepository struct {
	db *sqlx.DB
}

// NewBugReportRepository создаёт новый экземпляр.
func NewBugReportRepository(db *sqlx.DB) *BugReportRepository {
	return &BugReportRepository{db: db}
}

// Create сохраняет баг-репорт.
func (r *BugReportRepository) Create(ctx context.Context, report *models.BugReport) error {
	query := `
		INSERT INTO bug_reports (id, request_id, title, description, severity, status, tester_id)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		report.ID, report.RequestID, report.Title, report.Description,
		report.Severity, report.Status, report.TesterID,
	).Scan(&report.CreatedAt); err != nil {
		return fmt.Errorf("bug report repository: insert %w", err)
	}
	return nil
}

// GetByID возвращает баг-репорт с комментариями.
func (r *BugReportRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.BugReport, error) {
	var report models.BugReport
	query := `
		SELECT id, request_id, title, description, severity, status, tester_id, created_at
		FROM bug_reports WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &report, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBugReportNotFound
		}
		return nil, fmt.Errorf("bug report repository: get by id %w", err)
	}

	comments, err := r.ListComments(ctx, id)
	if err != nil {
		return nil, err
	}
	report.Comments = comments

	return &report, nil
}

// ListByRequestID возвращает баг-репорты заявки в порядке создания.
func (r *BugReportRepository) ListByRequestID(ctx context.Context, requestID uuid.UUID) ([]models.BugReport, error) {
	var reports []models.BugReport
	query := `
		SELECT id, request_id, title, description, severity, status, tester_id, created_at
		FROM bug_reports WHERE request_id = $1 ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &reports, query, requestID); err != nil {
		return nil, fmt.Errorf("bug report repository: list by request %w", err)
	}
	return reports, nil
}

// ListForRequests возвращает баг-репорты сразу для набора заявок одним запросом.
func (r *BugReportRepository) ListForRequests(ctx context.Context, requestIDs []uuid.UUID) (map[uuid.UUID][]models.BugReport, error) {
	if len(requestIDs) == 0 {
		return map[uuid.UUID][]models.BugReport{}, nil
	}

	ids := make([]string, 0, len(requestIDs))
	for _, id := range requestIDs {
		ids = append(ids, id.String())
	}

	var reports []models.BugReport
	query := `
		SELECT id, request_id, title, description, severity, status, tester_id, created_at
		FROM bug_reports WHERE request_id = ANY($1) ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &reports, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("bug report repository: list batch %w", err)
	}

	result := make(map[uuid.UUID][]models.BugReport, len(requestIDs))
	for _, report := range reports {
		result[report.RequestID] = append(result[report.RequestID], report)
	}
	return result, nil
}

// UpdateStatus изменяет статус баг-репорта.
func (r *BugReportRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE bug_reports SET status = $1 WHERE id = $2`, status, id)
	if err != nil {
		return fmt.Errorf("bug report repository: update status %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		return ErrBugReportNotFound
	}
	return nil
}

// AddComment добавляет комментарий к баг-репорту.
func (r *BugReportRepository) AddComment(ctx context.Context, comment *models.BugComment) error {
	query := `
		INSERT INTO bug_comments (id, bug_report_id, commenter_id, comment)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		comment.ID, comment.BugReportID, comment.CommenterID, comment.Comment,
	).Scan(&comment.CreatedAt); err != nil {
		return fmt.Errorf("bug report repository: add comment %w", err)
	}
	return nil
}

// ListComments возвращает комментарии баг-репорта в порядке создания.
func (r *BugReportRepository) ListComments(ctx context.Context, bugReportID uuid.UUID) ([]models.BugComment, error) {
	var comments []models.BugComment
	query := `
		SELECT id, bug_report_id, commenter_id, comment, created_at
		FROM bug_comments WHERE bug_report_id = $1 ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &comments, query, bugReportID); err != nil {
		return nil, fmt.Errorf("bug report repository: list comments %w", err)
	}
	return comments, nil
}

// CountOpenBySeverity возвращает количество открытых баг-репортов в разрезе severity.
func (r *BugReportRepository) CountOpenBySeverity(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `
		SELECT severity, COUNT(*)
		FROM bug_reports
		WHERE status NOT IN ('RESOLVED', 'CLOSED')
		GROUP BY severity
	`)
	if err != nil {
		return nil, fmt.Errorf("bug report repository: count by severity %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var severity string
		var count int
		if err := rows.Scan(&severity, &count); err != nil {
			return nil, fmt.Errorf("bug report repository: scan severity count %w", err)
		}
		result[severity] = count
	}
	return result, rows.Err()
}
