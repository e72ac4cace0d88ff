package repository

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
	domainrepo "github.com/ignatzorin/testhub-backend/internal/domain/repository"
	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
	"github.com/ignatzorin/testhub-backend/internal/models"
)

// Ошибки уровня репозитория.
var (
	ErrRequestNotFound = errors.New("testing request not found")
)

const requestColumns = `
	id, customer_id, title, description, product_type, status,
	requested_token_fee, desired_deadline, reference_url, archive_id,
	assigned_tester_id, quote_price, quote_currency, quote_notes,
	quote_sent_at, quote_expiry_at, quote_accepted_at, quote_customer_notes,
	version, created_at, updated_at
`

// RequestRepository отвечает за хранение заявок на тестирование и их журналов.
// Реализует domain/repository.RequestRepository: Update выполняет атомарный
// compare-and-swap по колонке version.
type RequestRepository struct {
	db *sqlx.DB
}

// NewRequestRepository создаёт новый экземпляр.
func NewRequestRepository(db *sqlx.DB) *RequestRepository {
	return &RequestRepository{db: db}
}

// Create сохраняет заявку и её scope в одной транзакции.
func (r *RequestRepository) Create(ctx context.Context, req *entity.TestingRequest) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("request repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO testing_requests (
			id, customer_id, title, description, product_type, status,
			requested_token_fee, desired_deadline, reference_url, archive_id, version
		)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11)
		RETURNING created_at, updated_at
	`
	if err = tx.QueryRowxContext(
		ctx,
		query,
		req.ID,
		req.CustomerID,
		req.Title,
		req.Description,
		req.ProductType,
		string(req.Status),
		req.RequestedTokenFee,
		req.DesiredDeadline,
		req.ReferenceURL,
		req.ArchiveID,
		req.Version,
	).Scan(&req.CreatedAt, &req.UpdatedAt); err != nil {
		return fmt.Errorf("request repository: insert request %w", err)
	}

	if len(req.Scope) > 0 {
		// Batch INSERT для scope (устранение N+1)
		scopeQuery := `INSERT INTO testing_scope_items (id, request_id, type, tokens) VALUES `
		scopeValues := make([]interface{}, 0, len(req.Scope)*4)

		for i, item := range req.Scope {
			if i > 0 {
				scopeQuery += ", "
			}
			scopeQuery += fmt.Sprintf("($%d, $%d, $%d, $%d)", i*4+1, i*4+2, i*4+3, i*4+4)
			scopeValues = append(scopeValues, item.ID, req.ID, item.Type, item.Tokens)
		}

		if _, err = tx.ExecContext(ctx, scopeQuery, scopeValues...); err != nil {
			return fmt.Errorf("request repository: batch insert scope %w", err)
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("request repository: commit %w", err)
	}

	return nil
}

// FindByID возвращает агрегат заявки вместе с её scope.
func (r *RequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TestingRequest, error) {
	var row models.TestingRequest
	query := `SELECT ` + requestColumns + ` FROM testing_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrRequestNotFound
		}
		return nil, fmt.Errorf("request repository: get by id %w", err)
	}

	var scope []models.TestingScopeItem
	if err := r.db.SelectContext(ctx, &scope,
		`SELECT id, request_id, type, tokens FROM testing_scope_items WHERE request_id = $1 ORDER BY type`, id); err != nil {
		return nil, fmt.Errorf("request repository: get scope %w", err)
	}
	row.Scope = scope

	return toEntity(&row), nil
}

// FindByCustomerID возвращает заявки заказчика.
func (r *RequestRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*entity.TestingRequest, error) {
	var rows []models.TestingRequest
	query := `SELECT ` + requestColumns + ` FROM testing_requests WHERE customer_id = $1 ORDER BY created_at DESC`
	if err := r.db.SelectContext(ctx, &rows, query, customerID); err != nil {
		return nil, fmt.Errorf("request repository: list by customer %w", err)
	}

	result := make([]*entity.TestingRequest, 0, len(rows))
	for i := range rows {
		result = append(result, toEntity(&rows[i]))
	}
	return result, nil
}

// List возвращает заявки по фильтру с общим количеством.
func (r *RequestRepository) List(ctx context.Context, filter domainrepo.RequestFilter) ([]*entity.TestingRequest, int, error) {
	rows, total, err := r.ListModels(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	result := make([]*entity.TestingRequest, 0, len(rows))
	for i := range rows {
		result = append(result, toEntity(&rows[i]))
	}
	return result, total, nil
}

// ListModels возвращает строки заявок по фильтру для построения view.
func (r *RequestRepository) ListModels(ctx context.Context, filter domainrepo.RequestFilter) ([]models.TestingRequest, int, error) {
	where := []string{"TRUE"}
	args := []interface{}{}

	if filter.Status != "" {
		args = append(args, strings.ToUpper(filter.Status))
		where = append(where, fmt.Sprintf("status = $%d", len(args)))
	}
	if filter.Bucket != "" && filter.Status == "" {
		catalog := valueobject.DefaultStatusCatalog()
		codes := []string{}
		for _, code := range valueobject.KnownStatuses() {
			if catalog.DisplayBucket(code) == strings.ToLower(filter.Bucket) {
				codes = append(codes, string(code))
			}
		}
		args = append(args, pq.Array(codes))
		where = append(where, fmt.Sprintf("status = ANY($%d)", len(args)))
	}
	if filter.CustomerID != nil {
		args = append(args, *filter.CustomerID)
		where = append(where, fmt.Sprintf("customer_id = $%d", len(args)))
	}
	if filter.TesterID != nil {
		args = append(args, *filter.TesterID)
		where = append(where, fmt.Sprintf("assigned_tester_id = $%d", len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		where = append(where, fmt.Sprintf("(title ILIKE $%d OR description ILIKE $%d)", len(args), len(args)))
	}

	whereClause := strings.Join(where, " AND ")

	var total int
	countQuery := `SELECT COUNT(*) FROM testing_requests WHERE ` + whereClause
	if err := r.db.GetContext(ctx, &total, countQuery, args...); err != nil {
		return nil, 0, fmt.Errorf("request repository: count %w", err)
	}

	limit := filter.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := filter.Offset
	if offset < 0 {
		offset = 0
	}
	args = append(args, limit, offset)

	query := fmt.Sprintf(`SELECT %s FROM testing_requests WHERE %s ORDER BY created_at DESC LIMIT $%d OFFSET $%d`,
		requestColumns, whereClause, len(args)-1, len(args))

	var rows []models.TestingRequest
	if err := r.db.SelectContext(ctx, &rows, query, args...); err != nil {
		return nil, 0, fmt.Errorf("request repository: list %w", err)
	}

	return rows, total, nil
}

// Update сохраняет агрегат при совпадении версии. Несовпадение версии означает
// конкурентную мутацию и возвращается как ErrVersionConflict.
func (r *RequestRepository) Update(ctx context.Context, req *entity.TestingRequest) error {
	row := fromEntity(req)

	query := `
		UPDATE testing_requests
		SET status = $1,
		    assigned_tester_id = $2,
		    quote_price = $3,
		    quote_currency = $4,
		    quote_notes = $5,
		    quote_sent_at = $6,
		    quote_expiry_at = $7,
		    quote_accepted_at = $8,
		    quote_customer_notes = $9,
		    version = version + 1,
		    updated_at = NOW()
		WHERE id = $10 AND version = $11
		RETURNING version, updated_at
	`

	var version int
	var updatedAt time.Time
	err := r.db.QueryRowxContext(
		ctx,
		query,
		row.Status,
		row.AssignedTesterID,
		row.QuotePrice,
		row.QuoteCurrency,
		row.QuoteNotes,
		row.QuoteSentAt,
		row.QuoteExpiryAt,
		row.QuoteAcceptedAt,
		row.QuoteCustomerNotes,
		req.ID,
		req.Version,
	).Scan(&version, &updatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			// Либо заявки нет, либо версия устарела
			var exists bool
			if checkErr := r.db.GetContext(ctx, &exists,
				`SELECT EXISTS(SELECT 1 FROM testing_requests WHERE id = $1)`, req.ID); checkErr == nil && exists {
				return domainrepo.ErrVersionConflict
			}
			return ErrRequestNotFound
		}
		return fmt.Errorf("request repository: update %w", err)
	}

	req.Version = version
	req.UpdatedAt = updatedAt
	return nil
}

// AppendUpdate добавляет событие в журнал обновлений заявки.
func (r *RequestRepository) AppendUpdate(ctx context.Context, update *entity.Update) error {
	query := `
		INSERT INTO testing_updates (id, request_id, tester_id, status, note)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		update.ID, update.RequestID, update.TesterID, string(update.Status), update.Note,
	).Scan(&update.CreatedAt); err != nil {
		return fmt.Errorf("request repository: append update %w", err)
	}
	return nil
}

// FindUpdates возвращает журнал обновлений заявки в порядке создания.
func (r *RequestRepository) FindUpdates(ctx context.Context, requestID uuid.UUID) ([]entity.Update, error) {
	rows, err := r.ListUpdates(ctx, requestID)
	if err != nil {
		return nil, err
	}

	result := make([]entity.Update, 0, len(rows))
	for _, row := range rows {
		result = append(result, entity.Update{
			ID:        row.ID,
			RequestID: row.RequestID,
			TesterID:  row.TesterID,
			Status:    valueobject.StatusCode(row.Status),
			Note:      row.Note,
			CreatedAt: row.CreatedAt,
		})
	}
	return result, nil
}

// ListUpdates возвращает строки журнала обновлений заявки.
func (r *RequestRepository) ListUpdates(ctx context.Context, requestID uuid.UUID) ([]models.TestingUpdate, error) {
	var rows []models.TestingUpdate
	query := `
		SELECT id, request_id, tester_id, status, note, created_at
		FROM testing_updates WHERE request_id = $1 ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &rows, query, requestID); err != nil {
		return nil, fmt.Errorf("request repository: list updates %w", err)
	}
	return rows, nil
}

// ListUpdatesForRequests возвращает журналы обновлений сразу для набора заявок
// одним запросом (для списочных view).
func (r *RequestRepository) ListUpdatesForRequests(ctx context.Context, requestIDs []uuid.UUID) (map[uuid.UUID][]models.TestingUpdate, error) {
	if len(requestIDs) == 0 {
		return map[uuid.UUID][]models.TestingUpdate{}, nil
	}

	ids := make([]string, 0, len(requestIDs))
	for _, id := range requestIDs {
		ids = append(ids, id.String())
	}

	var rows []models.TestingUpdate
	query := `
		SELECT id, request_id, tester_id, status, note, created_at
		FROM testing_updates WHERE request_id = ANY($1) ORDER BY created_at
	`
	if err := r.db.SelectContext(ctx, &rows, query, pq.Array(ids)); err != nil {
		return nil, fmt.Errorf("request repository: list updates batch %w", err)
	}

	result := make(map[uuid.UUID][]models.TestingUpdate, len(requestIDs))
	for _, row := range rows {
		result[row.RequestID] = append(result[row.RequestID], row)
	}
	return result, nil
}

// GetModelWithDetails возвращает строку заявки вместе со scope, журналом
// обновлений и тестовыми логами для детального view.
func (r *RequestRepository) GetModelWithDetails(ctx context.Context, id uuid.UUID) (*models.TestingRequest, []models.TestingUpdate, []models.TestLog, error) {
	var row models.TestingRequest
	query := `SELECT ` + requestColumns + ` FROM testing_requests WHERE id = $1`
	if err := r.db.GetContext(ctx, &row, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil, nil, ErrRequestNotFound
		}
		return nil, nil, nil, fmt.Errorf("request repository: get by id %w", err)
	}

	var scope []models.TestingScopeItem
	if err := r.db.SelectContext(ctx, &scope,
		`SELECT id, request_id, type, tokens FROM testing_scope_items WHERE request_id = $1 ORDER BY type`, id); err != nil {
		return nil, nil, nil, fmt.Errorf("request repository: get scope %w", err)
	}
	row.Scope = scope

	updates, err := r.ListUpdates(ctx, id)
	if err != nil {
		return nil, nil, nil, err
	}

	var logs []models.TestLog
	if err := r.db.SelectContext(ctx, &logs,
		`SELECT id, request_id, level, message, created_at FROM test_logs WHERE request_id = $1 ORDER BY created_at`, id); err != nil {
		return nil, nil, nil, fmt.Errorf("request repository: get logs %w", err)
	}

	return &row, updates, logs, nil
}

// CreateTestLog добавляет запись тестового лога.
func (r *RequestRepository) CreateTestLog(ctx context.Context, log *models.TestLog) error {
	query := `
		INSERT INTO test_logs (id, request_id, level, message)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		log.ID, log.RequestID, log.Level, log.Message,
	).Scan(&log.CreatedAt); err != nil {
		return fmt.Errorf("request repository: create test log %w", err)
	}
	return nil
}

// CountByStatus возвращает количество заявок в разрезе статусов.
func (r *RequestRepository) CountByStatus(ctx context.Context) (map[string]int, error) {
	rows, err := r.db.QueryxContext(ctx, `SELECT status, COUNT(*) FROM testing_requests GROUP BY status`)
	if err != nil {
		return nil, fmt.Errorf("request repository: count by status %w", err)
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var status string
		var count int
		if err := rows.Scan(&status, &count); err != nil {
			return nil, fmt.Errorf("request repository: scan status count %w", err)
		}
		result[status] = count
	}
	return result, rows.Err()
}

// toEntity собирает агрегат из строки базы.
func toEntity(row *models.TestingRequest) *entity.TestingRequest {
	req := &entity.TestingRequest{
		ID:                row.ID,
		CustomerID:        row.CustomerID,
		Title:             row.Title,
		Description:       row.Description,
		ProductType:       row.ProductType,
		Status:            valueobject.StatusCode(row.Status),
		RequestedTokenFee: row.RequestedTokenFee,
		DesiredDeadline:   row.DesiredDeadline,
		ReferenceURL:      row.ReferenceURL,
		ArchiveID:         row.ArchiveID,
		AssignedTesterID:  row.AssignedTesterID,
		Version:           row.Version,
		CreatedAt:         row.CreatedAt,
		UpdatedAt:         row.UpdatedAt,
	}

	if row.QuoteSentAt != nil && row.QuotePrice != nil && row.QuoteCurrency != nil {
		req.Quote = &valueobject.Quote{
			Price:         *row.QuotePrice,
			Currency:      *row.QuoteCurrency,
			Notes:         row.QuoteNotes,
			SentAt:        *row.QuoteSentAt,
			ExpiryAt:      row.QuoteExpiryAt,
			AcceptedAt:    row.QuoteAcceptedAt,
			CustomerNotes: row.QuoteCustomerNotes,
		}
	}

	for _, item := range row.Scope {
		req.Scope = append(req.Scope, entity.ScopeItem{
			ID:        item.ID,
			RequestID: item.RequestID,
			Type:      item.Type,
			Tokens:    item.Tokens,
		})
	}

	return req
}

// fromEntity раскладывает агрегат обратно в строку базы.
func fromEntity(req *entity.TestingRequest) *models.TestingRequest {
	row := &models.TestingRequest{
		ID:                req.ID,
		CustomerID:        req.CustomerID,
		Title:             req.Title,
		Description:       req.Description,
		ProductType:       req.ProductType,
		Status:            string(req.Status),
		RequestedTokenFee: req.RequestedTokenFee,
		DesiredDeadline:   req.DesiredDeadline,
		ReferenceURL:      req.ReferenceURL,
		ArchiveID:         req.ArchiveID,
		AssignedTesterID:  req.AssignedTesterID,
		Version:           req.Version,
		CreatedAt:         req.CreatedAt,
		UpdatedAt:         req.UpdatedAt,
	}

	if q := req.Quote; q != nil {
		row.QuotePrice = &q.Price
		row.QuoteCurrency = &q.Currency
		row.QuoteNotes = q.Notes
		sentAt := q.SentAt
		row.QuoteSentAt = &sentAt
		row.QuoteExpiryAt = q.ExpiryAt
		row.QuoteAcceptedAt = q.AcceptedAt
		row.QuoteCustomerNotes = q.CustomerNotes
	}

	return row
}
