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
	ErrUserNotFound     = errors.New("user not found")
	ErrDuplicateUser    = errors.New("user already exists")
	ErrSessionNotFound  = errors.New("session not found")
)

// UserRepository отвечает за пользователей, профили и сессии.
type UserRepository struct {
	db *sqlx.DB
}

func NewUserRepository(db *sqlx.DB) *UserRepository {
	return &UserRepository{db: db}
}

// Create сохраняет пользователя и его профиль в одной транзакции.
func (r *UserRepository) Create(ctx context.Context, user *models.User, profile *models.Profile) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("user repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	query := `
		INSERT INTO users (id, email, username, password_hash, role, is_active)
		VALUES ($1, $2, $3, $4, $5, TRUE)
		RETURNING created_at, updated_at
	`
	if err = tx.QueryRowxContext(ctx, query,
		user.ID, user.Email, user.Username, user.PasswordHash, user.Role,
	).Scan(&user.CreatedAt, &user.UpdatedAt); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && pqErr.Code == "23505" {
			return ErrDuplicateUser
		}
		return fmt.Errorf("user repository: insert user %w", err)
	}

	if profile == nil {
		profile = &models.Profile{UserID: user.ID}
	}
	profile.UserID = user.ID
	if _, err = tx.ExecContext(ctx, `
		INSERT INTO profiles (user_id, full_name, first_name, last_name, phone, bio)
		VALUES ($1, $2, $3, $4, $5, $6)
	`, profile.UserID, profile.FullName, profile.FirstName, profile.LastName, profile.Phone, profile.Bio); err != nil {
		return fmt.Errorf("user repository: insert profile %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("user repository: commit %w", err)
	}
	return nil
}

// GetByID возвращает пользователя с профилем.
func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, email, username, password_hash, role, is_active, last_login_at, created_at, updated_at
		FROM users WHERE id = $1
	`
	if err := r.db.GetContext(ctx, &user, query, id); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by id %w", err)
	}

	var profile models.Profile
	if err := r.db.GetContext(ctx, &profile, `
		SELECT user_id, full_name, first_name, last_name, phone, bio, updated_at
		FROM profiles WHERE user_id = $1
	`, id); err == nil {
		user.Profile = &profile
	}

	return &user, nil
}

// GetByEmail возвращает пользователя по email.
func (r *UserRepository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	var user models.User
	query := `
		SELECT id, email, username, password_hash, role, is_active, last_login_at, created_at, updated_at
		FROM users WHERE email = $1
	`
	if err := r.db.GetContext(ctx, &user, query, email); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrUserNotFound
		}
		return nil, fmt.Errorf("user repository: get by email %w", err)
	}
	return &user, nil
}

// GetByIDs возвращает пользователей с профилями по набору идентификаторов
// одним запросом.
func (r *UserRepository) GetByIDs(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]models.User, error) {
	result := make(map[uuid.UUID]models.User, len(ids))
	if len(ids) == 0 {
		return result, nil
	}

	strIDs := make([]string, 0, len(ids))
	for _, id := range ids {
		strIDs = append(strIDs, id.String())
	}

	rows, err := r.db.QueryxContext(ctx, `
		SELECT u.id, u.email, u.username, u.password_hash, u.role, u.is_active,
		       u.last_login_at, u.created_at, u.updated_at,
		       p.full_name, p.first_name, p.last_name, p.phone
		FROM users u
		LEFT JOIN profiles p ON p.user_id = u.id
		WHERE u.id = ANY($1)
	`, pq.Array(strIDs))
	if err != nil {
		return nil, fmt.Errorf("user repository: get by ids %w", err)
	}
	defer rows.Close()

	for rows.Next() {
		var user models.User
		var profile models.Profile
		if err := rows.Scan(
			&user.ID, &user.Email, &user.Username, &user.PasswordHash, &user.Role,
			&user.IsActive, &user.LastLoginAt, &user.CreatedAt, &user.UpdatedAt,
			&profile.FullName, &profile.FirstName, &profile.LastName, &profile.Phone,
		); err != nil {
			return nil, fmt.Errorf("user repository: scan user %w", err)
		}
		profile.UserID = user.ID
		user.Profile = &profile
		result[user.ID] = user
	}
	return result, rows.Err()
}

// UpdateLastLogin отмечает время последнего входа.
func (r *UserRepository) UpdateLastLogin(ctx context.Context, id uuid.UUID) error {
	_, err := r.db.ExecContext(ctx,
		`UPDATE users SET last_login_at = NOW(), updated_at = NOW() WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("user repository: update last login %w", err)
	}
	return nil
}

// CreateSession сохраняет refresh-сессию.
func (r *UserRepository) CreateSession(ctx context.Context, session *models.Session) error {
	query := `
		INSERT INTO sessions (id, user_id, refresh_token, user_agent, ip_address, expires_at)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING created_at
	`
	if err := r.db.QueryRowxContext(ctx, query,
		session.ID, session.UserID, session.RefreshToken,
		session.UserAgent, session.IPAddress, session.ExpiresAt,
	).Scan(&session.CreatedAt); err != nil {
		return fmt.Errorf("user repository: create session %w", err)
	}
	return nil
}

// GetSessionByToken возвращает сессию по refresh токену.
func (r *UserRepository) GetSessionByToken(ctx context.Context, token string) (*models.Session, error) {
	var session models.Session
	query := `
		SELECT id, user_id, refresh_token, user_agent, ip_address, expires_at, created_at
		FROM sessions WHERE refresh_token = $1
	`
	if err := r.db.GetContext(ctx, &session, query, token); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, fmt.Errorf("user repository: get session %w", err)
	}
	return &session, nil
}

// DeleteSession удаляет сессию по refresh токену.
func (r *UserRepository) DeleteSession(ctx context.Context, token string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM sessions WHERE refresh_token = $1`, token)
	if err != nil {
		return fmt.Errorf("user repository: delete session %w", err)
	}
	if affected, err := res.RowsAffected(); err == nil && affected == 0 {
		return ErrSessionNotFound
	}
	return nil
}
