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
	ErrBalanceNotFound    = errors.New("token balance not found")
	ErrInsufficientTokens = errors.New("insufficient tokens")
)

// TokenRepository отвечает за балансы токенов и их движение.
type TokenRepository struct {
	db *sqlx.DB
}

func NewTokenRepository(db *sqlx.DB) *TokenRepository {
	return &TokenRepository{db: db}
}

// GetBalance возвращает баланс пользователя.
func (r *TokenRepository) GetBalance(ctx context.Context, userID uuid.UUID) (*models.TokenBalance, error) {
	var balance models.TokenBalance
	query := `
		SELECT user_id, remaining, total, plan_type, updated_at
		FROM token_balances WHERE user_id = $1
	`
	if err := r.db.GetContext(ctx, &balance, query, userID); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrBalanceNotFound
		}
		return nil, fmt.Errorf("token repository: get balance %w", err)
	}
	return &balance, nil
}

// InitBalance создаёт стартовый баланс нового пользователя.
func (r *TokenRepository) InitBalance(ctx context.Context, userID uuid.UUID, tokens int, planType string) error {
	_, err := r.db.ExecContext(ctx, `
		INSERT INTO token_balances (user_id, remaining, total, plan_type)
		VALUES ($1, $2, $2, $3)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, tokens, planType)
	if err != nil {
		return fmt.Errorf("token repository: init balance %w", err)
	}
	return nil
}

// Debit атомарно списывает токены. Условие remaining >= amount в самом UPDATE
// исключает уход баланса в минус при конкурентных подачах заявок.
func (r *TokenRepository) Debit(ctx context.Context, userID uuid.UUID, amount int, requestID uuid.UUID) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("token repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	res, err := tx.ExecContext(ctx, `
		UPDATE token_balances
		SET remaining = remaining - $1, updated_at = NOW()
		WHERE user_id = $2 AND remaining >= $1
	`, amount, userID)
	if err != nil {
		return fmt.Errorf("token repository: debit %w", err)
	}
	if affected, _ := res.RowsAffected(); affected == 0 {
		err = ErrInsufficientTokens
		return err
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO token_transactions (id, user_id, request_id, type, amount)
		VALUES ($1, $2, $3, $4, $5)
	`, uuid.New(), userID, requestID, models.TokenTransactionSubmission, amount); err != nil {
		return fmt.Errorf("token repository: record transaction %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("token repository: commit %w", err)
	}
	return nil
}

// Deposit пополняет баланс.
func (r *TokenRepository) Deposit(ctx context.Context, userID uuid.UUID, amount int) error {
	tx, err := r.db.BeginTxx(ctx, &sql.TxOptions{})
	if err != nil {
		return fmt.Errorf("token repository: begin tx %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.ExecContext(ctx, `
		UPDATE token_balances
		SET remaining = remaining + $1, total = total + $1, updated_at = NOW()
		WHERE user_id = $2
	`, amount, userID); err != nil {
		return fmt.Errorf("token repository: deposit %w", err)
	}

	if _, err = tx.ExecContext(ctx, `
		INSERT INTO token_transactions (id, user_id, type, amount)
		VALUES ($1, $2, $3, $4)
	`, uuid.New(), userID, models.TokenTransactionDeposit, amount); err != nil {
		return fmt.Errorf("token repository: record transaction %w", err)
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("token repository: commit %w", err)
	}
	return nil
}

// ListTransactions возвращает историю движения токенов пользователя.
func (r *TokenRepository) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TokenTransaction, error) {
	var txs []models.TokenTransaction
	query := `
		SELECT id, user_id, request_id, type, amount, created_at
		FROM token_transactions
		WHERE user_id = $1 ORDER BY created_at DESC LIMIT $2 OFFSET $3
	`
	if err := r.db.SelectContext(ctx, &txs, query, userID, limit, offset); err != nil {
		return nil, fmt.Errorf("token repository: list transactions %w", err)
	}
	return txs, nil
}
