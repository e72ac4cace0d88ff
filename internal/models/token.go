package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы токен-транзакций
const (
	TokenTransactionDeposit    = "deposit"
	TokenTransactionSubmission = "submission"
	TokenTransactionRefund     = "refund"
)

// TokenBalance представляет баланс токенов пользователя.
type TokenBalance struct {
	UserID    uuid.UUID `db:"user_id" json:"user_id"`
	Remaining int       `db:"remaining" json:"remaining"`
	Total     int       `db:"total" json:"total"`
	PlanType  string    `db:"plan_type" json:"plan_type"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`
}

// TokenTransaction запись о движении токенов.
type TokenTransaction struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	RequestID *uuid.UUID `db:"request_id" json:"request_id,omitempty"`
	Type      string     `db:"type" json:"type"`
	Amount    int        `db:"amount" json:"amount"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
