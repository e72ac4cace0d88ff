package models

import (
	"time"

	"github.com/google/uuid"
)

// TestingRequest описывает заявку заказчика на тестирование продукта.
type TestingRequest struct {
	ID                uuid.UUID  `db:"id" json:"id"`
	CustomerID        uuid.UUID  `db:"customer_id" json:"customer_id"`
	Title             string     `db:"title" json:"title"`
	Description       string     `db:"description" json:"description"`
	ProductType       string     `db:"product_type" json:"product_type"`
	Status            string     `db:"status" json:"status"`
	RequestedTokenFee *int       `db:"requested_token_fee" json:"requested_token_fee,omitempty"`
	DesiredDeadline   *time.Time `db:"desired_deadline" json:"desired_deadline,omitempty"`
	ReferenceURL      *string    `db:"reference_url" json:"reference_url,omitempty"`
	ArchiveID         *uuid.UUID `db:"archive_id" json:"archive_id,omitempty"`
	AssignedTesterID  *uuid.UUID `db:"assigned_tester_id" json:"assigned_tester_id,omitempty"`

	// Активное предложение цены (quote). Присутствует не более одного.
	QuotePrice         *float64   `db:"quote_price" json:"quote_price,omitempty"`
	QuoteCurrency      *string    `db:"quote_currency" json:"quote_currency,omitempty"`
	QuoteNotes         *string    `db:"quote_notes" json:"quote_notes,omitempty"`
	QuoteSentAt        *time.Time `db:"quote_sent_at" json:"quote_sent_at,omitempty"`
	QuoteExpiryAt      *time.Time `db:"quote_expiry_at" json:"quote_expiry_at,omitempty"`
	QuoteAcceptedAt    *time.Time `db:"quote_accepted_at" json:"quote_accepted_at,omitempty"`
	QuoteCustomerNotes *string    `db:"quote_customer_notes" json:"quote_customer_notes,omitempty"`

	// Version используется для optimistic locking при конкурентных мутациях.
	Version   int       `db:"version" json:"-"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
	UpdatedAt time.Time `db:"updated_at" json:"updated_at"`

	Scope []TestingScopeItem `json:"scope,omitempty"`
}

// TestingScopeItem фиксирует выбранный при подаче заявки вид тестирования и его стоимость.
// Состав scope неизменяем после подачи заявки.
type TestingScopeItem struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RequestID uuid.UUID `db:"request_id" json:"request_id"`
	Type      string    `db:"type" json:"type"`
	Tokens    int       `db:"tokens" json:"tokens"`
}

// TestingUpdate событие хода работ по заявке. Только добавляется, никогда не изменяется.
type TestingUpdate struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	RequestID uuid.UUID  `db:"request_id" json:"request_id"`
	TesterID  *uuid.UUID `db:"tester_id" json:"tester_id,omitempty"`
	Status    string     `db:"status" json:"status"`
	Note      string     `db:"note" json:"note"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}

// TestLog запись технического лога тестирования.
type TestLog struct {
	ID        uuid.UUID `db:"id" json:"id"`
	RequestID uuid.UUID `db:"request_id" json:"request_id"`
	Level     string    `db:"level" json:"level"`
	Message   string    `db:"message" json:"message"`
	CreatedAt time.Time `db:"created_at" json:"created_at"`
}
