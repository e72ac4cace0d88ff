package valueobject

import (
	"fmt"
	"strings"
	"time"
)

// QuoteErrorKind разновидности ошибок работы с предложением цены.
type QuoteErrorKind string

const (
	QuoteInvalidAmount   QuoteErrorKind = "INVALID_AMOUNT"
	QuoteMissingCurrency QuoteErrorKind = "MISSING_CURRENCY"
	QuoteWrongStatus     QuoteErrorKind = "WRONG_STATUS"
	QuoteNoActiveQuote   QuoteErrorKind = "NO_ACTIVE_QUOTE"
	QuoteExpired         QuoteErrorKind = "EXPIRED"
)

// QuoteError типизированная ошибка квоты.
type QuoteError struct {
	Kind    QuoteErrorKind
	Message string
}

func (e *QuoteError) Error() string {
	return fmt.Sprintf("quote: %s: %s", e.Kind, e.Message)
}

func NewQuoteError(kind QuoteErrorKind, message string) *QuoteError {
	return &QuoteError{Kind: kind, Message: message}
}

// Quote предложение цены по заявке. У заявки одновременно может быть не более
// одной квоты; отправка новой замещает старую и сбрасывает acceptedAt.
type Quote struct {
	Price         float64
	Currency      string
	Notes         *string
	SentAt        time.Time
	ExpiryAt      *time.Time
	AcceptedAt    *time.Time
	CustomerNotes *string
}

// NewQuote валидирует параметры и создаёт квоту с sentAt = now.
func NewQuote(amount float64, currency string, expiryDays *int, notes *string, now time.Time) (*Quote, error) {
	if amount <= 0 {
		return nil, NewQuoteError(QuoteInvalidAmount, "сумма предложения должна быть положительной")
	}
	currency = strings.TrimSpace(currency)
	if currency == "" {
		return nil, NewQuoteError(QuoteMissingCurrency, "валюта предложения обязательна")
	}

	q := &Quote{
		Price:    amount,
		Currency: strings.ToUpper(currency),
		Notes:    notes,
		SentAt:   now,
	}
	if expiryDays != nil {
		expiry := now.Add(time.Duration(*expiryDays) * 24 * time.Hour)
		q.ExpiryAt = &expiry
	}
	return q, nil
}

// IsExpired сообщает, истекла ли квота к моменту now. Квота без срока не истекает.
func (q *Quote) IsExpired(now time.Time) bool {
	return q.ExpiryAt != nil && now.After(*q.ExpiryAt)
}

// Accept отмечает квоту принятой.
func (q *Quote) Accept(now time.Time) error {
	if q.IsExpired(now) {
		return NewQuoteError(QuoteExpired, "срок действия предложения истёк")
	}
	q.AcceptedAt = &now
	return nil
}
