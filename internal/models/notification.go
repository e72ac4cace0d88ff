package models

import (
	"time"

	"github.com/google/uuid"
)

// Типы уведомлений
const (
	NotificationStatusChanged = "request.status_changed"
	NotificationQuoteSent     = "request.quote_sent"
	NotificationQuoteAccepted = "request.quote_accepted"
	NotificationClaimed       = "request.claimed"
	NotificationBugReported   = "request.bug_reported"
)

// Notification сохранённое уведомление пользователя. Доставка — забота клиента,
// который сам опрашивает список.
type Notification struct {
	ID        uuid.UUID  `db:"id" json:"id"`
	UserID    uuid.UUID  `db:"user_id" json:"user_id"`
	Type      string     `db:"type" json:"type"`
	Title     string     `db:"title" json:"title"`
	Body      string     `db:"body" json:"body"`
	RequestID *uuid.UUID `db:"request_id" json:"request_id,omitempty"`
	IsRead    bool       `db:"is_read" json:"is_read"`
	CreatedAt time.Time  `db:"created_at" json:"created_at"`
}
