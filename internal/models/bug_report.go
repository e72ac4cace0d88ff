package models

import (
	"time"

	"github.com/google/uuid"
)

// BugReport описывает дефект, найденный в рамках заявки на тестирование.
type BugReport struct {
	ID          uuid.UUID  `db:"id" json:"id"`
	RequestID   uuid.UUID  `db:"request_id" json:"request_id"`
	Title       string     `db:"title" json:"title"`
	Description string     `db:"description" json:"description"`
	Severity    string     `db:"severity" json:"severity"`
	Status      string     `db:"status" json:"status"`
	TesterID    *uuid.UUID `db:"tester_id" json:"tester_id,omitempty"`
	CreatedAt   time.Time  `db:"created_at" json:"created_at"`

	Comments []BugComment `json:"comments,omitempty"`
}

// BugComment комментарий к баг-репорту.
type BugComment struct {
	ID          uuid.UUID `db:"id" json:"id"`
	BugReportID uuid.UUID `db:"bug_report_id" json:"bug_report_id"`
	CommenterID uuid.UUID `db:"commenter_id" json:"commenter_id"`
	Comment     string    `db:"comment" json:"comment"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}
