package entity

import (
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
	"github.com/ignatzorin/testhub-backend/internal/pkg/apperror"
)

// ClaimErrorKind разновидности ошибок самоназначения тестировщика.
type ClaimErrorKind string

const (
	ClaimAlreadyAssigned ClaimErrorKind = "ALREADY_ASSIGNED"
	ClaimTerminal        ClaimErrorKind = "TERMINAL"
)

// ClaimError типизированная ошибка claim-операции.
type ClaimError struct {
	Kind    ClaimErrorKind
	Message string
}

func (e *ClaimError) Error() string {
	return fmt.Sprintf("claim: %s: %s", e.Kind, e.Message)
}

// TestingRequest агрегат заявки на тестирование. Владеет статусом, составом
// работ и квотой; все мутации проходят через методы агрегата.
type TestingRequest struct {
	ID                uuid.UUID
	CustomerID        uuid.UUID
	Title             string
	Description       string
	ProductType       string
	Status            valueobject.StatusCode
	RequestedTokenFee *int
	DesiredDeadline   *time.Time
	ReferenceURL      *string
	ArchiveID         *uuid.UUID
	AssignedTesterID  *uuid.UUID
	Quote             *valueobject.Quote
	Version           int
	CreatedAt         time.Time
	UpdatedAt         time.Time

	Scope   []ScopeItem
	Updates []Update
}

// ScopeItem выбранный вид тестирования с зафиксированной стоимостью в токенах.
// Состав scope неизменяем после подачи заявки.
type ScopeItem struct {
	ID        uuid.UUID
	RequestID uuid.UUID
	Type      string
	Tokens    int
}

// Update событие хода работ. Только добавляется.
type Update struct {
	ID        uuid.UUID
	RequestID uuid.UUID
	TesterID  *uuid.UUID
	Status    valueobject.StatusCode
	Note      string
	CreatedAt time.Time
}

// NewTestingRequest создаёт заявку в статусе NEW.
func NewTestingRequest(customerID uuid.UUID, title, description, productType string, scope []ScopeItem, tokenFee *int, deadline *time.Time) (*TestingRequest, error) {
	if title == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "название заявки обязательно")
	}
	if description == "" {
		return nil, apperror.New(apperror.ErrCodeValidation, "описание заявки обязательно")
	}
	if deadline != nil && deadline.Before(time.Now()) {
		return nil, apperror.New(apperror.ErrCodeValidation, "желаемый дедлайн не может быть в прошлом")
	}

	req := &TestingRequest{
		ID:                uuid.New(),
		CustomerID:        customerID,
		Title:             title,
		Description:       description,
		ProductType:       productType,
		Status:            valueobject.StatusNew,
		RequestedTokenFee: tokenFee,
		DesiredDeadline:   deadline,
		Version:           1,
		CreatedAt:         time.Now(),
		UpdatedAt:         time.Now(),
	}
	for _, item := range scope {
		item.ID = uuid.New()
		item.RequestID = req.ID
		req.Scope = append(req.Scope, item)
	}
	return req, nil
}

// Transition переводит заявку в новый статус через whitelist переходов.
// Недопустимый переход, самопереход и любой переход из терминального статуса
// отклоняются с InvalidTransitionError.
func (r *TestingRequest) Transition(to valueobject.StatusCode) error {
	if !r.Status.CanTransitionTo(to) {
		return &valueobject.InvalidTransitionError{From: r.Status, To: to}
	}
	r.Status = to
	r.UpdatedAt = time.Now()
	return nil
}

// SendQuote отправляет предложение цены. Допустимо только в статусе PENDING.
// Новая квота замещает предыдущую и сбрасывает факт принятия.
func (r *TestingRequest) SendQuote(amount float64, currency string, expiryDays *int, notes *string) error {
	if r.Status != valueobject.StatusPending {
		return valueobject.NewQuoteError(valueobject.QuoteWrongStatus,
			"предложение цены можно отправить только по заявке в статусе PENDING")
	}
	quote, err := valueobject.NewQuote(amount, currency, expiryDays, notes, time.Now())
	if err != nil {
		return err
	}
	r.Quote = quote
	r.UpdatedAt = time.Now()
	return nil
}

// AcceptQuote отмечает активную квоту принятой заказчиком.
func (r *TestingRequest) AcceptQuote() error {
	if r.Quote == nil {
		return valueobject.NewQuoteError(valueobject.QuoteNoActiveQuote, "по заявке нет активного предложения цены")
	}
	if err := r.Quote.Accept(time.Now()); err != nil {
		return err
	}
	r.UpdatedAt = time.Now()
	return nil
}

// Claim самоназначение тестировщика. Заявка должна быть не терминальной и без
// назначенного исполнителя. Успешный claim — единственный санкционированный
// путь в IN_PROGRESS; обычный Transition переход PENDING -> IN_PROGRESS не
// пропускает. Возвращает событие для журнала обновлений.
func (r *TestingRequest) Claim(testerID uuid.UUID, testerName string, catalog *valueobject.StatusCatalog) (*Update, error) {
	if r.AssignedTesterID != nil {
		return nil, &ClaimError{Kind: ClaimAlreadyAssigned, Message: "заявка уже назначена другому тестировщику"}
	}
	if catalog.IsTerminal(r.Status) {
		return nil, &ClaimError{Kind: ClaimTerminal, Message: "заявка в терминальном статусе"}
	}

	now := time.Now()
	r.AssignedTesterID = &testerID
	r.Status = valueobject.StatusInProgress
	r.UpdatedAt = now

	update := &Update{
		ID:        uuid.New(),
		RequestID: r.ID,
		TesterID:  &testerID,
		Status:    valueobject.StatusInProgress,
		Note:      fmt.Sprintf("Claimed by %s", testerName),
		CreatedAt: now,
	}
	r.Updates = append(r.Updates, *update)
	return update, nil
}

// MarkReadyForReview переводит заявку в READY_FOR_REVIEW (только из IN_PROGRESS).
func (r *TestingRequest) MarkReadyForReview() error {
	return r.Transition(valueobject.StatusReadyForReview)
}

// Complete завершает заявку (только из READY_FOR_REVIEW).
func (r *TestingRequest) Complete() error {
	return r.Transition(valueobject.StatusCompleted)
}

// Cancel отменяет заявку, если текущий статус это допускает.
func (r *TestingRequest) Cancel() error {
	return r.Transition(valueobject.StatusCancelled)
}

// IsOwnedBy проверяет принадлежность заявки заказчику.
func (r *TestingRequest) IsOwnedBy(userID uuid.UUID) bool {
	return r.CustomerID == userID
}
