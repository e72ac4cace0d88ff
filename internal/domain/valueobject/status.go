package valueobject

import "fmt"

// StatusCode канонический код статуса жизненного цикла заявки.
type StatusCode string

const (
	StatusNew             StatusCode = "NEW"
	StatusPending         StatusCode = "PENDING"
	StatusWaitingCustomer StatusCode = "WAITING_CUSTOMER"
	StatusInProgress      StatusCode = "IN_PROGRESS"
	StatusReadyForReview  StatusCode = "READY_FOR_REVIEW"
	StatusCompleted       StatusCode = "COMPLETED"
	StatusCancelled       StatusCode = "CANCELLED"
	StatusExpired         StatusCode = "EXPIRED"
)

// transitions явный whitelist допустимых переходов. Терминальные и неизвестные
// коды отсутствуют в таблице и не имеют исходящих переходов. Таблица не
// выводится из весов прогресса: она и есть источник истины.
var transitions = map[StatusCode][]StatusCode{
	StatusNew:             {StatusPending, StatusCancelled},
	StatusPending:         {StatusCancelled},
	StatusWaitingCustomer: {StatusCancelled, StatusExpired},
	StatusInProgress:      {StatusReadyForReview, StatusCancelled},
	StatusReadyForReview:  {StatusCompleted},
}

// InvalidTransitionError возвращается при попытке недопустимого перехода статуса.
type InvalidTransitionError struct {
	From StatusCode
	To   StatusCode
}

func (e *InvalidTransitionError) Error() string {
	return fmt.Sprintf("недопустимый переход статуса: %s -> %s", e.From, e.To)
}

// AllowedNext возвращает множество допустимых следующих статусов.
func (s StatusCode) AllowedNext() []StatusCode {
	allowed, ok := transitions[s]
	if !ok {
		return nil
	}
	out := make([]StatusCode, len(allowed))
	copy(out, allowed)
	return out
}

// CanTransitionTo проверяет допустимость перехода. Переход в тот же статус
// всегда запрещён.
func (s StatusCode) CanTransitionTo(next StatusCode) bool {
	if s == next {
		return false
	}
	for _, status := range transitions[s] {
		if status == next {
			return true
		}
	}
	return false
}

// IsKnown сообщает, входит ли код в канонический набор статусов.
func (s StatusCode) IsKnown() bool {
	switch s {
	case StatusNew, StatusPending, StatusWaitingCustomer, StatusInProgress,
		StatusReadyForReview, StatusCompleted, StatusCancelled, StatusExpired:
		return true
	}
	return false
}

// KnownStatuses возвращает все канонические коды.
func KnownStatuses() []StatusCode {
	return []StatusCode{
		StatusNew, StatusPending, StatusWaitingCustomer, StatusInProgress,
		StatusReadyForReview, StatusCompleted, StatusCancelled, StatusExpired,
	}
}
