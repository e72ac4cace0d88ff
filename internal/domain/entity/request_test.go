package entity_test

import (
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
)

func newRequest(t *testing.T) *entity.TestingRequest {
	t.Helper()
	req, err := entity.NewTestingRequest(
		uuid.New(),
		"Тестирование мобильного приложения",
		"Проверить основные сценарии оплаты и регистрации",
		"mobile_app",
		[]entity.ScopeItem{{Type: "Functional Testing", Tokens: 1}},
		nil, nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return req
}

func TestNewTestingRequest(t *testing.T) {
	req := newRequest(t)

	if req.Status != valueobject.StatusNew {
		t.Errorf("статус новой заявки = %s, want NEW", req.Status)
	}
	if req.Version != 1 {
		t.Errorf("версия новой заявки = %d, want 1", req.Version)
	}
	if len(req.Scope) != 1 {
		t.Fatalf("scope из %d элементов, want 1", len(req.Scope))
	}
	if req.Scope[0].RequestID != req.ID {
		t.Error("scope item не привязан к заявке")
	}
}

func TestNewTestingRequest_Validation(t *testing.T) {
	if _, err := entity.NewTestingRequest(uuid.New(), "", "описание достаточной длины", "web", nil, nil, nil); err == nil {
		t.Error("пустое название должно отклоняться")
	}
	if _, err := entity.NewTestingRequest(uuid.New(), "название", "", "web", nil, nil, nil); err == nil {
		t.Error("пустое описание должно отклоняться")
	}

	past := time.Now().Add(-24 * time.Hour)
	if _, err := entity.NewTestingRequest(uuid.New(), "название", "описание", "web", nil, nil, &past); err == nil {
		t.Error("дедлайн в прошлом должен отклоняться")
	}
}

func TestTransition(t *testing.T) {
	req := newRequest(t)

	if err := req.Transition(valueobject.StatusPending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Status != valueobject.StatusPending {
		t.Errorf("статус = %s, want PENDING", req.Status)
	}

	err := req.Transition(valueobject.StatusCompleted)
	var ite *valueobject.InvalidTransitionError
	if !errors.As(err, &ite) {
		t.Fatalf("ожидался InvalidTransitionError, получено %v", err)
	}
	if ite.From != valueobject.StatusPending || ite.To != valueobject.StatusCompleted {
		t.Errorf("ошибка перехода %s -> %s, want PENDING -> COMPLETED", ite.From, ite.To)
	}
	if req.Status != valueobject.StatusPending {
		t.Error("статус не должен меняться при отклонённом переходе")
	}
}

func TestSendQuote(t *testing.T) {
	req := newRequest(t)

	// из NEW квоту отправить нельзя
	err := req.SendQuote(1000, "USD", nil, nil)
	var qe *valueobject.QuoteError
	if !errors.As(err, &qe) || qe.Kind != valueobject.QuoteWrongStatus {
		t.Fatalf("ожидалась ошибка WRONG_STATUS, получено %v", err)
	}

	if err := req.Transition(valueobject.StatusPending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	days := 7
	if err := req.SendQuote(1000, "usd", &days, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Quote == nil || req.Quote.Price != 1000 || req.Quote.Currency != "USD" {
		t.Errorf("квота сохранена некорректно: %+v", req.Quote)
	}
}

func TestSendQuote_ReplacesPrevious(t *testing.T) {
	req := newRequest(t)
	if err := req.Transition(valueobject.StatusPending); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := req.SendQuote(1000, "USD", nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := req.AcceptQuote(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// повторная квота замещает старую и сбрасывает факт принятия
	if err := req.SendQuote(1500, "EUR", nil, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if req.Quote.Price != 1500 || req.Quote.Currency != "EUR" {
		t.Errorf("квота не замещена: %+v", req.Quote)
	}
	if req.Quote.AcceptedAt != nil {
		t.Error("новая квота не должна наследовать acceptedAt")
	}
}

func TestAcceptQuote_NoActiveQuote(t *testing.T) {
	req := newRequest(t)

	err := req.AcceptQuote()
	var qe *valueobject.QuoteError
	if !errors.As(err, &qe) || qe.Kind != valueobject.QuoteNoActiveQuote {
		t.Errorf("ожидалась ошибка NO_ACTIVE_QUOTE, получено %v", err)
	}
}

func TestClaim(t *testing.T) {
	catalog := valueobject.DefaultStatusCatalog()
	req := newRequest(t)
	testerID := uuid.New()

	update, err := req.Claim(testerID, "Ivan Petrov", catalog)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if req.Status != valueobject.StatusInProgress {
		t.Errorf("статус после claim = %s, want IN_PROGRESS", req.Status)
	}
	if req.AssignedTesterID == nil || *req.AssignedTesterID != testerID {
		t.Error("тестировщик не назначен")
	}
	if update.Note != "Claimed by Ivan Petrov" {
		t.Errorf("note = %q", update.Note)
	}
	if len(req.Updates) != 1 {
		t.Errorf("журнал из %d событий, want 1", len(req.Updates))
	}
}

func TestClaim_AlreadyAssigned(t *testing.T) {
	catalog := valueobject.DefaultStatusCatalog()
	req := newRequest(t)

	if _, err := req.Claim(uuid.New(), "first", catalog); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := req.Claim(uuid.New(), "second", catalog)
	var ce *entity.ClaimError
	if !errors.As(err, &ce) || ce.Kind != entity.ClaimAlreadyAssigned {
		t.Errorf("ожидалась ошибка ALREADY_ASSIGNED, получено %v", err)
	}
}

func TestClaim_TerminalStatus(t *testing.T) {
	catalog := valueobject.DefaultStatusCatalog()
	req := newRequest(t)
	if err := req.Cancel(); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := req.Claim(uuid.New(), "tester", catalog)
	var ce *entity.ClaimError
	if !errors.As(err, &ce) || ce.Kind != entity.ClaimTerminal {
		t.Errorf("ожидалась ошибка TERMINAL, получено %v", err)
	}
}

func TestLifecycleHappyPath(t *testing.T) {
	catalog := valueobject.DefaultStatusCatalog()
	req := newRequest(t)

	if _, err := req.Claim(uuid.New(), "tester", catalog); err != nil {
		t.Fatalf("claim: %v", err)
	}
	if err := req.MarkReadyForReview(); err != nil {
		t.Fatalf("ready for review: %v", err)
	}
	if err := req.Complete(); err != nil {
		t.Fatalf("complete: %v", err)
	}
	if req.Status != valueobject.StatusCompleted {
		t.Errorf("статус = %s, want COMPLETED", req.Status)
	}

	// из терминального статуса пути нет
	if err := req.Cancel(); err == nil {
		t.Error("отмена завершённой заявки должна отклоняться")
	}
}
