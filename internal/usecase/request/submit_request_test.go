package request_test

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
	"github.com/ignatzorin/testhub-backend/internal/domain/repository"
	"github.com/ignatzorin/testhub-backend/internal/models"
	"github.com/ignatzorin/testhub-backend/internal/usecase/request"
)

// mockRequestRepository потокобезопасное in-memory хранилище с CAS-проверкой
// версии в Update, как у настоящего репозитория.
type mockRequestRepository struct {
	mu       sync.Mutex
	requests map[uuid.UUID]*entity.TestingRequest
	updates  []*entity.Update
}

func newMockRequestRepository() *mockRequestRepository {
	return &mockRequestRepository{requests: make(map[uuid.UUID]*entity.TestingRequest)}
}

func cloneRequest(req *entity.TestingRequest) *entity.TestingRequest {
	c := *req
	c.Scope = append([]entity.ScopeItem(nil), req.Scope...)
	c.Updates = append([]entity.Update(nil), req.Updates...)
	if req.AssignedTesterID != nil {
		id := *req.AssignedTesterID
		c.AssignedTesterID = &id
	}
	return &c
}

func (m *mockRequestRepository) Create(ctx context.Context, req *entity.TestingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.requests[req.ID] = cloneRequest(req)
	return nil
}

func (m *mockRequestRepository) FindByID(ctx context.Context, id uuid.UUID) (*entity.TestingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	req, ok := m.requests[id]
	if !ok {
		return nil, errors.New("request not found")
	}
	return cloneRequest(req), nil
}

func (m *mockRequestRepository) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*entity.TestingRequest, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.TestingRequest
	for _, req := range m.requests {
		if req.CustomerID == customerID {
			out = append(out, cloneRequest(req))
		}
	}
	return out, nil
}

func (m *mockRequestRepository) List(ctx context.Context, filter repository.RequestFilter) ([]*entity.TestingRequest, int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []*entity.TestingRequest
	for _, req := range m.requests {
		out = append(out, cloneRequest(req))
	}
	return out, len(out), nil
}

func (m *mockRequestRepository) Update(ctx context.Context, req *entity.TestingRequest) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	stored, ok := m.requests[req.ID]
	if !ok {
		return errors.New("request not found")
	}
	if stored.Version != req.Version {
		return repository.ErrVersionConflict
	}
	saved := cloneRequest(req)
	saved.Version++
	m.requests[req.ID] = saved
	req.Version = saved.Version
	return nil
}

func (m *mockRequestRepository) AppendUpdate(ctx context.Context, update *entity.Update) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, update)
	return nil
}

func (m *mockRequestRepository) FindUpdates(ctx context.Context, requestID uuid.UUID) ([]entity.Update, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	var out []entity.Update
	for _, u := range m.updates {
		if u.RequestID == requestID {
			out = append(out, *u)
		}
	}
	return out, nil
}

// mockLedger баланс токенов с фиксацией списаний.
type mockLedger struct {
	mu        sync.Mutex
	remaining int
	debits    []int
}

func (m *mockLedger) GetBalance(ctx context.Context, userID uuid.UUID) (*models.TokenBalance, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return &models.TokenBalance{UserID: userID, Remaining: m.remaining, Total: m.remaining}, nil
}

func (m *mockLedger) Debit(ctx context.Context, userID uuid.UUID, amount int, requestID uuid.UUID) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.remaining < amount {
		return errors.New("insufficient tokens")
	}
	m.remaining -= amount
	m.debits = append(m.debits, amount)
	return nil
}

func TestSubmitRequestUseCase_Success(t *testing.T) {
	repo := newMockRequestRepository()
	ledger := &mockLedger{remaining: 20}
	uc := request.NewSubmitRequestUseCase(repo, ledger)

	result, err := uc.Execute(context.Background(), request.SubmitRequestInput{
		CustomerID:   uuid.New(),
		Title:        "Тестирование веб-приложения",
		Description:  "Проверить оформление заказа и личный кабинет",
		ProductType:  "web",
		TestingTypes: []string{"Functional Testing", "API Testing", "Load Testing"},
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != "NEW" {
		t.Errorf("статус = %s, want NEW", result.Status)
	}
	if len(result.Scope) != 3 {
		t.Fatalf("scope из %d элементов, want 3", len(result.Scope))
	}
	// 1 + 3 + 5 токенов по тарифной сетке
	if len(ledger.debits) != 1 || ledger.debits[0] != 9 {
		t.Errorf("списания = %v, want [9]", ledger.debits)
	}
	if ledger.remaining != 11 {
		t.Errorf("остаток = %d, want 11", ledger.remaining)
	}

	stored, err := repo.FindByID(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("заявка не сохранена: %v", err)
	}
	if stored.Scope[1].Tokens != 3 {
		t.Errorf("стоимость api_testing в scope = %d, want 3", stored.Scope[1].Tokens)
	}
}

func TestSubmitRequestUseCase_InsufficientTokens(t *testing.T) {
	repo := newMockRequestRepository()
	ledger := &mockLedger{remaining: 5}
	uc := request.NewSubmitRequestUseCase(repo, ledger)

	_, err := uc.Execute(context.Background(), request.SubmitRequestInput{
		CustomerID:   uuid.New(),
		Title:        "Нагрузочное тестирование",
		Description:  "Профиль нагрузки до 10к RPS",
		TestingTypes: []string{"Load Testing", "AI-Assisted Testing"},
	})

	var ite *request.InsufficientTokensError
	if !errors.As(err, &ite) {
		t.Fatalf("ожидался InsufficientTokensError, получено %v", err)
	}
	if ite.Required != 13 || ite.Remaining != 5 {
		t.Errorf("required=%d remaining=%d, want 13/5", ite.Required, ite.Remaining)
	}
	if len(ledger.debits) != 0 {
		t.Error("токены не должны списываться при отказе")
	}
	if len(repo.requests) != 0 {
		t.Error("заявка не должна создаваться при отказе")
	}
}

func TestSubmitRequestUseCase_EmptyScope(t *testing.T) {
	uc := request.NewSubmitRequestUseCase(newMockRequestRepository(), &mockLedger{remaining: 100})

	_, err := uc.Execute(context.Background(), request.SubmitRequestInput{
		CustomerID:  uuid.New(),
		Title:       "Заявка без состава работ",
		Description: "Описание достаточной длины",
	})
	if err == nil {
		t.Fatal("пустой состав тестирования должен отклоняться")
	}
}

// Предложенная заказчиком плата прокидывается до сохранённой заявки и не
// влияет на расчёт стоимости по тарифной сетке.
func TestSubmitRequestUseCase_RequestedTokenFee(t *testing.T) {
	repo := newMockRequestRepository()
	ledger := &mockLedger{remaining: 20}
	uc := request.NewSubmitRequestUseCase(repo, ledger)

	fee := 15
	result, err := uc.Execute(context.Background(), request.SubmitRequestInput{
		CustomerID:   uuid.New(),
		Title:        "Регрессионное тестирование релиза",
		Description:  "Пройти smoke-набор и критичные сценарии",
		TestingTypes: []string{"Functional Testing"},
		TokenFee:     &fee,
	})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.RequestedTokenFee == nil || *result.RequestedTokenFee != 15 {
		t.Errorf("requested fee = %v, want 15", result.RequestedTokenFee)
	}
	stored, err := repo.FindByID(context.Background(), result.ID)
	if err != nil {
		t.Fatalf("заявка не сохранена: %v", err)
	}
	if stored.RequestedTokenFee == nil || *stored.RequestedTokenFee != 15 {
		t.Errorf("сохранённый fee = %v, want 15", stored.RequestedTokenFee)
	}
	// Списание идёт по тарифной сетке, а не по предложенной плате
	if len(ledger.debits) != 1 || ledger.debits[0] != 1 {
		t.Errorf("списания = %v, want [1]", ledger.debits)
	}
}
