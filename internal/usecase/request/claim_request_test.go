package request_test

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"testing"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
	"github.com/ignatzorin/testhub-backend/internal/usecase/request"
)

// staticCatalogs источник справочника статусов с возможностью подмены между
// вызовами.
type staticCatalogs struct {
	mu      sync.Mutex
	catalog *valueobject.StatusCatalog
}

func defaultCatalogs() *staticCatalogs {
	return &staticCatalogs{catalog: valueobject.DefaultStatusCatalog()}
}

func (s *staticCatalogs) Catalog() *valueobject.StatusCatalog {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.catalog
}

func (s *staticCatalogs) Swap(c *valueobject.StatusCatalog) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.catalog = c
}

func seedRequest(t *testing.T, repo *mockRequestRepository) *entity.TestingRequest {
	t.Helper()
	req, err := entity.NewTestingRequest(
		uuid.New(),
		"Тестирование API платёжного шлюза",
		"Проверить idempotency и обработку таймаутов",
		"api",
		[]entity.ScopeItem{{Type: "API Testing", Tokens: 3}},
		nil, nil,
	)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if err := repo.Create(context.Background(), req); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	return req
}

func TestClaimRequestUseCase_Success(t *testing.T) {
	repo := newMockRequestRepository()
	req := seedRequest(t, repo)
	uc := request.NewClaimRequestUseCase(repo, defaultCatalogs())
	testerID := uuid.New()

	result, err := uc.Execute(context.Background(), req.ID, testerID, "Ivan Petrov")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if result.Status != valueobject.StatusInProgress {
		t.Errorf("статус = %s, want IN_PROGRESS", result.Status)
	}
	if result.AssignedTesterID == nil || *result.AssignedTesterID != testerID {
		t.Error("тестировщик не назначен")
	}

	updates, err := repo.FindUpdates(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(updates) != 1 || updates[0].Note != "Claimed by Ivan Petrov" {
		t.Errorf("журнал обновлений: %+v", updates)
	}
}

func TestClaimRequestUseCase_AlreadyAssigned(t *testing.T) {
	repo := newMockRequestRepository()
	req := seedRequest(t, repo)
	uc := request.NewClaimRequestUseCase(repo, defaultCatalogs())

	if _, err := uc.Execute(context.Background(), req.ID, uuid.New(), "first"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	_, err := uc.Execute(context.Background(), req.ID, uuid.New(), "second")
	var ce *entity.ClaimError
	if !errors.As(err, &ce) || ce.Kind != entity.ClaimAlreadyAssigned {
		t.Errorf("ожидалась ошибка ALREADY_ASSIGNED, получено %v", err)
	}
}

// Конкурирующие claim-ы одной заявки: побеждает ровно один, остальные получают
// ALREADY_ASSIGNED через CAS-проверку версии.
func TestClaimRequestUseCase_ConcurrentClaims(t *testing.T) {
	repo := newMockRequestRepository()
	req := seedRequest(t, repo)
	uc := request.NewClaimRequestUseCase(repo, defaultCatalogs())

	const testers = 16

	var wg sync.WaitGroup
	errs := make([]error, testers)
	for i := 0; i < testers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = uc.Execute(context.Background(), req.ID, uuid.New(), fmt.Sprintf("tester-%d", i))
		}(i)
	}
	wg.Wait()

	winners := 0
	for _, err := range errs {
		if err == nil {
			winners++
			continue
		}
		var ce *entity.ClaimError
		if !errors.As(err, &ce) || ce.Kind != entity.ClaimAlreadyAssigned {
			t.Errorf("проигравший получил неожиданную ошибку: %v", err)
		}
	}
	if winners != 1 {
		t.Fatalf("победителей %d, want ровно 1", winners)
	}

	final, err := repo.FindByID(context.Background(), req.ID)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if final.AssignedTesterID == nil {
		t.Fatal("заявка осталась без исполнителя")
	}
	if final.Status != valueobject.StatusInProgress {
		t.Errorf("статус = %s, want IN_PROGRESS", final.Status)
	}
}

// Справочник запрашивается у источника на каждый вызов: после перезагрузки
// справочника claim видит свежую терминальность, а не снапшот старта.
func TestClaimRequestUseCase_UsesFreshCatalog(t *testing.T) {
	repo := newMockRequestRepository()
	req := seedRequest(t, repo)

	frozen := valueobject.NewStatusCatalog([]valueobject.StatusDefinition{
		{Code: valueobject.StatusNew, Label: "New", ProgressWeight: 5, Terminal: true},
	})
	catalogs := &staticCatalogs{catalog: frozen}
	uc := request.NewClaimRequestUseCase(repo, catalogs)

	_, err := uc.Execute(context.Background(), req.ID, uuid.New(), "early bird")
	var ce *entity.ClaimError
	if !errors.As(err, &ce) || ce.Kind != entity.ClaimTerminal {
		t.Fatalf("ожидалась ошибка TERMINAL, получено %v", err)
	}

	catalogs.Swap(valueobject.DefaultStatusCatalog())

	result, err := uc.Execute(context.Background(), req.ID, uuid.New(), "second try")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.Status != valueobject.StatusInProgress {
		t.Errorf("статус = %s, want IN_PROGRESS", result.Status)
	}
}
