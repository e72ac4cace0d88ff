package service

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
	"github.com/ignatzorin/testhub-backend/internal/domain/repository"
	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
	"github.com/ignatzorin/testhub-backend/internal/models"
)

// stubRequestStore минимальный репозиторий заявок для журнальных операций.
type stubRequestStore struct {
	request  *entity.TestingRequest
	appended []*entity.Update
	logs     []*models.TestLog
}

func (s *stubRequestStore) Create(ctx context.Context, req *entity.TestingRequest) error { return nil }

func (s *stubRequestStore) FindByID(ctx context.Context, id uuid.UUID) (*entity.TestingRequest, error) {
	if s.request == nil || s.request.ID != id {
		return nil, errors.New("request not found")
	}
	return s.request, nil
}

func (s *stubRequestStore) FindByCustomerID(ctx context.Context, customerID uuid.UUID) ([]*entity.TestingRequest, error) {
	return nil, nil
}

func (s *stubRequestStore) List(ctx context.Context, filter repository.RequestFilter) ([]*entity.TestingRequest, int, error) {
	return nil, 0, nil
}

func (s *stubRequestStore) Update(ctx context.Context, req *entity.TestingRequest) error {
	return nil
}

func (s *stubRequestStore) AppendUpdate(ctx context.Context, update *entity.Update) error {
	s.appended = append(s.appended, update)
	return nil
}

func (s *stubRequestStore) FindUpdates(ctx context.Context, requestID uuid.UUID) ([]entity.Update, error) {
	return nil, nil
}

func (s *stubRequestStore) CreateTestLog(ctx context.Context, log *models.TestLog) error {
	s.logs = append(s.logs, log)
	return nil
}

func seedActivityRequest() *entity.TestingRequest {
	return &entity.TestingRequest{
		ID:     uuid.New(),
		Status: valueobject.StatusInProgress,
	}
}

func TestActivityService_CreateUpdate_BlankStatusInheritsRequest(t *testing.T) {
	store := &stubRequestStore{request: seedActivityRequest()}
	svc := NewActivityService(store, store)

	update, err := svc.CreateUpdate(context.Background(), store.request.ID, nil, "", "Прогнали smoke-набор")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if update.Status != valueobject.StatusInProgress {
		t.Errorf("статус = %s, want унаследованный IN_PROGRESS", update.Status)
	}
	if len(store.appended) != 1 {
		t.Fatalf("записей в журнале %d, want 1", len(store.appended))
	}
}

func TestActivityService_CreateUpdate_UnknownStatusAccepted(t *testing.T) {
	store := &stubRequestStore{request: seedActivityRequest()}
	svc := NewActivityService(store, store)

	update, err := svc.CreateUpdate(context.Background(), store.request.ID, nil, "BLOCKED_BY_VENDOR", "Ждём доступы от вендора")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	// Неизвестный код сохраняется как есть, отображение деградирует
	// через фолбэк справочника
	if update.Status != "BLOCKED_BY_VENDOR" {
		t.Errorf("статус = %s, want BLOCKED_BY_VENDOR", update.Status)
	}
}

func TestActivityService_CreateUpdate_EmptyNoteRejected(t *testing.T) {
	store := &stubRequestStore{request: seedActivityRequest()}
	svc := NewActivityService(store, store)

	if _, err := svc.CreateUpdate(context.Background(), store.request.ID, nil, "IN_PROGRESS", ""); err == nil {
		t.Fatal("пустой текст обновления должен отклоняться")
	}
	if len(store.appended) != 0 {
		t.Error("запись не должна попадать в журнал")
	}
}

func TestActivityService_CreateTestLog_LevelFallback(t *testing.T) {
	store := &stubRequestStore{request: seedActivityRequest()}
	svc := NewActivityService(store, store)

	log, err := svc.CreateTestLog(context.Background(), store.request.ID, "verbose", "GET /health 200 OK")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if log.Level != models.LogLevelInfo {
		t.Errorf("уровень = %s, want INFO", log.Level)
	}
}
