package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
	domainrepo "github.com/ignatzorin/testhub-backend/internal/domain/repository"
	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
	"github.com/ignatzorin/testhub-backend/internal/models"
)

// TestLogStore хранилище тестовых логов.
type TestLogStore interface {
	CreateTestLog(ctx context.Context, log *models.TestLog) error
}

// ActivityService ведёт append-only журналы заявки: обновления хода работ и
// тестовые логи. Записи никогда не изменяются и не удаляются.
type ActivityService struct {
	requests domainrepo.RequestRepository
	logs     TestLogStore
}

func NewActivityService(requests domainrepo.RequestRepository, logs TestLogStore) *ActivityService {
	return &ActivityService{requests: requests, logs: logs}
}

// CreateUpdate добавляет событие хода работ. Пустой статус наследует текущий
// статус заявки, неизвестные коды допускаются: отображение деградирует мягко
// через фолбэк справочника.
func (s *ActivityService) CreateUpdate(ctx context.Context, requestID uuid.UUID, testerID *uuid.UUID, status valueobject.StatusCode, note string) (*entity.Update, error) {
	if note == "" {
		return nil, fmt.Errorf("текст обновления обязателен")
	}

	req, err := s.requests.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}
	if status == "" {
		status = req.Status
	}

	update := &entity.Update{
		ID:        uuid.New(),
		RequestID: requestID,
		TesterID:  testerID,
		Status:    status,
		Note:      note,
	}
	if err := s.requests.AppendUpdate(ctx, update); err != nil {
		return nil, err
	}
	return update, nil
}

// CreateTestLog добавляет запись тестового лога.
func (s *ActivityService) CreateTestLog(ctx context.Context, requestID uuid.UUID, level, message string) (*models.TestLog, error) {
	if message == "" {
		return nil, fmt.Errorf("текст лога обязателен")
	}
	if _, ok := models.ValidLogLevels[level]; !ok {
		level = models.LogLevelInfo
	}

	if _, err := s.requests.FindByID(ctx, requestID); err != nil {
		return nil, err
	}

	log := &models.TestLog{
		ID:        uuid.New(),
		RequestID: requestID,
		Level:     level,
		Message:   message,
	}
	if err := s.logs.CreateTestLog(ctx, log); err != nil {
		return nil, err
	}
	return log, nil
}
