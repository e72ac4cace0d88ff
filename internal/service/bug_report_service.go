package service

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/models"
)

// BugReportStore хранилище баг-репортов.
type BugReportStore interface {
	Create(ctx context.Context, report *models.BugReport) error
	GetByID(ctx context.Context, id uuid.UUID) (*models.BugReport, error)
	ListByRequestID(ctx context.Context, requestID uuid.UUID) ([]models.BugReport, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status string) error
	AddComment(ctx context.Context, comment *models.BugComment) error
	ListComments(ctx context.Context, bugReportID uuid.UUID) ([]models.BugComment, error)
}

// BugReportService работа с баг-репортами заявок на тестирование.
type BugReportService struct {
	repo BugReportStore
}

func NewBugReportService(repo BugReportStore) *BugReportService {
	return &BugReportService{repo: repo}
}

// CreateBugReportInput параметры создания баг-репорта.
type CreateBugReportInput struct {
	RequestID   uuid.UUID
	Title       string
	Description string
	Severity    string
	Status      string
	TesterID    *uuid.UUID
}

// Create валидирует и сохраняет баг-репорт.
func (s *BugReportService) Create(ctx context.Context, input CreateBugReportInput) (*models.BugReport, error) {
	if input.Title == "" {
		return nil, fmt.Errorf("заголовок баг-репорта обязателен")
	}
	if _, ok := models.ValidBugSeverities[input.Severity]; !ok {
		return nil, fmt.Errorf("некорректная критичность: %s", input.Severity)
	}
	status := input.Status
	if status == "" {
		status = models.BugStatusOpen
	}
	if _, ok := models.ValidBugStatuses[status]; !ok {
		return nil, fmt.Errorf("некорректный статус баг-репорта: %s", status)
	}

	report := &models.BugReport{
		ID:          uuid.New(),
		RequestID:   input.RequestID,
		Title:       input.Title,
		Description: input.Description,
		Severity:    input.Severity,
		Status:      status,
		TesterID:    input.TesterID,
	}
	if err := s.repo.Create(ctx, report); err != nil {
		return nil, err
	}
	return report, nil
}

// Get возвращает баг-репорт с комментариями.
func (s *BugReportService) Get(ctx context.Context, id uuid.UUID) (*models.BugReport, error) {
	return s.repo.GetByID(ctx, id)
}

// ListByRequest возвращает баг-репорты заявки.
func (s *BugReportService) ListByRequest(ctx context.Context, requestID uuid.UUID) ([]models.BugReport, error) {
	return s.repo.ListByRequestID(ctx, requestID)
}

// UpdateStatus изменяет статус баг-репорта.
func (s *BugReportService) UpdateStatus(ctx context.Context, id uuid.UUID, status string) error {
	if _, ok := models.ValidBugStatuses[status]; !ok {
		return fmt.Errorf("некорректный статус баг-репорта: %s", status)
	}
	return s.repo.UpdateStatus(ctx, id, status)
}

// AddComment добавляет комментарий к баг-репорту.
func (s *BugReportService) AddComment(ctx context.Context, bugReportID, commenterID uuid.UUID, text string) (*models.BugComment, error) {
	if text == "" {
		return nil, fmt.Errorf("текст комментария обязателен")
	}
	if _, err := s.repo.GetByID(ctx, bugReportID); err != nil {
		return nil, err
	}

	comment := &models.BugComment{
		ID:          uuid.New(),
		BugReportID: bugReportID,
		CommenterID: commenterID,
		Comment:     text,
	}
	if err := s.repo.AddComment(ctx, comment); err != nil {
		return nil, err
	}
	return comment, nil
}
