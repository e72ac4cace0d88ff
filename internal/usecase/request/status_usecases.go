package request

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
	"github.com/ignatzorin/testhub-backend/internal/domain/repository"
	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
	"github.com/ignatzorin/testhub-backend/internal/pkg/apperror"
)

// SetStatusUseCase перевод заявки в произвольный статус через whitelist переходов.
type SetStatusUseCase struct {
	requestRepo repository.RequestRepository
}

func NewSetStatusUseCase(requestRepo repository.RequestRepository) *SetStatusUseCase {
	return &SetStatusUseCase{requestRepo: requestRepo}
}

func (uc *SetStatusUseCase) Execute(ctx context.Context, requestID uuid.UUID, to valueobject.StatusCode) (*entity.TestingRequest, error) {
	req, err := uc.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := req.Transition(to); err != nil {
		return nil, err
	}

	if err := uc.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// MarkReadyForReviewUseCase перевод в READY_FOR_REVIEW силами назначенного тестировщика.
type MarkReadyForReviewUseCase struct {
	requestRepo repository.RequestRepository
}

func NewMarkReadyForReviewUseCase(requestRepo repository.RequestRepository) *MarkReadyForReviewUseCase {
	return &MarkReadyForReviewUseCase{requestRepo: requestRepo}
}

func (uc *MarkReadyForReviewUseCase) Execute(ctx context.Context, requestID, testerID uuid.UUID) (*entity.TestingRequest, error) {
	req, err := uc.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if req.AssignedTesterID == nil || *req.AssignedTesterID != testerID {
		return nil, apperror.ErrForbidden
	}

	if err := req.MarkReadyForReview(); err != nil {
		return nil, err
	}

	if err := uc.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// CompleteRequestUseCase завершение заявки заказчиком или админом.
type CompleteRequestUseCase struct {
	requestRepo repository.RequestRepository
}

func NewCompleteRequestUseCase(requestRepo repository.RequestRepository) *CompleteRequestUseCase {
	return &CompleteRequestUseCase{requestRepo: requestRepo}
}

func (uc *CompleteRequestUseCase) Execute(ctx context.Context, requestID uuid.UUID) (*entity.TestingRequest, error) {
	req, err := uc.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if err := req.Complete(); err != nil {
		return nil, err
	}

	if err := uc.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// CancelRequestUseCase отмена заявки её владельцем.
type CancelRequestUseCase struct {
	requestRepo repository.RequestRepository
}

func NewCancelRequestUseCase(requestRepo repository.RequestRepository) *CancelRequestUseCase {
	return &CancelRequestUseCase{requestRepo: requestRepo}
}

func (uc *CancelRequestUseCase) Execute(ctx context.Context, requestID, customerID uuid.UUID) (*entity.TestingRequest, error) {
	req, err := uc.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !req.IsOwnedBy(customerID) {
		return nil, apperror.ErrForbidden
	}

	if err := req.Cancel(); err != nil {
		return nil, err
	}

	if err := uc.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}
