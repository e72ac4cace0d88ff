package request

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
	"github.com/ignatzorin/testhub-backend/internal/domain/repository"
	"github.com/ignatzorin/testhub-backend/internal/pkg/apperror"
)

// SendQuoteInput параметры предложения цены.
type SendQuoteInput struct {
	RequestID  uuid.UUID
	Amount     float64
	Currency   string
	ExpiryDays *int
	Notes      *string
}

// SendQuoteUseCase отправка предложения цены по заявке в статусе PENDING.
type SendQuoteUseCase struct {
	requestRepo repository.RequestRepository
}

func NewSendQuoteUseCase(requestRepo repository.RequestRepository) *SendQuoteUseCase {
	return &SendQuoteUseCase{requestRepo: requestRepo}
}

func (uc *SendQuoteUseCase) Execute(ctx context.Context, input SendQuoteInput) (*entity.TestingRequest, error) {
	req, err := uc.requestRepo.FindByID(ctx, input.RequestID)
	if err != nil {
		return nil, err
	}

	if err := req.SendQuote(input.Amount, input.Currency, input.ExpiryDays, input.Notes); err != nil {
		return nil, err
	}

	if err := uc.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}

// AcceptQuoteUseCase принятие квоты заказчиком.
type AcceptQuoteUseCase struct {
	requestRepo repository.RequestRepository
}

func NewAcceptQuoteUseCase(requestRepo repository.RequestRepository) *AcceptQuoteUseCase {
	return &AcceptQuoteUseCase{requestRepo: requestRepo}
}

func (uc *AcceptQuoteUseCase) Execute(ctx context.Context, requestID, customerID uuid.UUID) (*entity.TestingRequest, error) {
	req, err := uc.requestRepo.FindByID(ctx, requestID)
	if err != nil {
		return nil, err
	}

	if !req.IsOwnedBy(customerID) {
		return nil, apperror.ErrForbidden
	}

	if err := req.AcceptQuote(); err != nil {
		return nil, err
	}

	if err := uc.requestRepo.Update(ctx, req); err != nil {
		return nil, err
	}
	return req, nil
}
