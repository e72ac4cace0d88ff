package request

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/domain/entity"
	"github.com/ignatzorin/testhub-backend/internal/domain/repository"
	"github.com/ignatzorin/testhub-backend/internal/models"
	"github.com/ignatzorin/testhub-backend/internal/pkg/apperror"
	"github.com/ignatzorin/testhub-backend/internal/pricing"
)

// InsufficientTokensError возвращается, когда баланса заказчика не хватает на
// выбранный состав тестирования.
type InsufficientTokensError struct {
	Required  int
	Remaining int
}

func (e *InsufficientTokensError) Error() string {
	return fmt.Sprintf("недостаточно токенов: требуется %d, доступно %d", e.Required, e.Remaining)
}

// TokenLedger баланс токенов заказчика. Сам леджер этому ядру не принадлежит.
type TokenLedger interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.TokenBalance, error)
	Debit(ctx context.Context, userID uuid.UUID, amount int, requestID uuid.UUID) error
}

// SubmitRequestInput параметры подачи заявки.
type SubmitRequestInput struct {
	CustomerID   uuid.UUID
	Title        string
	Description  string
	ProductType  string
	TestingTypes []string
	TokenFee     *int
	Deadline     *time.Time
	ReferenceURL *string
	ArchiveID    *uuid.UUID
}

// SubmitRequestUseCase подача заявки: расчёт стоимости, проверка и списание
// токенов, создание заявки в статусе NEW с неизменяемым scope.
type SubmitRequestUseCase struct {
	requestRepo repository.RequestRepository
	ledger      TokenLedger
}

func NewSubmitRequestUseCase(requestRepo repository.RequestRepository, ledger TokenLedger) *SubmitRequestUseCase {
	return &SubmitRequestUseCase{requestRepo: requestRepo, ledger: ledger}
}

func (uc *SubmitRequestUseCase) Execute(ctx context.Context, input SubmitRequestInput) (*entity.TestingRequest, error) {
	if len(input.TestingTypes) == 0 {
		return nil, apperror.New(apperror.ErrCodeValidation, "нужно выбрать хотя бы один вид тестирования")
	}

	required := pricing.RequiredTokens(input.TestingTypes)

	balance, err := uc.ledger.GetBalance(ctx, input.CustomerID)
	if err != nil {
		return nil, err
	}
	if balance.Remaining < required {
		return nil, &InsufficientTokensError{Required: required, Remaining: balance.Remaining}
	}

	scope := make([]entity.ScopeItem, 0, len(input.TestingTypes))
	for _, t := range input.TestingTypes {
		scope = append(scope, entity.ScopeItem{
			Type:   t,
			Tokens: pricing.TokensFor(t),
		})
	}

	req, err := entity.NewTestingRequest(
		input.CustomerID,
		input.Title,
		input.Description,
		input.ProductType,
		scope,
		input.TokenFee,
		input.Deadline,
	)
	if err != nil {
		return nil, err
	}
	req.ReferenceURL = input.ReferenceURL
	req.ArchiveID = input.ArchiveID

	if err := uc.requestRepo.Create(ctx, req); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось создать заявку")
	}

	if err := uc.ledger.Debit(ctx, input.CustomerID, required, req.ID); err != nil {
		return nil, apperror.Wrap(err, apperror.ErrCodeDatabaseError, "не удалось списать токены")
	}

	return req, nil
}
