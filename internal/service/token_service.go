package service

import (
	"context"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/models"
)

// TokenBalanceRepository хранилище балансов токенов.
type TokenBalanceRepository interface {
	GetBalance(ctx context.Context, userID uuid.UUID) (*models.TokenBalance, error)
	InitBalance(ctx context.Context, userID uuid.UUID, tokens int, planType string) error
	Debit(ctx context.Context, userID uuid.UUID, amount int, requestID uuid.UUID) error
	Deposit(ctx context.Context, userID uuid.UUID, amount int) error
	ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TokenTransaction, error)
}

// TokenService леджер токенов платформы. Ядро жизненного цикла заявок
// обращается к нему как к внешнему коллаборатору через usecase.TokenLedger.
type TokenService struct {
	repo TokenBalanceRepository
}

func NewTokenService(repo TokenBalanceRepository) *TokenService {
	return &TokenService{repo: repo}
}

// GetBalance возвращает баланс пользователя.
func (s *TokenService) GetBalance(ctx context.Context, userID uuid.UUID) (*models.TokenBalance, error) {
	return s.repo.GetBalance(ctx, userID)
}

// Debit списывает токены за подачу заявки.
func (s *TokenService) Debit(ctx context.Context, userID uuid.UUID, amount int, requestID uuid.UUID) error {
	if amount == 0 {
		return nil
	}
	return s.repo.Debit(ctx, userID, amount, requestID)
}

// InitBalance создаёт стартовый баланс нового заказчика.
func (s *TokenService) InitBalance(ctx context.Context, userID uuid.UUID, tokens int) error {
	return s.repo.InitBalance(ctx, userID, tokens, "starter")
}

// Deposit пополняет баланс (админская операция).
func (s *TokenService) Deposit(ctx context.Context, userID uuid.UUID, amount int) error {
	return s.repo.Deposit(ctx, userID, amount)
}

// ListTransactions возвращает историю движения токенов.
func (s *TokenService) ListTransactions(ctx context.Context, userID uuid.UUID, limit, offset int) ([]models.TokenTransaction, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	return s.repo.ListTransactions(ctx, userID, limit, offset)
}
