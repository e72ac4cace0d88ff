package dto_test

import (
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/ignatzorin/testhub-backend/internal/dto"
	"github.com/ignatzorin/testhub-backend/internal/models"
)

func TestNewRequestDetailResponse_SurfacesQuote(t *testing.T) {
	price := 1500.0
	currency := "RUB"
	sentAt := time.Now()
	expiryAt := sentAt.Add(7 * 24 * time.Hour)
	req := &models.TestingRequest{
		ID:            uuid.New(),
		Status:        "WAITING_CUSTOMER",
		QuotePrice:    &price,
		QuoteCurrency: &currency,
		QuoteSentAt:   &sentAt,
		QuoteExpiryAt: &expiryAt,
	}

	resp := dto.NewRequestDetailResponse(req, dto.DerivedView{}, nil, nil, nil)

	if resp.Quote == nil {
		t.Fatal("quote не попала в детальный ответ")
	}
	if resp.Quote.Price != 1500.0 || resp.Quote.Currency != "RUB" {
		t.Errorf("quote = %+v, want 1500 RUB", resp.Quote)
	}
	if resp.Quote.ExpiryAt == nil || !resp.Quote.ExpiryAt.Equal(expiryAt) {
		t.Errorf("срок действия = %v, want %v", resp.Quote.ExpiryAt, expiryAt)
	}
	if resp.Quote.AcceptedAt != nil {
		t.Error("квота ещё не принята")
	}
}

func TestNewRequestDetailResponse_NoQuote(t *testing.T) {
	req := &models.TestingRequest{ID: uuid.New(), Status: "NEW"}

	resp := dto.NewRequestDetailResponse(req, dto.DerivedView{}, nil, nil, nil)

	if resp.Quote != nil {
		t.Errorf("quote = %+v, want nil", resp.Quote)
	}
	if resp.Updates == nil || resp.BugReports == nil || resp.TestLogs == nil {
		t.Error("журналы должны сериализоваться пустыми массивами, не null")
	}
}
