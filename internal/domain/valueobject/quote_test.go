package valueobject_test

import (
	"errors"
	"testing"
	"time"

	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
)

func TestNewQuote(t *testing.T) {
	now := time.Now()
	days := 7

	q, err := valueobject.NewQuote(1500, "usd", &days, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Currency != "USD" {
		t.Errorf("валюта = %q, want USD", q.Currency)
	}
	if q.ExpiryAt == nil {
		t.Fatal("expiryAt не установлен")
	}
	if want := now.Add(7 * 24 * time.Hour); !q.ExpiryAt.Equal(want) {
		t.Errorf("expiryAt = %v, want %v", q.ExpiryAt, want)
	}
	if q.AcceptedAt != nil {
		t.Error("новая квота не должна быть принятой")
	}
}

func TestNewQuote_InvalidAmount(t *testing.T) {
	for _, amount := range []float64{0, -100} {
		_, err := valueobject.NewQuote(amount, "USD", nil, nil, time.Now())

		var qe *valueobject.QuoteError
		if !errors.As(err, &qe) || qe.Kind != valueobject.QuoteInvalidAmount {
			t.Errorf("сумма %v: ожидалась ошибка INVALID_AMOUNT, получено %v", amount, err)
		}
	}
}

func TestNewQuote_MissingCurrency(t *testing.T) {
	_, err := valueobject.NewQuote(100, "   ", nil, nil, time.Now())

	var qe *valueobject.QuoteError
	if !errors.As(err, &qe) || qe.Kind != valueobject.QuoteMissingCurrency {
		t.Errorf("ожидалась ошибка MISSING_CURRENCY, получено %v", err)
	}
}

func TestQuoteIsExpired(t *testing.T) {
	now := time.Now()
	days := 3

	q, err := valueobject.NewQuote(100, "USD", &days, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if q.IsExpired(now.Add(48 * time.Hour)) {
		t.Error("квота не должна истечь до срока")
	}
	if !q.IsExpired(now.Add(4 * 24 * time.Hour)) {
		t.Error("квота должна истечь после срока")
	}

	// квота без срока действия не истекает никогда
	open, err := valueobject.NewQuote(100, "USD", nil, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if open.IsExpired(now.Add(365 * 24 * time.Hour)) {
		t.Error("бессрочная квота не должна истекать")
	}
}

func TestQuoteAccept(t *testing.T) {
	now := time.Now()
	days := 1

	q, err := valueobject.NewQuote(100, "USD", &days, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	if err := q.Accept(now.Add(time.Hour)); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.AcceptedAt == nil {
		t.Fatal("acceptedAt не установлен")
	}
}

func TestQuoteAccept_Expired(t *testing.T) {
	now := time.Now()
	days := 1

	q, err := valueobject.NewQuote(100, "USD", &days, nil, now)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	err = q.Accept(now.Add(2 * 24 * time.Hour))

	var qe *valueobject.QuoteError
	if !errors.As(err, &qe) || qe.Kind != valueobject.QuoteExpired {
		t.Errorf("ожидалась ошибка EXPIRED, получено %v", err)
	}
	if q.AcceptedAt != nil {
		t.Error("истёкшая квота не должна помечаться принятой")
	}
}
