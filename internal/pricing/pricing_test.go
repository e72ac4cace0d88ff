package pricing_test

import (
	"testing"

	"github.com/ignatzorin/testhub-backend/internal/pricing"
)

func TestNormalize(t *testing.T) {
	cases := []struct {
		raw  string
		want string
	}{
		{"Load Testing", "load_testing"},
		{"  AI-Assisted   Testing ", "ai_assisted_testing"},
		{"API testing", "api_testing"},
		{"performance___testing", "performance_testing"},
		{"UI/UX Testing", "ui_ux_testing"},
		{"", ""},
		{"---", ""},
	}

	for _, c := range cases {
		if got := pricing.Normalize(c.raw); got != c.want {
			t.Errorf("Normalize(%q) = %q, want %q", c.raw, got, c.want)
		}
	}
}

func TestTokensFor(t *testing.T) {
	cases := []struct {
		rawType string
		want    int
	}{
		{"Functional Testing", 1},
		{"basic_test", 1},
		{"Regression Testing", 1},
		{"API Testing", 3},
		{"Integration Testing", 3},
		{"Load Testing", 5},
		{"Stress Testing", 5},
		{"Security Testing", 5},
		{"AI-Assisted Testing", 8},
		{"ai_analysis", 8},
		{"Quantum Testing", 1}, // незнакомый вид тарифицируется по минимальной ставке
	}

	for _, c := range cases {
		if got := pricing.TokensFor(c.rawType); got != c.want {
			t.Errorf("TokensFor(%q) = %d, want %d", c.rawType, got, c.want)
		}
	}
}

func TestRequiredTokens(t *testing.T) {
	if got := pricing.RequiredTokens(nil); got != 0 {
		t.Errorf("RequiredTokens(nil) = %d, want 0", got)
	}

	types := []string{"Functional Testing", "API Testing", "Load Testing", "AI-Assisted Testing"}
	if got := pricing.RequiredTokens(types); got != 17 {
		t.Errorf("RequiredTokens = %d, want 17", got)
	}

	// дубликаты тарифицируются каждый по отдельности
	if got := pricing.RequiredTokens([]string{"Load Testing", "load_testing"}); got != 10 {
		t.Errorf("RequiredTokens с дубликатами = %d, want 10", got)
	}
}

func TestCatalogIsACopy(t *testing.T) {
	catalog := pricing.Catalog()
	catalog[pricing.KeyBasicTest] = 999

	if got := pricing.CostOf(pricing.KeyBasicTest); got != 1 {
		t.Errorf("CostOf после мутации копии каталога = %d, want 1", got)
	}
}
