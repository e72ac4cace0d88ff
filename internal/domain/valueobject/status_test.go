package valueobject_test

import (
	"testing"

	"github.com/ignatzorin/testhub-backend/internal/domain/valueobject"
)

func TestCanTransitionTo(t *testing.T) {
	cases := []struct {
		from valueobject.StatusCode
		to   valueobject.StatusCode
		want bool
	}{
		{valueobject.StatusNew, valueobject.StatusPending, true},
		{valueobject.StatusNew, valueobject.StatusCancelled, true},
		{valueobject.StatusNew, valueobject.StatusInProgress, false},
		{valueobject.StatusPending, valueobject.StatusCancelled, true},
		{valueobject.StatusPending, valueobject.StatusInProgress, false}, // только через claim
		{valueobject.StatusWaitingCustomer, valueobject.StatusExpired, true},
		{valueobject.StatusWaitingCustomer, valueobject.StatusCancelled, true},
		{valueobject.StatusInProgress, valueobject.StatusReadyForReview, true},
		{valueobject.StatusInProgress, valueobject.StatusCancelled, true},
		{valueobject.StatusInProgress, valueobject.StatusCompleted, false},
		{valueobject.StatusReadyForReview, valueobject.StatusCompleted, true},
		{valueobject.StatusReadyForReview, valueobject.StatusInProgress, false},
	}

	for _, c := range cases {
		if got := c.from.CanTransitionTo(c.to); got != c.want {
			t.Errorf("%s -> %s: got %v, want %v", c.from, c.to, got, c.want)
		}
	}
}

func TestCanTransitionTo_SelfTransitionRejected(t *testing.T) {
	for _, s := range valueobject.KnownStatuses() {
		if s.CanTransitionTo(s) {
			t.Errorf("самопереход %s -> %s не должен проходить", s, s)
		}
	}
}

func TestTerminalStatusesHaveNoExits(t *testing.T) {
	terminal := []valueobject.StatusCode{
		valueobject.StatusCompleted,
		valueobject.StatusCancelled,
		valueobject.StatusExpired,
	}

	for _, from := range terminal {
		if next := from.AllowedNext(); len(next) != 0 {
			t.Errorf("терминальный статус %s имеет исходящие переходы: %v", from, next)
		}
		for _, to := range valueobject.KnownStatuses() {
			if from.CanTransitionTo(to) {
				t.Errorf("переход из терминального %s в %s не должен проходить", from, to)
			}
		}
	}
}

func TestUnknownStatusHasNoTransitions(t *testing.T) {
	unknown := valueobject.StatusCode("LIMBO")

	if unknown.IsKnown() {
		t.Error("LIMBO не должен считаться известным статусом")
	}
	if unknown.CanTransitionTo(valueobject.StatusNew) {
		t.Error("переход из неизвестного статуса не должен проходить")
	}
	if next := unknown.AllowedNext(); next != nil {
		t.Errorf("неизвестный статус вернул переходы: %v", next)
	}
}

func TestCatalogLookup(t *testing.T) {
	catalog := valueobject.DefaultStatusCatalog()

	def := catalog.Lookup(valueobject.StatusInProgress)
	if def.ProgressWeight != 60 {
		t.Errorf("вес IN_PROGRESS = %d, want 60", def.ProgressWeight)
	}

	// поиск без учёта регистра
	if got := catalog.Label(valueobject.StatusCode("in_progress")); got != "In Progress" {
		t.Errorf("Label(in_progress) = %q, want %q", got, "In Progress")
	}

	unknown := catalog.Lookup(valueobject.StatusCode("LIMBO"))
	if unknown.ProgressWeight != valueobject.UnknownDefinition.ProgressWeight {
		t.Errorf("вес неизвестного статуса = %d, want %d",
			unknown.ProgressWeight, valueobject.UnknownDefinition.ProgressWeight)
	}
}

func TestCatalogIsTerminal(t *testing.T) {
	catalog := valueobject.DefaultStatusCatalog()

	for _, code := range []valueobject.StatusCode{
		valueobject.StatusCompleted, valueobject.StatusCancelled, valueobject.StatusExpired,
	} {
		if !catalog.IsTerminal(code) {
			t.Errorf("%s должен быть терминальным", code)
		}
	}
	if catalog.IsTerminal(valueobject.StatusInProgress) {
		t.Error("IN_PROGRESS не должен быть терминальным")
	}
}

func TestCatalogDisplayBucket(t *testing.T) {
	catalog := valueobject.DefaultStatusCatalog()

	cases := []struct {
		code valueobject.StatusCode
		want string
	}{
		{valueobject.StatusNew, "pending"},
		{valueobject.StatusPending, "pending"},
		{valueobject.StatusWaitingCustomer, "pending"},
		{valueobject.StatusInProgress, "in-progress"},
		{valueobject.StatusReadyForReview, "in-progress"},
		{valueobject.StatusCompleted, "completed"},
		{valueobject.StatusCancelled, "failed"},
		{valueobject.StatusExpired, "failed"},
	}

	for _, c := range cases {
		if got := catalog.DisplayBucket(c.code); got != c.want {
			t.Errorf("DisplayBucket(%s) = %q, want %q", c.code, got, c.want)
		}
	}
}
