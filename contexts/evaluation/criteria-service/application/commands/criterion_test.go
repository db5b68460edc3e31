package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"symposium/contexts/evaluation/criteria-service/adapters/memory"
	"symposium/contexts/evaluation/criteria-service/domain/entities"
	domainerrors "symposium/contexts/evaluation/criteria-service/domain/errors"
	"symposium/contexts/evaluation/criteria-service/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newUseCase(store *memory.Store) CriterionUseCase {
	return CriterionUseCase{
		Criteria: store,
		Events:   store,
		Clock:    fixedClock{now: time.Date(2026, time.March, 10, 9, 0, 0, 0, time.UTC)},
		IDGen:    store,
	}
}

func TestAddCriterionRejectsCeilingOverflow(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetEventState(ports.EventStateProjection{EventID: "event-1", State: "approved"})
	uc := newUseCase(store)

	for _, weight := range []float64{40, 35, 20} {
		if _, err := uc.AddCriterion(context.Background(), AddCriterionCommand{
			EventID:     "event-1",
			Description: "dimension",
			Weight:      weight,
		}); err != nil {
			t.Fatalf("add criterion with weight %v failed: %v", weight, err)
		}
	}

	_, err := uc.AddCriterion(context.Background(), AddCriterionCommand{
		EventID:     "event-1",
		Description: "one too many",
		Weight:      10,
	})
	if !errors.Is(err, domainerrors.ErrWeightCeilingExceeded) {
		t.Fatalf("expected weight ceiling error, got %v", err)
	}

	criteria, err := store.ListCriteriaByEvent(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("list criteria failed: %v", err)
	}
	if len(criteria) != 3 {
		t.Fatalf("expected rejected criterion to leave store untouched, got %d criteria", len(criteria))
	}
}

func TestAddCriterionRejectsNonPositiveWeight(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetEventState(ports.EventStateProjection{EventID: "event-1", State: "pending"})
	uc := newUseCase(store)

	for _, weight := range []float64{0, -5} {
		_, err := uc.AddCriterion(context.Background(), AddCriterionCommand{
			EventID:     "event-1",
			Description: "dimension",
			Weight:      weight,
		})
		if !errors.Is(err, domainerrors.ErrInvalidCriterionInput) {
			t.Fatalf("expected invalid input for weight %v, got %v", weight, err)
		}
	}
}

func TestEditCriterionExcludesOwnPriorWeight(t *testing.T) {
	store := memory.NewStore(nil)
	store.SetEventState(ports.EventStateProjection{EventID: "event-1", State: "approved"})
	uc := newUseCase(store)

	first, err := uc.AddCriterion(context.Background(), AddCriterionCommand{
		EventID:     "event-1",
		Description: "clarity",
		Weight:      60,
	})
	if err != nil {
		t.Fatalf("add criterion failed: %v", err)
	}
	if _, err := uc.AddCriterion(context.Background(), AddCriterionCommand{
		EventID:     "event-1",
		Description: "originality",
		Weight:      40,
	}); err != nil {
		t.Fatalf("add criterion failed: %v", err)
	}

	// Raising 60 to 55 is legal because the prior 60 leaves the sum.
	edited, err := uc.EditCriterion(context.Background(), EditCriterionCommand{
		CriterionID: first.CriterionID,
		Description: "clarity",
		Weight:      55,
	})
	if err != nil {
		t.Fatalf("edit criterion failed: %v", err)
	}
	if edited.Weight != 55 {
		t.Fatalf("expected weight 55, got %v", edited.Weight)
	}

	// Raising it past the headroom is not.
	_, err = uc.EditCriterion(context.Background(), EditCriterionCommand{
		CriterionID: first.CriterionID,
		Description: "clarity",
		Weight:      65,
	})
	if !errors.Is(err, domainerrors.ErrWeightCeilingExceeded) {
		t.Fatalf("expected weight ceiling error, got %v", err)
	}
}

func TestCriterionMutationBlockedOutsideEditableStates(t *testing.T) {
	store := memory.NewStore([]entities.Criterion{{
		CriterionID: "criterion-1",
		EventID:     "event-1",
		Description: "clarity",
		Weight:      40,
	}})
	store.SetEventState(ports.EventStateProjection{EventID: "event-1", State: "finalized"})
	uc := newUseCase(store)

	_, err := uc.AddCriterion(context.Background(), AddCriterionCommand{
		EventID:     "event-1",
		Description: "late addition",
		Weight:      10,
	})
	if !errors.Is(err, domainerrors.ErrEventNotEditable) {
		t.Fatalf("expected not-editable error on add, got %v", err)
	}

	_, err = uc.EditCriterion(context.Background(), EditCriterionCommand{
		CriterionID: "criterion-1",
		Description: "clarity",
		Weight:      45,
	})
	if !errors.Is(err, domainerrors.ErrEventNotEditable) {
		t.Fatalf("expected not-editable error on edit, got %v", err)
	}
}

func TestRemoveCriterionIsUnconditional(t *testing.T) {
	store := memory.NewStore([]entities.Criterion{{
		CriterionID: "criterion-1",
		EventID:     "event-1",
		Description: "clarity",
		Weight:      40,
	}})
	store.SetEventState(ports.EventStateProjection{EventID: "event-1", State: "finalized"})
	uc := newUseCase(store)

	if err := uc.RemoveCriterion(context.Background(), RemoveCriterionCommand{CriterionID: "criterion-1"}); err != nil {
		t.Fatalf("remove criterion failed: %v", err)
	}
	if _, err := store.GetCriterion(context.Background(), "criterion-1"); !errors.Is(err, domainerrors.ErrCriterionNotFound) {
		t.Fatalf("expected criterion gone, got %v", err)
	}
}
