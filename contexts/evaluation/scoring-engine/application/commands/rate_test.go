package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"symposium/contexts/evaluation/scoring-engine/adapters/memory"
	domainerrors "symposium/contexts/evaluation/scoring-engine/domain/errors"
	"symposium/contexts/evaluation/scoring-engine/ports"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func seedEvent(store *memory.Store) {
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-a", EventID: "event-1", Weight: 40})
	store.SetParticipation(ports.ParticipationProjection{ParticipantID: "part-1", EventID: "event-1"})
}

func newRatingUseCase(store *memory.Store) RatingUseCase {
	return RatingUseCase{
		Ratings:        store,
		Criteria:       store,
		Participations: store,
		Clock:          fixedClock{now: time.Date(2026, time.April, 2, 15, 0, 0, 0, time.UTC)},
		IDGen:          store,
	}
}

func TestRecordRatingRejectsOutOfRangeValues(t *testing.T) {
	store := memory.NewStore(nil)
	seedEvent(store)
	uc := newRatingUseCase(store)

	for _, value := range []int{0, 6, -1} {
		_, err := uc.RecordRating(context.Background(), RecordRatingCommand{
			EvaluatorID:   "eval-1",
			ParticipantID: "part-1",
			CriterionID:   "crit-a",
			Value:         value,
		})
		if !errors.Is(err, domainerrors.ErrRatingOutOfRange) {
			t.Fatalf("expected out-of-range error for value %d, got %v", value, err)
		}
	}
}

func TestRecordRatingRejectsUnknownCriterion(t *testing.T) {
	store := memory.NewStore(nil)
	seedEvent(store)
	uc := newRatingUseCase(store)

	_, err := uc.RecordRating(context.Background(), RecordRatingCommand{
		EvaluatorID:   "eval-1",
		ParticipantID: "part-1",
		CriterionID:   "crit-missing",
		Value:         3,
	})
	if !errors.Is(err, domainerrors.ErrCriterionNotFound) {
		t.Fatalf("expected criterion not found, got %v", err)
	}
}

func TestRecordRatingRejectsCriterionFromAnotherEvent(t *testing.T) {
	store := memory.NewStore(nil)
	seedEvent(store)
	store.SetCriterion(ports.CriterionProjection{CriterionID: "crit-other", EventID: "event-2", Weight: 50})
	uc := newRatingUseCase(store)

	// part-1 participates in event-1 only, so a rating against an event-2
	// criterion must fail before any write.
	_, err := uc.RecordRating(context.Background(), RecordRatingCommand{
		EvaluatorID:   "eval-1",
		ParticipantID: "part-1",
		CriterionID:   "crit-other",
		Value:         3,
	})
	if !errors.Is(err, domainerrors.ErrCriterionEventMismatch) {
		t.Fatalf("expected event mismatch, got %v", err)
	}
	ratings, err := store.ListRatingsByParticipant(context.Background(), "part-1")
	if err != nil {
		t.Fatalf("list ratings failed: %v", err)
	}
	if len(ratings) != 0 {
		t.Fatalf("expected no ratings written, got %d", len(ratings))
	}
}

func TestRecordRatingUpsertsInPlace(t *testing.T) {
	store := memory.NewStore(nil)
	seedEvent(store)
	uc := newRatingUseCase(store)

	first, err := uc.RecordRating(context.Background(), RecordRatingCommand{
		EvaluatorID:   "eval-1",
		ParticipantID: "part-1",
		CriterionID:   "crit-a",
		Value:         4,
		Note:          "solid",
	})
	if err != nil {
		t.Fatalf("record rating failed: %v", err)
	}
	second, err := uc.RecordRating(context.Background(), RecordRatingCommand{
		EvaluatorID:   "eval-1",
		ParticipantID: "part-1",
		CriterionID:   "crit-a",
		Value:         2,
	})
	if err != nil {
		t.Fatalf("resubmit rating failed: %v", err)
	}
	if !second.WasUpdate {
		t.Fatalf("expected resubmission to be an update")
	}
	if second.Rating.RatingID != first.Rating.RatingID {
		t.Fatalf("expected same rating identity, got %s and %s", first.Rating.RatingID, second.Rating.RatingID)
	}

	ratings, err := store.ListRatingsByParticipant(context.Background(), "part-1")
	if err != nil {
		t.Fatalf("list ratings failed: %v", err)
	}
	if len(ratings) != 1 {
		t.Fatalf("expected exactly one rating after upsert, got %d", len(ratings))
	}
	if ratings[0].Value != 2 {
		t.Fatalf("expected last write to win, got value %d", ratings[0].Value)
	}
}
