package commands

import (
	"context"
	"errors"
	"testing"
	"time"

	"symposium/contexts/event-core/lifecycle-service/adapters/memory"
	"symposium/contexts/event-core/lifecycle-service/domain/entities"
	domainerrors "symposium/contexts/event-core/lifecycle-service/domain/errors"
)

type fixedClock struct {
	now time.Time
}

func (c fixedClock) Now() time.Time { return c.now }

func newTransitionUseCase(store *memory.Store) TransitionUseCase {
	return TransitionUseCase{
		Events:     store,
		History:    store,
		Profiles:   store,
		Graph:      store,
		Outbox:     store,
		Watermarks: store,
		Clock:      fixedClock{now: time.Date(2026, time.April, 2, 10, 0, 0, 0, time.UTC)},
		IDGen:      store,
	}
}

func seedEvent(store *memory.Store, eventID string, state entities.EventState, adminProfileID string) {
	_ = store.SaveEvent(context.Background(), entities.Event{
		EventID:        eventID,
		Name:           "annual symposium",
		State:          state,
		Capacity:       100,
		AdminProfileID: adminProfileID,
		CreatedAt:      time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
		UpdatedAt:      time.Date(2026, time.March, 1, 8, 0, 0, 0, time.UTC),
	})
}

func seedAdmin(store *memory.Store, profileID string, userID string) {
	store.SetUser(entities.User{UserID: userID, Email: userID + "@example.org"})
	store.SetRoleProfile(entities.RoleProfile{
		ProfileID: profileID,
		UserID:    userID,
		Kind:      entities.RoleKindAdministrator,
	})
}

func TestChangeStateFollowsTransitionTable(t *testing.T) {
	store := memory.NewStore()
	seedAdmin(store, "admin-1", "user-admin")
	seedEvent(store, "event-1", entities.EventStatePending, "admin-1")
	uc := newTransitionUseCase(store)

	steps := []entities.EventState{
		entities.EventStateApproved,
		entities.EventStateInscriptionsClosed,
		entities.EventStateFinalized,
	}
	for _, target := range steps {
		result, err := uc.ChangeState(context.Background(), ChangeStateCommand{
			EventID: "event-1",
			Target:  target,
			ActorID: "admin-1",
		})
		if err != nil {
			t.Fatalf("transition to %s failed: %v", target, err)
		}
		if result.Event.State != target {
			t.Fatalf("expected state %s, got %s", target, result.Event.State)
		}
	}

	history, err := store.ListStateChanges(context.Background(), "event-1")
	if err != nil {
		t.Fatalf("list state changes failed: %v", err)
	}
	if len(history) != len(steps) {
		t.Fatalf("expected %d history rows, got %d", len(steps), len(history))
	}
	if history[0].FromState != entities.EventStatePending || history[0].ToState != entities.EventStateApproved {
		t.Fatalf("unexpected first history row: %+v", history[0])
	}
}

func TestFinalizedEventCannotReturnToApproved(t *testing.T) {
	store := memory.NewStore()
	seedEvent(store, "event-1", entities.EventStateFinalized, "")
	uc := newTransitionUseCase(store)

	_, err := uc.ChangeState(context.Background(), ChangeStateCommand{
		EventID: "event-1",
		Target:  entities.EventStateApproved,
	})
	if !errors.Is(err, domainerrors.ErrInvalidStateTransition) {
		t.Fatalf("expected invalid transition error, got %v", err)
	}

	event, found, getErr := store.GetEvent(context.Background(), "event-1")
	if getErr != nil || !found {
		t.Fatalf("event lookup failed: found=%v err=%v", found, getErr)
	}
	if event.State != entities.EventStateFinalized {
		t.Fatalf("expected state unchanged, got %s", event.State)
	}
	history, _ := store.ListStateChanges(context.Background(), "event-1")
	if len(history) != 0 {
		t.Fatalf("rejected transition must not append history, got %d rows", len(history))
	}
}

func TestApprovalNotifiesAdministratorOncePerState(t *testing.T) {
	store := memory.NewStore()
	seedAdmin(store, "admin-1", "user-admin")
	seedEvent(store, "event-1", entities.EventStatePending, "admin-1")
	uc := newTransitionUseCase(store)

	result, err := uc.ChangeState(context.Background(), ChangeStateCommand{
		EventID: "event-1",
		Target:  entities.EventStateApproved,
	})
	if err != nil {
		t.Fatalf("approval failed: %v", err)
	}
	if !result.Notified {
		t.Fatalf("first approval should queue a notification")
	}

	// A second event approved for the same admin hits the (user, state)
	// watermark and stays silent.
	seedEvent(store, "event-2", entities.EventStatePending, "admin-1")
	result, err = uc.ChangeState(context.Background(), ChangeStateCommand{
		EventID: "event-2",
		Target:  entities.EventStateApproved,
	})
	if err != nil {
		t.Fatalf("second approval failed: %v", err)
	}
	if result.Notified {
		t.Fatalf("watermarked user must not be notified again for the same state")
	}

	pending, err := store.ListPendingNotifications(context.Background(), 10)
	if err != nil {
		t.Fatalf("list pending notifications failed: %v", err)
	}
	if len(pending) != 1 {
		t.Fatalf("expected exactly one pending intent, got %d", len(pending))
	}
	if pending[0].RecipientUserID != "user-admin" || pending[0].EventState != entities.EventStateApproved {
		t.Fatalf("unexpected intent: %+v", pending[0])
	}
}

func TestReapprovalAfterInscriptionsCloseIsAllowed(t *testing.T) {
	store := memory.NewStore()
	seedAdmin(store, "admin-1", "user-admin")
	seedEvent(store, "event-1", entities.EventStateInscriptionsClosed, "admin-1")
	uc := newTransitionUseCase(store)

	result, err := uc.ChangeState(context.Background(), ChangeStateCommand{
		EventID: "event-1",
		Target:  entities.EventStateApproved,
	})
	if err != nil {
		t.Fatalf("reapproval failed: %v", err)
	}
	if result.Event.State != entities.EventStateApproved {
		t.Fatalf("expected approved, got %s", result.Event.State)
	}
}

func TestChangeStateRejectsUnknownEvent(t *testing.T) {
	store := memory.NewStore()
	uc := newTransitionUseCase(store)

	_, err := uc.ChangeState(context.Background(), ChangeStateCommand{
		EventID: "missing",
		Target:  entities.EventStateApproved,
	})
	if !errors.Is(err, domainerrors.ErrEventNotFound) {
		t.Fatalf("expected event not found, got %v", err)
	}
}
