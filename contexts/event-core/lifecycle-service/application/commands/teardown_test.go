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

func seedParticipant(store *memory.Store, userID string, profileID string, participationID string, eventID string) {
	store.SetUser(entities.User{UserID: userID})
	store.SetRoleProfile(entities.RoleProfile{
		ProfileID: profileID,
		UserID:    userID,
		Kind:      entities.RoleKindParticipant,
	})
	store.SetParticipation(entities.Participation{
		ParticipationID: participationID,
		ProfileID:       profileID,
		EventID:         eventID,
	})
}

func closeEvent(t *testing.T, uc TransitionUseCase, eventID string) ChangeStateResult {
	t.Helper()
	result, err := uc.ChangeState(context.Background(), ChangeStateCommand{
		EventID: eventID,
		Target:  entities.EventStateClosed,
	})
	if err != nil {
		t.Fatalf("close event failed: %v", err)
	}
	if !result.TornDown {
		t.Fatalf("expected teardown to run")
	}
	return result
}

func TestTeardownRemovesSoleAdministratorWithoutQuota(t *testing.T) {
	store := memory.NewStore()
	seedAdmin(store, "admin-1", "user-admin")
	seedEvent(store, "event-1", entities.EventStateFinalized, "admin-1")
	seedParticipant(store, "user-p1", "profile-p1", "part-1", "event-1")
	store.SetInvitationCode(entities.InvitationCode{
		CodeID:         "code-1",
		AdminProfileID: "admin-1",
		Quota:          0,
	})
	uc := newTransitionUseCase(store)

	result := closeEvent(t, uc, "event-1")
	if !result.Plan.DeleteAdminProfile {
		t.Fatalf("expected admin profile in the plan")
	}

	if _, found, _ := store.GetEvent(context.Background(), "event-1"); found {
		t.Fatalf("event row should be gone")
	}
	if _, found, _ := store.GetRoleProfile(context.Background(), "admin-1"); found {
		t.Fatalf("sole administrator without quota should be removed")
	}
	if _, ok := store.GetUser("user-admin"); ok {
		t.Fatalf("administrator's user had no other profiles and should be removed")
	}
	if _, ok := store.GetInvitationCode("code-1"); ok {
		t.Fatalf("administrator's exhausted code should be removed")
	}
	if _, ok := store.GetUser("user-p1"); ok {
		t.Fatalf("participant with no remaining participations should be removed")
	}
}

func TestTeardownKeepsAdministratorHoldingQuota(t *testing.T) {
	store := memory.NewStore()
	seedAdmin(store, "admin-1", "user-admin")
	seedEvent(store, "event-1", entities.EventStateFinalized, "admin-1")
	seedParticipant(store, "user-p1", "profile-p1", "part-1", "event-1")
	store.SetInvitationCode(entities.InvitationCode{
		CodeID:         "code-1",
		AdminProfileID: "admin-1",
		Quota:          3,
	})
	uc := newTransitionUseCase(store)

	result := closeEvent(t, uc, "event-1")
	if result.Plan.DeleteAdminProfile {
		t.Fatalf("admin holding unused quota must survive teardown")
	}

	if _, found, _ := store.GetRoleProfile(context.Background(), "admin-1"); !found {
		t.Fatalf("admin profile should remain")
	}
	if _, ok := store.GetUser("user-admin"); !ok {
		t.Fatalf("admin user should remain")
	}
	if _, ok := store.GetInvitationCode("code-1"); !ok {
		t.Fatalf("unused invitation code should remain")
	}
	if _, found, _ := store.GetEvent(context.Background(), "event-1"); found {
		t.Fatalf("event row should still be gone")
	}
}

func TestTeardownKeepsAdministratorWithOtherEvents(t *testing.T) {
	store := memory.NewStore()
	seedAdmin(store, "admin-1", "user-admin")
	seedEvent(store, "event-1", entities.EventStateFinalized, "admin-1")
	seedEvent(store, "event-2", entities.EventStateApproved, "admin-1")
	uc := newTransitionUseCase(store)

	closeEvent(t, uc, "event-1")

	if _, found, _ := store.GetRoleProfile(context.Background(), "admin-1"); !found {
		t.Fatalf("admin administering another event must survive")
	}
	if _, found, _ := store.GetEvent(context.Background(), "event-2"); !found {
		t.Fatalf("unrelated event must be untouched")
	}
}

func TestTeardownKeepsUsersWithRemainingAssociations(t *testing.T) {
	store := memory.NewStore()
	seedEvent(store, "event-1", entities.EventStateFinalized, "")
	seedEvent(store, "event-2", entities.EventStateApproved, "")

	// profile-p1 participates in both events, so the profile and its user
	// survive the teardown of event-1.
	seedParticipant(store, "user-p1", "profile-p1", "part-1", "event-1")
	store.SetParticipation(entities.Participation{
		ParticipationID: "part-2",
		ProfileID:       "profile-p1",
		EventID:         "event-2",
	})

	// user-p2 holds an extra evaluator profile, so the user survives even
	// though its participant profile goes.
	seedParticipant(store, "user-p2", "profile-p2", "part-3", "event-1")
	store.SetRoleProfile(entities.RoleProfile{
		ProfileID: "profile-p2-eval",
		UserID:    "user-p2",
		Kind:      entities.RoleKindEvaluator,
	})
	uc := newTransitionUseCase(store)

	closeEvent(t, uc, "event-1")

	if _, found, _ := store.GetRoleProfile(context.Background(), "profile-p1"); !found {
		t.Fatalf("profile with remaining participations should survive")
	}
	if _, ok := store.GetUser("user-p1"); !ok {
		t.Fatalf("user-p1 should survive")
	}
	if _, found, _ := store.GetRoleProfile(context.Background(), "profile-p2"); found {
		t.Fatalf("profile-p2 had no remaining participations and should be removed")
	}
	if _, ok := store.GetUser("user-p2"); !ok {
		t.Fatalf("user with a remaining role profile must not be removed")
	}
	if _, ok := store.GetParticipation("part-2"); !ok {
		t.Fatalf("participation in another event must be untouched")
	}
}

func TestTeardownIsAllOrNothing(t *testing.T) {
	store := memory.NewStore()
	seedAdmin(store, "admin-1", "user-admin")
	seedEvent(store, "event-1", entities.EventStateFinalized, "admin-1")
	seedParticipant(store, "user-p1", "profile-p1", "part-1", "event-1")
	store.SetProject(entities.Project{
		ProjectID: "project-1",
		EventID:   "event-1",
	})
	uc := newTransitionUseCase(store)

	storeFailure := errors.New("storage unavailable")
	store.FailNextTeardown(storeFailure)

	_, err := uc.ChangeState(context.Background(), ChangeStateCommand{
		EventID: "event-1",
		Target:  entities.EventStateClosed,
	})
	if !errors.Is(err, storeFailure) {
		t.Fatalf("expected injected failure, got %v", err)
	}
	if !errors.Is(err, domainerrors.ErrTeardownFailed) {
		t.Fatalf("expected teardown failure sentinel, got %v", err)
	}

	event, found, _ := store.GetEvent(context.Background(), "event-1")
	if !found || event.State != entities.EventStateFinalized {
		t.Fatalf("failed teardown must leave the event finalized, found=%v state=%s", found, event.State)
	}
	if _, ok := store.GetParticipation("part-1"); !ok {
		t.Fatalf("failed teardown must leave participations untouched")
	}
	if _, ok := store.GetProject("project-1"); !ok {
		t.Fatalf("failed teardown must leave projects untouched")
	}
	if _, ok := store.GetUser("user-p1"); !ok {
		t.Fatalf("failed teardown must leave users untouched")
	}

	// Retrying after the fault clears succeeds and completes the cascade.
	closeEvent(t, uc, "event-1")
	if _, ok := store.GetProject("project-1"); ok {
		t.Fatalf("retried teardown should remove the event's projects")
	}
}

func TestTeardownDetectsOrphanRoleReference(t *testing.T) {
	store := memory.NewStore()
	seedEvent(store, "event-1", entities.EventStateFinalized, "")
	store.SetParticipation(entities.Participation{
		ParticipationID: "part-1",
		ProfileID:       "profile-ghost",
		EventID:         "event-1",
	})
	uc := newTransitionUseCase(store)

	_, err := uc.ChangeState(context.Background(), ChangeStateCommand{
		EventID: "event-1",
		Target:  entities.EventStateClosed,
	})
	if !errors.Is(err, domainerrors.ErrOrphanRoleReference) {
		t.Fatalf("expected orphan reference error, got %v", err)
	}
	if _, ok := store.GetParticipation("part-1"); !ok {
		t.Fatalf("consistency failure must not delete anything")
	}
}

func TestBuildTeardownPlanIsDeterministic(t *testing.T) {
	snapshot := entities.TeardownSnapshot{
		Event: entities.Event{EventID: "event-1"},
		Participations: []entities.Participation{
			{ParticipationID: "part-b", ProfileID: "profile-b", EventID: "event-1"},
			{ParticipationID: "part-a", ProfileID: "profile-a", EventID: "event-1"},
		},
		Profiles: map[string]entities.RoleProfile{
			"profile-a": {ProfileID: "profile-a", UserID: "user-a", Kind: entities.RoleKindParticipant},
			"profile-b": {ProfileID: "profile-b", UserID: "user-b", Kind: entities.RoleKindParticipant},
		},
		ParticipationCounts: map[string]int{"profile-a": 1, "profile-b": 1},
		ProfileCounts:       map[string]int{"user-a": 1, "user-b": 1},
	}
	snapshot.Event.CreatedAt = time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)

	first, err := entities.BuildTeardownPlan(snapshot)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	second, err := entities.BuildTeardownPlan(snapshot)
	if err != nil {
		t.Fatalf("plan failed: %v", err)
	}
	if len(first.ProfileIDs) != 2 || len(first.UserIDs) != 2 {
		t.Fatalf("unexpected plan sizes: %+v", first)
	}
	for i := range first.ProfileIDs {
		if first.ProfileIDs[i] != second.ProfileIDs[i] {
			t.Fatalf("plan ordering is not deterministic: %v vs %v", first.ProfileIDs, second.ProfileIDs)
		}
	}
}
