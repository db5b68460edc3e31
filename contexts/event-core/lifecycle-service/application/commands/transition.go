package commands

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	application "symposium/contexts/event-core/lifecycle-service/application"
	"symposium/contexts/event-core/lifecycle-service/domain/entities"
	domainerrors "symposium/contexts/event-core/lifecycle-service/domain/errors"
	"symposium/contexts/event-core/lifecycle-service/ports"
)

type ChangeStateCommand struct {
	EventID string
	Target  entities.EventState
	ActorID string
	Reason  string
}

type ChangeStateResult struct {
	Event    entities.Event
	Notified bool
	TornDown bool
	Plan     entities.TeardownPlan
}

// TransitionUseCase drives the event state machine. Approval transitions
// queue an administrator notification intent at most once per (user, state)
// pair; the transition into closed plans and applies the cascading teardown
// instead of persisting a new state.
type TransitionUseCase struct {
	Events     ports.EventRepository
	History    ports.StateChangeRepository
	Profiles   ports.ProfileReader
	Graph      ports.TeardownStore
	Outbox     ports.NotificationOutbox
	Watermarks ports.WatermarkStore
	Clock      ports.Clock
	IDGen      ports.IDGenerator
	Logger     *slog.Logger
}

func (uc TransitionUseCase) ChangeState(ctx context.Context, cmd ChangeStateCommand) (ChangeStateResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	eventID := strings.TrimSpace(cmd.EventID)
	if eventID == "" || !entities.IsSupportedEventState(cmd.Target) {
		return ChangeStateResult{}, domainerrors.ErrInvalidEventInput
	}

	event, found, err := uc.Events.GetEvent(ctx, eventID)
	if err != nil {
		return ChangeStateResult{}, err
	}
	if !found {
		return ChangeStateResult{}, domainerrors.ErrEventNotFound
	}
	if !entities.CanTransition(event.State, cmd.Target) {
		logger.Warn("state transition rejected",
			"event", "event_transition_rejected",
			"module", "event-core/lifecycle-service",
			"layer", "application",
			"event_id", eventID,
			"from", string(event.State),
			"to", string(cmd.Target),
		)
		return ChangeStateResult{}, domainerrors.ErrInvalidStateTransition
	}

	if cmd.Target == entities.EventStateClosed {
		return uc.teardown(ctx, event)
	}

	fromState := event.State
	event.State = cmd.Target
	event.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Events.SaveEvent(ctx, event); err != nil {
		return ChangeStateResult{}, err
	}

	changeID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return ChangeStateResult{}, err
	}
	change := entities.StateChange{
		ChangeID:  changeID,
		EventID:   event.EventID,
		FromState: fromState,
		ToState:   event.State,
		ChangedBy: strings.TrimSpace(cmd.ActorID),
		Reason:    strings.TrimSpace(cmd.Reason),
		CreatedAt: event.UpdatedAt,
	}
	if err := uc.History.AppendStateChange(ctx, change); err != nil {
		return ChangeStateResult{}, err
	}

	result := ChangeStateResult{Event: event}
	if cmd.Target == entities.EventStateApproved {
		notified, err := uc.notifyAdministrator(ctx, event)
		if err != nil {
			return ChangeStateResult{}, err
		}
		result.Notified = notified
	}

	logger.Info("state transition applied",
		"event", "event_transition_applied",
		"module", "event-core/lifecycle-service",
		"layer", "application",
		"event_id", event.EventID,
		"from", string(fromState),
		"to", string(event.State),
		"notified", result.Notified,
	)
	return result, nil
}

// notifyAdministrator queues an approval notification unless the admin's
// user already holds a watermark for the target state.
func (uc TransitionUseCase) notifyAdministrator(ctx context.Context, event entities.Event) (bool, error) {
	if event.AdminProfileID == "" {
		return false, nil
	}
	profile, found, err := uc.Profiles.GetRoleProfile(ctx, event.AdminProfileID)
	if err != nil {
		return false, err
	}
	if !found {
		return false, domainerrors.ErrOrphanRoleReference
	}

	already, err := uc.Watermarks.HasWatermark(ctx, profile.UserID, event.State)
	if err != nil {
		return false, err
	}
	if already {
		return false, nil
	}

	intentID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return false, err
	}
	now := uc.Clock.Now().UTC()
	intent := entities.NotificationIntent{
		IntentID:        intentID,
		RecipientUserID: profile.UserID,
		EventID:         event.EventID,
		EventState:      event.State,
		OccurredAt:      now,
	}
	if err := uc.Outbox.AppendNotification(ctx, intent); err != nil {
		return false, err
	}
	watermark := entities.NotificationWatermark{
		UserID:     profile.UserID,
		EventState: event.State,
		NotifiedAt: now,
	}
	if err := uc.Watermarks.PutWatermark(ctx, watermark); err != nil {
		return false, err
	}
	return true, nil
}

func (uc TransitionUseCase) teardown(ctx context.Context, event entities.Event) (ChangeStateResult, error) {
	logger := application.ResolveLogger(uc.Logger)

	snapshot, err := uc.Graph.SnapshotEventGraph(ctx, event.EventID)
	if err != nil {
		return ChangeStateResult{}, fmt.Errorf("%w: %w", domainerrors.ErrTeardownFailed, err)
	}
	plan, err := entities.BuildTeardownPlan(snapshot)
	if err != nil {
		return ChangeStateResult{}, err
	}
	if err := uc.Graph.ApplyTeardown(ctx, plan); err != nil {
		logger.Error("event teardown failed",
			"event", "event_teardown_failed",
			"module", "event-core/lifecycle-service",
			"layer", "application",
			"event_id", event.EventID,
			"error", err,
		)
		return ChangeStateResult{}, fmt.Errorf("%w: %w", domainerrors.ErrTeardownFailed, err)
	}

	logger.Info("event torn down",
		"event", "event_torn_down",
		"module", "event-core/lifecycle-service",
		"layer", "application",
		"event_id", event.EventID,
		"participations", len(plan.ParticipationIDs),
		"profiles", len(plan.ProfileIDs),
		"users", len(plan.UserIDs),
		"admin_removed", plan.DeleteAdminProfile,
	)
	event.State = entities.EventStateClosed
	return ChangeStateResult{Event: event, TornDown: true, Plan: plan}, nil
}
