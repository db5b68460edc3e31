package queries

import (
	"context"
	"strings"

	"symposium/contexts/event-core/lifecycle-service/domain/entities"
	domainerrors "symposium/contexts/event-core/lifecycle-service/domain/errors"
	"symposium/contexts/event-core/lifecycle-service/ports"
)

type EventsUseCase struct {
	Events  ports.EventRepository
	History ports.StateChangeRepository
}

func (uc EventsUseCase) GetEvent(ctx context.Context, eventID string) (entities.Event, error) {
	event, found, err := uc.Events.GetEvent(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return entities.Event{}, err
	}
	if !found {
		return entities.Event{}, domainerrors.ErrEventNotFound
	}
	return event, nil
}

// ListEvents returns all events, optionally filtered by state when the
// filter is a supported state name.
func (uc EventsUseCase) ListEvents(ctx context.Context, stateFilter string) ([]entities.Event, error) {
	filter := entities.EventState(strings.ToLower(strings.TrimSpace(stateFilter)))
	if filter == "" {
		return uc.Events.ListEvents(ctx)
	}
	if !entities.IsSupportedEventState(filter) {
		return nil, domainerrors.ErrInvalidEventInput
	}
	return uc.Events.ListEventsByState(ctx, filter)
}

func (uc EventsUseCase) StateHistory(ctx context.Context, eventID string) ([]entities.StateChange, error) {
	trimmed := strings.TrimSpace(eventID)
	if _, err := uc.GetEvent(ctx, trimmed); err != nil {
		return nil, err
	}
	return uc.History.ListStateChanges(ctx, trimmed)
}
