package commands

import (
	"context"
	"log/slog"
	"strings"
	"time"

	application "symposium/contexts/event-core/lifecycle-service/application"
	"symposium/contexts/event-core/lifecycle-service/domain/entities"
	domainerrors "symposium/contexts/event-core/lifecycle-service/domain/errors"
	"symposium/contexts/event-core/lifecycle-service/ports"
)

type CreateEventCommand struct {
	Name           string
	Description    string
	Capacity       int
	AdminProfileID string
	StartsAt       *time.Time
	EndsAt         *time.Time
}

// CreateEventUseCase registers a new event in the pending state, waiting for
// an approval transition before inscriptions open.
type CreateEventUseCase struct {
	Events   ports.EventRepository
	Profiles ports.ProfileReader
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc CreateEventUseCase) CreateEvent(ctx context.Context, cmd CreateEventCommand) (entities.Event, error) {
	logger := application.ResolveLogger(uc.Logger)
	adminProfileID := strings.TrimSpace(cmd.AdminProfileID)

	candidate := entities.Event{
		Name:           strings.TrimSpace(cmd.Name),
		Description:    strings.TrimSpace(cmd.Description),
		State:          entities.EventStatePending,
		Capacity:       cmd.Capacity,
		AdminProfileID: adminProfileID,
		StartsAt:       cmd.StartsAt,
		EndsAt:         cmd.EndsAt,
	}
	if !candidate.ValidateBasics() {
		logger.Warn("event create validation failed",
			"event", "event_create_validation_failed",
			"module", "event-core/lifecycle-service",
			"layer", "application",
			"name", candidate.Name,
		)
		return entities.Event{}, domainerrors.ErrInvalidEventInput
	}

	if adminProfileID != "" {
		profile, found, err := uc.Profiles.GetRoleProfile(ctx, adminProfileID)
		if err != nil {
			return entities.Event{}, err
		}
		if !found || profile.Kind != entities.RoleKindAdministrator {
			return entities.Event{}, domainerrors.ErrProfileNotFound
		}
	}

	eventID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Event{}, err
	}
	now := uc.Clock.Now().UTC()
	candidate.EventID = eventID
	candidate.CreatedAt = now
	candidate.UpdatedAt = now
	if err := uc.Events.SaveEvent(ctx, candidate); err != nil {
		return entities.Event{}, err
	}

	logger.Info("event created",
		"event", "event_created",
		"module", "event-core/lifecycle-service",
		"layer", "application",
		"event_id", candidate.EventID,
		"state", string(candidate.State),
	)
	return candidate, nil
}
