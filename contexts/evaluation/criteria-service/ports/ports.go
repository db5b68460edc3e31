package ports

import (
	"context"
	"time"

	"symposium/contexts/evaluation/criteria-service/domain/entities"
)

type CriterionRepository interface {
	// SaveCriterionGuarded persists the criterion only if the event's weight
	// sum, excluding the criterion's own prior weight, stays within the
	// ceiling. The check and the write happen in one unit of work.
	SaveCriterionGuarded(ctx context.Context, criterion entities.Criterion, ceiling float64) error
	GetCriterion(ctx context.Context, criterionID string) (entities.Criterion, error)
	ListCriteriaByEvent(ctx context.Context, eventID string) ([]entities.Criterion, error)
	DeleteCriterion(ctx context.Context, criterionID string) error
}

type EventStateProjection struct {
	EventID string
	State   string
}

// EventStateReader exposes the lifecycle state of an event so criterion
// mutation can be refused for events past their editable window.
type EventStateReader interface {
	GetEventState(ctx context.Context, eventID string) (EventStateProjection, error)
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
