package ports

import (
	"context"
	"time"

	"symposium/contexts/event-core/lifecycle-service/domain/entities"
	contractsv1 "symposium/contracts/gen/events/v1"
)

// NotificationEnvelope is the canonical wire shape for published
// notifications, shared with downstream consumers through the contracts
// module.
type NotificationEnvelope = contractsv1.Envelope

type EventRepository interface {
	SaveEvent(ctx context.Context, event entities.Event) error
	GetEvent(ctx context.Context, eventID string) (entities.Event, bool, error)
	ListEvents(ctx context.Context) ([]entities.Event, error)
	ListEventsByState(ctx context.Context, state entities.EventState) ([]entities.Event, error)
}

type StateChangeRepository interface {
	AppendStateChange(ctx context.Context, change entities.StateChange) error
	ListStateChanges(ctx context.Context, eventID string) ([]entities.StateChange, error)
}

type ProfileReader interface {
	GetRoleProfile(ctx context.Context, profileID string) (entities.RoleProfile, bool, error)
}

// TeardownStore snapshots the ownership graph around an event and applies a
// computed teardown plan. Apply must be all-or-nothing: either every record
// in the plan is removed or none is.
type TeardownStore interface {
	SnapshotEventGraph(ctx context.Context, eventID string) (entities.TeardownSnapshot, error)
	ApplyTeardown(ctx context.Context, plan entities.TeardownPlan) error
}

type NotificationOutbox interface {
	AppendNotification(ctx context.Context, intent entities.NotificationIntent) error
	ListPendingNotifications(ctx context.Context, limit int) ([]entities.NotificationIntent, error)
	MarkNotificationPublished(ctx context.Context, intentID string, publishedAt time.Time) error
}

type WatermarkStore interface {
	HasWatermark(ctx context.Context, userID string, state entities.EventState) (bool, error)
	PutWatermark(ctx context.Context, watermark entities.NotificationWatermark) error
}

// NotificationPublisher delivers enveloped notifications to the outside
// world. The relay worker marks an intent published only after Publish
// returns nil.
type NotificationPublisher interface {
	Publish(ctx context.Context, envelope NotificationEnvelope) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
