package workers

import (
	"encoding/json"

	"symposium/contexts/event-core/lifecycle-service/domain/entities"
	"symposium/contexts/event-core/lifecycle-service/ports"
	contractsv1 "symposium/contracts/gen/events/v1"
)

// newNotificationEnvelope builds the canonical envelope for a notification
// intent. Notifications are partitioned by event so per-event consumers see
// state changes in order.
func newNotificationEnvelope(intent entities.NotificationIntent) (ports.NotificationEnvelope, error) {
	payload, err := json.Marshal(contractsv1.EventStateNotification{
		IntentID:        intent.IntentID,
		RecipientUserID: intent.RecipientUserID,
		EventID:         intent.EventID,
		EventState:      string(intent.EventState),
		OccurredAt:      intent.OccurredAt,
	})
	if err != nil {
		return ports.NotificationEnvelope{}, err
	}
	return ports.NotificationEnvelope{
		EventID:          intent.IntentID,
		EventType:        "event.state." + string(intent.EventState),
		OccurredAt:       intent.OccurredAt.UTC(),
		SourceService:    "lifecycle-service",
		TraceID:          intent.IntentID,
		SchemaVersion:    1,
		PartitionKeyPath: "event_id",
		PartitionKey:     intent.EventID,
		Data:             payload,
	}, nil
}
