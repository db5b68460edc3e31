package v1

import (
	"encoding/json"
	"time"
)

// Envelope is the canonical, versioned event envelope for cross-runtime use.
// This package is generated-contract-only and must stay backward compatible.
type Envelope struct {
	EventID          string          `json:"event_id"`
	EventType        string          `json:"event_type"`
	OccurredAt       time.Time       `json:"occurred_at"`
	SourceService    string          `json:"source_service"`
	TraceID          string          `json:"trace_id"`
	SchemaVersion    int             `json:"schema_version"`
	PartitionKeyPath string          `json:"partition_key_path"`
	PartitionKey     string          `json:"partition_key"`
	Data             json.RawMessage `json:"data"`
}

// EventStateNotification is the data payload for event.state.* notification
// events published by the lifecycle relay.
type EventStateNotification struct {
	IntentID        string    `json:"intent_id"`
	RecipientUserID string    `json:"recipient_user_id"`
	EventID         string    `json:"event_id"`
	EventState      string    `json:"event_state"`
	OccurredAt      time.Time `json:"occurred_at"`
}
