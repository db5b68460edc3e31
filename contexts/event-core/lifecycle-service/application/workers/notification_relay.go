package workers

import (
	"context"
	"log/slog"
	"time"

	application "symposium/contexts/event-core/lifecycle-service/application"
	"symposium/contexts/event-core/lifecycle-service/ports"
)

// NotificationRelay publishes pending notification intents to the message
// bus.
type NotificationRelay struct {
	Outbox    ports.NotificationOutbox
	Publisher ports.NotificationPublisher
	Clock     ports.Clock
	BatchSize int
	Logger    *slog.Logger
}

// RunOnce publishes a bounded batch of pending intents and marks each one
// published only after the bus accepted it. It stops on the first failure so
// the retry loop can reprocess remaining rows safely.
func (r NotificationRelay) RunOnce(ctx context.Context) error {
	logger := application.ResolveLogger(r.Logger)
	limit := r.BatchSize
	if limit <= 0 {
		limit = 100
	}

	pending, err := r.Outbox.ListPendingNotifications(ctx, limit)
	if err != nil {
		logger.Error("notification outbox list failed",
			"event", "notification_outbox_list_failed",
			"module", "event-core/lifecycle-service",
			"layer", "worker",
			"error", err.Error(),
		)
		return err
	}
	if len(pending) == 0 {
		logger.Debug("notification relay found no pending intents",
			"event", "notification_relay_noop",
			"module", "event-core/lifecycle-service",
			"layer", "worker",
			"batch_size", limit,
		)
		return nil
	}

	now := time.Now().UTC()
	if r.Clock != nil {
		now = r.Clock.Now().UTC()
	}

	for _, intent := range pending {
		envelope, err := newNotificationEnvelope(intent)
		if err != nil {
			logger.Error("notification envelope build failed",
				"event", "notification_envelope_failed",
				"module", "event-core/lifecycle-service",
				"layer", "worker",
				"intent_id", intent.IntentID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Publisher.Publish(ctx, envelope); err != nil {
			logger.Error("notification publish failed",
				"event", "notification_publish_failed",
				"module", "event-core/lifecycle-service",
				"layer", "worker",
				"intent_id", intent.IntentID,
				"recipient", intent.RecipientUserID,
				"error", err.Error(),
			)
			return err
		}
		if err := r.Outbox.MarkNotificationPublished(ctx, intent.IntentID, now); err != nil {
			logger.Error("notification mark published failed",
				"event", "notification_mark_published_failed",
				"module", "event-core/lifecycle-service",
				"layer", "worker",
				"intent_id", intent.IntentID,
				"error", err.Error(),
			)
			return err
		}
	}

	logger.Info("notification relay cycle completed",
		"event", "notification_relay_completed",
		"module", "event-core/lifecycle-service",
		"layer", "worker",
		"published_count", len(pending),
	)
	return nil
}
