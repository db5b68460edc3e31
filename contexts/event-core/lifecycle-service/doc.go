// Package lifecycleservice implements the event state machine inside the
// event-core context.
//
// The module owns lifecycle transitions, administrator notification intents
// (outbox-backed, watermarked per user and state), and the cascading teardown
// that runs when an event is permanently closed. Teardown is planned by a
// pure function over a consistent snapshot of the participation/ownership
// graph and applied in a single all-or-nothing unit of work.
package lifecycleservice
