package entities

import (
	"strings"
	"time"
)

type EventState string

const (
	EventStatePending            EventState = "pending"
	EventStateApproved           EventState = "approved"
	EventStateRejected           EventState = "rejected"
	EventStateInscriptionsClosed EventState = "inscriptions_closed"
	EventStateFinalized          EventState = "finalized"
	EventStateClosed             EventState = "closed"
)

type Event struct {
	EventID        string
	Name           string
	Description    string
	State          EventState
	Capacity       int
	AdminProfileID string
	StartsAt       *time.Time
	EndsAt         *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

func (e Event) ValidateBasics() bool {
	name := strings.TrimSpace(e.Name)
	return name != "" &&
		len(name) <= 120 &&
		e.Capacity >= 0 &&
		IsSupportedEventState(e.State)
}

// AcceptsInscriptions reports whether new participations may still be
// registered against the event.
func (e Event) AcceptsInscriptions() bool {
	return e.State == EventStateApproved
}

func IsSupportedEventState(value EventState) bool {
	switch value {
	case EventStatePending, EventStateApproved, EventStateRejected,
		EventStateInscriptionsClosed, EventStateFinalized, EventStateClosed:
		return true
	default:
		return false
	}
}

// CanTransition encodes the lifecycle state machine. Closed is terminal and
// reached only from finalized; rejection is only possible while pending.
func CanTransition(from EventState, to EventState) bool {
	switch to {
	case EventStateApproved:
		return from == EventStatePending || from == EventStateInscriptionsClosed
	case EventStateRejected:
		return from == EventStatePending
	case EventStateInscriptionsClosed:
		return from == EventStateApproved
	case EventStateFinalized:
		return from == EventStateApproved || from == EventStateInscriptionsClosed
	case EventStateClosed:
		return from == EventStateFinalized
	default:
		return false
	}
}

type StateChange struct {
	ChangeID  string
	EventID   string
	FromState EventState
	ToState   EventState
	ChangedBy string
	Reason    string
	CreatedAt time.Time
}
