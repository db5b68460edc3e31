package httptransport

import "time"

type CreateEventRequest struct {
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	Capacity       int        `json:"capacity"`
	AdminProfileID string     `json:"admin_profile_id"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
}

type ChangeStateRequest struct {
	Target  string `json:"target"`
	ActorID string `json:"actor_id"`
	Reason  string `json:"reason"`
}

type EventResponse struct {
	EventID        string     `json:"event_id"`
	Name           string     `json:"name"`
	Description    string     `json:"description"`
	State          string     `json:"state"`
	Capacity       int        `json:"capacity"`
	AdminProfileID string     `json:"admin_profile_id"`
	StartsAt       *time.Time `json:"starts_at,omitempty"`
	EndsAt         *time.Time `json:"ends_at,omitempty"`
	CreatedAt      time.Time  `json:"created_at"`
	UpdatedAt      time.Time  `json:"updated_at"`
}

type ChangeStateResponse struct {
	Event    EventResponse `json:"event"`
	Notified bool          `json:"notified"`
	TornDown bool          `json:"torn_down"`
}

type EventListResponse struct {
	Items []EventResponse `json:"items"`
}

type StateChangeResponse struct {
	ChangeID  string    `json:"change_id"`
	EventID   string    `json:"event_id"`
	FromState string    `json:"from_state"`
	ToState   string    `json:"to_state"`
	ChangedBy string    `json:"changed_by"`
	Reason    string    `json:"reason"`
	CreatedAt time.Time `json:"created_at"`
}

type StateHistoryResponse struct {
	Items []StateChangeResponse `json:"items"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
