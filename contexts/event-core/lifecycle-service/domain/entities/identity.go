package entities

import "time"

type RoleKind string

const (
	RoleKindAdministrator RoleKind = "administrator"
	RoleKindEvaluator     RoleKind = "evaluator"
	RoleKindParticipant   RoleKind = "participant"
	RoleKindAttendee      RoleKind = "attendee"
)

func IsSupportedRoleKind(value RoleKind) bool {
	switch value {
	case RoleKindAdministrator, RoleKindEvaluator, RoleKindParticipant, RoleKindAttendee:
		return true
	default:
		return false
	}
}

type User struct {
	UserID    string
	Email     string
	FullName  string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// RoleProfile is a role-specific persona of a user. A user holds one profile
// per role it exercises; the user record itself lives only as long as at
// least one profile does.
type RoleProfile struct {
	ProfileID string
	UserID    string
	Kind      RoleKind
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Participation struct {
	ParticipationID string
	ProfileID       string
	EventID         string
	GroupCode       string
	Confirmed       bool
	ComputedScore   *float64
	CreatedAt       time.Time
	UpdatedAt       time.Time
}

type Project struct {
	ProjectID       string
	EventID         string
	ParticipationID string
	Title           string
	ComputedScore   *float64
	SubmittedAt     time.Time
}

// InvitationCode grants an administrator a quota of event creations. A code
// with remaining quota keeps its holder alive through teardown.
type InvitationCode struct {
	CodeID         string
	AdminProfileID string
	EventID        string
	Code           string
	Quota          int
	CreatedAt      time.Time
}

type CertificateConfig struct {
	ConfigID  string
	EventID   string
	Layout    []byte
	CreatedAt time.Time
	UpdatedAt time.Time
}

type CategoryLink struct {
	EventID    string
	CategoryID string
}

// NotificationWatermark records that a user was already notified about an
// event reaching a given state. One watermark per (user, state) pair.
type NotificationWatermark struct {
	UserID     string
	EventState EventState
	NotifiedAt time.Time
}

type NotificationIntent struct {
	IntentID        string
	RecipientUserID string
	EventID         string
	EventState      EventState
	OccurredAt      time.Time
}
