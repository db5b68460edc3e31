package ports

import (
	"context"
	"time"

	"symposium/contexts/evaluation/scoring-engine/domain/entities"
)

type RatingRepository interface {
	// SaveRating upserts by (evaluator, participant, criterion) identity.
	// Writes are per-key: concurrent writers on different keys never clobber
	// each other.
	SaveRating(ctx context.Context, rating entities.Rating) error
	GetRatingByIdentity(ctx context.Context, evaluatorID string, participantID string, criterionID string) (entities.Rating, bool, error)
	ListRatingsByParticipant(ctx context.Context, participantID string) ([]entities.Rating, error)
}

type CriterionProjection struct {
	CriterionID string
	EventID     string
	Weight      float64
}

// CriterionReader exposes the live criterion catalog. Removed criteria do not
// appear here, which is what keeps orphaned ratings out of new computations.
type CriterionReader interface {
	GetCriterion(ctx context.Context, criterionID string) (CriterionProjection, bool, error)
	ListActiveCriteria(ctx context.Context, eventID string) ([]CriterionProjection, error)
}

type ParticipationProjection struct {
	ParticipantID string
	EventID       string
	GroupCode     string
	Confirmed     bool
	ComputedScore *float64
}

type ProjectProjection struct {
	ProjectID            string
	EventID              string
	CreatorParticipantID string
	Title                string
	SubmittedAt          time.Time
	ComputedScore        *float64
}

type ParticipationReader interface {
	GetParticipation(ctx context.Context, participantID string, eventID string) (ParticipationProjection, error)
	ListParticipationsByEvent(ctx context.Context, eventID string) ([]ParticipationProjection, error)
	ListGroupMembers(ctx context.Context, eventID string, groupCode string) ([]ParticipationProjection, error)
	ListProjectsByCreator(ctx context.Context, eventID string, participantID string) ([]ProjectProjection, error)
}

// ScoreWriter persists computed scores onto participations and projects.
// SetGroupScores is atomic over every id it names: either all listed
// participations and projects carry the new score afterwards or none do.
// Concurrent writers for the same event serialize on the touched
// participation rows, so group members can never end up with mixed scores.
type ScoreWriter interface {
	SetGroupScores(ctx context.Context, eventID string, score float64, participantIDs []string, projectIDs []string) error
}

type Clock interface {
	Now() time.Time
}

type IDGenerator interface {
	NewID(ctx context.Context) (string, error)
}
