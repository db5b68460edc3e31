package entities

import (
	"math"
	"time"
)

const (
	RatingMin = 1
	RatingMax = 5
)

// Rating is one evaluator's 1-5 score for one participant on one criterion.
// The (evaluator, participant, criterion) identity is unique; resubmission
// overwrites in place.
type Rating struct {
	RatingID      string
	EvaluatorID   string
	ParticipantID string
	CriterionID   string
	Value         int
	Note          string
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// RoundScore applies the canonical persisted precision: two decimal places,
// half away from zero. Every stored or displayed score goes through here so
// recomputes reproduce stored values bit-for-bit.
func RoundScore(value float64) float64 {
	return math.Round(value*100) / 100
}

type ParticipantScore struct {
	ParticipantID  string
	EventID        string
	Score          float64
	EvaluatorCount int
	RatingCount    int
	GroupCode      string
}

type ProjectRef struct {
	ProjectID   string
	Title       string
	SubmittedAt time.Time
}

type LeaderboardEntry struct {
	Rank          int
	ParticipantID string
	Score         float64
	GroupFlag     bool
	Projects      []ProjectRef
}
