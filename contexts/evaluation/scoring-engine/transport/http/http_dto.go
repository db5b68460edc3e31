package httptransport

import "time"

type RecordRatingRequest struct {
	EvaluatorID   string `json:"evaluator_id"`
	ParticipantID string `json:"participant_id"`
	CriterionID   string `json:"criterion_id"`
	Value         int    `json:"value"`
	Note          string `json:"note,omitempty"`
}

type RatingResponse struct {
	RatingID      string `json:"rating_id"`
	EvaluatorID   string `json:"evaluator_id"`
	ParticipantID string `json:"participant_id"`
	CriterionID   string `json:"criterion_id"`
	Value         int    `json:"value"`
	Note          string `json:"note,omitempty"`
	WasUpdate     bool   `json:"was_update"`
}

type RecomputeResponse struct {
	ParticipantID   string   `json:"participant_id"`
	EventID         string   `json:"event_id"`
	Score           float64  `json:"score"`
	EvaluatorCount  int      `json:"evaluator_count"`
	GroupCode       string   `json:"group_code,omitempty"`
	UpdatedMembers  []string `json:"updated_members"`
	UpdatedProjects []string `json:"updated_projects"`
}

type ProjectItem struct {
	ProjectID   string    `json:"project_id"`
	Title       string    `json:"title"`
	SubmittedAt time.Time `json:"submitted_at"`
}

type LeaderboardItem struct {
	Rank          int           `json:"rank"`
	ParticipantID string        `json:"participant_id"`
	Score         float64       `json:"score"`
	GroupFlag     bool          `json:"group_flag"`
	Projects      []ProjectItem `json:"projects"`
}

type LeaderboardResponse struct {
	EventID string            `json:"event_id"`
	Items   []LeaderboardItem `json:"items"`
}

type ParticipantScoreResponse struct {
	ParticipantID  string  `json:"participant_id"`
	EventID        string  `json:"event_id"`
	Score          float64 `json:"score"`
	EvaluatorCount int     `json:"evaluator_count"`
	RatingCount    int     `json:"rating_count"`
	GroupCode      string  `json:"group_code,omitempty"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
