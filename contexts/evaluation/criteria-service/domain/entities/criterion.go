package entities

import "time"

// WeightCeiling is the per-event maximum for the sum of criterion weights.
const WeightCeiling = 100.0

type Criterion struct {
	CriterionID string
	EventID     string
	Description string
	Weight      float64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

type WeightSummary struct {
	EventID   string
	Total     float64
	Remaining float64
	Count     int
}
