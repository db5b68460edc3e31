package httptransport

type AddCriterionRequest struct {
	EventID     string  `json:"event_id"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

type EditCriterionRequest struct {
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

type CriterionResponse struct {
	CriterionID string  `json:"criterion_id"`
	EventID     string  `json:"event_id"`
	Description string  `json:"description"`
	Weight      float64 `json:"weight"`
}

type CriteriaListResponse struct {
	Items []CriterionResponse `json:"items"`
}

type WeightSummaryResponse struct {
	EventID   string  `json:"event_id"`
	Total     float64 `json:"total"`
	Remaining float64 `json:"remaining"`
	Count     int     `json:"count"`
}

type ErrorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}
