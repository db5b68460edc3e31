package httpadapter

import (
	"context"
	"log/slog"

	"symposium/contexts/evaluation/criteria-service/application/commands"
	"symposium/contexts/evaluation/criteria-service/application/queries"
	"symposium/contexts/evaluation/criteria-service/domain/entities"
	httptransport "symposium/contexts/evaluation/criteria-service/transport/http"
)

type Handler struct {
	Criteria commands.CriterionUseCase
	Queries  queries.CriteriaUseCase
	Logger   *slog.Logger
}

func (h Handler) AddCriterionHandler(ctx context.Context, req httptransport.AddCriterionRequest) (httptransport.CriterionResponse, error) {
	criterion, err := h.Criteria.AddCriterion(ctx, commands.AddCriterionCommand{
		EventID:     req.EventID,
		Description: req.Description,
		Weight:      req.Weight,
	})
	if err != nil {
		return httptransport.CriterionResponse{}, err
	}
	return toCriterionResponse(criterion), nil
}

func (h Handler) EditCriterionHandler(ctx context.Context, criterionID string, req httptransport.EditCriterionRequest) (httptransport.CriterionResponse, error) {
	criterion, err := h.Criteria.EditCriterion(ctx, commands.EditCriterionCommand{
		CriterionID: criterionID,
		Description: req.Description,
		Weight:      req.Weight,
	})
	if err != nil {
		return httptransport.CriterionResponse{}, err
	}
	return toCriterionResponse(criterion), nil
}

func (h Handler) RemoveCriterionHandler(ctx context.Context, criterionID string) error {
	return h.Criteria.RemoveCriterion(ctx, commands.RemoveCriterionCommand{CriterionID: criterionID})
}

func (h Handler) ListCriteriaHandler(ctx context.Context, eventID string) (httptransport.CriteriaListResponse, error) {
	criteria, err := h.Queries.ListCriteria(ctx, eventID)
	if err != nil {
		return httptransport.CriteriaListResponse{}, err
	}
	items := make([]httptransport.CriterionResponse, 0, len(criteria))
	for _, criterion := range criteria {
		items = append(items, toCriterionResponse(criterion))
	}
	return httptransport.CriteriaListResponse{Items: items}, nil
}

func (h Handler) WeightSummaryHandler(ctx context.Context, eventID string) (httptransport.WeightSummaryResponse, error) {
	summary, err := h.Queries.WeightSummary(ctx, eventID)
	if err != nil {
		return httptransport.WeightSummaryResponse{}, err
	}
	return httptransport.WeightSummaryResponse{
		EventID:   summary.EventID,
		Total:     summary.Total,
		Remaining: summary.Remaining,
		Count:     summary.Count,
	}, nil
}

func toCriterionResponse(criterion entities.Criterion) httptransport.CriterionResponse {
	return httptransport.CriterionResponse{
		CriterionID: criterion.CriterionID,
		EventID:     criterion.EventID,
		Description: criterion.Description,
		Weight:      criterion.Weight,
	}
}
