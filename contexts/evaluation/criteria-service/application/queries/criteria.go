package queries

import (
	"context"
	"strings"

	"symposium/contexts/evaluation/criteria-service/domain/entities"
	"symposium/contexts/evaluation/criteria-service/ports"
)

type CriteriaUseCase struct {
	Criteria ports.CriterionRepository
}

func (uc CriteriaUseCase) ListCriteria(ctx context.Context, eventID string) ([]entities.Criterion, error) {
	return uc.Criteria.ListCriteriaByEvent(ctx, strings.TrimSpace(eventID))
}

func (uc CriteriaUseCase) WeightSummary(ctx context.Context, eventID string) (entities.WeightSummary, error) {
	criteria, err := uc.Criteria.ListCriteriaByEvent(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return entities.WeightSummary{}, err
	}
	summary := entities.WeightSummary{
		EventID: strings.TrimSpace(eventID),
		Count:   len(criteria),
	}
	for _, criterion := range criteria {
		summary.Total += criterion.Weight
	}
	summary.Remaining = entities.WeightCeiling - summary.Total
	if summary.Remaining < 0 {
		summary.Remaining = 0
	}
	return summary, nil
}
