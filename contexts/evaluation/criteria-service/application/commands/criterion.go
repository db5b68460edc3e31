package commands

import (
	"context"
	"log/slog"
	"strings"

	application "symposium/contexts/evaluation/criteria-service/application"
	"symposium/contexts/evaluation/criteria-service/domain/entities"
	domainerrors "symposium/contexts/evaluation/criteria-service/domain/errors"
	"symposium/contexts/evaluation/criteria-service/ports"
)

type AddCriterionCommand struct {
	EventID     string
	Description string
	Weight      float64
}

type EditCriterionCommand struct {
	CriterionID string
	Description string
	Weight      float64
}

type RemoveCriterionCommand struct {
	CriterionID string
}

// CriterionUseCase orchestrates criterion writes while enforcing the
// per-event weight ceiling and the event's editable window.
type CriterionUseCase struct {
	Criteria ports.CriterionRepository
	Events   ports.EventStateReader
	Clock    ports.Clock
	IDGen    ports.IDGenerator
	Logger   *slog.Logger
}

func (uc CriterionUseCase) AddCriterion(ctx context.Context, cmd AddCriterionCommand) (entities.Criterion, error) {
	logger := application.ResolveLogger(uc.Logger)
	eventID := strings.TrimSpace(cmd.EventID)
	description := strings.TrimSpace(cmd.Description)
	if eventID == "" || description == "" || cmd.Weight <= 0 {
		logger.Warn("criterion add validation failed",
			"event", "criteria_add_validation_failed",
			"module", "evaluation/criteria-service",
			"layer", "application",
			"event_id", eventID,
			"weight", cmd.Weight,
		)
		return entities.Criterion{}, domainerrors.ErrInvalidCriterionInput
	}
	if err := uc.ensureEditable(ctx, eventID); err != nil {
		return entities.Criterion{}, err
	}

	criterionID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return entities.Criterion{}, err
	}
	now := uc.Clock.Now().UTC()
	criterion := entities.Criterion{
		CriterionID: criterionID,
		EventID:     eventID,
		Description: description,
		Weight:      cmd.Weight,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := uc.Criteria.SaveCriterionGuarded(ctx, criterion, entities.WeightCeiling); err != nil {
		return entities.Criterion{}, err
	}

	logger.Info("criterion added",
		"event", "criteria_added",
		"module", "evaluation/criteria-service",
		"layer", "application",
		"criterion_id", criterion.CriterionID,
		"event_id", criterion.EventID,
		"weight", criterion.Weight,
	)
	return criterion, nil
}

func (uc CriterionUseCase) EditCriterion(ctx context.Context, cmd EditCriterionCommand) (entities.Criterion, error) {
	logger := application.ResolveLogger(uc.Logger)
	description := strings.TrimSpace(cmd.Description)
	if strings.TrimSpace(cmd.CriterionID) == "" || description == "" || cmd.Weight <= 0 {
		logger.Warn("criterion edit validation failed",
			"event", "criteria_edit_validation_failed",
			"module", "evaluation/criteria-service",
			"layer", "application",
			"criterion_id", strings.TrimSpace(cmd.CriterionID),
			"weight", cmd.Weight,
		)
		return entities.Criterion{}, domainerrors.ErrInvalidCriterionInput
	}

	criterion, err := uc.Criteria.GetCriterion(ctx, strings.TrimSpace(cmd.CriterionID))
	if err != nil {
		return entities.Criterion{}, err
	}
	if err := uc.ensureEditable(ctx, criterion.EventID); err != nil {
		return entities.Criterion{}, err
	}

	criterion.Description = description
	criterion.Weight = cmd.Weight
	criterion.UpdatedAt = uc.Clock.Now().UTC()
	if err := uc.Criteria.SaveCriterionGuarded(ctx, criterion, entities.WeightCeiling); err != nil {
		return entities.Criterion{}, err
	}

	logger.Info("criterion edited",
		"event", "criteria_edited",
		"module", "evaluation/criteria-service",
		"layer", "application",
		"criterion_id", criterion.CriterionID,
		"event_id", criterion.EventID,
		"weight", criterion.Weight,
	)
	return criterion, nil
}

// RemoveCriterion deletes unconditionally. Ratings recorded against the
// criterion become orphaned and are excluded from future score computation;
// stored scores stay as they are until a recompute is explicitly requested.
func (uc CriterionUseCase) RemoveCriterion(ctx context.Context, cmd RemoveCriterionCommand) error {
	logger := application.ResolveLogger(uc.Logger)
	criterionID := strings.TrimSpace(cmd.CriterionID)
	if criterionID == "" {
		return domainerrors.ErrInvalidCriterionInput
	}
	criterion, err := uc.Criteria.GetCriterion(ctx, criterionID)
	if err != nil {
		return err
	}
	if err := uc.Criteria.DeleteCriterion(ctx, criterionID); err != nil {
		return err
	}
	logger.Info("criterion removed",
		"event", "criteria_removed",
		"module", "evaluation/criteria-service",
		"layer", "application",
		"criterion_id", criterionID,
		"event_id", criterion.EventID,
	)
	return nil
}

func (uc CriterionUseCase) ensureEditable(ctx context.Context, eventID string) error {
	projection, err := uc.Events.GetEventState(ctx, eventID)
	if err != nil {
		return err
	}
	switch strings.ToLower(strings.TrimSpace(projection.State)) {
	case "pending", "approved", "inscriptions_closed":
		return nil
	default:
		return domainerrors.ErrEventNotEditable
	}
}
