package commands

import (
	"context"
	"errors"
	"log/slog"
	"strings"

	application "symposium/contexts/evaluation/scoring-engine/application"
	"symposium/contexts/evaluation/scoring-engine/domain/entities"
	domainerrors "symposium/contexts/evaluation/scoring-engine/domain/errors"
	"symposium/contexts/evaluation/scoring-engine/ports"
)

type RecordRatingCommand struct {
	EvaluatorID   string
	ParticipantID string
	CriterionID   string
	Value         int
	Note          string
}

type RecordRatingResult struct {
	Rating    entities.Rating
	WasUpdate bool
}

// RatingUseCase records evaluator ratings. Validation happens before any
// write: value range, criterion existence, and criterion/participant event
// agreement.
type RatingUseCase struct {
	Ratings        ports.RatingRepository
	Criteria       ports.CriterionReader
	Participations ports.ParticipationReader
	Clock          ports.Clock
	IDGen          ports.IDGenerator
	Logger         *slog.Logger
}

func (uc RatingUseCase) RecordRating(ctx context.Context, cmd RecordRatingCommand) (RecordRatingResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	evaluatorID := strings.TrimSpace(cmd.EvaluatorID)
	participantID := strings.TrimSpace(cmd.ParticipantID)
	criterionID := strings.TrimSpace(cmd.CriterionID)
	if evaluatorID == "" || participantID == "" || criterionID == "" {
		logger.Warn("rating validation failed",
			"event", "scoring_rating_validation_failed",
			"module", "evaluation/scoring-engine",
			"layer", "application",
			"evaluator_id", evaluatorID,
			"participant_id", participantID,
		)
		return RecordRatingResult{}, domainerrors.ErrInvalidRatingInput
	}
	if cmd.Value < entities.RatingMin || cmd.Value > entities.RatingMax {
		logger.Warn("rating value out of range",
			"event", "scoring_rating_out_of_range",
			"module", "evaluation/scoring-engine",
			"layer", "application",
			"evaluator_id", evaluatorID,
			"participant_id", participantID,
			"value", cmd.Value,
		)
		return RecordRatingResult{}, domainerrors.ErrRatingOutOfRange
	}

	criterion, found, err := uc.Criteria.GetCriterion(ctx, criterionID)
	if err != nil {
		return RecordRatingResult{}, err
	}
	if !found {
		return RecordRatingResult{}, domainerrors.ErrCriterionNotFound
	}
	if _, err := uc.Participations.GetParticipation(ctx, participantID, criterion.EventID); err != nil {
		if errors.Is(err, domainerrors.ErrParticipationNotFound) {
			return RecordRatingResult{}, domainerrors.ErrCriterionEventMismatch
		}
		return RecordRatingResult{}, err
	}

	now := uc.Clock.Now().UTC()
	if existing, found, err := uc.Ratings.GetRatingByIdentity(ctx, evaluatorID, participantID, criterionID); err != nil {
		return RecordRatingResult{}, err
	} else if found {
		existing.Value = cmd.Value
		existing.Note = strings.TrimSpace(cmd.Note)
		existing.UpdatedAt = now
		if err := uc.Ratings.SaveRating(ctx, existing); err != nil {
			return RecordRatingResult{}, err
		}
		logger.Info("rating updated",
			"event", "scoring_rating_updated",
			"module", "evaluation/scoring-engine",
			"layer", "application",
			"rating_id", existing.RatingID,
			"evaluator_id", evaluatorID,
			"participant_id", participantID,
			"criterion_id", criterionID,
			"value", cmd.Value,
		)
		return RecordRatingResult{Rating: existing, WasUpdate: true}, nil
	}

	ratingID, err := uc.IDGen.NewID(ctx)
	if err != nil {
		return RecordRatingResult{}, err
	}
	rating := entities.Rating{
		RatingID:      ratingID,
		EvaluatorID:   evaluatorID,
		ParticipantID: participantID,
		CriterionID:   criterionID,
		Value:         cmd.Value,
		Note:          strings.TrimSpace(cmd.Note),
		CreatedAt:     now,
		UpdatedAt:     now,
	}
	if err := uc.Ratings.SaveRating(ctx, rating); err != nil {
		return RecordRatingResult{}, err
	}
	logger.Info("rating recorded",
		"event", "scoring_rating_recorded",
		"module", "evaluation/scoring-engine",
		"layer", "application",
		"rating_id", rating.RatingID,
		"evaluator_id", evaluatorID,
		"participant_id", participantID,
		"criterion_id", criterionID,
		"value", cmd.Value,
	)
	return RecordRatingResult{Rating: rating}, nil
}
