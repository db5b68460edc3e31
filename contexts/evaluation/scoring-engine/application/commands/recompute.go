package commands

import (
	"context"
	"log/slog"
	"sort"
	"strings"

	application "symposium/contexts/evaluation/scoring-engine/application"
	"symposium/contexts/evaluation/scoring-engine/domain/entities"
	domainerrors "symposium/contexts/evaluation/scoring-engine/domain/errors"
	"symposium/contexts/evaluation/scoring-engine/ports"
)

type RecomputeScoreCommand struct {
	ParticipantID string
	EventID       string
}

type RecomputeScoreResult struct {
	Score                float64
	EvaluatorCount       int
	RatingCount          int
	GroupCode            string
	UpdatedParticipants  []string
	UpdatedProjects      []string
	ReferenceParticipant string
}

// RecomputeUseCase computes the weighted participant score and propagates it
// to group members and owned projects. Recomputation is idempotent: without
// new ratings it reproduces the stored value exactly.
type RecomputeUseCase struct {
	Ratings        ports.RatingRepository
	Criteria       ports.CriterionReader
	Participations ports.ParticipationReader
	Scores         ports.ScoreWriter
	Logger         *slog.Logger
}

func (uc RecomputeUseCase) RecomputeScore(ctx context.Context, cmd RecomputeScoreCommand) (RecomputeScoreResult, error) {
	logger := application.ResolveLogger(uc.Logger)
	participantID := strings.TrimSpace(cmd.ParticipantID)
	eventID := strings.TrimSpace(cmd.EventID)
	if participantID == "" || eventID == "" {
		return RecomputeScoreResult{}, domainerrors.ErrInvalidRatingInput
	}

	participation, err := uc.Participations.GetParticipation(ctx, participantID, eventID)
	if err != nil {
		return RecomputeScoreResult{}, err
	}
	criteria, err := uc.Criteria.ListActiveCriteria(ctx, eventID)
	if err != nil {
		return RecomputeScoreResult{}, err
	}
	weights := make(map[string]float64, len(criteria))
	totalWeight := 0.0
	for _, criterion := range criteria {
		weights[criterion.CriterionID] = criterion.Weight
		totalWeight += criterion.Weight
	}

	groupCode := strings.TrimSpace(participation.GroupCode)
	if groupCode == "" {
		return uc.recomputeIndividual(ctx, logger, participantID, eventID, weights, totalWeight)
	}
	return uc.recomputeGroup(ctx, logger, eventID, groupCode, weights, totalWeight)
}

func (uc RecomputeUseCase) recomputeIndividual(
	ctx context.Context,
	logger *slog.Logger,
	participantID string,
	eventID string,
	weights map[string]float64,
	totalWeight float64,
) (RecomputeScoreResult, error) {
	ratings, err := uc.Ratings.ListRatingsByParticipant(ctx, participantID)
	if err != nil {
		return RecomputeScoreResult{}, err
	}
	score, evaluators, counted := weightedScore(ratings, weights, totalWeight)

	projects, err := uc.Participations.ListProjectsByCreator(ctx, eventID, participantID)
	if err != nil {
		return RecomputeScoreResult{}, err
	}
	projectIDs := make([]string, 0, len(projects))
	for _, project := range projects {
		projectIDs = append(projectIDs, project.ProjectID)
	}
	if err := uc.Scores.SetGroupScores(ctx, eventID, score, []string{participantID}, projectIDs); err != nil {
		return RecomputeScoreResult{}, err
	}
	result := RecomputeScoreResult{
		Score:                score,
		EvaluatorCount:       evaluators,
		RatingCount:          counted,
		UpdatedParticipants:  []string{participantID},
		UpdatedProjects:      projectIDs,
		ReferenceParticipant: participantID,
	}

	logger.Info("participant score recomputed",
		"event", "scoring_recomputed",
		"module", "evaluation/scoring-engine",
		"layer", "application",
		"participant_id", participantID,
		"event_id", eventID,
		"score", score,
		"evaluator_count", evaluators,
		"project_count", len(result.UpdatedProjects),
	)
	return result, nil
}

// recomputeGroup scores from the group's reference participant, then writes
// the same value to every member and to every member-created project so the
// group invariant holds after every recompute.
func (uc RecomputeUseCase) recomputeGroup(
	ctx context.Context,
	logger *slog.Logger,
	eventID string,
	groupCode string,
	weights map[string]float64,
	totalWeight float64,
) (RecomputeScoreResult, error) {
	members, err := uc.Participations.ListGroupMembers(ctx, eventID, groupCode)
	if err != nil {
		return RecomputeScoreResult{}, err
	}
	if len(members) == 0 {
		return RecomputeScoreResult{}, domainerrors.ErrParticipationNotFound
	}
	sort.Slice(members, func(i, j int) bool {
		return members[i].ParticipantID < members[j].ParticipantID
	})

	// Reference participant: first member, in participant-id order, holding
	// at least one rating on an active criterion.
	var (
		reference  string
		score      float64
		evaluators int
		counted    int
	)
	for _, member := range members {
		ratings, err := uc.Ratings.ListRatingsByParticipant(ctx, member.ParticipantID)
		if err != nil {
			return RecomputeScoreResult{}, err
		}
		memberScore, memberEvaluators, memberCounted := weightedScore(ratings, weights, totalWeight)
		if memberCounted > 0 {
			reference = member.ParticipantID
			score = memberScore
			evaluators = memberEvaluators
			counted = memberCounted
			break
		}
	}
	if reference == "" {
		reference = members[0].ParticipantID
	}

	memberIDs := make([]string, 0, len(members))
	projectIDs := make([]string, 0)
	for _, member := range members {
		memberIDs = append(memberIDs, member.ParticipantID)
		projects, err := uc.Participations.ListProjectsByCreator(ctx, eventID, member.ParticipantID)
		if err != nil {
			return RecomputeScoreResult{}, err
		}
		for _, project := range projects {
			projectIDs = append(projectIDs, project.ProjectID)
		}
	}

	// One atomic write for the whole group: a concurrent recompute can only
	// land wholly before or wholly after, never member by member.
	if err := uc.Scores.SetGroupScores(ctx, eventID, score, memberIDs, projectIDs); err != nil {
		return RecomputeScoreResult{}, err
	}
	result := RecomputeScoreResult{
		Score:                score,
		EvaluatorCount:       evaluators,
		RatingCount:          counted,
		GroupCode:            groupCode,
		ReferenceParticipant: reference,
		UpdatedParticipants:  memberIDs,
		UpdatedProjects:      projectIDs,
	}

	logger.Info("group score recomputed",
		"event", "scoring_group_recomputed",
		"module", "evaluation/scoring-engine",
		"layer", "application",
		"event_id", eventID,
		"group_code", groupCode,
		"reference_participant", reference,
		"score", score,
		"member_count", len(members),
		"project_count", len(result.UpdatedProjects),
	)
	return result, nil
}

// weightedScore aggregates ratings over active criteria:
// sum(value*weight) / (totalWeight * distinctEvaluators), rounded to the
// canonical precision. Ratings on removed criteria are skipped entirely.
func weightedScore(ratings []entities.Rating, weights map[string]float64, totalWeight float64) (float64, int, int) {
	if totalWeight <= 0 {
		return 0, 0, 0
	}
	sum := 0.0
	counted := 0
	evaluators := make(map[string]struct{})
	for _, rating := range ratings {
		weight, active := weights[rating.CriterionID]
		if !active {
			continue
		}
		sum += float64(rating.Value) * weight
		counted++
		evaluators[rating.EvaluatorID] = struct{}{}
	}
	if counted == 0 {
		return 0, 0, 0
	}
	score := sum / (totalWeight * float64(len(evaluators)))
	return entities.RoundScore(score), len(evaluators), counted
}
