package queries

import (
	"context"
	"sort"
	"strings"

	"symposium/contexts/evaluation/scoring-engine/domain/entities"
	"symposium/contexts/evaluation/scoring-engine/ports"
)

type LeaderboardUseCase struct {
	Ratings        ports.RatingRepository
	Criteria       ports.CriterionReader
	Participations ports.ParticipationReader
}

// Leaderboard returns one entry per distinct participant carrying a computed
// score, ordered by score descending with ascending participant id as the
// tie-break. Ties are never left in submission order.
func (uc LeaderboardUseCase) Leaderboard(ctx context.Context, eventID string) ([]entities.LeaderboardEntry, error) {
	participations, err := uc.Participations.ListParticipationsByEvent(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return nil, err
	}

	seen := make(map[string]struct{}, len(participations))
	entries := make([]entities.LeaderboardEntry, 0, len(participations))
	for _, participation := range participations {
		if participation.ComputedScore == nil {
			continue
		}
		if _, dup := seen[participation.ParticipantID]; dup {
			continue
		}
		seen[participation.ParticipantID] = struct{}{}

		projects, err := uc.Participations.ListProjectsByCreator(ctx, strings.TrimSpace(eventID), participation.ParticipantID)
		if err != nil {
			return nil, err
		}
		refs := make([]entities.ProjectRef, 0, len(projects))
		for _, project := range projects {
			refs = append(refs, entities.ProjectRef{
				ProjectID:   project.ProjectID,
				Title:       project.Title,
				SubmittedAt: project.SubmittedAt,
			})
		}
		sort.Slice(refs, func(i, j int) bool {
			if refs[i].SubmittedAt.Equal(refs[j].SubmittedAt) {
				return refs[i].ProjectID < refs[j].ProjectID
			}
			return refs[i].SubmittedAt.Before(refs[j].SubmittedAt)
		})

		entries = append(entries, entities.LeaderboardEntry{
			ParticipantID: participation.ParticipantID,
			Score:         *participation.ComputedScore,
			GroupFlag:     strings.TrimSpace(participation.GroupCode) != "",
			Projects:      refs,
		})
	}

	sort.Slice(entries, func(i, j int) bool {
		if entries[i].Score == entries[j].Score {
			return entries[i].ParticipantID < entries[j].ParticipantID
		}
		return entries[i].Score > entries[j].Score
	})
	for i := range entries {
		entries[i].Rank = i + 1
	}
	return entries, nil
}

// ParticipantScore reads the stored score together with rating detail.
func (uc LeaderboardUseCase) ParticipantScore(ctx context.Context, participantID string, eventID string) (entities.ParticipantScore, error) {
	participation, err := uc.Participations.GetParticipation(ctx, strings.TrimSpace(participantID), strings.TrimSpace(eventID))
	if err != nil {
		return entities.ParticipantScore{}, err
	}

	ratings, err := uc.Ratings.ListRatingsByParticipant(ctx, strings.TrimSpace(participantID))
	if err != nil {
		return entities.ParticipantScore{}, err
	}
	criteria, err := uc.Criteria.ListActiveCriteria(ctx, strings.TrimSpace(eventID))
	if err != nil {
		return entities.ParticipantScore{}, err
	}
	active := make(map[string]struct{}, len(criteria))
	for _, criterion := range criteria {
		active[criterion.CriterionID] = struct{}{}
	}

	evaluators := make(map[string]struct{})
	counted := 0
	for _, rating := range ratings {
		if _, ok := active[rating.CriterionID]; !ok {
			continue
		}
		evaluators[rating.EvaluatorID] = struct{}{}
		counted++
	}

	result := entities.ParticipantScore{
		ParticipantID:  participation.ParticipantID,
		EventID:        participation.EventID,
		EvaluatorCount: len(evaluators),
		RatingCount:    counted,
		GroupCode:      strings.TrimSpace(participation.GroupCode),
	}
	if participation.ComputedScore != nil {
		result.Score = *participation.ComputedScore
	}
	return result, nil
}
