package httpadapter

import (
	"context"
	"log/slog"

	"symposium/contexts/evaluation/scoring-engine/application/commands"
	"symposium/contexts/evaluation/scoring-engine/application/queries"
	httptransport "symposium/contexts/evaluation/scoring-engine/transport/http"
)

type Handler struct {
	Ratings      commands.RatingUseCase
	Recompute    commands.RecomputeUseCase
	Leaderboards queries.LeaderboardUseCase
	Logger       *slog.Logger
}

func (h Handler) RecordRatingHandler(ctx context.Context, req httptransport.RecordRatingRequest) (httptransport.RatingResponse, error) {
	result, err := h.Ratings.RecordRating(ctx, commands.RecordRatingCommand{
		EvaluatorID:   req.EvaluatorID,
		ParticipantID: req.ParticipantID,
		CriterionID:   req.CriterionID,
		Value:         req.Value,
		Note:          req.Note,
	})
	if err != nil {
		return httptransport.RatingResponse{}, err
	}
	return httptransport.RatingResponse{
		RatingID:      result.Rating.RatingID,
		EvaluatorID:   result.Rating.EvaluatorID,
		ParticipantID: result.Rating.ParticipantID,
		CriterionID:   result.Rating.CriterionID,
		Value:         result.Rating.Value,
		Note:          result.Rating.Note,
		WasUpdate:     result.WasUpdate,
	}, nil
}

func (h Handler) RecomputeScoreHandler(ctx context.Context, participantID string, eventID string) (httptransport.RecomputeResponse, error) {
	result, err := h.Recompute.RecomputeScore(ctx, commands.RecomputeScoreCommand{
		ParticipantID: participantID,
		EventID:       eventID,
	})
	if err != nil {
		return httptransport.RecomputeResponse{}, err
	}
	return httptransport.RecomputeResponse{
		ParticipantID:   participantID,
		EventID:         eventID,
		Score:           result.Score,
		EvaluatorCount:  result.EvaluatorCount,
		GroupCode:       result.GroupCode,
		UpdatedMembers:  result.UpdatedParticipants,
		UpdatedProjects: result.UpdatedProjects,
	}, nil
}

func (h Handler) LeaderboardHandler(ctx context.Context, eventID string) (httptransport.LeaderboardResponse, error) {
	entries, err := h.Leaderboards.Leaderboard(ctx, eventID)
	if err != nil {
		return httptransport.LeaderboardResponse{}, err
	}
	items := make([]httptransport.LeaderboardItem, 0, len(entries))
	for _, entry := range entries {
		projects := make([]httptransport.ProjectItem, 0, len(entry.Projects))
		for _, project := range entry.Projects {
			projects = append(projects, httptransport.ProjectItem{
				ProjectID:   project.ProjectID,
				Title:       project.Title,
				SubmittedAt: project.SubmittedAt,
			})
		}
		items = append(items, httptransport.LeaderboardItem{
			Rank:          entry.Rank,
			ParticipantID: entry.ParticipantID,
			Score:         entry.Score,
			GroupFlag:     entry.GroupFlag,
			Projects:      projects,
		})
	}
	return httptransport.LeaderboardResponse{
		EventID: eventID,
		Items:   items,
	}, nil
}

func (h Handler) ParticipantScoreHandler(ctx context.Context, participantID string, eventID string) (httptransport.ParticipantScoreResponse, error) {
	score, err := h.Leaderboards.ParticipantScore(ctx, participantID, eventID)
	if err != nil {
		return httptransport.ParticipantScoreResponse{}, err
	}
	return httptransport.ParticipantScoreResponse{
		ParticipantID:  score.ParticipantID,
		EventID:        score.EventID,
		Score:          score.Score,
		EvaluatorCount: score.EvaluatorCount,
		RatingCount:    score.RatingCount,
		GroupCode:      score.GroupCode,
	}, nil
}
