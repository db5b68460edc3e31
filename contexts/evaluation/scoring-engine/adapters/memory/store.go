package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"symposium/contexts/evaluation/scoring-engine/domain/entities"
	domainerrors "symposium/contexts/evaluation/scoring-engine/domain/errors"
	"symposium/contexts/evaluation/scoring-engine/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	ratings        map[string]entities.Rating
	criteria       map[string]ports.CriterionProjection
	participations map[string]ports.ParticipationProjection
	projects       map[string]ports.ProjectProjection
}

func NewStore(seed []entities.Rating) *Store {
	ratings := make(map[string]entities.Rating, len(seed))
	for _, rating := range seed {
		ratings[ratingKey(rating.EvaluatorID, rating.ParticipantID, rating.CriterionID)] = rating
	}
	return &Store{
		ratings:        ratings,
		criteria:       make(map[string]ports.CriterionProjection),
		participations: make(map[string]ports.ParticipationProjection),
		projects:       make(map[string]ports.ProjectProjection),
	}
}

func (s *Store) SetCriterion(projection ports.CriterionProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.criteria[strings.TrimSpace(projection.CriterionID)] = projection
}

// RemoveCriterion drops a criterion from the active catalog; ratings keyed to
// it stay behind as orphans.
func (s *Store) RemoveCriterion(criterionID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.criteria, strings.TrimSpace(criterionID))
}

func (s *Store) SetParticipation(projection ports.ParticipationProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participations[participationKey(projection.ParticipantID, projection.EventID)] = projection
}

func (s *Store) SetProject(projection ports.ProjectProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[strings.TrimSpace(projection.ProjectID)] = projection
}

func (s *Store) GetProject(projectID string) (ports.ProjectProjection, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.projects[strings.TrimSpace(projectID)]
	return project, ok
}

func (s *Store) SaveRating(_ context.Context, rating entities.Rating) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.ratings[ratingKey(rating.EvaluatorID, rating.ParticipantID, rating.CriterionID)] = rating
	return nil
}

func (s *Store) GetRatingByIdentity(
	_ context.Context,
	evaluatorID string,
	participantID string,
	criterionID string,
) (entities.Rating, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rating, ok := s.ratings[ratingKey(evaluatorID, participantID, criterionID)]
	if !ok {
		return entities.Rating{}, false, nil
	}
	return rating, true, nil
}

func (s *Store) ListRatingsByParticipant(_ context.Context, participantID string) ([]entities.Rating, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Rating, 0)
	for _, rating := range s.ratings {
		if rating.ParticipantID == strings.TrimSpace(participantID) {
			items = append(items, rating)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].RatingID < items[j].RatingID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) GetCriterion(_ context.Context, criterionID string) (ports.CriterionProjection, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	criterion, ok := s.criteria[strings.TrimSpace(criterionID)]
	if !ok {
		return ports.CriterionProjection{}, false, nil
	}
	return criterion, true, nil
}

func (s *Store) ListActiveCriteria(_ context.Context, eventID string) ([]ports.CriterionProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.CriterionProjection, 0)
	for _, criterion := range s.criteria {
		if criterion.EventID == strings.TrimSpace(eventID) {
			items = append(items, criterion)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].CriterionID < items[j].CriterionID
	})
	return items, nil
}

func (s *Store) GetParticipation(_ context.Context, participantID string, eventID string) (ports.ParticipationProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participation, ok := s.participations[participationKey(participantID, eventID)]
	if !ok {
		return ports.ParticipationProjection{}, domainerrors.ErrParticipationNotFound
	}
	return participation, nil
}

func (s *Store) ListParticipationsByEvent(_ context.Context, eventID string) ([]ports.ParticipationProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.ParticipationProjection, 0)
	for _, participation := range s.participations {
		if participation.EventID == strings.TrimSpace(eventID) {
			items = append(items, participation)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ParticipantID < items[j].ParticipantID
	})
	return items, nil
}

func (s *Store) ListGroupMembers(_ context.Context, eventID string, groupCode string) ([]ports.ParticipationProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.ParticipationProjection, 0)
	for _, participation := range s.participations {
		if participation.EventID != strings.TrimSpace(eventID) {
			continue
		}
		if strings.TrimSpace(participation.GroupCode) != strings.TrimSpace(groupCode) {
			continue
		}
		items = append(items, participation)
	}
	sort.Slice(items, func(i, j int) bool {
		return items[i].ParticipantID < items[j].ParticipantID
	})
	return items, nil
}

func (s *Store) ListProjectsByCreator(_ context.Context, eventID string, participantID string) ([]ports.ProjectProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]ports.ProjectProjection, 0)
	for _, project := range s.projects {
		if project.EventID != strings.TrimSpace(eventID) {
			continue
		}
		if project.CreatorParticipantID != strings.TrimSpace(participantID) {
			continue
		}
		items = append(items, project)
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].SubmittedAt.Equal(items[j].SubmittedAt) {
			return items[i].ProjectID < items[j].ProjectID
		}
		return items[i].SubmittedAt.Before(items[j].SubmittedAt)
	})
	return items, nil
}

// SetGroupScores verifies every target under the lock before touching any of
// them, so a bad id leaves all scores exactly as they were.
func (s *Store) SetGroupScores(
	_ context.Context,
	eventID string,
	score float64,
	participantIDs []string,
	projectIDs []string,
) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, participantID := range participantIDs {
		if _, ok := s.participations[participationKey(participantID, eventID)]; !ok {
			return domainerrors.ErrParticipationNotFound
		}
	}
	for _, projectID := range projectIDs {
		if _, ok := s.projects[strings.TrimSpace(projectID)]; !ok {
			return domainerrors.ErrScorePropagationFailure
		}
	}

	for _, participantID := range participantIDs {
		key := participationKey(participantID, eventID)
		participation := s.participations[key]
		value := score
		participation.ComputedScore = &value
		s.participations[key] = participation
	}
	for _, projectID := range projectIDs {
		key := strings.TrimSpace(projectID)
		project := s.projects[key]
		value := score
		project.ComputedScore = &value
		s.projects[key] = project
	}
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func ratingKey(evaluatorID string, participantID string, criterionID string) string {
	return strings.TrimSpace(evaluatorID) + "|" + strings.TrimSpace(participantID) + "|" + strings.TrimSpace(criterionID)
}

func participationKey(participantID string, eventID string) string {
	return strings.TrimSpace(participantID) + "|" + strings.TrimSpace(eventID)
}
