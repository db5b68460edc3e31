package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"symposium/contexts/evaluation/criteria-service/domain/entities"
	domainerrors "symposium/contexts/evaluation/criteria-service/domain/errors"
	"symposium/contexts/evaluation/criteria-service/ports"

	"github.com/google/uuid"
)

type Store struct {
	mu sync.RWMutex

	criteria map[string]entities.Criterion
	events   map[string]ports.EventStateProjection
}

func NewStore(seed []entities.Criterion) *Store {
	criteria := make(map[string]entities.Criterion, len(seed))
	for _, criterion := range seed {
		criteria[criterion.CriterionID] = criterion
	}
	return &Store{
		criteria: criteria,
		events:   make(map[string]ports.EventStateProjection),
	}
}

func (s *Store) SetEventState(projection ports.EventStateProjection) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[strings.TrimSpace(projection.EventID)] = ports.EventStateProjection{
		EventID: strings.TrimSpace(projection.EventID),
		State:   strings.TrimSpace(projection.State),
	}
}

// SaveCriterionGuarded checks the weight ceiling and writes in one critical
// section so concurrent additions for the same event cannot both pass.
func (s *Store) SaveCriterionGuarded(_ context.Context, criterion entities.Criterion, ceiling float64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0.0
	for _, existing := range s.criteria {
		if existing.EventID != criterion.EventID {
			continue
		}
		if existing.CriterionID == criterion.CriterionID {
			continue
		}
		total += existing.Weight
	}
	if total+criterion.Weight > ceiling {
		return domainerrors.ErrWeightCeilingExceeded
	}
	s.criteria[strings.TrimSpace(criterion.CriterionID)] = criterion
	return nil
}

func (s *Store) GetCriterion(_ context.Context, criterionID string) (entities.Criterion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	criterion, ok := s.criteria[strings.TrimSpace(criterionID)]
	if !ok {
		return entities.Criterion{}, domainerrors.ErrCriterionNotFound
	}
	return criterion, nil
}

func (s *Store) ListCriteriaByEvent(_ context.Context, eventID string) ([]entities.Criterion, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Criterion, 0)
	for _, criterion := range s.criteria {
		if criterion.EventID == strings.TrimSpace(eventID) {
			items = append(items, criterion)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].CriterionID < items[j].CriterionID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
	return items, nil
}

func (s *Store) DeleteCriterion(_ context.Context, criterionID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.criteria[strings.TrimSpace(criterionID)]; !ok {
		return domainerrors.ErrCriterionNotFound
	}
	delete(s.criteria, strings.TrimSpace(criterionID))
	return nil
}

func (s *Store) GetEventState(_ context.Context, eventID string) (ports.EventStateProjection, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	projection, ok := s.events[strings.TrimSpace(eventID)]
	if !ok {
		return ports.EventStateProjection{}, domainerrors.ErrEventNotFound
	}
	return projection, nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}
