package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"symposium/contexts/event-core/lifecycle-service/domain/entities"
	domainerrors "symposium/contexts/event-core/lifecycle-service/domain/errors"

	"github.com/google/uuid"
)

// Store keeps the whole lifecycle graph behind one mutex so snapshot and
// teardown observe a consistent view.
type Store struct {
	mu sync.RWMutex

	events         map[string]entities.Event
	changes        map[string][]entities.StateChange
	users          map[string]entities.User
	profiles       map[string]entities.RoleProfile
	participations map[string]entities.Participation
	projects       map[string]entities.Project
	codes          map[string]entities.InvitationCode
	certificates   map[string]entities.CertificateConfig
	categoryLinks  []entities.CategoryLink
	watermarks     map[string]entities.NotificationWatermark
	outbox         map[string]outboxRow

	applyErr error
}

type outboxRow struct {
	intent      entities.NotificationIntent
	publishedAt *time.Time
}

func NewStore() *Store {
	return &Store{
		events:         make(map[string]entities.Event),
		changes:        make(map[string][]entities.StateChange),
		users:          make(map[string]entities.User),
		profiles:       make(map[string]entities.RoleProfile),
		participations: make(map[string]entities.Participation),
		projects:       make(map[string]entities.Project),
		codes:          make(map[string]entities.InvitationCode),
		certificates:   make(map[string]entities.CertificateConfig),
		watermarks:     make(map[string]entities.NotificationWatermark),
		outbox:         make(map[string]outboxRow),
	}
}

func (s *Store) SetUser(user entities.User) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.users[strings.TrimSpace(user.UserID)] = user
}

func (s *Store) SetRoleProfile(profile entities.RoleProfile) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.profiles[strings.TrimSpace(profile.ProfileID)] = profile
}

func (s *Store) SetParticipation(participation entities.Participation) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.participations[strings.TrimSpace(participation.ParticipationID)] = participation
}

func (s *Store) SetProject(project entities.Project) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.projects[strings.TrimSpace(project.ProjectID)] = project
}

func (s *Store) SetInvitationCode(code entities.InvitationCode) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.codes[strings.TrimSpace(code.CodeID)] = code
}

func (s *Store) SetCertificateConfig(config entities.CertificateConfig) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.certificates[strings.TrimSpace(config.ConfigID)] = config
}

func (s *Store) AddCategoryLink(link entities.CategoryLink) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.categoryLinks = append(s.categoryLinks, link)
}

// FailNextTeardown makes the next ApplyTeardown return the given error
// without mutating anything.
func (s *Store) FailNextTeardown(err error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.applyErr = err
}

func (s *Store) GetUser(userID string) (entities.User, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	user, ok := s.users[strings.TrimSpace(userID)]
	return user, ok
}

func (s *Store) GetParticipation(participationID string) (entities.Participation, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	participation, ok := s.participations[strings.TrimSpace(participationID)]
	return participation, ok
}

func (s *Store) GetProject(projectID string) (entities.Project, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	project, ok := s.projects[strings.TrimSpace(projectID)]
	return project, ok
}

func (s *Store) GetInvitationCode(codeID string) (entities.InvitationCode, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	code, ok := s.codes[strings.TrimSpace(codeID)]
	return code, ok
}

func (s *Store) SaveEvent(_ context.Context, event entities.Event) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events[strings.TrimSpace(event.EventID)] = event
	return nil
}

func (s *Store) GetEvent(_ context.Context, eventID string) (entities.Event, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	event, ok := s.events[strings.TrimSpace(eventID)]
	return event, ok, nil
}

func (s *Store) ListEvents(_ context.Context) ([]entities.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Event, 0, len(s.events))
	for _, event := range s.events {
		items = append(items, event)
	}
	sortEvents(items)
	return items, nil
}

func (s *Store) ListEventsByState(_ context.Context, state entities.EventState) ([]entities.Event, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.Event, 0)
	for _, event := range s.events {
		if event.State == state {
			items = append(items, event)
		}
	}
	sortEvents(items)
	return items, nil
}

func (s *Store) AppendStateChange(_ context.Context, change entities.StateChange) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	eventID := strings.TrimSpace(change.EventID)
	s.changes[eventID] = append(s.changes[eventID], change)
	return nil
}

func (s *Store) ListStateChanges(_ context.Context, eventID string) ([]entities.StateChange, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	history := s.changes[strings.TrimSpace(eventID)]
	items := make([]entities.StateChange, len(history))
	copy(items, history)
	return items, nil
}

func (s *Store) GetRoleProfile(_ context.Context, profileID string) (entities.RoleProfile, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	profile, ok := s.profiles[strings.TrimSpace(profileID)]
	return profile, ok, nil
}

// SnapshotEventGraph reads the whole graph around the event under one read
// lock so the planner sees consistent reference counts.
func (s *Store) SnapshotEventGraph(_ context.Context, eventID string) (entities.TeardownSnapshot, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	trimmed := strings.TrimSpace(eventID)
	event, ok := s.events[trimmed]
	if !ok {
		return entities.TeardownSnapshot{}, domainerrors.ErrEventNotFound
	}

	snapshot := entities.TeardownSnapshot{
		Event:               event,
		Profiles:            make(map[string]entities.RoleProfile),
		ParticipationCounts: make(map[string]int),
		ProfileCounts:       make(map[string]int),
	}

	for _, participation := range s.participations {
		if participation.EventID == trimmed {
			snapshot.Participations = append(snapshot.Participations, participation)
		}
		snapshot.ParticipationCounts[participation.ProfileID]++
	}
	sort.Slice(snapshot.Participations, func(i, j int) bool {
		return snapshot.Participations[i].ParticipationID < snapshot.Participations[j].ParticipationID
	})

	for _, project := range s.projects {
		if project.EventID == trimmed {
			snapshot.Projects = append(snapshot.Projects, project)
		}
	}

	for id, profile := range s.profiles {
		snapshot.Profiles[id] = profile
		snapshot.ProfileCounts[profile.UserID]++
	}

	if event.AdminProfileID != "" {
		for _, other := range s.events {
			if other.AdminProfileID == event.AdminProfileID {
				snapshot.AdminEventCount++
			}
		}
		for _, code := range s.codes {
			if code.AdminProfileID == event.AdminProfileID {
				snapshot.AdminCodes = append(snapshot.AdminCodes, code)
			}
		}
	}
	for _, code := range s.codes {
		if code.EventID == trimmed {
			snapshot.EventCodes = append(snapshot.EventCodes, code)
		}
	}
	for _, config := range s.certificates {
		if config.EventID == trimmed {
			snapshot.CertificateConfigs = append(snapshot.CertificateConfigs, config)
		}
	}
	for _, link := range s.categoryLinks {
		if link.EventID == trimmed {
			snapshot.CategoryLinks = append(snapshot.CategoryLinks, link)
		}
	}

	return snapshot, nil
}

// ApplyTeardown verifies every planned record first and only then mutates,
// all under one write lock, so a failing plan leaves the store untouched.
func (s *Store) ApplyTeardown(_ context.Context, plan entities.TeardownPlan) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.applyErr != nil {
		err := s.applyErr
		s.applyErr = nil
		return err
	}

	if _, ok := s.events[plan.EventID]; !ok {
		return domainerrors.ErrEventNotFound
	}
	for _, id := range plan.ProfileIDs {
		if _, ok := s.profiles[id]; !ok {
			return domainerrors.ErrOrphanRoleReference
		}
	}
	for _, id := range plan.UserIDs {
		if _, ok := s.users[id]; !ok {
			return domainerrors.ErrOrphanRoleReference
		}
	}

	for _, id := range plan.ParticipationIDs {
		delete(s.participations, id)
	}
	for _, id := range plan.ProjectIDs {
		delete(s.projects, id)
	}
	for _, id := range plan.ProfileIDs {
		delete(s.profiles, id)
	}
	for _, id := range plan.UserIDs {
		delete(s.users, id)
	}
	for _, id := range plan.CodeIDs {
		delete(s.codes, id)
	}
	for _, id := range plan.CertificateConfigIDs {
		delete(s.certificates, id)
	}
	if len(plan.CategoryLinks) > 0 {
		kept := s.categoryLinks[:0]
		for _, link := range s.categoryLinks {
			if link.EventID != plan.EventID {
				kept = append(kept, link)
			}
		}
		s.categoryLinks = kept
	}
	delete(s.changes, plan.EventID)
	delete(s.events, plan.EventID)
	return nil
}

func (s *Store) AppendNotification(_ context.Context, intent entities.NotificationIntent) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.outbox[strings.TrimSpace(intent.IntentID)] = outboxRow{intent: intent}
	return nil
}

func (s *Store) ListPendingNotifications(_ context.Context, limit int) ([]entities.NotificationIntent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	items := make([]entities.NotificationIntent, 0)
	for _, row := range s.outbox {
		if row.publishedAt == nil {
			items = append(items, row.intent)
		}
	}
	sort.Slice(items, func(i, j int) bool {
		if items[i].OccurredAt.Equal(items[j].OccurredAt) {
			return items[i].IntentID < items[j].IntentID
		}
		return items[i].OccurredAt.Before(items[j].OccurredAt)
	})
	if limit > 0 && len(items) > limit {
		items = items[:limit]
	}
	return items, nil
}

func (s *Store) MarkNotificationPublished(_ context.Context, intentID string, publishedAt time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	row, ok := s.outbox[strings.TrimSpace(intentID)]
	if !ok {
		return domainerrors.ErrEventNotFound
	}
	at := publishedAt.UTC()
	row.publishedAt = &at
	s.outbox[strings.TrimSpace(intentID)] = row
	return nil
}

func (s *Store) HasWatermark(_ context.Context, userID string, state entities.EventState) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	_, ok := s.watermarks[watermarkKey(userID, state)]
	return ok, nil
}

func (s *Store) PutWatermark(_ context.Context, watermark entities.NotificationWatermark) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.watermarks[watermarkKey(watermark.UserID, watermark.EventState)] = watermark
	return nil
}

func (s *Store) Now() time.Time {
	return time.Now().UTC()
}

func (s *Store) NewID(_ context.Context) (string, error) {
	return uuid.NewString(), nil
}

func watermarkKey(userID string, state entities.EventState) string {
	return strings.TrimSpace(userID) + "|" + string(state)
}

func sortEvents(items []entities.Event) {
	sort.Slice(items, func(i, j int) bool {
		if items[i].CreatedAt.Equal(items[j].CreatedAt) {
			return items[i].EventID < items[j].EventID
		}
		return items[i].CreatedAt.Before(items[j].CreatedAt)
	})
}
