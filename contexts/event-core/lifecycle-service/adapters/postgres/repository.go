package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"symposium/contexts/event-core/lifecycle-service/domain/entities"
	domainerrors "symposium/contexts/event-core/lifecycle-service/domain/errors"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type Repository struct {
	db     *gorm.DB
	logger *slog.Logger
}

func NewRepository(db *gorm.DB, logger *slog.Logger) *Repository {
	if logger == nil {
		logger = slog.Default()
	}
	return &Repository{
		db:     db,
		logger: logger,
	}
}

func (r *Repository) SaveEvent(ctx context.Context, event entities.Event) error {
	row := eventModelFromEntity(event)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{{Name: "id"}},
		DoUpdates: clause.Assignments(map[string]any{
			"name":        row.Name,
			"description": row.Description,
			"state":       row.State,
			"capacity":    row.Capacity,
			"starts_at":   row.StartsAt,
			"ends_at":     row.EndsAt,
			"updated_at":  row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		return r.logError("lifecycle_repo_save_event_failed", err,
			"event_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) GetEvent(ctx context.Context, eventID string) (entities.Event, bool, error) {
	var row eventModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(eventID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Event{}, false, nil
		}
		return entities.Event{}, false, r.logError("lifecycle_repo_get_event_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListEvents(ctx context.Context) ([]entities.Event, error) {
	var rows []eventModel
	if err := r.db.WithContext(ctx).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_events_failed", err)
	}
	return toEventEntities(rows), nil
}

func (r *Repository) ListEventsByState(ctx context.Context, state entities.EventState) ([]entities.Event, error) {
	var rows []eventModel
	if err := r.db.WithContext(ctx).
		Where("state = ?", string(state)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_events_by_state_failed", err,
			"state", string(state),
		)
	}
	return toEventEntities(rows), nil
}

func (r *Repository) AppendStateChange(ctx context.Context, change entities.StateChange) error {
	row := stateChangeModel{
		ID:        strings.TrimSpace(change.ChangeID),
		EventID:   strings.TrimSpace(change.EventID),
		FromState: string(change.FromState),
		ToState:   string(change.ToState),
		ChangedBy: strings.TrimSpace(change.ChangedBy),
		Reason:    strings.TrimSpace(change.Reason),
		CreatedAt: change.CreatedAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("lifecycle_repo_append_state_change_failed", err,
			"event_id", row.EventID,
		)
	}
	return nil
}

func (r *Repository) ListStateChanges(ctx context.Context, eventID string) ([]entities.StateChange, error) {
	var rows []stateChangeModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_state_changes_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	items := make([]entities.StateChange, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.StateChange{
			ChangeID:  row.ID,
			EventID:   row.EventID,
			FromState: entities.EventState(row.FromState),
			ToState:   entities.EventState(row.ToState),
			ChangedBy: row.ChangedBy,
			Reason:    row.Reason,
			CreatedAt: row.CreatedAt,
		})
	}
	return items, nil
}

func (r *Repository) GetRoleProfile(ctx context.Context, profileID string) (entities.RoleProfile, bool, error) {
	var row roleProfileModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(profileID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.RoleProfile{}, false, nil
		}
		return entities.RoleProfile{}, false, r.logError("lifecycle_repo_get_profile_failed", err,
			"profile_id", strings.TrimSpace(profileID),
		)
	}
	return row.toEntity(), true, nil
}

// SnapshotEventGraph reads the whole graph around the event inside one
// transaction, locking the event row so a racing teardown cannot interleave.
func (r *Repository) SnapshotEventGraph(ctx context.Context, eventID string) (entities.TeardownSnapshot, error) {
	trimmed := strings.TrimSpace(eventID)
	var snapshot entities.TeardownSnapshot

	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var eventRow eventModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("id = ?", trimmed).
			First(&eventRow).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domainerrors.ErrEventNotFound
			}
			return err
		}
		snapshot = entities.TeardownSnapshot{
			Event:               eventRow.toEntity(),
			Profiles:            make(map[string]entities.RoleProfile),
			ParticipationCounts: make(map[string]int),
			ProfileCounts:       make(map[string]int),
		}

		var participationRows []teardownParticipationModel
		if err := tx.Where("event_id = ?", trimmed).
			Order("id ASC").
			Find(&participationRows).Error; err != nil {
			return err
		}
		profileIDs := make([]string, 0, len(participationRows))
		seen := map[string]struct{}{}
		for _, row := range participationRows {
			snapshot.Participations = append(snapshot.Participations, row.toEntity())
			if _, ok := seen[row.ParticipantID]; !ok {
				seen[row.ParticipantID] = struct{}{}
				profileIDs = append(profileIDs, row.ParticipantID)
			}
		}
		if snapshot.Event.AdminProfileID != "" {
			if _, ok := seen[snapshot.Event.AdminProfileID]; !ok {
				profileIDs = append(profileIDs, snapshot.Event.AdminProfileID)
			}
		}

		var projectRows []teardownProjectModel
		if err := tx.Where("event_id = ?", trimmed).Find(&projectRows).Error; err != nil {
			return err
		}
		for _, row := range projectRows {
			snapshot.Projects = append(snapshot.Projects, entities.Project{
				ProjectID:       row.ID,
				EventID:         row.EventID,
				ParticipationID: row.CreatorParticipantID,
				Title:           row.Title,
				SubmittedAt:     row.SubmittedAt,
			})
		}

		if len(profileIDs) > 0 {
			var profileRows []roleProfileModel
			if err := tx.Where("id IN ?", profileIDs).Find(&profileRows).Error; err != nil {
				return err
			}
			userIDs := make([]string, 0, len(profileRows))
			for _, row := range profileRows {
				snapshot.Profiles[row.ID] = row.toEntity()
				userIDs = append(userIDs, row.UserID)
			}

			participationCounts, err := countGrouped(tx, &teardownParticipationModel{}, "participant_id", profileIDs)
			if err != nil {
				return err
			}
			snapshot.ParticipationCounts = participationCounts

			profileCounts, err := countGrouped(tx, &roleProfileModel{}, "user_id", userIDs)
			if err != nil {
				return err
			}
			snapshot.ProfileCounts = profileCounts
		}

		if snapshot.Event.AdminProfileID != "" {
			var adminEvents int64
			if err := tx.Model(&eventModel{}).
				Where("admin_profile_id = ?", snapshot.Event.AdminProfileID).
				Count(&adminEvents).Error; err != nil {
				return err
			}
			snapshot.AdminEventCount = int(adminEvents)

			var adminCodeRows []invitationCodeModel
			if err := tx.Where("admin_profile_id = ?", snapshot.Event.AdminProfileID).
				Find(&adminCodeRows).Error; err != nil {
				return err
			}
			for _, row := range adminCodeRows {
				snapshot.AdminCodes = append(snapshot.AdminCodes, row.toEntity())
			}
		}

		var eventCodeRows []invitationCodeModel
		if err := tx.Where("event_id = ?", trimmed).Find(&eventCodeRows).Error; err != nil {
			return err
		}
		for _, row := range eventCodeRows {
			snapshot.EventCodes = append(snapshot.EventCodes, row.toEntity())
		}

		var certificateRows []certificateConfigModel
		if err := tx.Where("event_id = ?", trimmed).Find(&certificateRows).Error; err != nil {
			return err
		}
		for _, row := range certificateRows {
			snapshot.CertificateConfigs = append(snapshot.CertificateConfigs, entities.CertificateConfig{
				ConfigID:  row.ID,
				EventID:   row.EventID,
				Layout:    []byte(row.Layout),
				CreatedAt: row.CreatedAt,
				UpdatedAt: row.UpdatedAt,
			})
		}

		var linkRows []categoryLinkModel
		if err := tx.Where("event_id = ?", trimmed).Find(&linkRows).Error; err != nil {
			return err
		}
		for _, row := range linkRows {
			snapshot.CategoryLinks = append(snapshot.CategoryLinks, entities.CategoryLink{
				EventID:    row.EventID,
				CategoryID: row.CategoryID,
			})
		}

		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrEventNotFound) {
			return entities.TeardownSnapshot{}, err
		}
		return entities.TeardownSnapshot{}, r.logError("lifecycle_repo_snapshot_failed", err,
			"event_id", trimmed,
		)
	}
	return snapshot, nil
}

// ApplyTeardown deletes everything in the plan inside one transaction.
func (r *Repository) ApplyTeardown(ctx context.Context, plan entities.TeardownPlan) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if len(plan.ParticipationIDs) > 0 {
			if err := tx.Where("id IN ?", plan.ParticipationIDs).
				Delete(&teardownParticipationModel{}).Error; err != nil {
				return err
			}
		}
		if len(plan.ProjectIDs) > 0 {
			if err := tx.Where("id IN ?", plan.ProjectIDs).
				Delete(&teardownProjectModel{}).Error; err != nil {
				return err
			}
		}
		if len(plan.ProfileIDs) > 0 {
			if err := tx.Where("id IN ?", plan.ProfileIDs).
				Delete(&roleProfileModel{}).Error; err != nil {
				return err
			}
		}
		if len(plan.UserIDs) > 0 {
			if err := tx.Where("id IN ?", plan.UserIDs).
				Delete(&userModel{}).Error; err != nil {
				return err
			}
		}
		if len(plan.CodeIDs) > 0 {
			if err := tx.Where("id IN ?", plan.CodeIDs).
				Delete(&invitationCodeModel{}).Error; err != nil {
				return err
			}
		}
		if len(plan.CertificateConfigIDs) > 0 {
			if err := tx.Where("id IN ?", plan.CertificateConfigIDs).
				Delete(&certificateConfigModel{}).Error; err != nil {
				return err
			}
		}
		if err := tx.Where("event_id = ?", plan.EventID).
			Delete(&categoryLinkModel{}).Error; err != nil {
			return err
		}
		if err := tx.Where("event_id = ?", plan.EventID).
			Delete(&stateChangeModel{}).Error; err != nil {
			return err
		}
		result := tx.Where("id = ?", plan.EventID).Delete(&eventModel{})
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return domainerrors.ErrEventNotFound
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrEventNotFound) {
			return err
		}
		return r.logError("lifecycle_repo_teardown_failed", err,
			"event_id", plan.EventID,
		)
	}
	return nil
}

func (r *Repository) AppendNotification(ctx context.Context, intent entities.NotificationIntent) error {
	row := notificationOutboxModel{
		ID:              strings.TrimSpace(intent.IntentID),
		RecipientUserID: strings.TrimSpace(intent.RecipientUserID),
		EventID:         strings.TrimSpace(intent.EventID),
		EventState:      string(intent.EventState),
		OccurredAt:      intent.OccurredAt.UTC(),
	}
	if err := r.db.WithContext(ctx).Create(&row).Error; err != nil {
		return r.logError("lifecycle_repo_append_notification_failed", err,
			"intent_id", row.ID,
		)
	}
	return nil
}

func (r *Repository) ListPendingNotifications(ctx context.Context, limit int) ([]entities.NotificationIntent, error) {
	if limit <= 0 {
		limit = 100
	}
	var rows []notificationOutboxModel
	if err := r.db.WithContext(ctx).
		Where("published_at IS NULL").
		Order("occurred_at ASC, id ASC").
		Limit(limit).
		Find(&rows).Error; err != nil {
		return nil, r.logError("lifecycle_repo_list_pending_notifications_failed", err)
	}
	items := make([]entities.NotificationIntent, 0, len(rows))
	for _, row := range rows {
		items = append(items, entities.NotificationIntent{
			IntentID:        row.ID,
			RecipientUserID: row.RecipientUserID,
			EventID:         row.EventID,
			EventState:      entities.EventState(row.EventState),
			OccurredAt:      row.OccurredAt,
		})
	}
	return items, nil
}

func (r *Repository) MarkNotificationPublished(ctx context.Context, intentID string, publishedAt time.Time) error {
	at := publishedAt.UTC()
	result := r.db.WithContext(ctx).
		Model(&notificationOutboxModel{}).
		Where("id = ?", strings.TrimSpace(intentID)).
		Update("published_at", &at)
	if result.Error != nil {
		return r.logError("lifecycle_repo_mark_notification_failed", result.Error,
			"intent_id", strings.TrimSpace(intentID),
		)
	}
	return nil
}

func (r *Repository) HasWatermark(ctx context.Context, userID string, state entities.EventState) (bool, error) {
	var row watermarkModel
	err := r.db.WithContext(ctx).
		Where("user_id = ?", strings.TrimSpace(userID)).
		Where("event_state = ?", string(state)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, nil
		}
		return false, r.logError("lifecycle_repo_get_watermark_failed", err,
			"user_id", strings.TrimSpace(userID),
			"state", string(state),
		)
	}
	return true, nil
}

func (r *Repository) PutWatermark(ctx context.Context, watermark entities.NotificationWatermark) error {
	row := watermarkModel{
		UserID:     strings.TrimSpace(watermark.UserID),
		EventState: string(watermark.EventState),
		NotifiedAt: watermark.NotifiedAt.UTC(),
	}
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "user_id"}, {Name: "event_state"}},
		DoNothing: true,
	}).Create(&row).Error
	if err != nil {
		return r.logError("lifecycle_repo_put_watermark_failed", err,
			"user_id", row.UserID,
			"state", row.EventState,
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "event-core/lifecycle-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("lifecycle repository operation failed", fields...)
	return err
}

type groupedCount struct {
	Key   string `gorm:"column:key"`
	Total int    `gorm:"column:total"`
}

func countGrouped(tx *gorm.DB, model any, column string, keys []string) (map[string]int, error) {
	counts := make(map[string]int, len(keys))
	if len(keys) == 0 {
		return counts, nil
	}
	var rows []groupedCount
	if err := tx.Model(model).
		Select(column+" AS key, COUNT(*) AS total").
		Where(column+" IN ?", keys).
		Group(column).
		Scan(&rows).Error; err != nil {
		return nil, err
	}
	for _, row := range rows {
		counts[row.Key] = row.Total
	}
	return counts, nil
}

type eventModel struct {
	ID             string     `gorm:"column:id;primaryKey"`
	Name           string     `gorm:"column:name"`
	Description    string     `gorm:"column:description"`
	State          string     `gorm:"column:state"`
	Capacity       int        `gorm:"column:capacity"`
	AdminProfileID string     `gorm:"column:admin_profile_id"`
	StartsAt       *time.Time `gorm:"column:starts_at"`
	EndsAt         *time.Time `gorm:"column:ends_at"`
	CreatedAt      time.Time  `gorm:"column:created_at"`
	UpdatedAt      time.Time  `gorm:"column:updated_at"`
}

func (eventModel) TableName() string { return "events" }

func (m eventModel) toEntity() entities.Event {
	return entities.Event{
		EventID:        m.ID,
		Name:           m.Name,
		Description:    m.Description,
		State:          entities.EventState(m.State),
		Capacity:       m.Capacity,
		AdminProfileID: m.AdminProfileID,
		StartsAt:       m.StartsAt,
		EndsAt:         m.EndsAt,
		CreatedAt:      m.CreatedAt,
		UpdatedAt:      m.UpdatedAt,
	}
}

func eventModelFromEntity(event entities.Event) eventModel {
	return eventModel{
		ID:             strings.TrimSpace(event.EventID),
		Name:           strings.TrimSpace(event.Name),
		Description:    strings.TrimSpace(event.Description),
		State:          string(event.State),
		Capacity:       event.Capacity,
		AdminProfileID: strings.TrimSpace(event.AdminProfileID),
		StartsAt:       event.StartsAt,
		EndsAt:         event.EndsAt,
		CreatedAt:      event.CreatedAt.UTC(),
		UpdatedAt:      event.UpdatedAt.UTC(),
	}
}

func toEventEntities(rows []eventModel) []entities.Event {
	items := make([]entities.Event, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items
}

type stateChangeModel struct {
	ID        string    `gorm:"column:id;primaryKey"`
	EventID   string    `gorm:"column:event_id"`
	FromState string    `gorm:"column:from_state"`
	ToState   string    `gorm:"column:to_state"`
	ChangedBy string    `gorm:"column:changed_by"`
	Reason    string    `gorm:"column:reason"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (stateChangeModel) TableName() string { return "event_state_changes" }

type userModel struct {
	ID       string `gorm:"column:id;primaryKey"`
	Email    string `gorm:"column:email"`
	FullName string `gorm:"column:full_name"`
}

func (userModel) TableName() string { return "users" }

type roleProfileModel struct {
	ID     string `gorm:"column:id;primaryKey"`
	UserID string `gorm:"column:user_id"`
	Kind   string `gorm:"column:kind"`
}

func (roleProfileModel) TableName() string { return "role_profiles" }

func (m roleProfileModel) toEntity() entities.RoleProfile {
	return entities.RoleProfile{
		ProfileID: m.ID,
		UserID:    m.UserID,
		Kind:      entities.RoleKind(m.Kind),
	}
}

type teardownParticipationModel struct {
	ID            string   `gorm:"column:id;primaryKey"`
	ParticipantID string   `gorm:"column:participant_id"`
	EventID       string   `gorm:"column:event_id"`
	GroupCode     *string  `gorm:"column:group_code"`
	Confirmed     bool     `gorm:"column:confirmed"`
	ComputedScore *float64 `gorm:"column:computed_score"`
}

func (teardownParticipationModel) TableName() string { return "participations" }

func (m teardownParticipationModel) toEntity() entities.Participation {
	groupCode := ""
	if m.GroupCode != nil {
		groupCode = *m.GroupCode
	}
	return entities.Participation{
		ParticipationID: m.ID,
		ProfileID:       m.ParticipantID,
		EventID:         m.EventID,
		GroupCode:       groupCode,
		Confirmed:       m.Confirmed,
		ComputedScore:   m.ComputedScore,
	}
}

type teardownProjectModel struct {
	ID                   string    `gorm:"column:id;primaryKey"`
	EventID              string    `gorm:"column:event_id"`
	CreatorParticipantID string    `gorm:"column:creator_participant_id"`
	Title                string    `gorm:"column:title"`
	SubmittedAt          time.Time `gorm:"column:submitted_at"`
}

func (teardownProjectModel) TableName() string { return "projects" }

type invitationCodeModel struct {
	ID             string    `gorm:"column:id;primaryKey"`
	AdminProfileID string    `gorm:"column:admin_profile_id"`
	EventID        string    `gorm:"column:event_id"`
	Code           string    `gorm:"column:code"`
	Quota          int       `gorm:"column:quota"`
	CreatedAt      time.Time `gorm:"column:created_at"`
}

func (invitationCodeModel) TableName() string { return "invitation_codes" }

func (m invitationCodeModel) toEntity() entities.InvitationCode {
	return entities.InvitationCode{
		CodeID:         m.ID,
		AdminProfileID: m.AdminProfileID,
		EventID:        m.EventID,
		Code:           m.Code,
		Quota:          m.Quota,
		CreatedAt:      m.CreatedAt,
	}
}

type certificateConfigModel struct {
	ID        string         `gorm:"column:id;primaryKey"`
	EventID   string         `gorm:"column:event_id"`
	Layout    datatypes.JSON `gorm:"column:layout"`
	CreatedAt time.Time      `gorm:"column:created_at"`
	UpdatedAt time.Time      `gorm:"column:updated_at"`
}

func (certificateConfigModel) TableName() string { return "certificate_configs" }

type categoryLinkModel struct {
	EventID    string `gorm:"column:event_id;primaryKey"`
	CategoryID string `gorm:"column:category_id;primaryKey"`
}

func (categoryLinkModel) TableName() string { return "event_category_links" }

type notificationOutboxModel struct {
	ID              string     `gorm:"column:id;primaryKey"`
	RecipientUserID string     `gorm:"column:recipient_user_id"`
	EventID         string     `gorm:"column:event_id"`
	EventState      string     `gorm:"column:event_state"`
	OccurredAt      time.Time  `gorm:"column:occurred_at"`
	PublishedAt     *time.Time `gorm:"column:published_at"`
}

func (notificationOutboxModel) TableName() string { return "notification_outbox" }

type watermarkModel struct {
	UserID     string    `gorm:"column:user_id;primaryKey"`
	EventState string    `gorm:"column:event_state;primaryKey"`
	NotifiedAt time.Time `gorm:"column:notified_at"`
}

func (watermarkModel) TableName() string { return "notification_watermarks" }
