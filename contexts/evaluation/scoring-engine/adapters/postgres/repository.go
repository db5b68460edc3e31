package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"symposium/contexts/evaluation/scoring-engine/domain/entities"
	domainerrors "symposium/contexts/evaluation/scoring-engine/domain/errors"
	"symposium/contexts/evaluation/scoring-engine/ports"

	"github.com/jackc/pgx/v5/pgconn"
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

// SaveRating upserts on the (evaluator, participant, criterion) unique key.
// Only the mutable columns are assigned, so concurrent writers on different
// keys stay independent.
func (r *Repository) SaveRating(ctx context.Context, rating entities.Rating) error {
	row := ratingModelFromEntity(rating)
	err := r.db.WithContext(ctx).Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "evaluator_id"},
			{Name: "participant_id"},
			{Name: "criterion_id"},
		},
		DoUpdates: clause.Assignments(map[string]any{
			"value":      row.Value,
			"note":       row.Note,
			"updated_at": row.UpdatedAt,
		}),
	}).Create(&row).Error
	if err != nil {
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidRatingInput
		}
		return r.logError("scoring_repo_save_rating_failed", err,
			"evaluator_id", strings.TrimSpace(rating.EvaluatorID),
			"participant_id", strings.TrimSpace(rating.ParticipantID),
			"criterion_id", strings.TrimSpace(rating.CriterionID),
		)
	}
	return nil
}

func (r *Repository) GetRatingByIdentity(
	ctx context.Context,
	evaluatorID string,
	participantID string,
	criterionID string,
) (entities.Rating, bool, error) {
	var row ratingModel
	err := r.db.WithContext(ctx).
		Where("evaluator_id = ?", strings.TrimSpace(evaluatorID)).
		Where("participant_id = ?", strings.TrimSpace(participantID)).
		Where("criterion_id = ?", strings.TrimSpace(criterionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Rating{}, false, nil
		}
		return entities.Rating{}, false, r.logError("scoring_repo_get_rating_failed", err,
			"evaluator_id", strings.TrimSpace(evaluatorID),
			"participant_id", strings.TrimSpace(participantID),
			"criterion_id", strings.TrimSpace(criterionID),
		)
	}
	return row.toEntity(), true, nil
}

func (r *Repository) ListRatingsByParticipant(ctx context.Context, participantID string) ([]entities.Rating, error) {
	var rows []ratingModel
	if err := r.db.WithContext(ctx).
		Where("participant_id = ?", strings.TrimSpace(participantID)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("scoring_repo_list_ratings_failed", err,
			"participant_id", strings.TrimSpace(participantID),
		)
	}
	items := make([]entities.Rating, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) GetCriterion(ctx context.Context, criterionID string) (ports.CriterionProjection, bool, error) {
	var row criterionProjectionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(criterionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.CriterionProjection{}, false, nil
		}
		return ports.CriterionProjection{}, false, r.logError("scoring_repo_get_criterion_failed", err,
			"criterion_id", strings.TrimSpace(criterionID),
		)
	}
	return ports.CriterionProjection{
		CriterionID: row.ID,
		EventID:     row.EventID,
		Weight:      row.Weight,
	}, true, nil
}

func (r *Repository) ListActiveCriteria(ctx context.Context, eventID string) ([]ports.CriterionProjection, error) {
	var rows []criterionProjectionModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Order("id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("scoring_repo_list_criteria_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	items := make([]ports.CriterionProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.CriterionProjection{
			CriterionID: row.ID,
			EventID:     row.EventID,
			Weight:      row.Weight,
		})
	}
	return items, nil
}

func (r *Repository) GetParticipation(ctx context.Context, participantID string, eventID string) (ports.ParticipationProjection, error) {
	var row participationModel
	err := r.db.WithContext(ctx).
		Where("participant_id = ?", strings.TrimSpace(participantID)).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.ParticipationProjection{}, domainerrors.ErrParticipationNotFound
		}
		return ports.ParticipationProjection{}, r.logError("scoring_repo_get_participation_failed", err,
			"participant_id", strings.TrimSpace(participantID),
			"event_id", strings.TrimSpace(eventID),
		)
	}
	return row.toProjection(), nil
}

func (r *Repository) ListParticipationsByEvent(ctx context.Context, eventID string) ([]ports.ParticipationProjection, error) {
	var rows []participationModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Order("participant_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("scoring_repo_list_participations_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	return toParticipationProjections(rows), nil
}

func (r *Repository) ListGroupMembers(ctx context.Context, eventID string, groupCode string) ([]ports.ParticipationProjection, error) {
	var rows []participationModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Where("group_code = ?", strings.TrimSpace(groupCode)).
		Order("participant_id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("scoring_repo_list_group_members_failed", err,
			"event_id", strings.TrimSpace(eventID),
			"group_code", strings.TrimSpace(groupCode),
		)
	}
	return toParticipationProjections(rows), nil
}

func (r *Repository) ListProjectsByCreator(ctx context.Context, eventID string, participantID string) ([]ports.ProjectProjection, error) {
	var rows []projectModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Where("creator_participant_id = ?", strings.TrimSpace(participantID)).
		Order("submitted_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("scoring_repo_list_projects_failed", err,
			"event_id", strings.TrimSpace(eventID),
			"participant_id", strings.TrimSpace(participantID),
		)
	}
	items := make([]ports.ProjectProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, ports.ProjectProjection{
			ProjectID:            row.ID,
			EventID:              row.EventID,
			CreatorParticipantID: row.CreatorParticipantID,
			Title:                row.Title,
			SubmittedAt:          row.SubmittedAt,
			ComputedScore:        row.ComputedScore,
		})
	}
	return items, nil
}

// SetGroupScores runs in one transaction holding FOR UPDATE locks on the
// group's participation rows, so concurrent recomputes of the same group
// serialize and land wholesale.
func (r *Repository) SetGroupScores(
	ctx context.Context,
	eventID string,
	score float64,
	participantIDs []string,
	projectIDs []string,
) error {
	cleanEventID := strings.TrimSpace(eventID)
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var locked []participationModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("participant_id IN ?", participantIDs).
			Where("event_id = ?", cleanEventID).
			Order("participant_id").
			Find(&locked).Error; err != nil {
			return err
		}
		if len(locked) != len(participantIDs) {
			return domainerrors.ErrParticipationNotFound
		}

		if err := tx.Model(&participationModel{}).
			Where("participant_id IN ?", participantIDs).
			Where("event_id = ?", cleanEventID).
			Update("computed_score", score).Error; err != nil {
			return err
		}

		if len(projectIDs) == 0 {
			return nil
		}
		result := tx.Model(&projectModel{}).
			Where("id IN ?", projectIDs).
			Update("computed_score", score)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected != int64(len(projectIDs)) {
			return domainerrors.ErrScorePropagationFailure
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrParticipationNotFound) ||
			errors.Is(err, domainerrors.ErrScorePropagationFailure) {
			return err
		}
		return r.logError("scoring_repo_set_group_scores_failed", err,
			"event_id", cleanEventID,
			"participant_count", len(participantIDs),
			"project_count", len(projectIDs),
		)
	}
	return nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "evaluation/scoring-engine",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("scoring repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type ratingModel struct {
	ID            string    `gorm:"column:id;primaryKey"`
	EvaluatorID   string    `gorm:"column:evaluator_id"`
	ParticipantID string    `gorm:"column:participant_id"`
	CriterionID   string    `gorm:"column:criterion_id"`
	Value         int       `gorm:"column:value"`
	Note          string    `gorm:"column:note"`
	CreatedAt     time.Time `gorm:"column:created_at"`
	UpdatedAt     time.Time `gorm:"column:updated_at"`
}

func (ratingModel) TableName() string { return "ratings" }

func (m ratingModel) toEntity() entities.Rating {
	return entities.Rating{
		RatingID:      m.ID,
		EvaluatorID:   m.EvaluatorID,
		ParticipantID: m.ParticipantID,
		CriterionID:   m.CriterionID,
		Value:         m.Value,
		Note:          m.Note,
		CreatedAt:     m.CreatedAt,
		UpdatedAt:     m.UpdatedAt,
	}
}

func ratingModelFromEntity(rating entities.Rating) ratingModel {
	return ratingModel{
		ID:            strings.TrimSpace(rating.RatingID),
		EvaluatorID:   strings.TrimSpace(rating.EvaluatorID),
		ParticipantID: strings.TrimSpace(rating.ParticipantID),
		CriterionID:   strings.TrimSpace(rating.CriterionID),
		Value:         rating.Value,
		Note:          strings.TrimSpace(rating.Note),
		CreatedAt:     rating.CreatedAt.UTC(),
		UpdatedAt:     rating.UpdatedAt.UTC(),
	}
}

type criterionProjectionModel struct {
	ID      string  `gorm:"column:id;primaryKey"`
	EventID string  `gorm:"column:event_id"`
	Weight  float64 `gorm:"column:weight"`
}

func (criterionProjectionModel) TableName() string { return "criteria" }

type participationModel struct {
	ID            string   `gorm:"column:id;primaryKey"`
	ParticipantID string   `gorm:"column:participant_id"`
	EventID       string   `gorm:"column:event_id"`
	GroupCode     *string  `gorm:"column:group_code"`
	Confirmed     bool     `gorm:"column:confirmed"`
	ComputedScore *float64 `gorm:"column:computed_score"`
}

func (participationModel) TableName() string { return "participations" }

func (m participationModel) toProjection() ports.ParticipationProjection {
	groupCode := ""
	if m.GroupCode != nil {
		groupCode = *m.GroupCode
	}
	return ports.ParticipationProjection{
		ParticipantID: m.ParticipantID,
		EventID:       m.EventID,
		GroupCode:     groupCode,
		Confirmed:     m.Confirmed,
		ComputedScore: m.ComputedScore,
	}
}

func toParticipationProjections(rows []participationModel) []ports.ParticipationProjection {
	items := make([]ports.ParticipationProjection, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toProjection())
	}
	return items
}

type projectModel struct {
	ID                   string    `gorm:"column:id;primaryKey"`
	EventID              string    `gorm:"column:event_id"`
	CreatorParticipantID string    `gorm:"column:creator_participant_id"`
	Title                string    `gorm:"column:title"`
	SubmittedAt          time.Time `gorm:"column:submitted_at"`
	ComputedScore        *float64  `gorm:"column:computed_score"`
}

func (projectModel) TableName() string { return "projects" }
