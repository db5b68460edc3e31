package postgresadapter

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"symposium/contexts/evaluation/criteria-service/domain/entities"
	domainerrors "symposium/contexts/evaluation/criteria-service/domain/errors"
	"symposium/contexts/evaluation/criteria-service/ports"

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

// SaveCriterionGuarded runs the ceiling check and the upsert inside one
// transaction, locking the event's criterion rows so concurrent writers
// serialize per event.
func (r *Repository) SaveCriterionGuarded(ctx context.Context, criterion entities.Criterion, ceiling float64) error {
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var rows []criterionModel
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Where("event_id = ?", strings.TrimSpace(criterion.EventID)).
			Find(&rows).Error; err != nil {
			return err
		}
		total := 0.0
		for _, row := range rows {
			if row.ID == strings.TrimSpace(criterion.CriterionID) {
				continue
			}
			total += row.Weight
		}
		if total+criterion.Weight > ceiling {
			return domainerrors.ErrWeightCeilingExceeded
		}

		row := criterionModelFromEntity(criterion)
		return tx.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"description": row.Description,
				"weight":      row.Weight,
				"updated_at":  row.UpdatedAt,
			}),
		}).Create(&row).Error
	})
	if err != nil {
		if errors.Is(err, domainerrors.ErrWeightCeilingExceeded) {
			return err
		}
		if isUniqueViolation(err) {
			return domainerrors.ErrInvalidCriterionInput
		}
		return r.logError("criteria_repo_save_guarded_failed", err,
			"criterion_id", strings.TrimSpace(criterion.CriterionID),
			"event_id", strings.TrimSpace(criterion.EventID),
		)
	}
	return nil
}

func (r *Repository) GetCriterion(ctx context.Context, criterionID string) (entities.Criterion, error) {
	var row criterionModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(criterionID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return entities.Criterion{}, domainerrors.ErrCriterionNotFound
		}
		return entities.Criterion{}, r.logError("criteria_repo_get_failed", err,
			"criterion_id", strings.TrimSpace(criterionID),
		)
	}
	return row.toEntity(), nil
}

func (r *Repository) ListCriteriaByEvent(ctx context.Context, eventID string) ([]entities.Criterion, error) {
	var rows []criterionModel
	if err := r.db.WithContext(ctx).
		Where("event_id = ?", strings.TrimSpace(eventID)).
		Order("created_at ASC, id ASC").
		Find(&rows).Error; err != nil {
		return nil, r.logError("criteria_repo_list_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	items := make([]entities.Criterion, 0, len(rows))
	for _, row := range rows {
		items = append(items, row.toEntity())
	}
	return items, nil
}

func (r *Repository) DeleteCriterion(ctx context.Context, criterionID string) error {
	result := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(criterionID)).
		Delete(&criterionModel{})
	if result.Error != nil {
		return r.logError("criteria_repo_delete_failed", result.Error,
			"criterion_id", strings.TrimSpace(criterionID),
		)
	}
	if result.RowsAffected == 0 {
		return domainerrors.ErrCriterionNotFound
	}
	return nil
}

func (r *Repository) GetEventState(ctx context.Context, eventID string) (ports.EventStateProjection, error) {
	var row eventStateModel
	err := r.db.WithContext(ctx).
		Where("id = ?", strings.TrimSpace(eventID)).
		First(&row).
		Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ports.EventStateProjection{}, domainerrors.ErrEventNotFound
		}
		return ports.EventStateProjection{}, r.logError("criteria_repo_get_event_state_failed", err,
			"event_id", strings.TrimSpace(eventID),
		)
	}
	return ports.EventStateProjection{
		EventID: row.ID,
		State:   row.State,
	}, nil
}

func (r *Repository) logError(event string, err error, args ...any) error {
	fields := append([]any{
		"event", event,
		"module", "evaluation/criteria-service",
		"layer", "adapter",
		"error", err.Error(),
	}, args...)
	r.logger.Error("criteria repository operation failed", fields...)
	return err
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	if errors.As(err, &pgErr) {
		return pgErr.Code == "23505"
	}
	return false
}

type criterionModel struct {
	ID          string    `gorm:"column:id;primaryKey"`
	EventID     string    `gorm:"column:event_id"`
	Description string    `gorm:"column:description"`
	Weight      float64   `gorm:"column:weight"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (criterionModel) TableName() string { return "criteria" }

func (m criterionModel) toEntity() entities.Criterion {
	return entities.Criterion{
		CriterionID: m.ID,
		EventID:     m.EventID,
		Description: m.Description,
		Weight:      m.Weight,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

func criterionModelFromEntity(criterion entities.Criterion) criterionModel {
	return criterionModel{
		ID:          strings.TrimSpace(criterion.CriterionID),
		EventID:     strings.TrimSpace(criterion.EventID),
		Description: strings.TrimSpace(criterion.Description),
		Weight:      criterion.Weight,
		CreatedAt:   criterion.CreatedAt.UTC(),
		UpdatedAt:   criterion.UpdatedAt.UTC(),
	}
}

type eventStateModel struct {
	ID    string `gorm:"column:id;primaryKey"`
	State string `gorm:"column:state"`
}

func (eventStateModel) TableName() string { return "events" }
