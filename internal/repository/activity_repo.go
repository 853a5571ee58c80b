package repository

import (
	"context"

	"auditdesk/internal/model"
	"auditdesk/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"
)

// ActivityRepository is the append-only activity trail. Record satisfies
// approval.ActivitySink: a failed write is logged and dropped, never
// propagated, so the trail can never block or roll back a state transition.
type ActivityRepository interface {
	Record(ctx context.Context, entry *model.ActivityEntry)
	List(ctx context.Context, orgID uuid.UUID, entityType string, page, limit int) ([]model.ActivityEntry, int64, error)
}

type activityRepository struct {
	db *gorm.DB
}

func NewActivityRepository(db *gorm.DB) ActivityRepository {
	return &activityRepository{db: db}
}

func (r *activityRepository) Record(ctx context.Context, entry *model.ActivityEntry) {
	// Deliberately uses the root DB, not the caller's transaction: an entry
	// for a committed transition must survive even if a later write in the
	// same request fails.
	if err := r.db.WithContext(ctx).Create(entry).Error; err != nil {
		logrus.WithFields(logrus.Fields{
			"action":      entry.Action,
			"entity_type": entry.EntityType,
			"entity_id":   entry.EntityID,
		}).WithError(err).Error("activity trail write failed")
	}
}

func (r *activityRepository) List(ctx context.Context, orgID uuid.UUID, entityType string, page, limit int) ([]model.ActivityEntry, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.ActivityEntry{}).Where("org_id = ?", orgID)
	if entityType != "" {
		query = query.Where("entity_type = ?", entityType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Storage(err)
	}

	var entries []model.ActivityEntry
	offset := (page - 1) * limit
	if err := query.Preload("User").Order("created_at DESC").Offset(offset).Limit(limit).Find(&entries).Error; err != nil {
		return nil, 0, apperr.Storage(err)
	}
	return entries, total, nil
}
