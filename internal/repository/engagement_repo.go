package repository

import (
	"context"
	"errors"

	"auditdesk/internal/model"
	"auditdesk/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type EngagementRepository interface {
	Create(ctx context.Context, engagement *model.Engagement) error
	FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Engagement, error)
	List(ctx context.Context, orgID uuid.UUID, page, limit int) ([]model.Engagement, int64, error)
	SetEQRRequired(ctx context.Context, orgID, id uuid.UUID, required bool) error
}

type engagementRepository struct {
	db *gorm.DB
}

func NewEngagementRepository(db *gorm.DB) EngagementRepository {
	return &engagementRepository{db: db}
}

func (r *engagementRepository) Create(ctx context.Context, engagement *model.Engagement) error {
	if err := GetDB(ctx, r.db).Create(engagement).Error; err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (r *engagementRepository) FindByID(ctx context.Context, orgID, id uuid.UUID) (*model.Engagement, error) {
	var engagement model.Engagement
	err := GetDB(ctx, r.db).Where("org_id = ?", orgID).First(&engagement, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("engagement_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &engagement, nil
}

func (r *engagementRepository) List(ctx context.Context, orgID uuid.UUID, page, limit int) ([]model.Engagement, int64, error) {
	db := GetDB(ctx, r.db)

	var total int64
	if err := db.Model(&model.Engagement{}).Where("org_id = ?", orgID).Count(&total).Error; err != nil {
		return nil, 0, apperr.Storage(err)
	}

	var engagements []model.Engagement
	offset := (page - 1) * limit
	if err := db.Where("org_id = ?", orgID).Order("created_at DESC").Offset(offset).Limit(limit).Find(&engagements).Error; err != nil {
		return nil, 0, apperr.Storage(err)
	}
	return engagements, total, nil
}

// SetEQRRequired flips the engagement's EQR flag. Work products that already
// snapshotted the old value keep their in-flight stage set.
func (r *engagementRepository) SetEQRRequired(ctx context.Context, orgID, id uuid.UUID, required bool) error {
	err := GetDB(ctx, r.db).Model(&model.Engagement{}).
		Where("id = ? AND org_id = ?", id, orgID).
		Update("eqr_required", required).Error
	if err != nil {
		return apperr.Storage(err)
	}
	return nil
}
