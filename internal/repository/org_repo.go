package repository

import (
	"context"
	"errors"

	"auditdesk/internal/model"
	"auditdesk/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// OrgRepository resolves organizations and memberships. The engine only ever
// reads these; they are owned by org administration.
type OrgRepository interface {
	FindBySlug(ctx context.Context, slug string) (*model.Organization, error)
	FindMembership(ctx context.Context, orgID, userID uuid.UUID) (*model.Membership, error)
	CreateOrganization(ctx context.Context, org *model.Organization) error
	CreateMembership(ctx context.Context, membership *model.Membership) error
}

type orgRepository struct {
	db *gorm.DB
}

func NewOrgRepository(db *gorm.DB) OrgRepository {
	return &orgRepository{db: db}
}

func (r *orgRepository) FindBySlug(ctx context.Context, slug string) (*model.Organization, error) {
	var org model.Organization
	err := GetDB(ctx, r.db).First(&org, "slug = ?", slug).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("organization_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &org, nil
}

func (r *orgRepository) FindMembership(ctx context.Context, orgID, userID uuid.UUID) (*model.Membership, error) {
	var membership model.Membership
	err := GetDB(ctx, r.db).Where("org_id = ? AND user_id = ?", orgID, userID).First(&membership).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Forbidden("not_a_member")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &membership, nil
}

func (r *orgRepository) CreateOrganization(ctx context.Context, org *model.Organization) error {
	if err := GetDB(ctx, r.db).Create(org).Error; err != nil {
		return apperr.Storage(err)
	}
	return nil
}

func (r *orgRepository) CreateMembership(ctx context.Context, membership *model.Membership) error {
	if err := GetDB(ctx, r.db).Create(membership).Error; err != nil {
		return apperr.Storage(err)
	}
	return nil
}
