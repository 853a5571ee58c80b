package service

import (
	"context"
	"regexp"

	"auditdesk/internal/model"
	"auditdesk/internal/repository"
	"auditdesk/pkg/apperr"

	"github.com/google/uuid"
)

type CreateOrgDTO struct {
	Slug string `json:"slug" binding:"required"`
	Name string `json:"name" binding:"required"`
}

type AddMemberDTO struct {
	UserID        string `json:"user_id" binding:"required"`
	Role          string `json:"role" binding:"required,oneof=EMPLOYEE MANAGER PARTNER SYSTEM_ADMIN"`
	IsEQRReviewer bool   `json:"is_eqr_reviewer"`
}

var slugPattern = regexp.MustCompile(`^[a-z0-9]+(-[a-z0-9]+)*$`)

// OrgService manages organizations and memberships. The creator becomes the
// founding PARTNER member.
type OrgService interface {
	Create(ctx context.Context, userID uuid.UUID, req CreateOrgDTO) (*model.Organization, error)
	AddMember(ctx context.Context, actor Actor, req AddMemberDTO) (*model.Membership, error)
	Resolve(ctx context.Context, slug string, userID uuid.UUID) (*model.Organization, *model.Membership, error)
}

type orgService struct {
	orgs  repository.OrgRepository
	users repository.UserRepository
	tx    repository.TransactionManager
}

func NewOrgService(orgs repository.OrgRepository, users repository.UserRepository, tx repository.TransactionManager) OrgService {
	return &orgService{orgs: orgs, users: users, tx: tx}
}

func (s *orgService) Create(ctx context.Context, userID uuid.UUID, req CreateOrgDTO) (*model.Organization, error) {
	if !slugPattern.MatchString(req.Slug) {
		return nil, apperr.Validation("invalid_slug")
	}
	if _, err := s.orgs.FindBySlug(ctx, req.Slug); err == nil {
		return nil, apperr.Conflict("slug_already_exists")
	}

	// Org and founding membership commit together.
	org := &model.Organization{Slug: req.Slug, Name: req.Name}
	err := s.tx.RunInTx(ctx, func(txCtx context.Context) error {
		if err := s.orgs.CreateOrganization(txCtx, org); err != nil {
			return err
		}
		return s.orgs.CreateMembership(txCtx, &model.Membership{
			OrgID:  org.ID,
			UserID: userID,
			Role:   model.RolePartner,
		})
	})
	if err != nil {
		return nil, err
	}
	return org, nil
}

func (s *orgService) AddMember(ctx context.Context, actor Actor, req AddMemberDTO) (*model.Membership, error) {
	if !model.RoleAtLeast(actor.Role, model.RolePartner) {
		return nil, apperr.Forbidden("insufficient_role")
	}
	userID, err := uuid.Parse(req.UserID)
	if err != nil {
		return nil, apperr.Validation("user_id_required")
	}
	if _, err := s.users.GetByID(ctx, userID.String()); err != nil {
		return nil, err
	}
	if _, err := s.orgs.FindMembership(ctx, actor.OrgID, userID); err == nil {
		return nil, apperr.Conflict("already_a_member")
	}

	// EQR reviewer designation requires partner rank.
	if req.IsEQRReviewer && !model.RoleAtLeast(req.Role, model.RolePartner) {
		return nil, apperr.Validation("eqr_reviewer_requires_partner")
	}

	membership := &model.Membership{
		OrgID:         actor.OrgID,
		UserID:        userID,
		Role:          req.Role,
		IsEQRReviewer: req.IsEQRReviewer,
	}
	if err := s.orgs.CreateMembership(ctx, membership); err != nil {
		return nil, err
	}
	return membership, nil
}

// Resolve loads the org by slug and the caller's membership in it. Used by the
// org-context middleware on every scoped route.
func (s *orgService) Resolve(ctx context.Context, slug string, userID uuid.UUID) (*model.Organization, *model.Membership, error) {
	org, err := s.orgs.FindBySlug(ctx, slug)
	if err != nil {
		return nil, nil, err
	}
	membership, err := s.orgs.FindMembership(ctx, org.ID, userID)
	if err != nil {
		return nil, nil, err
	}
	return org, membership, nil
}
