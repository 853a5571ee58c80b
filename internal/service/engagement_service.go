package service

import (
	"context"
	"encoding/json"

	"auditdesk/internal/model"
	"auditdesk/internal/repository"
	"auditdesk/pkg/apperr"

	"github.com/google/uuid"
)

type CreateEngagementDTO struct {
	ClientName  string `json:"client_name" binding:"required"`
	Title       string `json:"title" binding:"required"`
	Period      string `json:"period"`
	EQRRequired bool   `json:"eqr_required"`
}

// EngagementService manages engagement lifecycle and the EQR flag.
type EngagementService interface {
	Create(ctx context.Context, actor Actor, req CreateEngagementDTO) (*model.Engagement, error)
	Get(ctx context.Context, actor Actor, engagementID string) (*model.Engagement, error)
	List(ctx context.Context, actor Actor, page, limit int) ([]model.Engagement, int64, error)
	SetEQRRequired(ctx context.Context, actor Actor, engagementID string, required bool) (*model.Engagement, error)
}

type engagementService struct {
	engagements repository.EngagementRepository
	activity    repository.ActivityRepository
}

func NewEngagementService(engagements repository.EngagementRepository, activity repository.ActivityRepository) EngagementService {
	return &engagementService{engagements: engagements, activity: activity}
}

func (s *engagementService) Create(ctx context.Context, actor Actor, req CreateEngagementDTO) (*model.Engagement, error) {
	if !model.RoleAtLeast(actor.Role, model.RoleManager) {
		return nil, apperr.Forbidden("insufficient_role")
	}

	userID := actor.UserID
	engagement := &model.Engagement{
		OrgID:           actor.OrgID,
		ClientName:      req.ClientName,
		Title:           req.Title,
		Period:          req.Period,
		Status:          model.EngagementStatusPlanning,
		EQRRequired:     req.EQRRequired,
		CreatedByUserID: &userID,
	}
	if err := s.engagements.Create(ctx, engagement); err != nil {
		return nil, err
	}

	details, _ := json.Marshal(map[string]interface{}{"client_name": req.ClientName, "period": req.Period})
	s.activity.Record(ctx, &model.ActivityEntry{
		OrgID:      actor.OrgID,
		UserID:     &userID,
		Action:     model.ActionEngagementCreated,
		EntityType: "ENGAGEMENT",
		EntityID:   engagement.ID.String(),
		Metadata:   string(details),
	})
	return engagement, nil
}

func (s *engagementService) Get(ctx context.Context, actor Actor, engagementID string) (*model.Engagement, error) {
	id, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	return s.engagements.FindByID(ctx, actor.OrgID, id)
}

func (s *engagementService) List(ctx context.Context, actor Actor, page, limit int) ([]model.Engagement, int64, error) {
	return s.engagements.List(ctx, actor.OrgID, page, limit)
}

func (s *engagementService) SetEQRRequired(ctx context.Context, actor Actor, engagementID string, required bool) (*model.Engagement, error) {
	if !model.RoleAtLeast(actor.Role, model.RolePartner) {
		return nil, apperr.Forbidden("insufficient_role")
	}
	id, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	if _, err := s.engagements.FindByID(ctx, actor.OrgID, id); err != nil {
		return nil, err
	}
	if err := s.engagements.SetEQRRequired(ctx, actor.OrgID, id, required); err != nil {
		return nil, err
	}
	return s.engagements.FindByID(ctx, actor.OrgID, id)
}
