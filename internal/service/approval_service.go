package service

import (
	"context"

	"auditdesk/internal/model"
	"auditdesk/internal/repository"
	"auditdesk/pkg/apperr"

	"github.com/google/uuid"
)

type ApprovalListFilter struct {
	EngagementID string
	Status       string
	Kind         string
	Page         int
	Limit        int
}

// ApprovalService is the read side of the approval queue: reviewers list what
// is waiting for them, auditors list what was decided. Writes go through the
// per-variant services.
type ApprovalService interface {
	List(ctx context.Context, actor Actor, filter ApprovalListFilter) ([]model.ApprovalTask, int64, error)
	Get(ctx context.Context, actor Actor, approvalID string) (*model.ApprovalTask, error)
}

type approvalService struct {
	tasks repository.ApprovalTaskRepository
}

func NewApprovalService(tasks repository.ApprovalTaskRepository) ApprovalService {
	return &approvalService{tasks: tasks}
}

func (s *approvalService) List(ctx context.Context, actor Actor, filter ApprovalListFilter) ([]model.ApprovalTask, int64, error) {
	var engagementID *uuid.UUID
	if filter.EngagementID != "" {
		id, err := uuid.Parse(filter.EngagementID)
		if err != nil {
			return nil, 0, apperr.Validation("engagement_id_required")
		}
		engagementID = &id
	}
	if filter.Status != "" {
		switch filter.Status {
		case model.ApprovalPending, model.ApprovalApproved, model.ApprovalRejected, model.ApprovalCancelled:
		default:
			return nil, 0, apperr.Validation("invalid_status_filter")
		}
	}
	return s.tasks.List(ctx, actor.OrgID, engagementID, filter.Status, filter.Kind, filter.Page, filter.Limit)
}

func (s *approvalService) Get(ctx context.Context, actor Actor, approvalID string) (*model.ApprovalTask, error) {
	id, err := uuid.Parse(approvalID)
	if err != nil {
		return nil, apperr.Validation("approval_id_required")
	}
	return s.tasks.FindByID(ctx, actor.OrgID, id)
}
