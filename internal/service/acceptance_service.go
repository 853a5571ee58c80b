package service

import (
	"context"
	"errors"
	"time"

	"auditdesk/internal/approval"
	"auditdesk/internal/model"
	"auditdesk/internal/repository"
	"auditdesk/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// --- DTOs ---

type UpsertAcceptanceDTO struct {
	EngagementID   string `json:"engagement_id" binding:"required"`
	Decision       string `json:"decision" binding:"omitempty,oneof=ACCEPT DECLINE"`
	Rationale      string `json:"rationale"`
	EQRRecommended bool   `json:"eqr_recommended"`
}

// --- Interface ---

// AcceptanceService manages the engagement acceptance decision: the first
// work product of every engagement and the gate for all the others.
type AcceptanceService interface {
	Upsert(ctx context.Context, actor Actor, req UpsertAcceptanceDTO) (*model.AcceptanceDecision, error)
	Submit(ctx context.Context, actor Actor, engagementID, decisionID string) ([]model.ApprovalTask, error)
	Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error)
	Get(ctx context.Context, actor Actor, engagementID string) (*model.AcceptanceDecision, error)
}

type acceptanceService struct {
	db          *gorm.DB
	engine      *approval.Engine
	engagements repository.EngagementRepository
}

func NewAcceptanceService(db *gorm.DB, engine *approval.Engine, engagements repository.EngagementRepository) AcceptanceService {
	s := &acceptanceService{db: db, engine: engine, engagements: engagements}
	engine.Register(approval.VariantConfig{
		Kind:    model.KindAcceptanceDecision,
		Stages:  approval.PartnerOnly,
		Applier: &acceptanceApplier{db: db},
		Actions: approval.ActionSet{
			Submitted: model.ActionAcceptanceSubmitted,
			Approved:  model.ActionAcceptanceApproved,
			Rejected:  model.ActionAcceptanceRejected,
		},
	})
	return s
}

// --- Implementation ---

func (s *acceptanceService) Upsert(ctx context.Context, actor Actor, req UpsertAcceptanceDTO) (*model.AcceptanceDecision, error) {
	engagementID, err := uuid.Parse(req.EngagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	if _, err := s.engagements.FindByID(ctx, actor.OrgID, engagementID); err != nil {
		return nil, err
	}

	var decision model.AcceptanceDecision
	err = s.db.WithContext(ctx).
		Where("org_id = ? AND engagement_id = ?", actor.OrgID, engagementID).
		First(&decision).Error
	switch {
	case errors.Is(err, gorm.ErrRecordNotFound):
		userID := actor.UserID
		decision = model.AcceptanceDecision{
			OrgID:           actor.OrgID,
			EngagementID:    engagementID,
			Status:          model.AcceptanceDraft,
			Decision:        req.Decision,
			Rationale:       req.Rationale,
			EQRRecommended:  req.EQRRecommended,
			CreatedByUserID: &userID,
		}
		if createErr := s.db.WithContext(ctx).Create(&decision).Error; createErr != nil {
			return nil, apperr.Storage(createErr)
		}
		return &decision, nil
	case err != nil:
		return nil, apperr.Storage(err)
	}

	if decision.Status == model.AcceptanceApprovedStatus {
		return nil, apperr.Conflict("acceptance_already_approved")
	}

	decision.Decision = req.Decision
	decision.Rationale = req.Rationale
	decision.EQRRecommended = req.EQRRecommended
	decision.Status = model.AcceptanceDraft
	if saveErr := s.db.WithContext(ctx).Save(&decision).Error; saveErr != nil {
		return nil, apperr.Storage(saveErr)
	}
	return &decision, nil
}

func (s *acceptanceService) Submit(ctx context.Context, actor Actor, engagementID, decisionID string) ([]model.ApprovalTask, error) {
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	decID, err := uuid.Parse(decisionID)
	if err != nil {
		return nil, apperr.Validation("decision_id_required")
	}

	engagement, err := s.engagements.FindByID(ctx, actor.OrgID, engID)
	if err != nil {
		return nil, err
	}

	var decision model.AcceptanceDecision
	err = s.db.WithContext(ctx).Where("org_id = ?", actor.OrgID).First(&decision, "id = ?", decID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("acceptance_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if decision.Status == model.AcceptanceApprovedStatus {
		return nil, apperr.Conflict("acceptance_already_approved")
	}
	if decision.Decision != model.AcceptanceVerdictAccept && decision.Decision != model.AcceptanceVerdictDecline {
		return nil, apperr.Validation("decision_required")
	}

	return s.engine.Submit(ctx, approval.Submission{
		Kind:          model.KindAcceptanceDecision,
		OrgID:         actor.OrgID,
		EngagementID:  engID,
		WorkProductID: decision.ID,
		RequiresEQR:   engagement.EQRRequired,
		SubmittedBy:   actor.UserID,
	})
}

func (s *acceptanceService) Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error) {
	taskID, err := uuid.Parse(approvalID)
	if err != nil {
		return nil, apperr.Validation("approval_id_required")
	}
	return s.engine.Decide(ctx, actor.OrgID, taskID, decision, actor.Reviewer(), note)
}

func (s *acceptanceService) Get(ctx context.Context, actor Actor, engagementID string) (*model.AcceptanceDecision, error) {
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	var decision model.AcceptanceDecision
	err = s.db.WithContext(ctx).Where("org_id = ? AND engagement_id = ?", actor.OrgID, engID).First(&decision).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("acceptance_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &decision, nil
}

// --- Transition applier ---

type acceptanceApplier struct {
	db *gorm.DB
}

func (a *acceptanceApplier) Snapshot(ctx context.Context, orgID, workProductID uuid.UUID) (*approval.Snapshot, error) {
	var decision model.AcceptanceDecision
	err := a.db.WithContext(ctx).Where("org_id = ?", orgID).First(&decision, "id = ?", workProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("acceptance_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &approval.Snapshot{
		WorkProductID: decision.ID,
		OrgID:         decision.OrgID,
		EngagementID:  decision.EngagementID,
		Status:        decision.Status,
		RequiresEQR:   decision.RequiresEQRSnapshot,
		Terminal:      decision.Status == model.AcceptanceApprovedStatus,
	}, nil
}

func (a *acceptanceApplier) MarkSubmitted(ctx context.Context, orgID, workProductID uuid.UUID, submittedAt time.Time, requiresEQR bool) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.AcceptanceDecision{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                model.AcceptanceReadyForReview,
			"submitted_at":          submittedAt,
			"requires_eqr_snapshot": requiresEQR,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.AcceptanceReadyForReview, nil
}

// MarkApproved also copies the decision's EQR recommendation onto the
// engagement, which is what makes later submissions pick up the EQR stage.
func (a *acceptanceApplier) MarkApproved(ctx context.Context, orgID, workProductID uuid.UUID, outcome approval.Outcome) (string, error) {
	var decision model.AcceptanceDecision
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if findErr := tx.Where("org_id = ?", orgID).First(&decision, "id = ?", workProductID).Error; findErr != nil {
			return findErr
		}
		if updateErr := tx.Model(&decision).Updates(map[string]interface{}{
			"status":              model.AcceptanceApprovedStatus,
			"approved_by_user_id": outcome.ApprovedBy,
			"approved_at":         outcome.ApprovedAt,
		}).Error; updateErr != nil {
			return updateErr
		}
		return tx.Model(&model.Engagement{}).
			Where("id = ? AND org_id = ?", decision.EngagementID, orgID).
			Update("eqr_required", decision.EQRRecommended).Error
	})
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.AcceptanceApprovedStatus, nil
}

func (a *acceptanceApplier) MarkReset(ctx context.Context, orgID, workProductID uuid.UUID) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.AcceptanceDecision{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":              model.AcceptanceRejectedStatus,
			"approved_by_user_id": nil,
			"approved_at":         nil,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.AcceptanceRejectedStatus, nil
}
