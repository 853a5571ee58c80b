package service

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"auditdesk/internal/approval"
	"auditdesk/internal/model"
	"auditdesk/internal/repository"
	"auditdesk/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type UpsertFraudPlanDTO struct {
	EngagementID       string  `json:"engagement_id" binding:"required"`
	BrainstormingNotes *string `json:"brainstorming_notes"`
	InherentRisks      *string `json:"inherent_risks"`
	PlannedResponses   *string `json:"planned_responses"`
	OverrideOfControls *string `json:"override_of_controls"`
}

type FraudOverview struct {
	Plan      *model.FraudPlan     `json:"plan"`
	Approvals []model.ApprovalTask `json:"approvals"`
}

// FraudService manages the fraud risk assessment plan. Partial content is
// allowed at submission; partner approval locks the plan.
type FraudService interface {
	Upsert(ctx context.Context, actor Actor, req UpsertFraudPlanDTO) (*model.FraudPlan, error)
	Submit(ctx context.Context, actor Actor, engagementID string) ([]model.ApprovalTask, error)
	Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error)
	Get(ctx context.Context, actor Actor, engagementID string) (*FraudOverview, error)
}

type fraudService struct {
	db          *gorm.DB
	engine      *approval.Engine
	engagements repository.EngagementRepository
	activity    repository.ActivityRepository
}

func NewFraudService(db *gorm.DB, engine *approval.Engine, engagements repository.EngagementRepository, activity repository.ActivityRepository) FraudService {
	s := &fraudService{db: db, engine: engine, engagements: engagements, activity: activity}
	engine.Register(approval.VariantConfig{
		Kind:    model.KindFraudPlan,
		Stages:  approval.PartnerOnly,
		Applier: &fraudApplier{db: db},
		Actions: approval.ActionSet{
			Submitted: model.ActionFraudPlanSubmitted,
			Approved:  model.ActionFraudPlanApproved,
			Rejected:  model.ActionFraudPlanRejected,
		},
	})
	return s
}

func (s *fraudService) Upsert(ctx context.Context, actor Actor, req UpsertFraudPlanDTO) (*model.FraudPlan, error) {
	engID, err := uuid.Parse(req.EngagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	if _, err := s.engagements.FindByID(ctx, actor.OrgID, engID); err != nil {
		return nil, err
	}

	plan, err := s.find(ctx, actor.OrgID, engID)
	if err != nil && apperr.CodeOf(err) != "fraud_plan_not_found" {
		return nil, err
	}
	if plan == nil {
		userID := actor.UserID
		plan = &model.FraudPlan{
			OrgID:            actor.OrgID,
			EngagementID:     engID,
			Status:           model.FraudPlanStatusDraft,
			InherentRisks:    "[]",
			PlannedResponses: "[]",
			CreatedByUserID:  &userID,
		}
	}
	if plan.Status == model.FraudPlanStatusLocked {
		return nil, apperr.Conflict("fraud_plan_locked")
	}

	if req.BrainstormingNotes != nil {
		plan.BrainstormingNotes = *req.BrainstormingNotes
	}
	if req.InherentRisks != nil {
		plan.InherentRisks = *req.InherentRisks
	}
	if req.PlannedResponses != nil {
		plan.PlannedResponses = *req.PlannedResponses
	}
	if req.OverrideOfControls != nil {
		plan.OverrideOfControls = *req.OverrideOfControls
	}
	if err := s.db.WithContext(ctx).Save(plan).Error; err != nil {
		return nil, apperr.Storage(err)
	}

	details, _ := json.Marshal(map[string]interface{}{"engagement_id": engID.String()})
	userID := actor.UserID
	s.activity.Record(ctx, &model.ActivityEntry{
		OrgID:      actor.OrgID,
		UserID:     &userID,
		Action:     model.ActionFraudPlanUpdated,
		EntityType: "FRAUD_PLAN",
		EntityID:   plan.ID.String(),
		Metadata:   string(details),
	})
	return plan, nil
}

func (s *fraudService) Submit(ctx context.Context, actor Actor, engagementID string) ([]model.ApprovalTask, error) {
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	engagement, err := s.engagements.FindByID(ctx, actor.OrgID, engID)
	if err != nil {
		return nil, err
	}
	plan, err := s.find(ctx, actor.OrgID, engID)
	if err != nil {
		return nil, err
	}

	return s.engine.Submit(ctx, approval.Submission{
		Kind:          model.KindFraudPlan,
		OrgID:         actor.OrgID,
		EngagementID:  engID,
		WorkProductID: plan.ID,
		RequiresEQR:   engagement.EQRRequired,
		SubmittedBy:   actor.UserID,
	})
}

func (s *fraudService) Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error) {
	taskID, err := uuid.Parse(approvalID)
	if err != nil {
		return nil, apperr.Validation("approval_id_required")
	}
	return s.engine.Decide(ctx, actor.OrgID, taskID, decision, actor.Reviewer(), note)
}

func (s *fraudService) Get(ctx context.Context, actor Actor, engagementID string) (*FraudOverview, error) {
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}

	overview := &FraudOverview{}
	plan, err := s.find(ctx, actor.OrgID, engID)
	if err != nil && apperr.CodeOf(err) != "fraud_plan_not_found" {
		return nil, err
	}
	overview.Plan = plan

	err = s.db.WithContext(ctx).
		Where("org_id = ? AND engagement_id = ? AND kind = ?", actor.OrgID, engID, model.KindFraudPlan).
		Order("created_at ASC").Find(&overview.Approvals).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return overview, nil
}

func (s *fraudService) find(ctx context.Context, orgID, engagementID uuid.UUID) (*model.FraudPlan, error) {
	var plan model.FraudPlan
	err := s.db.WithContext(ctx).
		Where("org_id = ? AND engagement_id = ?", orgID, engagementID).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("fraud_plan_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &plan, nil
}

type fraudApplier struct {
	db *gorm.DB
}

func (a *fraudApplier) Snapshot(ctx context.Context, orgID, workProductID uuid.UUID) (*approval.Snapshot, error) {
	var plan model.FraudPlan
	err := a.db.WithContext(ctx).Where("org_id = ?", orgID).First(&plan, "id = ?", workProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("fraud_plan_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &approval.Snapshot{
		WorkProductID: plan.ID,
		OrgID:         plan.OrgID,
		EngagementID:  plan.EngagementID,
		Status:        plan.Status,
		RequiresEQR:   plan.RequiresEQRSnapshot,
		Terminal:      plan.Status == model.FraudPlanStatusLocked,
	}, nil
}

func (a *fraudApplier) MarkSubmitted(ctx context.Context, orgID, workProductID uuid.UUID, submittedAt time.Time, requiresEQR bool) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.FraudPlan{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                model.FraudPlanStatusReadyForApproval,
			"submitted_at":          submittedAt,
			"requires_eqr_snapshot": requiresEQR,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.FraudPlanStatusReadyForApproval, nil
}

func (a *fraudApplier) MarkApproved(ctx context.Context, orgID, workProductID uuid.UUID, outcome approval.Outcome) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.FraudPlan{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                  model.FraudPlanStatusLocked,
			"locked_at":               outcome.ApprovedAt,
			"locked_by_user_id":       outcome.ApprovedBy,
			"eqr_approved_by_user_id": outcome.EQRApprovedBy,
			"eqr_approved_at":         outcome.EQRApprovedAt,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.FraudPlanStatusLocked, nil
}

func (a *fraudApplier) MarkReset(ctx context.Context, orgID, workProductID uuid.UUID) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.FraudPlan{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                  model.FraudPlanStatusDraft,
			"submitted_at":            nil,
			"locked_at":               nil,
			"locked_by_user_id":       nil,
			"eqr_approved_by_user_id": nil,
			"eqr_approved_at":         nil,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.FraudPlanStatusDraft, nil
}
