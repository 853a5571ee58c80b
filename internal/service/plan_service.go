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
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type UpsertAuditPlanDTO struct {
	EngagementID   string  `json:"engagement_id" binding:"required"`
	Strategy       *string `json:"strategy"`
	BasisFramework *string `json:"basis_framework"`
}

type UpsertMaterialityDTO struct {
	EngagementID           string          `json:"engagement_id" binding:"required"`
	Benchmark              string          `json:"benchmark" binding:"required"`
	OverallMateriality     decimal.Decimal `json:"overall_materiality" binding:"required"`
	PerformanceMateriality decimal.Decimal `json:"performance_materiality" binding:"required"`
	ClearlyTrivial         decimal.Decimal `json:"clearly_trivial" binding:"required"`
}

type PlanOverview struct {
	Plan        *model.AuditPlan      `json:"plan"`
	Materiality *model.MaterialitySet `json:"materiality"`
	Approvals   []model.ApprovalTask  `json:"approvals"`
}

// PlanService manages the audit plan and its materiality thresholds. Partner
// approval freezes the plan; there is no manager stage.
type PlanService interface {
	Upsert(ctx context.Context, actor Actor, req UpsertAuditPlanDTO) (*model.AuditPlan, error)
	UpsertMateriality(ctx context.Context, actor Actor, req UpsertMaterialityDTO) (*model.MaterialitySet, error)
	Submit(ctx context.Context, actor Actor, engagementID string) ([]model.ApprovalTask, error)
	Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error)
	Get(ctx context.Context, actor Actor, engagementID string) (*PlanOverview, error)
}

type planService struct {
	db          *gorm.DB
	engine      *approval.Engine
	engagements repository.EngagementRepository
	activity    repository.ActivityRepository
}

func NewPlanService(db *gorm.DB, engine *approval.Engine, engagements repository.EngagementRepository, activity repository.ActivityRepository) PlanService {
	s := &planService{db: db, engine: engine, engagements: engagements, activity: activity}
	engine.Register(approval.VariantConfig{
		Kind:    model.KindAuditPlanFreeze,
		Stages:  approval.PartnerOnly,
		Applier: &planApplier{db: db},
		Actions: approval.ActionSet{
			Submitted: model.ActionPlanSubmitted,
			Approved:  model.ActionPlanLocked,
			Rejected:  model.ActionPlanRejected,
		},
	})
	return s
}

func (s *planService) Upsert(ctx context.Context, actor Actor, req UpsertAuditPlanDTO) (*model.AuditPlan, error) {
	engID, err := uuid.Parse(req.EngagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	if _, err := s.engagements.FindByID(ctx, actor.OrgID, engID); err != nil {
		return nil, err
	}

	plan, err := s.find(ctx, actor.OrgID, engID)
	if err != nil && apperr.CodeOf(err) != "plan_not_found" {
		return nil, err
	}
	if plan == nil {
		userID := actor.UserID
		plan = &model.AuditPlan{
			OrgID:           actor.OrgID,
			EngagementID:    engID,
			Status:          model.PlanStatusDraft,
			CreatedByUserID: &userID,
		}
	}
	if plan.Status == model.PlanStatusLocked {
		return nil, apperr.Conflict("plan_locked")
	}

	if req.Strategy != nil {
		plan.Strategy = *req.Strategy
	}
	if req.BasisFramework != nil {
		plan.BasisFramework = *req.BasisFramework
	}
	if err := s.db.WithContext(ctx).Save(plan).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return plan, nil
}

func (s *planService) UpsertMateriality(ctx context.Context, actor Actor, req UpsertMaterialityDTO) (*model.MaterialitySet, error) {
	engID, err := uuid.Parse(req.EngagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	if _, err := s.engagements.FindByID(ctx, actor.OrgID, engID); err != nil {
		return nil, err
	}
	if req.OverallMateriality.IsNegative() || req.PerformanceMateriality.IsNegative() || req.ClearlyTrivial.IsNegative() {
		return nil, apperr.Validation("materiality_must_be_positive")
	}
	if req.PerformanceMateriality.GreaterThan(req.OverallMateriality) {
		return nil, apperr.Validation("performance_exceeds_overall")
	}

	// Materiality cannot change once the plan is frozen.
	plan, err := s.find(ctx, actor.OrgID, engID)
	if err == nil && plan.Status == model.PlanStatusLocked {
		return nil, apperr.Conflict("plan_locked")
	}
	if err != nil && apperr.CodeOf(err) != "plan_not_found" {
		return nil, err
	}

	var set model.MaterialitySet
	err = s.db.WithContext(ctx).
		Where("org_id = ? AND engagement_id = ?", actor.OrgID, engID).
		First(&set).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		userID := actor.UserID
		set = model.MaterialitySet{
			OrgID:            actor.OrgID,
			EngagementID:     engID,
			PreparedByUserID: &userID,
		}
	} else if err != nil {
		return nil, apperr.Storage(err)
	}

	set.Benchmark = req.Benchmark
	set.OverallMateriality = req.OverallMateriality
	set.PerformanceMateriality = req.PerformanceMateriality
	set.ClearlyTrivial = req.ClearlyTrivial
	if err := s.db.WithContext(ctx).Save(&set).Error; err != nil {
		return nil, apperr.Storage(err)
	}

	details, _ := json.Marshal(map[string]interface{}{
		"benchmark": set.Benchmark,
		"overall":   set.OverallMateriality.String(),
	})
	userID := actor.UserID
	s.activity.Record(ctx, &model.ActivityEntry{
		OrgID:      actor.OrgID,
		UserID:     &userID,
		Action:     model.ActionMaterialitySet,
		EntityType: "MATERIALITY_SET",
		EntityID:   set.ID.String(),
		Metadata:   string(details),
	})
	return &set, nil
}

func (s *planService) Submit(ctx context.Context, actor Actor, engagementID string) ([]model.ApprovalTask, error) {
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

	// A plan without materiality thresholds cannot be frozen.
	var count int64
	err = s.db.WithContext(ctx).Model(&model.MaterialitySet{}).
		Where("org_id = ? AND engagement_id = ?", actor.OrgID, engID).
		Count(&count).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if count == 0 {
		return nil, apperr.Conflict("materiality_required")
	}

	return s.engine.Submit(ctx, approval.Submission{
		Kind:          model.KindAuditPlanFreeze,
		OrgID:         actor.OrgID,
		EngagementID:  engID,
		WorkProductID: plan.ID,
		RequiresEQR:   engagement.EQRRequired,
		SubmittedBy:   actor.UserID,
	})
}

func (s *planService) Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error) {
	taskID, err := uuid.Parse(approvalID)
	if err != nil {
		return nil, apperr.Validation("approval_id_required")
	}
	return s.engine.Decide(ctx, actor.OrgID, taskID, decision, actor.Reviewer(), note)
}

func (s *planService) Get(ctx context.Context, actor Actor, engagementID string) (*PlanOverview, error) {
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}

	overview := &PlanOverview{}
	plan, err := s.find(ctx, actor.OrgID, engID)
	if err != nil && apperr.CodeOf(err) != "plan_not_found" {
		return nil, err
	}
	overview.Plan = plan

	var set model.MaterialitySet
	err = s.db.WithContext(ctx).
		Where("org_id = ? AND engagement_id = ?", actor.OrgID, engID).
		First(&set).Error
	if err == nil {
		overview.Materiality = &set
	} else if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Storage(err)
	}

	err = s.db.WithContext(ctx).
		Where("org_id = ? AND engagement_id = ? AND kind = ?", actor.OrgID, engID, model.KindAuditPlanFreeze).
		Order("created_at ASC").Find(&overview.Approvals).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return overview, nil
}

func (s *planService) find(ctx context.Context, orgID, engagementID uuid.UUID) (*model.AuditPlan, error) {
	var plan model.AuditPlan
	err := s.db.WithContext(ctx).
		Where("org_id = ? AND engagement_id = ?", orgID, engagementID).
		First(&plan).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("plan_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &plan, nil
}

type planApplier struct {
	db *gorm.DB
}

func (a *planApplier) Snapshot(ctx context.Context, orgID, workProductID uuid.UUID) (*approval.Snapshot, error) {
	var plan model.AuditPlan
	err := a.db.WithContext(ctx).Where("org_id = ?", orgID).First(&plan, "id = ?", workProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("plan_not_found")
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
		Terminal:      plan.Status == model.PlanStatusLocked,
	}, nil
}

func (a *planApplier) MarkSubmitted(ctx context.Context, orgID, workProductID uuid.UUID, submittedAt time.Time, requiresEQR bool) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.AuditPlan{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                model.PlanStatusReadyForApproval,
			"submitted_at":          submittedAt,
			"requires_eqr_snapshot": requiresEQR,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.PlanStatusReadyForApproval, nil
}

func (a *planApplier) MarkApproved(ctx context.Context, orgID, workProductID uuid.UUID, outcome approval.Outcome) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.AuditPlan{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                  model.PlanStatusLocked,
			"locked_at":               outcome.ApprovedAt,
			"locked_by_user_id":       outcome.ApprovedBy,
			"eqr_approved_by_user_id": outcome.EQRApprovedBy,
			"eqr_approved_at":         outcome.EQRApprovedAt,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.PlanStatusLocked, nil
}

func (a *planApplier) MarkReset(ctx context.Context, orgID, workProductID uuid.UUID) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.AuditPlan{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                  model.PlanStatusDraft,
			"submitted_at":            nil,
			"locked_at":               nil,
			"locked_by_user_id":       nil,
			"eqr_approved_by_user_id": nil,
			"eqr_approved_at":         nil,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.PlanStatusDraft, nil
}
