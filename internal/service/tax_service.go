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

type UpsertTaxComputationDTO struct {
	EngagementID     string           `json:"engagement_id" binding:"required"`
	Period           string           `json:"period" binding:"required"`
	ChargeableIncome *decimal.Decimal `json:"chargeable_income"`
	TaxCharge        *decimal.Decimal `json:"tax_charge"`
	RefundAmount     *decimal.Decimal `json:"refund_amount"`
	Notes            *string          `json:"notes"`
}

// TaxService manages corporate income tax computations. One computation per
// engagement and period; partner approval releases it.
type TaxService interface {
	Upsert(ctx context.Context, actor Actor, req UpsertTaxComputationDTO) (*model.TaxComputation, error)
	Submit(ctx context.Context, actor Actor, engagementID, period string) ([]model.ApprovalTask, error)
	Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error)
	List(ctx context.Context, actor Actor, engagementID string) ([]model.TaxComputation, error)
}

type taxService struct {
	db          *gorm.DB
	engine      *approval.Engine
	engagements repository.EngagementRepository
	activity    repository.ActivityRepository
}

func NewTaxService(db *gorm.DB, engine *approval.Engine, engagements repository.EngagementRepository, activity repository.ActivityRepository) TaxService {
	s := &taxService{db: db, engine: engine, engagements: engagements, activity: activity}
	engine.Register(approval.VariantConfig{
		Kind:    model.KindTaxComputation,
		Stages:  approval.PartnerOnly,
		Applier: &taxApplier{db: db},
		Actions: approval.ActionSet{
			Submitted: model.ActionTaxSubmitted,
			Approved:  model.ActionTaxApproved,
			Rejected:  model.ActionTaxRejected,
		},
	})
	return s
}

func (s *taxService) Upsert(ctx context.Context, actor Actor, req UpsertTaxComputationDTO) (*model.TaxComputation, error) {
	engID, err := uuid.Parse(req.EngagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	if _, err := s.engagements.FindByID(ctx, actor.OrgID, engID); err != nil {
		return nil, err
	}

	comp, err := s.find(ctx, actor.OrgID, engID, req.Period)
	if err != nil && apperr.CodeOf(err) != "tax_computation_not_found" {
		return nil, err
	}
	if comp == nil {
		now := time.Now().UTC()
		userID := actor.UserID
		comp = &model.TaxComputation{
			OrgID:            actor.OrgID,
			EngagementID:     engID,
			Period:           req.Period,
			Status:           model.TaxStatusDraft,
			PreparedAt:       &now,
			PreparedByUserID: &userID,
		}
	}
	if comp.Status == model.TaxStatusApproved {
		return nil, apperr.Conflict("tax_computation_locked")
	}

	if req.ChargeableIncome != nil {
		comp.ChargeableIncome = *req.ChargeableIncome
	}
	if req.TaxCharge != nil {
		if req.TaxCharge.IsNegative() {
			return nil, apperr.Validation("tax_charge_negative")
		}
		comp.TaxCharge = *req.TaxCharge
	}
	if req.RefundAmount != nil {
		if req.RefundAmount.IsNegative() {
			return nil, apperr.Validation("refund_amount_negative")
		}
		comp.RefundAmount = *req.RefundAmount
	}
	if req.Notes != nil {
		comp.Notes = *req.Notes
	}
	if err := s.db.WithContext(ctx).Save(comp).Error; err != nil {
		return nil, apperr.Storage(err)
	}

	details, _ := json.Marshal(map[string]interface{}{"period": comp.Period})
	userID := actor.UserID
	s.activity.Record(ctx, &model.ActivityEntry{
		OrgID:      actor.OrgID,
		UserID:     &userID,
		Action:     model.ActionTaxUpdated,
		EntityType: "MT_CIT",
		EntityID:   comp.ID.String(),
		Metadata:   string(details),
	})
	return comp, nil
}

func (s *taxService) Submit(ctx context.Context, actor Actor, engagementID, period string) ([]model.ApprovalTask, error) {
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	if period == "" {
		return nil, apperr.Validation("period_required")
	}
	engagement, err := s.engagements.FindByID(ctx, actor.OrgID, engID)
	if err != nil {
		return nil, err
	}
	comp, err := s.find(ctx, actor.OrgID, engID, period)
	if err != nil {
		return nil, err
	}

	return s.engine.Submit(ctx, approval.Submission{
		Kind:          model.KindTaxComputation,
		OrgID:         actor.OrgID,
		EngagementID:  engID,
		WorkProductID: comp.ID,
		RequiresEQR:   engagement.EQRRequired,
		SubmittedBy:   actor.UserID,
	})
}

func (s *taxService) Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error) {
	taskID, err := uuid.Parse(approvalID)
	if err != nil {
		return nil, apperr.Validation("approval_id_required")
	}
	return s.engine.Decide(ctx, actor.OrgID, taskID, decision, actor.Reviewer(), note)
}

func (s *taxService) List(ctx context.Context, actor Actor, engagementID string) ([]model.TaxComputation, error) {
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	var computations []model.TaxComputation
	err = s.db.WithContext(ctx).
		Where("org_id = ? AND engagement_id = ?", actor.OrgID, engID).
		Order("period ASC").Find(&computations).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return computations, nil
}

func (s *taxService) find(ctx context.Context, orgID, engagementID uuid.UUID, period string) (*model.TaxComputation, error) {
	var comp model.TaxComputation
	err := s.db.WithContext(ctx).
		Where("org_id = ? AND engagement_id = ? AND period = ?", orgID, engagementID, period).
		First(&comp).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("tax_computation_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &comp, nil
}

type taxApplier struct {
	db *gorm.DB
}

func (a *taxApplier) Snapshot(ctx context.Context, orgID, workProductID uuid.UUID) (*approval.Snapshot, error) {
	var comp model.TaxComputation
	err := a.db.WithContext(ctx).Where("org_id = ?", orgID).First(&comp, "id = ?", workProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("tax_computation_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &approval.Snapshot{
		WorkProductID: comp.ID,
		OrgID:         comp.OrgID,
		EngagementID:  comp.EngagementID,
		Status:        comp.Status,
		RequiresEQR:   comp.RequiresEQRSnapshot,
		Terminal:      comp.Status == model.TaxStatusApproved,
	}, nil
}

func (a *taxApplier) MarkSubmitted(ctx context.Context, orgID, workProductID uuid.UUID, submittedAt time.Time, requiresEQR bool) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.TaxComputation{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                model.TaxStatusReadyForApproval,
			"submitted_at":          submittedAt,
			"requires_eqr_snapshot": requiresEQR,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.TaxStatusReadyForApproval, nil
}

func (a *taxApplier) MarkApproved(ctx context.Context, orgID, workProductID uuid.UUID, outcome approval.Outcome) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.TaxComputation{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                  model.TaxStatusApproved,
			"approved_by_user_id":     outcome.ApprovedBy,
			"approved_at":             outcome.ApprovedAt,
			"eqr_approved_by_user_id": outcome.EQRApprovedBy,
			"eqr_approved_at":         outcome.EQRApprovedAt,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.TaxStatusApproved, nil
}

func (a *taxApplier) MarkReset(ctx context.Context, orgID, workProductID uuid.UUID) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.TaxComputation{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                  model.TaxStatusDraft,
			"submitted_at":            nil,
			"approved_by_user_id":     nil,
			"approved_at":             nil,
			"eqr_approved_by_user_id": nil,
			"eqr_approved_at":         nil,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.TaxStatusDraft, nil
}
