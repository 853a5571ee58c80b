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

type UpsertTcwgPackDTO struct {
	EngagementID             string  `json:"engagement_id" binding:"required"`
	IndependenceStatement    *string `json:"independence_statement"`
	ScopeSummary             *string `json:"scope_summary"`
	SignificantFindings      *string `json:"significant_findings"`
	Deficiencies             *string `json:"deficiencies"`
	UncorrectedMisstatements *string `json:"uncorrected_misstatements"`
}

// TcwgService manages the communication pack for those charged with
// governance. SENT is the only transition past approval and it is one-way.
type TcwgService interface {
	Upsert(ctx context.Context, actor Actor, req UpsertTcwgPackDTO) (*model.TcwgPack, error)
	Submit(ctx context.Context, actor Actor, engagementID string) ([]model.ApprovalTask, error)
	Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error)
	Send(ctx context.Context, actor Actor, engagementID string) (*model.TcwgPack, error)
	Get(ctx context.Context, actor Actor, engagementID string) (*model.TcwgPack, error)
}

type tcwgService struct {
	db          *gorm.DB
	engine      *approval.Engine
	engagements repository.EngagementRepository
	activity    repository.ActivityRepository
}

func NewTcwgService(db *gorm.DB, engine *approval.Engine, engagements repository.EngagementRepository, activity repository.ActivityRepository) TcwgService {
	s := &tcwgService{db: db, engine: engine, engagements: engagements, activity: activity}
	engine.Register(approval.VariantConfig{
		Kind:    model.KindTcwgPack,
		Stages:  approval.ManagerThenPartner,
		Applier: &tcwgApplier{db: db},
		Actions: approval.ActionSet{
			Submitted: model.ActionTcwgSubmitted,
			Approved:  model.ActionTcwgApproved,
			Rejected:  model.ActionTcwgRejected,
		},
	})
	return s
}

func (s *tcwgService) Upsert(ctx context.Context, actor Actor, req UpsertTcwgPackDTO) (*model.TcwgPack, error) {
	engID, err := uuid.Parse(req.EngagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	if _, err := s.engagements.FindByID(ctx, actor.OrgID, engID); err != nil {
		return nil, err
	}

	pack, err := s.find(ctx, actor.OrgID, engID)
	if err != nil && apperr.CodeOf(err) != "tcwg_pack_not_found" {
		return nil, err
	}
	if pack == nil {
		userID := actor.UserID
		pack = &model.TcwgPack{
			OrgID:                    actor.OrgID,
			EngagementID:             engID,
			Status:                   model.TcwgStatusDraft,
			Deficiencies:             "[]",
			UncorrectedMisstatements: "[]",
			CreatedByUserID:          &userID,
		}
	}
	if pack.Status == model.TcwgStatusApproved || pack.Status == model.TcwgStatusSent {
		return nil, apperr.Conflict("tcwg_pack_locked")
	}

	if req.IndependenceStatement != nil {
		pack.IndependenceStatement = *req.IndependenceStatement
	}
	if req.ScopeSummary != nil {
		pack.ScopeSummary = *req.ScopeSummary
	}
	if req.SignificantFindings != nil {
		pack.SignificantFindings = *req.SignificantFindings
	}
	if req.Deficiencies != nil {
		pack.Deficiencies = *req.Deficiencies
	}
	if req.UncorrectedMisstatements != nil {
		pack.UncorrectedMisstatements = *req.UncorrectedMisstatements
	}

	if err := s.db.WithContext(ctx).Save(pack).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return pack, nil
}

func (s *tcwgService) Submit(ctx context.Context, actor Actor, engagementID string) ([]model.ApprovalTask, error) {
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	engagement, err := s.engagements.FindByID(ctx, actor.OrgID, engID)
	if err != nil {
		return nil, err
	}
	pack, err := s.find(ctx, actor.OrgID, engID)
	if err != nil {
		return nil, err
	}
	if pack.IndependenceStatement == "" || pack.ScopeSummary == "" {
		return nil, apperr.Validation("tcwg_pack_incomplete")
	}

	return s.engine.Submit(ctx, approval.Submission{
		Kind:          model.KindTcwgPack,
		OrgID:         actor.OrgID,
		EngagementID:  engID,
		WorkProductID: pack.ID,
		RequiresEQR:   engagement.EQRRequired,
		SubmittedBy:   actor.UserID,
	})
}

func (s *tcwgService) Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error) {
	taskID, err := uuid.Parse(approvalID)
	if err != nil {
		return nil, apperr.Validation("approval_id_required")
	}
	return s.engine.Decide(ctx, actor.OrgID, taskID, decision, actor.Reviewer(), note)
}

// Send marks an approved pack as delivered to governance. Partner only.
func (s *tcwgService) Send(ctx context.Context, actor Actor, engagementID string) (*model.TcwgPack, error) {
	if !model.RoleAtLeast(actor.Role, model.RolePartner) {
		return nil, apperr.Forbidden("insufficient_role")
	}
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	pack, err := s.find(ctx, actor.OrgID, engID)
	if err != nil {
		return nil, err
	}
	if pack.Status == model.TcwgStatusSent {
		return pack, nil
	}
	if pack.Status != model.TcwgStatusApproved {
		return nil, apperr.Conflict("tcwg_pack_not_approved")
	}

	now := time.Now().UTC()
	pack.Status = model.TcwgStatusSent
	pack.SentAt = &now
	if err := s.db.WithContext(ctx).Save(pack).Error; err != nil {
		return nil, apperr.Storage(err)
	}

	details, _ := json.Marshal(map[string]interface{}{"engagement_id": engID.String()})
	userID := actor.UserID
	s.activity.Record(ctx, &model.ActivityEntry{
		OrgID:      actor.OrgID,
		UserID:     &userID,
		Action:     model.ActionTcwgSent,
		EntityType: "TCWG_PACK",
		EntityID:   pack.ID.String(),
		Metadata:   string(details),
	})
	return pack, nil
}

func (s *tcwgService) Get(ctx context.Context, actor Actor, engagementID string) (*model.TcwgPack, error) {
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	return s.find(ctx, actor.OrgID, engID)
}

func (s *tcwgService) find(ctx context.Context, orgID, engagementID uuid.UUID) (*model.TcwgPack, error) {
	var pack model.TcwgPack
	err := s.db.WithContext(ctx).
		Where("org_id = ? AND engagement_id = ?", orgID, engagementID).
		First(&pack).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("tcwg_pack_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &pack, nil
}

type tcwgApplier struct {
	db *gorm.DB
}

func (a *tcwgApplier) Snapshot(ctx context.Context, orgID, workProductID uuid.UUID) (*approval.Snapshot, error) {
	var pack model.TcwgPack
	err := a.db.WithContext(ctx).Where("org_id = ?", orgID).First(&pack, "id = ?", workProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("tcwg_pack_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &approval.Snapshot{
		WorkProductID: pack.ID,
		OrgID:         pack.OrgID,
		EngagementID:  pack.EngagementID,
		Status:        pack.Status,
		RequiresEQR:   pack.RequiresEQRSnapshot,
		Terminal:      pack.Status == model.TcwgStatusApproved || pack.Status == model.TcwgStatusSent,
	}, nil
}

func (a *tcwgApplier) MarkSubmitted(ctx context.Context, orgID, workProductID uuid.UUID, submittedAt time.Time, requiresEQR bool) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.TcwgPack{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                model.TcwgStatusReadyForReview,
			"submitted_at":          submittedAt,
			"requires_eqr_snapshot": requiresEQR,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.TcwgStatusReadyForReview, nil
}

func (a *tcwgApplier) MarkApproved(ctx context.Context, orgID, workProductID uuid.UUID, outcome approval.Outcome) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.TcwgPack{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                  model.TcwgStatusApproved,
			"approved_by_user_id":     outcome.ApprovedBy,
			"approved_at":             outcome.ApprovedAt,
			"eqr_approved_by_user_id": outcome.EQRApprovedBy,
			"eqr_approved_at":         outcome.EQRApprovedAt,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.TcwgStatusApproved, nil
}

func (a *tcwgApplier) MarkReset(ctx context.Context, orgID, workProductID uuid.UUID) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.TcwgPack{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                  model.TcwgStatusRejected,
			"approved_by_user_id":     nil,
			"approved_at":             nil,
			"eqr_approved_by_user_id": nil,
			"eqr_approved_at":         nil,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.TcwgStatusRejected, nil
}
