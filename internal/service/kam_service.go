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

// --- DTOs ---

type AddKamCandidateDTO struct {
	EngagementID string `json:"engagement_id" binding:"required"`
	Source       string `json:"source" binding:"required,oneof=RISK ESTIMATE GOING_CONCERN OTHER"`
	Title        string `json:"title" binding:"required"`
	Rationale    string `json:"rationale"`
}

type CreateKamDraftDTO struct {
	EngagementID   string `json:"engagement_id" binding:"required"`
	CandidateID    string `json:"candidate_id" binding:"required"`
	Heading        string `json:"heading"`
	WhyKam         string `json:"why_kam"`
	HowAddressed   string `json:"how_addressed"`
	ResultsSummary string `json:"results_summary"`
	ProceduresRefs string `json:"procedures_refs"`
	EvidenceRefs   string `json:"evidence_refs"`
}

type UpdateKamDraftDTO struct {
	Heading        *string `json:"heading"`
	WhyKam         *string `json:"why_kam"`
	HowAddressed   *string `json:"how_addressed"`
	ResultsSummary *string `json:"results_summary"`
	ProceduresRefs *string `json:"procedures_refs"`
	EvidenceRefs   *string `json:"evidence_refs"`
}

type KamOverview struct {
	Candidates []model.KamCandidate `json:"candidates"`
	Drafts     []model.KamDraft     `json:"drafts"`
	Approvals  []model.ApprovalTask `json:"approvals"`
}

// ProcedureRef is one entry of a draft's procedures_refs JSON array.
type ProcedureRef struct {
	ProcedureID string   `json:"procedureId"`
	ISARefs     []string `json:"isaRefs"`
}

// EvidenceRef is one entry of a draft's evidence_refs JSON array.
type EvidenceRef struct {
	EvidenceID string `json:"evidenceId"`
	Note       string `json:"note,omitempty"`
}

// --- Interface ---

// KamService manages Key Audit Matter candidates and drafts. Drafts go
// through the full MANAGER -> PARTNER (-> EQR) review pipeline.
type KamService interface {
	AddCandidate(ctx context.Context, actor Actor, req AddKamCandidateDTO) (*model.KamCandidate, error)
	SetCandidateStatus(ctx context.Context, actor Actor, candidateID, status, reason string) (*model.KamCandidate, error)
	CreateDraft(ctx context.Context, actor Actor, req CreateKamDraftDTO) (*model.KamDraft, error)
	UpdateDraft(ctx context.Context, actor Actor, draftID string, req UpdateKamDraftDTO) (*model.KamDraft, error)
	Submit(ctx context.Context, actor Actor, engagementID, draftID string) ([]model.ApprovalTask, error)
	Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error)
	List(ctx context.Context, actor Actor, engagementID string) (*KamOverview, error)
}

type kamService struct {
	db          *gorm.DB
	engine      *approval.Engine
	engagements repository.EngagementRepository
	activity    repository.ActivityRepository
}

func NewKamService(db *gorm.DB, engine *approval.Engine, engagements repository.EngagementRepository, activity repository.ActivityRepository) KamService {
	s := &kamService{db: db, engine: engine, engagements: engagements, activity: activity}
	engine.Register(approval.VariantConfig{
		Kind:    model.KindKamDraft,
		Stages:  approval.ManagerThenPartner,
		Applier: &kamApplier{db: db},
		Actions: approval.ActionSet{
			Submitted: model.ActionKamDraftSubmitted,
			Approved:  model.ActionKamDraftApproved,
			Rejected:  model.ActionKamDraftRejected,
		},
	})
	return s
}

// --- Completeness checks (pure; run before any mutation) ---

// ValidateDraftForSubmit enforces the variant's completeness rules: all four
// narrative sections present, at least one procedure reference with ISA
// citations, and at least one evidence reference. Existence of the referenced
// rows is checked separately against the store.
func ValidateDraftForSubmit(draft *model.KamDraft) ([]ProcedureRef, []EvidenceRef, error) {
	if draft.Heading == "" || draft.WhyKam == "" || draft.HowAddressed == "" || draft.ResultsSummary == "" {
		return nil, nil, apperr.Validation("draft_fields_incomplete")
	}

	var procedures []ProcedureRef
	if err := json.Unmarshal([]byte(draft.ProceduresRefs), &procedures); err != nil || len(procedures) == 0 {
		return nil, nil, apperr.Validation("procedures_required")
	}
	for _, ref := range procedures {
		if ref.ProcedureID == "" {
			return nil, nil, apperr.Validation("procedure_id_required")
		}
		if len(ref.ISARefs) == 0 {
			return nil, nil, apperr.Validation("isa_references_required")
		}
	}

	var evidence []EvidenceRef
	if err := json.Unmarshal([]byte(draft.EvidenceRefs), &evidence); err != nil || len(evidence) == 0 {
		return nil, nil, apperr.Validation("evidence_required")
	}
	for _, ref := range evidence {
		if ref.EvidenceID == "" {
			return nil, nil, apperr.Validation("evidence_id_required")
		}
	}

	return procedures, evidence, nil
}

// --- Implementation ---

func (s *kamService) AddCandidate(ctx context.Context, actor Actor, req AddKamCandidateDTO) (*model.KamCandidate, error) {
	engID, err := uuid.Parse(req.EngagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	if _, err := s.engagements.FindByID(ctx, actor.OrgID, engID); err != nil {
		return nil, err
	}

	userID := actor.UserID
	candidate := model.KamCandidate{
		OrgID:           actor.OrgID,
		EngagementID:    engID,
		Source:          req.Source,
		Title:           req.Title,
		Rationale:       req.Rationale,
		Status:          model.KamCandidateProposed,
		CreatedByUserID: &userID,
	}
	if err := s.db.WithContext(ctx).Create(&candidate).Error; err != nil {
		return nil, apperr.Storage(err)
	}

	s.recordActivity(ctx, actor, model.ActionKamCandidateAdded, "KAM_CANDIDATE", candidate.ID, map[string]interface{}{"source": req.Source})
	return &candidate, nil
}

func (s *kamService) SetCandidateStatus(ctx context.Context, actor Actor, candidateID, status, reason string) (*model.KamCandidate, error) {
	id, err := uuid.Parse(candidateID)
	if err != nil {
		return nil, apperr.Validation("candidate_id_required")
	}
	if status != model.KamCandidateSelected && status != model.KamCandidateExcluded {
		return nil, apperr.Validation("invalid_candidate_status")
	}

	var candidate model.KamCandidate
	err = s.db.WithContext(ctx).Where("org_id = ?", actor.OrgID).First(&candidate, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("candidate_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}

	candidate.Status = status
	if status == model.KamCandidateExcluded && reason != "" {
		candidate.Rationale = reason
	}
	if err := s.db.WithContext(ctx).Save(&candidate).Error; err != nil {
		return nil, apperr.Storage(err)
	}

	action := model.ActionKamCandidateSelected
	if status == model.KamCandidateExcluded {
		action = model.ActionKamCandidateExcluded
	}
	s.recordActivity(ctx, actor, action, "KAM_CANDIDATE", candidate.ID, map[string]interface{}{"reason": reason})
	return &candidate, nil
}

func (s *kamService) CreateDraft(ctx context.Context, actor Actor, req CreateKamDraftDTO) (*model.KamDraft, error) {
	engID, err := uuid.Parse(req.EngagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	candidateID, err := uuid.Parse(req.CandidateID)
	if err != nil {
		return nil, apperr.Validation("candidate_id_required")
	}

	var candidate model.KamCandidate
	err = s.db.WithContext(ctx).Where("org_id = ?", actor.OrgID).First(&candidate, "id = ?", candidateID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("candidate_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if candidate.EngagementID != engID {
		return nil, apperr.Validation("candidate_engagement_mismatch")
	}

	// One draft per candidate; reuse an existing one instead of erroring.
	var existing model.KamDraft
	err = s.db.WithContext(ctx).Where("candidate_id = ?", candidate.ID).First(&existing).Error
	if err == nil {
		return &existing, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.Storage(err)
	}

	heading := req.Heading
	if heading == "" {
		heading = candidate.Title
	}
	whyKam := req.WhyKam
	if whyKam == "" {
		whyKam = candidate.Rationale
	}
	proceduresRefs := req.ProceduresRefs
	if proceduresRefs == "" {
		proceduresRefs = "[]"
	}
	evidenceRefs := req.EvidenceRefs
	if evidenceRefs == "" {
		evidenceRefs = "[]"
	}

	userID := actor.UserID
	draft := model.KamDraft{
		OrgID:           actor.OrgID,
		EngagementID:    engID,
		CandidateID:     candidate.ID,
		Status:          model.KamDraftStatusDraft,
		Heading:         heading,
		WhyKam:          whyKam,
		HowAddressed:    req.HowAddressed,
		ResultsSummary:  req.ResultsSummary,
		ProceduresRefs:  proceduresRefs,
		EvidenceRefs:    evidenceRefs,
		CreatedByUserID: &userID,
	}
	if err := s.db.WithContext(ctx).Create(&draft).Error; err != nil {
		return nil, apperr.Storage(err)
	}

	s.recordActivity(ctx, actor, model.ActionKamDraftCreated, "KAM_DRAFT", draft.ID, map[string]interface{}{"candidate_id": candidate.ID.String()})
	return &draft, nil
}

func (s *kamService) UpdateDraft(ctx context.Context, actor Actor, draftID string, req UpdateKamDraftDTO) (*model.KamDraft, error) {
	id, err := uuid.Parse(draftID)
	if err != nil {
		return nil, apperr.Validation("draft_id_required")
	}

	var draft model.KamDraft
	err = s.db.WithContext(ctx).Where("org_id = ?", actor.OrgID).First(&draft, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("draft_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if draft.Status == model.KamDraftStatusApproved {
		return nil, apperr.Conflict("draft_locked")
	}

	if req.Heading != nil {
		draft.Heading = *req.Heading
	}
	if req.WhyKam != nil {
		draft.WhyKam = *req.WhyKam
	}
	if req.HowAddressed != nil {
		draft.HowAddressed = *req.HowAddressed
	}
	if req.ResultsSummary != nil {
		draft.ResultsSummary = *req.ResultsSummary
	}
	if req.ProceduresRefs != nil {
		draft.ProceduresRefs = *req.ProceduresRefs
	}
	if req.EvidenceRefs != nil {
		draft.EvidenceRefs = *req.EvidenceRefs
	}
	if err := s.db.WithContext(ctx).Save(&draft).Error; err != nil {
		return nil, apperr.Storage(err)
	}

	s.recordActivity(ctx, actor, model.ActionKamDraftUpdated, "KAM_DRAFT", draft.ID, nil)
	return &draft, nil
}

func (s *kamService) Submit(ctx context.Context, actor Actor, engagementID, draftID string) ([]model.ApprovalTask, error) {
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}
	id, err := uuid.Parse(draftID)
	if err != nil {
		return nil, apperr.Validation("draft_id_required")
	}

	engagement, err := s.engagements.FindByID(ctx, actor.OrgID, engID)
	if err != nil {
		return nil, err
	}

	var draft model.KamDraft
	err = s.db.WithContext(ctx).Where("org_id = ?", actor.OrgID).First(&draft, "id = ?", id).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("draft_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	if draft.Status == model.KamDraftStatusApproved {
		return nil, apperr.Conflict("draft_already_approved")
	}

	procedures, evidence, err := ValidateDraftForSubmit(&draft)
	if err != nil {
		return nil, err
	}
	if err := s.ensureProceduresExist(ctx, actor.OrgID, draft.EngagementID, procedures); err != nil {
		return nil, err
	}
	if err := s.ensureEvidenceExists(ctx, actor.OrgID, draft.EngagementID, evidence); err != nil {
		return nil, err
	}

	return s.engine.Submit(ctx, approval.Submission{
		Kind:          model.KindKamDraft,
		OrgID:         actor.OrgID,
		EngagementID:  engID,
		WorkProductID: draft.ID,
		RequiresEQR:   engagement.EQRRequired,
		SubmittedBy:   actor.UserID,
	})
}

func (s *kamService) Decide(ctx context.Context, actor Actor, approvalID, decision, note string) (*approval.DecisionResult, error) {
	taskID, err := uuid.Parse(approvalID)
	if err != nil {
		return nil, apperr.Validation("approval_id_required")
	}
	return s.engine.Decide(ctx, actor.OrgID, taskID, decision, actor.Reviewer(), note)
}

func (s *kamService) List(ctx context.Context, actor Actor, engagementID string) (*KamOverview, error) {
	engID, err := uuid.Parse(engagementID)
	if err != nil {
		return nil, apperr.Validation("engagement_id_required")
	}

	overview := &KamOverview{}
	db := s.db.WithContext(ctx)
	if err := db.Where("org_id = ? AND engagement_id = ?", actor.OrgID, engID).
		Order("created_at ASC").Find(&overview.Candidates).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	if err := db.Where("org_id = ? AND engagement_id = ?", actor.OrgID, engID).
		Order("created_at ASC").Find(&overview.Drafts).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	if err := db.Where("org_id = ? AND engagement_id = ? AND kind = ?", actor.OrgID, engID, model.KindKamDraft).
		Order("created_at ASC").Find(&overview.Approvals).Error; err != nil {
		return nil, apperr.Storage(err)
	}
	return overview, nil
}

func (s *kamService) ensureProceduresExist(ctx context.Context, orgID, engagementID uuid.UUID, refs []ProcedureRef) error {
	ids := make([]uuid.UUID, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if seen[ref.ProcedureID] {
			continue
		}
		seen[ref.ProcedureID] = true
		id, err := uuid.Parse(ref.ProcedureID)
		if err != nil {
			return apperr.Validation("procedure_not_found")
		}
		ids = append(ids, id)
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&model.PlannedProcedure{}).
		Where("org_id = ? AND engagement_id = ? AND id IN ?", orgID, engagementID, ids).
		Count(&count).Error
	if err != nil {
		return apperr.Storage(err)
	}
	if count != int64(len(ids)) {
		return apperr.Validation("procedure_not_found")
	}
	return nil
}

func (s *kamService) ensureEvidenceExists(ctx context.Context, orgID, engagementID uuid.UUID, refs []EvidenceRef) error {
	ids := make([]uuid.UUID, 0, len(refs))
	seen := make(map[string]bool, len(refs))
	for _, ref := range refs {
		if seen[ref.EvidenceID] {
			continue
		}
		seen[ref.EvidenceID] = true
		id, err := uuid.Parse(ref.EvidenceID)
		if err != nil {
			return apperr.Validation("evidence_not_found")
		}
		ids = append(ids, id)
	}

	var count int64
	err := s.db.WithContext(ctx).Model(&model.EvidenceItem{}).
		Where("org_id = ? AND engagement_id = ? AND id IN ?", orgID, engagementID, ids).
		Count(&count).Error
	if err != nil {
		return apperr.Storage(err)
	}
	if count != int64(len(ids)) {
		return apperr.Validation("evidence_not_found")
	}
	return nil
}

func (s *kamService) recordActivity(ctx context.Context, actor Actor, action, entityType string, entityID uuid.UUID, metadata map[string]interface{}) {
	details, _ := json.Marshal(metadata)
	userID := actor.UserID
	s.activity.Record(ctx, &model.ActivityEntry{
		OrgID:      actor.OrgID,
		UserID:     &userID,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID.String(),
		Metadata:   string(details),
	})
}

// --- Transition applier ---

type kamApplier struct {
	db *gorm.DB
}

func (a *kamApplier) Snapshot(ctx context.Context, orgID, workProductID uuid.UUID) (*approval.Snapshot, error) {
	var draft model.KamDraft
	err := a.db.WithContext(ctx).Where("org_id = ?", orgID).First(&draft, "id = ?", workProductID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("draft_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &approval.Snapshot{
		WorkProductID: draft.ID,
		OrgID:         draft.OrgID,
		EngagementID:  draft.EngagementID,
		Status:        draft.Status,
		RequiresEQR:   draft.RequiresEQRSnapshot,
		Terminal:      draft.Status == model.KamDraftStatusApproved,
	}, nil
}

func (a *kamApplier) MarkSubmitted(ctx context.Context, orgID, workProductID uuid.UUID, submittedAt time.Time, requiresEQR bool) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.KamDraft{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                model.KamDraftStatusReadyForReview,
			"submitted_at":          submittedAt,
			"requires_eqr_snapshot": requiresEQR,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.KamDraftStatusReadyForReview, nil
}

func (a *kamApplier) MarkApproved(ctx context.Context, orgID, workProductID uuid.UUID, outcome approval.Outcome) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.KamDraft{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                  model.KamDraftStatusApproved,
			"approved_by_user_id":     outcome.ApprovedBy,
			"approved_at":             outcome.ApprovedAt,
			"eqr_approved_by_user_id": outcome.EQRApprovedBy,
			"eqr_approved_at":         outcome.EQRApprovedAt,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.KamDraftStatusApproved, nil
}

func (a *kamApplier) MarkReset(ctx context.Context, orgID, workProductID uuid.UUID) (string, error) {
	err := a.db.WithContext(ctx).Model(&model.KamDraft{}).
		Where("id = ? AND org_id = ?", workProductID, orgID).
		Updates(map[string]interface{}{
			"status":                  model.KamDraftStatusRejected,
			"approved_by_user_id":     nil,
			"approved_at":             nil,
			"eqr_approved_by_user_id": nil,
			"eqr_approved_at":         nil,
		}).Error
	if err != nil {
		return "", apperr.Storage(err)
	}
	return model.KamDraftStatusRejected, nil
}
