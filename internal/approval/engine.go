package approval

import (
	"context"
	"encoding/json"
	"time"

	"auditdesk/internal/model"
	"auditdesk/pkg/apperr"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
)

// Engine orchestrates the multi-stage approval workflow shared by every
// approvable work product: stage creation on submission, decision recording,
// and terminal-state computation. It holds no state between calls: all
// coordination happens through the durable queue, and recomputation derives
// solely from current task rows, which keeps concurrent decisions safe under
// last-writer-wins.
type Engine struct {
	queue    TaskQueue
	activity ActivitySink
	hub      Broadcaster // optional websocket hub
	variants map[string]VariantConfig
}

// NewEngine builds an engine over the given queue and activity sink.
// hub may be nil.
func NewEngine(queue TaskQueue, activity ActivitySink, hub Broadcaster) *Engine {
	return &Engine{
		queue:    queue,
		activity: activity,
		hub:      hub,
		variants: make(map[string]VariantConfig),
	}
}

// Register adds a work-product variant. Called once per kind at startup.
func (e *Engine) Register(cfg VariantConfig) {
	e.variants[cfg.Kind] = cfg
}

// RequiredStages exposes the pure stage computation for a registered kind.
func (e *Engine) RequiredStages(kind string, requiresEQR bool) ([]string, error) {
	cfg, ok := e.variants[kind]
	if !ok {
		return nil, apperr.NotFound("approval_kind_unknown")
	}
	return cfg.Stages(requiresEQR), nil
}

// Submission is a request to open (or re-open) a review round.
type Submission struct {
	Kind          string
	OrgID         uuid.UUID
	EngagementID  uuid.UUID
	WorkProductID uuid.UUID
	// RequiresEQR is read from the engagement by the caller at submission time
	// and becomes the snapshot for the whole round.
	RequiresEQR bool
	SubmittedBy uuid.UUID
}

// Submit computes the required stage set and opens a PENDING task for every
// stage that lacks an active one. Calling it twice without an intervening
// decision is a no-op on the task set. The work product moves to its
// pending-review status and records the submission metadata.
func (e *Engine) Submit(ctx context.Context, sub Submission) ([]model.ApprovalTask, error) {
	cfg, ok := e.variants[sub.Kind]
	if !ok {
		return nil, apperr.NotFound("approval_kind_unknown")
	}

	snap, err := cfg.Applier.Snapshot(ctx, sub.OrgID, sub.WorkProductID)
	if err != nil {
		return nil, err
	}
	if snap.Terminal {
		return nil, apperr.Conflict("work_product_locked")
	}

	now := time.Now().UTC()
	submittedBy := sub.SubmittedBy
	for _, stage := range cfg.Stages(sub.RequiresEQR) {
		task := &model.ApprovalTask{
			OrgID:           sub.OrgID,
			EngagementID:    sub.EngagementID,
			Kind:            sub.Kind,
			WorkProductID:   sub.WorkProductID,
			Stage:           stage,
			Status:          model.ApprovalPending,
			CreatedByUserID: &submittedBy,
		}
		if _, _, err := e.queue.InsertIfAbsent(ctx, task); err != nil {
			return nil, err
		}
	}

	status, err := cfg.Applier.MarkSubmitted(ctx, sub.OrgID, sub.WorkProductID, now, sub.RequiresEQR)
	if err != nil {
		return nil, err
	}

	e.record(ctx, sub.OrgID, sub.SubmittedBy, cfg.Actions.Submitted, cfg.Kind, sub.WorkProductID, map[string]interface{}{
		"engagement_id": sub.EngagementID.String(),
		"requires_eqr":  sub.RequiresEQR,
	})
	e.broadcast(cfg.Kind, sub.WorkProductID, status, "")

	return e.queue.ListActive(ctx, sub.OrgID, sub.Kind, sub.WorkProductID)
}

// DecisionResult reports the decided task, the work product's resulting
// status, and the active task set after recomputation.
type DecisionResult struct {
	Task      *model.ApprovalTask  `json:"task"`
	Status    string               `json:"status"`
	Approvals []model.ApprovalTask `json:"approvals"`
}

// Decide resolves one PENDING task and recomputes the work product's aggregate
// status from the full active task set:
//
//   - the decision is REJECTED        -> reset to the editable status
//   - every required stage APPROVED   -> terminal approve/lock, partner and
//     EQR timestamps recorded separately
//   - otherwise                       -> unchanged, still pending review
//
// A second decision on the same task fails with a conflict; the guarded
// UPDATE in the queue enforces this even when two reviewers race.
func (e *Engine) Decide(ctx context.Context, orgID, taskID uuid.UUID, decision string, reviewer Reviewer, note string) (*DecisionResult, error) {
	if decision != model.ApprovalApproved && decision != model.ApprovalRejected {
		return nil, apperr.Validation("invalid_decision")
	}

	task, err := e.queue.FindByID(ctx, orgID, taskID)
	if err != nil {
		return nil, err
	}
	cfg, ok := e.variants[task.Kind]
	if !ok {
		return nil, apperr.NotFound("approval_kind_unknown")
	}
	if task.Status != model.ApprovalPending {
		return nil, apperr.Conflict("approval_already_resolved")
	}
	if !CanDecide(reviewer, task.Stage) {
		return nil, apperr.Forbidden("insufficient_role")
	}

	snap, err := cfg.Applier.Snapshot(ctx, orgID, task.WorkProductID)
	if err != nil {
		return nil, err
	}

	now := time.Now().UTC()
	reviewerID := reviewer.UserID
	task.Status = decision
	task.ResolvedAt = &now
	task.ResolvedByUserID = &reviewerID
	task.ResolutionNote = note
	if err := e.queue.UpdateDecision(ctx, task); err != nil {
		return nil, err
	}

	e.record(ctx, orgID, reviewer.UserID, task.Kind+"_APPROVAL_"+decision, cfg.Kind, task.WorkProductID, map[string]interface{}{
		"approval_id": task.ID.String(),
		"stage":       task.Stage,
	})

	status, err := e.recompute(ctx, cfg, snap, task, reviewer, now)
	if err != nil {
		return nil, err
	}

	approvals, err := e.queue.ListActive(ctx, orgID, cfg.Kind, task.WorkProductID)
	if err != nil {
		return nil, err
	}

	return &DecisionResult{Task: task, Status: status, Approvals: approvals}, nil
}

// recompute derives the aggregate work-product status after one decision.
// It reads only current task rows, so a stale read is repaired by whichever
// decision recomputes last.
func (e *Engine) recompute(ctx context.Context, cfg VariantConfig, snap *Snapshot, decided *model.ApprovalTask, reviewer Reviewer, now time.Time) (string, error) {
	if decided.Status == model.ApprovalRejected {
		status, err := cfg.Applier.MarkReset(ctx, snap.OrgID, snap.WorkProductID)
		if err != nil {
			return "", err
		}
		e.record(ctx, snap.OrgID, reviewer.UserID, cfg.Actions.Rejected, cfg.Kind, snap.WorkProductID, map[string]interface{}{
			"approval_id": decided.ID.String(),
			"stage":       decided.Stage,
		})
		e.broadcast(cfg.Kind, snap.WorkProductID, status, decided.Stage)
		return status, nil
	}

	tasks, err := e.queue.ListActive(ctx, snap.OrgID, cfg.Kind, snap.WorkProductID)
	if err != nil {
		return "", err
	}

	approvedByStage := make(map[string]*model.ApprovalTask, len(tasks))
	for i := range tasks {
		if tasks[i].Status == model.ApprovalApproved {
			approvedByStage[tasks[i].Stage] = &tasks[i]
		}
	}

	for _, stage := range cfg.Stages(snap.RequiresEQR) {
		if approvedByStage[stage] == nil {
			// Still pending review, or a rejected stage awaits resubmission.
			return snap.Status, nil
		}
	}

	outcome := Outcome{ApprovedBy: reviewer.UserID, ApprovedAt: now}
	if partner := approvedByStage[model.StagePartner]; partner != nil {
		if partner.ResolvedAt != nil {
			outcome.ApprovedAt = *partner.ResolvedAt
		}
		if partner.ResolvedByUserID != nil {
			outcome.ApprovedBy = *partner.ResolvedByUserID
		}
	}
	if eqr := approvedByStage[model.StageEQR]; eqr != nil {
		outcome.EQRApprovedAt = eqr.ResolvedAt
		outcome.EQRApprovedBy = eqr.ResolvedByUserID
	}

	status, err := cfg.Applier.MarkApproved(ctx, snap.OrgID, snap.WorkProductID, outcome)
	if err != nil {
		return "", err
	}
	e.record(ctx, snap.OrgID, reviewer.UserID, cfg.Actions.Approved, cfg.Kind, snap.WorkProductID, map[string]interface{}{
		"approved_at":  outcome.ApprovedAt.Format(time.RFC3339),
		"eqr_included": outcome.EQRApprovedAt != nil,
	})
	e.broadcast(cfg.Kind, snap.WorkProductID, status, decided.Stage)
	return status, nil
}

func (e *Engine) record(ctx context.Context, orgID, userID uuid.UUID, action, entityType string, entityID uuid.UUID, metadata map[string]interface{}) {
	details, _ := json.Marshal(metadata)
	uid := userID
	e.activity.Record(ctx, &model.ActivityEntry{
		OrgID:      orgID,
		UserID:     &uid,
		Action:     action,
		EntityType: entityType,
		EntityID:   entityID.String(),
		Metadata:   string(details),
	})
}

// broadcast pushes a status-change event to the hub without ever blocking the
// request path.
func (e *Engine) broadcast(kind string, workProductID uuid.UUID, status, stage string) {
	if e.hub == nil {
		return
	}
	payload, err := json.Marshal(map[string]string{
		"type":            "approval_event",
		"kind":            kind,
		"work_product_id": workProductID.String(),
		"status":          status,
		"stage":           stage,
	})
	if err != nil {
		return
	}
	select {
	case e.hub.GetBroadcast() <- payload:
	default:
		logrus.WithFields(logrus.Fields{"kind": kind, "work_product_id": workProductID}).
			Debug("approval event dropped: hub busy")
	}
}
