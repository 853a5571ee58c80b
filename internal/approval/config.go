package approval

import (
	"context"
	"time"

	"auditdesk/internal/model"

	"github.com/google/uuid"
)

// TaskQueue is the storage contract the engine needs from the approval queue.
// Implementations back it with a table carrying a partial unique index on
// (org_id, work_product_id, kind, stage) over active rows, so the store
// rather than the application arbitrates duplicate creation.
type TaskQueue interface {
	// InsertIfAbsent creates the task unless an active task already occupies
	// its stage slot. A store-level uniqueness violation maps to the
	// idempotent "already exists" path (created=false), never an error.
	InsertIfAbsent(ctx context.Context, task *model.ApprovalTask) (existing *model.ApprovalTask, created bool, err error)
	FindByID(ctx context.Context, orgID, taskID uuid.UUID) (*model.ApprovalTask, error)
	// ListActive returns the current round's tasks: PENDING and APPROVED rows.
	// Rejected and cancelled rows are history and excluded.
	ListActive(ctx context.Context, orgID uuid.UUID, kind string, workProductID uuid.UUID) ([]model.ApprovalTask, error)
	// UpdateDecision resolves a task. It must refuse rows that are no longer
	// PENDING so a lost race surfaces as a conflict, not a silent re-apply.
	UpdateDecision(ctx context.Context, task *model.ApprovalTask) error
}

// Snapshot is the engine's read view of a work product.
type Snapshot struct {
	WorkProductID uuid.UUID
	OrgID         uuid.UUID
	EngagementID  uuid.UUID
	Status        string
	// RequiresEQR is the flag captured at submission time. Flipping the
	// engagement flag later never changes an in-flight review round.
	RequiresEQR bool
	// Terminal blocks resubmission of an already approved/locked product.
	Terminal bool
}

// Outcome carries the approval timestamps applied on the final transition.
// ApprovedAt/ApprovedBy come from the PARTNER task's resolution; the EQR pair
// is recorded separately when that stage exists.
type Outcome struct {
	ApprovedBy    uuid.UUID
	ApprovedAt    time.Time
	EQRApprovedBy *uuid.UUID
	EQRApprovedAt *time.Time
}

// TransitionApplier is the per-variant adapter that maps engine transitions
// onto the variant's own status values and side fields. All three mutations
// must be idempotent: the engine may retry on transient store failure.
// Each returns the work product's resulting status.
type TransitionApplier interface {
	Snapshot(ctx context.Context, orgID, workProductID uuid.UUID) (*Snapshot, error)
	MarkSubmitted(ctx context.Context, orgID, workProductID uuid.UUID, submittedAt time.Time, requiresEQR bool) (string, error)
	MarkApproved(ctx context.Context, orgID, workProductID uuid.UUID, outcome Outcome) (string, error)
	MarkReset(ctx context.Context, orgID, workProductID uuid.UUID) (string, error)
}

// ActivitySink receives append-only trail entries. Implementations swallow and
// log their own failures; a trail write must never block a state transition.
type ActivitySink interface {
	Record(ctx context.Context, entry *model.ActivityEntry)
}

// Broadcaster pushes state-change events to connected clients (optional).
type Broadcaster interface {
	GetBroadcast() chan []byte
}

// ActionSet names the activity actions for one variant's transitions.
type ActionSet struct {
	Submitted string
	Approved  string
	Rejected  string
}

// StageRule computes the ordered required stage set from the EQR snapshot.
// Rules are pure; the engine may call them repeatedly.
type StageRule func(requiresEQR bool) []string

// VariantConfig binds one work-product kind to its stage rule, transition
// applier, and activity actions. Six variants register at startup; the engine
// itself knows nothing about any of them.
type VariantConfig struct {
	Kind    string
	Stages  StageRule
	Applier TransitionApplier
	Actions ActionSet
}
