package model

import (
	"time"

	"github.com/google/uuid"
)

// ApprovalStage enum constants, review tiers in resolution order
const (
	StageManager = "MANAGER"
	StagePartner = "PARTNER"
	StageEQR     = "EQR"
)

// ApprovalTask status enum constants
const (
	ApprovalPending   = "PENDING"
	ApprovalApproved  = "APPROVED"
	ApprovalRejected  = "REJECTED"
	ApprovalCancelled = "CANCELLED"
)

// Work-product kind constants identifying which variant an ApprovalTask gates
const (
	KindAcceptanceDecision = "ACCEPTANCE_DECISION"
	KindKamDraft           = "KAM_DRAFT"
	KindTcwgPack           = "TCWG_PACK"
	KindAuditPlanFreeze    = "AUDIT_PLAN_FREEZE"
	KindFraudPlan          = "FRAUD_PLAN_APPROVAL"
	KindTaxComputation     = "MT_CIT_APPROVAL"
)

// ApprovalTask is one reviewer stage's pending/resolved decision for a work
// product. Tasks are never deleted; rejected rows stay as history and drop out
// of the active set, letting a resubmission open a fresh task for the stage.
//
// A partial unique index on (org_id, work_product_id, kind, stage) over rows in
// PENDING/APPROVED makes creation idempotent at the store level; see
// database.NewConnection.
type ApprovalTask struct {
	ID               uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID            uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	EngagementID     uuid.UUID  `gorm:"type:uuid;not null;index" json:"engagement_id"`
	Kind             string     `gorm:"type:varchar(40);not null;index" json:"kind"`
	WorkProductID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"work_product_id"`
	Stage            string     `gorm:"type:varchar(10);not null" json:"stage"`
	Status           string     `gorm:"type:varchar(20);not null;default:'PENDING';index" json:"status"`
	CreatedByUserID  *uuid.UUID `gorm:"type:uuid" json:"created_by_user_id"`
	ResolvedByUserID *uuid.UUID `gorm:"type:uuid" json:"resolved_by_user_id"`
	ResolvedBy       *User      `gorm:"foreignKey:ResolvedByUserID" json:"resolved_by,omitempty"`
	ResolvedAt       *time.Time `json:"resolved_at"`
	ResolutionNote   string     `gorm:"type:text" json:"resolution_note"`
	CreatedAt        time.Time  `json:"created_at"`
	UpdatedAt        time.Time  `json:"updated_at"`
}

// Active reports whether the task currently occupies its (work product, stage)
// slot. REJECTED and CANCELLED rows are history.
func (t *ApprovalTask) Active() bool {
	return t.Status == ApprovalPending || t.Status == ApprovalApproved
}
