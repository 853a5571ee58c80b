package model

import (
	"time"

	"github.com/google/uuid"
)

// Activity actions written by the workflow engine and module services
const (
	ActionEngagementCreated = "ENGAGEMENT_CREATED"

	ActionAcceptanceSubmitted = "ACC_DECISION_SUBMITTED"
	ActionAcceptanceApproved  = "ACC_DECISION_APPROVED"
	ActionAcceptanceRejected  = "ACC_DECISION_REJECTED"

	ActionKamCandidateAdded    = "KAM_CANDIDATE_ADDED"
	ActionKamCandidateSelected = "KAM_CANDIDATE_SELECTED"
	ActionKamCandidateExcluded = "KAM_CANDIDATE_EXCLUDED"
	ActionKamDraftCreated      = "KAM_DRAFT_CREATED"
	ActionKamDraftUpdated      = "KAM_DRAFT_UPDATED"
	ActionKamDraftSubmitted    = "KAM_DRAFT_SUBMITTED"
	ActionKamDraftApproved     = "KAM_DRAFT_APPROVED"
	ActionKamDraftRejected     = "KAM_DRAFT_REJECTED"

	ActionTcwgSubmitted = "TCWG_PACK_SUBMITTED"
	ActionTcwgApproved  = "TCWG_PACK_APPROVED"
	ActionTcwgRejected  = "TCWG_PACK_REJECTED"
	ActionTcwgSent      = "TCWG_PACK_SENT"

	ActionPlanSubmitted  = "PLAN_SUBMITTED"
	ActionPlanLocked     = "PLAN_LOCKED"
	ActionPlanRejected   = "PLAN_APPROVAL_REJECTED"
	ActionMaterialitySet = "MATERIALITY_SET"

	ActionFraudPlanUpdated   = "FRAUD_PLAN_UPDATED"
	ActionFraudPlanSubmitted = "FRAUD_PLAN_SUBMITTED"
	ActionFraudPlanApproved  = "FRAUD_PLAN_APPROVED"
	ActionFraudPlanRejected  = "FRAUD_PLAN_REJECTED"

	ActionTaxUpdated   = "TAX_CIT_UPDATED"
	ActionTaxSubmitted = "TAX_CIT_SUBMITTED"
	ActionTaxApproved  = "TAX_CIT_APPROVED"
	ActionTaxRejected  = "TAX_CIT_REJECTED"
)

// ActivityEntry tracks Who, What, and When for every state transition.
// Rows are append-only; the engine never updates or deletes them, and a failed
// write never blocks the transition it describes.
type ActivityEntry struct {
	ID         uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID      uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	UserID     *uuid.UUID `gorm:"type:uuid;index" json:"user_id"` // Nullable gracefully if automated
	User       *User      `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Action     string     `gorm:"type:varchar(50);not null;index" json:"action"`
	EntityType string     `gorm:"type:varchar(40);not null;index" json:"entity_type"`
	EntityID   string     `gorm:"type:varchar(50);index" json:"entity_id"`
	Metadata   string     `gorm:"type:jsonb" json:"metadata"` // Serialized JSON context of the action
	CreatedAt  time.Time  `gorm:"index" json:"created_at"`
}
