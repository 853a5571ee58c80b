package model

import (
	"time"

	"github.com/google/uuid"
)

// FraudPlan status enum constants
const (
	FraudPlanStatusDraft            = "DRAFT"
	FraudPlanStatusReadyForApproval = "READY_FOR_APPROVAL"
	FraudPlanStatusLocked           = "LOCKED"
)

// FraudPlan documents the fraud risk assessment and planned responses.
// Unlike KAM drafts it may be submitted with partial content.
type FraudPlan struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID               uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	EngagementID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"engagement_id"`
	Engagement          *Engagement `gorm:"foreignKey:EngagementID" json:"-"`
	Status              string     `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	BrainstormingNotes  string     `gorm:"type:text" json:"brainstorming_notes"`
	InherentRisks       string     `gorm:"type:jsonb;not null;default:'[]'" json:"inherent_risks"`
	PlannedResponses    string     `gorm:"type:jsonb;not null;default:'[]'" json:"planned_responses"`
	OverrideOfControls  string     `gorm:"type:text" json:"override_of_controls"`
	RequiresEQRSnapshot bool       `gorm:"column:requires_eqr_snapshot;not null;default:false" json:"requires_eqr_snapshot"`
	SubmittedAt         *time.Time `json:"submitted_at"`
	LockedAt            *time.Time `json:"locked_at"`
	LockedByUserID      *uuid.UUID `gorm:"type:uuid" json:"locked_by_user_id"`
	EQRApprovedByUserID *uuid.UUID `gorm:"column:eqr_approved_by_user_id;type:uuid" json:"eqr_approved_by_user_id"`
	EQRApprovedAt       *time.Time `gorm:"column:eqr_approved_at" json:"eqr_approved_at"`
	CreatedByUserID     *uuid.UUID `gorm:"type:uuid" json:"created_by_user_id"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
