package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// AuditPlan status enum constants
const (
	PlanStatusDraft            = "DRAFT"
	PlanStatusReadyForApproval = "READY_FOR_APPROVAL"
	PlanStatusLocked           = "LOCKED"
)

// AuditPlan is the engagement's overall audit strategy. Partner approval
// freezes it: the plan moves to LOCKED and records who locked it and when.
type AuditPlan struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID               uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	EngagementID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"engagement_id"`
	Engagement          *Engagement `gorm:"foreignKey:EngagementID" json:"-"`
	Status              string     `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Strategy            string     `gorm:"type:text" json:"strategy"`
	BasisFramework      string     `gorm:"type:varchar(100)" json:"basis_framework"` // e.g. "ISA (2022)"
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

// MaterialitySet holds the engagement's materiality thresholds. A plan cannot
// be submitted for approval until one exists.
type MaterialitySet struct {
	ID                     uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID                  uuid.UUID       `gorm:"type:uuid;not null;index" json:"org_id"`
	EngagementID           uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex" json:"engagement_id"`
	Benchmark              string          `gorm:"type:varchar(100);not null" json:"benchmark"` // e.g. "PROFIT_BEFORE_TAX"
	OverallMateriality     decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"overall_materiality"`
	PerformanceMateriality decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"performance_materiality"`
	ClearlyTrivial         decimal.Decimal `gorm:"type:numeric(18,2);not null" json:"clearly_trivial"`
	PreparedByUserID       *uuid.UUID      `gorm:"type:uuid" json:"prepared_by_user_id"`
	CreatedAt              time.Time       `json:"created_at"`
	UpdatedAt              time.Time       `json:"updated_at"`
}
