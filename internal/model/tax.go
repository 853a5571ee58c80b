package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TaxComputation status enum constants
const (
	TaxStatusDraft            = "DRAFT"
	TaxStatusReadyForApproval = "READY_FOR_APPROVAL"
	TaxStatusApproved         = "APPROVED"
)

// TaxComputation is a prepared corporate income tax computation for one
// period. Amounts are prepared upstream; this record only gates their release
// through partner approval.
type TaxComputation struct {
	ID                  uuid.UUID       `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID               uuid.UUID       `gorm:"type:uuid;not null;index" json:"org_id"`
	EngagementID        uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_tax_engagement_period" json:"engagement_id"`
	Engagement          *Engagement     `gorm:"foreignKey:EngagementID" json:"-"`
	Period              string          `gorm:"type:varchar(20);not null;uniqueIndex:idx_tax_engagement_period" json:"period"`
	Status              string          `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	ChargeableIncome    decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"chargeable_income"`
	TaxCharge           decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"tax_charge"`
	RefundAmount        decimal.Decimal `gorm:"type:numeric(18,2);not null;default:0" json:"refund_amount"`
	Notes               string          `gorm:"type:text" json:"notes"`
	RequiresEQRSnapshot bool            `gorm:"column:requires_eqr_snapshot;not null;default:false" json:"requires_eqr_snapshot"`
	PreparedAt          *time.Time      `json:"prepared_at"`
	SubmittedAt         *time.Time      `json:"submitted_at"`
	ApprovedByUserID    *uuid.UUID      `gorm:"type:uuid" json:"approved_by_user_id"`
	ApprovedAt          *time.Time      `json:"approved_at"`
	EQRApprovedByUserID *uuid.UUID      `gorm:"column:eqr_approved_by_user_id;type:uuid" json:"eqr_approved_by_user_id"`
	EQRApprovedAt       *time.Time      `gorm:"column:eqr_approved_at" json:"eqr_approved_at"`
	PreparedByUserID    *uuid.UUID      `gorm:"type:uuid" json:"prepared_by_user_id"`
	CreatedAt           time.Time       `json:"created_at"`
	UpdatedAt           time.Time       `json:"updated_at"`
}
