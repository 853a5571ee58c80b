package model

import (
	"time"

	"github.com/google/uuid"
)

// TcwgPack status enum constants
const (
	TcwgStatusDraft          = "DRAFT"
	TcwgStatusReadyForReview = "READY_FOR_REVIEW"
	TcwgStatusApproved       = "APPROVED"
	TcwgStatusRejected       = "REJECTED"
	TcwgStatusSent           = "SENT"
)

// TcwgPack is the communication-to-those-charged-with-governance pack. It goes
// through MANAGER and PARTNER review (plus EQR when required) and can be sent
// to the client only after approval.
type TcwgPack struct {
	ID                   uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID                uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	EngagementID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"engagement_id"`
	Engagement           *Engagement `gorm:"foreignKey:EngagementID" json:"-"`
	Status               string     `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	IndependenceStatement string    `gorm:"type:text" json:"independence_statement"`
	ScopeSummary         string     `gorm:"type:text" json:"scope_summary"`
	SignificantFindings  string     `gorm:"type:text" json:"significant_findings"`
	Deficiencies         string     `gorm:"type:jsonb;not null;default:'[]'" json:"deficiencies"`
	UncorrectedMisstatements string `gorm:"type:jsonb;not null;default:'[]'" json:"uncorrected_misstatements"`
	RequiresEQRSnapshot  bool       `gorm:"column:requires_eqr_snapshot;not null;default:false" json:"requires_eqr_snapshot"`
	SubmittedAt          *time.Time `json:"submitted_at"`
	ApprovedByUserID     *uuid.UUID `gorm:"type:uuid" json:"approved_by_user_id"`
	ApprovedAt           *time.Time `json:"approved_at"`
	EQRApprovedByUserID  *uuid.UUID `gorm:"column:eqr_approved_by_user_id;type:uuid" json:"eqr_approved_by_user_id"`
	EQRApprovedAt        *time.Time `gorm:"column:eqr_approved_at" json:"eqr_approved_at"`
	SentAt               *time.Time `json:"sent_at"`
	CreatedByUserID      *uuid.UUID `gorm:"type:uuid" json:"created_by_user_id"`
	CreatedAt            time.Time  `json:"created_at"`
	UpdatedAt            time.Time  `json:"updated_at"`
}
