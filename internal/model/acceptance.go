package model

import (
	"time"

	"github.com/google/uuid"
)

// AcceptanceDecision status enum constants
const (
	AcceptanceDraft          = "DRAFT"
	AcceptanceReadyForReview = "READY_FOR_REVIEW"
	AcceptanceApprovedStatus = "APPROVED"
	AcceptanceRejectedStatus = "REJECTED"
)

// Acceptance verdicts recorded by the engagement team before submission
const (
	AcceptanceVerdictAccept  = "ACCEPT"
	AcceptanceVerdictDecline = "DECLINE"
)

// AcceptanceDecision is the client/engagement acceptance work product. Partner
// approval gates the rest of the engagement; on approval the decision's EQR
// recommendation is copied onto the engagement.
type AcceptanceDecision struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID               uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	EngagementID        uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"engagement_id"`
	Engagement          *Engagement `gorm:"foreignKey:EngagementID" json:"-"`
	Status              string     `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Decision            string     `gorm:"type:varchar(10)" json:"decision"` // ACCEPT or DECLINE
	Rationale           string     `gorm:"type:text" json:"rationale"`
	EQRRecommended      bool       `gorm:"column:eqr_recommended;not null;default:false" json:"eqr_recommended"`
	RequiresEQRSnapshot bool       `gorm:"column:requires_eqr_snapshot;not null;default:false" json:"requires_eqr_snapshot"`
	SubmittedAt         *time.Time `json:"submitted_at"`
	ApprovedByUserID    *uuid.UUID `gorm:"type:uuid" json:"approved_by_user_id"`
	ApprovedAt          *time.Time `json:"approved_at"`
	CreatedByUserID     *uuid.UUID `gorm:"type:uuid" json:"created_by_user_id"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}
