package model

import (
	"time"

	"github.com/google/uuid"
)

// KamCandidate source enum constants
const (
	KamSourceRisk         = "RISK"
	KamSourceEstimate     = "ESTIMATE"
	KamSourceGoingConcern = "GOING_CONCERN"
	KamSourceOther        = "OTHER"
)

// KamCandidate status enum constants
const (
	KamCandidateProposed = "PROPOSED"
	KamCandidateSelected = "SELECTED"
	KamCandidateExcluded = "EXCLUDED"
)

// KamDraft status enum constants
const (
	KamDraftStatusDraft          = "DRAFT"
	KamDraftStatusReadyForReview = "READY_FOR_REVIEW"
	KamDraftStatusApproved       = "APPROVED"
	KamDraftStatusRejected       = "REJECTED"
)

// KamCandidate is a potential Key Audit Matter sourced from the risk register,
// estimates, or going-concern work. Drafts are written only for selected candidates.
type KamCandidate struct {
	ID              uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID           uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	EngagementID    uuid.UUID  `gorm:"type:uuid;not null;index" json:"engagement_id"`
	Source          string     `gorm:"type:varchar(20);not null" json:"source"`
	Title           string     `gorm:"type:varchar(255);not null" json:"title"`
	Rationale       string     `gorm:"type:text" json:"rationale"`
	Status          string     `gorm:"type:varchar(20);not null;default:'PROPOSED'" json:"status"`
	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"created_by_user_id"`
	CreatedAt       time.Time  `json:"created_at"`
	UpdatedAt       time.Time  `json:"updated_at"`
}

// KamDraft is the written Key Audit Matter section for one selected candidate.
// ProceduresRefs and EvidenceRefs hold JSON arrays of references into the
// planned-procedure and evidence stores; both must resolve before submission.
type KamDraft struct {
	ID                  uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID               uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	EngagementID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"engagement_id"`
	CandidateID         uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex" json:"candidate_id"`
	Candidate           *KamCandidate `gorm:"foreignKey:CandidateID" json:"candidate,omitempty"`
	Status              string     `gorm:"type:varchar(20);not null;default:'DRAFT';index" json:"status"`
	Heading             string     `gorm:"type:varchar(255)" json:"heading"`
	WhyKam              string     `gorm:"type:text" json:"why_kam"`
	HowAddressed        string     `gorm:"type:text" json:"how_addressed"`
	ResultsSummary      string     `gorm:"type:text" json:"results_summary"`
	ProceduresRefs      string     `gorm:"type:jsonb;not null;default:'[]'" json:"procedures_refs"`
	EvidenceRefs        string     `gorm:"type:jsonb;not null;default:'[]'" json:"evidence_refs"`
	RequiresEQRSnapshot bool       `gorm:"column:requires_eqr_snapshot;not null;default:false" json:"requires_eqr_snapshot"`
	SubmittedAt         *time.Time `json:"submitted_at"`
	ApprovedByUserID    *uuid.UUID `gorm:"type:uuid" json:"approved_by_user_id"`
	ApprovedAt          *time.Time `json:"approved_at"`
	EQRApprovedByUserID *uuid.UUID `gorm:"column:eqr_approved_by_user_id;type:uuid" json:"eqr_approved_by_user_id"`
	EQRApprovedAt       *time.Time `gorm:"column:eqr_approved_at" json:"eqr_approved_at"`
	CreatedByUserID     *uuid.UUID `gorm:"type:uuid" json:"created_by_user_id"`
	CreatedAt           time.Time  `json:"created_at"`
	UpdatedAt           time.Time  `json:"updated_at"`
}

// PlannedProcedure is a row in the engagement's audit programme that KAM drafts
// reference by id.
type PlannedProcedure struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID        uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	EngagementID uuid.UUID `gorm:"type:uuid;not null;index" json:"engagement_id"`
	Title        string    `gorm:"type:varchar(255);not null" json:"title"`
	ISARefs      string    `gorm:"column:isa_refs;type:jsonb;not null;default:'[]'" json:"isa_refs"`
	CreatedAt    time.Time `json:"created_at"`
}

// EvidenceItem is a piece of audit evidence that KAM drafts reference by id.
type EvidenceItem struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID        uuid.UUID `gorm:"type:uuid;not null;index" json:"org_id"`
	EngagementID uuid.UUID `gorm:"type:uuid;not null;index" json:"engagement_id"`
	Description  string    `gorm:"type:varchar(255);not null" json:"description"`
	DocumentRef  string    `gorm:"type:varchar(255)" json:"document_ref"`
	CreatedAt    time.Time `json:"created_at"`
}
