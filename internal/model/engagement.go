package model

import (
	"time"

	"github.com/google/uuid"
)

// EngagementStatus enum constants
const (
	EngagementStatusPlanning  = "PLANNING"
	EngagementStatusFieldwork = "FIELDWORK"
	EngagementStatusReporting = "REPORTING"
	EngagementStatusArchived  = "ARCHIVED"
)

// Engagement is the scoping key for all audit/tax work products.
// EQRRequired drives the conditional EQR review stage; work products snapshot
// the flag at submission time rather than reading it live.
type Engagement struct {
	ID           uuid.UUID  `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID        uuid.UUID  `gorm:"type:uuid;not null;index" json:"org_id"`
	Organization *Organization `gorm:"foreignKey:OrgID" json:"-"`
	ClientName   string     `gorm:"type:varchar(255);not null" json:"client_name"`
	Title        string     `gorm:"type:varchar(255);not null" json:"title"`
	Period       string     `gorm:"type:varchar(20)" json:"period"` // e.g. "FY2025"
	Status       string     `gorm:"type:varchar(20);not null;default:'PLANNING'" json:"status"`
	EQRRequired  bool       `gorm:"column:eqr_required;not null;default:false" json:"eqr_required"`
	CreatedByUserID *uuid.UUID `gorm:"type:uuid" json:"created_by_user_id"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}
