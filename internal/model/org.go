package model

import (
	"time"

	"github.com/google/uuid"
)

// RoleLevel enum constants, ordered by rank
const (
	RoleEmployee    = "EMPLOYEE"
	RoleManager     = "MANAGER"
	RolePartner     = "PARTNER"
	RoleSystemAdmin = "SYSTEM_ADMIN"
)

// roleRank maps role names to their position in the hierarchy.
// Unknown roles rank below EMPLOYEE.
var roleRank = map[string]int{
	RoleEmployee:    1,
	RoleManager:     2,
	RolePartner:     3,
	RoleSystemAdmin: 4,
}

// RoleRank returns the numeric rank of a role (0 for unknown roles)
func RoleRank(role string) int {
	return roleRank[role]
}

// RoleAtLeast reports whether role ranks at or above min
func RoleAtLeast(role, min string) bool {
	return roleRank[role] >= roleRank[min]
}

// Organization is the tenant boundary; every domain row carries its org_id
type Organization struct {
	ID        uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Slug      string    `gorm:"type:varchar(100);uniqueIndex;not null" json:"slug"`
	Name      string    `gorm:"type:varchar(255);not null" json:"name"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Membership binds a user to an organization with a role.
// IsEQRReviewer marks the partner-level designation required to resolve EQR stages.
type Membership struct {
	ID            uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	OrgID         uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_org_user" json:"org_id"`
	Organization  *Organization `gorm:"foreignKey:OrgID" json:"-"`
	UserID        uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_memberships_org_user" json:"user_id"`
	User          *User     `gorm:"foreignKey:UserID" json:"user,omitempty"`
	Role          string    `gorm:"type:varchar(30);not null;default:'EMPLOYEE'" json:"role"`
	IsEQRReviewer bool      `gorm:"not null;default:false" json:"is_eqr_reviewer"`
	CreatedAt     time.Time `json:"created_at"`
	UpdatedAt     time.Time `json:"updated_at"`
}
