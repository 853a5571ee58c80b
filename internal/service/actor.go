package service

import (
	"auditdesk/internal/approval"

	"github.com/google/uuid"
)

// Actor is the fully resolved caller identity for one request: the user from
// the bearer token plus their membership in the org addressed by the route.
type Actor struct {
	UserID      uuid.UUID
	OrgID       uuid.UUID
	Role        string
	EQRReviewer bool
}

// Reviewer converts the actor into the engine's capability view
func (a Actor) Reviewer() approval.Reviewer {
	return approval.Reviewer{UserID: a.UserID, Role: a.Role, EQRReviewer: a.EQRReviewer}
}
