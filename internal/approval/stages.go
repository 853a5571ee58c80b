package approval

import (
	"auditdesk/internal/model"

	"github.com/google/uuid"
)

// PartnerOnly is the stage rule for acceptance decisions, audit plans, fraud
// plans, and tax computations: a single partner sign-off, plus EQR when the
// engagement requires it.
func PartnerOnly(requiresEQR bool) []string {
	stages := []string{model.StagePartner}
	if requiresEQR {
		stages = append(stages, model.StageEQR)
	}
	return stages
}

// ManagerThenPartner is the stage rule for KAM drafts and TCWG packs: manager
// review before partner sign-off, plus EQR when the engagement requires it.
func ManagerThenPartner(requiresEQR bool) []string {
	stages := []string{model.StageManager, model.StagePartner}
	if requiresEQR {
		stages = append(stages, model.StageEQR)
	}
	return stages
}

// Reviewer is the resolved identity deciding an approval task.
type Reviewer struct {
	UserID      uuid.UUID
	Role        string
	EQRReviewer bool
}

// CanDecide reports whether the reviewer's membership satisfies the stage's
// minimum capability: MANAGER stages need manager rank, PARTNER stages need
// partner rank, and EQR stages need partner rank plus the EQR designation.
func CanDecide(r Reviewer, stage string) bool {
	switch stage {
	case model.StageManager:
		return model.RoleAtLeast(r.Role, model.RoleManager)
	case model.StagePartner:
		return model.RoleAtLeast(r.Role, model.RolePartner)
	case model.StageEQR:
		return model.RoleAtLeast(r.Role, model.RolePartner) && r.EQRReviewer
	default:
		return false
	}
}
