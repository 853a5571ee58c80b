package database

import (
	"auditdesk/internal/model"

	"github.com/sirupsen/logrus"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

// NewConnection initializes a new connection pool using GORM
func NewConnection(dsn string) (*gorm.DB, error) {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{})
	if err != nil {
		return nil, err
	}

	// Auto-migrate core models
	err = db.AutoMigrate(
		&model.User{},
		&model.RefreshToken{},
		&model.Organization{},
		&model.Membership{},
		&model.Engagement{},
		&model.ApprovalTask{},
		&model.ActivityEntry{},
		&model.AcceptanceDecision{},
		&model.KamCandidate{},
		&model.KamDraft{},
		&model.PlannedProcedure{},
		&model.EvidenceItem{},
		&model.TcwgPack{},
		&model.AuditPlan{},
		&model.MaterialitySet{},
		&model.FraudPlan{},
		&model.TaxComputation{},
	)
	if err != nil {
		logrus.WithError(err).Warn("failed to auto-migrate models")
	}

	// Partial unique index: one active task per (org, work product, kind,
	// stage). Rejected and cancelled rows drop out of the constraint so a
	// reset round can recreate its stages. AutoMigrate cannot express the
	// WHERE clause, hence raw SQL.
	err = db.Exec(`
		CREATE UNIQUE INDEX IF NOT EXISTS idx_approval_tasks_active_slot
		ON approval_tasks (org_id, work_product_id, kind, stage)
		WHERE status IN ('PENDING','APPROVED')
	`).Error
	if err != nil {
		logrus.WithError(err).Warn("failed to create approval task slot index")
	}

	return db, nil
}
