package repository

import (
	"context"
	"errors"

	"auditdesk/internal/approval"
	"auditdesk/internal/model"
	"auditdesk/pkg/apperr"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// activeStatuses are the statuses that occupy a (work product, stage) slot.
var activeStatuses = []string{model.ApprovalPending, model.ApprovalApproved}

// ApprovalTaskRepository is the gorm-backed approval queue. It satisfies
// approval.TaskQueue.
type ApprovalTaskRepository interface {
	approval.TaskQueue
	List(ctx context.Context, orgID uuid.UUID, engagementID *uuid.UUID, status, kind string, page, limit int) ([]model.ApprovalTask, int64, error)
}

type approvalTaskRepository struct {
	db *gorm.DB
}

func NewApprovalTaskRepository(db *gorm.DB) ApprovalTaskRepository {
	return &approvalTaskRepository{db: db}
}

// InsertIfAbsent relies on the partial unique index over active rows: a
// concurrent duplicate submission hits the constraint and falls through to
// the existing row instead of erroring.
func (r *approvalTaskRepository) InsertIfAbsent(ctx context.Context, task *model.ApprovalTask) (*model.ApprovalTask, bool, error) {
	db := GetDB(ctx, r.db)

	res := db.Clauses(clause.OnConflict{
		Columns: []clause.Column{
			{Name: "org_id"}, {Name: "work_product_id"}, {Name: "kind"}, {Name: "stage"},
		},
		TargetWhere: clause.Where{Exprs: []clause.Expression{
			clause.IN{Column: clause.Column{Name: "status"}, Values: []interface{}{model.ApprovalPending, model.ApprovalApproved}},
		}},
		DoNothing: true,
	}).Create(task)
	if res.Error != nil {
		return nil, false, apperr.Storage(res.Error)
	}
	if res.RowsAffected > 0 {
		return task, true, nil
	}

	// Conflicted with an active row; fetch and return it.
	var existing model.ApprovalTask
	err := db.Where("org_id = ? AND work_product_id = ? AND kind = ? AND stage = ? AND status IN ?",
		task.OrgID, task.WorkProductID, task.Kind, task.Stage, activeStatuses).
		First(&existing).Error
	if err != nil {
		return nil, false, apperr.Storage(err)
	}
	return &existing, false, nil
}

func (r *approvalTaskRepository) FindByID(ctx context.Context, orgID, taskID uuid.UUID) (*model.ApprovalTask, error) {
	var task model.ApprovalTask
	err := GetDB(ctx, r.db).Where("org_id = ?", orgID).First(&task, "id = ?", taskID).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound("approval_not_found")
	}
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return &task, nil
}

func (r *approvalTaskRepository) ListActive(ctx context.Context, orgID uuid.UUID, kind string, workProductID uuid.UUID) ([]model.ApprovalTask, error) {
	var tasks []model.ApprovalTask
	err := GetDB(ctx, r.db).
		Where("org_id = ? AND kind = ? AND work_product_id = ? AND status IN ?", orgID, kind, workProductID, activeStatuses).
		Order("created_at ASC").
		Find(&tasks).Error
	if err != nil {
		return nil, apperr.Storage(err)
	}
	return tasks, nil
}

// UpdateDecision resolves a PENDING task. The status guard in the WHERE clause
// is the double-decision arbiter: a second decision matches zero rows.
func (r *approvalTaskRepository) UpdateDecision(ctx context.Context, task *model.ApprovalTask) error {
	res := GetDB(ctx, r.db).Model(&model.ApprovalTask{}).
		Where("id = ? AND org_id = ? AND status = ?", task.ID, task.OrgID, model.ApprovalPending).
		Updates(map[string]interface{}{
			"status":              task.Status,
			"resolved_at":         task.ResolvedAt,
			"resolved_by_user_id": task.ResolvedByUserID,
			"resolution_note":     task.ResolutionNote,
		})
	if res.Error != nil {
		return apperr.Storage(res.Error)
	}
	if res.RowsAffected == 0 {
		return apperr.Conflict("approval_already_resolved")
	}
	return nil
}

// List is the queue read-model used by the approvals overview endpoint.
func (r *approvalTaskRepository) List(ctx context.Context, orgID uuid.UUID, engagementID *uuid.UUID, status, kind string, page, limit int) ([]model.ApprovalTask, int64, error) {
	db := GetDB(ctx, r.db)

	query := db.Model(&model.ApprovalTask{}).Where("org_id = ?", orgID)
	if engagementID != nil {
		query = query.Where("engagement_id = ?", *engagementID)
	}
	if status != "" {
		query = query.Where("status = ?", status)
	}
	if kind != "" {
		query = query.Where("kind = ?", kind)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, apperr.Storage(err)
	}

	var tasks []model.ApprovalTask
	offset := (page - 1) * limit
	if err := query.Preload("ResolvedBy").Order("created_at DESC").Offset(offset).Limit(limit).Find(&tasks).Error; err != nil {
		return nil, 0, apperr.Storage(err)
	}
	return tasks, total, nil
}
