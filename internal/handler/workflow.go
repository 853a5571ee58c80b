package handler

import (
	"auditdesk/internal/model"

	"github.com/google/uuid"
)

// DecideRequest is the shared payload for every */approval/decide endpoint.
type DecideRequest struct {
	ApprovalID string `json:"approval_id" binding:"required"`
	Decision   string `json:"decision" binding:"required,oneof=APPROVED REJECTED"`
	Note       string `json:"note"`
}

// SubmitResponse reports the review round opened by a submit endpoint.
type SubmitResponse struct {
	Status          string      `json:"status"`
	ApprovalTaskIDs []uuid.UUID `json:"approval_task_ids"`
}

func submitResponse(status string, tasks []model.ApprovalTask) SubmitResponse {
	ids := make([]uuid.UUID, 0, len(tasks))
	for _, t := range tasks {
		ids = append(ids, t.ID)
	}
	return SubmitResponse{Status: status, ApprovalTaskIDs: ids}
}
