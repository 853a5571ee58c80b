package handler

import (
	"net/http"

	"auditdesk/internal/middleware"
	"auditdesk/internal/service"
	"auditdesk/pkg/pagination"
	"auditdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type ApprovalHandler struct {
	approvalService service.ApprovalService
}

func NewApprovalHandler(approvalService service.ApprovalService) *ApprovalHandler {
	return &ApprovalHandler{approvalService: approvalService}
}

func (h *ApprovalHandler) RegisterRoutes(org *gin.RouterGroup) {
	approvals := org.Group("/approvals")
	{
		approvals.GET("", h.List)
		approvals.GET("/:id", h.Get)
	}
}

// List returns approval tasks, optionally filtered by engagement/status/kind
// @Summary      List approval tasks
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug        path      string  true   "Organization slug"
// @Param        engagement_id  query     string  false  "Engagement id"
// @Param        status         query     string  false  "PENDING | APPROVED | REJECTED | CANCELLED"
// @Param        kind           query     string  false  "Work-product kind"
// @Param        page           query     int     false  "Page number"
// @Param        limit          query     int     false  "Page size"
// @Success      200            {object}  response.Response
// @Router       /orgs/{orgSlug}/approvals [get]
func (h *ApprovalHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	filter := service.ApprovalListFilter{
		EngagementID: c.Query("engagement_id"),
		Status:       c.Query("status"),
		Kind:         c.Query("kind"),
		Page:         params.Page,
		Limit:        params.Limit,
	}

	tasks, total, err := h.approvalService.List(c.Request.Context(), middleware.CurrentActor(c), filter)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": tasks,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// Get returns one approval task
// @Summary      Get approval task
// @Tags         approvals
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Param        id       path      string  true  "Approval task id"
// @Success      200      {object}  response.Response{data=model.ApprovalTask}
// @Failure      404      {object}  response.Response
// @Router       /orgs/{orgSlug}/approvals/{id} [get]
func (h *ApprovalHandler) Get(c *gin.Context) {
	task, err := h.approvalService.Get(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, task))
}
