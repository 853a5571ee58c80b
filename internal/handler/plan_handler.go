package handler

import (
	"net/http"

	"auditdesk/internal/middleware"
	"auditdesk/internal/model"
	"auditdesk/internal/service"
	"auditdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type PlanHandler struct {
	planService service.PlanService
}

func NewPlanHandler(planService service.PlanService) *PlanHandler {
	return &PlanHandler{planService: planService}
}

func (h *PlanHandler) RegisterRoutes(org *gin.RouterGroup) {
	plan := org.Group("/plan")
	{
		plan.POST("", h.Upsert)
		plan.POST("/materiality", h.UpsertMateriality)
		plan.POST("/submit", h.Submit)
		plan.POST("/approval/decide", h.Decide)
		plan.GET("", h.Get)
	}
}

// Upsert creates or updates the engagement's audit plan draft
// @Summary      Upsert audit plan
// @Tags         plan
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                      true  "Organization slug"
// @Param        payload  body      service.UpsertAuditPlanDTO  true  "Plan Payload"
// @Success      200      {object}  response.Response{data=model.AuditPlan}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/plan [post]
func (h *PlanHandler) Upsert(c *gin.Context) {
	var req service.UpsertAuditPlanDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	plan, err := h.planService.Upsert(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, plan))
}

// UpsertMateriality sets the engagement's materiality thresholds
// @Summary      Upsert materiality set
// @Tags         plan
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                        true  "Organization slug"
// @Param        payload  body      service.UpsertMaterialityDTO  true  "Materiality Payload"
// @Success      200      {object}  response.Response{data=model.MaterialitySet}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/plan/materiality [post]
func (h *PlanHandler) UpsertMateriality(c *gin.Context) {
	var req service.UpsertMaterialityDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	set, err := h.planService.UpsertMateriality(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, set))
}

// Submit opens the plan-freeze review round
// @Summary      Submit audit plan for freeze approval
// @Tags         plan
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Success      200      {object}  response.Response{data=handler.SubmitResponse}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/plan/submit [post]
func (h *PlanHandler) Submit(c *gin.Context) {
	var req struct {
		EngagementID string `json:"engagement_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	tasks, err := h.planService.Submit(c.Request.Context(), middleware.CurrentActor(c), req.EngagementID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, submitResponse(model.PlanStatusReadyForApproval, tasks)))
}

// Decide resolves one plan-freeze approval task
// @Summary      Decide plan-freeze approval
// @Tags         plan
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                 true  "Organization slug"
// @Param        payload  body      handler.DecideRequest  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=approval.DecisionResult}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/plan/approval/decide [post]
func (h *PlanHandler) Decide(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	result, err := h.planService.Decide(c.Request.Context(), middleware.CurrentActor(c), req.ApprovalID, req.Decision, req.Note)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Get returns the plan, materiality, and approval tasks for an engagement
// @Summary      Plan overview
// @Tags         plan
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug        path      string  true  "Organization slug"
// @Param        engagement_id  query     string  true  "Engagement id"
// @Success      200            {object}  response.Response{data=service.PlanOverview}
// @Router       /orgs/{orgSlug}/plan [get]
func (h *PlanHandler) Get(c *gin.Context) {
	overview, err := h.planService.Get(c.Request.Context(), middleware.CurrentActor(c), c.Query("engagement_id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}
