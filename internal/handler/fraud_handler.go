package handler

import (
	"net/http"

	"auditdesk/internal/middleware"
	"auditdesk/internal/model"
	"auditdesk/internal/service"
	"auditdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type FraudHandler struct {
	fraudService service.FraudService
}

func NewFraudHandler(fraudService service.FraudService) *FraudHandler {
	return &FraudHandler{fraudService: fraudService}
}

func (h *FraudHandler) RegisterRoutes(org *gin.RouterGroup) {
	fraud := org.Group("/fraud")
	{
		fraud.POST("", h.Upsert)
		fraud.POST("/submit", h.Submit)
		fraud.POST("/approval/decide", h.Decide)
		fraud.GET("", h.Get)
	}
}

// Upsert creates or updates the engagement's fraud plan draft
// @Summary      Upsert fraud plan
// @Tags         fraud
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                      true  "Organization slug"
// @Param        payload  body      service.UpsertFraudPlanDTO  true  "Fraud Plan Payload"
// @Success      200      {object}  response.Response{data=model.FraudPlan}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/fraud [post]
func (h *FraudHandler) Upsert(c *gin.Context) {
	var req service.UpsertFraudPlanDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	plan, err := h.fraudService.Upsert(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, plan))
}

// Submit opens the fraud plan's review round; partial content is allowed
// @Summary      Submit fraud plan for approval
// @Tags         fraud
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Success      200      {object}  response.Response{data=handler.SubmitResponse}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/fraud/submit [post]
func (h *FraudHandler) Submit(c *gin.Context) {
	var req struct {
		EngagementID string `json:"engagement_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	tasks, err := h.fraudService.Submit(c.Request.Context(), middleware.CurrentActor(c), req.EngagementID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, submitResponse(model.FraudPlanStatusReadyForApproval, tasks)))
}

// Decide resolves one fraud plan approval task
// @Summary      Decide fraud plan approval
// @Tags         fraud
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                 true  "Organization slug"
// @Param        payload  body      handler.DecideRequest  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=approval.DecisionResult}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/fraud/approval/decide [post]
func (h *FraudHandler) Decide(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	result, err := h.fraudService.Decide(c.Request.Context(), middleware.CurrentActor(c), req.ApprovalID, req.Decision, req.Note)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Get returns the fraud plan and its approval tasks
// @Summary      Fraud plan overview
// @Tags         fraud
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug        path      string  true  "Organization slug"
// @Param        engagement_id  query     string  true  "Engagement id"
// @Success      200            {object}  response.Response{data=service.FraudOverview}
// @Router       /orgs/{orgSlug}/fraud [get]
func (h *FraudHandler) Get(c *gin.Context) {
	overview, err := h.fraudService.Get(c.Request.Context(), middleware.CurrentActor(c), c.Query("engagement_id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}
