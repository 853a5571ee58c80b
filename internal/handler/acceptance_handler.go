package handler

import (
	"net/http"

	"auditdesk/internal/middleware"
	"auditdesk/internal/model"
	"auditdesk/internal/service"
	"auditdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type AcceptanceHandler struct {
	acceptanceService service.AcceptanceService
}

func NewAcceptanceHandler(acceptanceService service.AcceptanceService) *AcceptanceHandler {
	return &AcceptanceHandler{acceptanceService: acceptanceService}
}

func (h *AcceptanceHandler) RegisterRoutes(org *gin.RouterGroup) {
	acceptance := org.Group("/acceptance")
	{
		acceptance.POST("", h.Upsert)
		acceptance.POST("/submit", h.Submit)
		acceptance.POST("/approval/decide", h.Decide)
		acceptance.GET("", h.Get)
	}
}

// Upsert creates or updates the engagement's acceptance decision draft
// @Summary      Upsert acceptance decision
// @Tags         acceptance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                       true  "Organization slug"
// @Param        payload  body      service.UpsertAcceptanceDTO  true  "Acceptance Payload"
// @Success      200      {object}  response.Response{data=model.AcceptanceDecision}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/acceptance [post]
func (h *AcceptanceHandler) Upsert(c *gin.Context) {
	var req service.UpsertAcceptanceDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	decision, err := h.acceptanceService.Upsert(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, decision))
}

// Submit opens the acceptance review round
// @Summary      Submit acceptance decision for approval
// @Tags         acceptance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Success      200      {object}  response.Response{data=handler.SubmitResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/acceptance/submit [post]
func (h *AcceptanceHandler) Submit(c *gin.Context) {
	var req struct {
		EngagementID string `json:"engagement_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}
	actor := middleware.CurrentActor(c)

	decision, err := h.acceptanceService.Get(c.Request.Context(), actor, req.EngagementID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	tasks, err := h.acceptanceService.Submit(c.Request.Context(), actor, req.EngagementID, decision.ID.String())
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, submitResponse(model.AcceptanceReadyForReview, tasks)))
}

// Decide resolves one acceptance approval task
// @Summary      Decide acceptance approval
// @Tags         acceptance
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                 true  "Organization slug"
// @Param        payload  body      handler.DecideRequest  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=approval.DecisionResult}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/acceptance/approval/decide [post]
func (h *AcceptanceHandler) Decide(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	result, err := h.acceptanceService.Decide(c.Request.Context(), middleware.CurrentActor(c), req.ApprovalID, req.Decision, req.Note)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Get returns the engagement's acceptance decision
// @Summary      Get acceptance decision
// @Tags         acceptance
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug        path      string  true  "Organization slug"
// @Param        engagement_id  query     string  true  "Engagement id"
// @Success      200            {object}  response.Response{data=model.AcceptanceDecision}
// @Failure      404            {object}  response.Response
// @Router       /orgs/{orgSlug}/acceptance [get]
func (h *AcceptanceHandler) Get(c *gin.Context) {
	decision, err := h.acceptanceService.Get(c.Request.Context(), middleware.CurrentActor(c), c.Query("engagement_id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, decision))
}
