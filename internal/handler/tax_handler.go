package handler

import (
	"net/http"

	"auditdesk/internal/middleware"
	"auditdesk/internal/model"
	"auditdesk/internal/service"
	"auditdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type TaxHandler struct {
	taxService service.TaxService
}

func NewTaxHandler(taxService service.TaxService) *TaxHandler {
	return &TaxHandler{taxService: taxService}
}

func (h *TaxHandler) RegisterRoutes(org *gin.RouterGroup) {
	tax := org.Group("/tax")
	{
		tax.POST("", h.Upsert)
		tax.POST("/submit", h.Submit)
		tax.POST("/approval/decide", h.Decide)
		tax.GET("", h.List)
	}
}

// Upsert creates or updates a tax computation for a period
// @Summary      Upsert tax computation
// @Tags         tax
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                           true  "Organization slug"
// @Param        payload  body      service.UpsertTaxComputationDTO  true  "Tax Computation Payload"
// @Success      200      {object}  response.Response{data=model.TaxComputation}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/tax [post]
func (h *TaxHandler) Upsert(c *gin.Context) {
	var req service.UpsertTaxComputationDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	comp, err := h.taxService.Upsert(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, comp))
}

// Submit opens the computation's release review round
// @Summary      Submit tax computation for approval
// @Tags         tax
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Success      200      {object}  response.Response{data=handler.SubmitResponse}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/tax/submit [post]
func (h *TaxHandler) Submit(c *gin.Context) {
	var req struct {
		EngagementID string `json:"engagement_id" binding:"required"`
		Period       string `json:"period" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	tasks, err := h.taxService.Submit(c.Request.Context(), middleware.CurrentActor(c), req.EngagementID, req.Period)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, submitResponse(model.TaxStatusReadyForApproval, tasks)))
}

// Decide resolves one tax approval task
// @Summary      Decide tax approval
// @Tags         tax
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                 true  "Organization slug"
// @Param        payload  body      handler.DecideRequest  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=approval.DecisionResult}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/tax/approval/decide [post]
func (h *TaxHandler) Decide(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	result, err := h.taxService.Decide(c.Request.Context(), middleware.CurrentActor(c), req.ApprovalID, req.Decision, req.Note)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// List returns the engagement's tax computations
// @Summary      List tax computations
// @Tags         tax
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug        path      string  true  "Organization slug"
// @Param        engagement_id  query     string  true  "Engagement id"
// @Success      200            {object}  response.Response
// @Router       /orgs/{orgSlug}/tax [get]
func (h *TaxHandler) List(c *gin.Context) {
	computations, err := h.taxService.List(c.Request.Context(), middleware.CurrentActor(c), c.Query("engagement_id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, computations))
}
