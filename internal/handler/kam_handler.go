package handler

import (
	"net/http"

	"auditdesk/internal/middleware"
	"auditdesk/internal/model"
	"auditdesk/internal/service"
	"auditdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type KamHandler struct {
	kamService service.KamService
}

func NewKamHandler(kamService service.KamService) *KamHandler {
	return &KamHandler{kamService: kamService}
}

func (h *KamHandler) RegisterRoutes(org *gin.RouterGroup) {
	kam := org.Group("/kam")
	{
		kam.POST("/candidates", h.AddCandidate)
		kam.POST("/candidates/:id/select", h.SelectCandidate)
		kam.POST("/candidates/:id/exclude", h.ExcludeCandidate)
		kam.POST("/drafts", h.CreateDraft)
		kam.PATCH("/drafts/:id", h.UpdateDraft)
		kam.POST("/submit", h.Submit)
		kam.POST("/approval/decide", h.Decide)
		kam.GET("", h.List)
	}
}

// AddCandidate registers a potential Key Audit Matter
// @Summary      Add KAM candidate
// @Tags         kam
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                       true  "Organization slug"
// @Param        payload  body      service.AddKamCandidateDTO   true  "Candidate Payload"
// @Success      201      {object}  response.Response{data=model.KamCandidate}
// @Failure      400      {object}  response.Response
// @Router       /orgs/{orgSlug}/kam/candidates [post]
func (h *KamHandler) AddCandidate(c *gin.Context) {
	var req service.AddKamCandidateDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	candidate, err := h.kamService.AddCandidate(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, candidate))
}

// SelectCandidate marks a candidate as a selected KAM
// @Summary      Select KAM candidate
// @Tags         kam
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Param        id       path      string  true  "Candidate id"
// @Success      200      {object}  response.Response{data=model.KamCandidate}
// @Failure      404      {object}  response.Response
// @Router       /orgs/{orgSlug}/kam/candidates/{id}/select [post]
func (h *KamHandler) SelectCandidate(c *gin.Context) {
	candidate, err := h.kamService.SetCandidateStatus(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), model.KamCandidateSelected, "")
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, candidate))
}

// ExcludeCandidate excludes a candidate with an optional reason
// @Summary      Exclude KAM candidate
// @Tags         kam
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Param        id       path      string  true  "Candidate id"
// @Success      200      {object}  response.Response{data=model.KamCandidate}
// @Failure      404      {object}  response.Response
// @Router       /orgs/{orgSlug}/kam/candidates/{id}/exclude [post]
func (h *KamHandler) ExcludeCandidate(c *gin.Context) {
	var req struct {
		Reason string `json:"reason"`
	}
	_ = c.ShouldBindJSON(&req) // reason is optional

	candidate, err := h.kamService.SetCandidateStatus(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), model.KamCandidateExcluded, req.Reason)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, candidate))
}

// CreateDraft opens a draft for a selected candidate
// @Summary      Create KAM draft
// @Tags         kam
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                      true  "Organization slug"
// @Param        payload  body      service.CreateKamDraftDTO   true  "Draft Payload"
// @Success      201      {object}  response.Response{data=model.KamDraft}
// @Failure      400      {object}  response.Response
// @Router       /orgs/{orgSlug}/kam/drafts [post]
func (h *KamHandler) CreateDraft(c *gin.Context) {
	var req service.CreateKamDraftDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	draft, err := h.kamService.CreateDraft(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, draft))
}

// UpdateDraft patches draft fields
// @Summary      Update KAM draft
// @Tags         kam
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                      true  "Organization slug"
// @Param        id       path      string                      true  "Draft id"
// @Param        payload  body      service.UpdateKamDraftDTO   true  "Draft Patch"
// @Success      200      {object}  response.Response{data=model.KamDraft}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/kam/drafts/{id} [patch]
func (h *KamHandler) UpdateDraft(c *gin.Context) {
	var req service.UpdateKamDraftDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	draft, err := h.kamService.UpdateDraft(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, draft))
}

// Submit opens the draft's review round after completeness checks
// @Summary      Submit KAM draft for review
// @Tags         kam
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Success      200      {object}  response.Response{data=handler.SubmitResponse}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/kam/submit [post]
func (h *KamHandler) Submit(c *gin.Context) {
	var req struct {
		EngagementID string `json:"engagement_id" binding:"required"`
		DraftID      string `json:"draft_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	tasks, err := h.kamService.Submit(c.Request.Context(), middleware.CurrentActor(c), req.EngagementID, req.DraftID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, submitResponse(model.KamDraftStatusReadyForReview, tasks)))
}

// Decide resolves one KAM approval task
// @Summary      Decide KAM approval
// @Tags         kam
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                 true  "Organization slug"
// @Param        payload  body      handler.DecideRequest  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=approval.DecisionResult}
// @Failure      403      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/kam/approval/decide [post]
func (h *KamHandler) Decide(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	result, err := h.kamService.Decide(c.Request.Context(), middleware.CurrentActor(c), req.ApprovalID, req.Decision, req.Note)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// List returns candidates, drafts, and approval tasks for an engagement
// @Summary      KAM overview
// @Tags         kam
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug        path      string  true  "Organization slug"
// @Param        engagement_id  query     string  true  "Engagement id"
// @Success      200            {object}  response.Response{data=service.KamOverview}
// @Router       /orgs/{orgSlug}/kam [get]
func (h *KamHandler) List(c *gin.Context) {
	overview, err := h.kamService.List(c.Request.Context(), middleware.CurrentActor(c), c.Query("engagement_id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, overview))
}
