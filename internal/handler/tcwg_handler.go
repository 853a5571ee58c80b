package handler

import (
	"net/http"

	"auditdesk/internal/middleware"
	"auditdesk/internal/model"
	"auditdesk/internal/service"
	"auditdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type TcwgHandler struct {
	tcwgService service.TcwgService
}

func NewTcwgHandler(tcwgService service.TcwgService) *TcwgHandler {
	return &TcwgHandler{tcwgService: tcwgService}
}

func (h *TcwgHandler) RegisterRoutes(org *gin.RouterGroup) {
	tcwg := org.Group("/tcwg")
	{
		tcwg.POST("", h.Upsert)
		tcwg.POST("/submit", h.Submit)
		tcwg.POST("/approval/decide", h.Decide)
		tcwg.POST("/:id/send", h.Send)
		tcwg.GET("", h.Get)
	}
}

// Upsert creates or updates the engagement's TCWG pack draft
// @Summary      Upsert TCWG pack
// @Tags         tcwg
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                     true  "Organization slug"
// @Param        payload  body      service.UpsertTcwgPackDTO  true  "TCWG Payload"
// @Success      200      {object}  response.Response{data=model.TcwgPack}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/tcwg [post]
func (h *TcwgHandler) Upsert(c *gin.Context) {
	var req service.UpsertTcwgPackDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	pack, err := h.tcwgService.Upsert(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pack))
}

// Submit opens the pack's review round
// @Summary      Submit TCWG pack for review
// @Tags         tcwg
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Success      200      {object}  response.Response{data=handler.SubmitResponse}
// @Failure      400      {object}  response.Response
// @Router       /orgs/{orgSlug}/tcwg/submit [post]
func (h *TcwgHandler) Submit(c *gin.Context) {
	var req struct {
		EngagementID string `json:"engagement_id" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	tasks, err := h.tcwgService.Submit(c.Request.Context(), middleware.CurrentActor(c), req.EngagementID)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, submitResponse(model.TcwgStatusReadyForReview, tasks)))
}

// Decide resolves one TCWG approval task
// @Summary      Decide TCWG approval
// @Tags         tcwg
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                 true  "Organization slug"
// @Param        payload  body      handler.DecideRequest  true  "Decision Payload"
// @Success      200      {object}  response.Response{data=approval.DecisionResult}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/tcwg/approval/decide [post]
func (h *TcwgHandler) Decide(c *gin.Context) {
	var req DecideRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	result, err := h.tcwgService.Decide(c.Request.Context(), middleware.CurrentActor(c), req.ApprovalID, req.Decision, req.Note)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, result))
}

// Send marks an approved pack as delivered to governance
// @Summary      Send TCWG pack
// @Tags         tcwg
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Param        id       path      string  true  "Engagement id"
// @Success      200      {object}  response.Response{data=model.TcwgPack}
// @Failure      409      {object}  response.Response
// @Router       /orgs/{orgSlug}/tcwg/{id}/send [post]
func (h *TcwgHandler) Send(c *gin.Context) {
	pack, err := h.tcwgService.Send(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pack))
}

// Get returns the engagement's TCWG pack
// @Summary      Get TCWG pack
// @Tags         tcwg
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug        path      string  true  "Organization slug"
// @Param        engagement_id  query     string  true  "Engagement id"
// @Success      200            {object}  response.Response{data=model.TcwgPack}
// @Failure      404            {object}  response.Response
// @Router       /orgs/{orgSlug}/tcwg [get]
func (h *TcwgHandler) Get(c *gin.Context) {
	pack, err := h.tcwgService.Get(c.Request.Context(), middleware.CurrentActor(c), c.Query("engagement_id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, pack))
}
