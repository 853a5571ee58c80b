package handler

import (
	"net/http"

	"auditdesk/internal/middleware"
	"auditdesk/internal/service"
	"auditdesk/pkg/pagination"
	"auditdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type EngagementHandler struct {
	engagementService service.EngagementService
}

func NewEngagementHandler(engagementService service.EngagementService) *EngagementHandler {
	return &EngagementHandler{engagementService: engagementService}
}

func (h *EngagementHandler) RegisterRoutes(org *gin.RouterGroup) {
	engagements := org.Group("/engagements")
	{
		engagements.POST("", h.Create)
		engagements.GET("", h.List)
		engagements.GET("/:id", h.Get)
		engagements.PUT("/:id/eqr", h.SetEQRRequired)
	}
}

// Create opens a new engagement
// @Summary      Create engagement
// @Tags         engagements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                       true  "Organization slug"
// @Param        payload  body      service.CreateEngagementDTO  true  "Create Engagement Payload"
// @Success      201      {object}  response.Response{data=model.Engagement}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /orgs/{orgSlug}/engagements [post]
func (h *EngagementHandler) Create(c *gin.Context) {
	var req service.CreateEngagementDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	engagement, err := h.engagementService.Create(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, engagement))
}

// List returns the org's engagements, paginated
// @Summary      List engagements
// @Tags         engagements
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true   "Organization slug"
// @Param        page     query     int     false  "Page number"
// @Param        limit    query     int     false  "Page size"
// @Success      200      {object}  response.Response
// @Router       /orgs/{orgSlug}/engagements [get]
func (h *EngagementHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	engagements, total, err := h.engagementService.List(c.Request.Context(), middleware.CurrentActor(c), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": engagements,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}

// Get returns one engagement
// @Summary      Get engagement
// @Tags         engagements
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Param        id       path      string  true  "Engagement id"
// @Success      200      {object}  response.Response{data=model.Engagement}
// @Failure      404      {object}  response.Response
// @Router       /orgs/{orgSlug}/engagements/{id} [get]
func (h *EngagementHandler) Get(c *gin.Context) {
	engagement, err := h.engagementService.Get(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"))
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, engagement))
}

// SetEQRRequired flips the engagement's EQR requirement
// @Summary      Set EQR requirement
// @Description  Partner-only. In-flight review rounds keep their snapshotted stage set.
// @Tags         engagements
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string  true  "Organization slug"
// @Param        id       path      string  true  "Engagement id"
// @Success      200      {object}  response.Response{data=model.Engagement}
// @Failure      403      {object}  response.Response
// @Router       /orgs/{orgSlug}/engagements/{id}/eqr [put]
func (h *EngagementHandler) SetEQRRequired(c *gin.Context) {
	var req struct {
		Required bool `json:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	engagement, err := h.engagementService.SetEQRRequired(c.Request.Context(), middleware.CurrentActor(c), c.Param("id"), req.Required)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusOK, response.Success(http.StatusOK, engagement))
}
