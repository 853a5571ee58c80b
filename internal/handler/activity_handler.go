package handler

import (
	"net/http"

	"auditdesk/internal/middleware"
	"auditdesk/internal/service"
	"auditdesk/pkg/pagination"
	"auditdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type ActivityHandler struct {
	activityService service.ActivityService
}

func NewActivityHandler(activityService service.ActivityService) *ActivityHandler {
	return &ActivityHandler{activityService: activityService}
}

func (h *ActivityHandler) RegisterRoutes(org *gin.RouterGroup) {
	org.GET("/activity", h.List)
}

// List returns the org's activity trail, newest first
// @Summary      List activity entries
// @Tags         activity
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug      path      string  true   "Organization slug"
// @Param        entity_type  query     string  false  "Filter by entity type"
// @Param        page         query     int     false  "Page number"
// @Param        limit        query     int     false  "Page size"
// @Success      200          {object}  response.Response
// @Router       /orgs/{orgSlug}/activity [get]
func (h *ActivityHandler) List(c *gin.Context) {
	params := pagination.Parse(c)
	entries, total, err := h.activityService.List(c.Request.Context(), middleware.CurrentActor(c), c.Query("entity_type"), params.Page, params.Limit)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	c.JSON(http.StatusOK, response.Success(http.StatusOK, gin.H{
		"items": entries,
		"total": total,
		"page":  params.Page,
		"limit": params.Limit,
	}))
}
