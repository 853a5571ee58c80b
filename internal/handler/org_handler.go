package handler

import (
	"net/http"

	"auditdesk/internal/middleware"
	"auditdesk/internal/service"
	"auditdesk/pkg/response"

	"github.com/gin-gonic/gin"
)

type OrgHandler struct {
	orgService service.OrgService
}

func NewOrgHandler(orgService service.OrgService) *OrgHandler {
	return &OrgHandler{orgService: orgService}
}

// RegisterRoutes binds the unscoped org creation route
func (h *OrgHandler) RegisterRoutes(router *gin.RouterGroup) {
	router.POST("/orgs", middleware.RequireAuth(), h.CreateOrg)
}

// RegisterOrgRoutes binds member administration under the org-scoped group
func (h *OrgHandler) RegisterOrgRoutes(org *gin.RouterGroup) {
	org.POST("/members", h.AddMember)
}

// CreateOrg creates an organization with the caller as founding partner
// @Summary      Create organization
// @Tags         orgs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        payload  body      service.CreateOrgDTO  true  "Create Org Payload"
// @Success      201      {object}  response.Response{data=model.Organization}
// @Failure      400      {object}  response.Response
// @Failure      409      {object}  response.Response
// @Router       /orgs [post]
func (h *OrgHandler) CreateOrg(c *gin.Context) {
	var req service.CreateOrgDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	org, err := h.orgService.Create(c.Request.Context(), middleware.CurrentUserID(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, org))
}

// AddMember adds a user to the organization
// @Summary      Add member
// @Tags         orgs
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        orgSlug  path      string                true  "Organization slug"
// @Param        payload  body      service.AddMemberDTO  true  "Add Member Payload"
// @Success      201      {object}  response.Response{data=model.Membership}
// @Failure      400      {object}  response.Response
// @Failure      403      {object}  response.Response
// @Router       /orgs/{orgSlug}/members [post]
func (h *OrgHandler) AddMember(c *gin.Context) {
	var req service.AddMemberDTO
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "invalid_payload"))
		return
	}

	membership, err := h.orgService.AddMember(c.Request.Context(), middleware.CurrentActor(c), req)
	if err != nil {
		c.JSON(response.FromError(err))
		return
	}

	// New memberships must be visible on the next request.
	middleware.ClearMembershipCache(c.Param("orgSlug") + ":" + req.UserID)
	c.JSON(http.StatusCreated, response.Success(http.StatusCreated, membership))
}
