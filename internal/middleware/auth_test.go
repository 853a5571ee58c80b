package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"auditdesk/internal/model"
	"auditdesk/internal/service"
	"auditdesk/pkg/apperr"
)

func signToken(t *testing.T, userID uuid.UUID, expiresIn time.Duration) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": userID.String(),
		"exp": time.Now().Add(expiresIn).Unix(),
	})
	signed, err := token.SignedString(GetJWTSecret())
	require.NoError(t, err)
	return signed
}

func authRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.GET("/probe", RequireAuth(), func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"user_id": CurrentUserID(c).String()})
	})
	return router
}

func TestRequireAuth_BearerToken(t *testing.T) {
	router := authRouter()
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID, time.Minute))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), userID.String())
}

func TestRequireAuth_CookieToken(t *testing.T) {
	router := authRouter()
	userID := uuid.New()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.AddCookie(&http.Cookie{Name: "access_token", Value: signToken(t, userID, time.Minute)})
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
}

func TestRequireAuth_MissingToken(t *testing.T) {
	router := authRouter()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_MalformedHeader(t *testing.T) {
	router := authRouter()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Token abc123")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_ExpiredToken(t *testing.T) {
	router := authRouter()

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), -time.Minute))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRequireAuth_NonUUIDSubject(t *testing.T) {
	router := authRouter()

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub": "not-a-uuid",
		"exp": time.Now().Add(time.Minute).Unix(),
	})
	signed, err := token.SignedString(GetJWTSecret())
	require.NoError(t, err)

	req := httptest.NewRequest(http.MethodGet, "/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signed)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusUnauthorized, w.Code)
}

// fakeOrgService resolves a single canned membership.
type fakeOrgService struct {
	org        *model.Organization
	membership *model.Membership
	resolves   int
}

func (f *fakeOrgService) Create(context.Context, uuid.UUID, service.CreateOrgDTO) (*model.Organization, error) {
	return nil, apperr.Internal("not_implemented", nil)
}

func (f *fakeOrgService) AddMember(context.Context, service.Actor, service.AddMemberDTO) (*model.Membership, error) {
	return nil, apperr.Internal("not_implemented", nil)
}

func (f *fakeOrgService) Resolve(_ context.Context, slug string, userID uuid.UUID) (*model.Organization, *model.Membership, error) {
	f.resolves++
	if f.org == nil || f.org.Slug != slug || f.membership.UserID != userID {
		return nil, nil, apperr.Forbidden("not_a_member")
	}
	return f.org, f.membership, nil
}

func orgRouter(orgs service.OrgService, minRole string) *gin.Engine {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	group := router.Group("/api/orgs/:orgSlug", RequireAuth(), OrgContext(orgs))
	handlers := gin.HandlersChain{}
	if minRole != "" {
		handlers = append(handlers, RequireMinRole(minRole))
	}
	handlers = append(handlers, func(c *gin.Context) {
		actor := CurrentActor(c)
		c.JSON(http.StatusOK, gin.H{"role": actor.Role, "org_id": actor.OrgID.String()})
	})
	group.GET("/probe", handlers...)
	return router
}

func TestOrgContext_ResolvesActor(t *testing.T) {
	ClearMembershipCache("")
	userID := uuid.New()
	orgID := uuid.New()
	fake := &fakeOrgService{
		org:        &model.Organization{ID: orgID, Slug: "north-audit"},
		membership: &model.Membership{OrgID: orgID, UserID: userID, Role: model.RoleManager},
	}
	router := orgRouter(fake, "")

	req := httptest.NewRequest(http.MethodGet, "/api/orgs/north-audit/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID, time.Minute))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), model.RoleManager)
	assert.Contains(t, w.Body.String(), orgID.String())
}

func TestOrgContext_CachesMembership(t *testing.T) {
	ClearMembershipCache("")
	userID := uuid.New()
	orgID := uuid.New()
	fake := &fakeOrgService{
		org:        &model.Organization{ID: orgID, Slug: "north-audit"},
		membership: &model.Membership{OrgID: orgID, UserID: userID, Role: model.RolePartner},
	}
	router := orgRouter(fake, "")

	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodGet, "/api/orgs/north-audit/probe", nil)
		req.Header.Set("Authorization", "Bearer "+signToken(t, userID, time.Minute))
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}

	assert.Equal(t, 1, fake.resolves, "repeat requests within the TTL hit the cache")
}

func TestOrgContext_NonMemberForbidden(t *testing.T) {
	ClearMembershipCache("")
	fake := &fakeOrgService{}
	router := orgRouter(fake, "")

	req := httptest.NewRequest(http.MethodGet, "/api/orgs/north-audit/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, uuid.New(), time.Minute))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "not_a_member")
}

func TestRequireMinRole(t *testing.T) {
	ClearMembershipCache("")
	userID := uuid.New()
	orgID := uuid.New()
	fake := &fakeOrgService{
		org:        &model.Organization{ID: orgID, Slug: "north-audit"},
		membership: &model.Membership{OrgID: orgID, UserID: userID, Role: model.RoleEmployee},
	}
	router := orgRouter(fake, model.RolePartner)

	req := httptest.NewRequest(http.MethodGet, "/api/orgs/north-audit/probe", nil)
	req.Header.Set("Authorization", "Bearer "+signToken(t, userID, time.Minute))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	assert.Equal(t, http.StatusForbidden, w.Code)
	assert.Contains(t, w.Body.String(), "insufficient_role")
}
