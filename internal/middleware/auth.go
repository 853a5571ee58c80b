package middleware

import (
	"net/http"
	"os"
	"strings"
	"sync"
	"time"

	"auditdesk/internal/model"
	"auditdesk/internal/service"
	"auditdesk/pkg/apperr"
	"auditdesk/pkg/response"

	"github.com/gin-gonic/gin"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

func GetJWTSecret() []byte {
	secret := os.Getenv("JWT_SECRET")
	if secret == "" {
		if os.Getenv("GIN_MODE") == "release" {
			panic("FATAL: JWT_SECRET environment variable is required in production mode")
		}
		secret = "default_super_secret_key" // Development fallback only — DO NOT use in production
	}
	return []byte(secret)
}

// SetTokenCookies sets access_token and refresh_token as HttpOnly cookies
func SetTokenCookies(c *gin.Context, accessToken, refreshToken string) {
	// Production (cross-origin): SameSiteNoneMode + Secure=true
	// Development (same-site):   SameSiteLaxMode  + Secure=false
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	// access_token: 24h, path=/, domain="", secure, HttpOnly
	c.SetCookie("access_token", accessToken, 3600*24, "/", "", secure, true)
	// refresh_token: 30 days, path=/, domain="", secure, HttpOnly
	c.SetCookie("refresh_token", refreshToken, 3600*24*30, "/", "", secure, true)
}

// ClearTokenCookies removes access_token and refresh_token cookies
func ClearTokenCookies(c *gin.Context) {
	sameSite := http.SameSiteLaxMode
	secure := false
	if os.Getenv("GIN_MODE") == "release" || os.Getenv("RENDER") != "" {
		sameSite = http.SameSiteNoneMode
		secure = true
	}

	c.SetSameSite(sameSite)
	c.SetCookie("access_token", "", -1, "/", "", secure, true)
	c.SetCookie("refresh_token", "", -1, "/", "", secure, true)
}

// RequireAuth validates the JWT token and stores the caller's user id on the
// context. Role resolution happens per-org in OrgContext, never from the token.
func RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		// Try cookie first, fallback to Authorization header
		tokenString, cookieErr := c.Cookie("access_token")
		if cookieErr != nil || tokenString == "" {
			authHeader := c.GetHeader("Authorization")
			if authHeader == "" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
				return
			}

			parts := strings.Split(authHeader, " ")
			if len(parts) != 2 || parts[0] != "Bearer" {
				c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid authorization format. Expected 'Bearer <token>'"))
				return
			}
			tokenString = parts[1]
		}

		token, err := jwt.Parse(tokenString, func(token *jwt.Token) (interface{}, error) {
			if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
				return nil, jwt.ErrSignatureInvalid
			}
			return GetJWTSecret(), nil
		})

		if err != nil || !token.Valid {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token"))
			return
		}

		claims, ok := token.Claims.(jwt.MapClaims)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		sub, ok := claims["sub"].(string)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}
		userID, err := uuid.Parse(sub)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Invalid token claims"))
			return
		}

		c.Set("userID", userID)
		c.Next()
	}
}

// --- Org-scoped context ---

// membershipCacheEntry stores a resolved (org, membership) pair with TTL.
// Role changes take up to the TTL to propagate to in-flight sessions.
type membershipCacheEntry struct {
	actor     service.Actor
	expiresAt time.Time
}

var (
	membershipCache    sync.Map // "slug:userID" -> membershipCacheEntry
	membershipCacheTTL = 5 * time.Minute
)

// ClearMembershipCache removes cached memberships, for all users when key is empty
func ClearMembershipCache(key string) {
	if key == "" {
		membershipCache.Range(func(k, _ interface{}) bool {
			membershipCache.Delete(k)
			return true
		})
	} else {
		membershipCache.Delete(key)
	}
}

// OrgContext resolves the :orgSlug route param into the caller's Actor: the
// org, the membership role, and the EQR reviewer designation. Runs after
// RequireAuth on every org-scoped route.
func OrgContext(orgs service.OrgService) gin.HandlerFunc {
	return func(c *gin.Context) {
		userID, ok := c.MustGet("userID").(uuid.UUID)
		if !ok {
			c.AbortWithStatusJSON(http.StatusUnauthorized, response.Error(http.StatusUnauthorized, "Authorization is missing"))
			return
		}

		slug := c.Param("orgSlug")
		if slug == "" {
			c.AbortWithStatusJSON(http.StatusBadRequest, response.Error(http.StatusBadRequest, "organization_not_found"))
			return
		}

		cacheKey := slug + ":" + userID.String()
		if entry, found := membershipCache.Load(cacheKey); found {
			cached := entry.(membershipCacheEntry)
			if time.Now().Before(cached.expiresAt) {
				c.Set("actor", cached.actor)
				c.Next()
				return
			}
		}

		org, membership, err := orgs.Resolve(c.Request.Context(), slug, userID)
		if err != nil {
			c.AbortWithStatusJSON(response.FromError(err))
			return
		}

		actor := service.Actor{
			UserID:      userID,
			OrgID:       org.ID,
			Role:        membership.Role,
			EQRReviewer: membership.IsEQRReviewer,
		}
		membershipCache.Store(cacheKey, membershipCacheEntry{
			actor:     actor,
			expiresAt: time.Now().Add(membershipCacheTTL),
		})

		c.Set("actor", actor)
		c.Next()
	}
}

// RequireMinRole gates a route on the caller's org role rank. Runs after
// OrgContext.
func RequireMinRole(min string) gin.HandlerFunc {
	return func(c *gin.Context) {
		actor, ok := c.MustGet("actor").(service.Actor)
		if !ok {
			c.AbortWithStatusJSON(http.StatusForbidden, response.Error(http.StatusForbidden, "not_a_member"))
			return
		}
		if !model.RoleAtLeast(actor.Role, min) {
			c.AbortWithStatusJSON(response.FromError(apperr.Forbidden("insufficient_role")))
			return
		}
		c.Next()
	}
}

// CurrentActor extracts the resolved Actor set by OrgContext
func CurrentActor(c *gin.Context) service.Actor {
	actor, _ := c.Get("actor")
	a, _ := actor.(service.Actor)
	return a
}

// CurrentUserID extracts the authenticated user id set by RequireAuth
func CurrentUserID(c *gin.Context) uuid.UUID {
	v, _ := c.Get("userID")
	id, _ := v.(uuid.UUID)
	return id
}
