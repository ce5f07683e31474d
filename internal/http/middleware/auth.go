package middleware

import (
	"context"
	"slices"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/yungbote/projectdesk-backend/internal/http/response"
	"github.com/yungbote/projectdesk-backend/internal/platform/apierr"
	"github.com/yungbote/projectdesk-backend/internal/platform/ctxutil"
	"github.com/yungbote/projectdesk-backend/internal/platform/logger"
)

// Authenticator resolves an access token to a user id.
type Authenticator interface {
	Authenticate(ctx context.Context, accessToken string) (uuid.UUID, error)
}

// RoleLookup returns the stored role of an active user.
type RoleLookup interface {
	Role(ctx context.Context, id uuid.UUID) (string, error)
}

type AuthMiddleware struct {
	log   *logger.Logger
	auth  Authenticator
	roles RoleLookup
}

func NewAuthMiddleware(log *logger.Logger, auth Authenticator, roles RoleLookup) *AuthMiddleware {
	return &AuthMiddleware{log: log.With("middleware", "AuthMiddleware"), auth: auth, roles: roles}
}

func (am *AuthMiddleware) RequireAuth() gin.HandlerFunc {
	return func(c *gin.Context) {
		tokenString := extractTokenFromAll(c)
		if tokenString == "" {
			response.Abort(c, apierr.Unauthorized("unauthorized", "missing or invalid token"))
			return
		}
		userID, err := am.auth.Authenticate(c.Request.Context(), tokenString)
		if err != nil {
			response.Abort(c, err)
			return
		}
		ctx := ctxutil.WithRequestData(c.Request.Context(), &ctxutil.RequestData{
			TokenString: tokenString,
			UserID:      userID,
		})
		c.Request = c.Request.WithContext(ctx)
		c.Next()
	}
}

// RequireRole must run after RequireAuth. The role is read from the store on every call
// since tokens only carry the user id.
func (am *AuthMiddleware) RequireRole(allowed ...string) gin.HandlerFunc {
	return func(c *gin.Context) {
		rd := ctxutil.GetRequestData(c.Request.Context())
		if rd == nil || rd.UserID == uuid.Nil {
			response.Abort(c, apierr.Unauthorized("unauthorized", "not authenticated"))
			return
		}
		role, err := am.roles.Role(c.Request.Context(), rd.UserID)
		if err != nil {
			response.Abort(c, err)
			return
		}
		if !slices.Contains(allowed, role) {
			am.log.Warn("Role check failed", "user_id", rd.UserID.String(), "role", role)
			response.Abort(c, apierr.Forbidden("forbidden", "insufficient role"))
			return
		}
		rd.Role = role
		c.Next()
	}
}

func extractTokenFromAll(c *gin.Context) string {
	authHeader := c.GetHeader("Authorization")
	if len(authHeader) > 7 && strings.EqualFold(authHeader[:7], "Bearer ") {
		return strings.TrimSpace(authHeader[7:])
	}
	return strings.TrimSpace(c.Query("token"))
}
