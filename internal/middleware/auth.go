package middleware

import (
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/clinichq/clinic-api/pkg/auth"

	"github.com/clinichq/clinic-api/internal/model"
	"github.com/clinichq/clinic-api/internal/repository"
)

const (
	ContextPrincipal = "principal"
	ContextToken     = "access_token"
)

type AuthMiddleware struct {
	jwtService auth.JWTService
	tokens     repository.TokenRepository
}

func NewAuthMiddleware(jwtService auth.JWTService, tokens repository.TokenRepository) *AuthMiddleware {
	return &AuthMiddleware{jwtService: jwtService, tokens: tokens}
}

// Authenticate verifies the bearer token, rejects revoked tokens, and sets
// the principal in context.
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		authHeader := c.GetHeader("Authorization")
		if authHeader == "" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "missing authorization header"})
			c.Abort()
			return
		}

		parts := strings.Split(authHeader, " ")
		if len(parts) != 2 || parts[0] != "Bearer" {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "invalid authorization format"})
			c.Abort()
			return
		}

		claims, err := m.jwtService.ValidateToken(parts[1])
		if err != nil {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "invalid token"})
			c.Abort()
			return
		}

		revoked, err := m.tokens.IsRevoked(c.Request.Context(), parts[1])
		if err != nil || revoked {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "token revoked"})
			c.Abort()
			return
		}

		c.Set(ContextPrincipal, model.Principal{UserID: claims.UserID, Role: claims.Role})
		c.Set(ContextToken, parts[1])
		c.Next()
	}
}

// RequireRoles gates a route group to the given roles.
func RequireRoles(roles ...model.Role) gin.HandlerFunc {
	return func(c *gin.Context) {
		principal, ok := GetPrincipal(c)
		if !ok {
			c.JSON(http.StatusUnauthorized, ErrorResponse{Code: http.StatusUnauthorized, Message: "not authenticated"})
			c.Abort()
			return
		}

		for _, role := range roles {
			if principal.Role == role {
				c.Next()
				return
			}
		}

		c.JSON(http.StatusForbidden, ErrorResponse{Code: http.StatusForbidden, Message: "insufficient role"})
		c.Abort()
	}
}

// GetPrincipal returns the authenticated caller from the gin context.
func GetPrincipal(c *gin.Context) (model.Principal, bool) {
	v, ok := c.Get(ContextPrincipal)
	if !ok {
		return model.Principal{}, false
	}
	principal, ok := v.(model.Principal)
	return principal, ok
}
