package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
)

// Context keys set by the auth middleware
const (
	PrincipalKey = "principal"
	UserKey      = "current_user"
)

// AuthMiddleware handles authentication checking
type AuthMiddleware struct {
	authSvc *auth.Service
}

// NewAuthMiddleware creates a new authentication middleware
func NewAuthMiddleware(authSvc *auth.Service) *AuthMiddleware {
	return &AuthMiddleware{
		authSvc: authSvc,
	}
}

// Authenticate verifies the bearer token against its session row and puts
// the principal on the request context
func (m *AuthMiddleware) Authenticate() gin.HandlerFunc {
	return func(c *gin.Context) {
		header := c.GetHeader("Authorization")
		if header == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Authorization header is missing",
			})
			return
		}

		parts := strings.Split(header, " ")
		if len(parts) != 2 || strings.ToLower(parts[0]) != "bearer" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "Invalid authorization header format",
			})
			return
		}

		principal, user, err := m.authSvc.Authenticate(c.Request.Context(), parts[1])
		if err != nil {
			switch {
			case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrSessionRevoked):
				c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
					"message": "Invalid or expired token",
				})
			case errors.Is(err, auth.ErrCompanyInactive):
				c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
					"message": "Company account is deactivated",
				})
			default:
				c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{
					"message": "Failed to validate token",
				})
			}
			return
		}

		c.Set(PrincipalKey, principal)
		c.Set(UserKey, user)

		c.Next()
	}
}

// RequireAdmin allows company admins and super admins through
func (m *AuthMiddleware) RequireAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "User not authenticated",
			})
			return
		}
		if !principal.IsAdmin() {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// RequireSuperAdmin allows only super admins through
func (m *AuthMiddleware) RequireSuperAdmin() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "User not authenticated",
			})
			return
		}
		if principal.Role != auth.RoleSuperAdmin {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "Insufficient permissions",
			})
			return
		}
		c.Next()
	}
}

// RequireCompany rejects principals that have no company of their own.
// Super admins pass only when they supply a company_id query parameter,
// which TenantCompanyID resolves.
func (m *AuthMiddleware) RequireCompany() gin.HandlerFunc {
	return func(c *gin.Context) {
		principal := PrincipalFrom(c)
		if principal == nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{
				"message": "User not authenticated",
			})
			return
		}
		if principal.Role != auth.RoleSuperAdmin && principal.CompanyID == nil {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{
				"message": "User is not assigned to a company",
			})
			return
		}
		c.Next()
	}
}

// PrincipalFrom returns the authenticated principal, or nil when the
// request is unauthenticated.
func PrincipalFrom(c *gin.Context) *auth.Principal {
	value, exists := c.Get(PrincipalKey)
	if !exists {
		return nil
	}
	principal, ok := value.(*auth.Principal)
	if !ok {
		return nil
	}
	return principal
}
