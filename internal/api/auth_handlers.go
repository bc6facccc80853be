package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/middleware"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// AuthHandlers handles authentication-related API requests
type AuthHandlers struct {
	authService *auth.Service
}

// NewAuthHandlers creates a new auth handlers instance
func NewAuthHandlers(authService *auth.Service) *AuthHandlers {
	return &AuthHandlers{
		authService: authService,
	}
}

// Login authenticates a user and issues an access token
func (h *AuthHandlers) Login(c *gin.Context) {
	var req auth.LoginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, err)
		return
	}

	resp, err := h.authService.Login(c.Request.Context(), req, c.ClientIP(), c.GetHeader("User-Agent"))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, resp)
}

// Logout revokes the caller's session
func (h *AuthHandlers) Logout(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	if err := h.authService.Logout(c.Request.Context(), principal); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Logged out"})
}

// Me returns the authenticated user and its derived role
func (h *AuthHandlers) Me(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)

	value, _ := c.Get(middleware.UserKey)
	user, _ := value.(*models.User)

	c.JSON(http.StatusOK, gin.H{
		"user": user,
		"role": principal.Role.String(),
	})
}
