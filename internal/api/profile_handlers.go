package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/middleware"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/services"
)

// ProfileHandlers handles self-service profile requests
type ProfileHandlers struct {
	profile *services.ProfileService
}

// NewProfileHandlers creates a new profile handlers instance
func NewProfileHandlers(profile *services.ProfileService) *ProfileHandlers {
	return &ProfileHandlers{profile: profile}
}

// Get returns the caller's own profile
func (h *ProfileHandlers) Get(c *gin.Context) {
	user, err := h.profile.Get(c.Request.Context(), middleware.PrincipalFrom(c))
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Update modifies the caller's own name or email
func (h *ProfileHandlers) Update(c *gin.Context) {
	var in services.UpdateProfileInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	user, err := h.profile.Update(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ChangePassword sets a new password after verifying the current one
func (h *ProfileHandlers) ChangePassword(c *gin.Context) {
	var in services.ChangePasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	if err := h.profile.ChangePassword(c.Request.Context(), middleware.PrincipalFrom(c), in); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password changed"})
}
