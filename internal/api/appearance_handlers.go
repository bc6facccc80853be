package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/middleware"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/services"
)

// AppearanceHandlers handles chat widget appearance requests
type AppearanceHandlers struct {
	appearance *services.AppearanceService
}

// NewAppearanceHandlers creates a new appearance handlers instance
func NewAppearanceHandlers(appearance *services.AppearanceService) *AppearanceHandlers {
	return &AppearanceHandlers{appearance: appearance}
}

// Get returns the widget appearance settings
func (h *AppearanceHandlers) Get(c *gin.Context) {
	settings, err := h.appearance.Get(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}

// Update modifies the widget appearance settings
func (h *AppearanceHandlers) Update(c *gin.Context) {
	var in services.UpdateAppearanceInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	settings, err := h.appearance.Update(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, settings)
}
