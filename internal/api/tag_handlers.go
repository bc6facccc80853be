package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/middleware"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/services"
)

// TagHandlers handles tag management requests. Tags are global and shared
// across companies.
type TagHandlers struct {
	tags *services.TagService
}

// NewTagHandlers creates a new tag handlers instance
func NewTagHandlers(tags *services.TagService) *TagHandlers {
	return &TagHandlers{tags: tags}
}

// List returns all tags with usage counts
func (h *TagHandlers) List(c *gin.Context) {
	tags, err := h.tags.List(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": tags})
}

// Get returns one tag
func (h *TagHandlers) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	tag, err := h.tags.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tag)
}

// QAPairs returns the caller's company's QA pairs carrying the tag
func (h *TagHandlers) QAPairs(c *gin.Context) {
	companyID, ok := middleware.TenantCompanyID(c)
	if !ok {
		RespondBadRequest(c, "tenant scope missing")
		return
	}
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	pairs, err := h.tags.QAPairs(c.Request.Context(), companyID, id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": pairs})
}

// Create adds a tag
func (h *TagHandlers) Create(c *gin.Context) {
	var in services.TagInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	tag, err := h.tags.Create(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, tag)
}

// Update renames a tag
func (h *TagHandlers) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var in services.TagInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	tag, err := h.tags.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, tag)
}

// Delete removes a tag and detaches it from every QA pair
func (h *TagHandlers) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.tags.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Tag deleted"})
}
