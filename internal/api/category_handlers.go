package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/middleware"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/services"
)

// CategoryHandlers handles category management requests
type CategoryHandlers struct {
	categories *services.CategoryService
}

// NewCategoryHandlers creates a new category handlers instance
func NewCategoryHandlers(categories *services.CategoryService) *CategoryHandlers {
	return &CategoryHandlers{categories: categories}
}

// List returns the company's categories with QA pair counts
func (h *CategoryHandlers) List(c *gin.Context) {
	companyID, ok := middleware.TenantCompanyID(c)
	if !ok {
		RespondBadRequest(c, "tenant scope missing")
		return
	}

	q := data.CategoryQuery{
		IsActive:     boolQuery(c, "is_active"),
		ParentID:     uuidQuery(c, "parent_id"),
		RootOnly:     c.Query("root_only") == "true",
		WithChildren: c.Query("with_children") == "true",
	}

	categories, err := h.categories.List(c.Request.Context(), companyID, q)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": categories})
}

// Tree returns the category hierarchy
func (h *CategoryHandlers) Tree(c *gin.Context) {
	companyID, ok := middleware.TenantCompanyID(c)
	if !ok {
		RespondBadRequest(c, "tenant scope missing")
		return
	}

	tree, err := h.categories.Tree(c.Request.Context(), companyID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": tree})
}

// Get returns one category
func (h *CategoryHandlers) Get(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	category, err := h.categories.Get(c.Request.Context(), companyID, id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// Create adds a category
func (h *CategoryHandlers) Create(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)

	var in services.CreateCategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	category, err := h.categories.Create(c.Request.Context(), middleware.PrincipalFrom(c), companyID, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, category)
}

// Update modifies a category
func (h *CategoryHandlers) Update(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var in services.UpdateCategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	category, err := h.categories.Update(c.Request.Context(), middleware.PrincipalFrom(c), companyID, id, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// Move reparents a category
func (h *CategoryHandlers) Move(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var in services.MoveCategoryInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	category, err := h.categories.Move(c.Request.Context(), middleware.PrincipalFrom(c), companyID, id, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// Toggle flips a category's active flag
func (h *CategoryHandlers) Toggle(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	category, err := h.categories.ToggleActive(c.Request.Context(), middleware.PrincipalFrom(c), companyID, id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, category)
}

// Delete removes an empty category
func (h *CategoryHandlers) Delete(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.categories.Delete(c.Request.Context(), middleware.PrincipalFrom(c), companyID, id); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Category deleted"})
}
