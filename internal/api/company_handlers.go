package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/middleware"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/services"
)

// CompanyHandlers handles company management requests. All routes are
// super-admin only.
type CompanyHandlers struct {
	companies *services.CompanyService
}

// NewCompanyHandlers creates a new company handlers instance
func NewCompanyHandlers(companies *services.CompanyService) *CompanyHandlers {
	return &CompanyHandlers{companies: companies}
}

// List returns companies with user counts
func (h *CompanyHandlers) List(c *gin.Context) {
	q := data.CompanyQuery{
		IsActive: boolQuery(c, "is_active"),
		Search:   c.Query("search"),
		Sort:     sortFromQuery(c, func(f string) bool { return f == "name" || f == "created_at" }),
		Page:     pageFromQuery(c),
	}

	companies, total, err := h.companies.List(c.Request.Context(), q)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponse(companies, total, q.Page))
}

// Get returns one company
func (h *CompanyHandlers) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	company, err := h.companies.Get(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

// Create provisions a company with its first admin
func (h *CompanyHandlers) Create(c *gin.Context) {
	var in services.CreateCompanyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	company, err := h.companies.Create(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, company)
}

// Update modifies a company
func (h *CompanyHandlers) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var in services.UpdateCompanyInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	company, err := h.companies.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

// Toggle flips a company's active flag
func (h *CompanyHandlers) Toggle(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	company, err := h.companies.ToggleActive(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, company)
}

// Delete removes a company without users
func (h *CompanyHandlers) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.companies.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Company deleted"})
}
