package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/middleware"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/observability"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/services"
)

// PublicHandlers serves the unauthenticated chatbot widget. Every endpoint
// requires a resolved company and only ever returns active content.
type PublicHandlers struct {
	pairs      *services.QAPairService
	categories *services.CategoryService
	appearance *services.AppearanceService
	metrics    *observability.Metrics
}

// NewPublicHandlers creates a new public handlers instance
func NewPublicHandlers(pairs *services.QAPairService, categories *services.CategoryService, appearance *services.AppearanceService, metrics *observability.Metrics) *PublicHandlers {
	return &PublicHandlers{pairs: pairs, categories: categories, appearance: appearance, metrics: metrics}
}

// PublicSearchRequest carries a widget search query
type PublicSearchRequest struct {
	Query      string     `json:"query" binding:"required"`
	CategoryID *uuid.UUID `json:"category_id"`
}

// QAPairs returns the company's active QA pairs, highest priority first
func (h *PublicHandlers) QAPairs(c *gin.Context) {
	company := middleware.PublicCompanyFrom(c)
	if company == nil {
		RespondBadRequest(c, "company not resolved")
		return
	}

	pairs, err := h.pairs.PublicList(c.Request.Context(), data.PublicQAPairQuery{
		CompanyID:  company.ID,
		CategoryID: uuidQuery(c, "category_id"),
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	h.metrics.RecordChatbotQuery("qa_pairs")
	c.JSON(http.StatusOK, gin.H{"items": pairs})
}

// Search finds the company's active QA pairs matching the query
func (h *PublicHandlers) Search(c *gin.Context) {
	company := middleware.PublicCompanyFrom(c)
	if company == nil {
		RespondBadRequest(c, "company not resolved")
		return
	}

	var in PublicSearchRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	term := strings.TrimSpace(in.Query)
	if len(term) < services.MinSearchLength {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": fmt.Sprintf("search term must be at least %d characters", services.MinSearchLength),
		})
		return
	}

	pairs, err := h.pairs.PublicList(c.Request.Context(), data.PublicQAPairQuery{
		CompanyID:  company.ID,
		CategoryID: in.CategoryID,
		Search:     term,
	})
	if err != nil {
		RespondError(c, err)
		return
	}

	h.metrics.RecordChatbotQuery("search")
	c.JSON(http.StatusOK, gin.H{"items": pairs, "total_count": len(pairs)})
}

// Categories returns the company's active categories
func (h *PublicHandlers) Categories(c *gin.Context) {
	company := middleware.PublicCompanyFrom(c)
	if company == nil {
		RespondBadRequest(c, "company not resolved")
		return
	}

	active := true
	categories, err := h.categories.List(c.Request.Context(), company.ID, data.CategoryQuery{IsActive: &active})
	if err != nil {
		RespondError(c, err)
		return
	}

	h.metrics.RecordChatbotQuery("categories")
	c.JSON(http.StatusOK, gin.H{"items": categories})
}

// Appearance returns the widget appearance settings
func (h *PublicHandlers) Appearance(c *gin.Context) {
	settings, err := h.appearance.Get(c.Request.Context())
	if err != nil {
		RespondError(c, err)
		return
	}

	h.metrics.RecordChatbotQuery("appearance")
	c.JSON(http.StatusOK, settings)
}
