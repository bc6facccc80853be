package api

import (
	"encoding/csv"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/middleware"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/services"
)

// QAPairHandlers handles QA pair management requests
type QAPairHandlers struct {
	pairs *services.QAPairService
}

// NewQAPairHandlers creates a new QA pair handlers instance
func NewQAPairHandlers(pairs *services.QAPairService) *QAPairHandlers {
	return &QAPairHandlers{pairs: pairs}
}

// SearchRequest carries an admin search query
type SearchRequest struct {
	Query      string     `json:"query"`
	CategoryID *uuid.UUID `json:"category_id"`
	TagID      *uuid.UUID `json:"tag_id"`
	IsActive   *bool      `json:"is_active"`
}

// RestoreRequest names the history entry to restore from
type RestoreRequest struct {
	HistoryID uuid.UUID `json:"history_id" binding:"required"`
}

func (h *QAPairHandlers) query(c *gin.Context, companyID uuid.UUID) data.QAPairQuery {
	return data.QAPairQuery{
		CompanyID:  companyID,
		CategoryID: uuidQuery(c, "category_id"),
		IsActive:   boolQuery(c, "is_active"),
		TagID:      uuidQuery(c, "tag_id"),
		Search:     c.Query("search"),
		Sort:       sortFromQuery(c, data.AllowedQAPairSortField),
		Page:       pageFromQuery(c),
	}
}

// List returns a page of the company's QA pairs
func (h *QAPairHandlers) List(c *gin.Context) {
	companyID, ok := middleware.TenantCompanyID(c)
	if !ok {
		RespondBadRequest(c, "tenant scope missing")
		return
	}

	q := h.query(c, companyID)
	pairs, total, err := h.pairs.List(c.Request.Context(), companyID, q)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponse(pairs, total, q.Page))
}

// Get returns one QA pair with its category and tags
func (h *QAPairHandlers) Get(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	pair, err := h.pairs.Get(c.Request.Context(), companyID, id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Create adds a QA pair
func (h *QAPairHandlers) Create(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)

	var in services.CreateQAPairInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	pair, err := h.pairs.Create(c.Request.Context(), middleware.PrincipalFrom(c), companyID, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, pair)
}

// Update modifies a QA pair, snapshotting the previous content
func (h *QAPairHandlers) Update(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var in services.UpdateQAPairInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	pair, err := h.pairs.Update(c.Request.Context(), middleware.PrincipalFrom(c), companyID, id, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Delete removes a QA pair, keeping a final history snapshot
func (h *QAPairHandlers) Delete(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.pairs.Delete(c.Request.Context(), middleware.PrincipalFrom(c), companyID, id); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "QA pair deleted"})
}

// Toggle flips a QA pair's active flag
func (h *QAPairHandlers) Toggle(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	pair, err := h.pairs.ToggleActive(c.Request.Context(), middleware.PrincipalFrom(c), companyID, id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// BulkDelete removes a batch of QA pairs in one transaction
func (h *QAPairHandlers) BulkDelete(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)

	var in services.BulkIDsInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	deleted, err := h.pairs.BulkDelete(c.Request.Context(), middleware.PrincipalFrom(c), companyID, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d QA pair(s) deleted", deleted), "deleted": deleted})
}

// BulkToggle sets the active flag on a batch of QA pairs
func (h *QAPairHandlers) BulkToggle(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)

	var in services.BulkToggleInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	updated, err := h.pairs.BulkToggle(c.Request.Context(), middleware.PrincipalFrom(c), companyID, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": fmt.Sprintf("%d QA pair(s) updated", updated), "updated": updated})
}

// BulkImport inserts a batch of QA pairs, recording the outcome in the
// import ledger. A failed import still responds with the ledger entry.
func (h *QAPairHandlers) BulkImport(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)

	var in services.BulkImportInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	imp, err := h.pairs.BulkImport(c.Request.Context(), middleware.PrincipalFrom(c), companyID, in)
	if err != nil {
		if imp != nil {
			c.JSON(http.StatusUnprocessableEntity, gin.H{"message": "Import failed", "import": imp})
			return
		}
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, imp)
}

// ListImports returns a page of the import ledger
func (h *QAPairHandlers) ListImports(c *gin.Context) {
	q := data.ImportQuery{
		ImportedBy: uuidQuery(c, "imported_by"),
		Page:       pageFromQuery(c),
	}
	if status := c.Query("status"); status != "" {
		s := models.ImportStatus(status)
		q.Status = &s
	}

	imports, total, err := h.pairs.ListImports(c.Request.Context(), q)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponse(imports, total, q.Page))
}

// GetImport returns one import ledger entry
func (h *QAPairHandlers) GetImport(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	imp, err := h.pairs.GetImport(c.Request.Context(), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, imp)
}

// History returns a QA pair's snapshots, newest first
func (h *QAPairHandlers) History(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	history, err := h.pairs.History(c.Request.Context(), companyID, id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": history})
}

// Restore copies a history snapshot back onto the QA pair
func (h *QAPairHandlers) Restore(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var in RestoreRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	pair, err := h.pairs.Restore(c.Request.Context(), middleware.PrincipalFrom(c), companyID, id, in.HistoryID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, pair)
}

// Search runs a full admin search and records it in the activity log
func (h *QAPairHandlers) Search(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)

	var in SearchRequest
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	q := data.QAPairQuery{
		CategoryID: in.CategoryID,
		TagID:      in.TagID,
		IsActive:   in.IsActive,
	}
	results, err := h.pairs.Search(c.Request.Context(), middleware.PrincipalFrom(c), companyID, in.Query, q)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"items": results, "total_count": len(results)})
}

// Export streams the company's QA pairs as a CSV download
func (h *QAPairHandlers) Export(c *gin.Context) {
	companyID, _ := middleware.TenantCompanyID(c)

	q := data.QAPairQuery{
		CategoryID: uuidQuery(c, "category_id"),
		IsActive:   boolQuery(c, "is_active"),
	}
	rows, filename, err := h.pairs.Export(c.Request.Context(), middleware.PrincipalFrom(c), companyID, q)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.Header("Content-Type", "text/csv")
	c.Header("Content-Disposition", fmt.Sprintf(`attachment; filename="%s"`, filename))
	c.Status(http.StatusOK)

	w := csv.NewWriter(c.Writer)
	if err := w.WriteAll(rows); err != nil {
		// Headers are already out; the truncated body is all we can signal.
		_ = c.Error(err)
	}
}
