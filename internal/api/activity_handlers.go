package api

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-pg/pg/v10/orm"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/activity"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/middleware"
)

// ActivityHandlers handles activity log requests. Company admins only see
// their own company's rows; super admins see everything and may narrow to
// one company with the company_id query parameter.
type ActivityHandlers struct {
	db         orm.DB
	activities *activity.Service
}

// NewActivityHandlers creates a new activity handlers instance
func NewActivityHandlers(db orm.DB, activities *activity.Service) *ActivityHandlers {
	return &ActivityHandlers{db: db, activities: activities}
}

func (h *ActivityHandlers) queryFrom(c *gin.Context, principal *auth.Principal) activity.Query {
	q := activity.Query{
		UserID:     uuidQuery(c, "user_id"),
		Action:     c.Query("action"),
		EntityType: c.Query("entity_type"),
		Page:       pageFromQuery(c),
	}
	if principal.Role == auth.RoleSuperAdmin {
		q.CompanyID = uuidQuery(c, "company_id")
	} else {
		q.CompanyID = principal.CompanyID
	}
	if from, err := time.Parse(time.RFC3339, c.Query("from")); err == nil {
		q.From = &from
	}
	if to, err := time.Parse(time.RFC3339, c.Query("to")); err == nil {
		q.To = &to
	}
	return q
}

// List returns a page of activity rows, newest first
func (h *ActivityHandlers) List(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	q := h.queryFrom(c, principal)

	activities, total, err := h.activities.List(c.Request.Context(), h.db, q)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponse(activities, total, q.Page))
}

// Statistics returns aggregate counts over the activity log
func (h *ActivityHandlers) Statistics(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	q := h.queryFrom(c, principal)

	stats, err := h.activities.Statistics(c.Request.Context(), h.db, q)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, stats)
}

// Get returns one activity row
func (h *ActivityHandlers) Get(c *gin.Context) {
	principal := middleware.PrincipalFrom(c)
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var companyID = principal.CompanyID
	if principal.Role == auth.RoleSuperAdmin {
		companyID = nil
	}

	entry, err := h.activities.Get(c.Request.Context(), h.db, id, companyID)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, entry)
}
