package api

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/middleware"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/services"
)

// UserHandlers handles user management requests
type UserHandlers struct {
	users *services.UserService
}

// NewUserHandlers creates a new user handlers instance
func NewUserHandlers(users *services.UserService) *UserHandlers {
	return &UserHandlers{users: users}
}

// List returns users visible to the caller
func (h *UserHandlers) List(c *gin.Context) {
	q := data.UserQuery{
		CompanyID: uuidQuery(c, "company_id"),
		IsAdmin:   boolQuery(c, "is_admin"),
		Search:    c.Query("search"),
		Sort:      sortFromQuery(c, data.AllowedUserSortField),
		Page:      pageFromQuery(c),
	}

	users, total, err := h.users.List(c.Request.Context(), middleware.PrincipalFrom(c), q)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, NewListResponse(users, total, q.Page))
}

// Get returns one user
func (h *UserHandlers) Get(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.Get(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// Create adds a user
func (h *UserHandlers) Create(c *gin.Context) {
	var in services.CreateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	user, err := h.users.Create(c.Request.Context(), middleware.PrincipalFrom(c), in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, user)
}

// Update modifies a user
func (h *UserHandlers) Update(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var in services.UpdateUserInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	user, err := h.users.Update(c.Request.Context(), middleware.PrincipalFrom(c), id, in)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ToggleAdmin flips a user's admin flag
func (h *UserHandlers) ToggleAdmin(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	user, err := h.users.ToggleAdmin(c.Request.Context(), middleware.PrincipalFrom(c), id)
	if err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, user)
}

// ResetPassword sets a new password for a user
func (h *UserHandlers) ResetPassword(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	var in services.ResetPasswordInput
	if err := c.ShouldBindJSON(&in); err != nil {
		RespondError(c, err)
		return
	}

	if err := h.users.ResetPassword(c.Request.Context(), middleware.PrincipalFrom(c), id, in); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "Password reset"})
}

// Delete removes a user
func (h *UserHandlers) Delete(c *gin.Context) {
	id, ok := paramUUID(c, "id")
	if !ok {
		return
	}

	if err := h.users.Delete(c.Request.Context(), middleware.PrincipalFrom(c), id); err != nil {
		RespondError(c, err)
		return
	}

	c.JSON(http.StatusOK, gin.H{"message": "User deleted"})
}
