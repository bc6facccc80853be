package api

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

// ListResponse is the pagination envelope for list endpoints.
type ListResponse struct {
	Items      interface{} `json:"items"`
	TotalCount int         `json:"total_count"`
	Page       int         `json:"page"`
	PerPage    int         `json:"per_page"`
}

// NewListResponse builds the pagination envelope
func NewListResponse(items interface{}, total int, page data.Page) ListResponse {
	page = page.Normalize()
	return ListResponse{
		Items:      items,
		TotalCount: total,
		Page:       page.Number,
		PerPage:    page.PerPage,
	}
}

// RespondError maps an error to its HTTP status and writes the error
// envelope.
func RespondError(c *gin.Context, err error) {
	var validationErr *models.ValidationError
	if errors.As(err, &validationErr) {
		body := gin.H{"message": "Validation failed", "errors": validationErr.Fields}
		if len(validationErr.Fields) == 0 {
			body["errors"] = gin.H{"detail": validationErr.Message}
		}
		c.JSON(http.StatusUnprocessableEntity, body)
		return
	}

	var bindingErrs validator.ValidationErrors
	if errors.As(err, &bindingErrs) {
		c.JSON(http.StatusUnprocessableEntity, gin.H{
			"message": "Validation failed",
			"errors":  fieldMessages(bindingErrs),
		})
		return
	}

	var badRequestErr *models.BadRequestError
	if errors.As(err, &badRequestErr) {
		c.JSON(http.StatusBadRequest, gin.H{"message": badRequestErr.Message, "error": "bad_request"})
		return
	}

	var conflictErr *models.ConflictError
	if errors.As(err, &conflictErr) {
		c.JSON(http.StatusConflict, gin.H{"message": conflictErr.Message, "error": "conflict"})
		return
	}

	var forbiddenErr *models.ForbiddenError
	if errors.As(err, &forbiddenErr) {
		c.JSON(http.StatusForbidden, gin.H{"message": forbiddenErr.Message, "error": "forbidden"})
		return
	}

	switch {
	case errors.Is(err, data.ErrNotFound):
		c.JSON(http.StatusNotFound, gin.H{"message": "Resource not found", "error": "not_found"})
	case errors.Is(err, data.ErrDuplicateRecord):
		c.JSON(http.StatusConflict, gin.H{"message": "A record with these values already exists", "error": "conflict"})
	case errors.Is(err, auth.ErrInvalidCredentials):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid email or password", "error": "unauthorized"})
	case errors.Is(err, auth.ErrCompanyInactive):
		c.JSON(http.StatusForbidden, gin.H{"message": "Company account is deactivated", "error": "forbidden"})
	case errors.Is(err, auth.ErrInvalidToken), errors.Is(err, auth.ErrSessionRevoked):
		c.JSON(http.StatusUnauthorized, gin.H{"message": "Invalid or expired token", "error": "unauthorized"})
	default:
		// Raw errors are acceptable for an internal back-office tool.
		c.JSON(http.StatusInternalServerError, gin.H{"message": "Internal server error", "error": err.Error()})
	}
}

// RespondBadRequest writes a 400 with the given message
func RespondBadRequest(c *gin.Context, message string) {
	c.JSON(http.StatusBadRequest, gin.H{"message": message, "error": "bad_request"})
}

// fieldMessages turns binding errors into per-field messages
func fieldMessages(errs validator.ValidationErrors) map[string]string {
	fields := make(map[string]string, len(errs))
	for _, fe := range errs {
		field := strings.ToLower(fe.Field())
		switch fe.Tag() {
		case "required":
			fields[field] = "This field is required"
		case "email":
			fields[field] = "Must be a valid email address"
		case "min":
			fields[field] = "Value is too short"
		case "max":
			fields[field] = "Value is too long"
		default:
			fields[field] = "Invalid value"
		}
	}
	return fields
}
