package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/bahaeddinOs56/chatbot-backoffice/internal/auth"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/data"
	"github.com/bahaeddinOs56/chatbot-backoffice/internal/models"
)

func respond(t *testing.T, err error) (*httptest.ResponseRecorder, map[string]interface{}) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	RespondError(c, err)

	var body map[string]interface{}
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body
}

func TestRespondErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantStatus int
		wantCode   string
	}{
		{
			name:       "bad request error",
			err:        models.NewBadRequestError("a category cannot be its own parent"),
			wantStatus: http.StatusBadRequest,
			wantCode:   "bad_request",
		},
		{
			name:       "conflict error",
			err:        models.NewConflictError("category still has entries"),
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "forbidden error",
			err:        models.NewForbiddenError("wrong company"),
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
		},
		{
			name:       "not found",
			err:        data.ErrNotFound,
			wantStatus: http.StatusNotFound,
			wantCode:   "not_found",
		},
		{
			name:       "duplicate record",
			err:        data.ErrDuplicateRecord,
			wantStatus: http.StatusConflict,
			wantCode:   "conflict",
		},
		{
			name:       "invalid credentials",
			err:        auth.ErrInvalidCredentials,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "inactive company",
			err:        auth.ErrCompanyInactive,
			wantStatus: http.StatusForbidden,
			wantCode:   "forbidden",
		},
		{
			name:       "revoked session",
			err:        auth.ErrSessionRevoked,
			wantStatus: http.StatusUnauthorized,
			wantCode:   "unauthorized",
		},
		{
			name:       "unknown error",
			err:        errors.New("boom"),
			wantStatus: http.StatusInternalServerError,
			wantCode:   "boom",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body := respond(t, tt.err)
			assert.Equal(t, tt.wantStatus, w.Code)
			assert.Equal(t, tt.wantCode, body["error"])
		})
	}
}

func TestRespondErrorWrappedErrorsStillMap(t *testing.T) {
	w, _ := respond(t, errors.Join(errors.New("lookup qa pair"), data.ErrNotFound))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestRespondErrorValidationFields(t *testing.T) {
	err := &models.ValidationError{
		Message: "invalid input",
		Fields:  map[string]string{"question": "cannot be empty"},
	}

	w, body := respond(t, err)

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, "Validation failed", body["message"])
	fields := body["errors"].(map[string]interface{})
	assert.Equal(t, "cannot be empty", fields["question"])
}

func TestRespondErrorValidationWithoutFields(t *testing.T) {
	w, body := respond(t, models.NewValidationError("priority out of range"))

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	fields := body["errors"].(map[string]interface{})
	assert.Equal(t, "priority out of range", fields["detail"])
}

func TestNewListResponseNormalizesPage(t *testing.T) {
	resp := NewListResponse([]string{"a"}, 41, data.Page{Number: 0, PerPage: 500})

	assert.Equal(t, 1, resp.Page)
	assert.Equal(t, 41, resp.TotalCount)
	// Per-page requests are clamped to the allowed maximum.
	assert.LessOrEqual(t, resp.PerPage, 100)
	assert.Positive(t, resp.PerPage)
}
