package response

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/sangkips/quotebuilder-api/pkg/apperror"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func render(t *testing.T, requestID string, fn func(c *gin.Context)) (*httptest.ResponseRecorder, APIResponse, *gin.Context) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)
	c.Request = httptest.NewRequest(http.MethodGet, "/", nil)
	if requestID != "" {
		c.Set("request_id", requestID)
	}
	fn(c)

	var body APIResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return w, body, c
}

func TestErrorStatusMapping(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		status     int
		retryAfter string
		logged     bool
	}{
		{"not found", apperror.NewNotFoundError("Quote"), http.StatusNotFound, "", false},
		{"state", apperror.NewStateError("Quote is not sent"), http.StatusConflict, "", false},
		{"validation", apperror.NewFieldValidationError("email", "is required"), http.StatusUnprocessableEntity, "", false},
		{"transient", apperror.NewTransientStorageError(errors.New("conn reset")), http.StatusServiceUnavailable, RetryAfterSeconds, true},
		{"unknown", errors.New("boom"), http.StatusInternalServerError, "", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, body, c := render(t, "req-7", func(c *gin.Context) { Error(c, tt.err) })

			assert.Equal(t, tt.status, w.Code)
			assert.False(t, body.Success)
			assert.Equal(t, "req-7", body.Meta.RequestID)
			assert.Equal(t, tt.retryAfter, w.Header().Get("Retry-After"))
			assert.Equal(t, tt.logged, len(c.Errors) > 0)
		})
	}
}

func TestValidationErrorListsFields(t *testing.T) {
	fields := []apperror.FieldError{{Field: "items", Message: "must contain at least 1 item"}}
	w, body, _ := render(t, "", func(c *gin.Context) { ValidationError(c, fields) })

	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Equal(t, fields, body.Errors)
	assert.NotEmpty(t, body.Meta.RequestID)
}

func TestCreatedIsSuccessful(t *testing.T) {
	w, body, _ := render(t, "", func(c *gin.Context) { Created(c, "Quote saved successfully", gin.H{"id": 1}) })

	assert.Equal(t, http.StatusCreated, w.Code)
	assert.True(t, body.Success)
	assert.Equal(t, "Quote saved successfully", body.Message)
}
