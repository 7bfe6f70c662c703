package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/sangkips/quotebuilder-api/pkg/apperror"
	"github.com/sangkips/quotebuilder-api/pkg/pagination"
)

// APIResponse is the envelope of every JSON response
type APIResponse struct {
	Success bool                  `json:"success"`
	Message string                `json:"message"`
	Data    interface{}           `json:"data,omitempty"`
	Errors  []apperror.FieldError `json:"errors,omitempty"`
	Meta    *Meta                 `json:"meta,omitempty"`
}

// Meta contains metadata about the response
type Meta struct {
	Timestamp string `json:"timestamp"`
	RequestID string `json:"request_id"`
}

// RetryAfterSeconds is advertised on responses for transient storage failures
const RetryAfterSeconds = "2"

// newMeta prefers the request ID assigned by the logger middleware
func newMeta(c *gin.Context) *Meta {
	requestID := c.GetString("request_id")
	if requestID == "" {
		requestID = c.GetHeader("X-Request-ID")
	}
	if requestID == "" {
		requestID = uuid.New().String()
	}
	return &Meta{
		Timestamp: time.Now().UTC().Format(time.RFC3339),
		RequestID: requestID,
	}
}

func write(c *gin.Context, status int, body APIResponse) {
	body.Success = status < http.StatusBadRequest
	body.Meta = newMeta(c)
	c.JSON(status, body)
}

// Success sends a success response
func Success(c *gin.Context, statusCode int, message string, data interface{}) {
	write(c, statusCode, APIResponse{Message: message, Data: data})
}

// SuccessWithPagination sends one page of a list
func SuccessWithPagination[T any](c *gin.Context, statusCode int, message string, result *pagination.PaginatedResult[T]) {
	Success(c, statusCode, message, result)
}

// Error maps err onto its status code. Internal and transient errors are
// attached to the gin context so the request logger records them.
func Error(c *gin.Context, err error) {
	appErr := apperror.GetAppError(err)
	switch appErr.Kind {
	case apperror.KindTransient:
		c.Header("Retry-After", RetryAfterSeconds)
		fallthrough
	case apperror.KindInternal:
		_ = c.Error(err)
	}
	write(c, appErr.Code, APIResponse{Message: appErr.Message, Errors: appErr.Errors})
}

// ErrorWithCode sends an error response with a specific status code
func ErrorWithCode(c *gin.Context, statusCode int, message string) {
	write(c, statusCode, APIResponse{Message: message})
}

// ValidationError sends a 422 listing the failed fields
func ValidationError(c *gin.Context, errors []apperror.FieldError) {
	write(c, http.StatusUnprocessableEntity, APIResponse{Message: "Validation failed", Errors: errors})
}

// Created sends a 201 Created response
func Created(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusCreated, message, data)
}

// OK sends a 200 OK response
func OK(c *gin.Context, message string, data interface{}) {
	Success(c, http.StatusOK, message, data)
}

// NoContent sends a 204 No Content response
func NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// NotFound sends a 404 Not Found response
func NotFound(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusNotFound, message)
}

// Unauthorized sends a 401 Unauthorized response
func Unauthorized(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusUnauthorized, message)
}

// Forbidden sends a 403 Forbidden response
func Forbidden(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusForbidden, message)
}

// BadRequest sends a 400 Bad Request response
func BadRequest(c *gin.Context, message string) {
	ErrorWithCode(c, http.StatusBadRequest, message)
}
