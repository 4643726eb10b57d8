package response

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIResponse is the success envelope returned by every endpoint.
type APIResponse struct {
	StatusCode int    `json:"statusCode"`
	Data       any    `json:"data"`
	Message    string `json:"message"`
}

// APIError is the error envelope returned by every endpoint.
type APIError struct {
	StatusCode int    `json:"statusCode"`
	Message    string `json:"message"`
	Errors     any    `json:"errors,omitempty"`
}

// Error implements the error interface
func (e *APIError) Error() string {
	return e.Message
}

// Respond sends a success envelope with the given status code
func Respond(c *gin.Context, statusCode int, data any, message string) {
	c.JSON(statusCode, APIResponse{
		StatusCode: statusCode,
		Data:       data,
		Message:    message,
	})
}

// OK sends a 200 success envelope
func OK(c *gin.Context, data any, message string) {
	Respond(c, http.StatusOK, data, message)
}

// Created sends a 201 success envelope
func Created(c *gin.Context, data any, message string) {
	Respond(c, http.StatusCreated, data, message)
}

// RespondWithError sends an error envelope
func RespondWithError(c *gin.Context, statusCode int, message string, errs any) {
	c.JSON(statusCode, APIError{
		StatusCode: statusCode,
		Message:    message,
		Errors:     errs,
	})
}

// BadRequest sends a 400 response
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	RespondWithError(c, http.StatusBadRequest, message, nil)
}

// BadRequestWithErrors sends a 400 response carrying field-level messages
func BadRequestWithErrors(c *gin.Context, message string, errs any) {
	RespondWithError(c, http.StatusBadRequest, message, errs)
}

// Unauthorized sends a 401 response
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	RespondWithError(c, http.StatusUnauthorized, message, nil)
}

// Forbidden sends a 403 response
func Forbidden(c *gin.Context, message string) {
	if message == "" {
		message = "Access denied"
	}
	RespondWithError(c, http.StatusForbidden, message, nil)
}

// NotFound sends a 404 response
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Resource not found"
	}
	RespondWithError(c, http.StatusNotFound, message, nil)
}

// Conflict sends a 409 response
func Conflict(c *gin.Context, message string) {
	if message == "" {
		message = "Resource conflict"
	}
	RespondWithError(c, http.StatusConflict, message, nil)
}

// InternalError sends a 500 response
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	RespondWithError(c, http.StatusInternalServerError, message, nil)
}

// ServiceUnavailable sends a 503 response
func ServiceUnavailable(c *gin.Context, message string) {
	if message == "" {
		message = "Service temporarily unavailable"
	}
	RespondWithError(c, http.StatusServiceUnavailable, message, nil)
}
