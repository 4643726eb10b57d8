package handlers

import (
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/go-playground/validator/v10"
	"github.com/taskhive/taskhive-api/internal/response"
)

// bindJSON binds the request body and writes a field-level 400 on failure.
// Returns false when the response has already been written.
func bindJSON(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		var validationErrs validator.ValidationErrors
		if errors.As(err, &validationErrs) {
			messages := make([]string, len(validationErrs))
			for i, fieldErr := range validationErrs {
				messages[i] = fieldErrorMessage(fieldErr)
			}
			response.BadRequestWithErrors(c, "Validation failed", messages)
		} else {
			response.BadRequest(c, "Invalid request body")
		}
		return false
	}
	return true
}

func fieldErrorMessage(fieldErr validator.FieldError) string {
	field := strings.ToLower(fieldErr.Field())
	switch fieldErr.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "email":
		return fmt.Sprintf("%s must be a valid email address", field)
	case "min":
		return fmt.Sprintf("%s must be at least %s characters", field, fieldErr.Param())
	case "max":
		return fmt.Sprintf("%s must be at most %s characters", field, fieldErr.Param())
	default:
		return fmt.Sprintf("%s is invalid", field)
	}
}

// parseIDParam reads the :id URL parameter. Returns false when the
// response has already been written.
func parseIDParam(c *gin.Context, name string) (uint64, bool) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		response.BadRequest(c, fmt.Sprintf("Invalid %s ID", name))
		return 0, false
	}
	return id, true
}
