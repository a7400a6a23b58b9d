package httpserver

import (
	"errors"
	"net/http"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// ValidationError describes one invalid field
type ValidationError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type startRequest struct {
	Mode string `json:"mode" validate:"omitempty,max=32"`
}

type guessRequest struct {
	Guess guessValue `json:"guess" validate:"required,max=32"`
}

type historyQuery struct {
	Limit int `validate:"min=1,max=100"`
}

// guessValue accepts both "42" and 42 so the engine sees the raw text either way
type guessValue string

func (g *guessValue) UnmarshalJSON(data []byte) error {
	text := strings.TrimSpace(string(data))
	if unquoted, err := strconv.Unquote(text); err == nil {
		*g = guessValue(unquoted)
		return nil
	}
	if text == "null" {
		*g = ""
		return nil
	}
	*g = guessValue(text)
	return nil
}

// validateRequest runs struct validation and converts failures to a 422
func validateRequest(v any) error {
	err := validate.Struct(v)
	if err == nil {
		return nil
	}
	apiErr := NewUserError(http.StatusUnprocessableEntity, "validation_failed", "Request validation failed.", err.Error())
	apiErr.Details = FormatValidationErrors(err)
	return apiErr
}

// FormatValidationErrors converts validator errors to caller-facing messages
func FormatValidationErrors(err error) []ValidationError {
	var out []ValidationError

	var validationErrors validator.ValidationErrors
	if !errors.As(err, &validationErrors) {
		return out
	}

	for _, fieldError := range validationErrors {
		field := strings.ToLower(fieldError.Field())
		var message string
		switch fieldError.Tag() {
		case "required":
			message = field + " is required"
		case "max":
			if fieldError.Kind() == reflect.String {
				message = field + " must be at most " + fieldError.Param() + " characters"
			} else {
				message = field + " must be at most " + fieldError.Param()
			}
		case "min":
			message = field + " must be at least " + fieldError.Param()
		default:
			message = field + " is invalid"
		}
		out = append(out, ValidationError{Field: field, Message: message})
	}
	return out
}
