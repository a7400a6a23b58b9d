package httpserver

import (
	"errors"
	"fmt"
	"net/http"

	log "github.com/sirupsen/logrus"
)

// APIError separates what the caller sees from what gets logged
type APIError struct {
	Status      int               // HTTP status
	Code        string            // Machine-readable error code
	UserMessage string            // Message returned to the caller
	LogMessage  string            // Internal message for logging
	Details     []ValidationError // Field errors, if any
	Err         error             // Underlying error
}

// Error implements the error interface
func (e *APIError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.LogMessage, e.Err)
	}
	return e.LogMessage
}

// Unwrap returns the underlying error
func (e *APIError) Unwrap() error {
	return e.Err
}

// NewUserError creates an error for caller mistakes
func NewUserError(status int, code, userMessage, logMessage string) *APIError {
	return &APIError{
		Status:      status,
		Code:        code,
		UserMessage: userMessage,
		LogMessage:  logMessage,
	}
}

// NewSystemError creates an error for failures the caller cannot fix
func NewSystemError(err error, logMessage string) *APIError {
	return &APIError{
		Status:      http.StatusInternalServerError,
		Code:        "internal_error",
		UserMessage: "Something went wrong. Please try again later.",
		LogMessage:  logMessage,
		Err:         err,
	}
}

type errorBody struct {
	Error   string            `json:"error"`
	Message string            `json:"message"`
	Details []ValidationError `json:"details,omitempty"`
}

// writeError logs err and writes its public form
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var apiErr *APIError
	if !errors.As(err, &apiErr) {
		apiErr = NewSystemError(err, "unhandled error")
	}

	fields := log.Fields{
		"status": apiErr.Status,
		"code":   apiErr.Code,
		"path":   r.URL.Path,
	}
	if apiErr.Err != nil {
		fields["error"] = apiErr.Err
	}
	if apiErr.Status >= http.StatusInternalServerError {
		log.WithFields(fields).Error(apiErr.LogMessage)
	} else {
		log.WithFields(fields).Debug(apiErr.LogMessage)
	}

	writeJSON(w, apiErr.Status, errorBody{
		Error:   apiErr.Code,
		Message: apiErr.UserMessage,
		Details: apiErr.Details,
	})
}
