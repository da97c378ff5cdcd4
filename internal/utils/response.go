package utils

import (
	"encoding/json"
	"errors"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
)

const defaultSuccessMessage = "Operation completed successfully"

// ValidationError is a bad-input error raised before any upstream call.
type ValidationError struct {
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

// NewValidationError returns a *ValidationError as an error.
func NewValidationError(msg string) error {
	return &ValidationError{Message: msg}
}

func timestamp() string {
	return time.Now().UTC().Format(time.RFC3339Nano)
}

// SuccessBody builds the standard success envelope.
func SuccessBody(data any, message string) gin.H {
	if message == "" {
		message = defaultSuccessMessage
	}
	return gin.H{
		"status":    "success",
		"message":   message,
		"data":      data,
		"timestamp": timestamp(),
	}
}

// ErrorBody builds the standard error envelope.
func ErrorBody(message string) gin.H {
	return gin.H{
		"status":    "error",
		"error":     message,
		"timestamp": timestamp(),
	}
}

// Success writes the success envelope with the given status code.
func Success(c *gin.Context, status int, data any, message string) {
	c.JSON(status, SuccessBody(data, message))
}

// HandleAPIError logs err and writes the error envelope with a status derived from it.
func HandleAPIError(c *gin.Context, err error, context string) {
	log.Printf("%s Error: %v", context, err)
	msg := ExtractErrorMessage(err.Error())
	c.JSON(StatusForError(err, msg), ErrorBody(msg))
}

// ExtractErrorMessage turns a JSON error object into a readable message.
// Non-JSON input is returned as is.
func ExtractErrorMessage(msg string) string {
	trimmed := strings.TrimSpace(msg)
	if !strings.HasPrefix(trimmed, "{") {
		return msg
	}
	var obj map[string]any
	if err := json.Unmarshal([]byte(trimmed), &obj); err != nil {
		return msg
	}

	for _, key := range []string{"password", "email"} {
		if list, ok := obj[key].([]any); ok && len(list) > 0 {
			if s, ok := list[0].(string); ok {
				return s
			}
		}
	}
	for _, key := range []string{"detail", "message", "error"} {
		if s, ok := obj[key].(string); ok && s != "" {
			return s
		}
	}

	// encoding/json loses key order, so pick the first string in sorted key order.
	keys := make([]string, 0, len(obj))
	for k := range obj {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, k := range keys {
		if s, ok := obj[k].(string); ok {
			return s
		}
	}
	return "Validation error"
}

// StatusForError maps an error to an HTTP status code.
func StatusForError(err error, msg string) int {
	var verr *ValidationError
	if errors.As(err, &verr) {
		return http.StatusBadRequest
	}
	return StatusForMessage(msg)
}

// StatusForMessage classifies an error message by its wording.
func StatusForMessage(msg string) int {
	switch {
	case strings.Contains(msg, "already exists"):
		return http.StatusConflict
	case containsAny(msg, "Missing required fields", "must be", "required", "too commonly used", "Password is too"):
		return http.StatusBadRequest
	case containsAny(msg, "not found", "does not exist"):
		return http.StatusNotFound
	case containsAny(msg, "unauthorized", "Unauthorized"):
		return http.StatusUnauthorized
	case containsAny(msg, "forbidden", "Forbidden"):
		return http.StatusForbidden
	}
	return http.StatusInternalServerError
}

func containsAny(s string, subs ...string) bool {
	for _, sub := range subs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
