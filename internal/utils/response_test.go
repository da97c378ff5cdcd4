package utils

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
)

func TestExtractErrorMessage(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"plain failure", "plain failure"},
		{`{"password":["Password is too short"]}`, "Password is too short"},
		{`{"email":["Email already exists"],"detail":"x"}`, "Email already exists"},
		{`{"detail":"Doctor not found"}`, "Doctor not found"},
		{`{"message":"boom"}`, "boom"},
		{`{"error":"bad"}`, "bad"},
		{`{"code":42,"reason":"weird"}`, "weird"},
		{`{"code":42}`, "Validation error"},
		{`{not json`, "{not json"},
	}
	for _, tt := range tests {
		if got := ExtractErrorMessage(tt.in); got != tt.want {
			t.Errorf("ExtractErrorMessage(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestStatusForMessage(t *testing.T) {
	tests := []struct {
		msg  string
		want int
	}{
		{"User already exists", http.StatusConflict},
		{"Missing required fields: orgId, userId, role", http.StatusBadRequest},
		{"Doctor ID must be at least 3 characters long", http.StatusBadRequest},
		{"Doctor ID is required", http.StatusBadRequest},
		{"This password is too commonly used", http.StatusBadRequest},
		{"Password is too short", http.StatusBadRequest},
		{"Doctor not found", http.StatusNotFound},
		{"Org does not exist", http.StatusNotFound},
		{"Unauthorized", http.StatusUnauthorized},
		{"request unauthorized", http.StatusUnauthorized},
		{"Forbidden", http.StatusForbidden},
		{"connection reset", http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := StatusForMessage(tt.msg); got != tt.want {
			t.Errorf("StatusForMessage(%q) = %d, want %d", tt.msg, got, tt.want)
		}
	}
}

func TestStatusForErrorValidation(t *testing.T) {
	err := fmt.Errorf("update: %w", NewValidationError("Organization ID cannot be empty"))
	if got := StatusForError(err, err.Error()); got != http.StatusBadRequest {
		t.Fatalf("got %d, want 400", got)
	}
	if got := StatusForError(errors.New("boom"), "boom"); got != http.StatusInternalServerError {
		t.Fatalf("got %d, want 500", got)
	}
}

func TestHandleAPIErrorEnvelope(t *testing.T) {
	gin.SetMode(gin.TestMode)
	w := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(w)

	HandleAPIError(c, errors.New(`{"detail":"Doctor not found"}`), "Doctor Get API")

	if w.Code != http.StatusNotFound {
		t.Fatalf("status = %d", w.Code)
	}
	var body map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &body); err != nil {
		t.Fatal(err)
	}
	if body["status"] != "error" || body["error"] != "Doctor not found" || body["timestamp"] == "" {
		t.Fatalf("unexpected body: %v", body)
	}
}

func TestSuccessBodyDefaultMessage(t *testing.T) {
	body := SuccessBody(map[string]int{"n": 1}, "")
	if body["message"] != "Operation completed successfully" || body["status"] != "success" {
		t.Fatalf("unexpected body: %v", body)
	}
}
