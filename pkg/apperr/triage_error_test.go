package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestConstructorStatuses(t *testing.T) {
	tests := []struct {
		name       string
		err        *AppError
		wantCode   string
		wantStatus int
	}{
		{"unauthorized", Unauthorized(""), CodeUnauthorized, http.StatusUnauthorized},
		{"bad request", BadRequest("nope"), CodeBadRequest, http.StatusBadRequest},
		{"validation", ValidationFailed("nope"), CodeValidationFailed, http.StatusBadRequest},
		{"invalid input", InvalidInput("field", "reason"), CodeInvalidInput, http.StatusBadRequest},
		{"not found", NotFound("email"), CodeNotFound, http.StatusNotFound},
		{"database", DatabaseError("op", nil), CodeDatabaseError, http.StatusInternalServerError},
		{"internal", Internal(""), CodeInternalError, http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Code != tt.wantCode {
				t.Errorf("code = %s, want %s", tt.err.Code, tt.wantCode)
			}
			if tt.err.Status != tt.wantStatus {
				t.Errorf("status = %d, want %d", tt.err.Status, tt.wantStatus)
			}
		})
	}
}

func TestWithErrorUnwraps(t *testing.T) {
	cause := errors.New("boom")
	err := Internal("classification failed").WithError(cause)

	if !errors.Is(err, cause) {
		t.Error("wrapped cause not reachable via errors.Is")
	}
	want := fmt.Sprintf("[%s] classification failed: boom", CodeInternalError)
	if err.Error() != want {
		t.Errorf("Error() = %q, want %q", err.Error(), want)
	}
}
