package apperr

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestConstructors(t *testing.T) {
	tests := []struct {
		name   string
		err    *Error
		status int
	}{
		{"validation", Validation("draft_fields_incomplete"), http.StatusBadRequest},
		{"forbidden", Forbidden("insufficient_role"), http.StatusForbidden},
		{"not found", NotFound("approval_not_found"), http.StatusNotFound},
		{"conflict", Conflict("approval_already_resolved"), http.StatusConflict},
		{"internal", Internal("token_generation_failed", errors.New("boom")), http.StatusInternalServerError},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.status, tt.err.HTTPStatus)
			assert.Equal(t, tt.err.Code, CodeOf(tt.err))
			assert.Equal(t, tt.status, StatusOf(tt.err))
		})
	}
}

func TestErrorString(t *testing.T) {
	assert.Equal(t, "plan_locked", Conflict("plan_locked").Error())
	assert.Equal(t, "internal_error: connection refused",
		Storage(errors.New("connection refused")).Error())
}

func TestUnwrap(t *testing.T) {
	cause := errors.New("deadlock detected")
	err := Storage(cause)
	assert.True(t, errors.Is(err, cause))
}

func TestCodeOf_Wrapped(t *testing.T) {
	err := fmt.Errorf("submit failed: %w", Conflict("materiality_required"))
	assert.Equal(t, "materiality_required", CodeOf(err))
	assert.Equal(t, http.StatusConflict, StatusOf(err))
}

func TestCodeOf_PlainError(t *testing.T) {
	err := errors.New("driver: bad connection")
	assert.Equal(t, "internal_error", CodeOf(err))
	assert.Equal(t, http.StatusInternalServerError, StatusOf(err))
}

func TestStorage(t *testing.T) {
	err := Storage(errors.New("timeout"))
	assert.Equal(t, "internal_error", err.Code)
	assert.Equal(t, http.StatusInternalServerError, err.HTTPStatus)
}
