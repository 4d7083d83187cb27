package errorutil

import (
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
)

func TestToDomainError(t *testing.T) {
	tests := []struct {
		name       string
		err        error
		wantCode   string
		wantStatus int
	}{
		{"domain error passes through", NewInvalidOperation("Tag is already attached to this ticket.", nil), "INVALID_OPERATION", http.StatusUnprocessableEntity},
		{"wrapped not found sentinel", fmt.Errorf("ticket 7: %w", ErrNotFound), "NOT_FOUND", http.StatusNotFound},
		{"reference missing sentinel", fmt.Errorf("insert: %w", ErrReferenceMissing), "REFERENCE_MISSING", http.StatusUnprocessableEntity},
		{"duplicate sentinel", fmt.Errorf("users_email_unique: %w", ErrDuplicate), "CONFLICT", http.StatusConflict},
		{"fiber 404", fiber.NewError(http.StatusNotFound, "Cannot GET /nope"), "NOT_FOUND", http.StatusNotFound},
		{"fiber 400", fiber.NewError(http.StatusBadRequest, "bad body"), "BAD_REQUEST", http.StatusBadRequest},
		{"unknown error", errors.New("connection reset by peer"), "INTERNAL_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ToDomainError(tt.err)
			assert.Equal(t, tt.wantCode, got.Code)
			assert.Equal(t, tt.wantStatus, got.HTTPStatus)
		})
	}
}

func TestInternalErrorHidesDetail(t *testing.T) {
	got := ToDomainError(errors.New(`pq: relation "tickets" does not exist`))
	assert.Equal(t, "internal server error", got.Message)
	assert.NotContains(t, got.Message, "tickets")
	assert.Error(t, got.Unwrap())
}

func TestNilError(t *testing.T) {
	assert.Nil(t, ToDomainError(nil))
}
