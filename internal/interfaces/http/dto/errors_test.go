package dto

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGetHTTPStatus(t *testing.T) {
	tests := []struct {
		code   string
		status int
	}{
		{"AUTH_REQUIRED", http.StatusUnauthorized},
		{"FORBIDDEN", http.StatusForbidden},
		{"OWNERSHIP_VIOLATION", http.StatusForbidden},
		{"GUEST_EMAIL_MISMATCH", http.StatusForbidden},
		{"NOT_FOUND", http.StatusNotFound},
		{"TENANT_NOT_FOUND", http.StatusNotFound},
		{"CONCURRENCY_CONFLICT", http.StatusConflict},
		{"DUPLICATE_RULE", http.StatusConflict},
		{"RATE_LIMITED", http.StatusTooManyRequests},
		{"INVALID_INPUT", http.StatusBadRequest},
		{"INVALID_STATE", http.StatusUnprocessableEntity},
		{"INSUFFICIENT_STOCK", http.StatusUnprocessableEntity},
		{"LOCATION_LOCKED", http.StatusUnprocessableEntity},
		{"PROVIDER_UNAVAILABLE", http.StatusServiceUnavailable},
		{"SERVER_ERROR", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.code, func(t *testing.T) {
			assert.Equal(t, tt.status, GetHTTPStatus(tt.code))
		})
	}

	t.Run("unlisted INVALID_ code is a 400", func(t *testing.T) {
		assert.Equal(t, http.StatusBadRequest, GetHTTPStatus("INVALID_PROVIDER"))
	})

	t.Run("unknown code is a 500", func(t *testing.T) {
		assert.Equal(t, http.StatusInternalServerError, GetHTTPStatus("SOMETHING_ELSE"))
	})
}

func TestResponseEnvelopes(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		resp := NewSuccessResponse(map[string]string{"id": "1"})
		assert.True(t, resp.Success)
		assert.Nil(t, resp.Error)
	})

	t.Run("error", func(t *testing.T) {
		resp := NewErrorResponse("NOT_FOUND", "Ressource introuvable")
		assert.False(t, resp.Success)
		assert.Equal(t, "NOT_FOUND", resp.Error.Code)
	})

	t.Run("meta rounds total pages up", func(t *testing.T) {
		resp := NewSuccessResponseWithMeta(nil, 21, 1, 10)
		assert.Equal(t, 3, resp.Meta.TotalPages)
	})

	t.Run("rate limited carries retry_after", func(t *testing.T) {
		resp := NewRateLimitedResponse("Trop de requêtes", 42)
		assert.Equal(t, "RATE_LIMITED", resp.Error.Code)
		assert.Equal(t, 42, resp.Error.RetryAfter)
	})
}
