package dto

import (
	"net/http"
	"strings"
)

// errorCodeHTTPStatus maps the stable domain error codes to HTTP status
// codes. The code is the machine contract; the status is derived, never
// stored.
var errorCodeHTTPStatus = map[string]int{
	"AUTH_REQUIRED":        http.StatusUnauthorized,
	"INVALID_SIGNATURE":    http.StatusUnauthorized,
	"FORBIDDEN":            http.StatusForbidden,
	"OWNERSHIP_VIOLATION":  http.StatusForbidden,
	"GUEST_EMAIL_MISMATCH": http.StatusForbidden,

	"NOT_FOUND":         http.StatusNotFound,
	"TENANT_NOT_FOUND":  http.StatusNotFound,
	"PRODUCT_NOT_FOUND": http.StatusNotFound,

	"ALREADY_EXISTS":       http.StatusConflict,
	"CONCURRENCY_CONFLICT": http.StatusConflict,
	"DUPLICATE_RULE":       http.StatusConflict,
	"DUPLICATE_WEBHOOK":    http.StatusConflict,

	"RATE_LIMITED": http.StatusTooManyRequests,

	"INVALID_INPUT":     http.StatusBadRequest,
	"INVALID_RANGE":     http.StatusBadRequest,
	"REQUEST_TOO_LARGE": http.StatusRequestEntityTooLarge,

	"INVALID_STATE":       http.StatusUnprocessableEntity,
	"INSUFFICIENT_STOCK":  http.StatusUnprocessableEntity,
	"LOCATION_LOCKED":     http.StatusUnprocessableEntity,
	"HAS_STOCK":           http.StatusUnprocessableEntity,
	"HAS_ACTIVE_PICKINGS": http.StatusUnprocessableEntity,
	"CIRCULAR_LOOP":       http.StatusUnprocessableEntity,
	"TRACKING_REQUIRED":   http.StatusUnprocessableEntity,

	"PROVIDER_UNAVAILABLE": http.StatusServiceUnavailable,
	"SERVER_ERROR":         http.StatusInternalServerError,
}

// GetHTTPStatus returns the HTTP status for a domain error code.
// Unlisted INVALID_* codes are input problems; anything else unknown is
// a server error.
func GetHTTPStatus(code string) int {
	if status, ok := errorCodeHTTPStatus[code]; ok {
		return status
	}
	if strings.HasPrefix(code, "INVALID_") {
		return http.StatusBadRequest
	}
	return http.StatusInternalServerError
}
