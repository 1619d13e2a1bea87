package persistence

import (
	"strings"
)

// ValidateSortOrder validates and normalizes the sort order to ASC or DESC.
// Returns "DESC" as the default if the input is invalid or empty.
func ValidateSortOrder(orderDir string) string {
	normalized := strings.ToUpper(strings.TrimSpace(orderDir))
	if normalized == "ASC" {
		return "ASC"
	}
	return "DESC"
}

// ValidateSortField validates the sort field against a whitelist of allowed fields.
// Returns the defaultField if the input is invalid, empty, or not in the whitelist.
func ValidateSortField(sortField string, allowedFields map[string]bool, defaultField string) string {
	trimmed := strings.TrimSpace(sortField)
	if trimmed == "" {
		return defaultField
	}
	if allowedFields[trimmed] {
		return trimmed
	}
	return defaultField
}

// CommonSortFields contains fields common to most entities
var CommonSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
}

// OrderSortFields contains allowed sort fields for orders
var OrderSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"order_number": true,
	"status":       true,
	"amount_total": true,
	"confirmed_at": true,
}

// PaymentTransactionSortFields contains allowed sort fields for payment transactions
var PaymentTransactionSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"reference":    true,
	"status":       true,
	"amount":       true,
	"initiated_at": true,
	"completed_at": true,
}

// ReservationSortFields contains allowed sort fields for stock reservations
var ReservationSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"status":     true,
	"quantity":   true,
	"expires_at": true,
}

// ScrapSortFields contains allowed sort fields for scrap orders
var ScrapSortFields = map[string]bool{
	"id":           true,
	"created_at":   true,
	"updated_at":   true,
	"status":       true,
	"quantity":     true,
	"validated_at": true,
}

// CycleCountSortFields contains allowed sort fields for cycle counts
var CycleCountSortFields = map[string]bool{
	"id":             true,
	"created_at":     true,
	"updated_at":     true,
	"reference":      true,
	"status":         true,
	"scheduled_date": true,
}

// ContentEntrySortFields contains allowed sort fields for content entries
var ContentEntrySortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"updated_at": true,
	"name":       true,
	"slug":       true,
	"sequence":   true,
}

// LoyaltyTransactionSortFields contains allowed sort fields for the points ledger
var LoyaltyTransactionSortFields = map[string]bool{
	"id":         true,
	"created_at": true,
	"points":     true,
	"type":       true,
}
