package payment

import (
	"context"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
)

// TransactionRepository provides persistence for payment transactions
type TransactionRepository interface {
	// FindByID finds a transaction by ID
	FindByID(ctx context.Context, id uuid.UUID) (*Transaction, error)

	// FindByIDForTenant finds a transaction by ID within a tenant
	FindByIDForTenant(ctx context.Context, tenantID, id uuid.UUID) (*Transaction, error)

	// FindByReference finds a transaction by its internal reference
	FindByReference(ctx context.Context, tenantID uuid.UUID, reference string) (*Transaction, error)

	// FindByProviderPaymentID finds a transaction by the webhook
	// idempotency key (provider, provider_payment_id)
	FindByProviderPaymentID(ctx context.Context, provider Provider, providerPaymentID string) (*Transaction, error)

	// FindByProviderPaymentIDForUpdate is FindByProviderPaymentID under a
	// row-level lock. Webhook processing acquires it before check-then-act.
	FindByProviderPaymentIDForUpdate(ctx context.Context, provider Provider, providerPaymentID string) (*Transaction, error)

	// FindPendingOlderThan lists pending transactions initiated before the
	// cutoff, for the timeout sweeper
	FindPendingOlderThan(ctx context.Context, cutoffSeconds int) ([]Transaction, error)

	// FindAllForTenant lists transactions with filtering
	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Transaction, error)

	// Save persists the aggregate with optimistic locking on its version
	Save(ctx context.Context, tx *Transaction) error
}

// LedgerEntry records a settled payment for finance reconciliation.
// Append-only.
type LedgerEntry struct {
	shared.BaseEntity
	TenantID      uuid.UUID `gorm:"type:uuid;not null;index"`
	TransactionID uuid.UUID `gorm:"type:uuid;not null;index"`
	OrderID       uuid.UUID `gorm:"type:uuid;not null;index"`
	Provider      Provider  `gorm:"type:varchar(20);not null"`
	Amount        string    `gorm:"type:decimal(18,4);not null"`
	Currency      string    `gorm:"type:varchar(3);not null"`
	Kind          string    `gorm:"type:varchar(20);not null"` // payment | refund
}

// TableName returns the table name for GORM
func (LedgerEntry) TableName() string {
	return "payment_ledger_entries"
}

// LedgerRepository appends settlement entries
type LedgerRepository interface {
	Append(ctx context.Context, entry *LedgerEntry) error
	FindByOrder(ctx context.Context, tenantID, orderID uuid.UUID) ([]LedgerEntry, error)
}
