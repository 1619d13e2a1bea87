package persistence

import (
	"context"

	apppayment "github.com/quelyos/backend/internal/application/payment"
	"github.com/quelyos/backend/internal/domain/checkout"
	"github.com/quelyos/backend/internal/domain/payment"
	"gorm.io/gorm"
)

// GormPaymentTransactionScope implements the payment TransactionScope
// using GORM transactions. Webhook settlement runs its critical section
// through it.
type GormPaymentTransactionScope struct {
	db *gorm.DB
}

// NewGormPaymentTransactionScope creates a new GormPaymentTransactionScope.
func NewGormPaymentTransactionScope(db *gorm.DB) *GormPaymentTransactionScope {
	return &GormPaymentTransactionScope{db: db}
}

// Execute runs the given function within a database transaction.
// If the function returns an error, the transaction is rolled back.
func (s *GormPaymentTransactionScope) Execute(ctx context.Context, fn func(repos apppayment.TransactionalRepositories) error) error {
	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		repos := &gormPaymentTransactionalRepositories{tx: tx}
		return fn(repos)
	})
}

// gormPaymentTransactionalRepositories binds the settlement repositories
// to one database transaction.
type gormPaymentTransactionalRepositories struct {
	tx *gorm.DB
}

// Transactions returns the payment transaction repository scoped to the current transaction.
func (r *gormPaymentTransactionalRepositories) Transactions() payment.TransactionRepository {
	return NewGormPaymentTransactionRepository(r.tx)
}

// Orders returns the order repository scoped to the current transaction.
func (r *gormPaymentTransactionalRepositories) Orders() checkout.OrderRepository {
	return NewGormOrderRepository(r.tx)
}

// Ledger returns the settlement ledger repository scoped to the current transaction.
func (r *gormPaymentTransactionalRepositories) Ledger() payment.LedgerRepository {
	return NewGormPaymentLedgerRepository(r.tx)
}

// Ensure GormPaymentTransactionScope implements TransactionScope
var _ apppayment.TransactionScope = (*GormPaymentTransactionScope)(nil)

// Ensure gormPaymentTransactionalRepositories implements TransactionalRepositories
var _ apppayment.TransactionalRepositories = (*gormPaymentTransactionalRepositories)(nil)
