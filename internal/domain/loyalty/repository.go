package loyalty

import (
	"context"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
)

// MemberRepository provides persistence for loyalty members
type MemberRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Member, error)

	// FindByPartner returns the member account of a partner, or
	// shared.ErrNotFound when the partner is not enrolled
	FindByPartner(ctx context.Context, tenantID, partnerID uuid.UUID) (*Member, error)

	// FindByPartnerForUpdate reads the member under a row-level lock.
	// Earning and redemption run inside this lock.
	FindByPartnerForUpdate(ctx context.Context, tenantID, partnerID uuid.UUID) (*Member, error)

	Save(ctx context.Context, m *Member) error
}

// ProgramRepository provides persistence for loyalty programs
type ProgramRepository interface {
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*Program, error)

	// FindActive returns the tenant's active program, or shared.ErrNotFound
	FindActive(ctx context.Context, tenantID uuid.UUID) (*Program, error)

	FindAllForTenant(ctx context.Context, tenantID uuid.UUID, filter shared.Filter) ([]Program, error)
	Save(ctx context.Context, p *Program) error
}

// TransactionRepository records the append-only points ledger
type TransactionRepository interface {
	// Append records a ledger entry. Entries are never updated or deleted.
	Append(ctx context.Context, tx *Transaction) error

	FindByMember(ctx context.Context, tenantID, memberID uuid.UUID, filter shared.Filter) ([]Transaction, error)

	// FindByOrderAndType detects duplicate earnings for the same order
	FindByOrderAndType(ctx context.Context, tenantID, orderID uuid.UUID, txType TransactionType) (*Transaction, error)
}
