package payment

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/quelyos/backend/internal/domain/checkout"
	"github.com/quelyos/backend/internal/domain/identity"
	"github.com/quelyos/backend/internal/domain/payment"
	"github.com/quelyos/backend/internal/domain/shared"
)

// TransactionalRepositories exposes the repositories that take part in
// the webhook critical section, all bound to one database transaction
type TransactionalRepositories interface {
	Transactions() payment.TransactionRepository
	Orders() checkout.OrderRepository
	Ledger() payment.LedgerRepository
}

// TransactionScope runs a function atomically against the repositories
type TransactionScope interface {
	Execute(ctx context.Context, fn func(repos TransactionalRepositories) error) error
}

// Locker serializes webhook processing per provider payment across
// processes. Release is best effort.
type Locker interface {
	Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), err error)
}

// webhookLockTTL caps how long a crashed worker can hold the mutex
const webhookLockTTL = 30 * time.Second

// Service orchestrates payment initiation and webhook settlement
type Service struct {
	transactions   payment.TransactionRepository
	orders         checkout.OrderRepository
	gateways       map[payment.Provider]payment.Gateway
	scope          TransactionScope
	locker         Locker
	eventPublisher shared.EventPublisher
}

// NewService creates a new payment Service
func NewService(transactions payment.TransactionRepository, orders checkout.OrderRepository, scope TransactionScope, locker Locker, gateways ...payment.Gateway) *Service {
	byProvider := make(map[payment.Provider]payment.Gateway, len(gateways))
	for _, g := range gateways {
		byProvider[g.Provider()] = g
	}
	return &Service{
		transactions: transactions,
		orders:       orders,
		gateways:     byProvider,
		scope:        scope,
		locker:       locker,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Initiate starts a payment for the caller's completed cart and returns
// the provider redirect
func (s *Service) Initiate(ctx context.Context, tenantID uuid.UUID, id identity.Identity, req InitiatePaymentRequest) (*InitiatePaymentResponse, error) {
	gateway, ok := s.gateways[req.Provider]
	if !ok {
		return nil, shared.NewDomainError("INVALID_PROVIDER", "Fournisseur de paiement inconnu")
	}

	order, err := s.orders.FindByIDForTenant(ctx, tenantID, req.OrderID)
	if err != nil {
		return nil, err
	}
	if err := identity.ValidateOwnership(id, order.PartnerID, order.PartnerEmail); err != nil {
		return nil, err
	}
	if !order.IsDraft() {
		return nil, shared.NewDomainError("INVALID_STATE", "La commande n'attend pas de paiement")
	}

	tx, err := payment.NewTransaction(tenantID, order.ID, newPaymentReference(), req.Provider, order.AmountTotalMoney())
	if err != nil {
		return nil, err
	}

	initResp, err := gateway.Initiate(ctx, payment.InitiateRequest{
		Amount:        order.AmountTotalMoney(),
		Reference:     tx.Reference,
		ReturnURL:     req.ReturnURL,
		CustomerEmail: order.PartnerEmail,
	})
	if err != nil {
		return nil, shared.ErrProviderDown
	}

	if err := tx.MarkPending(initResp.ProviderPaymentID, initResp.RawPayload); err != nil {
		return nil, err
	}
	if err := s.transactions.Save(ctx, tx); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, tx)

	return &InitiatePaymentResponse{
		TransactionID: tx.ID,
		Reference:     tx.Reference,
		PaymentURL:    initResp.PaymentURL,
		ClientSecret:  initResp.ClientSecret,
	}, nil
}

// ProcessWebhook settles a transaction from a provider callback. The
// sequence is fixed: signature verification first, then lookup, then the
// serialized critical section. Redelivered webhooks that agree with the
// stored outcome are acknowledged without any new transition.
func (s *Service) ProcessWebhook(ctx context.Context, provider payment.Provider, body []byte, signature string) error {
	gateway, ok := s.gateways[provider]
	if !ok {
		return shared.ErrNotFound
	}

	event, err := gateway.VerifyWebhook(body, signature)
	if err != nil {
		return shared.NewDomainError("INVALID_SIGNATURE", "Signature du webhook invalide")
	}
	if event.ProviderPaymentID == "" {
		return shared.ErrNotFound
	}

	// Existence probe outside the lock so unknown payment IDs answer 404
	// without contending
	if _, err := s.transactions.FindByProviderPaymentID(ctx, provider, event.ProviderPaymentID); err != nil {
		return err
	}

	release, err := s.locker.Acquire(ctx, webhookLockKey(provider, event.ProviderPaymentID), webhookLockTTL)
	if err != nil {
		return err
	}
	defer release()

	var settled *payment.Transaction
	err = s.scope.Execute(ctx, func(repos TransactionalRepositories) error {
		tx, err := repos.Transactions().FindByProviderPaymentIDForUpdate(ctx, provider, event.ProviderPaymentID)
		if err != nil {
			return err
		}

		if tx.Status.IsTerminal() {
			if tx.IsConsistentWith(event.Success) {
				return nil
			}
			return shared.NewDomainError("WEBHOOK_CONFLICT", "Le webhook contredit l'état enregistré de la transaction")
		}

		if event.Success {
			if err := tx.MarkSucceeded(event.RawPayload); err != nil {
				return err
			}
			if err := s.confirmOrder(ctx, repos, tx); err != nil {
				return err
			}
			if err := repos.Ledger().Append(ctx, &payment.LedgerEntry{
				BaseEntity:    shared.NewBaseEntity(),
				TenantID:      tx.TenantID,
				TransactionID: tx.ID,
				OrderID:       tx.OrderID,
				Provider:      tx.Provider,
				Amount:        tx.Amount.String(),
				Currency:      string(tx.Currency),
				Kind:          "payment",
			}); err != nil {
				return err
			}
		} else {
			if err := tx.MarkFailed(event.FailureReason, event.RawPayload); err != nil {
				return err
			}
		}

		if err := repos.Transactions().Save(ctx, tx); err != nil {
			return err
		}
		settled = tx
		return nil
	})
	if err != nil {
		return err
	}
	if settled != nil {
		s.publishEvents(ctx, settled)
	}
	return nil
}

// GetTransaction returns a transaction visible to the caller
func (s *Service) GetTransaction(ctx context.Context, tenantID uuid.UUID, id identity.Identity, txID uuid.UUID) (*TransactionResponse, error) {
	tx, err := s.transactions.FindByIDForTenant(ctx, tenantID, txID)
	if err != nil {
		return nil, err
	}
	order, err := s.orders.FindByIDForTenant(ctx, tenantID, tx.OrderID)
	if err != nil {
		return nil, err
	}
	if err := identity.ValidateOwnership(id, order.PartnerID, order.PartnerEmail); err != nil {
		return nil, err
	}
	resp := ToTransactionResponse(tx)
	return &resp, nil
}

// ExpirePending fails pending transactions older than the cutoff. The
// scheduler calls this periodically.
func (s *Service) ExpirePending(ctx context.Context, olderThan time.Duration) (int, error) {
	pending, err := s.transactions.FindPendingOlderThan(ctx, int(olderThan.Seconds()))
	if err != nil {
		return 0, err
	}
	expired := 0
	for i := range pending {
		tx := &pending[i]
		if err := tx.MarkFailed("timeout", ""); err != nil {
			continue
		}
		if err := s.transactions.Save(ctx, tx); err != nil {
			continue
		}
		s.publishEvents(ctx, tx)
		expired++
	}
	return expired, nil
}

func (s *Service) confirmOrder(ctx context.Context, repos TransactionalRepositories, tx *payment.Transaction) error {
	order, err := repos.Orders().FindByIDForTenant(ctx, tx.TenantID, tx.OrderID)
	if err != nil {
		return err
	}
	if err := order.Confirm(tx.Reference); err != nil {
		// A confirmed order on webhook redelivery is fine
		var domainErr *shared.DomainError
		if errors.As(err, &domainErr) && domainErr.Code == "INVALID_STATE" && order.Status != checkout.OrderStatusDraft {
			return nil
		}
		return err
	}
	return repos.Orders().SaveWithLock(ctx, order)
}

func (s *Service) publishEvents(ctx context.Context, tx *payment.Transaction) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, tx.GetDomainEvents()...); err == nil {
		tx.ClearDomainEvents()
	}
}

func webhookLockKey(provider payment.Provider, providerPaymentID string) string {
	return fmt.Sprintf("webhook:%s:%s", provider, providerPaymentID)
}

// newPaymentReference generates a reference like PAY-20260829-9C4B0D
func newPaymentReference() string {
	var buf [3]byte
	_, _ = rand.Read(buf[:])
	return fmt.Sprintf("PAY-%s-%s", time.Now().Format("20060102"), hex.EncodeToString(buf[:]))
}
