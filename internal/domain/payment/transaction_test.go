package payment

import (
	"testing"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newDraftTransaction(t *testing.T) *Transaction {
	t.Helper()
	tx, err := NewTransaction(uuid.New(), uuid.New(), "TX-0001", ProviderFlouci, valueobject.NewMoneyTNDFromFloat(129))
	require.NoError(t, err)
	return tx
}

func TestNewTransaction(t *testing.T) {
	t.Run("creates draft", func(t *testing.T) {
		tx := newDraftTransaction(t)
		assert.Equal(t, TransactionStatusDraft, tx.Status)
		assert.Equal(t, ProviderFlouci, tx.Provider)
		assert.Empty(t, tx.ProviderPaymentID)
	})

	t.Run("rejects unknown provider", func(t *testing.T) {
		_, err := NewTransaction(uuid.New(), uuid.New(), "TX-1", Provider("paypal"), valueobject.NewMoneyTNDFromFloat(10))
		assert.Error(t, err)
	})

	t.Run("rejects non-positive amount", func(t *testing.T) {
		_, err := NewTransaction(uuid.New(), uuid.New(), "TX-1", ProviderFlouci, valueobject.ZeroTND())
		assert.Error(t, err)
	})
}

func TestTransaction_Lifecycle(t *testing.T) {
	t.Run("happy path draft to succeeded", func(t *testing.T) {
		tx := newDraftTransaction(t)
		require.NoError(t, tx.MarkPending("PP-42", `{"ok":true}`))
		assert.Equal(t, TransactionStatusPending, tx.Status)
		assert.Equal(t, "PP-42", tx.ProviderPaymentID)

		require.NoError(t, tx.MarkSucceeded(`{"status":"paid"}`))
		assert.Equal(t, TransactionStatusSucceeded, tx.Status)
		assert.NotNil(t, tx.CompletedAt)
	})

	t.Run("pending can fail", func(t *testing.T) {
		tx := newDraftTransaction(t)
		require.NoError(t, tx.MarkPending("PP-43", ""))
		require.NoError(t, tx.MarkFailed("refusé par la banque", `{"status":"failed"}`))
		assert.Equal(t, TransactionStatusFailed, tx.Status)
		assert.Equal(t, "refusé par la banque", tx.FailureReason)
	})

	t.Run("succeeded can refund, refund is terminal", func(t *testing.T) {
		tx := newDraftTransaction(t)
		require.NoError(t, tx.MarkPending("PP-44", ""))
		require.NoError(t, tx.MarkSucceeded(""))
		require.NoError(t, tx.MarkRefunded())
		assert.Equal(t, TransactionStatusRefunded, tx.Status)
		assert.Error(t, tx.MarkSucceeded(""))
		assert.Error(t, tx.MarkFailed("x", ""))
	})

	t.Run("terminal states reject further webhooks", func(t *testing.T) {
		tx := newDraftTransaction(t)
		require.NoError(t, tx.MarkPending("PP-45", ""))
		require.NoError(t, tx.MarkSucceeded(""))

		err := tx.MarkSucceeded("")
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_STATE", domainErr.Code)
	})

	t.Run("draft cannot succeed directly", func(t *testing.T) {
		tx := newDraftTransaction(t)
		assert.Error(t, tx.MarkSucceeded(""))
	})
}

func TestTransaction_IsConsistentWith(t *testing.T) {
	tx := newDraftTransaction(t)
	require.NoError(t, tx.MarkPending("PP-46", ""))

	assert.False(t, tx.IsConsistentWith(true))

	require.NoError(t, tx.MarkSucceeded(""))
	assert.True(t, tx.IsConsistentWith(true))
	assert.False(t, tx.IsConsistentWith(false))

	require.NoError(t, tx.MarkRefunded())
	assert.True(t, tx.IsConsistentWith(true), "refunded still counts as a settled success for redelivery")
}

func TestTransactionStatus_CanTransitionTo(t *testing.T) {
	tests := []struct {
		from, to TransactionStatus
		want     bool
	}{
		{TransactionStatusDraft, TransactionStatusPending, true},
		{TransactionStatusDraft, TransactionStatusSucceeded, false},
		{TransactionStatusPending, TransactionStatusSucceeded, true},
		{TransactionStatusPending, TransactionStatusFailed, true},
		{TransactionStatusSucceeded, TransactionStatusRefunded, true},
		{TransactionStatusSucceeded, TransactionStatusFailed, false},
		{TransactionStatusFailed, TransactionStatusPending, false},
		{TransactionStatusRefunded, TransactionStatusSucceeded, false},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, tt.from.CanTransitionTo(tt.to), "%s -> %s", tt.from, tt.to)
	}
}
