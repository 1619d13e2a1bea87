package stock

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quelyos/backend/internal/domain/shared"
)

func TestNewReservation(t *testing.T) {
	tenantID := uuid.New()
	productID := uuid.New()
	locationID := uuid.New()

	t.Run("creates draft reservation", func(t *testing.T) {
		r, err := NewReservation(tenantID, productID, locationID, decimal.NewFromInt(4), "commande web", nil)
		require.NoError(t, err)
		assert.Equal(t, ReservationStatusDraft, r.Status)
		assert.Len(t, r.GetDomainEvents(), 1)
		assert.Equal(t, EventTypeReservationCreated, r.GetDomainEvents()[0].EventType())
	})

	t.Run("rejects non-positive quantity", func(t *testing.T) {
		_, err := NewReservation(tenantID, productID, locationID, decimal.Zero, "", nil)
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INVALID_QUANTITY", domainErr.Code)
	})

	t.Run("rejects nil product", func(t *testing.T) {
		_, err := NewReservation(tenantID, uuid.Nil, locationID, decimal.NewFromInt(1), "", nil)
		assert.Error(t, err)
	})
}

func TestReservationActivate(t *testing.T) {
	tenantID := uuid.New()

	newDraft := func(qty int64) *Reservation {
		r, err := NewReservation(tenantID, uuid.New(), uuid.New(), decimal.NewFromInt(qty), "", nil)
		require.NoError(t, err)
		return r
	}

	t.Run("activates when available covers quantity", func(t *testing.T) {
		r := newDraft(3)
		err := r.Activate(decimal.NewFromInt(10), decimal.NewFromInt(7))
		require.NoError(t, err)
		assert.Equal(t, ReservationStatusActive, r.Status)
		assert.NotNil(t, r.ActivatedAt)
	})

	t.Run("rejects when active reservations exhaust stock", func(t *testing.T) {
		// on-hand 10, already 7 reserved: only 3 available
		r := newDraft(4)
		err := r.Activate(decimal.NewFromInt(10), decimal.NewFromInt(7))
		require.Error(t, err)
		var domainErr *shared.DomainError
		require.ErrorAs(t, err, &domainErr)
		assert.Equal(t, "INSUFFICIENT_STOCK", domainErr.Code)
		assert.Equal(t, ReservationStatusDraft, r.Status)
	})

	t.Run("exact available quantity activates", func(t *testing.T) {
		r := newDraft(3)
		require.NoError(t, r.Activate(decimal.NewFromInt(10), decimal.NewFromInt(7)))
	})

	t.Run("cannot activate twice", func(t *testing.T) {
		r := newDraft(1)
		require.NoError(t, r.Activate(decimal.NewFromInt(5), decimal.Zero))
		assert.Error(t, r.Activate(decimal.NewFromInt(5), decimal.Zero))
	})
}

func TestReservationLifecycle(t *testing.T) {
	tenantID := uuid.New()

	t.Run("release from draft and active", func(t *testing.T) {
		r, _ := NewReservation(tenantID, uuid.New(), uuid.New(), decimal.NewFromInt(2), "", nil)
		require.NoError(t, r.Release())
		assert.Equal(t, ReservationStatusReleased, r.Status)
		assert.True(t, r.CanDelete())

		r2, _ := NewReservation(tenantID, uuid.New(), uuid.New(), decimal.NewFromInt(2), "", nil)
		require.NoError(t, r2.Activate(decimal.NewFromInt(5), decimal.Zero))
		require.NoError(t, r2.Release())
	})

	t.Run("release is not re-enterable", func(t *testing.T) {
		r, _ := NewReservation(tenantID, uuid.New(), uuid.New(), decimal.NewFromInt(2), "", nil)
		require.NoError(t, r.Release())
		assert.Error(t, r.Release())
	})

	t.Run("expire requires deadline in the past", func(t *testing.T) {
		deadline := time.Now().Add(-time.Hour)
		r, _ := NewReservation(tenantID, uuid.New(), uuid.New(), decimal.NewFromInt(2), "", &deadline)
		require.NoError(t, r.Activate(decimal.NewFromInt(5), decimal.Zero))

		assert.True(t, r.IsPastDue(time.Now()))
		require.NoError(t, r.Expire(time.Now()))
		assert.Equal(t, ReservationStatusExpired, r.Status)
	})

	t.Run("expire before deadline fails", func(t *testing.T) {
		deadline := time.Now().Add(time.Hour)
		r, _ := NewReservation(tenantID, uuid.New(), uuid.New(), decimal.NewFromInt(2), "", &deadline)
		require.NoError(t, r.Activate(decimal.NewFromInt(5), decimal.Zero))
		assert.Error(t, r.Expire(time.Now()))
	})

	t.Run("draft without deadline is never past due", func(t *testing.T) {
		r, _ := NewReservation(tenantID, uuid.New(), uuid.New(), decimal.NewFromInt(2), "", nil)
		assert.False(t, r.IsPastDue(time.Now()))
		assert.False(t, r.CanDelete())
	})
}
