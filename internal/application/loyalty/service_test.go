package loyalty

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/quelyos/backend/internal/domain/loyalty"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
)

type fakeMemberRepo struct {
	byPartner map[uuid.UUID]*loyalty.Member
}

func (r *fakeMemberRepo) FindByID(_ context.Context, _, id uuid.UUID) (*loyalty.Member, error) {
	for _, m := range r.byPartner {
		if m.ID == id {
			return m, nil
		}
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMemberRepo) FindByPartner(_ context.Context, _, partnerID uuid.UUID) (*loyalty.Member, error) {
	if m, ok := r.byPartner[partnerID]; ok {
		return m, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeMemberRepo) FindByPartnerForUpdate(ctx context.Context, tenantID, partnerID uuid.UUID) (*loyalty.Member, error) {
	return r.FindByPartner(ctx, tenantID, partnerID)
}

func (r *fakeMemberRepo) Save(_ context.Context, m *loyalty.Member) error {
	r.byPartner[m.PartnerID] = m
	return nil
}

type fakeProgramRepo struct {
	program *loyalty.Program
}

func (r *fakeProgramRepo) FindByID(_ context.Context, _, id uuid.UUID) (*loyalty.Program, error) {
	if r.program != nil && r.program.ID == id {
		return r.program, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProgramRepo) FindActive(_ context.Context, _ uuid.UUID) (*loyalty.Program, error) {
	if r.program != nil && r.program.Active {
		return r.program, nil
	}
	return nil, shared.ErrNotFound
}

func (r *fakeProgramRepo) FindAllForTenant(_ context.Context, _ uuid.UUID, _ shared.Filter) ([]loyalty.Program, error) {
	return nil, nil
}

func (r *fakeProgramRepo) Save(_ context.Context, p *loyalty.Program) error {
	r.program = p
	return nil
}

type fakeLedger struct {
	entries []*loyalty.Transaction
}

func (r *fakeLedger) Append(_ context.Context, tx *loyalty.Transaction) error {
	r.entries = append(r.entries, tx)
	return nil
}

func (r *fakeLedger) FindByMember(_ context.Context, _, memberID uuid.UUID, _ shared.Filter) ([]loyalty.Transaction, error) {
	var out []loyalty.Transaction
	for _, tx := range r.entries {
		if tx.MemberID == memberID {
			out = append(out, *tx)
		}
	}
	return out, nil
}

func (r *fakeLedger) FindByOrderAndType(_ context.Context, _, orderID uuid.UUID, txType loyalty.TransactionType) (*loyalty.Transaction, error) {
	for _, tx := range r.entries {
		if tx.OrderID != nil && *tx.OrderID == orderID && tx.Type == txType {
			return tx, nil
		}
	}
	return nil, shared.ErrNotFound
}

type loyaltyFixture struct {
	service   *Service
	members   *fakeMemberRepo
	programs  *fakeProgramRepo
	ledger    *fakeLedger
	tenantID  uuid.UUID
	partnerID uuid.UUID
}

func newLoyaltyFixture(t *testing.T) *loyaltyFixture {
	t.Helper()
	tenantID := uuid.New()

	// 1 point per dinar, 1 point worth 0.010 TND, 100 points minimum
	program, err := loyalty.NewProgram(tenantID, "Fidélité Quelyos",
		decimal.NewFromInt(1), decimal.NewFromFloat(0.01), decimal.NewFromInt(100))
	require.NoError(t, err)

	f := &loyaltyFixture{
		service:   nil,
		members:   &fakeMemberRepo{byPartner: make(map[uuid.UUID]*loyalty.Member)},
		programs:  &fakeProgramRepo{program: program},
		ledger:    &fakeLedger{},
		tenantID:  tenantID,
		partnerID: uuid.New(),
	}
	f.service = NewService(f.members, f.programs, f.ledger)
	return f
}

func (f *loyaltyFixture) enroll(t *testing.T) *MemberResponse {
	t.Helper()
	member, err := f.service.Enroll(context.Background(), f.tenantID, EnrollRequest{PartnerID: f.partnerID})
	require.NoError(t, err)
	return member
}

func orderTotal(t *testing.T, amount string) valueobject.Money {
	t.Helper()
	m, err := valueobject.NewMoneyFromString(amount, valueobject.TND)
	require.NoError(t, err)
	return m
}

func TestEnroll(t *testing.T) {
	f := newLoyaltyFixture(t)

	member := f.enroll(t)
	assert.True(t, member.CurrentPoints.IsZero())
	assert.True(t, member.Active)

	_, err := f.service.Enroll(context.Background(), f.tenantID, EnrollRequest{PartnerID: f.partnerID})
	assert.ErrorIs(t, err, shared.ErrAlreadyExists)
}

func TestEarnForOrder(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.enroll(t)
	orderID := uuid.New()

	member, err := f.service.EarnForOrder(context.Background(), f.tenantID, f.partnerID, orderID, orderTotal(t, "129.500"))
	require.NoError(t, err)

	// 129.500 TND at 1 point per dinar, floored
	assert.True(t, member.CurrentPoints.Equal(decimal.NewFromInt(129)))
	assert.True(t, member.TotalEarned.Equal(decimal.NewFromInt(129)))
	require.Len(t, f.ledger.entries, 1)
	assert.Equal(t, loyalty.TransactionTypeEarn, f.ledger.entries[0].Type)
}

func TestEarnForOrderIsIdempotent(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.enroll(t)
	orderID := uuid.New()

	_, err := f.service.EarnForOrder(context.Background(), f.tenantID, f.partnerID, orderID, orderTotal(t, "50.000"))
	require.NoError(t, err)

	member, err := f.service.EarnForOrder(context.Background(), f.tenantID, f.partnerID, orderID, orderTotal(t, "50.000"))
	require.NoError(t, err)

	assert.True(t, member.CurrentPoints.Equal(decimal.NewFromInt(50)))
	assert.Len(t, f.ledger.entries, 1)
}

func TestRedeem(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.enroll(t)
	orderID := uuid.New()
	_, err := f.service.EarnForOrder(context.Background(), f.tenantID, f.partnerID, orderID, orderTotal(t, "500.000"))
	require.NoError(t, err)

	resp, err := f.service.Redeem(context.Background(), f.tenantID, RedeemRequest{
		PartnerID: f.partnerID,
		Points:    decimal.NewFromInt(500),
	})
	require.NoError(t, err)

	// 500 points at 0.010 TND per point
	assert.True(t, resp.DiscountTND.Equal(decimal.NewFromInt(5)))
	assert.True(t, resp.Member.CurrentPoints.IsZero())
	assert.True(t, resp.Member.TotalEarned.Equal(decimal.NewFromInt(500)))
}

func TestRedeemBelowMinimum(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.enroll(t)
	orderID := uuid.New()
	_, err := f.service.EarnForOrder(context.Background(), f.tenantID, f.partnerID, orderID, orderTotal(t, "500.000"))
	require.NoError(t, err)

	_, err = f.service.Redeem(context.Background(), f.tenantID, RedeemRequest{
		PartnerID: f.partnerID,
		Points:    decimal.NewFromInt(50),
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "BELOW_MIN_REDEMPTION", domainErr.Code)
}

func TestRedeemInsufficientBalance(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.enroll(t)

	_, err := f.service.Redeem(context.Background(), f.tenantID, RedeemRequest{
		PartnerID: f.partnerID,
		Points:    decimal.NewFromInt(100),
	})
	require.Error(t, err)

	var domainErr *shared.DomainError
	require.ErrorAs(t, err, &domainErr)
	assert.Equal(t, "INSUFFICIENT_POINTS", domainErr.Code)
}

func TestAdjust(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.enroll(t)

	member, err := f.service.Adjust(context.Background(), f.tenantID, AdjustRequest{
		PartnerID:   f.partnerID,
		Delta:       decimal.NewFromInt(30),
		Description: "geste commercial",
	})
	require.NoError(t, err)
	assert.True(t, member.CurrentPoints.Equal(decimal.NewFromInt(30)))

	member, err = f.service.Adjust(context.Background(), f.tenantID, AdjustRequest{
		PartnerID:   f.partnerID,
		Delta:       decimal.NewFromInt(-10),
		Description: "correction",
	})
	require.NoError(t, err)
	assert.True(t, member.CurrentPoints.Equal(decimal.NewFromInt(20)))

	_, err = f.service.Adjust(context.Background(), f.tenantID, AdjustRequest{
		PartnerID:   f.partnerID,
		Delta:       decimal.NewFromInt(-100),
		Description: "correction",
	})
	require.Error(t, err)
}

func TestHistory(t *testing.T) {
	f := newLoyaltyFixture(t)
	f.enroll(t)
	orderID := uuid.New()
	_, err := f.service.EarnForOrder(context.Background(), f.tenantID, f.partnerID, orderID, orderTotal(t, "200.000"))
	require.NoError(t, err)
	_, err = f.service.Redeem(context.Background(), f.tenantID, RedeemRequest{
		PartnerID: f.partnerID,
		Points:    decimal.NewFromInt(100),
	})
	require.NoError(t, err)

	history, err := f.service.History(context.Background(), f.tenantID, f.partnerID, shared.DefaultFilter())
	require.NoError(t, err)
	assert.Len(t, history, 2)
}
