package loyalty

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/quelyos/backend/internal/domain/loyalty"
	"github.com/quelyos/backend/internal/domain/shared"
	"github.com/quelyos/backend/internal/domain/shared/valueobject"
)

// Service manages loyalty accounts: enrollment, earning on paid orders,
// redemption and manual adjustments
type Service struct {
	members        loyalty.MemberRepository
	programs       loyalty.ProgramRepository
	transactions   loyalty.TransactionRepository
	eventPublisher shared.EventPublisher
}

// NewService creates the loyalty service
func NewService(members loyalty.MemberRepository, programs loyalty.ProgramRepository, transactions loyalty.TransactionRepository) *Service {
	return &Service{
		members:      members,
		programs:     programs,
		transactions: transactions,
	}
}

// SetEventPublisher sets the event publisher for publishing domain events
func (s *Service) SetEventPublisher(publisher shared.EventPublisher) {
	s.eventPublisher = publisher
}

// Enroll creates a loyalty account for a partner in the active program
func (s *Service) Enroll(ctx context.Context, tenantID uuid.UUID, req EnrollRequest) (*MemberResponse, error) {
	if _, err := s.members.FindByPartner(ctx, tenantID, req.PartnerID); err == nil {
		return nil, shared.ErrAlreadyExists
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}
	program, err := s.programs.FindActive(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	member, err := loyalty.NewMember(tenantID, req.PartnerID, program.ID)
	if err != nil {
		return nil, err
	}
	if err := s.members.Save(ctx, member); err != nil {
		return nil, err
	}
	resp := ToMemberResponse(member)
	return &resp, nil
}

// GetMember returns a partner's loyalty account
func (s *Service) GetMember(ctx context.Context, tenantID, partnerID uuid.UUID) (*MemberResponse, error) {
	member, err := s.members.FindByPartner(ctx, tenantID, partnerID)
	if err != nil {
		return nil, err
	}
	resp := ToMemberResponse(member)
	return &resp, nil
}

// History lists a member's ledger entries
func (s *Service) History(ctx context.Context, tenantID, partnerID uuid.UUID, filter shared.Filter) ([]TransactionResponse, error) {
	member, err := s.members.FindByPartner(ctx, tenantID, partnerID)
	if err != nil {
		return nil, err
	}
	entries, err := s.transactions.FindByMember(ctx, tenantID, member.ID, filter)
	if err != nil {
		return nil, err
	}
	out := make([]TransactionResponse, 0, len(entries))
	for i := range entries {
		out = append(out, ToTransactionResponse(&entries[i]))
	}
	return out, nil
}

// EarnForOrder credits a member with the points of a paid order. A second
// delivery for the same order is acknowledged without crediting twice.
func (s *Service) EarnForOrder(ctx context.Context, tenantID, partnerID, orderID uuid.UUID, total valueobject.Money) (*MemberResponse, error) {
	if prior, err := s.transactions.FindByOrderAndType(ctx, tenantID, orderID, loyalty.TransactionTypeEarn); err == nil && prior != nil {
		member, err := s.members.FindByPartner(ctx, tenantID, partnerID)
		if err != nil {
			return nil, err
		}
		resp := ToMemberResponse(member)
		return &resp, nil
	} else if err != nil && !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	member, err := s.members.FindByPartnerForUpdate(ctx, tenantID, partnerID)
	if err != nil {
		return nil, err
	}
	program, err := s.programs.FindByID(ctx, tenantID, member.ProgramID)
	if err != nil {
		return nil, err
	}
	points := program.PointsForOrder(total)
	if points.IsZero() {
		resp := ToMemberResponse(member)
		return &resp, nil
	}

	entry, err := member.Earn(points, &orderID, fmt.Sprintf("Commande %s", orderID))
	if err != nil {
		return nil, err
	}
	if err := s.members.Save(ctx, member); err != nil {
		return nil, err
	}
	if err := s.transactions.Append(ctx, entry); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, member)
	resp := ToMemberResponse(member)
	return &resp, nil
}

// Redeem burns points against the program's conversion rate and returns
// the discount to apply
func (s *Service) Redeem(ctx context.Context, tenantID uuid.UUID, req RedeemRequest) (*RedeemResponse, error) {
	member, err := s.members.FindByPartnerForUpdate(ctx, tenantID, req.PartnerID)
	if err != nil {
		return nil, err
	}
	program, err := s.programs.FindByID(ctx, tenantID, member.ProgramID)
	if err != nil {
		return nil, err
	}
	discount, err := program.RedemptionValue(req.Points)
	if err != nil {
		return nil, err
	}
	entry, err := member.Redeem(req.Points, req.OrderID, "Conversion de points")
	if err != nil {
		return nil, err
	}
	if err := s.members.Save(ctx, member); err != nil {
		return nil, err
	}
	if err := s.transactions.Append(ctx, entry); err != nil {
		return nil, err
	}
	s.publishEvents(ctx, member)
	return &RedeemResponse{
		Member:      ToMemberResponse(member),
		Points:      req.Points,
		DiscountTND: discount.Amount(),
	}, nil
}

// Adjust manually corrects a balance
func (s *Service) Adjust(ctx context.Context, tenantID uuid.UUID, req AdjustRequest) (*MemberResponse, error) {
	member, err := s.members.FindByPartnerForUpdate(ctx, tenantID, req.PartnerID)
	if err != nil {
		return nil, err
	}
	entry, err := member.Adjust(req.Delta, req.Description)
	if err != nil {
		return nil, err
	}
	if err := s.members.Save(ctx, member); err != nil {
		return nil, err
	}
	if err := s.transactions.Append(ctx, entry); err != nil {
		return nil, err
	}
	resp := ToMemberResponse(member)
	return &resp, nil
}

func (s *Service) publishEvents(ctx context.Context, member *loyalty.Member) {
	if s.eventPublisher == nil {
		return
	}
	if err := s.eventPublisher.Publish(ctx, member.GetDomainEvents()...); err == nil {
		member.ClearDomainEvents()
	}
}
