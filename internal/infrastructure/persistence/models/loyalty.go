package models

import (
	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/loyalty"
	"github.com/shopspring/decimal"
)

// LoyaltyMemberModel is the persistence model for the Member aggregate.
type LoyaltyMemberModel struct {
	TenantAggregateModel
	PartnerID     uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_loyalty_members_tenant_partner,priority:2"`
	ProgramID     uuid.UUID       `gorm:"type:uuid;not null;index"`
	CurrentPoints decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	TotalEarned   decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active        bool            `gorm:"not null;default:true"`
}

// TableName returns the table name for GORM
func (LoyaltyMemberModel) TableName() string {
	return "loyalty_members"
}

// ToDomain converts the persistence model to a domain Member.
func (m *LoyaltyMemberModel) ToDomain() *loyalty.Member {
	member := &loyalty.Member{
		PartnerID:     m.PartnerID,
		ProgramID:     m.ProgramID,
		CurrentPoints: m.CurrentPoints,
		TotalEarned:   m.TotalEarned,
		Active:        m.Active,
	}
	m.PopulateTenantAggregateRoot(&member.TenantAggregateRoot)
	return member
}

// FromDomain populates the persistence model from a domain Member.
func (m *LoyaltyMemberModel) FromDomain(member *loyalty.Member) {
	m.FromDomainTenantAggregateRoot(member.TenantAggregateRoot)
	m.PartnerID = member.PartnerID
	m.ProgramID = member.ProgramID
	m.CurrentPoints = member.CurrentPoints
	m.TotalEarned = member.TotalEarned
	m.Active = member.Active
}

// LoyaltyMemberModelFromDomain creates a persistence model from a domain Member.
func LoyaltyMemberModelFromDomain(member *loyalty.Member) *LoyaltyMemberModel {
	m := &LoyaltyMemberModel{}
	m.FromDomain(member)
	return m
}

// LoyaltyProgramModel is the persistence model for the Program aggregate.
type LoyaltyProgramModel struct {
	TenantAggregateModel
	Name          string          `gorm:"type:varchar(255);not null"`
	EarnRate      decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	RedeemValue   decimal.Decimal `gorm:"type:decimal(18,4);not null"`
	MinRedemption decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Active        bool            `gorm:"not null;default:true;index"`
}

// TableName returns the table name for GORM
func (LoyaltyProgramModel) TableName() string {
	return "loyalty_programs"
}

// ToDomain converts the persistence model to a domain Program.
func (m *LoyaltyProgramModel) ToDomain() *loyalty.Program {
	p := &loyalty.Program{
		Name:          m.Name,
		EarnRate:      m.EarnRate,
		RedeemValue:   m.RedeemValue,
		MinRedemption: m.MinRedemption,
		Active:        m.Active,
	}
	m.PopulateTenantAggregateRoot(&p.TenantAggregateRoot)
	return p
}

// FromDomain populates the persistence model from a domain Program.
func (m *LoyaltyProgramModel) FromDomain(p *loyalty.Program) {
	m.FromDomainTenantAggregateRoot(p.TenantAggregateRoot)
	m.Name = p.Name
	m.EarnRate = p.EarnRate
	m.RedeemValue = p.RedeemValue
	m.MinRedemption = p.MinRedemption
	m.Active = p.Active
}

// LoyaltyProgramModelFromDomain creates a persistence model from a domain Program.
func LoyaltyProgramModelFromDomain(p *loyalty.Program) *LoyaltyProgramModel {
	m := &LoyaltyProgramModel{}
	m.FromDomain(p)
	return m
}
