package models

import (
	"encoding/json"
	"time"

	"github.com/quelyos/backend/internal/domain/content"
)

// ContentEntryModel is the persistence model for the content Entry
// aggregate. The kind-specific payload is stored as a JSON document.
type ContentEntryModel struct {
	TenantAggregateModel
	Kind     content.Kind    `gorm:"type:varchar(20);not null;uniqueIndex:idx_content_entries_tenant_kind_slug,priority:2;index:idx_content_entries_tenant_kind,priority:2"`
	Name     string          `gorm:"type:varchar(255);not null"`
	Slug     string          `gorm:"type:varchar(255);not null;uniqueIndex:idx_content_entries_tenant_kind_slug,priority:3"`
	Sequence int             `gorm:"not null;default:0"`
	Active   bool            `gorm:"not null;default:true"`
	StartsAt *time.Time      `gorm:"index"`
	EndsAt   *time.Time      `gorm:"index"`
	Payload  json.RawMessage `gorm:"type:jsonb;not null"`
}

// TableName returns the table name for GORM
func (ContentEntryModel) TableName() string {
	return "content_entries"
}

// ToDomain converts the persistence model to a domain Entry.
func (m *ContentEntryModel) ToDomain() *content.Entry {
	e := &content.Entry{
		Kind:     m.Kind,
		Name:     m.Name,
		Slug:     m.Slug,
		Sequence: m.Sequence,
		Active:   m.Active,
		StartsAt: m.StartsAt,
		EndsAt:   m.EndsAt,
		Payload:  m.Payload,
	}
	m.PopulateTenantAggregateRoot(&e.TenantAggregateRoot)
	return e
}

// FromDomain populates the persistence model from a domain Entry.
func (m *ContentEntryModel) FromDomain(e *content.Entry) {
	m.FromDomainTenantAggregateRoot(e.TenantAggregateRoot)
	m.Kind = e.Kind
	m.Name = e.Name
	m.Slug = e.Slug
	m.Sequence = e.Sequence
	m.Active = e.Active
	m.StartsAt = e.StartsAt
	m.EndsAt = e.EndsAt
	m.Payload = e.Payload
}

// ContentEntryModelFromDomain creates a persistence model from a domain Entry.
func ContentEntryModelFromDomain(e *content.Entry) *ContentEntryModel {
	m := &ContentEntryModel{}
	m.FromDomain(e)
	return m
}
