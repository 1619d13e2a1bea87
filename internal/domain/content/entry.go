package content

import (
	"encoding/json"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/quelyos/backend/internal/domain/shared"
)

// Kind enumerates the storefront configuration families. All kinds share
// the same lifecycle: ordered by sequence, toggled by an active flag,
// optionally windowed by start and end dates.
type Kind string

const (
	KindMenu        Kind = "menu"
	KindSlide       Kind = "slide"
	KindBanner      Kind = "banner"
	KindPopup       Kind = "popup"
	KindFAQ         Kind = "faq"
	KindPage        Kind = "page"
	KindReview      Kind = "review"
	KindCollection  Kind = "collection"
	KindBundle      Kind = "bundle"
	KindTestimonial Kind = "testimonial"
	KindBlogPost    Kind = "blog_post"
	KindFlashSale   Kind = "flash_sale"
	KindPOSConfig   Kind = "pos_config"
)

var allKinds = map[Kind]struct{}{
	KindMenu: {}, KindSlide: {}, KindBanner: {}, KindPopup: {},
	KindFAQ: {}, KindPage: {}, KindReview: {}, KindCollection: {},
	KindBundle: {}, KindTestimonial: {}, KindBlogPost: {},
	KindFlashSale: {}, KindPOSConfig: {},
}

// IsValid checks if the kind is known
func (k Kind) IsValid() bool {
	_, ok := allKinds[k]
	return ok
}

// String returns the string representation of Kind
func (k Kind) String() string {
	return string(k)
}

// Entry is one storefront configuration record. Kind-specific fields
// live in the JSON payload; the lifecycle fields are uniform so the
// admin shell can manage every family with the same operations.
type Entry struct {
	shared.TenantAggregateRoot
	Kind     Kind
	Name     string
	Slug     string
	Sequence int
	Active   bool
	StartsAt *time.Time
	EndsAt   *time.Time
	Payload  json.RawMessage
}

// NewEntry creates an active entry of the given kind
func NewEntry(tenantID uuid.UUID, kind Kind, name string, payload json.RawMessage) (*Entry, error) {
	if !kind.IsValid() {
		return nil, shared.NewDomainError("INVALID_KIND", "Type de contenu inconnu")
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return nil, shared.NewDomainError("INVALID_NAME", "Nom requis")
	}
	if len(payload) > 0 && !json.Valid(payload) {
		return nil, shared.NewDomainError("INVALID_PAYLOAD", "Contenu JSON invalide")
	}
	return &Entry{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Kind:                kind,
		Name:                name,
		Slug:                Slugify(name),
		Sequence:            0,
		Active:              true,
		Payload:             payload,
	}, nil
}

// Update replaces the mutable fields
func (e *Entry) Update(name string, payload json.RawMessage) error {
	name = strings.TrimSpace(name)
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Nom requis")
	}
	if len(payload) > 0 && !json.Valid(payload) {
		return shared.NewDomainError("INVALID_PAYLOAD", "Contenu JSON invalide")
	}
	e.Name = name
	e.Slug = Slugify(name)
	e.Payload = payload
	e.Touch()
	e.IncrementVersion()
	return nil
}

// SetWindow bounds the entry's visibility in time. Both bounds are
// optional; when both are set the start must precede the end.
func (e *Entry) SetWindow(startsAt, endsAt *time.Time) error {
	if startsAt != nil && endsAt != nil && !startsAt.Before(*endsAt) {
		return shared.NewDomainError("INVALID_WINDOW", "La date de début doit précéder la date de fin")
	}
	e.StartsAt = startsAt
	e.EndsAt = endsAt
	e.Touch()
	e.IncrementVersion()
	return nil
}

// SetSequence changes the display order
func (e *Entry) SetSequence(sequence int) {
	e.Sequence = sequence
	e.Touch()
	e.IncrementVersion()
}

// SetActive toggles the entry
func (e *Entry) SetActive(active bool) {
	e.Active = active
	e.Touch()
	e.IncrementVersion()
}

// IsVisible reports whether the entry should render at the given
// instant: active, past its start, before its end
func (e *Entry) IsVisible(now time.Time) bool {
	if !e.Active {
		return false
	}
	if e.StartsAt != nil && now.Before(*e.StartsAt) {
		return false
	}
	if e.EndsAt != nil && !now.Before(*e.EndsAt) {
		return false
	}
	return true
}

// DecodePayload unmarshals the payload into a kind-specific struct
func (e *Entry) DecodePayload(v any) error {
	if len(e.Payload) == 0 {
		return nil
	}
	if err := json.Unmarshal(e.Payload, v); err != nil {
		return shared.NewDomainError("INVALID_PAYLOAD", "Contenu JSON invalide")
	}
	return nil
}

// Slugify derives a URL slug from a name: lowercase, spaces and
// punctuation collapsed to single hyphens
func Slugify(name string) string {
	var b strings.Builder
	lastHyphen := true
	for _, r := range strings.ToLower(name) {
		switch {
		case r >= 'a' && r <= 'z' || r >= '0' && r <= '9':
			b.WriteRune(r)
			lastHyphen = false
		case !lastHyphen:
			b.WriteByte('-')
			lastHyphen = true
		}
	}
	return strings.Trim(b.String(), "-")
}
