package identity

import (
	"strings"

	"github.com/google/uuid"
)

// Kind discriminates how an identity was established
type Kind string

const (
	KindSession Kind = "session" // back-office, authenticated via X-Session-Id
	KindGuest   Kind = "guest"   // public storefront, optionally carrying a guest email
)

// Well-known role group names
const (
	RoleAdmin     = "admin"
	RoleManager   = "manager"
	RoleStock     = "stock"
	RolePOS       = "pos"
	RoleMarketing = "marketing"
)

// Identity is the per-request caller description. It is computed once at
// the boundary and discarded at request end; repositories never make
// authorization decisions themselves.
type Identity struct {
	Kind      Kind
	UserID    uuid.UUID
	PartnerID uuid.UUID
	Email     string
	Roles     map[string]struct{}
	IP        string
}

// Guest creates a guest identity for public endpoints
func Guest(email, ip string) Identity {
	return Identity{
		Kind:  KindGuest,
		Email: strings.ToLower(strings.TrimSpace(email)),
		IP:    ip,
		Roles: map[string]struct{}{},
	}
}

// Session creates an authenticated back-office identity
func Session(userID, partnerID uuid.UUID, email, ip string, roles []string) Identity {
	roleSet := make(map[string]struct{}, len(roles))
	for _, r := range roles {
		roleSet[strings.ToLower(r)] = struct{}{}
	}
	return Identity{
		Kind:      KindSession,
		UserID:    userID,
		PartnerID: partnerID,
		Email:     strings.ToLower(strings.TrimSpace(email)),
		IP:        ip,
		Roles:     roleSet,
	}
}

// IsAuthenticated returns true for session identities
func (i Identity) IsAuthenticated() bool {
	return i.Kind == KindSession
}

// IsAdmin returns true when the identity holds the admin role
func (i Identity) IsAdmin() bool {
	return i.HasGroup(RoleAdmin)
}

// HasGroup returns true when the identity holds the given role group
func (i Identity) HasGroup(group string) bool {
	_, ok := i.Roles[strings.ToLower(group)]
	return ok
}

// HasAnyGroup returns true when the identity holds at least one of the
// given role groups
func (i Identity) HasAnyGroup(groups ...string) bool {
	for _, g := range groups {
		if i.HasGroup(g) {
			return true
		}
	}
	return false
}

// Key returns the rate limiting key for this identity: the user ID for
// authenticated callers, the client IP otherwise.
func (i Identity) Key() string {
	if i.IsAuthenticated() && i.UserID != uuid.Nil {
		return i.UserID.String()
	}
	return i.IP
}
