package tenant

import (
	"context"
	"errors"
	"strings"

	"github.com/quelyos/backend/internal/domain/shared"
)

// Resolver maps incoming request attributes to a tenant.
// Lookup order: explicit domain header, then request host, then the
// default tenant. An explicit identifier that matches nothing is an
// error; a missing or unmatched host silently falls back.
type Resolver struct {
	repo Repository
}

// NewResolver creates a new tenant resolver
func NewResolver(repo Repository) *Resolver {
	return &Resolver{repo: repo}
}

// Resolve resolves a tenant from the supplied header and host values
func (r *Resolver) Resolve(ctx context.Context, headerDomain, host string) (*Tenant, error) {
	if headerDomain != "" {
		t, err := r.repo.FindByDomain(ctx, normalizeDomain(headerDomain))
		if err != nil {
			if errors.Is(err, shared.ErrNotFound) {
				return nil, shared.ErrTenantNotFound
			}
			return nil, err
		}
		return t, nil
	}

	if host != "" {
		t, err := r.repo.FindByDomain(ctx, normalizeDomain(host))
		if err == nil {
			return t, nil
		}
		if !errors.Is(err, shared.ErrNotFound) {
			return nil, err
		}
	}

	return r.repo.FindDefault(ctx)
}

// normalizeDomain strips scheme, port and trailing dots from a host value
func normalizeDomain(host string) string {
	host = strings.TrimSpace(strings.ToLower(host))
	host = strings.TrimPrefix(host, "https://")
	host = strings.TrimPrefix(host, "http://")
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}
	return strings.TrimSuffix(host, ".")
}
