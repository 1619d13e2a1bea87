package seo

import (
	"context"
	"encoding/xml"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/quelyos/backend/internal/infrastructure/config"
)

// Ref is one indexable entity: its URL slug and last modification date
type Ref struct {
	Slug      string
	UpdatedAt time.Time
}

// Source lists the indexable entities of a tenant
type Source interface {
	CategoryRefs(ctx context.Context, tenantID uuid.UUID) ([]Ref, error)
	ProductRefs(ctx context.Context, tenantID uuid.UUID) ([]Ref, error)
}

// Paths crawlers must stay out of
var disallowedPaths = []string{
	"/admin/",
	"/cart/",
	"/checkout/",
	"/account/",
	"/api/",
	"/search?",
}

// Service renders the sitemap and robots.txt surfaces
type Service struct {
	source   Source
	baseURL  string
	indexing bool
}

// NewService creates the SEO service
func NewService(source Source, app config.AppConfig, seo config.SEOConfig) *Service {
	return &Service{
		source:   source,
		baseURL:  strings.TrimRight(app.BaseURL, "/"),
		indexing: seo.IndexingEnabled,
	}
}

type sitemapURL struct {
	XMLName    xml.Name `xml:"url"`
	Loc        string   `xml:"loc"`
	LastMod    string   `xml:"lastmod,omitempty"`
	ChangeFreq string   `xml:"changefreq"`
	Priority   string   `xml:"priority"`
}

type urlSet struct {
	XMLName xml.Name     `xml:"urlset"`
	XMLNS   string       `xml:"xmlns,attr"`
	URLs    []sitemapURL `xml:"url"`
}

// Sitemap renders the tenant's sitemap XML. Home gets priority 1.0,
// the shop listing 0.9, categories 0.7, products 0.6; lastmod is the
// entity's last modification date.
func (s *Service) Sitemap(ctx context.Context, tenantID uuid.UUID) ([]byte, error) {
	categories, err := s.source.CategoryRefs(ctx, tenantID)
	if err != nil {
		return nil, err
	}
	products, err := s.source.ProductRefs(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var latest time.Time
	for _, ref := range products {
		if ref.UpdatedAt.After(latest) {
			latest = ref.UpdatedAt
		}
	}

	urls := make([]sitemapURL, 0, 2+len(categories)+len(products))
	urls = append(urls,
		sitemapURL{Loc: s.baseURL + "/", LastMod: lastMod(latest), ChangeFreq: "daily", Priority: "1.0"},
		sitemapURL{Loc: s.baseURL + "/shop", LastMod: lastMod(latest), ChangeFreq: "daily", Priority: "0.9"},
	)
	for _, ref := range categories {
		urls = append(urls, sitemapURL{
			Loc:        s.baseURL + "/shop/category/" + ref.Slug,
			LastMod:    lastMod(ref.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.7",
		})
	}
	for _, ref := range products {
		urls = append(urls, sitemapURL{
			Loc:        s.baseURL + "/shop/" + ref.Slug,
			LastMod:    lastMod(ref.UpdatedAt),
			ChangeFreq: "weekly",
			Priority:   "0.6",
		})
	}

	body, err := xml.MarshalIndent(urlSet{
		XMLNS: "http://www.sitemaps.org/schemas/sitemap/0.9",
		URLs:  urls,
	}, "", "  ")
	if err != nil {
		return nil, err
	}
	return append([]byte(xml.Header), body...), nil
}

// Robots renders robots.txt. With indexing off everything is disallowed.
func (s *Service) Robots() string {
	var b strings.Builder
	b.WriteString("User-agent: *\n")
	if !s.indexing {
		b.WriteString("Disallow: /\n")
		return b.String()
	}

	b.WriteString("Allow: /\n")
	for _, path := range disallowedPaths {
		b.WriteString("Disallow: " + path + "\n")
	}
	b.WriteString("\nSitemap: " + s.baseURL + "/seo/sitemap.xml\n")
	return b.String()
}

func lastMod(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2006-01-02")
}
