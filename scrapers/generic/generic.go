// Package generic scrapes any listing page with the shared extraction
// strategies only.
package generic

import (
	"context"
	"net/url"
	"path"
	"strings"

	"github.com/raushankrgupta/vehicle-catalog-importer/extract"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers/base"
)

var listingHints = []string{
	"/annonce/", "/annonce-", "/annonces/", "/vehicule/", "/vehicule-", "/voiture/",
	"/detail/", "/fiche/", "/produit/", "/product/",
}

var navigationHints = []string{
	"contact", "mentions", "legal", "cgv", "panier", "cart", "login", "compte",
	"account", "blog", "actualite", "tag/", "page/", "recherche", "search", "financement",
}

var nonPageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".svg": true,
	".pdf": true, ".css": true, ".js": true, ".xml": true,
}

type GenericScraper struct {
	Renderer base.Renderer
	rules    extract.Rules
}

func NewGenericScraper(r base.Renderer) *GenericScraper {
	return &GenericScraper{Renderer: r, rules: extract.DefaultRules()}
}

func (s *GenericScraper) CanScrape(string) bool { return true }

// IsListingURL accepts paths that name a listing explicitly, or whose last
// segment reads like a vehicle slug ("peugeot-308-gt-line-123").
func (s *GenericScraper) IsListingURL(u *url.URL) bool {
	p := strings.ToLower(u.Path)
	if p == "" || p == "/" || nonPageExtensions[path.Ext(p)] {
		return false
	}
	for _, hint := range navigationHints {
		if strings.Contains(p, hint) {
			return false
		}
	}
	for _, hint := range listingHints {
		if i := strings.Index(p, hint); i >= 0 && strings.Trim(p[i+len(hint):], "/") != "" {
			return true
		}
	}
	last := path.Base(strings.TrimRight(p, "/"))
	return strings.Count(last, "-") >= 2 && strings.ContainsAny(last, "0123456789")
}

func (s *GenericScraper) ScrapeListing(ctx context.Context, rawURL string) (*models.ScrapedListing, error) {
	page, err := s.Renderer.Render(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return extract.Parse(page, s.rules), nil
}
