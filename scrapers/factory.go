package scrapers

import (
	"context"
	"net/url"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers/base"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers/dealershop"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers/generic"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers/lacentrale"
)

// Registry picks the site scraper for a URL. The generic scraper matches
// every URL and is consulted last.
type Registry struct {
	scrapers []Scraper
	fallback Scraper
}

// NewRegistry registers the known sites on top of renderer.
func NewRegistry(renderer base.Renderer) *Registry {
	return &Registry{
		scrapers: []Scraper{
			lacentrale.NewLaCentraleScraper(renderer),
			dealershop.NewDealerShopScraper(renderer),
		},
		fallback: generic.NewGenericScraper(renderer),
	}
}

// GetScraper returns the appropriate scraper for rawURL.
func (r *Registry) GetScraper(rawURL string) Scraper {
	for _, s := range r.scrapers {
		if s.CanScrape(rawURL) {
			return s
		}
	}
	return r.fallback
}

// CanScrape is always true: unknown sites use the generic scraper.
func (r *Registry) CanScrape(string) bool { return true }

// ScrapeListing dispatches to the scraper registered for rawURL.
func (r *Registry) ScrapeListing(ctx context.Context, rawURL string) (*models.ScrapedListing, error) {
	return r.GetScraper(rawURL).ScrapeListing(ctx, rawURL)
}

// IsListingURL dispatches to the scraper registered for u.
func (r *Registry) IsListingURL(u *url.URL) bool {
	return r.GetScraper(u.String()).IsListingURL(u)
}
