package scrapers

import (
	"context"
	"net/url"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

// Scraper defines the interface for all listing scrapers
type Scraper interface {
	// CanScrape checks if the scraper can handle the given URL
	CanScrape(url string) bool
	// ScrapeListing renders the listing page and extracts its fields
	ScrapeListing(ctx context.Context, url string) (*models.ScrapedListing, error)
	// IsListingURL reports whether a link found on a category page points
	// at a single listing of this site
	IsListingURL(u *url.URL) bool
}
