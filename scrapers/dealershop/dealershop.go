// Package dealershop scrapes dealer websites built on WordPress/WooCommerce,
// where every vehicle is published as a product.
package dealershop

import (
	"context"
	"net/url"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raushankrgupta/vehicle-catalog-importer/extract"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers/base"
)

var listingSegments = []string{"/produit/", "/product/", "/vehicule/", "/vehicules/"}

var categorySegments = []string{"/categorie-produit/", "/product-category/", "/page/"}

type DealerShopScraper struct {
	Renderer base.Renderer
	rules    extract.Rules
}

func NewDealerShopScraper(r base.Renderer) *DealerShopScraper {
	return &DealerShopScraper{
		Renderer: r,
		rules: extract.DefaultRules().Prepend(extract.Rules{
			Titles: []extract.TitleStrategy{{Name: "product-title", Func: productTitle}},
			Images: []extract.ImageStrategy{{Name: "gallery-links", Func: galleryLinks}},
		}),
	}
}

func (s *DealerShopScraper) CanScrape(rawURL string) bool {
	u, err := url.Parse(rawURL)
	if err != nil {
		return false
	}
	return hasSegment(u.Path, listingSegments) || hasSegment(u.Path, categorySegments)
}

func (s *DealerShopScraper) IsListingURL(u *url.URL) bool {
	if hasSegment(u.Path, categorySegments) {
		return false
	}
	for _, seg := range listingSegments {
		if i := strings.Index(u.Path, seg); i >= 0 && strings.Trim(u.Path[i+len(seg):], "/") != "" {
			return true
		}
	}
	return false
}

func (s *DealerShopScraper) ScrapeListing(ctx context.Context, rawURL string) (*models.ScrapedListing, error) {
	page, err := s.Renderer.Render(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return extract.Parse(page, s.rules), nil
}

func productTitle(p *extract.Page) string {
	return strings.TrimSpace(p.Doc().Find("h1.product_title, .product_title").First().Text())
}

// galleryLinks reads the full-size image each gallery thumbnail links to.
func galleryLinks(p *extract.Page) []string {
	var out []string
	p.Doc().Find(".woocommerce-product-gallery__image a[href]").Each(func(_ int, s *goquery.Selection) {
		if href := s.AttrOr("href", ""); extract.LooksLikeImage(href) {
			out = append(out, href)
		}
	})
	return out
}

func hasSegment(path string, segments []string) bool {
	for _, seg := range segments {
		if strings.Contains(path, seg) {
			return true
		}
	}
	return false
}
