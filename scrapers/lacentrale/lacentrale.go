package lacentrale

import (
	"context"
	"net/url"
	"regexp"
	"strings"

	"github.com/raushankrgupta/vehicle-catalog-importer/extract"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers/base"
)

var (
	listingPathRe = regexp.MustCompile(`^/auto-occasion-annonce-\d+\.html$`)
	photoCDNRe    = regexp.MustCompile(`(?i)^(?:https?:)?//[a-z0-9.-]*photos?[a-z0-9.-]*\.lacentrale\.fr/`)
)

type LaCentraleScraper struct {
	Renderer base.Renderer
	rules    extract.Rules
}

func NewLaCentraleScraper(r base.Renderer) *LaCentraleScraper {
	return &LaCentraleScraper{
		Renderer: r,
		rules: extract.DefaultRules().Prepend(extract.Rules{
			Titles: []extract.TitleStrategy{{Name: "lacentrale-heading", Func: heading}},
			Images: []extract.ImageStrategy{{Name: "lacentrale-cdn", Func: extract.CDNImages(photoCDNRe)}},
			Specs:  []extract.SpecStrategy{{Name: "lacentrale-table", Func: extract.MarkdownTableSpecs}},
		}),
	}
}

func (s *LaCentraleScraper) CanScrape(rawURL string) bool {
	return strings.Contains(rawURL, "lacentrale.fr")
}

func (s *LaCentraleScraper) IsListingURL(u *url.URL) bool {
	return listingPathRe.MatchString(u.Path)
}

func (s *LaCentraleScraper) ScrapeListing(ctx context.Context, rawURL string) (*models.ScrapedListing, error) {
	page, err := s.Renderer.Render(ctx, rawURL)
	if err != nil {
		return nil, err
	}
	return extract.Parse(page, s.rules), nil
}

// heading reads the summary title; the page h1 splits make and model into
// separate spans.
func heading(p *extract.Page) string {
	sel := p.Doc().Find(`[class*="summary"] h1, h1[class*="title"]`).First()
	return strings.Join(strings.Fields(sel.Text()), " ")
}
