package scrapers

import (
	"context"
	"fmt"
	"net/url"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers/base"
)

// markdownLinkRe matches [text](href) but not ![alt](src).
var markdownLinkRe = regexp.MustCompile(`(?:^|[^!])\[[^\]]*\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)

// Scanner collects listing URLs from category pages.
type Scanner struct {
	Renderer base.Renderer
	Registry *Registry
	Logger   *logger.Logger
}

// NewScanner creates a Scanner sharing the registry's site rules.
func NewScanner(renderer base.Renderer, registry *Registry, log *logger.Logger) *Scanner {
	return &Scanner{Renderer: renderer, Registry: registry, Logger: log}
}

// ScanCategory renders categoryURL and returns the distinct same-host listing
// URLs it links to, in page order, truncated to limit. A limit <= 0 keeps
// every link.
func (s *Scanner) ScanCategory(ctx context.Context, categoryURL string, limit int) ([]string, error) {
	origin, err := url.Parse(categoryURL)
	if err != nil || !origin.IsAbs() {
		return nil, fmt.Errorf("invalid category url %q", categoryURL)
	}

	page, err := s.Renderer.Render(ctx, categoryURL)
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", categoryURL, err)
	}
	if page.URL != "" {
		if final, err := url.Parse(page.URL); err == nil && final.IsAbs() {
			origin = final
		}
	}

	site := s.Registry.GetScraper(categoryURL)
	self := canonical(origin)
	seen := map[string]bool{self: true}
	var out []string

	for _, href := range candidateLinks(page.HTML, page.Markdown) {
		ref, err := url.Parse(strings.TrimSpace(href))
		if err != nil {
			continue
		}
		u := origin.ResolveReference(ref)
		u.Fragment = ""
		if u.Scheme != "http" && u.Scheme != "https" {
			continue
		}
		if !sameHost(u.Host, origin.Host) || !site.IsListingURL(u) {
			continue
		}
		key := canonical(u)
		if seen[key] {
			continue
		}
		seen[key] = true
		out = append(out, u.String())
		if limit > 0 && len(out) >= limit {
			break
		}
	}

	if s.Logger != nil {
		s.Logger.Info("category scanned", "url", categoryURL, "links", len(out), "limit", limit)
	}
	return out, nil
}

// candidateLinks lists anchor hrefs first, then markdown link targets.
func candidateLinks(html, markdown string) []string {
	var links []string
	if strings.TrimSpace(html) != "" {
		if doc, err := goquery.NewDocumentFromReader(strings.NewReader(html)); err == nil {
			doc.Find("a[href]").Each(func(_ int, a *goquery.Selection) {
				links = append(links, a.AttrOr("href", ""))
			})
		}
	}
	for _, m := range markdownLinkRe.FindAllStringSubmatch(markdown, -1) {
		links = append(links, m[1])
	}
	return links
}

func sameHost(a, b string) bool {
	return strings.TrimPrefix(strings.ToLower(a), "www.") == strings.TrimPrefix(strings.ToLower(b), "www.")
}

func canonical(u *url.URL) string {
	c := *u
	c.Fragment = ""
	c.Host = strings.TrimPrefix(strings.ToLower(c.Host), "www.")
	c.Path = strings.TrimRight(c.Path, "/")
	return c.String()
}
