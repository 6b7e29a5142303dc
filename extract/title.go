package extract

import (
	"net/url"
	"path"
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const maxTitleLength = 200

// Title returns the first non-empty title produced by the strategies.
func Title(p *Page, strategies []TitleStrategy) string {
	for _, s := range strategies {
		if t := cleanText(s.Func(p)); t != "" {
			return truncateRunes(t, maxTitleLength)
		}
	}
	return ""
}

var breadcrumbSplitRe = regexp.MustCompile(`\s+(?:>|›|»|/|\|)\s+`)

var breadcrumbSelectors = strings.Join([]string{
	`nav[aria-label*="readcrumb"] a`,
	`nav[aria-label*="readcrumb"] span`,
	`.breadcrumb a`,
	`.breadcrumb li`,
	`.breadcrumbs a`,
	`.woocommerce-breadcrumb a`,
	`[itemtype*="BreadcrumbList"] [itemprop="name"]`,
}, ", ")

// BreadcrumbTitle rebuilds a title from the breadcrumb trail, starting at the
// segment naming a known brand (brand, model, variant).
func BreadcrumbTitle(p *Page) string {
	if segs := htmlBreadcrumb(p); len(segs) > 0 {
		if t := titleFromSegments(segs); t != "" {
			return t
		}
	}
	for _, line := range p.Lines() {
		parts := breadcrumbSplitRe.Split(cleanText(line), -1)
		if len(parts) < 3 {
			continue
		}
		if t := titleFromSegments(parts); t != "" {
			return t
		}
	}
	return ""
}

func htmlBreadcrumb(p *Page) []string {
	var segs []string
	seen := make(map[string]bool)
	p.Doc().Find(breadcrumbSelectors).Each(func(_ int, s *goquery.Selection) {
		t := cleanText(s.Text())
		if t != "" && !seen[t] {
			seen[t] = true
			segs = append(segs, t)
		}
	})
	// The WooCommerce breadcrumb ends with the current page as plain text.
	if last := cleanText(p.Doc().Find(".woocommerce-breadcrumb").Contents().Last().Text()); last != "" && !seen[last] {
		segs = append(segs, last)
	}
	return segs
}

const maxBreadcrumbSegments = 3

func titleFromSegments(segs []string) string {
	for i, seg := range segs {
		if DetectBrand(seg) == "" {
			continue
		}
		last := segs[len(segs)-1]
		if i < len(segs)-1 && DetectBrand(last) != "" {
			// The final crumb already carries the full name.
			return last
		}
		end := i + maxBreadcrumbSegments
		if end > len(segs) {
			end = len(segs)
		}
		return strings.Join(segs[i:end], " ")
	}
	return ""
}

var genericSlugs = map[string]bool{
	"annonce": true, "annonces": true, "produit": true, "product": true, "vehicule": true,
	"vehicle": true, "detail": true, "details": true, "fiche": true, "p": true, "auto": true,
	"occasion": true, "voiture": true, "index": true,
}

var longNumberRe = regexp.MustCompile(`^\d{5,}$`)

// SlugTitle decodes the last meaningful URL path segment:
// "bmw-serie-3-320d-12345.html" becomes "Bmw Serie 3 320d".
func SlugTitle(p *Page) string {
	u, err := url.Parse(p.URL)
	if err != nil {
		return ""
	}
	segments := strings.Split(strings.Trim(u.Path, "/"), "/")
	for i := len(segments) - 1; i >= 0; i-- {
		seg, err := url.PathUnescape(segments[i])
		if err != nil {
			seg = segments[i]
		}
		seg = strings.TrimSuffix(seg, path.Ext(seg))
		if seg == "" || genericSlugs[strings.ToLower(seg)] {
			continue
		}
		if t := decodeSlug(seg); t != "" {
			return t
		}
	}
	return ""
}

func decodeSlug(seg string) string {
	tokens := strings.FieldsFunc(seg, func(r rune) bool { return r == '-' || r == '_' || r == '+' })
	for len(tokens) > 0 && longNumberRe.MatchString(tokens[len(tokens)-1]) {
		tokens = tokens[:len(tokens)-1]
	}
	alpha := 0
	for _, t := range tokens {
		if strings.IndexFunc(t, unicode.IsLetter) >= 0 {
			alpha++
		}
	}
	if len(tokens) < 2 || alpha == 0 {
		return ""
	}
	for i, t := range tokens {
		tokens[i] = titleCase(t)
	}
	return strings.Join(tokens, " ")
}

func titleCase(word string) string {
	r, size := utf8.DecodeRuneInString(word)
	if r == utf8.RuneError {
		return word
	}
	return string(unicode.ToUpper(r)) + strings.ToLower(word[size:])
}

// FirstHeadingTitle returns the first markdown heading, or the first <h1>.
func FirstHeadingTitle(p *Page) string {
	for _, line := range p.Lines() {
		if strings.HasPrefix(line, "#") {
			if t := strings.TrimSpace(strings.TrimLeft(line, "#")); t != "" {
				return t
			}
		}
	}
	return strings.TrimSpace(p.Doc().Find("h1").First().Text())
}

// FirstLineTitle returns the first non-empty line that is not an image or link.
func FirstLineTitle(p *Page) string {
	for _, line := range p.Lines() {
		if line == "" || isMediaLine(line) {
			continue
		}
		if t := cleanText(strings.TrimLeft(line, "#*-> ")); t != "" {
			return t
		}
	}
	return ""
}
