package extract

import (
	"regexp"
	"strings"
)

// descriptionHeadings are folded heading texts that introduce the seller's text.
var descriptionHeadings = []string{
	"description",
	"descriptif",
	"commentaire du vendeur",
	"commentaires du vendeur",
	"le mot du vendeur",
	"a propos",
	"informations complementaires",
	"presentation",
	"observations",
}

// Description returns the first non-empty description, capped at
// MaxDescriptionLength characters.
func Description(p *Page, strategies []DescriptionStrategy) string {
	for _, s := range strategies {
		if d := strings.TrimSpace(s.Func(p)); d != "" {
			return truncateRunes(d, MaxDescriptionLength)
		}
	}
	return ""
}

var boldHeadingRe = regexp.MustCompile(`^\*\*[^*]+\*\*:?$`)

func isDescriptionHeading(line string) bool {
	if !strings.HasPrefix(line, "#") && !boldHeadingRe.MatchString(line) && !strings.HasSuffix(line, ":") {
		return false
	}
	h := fold(strings.Trim(line, "#*: "))
	for _, syn := range descriptionHeadings {
		if h == syn || strings.HasPrefix(h, syn+" ") {
			return true
		}
	}
	return false
}

// SectionDescription returns the text following a description heading, up to
// the next markdown heading.
func SectionDescription(p *Page) string {
	lines := p.Lines()
	for i, line := range lines {
		if !isDescriptionHeading(line) {
			continue
		}
		var body []string
		for _, next := range lines[i+1:] {
			if strings.HasPrefix(next, "#") || (len(body) > 0 && boldHeadingRe.MatchString(next)) {
				break
			}
			if next == "" || isMediaLine(next) {
				continue
			}
			body = append(body, cleanText(next))
		}
		if len(body) > 0 {
			return strings.Join(body, "\n")
		}
	}
	return ""
}

const minHTMLDescription = 40

// HTMLBlockDescription reads the usual description containers of product pages.
func HTMLBlockDescription(p *Page) string {
	for _, sel := range []string{
		"#tab-description",
		".woocommerce-product-details__short-description",
		`[itemprop="description"]`,
		"#description",
		".description",
	} {
		text := cleanText(p.Doc().Find(sel).First().Text())
		if len([]rune(text)) >= minHTMLDescription {
			return text
		}
	}
	return ""
}

// MetaDescription reads the page's meta description.
func MetaDescription(p *Page) string {
	doc := p.Doc()
	if d, ok := doc.Find(`meta[name="description"]`).Attr("content"); ok && strings.TrimSpace(d) != "" {
		return d
	}
	d, _ := doc.Find(`meta[property="og:description"]`).Attr("content")
	return d
}
