// Package extract turns rendered listing pages into structured listings.
//
// Every field is derived by an ordered list of named strategies. Site-specific
// strategies run first, the generic ones after, and each field ends with a
// deterministic fallback. Extraction never fails: a field that cannot be found
// is left empty (or nil for the price).
package extract

import (
	"net/url"
	"regexp"
	"strings"
	"unicode"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/text/runes"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

const (
	// MaxImages caps the number of images kept per listing.
	MaxImages = 20
	// MaxDescriptionLength caps descriptions, in characters.
	MaxDescriptionLength = 2000
)

// Page wraps a rendered page and parses its HTML at most once.
type Page struct {
	models.RenderedPage
	doc   *goquery.Document
	lines []string
}

// NewPage wraps a rendered page for extraction.
func NewPage(p models.RenderedPage) *Page {
	return &Page{RenderedPage: p}
}

// Doc returns the parsed HTML document. It is never nil.
func (p *Page) Doc() *goquery.Document {
	if p.doc != nil {
		return p.doc
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(p.HTML))
	if err != nil {
		doc, _ = goquery.NewDocumentFromReader(strings.NewReader(""))
	}
	p.doc = doc
	return doc
}

// Lines returns the trimmed lines of the markdown projection.
func (p *Page) Lines() []string {
	if p.lines != nil {
		return p.lines
	}
	raw := strings.Split(strings.ReplaceAll(p.Markdown, "\r\n", "\n"), "\n")
	p.lines = make([]string, 0, len(raw))
	for _, l := range raw {
		p.lines = append(p.lines, strings.TrimSpace(l))
	}
	return p.lines
}

// Text returns the searchable text of the page: the markdown projection when
// present, otherwise the text content of the HTML body.
func (p *Page) Text() string {
	if strings.TrimSpace(p.Markdown) != "" {
		return p.Markdown
	}
	return p.Doc().Find("body").Text()
}

// TitleStrategy derives a title candidate.
type TitleStrategy struct {
	Name string
	Func func(p *Page) string
}

// ImageStrategy derives image URL candidates.
type ImageStrategy struct {
	Name string
	Func func(p *Page) []string
	// Fallback strategies only run when earlier strategies found nothing.
	Fallback bool
}

// SpecStrategy derives label/value pairs.
type SpecStrategy struct {
	Name string
	Func func(p *Page) map[string]string
}

// DescriptionStrategy derives a free-text description.
type DescriptionStrategy struct {
	Name string
	Func func(p *Page) string
}

// Rules is the ordered set of strategies used for one source site.
type Rules struct {
	Titles       []TitleStrategy
	Images       []ImageStrategy
	Specs        []SpecStrategy
	Descriptions []DescriptionStrategy
}

// DefaultRules returns the generic strategies shared by every site.
func DefaultRules() Rules {
	return Rules{
		Titles: []TitleStrategy{
			{Name: "breadcrumb", Func: BreadcrumbTitle},
			{Name: "url-slug", Func: SlugTitle},
			{Name: "first-heading", Func: FirstHeadingTitle},
			{Name: "first-line", Func: FirstLineTitle},
		},
		Images: []ImageStrategy{
			{Name: "data-large-image", Func: LargeImageAttrImages},
			{Name: "data-src", Func: DataSrcImages},
			{Name: "markdown", Func: MarkdownImages, Fallback: true},
		},
		Specs: []SpecStrategy{
			{Name: "html-table", Func: HTMLTableSpecs},
			{Name: "markdown-table", Func: MarkdownTableSpecs},
			{Name: "label-value", Func: LabelValueSpecs},
		},
		Descriptions: []DescriptionStrategy{
			{Name: "section", Func: SectionDescription},
			{Name: "html-block", Func: HTMLBlockDescription},
			{Name: "meta", Func: MetaDescription},
		},
	}
}

// Prepend returns a copy of r with the strategies of site placed first.
func (r Rules) Prepend(site Rules) Rules {
	return Rules{
		Titles:       append(append([]TitleStrategy{}, site.Titles...), r.Titles...),
		Images:       append(append([]ImageStrategy{}, site.Images...), r.Images...),
		Specs:        append(append([]SpecStrategy{}, site.Specs...), r.Specs...),
		Descriptions: append(append([]DescriptionStrategy{}, site.Descriptions...), r.Descriptions...),
	}
}

// Parse extracts a listing from a rendered page.
func Parse(rendered models.RenderedPage, rules Rules) *models.ScrapedListing {
	p := NewPage(rendered)

	listing := &models.ScrapedListing{
		SourceURL:   rendered.URL,
		Title:       Title(p, rules.Titles),
		Price:       Price(p.Text()),
		Images:      Images(p, rules.Images),
		Description: Description(p, rules.Descriptions),
		RawSpecs:    Specs(p, rules.Specs),
	}
	listing.Brand = DetectBrand(listing.Title)
	listing.Attributes = Normalize(listing.RawSpecs)
	return listing
}

var (
	markdownLinkRe  = regexp.MustCompile(`\[([^\]]*)\]\([^)]*\)`)
	markdownImageRe = regexp.MustCompile(`!\[[^\]]*\]\(\s*<?([^)\s>]+)>?(?:\s+"[^"]*")?\s*\)`)
	spacesRe        = regexp.MustCompile(`\s+`)
)

// cleanText collapses whitespace and strips markdown emphasis and links.
func cleanText(s string) string {
	s = markdownLinkRe.ReplaceAllString(s, "$1")
	s = strings.NewReplacer("**", "", "__", "", "`", "").Replace(s)
	s = spacesRe.ReplaceAllString(s, " ")
	return strings.TrimSpace(s)
}

// isMediaLine reports whether a markdown line only carries an image or a link.
func isMediaLine(line string) bool {
	if strings.HasPrefix(line, "![") || strings.HasPrefix(line, "[![") {
		return true
	}
	if strings.HasPrefix(line, "http://") || strings.HasPrefix(line, "https://") {
		return true
	}
	stripped := strings.TrimSpace(markdownLinkRe.ReplaceAllString(line, ""))
	return stripped == "" && strings.HasPrefix(line, "[")
}

// fold lowercases s and strips diacritics, for label and vocabulary matching.
func fold(s string) string {
	t := transform.Chain(norm.NFD, runes.Remove(runes.In(unicode.Mn)), norm.NFC)
	out, _, err := transform.String(t, s)
	if err != nil {
		out = s
	}
	return strings.ToLower(strings.TrimSpace(out))
}

func truncateRunes(s string, max int) string {
	r := []rune(s)
	if len(r) <= max {
		return s
	}
	return strings.TrimSpace(string(r[:max]))
}

// resolve makes ref absolute against base. It returns "" for unusable refs.
func resolve(base, ref string) string {
	ref = strings.TrimSpace(ref)
	if ref == "" || strings.HasPrefix(ref, "data:") || strings.HasPrefix(ref, "javascript:") {
		return ""
	}
	u, err := url.Parse(ref)
	if err != nil {
		return ""
	}
	if u.IsAbs() {
		return u.String()
	}
	b, err := url.Parse(base)
	if err != nil || !b.IsAbs() {
		return ""
	}
	return b.ResolveReference(u).String()
}
