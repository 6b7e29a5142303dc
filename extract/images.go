package extract

import (
	"path"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
)

var excludedImageRe = regexp.MustCompile(`(?i)(thumb|placeholder|icon|logo|sprite|avatar|blank\.gif|\.svg(?:[?#]|$)|^data:|[-_](?:[1-9]\d|[12]\d\d)x(?:[1-9]\d|[12]\d\d)\.)`)

var imageExtensions = map[string]bool{
	".jpg": true, ".jpeg": true, ".png": true, ".webp": true, ".gif": true, ".avif": true,
}

// Images runs the strategies in order and returns absolute, deduplicated
// image URLs in first-seen order, capped at MaxImages.
func Images(p *Page, strategies []ImageStrategy) []string {
	seen := make(map[string]bool)
	var out []string
	for _, s := range strategies {
		if s.Fallback && len(out) > 0 {
			continue
		}
		for _, ref := range s.Func(p) {
			if len(out) >= MaxImages {
				return out
			}
			abs := resolve(p.URL, ref)
			if abs == "" || seen[abs] || ExcludedImage(abs) {
				continue
			}
			seen[abs] = true
			out = append(out, abs)
		}
	}
	return out
}

// ExcludedImage reports whether u looks like a thumbnail, icon or placeholder.
func ExcludedImage(u string) bool {
	return excludedImageRe.MatchString(u)
}

// LooksLikeImage reports whether u points at a raster image file.
func LooksLikeImage(u string) bool {
	p := u
	if i := strings.IndexAny(p, "?#"); i >= 0 {
		p = p[:i]
	}
	return imageExtensions[strings.ToLower(path.Ext(p))]
}

// LargeImageAttrImages reads WooCommerce-style data-large_image attributes.
func LargeImageAttrImages(p *Page) []string {
	return attrValues(p, "[data-large_image]", "data-large_image", false)
}

// DataSrcImages reads lazy-loaded gallery images from data-src attributes.
func DataSrcImages(p *Page) []string {
	return attrValues(p, "[data-src]", "data-src", true)
}

// MarkdownImages reads ![alt](src) references from the markdown projection.
func MarkdownImages(p *Page) []string {
	var out []string
	for _, m := range markdownImageRe.FindAllStringSubmatch(p.Markdown, -1) {
		out = append(out, m[1])
	}
	return out
}

// CDNImages returns a strategy keeping image references whose URL matches re,
// from both the HTML and the markdown projection.
func CDNImages(re *regexp.Regexp) func(p *Page) []string {
	return func(p *Page) []string {
		var out []string
		p.Doc().Find("img, source, [data-src]").Each(func(_ int, s *goquery.Selection) {
			for _, attr := range []string{"src", "data-src", "srcset"} {
				v, ok := s.Attr(attr)
				if !ok {
					continue
				}
				if attr == "srcset" {
					v = firstSrcsetURL(v)
				}
				if v != "" && re.MatchString(v) {
					out = append(out, v)
				}
			}
		})
		for _, ref := range MarkdownImages(p) {
			if re.MatchString(ref) {
				out = append(out, ref)
			}
		}
		return out
	}
}

func attrValues(p *Page, selector, attr string, imagesOnly bool) []string {
	var out []string
	p.Doc().Find(selector).Each(func(_ int, s *goquery.Selection) {
		v := strings.TrimSpace(s.AttrOr(attr, ""))
		if v == "" || (imagesOnly && !LooksLikeImage(v)) {
			return
		}
		out = append(out, v)
	})
	return out
}

// firstSrcsetURL returns the first URL of a "url width, url width" list.
func firstSrcsetURL(srcset string) string {
	fields := strings.Fields(strings.Split(srcset, ",")[0])
	if len(fields) == 0 {
		return ""
	}
	return fields[0]
}
