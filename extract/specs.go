package extract

import (
	"regexp"
	"strings"
	"unicode"
	"unicode/utf8"

	"github.com/PuerkitoBio/goquery"
)

const (
	maxSpecLabel = 60
	maxSpecValue = 200
)

// Specs merges the label/value pairs of every strategy. The first occurrence
// of a label wins.
func Specs(p *Page, strategies []SpecStrategy) map[string]string {
	out := make(map[string]string)
	for _, s := range strategies {
		for k, v := range s.Func(p) {
			if _, exists := out[k]; !exists {
				out[k] = v
			}
		}
	}
	return out
}

// specSet ignores repeated labels so the first occurrence on the page wins.
type specSet map[string]string

func (s specSet) add(label, value string) {
	label = strings.TrimSpace(strings.TrimRight(cleanText(label), ": "))
	value = cleanText(value)
	if label == "" || value == "" {
		return
	}
	if utf8.RuneCountInString(label) > maxSpecLabel || strings.IndexFunc(label, unicode.IsLetter) < 0 {
		return
	}
	if strings.Contains(label, "http") {
		return
	}
	if _, exists := s[label]; exists {
		return
	}
	s[label] = truncateRunes(value, maxSpecValue)
}

var tableSeparatorRe = regexp.MustCompile(`^:?-{2,}:?$`)

// MarkdownTableSpecs reads "| label | value |" rows.
func MarkdownTableSpecs(p *Page) map[string]string {
	specs := specSet{}
	for _, line := range p.Lines() {
		if !strings.HasPrefix(line, "|") || !strings.HasSuffix(line, "|") || len(line) < 3 {
			continue
		}
		cells := strings.Split(strings.Trim(line, "|"), "|")
		if len(cells) < 2 {
			continue
		}
		label, value := strings.TrimSpace(cells[0]), strings.TrimSpace(cells[1])
		if tableSeparatorRe.MatchString(label) {
			continue
		}
		specs.add(label, value)
	}
	return specs
}

// HTMLTableSpecs reads two-column <table> rows and <dl> term/definition pairs.
func HTMLTableSpecs(p *Page) map[string]string {
	specs := specSet{}
	doc := p.Doc()
	doc.Find("table tr").Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("th, td")
		if cells.Length() < 2 {
			return
		}
		specs.add(cells.Eq(0).Text(), cells.Eq(1).Text())
	})
	doc.Find("dl dt").Each(func(_ int, dt *goquery.Selection) {
		dd := dt.NextFiltered("dd")
		if dd.Length() == 0 {
			return
		}
		specs.add(dt.Text(), dd.Text())
	})
	return specs
}

var labelValueRe = regexp.MustCompile(`^(?:[-*•]\s+)?(?:\*\*)?([^:|\[\]]{2,40}?)(?:\*\*)?\s*:\s*(?:\*\*)?(.{1,120}?)(?:\*\*)?$`)

// LabelValueSpecs reads "Label: value" lines, optionally bulleted or bold.
func LabelValueSpecs(p *Page) map[string]string {
	specs := specSet{}
	for _, line := range p.Lines() {
		if line == "" || strings.HasPrefix(line, "#") || strings.HasPrefix(line, "|") {
			continue
		}
		m := labelValueRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		label, value := m[1], m[2]
		if len(strings.Fields(label)) > 5 || strings.Contains(value, "//") {
			continue
		}
		specs.add(label, value)
	}
	return specs
}
