package base

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
)

var skippedTags = map[string]bool{
	"head": true, "script": true, "style": true, "noscript": true,
	"svg": true, "iframe": true, "template": true, "button": true,
}

var blockTags = map[string]bool{
	"p": true, "div": true, "section": true, "article": true, "header": true,
	"footer": true, "main": true, "ul": true, "ol": true, "table": true,
	"thead": true, "tbody": true, "nav": true, "aside": true, "form": true,
	"figure": true, "blockquote": true,
}

// Markdown projects an HTML document into the markdown dialect the field
// extractors read: headings, "| k | v |" table rows, ![](src) images,
// [text](href) links, "- " list items and paragraphs.
func Markdown(doc *goquery.Document) string {
	w := &markdownWriter{}
	root := doc.Find("body")
	if root.Length() == 0 {
		root = doc.Selection
	}
	for _, n := range root.Nodes {
		w.children(n)
	}
	w.flush()
	return strings.TrimSpace(w.out.String())
}

type markdownWriter struct {
	out  strings.Builder
	line strings.Builder
}

func (w *markdownWriter) text(s string) {
	s = strings.Join(strings.Fields(s), " ")
	if s == "" {
		return
	}
	if w.line.Len() > 0 {
		w.line.WriteByte(' ')
	}
	w.line.WriteString(s)
}

func (w *markdownWriter) flush() {
	if line := strings.TrimSpace(w.line.String()); line != "" && line != "-" {
		w.out.WriteString(line)
		w.out.WriteString("\n\n")
	}
	w.line.Reset()
}

func (w *markdownWriter) block(s string) {
	w.flush()
	if s != "" {
		w.out.WriteString(s)
		w.out.WriteString("\n")
	}
}

func (w *markdownWriter) children(n *html.Node) {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		w.node(c)
	}
}

func (w *markdownWriter) node(n *html.Node) {
	switch n.Type {
	case html.TextNode:
		w.text(n.Data)
		return
	case html.ElementNode:
	default:
		w.children(n)
		return
	}

	tag := n.Data
	switch {
	case skippedTags[tag]:
	case len(tag) == 2 && tag[0] == 'h' && tag[1] >= '1' && tag[1] <= '6':
		if t := inlineText(n); t != "" {
			w.block(strings.Repeat("#", int(tag[1]-'0')) + " " + t)
		}
	case tag == "img":
		src := attr(n, "src")
		if src == "" || strings.HasPrefix(src, "data:") {
			src = attr(n, "data-src")
		}
		if src != "" {
			w.block(fmt.Sprintf("![%s](%s)", attr(n, "alt"), src))
		}
	case tag == "a":
		if hasElement(n, "img") {
			w.children(n)
			return
		}
		t, href := inlineText(n), attr(n, "href")
		if t == "" {
			return
		}
		if href == "" || strings.HasPrefix(href, "#") || strings.HasPrefix(href, "javascript:") {
			w.text(t)
			return
		}
		w.text(fmt.Sprintf("[%s](%s)", t, href))
	case tag == "tr":
		var cells []string
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			if c.Type == html.ElementNode && (c.Data == "td" || c.Data == "th") {
				cells = append(cells, strings.ReplaceAll(inlineText(c), "|", "/"))
			}
		}
		if len(cells) > 0 {
			w.block("| " + strings.Join(cells, " | ") + " |")
		}
	case tag == "dl":
		w.definitionList(n)
	case tag == "li":
		w.flush()
		w.line.WriteString("-")
		w.children(n)
		w.flushLine()
	case tag == "br":
		w.flushLine()
	case blockTags[tag]:
		w.flush()
		w.children(n)
		w.flush()
	default:
		w.children(n)
	}
}

// flushLine ends the current line without a paragraph break.
func (w *markdownWriter) flushLine() {
	if line := strings.TrimSpace(w.line.String()); line != "" && line != "-" {
		w.out.WriteString(line)
		w.out.WriteString("\n")
	}
	w.line.Reset()
}

func (w *markdownWriter) definitionList(n *html.Node) {
	w.flush()
	var term string
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type != html.ElementNode {
			continue
		}
		switch c.Data {
		case "dt":
			term = inlineText(c)
		case "dd":
			if term != "" {
				w.block("| " + term + " | " + inlineText(c) + " |")
				term = ""
			}
		}
	}
}

func inlineText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && skippedTags[n.Data] {
			return
		}
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
			b.WriteByte(' ')
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return strings.Join(strings.Fields(b.String()), " ")
}

func hasElement(n *html.Node, tag string) bool {
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if c.Type == html.ElementNode && (c.Data == tag || hasElement(c, tag)) {
			return true
		}
	}
	return false
}

func attr(n *html.Node, key string) string {
	for _, a := range n.Attr {
		if a.Key == key {
			return strings.TrimSpace(a.Val)
		}
	}
	return ""
}
