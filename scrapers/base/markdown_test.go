package base

import (
	"strings"
	"testing"

	"github.com/PuerkitoBio/goquery"
)

func TestMarkdown(t *testing.T) {
	src := `<html><body>
<h1>Peugeot 308</h1>
<p>Prix : <b>18 500 €</b></p>
<table><tr><th>Énergie</th><td>Diesel</td></tr></table>
<img src="/a.jpg" alt="front">
<ul><li>GPS</li><li><a href="/x">Voir</a></li></ul>
<dl><dt>Couleur</dt><dd>Gris</dd></dl>
<script>var x = 1</script>
</body></html>`
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(src))
	if err != nil {
		t.Fatal(err)
	}
	got := Markdown(doc)

	for _, want := range []string{
		"# Peugeot 308",
		"Prix : 18 500 €",
		"| Énergie | Diesel |",
		"![front](/a.jpg)",
		"- GPS",
		"- [Voir](/x)",
		"| Couleur | Gris |",
	} {
		if !strings.Contains(got, want) {
			t.Errorf("markdown missing %q:\n%s", want, got)
		}
	}
	if strings.Contains(got, "var x") {
		t.Errorf("script content leaked into markdown:\n%s", got)
	}
}
