package scrapers

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"net/url"
	"reflect"
	"testing"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers/base"
)

type fakeRenderer struct {
	pages map[string]models.RenderedPage
	err   error
}

func (f *fakeRenderer) Render(_ context.Context, u string) (models.RenderedPage, error) {
	if f.err != nil {
		return models.RenderedPage{}, f.err
	}
	return f.pages[u], nil
}

const categoryHTML = `<html><body>
<a href="/auto-occasion-annonce-111.html">Clio</a>
<a href="https://www.lacentrale.fr/auto-occasion-annonce-222.html#photos">308</a>
<a href="/auto-occasion-annonce-111.html">Clio again</a>
<a href="https://other.example.com/auto-occasion-annonce-999.html">Elsewhere</a>
<a href="/listing.php?makesModelsCommercialNames=RENAULT">Renault</a>
<a href="mailto:contact@lacentrale.fr">Mail</a>
</body></html>`

func TestScanCategory(t *testing.T) {
	cat := "https://www.lacentrale.fr/listing.php?makesModelsCommercialNames=RENAULT"
	r := &fakeRenderer{pages: map[string]models.RenderedPage{
		cat: {
			URL:      cat,
			HTML:     categoryHTML,
			Markdown: "[Captur](https://www.lacentrale.fr/auto-occasion-annonce-333.html)\n![](https://www.lacentrale.fr/auto-occasion-annonce-444.html)",
		},
	}}
	s := NewScanner(r, NewRegistry(r), nil)

	tests := []struct {
		limit int
		want  []string
	}{
		{0, []string{
			"https://www.lacentrale.fr/auto-occasion-annonce-111.html",
			"https://www.lacentrale.fr/auto-occasion-annonce-222.html",
			"https://www.lacentrale.fr/auto-occasion-annonce-333.html",
		}},
		{2, []string{
			"https://www.lacentrale.fr/auto-occasion-annonce-111.html",
			"https://www.lacentrale.fr/auto-occasion-annonce-222.html",
		}},
	}
	for _, tt := range tests {
		got, err := s.ScanCategory(context.Background(), cat, tt.limit)
		if err != nil {
			t.Fatalf("ScanCategory(limit=%d) error = %v", tt.limit, err)
		}
		if !reflect.DeepEqual(got, tt.want) {
			t.Errorf("ScanCategory(limit=%d) = %v, want %v", tt.limit, got, tt.want)
		}
	}
}

func TestScanCategoryFailure(t *testing.T) {
	boom := errors.New("rate limited")
	r := &fakeRenderer{err: boom}
	s := NewScanner(r, NewRegistry(r), nil)

	got, err := s.ScanCategory(context.Background(), "https://garage.example.com/occasions/", 10)
	if !errors.Is(err, boom) {
		t.Fatalf("error = %v, want %v", err, boom)
	}
	if got != nil {
		t.Errorf("partial result returned: %v", got)
	}
}

func TestRegistrySelection(t *testing.T) {
	reg := NewRegistry(&fakeRenderer{})
	tests := []struct {
		url  string
		want string
	}{
		{"https://www.lacentrale.fr/auto-occasion-annonce-1.html", "*lacentrale.LaCentraleScraper"},
		{"https://garage-martin.fr/produit/peugeot-3008-gt/", "*dealershop.DealerShopScraper"},
		{"https://garage-martin.fr/nos-vehicules", "*generic.GenericScraper"},
	}
	for _, tt := range tests {
		if got := reflect.TypeOf(reg.GetScraper(tt.url)).String(); got != tt.want {
			t.Errorf("GetScraper(%s) = %s, want %s", tt.url, got, tt.want)
		}
	}
}

func TestIsListingURL(t *testing.T) {
	reg := NewRegistry(&fakeRenderer{})
	tests := []struct {
		url  string
		want bool
	}{
		{"https://www.lacentrale.fr/auto-occasion-annonce-69103.html", true},
		{"https://www.lacentrale.fr/listing.php", false},
		{"https://garage-martin.fr/produit/peugeot-3008-gt/", true},
		{"https://garage-martin.fr/categorie-produit/suv/", false},
		{"https://garage.example.com/annonce/renault-clio-4-12345", true},
		{"https://garage.example.com/peugeot-208-active-2021", true},
		{"https://garage.example.com/contact", false},
		{"https://garage.example.com/uploads/photo-1-2.jpg", false},
	}
	for _, tt := range tests {
		u, _ := url.Parse(tt.url)
		if got := reg.IsListingURL(u); got != tt.want {
			t.Errorf("IsListingURL(%s) = %v, want %v", tt.url, got, tt.want)
		}
	}
}

func TestScrapeListingBlockedServicePage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"success":true,"data":{"markdown":"","html":"<title>Access Denied</title><body></body>"}}`))
	}))
	defer srv.Close()

	reg := NewRegistry(&base.ServiceRenderer{Endpoint: srv.URL, Client: srv.Client()})
	listing, err := reg.ScrapeListing(context.Background(), "https://garage-martin.fr/occasion/peugeot-308")
	if !errors.Is(err, base.ErrImplausiblePage) {
		t.Fatalf("ScrapeListing() = %+v, %v, want ErrImplausiblePage", listing, err)
	}
}
