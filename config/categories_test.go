package config

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

const validYAML = `
scan_buffer: 3
categories:
  - name: Peugeot
    url: https://www.lacentrale.fr/listing?makesModelsCommercialNames=PEUGEOT
    target: 8
  - name: Land Rover
    slug: land-rover
    url: https://www.lacentrale.fr/listing?makesModelsCommercialNames=LAND%20ROVER
    target: 4
`

func TestParseAutoFillConfig(t *testing.T) {
	cfg, err := ParseAutoFillConfig([]byte(validYAML))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if len(cfg.Categories) != 2 {
		t.Fatalf("expected 2 categories, got %d", len(cfg.Categories))
	}
	if cfg.Categories[0].Slug != "peugeot" {
		t.Errorf("expected derived slug peugeot, got %q", cfg.Categories[0].Slug)
	}
	if cfg.Categories[1].Target != 4 {
		t.Errorf("expected target 4, got %d", cfg.Categories[1].Target)
	}
	if cfg.Buffer() != 3 {
		t.Errorf("expected buffer 3, got %d", cfg.Buffer())
	}
}

func TestDefaultBuffer(t *testing.T) {
	cfg, err := ParseAutoFillConfig([]byte("categories:\n  - name: BMW\n    url: https://example.com/bmw\n    target: 2\n"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Buffer() != DefaultScanBuffer {
		t.Errorf("expected default buffer, got %d", cfg.Buffer())
	}
}

func TestParseAutoFillConfigErrors(t *testing.T) {
	tests := []struct {
		name string
		yaml string
		want error
	}{
		{"empty", "categories: []", ErrNoCategories},
		{"missing url", "categories:\n  - name: BMW\n    target: 1\n", ErrCategoryMissingURL},
		{"relative url", "categories:\n  - name: BMW\n    url: /bmw\n    target: 1\n", ErrCategoryBadURL},
		{"negative target", "categories:\n  - name: BMW\n    url: https://x.fr/bmw\n    target: -2\n", ErrNegativeTarget},
		{"missing name", "categories:\n  - url: https://x.fr/bmw\n    target: 1\n", ErrCategoryNoName},
		{"duplicate slug", "categories:\n  - name: BMW\n    url: https://x.fr/a\n  - name: bmw\n    url: https://x.fr/b\n", ErrDuplicateSlug},
		{"negative buffer", "scan_buffer: -1\ncategories:\n  - name: BMW\n    url: https://x.fr/a\n", ErrNegativeBuffer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseAutoFillConfig([]byte(tt.yaml))
			if !errors.Is(err, tt.want) {
				t.Fatalf("expected %v, got %v", tt.want, err)
			}
		})
	}
}

func TestLoadAutoFillConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "autofill.yaml")
	if err := os.WriteFile(path, []byte(validYAML), 0o644); err != nil {
		t.Fatal(err)
	}
	cfg, err := LoadAutoFillConfig(path)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if cfg.Categories[1].Name != "Land Rover" {
		t.Errorf("unexpected name %q", cfg.Categories[1].Name)
	}

	if _, err := LoadAutoFillConfig(filepath.Join(t.TempDir(), "missing.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestSlugify(t *testing.T) {
	tests := map[string]string{
		"Land Rover":     "land-rover",
		"  Mercedes-Benz": "mercedes-benz",
		"Citroën DS":     "citro-n-ds",
	}
	for in, want := range tests {
		if got := slugify(in); got != want {
			t.Errorf("slugify(%q) = %q, want %q", in, got, want)
		}
	}
}
