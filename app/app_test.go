package app

import (
	"context"
	"testing"

	"github.com/raushankrgupta/vehicle-catalog-importer/config"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers/base"
	"github.com/raushankrgupta/vehicle-catalog-importer/store"
)

func TestOpenStore(t *testing.T) {
	defer func(d string) { config.CatalogDriver = d }(config.CatalogDriver)

	config.CatalogDriver = "memory"
	st, err := OpenStore(context.Background(), logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := st.(*store.MemoryStore); !ok {
		t.Errorf("store = %T, want *store.MemoryStore", st)
	}

	config.CatalogDriver = "sqlite"
	if _, err := OpenStore(context.Background(), logger.Discard()); err == nil {
		t.Errorf("unknown driver accepted")
	}
}

func TestNewRenderer(t *testing.T) {
	defer func(k string) { config.ScraperAPIKey = k }(config.ScraperAPIKey)

	config.ScraperAPIKey = ""
	if _, ok := NewRenderer(logger.Discard()).(*base.BaseScraper); !ok {
		t.Errorf("expected the local fetch chain without a service key")
	}
	config.ScraperAPIKey = "fc-test"
	if _, ok := NewRenderer(logger.Discard()).(*base.ServiceRenderer); !ok {
		t.Errorf("expected the scraping service with a key")
	}
}

func TestNewWithMemoryStore(t *testing.T) {
	defer func(d, m, k string) {
		config.CatalogDriver, config.ArchiveMode, config.GeminiAPIKey = d, m, k
	}(config.CatalogDriver, config.ArchiveMode, config.GeminiAPIKey)
	config.CatalogDriver = "memory"
	config.ArchiveMode = "off"
	config.GeminiAPIKey = ""

	a, err := New(context.Background(), logger.Discard())
	if err != nil {
		t.Fatal(err)
	}
	defer a.Close(context.Background())
	if a.Pipeline.Generator != nil || a.Pipeline.Archiver != nil {
		t.Errorf("optional collaborators should be unset: %+v", a.Pipeline)
	}
	if a.Pipeline.Scraper == nil || a.Scanner == nil {
		t.Errorf("pipeline not wired")
	}
}
