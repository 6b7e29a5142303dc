// Package app wires configuration into the collaborators shared by the
// server and the commands.
package app

import (
	"context"
	"errors"
	"fmt"

	"github.com/nats-io/nats.go"

	"github.com/raushankrgupta/vehicle-catalog-importer/archive"
	"github.com/raushankrgupta/vehicle-catalog-importer/config"
	"github.com/raushankrgupta/vehicle-catalog-importer/importer"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers"
	"github.com/raushankrgupta/vehicle-catalog-importer/scrapers/base"
	"github.com/raushankrgupta/vehicle-catalog-importer/store"
	"github.com/raushankrgupta/vehicle-catalog-importer/utils"
)

// App holds the long-lived collaborators built from the environment.
type App struct {
	Logger   *logger.Logger
	Store    store.CatalogStore
	Renderer base.Renderer
	Registry *scrapers.Registry
	Scanner  *scrapers.Scanner
	Pipeline *importer.Pipeline
	Gemini   *utils.GeminiClient
	NATS     *nats.Conn
}

// New builds an App from the loaded config. Gemini and archival are
// optional and only logged when unavailable.
func New(ctx context.Context, log *logger.Logger) (*App, error) {
	a := &App{Logger: log}

	st, err := OpenStore(ctx, log)
	if err != nil {
		return nil, err
	}
	a.Store = st

	a.Renderer = NewRenderer(log)
	a.Registry = scrapers.NewRegistry(a.Renderer)
	a.Scanner = scrapers.NewScanner(a.Renderer, a.Registry, log)
	a.Pipeline = &importer.Pipeline{
		Scraper: a.Registry,
		Store:   a.Store,
		Logger:  log,
	}

	gemini, err := utils.NewGeminiClient(ctx, config.GeminiAPIKey, config.GeminiModel, config.TranslationLanguages)
	switch {
	case errors.Is(err, utils.ErrAINotConfigured):
		log.Warn("GEMINI_API_KEY not set; content generation and price estimates disabled")
	case err != nil:
		log.Warn("gemini unavailable", "error", err)
	default:
		a.Gemini = gemini
		a.Pipeline.Generator = gemini
		a.Pipeline.Estimator = gemini
	}

	archiver, err := a.newArchiver(log)
	if err != nil {
		log.Warn("image archival disabled", "error", err)
	} else {
		a.Pipeline.Archiver = archiver
	}
	return a, nil
}

// OpenStore connects the catalog store selected by CATALOG_DRIVER.
func OpenStore(ctx context.Context, log *logger.Logger) (store.CatalogStore, error) {
	switch config.CatalogDriver {
	case "memory":
		return store.NewMemoryStore(), nil
	case "postgres":
		st, err := store.NewPostgresStore(ctx, config.PostgresDSN, config.PostgresConns, log)
		if err != nil {
			return nil, err
		}
		if err := st.EnsureSchema(ctx); err != nil {
			st.Close(ctx)
			return nil, err
		}
		return st, nil
	case "mongo", "":
		client, err := utils.ConnectMongo(ctx, config.MongoURI)
		if err != nil {
			return nil, err
		}
		st := store.NewMongoStore(client, config.DBName, log)
		if err := st.EnsureIndexes(ctx); err != nil {
			st.Close(ctx)
			return nil, err
		}
		return st, nil
	default:
		return nil, fmt.Errorf("unknown CATALOG_DRIVER %q", config.CatalogDriver)
	}
}

// NewRenderer uses the scraping service when a key is configured and the
// local fetch chain otherwise.
func NewRenderer(log *logger.Logger) base.Renderer {
	if config.ScraperAPIKey != "" {
		return base.NewServiceRenderer(config.ScraperAPIURL, config.ScraperAPIKey)
	}
	return base.NewBaseScraper(log)
}

// NewDirectArchiver uploads images to S3 in-process.
func NewDirectArchiver(st store.CatalogStore, log *logger.Logger) *archive.DirectArchiver {
	return &archive.DirectArchiver{
		Uploader:  utils.NewImageUploader(log),
		Store:     st,
		PublicURL: utils.PublicObjectURL,
		Logger:    log,
	}
}

func (a *App) newArchiver(log *logger.Logger) (archive.Archiver, error) {
	switch config.ArchiveMode {
	case "off":
		return nil, errors.New("ARCHIVE_MODE=off")
	case "nats":
		nc, err := ConnectNATS()
		if err != nil {
			return nil, err
		}
		a.NATS = nc
		return &archive.QueueArchiver{Conn: nc, Subject: archive.DefaultSubject}, nil
	default:
		if config.AWSBucketName == "" {
			return nil, errors.New("AWS_BUCKET_NAME is not set")
		}
		return NewDirectArchiver(a.Store, log), nil
	}
}

// ConnectNATS dials NATS_URL.
func ConnectNATS() (*nats.Conn, error) {
	nc, err := nats.Connect(config.NATSURL, nats.Name("vehicle-catalog-importer"))
	if err != nil {
		return nil, fmt.Errorf("connect nats %s: %w", config.NATSURL, err)
	}
	return nc, nil
}

// NewAutoFill loads the category file and builds the controller. The
// notifier is attached when NOTIFY_EMAIL is set.
func (a *App) NewAutoFill(path string) (*importer.AutoFill, error) {
	cfg, err := config.LoadAutoFillConfig(path)
	if err != nil {
		return nil, err
	}
	af := importer.NewAutoFill(a.Pipeline, a.Scanner, a.Store, cfg, a.Logger)
	af.Generate = a.Pipeline.Generator != nil
	if n := utils.NewEmailNotifier(config.NotifyEmail, a.Logger); n != nil {
		af.Notifier = n
	}
	return af, nil
}

// Close waits for pending archival and releases connections.
func (a *App) Close(ctx context.Context) {
	a.Pipeline.WaitArchival()
	if a.NATS != nil {
		if err := a.NATS.Drain(); err != nil {
			a.Logger.Warn("nats drain failed", "error", err)
		}
	}
	if a.Gemini != nil {
		a.Gemini.Close()
	}
	if err := a.Store.Close(ctx); err != nil {
		a.Logger.Warn("store close failed", "error", err)
	}
}
