// Package importer drives listings from their source page into the catalog:
// single imports, operator batches and the unattended auto-fill run.
package importer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raushankrgupta/vehicle-catalog-importer/archive"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
	"github.com/raushankrgupta/vehicle-catalog-importer/store"
	"github.com/raushankrgupta/vehicle-catalog-importer/utils"
)

// Defaults applied when a listing does not provide the value.
const (
	DefaultDoors        = 5
	DefaultTransmission = models.TransmissionManual
	DefaultEnergy       = models.EnergyDiesel
)

// ListingScraper renders and extracts one listing page.
type ListingScraper interface {
	ScrapeListing(ctx context.Context, url string) (*models.ScrapedListing, error)
}

// ContentGenerator writes listing copy and its translations.
type ContentGenerator interface {
	GenerateListingContent(ctx context.Context, req models.ContentRequest) (*models.GeneratedContent, error)
}

// PriceEstimator estimates a price when the page shows none.
type PriceEstimator interface {
	EstimatePrice(ctx context.Context, req models.PriceEstimateRequest) (float64, error)
}

// Observer receives a copy of an item after every status change.
type Observer func(models.ImportItem)

// Options tune a single import.
type Options struct {
	Generate bool
	// Category is stored on the created vehicle.
	Category string
	Observer Observer
}

// ErrGenerationUnavailable is returned when no content generator is wired.
var ErrGenerationUnavailable = errors.New("AI content generation is not configured")

// Pipeline imports listings one at a time. Generator, Estimator and Archiver
// are optional.
type Pipeline struct {
	Scraper   ListingScraper
	Generator ContentGenerator
	Estimator PriceEstimator
	Store     store.CatalogStore
	Archiver  archive.Archiver
	Logger    *logger.Logger

	Now            func() time.Time
	NewID          func() string
	ArchiveTimeout time.Duration

	archiving sync.WaitGroup
}

func (p *Pipeline) now() time.Time {
	if p.Now != nil {
		return p.Now()
	}
	return time.Now()
}

func (p *Pipeline) newID() string {
	if p.NewID != nil {
		return p.NewID()
	}
	return uuid.NewString()
}

func (p *Pipeline) log() *logger.Logger {
	if p.Logger == nil {
		return logger.Discard()
	}
	return p.Logger
}

func notify(obs Observer, item *models.ImportItem) {
	if obs != nil {
		obs(*item)
	}
}

// ImportSingle scrapes, optionally generates, and imports url.
func (p *Pipeline) ImportSingle(ctx context.Context, url string, opts Options) models.ImportItem {
	item := models.ImportItem{URL: url, Status: models.StatusPending}
	notify(opts.Observer, &item)

	p.Scrape(ctx, &item, opts.Category, opts.Observer)
	if item.Status != models.StatusPending {
		return item
	}
	if opts.Generate {
		if err := p.Generate(ctx, &item, opts.Observer); err != nil {
			// The item stays pending with the reason attached for the operator.
			return item
		}
	}
	p.Import(ctx, &item, opts)
	return item
}

// Scrape fills item.Scraped. On failure the item ends in error with the
// upstream message and nothing is persisted. category, when known, is
// passed to the price estimator.
func (p *Pipeline) Scrape(ctx context.Context, item *models.ImportItem, category string, obs Observer) {
	item.Status = models.StatusScraping
	item.Error = ""
	notify(obs, item)

	listing, err := p.Scraper.ScrapeListing(ctx, item.URL)
	if err != nil {
		item.Status = models.StatusError
		item.Error = err.Error()
		p.log().Warn("scrape failed", "url", item.URL, "error", err)
		notify(obs, item)
		return
	}
	if listing.SourceURL == "" {
		listing.SourceURL = item.URL
	}
	if !listing.HasPrice() {
		p.estimatePrice(ctx, listing, category)
	}

	item.Scraped = listing
	item.Status = models.StatusPending
	notify(obs, item)
}

// estimatePrice asks the estimator for a price. Failures are ignored.
func (p *Pipeline) estimatePrice(ctx context.Context, listing *models.ScrapedListing, category string) {
	if p.Estimator == nil {
		return
	}
	req := models.PriceEstimateRequest{
		Brand:    listing.Brand,
		Model:    ModelFromTitle(listing.Title, listing.Brand),
		Energy:   listing.Attributes.Energy,
		Category: category,
	}
	if listing.Attributes.Year != nil {
		req.Year = *listing.Attributes.Year
	}
	if listing.Attributes.MileageKm != nil {
		req.Mileage = *listing.Attributes.MileageKm
	}

	estimate, err := p.Estimator.EstimatePrice(ctx, req)
	if err != nil || estimate <= 0 {
		p.log().Debug("price estimate unavailable", "url", listing.SourceURL, "error", err)
		return
	}
	listing.Price = &estimate
	listing.PriceEstimated = true
}

// Generate attaches AI copy to a pending item. On failure the item goes
// back to pending with a message telling rate limits, exhausted quota and
// other failures apart; the error is returned as well.
func (p *Pipeline) Generate(ctx context.Context, item *models.ImportItem, obs Observer) error {
	if item.Status != models.StatusPending || item.Scraped == nil {
		return fmt.Errorf("item %s is %s, not pending", item.URL, item.Status)
	}
	if p.Generator == nil {
		item.Error = ErrGenerationUnavailable.Error()
		notify(obs, item)
		return ErrGenerationUnavailable
	}

	item.Status = models.StatusGenerating
	item.Error = ""
	notify(obs, item)

	l := item.Scraped
	content, err := p.Generator.GenerateListingContent(ctx, models.ContentRequest{
		Title:       l.Title,
		Description: l.Description,
		Brand:       l.Brand,
		Price:       l.Price,
	})
	item.Status = models.StatusPending
	if err != nil {
		item.Error = GenerationMessage(err)
		p.log().Warn("content generation failed", "url", item.URL, "error", err)
		notify(obs, item)
		return err
	}
	item.Generated = content
	notify(obs, item)
	return nil
}

// GenerationMessage is the operator-facing text for a generation failure.
func GenerationMessage(err error) string {
	switch {
	case errors.Is(err, utils.ErrAIQuotaExhausted):
		return "AI quota exhausted: generation is unavailable until the quota resets"
	case errors.Is(err, utils.ErrAIRateLimited):
		return "AI rate limit reached: wait a minute and retry"
	default:
		return "AI generation failed: " + err.Error()
	}
}

// Import persists a pending item. An existing vehicle with the same source
// URL makes the item a duplicate without any write.
func (p *Pipeline) Import(ctx context.Context, item *models.ImportItem, opts Options) {
	obs := opts.Observer
	if item.Scraped == nil || item.Status != models.StatusPending {
		return
	}
	item.Status = models.StatusImporting
	item.Error = ""
	notify(obs, item)

	sourceURL := item.Scraped.SourceURL
	exists, err := p.Store.ExistsBySourceURL(ctx, sourceURL)
	if err != nil {
		p.fail(item, obs, fmt.Errorf("duplicate check: %w", err))
		return
	}
	if exists {
		item.Status = models.StatusDuplicate
		notify(obs, item)
		return
	}

	vehicle := BuildVehicle(item.Scraped, item.Generated, opts.Category, p.now())
	vehicle.ID = p.newID()
	images := make([]models.ImageRecord, len(item.Scraped.Images))
	for i, u := range item.Scraped.Images {
		images[i] = models.ImageRecord{ID: p.newID(), VehicleID: vehicle.ID, URL: u, Position: i}
	}

	if err := p.Store.InsertVehicle(ctx, &vehicle, images); err != nil {
		if errors.Is(err, store.ErrDuplicate) {
			item.Status = models.StatusDuplicate
			notify(obs, item)
			return
		}
		p.fail(item, obs, err)
		return
	}

	item.VehicleID = vehicle.ID
	item.Status = models.StatusImported
	p.log().Info("vehicle imported", "url", sourceURL, "vehicle_id", vehicle.ID, "images", len(images))
	notify(obs, item)

	p.archive(ctx, vehicle.ID, images)
}

func (p *Pipeline) fail(item *models.ImportItem, obs Observer, err error) {
	item.Status = models.StatusError
	item.Error = err.Error()
	p.log().Error("import failed", "url", item.URL, "error", err)
	notify(obs, item)
}

// archive starts image archival in the background. It outlives the request
// context and never affects the import result.
func (p *Pipeline) archive(ctx context.Context, vehicleID string, images []models.ImageRecord) {
	if p.Archiver == nil || len(images) == 0 {
		return
	}
	timeout := p.ArchiveTimeout
	if timeout <= 0 {
		timeout = 5 * time.Minute
	}
	actx, cancel := context.WithTimeout(context.WithoutCancel(ctx), timeout)

	p.archiving.Add(1)
	go func() {
		defer p.archiving.Done()
		defer cancel()
		if err := p.Archiver.Archive(actx, archive.Request{VehicleID: vehicleID, Images: images}); err != nil {
			p.log().Warn("image archival incomplete", "vehicle_id", vehicleID, "error", err)
		}
	}()
}

// WaitArchival blocks until background archival started so far has finished.
func (p *Pipeline) WaitArchival() {
	p.archiving.Wait()
}

// BuildVehicle maps a listing onto a catalog record, applying the defaults
// the catalog requires.
func BuildVehicle(l *models.ScrapedListing, gen *models.GeneratedContent, category string, now time.Time) models.VehicleRecord {
	title, description := l.Title, l.Description
	if gen != nil {
		title, description = gen.Title, gen.Description
	}
	sourceURL := l.SourceURL

	v := models.VehicleRecord{
		SourceURL:    &sourceURL,
		Brand:        l.Brand,
		Model:        ModelFromTitle(title, l.Brand),
		Year:         now.Year(),
		Transmission: DefaultTransmission,
		Energy:       DefaultEnergy,
		Category:     category,
		Color:        l.Attributes.Color,
		Doors:        DefaultDoors,
		Power:        l.Attributes.Power,
		Status:       models.VehicleAvailable,
		Description:  description,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if l.Price != nil {
		v.Price = *l.Price
	}
	if y := l.Attributes.Year; y != nil && *y > 1900 && *y <= now.Year()+1 {
		v.Year = *y
	}
	if km := l.Attributes.MileageKm; km != nil && *km >= 0 {
		v.MileageKm = *km
	}
	if t := models.Transmission(l.Attributes.Transmission); t == models.TransmissionManual || t == models.TransmissionAutomatic {
		v.Transmission = t
	}
	if e := models.Energy(l.Attributes.Energy); knownEnergy(e) {
		v.Energy = e
	}
	if gen != nil {
		v.TitleTranslations = gen.TitleTranslations
		v.DescriptionTranslations = gen.DescriptionTranslations
	}
	return v
}

func knownEnergy(e models.Energy) bool {
	switch e {
	case models.EnergyDiesel, models.EnergyPetrol, models.EnergyHybrid,
		models.EnergyPlugInHybrid, models.EnergyElectric, models.EnergyLPG:
		return true
	}
	return false
}

// ModelFromTitle strips the brand from a title: "BMW Série 3 320d" with
// brand "BMW" gives "Série 3 320d".
func ModelFromTitle(title, brand string) string {
	title = strings.TrimSpace(title)
	if brand == "" {
		return title
	}
	if i := strings.Index(strings.ToLower(title), strings.ToLower(brand)); i >= 0 {
		model := strings.TrimSpace(title[:i] + title[i+len(brand):])
		model = strings.Trim(model, " -–,")
		if model != "" {
			return model
		}
	}
	return title
}
