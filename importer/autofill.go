package importer

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/raushankrgupta/vehicle-catalog-importer/config"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
	"github.com/raushankrgupta/vehicle-catalog-importer/store"
)

// ErrRunInProgress is returned when Run is called while a run is active.
var ErrRunInProgress = errors.New("an auto-fill run is already in progress")

// CategoryScanner lists listing URLs found on a category page.
type CategoryScanner interface {
	ScanCategory(ctx context.Context, categoryURL string, limit int) ([]string, error)
}

// Notifier is told when a run finishes.
type Notifier interface {
	AutoFillFinished(ctx context.Context, result models.AutoFillResult) error
}

// AutoFill tops up the catalog so every category reaches its target.
type AutoFill struct {
	Pipeline   *Pipeline
	Scanner    CategoryScanner
	Store      store.CatalogStore
	Categories []models.CategoryTarget
	// Buffer is the number of extra URLs requested per scan.
	Buffer   int
	Generate bool
	Notifier Notifier
	Logger   *logger.Logger
	Now      func() time.Time

	// OnCategoryDone is called after each processed category.
	OnCategoryDone func(models.CategoryTarget)

	stop    atomic.Bool
	running atomic.Bool

	mu    sync.Mutex
	state models.AutoFillResult
}

// NewAutoFill builds a controller from a validated auto-fill config.
func NewAutoFill(p *Pipeline, scanner CategoryScanner, st store.CatalogStore, cfg *config.AutoFillConfig, log *logger.Logger) *AutoFill {
	return &AutoFill{
		Pipeline:   p,
		Scanner:    scanner,
		Store:      st,
		Categories: cfg.Categories,
		Buffer:     cfg.Buffer(),
		Logger:     log,
	}
}

func (a *AutoFill) now() time.Time {
	if a.Now != nil {
		return a.Now()
	}
	return time.Now()
}

func (a *AutoFill) log() *logger.Logger {
	if a.Logger == nil {
		return logger.Discard()
	}
	return a.Logger
}

// Analyze counts existing vehicles per category and the deficit against
// each target. It returns the categories and the total needed.
func (a *AutoFill) Analyze(ctx context.Context) ([]models.CategoryTarget, int, error) {
	out := make([]models.CategoryTarget, len(a.Categories))
	total := 0
	for i, c := range a.Categories {
		existing, err := a.Store.CountMatching(ctx, c.Name)
		if err != nil {
			return nil, 0, fmt.Errorf("count %s: %w", c.Name, err)
		}
		c.ExistingCount = existing
		c.NeededCount = max(0, c.Target-existing)
		c.ImportedCount, c.SkippedCount, c.ErrorCount = 0, 0, 0
		c.Status = models.CategoryPending
		c.Error = ""
		out[i] = c
		total += c.NeededCount
	}
	return out, total, nil
}

// Stop asks the current run to finish before its next category or item.
func (a *AutoFill) Stop() {
	if a.running.Load() {
		a.stop.Store(true)
	}
}

// Running reports whether a run is active.
func (a *AutoFill) Running() bool {
	return a.running.Load()
}

// Snapshot returns the live state of the current or last run.
func (a *AutoFill) Snapshot() models.AutoFillResult {
	a.mu.Lock()
	defer a.mu.Unlock()
	out := a.state
	out.Categories = append([]models.CategoryTarget(nil), a.state.Categories...)
	return out
}

func (a *AutoFill) update(fn func(*models.AutoFillResult)) {
	a.mu.Lock()
	fn(&a.state)
	a.mu.Unlock()
}

func (a *AutoFill) stopped(ctx context.Context) bool {
	return a.stop.Load() || ctx.Err() != nil
}

// Run processes categories by descending deficit until each target is met,
// the URLs run out, or the run is stopped. Only one run may be active.
func (a *AutoFill) Run(ctx context.Context) (models.AutoFillResult, error) {
	if !a.running.CompareAndSwap(false, true) {
		return models.AutoFillResult{}, ErrRunInProgress
	}
	defer a.running.Store(false)
	a.stop.Store(false)

	cats, total, err := a.Analyze(ctx)
	if err != nil {
		return models.AutoFillResult{}, err
	}
	sort.SliceStable(cats, func(i, j int) bool { return cats[i].NeededCount > cats[j].NeededCount })

	a.update(func(s *models.AutoFillResult) {
		*s = models.AutoFillResult{TotalNeeded: total, Categories: cats, StartedAt: a.now()}
	})
	a.log().Info("auto-fill started", "categories", len(cats), "needed", total)

	for i := range cats {
		if a.stopped(ctx) {
			a.update(func(s *models.AutoFillResult) { s.Aborted = true })
			break
		}
		if cats[i].NeededCount == 0 {
			a.setCategory(i, func(c *models.CategoryTarget) { c.Status = models.CategoryDone })
			continue
		}
		a.runCategory(ctx, i)
		if a.OnCategoryDone != nil {
			a.OnCategoryDone(a.Snapshot().Categories[i])
		}
	}
	if a.stopped(ctx) {
		a.update(func(s *models.AutoFillResult) { s.Aborted = true })
	}

	a.update(func(s *models.AutoFillResult) { s.FinishedAt = a.now() })
	result := a.Snapshot()
	a.log().Info("auto-fill finished",
		"imported", result.TotalImported, "skipped", result.TotalSkipped,
		"errors", result.TotalErrors, "aborted", result.Aborted)

	if a.Notifier != nil {
		if err := a.Notifier.AutoFillFinished(context.WithoutCancel(ctx), result); err != nil {
			a.log().Warn("auto-fill notification failed", "error", err)
		}
	}
	return result, nil
}

func (a *AutoFill) setCategory(i int, fn func(*models.CategoryTarget)) {
	a.update(func(s *models.AutoFillResult) { fn(&s.Categories[i]) })
}

func (a *AutoFill) runCategory(ctx context.Context, i int) {
	cat := a.Snapshot().Categories[i]
	log := a.log().With("category", cat.Name)

	a.setCategory(i, func(c *models.CategoryTarget) { c.Status = models.CategoryScanning })
	urls, err := a.Scanner.ScanCategory(ctx, cat.URL, cat.NeededCount+a.Buffer)
	if err != nil {
		log.Warn("category scan failed", "error", err)
		a.setCategory(i, func(c *models.CategoryTarget) {
			c.Status = models.CategoryError
			c.Error = err.Error()
		})
		return
	}
	log.Info("category scanned", "urls", len(urls), "needed", cat.NeededCount)
	a.setCategory(i, func(c *models.CategoryTarget) { c.Status = models.CategoryImporting })

	imported := 0
	for _, u := range urls {
		if imported >= cat.NeededCount {
			break
		}
		if a.stopped(ctx) {
			// The category keeps its current status when interrupted.
			return
		}
		switch a.processItem(ctx, u, cat.Name) {
		case models.StatusImported:
			imported++
			a.update(func(s *models.AutoFillResult) {
				s.Categories[i].ImportedCount++
				s.TotalImported++
				s.Progress++
			})
		case models.StatusDuplicate:
			a.update(func(s *models.AutoFillResult) {
				s.Categories[i].SkippedCount++
				s.TotalSkipped++
				s.Progress++
			})
		default:
			a.update(func(s *models.AutoFillResult) {
				s.Categories[i].ErrorCount++
				s.TotalErrors++
				s.Progress++
			})
		}
	}

	a.setCategory(i, func(c *models.CategoryTarget) {
		c.Status = models.CategoryDone
		if c.ImportedCount == 0 && c.ErrorCount > 0 {
			c.Status = models.CategoryError
			c.Error = fmt.Sprintf("no vehicle imported, %d errors", c.ErrorCount)
		}
	})
}

// processItem runs one URL through the pipeline and returns its final
// status. Known URLs are skipped before any fetch.
func (a *AutoFill) processItem(ctx context.Context, url, category string) models.ImportStatus {
	p := a.Pipeline
	if exists, err := a.Store.ExistsBySourceURL(ctx, url); err == nil && exists {
		return models.StatusDuplicate
	}

	item := models.ImportItem{URL: url, Status: models.StatusPending}
	p.Scrape(ctx, &item, category, nil)
	if item.Status != models.StatusPending {
		return item.Status
	}
	if a.Generate {
		// Generation is best-effort; the listing is imported with its
		// scraped copy when it fails.
		_ = p.Generate(ctx, &item, nil)
	}
	p.Import(ctx, &item, Options{Category: category})
	if item.Status == models.StatusError {
		a.log().Warn("auto-fill item failed", "url", url, "error", item.Error)
	}
	return item.Status
}
