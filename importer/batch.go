package importer

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

var (
	ErrBatchNotFound = errors.New("batch not found")
	ErrBatchBusy     = errors.New("batch is already running")
	ErrNotSelectable = errors.New("only pending items can be selected")
)

// Batch is an ordered list of import items. All access goes through its
// methods so a running phase can be observed safely.
type Batch struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`

	mu      sync.Mutex
	items   []models.ImportItem
	running bool
}

// NewBatch creates a batch with one pending item per URL.
func NewBatch(urls []string) *Batch {
	b := &Batch{ID: uuid.NewString(), CreatedAt: time.Now()}
	for _, u := range urls {
		b.items = append(b.items, models.ImportItem{URL: u, Status: models.StatusPending})
	}
	return b
}

// Snapshot returns a copy of the items.
func (b *Batch) Snapshot() []models.ImportItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := make([]models.ImportItem, len(b.items))
	copy(out, b.items)
	return out
}

// Running reports whether a phase is in progress.
func (b *Batch) Running() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

// Select sets the selection flag of the items at the given indexes. Items
// that are not pending cannot be selected, and nothing can be selected while
// a phase is running.
func (b *Batch) Select(indexes []int, selected bool) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return ErrBatchBusy
	}
	for _, i := range indexes {
		if i < 0 || i >= len(b.items) {
			return fmt.Errorf("item index %d out of range", i)
		}
		if selected && b.items[i].Status != models.StatusPending {
			return fmt.Errorf("item %d is %s: %w", i, b.items[i].Status, ErrNotSelectable)
		}
	}
	for _, i := range indexes {
		b.items[i].Selected = selected
	}
	return nil
}

// SelectAll selects every pending item and returns how many are selected.
func (b *Batch) SelectAll() (int, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return 0, ErrBatchBusy
	}
	n := 0
	for i := range b.items {
		b.items[i].Selected = b.items[i].Status == models.StatusPending
		if b.items[i].Selected {
			n++
		}
	}
	return n, nil
}

// Summary counts terminal statuses.
func (b *Batch) Summary() models.BatchSummary {
	b.mu.Lock()
	defer b.mu.Unlock()
	var s models.BatchSummary
	for _, it := range b.items {
		switch it.Status {
		case models.StatusImported:
			s.Imported++
		case models.StatusDuplicate:
			s.Duplicates++
		case models.StatusError:
			s.Errors++
		}
	}
	return s
}

func (b *Batch) begin() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.running {
		return ErrBatchBusy
	}
	b.running = true
	return nil
}

func (b *Batch) end() {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}

func (b *Batch) item(i int) models.ImportItem {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.items[i]
}

func (b *Batch) set(i int, it models.ImportItem) {
	b.mu.Lock()
	b.items[i] = it
	b.mu.Unlock()
}

func (b *Batch) size() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

// BatchRegistry keeps batches in memory for the operator API.
type BatchRegistry struct {
	mu      sync.RWMutex
	batches map[string]*Batch
}

func NewBatchRegistry() *BatchRegistry {
	return &BatchRegistry{batches: make(map[string]*Batch)}
}

func (r *BatchRegistry) Create(urls []string) *Batch {
	b := NewBatch(urls)
	r.mu.Lock()
	r.batches[b.ID] = b
	r.mu.Unlock()
	return b
}

func (r *BatchRegistry) Get(id string) (*Batch, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	b, ok := r.batches[id]
	if !ok {
		return nil, ErrBatchNotFound
	}
	return b, nil
}

func (r *BatchRegistry) Delete(id string) {
	r.mu.Lock()
	delete(r.batches, id)
	r.mu.Unlock()
}

// BatchRunner runs the two batch phases on a Pipeline.
type BatchRunner struct {
	Pipeline *Pipeline
}

// ScrapeAll scrapes every pending item sequentially. Failures become error
// items and never stop the batch. Once ctx is done the remaining items are
// marked as errors.
func (r *BatchRunner) ScrapeAll(ctx context.Context, b *Batch) error {
	if err := b.begin(); err != nil {
		return err
	}
	defer b.end()

	for i := 0; i < b.size(); i++ {
		it := b.item(i)
		if it.Status != models.StatusPending || it.Scraped != nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			it.Status = models.StatusError
			it.Error = err.Error()
			b.set(i, it)
			continue
		}
		idx := i
		r.Pipeline.Scrape(ctx, &it, "", func(cur models.ImportItem) { b.set(idx, cur) })
		b.set(i, it)
	}
	return nil
}

// Commit imports the selected pending items in order. With generate set,
// AI content is produced first; a generation failure turns the item into an
// error and it is skipped.
func (r *BatchRunner) Commit(ctx context.Context, b *Batch, generate bool) (models.BatchSummary, error) {
	if err := b.begin(); err != nil {
		return models.BatchSummary{}, err
	}
	defer b.end()

	for i := 0; i < b.size(); i++ {
		it := b.item(i)
		if !it.Selected || it.Status != models.StatusPending || it.Scraped == nil {
			continue
		}
		if err := ctx.Err(); err != nil {
			break
		}
		idx := i
		obs := func(cur models.ImportItem) { b.set(idx, cur) }

		if generate && it.Generated == nil {
			if err := r.Pipeline.Generate(ctx, &it, obs); err != nil {
				it.Status = models.StatusError
				b.set(i, it)
				continue
			}
		}
		r.Pipeline.Import(ctx, &it, Options{Observer: obs})
		it.Selected = false
		b.set(i, it)
	}
	return b.Summary(), nil
}
