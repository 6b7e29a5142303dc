package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

func TestBatchScrapeAndCommit(t *testing.T) {
	okA := "https://www.example.com/annonce/a"
	okB := "https://www.example.com/annonce/b"
	bad := "https://www.example.com/annonce/gone"
	p, st := newTestPipeline(map[string]*models.ScrapedListing{
		okA: sampleListing("Peugeot 308", price(14000)),
		okB: sampleListing("Peugeot 3008", price(22000)),
	})
	runner := &BatchRunner{Pipeline: p}
	b := NewBatch([]string{okA, bad, okB})

	if err := runner.ScrapeAll(context.Background(), b); err != nil {
		t.Fatal(err)
	}
	items := b.Snapshot()
	if items[0].Status != models.StatusPending || items[2].Status != models.StatusPending {
		t.Fatalf("scraped items should be pending: %+v", items)
	}
	if items[1].Status != models.StatusError {
		t.Fatalf("failed scrape status = %s", items[1].Status)
	}

	if err := b.Select([]int{1}, true); !errors.Is(err, ErrNotSelectable) {
		t.Errorf("selecting an error item: err = %v", err)
	}
	if err := b.Select([]int{7}, true); err == nil {
		t.Errorf("out of range index accepted")
	}
	if n, err := b.SelectAll(); err != nil || n != 2 {
		t.Errorf("SelectAll = %d, %v, want 2", n, err)
	}

	summary, err := runner.Commit(context.Background(), b, false)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Imported != 2 || summary.Errors != 1 || summary.Duplicates != 0 {
		t.Errorf("summary = %+v", summary)
	}
	if st.Len() != 2 {
		t.Errorf("stored %d vehicles", st.Len())
	}
}

func TestBatchCommitOnlySelected(t *testing.T) {
	a := "https://www.example.com/annonce/a"
	c := "https://www.example.com/annonce/c"
	p, st := newTestPipeline(map[string]*models.ScrapedListing{
		a: sampleListing("Peugeot 208", price(9000)),
		c: sampleListing("Peugeot 2008", price(12000)),
	})
	runner := &BatchRunner{Pipeline: p}
	b := NewBatch([]string{a, c})
	_ = runner.ScrapeAll(context.Background(), b)
	if err := b.Select([]int{1}, true); err != nil {
		t.Fatal(err)
	}

	summary, _ := runner.Commit(context.Background(), b, false)
	if summary.Imported != 1 {
		t.Errorf("imported = %d", summary.Imported)
	}
	items := b.Snapshot()
	if items[0].Status != models.StatusPending || items[1].Status != models.StatusImported {
		t.Errorf("statuses = %s, %s", items[0].Status, items[1].Status)
	}
	if st.Len() != 1 {
		t.Errorf("stored %d vehicles", st.Len())
	}
}

func TestBatchGenerationFailureSkipsItem(t *testing.T) {
	a := "https://www.example.com/annonce/a"
	p, st := newTestPipeline(map[string]*models.ScrapedListing{a: sampleListing("Peugeot 308", price(14000))})
	p.Generator = &fakeGenerator{err: errors.New("model overloaded")}
	runner := &BatchRunner{Pipeline: p}
	b := NewBatch([]string{a})
	_ = runner.ScrapeAll(context.Background(), b)
	if _, err := b.SelectAll(); err != nil {
		t.Fatal(err)
	}

	summary, err := runner.Commit(context.Background(), b, true)
	if err != nil {
		t.Fatal(err)
	}
	if summary.Errors != 1 || summary.Imported != 0 {
		t.Errorf("summary = %+v", summary)
	}
	item := b.Snapshot()[0]
	if item.Status != models.StatusError || item.Error == "" {
		t.Errorf("item = %+v", item)
	}
	if st.Len() != 0 {
		t.Errorf("item should not be imported")
	}
}

func TestBatchDuplicateAcrossBatches(t *testing.T) {
	a := "https://www.example.com/annonce/a"
	p, _ := newTestPipeline(map[string]*models.ScrapedListing{a: sampleListing("Peugeot 308", price(14000))})
	runner := &BatchRunner{Pipeline: p}

	for i, want := range []models.BatchSummary{{Imported: 1}, {Duplicates: 1}} {
		b := NewBatch([]string{a})
		_ = runner.ScrapeAll(context.Background(), b)
		if _, err := b.SelectAll(); err != nil {
			t.Fatal(err)
		}
		got, _ := runner.Commit(context.Background(), b, false)
		if got != want {
			t.Errorf("run %d summary = %+v, want %+v", i, got, want)
		}
	}
}

func TestBatchScrapeCancelled(t *testing.T) {
	a := "https://www.example.com/annonce/a"
	p, _ := newTestPipeline(map[string]*models.ScrapedListing{a: sampleListing("Peugeot 308", price(14000))})
	runner := &BatchRunner{Pipeline: p}
	b := NewBatch([]string{a, a})

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_ = runner.ScrapeAll(ctx, b)
	for i, it := range b.Snapshot() {
		if it.Status != models.StatusError {
			t.Errorf("item %d status = %s, want error", i, it.Status)
		}
	}
}

func TestBatchBusy(t *testing.T) {
	b := NewBatch([]string{"https://www.example.com/annonce/a"})
	if err := b.begin(); err != nil {
		t.Fatal(err)
	}
	defer b.end()
	runner := &BatchRunner{}
	if err := runner.ScrapeAll(context.Background(), b); !errors.Is(err, ErrBatchBusy) {
		t.Errorf("err = %v, want ErrBatchBusy", err)
	}
	if err := b.Select([]int{0}, true); !errors.Is(err, ErrBatchBusy) {
		t.Errorf("Select while running = %v, want ErrBatchBusy", err)
	}
	if _, err := b.SelectAll(); !errors.Is(err, ErrBatchBusy) {
		t.Errorf("SelectAll while running = %v, want ErrBatchBusy", err)
	}
}

func TestBatchRegistry(t *testing.T) {
	r := NewBatchRegistry()
	b := r.Create([]string{"https://www.example.com/annonce/a"})
	got, err := r.Get(b.ID)
	if err != nil || got != b {
		t.Fatalf("Get = %v, %v", got, err)
	}
	r.Delete(b.ID)
	if _, err := r.Get(b.ID); !errors.Is(err, ErrBatchNotFound) {
		t.Errorf("err = %v", err)
	}
}
