package store

import (
	"context"
	"errors"
	"testing"

	"github.com/raushankrgupta/vehicle-catalog-importer/models"
)

func strPtr(s string) *string { return &s }

func TestMemoryStoreDuplicateSourceURL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	first := &models.VehicleRecord{ID: "v1", SourceURL: strPtr("https://a.example.com/1"), Brand: "BMW"}
	if err := s.InsertVehicle(ctx, first, []models.ImageRecord{{ID: "i1", VehicleID: "v1", URL: "https://a.example.com/1.jpg"}}); err != nil {
		t.Fatalf("InsertVehicle() error = %v", err)
	}
	second := &models.VehicleRecord{ID: "v2", SourceURL: strPtr("https://a.example.com/1"), Brand: "BMW"}
	if err := s.InsertVehicle(ctx, second, nil); !errors.Is(err, ErrDuplicate) {
		t.Fatalf("second InsertVehicle() error = %v, want ErrDuplicate", err)
	}
	if s.Len() != 1 {
		t.Errorf("Len() = %d, want 1", s.Len())
	}

	// Vehicles without a source URL never conflict.
	for _, id := range []string{"m1", "m2"} {
		if err := s.InsertVehicle(ctx, &models.VehicleRecord{ID: id, Brand: "Kia"}, nil); err != nil {
			t.Fatalf("manual insert %s: %v", id, err)
		}
	}

	exists, _ := s.ExistsBySourceURL(ctx, "https://a.example.com/1")
	if !exists {
		t.Error("ExistsBySourceURL() = false, want true")
	}
}

func TestMemoryStoreCountMatching(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	for i, v := range []models.VehicleRecord{
		{ID: "1", Brand: "Kubota", Category: "Mini-pelle"},
		{ID: "2", Brand: "Renault", Category: "Citadine"},
		{ID: "3", Brand: "Peugeot", Category: "SUV"},
		{ID: "4", Brand: "Renault", Category: "SUV"},
	} {
		v := v
		if err := s.InsertVehicle(ctx, &v, nil); err != nil {
			t.Fatalf("insert %d: %v", i, err)
		}
	}

	tests := map[string]int{"renault": 2, "suv": 2, "MINI-PELLE": 1, "tesla": 0}
	for term, want := range tests {
		if got, _ := s.CountMatching(ctx, term); got != want {
			t.Errorf("CountMatching(%q) = %d, want %d", term, got, want)
		}
	}
}

func TestMemoryStoreReplaceImageURL(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()
	s.InsertVehicle(ctx, &models.VehicleRecord{ID: "v1"}, []models.ImageRecord{
		{ID: "b", VehicleID: "v1", URL: "https://x/2.jpg", Position: 1},
		{ID: "a", VehicleID: "v1", URL: "https://x/1.jpg", Position: 0},
	})

	if err := s.ReplaceImageURL(ctx, "a", "https://assets/1.jpg"); err != nil {
		t.Fatalf("ReplaceImageURL() error = %v", err)
	}
	if err := s.ReplaceImageURL(ctx, "missing", "x"); !errors.Is(err, ErrNotFound) {
		t.Errorf("ReplaceImageURL(missing) error = %v, want ErrNotFound", err)
	}

	imgs := s.Images("v1")
	if len(imgs) != 2 || imgs[0].URL != "https://assets/1.jpg" || imgs[1].ID != "b" {
		t.Errorf("Images() = %+v", imgs)
	}
}

func TestEscapeLike(t *testing.T) {
	if got := escapeLike(`100%_a\b`); got != `100\%\_a\\b` {
		t.Errorf("escapeLike() = %q", got)
	}
}
