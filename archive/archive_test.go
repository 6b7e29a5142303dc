package archive

import (
	"context"
	"encoding/json"
	"strings"
	"testing"

	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
	"github.com/raushankrgupta/vehicle-catalog-importer/store"
)

type fakeUploader struct {
	fail   map[string]bool
	prefix string
}

func (f *fakeUploader) UploadImages(_ context.Context, urls []string, prefix string) map[string]string {
	f.prefix = prefix
	out := map[string]string{}
	for i, u := range urls {
		if !f.fail[u] {
			out[u] = prefix + "/" + string(rune('a'+i)) + ".jpg"
		}
	}
	return out
}

func seed(t *testing.T) (*store.MemoryStore, Request) {
	t.Helper()
	s := store.NewMemoryStore()
	imgs := []models.ImageRecord{
		{ID: "i1", VehicleID: "v1", URL: "https://src/1.jpg", Position: 0},
		{ID: "i2", VehicleID: "v1", URL: "https://src/2.jpg", Position: 1},
	}
	if err := s.InsertVehicle(context.Background(), &models.VehicleRecord{ID: "v1"}, imgs); err != nil {
		t.Fatal(err)
	}
	return s, Request{VehicleID: "v1", Images: imgs}
}

func publicURL(key string) string { return "https://assets.example.com/" + key }

func TestDirectArchiver(t *testing.T) {
	s, req := seed(t)
	up := &fakeUploader{}
	a := &DirectArchiver{Uploader: up, Store: s, PublicURL: publicURL, Logger: logger.Discard()}

	if err := a.Archive(context.Background(), req); err != nil {
		t.Fatalf("Archive() error = %v", err)
	}
	if up.prefix != "vehicles/v1" {
		t.Errorf("prefix = %q", up.prefix)
	}
	imgs := s.Images("v1")
	if imgs[0].URL != "https://assets.example.com/vehicles/v1/a.jpg" || imgs[1].URL != "https://assets.example.com/vehicles/v1/b.jpg" {
		t.Errorf("images = %+v", imgs)
	}
}

func TestDirectArchiverPartialFailure(t *testing.T) {
	s, req := seed(t)
	a := &DirectArchiver{
		Uploader:  &fakeUploader{fail: map[string]bool{"https://src/2.jpg": true}},
		Store:     s,
		PublicURL: publicURL,
	}

	err := a.Archive(context.Background(), req)
	if err == nil || !strings.Contains(err.Error(), "archived 1 of 2 images") {
		t.Fatalf("Archive() error = %v", err)
	}
	if got := s.Images("v1")[1].URL; got != "https://src/2.jpg" {
		t.Errorf("failed image repointed to %q", got)
	}
}

type recordingArchiver struct{ got []Request }

func (r *recordingArchiver) Archive(_ context.Context, req Request) error {
	r.got = append(r.got, req)
	return nil
}

func TestWorkerHandle(t *testing.T) {
	rec := &recordingArchiver{}
	w := &Worker{Archiver: rec, Logger: logger.Discard()}

	data, _ := json.Marshal(Request{VehicleID: "v9", Images: []models.ImageRecord{{ID: "x", URL: "https://src/x.jpg"}}})
	if err := w.Handle(context.Background(), data); err != nil {
		t.Fatalf("Handle() error = %v", err)
	}
	if len(rec.got) != 1 || rec.got[0].VehicleID != "v9" || rec.got[0].Images[0].URL != "https://src/x.jpg" {
		t.Errorf("archived = %+v", rec.got)
	}

	if err := w.Handle(context.Background(), []byte("{not json")); err == nil {
		t.Error("expected decode error")
	}
}
