package utils

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

func TestUploadImages(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/a.jpg":
			w.Header().Set("Content-Type", "image/jpeg")
			w.Write([]byte("jpeg-bytes"))
		case "/page.html":
			w.Header().Set("Content-Type", "text/html")
			w.Write([]byte("<html></html>"))
		default:
			http.NotFound(w, r)
		}
	}))
	defer srv.Close()

	var mu sync.Mutex
	stored := map[string]string{}
	u := &ImageUploader{
		Client: srv.Client(),
		Upload: func(_ context.Context, body io.Reader, key, contentType string) (string, error) {
			b, _ := io.ReadAll(body)
			mu.Lock()
			stored[key] = string(b)
			mu.Unlock()
			return key, nil
		},
	}

	got := u.UploadImages(context.Background(), []string{
		srv.URL + "/a.jpg",
		srv.URL + "/missing.jpg",
		srv.URL + "/page.html",
		"",
	}, "vehicles/v1/")

	if len(got) != 1 {
		t.Fatalf("UploadImages() = %v, want one entry", got)
	}
	key := got[srv.URL+"/a.jpg"]
	if !strings.HasPrefix(key, "vehicles/v1/") || !strings.HasSuffix(key, ".jpg") {
		t.Errorf("key = %q", key)
	}
	if stored[key] != "jpeg-bytes" {
		t.Errorf("stored body = %q", stored[key])
	}
}

func TestImageExtension(t *testing.T) {
	tests := []struct{ src, ct, want string }{
		{"https://x/a.PNG?w=800", "image/png", ".png"},
		{"https://x/photo", "image/webp", ".webp"},
		{"https://x/photo", "application/x-unknown", ".jpg"},
	}
	for _, tt := range tests {
		if got := imageExtension(tt.src, tt.ct); got != tt.want {
			t.Errorf("imageExtension(%q, %q) = %q, want %q", tt.src, tt.ct, got, tt.want)
		}
	}
}
