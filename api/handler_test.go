package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"golang.org/x/crypto/bcrypt"

	"github.com/raushankrgupta/vehicle-catalog-importer/config"
	"github.com/raushankrgupta/vehicle-catalog-importer/importer"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
	"github.com/raushankrgupta/vehicle-catalog-importer/store"
	"github.com/raushankrgupta/vehicle-catalog-importer/utils"
)

type stubScraper struct{}

func (stubScraper) ScrapeListing(_ context.Context, url string) (*models.ScrapedListing, error) {
	if url == "https://www.example.com/annonce/broken" {
		return nil, errors.New("scraping service returned 500: upstream timeout")
	}
	p := 17900.0
	return &models.ScrapedListing{SourceURL: url, Title: "Volkswagen Golf 8", Brand: "Volkswagen", Price: &p}, nil
}

type stubScanner struct{}

func (stubScanner) ScanCategory(_ context.Context, _ string, limit int) ([]string, error) {
	urls := []string{"https://www.example.com/annonce/1", "https://www.example.com/annonce/2"}
	if limit > 0 && limit < len(urls) {
		urls = urls[:limit]
	}
	return urls, nil
}

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	config.JWTSecret = "test-secret"
	config.AdminEmail = "ops@garage.example.com"
	hash, err := bcrypt.GenerateFromPassword([]byte("s3cret"), bcrypt.MinCost)
	if err != nil {
		t.Fatal(err)
	}
	config.AdminPasswordHash = string(hash)

	st := store.NewMemoryStore()
	h := &Handler{
		Pipeline: &importer.Pipeline{Scraper: stubScraper{}, Store: st},
		Scanner:  stubScanner{},
		Batches:  importer.NewBatchRegistry(),
		Logger:   logger.Discard(),
	}
	srv := httptest.NewServer(h.Routes())
	t.Cleanup(srv.Close)
	return srv, st
}

func do(t *testing.T, method, url, token string, body interface{}, out interface{}) int {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatal(err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatal(err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatal(err)
	}
	defer resp.Body.Close()
	if out != nil {
		if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
			t.Fatalf("decode %s %s: %v", method, url, err)
		}
	}
	return resp.StatusCode
}

func login(t *testing.T, srv *httptest.Server) string {
	t.Helper()
	var out map[string]string
	status := do(t, http.MethodPost, srv.URL+"/auth/login", "", LoginRequest{Email: "ops@garage.example.com", Password: "s3cret"}, &out)
	if status != http.StatusOK || out["token"] == "" {
		t.Fatalf("login status = %d, body = %v", status, out)
	}
	return out["token"]
}

func TestLogin(t *testing.T) {
	srv, _ := newTestServer(t)
	login(t, srv)

	status := do(t, http.MethodPost, srv.URL+"/auth/login", "", LoginRequest{Email: "ops@garage.example.com", Password: "wrong"}, nil)
	if status != http.StatusUnauthorized {
		t.Errorf("wrong password status = %d", status)
	}
}

func TestAdminRequiresToken(t *testing.T) {
	srv, _ := newTestServer(t)
	if status := do(t, http.MethodPost, srv.URL+"/admin/import", "", urlRequest{URL: "https://www.example.com/annonce/1"}, nil); status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
	if status := do(t, http.MethodPost, srv.URL+"/admin/import", "not-a-token", urlRequest{URL: "https://www.example.com/annonce/1"}, nil); status != http.StatusUnauthorized {
		t.Errorf("status = %d, want 401", status)
	}
	token, err := utils.GenerateToken("ops@garage.example.com")
	if err != nil {
		t.Fatal(err)
	}
	if status := do(t, http.MethodGet, srv.URL+"/admin/autofill/status", token, nil, nil); status != http.StatusServiceUnavailable {
		t.Errorf("unconfigured auto-fill status = %d, want 503", status)
	}
}

func TestImportHandler(t *testing.T) {
	srv, st := newTestServer(t)
	token := login(t, srv)

	var item models.ImportItem
	status := do(t, http.MethodPost, srv.URL+"/admin/import", token, urlRequest{URL: "https://www.example.com/annonce/1"}, &item)
	if status != http.StatusCreated || item.Status != models.StatusImported {
		t.Fatalf("first import: %d %+v", status, item)
	}
	status = do(t, http.MethodPost, srv.URL+"/admin/import", token, urlRequest{URL: "https://www.example.com/annonce/1"}, &item)
	if status != http.StatusOK || item.Status != models.StatusDuplicate {
		t.Errorf("second import: %d %+v", status, item)
	}
	status = do(t, http.MethodPost, srv.URL+"/admin/import", token, urlRequest{URL: "https://www.example.com/annonce/broken"}, &item)
	if status != http.StatusBadGateway || item.Error != "scraping service returned 500: upstream timeout" {
		t.Errorf("broken import: %d %+v", status, item)
	}
	if st.Len() != 1 {
		t.Errorf("stored %d vehicles", st.Len())
	}
}

func TestScanHandler(t *testing.T) {
	srv, _ := newTestServer(t)
	token := login(t, srv)

	var out struct {
		URLs  []string `json:"urls"`
		Count int      `json:"count"`
	}
	status := do(t, http.MethodPost, srv.URL+"/admin/scan", token, scanRequest{URL: "https://www.example.com/occasions", Limit: 1}, &out)
	if status != http.StatusOK || out.Count != 1 {
		t.Errorf("scan: %d %+v", status, out)
	}
}

func waitBatch(t *testing.T, srv *httptest.Server, token, id string) batchResponse {
	t.Helper()
	deadline := time.Now().Add(5 * time.Second)
	for {
		var b batchResponse
		if status := do(t, http.MethodGet, srv.URL+"/admin/batches/"+id, token, nil, &b); status != http.StatusOK {
			t.Fatalf("get batch status = %d", status)
		}
		if !b.Running {
			settled := true
			for _, it := range b.Items {
				if it.Status == models.StatusPending && it.Scraped == nil {
					settled = false
				}
			}
			if settled {
				return b
			}
		}
		if time.Now().After(deadline) {
			t.Fatalf("batch %s did not settle: %+v", id, b)
		}
		time.Sleep(10 * time.Millisecond)
	}
}

func TestBatchFlow(t *testing.T) {
	srv, st := newTestServer(t)
	token := login(t, srv)

	var created batchResponse
	status := do(t, http.MethodPost, srv.URL+"/admin/batches", token, createBatchRequest{
		URLs: []string{"https://www.example.com/annonce/1", "https://www.example.com/annonce/broken"},
	}, &created)
	if status != http.StatusAccepted || created.ID == "" {
		t.Fatalf("create: %d %+v", status, created)
	}

	b := waitBatch(t, srv, token, created.ID)
	if b.Items[1].Status != models.StatusError {
		t.Fatalf("broken item = %+v", b.Items[1])
	}

	if status := do(t, http.MethodPost, srv.URL+"/admin/batches/"+created.ID+"/selection", token, selectionRequest{Indexes: []int{1}, Selected: true}, nil); status != http.StatusConflict {
		t.Errorf("selecting an error item status = %d", status)
	}
	if status := do(t, http.MethodPost, srv.URL+"/admin/batches/"+created.ID+"/selection", token, selectionRequest{All: true}, nil); status != http.StatusOK {
		t.Fatalf("select all status = %d", status)
	}
	if status := do(t, http.MethodPost, srv.URL+"/admin/batches/"+created.ID+"/commit", token, nil, nil); status != http.StatusAccepted {
		t.Fatalf("commit status = %d", status)
	}

	deadline := time.Now().Add(5 * time.Second)
	for {
		b = waitBatch(t, srv, token, created.ID)
		if b.Summary.Imported == 1 || time.Now().After(deadline) {
			break
		}
		time.Sleep(10 * time.Millisecond)
	}
	if b.Summary.Imported != 1 || b.Summary.Errors != 1 {
		t.Errorf("summary = %+v", b.Summary)
	}
	if st.Len() != 1 {
		t.Errorf("stored %d vehicles", st.Len())
	}

	if status := do(t, http.MethodGet, srv.URL+"/admin/batches/unknown", token, nil, nil); status != http.StatusNotFound {
		t.Errorf("unknown batch status = %d", status)
	}
}
