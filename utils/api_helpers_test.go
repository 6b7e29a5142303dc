package utils

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
)

func TestAddToLogMessage(t *testing.T) {
	var b strings.Builder
	AddToLogMessage(&b, "[Import API]")
	AddToLogMessage(&b, "Importing URL: https://example.com/annonce/1 ")
	AddToLogMessage(&b, "Status: imported")

	want := "[Import API]; Importing URL: https://example.com/annonce/1; Status: imported"
	if b.String() != want {
		t.Errorf("log line = %q, want %q", b.String(), want)
	}
}

func TestRespondError(t *testing.T) {
	var b strings.Builder
	rec := httptest.NewRecorder()
	RespondError(rec, &b, "url is required", http.StatusBadRequest)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d", rec.Code)
	}
	var body map[string]string
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatal(err)
	}
	if body["error"] != "url is required" {
		t.Errorf("body = %v", body)
	}
	if b.String() != "url is required" {
		t.Errorf("log line = %q", b.String())
	}
}
