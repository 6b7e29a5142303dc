// Package api exposes the import pipeline to back-office operators.
package api

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/vehicle-catalog-importer/importer"
	"github.com/raushankrgupta/vehicle-catalog-importer/logger"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
	"github.com/raushankrgupta/vehicle-catalog-importer/utils"
)

// Handler carries the collaborators shared by every endpoint. AutoFill may
// be nil when no category file is configured.
type Handler struct {
	Pipeline *importer.Pipeline
	Scanner  importer.CategoryScanner
	Batches  *importer.BatchRegistry
	AutoFill *importer.AutoFill
	Logger   *logger.Logger

	// Background is the parent context of work that outlives a request.
	Background context.Context
}

func (h *Handler) background() context.Context {
	if h.Background != nil {
		return h.Background
	}
	return context.Background()
}

// flush writes the request's log line.
func (h *Handler) flush(b *strings.Builder) {
	if h.Logger != nil {
		h.Logger.Info(b.String())
		return
	}
	fmt.Println(b.String())
}

type urlRequest struct {
	URL      string `json:"url"`
	Generate bool   `json:"generate"`
	Category string `json:"category"`
}

// decodeURL reads the url from the query string or the JSON body.
func decodeURL(r *http.Request) urlRequest {
	req := urlRequest{URL: r.URL.Query().Get("url")}
	if req.URL == "" {
		_ = json.NewDecoder(r.Body).Decode(&req)
	}
	req.URL = strings.TrimSpace(req.URL)
	return req
}

// ScrapeHandler previews the extraction of one listing without saving it.
func (h *Handler) ScrapeHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Scrape API]")

	req := decodeURL(r)
	if req.URL == "" {
		utils.RespondError(w, &logMessageBuilder, "Please provide a 'url' query parameter or JSON body", http.StatusBadRequest)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Scraping URL: %s", req.URL))

	item := models.ImportItem{URL: req.URL, Status: models.StatusPending}
	h.Pipeline.Scrape(r.Context(), &item, req.Category, nil)
	if item.Status == models.StatusError {
		utils.RespondError(w, &logMessageBuilder, item.Error, http.StatusBadGateway)
		return
	}

	utils.AddToLogMessage(&logMessageBuilder, "Scraping successful")
	utils.RespondJSON(w, http.StatusOK, item.Scraped)
}

// ImportHandler runs one URL through the full pipeline.
func (h *Handler) ImportHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Import API]")

	req := decodeURL(r)
	if req.URL == "" {
		utils.RespondError(w, &logMessageBuilder, "url is required", http.StatusBadRequest)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Importing URL: %s", req.URL))

	item := h.Pipeline.ImportSingle(r.Context(), req.URL, importer.Options{
		Generate: req.Generate,
		Category: req.Category,
	})
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Status: %s", item.Status))

	status := http.StatusOK
	switch item.Status {
	case models.StatusImported:
		status = http.StatusCreated
	case models.StatusError:
		status = http.StatusBadGateway
	}
	utils.RespondJSON(w, status, item)
}

type scanRequest struct {
	URL   string `json:"url"`
	Limit int    `json:"limit"`
}

// ScanHandler lists the listing URLs of a category page.
func (h *Handler) ScanHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Scan API]")

	var req scanRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil || req.URL == "" {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body: url is required", http.StatusBadRequest)
		return
	}

	urls, err := h.Scanner.ScanCategory(r.Context(), req.URL, req.Limit)
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadGateway)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Found %d listings on %s", len(urls), req.URL))
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"urls": urls, "count": len(urls)})
}
