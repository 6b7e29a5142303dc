package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/vehicle-catalog-importer/importer"
	"github.com/raushankrgupta/vehicle-catalog-importer/models"
	"github.com/raushankrgupta/vehicle-catalog-importer/utils"
)

type createBatchRequest struct {
	URLs        []string `json:"urls"`
	CategoryURL string   `json:"category_url"`
	Limit       int      `json:"limit"`
}

type batchResponse struct {
	ID      string              `json:"id"`
	Running bool                `json:"running"`
	Items   []models.ImportItem `json:"items"`
	Summary models.BatchSummary `json:"summary"`
}

func newBatchResponse(b *importer.Batch) batchResponse {
	return batchResponse{ID: b.ID, Running: b.Running(), Items: b.Snapshot(), Summary: b.Summary()}
}

func (h *Handler) runner() *importer.BatchRunner {
	return &importer.BatchRunner{Pipeline: h.Pipeline}
}

// CreateBatchHandler creates a batch from explicit URLs or from a category
// scan and starts scraping it in the background.
func (h *Handler) CreateBatchHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Create Batch API]")

	var req createBatchRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}

	urls := req.URLs
	if len(urls) == 0 && req.CategoryURL != "" {
		scanned, err := h.Scanner.ScanCategory(r.Context(), req.CategoryURL, req.Limit)
		if err != nil {
			utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusBadGateway)
			return
		}
		urls = scanned
	}
	if len(urls) == 0 {
		utils.RespondError(w, &logMessageBuilder, "urls or category_url is required", http.StatusBadRequest)
		return
	}

	b := h.Batches.Create(urls)
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Batch %s created with %d urls", b.ID, len(urls)))

	go func() {
		if err := h.runner().ScrapeAll(h.background(), b); err != nil && h.Logger != nil {
			h.Logger.Warn("batch scrape not started", "batch", b.ID, "error", err)
		}
	}()
	utils.RespondJSON(w, http.StatusAccepted, newBatchResponse(b))
}

func (h *Handler) lookupBatch(w http.ResponseWriter, r *http.Request, logMessageBuilder *strings.Builder) (*importer.Batch, bool) {
	b, err := h.Batches.Get(r.PathValue("id"))
	if err != nil {
		utils.RespondError(w, logMessageBuilder, err.Error(), http.StatusNotFound)
		return nil, false
	}
	return b, true
}

// GetBatchHandler returns the live state of a batch.
func (h *Handler) GetBatchHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Get Batch API]")

	b, ok := h.lookupBatch(w, r, &logMessageBuilder)
	if !ok {
		return
	}
	utils.RespondJSON(w, http.StatusOK, newBatchResponse(b))
}

type selectionRequest struct {
	Indexes  []int `json:"indexes"`
	Selected bool  `json:"selected"`
	All      bool  `json:"all"`
}

// SelectionHandler changes which pending items will be committed.
func (h *Handler) SelectionHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Batch Selection API]")

	b, ok := h.lookupBatch(w, r, &logMessageBuilder)
	if !ok {
		return
	}
	var req selectionRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		utils.RespondError(w, &logMessageBuilder, "Invalid request body", http.StatusBadRequest)
		return
	}

	var err error
	if req.All {
		var n int
		n, err = b.SelectAll()
		utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Selected %d items", n))
	} else {
		err = b.Select(req.Indexes, req.Selected)
	}
	if err != nil {
		status := http.StatusBadRequest
		if errors.Is(err, importer.ErrNotSelectable) || errors.Is(err, importer.ErrBatchBusy) {
			status = http.StatusConflict
		}
		utils.RespondError(w, &logMessageBuilder, err.Error(), status)
		return
	}
	utils.RespondJSON(w, http.StatusOK, newBatchResponse(b))
}

// CommitHandler imports the selected items in the background.
func (h *Handler) CommitHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[Batch Commit API]")

	b, ok := h.lookupBatch(w, r, &logMessageBuilder)
	if !ok {
		return
	}
	if b.Running() {
		utils.RespondError(w, &logMessageBuilder, importer.ErrBatchBusy.Error(), http.StatusConflict)
		return
	}
	generate := r.URL.Query().Get("generate") == "true"

	go func() {
		summary, err := h.runner().Commit(h.background(), b, generate)
		if h.Logger == nil {
			return
		}
		if err != nil {
			h.Logger.Warn("batch commit not started", "batch", b.ID, "error", err)
			return
		}
		h.Logger.Info("batch committed", "batch", b.ID,
			"imported", summary.Imported, "duplicates", summary.Duplicates, "errors", summary.Errors)
	}()
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Commit of batch %s started", b.ID))
	utils.RespondJSON(w, http.StatusAccepted, newBatchResponse(b))
}
