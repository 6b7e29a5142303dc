package api

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/raushankrgupta/vehicle-catalog-importer/utils"
)

func (h *Handler) autoFillConfigured(w http.ResponseWriter, logMessageBuilder *strings.Builder) bool {
	if h.AutoFill == nil {
		utils.RespondError(w, logMessageBuilder, "Auto-fill is not configured", http.StatusServiceUnavailable)
		return false
	}
	return true
}

// AnalyzeHandler reports existing and needed counts per category.
func (h *Handler) AnalyzeHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[AutoFill Analyze API]")

	if !h.autoFillConfigured(w, &logMessageBuilder) {
		return
	}
	cats, total, err := h.AutoFill.Analyze(r.Context())
	if err != nil {
		utils.RespondError(w, &logMessageBuilder, err.Error(), http.StatusInternalServerError)
		return
	}
	utils.AddToLogMessage(&logMessageBuilder, fmt.Sprintf("Total needed: %d", total))
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{"categories": cats, "total_needed": total})
}

// RunAutoFillHandler starts a run in the background.
func (h *Handler) RunAutoFillHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[AutoFill Run API]")

	if !h.autoFillConfigured(w, &logMessageBuilder) {
		return
	}
	if h.AutoFill.Running() {
		utils.RespondError(w, &logMessageBuilder, "An auto-fill run is already in progress", http.StatusConflict)
		return
	}

	go func() {
		if _, err := h.AutoFill.Run(h.background()); err != nil && h.Logger != nil {
			h.Logger.Warn("auto-fill run failed", "error", err)
		}
	}()
	utils.AddToLogMessage(&logMessageBuilder, "Run started")
	utils.RespondJSON(w, http.StatusAccepted, map[string]string{"message": "Auto-fill started"})
}

// StopAutoFillHandler asks the current run to stop.
func (h *Handler) StopAutoFillHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[AutoFill Stop API]")

	if !h.autoFillConfigured(w, &logMessageBuilder) {
		return
	}
	running := h.AutoFill.Running()
	h.AutoFill.Stop()
	utils.RespondJSON(w, http.StatusOK, map[string]bool{"stopping": running})
}

// AutoFillStatusHandler returns the live state of the current or last run.
func (h *Handler) AutoFillStatusHandler(w http.ResponseWriter, r *http.Request) {
	var logMessageBuilder strings.Builder
	defer h.flush(&logMessageBuilder)
	utils.AddToLogMessage(&logMessageBuilder, "[AutoFill Status API]")

	if !h.autoFillConfigured(w, &logMessageBuilder) {
		return
	}
	utils.RespondJSON(w, http.StatusOK, map[string]interface{}{
		"running": h.AutoFill.Running(),
		"result":  h.AutoFill.Snapshot(),
	})
}
