package api

import "net/http"

// Routes registers every endpoint. Everything under /admin requires a token.
func (h *Handler) Routes() http.Handler {
	admin := http.NewServeMux()
	admin.HandleFunc("POST /admin/scrape", h.ScrapeHandler)
	admin.HandleFunc("POST /admin/import", h.ImportHandler)
	admin.HandleFunc("POST /admin/scan", h.ScanHandler)

	admin.HandleFunc("POST /admin/batches", h.CreateBatchHandler)
	admin.HandleFunc("GET /admin/batches/{id}", h.GetBatchHandler)
	admin.HandleFunc("POST /admin/batches/{id}/selection", h.SelectionHandler)
	admin.HandleFunc("POST /admin/batches/{id}/commit", h.CommitHandler)

	admin.HandleFunc("GET /admin/autofill/analyze", h.AnalyzeHandler)
	admin.HandleFunc("POST /admin/autofill/run", h.RunAutoFillHandler)
	admin.HandleFunc("POST /admin/autofill/stop", h.StopAutoFillHandler)
	admin.HandleFunc("GET /admin/autofill/status", h.AutoFillStatusHandler)

	mux := http.NewServeMux()
	mux.HandleFunc("POST /auth/login", h.LoginHandler)
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	mux.Handle("/admin/", AuthMiddleware(admin))
	return CORSMiddleware(mux)
}
