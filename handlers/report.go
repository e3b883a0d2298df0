package handlers

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"patrolwatch/db"
	"patrolwatch/middleware"
	"patrolwatch/report"
)

// ReportHandler serves the admin-facing daily summary and its CSV export.
// The export reads through the same aggregation path as the summary, so
// both always describe the same window the same way.
type ReportHandler struct {
	aggregator *report.Aggregator
	store      db.Store
	location   *time.Location
}

func NewReportHandler(aggregator *report.Aggregator, store db.Store, location *time.Location) *ReportHandler {
	return &ReportHandler{
		aggregator: aggregator,
		store:      store,
		location:   location,
	}
}

// Summary returns the full daily report for a day (default today).
func (h *ReportHandler) Summary(w http.ResponseWriter, r *http.Request) {
	day, err := report.ParseDay(r.URL.Query().Get("date"), h.location)
	if err != nil {
		writeError(w, codeValidation, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.aggregator.BuildSummary(r.Context(), day)
	if err != nil {
		log.Printf("❌ Failed to build summary: %v", err)
		writeError(w, codeInternal, "Failed to build report", http.StatusInternalServerError)
		return
	}

	writeJSON(w, http.StatusOK, summary)
}

// ExportDaily streams the day's patrol feed as a CSV download.
func (h *ReportHandler) ExportDaily(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "UNAUTHORIZED", "User not found in context", http.StatusUnauthorized)
		return
	}

	day, err := report.ParseDay(r.URL.Query().Get("date"), h.location)
	if err != nil {
		writeError(w, codeValidation, err.Error(), http.StatusBadRequest)
		return
	}

	summary, err := h.aggregator.BuildSummary(r.Context(), day)
	if err != nil {
		log.Printf("❌ Failed to build export: %v", err)
		writeError(w, codeInternal, "Failed to build export", http.StatusInternalServerError)
		return
	}

	filename := report.Filename(summary.Date)
	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))

	if err := report.WriteCSV(w, summary.Patrols); err != nil {
		log.Printf("❌ Failed to write CSV: %v", err)
		return
	}

	recordAudit(r.Context(), h.store, user, "DATA_EXPORT", fmt.Sprintf("Exported %s (%d patrols)", filename, len(summary.Patrols)))

	log.Printf("📊 CSV export by %s: %d patrols", user.Username, len(summary.Patrols))
}
