package handlers

import (
	"encoding/json"
	"log"
	"net/http"
	"time"

	"patrolwatch/middleware"
	"patrolwatch/models"
	"patrolwatch/patrol"
	"patrolwatch/report"
)

// PatrolHandler serves the guard-facing check-in endpoints. Both endpoints
// are self-scoped: the guard identifier always comes from the authenticated
// context, so no payload field can submit or list on another guard's
// behalf.
type PatrolHandler struct {
	service  *patrol.Service
	quota    *report.QuotaTracker
	location *time.Location
}

func NewPatrolHandler(service *patrol.Service, quota *report.QuotaTracker, location *time.Location) *PatrolHandler {
	return &PatrolHandler{
		service:  service,
		quota:    quota,
		location: location,
	}
}

// Submit records one check-in for the calling guard.
func (h *PatrolHandler) Submit(w http.ResponseWriter, r *http.Request) {
	user, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "UNAUTHORIZED", "User not found in context", http.StatusUnauthorized)
		return
	}

	var req patrol.SubmitRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, codeValidation, "Invalid request body", http.StatusBadRequest)
		return
	}

	event, err := h.service.Submit(r.Context(), user.UserID, req)
	if err != nil {
		log.Printf("⚠️  Patrol rejected for %s: %v", user.Username, err)
		writeSubmitError(w, err)
		return
	}

	log.Printf("✅ Patrol recorded: %s at checkpoint %s", user.Username, event.CheckpointID)

	writeJSON(w, http.StatusCreated, event)
}

// ListOwnResponse is the guard's view of one day: quota progress plus the
// day's own events, most recent first.
type ListOwnResponse struct {
	Completed int                  `json:"completed"`
	Remaining int                  `json:"remaining"`
	Patrols   []models.PatrolEvent `json:"patrols"`
}

// ListOwn returns the calling guard's events for a day (default today).
func (h *PatrolHandler) ListOwn(w http.ResponseWriter, r *http.Request) {
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
	start, end := report.DayWindow(day)

	events, err := h.service.ListOwn(r.Context(), user.UserID, start, end)
	if err != nil {
		log.Printf("❌ Failed to list patrols for %s: %v", user.Username, err)
		writeError(w, codeInternal, "Failed to retrieve patrols", http.StatusInternalServerError)
		return
	}

	status, err := h.quota.GuardStatus(r.Context(), user.UserID, day)
	if err != nil {
		log.Printf("❌ Failed to compute quota for %s: %v", user.Username, err)
		writeError(w, codeInternal, "Failed to compute quota", http.StatusInternalServerError)
		return
	}

	if events == nil {
		events = []models.PatrolEvent{}
	}

	writeJSON(w, http.StatusOK, ListOwnResponse{
		Completed: status.CompletedCount,
		Remaining: status.RemainingToTarget,
		Patrols:   events,
	})
}
