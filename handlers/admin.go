package handlers

import (
	"encoding/json"
	"errors"
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/google/uuid"

	"patrolwatch/auth"
	"patrolwatch/db"
	"patrolwatch/middleware"
	"patrolwatch/models"
)

// AdminHandler serves the catalog-management collaborator: guard and
// checkpoint CRUD. Deletes cascade to dependent patrol events inside the
// store, so reports never reference a removed owner.
type AdminHandler struct {
	store db.Store
}

func NewAdminHandler(store db.Store) *AdminHandler {
	return &AdminHandler{store: store}
}

// --- Guard Management ---

type CreateGuardRequest struct {
	Name     string `json:"name"`
	Username string `json:"username"`
	Password string `json:"password"`
}

type UpdateGuardRequest struct {
	Name     string `json:"name,omitempty"`
	Password string `json:"password,omitempty"`
}

// ListGuards returns all guard accounts.
func (h *AdminHandler) ListGuards(w http.ResponseWriter, r *http.Request) {
	guards, err := h.store.ListGuards(r.Context())
	if err != nil {
		log.Printf("❌ Failed to list guards: %v", err)
		writeError(w, codeInternal, "Failed to retrieve guards", http.StatusInternalServerError)
		return
	}

	if guards == nil {
		guards = []models.User{}
	}
	writeJSON(w, http.StatusOK, guards)
}

// CreateGuard creates a new guard account. Role is fixed at creation; this
// endpoint only ever mints GUARD principals.
func (h *AdminHandler) CreateGuard(w http.ResponseWriter, r *http.Request) {
	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "UNAUTHORIZED", "User not found in context", http.StatusUnauthorized)
		return
	}

	var req CreateGuardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, codeValidation, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Username == "" || req.Password == "" {
		writeError(w, codeValidation, "Name, username and password are required", http.StatusBadRequest)
		return
	}

	if err := auth.ValidatePasswordStrength(req.Password); err != nil {
		writeError(w, codeValidation, err.Error(), http.StatusBadRequest)
		return
	}

	guard := &models.User{
		UserID:    fmt.Sprintf("user-%s", uuid.NewString()),
		Name:      req.Name,
		Username:  req.Username,
		Role:      models.RoleGuard,
		CreatedAt: time.Now().UTC(),
	}

	if err := h.store.CreateUser(r.Context(), guard); err != nil {
		if errors.Is(err, db.ErrConflict) {
			writeError(w, codeConflict, "Username already exists", http.StatusConflict)
			return
		}
		log.Printf("❌ Failed to create guard: %v", err)
		writeError(w, codeInternal, "Failed to create guard", http.StatusInternalServerError)
		return
	}

	passwordHash, err := auth.HashPassword(req.Password)
	if err != nil {
		log.Printf("❌ Failed to hash password: %v", err)
		writeError(w, codeInternal, "Failed to hash password", http.StatusInternalServerError)
		return
	}

	if err := h.store.StorePasswordHash(r.Context(), guard.UserID, passwordHash); err != nil {
		log.Printf("❌ Failed to store password: %v", err)
		writeError(w, codeInternal, "Failed to store password", http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.store, adminUser, "ADMIN_CREATE_GUARD",
		fmt.Sprintf("Created guard %q (%s)", req.Name, req.Username))
	log.Printf("✅ Guard created by %s: %s", adminUser.Username, req.Username)

	writeJSON(w, http.StatusCreated, guard)
}

// UpdateGuard updates a guard's display name and/or password. Role and
// login name are fixed.
func (h *AdminHandler) UpdateGuard(w http.ResponseWriter, r *http.Request) {
	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "UNAUTHORIZED", "User not found in context", http.StatusUnauthorized)
		return
	}

	guardID := r.PathValue("id")

	var req UpdateGuardRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, codeValidation, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" && req.Password == "" {
		writeError(w, codeValidation, "No updates provided", http.StatusBadRequest)
		return
	}

	guard, err := h.store.GetUser(r.Context(), guardID)
	if err != nil {
		writeError(w, codeNotFound, "Guard not found", http.StatusNotFound)
		return
	}

	if req.Name != "" {
		guard.Name = req.Name
		if err := h.store.UpdateUser(r.Context(), guard); err != nil {
			log.Printf("❌ Failed to update guard: %v", err)
			writeError(w, codeInternal, "Failed to update guard", http.StatusInternalServerError)
			return
		}
	}

	if req.Password != "" {
		if err := auth.ValidatePasswordStrength(req.Password); err != nil {
			writeError(w, codeValidation, err.Error(), http.StatusBadRequest)
			return
		}
		passwordHash, err := auth.HashPassword(req.Password)
		if err != nil {
			log.Printf("❌ Failed to hash password: %v", err)
			writeError(w, codeInternal, "Failed to hash password", http.StatusInternalServerError)
			return
		}
		if err := h.store.StorePasswordHash(r.Context(), guard.UserID, passwordHash); err != nil {
			log.Printf("❌ Failed to store password: %v", err)
			writeError(w, codeInternal, "Failed to update password", http.StatusInternalServerError)
			return
		}
	}

	recordAudit(r.Context(), h.store, adminUser, "ADMIN_UPDATE_GUARD",
		fmt.Sprintf("Updated guard %s", guard.Username))
	log.Printf("✅ Guard updated by %s: %s", adminUser.Username, guard.Username)

	writeJSON(w, http.StatusOK, guard)
}

// DeleteGuard removes a guard and, by cascade, every patrol event the
// guard recorded.
func (h *AdminHandler) DeleteGuard(w http.ResponseWriter, r *http.Request) {
	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "UNAUTHORIZED", "User not found in context", http.StatusUnauthorized)
		return
	}

	guardID := r.PathValue("id")
	if guardID == adminUser.UserID {
		writeError(w, codeValidation, "Cannot delete your own account", http.StatusBadRequest)
		return
	}

	guard, err := h.store.GetUser(r.Context(), guardID)
	if err != nil {
		writeError(w, codeNotFound, "Guard not found", http.StatusNotFound)
		return
	}

	if err := h.store.DeleteUser(r.Context(), guardID); err != nil {
		log.Printf("❌ Failed to delete guard: %v", err)
		writeError(w, codeInternal, "Failed to delete guard", http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.store, adminUser, "ADMIN_DELETE_GUARD",
		fmt.Sprintf("Deleted guard %s and dependent patrols", guard.Username))
	log.Printf("✅ Guard deleted by %s: %s", adminUser.Username, guard.Username)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Guard deleted successfully",
	})
}

// --- Checkpoint Management ---

type CreateCheckpointRequest struct {
	Name      string   `json:"name"`
	Latitude  *float64 `json:"latitude"`
	Longitude *float64 `json:"longitude"`
	Checklist []string `json:"checklist"`
}

type UpdateCheckpointRequest struct {
	Name      string   `json:"name,omitempty"`
	Latitude  *float64 `json:"latitude,omitempty"`
	Longitude *float64 `json:"longitude,omitempty"`
	Checklist []string `json:"checklist,omitempty"`
}

// ListCheckpoints returns all checkpoints.
func (h *AdminHandler) ListCheckpoints(w http.ResponseWriter, r *http.Request) {
	checkpoints, err := h.store.ListCheckpoints(r.Context())
	if err != nil {
		log.Printf("❌ Failed to list checkpoints: %v", err)
		writeError(w, codeInternal, "Failed to retrieve checkpoints", http.StatusInternalServerError)
		return
	}

	if checkpoints == nil {
		checkpoints = []models.Checkpoint{}
	}
	writeJSON(w, http.StatusOK, checkpoints)
}

// CreateCheckpoint creates a new checkpoint with its checklist definition.
func (h *AdminHandler) CreateCheckpoint(w http.ResponseWriter, r *http.Request) {
	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "UNAUTHORIZED", "User not found in context", http.StatusUnauthorized)
		return
	}

	var req CreateCheckpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, codeValidation, "Invalid request body", http.StatusBadRequest)
		return
	}

	if req.Name == "" || req.Latitude == nil || req.Longitude == nil {
		writeError(w, codeValidation, "Name, latitude and longitude are required", http.StatusBadRequest)
		return
	}

	checklist := req.Checklist
	if checklist == nil {
		checklist = []string{}
	}

	checkpoint := &models.Checkpoint{
		CheckpointID: fmt.Sprintf("cp-%s", uuid.NewString()),
		Name:         req.Name,
		Latitude:     *req.Latitude,
		Longitude:    *req.Longitude,
		Checklist:    checklist,
		CreatedAt:    time.Now().UTC(),
	}

	if err := h.store.CreateCheckpoint(r.Context(), checkpoint); err != nil {
		log.Printf("❌ Failed to create checkpoint: %v", err)
		writeError(w, codeInternal, "Failed to create checkpoint", http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.store, adminUser, "ADMIN_CREATE_CHECKPOINT",
		fmt.Sprintf("Created checkpoint %q", req.Name))
	log.Printf("✅ Checkpoint created by %s: %s", adminUser.Username, req.Name)

	writeJSON(w, http.StatusCreated, checkpoint)
}

// UpdateCheckpoint edits the current checkpoint definition. Checklist edits
// only shape future submissions; responses already captured on past events
// are frozen snapshots and stay untouched.
func (h *AdminHandler) UpdateCheckpoint(w http.ResponseWriter, r *http.Request) {
	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "UNAUTHORIZED", "User not found in context", http.StatusUnauthorized)
		return
	}

	checkpointID := r.PathValue("id")

	var req UpdateCheckpointRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeError(w, codeValidation, "Invalid request body", http.StatusBadRequest)
		return
	}

	checkpoint, err := h.store.GetCheckpoint(r.Context(), checkpointID)
	if err != nil {
		writeError(w, codeNotFound, "Checkpoint not found", http.StatusNotFound)
		return
	}

	if req.Name != "" {
		checkpoint.Name = req.Name
	}
	if req.Latitude != nil {
		checkpoint.Latitude = *req.Latitude
	}
	if req.Longitude != nil {
		checkpoint.Longitude = *req.Longitude
	}
	if req.Checklist != nil {
		checkpoint.Checklist = req.Checklist
	}

	if err := h.store.UpdateCheckpoint(r.Context(), checkpoint); err != nil {
		log.Printf("❌ Failed to update checkpoint: %v", err)
		writeError(w, codeInternal, "Failed to update checkpoint", http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.store, adminUser, "ADMIN_UPDATE_CHECKPOINT",
		fmt.Sprintf("Updated checkpoint %q", checkpoint.Name))
	log.Printf("✅ Checkpoint updated by %s: %s", adminUser.Username, checkpoint.Name)

	writeJSON(w, http.StatusOK, checkpoint)
}

// DeleteCheckpoint removes a checkpoint and, by cascade, every patrol
// event recorded against it.
func (h *AdminHandler) DeleteCheckpoint(w http.ResponseWriter, r *http.Request) {
	adminUser, ok := middleware.GetUserFromContext(r.Context())
	if !ok {
		writeError(w, "UNAUTHORIZED", "User not found in context", http.StatusUnauthorized)
		return
	}

	checkpointID := r.PathValue("id")

	checkpoint, err := h.store.GetCheckpoint(r.Context(), checkpointID)
	if err != nil {
		writeError(w, codeNotFound, "Checkpoint not found", http.StatusNotFound)
		return
	}

	if err := h.store.DeleteCheckpoint(r.Context(), checkpointID); err != nil {
		log.Printf("❌ Failed to delete checkpoint: %v", err)
		writeError(w, codeInternal, "Failed to delete checkpoint", http.StatusInternalServerError)
		return
	}

	recordAudit(r.Context(), h.store, adminUser, "ADMIN_DELETE_CHECKPOINT",
		fmt.Sprintf("Deleted checkpoint %q and dependent patrols", checkpoint.Name))
	log.Printf("✅ Checkpoint deleted by %s: %s", adminUser.Username, checkpoint.Name)

	writeJSON(w, http.StatusOK, map[string]string{
		"message": "Checkpoint deleted successfully",
	})
}
