// models.go
// Defines the core data structures shared by the Patrolwatch API.

package models

import (
	"time"
)

// Role defines the access level of a user.
type Role string

const (
	RoleAdmin Role = "ADMIN"
	RoleGuard Role = "GUARD"
)

// User represents an authenticated principal. Role is fixed at creation.
// Password hashes live in a separate collection, never on this struct.
type User struct {
	UserID    string    `firestore:"user_id" json:"user_id"`
	Name      string    `firestore:"name" json:"name"`         // display name, not unique
	Username  string    `firestore:"username" json:"username"` // login name, unique
	Role      Role      `firestore:"role" json:"role"`
	CreatedAt time.Time `firestore:"created_at" json:"created_at"`
}

// Checkpoint is a fixed physical location guards must visit. The checklist
// is the point-in-time inspection definition; editing it never rewrites
// responses captured on past patrols.
type Checkpoint struct {
	CheckpointID string    `firestore:"checkpoint_id" json:"checkpoint_id"`
	Name         string    `firestore:"name" json:"name"`
	Latitude     float64   `firestore:"latitude" json:"latitude"`
	Longitude    float64   `firestore:"longitude" json:"longitude"`
	Checklist    []string  `firestore:"checklist" json:"checklist"`
	CreatedAt    time.Time `firestore:"created_at" json:"created_at"`
}

// ChecklistResponse is one answered checklist item. Value is either a bool
// (checked/unchecked) or free text.
type ChecklistResponse struct {
	Item  string      `firestore:"item" json:"item"`
	Value interface{} `firestore:"value" json:"value"`
}

// PatrolEvent is one immutable record of a verified checkpoint visit.
// Timestamp is server-assigned at acceptance; Responses is a frozen snapshot
// of the checklist as answered at submission time. Events are only ever
// removed as a cascade when their guard or checkpoint is deleted.
type PatrolEvent struct {
	PatrolID     string              `firestore:"patrol_id" json:"patrol_id"`
	GuardID      string              `firestore:"guard_id" json:"guard_id"`
	CheckpointID string              `firestore:"checkpoint_id" json:"checkpoint_id"`
	Latitude     float64             `firestore:"latitude" json:"latitude"`
	Longitude    float64             `firestore:"longitude" json:"longitude"`
	Responses    []ChecklistResponse `firestore:"responses" json:"responses"`
	PhotoRef     string              `firestore:"photo_ref,omitempty" json:"photo_ref,omitempty"` // content address in the blob store
	Timestamp    time.Time           `firestore:"timestamp" json:"timestamp"`
}

// AuditLog records an admin-side mutation or export.
type AuditLog struct {
	LogID     string    `firestore:"log_id" json:"log_id"`
	Timestamp time.Time `firestore:"timestamp" json:"timestamp"`
	UserID    string    `firestore:"user_id" json:"user_id"`
	Action    string    `firestore:"action" json:"action"`
	Details   string    `firestore:"details" json:"details"`
}
