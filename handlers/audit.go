package handlers

import (
	"context"
	"log"
	"time"

	"github.com/google/uuid"

	"patrolwatch/db"
	"patrolwatch/models"
)

// recordAudit persists an audit trail entry for an admin-side action. A
// failed append is logged but never fails the action itself.
func recordAudit(ctx context.Context, store db.Store, user *models.User, action, details string) {
	entry := &models.AuditLog{
		LogID:     uuid.NewString(),
		Timestamp: time.Now().UTC(),
		UserID:    user.UserID,
		Action:    action,
		Details:   details,
	}
	if err := store.AppendAuditLog(ctx, entry); err != nil {
		log.Printf("Warning: failed to append audit log: %v", err)
	}
}
