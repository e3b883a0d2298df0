package db

import (
	"context"
	"errors"
	"time"

	"patrolwatch/models"
)

var (
	// ErrNotFound is returned when a referenced record does not exist.
	ErrNotFound = errors.New("record not found")
	// ErrConflict is returned when a unique constraint (login name) is hit.
	ErrConflict = errors.New("record already exists")
)

// Store is the storage collaborator behind the check-in and reporting
// engine. Deleting a guard or checkpoint cascades to its patrol events
// first, so aggregates never reference a missing owner.
type Store interface {
	// Users
	CreateUser(ctx context.Context, user *models.User) error
	GetUser(ctx context.Context, userID string) (*models.User, error)
	GetUserByUsername(ctx context.Context, username string) (*models.User, error)
	ListUsers(ctx context.Context) ([]models.User, error)
	ListGuards(ctx context.Context) ([]models.User, error)
	UpdateUser(ctx context.Context, user *models.User) error
	DeleteUser(ctx context.Context, userID string) error

	// Password hashes, stored apart from the user record
	StorePasswordHash(ctx context.Context, userID, passwordHash string) error
	GetPasswordHash(ctx context.Context, userID string) (string, error)

	// Checkpoints
	CreateCheckpoint(ctx context.Context, checkpoint *models.Checkpoint) error
	GetCheckpoint(ctx context.Context, checkpointID string) (*models.Checkpoint, error)
	ListCheckpoints(ctx context.Context) ([]models.Checkpoint, error)
	UpdateCheckpoint(ctx context.Context, checkpoint *models.Checkpoint) error
	DeleteCheckpoint(ctx context.Context, checkpointID string) error

	// Patrol events. Creation is the only write; events are immutable.
	CreatePatrol(ctx context.Context, patrol *models.PatrolEvent) error
	ListPatrolsBetween(ctx context.Context, start, end time.Time) ([]models.PatrolEvent, error)
	ListPatrolsByGuardBetween(ctx context.Context, guardID string, start, end time.Time) ([]models.PatrolEvent, error)

	// Audit trail
	AppendAuditLog(ctx context.Context, entry *models.AuditLog) error
}
