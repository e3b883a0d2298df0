package db

import (
	"context"
	"fmt"
	"sync"
	"time"

	"patrolwatch/models"
)

// MemoryStore is a mutex-guarded in-memory Store used by unit tests. It
// mirrors FirestoreStore semantics, including the cascade deletes.
type MemoryStore struct {
	mu          sync.RWMutex
	users       map[string]models.User
	passwords   map[string]string
	checkpoints map[string]models.Checkpoint
	patrols     map[string]models.PatrolEvent
	auditLogs   []models.AuditLog
}

// NewMemoryStore creates an empty in-memory store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		users:       make(map[string]models.User),
		passwords:   make(map[string]string),
		checkpoints: make(map[string]models.Checkpoint),
		patrols:     make(map[string]models.PatrolEvent),
	}
}

// --- User Operations ---

func (s *MemoryStore) CreateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.users {
		if existing.Username == user.Username {
			return fmt.Errorf("username %q: %w", user.Username, ErrConflict)
		}
	}
	s.users[user.UserID] = *user
	return nil
}

func (s *MemoryStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	user, ok := s.users[userID]
	if !ok {
		return nil, ErrNotFound
	}
	return &user, nil
}

func (s *MemoryStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, user := range s.users {
		if user.Username == username {
			u := user
			return &u, nil
		}
	}
	return nil, ErrNotFound
}

func (s *MemoryStore) ListUsers(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	users := make([]models.User, 0, len(s.users))
	for _, user := range s.users {
		users = append(users, user)
	}
	return users, nil
}

func (s *MemoryStore) ListGuards(ctx context.Context) ([]models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var guards []models.User
	for _, user := range s.users {
		if user.Role == models.RoleGuard {
			guards = append(guards, user)
		}
	}
	return guards, nil
}

func (s *MemoryStore) UpdateUser(ctx context.Context, user *models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[user.UserID]; !ok {
		return ErrNotFound
	}
	s.users[user.UserID] = *user
	return nil
}

func (s *MemoryStore) DeleteUser(ctx context.Context, userID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[userID]; !ok {
		return ErrNotFound
	}

	// Cascade: a deleted guard leaves no dangling patrol events.
	for id, patrol := range s.patrols {
		if patrol.GuardID == userID {
			delete(s.patrols, id)
		}
	}

	delete(s.passwords, userID)
	delete(s.users, userID)
	return nil
}

// --- Password Operations ---

func (s *MemoryStore) StorePasswordHash(ctx context.Context, userID, passwordHash string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.passwords[userID] = passwordHash
	return nil
}

func (s *MemoryStore) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	hash, ok := s.passwords[userID]
	if !ok {
		return "", ErrNotFound
	}
	return hash, nil
}

// --- Checkpoint Operations ---

func (s *MemoryStore) CreateCheckpoint(ctx context.Context, checkpoint *models.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.checkpoints[checkpoint.CheckpointID] = *checkpoint
	return nil
}

func (s *MemoryStore) GetCheckpoint(ctx context.Context, checkpointID string) (*models.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkpoint, ok := s.checkpoints[checkpointID]
	if !ok {
		return nil, ErrNotFound
	}
	return &checkpoint, nil
}

func (s *MemoryStore) ListCheckpoints(ctx context.Context) ([]models.Checkpoint, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	checkpoints := make([]models.Checkpoint, 0, len(s.checkpoints))
	for _, checkpoint := range s.checkpoints {
		checkpoints = append(checkpoints, checkpoint)
	}
	return checkpoints, nil
}

func (s *MemoryStore) UpdateCheckpoint(ctx context.Context, checkpoint *models.Checkpoint) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.checkpoints[checkpoint.CheckpointID]; !ok {
		return ErrNotFound
	}
	s.checkpoints[checkpoint.CheckpointID] = *checkpoint
	return nil
}

func (s *MemoryStore) DeleteCheckpoint(ctx context.Context, checkpointID string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.checkpoints[checkpointID]; !ok {
		return ErrNotFound
	}

	for id, patrol := range s.patrols {
		if patrol.CheckpointID == checkpointID {
			delete(s.patrols, id)
		}
	}

	delete(s.checkpoints, checkpointID)
	return nil
}

// --- Patrol Operations ---

func (s *MemoryStore) CreatePatrol(ctx context.Context, patrol *models.PatrolEvent) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.patrols[patrol.PatrolID] = *patrol
	return nil
}

func (s *MemoryStore) ListPatrolsBetween(ctx context.Context, start, end time.Time) ([]models.PatrolEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var patrols []models.PatrolEvent
	for _, patrol := range s.patrols {
		if inWindow(patrol.Timestamp, start, end) {
			patrols = append(patrols, patrol)
		}
	}
	return patrols, nil
}

func (s *MemoryStore) ListPatrolsByGuardBetween(ctx context.Context, guardID string, start, end time.Time) ([]models.PatrolEvent, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var patrols []models.PatrolEvent
	for _, patrol := range s.patrols {
		if patrol.GuardID == guardID && inWindow(patrol.Timestamp, start, end) {
			patrols = append(patrols, patrol)
		}
	}
	return patrols, nil
}

func inWindow(t, start, end time.Time) bool {
	return !t.Before(start) && t.Before(end)
}

// --- Audit Operations ---

func (s *MemoryStore) AppendAuditLog(ctx context.Context, entry *models.AuditLog) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.auditLogs = append(s.auditLogs, *entry)
	return nil
}

// AuditLogs returns a copy of the recorded audit trail, oldest first.
func (s *MemoryStore) AuditLogs() []models.AuditLog {
	s.mu.RLock()
	defer s.mu.RUnlock()

	logs := make([]models.AuditLog, len(s.auditLogs))
	copy(logs, s.auditLogs)
	return logs
}
