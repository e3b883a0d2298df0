package db

import (
	"context"
	"fmt"
	"log"
	"time"

	"cloud.google.com/go/firestore"
	firebase "firebase.google.com/go"
	"google.golang.org/api/iterator"
	"google.golang.org/api/option"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"

	"patrolwatch/models"
)

const (
	usersCollection       = "users"
	passwordsCollection   = "passwords"
	checkpointsCollection = "checkpoints"
	patrolsCollection     = "patrols"
	auditLogsCollection   = "audit_logs"
)

// FirestoreStore implements Store on top of Cloud Firestore.
type FirestoreStore struct {
	client *firestore.Client
}

// NewFirestoreStore initializes a Firestore-backed store.
func NewFirestoreStore(ctx context.Context, projectID, credentialsPath string) (*FirestoreStore, error) {
	opt := option.WithCredentialsFile(credentialsPath)

	config := &firebase.Config{ProjectID: projectID}
	app, err := firebase.NewApp(ctx, config, opt)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firebase app: %w", err)
	}

	client, err := app.Firestore(ctx)
	if err != nil {
		return nil, fmt.Errorf("error initializing Firestore client: %w", err)
	}

	log.Printf("✅ Connected to Firestore project: %s", projectID)

	return &FirestoreStore{client: client}, nil
}

// Close closes the Firestore client.
func (s *FirestoreStore) Close() error {
	return s.client.Close()
}

// --- User Operations ---

func (s *FirestoreStore) CreateUser(ctx context.Context, user *models.User) error {
	existing, err := s.GetUserByUsername(ctx, user.Username)
	if err != nil && err != ErrNotFound {
		return err
	}
	if existing != nil {
		return fmt.Errorf("username %q: %w", user.Username, ErrConflict)
	}

	_, err = s.client.Collection(usersCollection).Doc(user.UserID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetUser(ctx context.Context, userID string) (*models.User, error) {
	doc, err := s.client.Collection(usersCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}

	return &user, nil
}

func (s *FirestoreStore) GetUserByUsername(ctx context.Context, username string) (*models.User, error) {
	iter := s.client.Collection(usersCollection).
		Where("username", "==", username).
		Limit(1).
		Documents(ctx)
	defer iter.Stop()

	doc, err := iter.Next()
	if err == iterator.Done {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}

	var user models.User
	if err := doc.DataTo(&user); err != nil {
		return nil, fmt.Errorf("failed to parse user: %w", err)
	}

	return &user, nil
}

func (s *FirestoreStore) ListUsers(ctx context.Context) ([]models.User, error) {
	return s.listUsers(s.client.Collection(usersCollection).Documents(ctx))
}

func (s *FirestoreStore) ListGuards(ctx context.Context) ([]models.User, error) {
	iter := s.client.Collection(usersCollection).
		Where("role", "==", string(models.RoleGuard)).
		Documents(ctx)
	return s.listUsers(iter)
}

func (s *FirestoreStore) listUsers(iter *firestore.DocumentIterator) ([]models.User, error) {
	defer iter.Stop()

	var users []models.User
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate users: %w", err)
		}

		var user models.User
		if err := doc.DataTo(&user); err != nil {
			log.Printf("Warning: failed to parse user %s: %v", doc.Ref.ID, err)
			continue
		}
		users = append(users, user)
	}

	return users, nil
}

func (s *FirestoreStore) UpdateUser(ctx context.Context, user *models.User) error {
	_, err := s.client.Collection(usersCollection).Doc(user.UserID).Set(ctx, user)
	if err != nil {
		return fmt.Errorf("failed to update user: %w", err)
	}
	return nil
}

// DeleteUser removes a user and, first, every patrol event the user owns.
func (s *FirestoreStore) DeleteUser(ctx context.Context, userID string) error {
	if _, err := s.GetUser(ctx, userID); err != nil {
		return err
	}

	if err := s.deletePatrolsWhere(ctx, "guard_id", userID); err != nil {
		return err
	}

	if _, err := s.client.Collection(passwordsCollection).Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete password hash: %w", err)
	}

	if _, err := s.client.Collection(usersCollection).Doc(userID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete user: %w", err)
	}
	return nil
}

// --- Password Operations ---

func (s *FirestoreStore) StorePasswordHash(ctx context.Context, userID, passwordHash string) error {
	_, err := s.client.Collection(passwordsCollection).Doc(userID).Set(ctx, map[string]interface{}{
		"user_id":       userID,
		"password_hash": passwordHash,
		"updated_at":    time.Now(),
	})
	if err != nil {
		return fmt.Errorf("failed to store password hash: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetPasswordHash(ctx context.Context, userID string) (string, error) {
	doc, err := s.client.Collection(passwordsCollection).Doc(userID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return "", ErrNotFound
		}
		return "", fmt.Errorf("failed to get password hash: %w", err)
	}

	data := doc.Data()
	if hash, ok := data["password_hash"].(string); ok {
		return hash, nil
	}

	return "", fmt.Errorf("password hash missing for user %s: %w", userID, ErrNotFound)
}

// --- Checkpoint Operations ---

func (s *FirestoreStore) CreateCheckpoint(ctx context.Context, checkpoint *models.Checkpoint) error {
	_, err := s.client.Collection(checkpointsCollection).Doc(checkpoint.CheckpointID).Set(ctx, checkpoint)
	if err != nil {
		return fmt.Errorf("failed to create checkpoint: %w", err)
	}
	return nil
}

func (s *FirestoreStore) GetCheckpoint(ctx context.Context, checkpointID string) (*models.Checkpoint, error) {
	doc, err := s.client.Collection(checkpointsCollection).Doc(checkpointID).Get(ctx)
	if err != nil {
		if status.Code(err) == codes.NotFound {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("failed to get checkpoint: %w", err)
	}

	var checkpoint models.Checkpoint
	if err := doc.DataTo(&checkpoint); err != nil {
		return nil, fmt.Errorf("failed to parse checkpoint: %w", err)
	}

	return &checkpoint, nil
}

func (s *FirestoreStore) ListCheckpoints(ctx context.Context) ([]models.Checkpoint, error) {
	iter := s.client.Collection(checkpointsCollection).Documents(ctx)
	defer iter.Stop()

	var checkpoints []models.Checkpoint
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate checkpoints: %w", err)
		}

		var checkpoint models.Checkpoint
		if err := doc.DataTo(&checkpoint); err != nil {
			log.Printf("Warning: failed to parse checkpoint %s: %v", doc.Ref.ID, err)
			continue
		}
		checkpoints = append(checkpoints, checkpoint)
	}

	return checkpoints, nil
}

func (s *FirestoreStore) UpdateCheckpoint(ctx context.Context, checkpoint *models.Checkpoint) error {
	_, err := s.client.Collection(checkpointsCollection).Doc(checkpoint.CheckpointID).Set(ctx, checkpoint)
	if err != nil {
		return fmt.Errorf("failed to update checkpoint: %w", err)
	}
	return nil
}

// DeleteCheckpoint removes a checkpoint and, first, every patrol event
// recorded against it.
func (s *FirestoreStore) DeleteCheckpoint(ctx context.Context, checkpointID string) error {
	if _, err := s.GetCheckpoint(ctx, checkpointID); err != nil {
		return err
	}

	if err := s.deletePatrolsWhere(ctx, "checkpoint_id", checkpointID); err != nil {
		return err
	}

	if _, err := s.client.Collection(checkpointsCollection).Doc(checkpointID).Delete(ctx); err != nil {
		return fmt.Errorf("failed to delete checkpoint: %w", err)
	}
	return nil
}

// --- Patrol Operations ---

func (s *FirestoreStore) CreatePatrol(ctx context.Context, patrol *models.PatrolEvent) error {
	_, err := s.client.Collection(patrolsCollection).Doc(patrol.PatrolID).Set(ctx, patrol)
	if err != nil {
		return fmt.Errorf("failed to create patrol event: %w", err)
	}
	return nil
}

func (s *FirestoreStore) ListPatrolsBetween(ctx context.Context, start, end time.Time) ([]models.PatrolEvent, error) {
	iter := s.client.Collection(patrolsCollection).
		Where("timestamp", ">=", start).
		Where("timestamp", "<", end).
		Documents(ctx)
	return s.listPatrols(iter)
}

func (s *FirestoreStore) ListPatrolsByGuardBetween(ctx context.Context, guardID string, start, end time.Time) ([]models.PatrolEvent, error) {
	iter := s.client.Collection(patrolsCollection).
		Where("guard_id", "==", guardID).
		Where("timestamp", ">=", start).
		Where("timestamp", "<", end).
		Documents(ctx)
	return s.listPatrols(iter)
}

func (s *FirestoreStore) listPatrols(iter *firestore.DocumentIterator) ([]models.PatrolEvent, error) {
	defer iter.Stop()

	var patrols []models.PatrolEvent
	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to iterate patrol events: %w", err)
		}

		var patrol models.PatrolEvent
		if err := doc.DataTo(&patrol); err != nil {
			log.Printf("Warning: failed to parse patrol event %s: %v", doc.Ref.ID, err)
			continue
		}
		patrols = append(patrols, patrol)
	}

	return patrols, nil
}

func (s *FirestoreStore) deletePatrolsWhere(ctx context.Context, field, value string) error {
	iter := s.client.Collection(patrolsCollection).
		Where(field, "==", value).
		Documents(ctx)
	defer iter.Stop()

	for {
		doc, err := iter.Next()
		if err == iterator.Done {
			break
		}
		if err != nil {
			return fmt.Errorf("failed to iterate patrol events: %w", err)
		}
		if _, err := doc.Ref.Delete(ctx); err != nil {
			return fmt.Errorf("failed to delete patrol event %s: %w", doc.Ref.ID, err)
		}
	}

	return nil
}

// --- Audit Operations ---

func (s *FirestoreStore) AppendAuditLog(ctx context.Context, entry *models.AuditLog) error {
	_, err := s.client.Collection(auditLogsCollection).Doc(entry.LogID).Set(ctx, entry)
	if err != nil {
		return fmt.Errorf("failed to append audit log: %w", err)
	}
	return nil
}
