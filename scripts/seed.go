package main

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/joho/godotenv"

	"patrolwatch/auth"
	"patrolwatch/config"
	"patrolwatch/db"
	"patrolwatch/models"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()
	cfg.Validate()

	// Initialize Firestore
	ctx := context.Background()
	store, err := db.NewFirestoreStore(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath)
	if err != nil {
		log.Fatalf("Failed to initialize Firestore: %v", err)
	}
	defer store.Close()

	log.Println("🌱 Starting database seeding...")

	// Seed checkpoints
	if err := seedCheckpoints(ctx, store); err != nil {
		log.Fatalf("Failed to seed checkpoints: %v", err)
	}

	// Seed users
	if err := seedUsers(ctx, store); err != nil {
		log.Fatalf("Failed to seed users: %v", err)
	}

	log.Println("✅ Database seeding completed successfully!")
}

func seedCheckpoints(ctx context.Context, store db.Store) error {
	checkpoints := []models.Checkpoint{
		{
			CheckpointID: "cp-east-gate",
			Name:         "East Gate",
			Latitude:     -1.28231,
			Longitude:    36.82064,
			Checklist:    []string{"Gate locked", "Lights working", "Perimeter fence intact"},
			CreatedAt:    time.Now().UTC(),
		},
		{
			CheckpointID: "cp-west-gate",
			Name:         "West Gate",
			Latitude:     -1.28304,
			Longitude:    36.81477,
			Checklist:    []string{"Gate locked", "Barrier arm functional"},
			CreatedAt:    time.Now().UTC(),
		},
		{
			CheckpointID: "cp-warehouse",
			Name:         "Warehouse Dock",
			Latitude:     -1.28119,
			Longitude:    36.81792,
			Checklist:    []string{"Roller doors secured", "No unattended vehicles", "Notes"},
			CreatedAt:    time.Now().UTC(),
		},
		{
			CheckpointID: "cp-parking",
			Name:         "Staff Parking",
			Latitude:     -1.28402,
			Longitude:    36.81890,
			Checklist:    []string{"Boom gate down", "CCTV operational"},
			CreatedAt:    time.Now().UTC(),
		},
	}

	for _, checkpoint := range checkpoints {
		if err := store.CreateCheckpoint(ctx, &checkpoint); err != nil {
			return fmt.Errorf("failed to create checkpoint %s: %w", checkpoint.CheckpointID, err)
		}
		log.Printf("  ✓ Created checkpoint: %s", checkpoint.Name)
	}

	return nil
}

func seedUsers(ctx context.Context, store db.Store) error {
	users := []struct {
		User     models.User
		Password string
	}{
		{
			User: models.User{
				UserID:    "user-admin",
				Name:      "Site Administrator",
				Username:  "admin",
				Role:      models.RoleAdmin,
				CreatedAt: time.Now().UTC(),
			},
			Password: "Admin@123",
		},
		{
			User: models.User{
				UserID:    "user-guard-juma",
				Name:      "Juma Otieno",
				Username:  "guard_juma",
				Role:      models.RoleGuard,
				CreatedAt: time.Now().UTC(),
			},
			Password: "Guard@123",
		},
		{
			User: models.User{
				UserID:    "user-guard-amina",
				Name:      "Amina Hassan",
				Username:  "guard_amina",
				Role:      models.RoleGuard,
				CreatedAt: time.Now().UTC(),
			},
			Password: "Guard@123",
		},
	}

	for _, userData := range users {
		// Create user
		if err := store.CreateUser(ctx, &userData.User); err != nil {
			return fmt.Errorf("failed to create user %s: %w", userData.User.Username, err)
		}

		// Hash and store password
		passwordHash, err := auth.HashPassword(userData.Password)
		if err != nil {
			return fmt.Errorf("failed to hash password for %s: %w", userData.User.Username, err)
		}

		if err := store.StorePasswordHash(ctx, userData.User.UserID, passwordHash); err != nil {
			return fmt.Errorf("failed to store password for %s: %w", userData.User.Username, err)
		}

		log.Printf("  ✓ Created user: %s (role: %s)", userData.User.Username, userData.User.Role)
	}

	return nil
}
