// main.go
// PatrolWatch API - patrol check-in verification and daily reporting
// Implements JWT authentication, Firestore storage, and geofenced check-ins

package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"

	"patrolwatch/access"
	"patrolwatch/auth"
	"patrolwatch/blob"
	"patrolwatch/config"
	"patrolwatch/db"
	"patrolwatch/handlers"
	"patrolwatch/middleware"
	"patrolwatch/patrol"
	"patrolwatch/report"
)

func main() {
	// Load environment variables
	if err := godotenv.Load(); err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	// Load configuration
	cfg := config.Load()
	cfg.Validate()

	log.Printf("🚀 Starting PatrolWatch API Server")
	log.Printf("📍 Environment: %s", cfg.Server.Environment)
	log.Printf("🔧 Port: %s", cfg.Server.Port)

	location, err := time.LoadLocation(cfg.Report.Timezone)
	if err != nil {
		log.Fatalf("❌ Failed to load report timezone: %v", err)
	}

	// Initialize Firestore
	ctx := context.Background()
	store, err := db.NewFirestoreStore(ctx, cfg.Firebase.ProjectID, cfg.Firebase.CredentialsPath)
	if err != nil {
		log.Fatalf("❌ Failed to initialize Firestore: %v", err)
	}
	defer store.Close()

	// Initialize photo storage
	var photos blob.Store
	if cfg.Storage.Bucket != "" {
		gcs, err := blob.NewGCS(ctx, cfg.Storage.Bucket, cfg.Firebase.CredentialsPath)
		if err != nil {
			log.Fatalf("❌ Failed to initialize GCS bucket: %v", err)
		}
		defer gcs.Close()
		photos = gcs
		log.Printf("📦 Photo storage: GCS bucket %s", cfg.Storage.Bucket)
	} else {
		photos = blob.NewMemory()
		log.Printf("⚠️  Photo storage: in-memory (GCS_BUCKET not set)")
	}

	// Initialize JWT Manager
	jwtManager := auth.NewJWTManager(
		cfg.JWT.Secret,
		cfg.JWT.Expiration,
		cfg.JWT.RefreshTokenExpiration,
	)
	log.Printf("🔐 JWT Manager initialized (expiration: %v)", cfg.JWT.Expiration)

	// Initialize services
	patrolService := patrol.NewService(store, photos, cfg.Geofence.ThresholdMeters)
	quotaTracker := report.NewQuotaTracker(store)
	aggregator := report.NewAggregator(store)

	// Initialize handlers
	authHandler := handlers.NewAuthHandler(store, jwtManager)
	patrolHandler := handlers.NewPatrolHandler(patrolService, quotaTracker, location)
	reportHandler := handlers.NewReportHandler(aggregator, store, location)
	adminHandler := handlers.NewAdminHandler(store)
	log.Printf("✅ Handlers initialized")

	// Initialize rate limiter
	rateLimiter := middleware.NewRateLimiter(cfg.RateLimit.Requests, cfg.RateLimit.Window)
	rateLimiter.CleanupOldLimiters()
	log.Printf("🛡️  Rate limiter initialized (%d requests per %v)", cfg.RateLimit.Requests, cfg.RateLimit.Window)

	// Set up router
	mux := http.NewServeMux()

	// Public routes (no authentication required)
	mux.HandleFunc("GET /health", handleHealth)
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /api/refresh", authHandler.RefreshToken)

	// Protected routes: every route carries its own operation gate
	authMiddleware := middleware.AuthMiddleware(jwtManager, store)
	protect := func(op access.Operation, h http.HandlerFunc) http.Handler {
		return authMiddleware(middleware.RequireOperation(op)(h))
	}

	// Guard endpoints
	mux.Handle("POST /api/patrols", protect(access.OpSubmitPatrol, patrolHandler.Submit))
	mux.Handle("GET /api/patrols", protect(access.OpListOwnPatrols, patrolHandler.ListOwn))

	// Report endpoints (admin only)
	mux.Handle("GET /api/reports/summary", protect(access.OpViewReports, reportHandler.Summary))
	mux.Handle("GET /api/reports/daily", protect(access.OpExportReports, reportHandler.ExportDaily))

	// Admin catalog endpoints
	mux.Handle("GET /api/admin/guards", protect(access.OpManageCatalog, adminHandler.ListGuards))
	mux.Handle("POST /api/admin/guards", protect(access.OpManageCatalog, adminHandler.CreateGuard))
	mux.Handle("PUT /api/admin/guards/{id}", protect(access.OpManageCatalog, adminHandler.UpdateGuard))
	mux.Handle("DELETE /api/admin/guards/{id}", protect(access.OpManageCatalog, adminHandler.DeleteGuard))
	mux.Handle("GET /api/admin/checkpoints", protect(access.OpManageCatalog, adminHandler.ListCheckpoints))
	mux.Handle("POST /api/admin/checkpoints", protect(access.OpManageCatalog, adminHandler.CreateCheckpoint))
	mux.Handle("PUT /api/admin/checkpoints/{id}", protect(access.OpManageCatalog, adminHandler.UpdateCheckpoint))
	mux.Handle("DELETE /api/admin/checkpoints/{id}", protect(access.OpManageCatalog, adminHandler.DeleteCheckpoint))

	// Apply global middleware
	handler := middleware.CORSMiddleware(cfg.CORS.AllowedOrigins)(mux)
	handler = rateLimiter.Middleware()(handler)

	// Create server
	server := &http.Server{
		Addr:         fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port),
		Handler:      handler,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	// Start server in a goroutine
	go func() {
		log.Printf("✅ Server listening on %s", server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("❌ Server failed to start: %v", err)
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("🛑 Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("❌ Server forced to shutdown: %v", err)
	}

	log.Println("✅ Server stopped gracefully")
}

// Health check endpoint
func handleHealth(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	fmt.Fprintf(w, `{"status":"healthy","timestamp":%d,"version":"1.0.0"}`, time.Now().Unix())
}
