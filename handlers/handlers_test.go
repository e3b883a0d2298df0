package handlers

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"patrolwatch/access"
	"patrolwatch/auth"
	"patrolwatch/blob"
	"patrolwatch/db"
	"patrolwatch/middleware"
	"patrolwatch/models"
	"patrolwatch/patrol"
	"patrolwatch/report"
)

// testEnv wires the full request path, auth middleware and policy gates
// included, against in-memory stores.
type testEnv struct {
	store  *db.MemoryStore
	photos *blob.Memory
	jwt    *auth.JWTManager
	mux    *http.ServeMux
	admin  *models.User
	guard  *models.User
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()

	store := db.NewMemoryStore()
	photos := blob.NewMemory()
	jwtManager := auth.NewJWTManager("test-secret", 30*time.Minute, 7*24*time.Hour)

	admin := &models.User{
		UserID: "user-admin", Name: "Site Administrator",
		Username: "admin", Role: models.RoleAdmin,
	}
	guard := &models.User{
		UserID: "user-guard-juma", Name: "Juma Otieno",
		Username: "guard_juma", Role: models.RoleGuard,
	}
	require.NoError(t, store.CreateUser(context.Background(), admin))
	require.NoError(t, store.CreateUser(context.Background(), guard))
	require.NoError(t, store.CreateCheckpoint(context.Background(), &models.Checkpoint{
		CheckpointID: "cp-east",
		Name:         "East Gate",
		Latitude:     40.0,
		Longitude:    -74.0,
		Checklist:    []string{"Gate locked"},
	}))

	patrolService := patrol.NewService(store, photos, 0)
	quotaTracker := report.NewQuotaTracker(store)
	aggregator := report.NewAggregator(store)

	authHandler := NewAuthHandler(store, jwtManager)
	patrolHandler := NewPatrolHandler(patrolService, quotaTracker, time.UTC)
	reportHandler := NewReportHandler(aggregator, store, time.UTC)
	adminHandler := NewAdminHandler(store)

	authMiddleware := middleware.AuthMiddleware(jwtManager, store)
	protect := func(op access.Operation, h http.HandlerFunc) http.Handler {
		return authMiddleware(middleware.RequireOperation(op)(h))
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /api/login", authHandler.Login)
	mux.HandleFunc("POST /api/refresh", authHandler.RefreshToken)
	mux.Handle("POST /api/patrols", protect(access.OpSubmitPatrol, patrolHandler.Submit))
	mux.Handle("GET /api/patrols", protect(access.OpListOwnPatrols, patrolHandler.ListOwn))
	mux.Handle("GET /api/reports/summary", protect(access.OpViewReports, reportHandler.Summary))
	mux.Handle("GET /api/reports/daily", protect(access.OpExportReports, reportHandler.ExportDaily))
	mux.Handle("GET /api/admin/guards", protect(access.OpManageCatalog, adminHandler.ListGuards))
	mux.Handle("POST /api/admin/guards", protect(access.OpManageCatalog, adminHandler.CreateGuard))
	mux.Handle("PUT /api/admin/guards/{id}", protect(access.OpManageCatalog, adminHandler.UpdateGuard))
	mux.Handle("DELETE /api/admin/guards/{id}", protect(access.OpManageCatalog, adminHandler.DeleteGuard))
	mux.Handle("GET /api/admin/checkpoints", protect(access.OpManageCatalog, adminHandler.ListCheckpoints))
	mux.Handle("POST /api/admin/checkpoints", protect(access.OpManageCatalog, adminHandler.CreateCheckpoint))
	mux.Handle("PUT /api/admin/checkpoints/{id}", protect(access.OpManageCatalog, adminHandler.UpdateCheckpoint))
	mux.Handle("DELETE /api/admin/checkpoints/{id}", protect(access.OpManageCatalog, adminHandler.DeleteCheckpoint))

	return &testEnv{
		store:  store,
		photos: photos,
		jwt:    jwtManager,
		mux:    mux,
		admin:  admin,
		guard:  guard,
	}
}

func (e *testEnv) token(t *testing.T, user *models.User) string {
	t.Helper()
	token, err := e.jwt.GenerateToken(user)
	require.NoError(t, err)
	return token
}

func (e *testEnv) request(t *testing.T, method, path string, body io.Reader, user *models.User) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, path, body)
	if user != nil {
		req.Header.Set("Authorization", "Bearer "+e.token(t, user))
	}
	rec := httptest.NewRecorder()
	e.mux.ServeHTTP(rec, req)
	return rec
}

func decodeBody(t *testing.T, rec *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	require.NoError(t, json.NewDecoder(rec.Body).Decode(out))
}

func errorCode(t *testing.T, rec *httptest.ResponseRecorder) string {
	t.Helper()
	var body map[string]string
	decodeBody(t, rec, &body)
	return body["code"]
}
