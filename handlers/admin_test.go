package handlers

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patrolwatch/db"
	"patrolwatch/models"
)

func jsonBody(t *testing.T, v interface{}) *bytes.Buffer {
	t.Helper()
	body, err := json.Marshal(v)
	require.NoError(t, err)
	return bytes.NewBuffer(body)
}

func TestCreateGuard(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/admin/guards", jsonBody(t, CreateGuardRequest{
		Name: "Amina Hassan", Username: "guard_amina", Password: "Guard@123",
	}), env.admin)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.User
	decodeBody(t, rec, &created)
	assert.Equal(t, models.RoleGuard, created.Role)
	assert.Equal(t, "guard_amina", created.Username)

	stored, err := env.store.GetUserByUsername(context.Background(), "guard_amina")
	require.NoError(t, err)
	_, err = env.store.GetPasswordHash(context.Background(), stored.UserID)
	assert.NoError(t, err)

	logs := env.store.AuditLogs()
	require.Len(t, logs, 1)
	assert.Equal(t, "ADMIN_CREATE_GUARD", logs[0].Action)
}

func TestCreateGuard_DuplicateUsername(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/admin/guards", jsonBody(t, CreateGuardRequest{
		Name: "Impostor", Username: env.guard.Username, Password: "Guard@123",
	}), env.admin)
	require.Equal(t, http.StatusConflict, rec.Code)
	assert.Equal(t, "CONFLICT", errorCode(t, rec))
}

func TestCreateGuard_WeakPassword(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/admin/guards", jsonBody(t, CreateGuardRequest{
		Name: "Amina Hassan", Username: "guard_amina", Password: "onlyletters",
	}), env.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateGuard_GuardForbidden(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/admin/guards", jsonBody(t, CreateGuardRequest{
		Name: "Amina Hassan", Username: "guard_amina", Password: "Guard@123",
	}), env.guard)
	assert.Equal(t, http.StatusForbidden, rec.Code)
}

func TestUpdateGuard_Rename(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPut, "/api/admin/guards/"+env.guard.UserID,
		jsonBody(t, UpdateGuardRequest{Name: "Juma O. Otieno"}), env.admin)
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := env.store.GetUser(context.Background(), env.guard.UserID)
	require.NoError(t, err)
	assert.Equal(t, "Juma O. Otieno", updated.Name)
	assert.Equal(t, models.RoleGuard, updated.Role)
}

func TestUpdateGuard_NotFound(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPut, "/api/admin/guards/user-ghost",
		jsonBody(t, UpdateGuardRequest{Name: "Ghost"}), env.admin)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestDeleteGuard_CascadesPatrols(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()

	require.NoError(t, env.store.CreatePatrol(context.Background(), &models.PatrolEvent{
		PatrolID: "p1", GuardID: env.guard.UserID, CheckpointID: "cp-east", Timestamp: now,
	}))

	rec := env.request(t, http.MethodDelete, "/api/admin/guards/"+env.guard.UserID, nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := env.store.GetUser(context.Background(), env.guard.UserID)
	assert.ErrorIs(t, err, db.ErrNotFound)

	patrols, err := env.store.ListPatrolsBetween(context.Background(), now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, patrols)
}

func TestDeleteGuard_SelfDeletionRejected(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodDelete, "/api/admin/guards/"+env.admin.UserID, nil, env.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCheckpoint(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/admin/checkpoints", jsonBody(t, map[string]interface{}{
		"name":      "West Gate",
		"latitude":  -1.28304,
		"longitude": 36.81477,
		"checklist": []string{"Gate locked", "Barrier arm functional"},
	}), env.admin)
	require.Equal(t, http.StatusCreated, rec.Code)

	var created models.Checkpoint
	decodeBody(t, rec, &created)
	assert.NotEmpty(t, created.CheckpointID)
	assert.Equal(t, "West Gate", created.Name)
	assert.Len(t, created.Checklist, 2)
}

func TestCreateCheckpoint_MissingCoordinates(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPost, "/api/admin/checkpoints", jsonBody(t, map[string]interface{}{
		"name": "West Gate",
	}), env.admin)
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCreateCheckpoint_ZeroCoordinatesValid(t *testing.T) {
	env := newTestEnv(t)

	// 0°,0° is a real place; only an absent coordinate is rejected.
	rec := env.request(t, http.MethodPost, "/api/admin/checkpoints", jsonBody(t, map[string]interface{}{
		"name":      "Null Island Buoy",
		"latitude":  0.0,
		"longitude": 0.0,
	}), env.admin)
	assert.Equal(t, http.StatusCreated, rec.Code)
}

func TestUpdateCheckpoint_ChecklistEdit(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodPut, "/api/admin/checkpoints/cp-east",
		jsonBody(t, map[string]interface{}{
			"checklist": []string{"Gate locked", "CCTV operational"},
		}), env.admin)
	require.Equal(t, http.StatusOK, rec.Code)

	updated, err := env.store.GetCheckpoint(context.Background(), "cp-east")
	require.NoError(t, err)
	assert.Equal(t, []string{"Gate locked", "CCTV operational"}, updated.Checklist)
	assert.Equal(t, "East Gate", updated.Name)
}

func TestDeleteCheckpoint_CascadesPatrols(t *testing.T) {
	env := newTestEnv(t)
	now := time.Now().UTC()

	require.NoError(t, env.store.CreatePatrol(context.Background(), &models.PatrolEvent{
		PatrolID: "p1", GuardID: env.guard.UserID, CheckpointID: "cp-east", Timestamp: now,
	}))

	rec := env.request(t, http.MethodDelete, "/api/admin/checkpoints/cp-east", nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)

	_, err := env.store.GetCheckpoint(context.Background(), "cp-east")
	assert.ErrorIs(t, err, db.ErrNotFound)

	patrols, err := env.store.ListPatrolsBetween(context.Background(), now.Add(-time.Hour), now.Add(time.Hour))
	require.NoError(t, err)
	assert.Empty(t, patrols)
}

func TestListGuards(t *testing.T) {
	env := newTestEnv(t)

	rec := env.request(t, http.MethodGet, "/api/admin/guards", nil, env.admin)
	require.Equal(t, http.StatusOK, rec.Code)

	var guards []models.User
	decodeBody(t, rec, &guards)
	require.Len(t, guards, 1)
	assert.Equal(t, env.guard.UserID, guards[0].UserID)
}
