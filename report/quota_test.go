package report

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"patrolwatch/db"
	"patrolwatch/models"
)

func seedPatrols(t *testing.T, store *db.MemoryStore, guardID string, times ...time.Time) {
	t.Helper()
	for i, ts := range times {
		err := store.CreatePatrol(context.Background(), &models.PatrolEvent{
			PatrolID:     fmt.Sprintf("%s-%d", guardID, i),
			GuardID:      guardID,
			CheckpointID: "cp-east",
			Timestamp:    ts,
		})
		require.NoError(t, err)
	}
}

func TestGuardStatus_CountsOnlyWindowEvents(t *testing.T) {
	store := db.NewMemoryStore()
	tracker := NewQuotaTracker(store)
	day := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	seedPatrols(t, store, "guard-1",
		day.Add(-time.Hour),
		day,
		time.Date(2026, 3, 13, 23, 59, 59, 0, time.UTC), // previous day
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),    // next day's midnight
	)

	status, err := tracker.GuardStatus(context.Background(), "guard-1", day)
	require.NoError(t, err)
	assert.Equal(t, 2, status.CompletedCount)
	assert.Equal(t, 3, status.RemainingToTarget)
}

func TestGuardStatus_MidnightBoundary(t *testing.T) {
	store := db.NewMemoryStore()
	tracker := NewQuotaTracker(store)
	day := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	// Window start is inclusive, window end is exclusive.
	seedPatrols(t, store, "guard-1",
		time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC),
		time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC),
	)

	status, err := tracker.GuardStatus(context.Background(), "guard-1", day)
	require.NoError(t, err)
	assert.Equal(t, 1, status.CompletedCount)
}

func TestGuardStatus_RemainingClampsAtZero(t *testing.T) {
	store := db.NewMemoryStore()
	tracker := NewQuotaTracker(store)
	day := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	times := make([]time.Time, 7)
	for i := range times {
		times[i] = day.Add(time.Duration(i) * time.Minute)
	}
	seedPatrols(t, store, "guard-1", times...)

	status, err := tracker.GuardStatus(context.Background(), "guard-1", day)
	require.NoError(t, err)
	assert.Equal(t, 7, status.CompletedCount)
	assert.Equal(t, 0, status.RemainingToTarget)
}

func TestFleetStatus_FiltersToRoster(t *testing.T) {
	store := db.NewMemoryStore()
	tracker := NewQuotaTracker(store)
	day := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	seedPatrols(t, store, "guard-1", day, day.Add(time.Minute), day.Add(2*time.Minute))
	seedPatrols(t, store, "guard-2", day)
	seedPatrols(t, store, "stranger", day)

	status, err := tracker.FleetStatus(context.Background(), []string{"guard-1", "guard-2"}, day)
	require.NoError(t, err)
	assert.Equal(t, 10, status.Expected)
	assert.Equal(t, 4, status.Completed)
	assert.Equal(t, 6, status.Missed)
}

func TestFleetStatus_EmptyRoster(t *testing.T) {
	store := db.NewMemoryStore()
	tracker := NewQuotaTracker(store)
	day := time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

	status, err := tracker.FleetStatus(context.Background(), nil, day)
	require.NoError(t, err)
	assert.Equal(t, FleetStatus{}, status)
}

func TestDayWindow(t *testing.T) {
	loc, err := time.LoadLocation("Africa/Nairobi")
	require.NoError(t, err)

	start, end := DayWindow(time.Date(2026, 3, 14, 18, 45, 12, 0, loc))
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, loc), start)
	assert.Equal(t, time.Date(2026, 3, 15, 0, 0, 0, 0, loc), end)
	assert.Equal(t, 24*time.Hour, end.Sub(start))
}

func TestParseDay(t *testing.T) {
	day, err := ParseDay("2026-03-14", time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2026, 3, 14, 0, 0, 0, 0, time.UTC), day)

	_, err = ParseDay("14/03/2026", time.UTC)
	assert.Error(t, err)

	day, err = ParseDay("", time.UTC)
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now(), day, time.Minute)
}
