package report

import (
	"context"
	"time"

	"patrolwatch/db"
)

// DailyTarget is the number of patrols a guard is expected to complete per
// calendar day. The target is advisory: it classifies reports and is never
// enforced at submission time.
const DailyTarget = 5

// GuardStatus is one guard's progress against the daily target.
type GuardStatus struct {
	CompletedCount    int `json:"completed"`
	RemainingToTarget int `json:"remaining"`
}

// FleetStatus aggregates progress across a roster of guards.
type FleetStatus struct {
	Expected  int `json:"expected"`
	Completed int `json:"completed"`
	Missed    int `json:"missed"`
}

// QuotaTracker derives daily completion counts straight from the event
// store on every call. Nothing is cached, so a result is always consistent
// with whatever was committed at read time.
type QuotaTracker struct {
	store db.Store
}

// NewQuotaTracker creates a tracker over the given store.
func NewQuotaTracker(store db.Store) *QuotaTracker {
	return &QuotaTracker{store: store}
}

// GuardStatus counts one guard's events in the day window containing day.
func (q *QuotaTracker) GuardStatus(ctx context.Context, guardID string, day time.Time) (GuardStatus, error) {
	start, end := DayWindow(day)

	events, err := q.store.ListPatrolsByGuardBetween(ctx, guardID, start, end)
	if err != nil {
		return GuardStatus{}, err
	}

	completed := len(events)
	remaining := DailyTarget - completed
	if remaining < 0 {
		remaining = 0
	}

	return GuardStatus{CompletedCount: completed, RemainingToTarget: remaining}, nil
}

// FleetStatus totals the roster's events in the day window containing day.
func (q *QuotaTracker) FleetStatus(ctx context.Context, guardIDs []string, day time.Time) (FleetStatus, error) {
	start, end := DayWindow(day)

	events, err := q.store.ListPatrolsBetween(ctx, start, end)
	if err != nil {
		return FleetStatus{}, err
	}

	roster := make(map[string]bool, len(guardIDs))
	for _, id := range guardIDs {
		roster[id] = true
	}

	completed := 0
	for _, event := range events {
		if roster[event.GuardID] {
			completed++
		}
	}

	expected := len(guardIDs) * DailyTarget
	missed := expected - completed
	if missed < 0 {
		missed = 0
	}

	return FleetStatus{Expected: expected, Completed: completed, Missed: missed}, nil
}
