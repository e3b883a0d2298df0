package report

import (
	"context"
	"sort"
	"time"

	"patrolwatch/db"
	"patrolwatch/models"
)

// Per-guard status classification, a pure function of the day's count.
const (
	StatusCompleted  = "Completed"
	StatusInProgress = "In progress"
	StatusMissed     = "Missed"
)

// StatusForCount classifies a guard's day by event count.
func StatusForCount(count int) string {
	switch {
	case count >= DailyTarget:
		return StatusCompleted
	case count == 0:
		return StatusMissed
	default:
		return StatusInProgress
	}
}

// GuardBreakdown is one roster guard's line in the daily summary.
type GuardBreakdown struct {
	GuardID   string `json:"guard_id"`
	GuardName string `json:"guard_name"`
	Patrols   int    `json:"patrols"`
	Status    string `json:"status"`
}

// PatrolDetail is one event expanded for the supervisor's audit feed.
// Responses are the frozen snapshot captured at submission time, never the
// checkpoint's current checklist.
type PatrolDetail struct {
	ID             string                     `json:"id"`
	GuardName      string                     `json:"guard_name"`
	CheckpointName string                     `json:"checkpoint_name"`
	Timestamp      time.Time                  `json:"timestamp"`
	Latitude       float64                    `json:"latitude"`
	Longitude      float64                    `json:"longitude"`
	Responses      []models.ChecklistResponse `json:"responses"`
	PhotoRef       string                     `json:"photo_ref,omitempty"`
}

// Summary is the full daily report consumed by dashboards and the CSV
// export.
type Summary struct {
	Date      time.Time        `json:"date"`
	Expected  int              `json:"expected"`
	Completed int              `json:"completed"`
	Missed    int              `json:"missed"`
	ByGuard   []GuardBreakdown `json:"by_guard"`
	Patrols   []PatrolDetail   `json:"patrols"`
}

// Aggregator builds daily summaries by reading the event store on demand.
type Aggregator struct {
	store db.Store
}

// NewAggregator creates an aggregator over the given store.
func NewAggregator(store db.Store) *Aggregator {
	return &Aggregator{store: store}
}

// BuildSummary assembles the report for the day window containing day.
// Every roster guard appears in ByGuard, including guards with zero events.
// Events are attributed to guards by stable identifier only; display names
// are decoration and may legitimately collide.
func (a *Aggregator) BuildSummary(ctx context.Context, day time.Time) (*Summary, error) {
	start, end := DayWindow(day)

	guards, err := a.store.ListGuards(ctx)
	if err != nil {
		return nil, err
	}
	sort.Slice(guards, func(i, j int) bool {
		if guards[i].Name != guards[j].Name {
			return guards[i].Name < guards[j].Name
		}
		return guards[i].UserID < guards[j].UserID
	})

	events, err := a.store.ListPatrolsBetween(ctx, start, end)
	if err != nil {
		return nil, err
	}
	sort.Slice(events, func(i, j int) bool {
		if !events[i].Timestamp.Equal(events[j].Timestamp) {
			return events[i].Timestamp.After(events[j].Timestamp)
		}
		return events[i].PatrolID < events[j].PatrolID
	})

	checkpoints, err := a.store.ListCheckpoints(ctx)
	if err != nil {
		return nil, err
	}

	guardNames := make(map[string]string, len(guards))
	counts := make(map[string]int, len(guards))
	for _, guard := range guards {
		guardNames[guard.UserID] = guard.Name
		counts[guard.UserID] = 0
	}
	checkpointNames := make(map[string]string, len(checkpoints))
	for _, checkpoint := range checkpoints {
		checkpointNames[checkpoint.CheckpointID] = checkpoint.Name
	}

	patrols := make([]PatrolDetail, 0, len(events))
	for _, event := range events {
		counts[event.GuardID]++

		guardName, ok := guardNames[event.GuardID]
		if !ok {
			guardName = event.GuardID
		}
		checkpointName, ok := checkpointNames[event.CheckpointID]
		if !ok {
			checkpointName = event.CheckpointID
		}

		patrols = append(patrols, PatrolDetail{
			ID:             event.PatrolID,
			GuardName:      guardName,
			CheckpointName: checkpointName,
			Timestamp:      event.Timestamp,
			Latitude:       event.Latitude,
			Longitude:      event.Longitude,
			Responses:      event.Responses,
			PhotoRef:       event.PhotoRef,
		})
	}

	byGuard := make([]GuardBreakdown, 0, len(guards))
	completed := 0
	for _, guard := range guards {
		count := counts[guard.UserID]
		completed += count
		byGuard = append(byGuard, GuardBreakdown{
			GuardID:   guard.UserID,
			GuardName: guard.Name,
			Patrols:   count,
			Status:    StatusForCount(count),
		})
	}

	expected := len(guards) * DailyTarget
	missed := expected - completed
	if missed < 0 {
		missed = 0
	}

	return &Summary{
		Date:      start,
		Expected:  expected,
		Completed: completed,
		Missed:    missed,
		ByGuard:   byGuard,
		Patrols:   patrols,
	}, nil
}
