package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"
)

// csvHeader is the fixed export column order. Consumers key on it; do not
// reorder.
var csvHeader = []string{
	"Patrol ID",
	"Guard Name",
	"Checkpoint",
	"Timestamp",
	"Latitude",
	"Longitude",
	"Checklist Responses",
	"Has Photo",
}

// Filename names a daily export after the UTC date of the window start.
func Filename(windowStart time.Time) string {
	return fmt.Sprintf("daily-report-%s.csv", windowStart.UTC().Format(DayFormat))
}

// WriteCSV renders the patrol feed as RFC 4180 CSV. Fields containing a
// comma, quote or line break are quoted with internal quotes doubled;
// timestamps are ISO-8601 UTC; responses are serialized as JSON so the
// frozen checklist snapshot survives the flat format.
func WriteCSV(w io.Writer, patrols []PatrolDetail) error {
	writer := csv.NewWriter(w)

	if err := writer.Write(csvHeader); err != nil {
		return fmt.Errorf("failed to write CSV header: %w", err)
	}

	for _, patrol := range patrols {
		responses, err := json.Marshal(patrol.Responses)
		if err != nil {
			return fmt.Errorf("failed to serialize responses for patrol %s: %w", patrol.ID, err)
		}

		hasPhoto := "No"
		if patrol.PhotoRef != "" {
			hasPhoto = "Yes"
		}

		row := []string{
			patrol.ID,
			patrol.GuardName,
			patrol.CheckpointName,
			patrol.Timestamp.UTC().Format(time.RFC3339),
			strconv.FormatFloat(patrol.Latitude, 'f', -1, 64),
			strconv.FormatFloat(patrol.Longitude, 'f', -1, 64),
			string(responses),
			hasPhoto,
		}
		if err := writer.Write(row); err != nil {
			return fmt.Errorf("failed to write CSV row: %w", err)
		}
	}

	writer.Flush()
	return writer.Error()
}
