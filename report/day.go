package report

import (
	"fmt"
	"time"
)

// DayFormat is the wire format for report day parameters.
const DayFormat = "2006-01-02"

// DayWindow returns the [midnight, midnight+24h) window containing t, in
// t's location. Quota and report math never rolls events across midnight.
func DayWindow(t time.Time) (start, end time.Time) {
	start = time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
	return start, start.AddDate(0, 0, 1)
}

// ParseDay interprets an optional YYYY-MM-DD parameter in the given
// location. An empty value means today.
func ParseDay(value string, loc *time.Location) (time.Time, error) {
	if value == "" {
		return time.Now().In(loc), nil
	}
	day, err := time.ParseInLocation(DayFormat, value, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q, expected YYYY-MM-DD", value)
	}
	return day, nil
}
