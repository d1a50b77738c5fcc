package sqlite

import (
	"fmt"
	"time"
)

// SQLite has no native datetime type; timestamps are stored as UTC
// RFC3339 TEXT so they compare correctly as strings at second
// precision, which is all the staleness cutoff needs.
const timeLayout = "2006-01-02T15:04:05.999999999Z"

func parseRFC3339(s string) (time.Time, error) {
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("splitlog: parse time %q: %w", s, err)
	}
	return t, nil
}
