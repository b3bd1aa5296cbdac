// internal/daily/daily.go
//
// UTC date keys: puzzle ids, seeds and the next reset time all come from here.
package daily

import (
	"time"
)

const dateLayout = "2006-01-02"

// DateKey returns YYYY-MM-DD in UTC. It doubles as the puzzle id.
func DateKey(t time.Time) string {
	return t.UTC().Format(dateLayout)
}

// ParseDateKey parses a YYYY-MM-DD key as midnight UTC.
func ParseDateKey(key string) (time.Time, error) {
	return time.ParseInLocation(dateLayout, key, time.UTC)
}

// NextReset is the next UTC midnight after t, when a new puzzle starts.
func NextReset(t time.Time) time.Time {
	y, m, d := t.UTC().Date()
	return time.Date(y, m, d+1, 0, 0, 0, 0, time.UTC)
}
