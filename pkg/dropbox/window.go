package dropbox

import (
	"fmt"
	"strings"
	"time"
)

// TimeFormat is the timestamp layout the team_log API expects.
const TimeFormat = "2006-01-02T15:04:05Z"

// FetchWindow is the [Start, End] range of event history requested from the
// API. Start is never after End.
type FetchWindow struct {
	Start time.Time
	End   time.Time
}

// WindowFromDays computes the window covering the last `days` days ending
// at `now`. days == 0 yields an empty window, which the API accepts.
func WindowFromDays(now time.Time, days int) (FetchWindow, error) {
	if days < 0 {
		return FetchWindow{}, fmt.Errorf("days of history must be >= 0, got %d", days)
	}
	end := now.UTC().Truncate(time.Second)
	return FetchWindow{
		Start: end.Add(-time.Duration(days) * 24 * time.Hour),
		End:   end,
	}, nil
}

// ParseTimestamps parses an explicit "<start>#<end>" window pair.
func ParseTimestamps(pair string) (FetchWindow, error) {
	startStr, endStr, found := strings.Cut(pair, "#")
	if !found {
		return FetchWindow{}, fmt.Errorf("timestamps must be <start>#<end>, got %q", pair)
	}
	start, err := time.Parse(TimeFormat, startStr)
	if err != nil {
		return FetchWindow{}, fmt.Errorf("bad start timestamp %q: %w", startStr, err)
	}
	end, err := time.Parse(TimeFormat, endStr)
	if err != nil {
		return FetchWindow{}, fmt.Errorf("bad end timestamp %q: %w", endStr, err)
	}
	if start.After(end) {
		return FetchWindow{}, fmt.Errorf("start %s is after end %s", startStr, endStr)
	}
	return FetchWindow{Start: start, End: end}, nil
}
