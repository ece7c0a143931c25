package dropbox

import (
	"testing"
	"time"
)

func TestWindowFromDays(t *testing.T) {
	now := time.Date(2024, 6, 15, 10, 30, 0, 0, time.UTC)

	tests := []struct {
		name     string
		days     int
		wantSpan time.Duration
		wantErr  bool
	}{
		{name: "one day", days: 1, wantSpan: 24 * time.Hour},
		{name: "twenty days", days: 20, wantSpan: 20 * 24 * time.Hour},
		{name: "zero days is an empty window", days: 0, wantSpan: 0},
		{name: "negative days rejected", days: -1, wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, err := WindowFromDays(now, tc.days)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if w.Start.After(w.End) {
				t.Fatalf("start %s after end %s", w.Start, w.End)
			}
			if got := w.End.Sub(w.Start); got != tc.wantSpan {
				t.Fatalf("window spans %s, want %s", got, tc.wantSpan)
			}
			if w.End != now {
				t.Fatalf("window ends at %s, want %s", w.End, now)
			}
		})
	}
}

func TestWindowFromDaysEndsNow(t *testing.T) {
	w, err := WindowFromDays(time.Now(), 20)
	if err != nil {
		t.Fatal(err)
	}
	if skew := time.Since(w.End); skew < 0 || skew > 2*time.Second {
		t.Fatalf("window end drifted from now by %s", skew)
	}
}

func TestParseTimestamps(t *testing.T) {
	tests := []struct {
		name    string
		pair    string
		wantErr bool
	}{
		{name: "valid pair", pair: "2024-01-01T00:00:00Z#2024-01-02T00:00:00Z"},
		{name: "equal endpoints", pair: "2024-01-01T00:00:00Z#2024-01-01T00:00:00Z"},
		{name: "reversed", pair: "2024-01-02T00:00:00Z#2024-01-01T00:00:00Z", wantErr: true},
		{name: "missing separator", pair: "2024-01-01T00:00:00Z", wantErr: true},
		{name: "garbage start", pair: "yesterday#2024-01-02T00:00:00Z", wantErr: true},
		{name: "garbage end", pair: "2024-01-01T00:00:00Z#tomorrow", wantErr: true},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			w, err := ParseTimestamps(tc.pair)
			if tc.wantErr {
				if err == nil {
					t.Fatal("expected an error")
				}
				return
			}
			if err != nil {
				t.Fatal(err)
			}
			if w.Start.After(w.End) {
				t.Fatalf("start %s after end %s", w.Start, w.End)
			}
		})
	}
}
