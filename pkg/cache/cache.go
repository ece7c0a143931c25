// Package cache persists retrieved pages under the cache directory, one
// file per page. Files are created once and never rewritten or deleted.
package cache

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/google/uuid"
)

const (
	timeFormat    = "2006-01-02T15:04:05Z"
	lastRunMarker = "last-run"
)

// WriteError wraps a failed page write with its destination path.
type WriteError struct {
	Path string
	Err  error
}

func (e *WriteError) Error() string {
	return fmt.Sprintf("writing %s: %v", e.Path, e.Err)
}

func (e *WriteError) Unwrap() error {
	return e.Err
}

// Writer writes the pages of a single run. Filenames carry the run start
// time plus a per-run id, so two runs started in the same second can't
// collide either.
type Writer struct {
	dir      string
	runStamp string
	runID    string
}

func NewWriter(dir string, started time.Time) (*Writer, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, &WriteError{Path: dir, Err: err}
	}
	return &Writer{
		dir:      dir,
		runStamp: started.UTC().Format("20060102T150405Z"),
		runID:    strings.SplitN(uuid.NewString(), "-", 2)[0],
	}, nil
}

// WritePage persists one page and returns the path written. The file is
// closed on every path; a partial file left by a failed write is removed.
func (w *Writer) WritePage(index int, payload []byte) (string, error) {
	name := fmt.Sprintf("dropbox-events.%s.%s.page-%04d.json", w.runStamp, w.runID, index)
	path := filepath.Join(w.dir, name)

	f, err := os.OpenFile(path, os.O_WRONLY|os.O_CREATE|os.O_EXCL, 0o644)
	if err != nil {
		return "", &WriteError{Path: path, Err: err}
	}
	if _, err := f.Write(payload); err != nil {
		f.Close()
		os.Remove(path)
		return "", &WriteError{Path: path, Err: err}
	}
	if err := f.Close(); err != nil {
		os.Remove(path)
		return "", &WriteError{Path: path, Err: err}
	}
	return path, nil
}

// MarkLastRun records the end of a fully successful run so a later
// fetch --since-last can pick up from there.
func (w *Writer) MarkLastRun(end time.Time) error {
	path := filepath.Join(w.dir, lastRunMarker)
	if err := os.WriteFile(path, []byte(end.UTC().Format(timeFormat)+"\n"), 0o644); err != nil {
		return &WriteError{Path: path, Err: err}
	}
	return nil
}

// LastRun reads the marker left by MarkLastRun. ok is false when no marker
// exists yet.
func LastRun(dir string) (t time.Time, ok bool, err error) {
	raw, err := os.ReadFile(filepath.Join(dir, lastRunMarker))
	if os.IsNotExist(err) {
		return time.Time{}, false, nil
	}
	if err != nil {
		return time.Time{}, false, err
	}
	t, err = time.Parse(timeFormat, strings.TrimSpace(string(raw)))
	if err != nil {
		return time.Time{}, false, fmt.Errorf("unreadable %s marker: %w", lastRunMarker, err)
	}
	return t, true, nil
}
