// Package history persists a compact summary of each analysis run as
// append-only JSON lines in a local file, so speakers can track their
// delivery scores across practice sessions without any database.
package history

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/MrWong99/cadenza/internal/analysis"
)

// Entry is one practice session summary written to the file store. It keeps
// the headline numbers only; the full report is printed to stdout at analysis
// time and not retained.
type Entry struct {
	Timestamp time.Time `json:"timestamp"`

	// Audio is the path of the analysed recording.
	Audio string `json:"audio"`

	// Overall is the weighted rubric score in [1, 5].
	Overall float64 `json:"overall"`

	// Bands maps each rubric category name to its 1..5 band.
	Bands map[string]int `json:"bands"`

	WPM         float64 `json:"wpm"`
	FillerRatio float64 `json:"filler_ratio"`
	PauseRatio  float64 `json:"pause_ratio"`

	// Degraded is true when the run carried warnings or a coach error.
	Degraded bool `json:"degraded,omitempty"`
}

// FileStore persists session summaries as JSON lines in a local file.
// Thread-safe for concurrent use.
type FileStore struct {
	mu   sync.Mutex
	path string
}

// NewFileStore creates a FileStore that writes to the given path.
// The file is created on the first append.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Append summarises report and appends it to the file.
func (s *FileStore) Append(report *analysis.Report) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	entry := Entry{
		Timestamp:   time.Now().UTC(),
		Audio:       report.Audio,
		Overall:     report.Rubric.Overall,
		Bands:       make(map[string]int, len(report.Rubric.Categories)),
		WPM:         report.Metrics.WPM,
		FillerRatio: report.Metrics.FillerRatio,
		PauseRatio:  report.Metrics.PauseRatio,
		Degraded:    len(report.Warnings) > 0 || report.CoachError != "",
	}
	for _, c := range report.Rubric.Categories {
		entry.Bands[c.Name] = c.Score
	}

	data, err := json.Marshal(entry)
	if err != nil {
		return fmt.Errorf("history: marshal: %w", err)
	}
	data = append(data, '\n')

	f, err := os.OpenFile(s.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0o644)
	if err != nil {
		return fmt.Errorf("history: open file: %w", err)
	}
	defer f.Close()

	if _, err := f.Write(data); err != nil {
		return fmt.Errorf("history: write: %w", err)
	}
	return nil
}

// List reads back all stored entries in file order. A missing file is an
// empty history, not an error. Malformed lines are skipped so one corrupt
// write cannot hide the rest of the history.
func (s *FileStore) List() ([]Entry, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	f, err := os.Open(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, nil
		}
		return nil, fmt.Errorf("history: open file: %w", err)
	}
	defer f.Close()

	var entries []Entry
	sc := bufio.NewScanner(f)
	for sc.Scan() {
		var e Entry
		if err := json.Unmarshal(sc.Bytes(), &e); err != nil {
			continue
		}
		entries = append(entries, e)
	}
	if err := sc.Err(); err != nil {
		return nil, fmt.Errorf("history: read: %w", err)
	}
	return entries, nil
}
