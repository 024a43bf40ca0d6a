package replay

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"sync"
	"time"
)

// DefaultStatePath is where progress is kept between runs.
const DefaultStatePath = "~/.autobroker/replay-state.json"

// State tracks progress so an interrupted replay resumes where it stopped.
type State struct {
	StartedAt      time.Time `json:"started_at"`
	LastSavedAt    time.Time `json:"last_saved_at"`
	FilesProcessed []string  `json:"files_processed"`
	LeadsBuilt     int       `json:"leads_built"`
	LeadsDelivered int       `json:"leads_delivered"`
	Errors         []string  `json:"errors"`

	mu   sync.Mutex
	path string
}

// LoadState reads the state file at path, or starts a fresh one when it
// does not exist.
func LoadState(path string) (*State, error) {
	p := expandHome(path)

	data, err := os.ReadFile(p)
	if err != nil {
		if os.IsNotExist(err) {
			return &State{StartedAt: time.Now().UTC(), path: p}, nil
		}
		return nil, fmt.Errorf("read state: %w", err)
	}

	var s State
	if err := json.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("parse state: %w", err)
	}
	s.path = p
	return &s, nil
}

// Save writes the state to disk.
func (s *State) Save() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.LastSavedAt = time.Now().UTC()
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		return fmt.Errorf("mkdir: %w", err)
	}
	data, err := json.MarshalIndent(s, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}
	return os.WriteFile(s.path, data, 0o644)
}

func (s *State) IsProcessed(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return slices.Contains(s.FilesProcessed, path)
}

// MarkProcessed records a finished file and its outcome.
func (s *State) MarkProcessed(path string, delivered bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.FilesProcessed = append(s.FilesProcessed, path)
	s.LeadsBuilt++
	if delivered {
		s.LeadsDelivered++
	}
}

func (s *State) AddError(msg string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Errors = append(s.Errors, msg)
}

func expandHome(path string) string {
	if len(path) > 1 && path[0] == '~' && path[1] == '/' {
		home, err := os.UserHomeDir()
		if err != nil {
			return path
		}
		return filepath.Join(home, path[2:])
	}
	return path
}
