package risk

import (
	"encoding/json"
	"fmt"
	"os"

	"go.uber.org/zap"
)

// Store persists the risk state.
type Store interface {
	// Load reads the persisted state. A missing file means fresh state,
	// all counters zero.
	Load() (*State, error)
	// Save overwrites the persisted state with the given snapshot.
	Save(state *State) error
}

// FileStore persists the state as one JSON file. Every save writes the
// whole state to a temp file and renames it into place, so a crash
// mid-write never leaves a torn file behind.
type FileStore struct {
	path   string
	logger *zap.Logger
}

// NewFileStore creates a file-backed store at the given path.
func NewFileStore(path string, logger *zap.Logger) (*FileStore, error) {
	if path == "" {
		return nil, fmt.Errorf("state file path cannot be empty")
	}

	if logger == nil {
		return nil, fmt.Errorf("logger cannot be nil")
	}

	return &FileStore{
		path:   path,
		logger: logger,
	}, nil
}

// Load reads the state file. Absent or unreadable files yield a fresh
// state rather than an error, so a corrupted file never blocks startup.
func (fs *FileStore) Load() (*State, error) {
	data, err := os.ReadFile(fs.path)
	if err != nil {
		if os.IsNotExist(err) {
			fs.logger.Info("risk-state-file-absent-starting-fresh", zap.String("path", fs.path))
			return NewState(), nil
		}

		return nil, fmt.Errorf("read state file: %w", err)
	}

	state := NewState()

	err = json.Unmarshal(data, state)
	if err != nil {
		fs.logger.Warn("risk-state-file-corrupt-starting-fresh",
			zap.String("path", fs.path),
			zap.Error(err))
		return NewState(), nil
	}

	if state.MarketExposures == nil {
		state.MarketExposures = make(map[string]float64)
	}

	return state, nil
}

// Save writes the whole state atomically.
func (fs *FileStore) Save(state *State) error {
	data, err := json.MarshalIndent(state, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmpPath := fs.path + ".tmp"

	err = os.WriteFile(tmpPath, data, 0o600)
	if err != nil {
		return fmt.Errorf("write temp state file: %w", err)
	}

	err = os.Rename(tmpPath, fs.path)
	if err != nil {
		return fmt.Errorf("rename state file: %w", err)
	}

	return nil
}
