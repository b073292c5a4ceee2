package state

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"
)

// FileStore keeps the alert state in a single JSON document.
type FileStore struct {
	path   string
	logger zerolog.Logger
}

// NewFileStore builds a store backed by the given path.
func NewFileStore(path string, logger zerolog.Logger) *FileStore {
	return &FileStore{
		path:   path,
		logger: logger.With().Str("component", "state_store").Logger(),
	}
}

// Load reads the state file. A missing or corrupt file yields the zero
// State so that a bad record can never permanently suppress alerts.
func (f *FileStore) Load() State {
	data, err := os.ReadFile(f.path)
	if err != nil {
		if !os.IsNotExist(err) {
			f.logger.Warn().Err(err).Str("path", f.path).Msg("state file unreadable; starting empty")
		}
		return State{}
	}

	var st State
	if err := json.Unmarshal(data, &st); err != nil {
		f.logger.Warn().Err(err).Str("path", f.path).Msg("state file corrupt; starting empty")
		return State{}
	}
	return st
}

// Save writes the whole record, using a temp file and rename so a crash
// mid-write cannot leave a truncated document behind.
func (f *FileStore) Save(st State) error {
	dir := filepath.Dir(f.path)
	if dir != "." && dir != "" {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create state dir: %w", err)
		}
	}

	data, err := json.Marshal(st)
	if err != nil {
		return fmt.Errorf("marshal state: %w", err)
	}

	tmp := f.path + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write state: %w", err)
	}
	if err := os.Rename(tmp, f.path); err != nil {
		return fmt.Errorf("replace state: %w", err)
	}
	return nil
}

var _ Store = (*FileStore)(nil)
