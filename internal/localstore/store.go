package localstore

import (
	"encoding/json"
	"log"
	"os"
	"path/filepath"

	"velora/internal/domain"
)

// Store is the device-scoped cart snapshot: one JSON file per device holding
// the full line collection. It is only written while the session is anonymous.
//
// Failure policy: Load degrades to an empty cart on any read or parse error;
// Save logs and returns. Neither propagates errors to callers.
type Store struct {
	path   string
	logger *log.Logger
}

// New binds a store to <dir>/<deviceID>.json, creating dir if needed.
func New(dir, deviceID string, logger *log.Logger) *Store {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		logger.Printf("localstore: create dir %s: %v", dir, err)
	}
	return &Store{
		path:   filepath.Join(dir, deviceID+".json"),
		logger: logger,
	}
}

// Load reads the persisted snapshot. A missing or corrupt file is treated as
// an empty cart.
func (s *Store) Load() []domain.CartLine {
	raw, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.Printf("localstore: read %s: %v", s.path, err)
		}
		return nil
	}
	var lines []domain.CartLine
	if err := json.Unmarshal(raw, &lines); err != nil {
		s.logger.Printf("localstore: parse %s: %v", s.path, err)
		return nil
	}
	return lines
}

// Save overwrites the snapshot with the full current line collection.
func (s *Store) Save(lines []domain.CartLine) {
	if lines == nil {
		lines = []domain.CartLine{}
	}
	raw, err := json.Marshal(lines)
	if err != nil {
		s.logger.Printf("localstore: encode %s: %v", s.path, err)
		return
	}
	if err := os.WriteFile(s.path, raw, 0o644); err != nil {
		s.logger.Printf("localstore: write %s: %v", s.path, err)
	}
}
