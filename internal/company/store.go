package company

import (
	"encoding/json"
	"os"
	"path/filepath"
	"sync"

	"go.uber.org/zap"
)

// Store holds the company-info singleton. The local settings file is
// the source of truth across restarts; the durable bill store is never
// involved. A missing or unreadable file falls back to DefaultInfo.
type Store struct {
	path string
	log  *zap.Logger

	mu   sync.RWMutex
	info Info
}

func NewStore(path string, log *zap.Logger) *Store {
	s := &Store{
		path: path,
		log:  log.Named("company.store"),
		info: DefaultInfo,
	}
	s.loadFromDisk()
	return s
}

// Get returns the current company-info snapshot.
func (s *Store) Get() Info {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.info
}

// Update replaces the record wholesale and persists it immediately.
// Callers supply every field; there is no partial merge. A disk write
// failure keeps the in-memory value and is logged, not surfaced.
func (s *Store) Update(info Info) error {
	if err := info.Validate(); err != nil {
		return err
	}

	s.mu.Lock()
	s.info = info
	s.mu.Unlock()

	s.saveToDisk(info)
	return nil
}

func (s *Store) loadFromDisk() {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if !os.IsNotExist(err) {
			s.log.Warn("company info read failed, using defaults", zap.Error(err))
		}
		return
	}

	var saved Info
	if err := json.Unmarshal(data, &saved); err != nil {
		s.log.Warn("company info file corrupt, using defaults", zap.Error(err))
		return
	}
	s.info = saved
}

func (s *Store) saveToDisk(info Info) {
	data, err := json.MarshalIndent(info, "", "  ")
	if err != nil {
		s.log.Warn("company info encode failed", zap.Error(err))
		return
	}
	if err := os.MkdirAll(filepath.Dir(s.path), 0o755); err != nil {
		s.log.Warn("company info dir create failed", zap.Error(err))
		return
	}
	if err := os.WriteFile(s.path, data, 0o644); err != nil {
		s.log.Warn("company info write failed", zap.Error(err))
	}
}
