package session

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/neurax-dev/neurax/internal/dirs"
)

// Store persists session records, one JSON file per host, under the
// runtime root.
type Store struct {
	dir string
}

// NewStore creates a store under runtimeRoot/neurax/sessions.
func NewStore(runtimeRoot string) (*Store, error) {
	dir := filepath.Join(runtimeRoot, dirs.AppName, "sessions")
	if err := os.MkdirAll(dir, 0700); err != nil {
		return nil, fmt.Errorf("failed to create sessions directory: %w", err)
	}

	return &Store{dir: dir}, nil
}

func (s *Store) path(host string) string {
	return filepath.Join(s.dir, host+".json")
}

// Save persists a record, replacing any previous record for the host.
func (s *Store) Save(rec *Record) error {
	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal session: %w", err)
	}

	if err := os.WriteFile(s.path(rec.Host), data, 0600); err != nil {
		return fmt.Errorf("failed to write session file: %w", err)
	}

	return nil
}

// Load reads the record for host.
func (s *Store) Load(host string) (*Record, error) {
	data, err := os.ReadFile(s.path(host))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("session not found: %s", host)
		}
		return nil, fmt.Errorf("failed to read session file: %w", err)
	}

	var rec Record
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to unmarshal session: %w", err)
	}

	return &rec, nil
}

// List returns every readable record, ordered by host.
func (s *Store) List() ([]*Record, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return []*Record{}, nil
		}
		return nil, fmt.Errorf("failed to read sessions directory: %w", err)
	}

	var records []*Record
	for _, entry := range entries {
		if entry.IsDir() || filepath.Ext(entry.Name()) != ".json" {
			continue
		}

		rec, err := s.Load(strings.TrimSuffix(entry.Name(), ".json"))
		if err != nil {
			continue // Skip unreadable records
		}
		records = append(records, rec)
	}

	sort.Slice(records, func(i, j int) bool { return records[i].Host < records[j].Host })
	return records, nil
}

// Delete removes the record for host. A missing record is not an error.
func (s *Store) Delete(host string) error {
	if err := os.Remove(s.path(host)); err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to delete session file: %w", err)
	}

	return nil
}

// Dir returns the record directory.
func (s *Store) Dir() string {
	return s.dir
}
