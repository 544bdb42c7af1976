// Package store persists named journeys as human-diffable JSON files
// under a single directory. One file per journey; writes are atomic
// (temp file plus rename).
package store

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/xkilldash9x/voyage-cli/internal/journey"
	"go.uber.org/zap"
)

// ErrNotFound is returned when a named journey does not exist.
var ErrNotFound = errors.New("journey not found")

var nameRe = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9._-]*$`)

// Entry is one stored journey with its metadata header.
type Entry struct {
	ID      string         `json:"id"`
	Name    string         `json:"name"`
	SavedAt time.Time      `json:"savedAt"`
	Steps   []journey.Step `json:"steps"`
}

// Journey reconstructs the journey value from the entry.
func (e *Entry) Journey() journey.Journey {
	return journey.Journey{Steps: e.Steps}
}

// Store is a flat-file journey repository.
type Store struct {
	dir string
	log *zap.Logger
}

// New opens (creating if needed) a store rooted at dir.
func New(dir string, logger *zap.Logger) (*Store, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("creating store directory %s: %w", dir, err)
	}
	return &Store{dir: dir, log: logger.Named("store")}, nil
}

// Save writes a journey under a name, minting a fresh id. An existing entry
// with the same name is replaced but keeps its id, so updates to a baseline
// stay traceable.
func (s *Store) Save(name string, j journey.Journey) (*Entry, error) {
	if !nameRe.MatchString(name) {
		return nil, fmt.Errorf("invalid journey name %q", name)
	}
	entry := &Entry{
		ID:      uuid.NewString(),
		Name:    name,
		SavedAt: time.Now().UTC(),
		Steps:   j.Steps,
	}
	if prev, err := s.Load(name); err == nil {
		entry.ID = prev.ID
	}

	data, err := json.MarshalIndent(entry, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encoding journey %q: %w", name, err)
	}
	data = append(data, '\n')

	path := s.path(name)
	tmp, err := os.CreateTemp(s.dir, "."+name+"-*")
	if err != nil {
		return nil, fmt.Errorf("writing journey %q: %w", name, err)
	}
	defer os.Remove(tmp.Name())
	if _, err := tmp.Write(data); err != nil {
		tmp.Close()
		return nil, fmt.Errorf("writing journey %q: %w", name, err)
	}
	if err := tmp.Close(); err != nil {
		return nil, fmt.Errorf("writing journey %q: %w", name, err)
	}
	if err := os.Rename(tmp.Name(), path); err != nil {
		return nil, fmt.Errorf("writing journey %q: %w", name, err)
	}

	s.log.Info("journey saved", zap.String("name", name),
		zap.String("id", entry.ID), zap.Int("steps", len(entry.Steps)))
	return entry, nil
}

// Load reads one named journey.
func (s *Store) Load(name string) (*Entry, error) {
	data, err := os.ReadFile(s.path(name))
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return nil, fmt.Errorf("reading journey %q: %w", name, err)
	}
	var entry Entry
	if err := json.Unmarshal(data, &entry); err != nil {
		return nil, fmt.Errorf("decoding journey %q: %w", name, err)
	}
	return &entry, nil
}

// List returns all stored journeys sorted by name.
func (s *Store) List() ([]*Entry, error) {
	matches, err := filepath.Glob(filepath.Join(s.dir, "*.json"))
	if err != nil {
		return nil, fmt.Errorf("listing store: %w", err)
	}
	var entries []*Entry
	for _, path := range matches {
		name := strings.TrimSuffix(filepath.Base(path), ".json")
		entry, err := s.Load(name)
		if err != nil {
			s.log.Warn("skipping unreadable store entry", zap.String("path", path), zap.Error(err))
			continue
		}
		entries = append(entries, entry)
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].Name < entries[j].Name })
	return entries, nil
}

// Delete removes a named journey.
func (s *Store) Delete(name string) error {
	if err := os.Remove(s.path(name)); err != nil {
		if os.IsNotExist(err) {
			return fmt.Errorf("%w: %s", ErrNotFound, name)
		}
		return fmt.Errorf("deleting journey %q: %w", name, err)
	}
	return nil
}

// ScriptPath is where a generated script for a named journey lands.
func (s *Store) ScriptPath(name string) string {
	return filepath.Join(s.dir, name+".spec.ts")
}

func (s *Store) path(name string) string {
	return filepath.Join(s.dir, name+".json")
}
