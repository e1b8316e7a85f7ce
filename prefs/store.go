// Copyright 2025 Poiesic Systems
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.


// Package prefs persists small backend-neutral key/value state: the selected
// backend mode and root, per-date sheet autosaves, the snapshot list, the
// session-scoped working backup, and display preferences.
//
// Every value is stored as JSON under a string key in a single state file.
// Writes go through a temp file plus rename so a crash never leaves a
// half-written state file behind. Unparseable values are treated as absent
// rather than surfaced as errors; a corrupt state file resets to empty.
package prefs

import (
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

// Store is a file-backed key/value store for mutable application state.
// Safe for concurrent use.
type Store struct {
	mu     sync.Mutex
	path   string
	data   map[string]json.RawMessage
	logger *slog.Logger
}

// Open loads the state file at path, creating parent directories as needed.
// A missing file yields an empty store; a corrupt file is logged and reset.
func Open(path string) (*Store, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, fmt.Errorf("prefs: create state dir: %w", err)
	}
	s := &Store{
		path:   path,
		data:   make(map[string]json.RawMessage),
		logger: slog.Default(),
	}
	raw, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("prefs: read state file: %w", err)
	}
	if err := json.Unmarshal(raw, &s.data); err != nil {
		s.logger.Warn("prefs: corrupt state file, resetting", "path", path, "error", err)
		s.data = make(map[string]json.RawMessage)
	}
	return s, nil
}

// Get unmarshals the value stored under key into v.
// Returns false when the key is absent or its value cannot be parsed.
func (s *Store) Get(key string, v any) bool {
	s.mu.Lock()
	raw, ok := s.data[key]
	s.mu.Unlock()
	if !ok {
		return false
	}
	if err := json.Unmarshal(raw, v); err != nil {
		s.logger.Warn("prefs: skipping corrupt value", "key", key, "error", err)
		return false
	}
	return true
}

// Set stores v under key and persists the state file.
func (s *Store) Set(key string, v any) error {
	raw, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("prefs: marshal %s: %w", key, err)
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[key] = raw
	return s.flushLocked()
}

// Delete removes key and persists the state file. Deleting an absent key is
// a no-op.
func (s *Store) Delete(key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.data[key]; !ok {
		return nil
	}
	delete(s.data, key)
	return s.flushLocked()
}

// Keys returns all keys with the given prefix, sorted.
func (s *Store) Keys(prefix string) []string {
	s.mu.Lock()
	defer s.mu.Unlock()
	var keys []string
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			keys = append(keys, k)
		}
	}
	sort.Strings(keys)
	return keys
}

// ClearPrefix removes every key with the given prefix and persists once.
func (s *Store) ClearPrefix(prefix string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	changed := false
	for k := range s.data {
		if strings.HasPrefix(k, prefix) {
			delete(s.data, k)
			changed = true
		}
	}
	if !changed {
		return nil
	}
	return s.flushLocked()
}

// Path returns the location of the state file.
func (s *Store) Path() string {
	return s.path
}

func (s *Store) flushLocked() error {
	raw, err := json.MarshalIndent(s.data, "", "  ")
	if err != nil {
		return fmt.Errorf("prefs: marshal state: %w", err)
	}
	tmp := s.path + ".tmp"
	if err := os.WriteFile(tmp, raw, 0o644); err != nil {
		return fmt.Errorf("prefs: write state file: %w", err)
	}
	if err := os.Rename(tmp, s.path); err != nil {
		return fmt.Errorf("prefs: replace state file: %w", err)
	}
	return nil
}
