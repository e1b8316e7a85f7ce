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

package sheet

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/stride/core"
)

const (
	// KindSheet identifies a single-day sheet export payload.
	KindSheet = "sheet-export"
	// KindFull identifies a full-data export payload.
	KindFull = "full-export"

	exportVersion = 1
)

// SheetExport is the portable form of one day's sheet.
type SheetExport struct {
	Kind              string     `json:"kind"`
	Version           int        `json:"version"`
	ExportedAt        int64      `json:"exportedAt"`
	DateISO           string     `json:"dateISO"`
	CurrentSnapshotID *string    `json:"currentSnapshotId"`
	Rows              []core.Row `json:"rows"`
}

// FullExport carries every snapshot and every date-keyed autosave.
type FullExport struct {
	Kind       string                `json:"kind"`
	Version    int                   `json:"version"`
	ExportedAt int64                 `json:"exportedAt"`
	Snapshots  []core.Snapshot       `json:"snapshots"`
	Autosaves  map[string][]core.Row `json:"autosaves"`
}

// Import is the result of parsing an import file; exactly one field is set.
type Import struct {
	Sheet *SheetExport
	Full  *FullExport
}

// ExportSheet captures the current date's sheet.
func (e *Editor) ExportSheet() SheetExport {
	e.mu.Lock()
	defer e.mu.Unlock()
	rows := make([]core.Row, len(e.rows))
	copy(rows, e.rows)
	return SheetExport{
		Kind:              KindSheet,
		Version:           exportVersion,
		ExportedAt:        core.NowMilli(),
		DateISO:           e.dateISO,
		CurrentSnapshotID: e.snapshotID,
		Rows:              rows,
	}
}

// ExportAll captures every snapshot and autosave. The current date's
// in-memory rows are flushed first so the export reflects them.
func (e *Editor) ExportAll() (FullExport, error) {
	if err := e.Flush(); err != nil {
		return FullExport{}, err
	}
	autosaves := make(map[string][]core.Row)
	for _, key := range e.prefs.Keys(autosavePrefix) {
		var rows []core.Row
		if !e.prefs.Get(key, &rows) {
			continue
		}
		autosaves[strings.TrimPrefix(key, autosavePrefix)] = rows
	}
	return FullExport{
		Kind:       KindFull,
		Version:    exportVersion,
		ExportedAt: core.NowMilli(),
		Snapshots:  e.Snapshots(),
		Autosaves:  autosaves,
	}, nil
}

// ParseImport decodes an import file and validates its kind, version, and
// shape. Nothing is applied here; a bad payload fails before any mutation.
func ParseImport(data []byte) (*Import, error) {
	var head struct {
		Kind    string `json:"kind"`
		Version int    `json:"version"`
	}
	if err := json.Unmarshal(data, &head); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}

	switch {
	case head.Kind == KindSheet && head.Version == exportVersion:
		var payload SheetExport
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		if payload.DateISO == "" || payload.Rows == nil {
			return nil, fmt.Errorf("%w: sheet payload needs dateISO and rows", ErrInvalidImport)
		}
		return &Import{Sheet: &payload}, nil

	case head.Kind == KindFull && head.Version == exportVersion:
		var payload FullExport
		if err := json.Unmarshal(data, &payload); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
		}
		if payload.Snapshots == nil || payload.Autosaves == nil {
			return nil, fmt.Errorf("%w: full payload needs snapshots and autosaves", ErrInvalidImport)
		}
		return &Import{Full: &payload}, nil
	}
	return nil, fmt.Errorf("%w: kind=%q version=%d", ErrUnrecognizedImport, head.Kind, head.Version)
}

// ApplySheetImport loads an exported day into the editor, including its
// snapshot association.
func (e *Editor) ApplySheetImport(payload *SheetExport) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dateISO = payload.DateISO
	e.rows = make([]core.Row, len(payload.Rows))
	copy(e.rows, payload.Rows)
	e.snapshotID = payload.CurrentSnapshotID
	return e.saveLocked()
}

// ApplyFullImport overwrites every stored autosave and replaces the
// snapshot list wholesale. Nothing is merged. The editor reloads its
// current date from the imported data afterwards.
func (e *Editor) ApplyFullImport(payload *FullExport) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	if err := e.prefs.ClearPrefix(autosavePrefix); err != nil {
		return err
	}
	for dateISO, rows := range payload.Autosaves {
		if err := e.prefs.Set(autosavePrefix+dateISO, rows); err != nil {
			return err
		}
	}
	if err := e.prefs.Set(snapshotsKey, payload.Snapshots); err != nil {
		return err
	}

	e.rows = nil
	e.snapshotID = nil
	if rows, ok := payload.Autosaves[e.dateISO]; ok {
		e.rows = make([]core.Row, len(rows))
		copy(e.rows, rows)
	}
	// Only the session backup is written here. The stored autosaves must
	// stay exactly the imported map; dates the payload never carried get no
	// autosave entry.
	return e.prefs.Set(sessionKey, sessionBackup{
		DateISO:    e.dateISO,
		Rows:       e.rows,
		SnapshotID: e.snapshotID,
	})
}
