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

// Package sheet implements the daily parcel tracking sheet: an in-memory
// row collection with debounced autosave, named snapshots, courier totals,
// and versioned JSON import/export. All persistence goes through the
// application's local preference store, independent of the photo backends.
package sheet

import (
	"log/slog"
	"sort"
	"sync"
	"time"

	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/prefs"
)

const (
	autosavePrefix = "sheet.autosave."
	sessionKey     = "sheet.session"
	snapshotsKey   = "sheet.snapshots"

	// Rapid edits coalesce into one write per window.
	debounceWindow = 250 * time.Millisecond
)

// sessionBackup is the working copy persisted alongside the per-date
// autosave. It is restored on startup when it matches the current date.
type sessionBackup struct {
	DateISO    string     `json:"dateISO"`
	Rows       []core.Row `json:"rows"`
	SnapshotID *string    `json:"snapshotId,omitempty"`
}

// Editor holds the sheet state for one date at a time.
type Editor struct {
	mu     sync.Mutex
	prefs  *prefs.Store
	logger *slog.Logger

	dateISO    string
	rows       []core.Row
	snapshotID *string

	timer *time.Timer
	dirty bool
}

// NewEditor opens the sheet for the given date. A session backup for the
// same date takes precedence over the date's autosave, so work interrupted
// mid-debounce is recovered.
func NewEditor(p *prefs.Store, dateISO string) *Editor {
	e := &Editor{prefs: p, logger: slog.Default(), dateISO: dateISO}

	var backup sessionBackup
	if p.Get(sessionKey, &backup) && backup.DateISO == dateISO {
		e.rows = backup.Rows
		e.snapshotID = backup.SnapshotID
		return e
	}
	p.Get(autosavePrefix+dateISO, &e.rows)
	return e
}

// Date returns the ISO date the editor is open on.
func (e *Editor) Date() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.dateISO
}

// Rows returns a copy of the current row collection.
func (e *Editor) Rows() []core.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	out := make([]core.Row, len(e.rows))
	copy(out, e.rows)
	return out
}

// CurrentSnapshotID returns the id of the snapshot the sheet is associated
// with, or nil when the sheet is unsaved scratch work.
func (e *Editor) CurrentSnapshotID() *string {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.snapshotID
}

// OpenDate switches the editor to another date, flushing the current one
// first. The snapshot association does not carry across dates.
func (e *Editor) OpenDate(dateISO string) error {
	if err := e.Flush(); err != nil {
		return err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.dateISO = dateISO
	e.rows = nil
	e.snapshotID = nil
	e.prefs.Get(autosavePrefix+dateISO, &e.rows)
	return nil
}

// AddRow appends an empty row and returns it.
func (e *Editor) AddRow() core.Row {
	e.mu.Lock()
	defer e.mu.Unlock()
	row := core.Row{ID: core.NewID()}
	e.rows = append(e.rows, row)
	e.scheduleSaveLocked()
	return row
}

// UpdateRow replaces the row with the matching id.
func (e *Editor) UpdateRow(row core.Row) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.rows {
		if e.rows[i].ID == row.ID {
			e.rows[i] = row
			e.scheduleSaveLocked()
			return nil
		}
	}
	return ErrUnknownRow
}

// RemoveRow deletes the row with the matching id.
func (e *Editor) RemoveRow(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := range e.rows {
		if e.rows[i].ID == id {
			e.rows = append(e.rows[:i], e.rows[i+1:]...)
			e.scheduleSaveLocked()
			return nil
		}
	}
	return ErrUnknownRow
}

// SetRows replaces the whole row collection.
func (e *Editor) SetRows(rows []core.Row) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.rows = make([]core.Row, len(rows))
	copy(e.rows, rows)
	e.scheduleSaveLocked()
}

// scheduleSaveLocked arms the debounce timer. Must be called with e.mu held.
func (e *Editor) scheduleSaveLocked() {
	e.dirty = true
	if e.timer != nil {
		e.timer.Stop()
	}
	e.timer = time.AfterFunc(debounceWindow, func() {
		e.mu.Lock()
		defer e.mu.Unlock()
		if err := e.saveLocked(); err != nil {
			e.logger.Error("sheet autosave failed", "date", e.dateISO, "error", err)
		}
	})
}

// saveLocked persists the autosave for the current date plus the session
// backup. Must be called with e.mu held.
func (e *Editor) saveLocked() error {
	if err := e.prefs.Set(autosavePrefix+e.dateISO, e.rows); err != nil {
		return err
	}
	if err := e.prefs.Set(sessionKey, sessionBackup{
		DateISO:    e.dateISO,
		Rows:       e.rows,
		SnapshotID: e.snapshotID,
	}); err != nil {
		return err
	}
	e.dirty = false
	return nil
}

// Flush cancels any pending debounce and persists immediately. A date with
// no unsaved edits is left alone so merely opening it never creates an
// autosave entry.
func (e *Editor) Flush() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.timer != nil {
		e.timer.Stop()
		e.timer = nil
	}
	if !e.dirty {
		return nil
	}
	return e.saveLocked()
}

// Close flushes pending state.
func (e *Editor) Close() error {
	return e.Flush()
}

// Snapshots returns the stored snapshot list in saved order.
func (e *Editor) Snapshots() []core.Snapshot {
	var list []core.Snapshot
	e.prefs.Get(snapshotsKey, &list)
	return list
}

// SaveSnapshot captures the current rows. When the sheet is associated with
// an existing snapshot the snapshot is updated in place, otherwise a new
// one is created under the given name and becomes current.
func (e *Editor) SaveSnapshot(name string) (core.Snapshot, error) {
	e.mu.Lock()
	defer e.mu.Unlock()

	list := e.Snapshots()
	rows := make([]core.Row, len(e.rows))
	copy(rows, e.rows)

	if e.snapshotID != nil {
		for i := range list {
			if list[i].ID != *e.snapshotID {
				continue
			}
			list[i].Rows = rows
			list[i].DateISO = e.dateISO
			list[i].SavedAt = core.NowMilli()
			if name != "" {
				list[i].Name = name
			}
			if err := e.prefs.Set(snapshotsKey, list); err != nil {
				return core.Snapshot{}, err
			}
			return list[i], e.saveLocked()
		}
	}

	if name == "" {
		return core.Snapshot{}, core.ErrEmptySnapshotName
	}
	snap := core.Snapshot{
		ID:      core.NewID(),
		DateISO: e.dateISO,
		Name:    name,
		SavedAt: core.NowMilli(),
		Rows:    rows,
	}
	list = append(list, snap)
	if err := e.prefs.Set(snapshotsKey, list); err != nil {
		return core.Snapshot{}, err
	}
	e.snapshotID = &snap.ID
	return snap, e.saveLocked()
}

// RestoreSnapshot replaces the current date and rows with a snapshot's
// contents and marks that snapshot current, so the next save updates it
// instead of creating a duplicate.
func (e *Editor) RestoreSnapshot(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	for _, snap := range e.Snapshots() {
		if snap.ID != id {
			continue
		}
		e.dateISO = snap.DateISO
		e.rows = make([]core.Row, len(snap.Rows))
		copy(e.rows, snap.Rows)
		snapID := snap.ID
		e.snapshotID = &snapID
		return e.saveLocked()
	}
	return ErrUnknownSnapshot
}

// RenameSnapshot changes a snapshot's label. The row data never changes.
func (e *Editor) RenameSnapshot(id, name string) error {
	if name == "" {
		return core.ErrEmptySnapshotName
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	list := e.Snapshots()
	for i := range list {
		if list[i].ID == id {
			list[i].Name = name
			return e.prefs.Set(snapshotsKey, list)
		}
	}
	return ErrUnknownSnapshot
}

// DeleteSnapshot removes a snapshot from the list. Deleting the current
// snapshot detaches the sheet from it.
func (e *Editor) DeleteSnapshot(id string) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	list := e.Snapshots()
	for i := range list {
		if list[i].ID != id {
			continue
		}
		list = append(list[:i], list[i+1:]...)
		if err := e.prefs.Set(snapshotsKey, list); err != nil {
			return err
		}
		if e.snapshotID != nil && *e.snapshotID == id {
			e.snapshotID = nil
			return e.saveLocked()
		}
		return nil
	}
	return ErrUnknownSnapshot
}

// CourierTotal aggregates the current rows for one courier.
type CourierTotal struct {
	Courier string
	Count   int
	Amount  int
	Cost    int
}

// CourierTotals sums the amount and cost expressions of the current rows
// per courier, sorted by courier name. Rows without a courier are grouped
// under the empty name.
func (e *Editor) CourierTotals() []CourierTotal {
	e.mu.Lock()
	defer e.mu.Unlock()

	byCourier := make(map[string]*CourierTotal)
	for _, row := range e.rows {
		t, ok := byCourier[row.Courier]
		if !ok {
			t = &CourierTotal{Courier: row.Courier}
			byCourier[row.Courier] = t
		}
		t.Count++
		t.Amount += EvaluateAmount(row.Amount)
		t.Cost += EvaluateAmount(row.Cost)
	}

	out := make([]CourierTotal, 0, len(byCourier))
	for _, t := range byCourier {
		out = append(out, *t)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Courier < out[j].Courier })
	return out
}
