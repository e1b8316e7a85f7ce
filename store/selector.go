package store

import (
	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/prefs"
)

// Prefs keys for the persisted backend selection.
const (
	prefsRootKey = "backup.root"
)

// Selector owns the persisted (mode, root, base name) triple. Backends borrow
// the root per call after re-verifying it; only the selector writes it.
type Selector struct {
	prefs *prefs.Store
}

// NewSelector creates a Selector over the given prefs store.
func NewSelector(p *prefs.Store) *Selector {
	return &Selector{prefs: p}
}

// Current returns the persisted root reference, or nil when unconfigured.
func (s *Selector) Current() *RootRef {
	var ref RootRef
	if !s.prefs.Get(prefsRootKey, &ref) {
		return nil
	}
	if !ref.Mode.Valid() || ref.Ref == "" {
		return nil
	}
	return &ref
}

// Mode returns the active backend mode, or "" when unconfigured.
func (s *Selector) Mode() core.BackendMode {
	if ref := s.Current(); ref != nil {
		return ref.Mode
	}
	return ""
}

// RootFor returns the persisted root when it belongs to mode, nil otherwise.
// A root saved by another mode is invisible: modes are isolated.
func (s *Selector) RootFor(mode core.BackendMode) *RootRef {
	ref := s.Current()
	if ref == nil || ref.Mode != mode {
		return nil
	}
	return ref
}

// Save persists the selection. Called by a backend's SelectRoot.
func (s *Selector) Save(ref *RootRef) error {
	if err := core.ValidateMode(ref.Mode); err != nil {
		return err
	}
	return s.prefs.Set(prefsRootKey, ref)
}

// Clear erases the persisted selection. Called by ForgetConfiguration.
func (s *Selector) Clear() error {
	return s.prefs.Delete(prefsRootKey)
}
