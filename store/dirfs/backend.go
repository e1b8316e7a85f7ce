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


// Package dirfs implements the storage backend over a user-selected OS
// directory. Items live as one sub-directory per item ID containing a
// meta.json file and an images sub-directory.
package dirfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/store"
)

// Backend stores items under a directory the user picked explicitly.
type Backend struct {
	selector *store.Selector
	logger   *slog.Logger
}

var _ store.Backend = (*Backend)(nil)

// New creates a directory backend over the given selector.
func New(selector *store.Selector) *Backend {
	return &Backend{selector: selector, logger: slog.Default()}
}

// Mode returns core.ModeDirectory.
func (b *Backend) Mode() core.BackendMode {
	return core.ModeDirectory
}

// IsAvailable reports whether a writable filesystem is present. Always true
// on the platforms this tool targets.
func (b *Backend) IsAvailable() bool {
	return true
}

// SelectRoot resolves dir to an absolute path, creates it if needed, checks
// writability, and persists the selection. A permission denial returns
// (nil, nil): the user must pick another directory.
func (b *Backend) SelectRoot(ctx context.Context, dir string) (*store.RootRef, error) {
	if dir == "" {
		return nil, fmt.Errorf("dirfs: directory path required")
	}
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("dirfs: resolve %s: %w", dir, err)
	}
	if err := os.MkdirAll(abs, 0o755); err != nil {
		if os.IsPermission(err) {
			b.logger.Warn("directory denied", "dir", abs, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("dirfs: create %s: %w", abs, err)
	}
	// Confirm write access before persisting the selection.
	probe := filepath.Join(abs, ".stride-probe")
	if err := os.WriteFile(probe, nil, 0o644); err != nil {
		if os.IsPermission(err) {
			b.logger.Warn("directory not writable", "dir", abs)
			return nil, nil
		}
		return nil, fmt.Errorf("dirfs: probe %s: %w", abs, err)
	}
	os.Remove(probe)

	ref := &store.RootRef{Mode: core.ModeDirectory, Ref: abs, BaseName: filepath.Base(abs)}
	if err := b.selector.Save(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// GetRoot returns the persisted root without re-validating it.
func (b *Backend) GetRoot() *store.RootRef {
	return b.selector.RootFor(core.ModeDirectory)
}

// VerifyRoot re-validates the persisted directory with an enumeration probe.
// Returns nil when the directory is gone or unreadable.
func (b *Backend) VerifyRoot(ctx context.Context) *store.RootRef {
	ref := b.GetRoot()
	if ref == nil {
		return nil
	}
	if err := store.ProbeTree(ref.Ref); err != nil {
		b.logger.Warn("storage root lost", "dir", ref.Ref, "error", err)
		return nil
	}
	return ref
}

// WriteItem persists one item tree: blobs first, then metadata.
func (b *Backend) WriteItem(ctx context.Context, meta *core.Item, blobs map[string][]byte) error {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return store.ErrRootLost
	}
	return store.WriteTree(ctx, ref.Ref, meta, blobs)
}

// ListItems enumerates all items, skipping corrupt entries.
func (b *Backend) ListItems(ctx context.Context) ([]*store.RawItem, error) {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return nil, store.ErrRootLost
	}
	return store.ListTree(ctx, ref.Ref, b.logger)
}

// DeleteItem removes the item directory and its blobs.
func (b *Backend) DeleteItem(ctx context.Context, id string, imageIDs []string) error {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return store.ErrRootLost
	}
	return store.DeleteTree(ctx, ref.Ref, id, imageIDs, b.logger)
}

// ClearAll deletes every item; the selected directory itself survives.
func (b *Backend) ClearAll(ctx context.Context) error {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return store.ErrRootLost
	}
	return store.ClearTree(ctx, ref.Ref)
}
