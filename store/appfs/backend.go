// Package appfs implements the storage backend over the application-private
// data directory. The tree shape is identical to the dirfs variant, but the
// root is owned by the application rather than picked by the user, so
// selecting it never prompts and cannot be denied once the data directory is
// writable.
package appfs

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/store"
)

const photoDirName = "photolog"

// Backend stores items under <dataDir>/photolog.
type Backend struct {
	selector *store.Selector
	dataDir  string
	logger   *slog.Logger
}

var _ store.Backend = (*Backend)(nil)

// New creates a private-directory backend rooted under dataDir.
func New(selector *store.Selector, dataDir string) *Backend {
	return &Backend{selector: selector, dataDir: dataDir, logger: slog.Default()}
}

// Mode returns core.ModePrivate.
func (b *Backend) Mode() core.BackendMode {
	return core.ModePrivate
}

// IsAvailable reports whether the data directory can be created.
func (b *Backend) IsAvailable() bool {
	if b.dataDir == "" {
		return false
	}
	if err := os.MkdirAll(b.dataDir, 0o755); err != nil {
		return false
	}
	return true
}

// SelectRoot creates the private photo directory and persists the selection.
// The target argument is ignored; the root is fixed by configuration.
func (b *Backend) SelectRoot(ctx context.Context, _ string) (*store.RootRef, error) {
	if b.dataDir == "" {
		return nil, fmt.Errorf("appfs: no data directory configured")
	}
	root := filepath.Join(b.dataDir, photoDirName)
	if err := os.MkdirAll(root, 0o755); err != nil {
		if os.IsPermission(err) {
			b.logger.Warn("private data directory denied", "dir", root)
			return nil, nil
		}
		return nil, fmt.Errorf("appfs: create %s: %w", root, err)
	}
	ref := &store.RootRef{Mode: core.ModePrivate, Ref: root, BaseName: photoDirName}
	if err := b.selector.Save(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// GetRoot returns the persisted root without re-validating it.
func (b *Backend) GetRoot() *store.RootRef {
	return b.selector.RootFor(core.ModePrivate)
}

// VerifyRoot re-validates the private directory with an enumeration probe.
func (b *Backend) VerifyRoot(ctx context.Context) *store.RootRef {
	ref := b.GetRoot()
	if ref == nil {
		return nil
	}
	if err := store.ProbeTree(ref.Ref); err != nil {
		b.logger.Warn("private storage root lost", "dir", ref.Ref, "error", err)
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

// ClearAll deletes every item; the private directory itself survives.
func (b *Backend) ClearAll(ctx context.Context) error {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return store.ErrRootLost
	}
	return store.ClearTree(ctx, ref.Ref)
}
