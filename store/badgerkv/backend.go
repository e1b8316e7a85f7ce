// Package badgerkv implements the storage backend over an embedded BadgerDB
// key-value store. See keys.go for the key layout.
package badgerkv

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"sync"

	"github.com/dgraph-io/badger/v4"
	"github.com/dgraph-io/badger/v4/options"
	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/store"
)

// memoryRef marks an in-memory database root (tests only).
const memoryRef = ":memory:"

// Backend wraps a BadgerDB instance holding the item tree as two key
// families. The database is opened lazily on first verification and kept
// open for the life of the backend.
type Backend struct {
	selector *store.Selector
	logger   *slog.Logger

	mu     sync.Mutex
	db     *badger.DB
	dbPath string
}

var _ store.Backend = (*Backend)(nil)

// badgerLoggerAdapter adapts slog.Logger to badger.Logger interface.
type badgerLoggerAdapter struct {
	logger *slog.Logger
}

var _ badger.Logger = (*badgerLoggerAdapter)(nil)

func (bl *badgerLoggerAdapter) Errorf(msg string, items ...any) {
	bl.logger.Error(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Warningf(msg string, items ...any) {
	bl.logger.Warn(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Infof(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

func (bl *badgerLoggerAdapter) Debugf(msg string, items ...any) {
	bl.logger.Debug(fmt.Sprintf(msg, items...))
}

// New creates a key-value backend over the given selector.
func New(selector *store.Selector) *Backend {
	return &Backend{selector: selector, logger: slog.Default()}
}

// Mode returns core.ModeKeyValue.
func (b *Backend) Mode() core.BackendMode {
	return core.ModeKeyValue
}

// IsAvailable reports whether the embedded database can run here.
func (b *Backend) IsAvailable() bool {
	return true
}

// Close closes the underlying database if it was opened.
func (b *Backend) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db == nil {
		return nil
	}
	err := b.db.Close()
	b.db = nil
	b.dbPath = ""
	return err
}

// SelectRoot opens (creating if needed) a BadgerDB database at dir and
// persists the selection.
func (b *Backend) SelectRoot(ctx context.Context, dir string) (*store.RootRef, error) {
	if dir == "" {
		return nil, fmt.Errorf("badgerkv: database directory required")
	}
	if dir != memoryRef {
		info, err := os.Stat(dir)
		if os.IsNotExist(err) {
			if err := os.MkdirAll(dir, 0o755); err != nil {
				return nil, fmt.Errorf("badgerkv: create %s: %w", dir, err)
			}
		} else if err != nil {
			return nil, err
		} else if !info.IsDir() {
			return nil, fmt.Errorf("badgerkv: %s is not a directory", dir)
		}
	}
	if _, err := b.open(dir); err != nil {
		return nil, err
	}
	ref := &store.RootRef{Mode: core.ModeKeyValue, Ref: dir, BaseName: baseName(dir)}
	if err := b.selector.Save(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

func baseName(dir string) string {
	if dir == memoryRef {
		return "memory"
	}
	for i := len(dir) - 1; i >= 0; i-- {
		if dir[i] == '/' || dir[i] == '\\' {
			return dir[i+1:]
		}
	}
	return dir
}

// GetRoot returns the persisted root without re-validating it.
func (b *Backend) GetRoot() *store.RootRef {
	return b.selector.RootFor(core.ModeKeyValue)
}

// VerifyRoot re-opens the database if needed and runs a one-step iteration
// probe. Returns nil when the database cannot be opened or read.
func (b *Backend) VerifyRoot(ctx context.Context) *store.RootRef {
	ref := b.GetRoot()
	if ref == nil {
		return nil
	}
	db, err := b.open(ref.Ref)
	if err != nil {
		b.logger.Warn("key-value root lost", "dir", ref.Ref, "error", err)
		return nil
	}
	err = db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		iter := tx.NewIterator(opts)
		defer iter.Close()
		iter.Rewind() // one enumeration step proves the store is readable
		return nil
	})
	if err != nil {
		b.logger.Warn("key-value probe failed", "dir", ref.Ref, "error", err)
		return nil
	}
	return ref
}

// open returns the live database handle for dir, opening it on first use.
func (b *Backend) open(dir string) (*badger.DB, error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.db != nil && b.dbPath == dir {
		return b.db, nil
	}
	if b.db != nil {
		b.db.Close()
		b.db = nil
	}

	var opts badger.Options
	if dir == memoryRef {
		opts = badger.DefaultOptions("").WithInMemory(true)
	} else {
		opts = badger.DefaultOptions(dir)
	}
	opts.Logger = &badgerLoggerAdapter{logger: b.logger}
	opts.Compression = options.None

	db, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("badgerkv: open %s: %w", dir, err)
	}
	b.db = db
	b.dbPath = dir
	return db, nil
}

// WriteItem persists one item: each blob in its own transaction first, then
// the metadata record. Large photo sets stay under the transaction size cap
// this way, at the cost of the usual partial-write window.
func (b *Backend) WriteItem(ctx context.Context, meta *core.Item, blobs map[string][]byte) error {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return store.ErrRootLost
	}
	db, err := b.open(ref.Ref)
	if err != nil {
		return err
	}

	for _, im := range meta.Images {
		if err := ctx.Err(); err != nil {
			return err
		}
		blob, ok := blobs[im.ID]
		if !ok {
			continue
		}
		key := makeBlobKey(meta.ID, im.ID)
		if err := db.Update(func(tx *badger.Txn) error {
			return tx.Set(key, blob)
		}); err != nil {
			return fmt.Errorf("badgerkv: write blob %s: %w", im.ID, err)
		}
	}

	value, err := store.EncodeMetaValue(meta)
	if err != nil {
		return err
	}
	if err := db.Update(func(tx *badger.Txn) error {
		return tx.Set(makeMetaKey(meta.ID), value)
	}); err != nil {
		return fmt.Errorf("badgerkv: write metadata: %w", err)
	}
	return nil
}

// ListItems scans the meta: prefix, decoding each record and fetching its
// blobs. Corrupt records are skipped; missing blobs are dropped per image.
func (b *Backend) ListItems(ctx context.Context) ([]*store.RawItem, error) {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return nil, store.ErrRootLost
	}
	db, err := b.open(ref.Ref)
	if err != nil {
		return nil, err
	}

	var out []*store.RawItem
	err = db.View(func(tx *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte(metaPrefix)
		iter := tx.NewIterator(opts)
		defer iter.Close()

		for iter.Rewind(); iter.Valid(); iter.Next() {
			if err := ctx.Err(); err != nil {
				return err
			}
			item := iter.Item()

			var meta *core.Item
			err := item.Value(func(val []byte) error {
				var err error
				meta, err = store.DecodeMetaValue(val)
				return err
			})
			if err != nil {
				b.logger.Warn("skipping corrupt metadata record", "key", itemIDFromMetaKey(item.Key()), "error", err)
				continue
			}

			blobs := make(map[string][]byte, len(meta.Images))
			for _, im := range meta.Images {
				blobItem, err := tx.Get(makeBlobKey(meta.ID, im.ID))
				if err != nil {
					b.logger.Warn("image blob missing, dropping from item", "item", meta.ID, "image", im.ID)
					continue
				}
				data, err := blobItem.ValueCopy(nil)
				if err != nil {
					b.logger.Warn("image blob unreadable, dropping from item", "item", meta.ID, "image", im.ID, "error", err)
					continue
				}
				blobs[im.ID] = data
			}
			out = append(out, &store.RawItem{Meta: meta, Blobs: blobs})
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteItem deletes the blob keys best-effort, then the metadata record.
func (b *Backend) DeleteItem(ctx context.Context, id string, imageIDs []string) error {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return store.ErrRootLost
	}
	db, err := b.open(ref.Ref)
	if err != nil {
		return err
	}

	for _, imageID := range imageIDs {
		key := makeBlobKey(id, imageID)
		if err := db.Update(func(tx *badger.Txn) error {
			return tx.Delete(key)
		}); err != nil {
			b.logger.Warn("failed to delete image blob", "item", id, "image", imageID, "error", err)
		}
	}
	if err := db.Update(func(tx *badger.Txn) error {
		return tx.Delete(makeMetaKey(id))
	}); err != nil {
		return fmt.Errorf("badgerkv: delete item %s: %w", id, err)
	}
	return nil
}

// ClearAll drops both key families. The database and configuration survive.
func (b *Backend) ClearAll(ctx context.Context) error {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return store.ErrRootLost
	}
	db, err := b.open(ref.Ref)
	if err != nil {
		return err
	}
	if err := db.DropPrefix([]byte(blobPrefix), []byte(metaPrefix)); err != nil {
		return fmt.Errorf("badgerkv: clear all: %w", err)
	}
	return nil
}
