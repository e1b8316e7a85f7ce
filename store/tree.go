package store

import (
	"context"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"

	"github.com/poiesic/stride/core"
)

// Directory-tree layout shared by the dirfs and appfs variants:
//
//	<root>/items/<itemID>/meta.json
//	<root>/items/<itemID>/images/<imageID>.<ext>
const (
	itemsDirName  = "items"
	imagesDirName = "images"
	metaFileName  = "meta.json"
)

// ItemsDir returns the items directory under root.
func ItemsDir(root string) string {
	return filepath.Join(root, itemsDirName)
}

// ProbeTree performs the cheap existence probe used by VerifyRoot: the root
// must be a readable directory, confirmed by one enumeration step rather than
// a bare stat, because the directory can disappear or lose permission behind
// a cached path.
func ProbeTree(root string) error {
	info, err := os.Stat(root)
	if err != nil {
		return err
	}
	if !info.IsDir() {
		return fmt.Errorf("%s is not a directory", root)
	}
	dir, err := os.Open(root)
	if err != nil {
		return err
	}
	defer dir.Close()
	// An empty directory reads as io.EOF, which still proves access.
	if _, err := dir.ReadDir(1); err != nil && !errors.Is(err, io.EOF) {
		return err
	}
	return nil
}

// WriteTree persists one item under root: all image blobs first, then
// meta.json. A failure leaves partial state behind; the caller surfaces it.
func WriteTree(ctx context.Context, root string, meta *core.Item, blobs map[string][]byte) error {
	itemDir := filepath.Join(ItemsDir(root), meta.ID)
	imgDir := filepath.Join(itemDir, imagesDirName)
	if err := os.MkdirAll(imgDir, 0o755); err != nil {
		return fmt.Errorf("create item directory: %w", err)
	}

	for _, im := range meta.Images {
		if err := ctx.Err(); err != nil {
			return err
		}
		blob, ok := blobs[im.ID]
		if !ok {
			continue
		}
		name := im.ID + "." + ExtFromMime(im.Mime)
		if err := os.WriteFile(filepath.Join(imgDir, name), blob, 0o644); err != nil {
			return fmt.Errorf("write image %s: %w", im.ID, err)
		}
	}

	raw, err := MarshalMeta(meta)
	if err != nil {
		return err
	}
	if err := os.WriteFile(filepath.Join(itemDir, metaFileName), raw, 0o644); err != nil {
		return fmt.Errorf("write metadata: %w", err)
	}
	return nil
}

// ListTree enumerates all items under root. Items with corrupt or missing
// metadata are skipped with a warning; images whose blob file is missing are
// simply absent from the returned Blobs map.
func ListTree(ctx context.Context, root string, logger *slog.Logger) ([]*RawItem, error) {
	entries, err := os.ReadDir(ItemsDir(root))
	if errors.Is(err, fs.ErrNotExist) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("list items: %w", err)
	}

	var out []*RawItem
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		if !entry.IsDir() {
			continue
		}
		itemDir := filepath.Join(ItemsDir(root), entry.Name())
		raw, err := os.ReadFile(filepath.Join(itemDir, metaFileName))
		if err != nil {
			logger.Warn("skipping item without readable metadata", "item", entry.Name(), "error", err)
			continue
		}
		meta, err := UnmarshalMeta(raw)
		if err != nil {
			logger.Warn("skipping item with corrupt metadata", "item", entry.Name(), "error", err)
			continue
		}

		blobs := make(map[string][]byte, len(meta.Images))
		for _, im := range meta.Images {
			name := im.ID + "." + ExtFromMime(im.Mime)
			data, err := os.ReadFile(filepath.Join(itemDir, imagesDirName, name))
			if err != nil {
				logger.Warn("image blob missing, dropping from item", "item", meta.ID, "image", im.ID)
				continue
			}
			blobs[im.ID] = data
		}
		out = append(out, &RawItem{Meta: meta, Blobs: blobs})
	}
	return out, nil
}

// DeleteTree removes one item: image files best-effort, then the item
// directory, whose removal is the operation of record.
func DeleteTree(ctx context.Context, root, id string, imageIDs []string, logger *slog.Logger) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	itemDir := filepath.Join(ItemsDir(root), id)
	imgDir := filepath.Join(itemDir, imagesDirName)
	if entries, err := os.ReadDir(imgDir); err == nil {
		for _, entry := range entries {
			if err := os.Remove(filepath.Join(imgDir, entry.Name())); err != nil {
				logger.Warn("failed to delete image blob", "item", id, "file", entry.Name(), "error", err)
			}
		}
	}
	if err := os.RemoveAll(itemDir); err != nil {
		return fmt.Errorf("delete item %s: %w", id, err)
	}
	return nil
}

// ClearTree deletes every item under root, leaving the root itself intact.
func ClearTree(ctx context.Context, root string) error {
	entries, err := os.ReadDir(ItemsDir(root))
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("clear items: %w", err)
	}
	for _, entry := range entries {
		if err := ctx.Err(); err != nil {
			return err
		}
		if err := os.RemoveAll(filepath.Join(ItemsDir(root), entry.Name())); err != nil {
			return fmt.Errorf("clear item %s: %w", entry.Name(), err)
		}
	}
	return nil
}
