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


// Package s3remote implements the storage backend over an S3-compatible
// object store. Each item maps to one record object plus one content object
// per image, with an optional downscaled preview object served first when
// listing:
//
//	records/<itemID>.json
//	photos/<itemID>/<imageID>.<ext>
//	previews/<itemID>/<imageID>.jpg
package s3remote

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"log/slog"
	"sort"
	"sync"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/store"
)

const (
	recordPrefix  = "records/"
	photoPrefix   = "photos/"
	previewPrefix = "previews/"

	defaultListingCap = 200
	defaultPoolSize   = 4
)

// PreviewFunc produces a downscaled JPEG preview from an original blob.
// Wired to the hydration layer by the application; nil disables previews.
type PreviewFunc func(blob []byte) ([]byte, error)

// Backend stores items in an S3-compatible bucket.
type Backend struct {
	selector   *store.Selector
	client     S3Client
	pool       *ants.Pool
	preview    PreviewFunc
	listingCap int
	logger     *slog.Logger
}

var _ store.SessionBackend = (*Backend)(nil)

// Option configures a Backend.
type Option func(*Backend)

// WithPreview sets the preview generator used at upload time.
func WithPreview(fn PreviewFunc) Option {
	return func(b *Backend) { b.preview = fn }
}

// WithListingCap caps how many records ListItems fetches (newest first).
func WithListingCap(n int) Option {
	return func(b *Backend) {
		if n > 0 {
			b.listingCap = n
		}
	}
}

// New creates a remote backend. The client should be pre-configured with
// credentials and endpoint; any type satisfying [S3Client] is accepted.
func New(selector *store.Selector, client S3Client, opts ...Option) (*Backend, error) {
	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}
	b := &Backend{
		selector:   selector,
		client:     client,
		pool:       pool,
		listingCap: defaultListingCap,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(b)
	}
	return b, nil
}

// Close releases the upload worker pool.
func (b *Backend) Close() error {
	b.pool.Release()
	return nil
}

// Mode returns core.ModeRemote.
func (b *Backend) Mode() core.BackendMode {
	return core.ModeRemote
}

// IsAvailable reports whether a client is configured.
func (b *Backend) IsAvailable() bool {
	return b.client != nil
}

// SelectRoot probes the bucket with a one-key listing and persists the
// selection. An access denial returns (nil, nil).
func (b *Backend) SelectRoot(ctx context.Context, bucket string) (*store.RootRef, error) {
	if bucket == "" {
		return nil, fmt.Errorf("s3remote: bucket name required")
	}
	if _, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(bucket),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		if isAccessDenied(err) {
			b.logger.Warn("bucket access denied", "bucket", bucket, "error", err)
			return nil, nil
		}
		return nil, fmt.Errorf("s3remote: probe bucket %s: %w", bucket, err)
	}
	ref := &store.RootRef{Mode: core.ModeRemote, Ref: bucket, BaseName: bucket}
	if err := b.selector.Save(ref); err != nil {
		return nil, err
	}
	return ref, nil
}

// GetRoot returns the persisted root without re-validating it.
func (b *Backend) GetRoot() *store.RootRef {
	return b.selector.RootFor(core.ModeRemote)
}

// VerifyRoot re-probes the bucket with a one-key listing. Returns nil when
// the bucket is gone or the session no longer has access.
func (b *Backend) VerifyRoot(ctx context.Context) *store.RootRef {
	ref := b.GetRoot()
	if ref == nil {
		return nil
	}
	if _, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
		Bucket:  aws.String(ref.Ref),
		MaxKeys: aws.Int32(1),
	}); err != nil {
		b.logger.Warn("remote root lost", "bucket", ref.Ref, "error", err)
		return nil
	}
	return ref
}

// ForgetConfiguration erases the locally cached root and mode state, ending
// the session from the application's point of view.
func (b *Backend) ForgetConfiguration(ctx context.Context) error {
	return b.selector.Clear()
}

func recordKey(itemID string) string {
	return recordPrefix + itemID + ".json"
}

func photoKey(itemID string, im core.ImageRef) string {
	return photoPrefix + itemID + "/" + im.ID + "." + store.ExtFromMime(im.Mime)
}

func previewKey(itemID, imageID string) string {
	return previewPrefix + itemID + "/" + imageID + ".jpg"
}

// WriteItem uploads all image blobs in parallel (originals plus previews),
// merges the incoming image list with any existing record, and upserts the
// record object last.
func (b *Backend) WriteItem(ctx context.Context, meta *core.Item, blobs map[string][]byte) error {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return store.ErrRootLost
	}
	bucket := ref.Ref

	var (
		wg       sync.WaitGroup
		mu       sync.Mutex
		firstErr error
	)
	fail := func(err error) {
		mu.Lock()
		if firstErr == nil {
			firstErr = err
		}
		mu.Unlock()
	}

	for _, im := range meta.Images {
		blob, ok := blobs[im.ID]
		if !ok {
			continue
		}
		im := im
		wg.Add(1)
		if err := b.pool.Submit(func() {
			defer wg.Done()
			if err := b.put(ctx, bucket, photoKey(meta.ID, im), im.Mime, blob); err != nil {
				fail(fmt.Errorf("upload image %s: %w", im.ID, err))
				return
			}
			if b.preview == nil {
				return
			}
			preview, err := b.preview(blob)
			if err != nil {
				b.logger.Warn("preview generation failed, keeping original only", "item", meta.ID, "image", im.ID, "error", err)
				return
			}
			if err := b.put(ctx, bucket, previewKey(meta.ID, im.ID), "image/jpeg", preview); err != nil {
				fail(fmt.Errorf("upload preview %s: %w", im.ID, err))
			}
		}); err != nil {
			wg.Done()
			fail(err)
		}
	}
	wg.Wait()
	if firstErr != nil {
		return firstErr
	}

	merged := *meta
	merged.Images = b.mergeImages(ctx, bucket, meta)
	raw, err := store.MarshalMeta(&merged)
	if err != nil {
		return err
	}
	if err := b.put(ctx, bucket, recordKey(meta.ID), "application/json", raw); err != nil {
		return fmt.Errorf("upsert record: %w", err)
	}
	return nil
}

// mergeImages combines the existing record's image list with the incoming
// one, keyed by image ID, incoming entries winning. A fresh item keeps an
// image uploaded earlier for the same ID from being orphaned on re-save.
func (b *Backend) mergeImages(ctx context.Context, bucket string, meta *core.Item) []core.ImageRef {
	existing, err := b.getRecord(ctx, bucket, meta.ID)
	if err != nil || existing == nil {
		return meta.Images
	}
	byID := make(map[string]int, len(existing.Images))
	merged := make([]core.ImageRef, 0, len(existing.Images)+len(meta.Images))
	for _, im := range existing.Images {
		byID[im.ID] = len(merged)
		merged = append(merged, im)
	}
	for _, im := range meta.Images {
		if idx, ok := byID[im.ID]; ok {
			merged[idx] = im
			continue
		}
		byID[im.ID] = len(merged)
		merged = append(merged, im)
	}
	return merged
}

func (b *Backend) put(ctx context.Context, bucket, key, contentType string, data []byte) error {
	_, err := b.client.PutObject(ctx, &s3.PutObjectInput{
		Bucket:      aws.String(bucket),
		Key:         aws.String(key),
		Body:        bytes.NewReader(data),
		ContentType: aws.String(contentType),
	})
	return err
}

func (b *Backend) get(ctx context.Context, bucket, key string) ([]byte, error) {
	out, err := b.client.GetObject(ctx, &s3.GetObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	if err != nil {
		return nil, err
	}
	defer out.Body.Close()
	return io.ReadAll(out.Body)
}

func (b *Backend) getRecord(ctx context.Context, bucket, itemID string) (*core.Item, error) {
	raw, err := b.get(ctx, bucket, recordKey(itemID))
	if err != nil {
		if isNotFound(err) {
			return nil, nil
		}
		return nil, err
	}
	return store.UnmarshalMeta(raw)
}

// ListItems returns a capped page of items, newest first, resolving each
// image blob preferring the downscaled preview with fallback to the
// original. All record objects are read so the cap keeps the newest items
// regardless of key order; blobs are only fetched for the surviving page.
// Corrupt records are skipped.
func (b *Backend) ListItems(ctx context.Context) ([]*store.RawItem, error) {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return nil, store.ErrRootLost
	}
	bucket := ref.Ref

	keys, err := b.listKeys(ctx, bucket, recordPrefix, 0)
	if err != nil {
		return nil, fmt.Errorf("list records: %w", err)
	}

	var metas []*core.Item
	for _, key := range keys {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		raw, err := b.get(ctx, bucket, key)
		if err != nil {
			b.logger.Warn("skipping unreadable record", "key", key, "error", err)
			continue
		}
		meta, err := store.UnmarshalMeta(raw)
		if err != nil {
			b.logger.Warn("skipping corrupt record", "key", key, "error", err)
			continue
		}
		metas = append(metas, meta)
	}

	sort.Slice(metas, func(i, j int) bool {
		return metas[i].CreatedAt > metas[j].CreatedAt
	})
	if len(metas) > b.listingCap {
		metas = metas[:b.listingCap]
	}

	out := make([]*store.RawItem, 0, len(metas))
	for _, meta := range metas {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		blobs := make(map[string][]byte, len(meta.Images))
		for _, im := range meta.Images {
			data, err := b.get(ctx, bucket, previewKey(meta.ID, im.ID))
			if err != nil {
				data, err = b.get(ctx, bucket, photoKey(meta.ID, im))
			}
			if err != nil {
				b.logger.Warn("image blob missing, dropping from item", "item", meta.ID, "image", im.ID)
				continue
			}
			blobs[im.ID] = data
		}
		out = append(out, &store.RawItem{Meta: meta, Blobs: blobs})
	}
	return out, nil
}

// listKeys pages through ListObjectsV2 for a prefix, up to max keys
// (0 = unlimited).
func (b *Backend) listKeys(ctx context.Context, bucket, prefix string, max int) ([]string, error) {
	var (
		keys  []string
		token *string
	)
	for {
		out, err := b.client.ListObjectsV2(ctx, &s3.ListObjectsV2Input{
			Bucket:            aws.String(bucket),
			Prefix:            aws.String(prefix),
			ContinuationToken: token,
		})
		if err != nil {
			return nil, err
		}
		for _, obj := range out.Contents {
			keys = append(keys, aws.ToString(obj.Key))
			if max > 0 && len(keys) >= max {
				return keys, nil
			}
		}
		if out.NextContinuationToken == nil {
			return keys, nil
		}
		token = out.NextContinuationToken
	}
}

// DeleteItem deletes the image objects best-effort, then the record object,
// which is the operation of record.
func (b *Backend) DeleteItem(ctx context.Context, id string, imageIDs []string) error {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return store.ErrRootLost
	}
	bucket := ref.Ref

	// The stored extensions live in the record; fall back to deleting every
	// object under the item's photo prefix when the record is unreadable.
	record, err := b.getRecord(ctx, bucket, id)
	var objectKeys []string
	if err == nil && record != nil {
		for _, im := range record.Images {
			objectKeys = append(objectKeys, photoKey(id, im), previewKey(id, im.ID))
		}
	} else {
		for _, prefix := range []string{photoPrefix + id + "/", previewPrefix + id + "/"} {
			keys, err := b.listKeys(ctx, bucket, prefix, 0)
			if err != nil {
				b.logger.Warn("failed to enumerate image objects", "item", id, "error", err)
				continue
			}
			objectKeys = append(objectKeys, keys...)
		}
	}
	_ = imageIDs // image IDs are recoverable from the record; kept for contract parity

	for _, key := range objectKeys {
		if err := b.delete(ctx, bucket, key); err != nil {
			b.logger.Warn("failed to delete image object", "key", key, "error", err)
		}
	}
	if err := b.delete(ctx, bucket, recordKey(id)); err != nil {
		return fmt.Errorf("delete record %s: %w", id, err)
	}
	return nil
}

func (b *Backend) delete(ctx context.Context, bucket, key string) error {
	_, err := b.client.DeleteObject(ctx, &s3.DeleteObjectInput{
		Bucket: aws.String(bucket),
		Key:    aws.String(key),
	})
	return err
}

// ClearAll deletes every object under the three item prefixes. The bucket
// and the persisted configuration survive.
func (b *Backend) ClearAll(ctx context.Context) error {
	ref := b.VerifyRoot(ctx)
	if ref == nil {
		return store.ErrRootLost
	}
	bucket := ref.Ref
	for _, prefix := range []string{photoPrefix, previewPrefix, recordPrefix} {
		keys, err := b.listKeys(ctx, bucket, prefix, 0)
		if err != nil {
			return fmt.Errorf("clear %s: %w", prefix, err)
		}
		for _, key := range keys {
			if err := ctx.Err(); err != nil {
				return err
			}
			if err := b.delete(ctx, bucket, key); err != nil {
				return fmt.Errorf("clear %s: %w", key, err)
			}
		}
	}
	return nil
}
