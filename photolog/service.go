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

// Package photolog implements the client photo logbook on top of a storage
// backend: adding photo items with duplicate detection, hydrated listing
// with date grouping, name suggestions, and versioned JSON import/export.
package photolog

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/hydrate"
	"github.com/poiesic/stride/prefs"
	"github.com/poiesic/stride/store"
)

const cacheKey = "photolog.items"

// File is one incoming photo: its original name, declared MIME type, and
// raw bytes.
type File struct {
	Name string
	Mime string
	Data []byte
}

// Service coordinates the photo log against the active backend. The last
// hydrated metadata listing is mirrored into the preference store so
// callers can render something before the backend answers.
type Service struct {
	backend  store.Backend
	hydrator *hydrate.Service
	prefs    *prefs.Store
	logger   *slog.Logger
}

func NewService(backend store.Backend, hydrator *hydrate.Service, p *prefs.Store) *Service {
	return &Service{
		backend:  backend,
		hydrator: hydrator,
		prefs:    p,
		logger:   slog.Default(),
	}
}

// Add stores a new item. Each photo is re-encoded to a bounded JPEG before
// it is written; photos whose content fingerprint duplicates an earlier one
// in the same batch are silently dropped. At least one usable photo is
// required.
func (s *Service) Add(ctx context.Context, client, location, note string, files []File) (*core.Item, error) {
	if client == "" {
		return nil, core.ErrEmptyClient
	}

	item := &core.Item{
		ID:        core.NewID(),
		Client:    client,
		Location:  location,
		Note:      note,
		CreatedAt: core.NowMilli(),
	}

	blobs := make(map[string][]byte, len(files))
	seen := make(map[string]bool, len(files))
	for _, f := range files {
		fp := core.Fingerprint(f.Data)
		if seen[fp] {
			s.logger.Info("skipping duplicate photo", "name", f.Name, "fingerprint", fp)
			continue
		}
		data, err := hydrate.Downscale(f.Data)
		if err != nil {
			return nil, fmt.Errorf("photo %s: %w", f.Name, err)
		}
		seen[fp] = true
		ref := core.ImageRef{ID: core.NewID(), Name: f.Name, Mime: "image/jpeg"}
		item.Images = append(item.Images, ref)
		blobs[ref.ID] = data
	}
	if len(item.Images) == 0 {
		return nil, core.ErrNoImages
	}
	if err := core.ValidateItem(item); err != nil {
		return nil, err
	}

	if err := s.backend.WriteItem(ctx, item, blobs); err != nil {
		return nil, err
	}
	s.cacheUpsert(item)
	return item, nil
}

// List returns the hydrated items, newest first, and refreshes the local
// metadata cache.
func (s *Service) List(ctx context.Context) ([]hydrate.Item, error) {
	raws, err := s.backend.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	items, err := s.hydrator.Items(ctx, raws)
	if err != nil {
		return nil, err
	}

	metas := make([]core.Item, len(items))
	for i, it := range items {
		metas[i] = *it.Meta
	}
	s.cacheReplace(metas)
	return items, nil
}

// Delete removes an item and its photos. The image ids come from the local
// cache when the caller does not know them.
func (s *Service) Delete(ctx context.Context, id string) error {
	var imageIDs []string
	for _, it := range s.Cached() {
		if it.ID == id {
			imageIDs = it.ImageIDs()
			break
		}
	}
	if err := s.backend.DeleteItem(ctx, id, imageIDs); err != nil {
		return err
	}
	s.cacheRemove(id)
	return nil
}

// Clear wipes every stored item from the backend and the local cache.
func (s *Service) Clear(ctx context.Context) error {
	if err := s.backend.ClearAll(ctx); err != nil {
		return err
	}
	return s.prefs.Delete(cacheKey)
}

// SaveAll copies every item from the active backend into the target
// backend, raw blobs included. Used to back the whole log up into a
// directory after working against a local store.
func (s *Service) SaveAll(ctx context.Context, target store.Backend) (int, error) {
	raws, err := s.backend.ListItems(ctx)
	if err != nil {
		return 0, err
	}
	for i, raw := range raws {
		if err := target.WriteItem(ctx, raw.Meta, raw.Blobs); err != nil {
			return i, fmt.Errorf("save item %s: %w", raw.Meta.ID, err)
		}
	}
	return len(raws), nil
}

// Cached returns the last known metadata listing without touching the
// backend. It may be stale.
func (s *Service) Cached() []core.Item {
	var items []core.Item
	s.prefs.Get(cacheKey, &items)
	return items
}

func (s *Service) cacheReplace(items []core.Item) {
	var err error
	if len(items) == 0 {
		err = s.prefs.Delete(cacheKey)
	} else {
		err = s.prefs.Set(cacheKey, items)
	}
	if err != nil {
		s.logger.Warn("failed to update item cache", "error", err)
	}
}

func (s *Service) cacheUpsert(item *core.Item) {
	items := s.Cached()
	for i := range items {
		if items[i].ID == item.ID {
			items[i] = *item
			s.cacheReplace(items)
			return
		}
	}
	// cache mirrors the listing order, newest first
	s.cacheReplace(append([]core.Item{*item}, items...))
}

func (s *Service) cacheRemove(id string) {
	items := s.Cached()
	for i := range items {
		if items[i].ID == id {
			s.cacheReplace(append(items[:i], items[i+1:]...))
			return
		}
	}
}
