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

package hydrate

import (
	"context"
	"log/slog"
	"sort"
	"sync"

	"github.com/panjf2000/ants/v2"
	"github.com/poiesic/stride/core"
	"github.com/poiesic/stride/store"
)

const defaultPoolSize = 4

// Image is a display-ready photo: the original's identity plus a thumbnail.
type Image struct {
	ID    string
	Name  string
	Mime  string
	Thumb []byte
}

// Item pairs stored metadata with its hydrated images. Images whose blobs
// are missing or undecodable are dropped, so Images may be shorter than
// Meta.Images.
type Item struct {
	Meta   *core.Item
	Images []Image
}

// Service hydrates raw items concurrently over a bounded worker pool.
type Service struct {
	pool   *ants.Pool
	logger *slog.Logger
}

func NewService() (*Service, error) {
	pool, err := ants.NewPool(defaultPoolSize)
	if err != nil {
		return nil, err
	}
	return &Service{pool: pool, logger: slog.Default()}, nil
}

// Close releases the worker pool.
func (s *Service) Close() error {
	s.pool.Release()
	return nil
}

// Items hydrates raw items into display order, newest first. Thumbnailing
// runs one task per image; a failed image is logged and dropped rather than
// failing the whole listing.
func (s *Service) Items(ctx context.Context, raws []*store.RawItem) ([]Item, error) {
	out := make([]Item, len(raws))
	var wg sync.WaitGroup
	var mu sync.Mutex

	for i, raw := range raws {
		out[i] = Item{Meta: raw.Meta}
		for _, ref := range raw.Meta.Images {
			blob, ok := raw.Blobs[ref.ID]
			if !ok {
				s.logger.Warn("image blob missing, dropping from item", "item", raw.Meta.ID, "image", ref.ID)
				continue
			}
			i, ref, blob := i, ref, blob
			wg.Add(1)
			if err := s.pool.Submit(func() {
				defer wg.Done()
				thumb, err := Thumbnail(blob)
				if err != nil {
					s.logger.Warn("image undecodable, dropping from item", "item", out[i].Meta.ID, "image", ref.ID, "error", err)
					return
				}
				mu.Lock()
				out[i].Images = append(out[i].Images, Image{ID: ref.ID, Name: ref.Name, Mime: ref.Mime, Thumb: thumb})
				mu.Unlock()
			}); err != nil {
				wg.Done()
				return nil, err
			}
		}
	}
	wg.Wait()
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	// Pool completion order is arbitrary; restore the stored image order
	// within each item before sorting items newest first.
	for i := range out {
		order := make(map[string]int, len(out[i].Meta.Images))
		for pos, ref := range out[i].Meta.Images {
			order[ref.ID] = pos
		}
		sort.Slice(out[i].Images, func(a, b int) bool {
			return order[out[i].Images[a].ID] < order[out[i].Images[b].ID]
		})
	}
	sort.SliceStable(out, func(a, b int) bool {
		return out[a].Meta.CreatedAt > out[b].Meta.CreatedAt
	})
	return out, nil
}
