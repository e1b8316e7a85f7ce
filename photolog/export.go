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

package photolog

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/poiesic/stride/core"
)

// KindPhotoLog identifies a photo log export payload. Early exports omitted
// the version field; a missing version reads as 1.
const KindPhotoLog = "photo-log"

const exportVersion = 1

// ExportImage embeds one photo's bytes in an export file.
type ExportImage struct {
	ID   string `json:"id"`
	Name string `json:"name"`
	Mime string `json:"mime"`
	Data []byte `json:"data"`
}

// ExportItem is one logged item with its photos inlined.
type ExportItem struct {
	ID        string        `json:"id"`
	Client    string        `json:"client"`
	Location  string        `json:"location,omitempty"`
	Note      string        `json:"note,omitempty"`
	CreatedAt int64         `json:"createdAt"`
	Images    []ExportImage `json:"images"`
}

// Export is the portable form of the whole photo log.
type Export struct {
	Kind       string       `json:"kind"`
	Version    *int         `json:"version,omitempty"`
	ExportedAt int64        `json:"exportedAt"`
	Items      []ExportItem `json:"items"`
}

// Export captures every stored item, photo bytes included.
func (s *Service) Export(ctx context.Context) (*Export, error) {
	raws, err := s.backend.ListItems(ctx)
	if err != nil {
		return nil, err
	}
	version := exportVersion
	out := &Export{Kind: KindPhotoLog, Version: &version, ExportedAt: core.NowMilli()}
	for _, raw := range raws {
		item := ExportItem{
			ID:        raw.Meta.ID,
			Client:    raw.Meta.Client,
			Location:  raw.Meta.Location,
			Note:      raw.Meta.Note,
			CreatedAt: raw.Meta.CreatedAt,
		}
		for _, ref := range raw.Meta.Images {
			blob, ok := raw.Blobs[ref.ID]
			if !ok {
				continue
			}
			item.Images = append(item.Images, ExportImage{ID: ref.ID, Name: ref.Name, Mime: ref.Mime, Data: blob})
		}
		out.Items = append(out.Items, item)
	}
	return out, nil
}

// ParseExport decodes and validates a photo log export. A missing version
// field is treated as version 1. Nothing is applied here.
func ParseExport(data []byte) (*Export, error) {
	var payload Export
	if err := json.Unmarshal(data, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidImport, err)
	}
	version := exportVersion
	if payload.Version != nil {
		version = *payload.Version
	}
	if payload.Kind != KindPhotoLog || version != exportVersion {
		return nil, fmt.Errorf("%w: kind=%q version=%d", ErrUnrecognizedImport, payload.Kind, version)
	}
	if payload.Items == nil {
		return nil, fmt.Errorf("%w: photo log payload needs items", ErrInvalidImport)
	}
	return &payload, nil
}

// ApplyImport writes every imported item through the active backend and
// refreshes the local cache. All items are validated before the first
// write, so a malformed payload mutates nothing.
func (s *Service) ApplyImport(ctx context.Context, payload *Export) error {
	metas := make([]*core.Item, len(payload.Items))
	blobSets := make([]map[string][]byte, len(payload.Items))
	for i, item := range payload.Items {
		meta := &core.Item{
			ID:        item.ID,
			Client:    item.Client,
			Location:  item.Location,
			Note:      item.Note,
			CreatedAt: item.CreatedAt,
		}
		blobs := make(map[string][]byte, len(item.Images))
		for _, im := range item.Images {
			meta.Images = append(meta.Images, core.ImageRef{ID: im.ID, Name: im.Name, Mime: im.Mime})
			blobs[im.ID] = im.Data
		}
		if err := core.ValidateItem(meta); err != nil {
			return fmt.Errorf("%w: item %s: %v", ErrInvalidImport, item.ID, err)
		}
		metas[i] = meta
		blobSets[i] = blobs
	}

	for i, meta := range metas {
		if err := s.backend.WriteItem(ctx, meta, blobSets[i]); err != nil {
			return fmt.Errorf("import item %s: %w", meta.ID, err)
		}
		s.cacheUpsert(meta)
	}
	return nil
}
