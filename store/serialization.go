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


package store

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/poiesic/stride/core"
	"github.com/vmihailenco/msgpack/v5"
)

// MarshalMeta serializes item metadata to the JSON form used by the
// directory-tree variants (the meta.json file).
func MarshalMeta(item *core.Item) ([]byte, error) {
	raw, err := json.MarshalIndent(item, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptMeta, err)
	}
	return raw, nil
}

// UnmarshalMeta deserializes a meta.json payload.
func UnmarshalMeta(data []byte) (*core.Item, error) {
	var item core.Item
	if err := json.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptMeta, err)
	}
	return &item, nil
}

// EncodeMetaValue serializes item metadata to the compact binary form used by
// the key-value variant.
func EncodeMetaValue(item *core.Item) ([]byte, error) {
	raw, err := msgpack.Marshal(item)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptMeta, err)
	}
	return raw, nil
}

// DecodeMetaValue deserializes a key-value metadata record.
func DecodeMetaValue(data []byte) (*core.Item, error) {
	var item core.Item
	if err := msgpack.Unmarshal(data, &item); err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCorruptMeta, err)
	}
	return &item, nil
}

// ExtFromMime maps a MIME type to the file extension used for stored blobs.
// Unknown types fall back to jpg.
func ExtFromMime(mime string) string {
	switch {
	case strings.Contains(mime, "jpeg"):
		return "jpg"
	case strings.Contains(mime, "png"):
		return "png"
	case strings.Contains(mime, "webp"):
		return "webp"
	case strings.Contains(mime, "gif"):
		return "gif"
	}
	return "jpg"
}
