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


package core

import (
	"fmt"
	"time"
)

// ValidateItem validates an Item according to domain rules.
//
// Validation rules:
//   - ID must not be empty
//   - Client must not be empty
//   - CreatedAt must be positive and not in the future
//   - every ImageRef must carry a non-empty ID
//
// NOT validated:
//   - Location and Note (both optional free text)
//   - blob availability (a dangling reference is tolerated at read time)
func ValidateItem(item *Item) error {
	if item == nil {
		return fmt.Errorf("%w: item is nil", ErrInvalidItem)
	}
	if item.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidItem)
	}
	if item.Client == "" {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrEmptyClient)
	}
	if !IsValidTimestamp(item.CreatedAt) {
		return fmt.Errorf("%w: %w", ErrInvalidItem, ErrInvalidTimestamp)
	}
	for i, im := range item.Images {
		if im.ID == "" {
			return fmt.Errorf("%w: image %d has no id", ErrInvalidItem, i)
		}
	}
	return nil
}

// ValidateMode validates a backend mode value.
func ValidateMode(mode BackendMode) error {
	if !mode.Valid() {
		return fmt.Errorf("%w: %q", ErrInvalidMode, string(mode))
	}
	return nil
}

// ValidateSnapshot validates a Snapshot according to domain rules.
//
// Validation rules:
//   - ID and DateISO must not be empty
//   - Name must not be empty
func ValidateSnapshot(snap *Snapshot) error {
	if snap == nil {
		return fmt.Errorf("%w: snapshot is nil", ErrInvalidSnapshot)
	}
	if snap.ID == "" {
		return fmt.Errorf("%w: missing id", ErrInvalidSnapshot)
	}
	if snap.DateISO == "" {
		return fmt.Errorf("%w: missing date", ErrInvalidSnapshot)
	}
	if snap.Name == "" {
		return fmt.Errorf("%w: %w", ErrInvalidSnapshot, ErrEmptySnapshotName)
	}
	return nil
}

// IsValidTimestamp reports whether ts is a plausible creation time:
// positive epoch milliseconds, not in the future (with a small clock-skew
// allowance).
func IsValidTimestamp(ts int64) bool {
	if ts <= 0 {
		return false
	}
	return ts <= time.Now().Add(time.Minute).UnixMilli()
}
