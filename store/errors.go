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

import "errors"

var (
	// ErrUnavailable indicates the backend cannot run on this platform or
	// with the current configuration. Surfaced immediately, never retried.
	ErrUnavailable = errors.New("storage backend unavailable")

	// ErrNotConfigured indicates no root has been selected for this mode.
	ErrNotConfigured = errors.New("storage root not configured")

	// ErrRootLost indicates the previously selected root failed
	// re-verification: permission revoked or the root deleted externally.
	// The user must select a root again; there is no automatic recovery.
	ErrRootLost = errors.New("storage root lost")

	// ErrCorruptMeta indicates an item's metadata record could not be parsed.
	// Enumeration skips such items instead of failing the whole listing.
	ErrCorruptMeta = errors.New("corrupt item metadata")

	// ErrWrongMode indicates the persisted mode does not match this backend.
	ErrWrongMode = errors.New("backend mode mismatch")
)
