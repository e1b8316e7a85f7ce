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


// Package store defines the uniform storage-backend contract for the photo
// log and the shared pieces the four backend variants build on.
//
// # Backend variants
//
// Four mutually exclusive implementations of the same interface exist, one
// per persisted backend mode:
//
//   - store/dirfs: a user-selected OS directory (one sub-directory per item)
//   - store/appfs: the application-private data directory, same tree shape
//   - store/badgerkv: BadgerDB with meta:<itemID> / blob:<itemID>:<imageID> keys
//   - store/s3remote: an S3-compatible object store (record + content objects)
//
// Exactly one variant is active at a time, selected by the persisted mode;
// switching modes never migrates data between variants.
//
// # Constructor Return Type Pattern
//
// Public constructors return the store.Backend interface to keep callers
// decoupled from any one variant:
//
//	backend := dirfs.New(selector)  // used as a store.Backend
//
// # Root lifecycle
//
// Each backend moves through Unconfigured -> Configured -> Verified ->
// (Working | Lost). Transitions are lazy: every public read/write calls
// VerifyRoot first and aborts before mutating anything when verification
// fails. There is no automatic recovery from Lost; the user must run
// SelectRoot again.
//
// # Durability
//
// WriteItem is atomic only from the caller's perspective: blobs are written
// before metadata, but no transactional rollback exists across the two. A
// failed write may leave partial state behind; this is an accepted
// inconsistency window, surfaced to the user, never silently masked.
package store
