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

import "errors"

// Domain validation errors
var (
	// ErrInvalidItem indicates an Item failed validation.
	ErrInvalidItem = errors.New("invalid item")

	// ErrEmptyClient indicates the Client field is empty.
	ErrEmptyClient = errors.New("client cannot be empty")

	// ErrNoImages indicates an item was submitted without any images.
	ErrNoImages = errors.New("item has no images")

	// ErrInvalidTimestamp indicates a creation timestamp is missing or in the future.
	ErrInvalidTimestamp = errors.New("invalid creation timestamp")

	// ErrInvalidMode indicates an unknown backend mode value.
	ErrInvalidMode = errors.New("invalid backend mode")

	// ErrInvalidSnapshot indicates a Snapshot failed validation.
	ErrInvalidSnapshot = errors.New("invalid snapshot")

	// ErrEmptySnapshotName indicates the snapshot Name field is empty.
	ErrEmptySnapshotName = errors.New("snapshot name cannot be empty")
)
