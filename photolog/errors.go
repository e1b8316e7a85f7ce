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

import "errors"

var (
	// ErrUnknownItem indicates the referenced item id is not stored.
	ErrUnknownItem = errors.New("unknown item")

	// ErrUnrecognizedImport indicates the payload's kind and version pair is
	// not a photo log export this application can read.
	ErrUnrecognizedImport = errors.New("unrecognized or unsupported file format")

	// ErrInvalidImport indicates a recognized payload with a malformed body.
	ErrInvalidImport = errors.New("invalid import payload")
)
