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

package sheet

import "errors"

var (
	// ErrUnknownSnapshot indicates the referenced snapshot id does not exist.
	ErrUnknownSnapshot = errors.New("unknown snapshot")

	// ErrUnknownRow indicates the referenced row id does not exist.
	ErrUnknownRow = errors.New("unknown row")

	// ErrUnrecognizedImport indicates the payload's kind and version pair is
	// not one this application can read.
	ErrUnrecognizedImport = errors.New("unrecognized or unsupported file format")

	// ErrInvalidImport indicates a recognized payload with a malformed body.
	ErrInvalidImport = errors.New("invalid import payload")
)
