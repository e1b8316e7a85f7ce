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


package badgerkv

import (
	"context"

	"github.com/poiesic/stride/store"
)

// NewMemoryBackend creates a key-value backend over an in-memory database
// with its root pre-selected. For tests.
// Caller must close the backend when done.
func NewMemoryBackend(selector *store.Selector) (*Backend, error) {
	b := New(selector)
	if _, err := b.SelectRoot(context.Background(), memoryRef); err != nil {
		return nil, err
	}
	return b, nil
}
