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

import "strings"

const (
	maxSuggestions = 8
	suggestScanCap = 24
)

// filterSuggestions ranks pool entries for a query: prefix matches first,
// then substring matches, scanning at most suggestScanCap hits. An empty
// query returns the head of the pool.
func filterSuggestions(pool []string, query string) []string {
	q := strings.ToUpper(strings.TrimSpace(query))
	if q == "" {
		if len(pool) > maxSuggestions {
			return pool[:maxSuggestions]
		}
		return pool
	}
	var starts, contains []string
	for _, v := range pool {
		u := strings.ToUpper(v)
		if strings.HasPrefix(u, q) {
			starts = append(starts, v)
		} else if strings.Contains(u, q) {
			contains = append(contains, v)
		}
		if len(starts)+len(contains) >= suggestScanCap {
			break
		}
	}
	out := append(starts, contains...)
	if len(out) > maxSuggestions {
		out = out[:maxSuggestions]
	}
	return out
}

// distinct keeps the first occurrence of each non-empty value in listing
// order.
func distinct(values []string) []string {
	seen := make(map[string]bool, len(values))
	var out []string
	for _, v := range values {
		if v == "" || seen[v] {
			continue
		}
		seen[v] = true
		out = append(out, v)
	}
	return out
}

// ClientSuggestions suggests client names for a partially typed query,
// drawn from the cached listing.
func (s *Service) ClientSuggestions(query string) []string {
	var pool []string
	for _, it := range s.Cached() {
		pool = append(pool, it.Client)
	}
	return filterSuggestions(distinct(pool), query)
}

// LocationSuggestions suggests locations for a partially typed query.
func (s *Service) LocationSuggestions(query string) []string {
	var pool []string
	for _, it := range s.Cached() {
		pool = append(pool, it.Location)
	}
	return filterSuggestions(distinct(pool), query)
}
