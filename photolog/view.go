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
	"sort"

	"github.com/poiesic/stride/hydrate"
)

const gridColsKey = "photolog.gridCols"

// allowedGridCols is the fixed set of grid layouts the display supports.
var allowedGridCols = map[int]bool{1: true, 2: true, 3: true, 5: true, 6: true}

const defaultGridCols = 2

// Group is one day's worth of items, newest item first.
type Group struct {
	Date  string
	Items []hydrate.Item
}

// Groups buckets hydrated items by local calendar day, groups ordered
// newest day first and items within a group newest first.
func Groups(items []hydrate.Item) []Group {
	byDate := make(map[string][]hydrate.Item)
	for _, it := range items {
		key := it.Meta.DateISO()
		byDate[key] = append(byDate[key], it)
	}

	dates := make([]string, 0, len(byDate))
	for date := range byDate {
		dates = append(dates, date)
	}
	sort.Sort(sort.Reverse(sort.StringSlice(dates)))

	out := make([]Group, 0, len(dates))
	for _, date := range dates {
		group := byDate[date]
		sort.SliceStable(group, func(i, j int) bool {
			return group[i].Meta.CreatedAt > group[j].Meta.CreatedAt
		})
		out = append(out, Group{Date: date, Items: group})
	}
	return out
}

// FilterGroups keeps only the group matching the given date. An empty
// filter passes everything through.
func FilterGroups(groups []Group, date string) []Group {
	if date == "" {
		return groups
	}
	for _, g := range groups {
		if g.Date == date {
			return []Group{g}
		}
	}
	return nil
}

// GridCols returns the stored grid-columns preference, falling back to the
// default when unset or out of the allowed set.
func (s *Service) GridCols() int {
	var n int
	if s.prefs.Get(gridColsKey, &n) && allowedGridCols[n] {
		return n
	}
	return defaultGridCols
}

// SetGridCols stores the preference. Values outside the allowed set are
// ignored.
func (s *Service) SetGridCols(n int) error {
	if !allowedGridCols[n] {
		return nil
	}
	return s.prefs.Set(gridColsKey, n)
}
