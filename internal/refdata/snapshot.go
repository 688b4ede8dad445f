// Copyright (c) 2026 John Earle
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

// Package refdata builds and caches the reference snapshot the jack
// validator checks against: known property codes, known space codes and the
// asset groups of the Facilities System.
package refdata

import (
	"github.com/campusfm/assetsync/internal/models"
)

// Snapshot is a read-only view of the reference data. It is safe for
// concurrent use because nothing mutates it after NewSnapshot returns.
type Snapshot struct {
	properties map[string]struct{}
	spaces     map[string]struct{}
	groups     map[string]models.AssetGroup
}

// NewSnapshot indexes the given reference lists. Property codes are the
// property ids as served; space codes are "<property_id>-<number>".
func NewSnapshot(props []models.Property, spaces []models.Space, groups []models.AssetGroup) *Snapshot {
	s := &Snapshot{
		properties: make(map[string]struct{}, len(props)),
		spaces:     make(map[string]struct{}, len(spaces)),
		groups:     make(map[string]models.AssetGroup, len(groups)),
	}
	for _, p := range props {
		s.properties[p.ID.String()] = struct{}{}
	}
	for _, sp := range spaces {
		s.spaces[sp.Code()] = struct{}{}
	}
	for _, g := range groups {
		s.groups[g.Name] = g
	}
	return s
}

// HasProperty reports whether code is a known property code.
func (s *Snapshot) HasProperty(code string) bool {
	_, ok := s.properties[code]
	return ok
}

// HasSpace reports whether code is a known composite space code.
func (s *Snapshot) HasSpace(code string) bool {
	_, ok := s.spaces[code]
	return ok
}

// AssetGroupByName looks up an item group by its display name.
func (s *Snapshot) AssetGroupByName(name string) (models.AssetGroup, bool) {
	g, ok := s.groups[name]
	return g, ok
}

// Counts returns the sizes of the three reference sets.
func (s *Snapshot) Counts() (properties, spaces, groups int) {
	return len(s.properties), len(s.spaces), len(s.groups)
}
