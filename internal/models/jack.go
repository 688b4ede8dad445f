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

// Package models defines the data structures shared across assetsync.
package models

// RawJack is a network jack record as received from the Directory API.
// No invariants hold at this layer; see package jack for validation.
type RawJack struct {
	ID          Ref     `json:"id"`
	BuildingRef Ref     `json:"building_ref"`
	Jack        string  `json:"jack"`
	JackID      string  `json:"jack_id"`
	CableType   string  `json:"cable_type,omitempty"`
	SpaceID     *string `json:"space_id"`
	Comments    *string `json:"comments"`
	LegacyPatch *string `json:"legacy_patch"`
	WiringDate  *Date   `json:"wiring_date"`
}

// CanonicalJack is the validated, normalized form of a RawJack that is ready
// to be written to the Facilities System.
type CanonicalJack struct {
	ID          Ref     `json:"id"`
	BuildingRef string  `json:"building_ref"`
	Jack        string  `json:"jack"`
	Comments    *string `json:"comments"`
	LegacyPatch *string `json:"legacy_patch"`
	SpaceID     *string `json:"space_id"`
	CableType   string  `json:"cable_type"`
	WiringDate  *string `json:"wiring_date"`
}

// Property is a building record from the Directory API.
type Property struct {
	ID   Ref    `json:"id"`
	Name string `json:"name,omitempty"`
}

// Space is a room record from the Directory API.
type Space struct {
	PropertyID Ref    `json:"property_id"`
	Number     string `json:"number"`
}

// Code returns the composite "<property_id>-<number>" space code.
func (s Space) Code() string {
	return s.PropertyID.String() + "-" + s.Number
}

// AssetGroup is an item group defined in the Facilities System.
type AssetGroup struct {
	Syscode int64  `json:"Syscode"`
	Code    string `json:"Code"`
	Name    string `json:"Name"`
}
