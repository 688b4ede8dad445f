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

package jack

import "strings"

// cableCategories is the recognised set of Ethernet cable categories, in the
// spelling the Facilities System uses.
var cableCategories = []string{
	"AnalogPhone",
	"Cat3", "Cat3-Shielded", "Cat3-Split",
	"Cat4", "Cat4-Shielded", "Cat4-Split",
	"Cat5", "Cat5-Shielded", "Cat5-Split",
	"Cat5e", "Cat5e-Shielded", "Cat5e-Split",
	"Cat6", "Cat6-Shielded", "Cat6-Split",
	"Cat6A", "Cat6A-Shielded", "Cat6A-Split",
	"Cat7", "Cat7-Shielded",
	"Cat8", "Cat8-Shielded",
	"Coaxial-50", "Coaxial-75",
	"Fiber-FDDI", "Fiber-OM1", "Fiber-OM2", "Fiber-OM3", "Fiber-OM4", "Fiber-OM5",
	"Fiber-Other", "Fiber-SMF",
	"Other",
}

// upperCategories holds cableCategories upper-cased for lookups.
var upperCategories = func() map[string]struct{} {
	m := make(map[string]struct{}, len(cableCategories))
	for _, c := range cableCategories {
		m[strings.ToUpper(c)] = struct{}{}
	}
	return m
}()

// IsCableCategory reports whether s names a recognised category, ignoring case.
func IsCableCategory(s string) bool {
	_, ok := upperCategories[strings.ToUpper(s)]
	return ok
}

// CableCategories returns a copy of the recognised categories.
func CableCategories() []string {
	return append([]string(nil), cableCategories...)
}
