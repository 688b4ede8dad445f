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

package reconcile

import (
	"fmt"

	"github.com/campusfm/assetsync/internal/facilities"
)

// CSV column names.
const (
	ColCode            = "CODE"
	ColBuilding        = "BUILDING_ID"
	ColRoom            = "ROOM"
	ColDescription     = "DESCRIPTION"
	ColAssetTag        = "ASSET_TAG"
	ColEquipNumber     = "EQUIP_NUMBER"
	ColEquipmentNumber = "EQUIPMENT_NUMBER"
	ColConcatenation   = "CONCATENATION"
)

// Variant describes one kind of CSV reconciliation: which columns it needs,
// how a row selects its asset and what it changes.
type Variant struct {
	Name     string
	Required []string
	Filter   func(Row) facilities.Filter
	Apply    func(*facilities.MEAsset, Row)
}

// LegacyDescription matches on code and name and records the legacy
// equipment number.
var LegacyDescription = Variant{
	Name:     "legacy-description",
	Required: []string{ColCode, ColBuilding, ColRoom, ColDescription, ColEquipNumber},
	Filter: func(r Row) facilities.Filter {
		return facilities.Where("Code", r.Get(ColCode)).And("Name", r.Get(ColDescription))
	},
	Apply: func(a *facilities.MEAsset, r Row) {
		a.LegacyDescription = r.Get(ColEquipNumber)
	},
}

// CommonAssets matches on asset tag and code and copies the legacy
// equipment number, description and remark.
var CommonAssets = Variant{
	Name:     "common-assets",
	Required: []string{ColCode, ColBuilding, ColRoom, ColAssetTag, ColEquipmentNumber, ColDescription, ColConcatenation},
	Filter: func(r Row) facilities.Filter {
		return facilities.Where("AssetTag", r.Get(ColAssetTag)).And("Code", r.Get(ColCode))
	},
	Apply: func(a *facilities.MEAsset, r Row) {
		a.LegacyDescription = r.Get(ColEquipmentNumber)
		a.Name = r.Get(ColDescription)
		a.Dossier = r.Get(ColConcatenation)
	},
}

// VariantByName returns the variant with the given name.
func VariantByName(name string) (Variant, error) {
	for _, v := range []Variant{LegacyDescription, CommonAssets} {
		if v.Name == name {
			return v, nil
		}
	}
	return Variant{}, fmt.Errorf("unknown reconcile variant %q (want %q or %q)",
		name, LegacyDescription.Name, CommonAssets.Name)
}
