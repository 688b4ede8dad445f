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

package facilities

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campusfm/assetsync/internal/models"
)

// Property is a building record in the Facilities System.
type Property struct {
	Syscode int64  `json:"Syscode"`
	Code    string `json:"Code"`
	Name    string `json:"Name,omitempty"`
}

// Space is a room record in the Facilities System.
type Space struct {
	Syscode     int64  `json:"Syscode"`
	Code        string `json:"Code"`
	PropertyRef int64  `json:"PropertyRef"`
}

// Location is a resolved property reference and an optional space reference.
type Location struct {
	PropertyRef int64
	SpaceRef    *int64
}

// ResolveLocation maps a property code and room number to Facilities System
// references. The property must match exactly once. The space is optional:
// an empty number, or a number that does not match exactly one space of the
// property, leaves SpaceRef nil.
func (c *Client) ResolveLocation(ctx context.Context, propertyCode, spaceNumber string) (Location, error) {
	prop, err := FindOne[Property](ctx, c, ResourceProperty, Where("Code", propertyCode))
	if err != nil {
		return Location{}, fmt.Errorf("resolve property %s: %w", propertyCode, err)
	}

	loc := Location{PropertyRef: prop.Syscode}
	if spaceNumber == "" {
		return loc, nil
	}

	var spaces []Space
	filter := Where("Code", spaceNumber).And("PropertyRef", prop.Syscode)
	if err := c.Find(ctx, ResourceSpace, filter, &spaces); err != nil {
		return Location{}, fmt.Errorf("resolve space %s-%s: %w", propertyCode, spaceNumber, err)
	}
	if len(spaces) == 1 {
		loc.SpaceRef = &spaces[0].Syscode
	} else {
		slog.Debug("space not resolved",
			"property", propertyCode,
			"space", spaceNumber,
			"matches", len(spaces),
		)
	}

	return loc, nil
}

// ListItemGroups returns every item group, used as the asset group reference list.
func (c *Client) ListItemGroups(ctx context.Context) ([]models.AssetGroup, error) {
	var groups []models.AssetGroup
	if err := c.Find(ctx, ResourceItemGroup, nil, &groups); err != nil {
		return nil, fmt.Errorf("list item groups: %w", err)
	}
	return groups, nil
}
