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
	"net/http"
)

// JackAttributes is the network-jack attribute set stored on an asset.
type JackAttributes struct {
	JackID      string
	CableType   string
	LegacyPatch string
}

// AssetInput describes an asset to create or update.
type AssetInput struct {
	Code         string
	Name         string
	PropertyRef  int64
	ParentRef    *int64
	Comments     *string
	ItemGroupRef *int64
	SpaceRef     *int64
	StartDate    *string
	Attributes   *JackAttributes
}

// assetBody is the wire format of the asset endpoint.
type assetBody struct {
	Code             string            `json:"code"`
	Name             string            `json:"name"`
	PropertyRef      int64             `json:"propertyRef"`
	IsSimple         bool              `json:"isSimple"`
	DepartmentRef    int64             `json:"departmentRef"`
	ConstructionDate *string           `json:"constructionDate"`
	ItemGroupRef     *int64            `json:"itemGroupRef"`
	IsArchived       bool              `json:"isArchived"`
	Dossier          *string           `json:"dossier"`
	ParentRef        *int64            `json:"parentRef"`
	SpaceRef         *int64            `json:"spaceRef,omitempty"`
	AttributeSet     int               `json:"attributeSet,omitempty"`
	Attributes       map[string]string `json:"attributes,omitempty"`
}

// body builds the request payload. The attribute block is only sent when
// attributes are given; optional attributes are only sent when non-empty.
func (c *Client) body(in AssetInput) assetBody {
	b := assetBody{
		Code:             in.Code,
		Name:             in.Name,
		PropertyRef:      in.PropertyRef,
		IsSimple:         true,
		DepartmentRef:    c.departmentRef,
		ConstructionDate: in.StartDate,
		ItemGroupRef:     in.ItemGroupRef,
		IsArchived:       false,
		Dossier:          in.Comments,
		ParentRef:        in.ParentRef,
		SpaceRef:         in.SpaceRef,
	}

	if a := in.Attributes; a != nil {
		b.AttributeSet = 1
		b.Attributes = map[string]string{"NSJACKID": a.JackID}
		if a.CableType != "" {
			b.Attributes["NSCABLETYPE"] = a.CableType
		}
		if a.LegacyPatch != "" {
			b.Attributes["NSLEGACYPATCH"] = a.LegacyPatch
		}
	}

	return b
}

// CreateAsset posts a new asset. The request is sent once.
func (c *Client) CreateAsset(ctx context.Context, in AssetInput) error {
	slog.Debug("creating asset", "code", in.Code)
	if err := c.do(ctx, http.MethodPost, assetEndpoint, c.body(in), nil); err != nil {
		return fmt.Errorf("create asset %s: %w", in.Code, err)
	}
	return nil
}

// UpdateAsset replaces the asset with the given id. The request is sent once.
func (c *Client) UpdateAsset(ctx context.Context, id int64, in AssetInput) error {
	slog.Debug("updating asset", "code", in.Code, "id", id)
	if err := c.do(ctx, http.MethodPut, idPath(assetEndpoint, id), c.body(in), nil); err != nil {
		return fmt.Errorf("update asset %s: %w", in.Code, err)
	}
	return nil
}

// assetRef is the part of an asset record needed to address it.
type assetRef struct {
	Syscode int64  `json:"Syscode"`
	Code    string `json:"Code"`
}

// FindAssetID returns the id of the first asset with the given code.
func (c *Client) FindAssetID(ctx context.Context, code string) (int64, bool, error) {
	var found []assetRef
	if err := c.Find(ctx, ResourceAsset, Where("Code", code), &found); err != nil {
		return 0, false, fmt.Errorf("find asset %s: %w", code, err)
	}
	if len(found) == 0 {
		return 0, false, nil
	}
	return found[0].Syscode, true, nil
}

// MEAsset is a mechanical/electrical asset as read and written by the batch
// reconciler.
type MEAsset struct {
	Syscode           int64  `json:"Syscode"`
	Code              string `json:"Code"`
	Name              string `json:"Name"`
	AssetTag          string `json:"AssetTag,omitempty"`
	LegacyDescription string `json:"LegacyDescription"`
	Dossier           string `json:"Dossier"`
	PropertyRef       *int64 `json:"PropertyRef,omitempty"`
	SpaceRef          *int64 `json:"SpaceRef,omitempty"`
}

// FindMEAssets lists the mechanical/electrical assets matching filter.
func (c *Client) FindMEAssets(ctx context.Context, filter Filter) ([]MEAsset, error) {
	var found []MEAsset
	if err := c.Find(ctx, ResourceMEAsset, filter, &found); err != nil {
		return nil, fmt.Errorf("find %s: %w", ResourceMEAsset, err)
	}
	return found, nil
}

// SaveMEAsset writes back a mechanical/electrical asset.
func (c *Client) SaveMEAsset(ctx context.Context, a MEAsset) error {
	if err := c.do(ctx, http.MethodPut, idPath(ResourceMEAsset, a.Syscode), a, nil); err != nil {
		return fmt.Errorf("save %s %d: %w", ResourceMEAsset, a.Syscode, err)
	}
	return nil
}
