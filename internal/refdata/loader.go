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

package refdata

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/campusfm/assetsync/internal/directory"
	"github.com/campusfm/assetsync/internal/models"
)

// GroupLister lists the asset groups of the Facilities System.
type GroupLister interface {
	ListItemGroups(ctx context.Context) ([]models.AssetGroup, error)
}

// LoaderConfig holds the settings for a Loader.
type LoaderConfig struct {
	Directory          directory.Fetcher
	Groups             GroupLister
	Cache              Cache // optional
	PropertiesResource string
	SpacesResource     string
}

// Loader assembles a Snapshot, preferring cached lists over live fetches.
type Loader struct {
	cfg LoaderConfig
}

// NewLoader creates a reference data loader.
func NewLoader(cfg LoaderConfig) *Loader {
	return &Loader{cfg: cfg}
}

// Load returns a snapshot built from cached lists where present and live
// data otherwise. Live lists are written back to the cache.
func (l *Loader) Load(ctx context.Context) (*Snapshot, error) {
	props, err := loadList(ctx, l.cfg.Cache, KeyProperties, func(ctx context.Context) ([]models.Property, error) {
		return directory.FetchAllAs[models.Property](ctx, l.cfg.Directory, l.cfg.PropertiesResource)
	})
	if err != nil {
		return nil, err
	}

	spaces, err := loadList(ctx, l.cfg.Cache, KeySpaces, func(ctx context.Context) ([]models.Space, error) {
		return directory.FetchAllAs[models.Space](ctx, l.cfg.Directory, l.cfg.SpacesResource)
	})
	if err != nil {
		return nil, err
	}

	groups, err := loadList(ctx, l.cfg.Cache, KeyAssetGroups, l.cfg.Groups.ListItemGroups)
	if err != nil {
		return nil, err
	}

	snap := NewSnapshot(props, spaces, groups)
	slog.Info("reference data loaded",
		"properties", len(props),
		"spaces", len(spaces),
		"asset_groups", len(groups),
	)
	return snap, nil
}

// Refresh drops the cached lists and loads everything live.
func (l *Loader) Refresh(ctx context.Context) (*Snapshot, error) {
	if l.cfg.Cache != nil {
		for _, key := range []string{KeyProperties, KeySpaces, KeyAssetGroups} {
			if err := l.cfg.Cache.Delete(ctx, key); err != nil {
				return nil, err
			}
		}
	}
	return l.Load(ctx)
}

func loadList[T any](ctx context.Context, cache Cache, key string, fetch func(context.Context) ([]T, error)) ([]T, error) {
	if cache != nil {
		var cached []T
		ok, err := cache.Load(ctx, key, &cached)
		if err != nil {
			return nil, err
		}
		if ok {
			slog.Debug("reference list from cache", "key", key, "count", len(cached))
			return cached, nil
		}
	}

	list, err := fetch(ctx)
	if err != nil {
		return nil, fmt.Errorf("load %s: %w", key, err)
	}

	if cache != nil {
		if err := cache.Store(ctx, key, list); err != nil {
			return nil, err
		}
	}
	return list, nil
}
