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

package main

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"path/filepath"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"

	"github.com/campusfm/assetsync/internal/config"
	"github.com/campusfm/assetsync/internal/directory"
	"github.com/campusfm/assetsync/internal/facilities"
	"github.com/campusfm/assetsync/internal/queue"
	"github.com/campusfm/assetsync/internal/refdata"
	"github.com/campusfm/assetsync/internal/runstore"
)

// app builds the clients a command needs from the loaded configuration and
// releases them when the command finishes.
type app struct {
	cfg     *config.Config
	closers []func()
}

func (a *app) close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		a.closers[i]()
	}
	a.closers = nil
}

func (a *app) directory(ctx context.Context) *directory.Client {
	d := a.cfg.Directory
	httpClient := directory.NewHTTPClient(ctx, directory.LoginConfig{
		URL:    d.LoginURL(),
		APIKey: d.APIKey,
		Scopes: d.Scopes,
	})
	httpClient.Timeout = a.cfg.HTTPTimeout
	return directory.NewClient(httpClient, d.BaseURL).WithPageSize(d.PageSize)
}

func (a *app) facilities() *facilities.Client {
	return facilities.NewClient(a.facilitiesConfig())
}

func (a *app) facilitiesConfig() facilities.ClientConfig {
	f := a.cfg.Facilities
	return facilities.ClientConfig{
		HTTPClient:        &http.Client{Timeout: a.cfg.HTTPTimeout},
		BaseURL:           f.RestURL,
		AccessKey:         f.AccessKey,
		DepartmentRef:     f.DepartmentRef,
		RequestsPerSecond: f.RequestsPerSecond,
	}
}

// cache returns the configured reference cache, or nil for backend "none".
func (a *app) cache() (refdata.Cache, error) {
	switch a.cfg.Cache.Backend {
	case "none":
		return nil, nil
	case "badger":
		db, err := refdata.OpenBadger(filepath.Join(a.cfg.Cache.Path, "badger"))
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, func() { db.Close() })
		return refdata.NewBadgerCache(db), nil
	default:
		return refdata.NewFileCache(a.cfg.Cache.Path), nil
	}
}

func (a *app) loader(ctx context.Context, dir *directory.Client, fac *facilities.Client) (*refdata.Loader, error) {
	cache, err := a.cache()
	if err != nil {
		return nil, err
	}
	return refdata.NewLoader(refdata.LoaderConfig{
		Directory:          dir,
		Groups:             fac,
		Cache:              cache,
		PropertiesResource: a.cfg.Directory.PropertiesResource,
		SpacesResource:     a.cfg.Directory.SpacesResource,
	}), nil
}

// redis opens the issue publisher and the shared client, or returns nils
// when no URL is configured.
func (a *app) redis(ctx context.Context) (*redis.Client, *queue.Publisher, error) {
	if a.cfg.Redis.URL == "" {
		return nil, nil, nil
	}
	opt, err := redis.ParseURL(a.cfg.Redis.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("invalid redis url: %w", err)
	}
	rdb := redis.NewClient(opt)
	publisher := queue.NewPublisher(rdb, a.cfg.Redis.IssuesQueue)
	if err := publisher.Ping(ctx); err != nil {
		rdb.Close()
		return nil, nil, fmt.Errorf("connect to redis: %w", err)
	}
	a.closers = append(a.closers, func() { rdb.Close() })
	slog.Info("connected to Redis", "queue", a.cfg.Redis.IssuesQueue)
	return rdb, publisher, nil
}

// runStore opens the run history, or returns nil when no database is
// configured.
func (a *app) runStore(ctx context.Context) (*runstore.Store, error) {
	if a.cfg.DatabaseURL == "" {
		return nil, nil
	}
	pool, err := pgxpool.New(ctx, a.cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("connect to postgres: %w", err)
	}
	a.closers = append(a.closers, pool.Close)

	store, err := runstore.NewStore(ctx, pool)
	if err != nil {
		return nil, err
	}
	return store, nil
}
