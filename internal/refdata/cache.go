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
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger/v4"
	"github.com/goccy/go-json"
)

// Cache keys for the three reference lists.
const (
	KeyProperties  = "properties"
	KeySpaces      = "spaces"
	KeyAssetGroups = "asset_groups"
)

// Cache persists reference lists between runs.
type Cache interface {
	// Load decodes the entry for key into v. It reports false, nil when
	// there is no entry.
	Load(ctx context.Context, key string, v any) (bool, error)
	Store(ctx context.Context, key string, v any) error
	Delete(ctx context.Context, key string) error
}

// FileCache stores one JSON file per key under a directory.
type FileCache struct {
	dir string
}

// NewFileCache creates a file cache rooted at dir. The directory is created
// on the first Store.
func NewFileCache(dir string) *FileCache {
	return &FileCache{dir: dir}
}

func (c *FileCache) path(key string) string {
	return filepath.Join(c.dir, key+".json")
}

func (c *FileCache) Load(_ context.Context, key string, v any) (bool, error) {
	data, err := os.ReadFile(c.path(key))
	if errors.Is(err, fs.ErrNotExist) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("read cache %s: %w", key, err)
	}
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("decode cache %s: %w", key, err)
	}
	return true, nil
}

func (c *FileCache) Store(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", key, err)
	}
	if err := os.MkdirAll(c.dir, 0o755); err != nil {
		return fmt.Errorf("create cache dir: %w", err)
	}

	// Rename makes the write atomic.
	tmp := c.path(key) + ".tmp"
	if err := os.WriteFile(tmp, data, 0o644); err != nil {
		return fmt.Errorf("write cache %s: %w", key, err)
	}
	if err := os.Rename(tmp, c.path(key)); err != nil {
		return fmt.Errorf("commit cache %s: %w", key, err)
	}
	return nil
}

func (c *FileCache) Delete(_ context.Context, key string) error {
	err := os.Remove(c.path(key))
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("delete cache %s: %w", key, err)
	}
	return nil
}

// badgerKeyPrefix namespaces reference entries in a shared badger DB.
const badgerKeyPrefix = "refdata:"

// BadgerCache stores reference lists in an embedded badger database.
type BadgerCache struct {
	db *badger.DB
}

// NewBadgerCache wraps an open badger database. The caller owns db.
func NewBadgerCache(db *badger.DB) *BadgerCache {
	return &BadgerCache{db: db}
}

// OpenBadger opens (or creates) a badger database at dir with badger's own
// logging silenced.
func OpenBadger(dir string) (*badger.DB, error) {
	db, err := badger.Open(badger.DefaultOptions(dir).WithLogger(nil))
	if err != nil {
		return nil, fmt.Errorf("open badger at %s: %w", dir, err)
	}
	return db, nil
}

func (c *BadgerCache) Load(_ context.Context, key string, v any) (bool, error) {
	found := true
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get([]byte(badgerKeyPrefix + key))
		if errors.Is(err, badger.ErrKeyNotFound) {
			found = false
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, v)
		})
	})
	if err != nil {
		return false, fmt.Errorf("load cache %s: %w", key, err)
	}
	return found, nil
}

func (c *BadgerCache) Store(_ context.Context, key string, v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode cache %s: %w", key, err)
	}
	return c.db.Update(func(txn *badger.Txn) error {
		if err := txn.Set([]byte(badgerKeyPrefix+key), data); err != nil {
			return fmt.Errorf("store cache %s: %w", key, err)
		}
		return nil
	})
}

func (c *BadgerCache) Delete(_ context.Context, key string) error {
	return c.db.Update(func(txn *badger.Txn) error {
		err := txn.Delete([]byte(badgerKeyPrefix + key))
		if err != nil && !errors.Is(err, badger.ErrKeyNotFound) {
			return fmt.Errorf("delete cache %s: %w", key, err)
		}
		return nil
	})
}
