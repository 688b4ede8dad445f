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

// Package fingerprint remembers the last canonical form pushed for each jack
// so unchanged jacks can be skipped on the next sync. State lives in Redis
// with a TTL; an expired key simply means the jack is written again.
package fingerprint

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"time"

	"github.com/goccy/go-json"
	"github.com/redis/go-redis/v9"

	"github.com/campusfm/assetsync/internal/models"
)

const (
	// DefaultTTL is how long a pushed fingerprint is trusted.
	DefaultTTL = 7 * 24 * time.Hour

	keyPrefix = "assetsync:jack:"
)

// Of returns a stable digest of a canonical jack.
func Of(j *models.CanonicalJack) (string, error) {
	data, err := json.Marshal(j)
	if err != nil {
		return "", fmt.Errorf("fingerprint jack %s: %w", j.ID, err)
	}
	sum := sha256.Sum256(data)
	return hex.EncodeToString(sum[:]), nil
}

// Filter tracks which fingerprint was last written per jack.
type Filter struct {
	rdb *redis.Client
	ttl time.Duration
}

// NewFilter creates a fingerprint filter backed by Redis. A ttl of zero uses
// DefaultTTL.
func NewFilter(rdb *redis.Client, ttl time.Duration) *Filter {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &Filter{rdb: rdb, ttl: ttl}
}

// Unchanged reports whether fp is the fingerprint last marked for jackID.
func (f *Filter) Unchanged(ctx context.Context, jackID, fp string) (bool, error) {
	got, err := f.rdb.Get(ctx, keyPrefix+jackID).Result()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("fingerprint GET: %w", err)
	}
	return got == fp, nil
}

// Mark records fp as written for jackID.
func (f *Filter) Mark(ctx context.Context, jackID, fp string) error {
	if err := f.rdb.Set(ctx, keyPrefix+jackID, fp, f.ttl).Err(); err != nil {
		return fmt.Errorf("fingerprint SET: %w", err)
	}
	return nil
}
