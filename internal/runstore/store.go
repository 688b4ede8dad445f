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

// Package runstore keeps a Postgres history of sync and reconcile runs and
// the items that failed in each.
package runstore

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Run kinds.
const (
	KindJackSync  = "sync-jacks"
	KindReconcile = "reconcile"
)

// Failure is one item a run could not process.
type Failure struct {
	Item  string
	Error string
}

// Run is the summary of one sync or reconcile run.
type Run struct {
	ID         string
	Kind       string
	Variant    string
	StartedAt  time.Time
	FinishedAt time.Time
	Processed  int
	Succeeded  int
	Skipped    int
	Failed     int
	DryRun     bool
	Failures   []Failure
}

// Store persists runs in Postgres.
type Store struct {
	pool *pgxpool.Pool
}

// NewStore creates a run store backed by the given Postgres pool.
// It ensures the run tables exist on creation.
func NewStore(ctx context.Context, pool *pgxpool.Pool) (*Store, error) {
	s := &Store{pool: pool}
	if err := s.ensureSchema(ctx); err != nil {
		return nil, fmt.Errorf("ensure run schema: %w", err)
	}
	slog.Info("run store initialised")
	return s, nil
}

func (s *Store) ensureSchema(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS assetsync_runs (
			id          UUID PRIMARY KEY,
			kind        TEXT NOT NULL,
			variant     TEXT DEFAULT '',
			started_at  TIMESTAMPTZ NOT NULL,
			finished_at TIMESTAMPTZ NOT NULL,
			processed   INTEGER NOT NULL DEFAULT 0,
			succeeded   INTEGER NOT NULL DEFAULT 0,
			skipped     INTEGER NOT NULL DEFAULT 0,
			failed      INTEGER NOT NULL DEFAULT 0,
			dry_run     BOOLEAN NOT NULL DEFAULT FALSE
		);
		CREATE TABLE IF NOT EXISTS assetsync_run_failures (
			run_id UUID NOT NULL REFERENCES assetsync_runs(id) ON DELETE CASCADE,
			item   TEXT NOT NULL,
			error  TEXT NOT NULL
		);
		CREATE INDEX IF NOT EXISTS idx_runs_kind_started ON assetsync_runs(kind, started_at DESC);
		CREATE INDEX IF NOT EXISTS idx_run_failures_run ON assetsync_run_failures(run_id);
	`)
	return err
}

// RecordRun stores a run and its failures in one transaction.
func (s *Store) RecordRun(ctx context.Context, r Run) error {
	tx, err := s.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	_, err = tx.Exec(ctx, `
		INSERT INTO assetsync_runs
			(id, kind, variant, started_at, finished_at, processed, succeeded, skipped, failed, dry_run)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10)
	`, r.ID, r.Kind, r.Variant, r.StartedAt, r.FinishedAt,
		r.Processed, r.Succeeded, r.Skipped, r.Failed, r.DryRun)
	if err != nil {
		return fmt.Errorf("insert run %s: %w", r.ID, err)
	}

	if len(r.Failures) > 0 {
		_, err = tx.CopyFrom(ctx,
			pgx.Identifier{"assetsync_run_failures"},
			failureColumns,
			pgx.CopyFromRows(failureRows(r)),
		)
		if err != nil {
			return fmt.Errorf("insert failures for run %s: %w", r.ID, err)
		}
	}

	return tx.Commit(ctx)
}

var failureColumns = []string{"run_id", "item", "error"}

// failureRows lays out r's failures in failureColumns order.
func failureRows(r Run) [][]any {
	rows := make([][]any, 0, len(r.Failures))
	for _, f := range r.Failures {
		rows = append(rows, []any{r.ID, f.Item, f.Error})
	}
	return rows
}

// ListRecent returns the latest runs of a kind, newest first. Failures are
// not loaded.
func (s *Store) ListRecent(ctx context.Context, kind string, limit int) ([]Run, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT id::text, kind, variant, started_at, finished_at,
		       processed, succeeded, skipped, failed, dry_run
		FROM assetsync_runs
		WHERE kind = $1
		ORDER BY started_at DESC
		LIMIT $2
	`, kind, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		var r Run
		if err := rows.Scan(
			&r.ID, &r.Kind, &r.Variant, &r.StartedAt, &r.FinishedAt,
			&r.Processed, &r.Succeeded, &r.Skipped, &r.Failed, &r.DryRun,
		); err != nil {
			return nil, err
		}
		runs = append(runs, r)
	}
	return runs, rows.Err()
}

// Failures returns the failed items of one run.
func (s *Store) Failures(ctx context.Context, runID string) ([]Failure, error) {
	rows, err := s.pool.Query(ctx, `
		SELECT item, error FROM assetsync_run_failures WHERE run_id = $1
	`, runID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return pgx.CollectRows(rows, pgx.RowToStructByPos[Failure])
}
