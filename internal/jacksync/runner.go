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

// Package jacksync pushes network jacks from the Directory API into the
// Facilities System: fetch, validate, normalize, then create or update one
// asset per jack.
package jacksync

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/url"
	"sort"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"

	"github.com/campusfm/assetsync/internal/facilities"
	"github.com/campusfm/assetsync/internal/fingerprint"
	"github.com/campusfm/assetsync/internal/httperr"
	"github.com/campusfm/assetsync/internal/jack"
	"github.com/campusfm/assetsync/internal/models"
	"github.com/campusfm/assetsync/internal/queue"
	"github.com/campusfm/assetsync/internal/runstore"
)

// JackSource reads every record of a Directory API resource.
type JackSource interface {
	FetchAll(ctx context.Context, resource string, query url.Values) ([]json.RawMessage, error)
}

// References is the reference snapshot the runner validates against.
type References interface {
	jack.ReferenceSets
	AssetGroupByName(name string) (models.AssetGroup, bool)
}

// AssetStore is the Facilities System surface used to write jacks.
type AssetStore interface {
	ResolveLocation(ctx context.Context, propertyCode, spaceNumber string) (facilities.Location, error)
	FindAssetID(ctx context.Context, code string) (int64, bool, error)
	CreateAsset(ctx context.Context, in facilities.AssetInput) error
	UpdateAsset(ctx context.Context, id int64, in facilities.AssetInput) error
}

// Fingerprints remembers what was last written per jack.
type Fingerprints interface {
	Unchanged(ctx context.Context, jackID, fp string) (bool, error)
	Mark(ctx context.Context, jackID, fp string) error
}

// IssuePublisher receives a report for every jack that raised an issue.
type IssuePublisher interface {
	PublishIssues(ctx context.Context, report queue.IssueReport) error
}

// RunRecorder stores the run summary.
type RunRecorder interface {
	RecordRun(ctx context.Context, r runstore.Run) error
}

// RunnerConfig holds dependencies for the sync runner. Fingerprints, Issues
// and Recorder are optional.
type RunnerConfig struct {
	Source       JackSource
	Resource     string
	Refs         References
	Assets       AssetStore
	Fingerprints Fingerprints
	Issues       IssuePublisher
	Recorder     RunRecorder
	ItemGroup    string
	NamePrefix   string
}

// Request scopes one run.
type Request struct {
	Query  url.Values
	DryRun bool
}

// Result summarises a completed run.
type Result struct {
	RunID     string
	Fetched   int
	Rejected  int
	Unchanged int
	Created   int
	Updated   int
	Failed    int
	DryRun    bool
	Issues    map[string]int
	Failures  []runstore.Failure
	Elapsed   time.Duration
}

// Runner performs jack syncs.
type Runner struct {
	cfg       RunnerConfig
	validator *jack.Validator
}

// NewRunner creates a sync runner.
func NewRunner(cfg RunnerConfig) *Runner {
	return &Runner{
		cfg:       cfg,
		validator: jack.NewValidator(cfg.Refs),
	}
}

// Run fetches every jack and writes the valid ones. Fetch failures, including
// integrity failures, abort the run before anything is written. Failures on a
// single jack are recorded and the run moves on.
func (r *Runner) Run(ctx context.Context, req Request) (*Result, error) {
	start := time.Now()
	result := &Result{
		RunID:  uuid.NewString(),
		DryRun: req.DryRun,
		Issues: make(map[string]int),
	}

	slog.Info("starting jack sync", "run_id", result.RunID, "dry_run", req.DryRun)

	raw, err := r.cfg.Source.FetchAll(ctx, r.cfg.Resource, req.Query)
	if err != nil {
		return nil, fmt.Errorf("fetch jacks: %w", err)
	}
	result.Fetched = len(raw)

	var groupRef *int64
	if g, ok := r.cfg.Refs.AssetGroupByName(r.cfg.ItemGroup); ok {
		groupRef = &g.Syscode
	} else if r.cfg.ItemGroup != "" {
		slog.Warn("asset group not found, writing jacks without one", "group", r.cfg.ItemGroup)
	}

	for i, rec := range raw {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		var rj models.RawJack
		if err := json.Unmarshal(rec, &rj); err != nil {
			r.fail(result, fmt.Sprintf("record %d", i), fmt.Errorf("decode jack: %w", err))
			continue
		}

		canonical, ok := r.prepare(ctx, result, rj)
		if !ok || req.DryRun {
			continue
		}

		r.write(ctx, result, canonical, groupRef)
	}

	result.Elapsed = time.Since(start)

	slog.Info("jack sync complete",
		"run_id", result.RunID,
		"fetched", result.Fetched,
		"rejected", result.Rejected,
		"unchanged", result.Unchanged,
		"created", result.Created,
		"updated", result.Updated,
		"failed", result.Failed,
		"elapsed", result.Elapsed,
	)

	if r.cfg.Recorder != nil && !req.DryRun {
		if err := r.cfg.Recorder.RecordRun(ctx, result.run(start)); err != nil {
			slog.Warn("record run failed", "run_id", result.RunID, "error", err)
		}
	}

	return result, nil
}

// prepare validates and normalizes one jack. It returns false when the jack
// is rejected or failed.
func (r *Runner) prepare(ctx context.Context, result *Result, rj models.RawJack) (*models.CanonicalJack, bool) {
	res := r.validator.Validate(rj)
	for _, issue := range res.Issues {
		result.Issues[issue]++
	}

	if len(res.Issues) > 0 && r.cfg.Issues != nil {
		report := queue.IssueReport{
			RunID:    result.RunID,
			JackID:   rj.ID.String(),
			Jack:     rj.Jack,
			Issues:   res.Issues,
			Warnings: res.Warnings,
			Errors:   res.Errors,
			Rejected: !res.OK(),
		}
		if err := r.cfg.Issues.PublishIssues(ctx, report); err != nil {
			slog.Warn("publish issues failed", "jack_id", rj.ID, "error", err)
		}
	}

	canonical, err := jack.Normalize(rj, res)
	var verr *jack.ValidationError
	if errors.As(err, &verr) {
		slog.Debug("jack rejected", "jack_id", rj.ID, "issues", res.Issues)
		result.Rejected++
		return nil, false
	}
	if err != nil {
		r.fail(result, rj.ID.String(), err)
		return nil, false
	}
	return canonical, true
}

// write creates or updates the asset for one canonical jack.
func (r *Runner) write(ctx context.Context, result *Result, j *models.CanonicalJack, groupRef *int64) {
	var fp string
	if r.cfg.Fingerprints != nil {
		var err error
		if fp, err = fingerprint.Of(j); err != nil {
			r.fail(result, j.ID.String(), err)
			return
		}
		same, err := r.cfg.Fingerprints.Unchanged(ctx, j.ID.String(), fp)
		if err != nil {
			slog.Warn("fingerprint check failed", "jack_id", j.ID, "error", err)
		} else if same {
			result.Unchanged++
			return
		}
	}

	var space string
	if j.SpaceID != nil {
		space = *j.SpaceID
	}
	loc, err := r.cfg.Assets.ResolveLocation(ctx, j.BuildingRef, space)
	if err != nil {
		r.fail(result, j.ID.String(), err)
		return
	}

	in := facilities.AssetInput{
		Code:         j.Jack,
		Name:         r.cfg.NamePrefix + j.Jack,
		PropertyRef:  loc.PropertyRef,
		SpaceRef:     loc.SpaceRef,
		Comments:     j.Comments,
		ItemGroupRef: groupRef,
		StartDate:    j.WiringDate,
		Attributes: &facilities.JackAttributes{
			JackID:    j.Jack,
			CableType: j.CableType,
		},
	}
	if j.LegacyPatch != nil {
		in.Attributes.LegacyPatch = *j.LegacyPatch
	}

	id, exists, err := r.cfg.Assets.FindAssetID(ctx, j.Jack)
	if err != nil {
		r.fail(result, j.ID.String(), err)
		return
	}

	if exists {
		err = r.cfg.Assets.UpdateAsset(ctx, id, in)
	} else {
		err = r.cfg.Assets.CreateAsset(ctx, in)
	}
	if err != nil {
		r.fail(result, j.ID.String(), err)
		return
	}

	if exists {
		result.Updated++
	} else {
		result.Created++
	}

	if fp != "" {
		if err := r.cfg.Fingerprints.Mark(ctx, j.ID.String(), fp); err != nil {
			slog.Warn("fingerprint mark failed", "jack_id", j.ID, "error", err)
		}
	}
}

func (r *Runner) fail(result *Result, item string, err error) {
	attrs := []any{"jack_id", item, "error", err}
	if code := httperr.StatusCode(err); code != 0 {
		attrs = append(attrs, "status", code)
	}
	slog.Warn("jack failed", attrs...)
	result.Failed++
	result.Failures = append(result.Failures, runstore.Failure{Item: item, Error: err.Error()})
}

// IssueCounts returns the issue tallies sorted by count, highest first.
func (res *Result) IssueCounts() []IssueCount {
	out := make([]IssueCount, 0, len(res.Issues))
	for issue, n := range res.Issues {
		out = append(out, IssueCount{Issue: issue, Count: n})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Issue < out[j].Issue
	})
	return out
}

// IssueCount is one issue text and how many jacks raised it.
type IssueCount struct {
	Issue string
	Count int
}

func (res *Result) run(start time.Time) runstore.Run {
	return runstore.Run{
		ID:         res.RunID,
		Kind:       runstore.KindJackSync,
		StartedAt:  start,
		FinishedAt: start.Add(res.Elapsed),
		Processed:  res.Fetched,
		Succeeded:  res.Created + res.Updated,
		Skipped:    res.Rejected + res.Unchanged,
		Failed:     res.Failed,
		DryRun:     res.DryRun,
		Failures:   res.Failures,
	}
}
