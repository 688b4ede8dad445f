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
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math/big"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/campusfm/assetsync/internal/facilities"
	"github.com/campusfm/assetsync/internal/httperr"
	"github.com/campusfm/assetsync/internal/runstore"
)

// ErrNoBarcode marks a row whose CODE is empty or zero.
var ErrNoBarcode = errors.New("no barcode")

// noBarcodeReason is the failure text recorded for ErrNoBarcode rows.
const noBarcodeReason = "No barcode"

// AssetStore is the Facilities System surface the reconciler uses.
type AssetStore interface {
	ResolveLocation(ctx context.Context, propertyCode, spaceNumber string) (facilities.Location, error)
	FindMEAssets(ctx context.Context, filter facilities.Filter) ([]facilities.MEAsset, error)
	SaveMEAsset(ctx context.Context, a facilities.MEAsset) error
}

// RunRecorder stores the run summary.
type RunRecorder interface {
	RecordRun(ctx context.Context, r runstore.Run) error
}

// Failure is a row that was not applied.
type Failure struct {
	Line  int
	Code  string
	Error string
}

// Result summarises one reconcile run.
type Result struct {
	RunID     string
	Variant   string
	Rows      int
	Succeeded int
	Failed    int
	NoBarcode int
	Failures  []Failure
	Elapsed   time.Duration
}

// Reconciler applies CSV rows to assets.
type Reconciler struct {
	assets   AssetStore
	recorder RunRecorder
}

// NewReconciler creates a reconciler. recorder may be nil.
func NewReconciler(assets AssetStore, recorder RunRecorder) *Reconciler {
	return &Reconciler{assets: assets, recorder: recorder}
}

// Run applies every row in order. A failing row is recorded and the next row
// is processed; nothing is rolled back.
func (r *Reconciler) Run(ctx context.Context, v Variant, rows []Row) (*Result, error) {
	start := time.Now()
	result := &Result{RunID: uuid.NewString(), Variant: v.Name, Rows: len(rows)}

	slog.Info("starting reconcile", "run_id", result.RunID, "variant", v.Name, "rows", len(rows))

	for _, row := range rows {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		err := r.applyRow(ctx, v, row)
		switch {
		case err == nil:
			result.Succeeded++
		case errors.Is(err, ErrNoBarcode):
			slog.Error("no barcode provided", "line", row.Line)
			result.NoBarcode++
			result.Failures = append(result.Failures, Failure{Line: row.Line, Error: noBarcodeReason})
		default:
			attrs := []any{"line", row.Line, "code", row.Get(ColCode), "error", err}
			if status := httperr.StatusCode(err); status != 0 {
				attrs = append(attrs, "status", status)
			}
			slog.Warn("row failed", attrs...)
			result.Failed++
			result.Failures = append(result.Failures, Failure{
				Line:  row.Line,
				Code:  row.Get(ColCode),
				Error: err.Error(),
			})
		}
	}

	result.Elapsed = time.Since(start)

	slog.Info("reconcile complete",
		"run_id", result.RunID,
		"variant", v.Name,
		"succeeded", result.Succeeded,
		"failed", result.Failed,
		"no_barcode", result.NoBarcode,
		"elapsed", result.Elapsed,
	)

	if r.recorder != nil {
		if err := r.recorder.RecordRun(ctx, result.run(start)); err != nil {
			slog.Warn("record run failed", "run_id", result.RunID, "error", err)
		}
	}

	return result, nil
}

func (r *Reconciler) applyRow(ctx context.Context, v Variant, row Row) error {
	code := row.Get(ColCode)
	if err := checkBarcode(code); err != nil {
		return err
	}

	loc, err := r.assets.ResolveLocation(ctx, row.Get(ColBuilding), row.Get(ColRoom))
	if err != nil {
		return err
	}
	slog.Debug("row location", "line", row.Line, "property_ref", loc.PropertyRef, "space_ref", loc.SpaceRef)

	filter := v.Filter(row)
	found, err := r.assets.FindMEAssets(ctx, filter)
	if err != nil {
		return err
	}
	if len(found) != 1 {
		return &facilities.AmbiguousMatchError{Resource: facilities.ResourceMEAsset, Filter: filter, Count: len(found)}
	}

	asset := found[0]
	v.Apply(&asset, row)
	if err := r.assets.SaveMEAsset(ctx, asset); err != nil {
		return err
	}

	slog.Info("asset updated", "line", row.Line, "code", code, "syscode", asset.Syscode)
	return nil
}

// checkBarcode returns ErrNoBarcode for an empty or zero CODE and an error
// for a CODE that is not an integer.
func checkBarcode(code string) error {
	if code == "" {
		return ErrNoBarcode
	}
	n, ok := new(big.Int).SetString(strings.TrimSpace(code), 10)
	if !ok {
		return fmt.Errorf("invalid barcode %q", code)
	}
	if n.Sign() == 0 {
		return ErrNoBarcode
	}
	return nil
}

func (res *Result) run(start time.Time) runstore.Run {
	failures := make([]runstore.Failure, 0, len(res.Failures))
	for _, f := range res.Failures {
		failures = append(failures, runstore.Failure{
			Item:  fmt.Sprintf("line %d %s", f.Line, f.Code),
			Error: f.Error,
		})
	}
	return runstore.Run{
		ID:         res.RunID,
		Kind:       runstore.KindReconcile,
		Variant:    res.Variant,
		StartedAt:  start,
		FinishedAt: start.Add(res.Elapsed),
		Processed:  res.Rows,
		Succeeded:  res.Succeeded,
		Skipped:    res.NoBarcode,
		Failed:     res.Failed,
		Failures:   failures,
	}
}
