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
	"fmt"
	"net/url"
	"strings"

	"github.com/spf13/cobra"

	"github.com/campusfm/assetsync/internal/fingerprint"
	"github.com/campusfm/assetsync/internal/jack"
	"github.com/campusfm/assetsync/internal/jacksync"
)

func newSyncJacksCmd(a *app) *cobra.Command {
	var (
		dryRun  bool
		filters []string
	)

	cmd := &cobra.Command{
		Use:   "sync-jacks",
		Short: "Push network jacks from the Directory API into the Facilities System",
		Long: `Fetch every network jack, validate and normalize it against the reference
data, and create or update one asset per valid jack. With --dry-run the jacks
are only validated and the issue summary is printed.

Recognised cable types (case-insensitive):
  ` + strings.Join(jack.CableCategories(), ", "),
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			query, err := parseFilters(filters)
			if err != nil {
				return err
			}

			dir := a.directory(ctx)
			fac := a.facilities()

			loader, err := a.loader(ctx, dir, fac)
			if err != nil {
				return err
			}
			refs, err := loader.Load(ctx)
			if err != nil {
				return fmt.Errorf("load reference data: %w", err)
			}

			runnerCfg := jacksync.RunnerConfig{
				Source:     dir,
				Resource:   a.cfg.Directory.JacksResource,
				Refs:       refs,
				Assets:     fac,
				ItemGroup:  a.cfg.Facilities.JackItemGroup,
				NamePrefix: a.cfg.Facilities.JackNamePrefix,
			}

			rdb, publisher, err := a.redis(ctx)
			if err != nil {
				return err
			}
			if rdb != nil {
				runnerCfg.Issues = publisher
				runnerCfg.Fingerprints = fingerprint.NewFilter(rdb, a.cfg.Redis.FingerprintTTL)
			}

			store, err := a.runStore(ctx)
			if err != nil {
				return err
			}
			if store != nil {
				runnerCfg.Recorder = store
			}

			res, err := jacksync.NewRunner(runnerCfg).Run(ctx, jacksync.Request{
				Query:  query,
				DryRun: dryRun,
			})
			if err != nil {
				return err
			}

			printSyncResult(cmd, res)
			return nil
		},
	}

	cmd.Flags().BoolVar(&dryRun, "dry-run", false, "validate and normalize only; write nothing")
	cmd.Flags().StringArrayVar(&filters, "filter", nil, "query filter passed to the jacks resource as key=value (repeatable)")

	return cmd
}

// parseFilters turns key=value pairs into a query.
func parseFilters(pairs []string) (url.Values, error) {
	q := url.Values{}
	for _, p := range pairs {
		k, v, ok := strings.Cut(p, "=")
		if !ok || strings.TrimSpace(k) == "" {
			return nil, fmt.Errorf("invalid --filter %q: want key=value", p)
		}
		q.Add(strings.TrimSpace(k), v)
	}
	return q, nil
}

func printSyncResult(cmd *cobra.Command, res *jacksync.Result) {
	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "run %s\n", res.RunID)
	fmt.Fprintf(out, "  fetched:   %d\n", res.Fetched)
	fmt.Fprintf(out, "  rejected:  %d\n", res.Rejected)
	if res.DryRun {
		fmt.Fprintln(out, "  dry run: no assets written")
	} else {
		fmt.Fprintf(out, "  unchanged: %d\n", res.Unchanged)
		fmt.Fprintf(out, "  created:   %d\n", res.Created)
		fmt.Fprintf(out, "  updated:   %d\n", res.Updated)
		fmt.Fprintf(out, "  failed:    %d\n", res.Failed)
	}
	if counts := res.IssueCounts(); len(counts) > 0 {
		fmt.Fprintln(out, "issues:")
		for _, ic := range counts {
			fmt.Fprintf(out, "  %6d  %s\n", ic.Count, ic.Issue)
		}
	}
}
