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
	"errors"
	"fmt"
	"io"
	"text/tabwriter"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/campusfm/assetsync/internal/runstore"
)

func newRunsCmd(a *app) *cobra.Command {
	var (
		kind     string
		limit    int
		failures string
	)

	cmd := &cobra.Command{
		Use:   "runs",
		Short: "List recent runs from the run history",
		Long: `List the latest runs of one kind, newest first. With --failures the items
that failed in the given run are listed instead.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			if failures != "" {
				if _, err := uuid.Parse(failures); err != nil {
					return fmt.Errorf("invalid run id %q: %w", failures, err)
				}
			}

			store, err := a.runStore(ctx)
			if err != nil {
				return err
			}
			if store == nil {
				return errors.New("database_url is not configured")
			}

			if failures != "" {
				list, err := store.Failures(ctx, failures)
				if err != nil {
					return fmt.Errorf("list failures of run %s: %w", failures, err)
				}
				return printFailures(cmd.OutOrStdout(), list)
			}

			runs, err := store.ListRecent(ctx, kind, limit)
			if err != nil {
				return fmt.Errorf("list runs: %w", err)
			}
			return printRuns(cmd.OutOrStdout(), runs)
		},
	}

	cmd.Flags().StringVar(&kind, "kind", runstore.KindJackSync, "run kind (sync-jacks or reconcile)")
	cmd.Flags().IntVar(&limit, "limit", 10, "number of runs to show")
	cmd.Flags().StringVar(&failures, "failures", "", "list the failed items of this run id")

	return cmd
}

func printRuns(w io.Writer, runs []runstore.Run) error {
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tSTARTED\tVARIANT\tPROCESSED\tSUCCEEDED\tSKIPPED\tFAILED")
	for _, r := range runs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%d\t%d\t%d\t%d\n",
			r.ID, r.StartedAt.Format("2006-01-02 15:04"), r.Variant,
			r.Processed, r.Succeeded, r.Skipped, r.Failed)
	}
	return tw.Flush()
}

func printFailures(w io.Writer, failures []runstore.Failure) error {
	if len(failures) == 0 {
		_, err := fmt.Fprintln(w, "no failures recorded")
		return err
	}
	tw := tabwriter.NewWriter(w, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ITEM\tERROR")
	for _, f := range failures {
		fmt.Fprintf(tw, "%s\t%s\n", f.Item, f.Error)
	}
	return tw.Flush()
}
