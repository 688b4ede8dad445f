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

	"github.com/spf13/cobra"
)

func newRefdataCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "refdata",
		Short: "Manage the cached reference data",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "refresh",
		Short: "Drop the cached properties, spaces and asset groups and fetch them again",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			loader, err := a.loader(ctx, a.directory(ctx), a.facilities())
			if err != nil {
				return err
			}
			snap, err := loader.Refresh(ctx)
			if err != nil {
				return fmt.Errorf("refresh reference data: %w", err)
			}
			props, spaces, groups := snap.Counts()
			fmt.Fprintf(cmd.OutOrStdout(), "properties: %d\nspaces: %d\nasset groups: %d\n", props, spaces, groups)
			return nil
		},
	})

	return cmd
}
