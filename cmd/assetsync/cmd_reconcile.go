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
	"os"

	"github.com/spf13/cobra"

	"github.com/campusfm/assetsync/internal/reconcile"
)

func newReconcileCmd(a *app) *cobra.Command {
	var (
		variantName string
		input       string
	)

	cmd := &cobra.Command{
		Use:   "reconcile",
		Short: "Apply a CSV export to existing mechanical/electrical assets",
		Long: `Read a CSV export and update the one asset each row identifies.

Variants:
  legacy-description  match Code and Name; set LegacyDescription from EQUIP_NUMBER
  common-assets       match AssetTag and Code; set LegacyDescription, Name and Dossier`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()

			variant, err := reconcile.VariantByName(variantName)
			if err != nil {
				return err
			}

			f, err := os.Open(input)
			if err != nil {
				return fmt.Errorf("open input: %w", err)
			}
			defer f.Close()

			rows, err := reconcile.ReadRows(f, variant.Required)
			if err != nil {
				return fmt.Errorf("read %s: %w", input, err)
			}

			store, err := a.runStore(ctx)
			if err != nil {
				return err
			}
			var recorder reconcile.RunRecorder
			if store != nil {
				recorder = store
			}

			res, err := reconcile.NewReconciler(a.facilities(), recorder).Run(ctx, variant, rows)
			if err != nil {
				return err
			}

			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "run %s (%s)\n", res.RunID, res.Variant)
			fmt.Fprintf(out, "  succeeded:  %d\n", res.Succeeded)
			fmt.Fprintf(out, "  failed:     %d\n", res.Failed)
			fmt.Fprintf(out, "  no barcode: %d\n", res.NoBarcode)
			for _, fl := range res.Failures {
				fmt.Fprintf(out, "  line %d %s: %s\n", fl.Line, fl.Code, fl.Error)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&variantName, "variant", "", "reconcile variant (legacy-description or common-assets)")
	cmd.Flags().StringVar(&input, "input", "", "path to the CSV export")
	cmd.MarkFlagRequired("variant")
	cmd.MarkFlagRequired("input")

	return cmd
}
