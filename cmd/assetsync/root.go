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
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/campusfm/assetsync/internal/config"
)

// globalOpts holds the flags shared by every subcommand.
type globalOpts struct {
	configPath string
	verbose    bool
}

func newRootCmd(a *app) *cobra.Command {
	opts := &globalOpts{}

	rootCmd := &cobra.Command{
		Use:   "assetsync",
		Short: "Synchronise facility assets into the Facilities System",
		Long: `assetsync pushes network jacks from the Directory API into the Facilities
System and reconciles existing assets against CSV exports.`,
		SilenceErrors: true,
		SilenceUsage:  true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			level := slog.LevelInfo
			if opts.verbose {
				level = slog.LevelDebug
			}
			slog.SetDefault(slog.New(slog.NewJSONHandler(cmd.ErrOrStderr(), &slog.HandlerOptions{
				Level: level,
			})))

			cfg, err := config.Load(opts.configPath)
			if err != nil {
				return err
			}
			a.cfg = cfg
			return nil
		},
	}

	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", "", "path to config.yaml (default $CONFIG_PATH or "+config.DefaultPath+")")
	rootCmd.PersistentFlags().BoolVar(&opts.verbose, "verbose", false, "enable debug logging")

	rootCmd.CompletionOptions.DisableDefaultCmd = true

	rootCmd.AddCommand(
		newSyncJacksCmd(a),
		newReconcileCmd(a),
		newRefdataCmd(a),
		newPersonCmd(a),
		newAckChangeCmd(a),
		newRunsCmd(a),
	)

	return rootCmd
}

func execute(args []string, stdout, stderr io.Writer) error {
	a := &app{}
	defer a.close()

	rootCmd := newRootCmd(a)
	rootCmd.SetArgs(args)
	rootCmd.SetOut(stdout)
	rootCmd.SetErr(stderr)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}
