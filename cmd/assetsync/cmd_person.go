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

	"github.com/goccy/go-json"
	"github.com/spf13/cobra"

	"github.com/campusfm/assetsync/internal/directory"
)

func newPersonCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "person <netid>",
		Short: "Look up one person in the Directory API",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			p, err := a.directory(ctx).GetPerson(ctx, a.cfg.Directory.PeopleResource, args[0])
			if errors.Is(err, directory.ErrNotFound) {
				fmt.Fprintf(cmd.OutOrStdout(), "%s: not found\n", args[0])
				return nil
			}
			if err != nil {
				return err
			}
			out, err := json.MarshalIndent(p, "", "  ")
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), string(out))
			return nil
		},
	}
}

func newAckChangeCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "ack-change <message-id>",
		Short: "Delete a processed resource change message",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			changeURL := a.cfg.Directory.ChangeURL
			if changeURL == "" {
				return errors.New("directory.resource_change_url is not configured")
			}
			ctx := cmd.Context()
			if err := a.directory(ctx).DeleteChangeMessage(ctx, changeURL, args[0]); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "deleted %s\n", args[0])
			return nil
		},
	}
}
