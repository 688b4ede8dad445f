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

// assetsync keeps Facilities System assets in step with the Directory API
// and with CSV exports from the legacy maintenance system.
//
// Usage:
//
//	assetsync sync-jacks [--dry-run] [--filter key=value ...]
//	assetsync reconcile --variant legacy-description|common-assets --input load.csv
//	assetsync refdata refresh
//	assetsync person <netid>
//	assetsync ack-change <message-id>
//	assetsync runs [--kind sync-jacks] [--limit 10]
package main

import (
	"log/slog"
	"os"
)

func main() {
	if err := execute(os.Args[1:], os.Stdout, os.Stderr); err != nil {
		slog.Error("assetsync failed", "error", err)
		os.Exit(1)
	}
}
