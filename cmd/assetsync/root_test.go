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
	"bytes"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/campusfm/assetsync/internal/config"
	"github.com/campusfm/assetsync/internal/runstore"
)

func executeCmd(args ...string) (string, string, error) {
	var stdout, stderr bytes.Buffer
	err := execute(args, &stdout, &stderr)
	return stdout.String(), stderr.String(), err
}

func writeConfig(t *testing.T, directoryURL string) string {
	t.Helper()
	body := `
directory:
  base_url: ` + directoryURL + `
  api_key: test-key
  jacks_resource: network/jacks
facilities:
  rest_url: https://fm.example.edu/rest
  access_key: secret
cache:
  backend: none
`
	path := filepath.Join(t.TempDir(), "config.yaml")
	if err := os.WriteFile(path, []byte(body), 0o600); err != nil {
		t.Fatalf("write config: %v", err)
	}
	return path
}

func TestRoot_Help(t *testing.T) {
	stdout, _, err := executeCmd("--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, cmd := range []string{"sync-jacks", "reconcile", "refdata", "person", "ack-change", "runs"} {
		if !strings.Contains(stdout, cmd) {
			t.Errorf("expected %q in help output", cmd)
		}
	}
}

func TestSyncJacks_HelpListsCableTypes(t *testing.T) {
	stdout, _, err := executeCmd("sync-jacks", "--help")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	for _, c := range []string{"Cat5e-Shielded", "Fiber-OM4", "AnalogPhone"} {
		if !strings.Contains(stdout, c) {
			t.Errorf("expected %q in sync-jacks help", c)
		}
	}
}

func TestRuns_InvalidFailuresRunID(t *testing.T) {
	cfg := writeConfig(t, "https://api.example.edu")
	_, _, err := executeCmd("--config", cfg, "runs", "--failures", "not-a-run")
	if err == nil || !strings.Contains(err.Error(), "invalid run id") {
		t.Errorf("expected invalid run id error, got %v", err)
	}
}

func TestRuns_FailuresNeedDatabase(t *testing.T) {
	t.Setenv("DATABASE_URL", "")
	cfg := writeConfig(t, "https://api.example.edu")
	_, _, err := executeCmd("--config", cfg, "runs", "--failures", "9b2f6a0e-4c1d-4a52-8d7e-2f1a3c4b5d6e")
	if err == nil || !strings.Contains(err.Error(), "database_url") {
		t.Errorf("expected database_url error, got %v", err)
	}
}

func TestPrintFailures(t *testing.T) {
	var buf bytes.Buffer
	if err := printFailures(&buf, nil); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if !strings.Contains(buf.String(), "no failures recorded") {
		t.Errorf("empty output = %q", buf.String())
	}

	buf.Reset()
	err := printFailures(&buf, []runstore.Failure{{Item: "4", Error: "create asset: HTTP 503"}})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	out := buf.String()
	if !strings.Contains(out, "ITEM") || !strings.Contains(out, "create asset: HTTP 503") {
		t.Errorf("output = %q", out)
	}
}

func TestFacilitiesConfig_UsesHTTPTimeout(t *testing.T) {
	a := &app{cfg: &config.Config{
		Facilities:  config.FacilitiesConfig{RestURL: "https://fac.example.edu/rest"},
		HTTPTimeout: 7 * time.Second,
	}}
	fc := a.facilitiesConfig()
	if fc.HTTPClient == nil || fc.HTTPClient.Timeout != 7*time.Second {
		t.Errorf("facilities HTTP client = %+v, want a 7s timeout", fc.HTTPClient)
	}
	if fc.BaseURL != "https://fac.example.edu/rest" {
		t.Errorf("BaseURL = %q", fc.BaseURL)
	}
}

func TestParseFilters(t *testing.T) {
	q, err := parseFilters([]string{"building_ref=0012", "status=active", "note=a=b"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if q.Get("building_ref") != "0012" || q.Get("note") != "a=b" {
		t.Errorf("query = %v", q)
	}

	for _, bad := range []string{"novalue", "=x"} {
		if _, err := parseFilters([]string{bad}); err == nil {
			t.Errorf("parseFilters(%q): expected error", bad)
		}
	}
}

func TestReconcile_UnknownVariant(t *testing.T) {
	cfg := writeConfig(t, "https://api.example.edu")
	_, _, err := executeCmd("--config", cfg, "reconcile", "--variant", "bogus", "--input", "load.csv")
	if err == nil || !strings.Contains(err.Error(), "unknown reconcile variant") {
		t.Fatalf("expected unknown variant error, got %v", err)
	}
}

func TestReconcile_RequiresFlags(t *testing.T) {
	cfg := writeConfig(t, "https://api.example.edu")
	if _, _, err := executeCmd("--config", cfg, "reconcile"); err == nil {
		t.Fatal("expected error for missing --variant/--input")
	}
}

func TestMissingConfig(t *testing.T) {
	_, _, err := executeCmd("--config", filepath.Join(t.TempDir(), "absent.yaml"), "person", "abc")
	if err == nil || !strings.Contains(err.Error(), "read config file") {
		t.Fatalf("expected config error, got %v", err)
	}
}

func TestPerson(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch {
		case r.URL.Path == "/jwt":
			w.Write([]byte(`{"jwt":"token-1","accepted_scopes":[]}`))
		case r.Header.Get("Authorization") != "Bearer token-1":
			w.WriteHeader(http.StatusUnauthorized)
		case r.URL.Path == "/people/d12345x":
			w.Write([]byte(`{"netid":"d12345x","name":"Pat Doe","email":"pat@example.edu"}`))
		default:
			w.WriteHeader(http.StatusNotFound)
		}
	}))
	defer server.Close()
	cfg := writeConfig(t, server.URL)

	stdout, _, err := executeCmd("--config", cfg, "person", "d12345x")
	if err != nil {
		t.Fatalf("person: %v", err)
	}
	if !strings.Contains(stdout, `"name": "Pat Doe"`) {
		t.Errorf("stdout = %q", stdout)
	}

	stdout, _, err = executeCmd("--config", cfg, "person", "nobody")
	if err != nil {
		t.Fatalf("person not found should not fail: %v", err)
	}
	if !strings.Contains(stdout, "nobody: not found") {
		t.Errorf("stdout = %q", stdout)
	}
}

func TestAckChange_NotConfigured(t *testing.T) {
	cfg := writeConfig(t, "https://api.example.edu")
	_, _, err := executeCmd("--config", cfg, "ack-change", "m-1")
	if err == nil || !strings.Contains(err.Error(), "resource_change_url") {
		t.Fatalf("expected configuration error, got %v", err)
	}
}
