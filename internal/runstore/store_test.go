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

package runstore

import (
	"reflect"
	"testing"
)

func TestFailureRows(t *testing.T) {
	r := Run{
		ID: "9b2f6a0e-4c1d-4a52-8d7e-2f1a3c4b5d6e",
		Failures: []Failure{
			{Item: "4", Error: "resolve location: no property"},
			{Item: "7", Error: "create asset: 500"},
		},
	}

	got := failureRows(r)
	want := [][]any{
		{r.ID, "4", "resolve location: no property"},
		{r.ID, "7", "create asset: 500"},
	}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("got %v, want %v", got, want)
	}
	for _, row := range got {
		if len(row) != len(failureColumns) {
			t.Errorf("row %v does not match columns %v", row, failureColumns)
		}
	}
}

func TestFailureRows_Empty(t *testing.T) {
	if rows := failureRows(Run{ID: "x"}); len(rows) != 0 {
		t.Errorf("expected no rows, got %v", rows)
	}
}
