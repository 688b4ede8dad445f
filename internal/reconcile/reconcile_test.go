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
	"bytes"
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"

	"github.com/campusfm/assetsync/internal/facilities"
	"github.com/campusfm/assetsync/internal/runstore"
)

func TestReadRows(t *testing.T) {
	input := "CODE,BUILDING_ID, ROOM ,DESCRIPTION,EQUIP_NUMBER\n" +
		"0072340,0012,101,Pump,EQ-1\n" +
		",0012,,Fan\n"

	rows, err := ReadRows(strings.NewReader(input), LegacyDescription.Required)
	if err != nil {
		t.Fatalf("ReadRows: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("got %d rows, want 2", len(rows))
	}
	if rows[0].Get(ColCode) != "0072340" || rows[0].Get(ColRoom) != "101" || rows[0].Line != 2 {
		t.Errorf("row 0 = %+v", rows[0])
	}
	if rows[1].Get(ColEquipNumber) != "" || rows[1].Line != 3 {
		t.Errorf("short row should leave trailing columns empty: %+v", rows[1])
	}
}

func TestReadRows_MissingColumns(t *testing.T) {
	_, err := ReadRows(strings.NewReader("CODE,BUILDING_ID\n1,2\n"), CommonAssets.Required)
	var mce *MissingColumnsError
	if !errors.As(err, &mce) {
		t.Fatalf("expected *MissingColumnsError, got %v", err)
	}
	if len(mce.Columns) != 5 || mce.Columns[0] != ColRoom {
		t.Errorf("missing = %v", mce.Columns)
	}

	_, err = ReadRows(strings.NewReader(""), []string{ColCode})
	if !errors.As(err, &mce) {
		t.Errorf("empty input: expected *MissingColumnsError, got %v", err)
	}
}

func TestReadRows_Encodings(t *testing.T) {
	text := "CODE,DESCRIPTION\n1,Café chiller\n"

	utf16, err := unicode.UTF16(unicode.LittleEndian, unicode.UseBOM).NewEncoder().String(text)
	if err != nil {
		t.Fatalf("encode utf-16: %v", err)
	}
	cp1252, err := charmap.Windows1252.NewEncoder().String(text)
	if err != nil {
		t.Fatalf("encode windows-1252: %v", err)
	}
	// "e" followed by a combining acute accent; NFC folds it to U+00E9.
	decomposed := "CODE,DESCRIPTION\n1,Cafe\u0301 chiller\n"

	tests := []struct {
		name  string
		input []byte
	}{
		{"utf-8", []byte(text)},
		{"utf-8 bom", append([]byte{0xEF, 0xBB, 0xBF}, text...)},
		{"utf-16 bom", []byte(utf16)},
		{"windows-1252", []byte(cp1252)},
		{"decomposed", []byte(decomposed)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rows, err := ReadRows(bytes.NewReader(tt.input), []string{ColCode, ColDescription})
			if err != nil {
				t.Fatalf("ReadRows: %v", err)
			}
			if len(rows) != 1 || rows[0].Get(ColDescription) != "Café chiller" {
				t.Errorf("rows = %+v", rows)
			}
		})
	}
}

type mockAssets struct {
	mu     sync.Mutex
	assets []facilities.MEAsset
	saved  []facilities.MEAsset
	finds  int
}

func (m *mockAssets) ResolveLocation(_ context.Context, property, _ string) (facilities.Location, error) {
	if property != "0012" {
		return facilities.Location{}, &facilities.AmbiguousMatchError{Resource: facilities.ResourceProperty, Filter: facilities.Where("Code", property)}
	}
	return facilities.Location{PropertyRef: 500}, nil
}

func (m *mockAssets) FindMEAssets(_ context.Context, filter facilities.Filter) ([]facilities.MEAsset, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.finds++
	var out []facilities.MEAsset
	for _, a := range m.assets {
		if matches(a, filter) {
			out = append(out, a)
		}
	}
	return out, nil
}

func matches(a facilities.MEAsset, f facilities.Filter) bool {
	fields := map[string]string{"Code": a.Code, "Name": a.Name, "AssetTag": a.AssetTag}
	for field, cond := range f {
		if fields[field] != cond.Eq {
			return false
		}
	}
	return true
}

func (m *mockAssets) SaveMEAsset(_ context.Context, a facilities.MEAsset) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, a)
	return nil
}

type mockRecorder struct {
	runs []runstore.Run
}

func (m *mockRecorder) RecordRun(_ context.Context, r runstore.Run) error {
	m.runs = append(m.runs, r)
	return nil
}

func row(line int, kv ...string) Row {
	r := Row{Line: line, Fields: map[string]string{}}
	for i := 0; i+1 < len(kv); i += 2 {
		r.Fields[kv[i]] = kv[i+1]
	}
	return r
}

func TestRun_LegacyDescription(t *testing.T) {
	assets := &mockAssets{assets: []facilities.MEAsset{
		{Syscode: 1, Code: "0072340", Name: "Pump"},
		{Syscode: 2, Code: "0072341", Name: "Fan"},
		{Syscode: 3, Code: "0072341", Name: "Fan"},
	}}
	rec := &mockRecorder{}
	r := NewReconciler(assets, rec)

	rows := []Row{
		row(2, ColCode, "0072340", ColBuilding, "0012", ColRoom, "101", ColDescription, "Pump", ColEquipNumber, "EQ-1"),
		row(3, ColCode, "", ColBuilding, "0012", ColDescription, "Pump"),
		row(4, ColCode, "000", ColBuilding, "0012", ColDescription, "Pump"),
		row(5, ColCode, "0072341", ColBuilding, "0012", ColDescription, "Fan", ColEquipNumber, "EQ-2"),
		row(6, ColCode, "12A", ColBuilding, "0012", ColDescription, "Pump"),
		row(7, ColCode, "0072340", ColBuilding, "0999", ColDescription, "Pump"),
		row(8, ColCode, "999", ColBuilding, "0012", ColDescription, "Nothing"),
	}

	res, err := r.Run(context.Background(), LegacyDescription, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}

	if res.Succeeded != 1 || res.NoBarcode != 2 || res.Failed != 4 {
		t.Errorf("result = %+v", res)
	}
	if len(res.Failures) != 6 {
		t.Fatalf("failures = %+v", res.Failures)
	}
	if res.Failures[0].Line != 3 || res.Failures[0].Error != "No barcode" {
		t.Errorf("first failure = %+v", res.Failures[0])
	}
	if !strings.Contains(res.Failures[2].Error, "found 2") {
		t.Errorf("duplicate match failure = %+v", res.Failures[2])
	}
	if !strings.Contains(res.Failures[5].Error, "found 0") {
		t.Errorf("no match failure = %+v", res.Failures[5])
	}

	if len(assets.saved) != 1 {
		t.Fatalf("saved %d assets", len(assets.saved))
	}
	if got := assets.saved[0]; got.Syscode != 1 || got.LegacyDescription != "EQ-1" || got.Name != "Pump" {
		t.Errorf("saved = %+v", got)
	}

	if len(rec.runs) != 1 || rec.runs[0].Variant != LegacyDescription.Name || rec.runs[0].Skipped != 2 {
		t.Errorf("recorded = %+v", rec.runs)
	}
}

func TestRun_CommonAssets(t *testing.T) {
	assets := &mockAssets{assets: []facilities.MEAsset{
		{Syscode: 9, Code: "0072340", Name: "old", AssetTag: "T-1"},
	}}
	r := NewReconciler(assets, nil)

	rows := []Row{row(2,
		ColCode, "0072340", ColAssetTag, "T-1", ColBuilding, "0012", ColRoom, "",
		ColEquipmentNumber, "EQ-9", ColDescription, "Chiller", ColConcatenation, "remark",
	)}

	res, err := r.Run(context.Background(), CommonAssets, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Succeeded != 1 {
		t.Fatalf("result = %+v", res)
	}
	got := assets.saved[0]
	if got.LegacyDescription != "EQ-9" || got.Name != "Chiller" || got.Dossier != "remark" || got.AssetTag != "T-1" {
		t.Errorf("saved = %+v", got)
	}
}

func TestRun_NoBarcodeSkipsLookups(t *testing.T) {
	assets := &mockAssets{}
	r := NewReconciler(assets, nil)

	if _, err := r.Run(context.Background(), LegacyDescription, []Row{row(2, ColCode, "")}); err != nil {
		t.Fatalf("Run: %v", err)
	}
	if assets.finds != 0 {
		t.Error("rows without a barcode should not query assets")
	}
}

func TestVariantByName(t *testing.T) {
	for _, name := range []string{"legacy-description", "common-assets"} {
		v, err := VariantByName(name)
		if err != nil || v.Name != name {
			t.Errorf("VariantByName(%q) = %v, %v", name, v.Name, err)
		}
	}
	if _, err := VariantByName("other"); err == nil {
		t.Error("expected error for unknown variant")
	}
}
