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

// Package reconcile applies CSV exports from the legacy maintenance system to
// existing Facilities System assets, one row at a time.
package reconcile

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"slices"
	"strings"
	"unicode/utf8"

	"golang.org/x/text/encoding/charmap"
	"golang.org/x/text/encoding/unicode"
	"golang.org/x/text/transform"
	"golang.org/x/text/unicode/norm"
)

// Row is one CSV data row keyed by header name.
type Row struct {
	Line   int
	Fields map[string]string
}

// Get returns the value of column, or "" when the column is absent.
func (r Row) Get(column string) string {
	return r.Fields[column]
}

// MissingColumnsError lists required columns the header lacks.
type MissingColumnsError struct {
	Columns []string
}

func (e *MissingColumnsError) Error() string {
	return "csv: missing required column(s): " + strings.Join(e.Columns, ", ")
}

var (
	bomUTF8    = []byte{0xEF, 0xBB, 0xBF}
	bomUTF16LE = []byte{0xFF, 0xFE}
	bomUTF16BE = []byte{0xFE, 0xFF}
)

// ReadRows reads a comma-delimited file with a header row. UTF-8 (with or
// without BOM) and BOM-marked UTF-16 are decoded as such; anything else that
// is not valid UTF-8 is read as Windows-1252. Text is NFC-normalized.
func ReadRows(r io.Reader, required []string) ([]Row, error) {
	raw, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read csv: %w", err)
	}

	text, err := decode(raw)
	if err != nil {
		return nil, err
	}

	cr := csv.NewReader(bytes.NewReader(norm.NFC.Bytes(text)))
	cr.FieldsPerRecord = -1

	header, err := cr.Read()
	if errors.Is(err, io.EOF) {
		return nil, &MissingColumnsError{Columns: required}
	}
	if err != nil {
		return nil, fmt.Errorf("read csv header: %w", err)
	}
	for i := range header {
		header[i] = strings.TrimSpace(header[i])
	}

	var missing []string
	for _, col := range required {
		if !slices.Contains(header, col) {
			missing = append(missing, col)
		}
	}
	if len(missing) > 0 {
		return nil, &MissingColumnsError{Columns: missing}
	}

	var rows []Row
	for {
		rec, err := cr.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("read csv: %w", err)
		}
		line, _ := cr.FieldPos(0)
		row := Row{Line: line, Fields: make(map[string]string, len(header))}
		for i, name := range header {
			if i < len(rec) {
				row.Fields[name] = rec[i]
			}
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func decode(raw []byte) ([]byte, error) {
	switch {
	case bytes.HasPrefix(raw, bomUTF8):
		return raw[len(bomUTF8):], nil
	case bytes.HasPrefix(raw, bomUTF16LE), bytes.HasPrefix(raw, bomUTF16BE):
		dec := unicode.BOMOverride(unicode.UTF8.NewDecoder())
		out, _, err := transform.Bytes(dec, raw)
		if err != nil {
			return nil, fmt.Errorf("decode utf-16 csv: %w", err)
		}
		return out, nil
	case utf8.Valid(raw):
		return raw, nil
	default:
		out, _, err := transform.Bytes(charmap.Windows1252.NewDecoder(), raw)
		if err != nil {
			return nil, fmt.Errorf("decode windows-1252 csv: %w", err)
		}
		return out, nil
	}
}
