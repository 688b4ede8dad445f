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

package models

import (
	"bytes"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/goccy/go-json"
)

// Ref is an identifier the Directory API sends either as a JSON number or as
// a string. It keeps the textual form and whether it arrived as a number.
type Ref struct {
	text   string
	number bool
}

// StringRef returns the Ref for a string identifier.
func StringRef(s string) Ref { return Ref{text: s} }

// NumberRef returns the Ref for a numeric identifier.
func NumberRef(n int64) Ref {
	return Ref{text: strconv.FormatInt(n, 10), number: true}
}

// UnmarshalJSON accepts a number, a string, or null.
func (r *Ref) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*r = Ref{}
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return fmt.Errorf("decode ref: %w", err)
		}
		*r = Ref{text: s}
		return nil
	}
	if _, err := strconv.ParseFloat(string(data), 64); err != nil {
		return fmt.Errorf("decode ref: %s is neither a number nor a string", data)
	}
	*r = Ref{text: string(data), number: true}
	return nil
}

// MarshalJSON writes numbers bare and everything else as a JSON string.
func (r Ref) MarshalJSON() ([]byte, error) {
	if r.number {
		return []byte(r.text), nil
	}
	return json.Marshal(r.text)
}

// String returns the raw textual form.
func (r Ref) String() string { return r.text }

// Missing reports whether the ref is absent: null, the empty string, or a
// number equal to zero. Non-empty strings such as "0" or " " are present.
func (r Ref) Missing() bool {
	if !r.number {
		return r.text == ""
	}
	n, err := strconv.ParseFloat(r.text, 64)
	return err == nil && n == 0
}

// Padded left-pads the ref with zeros to four characters. A leading sign is
// kept in front of the padding.
func (r Ref) Padded() string {
	return ZeroPad(r.text, 4)
}

// ZeroPad pads s on the left with zeros up to width characters.
func ZeroPad(s string, width int) string {
	if len(s) >= width {
		return s
	}
	pad := strings.Repeat("0", width-len(s))
	if s != "" && (s[0] == '+' || s[0] == '-') {
		return s[:1] + pad + s[1:]
	}
	return pad + s
}

// Date is a calendar date that decodes from YYYY-MM-DD or an RFC 3339 timestamp.
type Date struct {
	time.Time
}

const isoDate = "2006-01-02"

// UnmarshalJSON parses a quoted date or timestamp. Empty strings decode as zero.
func (d *Date) UnmarshalJSON(data []byte) error {
	if bytes.Equal(bytes.TrimSpace(data), []byte("null")) {
		d.Time = time.Time{}
		return nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return fmt.Errorf("decode date: %w", err)
	}
	s = strings.TrimSpace(s)
	if s == "" {
		d.Time = time.Time{}
		return nil
	}
	for _, layout := range []string{isoDate, time.RFC3339, "2006-01-02T15:04:05"} {
		if t, err := time.Parse(layout, s); err == nil {
			d.Time = t
			return nil
		}
	}
	return fmt.Errorf("decode date: unrecognised format %q", s)
}

// MarshalJSON renders the date as YYYY-MM-DD, or null when zero.
func (d Date) MarshalJSON() ([]byte, error) {
	if d.IsZero() {
		return []byte("null"), nil
	}
	return []byte(`"` + d.ISO() + `"`), nil
}

// ISO returns the YYYY-MM-DD form.
func (d Date) ISO() string {
	return d.Format(isoDate)
}
