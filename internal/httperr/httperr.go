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

// Package httperr turns non-2xx HTTP responses into typed errors so callers
// can branch on the status code with errors.As.
package httperr

import (
	"errors"
	"fmt"
	"io"
	"net/http"
)

// maxBody bounds how much of an error response body is kept.
const maxBody = 512

// Error is a failed HTTP exchange.
type Error struct {
	Method     string
	URL        string
	StatusCode int
	Body       string
}

func (e *Error) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("%s %s returned HTTP %d", e.Method, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s returned HTTP %d: %s", e.Method, e.URL, e.StatusCode, e.Body)
}

// Check returns nil for 2xx responses and an *Error otherwise. The body is
// read (up to a limit) but not closed.
func Check(resp *http.Response) error {
	if resp.StatusCode >= 200 && resp.StatusCode < 300 {
		return nil
	}
	body, _ := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	e := &Error{
		StatusCode: resp.StatusCode,
		Body:       string(body),
	}
	if resp.Request != nil {
		e.Method = resp.Request.Method
		if resp.Request.URL != nil {
			u := *resp.Request.URL
			u.RawQuery = "" // may carry access keys
			e.URL = u.String()
		}
	}
	return e
}

// StatusCode extracts the HTTP status from err, or 0 if err is not an *Error.
func StatusCode(err error) int {
	var he *Error
	if errors.As(err, &he) {
		return he.StatusCode
	}
	return 0
}
