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

// Package directory is a client for the institutional Directory API: JWT
// login, integrity-checked paged reads, single-record reads, and change
// message acknowledgement.
package directory

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"

	"github.com/campusfm/assetsync/internal/httperr"
)

const (
	// DefaultPageSize is the number of records requested per page.
	DefaultPageSize = 1000

	// Pagination contract headers, only read from the first page.
	headerContinuation = "X-Request-Id"
	headerTotalCount   = "X-Total-Count"
)

// ErrNotFound is returned by helpers that need a record to exist.
var ErrNotFound = errors.New("directory: record not found")

// IntegrityError means the number of records collected across all pages did
// not match the total the server declared on the first page.
type IntegrityError struct {
	Resource  string
	Retrieved int
	Total     int
}

func (e *IntegrityError) Error() string {
	return fmt.Sprintf("directory %s: retrieved %d records but server declared %d",
		e.Resource, e.Retrieved, e.Total)
}

// Client reads resources from the Directory API. The httpClient must attach
// the bearer token (see NewTokenSource).
type Client struct {
	httpClient *http.Client
	baseURL    string
	pageSize   int
}

// NewClient creates a Directory API client.
func NewClient(httpClient *http.Client, baseURL string) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimRight(baseURL, "/"),
		pageSize:   DefaultPageSize,
	}
}

// WithPageSize overrides the page size. Non-positive values are ignored.
func (c *Client) WithPageSize(n int) *Client {
	if n > 0 {
		c.pageSize = n
	}
	return c
}

// FetchAll reads every record of a resource, page by page.
//
// The first page carries the base query. Its response establishes the
// continuation key and the total count, and every later page sends only the
// continuation key, page number and page size. Paging stops at an empty page
// or once the total is reached; a mismatch at that point is an
// *IntegrityError and nothing is returned.
func (c *Client) FetchAll(ctx context.Context, resource string, query url.Values) ([]json.RawMessage, error) {
	endpoint := c.resourceURL(resource)

	var (
		records         []json.RawMessage
		continuationKey string
		total           int
	)

	for page := 1; ; page++ {
		params := url.Values{}
		if page == 1 {
			for k, vs := range query {
				params[k] = append([]string(nil), vs...)
			}
		} else {
			params.Set("continuation_key", continuationKey)
		}
		params.Set("pagesize", strconv.Itoa(c.pageSize))
		params.Set("page", strconv.Itoa(page))

		slog.Info("getting page of results", "resource", resource, "page", page)

		items, header, err := c.fetchPage(ctx, endpoint+"?"+params.Encode())
		if err != nil {
			return nil, fmt.Errorf("directory %s page %d: %w", resource, page, err)
		}

		if page == 1 {
			continuationKey = header.Get(headerContinuation)
			total, err = strconv.Atoi(strings.TrimSpace(header.Get(headerTotalCount)))
			if err != nil {
				return nil, fmt.Errorf("directory %s: invalid %s header: %w", resource, headerTotalCount, err)
			}
			slog.Info("retrieving documents", "resource", resource, "total", total)
		}

		records = append(records, items...)

		if len(items) == 0 || len(records) == total {
			break
		}
	}

	if len(records) != total {
		return nil, &IntegrityError{Resource: resource, Retrieved: len(records), Total: total}
	}

	return records, nil
}

// Fetcher retrieves every record of a resource. *Client implements it.
type Fetcher interface {
	FetchAll(ctx context.Context, resource string, query url.Values) ([]json.RawMessage, error)
}

// FetchAllAs is FetchAll with each record decoded into T.
func FetchAllAs[T any](ctx context.Context, f Fetcher, resource string, query url.Values) ([]T, error) {
	raw, err := f.FetchAll(ctx, resource, query)
	if err != nil {
		return nil, err
	}
	out := make([]T, 0, len(raw))
	for i, r := range raw {
		var v T
		if err := json.Unmarshal(r, &v); err != nil {
			return nil, fmt.Errorf("decode %s record %d: %w", resource, i, err)
		}
		out = append(out, v)
	}
	return out, nil
}

// fetchPage performs one GET and returns the decoded list and the response headers.
func (c *Client) fetchPage(ctx context.Context, pageURL string) ([]json.RawMessage, http.Header, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, pageURL, nil)
	if err != nil {
		return nil, nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, nil, fmt.Errorf("fetch page: %w", err)
	}
	defer resp.Body.Close()

	if err := httperr.Check(resp); err != nil {
		return nil, nil, err
	}

	var items []json.RawMessage
	if err := json.NewDecoder(resp.Body).Decode(&items); err != nil {
		return nil, nil, fmt.Errorf("decode page: %w", err)
	}

	return items, resp.Header, nil
}

// Get reads a single record into v. A 404 is reported as (false, nil);
// every other failure is returned as an error.
func (c *Client) Get(ctx context.Context, resource, id string, v any) (bool, error) {
	u := c.resourceURL(resource) + "/" + url.PathEscape(id)

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return false, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false, fmt.Errorf("get %s/%s: %w", resource, id, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		slog.Debug("directory record not found", "resource", resource, "id", id)
		return false, nil
	}
	if err := httperr.Check(resp); err != nil {
		return false, err
	}

	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		return false, fmt.Errorf("decode %s/%s: %w", resource, id, err)
	}
	return true, nil
}

// Person is the subset of a people record assetsync uses.
type Person struct {
	NetID       string `json:"netid"`
	Name        string `json:"name"`
	Email       string `json:"email"`
	Department  string `json:"department,omitempty"`
	PrimaryRole string `json:"primary_affiliation,omitempty"`
}

// GetPerson looks up a person by NetID. It returns ErrNotFound on a 404.
func (c *Client) GetPerson(ctx context.Context, peopleResource, netID string) (*Person, error) {
	var p Person
	found, err := c.Get(ctx, peopleResource, netID, &p)
	if err != nil {
		return nil, err
	}
	if !found {
		return nil, fmt.Errorf("person %s: %w", netID, ErrNotFound)
	}
	return &p, nil
}

// DeleteChangeMessage acknowledges a resource change message so the queue
// stops redelivering it.
func (c *Client) DeleteChangeMessage(ctx context.Context, changeURL, messageID string) error {
	u := strings.TrimRight(changeURL, "/") + "/" + url.PathEscape(messageID)

	req, err := http.NewRequestWithContext(ctx, http.MethodDelete, u, nil)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("delete change message %s: %w", messageID, err)
	}
	defer resp.Body.Close()

	return httperr.Check(resp)
}

func (c *Client) resourceURL(resource string) string {
	if strings.HasPrefix(resource, "http://") || strings.HasPrefix(resource, "https://") {
		return strings.TrimRight(resource, "/")
	}
	return c.baseURL + "/" + strings.Trim(resource, "/")
}
