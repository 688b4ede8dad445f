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

// Package facilities is a REST client for the Facilities System (the
// maintenance-management system assets are written to).
package facilities

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
	"golang.org/x/time/rate"

	"github.com/campusfm/assetsync/internal/httperr"
)

// DefaultDepartmentRef is the department every synchronised asset belongs to.
const DefaultDepartmentRef = 167

// Resource names on the REST API.
const (
	ResourceProperty  = "Property"
	ResourceSpace     = "Space"
	ResourceItemGroup = "ItemGroup"
	ResourceAsset     = "UsrAsset"
	ResourceMEAsset   = "UsrMEAsset"
	assetEndpoint     = "asset"
)

// Client talks to the Facilities System REST API. Every request carries the
// access key as a query parameter and waits on a shared rate limiter.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	accessKey     string
	departmentRef int64
	limiter       *rate.Limiter
}

// ClientConfig holds the settings for a Facilities System client.
type ClientConfig struct {
	HTTPClient        *http.Client
	BaseURL           string
	AccessKey         string
	DepartmentRef     int64
	RequestsPerSecond float64
}

// NewClient creates a Facilities System client.
func NewClient(cfg ClientConfig) *Client {
	httpClient := cfg.HTTPClient
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	dept := cfg.DepartmentRef
	if dept == 0 {
		dept = DefaultDepartmentRef
	}
	limit := rate.Inf
	if cfg.RequestsPerSecond > 0 {
		limit = rate.Limit(cfg.RequestsPerSecond)
	}
	return &Client{
		httpClient:    httpClient,
		baseURL:       strings.TrimRight(cfg.BaseURL, "/"),
		accessKey:     cfg.AccessKey,
		departmentRef: dept,
		limiter:       rate.NewLimiter(limit, 1),
	}
}

// Condition is a single field comparison in a find filter.
type Condition struct {
	Eq any `json:"eq"`
}

// Filter maps field names to conditions. All conditions must hold.
type Filter map[string]Condition

// Where starts a filter with field == value.
func Where(field string, value any) Filter {
	return Filter{field: {Eq: value}}
}

// And adds field == value to the filter.
func (f Filter) And(field string, value any) Filter {
	f[field] = Condition{Eq: value}
	return f
}

// AmbiguousMatchError means a lookup that needs exactly one record found
// none or several.
type AmbiguousMatchError struct {
	Resource string
	Filter   Filter
	Count    int
}

func (e *AmbiguousMatchError) Error() string {
	parts := make([]string, 0, len(e.Filter))
	for field, cond := range e.Filter {
		parts = append(parts, fmt.Sprintf("%s=%v", field, cond.Eq))
	}
	return fmt.Sprintf("expected exactly one %s matching %s, found %d",
		e.Resource, strings.Join(parts, ","), e.Count)
}

// Find lists the records of resource that match filter and decodes them into
// out, which must be a pointer to a slice.
func (c *Client) Find(ctx context.Context, resource string, filter Filter, out any) error {
	if filter == nil {
		filter = Filter{}
	}
	body := map[string]any{"filter": filter}
	return c.do(ctx, http.MethodPost, resource+"/find", body, out)
}

// FindOne is Find for lookups that must match exactly one record.
func FindOne[T any](ctx context.Context, c *Client, resource string, filter Filter) (T, error) {
	var (
		zero  T
		found []T
	)
	if err := c.Find(ctx, resource, filter, &found); err != nil {
		return zero, err
	}
	if len(found) != 1 {
		return zero, &AmbiguousMatchError{Resource: resource, Filter: filter, Count: len(found)}
	}
	return found[0], nil
}

// do sends one request and decodes a 2xx JSON response into out when out is
// non-nil. Non-2xx responses become *httperr.Error.
func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	if err := c.limiter.Wait(ctx); err != nil {
		return fmt.Errorf("rate limiter: %w", err)
	}

	var body io.Reader
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("marshal %s body: %w", path, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.url(path), body)
	if err != nil {
		return fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Accept", "application/json")
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%s %s: %w", method, path, err)
	}
	defer resp.Body.Close()

	if err := httperr.Check(resp); err != nil {
		return err
	}

	if out == nil {
		return nil
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("decode %s response: %w", path, err)
	}
	return nil
}

func (c *Client) url(path string) string {
	q := url.Values{}
	q.Set("accesskey", c.accessKey)
	return c.baseURL + "/" + strings.TrimLeft(path, "/") + "?" + q.Encode()
}

func idPath(resource string, id int64) string {
	return resource + "/" + strconv.FormatInt(id, 10)
}
