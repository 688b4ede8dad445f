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

package directory

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"slices"
	"strings"
	"time"

	"github.com/goccy/go-json"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/oauth2"

	"github.com/campusfm/assetsync/internal/httperr"
)

// LoginConfig describes how to obtain a Directory API JWT.
type LoginConfig struct {
	URL    string
	APIKey string
	Scopes []string
}

// ScopeError means the login endpoint did not grant a requested scope.
type ScopeError struct {
	Scope    string
	Accepted []string
}

func (e *ScopeError) Error() string {
	return fmt.Sprintf("requested scope %q is not in the set of accepted scopes %v", e.Scope, e.Accepted)
}

// loginResponse is the body returned by the JWT login endpoint.
type loginResponse struct {
	JWT            string   `json:"jwt"`
	AcceptedScopes []string `json:"accepted_scopes"`
}

// Login exchanges the API key for a JWT. When scopes are requested, every one
// of them must appear in the accepted list or a *ScopeError is returned.
func Login(ctx context.Context, httpClient *http.Client, cfg LoginConfig) (*oauth2.Token, error) {
	loginURL := cfg.URL
	if len(cfg.Scopes) > 0 {
		loginURL += "?" + url.Values{"scope": {strings.Join(cfg.Scopes, " ")}}.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, loginURL, nil)
	if err != nil {
		return nil, fmt.Errorf("build login request: %w", err)
	}
	req.Header.Set("Authorization", cfg.APIKey)

	resp, err := httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}
	defer resp.Body.Close()

	if err := httperr.Check(resp); err != nil {
		return nil, fmt.Errorf("login: %w", err)
	}

	var body loginResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("decode login response: %w", err)
	}
	if body.JWT == "" {
		return nil, fmt.Errorf("login response did not contain a jwt")
	}

	if len(cfg.Scopes) > 0 {
		slog.Info("directory login scopes accepted", "accepted_scopes", body.AcceptedScopes)
		for _, scope := range cfg.Scopes {
			if !slices.Contains(body.AcceptedScopes, scope) {
				return nil, &ScopeError{Scope: scope, Accepted: body.AcceptedScopes}
			}
		}
	}

	return &oauth2.Token{
		AccessToken: body.JWT,
		TokenType:   "Bearer",
		Expiry:      jwtExpiry(body.JWT),
	}, nil
}

// jwtExpiry reads the exp claim without verifying the signature. The token is
// only forwarded to the API that issued it, so verification is not ours to do.
// A token without a readable exp never expires from oauth2's point of view.
func jwtExpiry(raw string) time.Time {
	claims := jwt.MapClaims{}
	if _, _, err := jwt.NewParser().ParseUnverified(raw, claims); err != nil {
		slog.Debug("login jwt is not parseable, treating as non-expiring", "error", err)
		return time.Time{}
	}
	exp, err := claims.GetExpirationTime()
	if err != nil || exp == nil {
		return time.Time{}
	}
	return exp.Time
}

// loginSource is an oauth2.TokenSource that logs in on every call.
type loginSource struct {
	ctx        context.Context
	httpClient *http.Client
	cfg        LoginConfig
}

func (s *loginSource) Token() (*oauth2.Token, error) {
	return Login(s.ctx, s.httpClient, s.cfg)
}

// NewTokenSource returns a token source that logs in lazily and reuses the
// JWT until it expires. Pass it to oauth2.NewClient to get an *http.Client
// that sends "Authorization: Bearer <jwt>" on every request.
func NewTokenSource(ctx context.Context, httpClient *http.Client, cfg LoginConfig) oauth2.TokenSource {
	if httpClient == nil {
		httpClient = http.DefaultClient
	}
	return oauth2.ReuseTokenSource(nil, &loginSource{ctx: ctx, httpClient: httpClient, cfg: cfg})
}

// NewHTTPClient is a shorthand for an authenticated Directory API client.
func NewHTTPClient(ctx context.Context, cfg LoginConfig) *http.Client {
	return oauth2.NewClient(ctx, NewTokenSource(ctx, http.DefaultClient, cfg))
}
