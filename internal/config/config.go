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

// Package config loads configuration from config.yaml and environment variables.
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

// DefaultPath is used when neither an explicit path nor CONFIG_PATH is set.
const DefaultPath = "config/config.yaml"

// DirectoryConfig holds the Directory API settings.
type DirectoryConfig struct {
	BaseURL            string   `yaml:"base_url" validate:"required,url"`
	APIKey             string   `yaml:"api_key" validate:"required"`
	LoginPath          string   `yaml:"login_path"`
	Scopes             []string `yaml:"scopes"`
	JacksResource      string   `yaml:"jacks_resource" validate:"required"`
	PropertiesResource string   `yaml:"properties_resource"`
	SpacesResource     string   `yaml:"spaces_resource"`
	PeopleResource     string   `yaml:"people_resource"`
	ChangeURL          string   `yaml:"resource_change_url" validate:"omitempty,url"`
	PageSize           int      `yaml:"page_size" validate:"gte=0"`
}

// LoginURL joins the base URL and login path.
func (d DirectoryConfig) LoginURL() string {
	return strings.TrimRight(d.BaseURL, "/") + "/" + strings.TrimLeft(d.LoginPath, "/")
}

// FacilitiesConfig holds the Facilities System REST settings.
type FacilitiesConfig struct {
	RestURL           string  `yaml:"rest_url" validate:"required,url"`
	AccessKey         string  `yaml:"access_key" validate:"required"`
	RequestsPerSecond float64 `yaml:"requests_per_second" validate:"gte=0"`
	DepartmentRef     int64   `yaml:"department_ref" validate:"gt=0"`
	JackItemGroup     string  `yaml:"jack_item_group"`
	JackNamePrefix    string  `yaml:"jack_name_prefix"`
}

// CacheConfig selects the reference data cache.
type CacheConfig struct {
	Backend string `yaml:"backend" validate:"oneof=file badger none"`
	Path    string `yaml:"path"`
}

// RedisConfig enables the fingerprint filter and the issue queue. Both are
// off when URL is empty.
type RedisConfig struct {
	URL            string        `yaml:"url" validate:"omitempty,url"`
	IssuesQueue    string        `yaml:"issues_queue"`
	FingerprintTTL time.Duration `yaml:"fingerprint_ttl" validate:"gte=0"`
}

// Config holds all configuration for assetsync.
type Config struct {
	Directory   DirectoryConfig  `yaml:"directory"`
	Facilities  FacilitiesConfig `yaml:"facilities"`
	Cache       CacheConfig      `yaml:"cache"`
	Redis       RedisConfig      `yaml:"redis"`
	DatabaseURL string           `yaml:"database_url"`

	HTTPTimeout time.Duration `yaml:"-"`
}

// Load reads the YAML file at path (CONFIG_PATH or DefaultPath when empty),
// expands ${VAR} references, applies defaults and validates the result.
func Load(path string) (*Config, error) {
	if path == "" {
		path = envOrDefault("CONFIG_PATH", DefaultPath)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config file %s: %w", path, err)
	}

	// Expand ${VAR} references in the YAML
	expanded := os.ExpandEnv(string(data))

	var cfg Config
	if err := yaml.Unmarshal([]byte(expanded), &cfg); err != nil {
		return nil, fmt.Errorf("parse config YAML: %w", err)
	}

	cfg.applyDefaults()

	if err := validate(&cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	d := &c.Directory
	d.APIKey = firstNonEmpty(d.APIKey, os.Getenv("DIRECTORY_API_KEY"))
	d.LoginPath = firstNonEmpty(d.LoginPath, "/jwt")
	d.PropertiesResource = firstNonEmpty(d.PropertiesResource, "facilities/properties")
	d.SpacesResource = firstNonEmpty(d.SpacesResource, "facilities/spaces")
	d.PeopleResource = firstNonEmpty(d.PeopleResource, "people")
	if d.PageSize == 0 {
		d.PageSize = envOrDefaultInt("DIRECTORY_PAGE_SIZE", 1000)
	}

	f := &c.Facilities
	f.AccessKey = firstNonEmpty(f.AccessKey, os.Getenv("FACILITIES_ACCESS_KEY"))
	if f.DepartmentRef == 0 {
		f.DepartmentRef = 167
	}

	c.Cache.Backend = firstNonEmpty(c.Cache.Backend, "file")
	c.Cache.Path = firstNonEmpty(c.Cache.Path, "cache")

	c.Redis.URL = firstNonEmpty(c.Redis.URL, os.Getenv("REDIS_URL"))
	c.Redis.IssuesQueue = firstNonEmpty(c.Redis.IssuesQueue, "jack_issues")

	c.DatabaseURL = firstNonEmpty(c.DatabaseURL, os.Getenv("DATABASE_URL"))
	c.HTTPTimeout = envOrDefaultDuration("HTTP_TIMEOUT", 60*time.Second)
}

func validate(cfg *Config) error {
	v := validator.New(validator.WithRequiredStructEnabled())
	err := v.Struct(cfg)
	if err == nil {
		return nil
	}

	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return fmt.Errorf("validate config: %w", err)
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		if fe.Param() != "" {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s=%s", fe.Namespace(), fe.Tag(), fe.Param()))
		} else {
			msgs = append(msgs, fmt.Sprintf("%s: failed %s", fe.Namespace(), fe.Tag()))
		}
	}
	return fmt.Errorf("invalid config: %s", strings.Join(msgs, "; "))
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func envOrDefaultInt(key string, fallback int) int {
	if v := os.Getenv(key); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			return n
		}
	}
	return fallback
}

func envOrDefaultDuration(key string, fallback time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return fallback
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
