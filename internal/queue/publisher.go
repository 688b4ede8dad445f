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

// Package queue publishes jack validation reports to a Redis list that the
// data stewards' review tooling consumes.
package queue

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/goccy/go-json"
	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// IssueReport is one jack's validation outcome, pushed when a rule fired.
type IssueReport struct {
	ID        string    `json:"id"`
	RunID     string    `json:"run_id"`
	JackID    string    `json:"jack_id"`
	Jack      string    `json:"jack"`
	Issues    []string  `json:"issues"`
	Warnings  int       `json:"warnings"`
	Errors    int       `json:"errors"`
	Rejected  bool      `json:"rejected"`
	CreatedAt time.Time `json:"created_at"`
}

// Publisher pushes issue reports onto a Redis list.
type Publisher struct {
	rdb       *redis.Client
	queueName string
}

// NewPublisher creates a new Redis publisher targeting the specified list.
func NewPublisher(rdb *redis.Client, queueName string) *Publisher {
	return &Publisher{
		rdb:       rdb,
		queueName: queueName,
	}
}

// PublishIssues assigns the report an id when it has none and LPUSHes it.
func (p *Publisher) PublishIssues(ctx context.Context, report IssueReport) error {
	msg, err := encode(&report)
	if err != nil {
		return err
	}

	if err := p.rdb.LPush(ctx, p.queueName, msg).Err(); err != nil {
		return fmt.Errorf("redis LPUSH: %w", err)
	}

	slog.Debug("published issue report",
		"report_id", report.ID,
		"jack_id", report.JackID,
		"queue", p.queueName,
	)

	return nil
}

// Ping checks the Redis connection.
func (p *Publisher) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 2*time.Second)
	defer cancel()
	return p.rdb.Ping(ctx).Err()
}

// encode fills in the id and timestamp when unset and renders the message.
func encode(report *IssueReport) ([]byte, error) {
	if report.ID == "" {
		report.ID = uuid.NewString()
	}
	if report.CreatedAt.IsZero() {
		report.CreatedAt = time.Now().UTC()
	}
	msg, err := json.Marshal(report)
	if err != nil {
		return nil, fmt.Errorf("marshal issue report: %w", err)
	}
	return msg, nil
}
