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

// Package jack validates and normalizes network jack records before they are
// written to the Facilities System.
//
// Validate and Normalize are pure functions of the record and an immutable
// set of reference codes, so they are safe to call from multiple goroutines.
package jack

import (
	"strings"

	"github.com/campusfm/assetsync/internal/models"
)

// Issue texts, in rule order. Downstream reports key on these strings.
const (
	IssueMissingBuildingRef = "Missing building ref"
	IssueInvalidBuilding    = "Invalid building code"
	IssueEmptyJack          = "Jack is is null or empty"
	IssueEmptyJackID        = "Jack ID is null or empty"
	IssueSpaceInJack        = "Space in jack"
	IssueSpaceInJackID      = "Space in jack id"
	IssueInvalidCable       = "Invalid ethernet cable category"
	IssueInvalidSpace       = "Space is not a valid Planon space"
)

// ReferenceSets answers membership questions about known location codes.
// refdata.Snapshot implements it.
type ReferenceSets interface {
	HasProperty(code string) bool
	HasSpace(code string) bool
}

// Result is the outcome of validating one record. Issues are in rule order.
type Result struct {
	Issues   []string
	Warnings int
	Errors   int
}

// OK reports whether the record may be normalized.
func (r Result) OK() bool { return r.Errors == 0 }

// Has reports whether issue was raised.
func (r Result) Has(issue string) bool {
	for _, i := range r.Issues {
		if i == issue {
			return true
		}
	}
	return false
}

func (r *Result) warn(issue string) {
	r.Warnings++
	r.Issues = append(r.Issues, issue)
}

func (r *Result) fail(issue string) {
	r.Errors++
	r.Issues = append(r.Issues, issue)
}

// Validator applies the jack rules against a reference snapshot.
type Validator struct {
	refs ReferenceSets
}

// NewValidator creates a validator bound to refs.
func NewValidator(refs ReferenceSets) *Validator {
	return &Validator{refs: refs}
}

// Validate runs every rule in order. Rules never short-circuit each other:
// rule 7 runs even when the building ref was already rejected.
func (v *Validator) Validate(j models.RawJack) Result {
	var res Result

	// 1: building ref present and known
	if j.BuildingRef.Missing() {
		res.fail(IssueMissingBuildingRef)
	} else if !v.refs.HasProperty(j.BuildingRef.Padded()) {
		res.fail(IssueInvalidBuilding)
	}

	// 2, 3: jack and jack id present
	if isBlank(j.Jack) {
		res.fail(IssueEmptyJack)
	}
	if isBlank(j.JackID) {
		res.fail(IssueEmptyJackID)
	}

	// 4, 5: no spaces inside identifiers
	if strings.Contains(j.Jack, " ") {
		res.warn(IssueSpaceInJack)
	}
	if strings.Contains(j.JackID, " ") {
		res.warn(IssueSpaceInJackID)
	}

	// 6: recognised cable category
	if j.CableType != "" && !IsCableCategory(j.CableType) {
		res.warn(IssueInvalidCable)
	}

	// 7: the padded building ref joined with the unpadded space id
	if !v.refs.HasSpace(SpaceCode(j)) {
		res.warn(IssueInvalidSpace)
	}

	return res
}

// SpaceCode builds the composite key rule 7 looks up.
func SpaceCode(j models.RawJack) string {
	var space string
	if j.SpaceID != nil {
		space = *j.SpaceID
	}
	return j.BuildingRef.Padded() + "-" + space
}

// isBlank is true for empty or whitespace-only strings.
func isBlank(s string) bool {
	return strings.TrimSpace(s) == ""
}
