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

package jack

import (
	"fmt"
	"strings"

	"github.com/campusfm/assetsync/internal/models"
)

// ValidationError is returned by Normalize for a record with errors.
type ValidationError struct {
	JackID models.Ref
	Result Result
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("jack %s rejected with %d error(s): %s",
		e.JackID, e.Result.Errors, strings.Join(e.Result.Issues, "; "))
}

// Normalize builds the canonical form of j. res must be the result of
// validating j; records with errors are refused with a *ValidationError.
func Normalize(j models.RawJack, res Result) (*models.CanonicalJack, error) {
	if !res.OK() {
		return nil, &ValidationError{JackID: j.ID, Result: res}
	}

	out := &models.CanonicalJack{
		ID:          j.ID,
		BuildingRef: j.BuildingRef.Padded(),
		Jack:        JackCode(j.Jack, j.JackID),
		Comments:    j.Comments,
		LegacyPatch: j.LegacyPatch,
		SpaceID:     j.SpaceID,
		CableType:   j.CableType,
	}

	if res.Has(IssueInvalidSpace) {
		out.SpaceID = nil
	}

	if j.WiringDate != nil && !j.WiringDate.IsZero() {
		iso := j.WiringDate.ISO()
		out.WiringDate = &iso
	}

	return out, nil
}

// JackCode joins the jack number with all whitespace removed to the jack id
// with whitespace runs collapsed to single spaces.
func JackCode(jack, jackID string) string {
	return strings.Join(strings.Fields(jack), "") + "-" + strings.Join(strings.Fields(jackID), " ")
}

// Transform validates and normalizes in one step.
func (v *Validator) Transform(j models.RawJack) (*models.CanonicalJack, Result, error) {
	res := v.Validate(j)
	out, err := Normalize(j, res)
	return out, res, err
}
