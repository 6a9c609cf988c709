// Copyright 2019 Google LLC
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

// Package trial defines the value types flowing through one search iteration:
// the candidate pipeline under evaluation, the recorded outcome, and the
// cancellable context the evaluation runs inside.
package trial

import (
	"time"

	"github.com/rs/xid"
)

// Goal is the direction a score is compared in.
type Goal int

const (
	// Maximize means higher scores are better.
	Maximize Goal = iota
	// Minimize means lower scores are better.
	Minimize
)

// Candidate describes one pipeline configuration to evaluate.  Candidates are
// produced by the suggester and never modified afterwards.
type Candidate struct {
	ID     string
	Params map[string]interface{}
}

// NewCandidate assigns a fresh id to the given parameter set.
func NewCandidate(params map[string]interface{}) Candidate {
	return Candidate{
		ID:     xid.New().String(),
		Params: params,
	}
}

// Outcome is the recorded result of evaluating one candidate.  It is created
// exactly once per iteration, appended to the ledger, and never mutated.
type Outcome struct {
	Candidate Candidate
	Score     float64
	Goal      Goal
	Success   bool
	Failure   string
	Duration  time.Duration
}

// Better reports whether o scored better than other, honoring the goal
// direction.  Failed outcomes never beat successful ones.
func (o Outcome) Better(other Outcome) bool {
	if o.Success != other.Success {
		return o.Success
	}
	if o.Goal == Minimize {
		return o.Score < other.Score
	}
	return o.Score > other.Score
}
