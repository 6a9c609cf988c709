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

// Package metrics classifies trial scores.
package metrics

import (
	"opentune.dev/opentune/internal/trial"
)

// Threshold classifies a score as perfect once it meets a fixed threshold in
// the goal direction.
type Threshold struct {
	goal    trial.Goal
	perfect float64
}

// NewThreshold creates a classifier for the given goal direction.
func NewThreshold(goal trial.Goal, perfect float64) Threshold {
	return Threshold{
		goal:    goal,
		perfect: perfect,
	}
}

// IsPerfect reports whether score meets the perfection threshold.
func (t Threshold) IsPerfect(score float64) bool {
	if t.goal == trial.Minimize {
		return score <= t.perfect
	}
	return score >= t.perfect
}
