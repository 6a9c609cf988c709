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

// Package search runs the anytime, budget-constrained pipeline search loop.
package search

import (
	"context"
	"time"

	"opentune.dev/opentune/internal/trial"
)

// StopReason explains why a run terminated.  All reasons are terminal and
// mutually exclusive.
type StopReason string

const (
	// StopReasonConverged indicates a perfect-score outcome was observed.
	StopReasonConverged StopReason = "converged"
	// StopReasonExhausted indicates the trial count reached the configured maximum.
	StopReasonExhausted StopReason = "exhausted"
	// StopReasonTimeExpired indicates the wall-clock budget ran out.
	StopReasonTimeExpired StopReason = "time_expired"
	// StopReasonExternallyCancelled indicates the caller's context was cancelled.
	StopReasonExternallyCancelled StopReason = "externally_cancelled"
	// StopReasonSearchSpaceEmpty indicates the suggester had no candidate left.
	StopReasonSearchSpaceEmpty StopReason = "search_space_empty"
	// StopReasonAborted indicates the first three trials all failed.
	StopReasonAborted StopReason = "aborted"
)

// Budget bounds one run.  It is immutable for the lifetime of the run.
type Budget struct {
	// TimeLimit is the wall-clock budget.  Zero allows exactly one iteration
	// before the run stops on time grounds; it does not mean unlimited.
	TimeLimit time.Duration
	// NoTimeLimit disables the wall-clock budget entirely.  It exists
	// because a zero TimeLimit is the degenerate single-iteration budget.
	NoTimeLimit bool
	// MaxTrials caps the number of evaluated candidates.  Zero or negative
	// means no cap.
	MaxTrials int
}

// Suggester proposes the next candidate given the accumulated history.  It
// must be deterministic for identical history and configuration, and returns
// nil once the search space is exhausted.
type Suggester interface {
	SuggestNext(history []trial.Outcome) *trial.Candidate
}

// Runner evaluates one candidate inside the given trial context.  Ordinary
// evaluation failure is encoded in the outcome's Success flag; a non-nil
// error is reserved for exceptional conditions and is recorded as a failed
// outcome by the driver.  Runners must observe cancellation of the context
// and return promptly rather than hang.
type Runner interface {
	Evaluate(tc *trial.Context, c trial.Candidate) (trial.Outcome, error)
}

// Classifier decides whether a successful score is perfect, ending the
// search with StopReasonConverged.
type Classifier interface {
	IsPerfect(score float64) bool
}

// Reporter receives each outcome right after it is recorded.  Delivery is
// best effort: errors and panics are logged and never affect the run.
type Reporter interface {
	Report(o trial.Outcome) error
}

// Archive persists outcomes outside the run, best effort.
type Archive interface {
	Write(ctx context.Context, o trial.Outcome) error
}
