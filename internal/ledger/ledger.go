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

// Package ledger keeps the append-only, insertion-ordered history of trial
// outcomes.  Only the driver goroutine appends; readers run synchronously on
// the same goroutine, so no locking is needed here.
package ledger

import (
	"opentune.dev/opentune/internal/trial"
)

// Ledger records every outcome of a run in chronological order.  It grows
// monotonically and is never pruned while the run is live.
type Ledger struct {
	outcomes  []trial.Outcome
	succeeded int
}

// New returns an empty ledger.
func New() *Ledger {
	return &Ledger{}
}

// Append records an outcome.  This is the only mutator.
func (l *Ledger) Append(o trial.Outcome) {
	l.outcomes = append(l.outcomes, o)
	if o.Success {
		l.succeeded++
	}
}

// All returns a copy of the recorded outcomes in insertion order.
func (l *Ledger) All() []trial.Outcome {
	out := make([]trial.Outcome, len(l.outcomes))
	copy(out, l.outcomes)
	return out
}

// Len is the number of recorded outcomes.
func (l *Ledger) Len() int {
	return len(l.outcomes)
}

// Last returns the most recent outcome, if any.
func (l *Ledger) Last() (trial.Outcome, bool) {
	if len(l.outcomes) == 0 {
		return trial.Outcome{}, false
	}
	return l.outcomes[len(l.outcomes)-1], true
}

// CountSucceeded is the number of successful outcomes so far.  It is
// maintained as a running counter because the driver consults it on every
// iteration.
func (l *Ledger) CountSucceeded() int {
	return l.succeeded
}
