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

package ledger

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"opentune.dev/opentune/internal/trial"
)

func TestLedgerEmpty(t *testing.T) {
	assert := assert.New(t)
	l := New()
	assert.Equal(0, l.Len())
	assert.Equal(0, l.CountSucceeded())
	assert.Empty(l.All())
	_, ok := l.Last()
	assert.False(ok)
}

func TestCountSucceededInterleavings(t *testing.T) {
	tests := []struct {
		name      string
		successes []bool
		want      int
	}{
		{"all succeed", []bool{true, true, true}, 3},
		{"all fail", []bool{false, false, false}, 0},
		{"alternating", []bool{true, false, true, false, true}, 3},
		{"leading failures", []bool{false, false, true, true}, 2},
		{"trailing failures", []bool{true, true, false, false}, 2},
	}
	for _, tc := range tests {
		tc := tc
		t.Run(tc.name, func(t *testing.T) {
			l := New()
			for _, s := range tc.successes {
				l.Append(trial.Outcome{Success: s})
			}
			assert.Equal(t, tc.want, l.CountSucceeded())
			assert.Equal(t, len(tc.successes), l.Len())
		})
	}
}

func TestLedgerPreservesInsertionOrder(t *testing.T) {
	assert := assert.New(t)
	l := New()
	first := trial.Outcome{Candidate: trial.NewCandidate(nil), Score: 0.1, Success: true}
	second := trial.Outcome{Candidate: trial.NewCandidate(nil), Score: 0.9}
	l.Append(first)
	l.Append(second)

	all := l.All()
	assert.Len(all, 2)
	assert.Equal(first.Candidate.ID, all[0].Candidate.ID)
	assert.Equal(second.Candidate.ID, all[1].Candidate.ID)

	last, ok := l.Last()
	assert.True(ok)
	assert.Equal(second.Candidate.ID, last.Candidate.ID)
}

func TestAllReturnsCopy(t *testing.T) {
	assert := assert.New(t)
	l := New()
	l.Append(trial.Outcome{Score: 0.5})

	all := l.All()
	all[0].Score = 99

	fresh := l.All()
	assert.Equal(0.5, fresh[0].Score)
}
