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

// Package suggest provides the built-in candidate suggesters.
package suggest

import (
	"math/rand"
	"sort"

	"opentune.dev/opentune/internal/trial"
)

// Random samples candidates uniformly from a finite parameter space.  The
// parameters it picks are a pure function of the root seed and the history
// length, so identical histories produce identical suggestions.
type Random struct {
	space map[string][]interface{}
	keys  []string
	seed  int64
	total int
}

// NewRandom creates a sampler over the given space.  The space is exhausted
// once as many candidates have been suggested as it holds combinations.
func NewRandom(space map[string][]interface{}, seed int64) *Random {
	keys := make([]string, 0, len(space))
	total := 1
	for k, vs := range space {
		keys = append(keys, k)
		total *= len(vs)
	}
	if len(space) == 0 {
		total = 0
	}
	sort.Strings(keys)
	return &Random{
		space: space,
		keys:  keys,
		seed:  seed,
		total: total,
	}
}

// SuggestNext returns the next candidate, or nil when the space is exhausted.
func (r *Random) SuggestNext(history []trial.Outcome) *trial.Candidate {
	if len(history) >= r.total {
		return nil
	}
	rng := rand.New(rand.NewSource(r.seed + int64(len(history))))
	params := make(map[string]interface{}, len(r.keys))
	for _, k := range r.keys {
		vs := r.space[k]
		params[k] = vs[rng.Intn(len(vs))]
	}
	c := trial.NewCandidate(params)
	return &c
}
