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

package trial

import (
	"context"
)

// Context is the isolated, cancellable state owned by a single evaluation.
// Each iteration gets a fresh Context; cancelling one cannot affect any other
// evaluation.  Runners observe cancellation through the embedded
// context.Context and must return promptly with a failed outcome.
type Context struct {
	context.Context

	cancel context.CancelFunc
	seed   int64
}

// NewContext creates the context for the ordinal-th iteration of a run.  The
// per-trial seed is derived from the run's root seed and the ordinal, so runs
// with the same root seed are reproducible iteration by iteration.
func NewContext(rootSeed int64, ordinal int) *Context {
	ctx, cancel := context.WithCancel(context.Background())
	return &Context{
		Context: ctx,
		cancel:  cancel,
		seed:    rootSeed + int64(ordinal),
	}
}

// Cancel requests cooperative cancellation.  Safe to call multiple times and
// after the evaluation has already finished.
func (c *Context) Cancel() {
	c.cancel()
}

// Cancelled reports whether cancellation has been requested.
func (c *Context) Cancelled() bool {
	return c.Err() != nil
}

// Seed is the deterministic seed for this evaluation.
func (c *Context) Seed() int64 {
	return c.seed
}
