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

// Package budget enforces the wall-clock limit of a search run.  A controller
// owns the one-shot deadline timer and the registry of in-flight trial
// contexts, which is the only state shared between the driver goroutine and
// the timer goroutine.
package budget

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
)

var (
	logger = logrus.WithFields(logrus.Fields{
		"app":       "opentune",
		"component": "budget",
	})
)

// Canceler is the subset of trial.Context the controller needs.
type Canceler interface {
	Cancel()
}

// Controller manages one run's time budget.  A zero limit is the degenerate
// single-iteration budget, not "no timeout".  The deadline fires at most
// once; if no successful outcome exists when it fires, the cancellation
// effect is deferred until the driver's next boundary check observes both
// the deadline and a success.
type Controller struct {
	succeeded func() bool

	mu     sync.Mutex
	active map[Canceler]struct{}
	timer  *time.Timer

	// deadlined is set when the timer fires (or immediately for a zero
	// budget); expired is set once the expiry has taken effect.  Both cross
	// the timer/driver boundary, hence atomics.
	deadlined atomic.Bool
	expired   atomic.Bool
}

// NewController creates a controller.  succeeded reports whether at least one
// successful outcome has been recorded; it is only ever called from the timer
// goroutine and the driver goroutine, never concurrently with a ledger write.
func NewController(succeeded func() bool) *Controller {
	return &Controller{
		succeeded: succeeded,
		active:    make(map[Canceler]struct{}),
	}
}

// Arm schedules the deadline.  Must be called before the first iteration; an
// invalid limit is reported here rather than silently ignored.
func (c *Controller) Arm(limit time.Duration) error {
	if limit < 0 {
		return errors.Errorf("time budget must not be negative, got %v", limit)
	}
	if limit == 0 {
		c.deadlined.Store(true)
		c.expired.Store(true)
		return nil
	}
	c.timer = time.AfterFunc(limit, c.onDeadline)
	return nil
}

// Stop releases the timer in case the run finished before the deadline.
func (c *Controller) Stop() {
	if c.timer != nil {
		c.timer.Stop()
	}
}

func (c *Controller) onDeadline() {
	c.deadlined.Store(true)
	if !c.succeeded() {
		// Don't kill the only in-flight attempt before any result exists.
		// The driver re-checks at each iteration boundary; the timer is not
		// re-armed.
		logger.Info("time budget reached with no successful trial yet, deferring expiry")
		return
	}
	logger.Info("time budget reached, cancelling in-flight trials")
	c.expire()
}

func (c *Controller) expire() {
	c.expired.Store(true)
	c.mu.Lock()
	defer c.mu.Unlock()
	for ec := range c.active {
		ec.Cancel()
	}
	c.active = make(map[Canceler]struct{})
}

// Check is called by the driver at each iteration boundary.  It reports
// whether the budget has expired, applying a deferred deadline once a
// successful outcome exists.
func (c *Controller) Check() bool {
	if c.expired.Load() {
		return true
	}
	if c.deadlined.Load() && c.succeeded() {
		c.expire()
		return true
	}
	return false
}

// Expired reports whether expiry has taken effect.
func (c *Controller) Expired() bool {
	return c.expired.Load()
}

// Track registers an in-flight trial context so that deadline expiry can
// cancel it.
func (c *Controller) Track(ec Canceler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.active[ec] = struct{}{}
}

// Untrack removes a context once its evaluation has returned, whatever the
// outcome.  Removing a context the timer already cleared is a no-op.
func (c *Controller) Untrack(ec Canceler) {
	c.mu.Lock()
	defer c.mu.Unlock()
	delete(c.active, ec)
}
