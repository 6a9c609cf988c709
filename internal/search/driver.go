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

package search

import (
	"context"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"opentune.dev/opentune/internal/budget"
	"opentune.dev/opentune/internal/ledger"
	"opentune.dev/opentune/internal/telemetry"
	"opentune.dev/opentune/internal/trial"
)

var (
	logger = logrus.WithFields(logrus.Fields{
		"app":       "opentune",
		"component": "search.driver",
	})

	mTrials       = telemetry.Counter("search/trials", "trials evaluated")
	mTrialsFailed = telemetry.Counter("search/trials_failed", "trials that failed")
	mTrialLatency = telemetry.HistogramWithBounds("search/trial_latency", "trial evaluation latency", "ms", telemetry.HistogramBounds)
)

// abortThreshold is the fixed number of leading trials which, if they all
// fail, abort the run.  It is an absolute position, not a sliding window:
// isolated failures after three or more recorded outcomes never abort.
const abortThreshold = 3

// Params collects the collaborators of one driver.
type Params struct {
	Suggester  Suggester
	Runner     Runner
	Classifier Classifier
	// Reporter is optional.
	Reporter Reporter
	// Archive is optional.
	Archive Archive
	// Seed is the root seed per-trial seeds derive from.
	Seed int64
}

// Driver sequences, bounds, and cancels the evaluation of candidate
// pipelines.  A driver runs once; create a new one per run.
type Driver struct {
	p      Params
	ledger *ledger.Ledger
	ran    bool

	// hasSuccess mirrors ledger.CountSucceeded() > 0 for the budget timer,
	// which must not read the unlocked ledger from its own goroutine.
	hasSuccess atomic.Bool
}

// New creates a driver for a single run.
func New(p Params) *Driver {
	return &Driver{
		p:      p,
		ledger: ledger.New(),
	}
}

// Run executes the search loop until a terminal condition is met.  It always
// returns the full ordered list of outcomes produced before termination.  The
// returned error is non-nil only for the fatal abort (first three trials all
// failed), an invalid budget, or reuse of the driver.
func (d *Driver) Run(ctx context.Context, b Budget) ([]trial.Outcome, StopReason, error) {
	if d.ran {
		return nil, "", errors.New("driver has already run, create a new driver per run")
	}
	d.ran = true

	ctrl := budget.NewController(d.hasSuccess.Load)
	if !b.NoTimeLimit {
		if err := ctrl.Arm(b.TimeLimit); err != nil {
			return nil, "", errors.Wrap(err, "failed to arm time budget")
		}
	}
	defer ctrl.Stop()

	for i := 0; ; i++ {
		// Iteration-boundary checks, in budget / cancellation / cap order.
		// A zero time budget is expired from the start but still allows the
		// first iteration.
		if d.ledger.Len() > 0 && ctrl.Check() {
			return d.finish(StopReasonTimeExpired)
		}
		if ctx.Err() != nil {
			return d.finish(StopReasonExternallyCancelled)
		}
		if b.MaxTrials > 0 && d.ledger.Len() >= b.MaxTrials {
			return d.finish(StopReasonExhausted)
		}

		cand := d.p.Suggester.SuggestNext(d.ledger.All())
		if cand == nil {
			return d.finish(StopReasonSearchSpaceEmpty)
		}

		out := d.evaluate(ctrl, *cand, i)
		d.ledger.Append(out)
		if out.Success {
			d.hasSuccess.Store(true)
		}
		telemetry.RecordUnitMeasurement(ctx, mTrials)
		if !out.Success {
			telemetry.RecordUnitMeasurement(ctx, mTrialsFailed)
		}
		telemetry.RecordNUnitMeasurement(ctx, mTrialLatency, out.Duration.Milliseconds())

		d.notify(out)
		d.archive(ctx, out)

		if out.Success && d.p.Classifier.IsPerfect(out.Score) {
			logger.WithFields(logrus.Fields{
				"candidate": out.Candidate.ID,
				"score":     out.Score,
			}).Info("perfect score observed, search converged")
			return d.finish(StopReasonConverged)
		}

		if d.ledger.Len() == abortThreshold && d.ledger.CountSucceeded() == 0 {
			last, _ := d.ledger.Last()
			err := errors.Errorf("first %d trials all failed, aborting search: %s", abortThreshold, last.Failure)
			logger.WithError(err).Error("search aborted")
			return d.ledger.All(), StopReasonAborted, err
		}
	}
}

// evaluate runs a single candidate in a fresh trial context, tracked by the
// budget controller for the duration of the call.
func (d *Driver) evaluate(ctrl *budget.Controller, cand trial.Candidate, ordinal int) trial.Outcome {
	tc := trial.NewContext(d.p.Seed, ordinal)
	ctrl.Track(tc)
	defer func() {
		ctrl.Untrack(tc)
		tc.Cancel()
	}()

	start := time.Now()
	out, err := d.p.Runner.Evaluate(tc, cand)
	out.Duration = time.Since(start)
	if err != nil {
		logger.WithFields(logrus.Fields{
			"candidate": cand.ID,
			"error":     err.Error(),
		}).Error("runner failed")
		out.Candidate = cand
		out.Success = false
		out.Failure = err.Error()
	}
	return out
}

// notify forwards the outcome to the reporter.  Reporter failures are fully
// local: logged and swallowed, they never influence the stop reason.
func (d *Driver) notify(out trial.Outcome) {
	if d.p.Reporter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			logger.WithFields(logrus.Fields{
				"candidate": out.Candidate.ID,
				"panic":     r,
			}).Error("progress reporter panicked")
		}
	}()
	if err := d.p.Reporter.Report(out); err != nil {
		logger.WithFields(logrus.Fields{
			"candidate": out.Candidate.ID,
			"error":     err.Error(),
		}).Error("progress reporter failed")
	}
}

// archive persists the outcome, best effort.
func (d *Driver) archive(ctx context.Context, out trial.Outcome) {
	if d.p.Archive == nil {
		return
	}
	if err := d.p.Archive.Write(ctx, out); err != nil {
		logger.WithFields(logrus.Fields{
			"candidate": out.Candidate.ID,
			"error":     err.Error(),
		}).Error("failed to archive outcome")
	}
}

func (d *Driver) finish(reason StopReason) ([]trial.Outcome, StopReason, error) {
	logger.WithFields(logrus.Fields{
		"reason": reason,
		"trials": d.ledger.Len(),
	}).Info("search finished")
	return d.ledger.All(), reason, nil
}
