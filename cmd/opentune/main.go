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

// This application runs one budget-constrained pipeline search from config.
package main

import (
	"context"
	"net/http"
	"time"

	"github.com/sirupsen/logrus"
	"opentune.dev/opentune/internal/archive"
	"opentune.dev/opentune/internal/config"
	"opentune.dev/opentune/internal/logging"
	"opentune.dev/opentune/internal/metrics"
	"opentune.dev/opentune/internal/runner"
	"opentune.dev/opentune/internal/search"
	"opentune.dev/opentune/internal/signal"
	"opentune.dev/opentune/internal/suggest"
	"opentune.dev/opentune/internal/telemetry"
	"opentune.dev/opentune/internal/trial"
)

var (
	logger = logrus.WithFields(logrus.Fields{
		"app":       "opentune",
		"component": "main",
	})
)

func main() {
	cfg, err := config.Read()
	if err != nil {
		logger.WithError(err).Fatal("cannot read configuration.")
	}
	logging.ConfigureLogging(cfg)

	mux := http.NewServeMux()
	closeProm, err := telemetry.BindPrometheus(mux, cfg)
	if err != nil {
		logger.WithError(err).Fatal("cannot set up telemetry.")
	}
	defer closeProm()
	if cfg.GetBool("telemetry.prometheus.enable") {
		go func() {
			if err := http.ListenAndServe(cfg.GetString("telemetry.prometheus.address"), mux); err != nil {
				logger.WithError(err).Error("metrics endpoint stopped")
			}
		}()
	}

	goal := trial.Maximize
	if cfg.GetString("search.goal") == "minimize" {
		goal = trial.Minimize
	}
	seed := cfg.GetInt64("search.seed")

	space := make(map[string][]interface{})
	for _, name := range cfg.GetStringSlice("search.params") {
		for _, v := range cfg.GetStringSlice("search.space." + name) {
			space[name] = append(space[name], v)
		}
	}

	p := search.Params{
		Suggester:  suggest.NewRandom(space, seed),
		Runner:     runner.NewCommand(cfg.GetString("search.runner.command"), cfg.GetStringSlice("search.runner.args"), goal),
		Classifier: metrics.NewThreshold(goal, cfg.GetFloat64("search.perfectScore")),
		Reporter:   progressLogger{},
		Seed:       seed,
	}
	if cfg.GetBool("archive.enable") {
		a := archive.New(cfg)
		defer func() {
			if err := a.Close(); err != nil {
				logger.WithError(err).Error("failed to close archive")
			}
		}()
		p.Archive = a
	}

	ctx, cancel := signal.Context(context.Background())
	defer cancel()

	// A negative maxSeconds disables the time budget; zero allows a single
	// trial.
	maxSeconds := cfg.GetFloat64("search.maxSeconds")
	outcomes, reason, err := search.New(p).Run(ctx, search.Budget{
		TimeLimit:   time.Duration(maxSeconds * float64(time.Second)),
		NoTimeLimit: maxSeconds < 0,
		MaxTrials:   cfg.GetInt("search.maxTrials"),
	})
	if err != nil {
		logger.WithError(err).Fatal("search failed")
	}

	entry := logger.WithFields(logrus.Fields{
		"reason": reason,
		"trials": len(outcomes),
	})
	if best, ok := bestOf(outcomes); ok {
		entry = entry.WithFields(logrus.Fields{
			"bestCandidate": best.Candidate.ID,
			"bestScore":     best.Score,
		})
	}
	entry.Info("search complete")
}

func bestOf(outcomes []trial.Outcome) (trial.Outcome, bool) {
	var best trial.Outcome
	found := false
	for _, o := range outcomes {
		if !o.Success {
			continue
		}
		if !found || o.Better(best) {
			best = o
			found = true
		}
	}
	return best, found
}

// progressLogger reports each completed trial to the run log.
type progressLogger struct{}

func (progressLogger) Report(o trial.Outcome) error {
	logger.WithFields(logrus.Fields{
		"candidate": o.Candidate.ID,
		"success":   o.Success,
		"score":     o.Score,
		"duration":  o.Duration,
	}).Info("trial complete")
	return nil
}
