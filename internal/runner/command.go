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

// Package runner provides the built-in subprocess evaluator.
package runner

import (
	"fmt"
	"os"
	"os/exec"
	"strconv"
	"strings"

	"github.com/sirupsen/logrus"
	"opentune.dev/opentune/internal/trial"
)

var (
	logger = logrus.WithFields(logrus.Fields{
		"app":       "opentune",
		"component": "runner.command",
	})
)

// Command evaluates a candidate by running a training command as a
// subprocess.  Candidate parameters and the trial seed are passed through the
// environment; the last line of stdout is parsed as the score.  The process
// is killed when the trial context is cancelled, which is reported as an
// ordinary failed outcome.
type Command struct {
	path string
	args []string
	goal trial.Goal
}

// NewCommand creates a runner invoking the given command for every trial.
func NewCommand(path string, args []string, goal trial.Goal) *Command {
	return &Command{
		path: path,
		args: args,
		goal: goal,
	}
}

// Evaluate runs the command for one candidate.  Evaluation failures are
// encoded in the outcome, never returned as errors.
func (r *Command) Evaluate(tc *trial.Context, c trial.Candidate) (trial.Outcome, error) {
	out := trial.Outcome{
		Candidate: c,
		Goal:      r.goal,
	}

	cmd := exec.CommandContext(tc, r.path, r.args...)
	cmd.Env = append(os.Environ(), fmt.Sprintf("OPENTUNE_SEED=%d", tc.Seed()))
	for k, v := range c.Params {
		cmd.Env = append(cmd.Env, fmt.Sprintf("OPENTUNE_PARAM_%s=%v", strings.ToUpper(k), v))
	}

	stdout, err := cmd.Output()
	if tc.Cancelled() {
		out.Failure = "evaluation cancelled"
		return out, nil
	}
	if err != nil {
		logger.WithFields(logrus.Fields{
			"candidate": c.ID,
			"error":     err.Error(),
		}).Warn("training command failed")
		out.Failure = err.Error()
		return out, nil
	}

	score, err := parseScore(stdout)
	if err != nil {
		out.Failure = err.Error()
		return out, nil
	}
	out.Score = score
	out.Success = true
	return out, nil
}

// parseScore reads the score from the last non-empty line of stdout.
func parseScore(stdout []byte) (float64, error) {
	lines := strings.Split(strings.TrimSpace(string(stdout)), "\n")
	last := strings.TrimSpace(lines[len(lines)-1])
	score, err := strconv.ParseFloat(last, 64)
	if err != nil {
		return 0, fmt.Errorf("training command produced no parsable score: %q", last)
	}
	return score, nil
}
