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

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"opentune.dev/opentune/internal/trial"
)

func TestThresholdMaximize(t *testing.T) {
	assert := assert.New(t)
	c := NewThreshold(trial.Maximize, 1.0)
	assert.True(c.IsPerfect(1.0))
	assert.True(c.IsPerfect(1.5))
	assert.False(c.IsPerfect(0.999))
}

func TestThresholdMinimize(t *testing.T) {
	assert := assert.New(t)
	c := NewThreshold(trial.Minimize, 0.0)
	assert.True(c.IsPerfect(0.0))
	assert.True(c.IsPerfect(-0.1))
	assert.False(c.IsPerfect(0.001))
}
