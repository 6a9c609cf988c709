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

package budget

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeTrial struct {
	cancelled int
}

func (f *fakeTrial) Cancel() {
	f.cancelled++
}

func TestArmRejectsNegativeLimit(t *testing.T) {
	c := NewController(func() bool { return false })
	err := c.Arm(-time.Second)
	require.Error(t, err)
	assert.False(t, c.Expired())
}

func TestZeroLimitExpiresImmediately(t *testing.T) {
	assert := assert.New(t)
	c := NewController(func() bool { return false })
	require.NoError(t, c.Arm(0))
	assert.True(c.Expired())
	assert.True(c.Check())
}

func TestPositiveLimitDoesNotExpireEarly(t *testing.T) {
	assert := assert.New(t)
	c := NewController(func() bool { return true })
	require.NoError(t, c.Arm(time.Hour))
	defer c.Stop()
	assert.False(c.Check())
	assert.False(c.Expired())
}

func TestDeadlineCancelsTrackedContextsAfterSuccess(t *testing.T) {
	assert := assert.New(t)
	c := NewController(func() bool { return true })
	inflight := &fakeTrial{}
	c.Track(inflight)

	c.onDeadline()

	assert.True(c.Expired())
	assert.Equal(1, inflight.cancelled)

	// The set is cleared; a second trial tracked afterwards is untouched by
	// the already-fired deadline.
	later := &fakeTrial{}
	c.Track(later)
	assert.Equal(0, later.cancelled)
}

func TestDeadlineDefersWhenNoSuccessYet(t *testing.T) {
	assert := assert.New(t)
	succeeded := false
	c := NewController(func() bool { return succeeded })
	inflight := &fakeTrial{}
	c.Track(inflight)

	// Fires before any successful outcome: the in-flight trial must survive.
	c.onDeadline()
	assert.False(c.Expired())
	assert.Equal(0, inflight.cancelled)
	assert.False(c.Check())

	// The driver records a success, then its next boundary check applies the
	// deferred expiry.
	succeeded = true
	c.Untrack(inflight)
	assert.True(c.Check())
	assert.True(c.Expired())
	assert.Equal(0, inflight.cancelled)
}

func TestUntrackedContextIsNotCancelled(t *testing.T) {
	c := NewController(func() bool { return true })
	done := &fakeTrial{}
	c.Track(done)
	c.Untrack(done)

	c.onDeadline()
	assert.Equal(t, 0, done.cancelled)
}

func TestDeadlineRacingCompletedRunIsNoop(t *testing.T) {
	// The run finished and emptied the set before the timer fired.
	c := NewController(func() bool { return true })
	c.onDeadline()
	assert.True(t, c.Expired())
	assert.True(t, c.Check())
}
