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

package archive

import (
	"context"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"opentune.dev/opentune/internal/config"
	"opentune.dev/opentune/internal/trial"
)

func createRedis(t *testing.T) (config.View, func()) {
	mredis, err := miniredis.Run()
	require.NoError(t, err, "failed to create miniredis")

	cfg := viper.New()
	cfg.Set("archive.redis.hostname", mredis.Host())
	cfg.Set("archive.redis.port", mredis.Port())
	cfg.Set("archive.redis.pool.maxIdle", 3)
	cfg.Set("archive.redis.pool.maxActive", 0)
	cfg.Set("archive.redis.pool.idleTimeout", time.Second)
	cfg.Set("archive.redis.pool.healthCheckTimeout", 100*time.Millisecond)
	return cfg, mredis.Close
}

func TestArchiveSetup(t *testing.T) {
	cfg, closer := createRedis(t)
	defer closer()
	service := New(cfg)
	assert.NotNil(t, service)
	defer service.Close()
}

func TestWriteAndListPreservesOrder(t *testing.T) {
	assert := assert.New(t)
	cfg, closer := createRedis(t)
	defer closer()
	service := New(cfg)
	defer service.Close()

	ctx := context.Background()

	outcomes, err := service.List(ctx)
	require.NoError(t, err)
	assert.Empty(outcomes)

	first := trial.Outcome{
		Candidate: trial.NewCandidate(map[string]interface{}{"lr": "0.1"}),
		Score:     0.42,
		Success:   true,
		Duration:  3 * time.Second,
	}
	second := trial.Outcome{
		Candidate: trial.NewCandidate(nil),
		Failure:   "out of memory",
	}

	require.NoError(t, service.Write(ctx, first))
	require.NoError(t, service.Write(ctx, second))

	outcomes, err = service.List(ctx)
	require.NoError(t, err)
	require.Len(t, outcomes, 2)

	assert.Equal(first.Candidate.ID, outcomes[0].Candidate.ID)
	assert.Equal(first.Score, outcomes[0].Score)
	assert.True(outcomes[0].Success)
	assert.Equal(first.Duration, outcomes[0].Duration)

	assert.Equal(second.Candidate.ID, outcomes[1].Candidate.ID)
	assert.False(outcomes[1].Success)
	assert.Equal("out of memory", outcomes[1].Failure)
}

func TestWriteFailsWhenRedisIsGone(t *testing.T) {
	cfg, closer := createRedis(t)
	service := New(cfg)
	defer service.Close()
	closer()

	err := service.Write(context.Background(), trial.Outcome{Candidate: trial.NewCandidate(nil)})
	assert.Error(t, err)
}
