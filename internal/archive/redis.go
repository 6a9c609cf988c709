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

// Package archive persists recorded trial outcomes in Redis.  Writes are
// best effort from the driver's point of view: a failed write is logged by
// the caller and never changes the stop reason.
package archive

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/cenkalti/backoff"
	"github.com/gomodule/redigo/redis"
	"github.com/pkg/errors"
	"github.com/sirupsen/logrus"
	"opentune.dev/opentune/internal/config"
	"opentune.dev/opentune/internal/trial"
)

const (
	outcomeKeyPrefix = "opentune:outcome:"
	outcomeIndexKey  = "opentune:outcomes"

	writeRetries = 3
)

var (
	logger = logrus.WithFields(logrus.Fields{
		"app":       "opentune",
		"component": "archive.redis",
	})
)

// Service archives outcomes and reads them back in insertion order.
type Service interface {
	// Write stores one outcome and appends it to the run index.
	Write(ctx context.Context, o trial.Outcome) error
	// List returns all archived outcomes in the order they were written.
	List(ctx context.Context) ([]trial.Outcome, error)
	// Close releases the connection pool.
	Close() error
}

type redisArchive struct {
	pool *redis.Pool
}

// New creates a Service backed by the Redis instance named in cfg.
func New(cfg config.View) Service {
	return &redisArchive{
		pool: newPool(cfg),
	}
}

func newPool(cfg config.View) *redis.Pool {
	maxIdle := cfg.GetInt("archive.redis.pool.maxIdle")
	maxActive := cfg.GetInt("archive.redis.pool.maxActive")
	idleTimeout := cfg.GetDuration("archive.redis.pool.idleTimeout")
	healthCheckTimeout := cfg.GetDuration("archive.redis.pool.healthCheckTimeout")
	url := fmt.Sprintf("redis://%s:%s", cfg.GetString("archive.redis.hostname"), cfg.GetString("archive.redis.port"))

	return &redis.Pool{
		MaxIdle:     maxIdle,
		MaxActive:   maxActive,
		IdleTimeout: idleTimeout,
		Wait:        true,
		DialContext: func(ctx context.Context) (redis.Conn, error) {
			if ctx.Err() != nil {
				return nil, ctx.Err()
			}
			return redis.DialURL(url, redis.DialConnectTimeout(healthCheckTimeout), redis.DialReadTimeout(healthCheckTimeout))
		},
	}
}

func (a *redisArchive) Close() error {
	return a.pool.Close()
}

func (a *redisArchive) Write(ctx context.Context, o trial.Outcome) error {
	value, err := json.Marshal(o)
	if err != nil {
		return errors.Wrap(err, "failed to marshal outcome")
	}

	op := func() error {
		conn, err := a.pool.GetContext(ctx)
		if err != nil {
			return errors.Wrap(err, "failed to connect to redis")
		}
		defer handleConnectionClose(&conn)

		if _, err = conn.Do("SET", outcomeKeyPrefix+o.Candidate.ID, value); err != nil {
			return errors.Wrap(err, "failed to store outcome")
		}
		_, err = conn.Do("RPUSH", outcomeIndexKey, o.Candidate.ID)
		return errors.Wrap(err, "failed to index outcome")
	}
	return backoff.Retry(op, backoff.WithMaxRetries(backoff.NewExponentialBackOff(), writeRetries))
}

func (a *redisArchive) List(ctx context.Context) ([]trial.Outcome, error) {
	conn, err := a.pool.GetContext(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to redis")
	}
	defer handleConnectionClose(&conn)

	ids, err := redis.Strings(conn.Do("LRANGE", outcomeIndexKey, 0, -1))
	if err != nil {
		return nil, errors.Wrap(err, "failed to read outcome index")
	}

	outcomes := make([]trial.Outcome, 0, len(ids))
	for _, id := range ids {
		value, err := redis.Bytes(conn.Do("GET", outcomeKeyPrefix+id))
		if err != nil {
			return nil, errors.Wrapf(err, "failed to read outcome %s", id)
		}
		var o trial.Outcome
		if err := json.Unmarshal(value, &o); err != nil {
			return nil, errors.Wrapf(err, "failed to unmarshal outcome %s", id)
		}
		outcomes = append(outcomes, o)
	}
	return outcomes, nil
}

func handleConnectionClose(conn *redis.Conn) {
	err := (*conn).Close()
	if err != nil {
		logger.WithFields(logrus.Fields{
			"error": err,
		}).Debug("failed to close redis client connection.")
	}
}
