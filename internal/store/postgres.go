// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

// Package store owns database connectivity and schema management: the
// PostgreSQL pool, the Redis client, and embedded migrations.
package store

import (
	"context"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"
)

// Connection retry policy for startup. Databases routinely come up a
// few seconds after the service under orchestration.
const (
	connectRetryBase = 500 * time.Millisecond
	connectRetryMax  = 6
)

func connectBackoff() retry.Backoff {
	return retry.WithMaxRetries(connectRetryMax, retry.NewFibonacci(connectRetryBase))
}

// ConnectPostgres opens a pgx pool for the given URL and verifies it
// with retried pings before returning.
func ConnectPostgres(ctx context.Context, url string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, url)
	if err != nil {
		return nil, oops.Code("POSTGRES_CONNECT_FAILED").
			With("operation", "create pool").
			Wrap(err)
	}

	err = retry.Do(ctx, connectBackoff(), func(ctx context.Context) error {
		if err := pool.Ping(ctx); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		pool.Close()
		return nil, oops.Code("POSTGRES_CONNECT_FAILED").
			With("operation", "ping").
			Wrap(err)
	}
	return pool, nil
}

// RedisOptions configures ConnectRedis.
type RedisOptions struct {
	Addr     string
	Password string
	DB       int
}

// ConnectRedis opens a Redis client and verifies it with retried pings
// before returning.
func ConnectRedis(ctx context.Context, opts RedisOptions) (*redis.Client, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	err := retry.Do(ctx, connectBackoff(), func(ctx context.Context) error {
		if err := rdb.Ping(ctx).Err(); err != nil {
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		_ = rdb.Close() //nolint:errcheck // connect error takes precedence
		return nil, oops.Code("REDIS_CONNECT_FAILED").
			With("operation", "ping").
			With("addr", opts.Addr).
			Wrap(err)
	}
	return rdb, nil
}
