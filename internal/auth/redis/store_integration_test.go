// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Authcore Contributors

//go:build integration

package redis_test

import (
	"context"
	"os"
	"testing"

	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/authcore/authcore/internal/auth"
	authredis "github.com/authcore/authcore/internal/auth/redis"
)

func testClient(t *testing.T) *goredis.Client {
	t.Helper()
	addr := os.Getenv("AUTHCORE_TEST_REDIS_ADDR")
	if addr == "" {
		addr = "localhost:6379"
	}
	rdb := goredis.NewClient(&goredis.Options{Addr: addr, DB: 15})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		t.Skipf("redis not available at %s: %v", addr, err)
	}
	t.Cleanup(func() {
		_ = rdb.FlushDB(context.Background()).Err()
		_ = rdb.Close()
	})
	return rdb
}

func TestResetTokenStore(t *testing.T) {
	ctx := context.Background()
	store := authredis.NewResetTokenStore(testClient(t))

	t.Run("issue then resolve", func(t *testing.T) {
		token, err := store.Issue(ctx, 7)
		require.NoError(t, err)
		require.NotEmpty(t, token)

		userID, ok, err := store.Resolve(ctx, token)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(7), userID)

		// Resolve does not consume.
		_, ok, err = store.Resolve(ctx, token)
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("consume is single-use", func(t *testing.T) {
		token, err := store.Issue(ctx, 8)
		require.NoError(t, err)

		userID, ok, err := store.Consume(ctx, token)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(8), userID)

		_, ok, err = store.Consume(ctx, token)
		require.NoError(t, err)
		assert.False(t, ok, "second consume must lose")
	})

	t.Run("unknown token resolves to absent", func(t *testing.T) {
		_, ok, err := store.Resolve(ctx, "deadbeef")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("token has a ttl", func(t *testing.T) {
		token, err := store.Issue(ctx, 9)
		require.NoError(t, err)

		ttl := testClient(t).TTL(ctx, "reset:"+auth.HashResetToken(token)).Val()
		assert.Greater(t, ttl.Hours(), 71.0)
		assert.LessOrEqual(t, ttl.Hours(), 72.0)
	})
}

func TestSessionStore(t *testing.T) {
	ctx := context.Background()
	store := authredis.NewSessionStore(testClient(t))

	t.Run("bind allocates an id and round-trips the user", func(t *testing.T) {
		sess := store.Load("")
		require.NoError(t, sess.Bind(ctx, 7))
		assert.True(t, sess.Started())
		require.NotEmpty(t, sess.ID())

		reloaded := store.Load(sess.ID())
		userID, ok, err := reloaded.UserID(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.Equal(t, int64(7), userID)
		assert.False(t, reloaded.Started(), "presented cookie is not a new session")
	})

	t.Run("empty session is unauthenticated", func(t *testing.T) {
		sess := store.Load("")
		_, ok, err := sess.UserID(ctx)
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("destroy removes the binding", func(t *testing.T) {
		sess := store.Load("")
		require.NoError(t, sess.Bind(ctx, 7))

		ok, err := sess.Destroy(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
		assert.True(t, sess.Ended())

		_, found, err := store.Load(sess.ID()).UserID(ctx)
		require.NoError(t, err)
		assert.False(t, found)
	})

	t.Run("destroying a cookieless session succeeds", func(t *testing.T) {
		ok, err := store.Load("").Destroy(ctx)
		require.NoError(t, err)
		assert.True(t, ok)
	})
}
