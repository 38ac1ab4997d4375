package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dillanci/settlement/internal/infrastructure/redis"
	"github.com/dillanci/settlement/pkg/testutil"
)

func TestIdempotencyGuard(t *testing.T) {
	ctx := context.Background()

	t.Run("second claim of a key fails", func(t *testing.T) {
		client, _ := testutil.NewRedis(t)
		guard := redis.NewIdempotencyGuard(client, time.Hour)

		ok, err := guard.Claim(ctx, "payment:pay-1", "k1")
		require.NoError(t, err)
		assert.True(t, ok)

		ok, err = guard.Claim(ctx, "payment:pay-1", "k1")
		require.NoError(t, err)
		assert.False(t, ok)
	})

	t.Run("keys are scoped", func(t *testing.T) {
		client, _ := testutil.NewRedis(t)
		guard := redis.NewIdempotencyGuard(client, time.Hour)

		ok, err := guard.Claim(ctx, "payment:pay-1", "k1")
		require.NoError(t, err)
		require.True(t, ok)

		ok, err = guard.Claim(ctx, "payment:pay-2", "k1")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("release allows a retry", func(t *testing.T) {
		client, _ := testutil.NewRedis(t)
		guard := redis.NewIdempotencyGuard(client, time.Hour)

		_, err := guard.Claim(ctx, "s", "k")
		require.NoError(t, err)
		require.NoError(t, guard.Release(ctx, "s", "k"))

		ok, err := guard.Claim(ctx, "s", "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("claims expire", func(t *testing.T) {
		client, mr := testutil.NewRedis(t)
		guard := redis.NewIdempotencyGuard(client, time.Minute)

		_, err := guard.Claim(ctx, "s", "k")
		require.NoError(t, err)
		mr.FastForward(2 * time.Minute)

		ok, err := guard.Claim(ctx, "s", "k")
		require.NoError(t, err)
		assert.True(t, ok)
	})

	t.Run("server failure surfaces", func(t *testing.T) {
		client, mr := testutil.NewRedis(t)
		guard := redis.NewIdempotencyGuard(client, time.Minute)
		mr.SetError("LOADING")

		_, err := guard.Claim(ctx, "s", "k")

		require.Error(t, err)
		assert.Contains(t, err.Error(), "redis setnx")
	})
}
