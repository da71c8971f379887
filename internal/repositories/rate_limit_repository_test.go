package repository_test

import (
	"errors"
	"strconv"
	"testing"
	"time"

	"github.com/aaravmahajanofficial/pos-admin-platform/internal/config"
	repository "github.com/aaravmahajanofficial/pos-admin-platform/internal/repositories"
	"github.com/go-redis/redismock/v9"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCheckLoginRateLimit(t *testing.T) {
	ctx := t.Context()
	now := time.Unix(1_700_000_100, 0)
	cfg := &config.RateConfig{MaxAttempts: 3, WindowSize: 60 * time.Second}
	key := "login_attempts:till@example.com"
	windowStart := strconv.FormatInt(now.Unix()-60, 10)

	expectPipeline := func(mock redismock.ClientMock, count int64) {
		mock.ExpectZRemRangeByScore(key, "0", windowStart).SetVal(0)
		mock.ExpectZAdd(key, redis.Z{Score: float64(now.Unix()), Member: now.UnixNano()}).SetVal(1)
		mock.ExpectZCard(key).SetVal(count)
		mock.ExpectExpire(key, 60*time.Second).SetVal(true)
	}

	t.Run("Allowed", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		repo := repository.NewRateLimitRepo(client, cfg, repository.WithClock(func() time.Time { return now }))
		expectPipeline(mock, 2)

		allowed, remaining, retryAfter, err := repo.CheckLoginRateLimit(ctx, "till@example.com")

		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Equal(t, 1, remaining)
		assert.Zero(t, retryAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Last Allowed Attempt", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		repo := repository.NewRateLimitRepo(client, cfg, repository.WithClock(func() time.Time { return now }))
		expectPipeline(mock, 3)

		allowed, remaining, _, err := repo.CheckLoginRateLimit(ctx, "till@example.com")

		require.NoError(t, err)
		assert.True(t, allowed)
		assert.Zero(t, remaining)
	})

	t.Run("Blocked", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		repo := repository.NewRateLimitRepo(client, cfg, repository.WithClock(func() time.Time { return now }))
		expectPipeline(mock, 4)
		mock.ExpectZRangeArgsWithScores(redis.ZRangeArgs{Key: key, Start: 0, Stop: 0}).
			SetVal([]redis.Z{{Score: float64(now.Unix() - 45), Member: "first"}})

		allowed, remaining, retryAfter, err := repo.CheckLoginRateLimit(ctx, "till@example.com")

		require.NoError(t, err)
		assert.False(t, allowed)
		assert.Zero(t, remaining)
		assert.Equal(t, 15, retryAfter)
		assert.NoError(t, mock.ExpectationsWereMet())
	})

	t.Run("Pipeline Error", func(t *testing.T) {
		client, mock := redismock.NewClientMock()
		repo := repository.NewRateLimitRepo(client, cfg, repository.WithClock(func() time.Time { return now }))
		mock.ExpectZRemRangeByScore(key, "0", windowStart).SetErr(errors.New("connection reset"))

		allowed, _, _, err := repo.CheckLoginRateLimit(ctx, "till@example.com")

		require.Error(t, err)
		assert.False(t, allowed)
	})
}

func TestResetLoginAttempts(t *testing.T) {
	client, mock := redismock.NewClientMock()
	repo := repository.NewRateLimitRepo(client, &config.RateConfig{MaxAttempts: 5, WindowSize: time.Minute})

	mock.ExpectDel("login_attempts:till@example.com").SetVal(1)
	require.NoError(t, repo.ResetLoginAttempts(t.Context(), "till@example.com"))

	mock.ExpectDel("login_attempts:till@example.com").SetErr(errors.New("down"))
	assert.Error(t, repo.ResetLoginAttempts(t.Context(), "till@example.com"))
}
