package ratelimit

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func newRedis(t *testing.T) (*Redis, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	return NewRedisWithClient(rdb, ""), mr
}

func TestRedis_AllowWithinLimit(t *testing.T) {
	t.Parallel()

	rl, mr := newRedis(t)
	ctx := context.Background()
	b := Bucket{Name: "test", Limit: 3, Window: time.Minute}

	for i := 0; i < 3; i++ {
		ok, err := rl.Allow(ctx, b, "1.2.3.4")
		require.NoError(t, err)
		require.True(t, ok, "request %d", i+1)
	}

	ok, err := rl.Allow(ctx, b, "1.2.3.4")
	require.NoError(t, err)
	require.False(t, ok)

	require.True(t, mr.Exists("paleta:rl:test:1.2.3.4"))
	require.Equal(t, time.Minute, mr.TTL("paleta:rl:test:1.2.3.4"))
}

func TestRedis_WindowResets(t *testing.T) {
	t.Parallel()

	rl, mr := newRedis(t)
	ctx := context.Background()
	b := Bucket{Name: "test", Limit: 1, Window: time.Minute}

	ok, err := rl.Allow(ctx, b, "k")
	require.NoError(t, err)
	require.True(t, ok)

	ok, err = rl.Allow(ctx, b, "k")
	require.NoError(t, err)
	require.False(t, ok)

	mr.FastForward(time.Minute + time.Second)

	ok, err = rl.Allow(ctx, b, "k")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedis_KeysAreIsolated(t *testing.T) {
	t.Parallel()

	rl, _ := newRedis(t)
	ctx := context.Background()

	ok, err := rl.Allow(ctx, LoginUser, "Alice")
	require.NoError(t, err)
	require.True(t, ok)

	for i := 0; i < LoginUser.Limit-1; i++ {
		_, err = rl.Allow(ctx, LoginUser, "alice")
		require.NoError(t, err)
	}

	// Ключи нечувствительны к регистру: лимит общий.
	ok, err = rl.Allow(ctx, LoginUser, "ALICE")
	require.NoError(t, err)
	require.False(t, ok)

	ok, err = rl.Allow(ctx, LoginIP, "alice")
	require.NoError(t, err)
	require.True(t, ok)
}

func TestRedis_Unavailable(t *testing.T) {
	t.Parallel()

	rl, mr := newRedis(t)
	mr.Close()

	_, err := rl.Allow(context.Background(), Refresh, "k")
	require.Error(t, err)
}

func TestNewRedis(t *testing.T) {
	t.Parallel()

	mr := miniredis.RunT(t)

	rl, err := NewRedis(context.Background(), "redis://"+mr.Addr()+"/0", "custom:")
	require.NoError(t, err)
	t.Cleanup(func() { _ = rl.Close() })
	require.NoError(t, rl.Ping(context.Background()))

	_, err = rl.Allow(context.Background(), Refresh, "k")
	require.NoError(t, err)
	require.True(t, mr.Exists("custom:refresh:k"))

	_, err = NewRedis(context.Background(), "not-a-url", "")
	require.Error(t, err)
}

func TestNoopAndBuckets(t *testing.T) {
	t.Parallel()

	ok, err := Noop{}.Allow(context.Background(), LoginIP, "x")
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, "forgot_password_email", ForgotPassword("email").Name)
	require.Equal(t, 5, ForgotPassword("phone").Limit)
	require.Equal(t, "reset_password_phone", ResetPassword("phone").Name)
	require.Equal(t, 12, ResetPassword("email").Limit)
}

func TestRedis_KeyWithoutTTLGetsWindow(t *testing.T) {
	t.Parallel()

	rl, mr := newRedis(t)
	ctx := context.Background()
	b := Bucket{Name: "test", Limit: 10, Window: time.Minute}

	// Счётчик остался без срока жизни: прежний EXPIRE не дошёл до Redis.
	require.NoError(t, mr.Set("paleta:rl:test:k", "4"))
	require.Zero(t, mr.TTL("paleta:rl:test:k"))

	ok, err := rl.Allow(ctx, b, "k")
	require.NoError(t, err)
	require.True(t, ok)

	require.Equal(t, time.Minute, mr.TTL("paleta:rl:test:k"))

	got, err := mr.Get("paleta:rl:test:k")
	require.NoError(t, err)
	require.Equal(t, "5", got)

	mr.FastForward(time.Minute + time.Second)
	require.False(t, mr.Exists("paleta:rl:test:k"))
}

func TestRedis_WindowNotExtendedByLaterHits(t *testing.T) {
	t.Parallel()

	rl, mr := newRedis(t)
	ctx := context.Background()
	b := Bucket{Name: "test", Limit: 10, Window: time.Minute}

	_, err := rl.Allow(ctx, b, "k")
	require.NoError(t, err)

	mr.FastForward(40 * time.Second)

	_, err = rl.Allow(ctx, b, "k")
	require.NoError(t, err)
	require.Equal(t, 20*time.Second, mr.TTL("paleta:rl:test:k"))
}
