package ratelimit

import (
	"context"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
)

const defaultPrefix = "paleta:rl:"

// incrWindowLua увеличивает счётчик и выставляет TTL окна одной атомарной
// командой. Ключ без TTL (например, после сбоя) тоже получает срок жизни.
var incrWindowLua = redis.NewScript(`
local count = redis.call("INCR", KEYS[1])
if count == 1 or redis.call("PTTL", KEYS[1]) < 0 then
	redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return count
`)

// Redis — ограничитель фиксированного окна на счётчиках Redis.
type Redis struct {
	rdb    redis.UniversalClient
	prefix string
}

// NewRedis создаёт клиент Redis из URL (например, redis://:pass@host:6379/0)
// и проверяет соединение. Пустой prefix заменяется на "paleta:rl:".
func NewRedis(ctx context.Context, redisURL, prefix string) (*Redis, error) {
	const op = "ratelimit.redis.NewRedis"

	opt, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	rdb := redis.NewClient(opt)

	// Fail-fast на старте.
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("%s: %w", op, err)
	}

	return NewRedisWithClient(rdb, prefix), nil
}

// NewRedisWithClient оборачивает готовый клиент.
func NewRedisWithClient(rdb redis.UniversalClient, prefix string) *Redis {
	if prefix == "" {
		prefix = defaultPrefix
	}

	return &Redis{rdb: rdb, prefix: prefix}
}

func (r *Redis) key(b Bucket, key string) string {
	return r.prefix + b.Name + ":" + strings.ToLower(key)
}

// Allow увеличивает счётчик окна; окно отсчитывается от первого запроса.
func (r *Redis) Allow(ctx context.Context, b Bucket, key string) (bool, error) {
	const op = "ratelimit.redis.Allow"

	count, err := incrWindowLua.Run(ctx, r.rdb, []string{r.key(b, key)}, b.Window.Milliseconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("%s: %w", op, err)
	}

	return count <= int64(b.Limit), nil
}

// Ping проверяет доступность Redis.
func (r *Redis) Ping(ctx context.Context) error {
	return r.rdb.Ping(ctx).Err()
}

// Close закрывает клиент Redis.
func (r *Redis) Close() error {
	return r.rdb.Close()
}
