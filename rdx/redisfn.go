package rdx

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"smartclass/utils"

	"github.com/redis/go-redis/v9"
)

// Connect builds a client and verifies it with PING.
func Connect(ctx context.Context, addr, password string) (*redis.Client, error) {
	conn := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
	})
	if err := conn.Ping(ctx).Err(); err != nil {
		_ = conn.Close()
		return nil, fmt.Errorf("ping redis %s: %w", addr, err)
	}
	return conn, nil
}

// releaseScript deletes the key only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker hands out short-lived exclusive locks keyed by string.
type Locker struct {
	conn *redis.Client
	log  *slog.Logger
}

func NewLocker(conn *redis.Client, log *slog.Logger) *Locker {
	return &Locker{conn: conn, log: log}
}

// Acquire tries to take key for ttl. When ok is false another holder has it.
// The returned release func is safe to call after the lock expired.
func (l *Locker) Acquire(ctx context.Context, key string, ttl time.Duration) (release func(), ok bool, err error) {
	token := utils.GetUUID()
	ok, err = l.conn.SetNX(ctx, key, token, ttl).Result()
	if err != nil || !ok {
		return func() {}, ok, err
	}

	release = func() {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.conn, []string{key}, token).Err(); err != nil {
			l.log.Warn("release lock failed", slog.String("key", key), slog.Any("error", err))
		}
	}
	return release, true, nil
}
