package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/workdora/waitlist/internal/usecase"
)

const keyPrefix = "waitlist:submission:"

// releaseScript deletes the lock only if it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

func NewRedisClient(ctx context.Context, url string) (*redis.Client, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}

	client := redis.NewClient(opt)
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

// RedisGuard holds a short-lived lock per key so that several site instances
// never submit the same email concurrently.
type RedisGuard struct {
	client redis.UniversalClient
	logger *zap.Logger
}

func NewRedisGuard(client redis.UniversalClient, logger *zap.Logger) *RedisGuard {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisGuard{client: client, logger: logger}
}

func (g *RedisGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	token := uuid.NewString()
	ok, err := g.client.SetNX(ctx, keyPrefix+key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("acquire submission lock: %w", err)
	}
	if !ok {
		return nil, usecase.ErrSubmissionInProgress
	}

	return func() {
		// the request context may already be cancelled
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(releaseCtx, g.client, []string{keyPrefix + key}, token).Err(); err != nil {
			g.logger.Warn("release submission lock", zap.Error(err))
		}
	}, nil
}

// MemoryGuard is the single-instance fallback used when no Redis is configured.
type MemoryGuard struct {
	mu    sync.Mutex
	locks map[string]time.Time
	now   func() time.Time
}

func NewMemoryGuard() *MemoryGuard {
	return &MemoryGuard{locks: make(map[string]time.Time), now: time.Now}
}

func (g *MemoryGuard) Acquire(ctx context.Context, key string, ttl time.Duration) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	now := g.now()
	if expires, held := g.locks[key]; held && now.Before(expires) {
		return nil, usecase.ErrSubmissionInProgress
	}
	expires := now.Add(ttl)
	g.locks[key] = expires

	return func() {
		g.mu.Lock()
		defer g.mu.Unlock()
		if g.locks[key].Equal(expires) {
			delete(g.locks, key)
		}
	}, nil
}
