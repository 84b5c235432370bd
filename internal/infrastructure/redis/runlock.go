package redisstore

import (
	"context"
	"sync"
	"time"

	"assetquotes-service/internal/application"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var _ application.RunLock = (*RunLock)(nil)

// releaseScript deletes the key only while it still holds our token, so an
// expired reservation taken over by another run is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RunLock reserves ingestion windows with SET NX so overlapping triggers do
// not hit the upstream twice. A reservation lasts until Release or TTL.
type RunLock struct {
	Client *redis.Client
	TTL    time.Duration
	Prefix string

	mu     sync.Mutex
	tokens map[string]string
}

func New(client *redis.Client, ttl time.Duration) *RunLock {
	return &RunLock{Client: client, TTL: ttl, Prefix: "assetquotes:"}
}

func (l *RunLock) TryReserve(ctx context.Context, key string) (bool, error) {
	token := uuid.NewString()
	ok, err := l.Client.SetNX(ctx, l.Prefix+key, token, l.TTL).Result()
	if err != nil || !ok {
		return false, err
	}
	l.mu.Lock()
	if l.tokens == nil {
		l.tokens = map[string]string{}
	}
	l.tokens[key] = token
	l.mu.Unlock()
	return true, nil
}

func (l *RunLock) Release(ctx context.Context, key string) error {
	l.mu.Lock()
	token, ok := l.tokens[key]
	delete(l.tokens, key)
	l.mu.Unlock()
	if !ok {
		return nil
	}
	return releaseScript.Run(ctx, l.Client, []string{l.Prefix + key}, token).Err()
}
