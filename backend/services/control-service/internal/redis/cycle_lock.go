package redisstore

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const cycleLockKey = "control:cycle:lock"

// Deletes the key only while it still holds our token.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// CycleLock keeps replicas from running the control cycle at the same time.
type CycleLock struct {
	client *redis.Client
	ttl    time.Duration
}

// NewCycleLock returns a lock whose lease expires after ttl.
func NewCycleLock(client *redis.Client, ttl time.Duration) *CycleLock {
	return &CycleLock{client: client, ttl: ttl}
}

// Acquire tries to take the lock once. ok is false when another holder owns it.
func (l *CycleLock) Acquire(ctx context.Context) (func(context.Context) error, bool, error) {
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, cycleLockKey, token, l.ttl).Result()
	if err != nil || !ok {
		return nil, false, err
	}
	release := func(ctx context.Context) error {
		return releaseScript.Run(ctx, l.client, []string{cycleLockKey}, token).Err()
	}
	return release, true, nil
}
