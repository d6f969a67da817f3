package redis

import (
	"context"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const scanLockKey = "lock:grace-period-scan"

// ScanLock is a best-effort distributed lock (SET NX with TTL) so that
// overlapping scheduler firings or multiple instances do not sweep
// concurrently. Correctness does not depend on it: the conditional status
// updates already make the sweep idempotent.
type ScanLock struct {
	client *goredis.Client
	ttl    time.Duration
}

func NewScanLock(client *goredis.Client, ttl time.Duration) *ScanLock {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &ScanLock{client: client, ttl: ttl}
}

func (l *ScanLock) TryLock(ctx context.Context) (bool, error) {
	return l.client.SetNX(ctx, scanLockKey, time.Now().UTC().Format(time.RFC3339), l.ttl).Result()
}

func (l *ScanLock) Unlock(ctx context.Context) error {
	return l.client.Del(ctx, scanLockKey).Err()
}
