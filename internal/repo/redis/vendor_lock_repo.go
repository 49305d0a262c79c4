package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
)

// ErrLockNotAcquired is returned once acquisition retries are exhausted.
var ErrLockNotAcquired = errors.New("vendor lock not acquired")

const releaseLockScript = `
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`

// VendorLockRepo serializes strike issuance and discipline recomputation per
// vendor. Two concurrent strikes must not both read a stale prior total, so
// the read-modify-write runs under this lock.
type VendorLockRepo struct {
	client        *goredis.Client
	ttl           time.Duration
	retryInterval time.Duration
	maxWait       time.Duration
}

func NewVendorLockRepo(client *goredis.Client, ttl time.Duration) *VendorLockRepo {
	if ttl <= 0 {
		ttl = 10 * time.Second
	}
	return &VendorLockRepo{
		client:        client,
		ttl:           ttl,
		retryInterval: 50 * time.Millisecond,
		maxWait:       5 * time.Second,
	}
}

// WithVendorLock runs fn while holding the per-vendor lock. The lock token is
// compared on release so an expired holder cannot delete a successor's lock.
func (r *VendorLockRepo) WithVendorLock(ctx context.Context, vendorID int64, fn func(context.Context) error) error {
	if r.client == nil {
		return fmt.Errorf("redis client is nil")
	}
	if vendorID <= 0 {
		return fmt.Errorf("invalid vendor id")
	}
	if fn == nil {
		return fmt.Errorf("lock callback is required")
	}

	key := vendorLockKey(vendorID)
	token := uuid.NewString()

	if err := r.acquire(ctx, key, token); err != nil {
		return err
	}
	defer func() {
		releaseCtx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		_ = r.client.Eval(releaseCtx, releaseLockScript, []string{key}, token).Err()
	}()

	return fn(ctx)
}

func (r *VendorLockRepo) acquire(ctx context.Context, key, token string) error {
	deadline := time.Now().Add(r.maxWait)

	for {
		ok, err := r.client.SetNX(ctx, key, token, r.ttl).Result()
		if err != nil {
			return fmt.Errorf("acquire vendor lock: %w", err)
		}
		if ok {
			return nil
		}
		if time.Now().After(deadline) {
			return ErrLockNotAcquired
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(r.retryInterval):
		}
	}
}

func vendorLockKey(vendorID int64) string {
	return fmt.Sprintf("lock:vendor:%d", vendorID)
}
