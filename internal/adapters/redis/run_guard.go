// Package redis provides Redis-backed adapters: the cross-replica run guard
// and the short-TTL device-location snapshot cache.
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultGuardKey = "dispatch:replan:lease"

// releaseScript deletes the lease only when this run still owns it, so a
// replica can never release a lease another run acquired after its own expired.
const releaseScript = `
if redis.call("get", KEYS[1]) == ARGV[1] then
	return redis.call("del", KEYS[1])
end
return 0`

// RunGuard serializes replan runs across replicas with a SET NX lease.
type RunGuard struct {
	client redis.UniversalClient
	key    string
}

// NewRunGuard creates a RunGuard on the default lease key.
func NewRunGuard(client redis.UniversalClient) *RunGuard {
	return &RunGuard{client: client, key: defaultGuardKey}
}

// NewRunGuardWithKey creates a RunGuard with a custom lease key.
func NewRunGuardWithKey(client redis.UniversalClient, key string) *RunGuard {
	return &RunGuard{client: client, key: key}
}

// TryAcquire attempts to take the lease for this run id. It returns false when
// another run already holds it. The TTL bounds how long a crashed replica can
// block new runs.
func (g *RunGuard) TryAcquire(ctx context.Context, runID string, ttl time.Duration) (bool, error) {
	ok, err := g.client.SetNX(ctx, g.key, runID, ttl).Result()
	if err != nil {
		return false, fmt.Errorf("acquire replan lease: %w", err)
	}
	return ok, nil
}

// Release drops the lease if this run still owns it.
func (g *RunGuard) Release(ctx context.Context, runID string) error {
	if err := g.client.Eval(ctx, releaseScript, []string{g.key}, runID).Err(); err != nil {
		return fmt.Errorf("release replan lease: %w", err)
	}
	return nil
}
