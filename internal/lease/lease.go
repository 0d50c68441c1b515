// Package lease implements a best-effort cycle lock backed by redis.
//
// Two overlapping cycles could read the same last-signal snapshot and each
// detect the same transition, causing a duplicate trade attempt. The lease is
// a guard against that: one fixed key, held for the cycle's duration, with a
// TTL so a crashed cycle cannot deadlock future runs. When redis is not
// configured the guard is disabled and the overlap remains an accepted risk.
package lease

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

const leaseKey = "bitcoin-watcher:cycle-lease"

// Lease acquires and releases the cycle lock.
type Lease struct {
	client *goredis.Client
	ttl    time.Duration
	logger *zap.Logger
}

// New connects to redis and returns a Lease. It pings the server so a
// misconfigured address fails at startup, not mid-cycle.
func New(addr, password string, db int, ttl time.Duration, logger *zap.Logger) (*Lease, error) {
	client := goredis.NewClient(&goredis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Lease{client: client, ttl: ttl, logger: logger.Named("lease")}, nil
}

// Acquire attempts to take the lease for the given owner. It returns false
// when another cycle currently holds it.
func (l *Lease) Acquire(ctx context.Context, owner string) (bool, error) {
	ok, err := l.client.SetNX(ctx, leaseKey, owner, l.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("lease acquire: %w", err)
	}
	return ok, nil
}

// Release frees the lease if the given owner still holds it. Release is
// best-effort; the TTL reclaims the lease either way.
func (l *Lease) Release(ctx context.Context, owner string) {
	current, err := l.client.Get(ctx, leaseKey).Result()
	if err != nil || current != owner {
		return
	}
	if err := l.client.Del(ctx, leaseKey).Err(); err != nil {
		l.logger.Warn("Failed to release cycle lease", zap.Error(err))
	}
}

// Close shuts down the redis connection.
func (l *Lease) Close() error {
	return l.client.Close()
}
