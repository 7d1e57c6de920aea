package worker

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var ErrGameBusy = errors.New("game is busy")

const lockPollInterval = 25 * time.Millisecond

// releaseScript deletes the lock only while the caller still owns it.
var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Locker serializes work on a game across API and worker processes.
type Locker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLocker(rdb *redis.Client, ttl time.Duration) *Locker {
	return &Locker{rdb: rdb, ttl: ttl}
}

func lockKey(gameID uuid.UUID) string {
	return "game-lock:" + gameID.String()
}

// TryLock takes the game lock if it is free. The returned release func is nil when
// the lock is held elsewhere.
func (l *Locker) TryLock(ctx context.Context, gameID uuid.UUID) (func(), error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, lockKey(gameID), token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire game lock: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return func() {
		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		_ = releaseScript.Run(ctx, l.rdb, []string{lockKey(gameID)}, token).Err()
	}, nil
}

// Lock waits up to wait for the game lock and fails with ErrGameBusy after that.
func (l *Locker) Lock(ctx context.Context, gameID uuid.UUID, wait time.Duration) (func(), error) {
	deadline := time.Now().Add(wait)
	for {
		release, err := l.TryLock(ctx, gameID)
		if err != nil || release != nil {
			return release, err
		}
		if time.Now().After(deadline) {
			return nil, fmt.Errorf("%w: %s", ErrGameBusy, gameID)
		}
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-time.After(lockPollInterval):
		}
	}
}
