package bookings

import (
	"context"
	"fmt"
	"time"

	"festbook/internal/shared/constants"

	"github.com/redis/go-redis/v9"
)

// Take the lock if free, or refresh it if the caller already owns it.
// KEYS[1] = lock key, ARGV[1] = owner token, ARGV[2] = ttl in ms
var luaAcquireAttemptLock = redis.NewScript(`
local owner = redis.call("GET", KEYS[1])
if owner == false then
    redis.call("SET", KEYS[1], ARGV[1], "PX", tonumber(ARGV[2]))
    return 1
end
if owner == ARGV[1] then
    redis.call("PEXPIRE", KEYS[1], tonumber(ARGV[2]))
    return 1
end
return 0
`)

// Delete the lock only when the caller owns it
var luaReleaseAttemptLock = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
    return redis.call("DEL", KEYS[1])
end
return 0
`)

// AttemptLock keeps one in-flight attempt per student and program across
// sessions and gateway instances. The owner token is the session id.
type AttemptLock struct {
	redis redis.UniversalClient
	ttl   time.Duration
}

func NewAttemptLock(client redis.UniversalClient, ttl time.Duration) *AttemptLock {
	if ttl <= 0 {
		ttl = constants.TTL_ATTEMPT_LOCK
	}
	return &AttemptLock{redis: client, ttl: ttl}
}

func (l *AttemptLock) Acquire(ctx context.Context, studentID, programID int64, owner string) (bool, error) {
	key := constants.BuildAttemptLockKey(studentID, programID)
	ok, err := luaAcquireAttemptLock.Run(ctx, l.redis, []string{key}, owner, l.ttl.Milliseconds()).Int()
	if err != nil {
		return false, fmt.Errorf("acquire attempt lock: %w", err)
	}
	return ok == 1, nil
}

func (l *AttemptLock) Release(ctx context.Context, studentID, programID int64, owner string) error {
	key := constants.BuildAttemptLockKey(studentID, programID)
	if err := luaReleaseAttemptLock.Run(ctx, l.redis, []string{key}, owner).Err(); err != nil {
		return fmt.Errorf("release attempt lock: %w", err)
	}
	return nil
}
