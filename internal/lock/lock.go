// Package lock provides the deployment-wide mutual exclusion used
// around application submission.  The duplicate-submission and
// protected-eligibility checks read then write without a serializable
// transaction, so two concurrent submissions could double-count; the
// mutex serializes them.  Acquisition is bounded: a caller that cannot
// get the lock within the budget receives ErrBusy and is told to retry,
// it never blocks indefinitely.
package lock

import (
    "context"
    "errors"
    "sync"
    "time"

    "github.com/redis/go-redis/v9"
)

// ErrBusy is returned when the lock cannot be acquired within the
// acquisition budget.  Safe to retry after a short delay.
var ErrBusy = errors.New("another submission is in progress")

// Locker serializes the resolver's read-check-write sequence.  Acquire
// blocks up to the configured budget and returns a release function
// that must be called on every exit path.
type Locker interface {
    Acquire(ctx context.Context) (release func(), err error)
}

const (
    acquireBudget = time.Second
    retryInterval = 50 * time.Millisecond
    lockTTL       = 10 * time.Second // safety net if a holder dies mid-operation
)

// releaseScript deletes the lock only when it still carries our token,
// so a slow holder cannot release a lock that has expired and been
// re-acquired by someone else.
var releaseScript = redis.NewScript(`
    if redis.call('GET', KEYS[1]) == ARGV[1] then
        return redis.call('DEL', KEYS[1])
    end
    return 0
`)

// RedisLock implements Locker over a shared redis instance, making the
// guard hold across replicas of the service.
type RedisLock struct {
    rdb *redis.Client
    key string
}

// NewRedisLock returns a RedisLock using the given key.
func NewRedisLock(rdb *redis.Client, key string) *RedisLock {
    return &RedisLock{rdb: rdb, key: key}
}

// Acquire polls SET NX until it wins or the budget runs out.
func (l *RedisLock) Acquire(ctx context.Context) (func(), error) {
    token := time.Now().UTC().Format(time.RFC3339Nano)
    deadline := time.Now().Add(acquireBudget)
    for {
        ok, err := l.rdb.SetNX(ctx, l.key, token, lockTTL).Result()
        if err != nil {
            return nil, err
        }
        if ok {
            return func() {
                rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
                defer cancel()
                _, _ = releaseScript.Run(rctx, l.rdb, []string{l.key}, token).Result()
            }, nil
        }
        if time.Now().After(deadline) {
            return nil, ErrBusy
        }
        select {
        case <-ctx.Done():
            return nil, ctx.Err()
        case <-time.After(retryInterval):
        }
    }
}

// LocalLock implements Locker with an in-process mutex.  Used when no
// redis client is available; correct for the single-instance deployment
// the service is designed for.
type LocalLock struct {
    mu sync.Mutex
}

// NewLocalLock returns a LocalLock.
func NewLocalLock() *LocalLock { return &LocalLock{} }

// Acquire spins on TryLock up to the acquisition budget.
func (l *LocalLock) Acquire(ctx context.Context) (func(), error) {
    deadline := time.Now().Add(acquireBudget)
    for {
        if l.mu.TryLock() {
            return l.mu.Unlock, nil
        }
        if time.Now().After(deadline) {
            return nil, ErrBusy
        }
        select {
        case <-ctx.Done():
            return nil, ctx.Err()
        case <-time.After(retryInterval):
        }
    }
}
