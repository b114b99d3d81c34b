// Package redislock provides the ticket creation lock shared by every API
// replica. It is a single Redis key taken with SET NX PX and released only
// by the holder of its token.
package redislock

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"github.com/lorrc/helpdesk-core/internal/core/ports"
	"github.com/redis/go-redis/v9"
)

const (
	DefaultKey   = "helpdesk:ticket-create-lock"
	DefaultTTL   = 5 * time.Second
	DefaultRetry = 25 * time.Millisecond
)

// releaseScript deletes the key only while it still holds our token, so a
// holder whose TTL expired cannot release someone else's lock.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Options tunes the lock. Zero values take the defaults.
type Options struct {
	Key   string
	TTL   time.Duration
	Retry time.Duration
}

// Lock is a distributed ports.CreationLock.
type Lock struct {
	client redis.Cmdable
	key    string
	ttl    time.Duration
	retry  time.Duration
	logger *slog.Logger
}

var _ ports.CreationLock = (*Lock)(nil)

func New(client redis.Cmdable, opts Options, logger *slog.Logger) *Lock {
	if opts.Key == "" {
		opts.Key = DefaultKey
	}
	if opts.TTL <= 0 {
		opts.TTL = DefaultTTL
	}
	if opts.Retry <= 0 {
		opts.Retry = DefaultRetry
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Lock{client: client, key: opts.Key, ttl: opts.TTL, retry: opts.Retry, logger: logger}
}

// Acquire polls until the key is free or ctx is done. The returned release
// is safe to call more than once.
func (l *Lock) Acquire(ctx context.Context) (func(), error) {
	token := uuid.NewString()

	timer := time.NewTimer(0)
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-timer.C:
		}

		ok, err := l.client.SetNX(ctx, l.key, token, l.ttl).Result()
		if err != nil {
			if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
				return nil, err
			}
			return nil, fmt.Errorf("redis lock %q: %w", l.key, err)
		}
		if ok {
			return l.releaser(token), nil
		}
		timer.Reset(l.retry)
	}
}

func (l *Lock) releaser(token string) func() {
	released := false
	return func() {
		if released {
			return
		}
		released = true

		ctx, cancel := context.WithTimeout(context.Background(), time.Second)
		defer cancel()
		if err := releaseScript.Run(ctx, l.client, []string{l.key}, token).Err(); err != nil {
			l.logger.Warn("failed to release creation lock", "key", l.key, "error", err)
		}
	}
}
