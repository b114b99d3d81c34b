package services

import (
	"context"

	"github.com/lorrc/helpdesk-core/internal/core/ports"
)

// LocalCreationLock serializes ticket creation within one process. It is
// the default when no distributed lock is configured.
type LocalCreationLock struct {
	sem chan struct{}
}

var _ ports.CreationLock = (*LocalCreationLock)(nil)

func NewLocalCreationLock() *LocalCreationLock {
	return &LocalCreationLock{sem: make(chan struct{}, 1)}
}

// Acquire blocks until the lock is free or ctx is done.
func (l *LocalCreationLock) Acquire(ctx context.Context) (func(), error) {
	select {
	case l.sem <- struct{}{}:
		return func() { <-l.sem }, nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}
