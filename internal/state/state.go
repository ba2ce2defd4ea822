// Package state holds the process-wide operating context shared by all
// gateway handlers. The context is written by the startup (and reconnect)
// path only; handlers read it and may wait a bounded time for it to appear.
package state

import (
	"context"
	"errors"
	"sync"
	"time"

	"infinite-experiment/bouncer/internal/db/repositories"
	"infinite-experiment/bouncer/internal/logging"
	"infinite-experiment/bouncer/internal/resolver"
)

const (
	DefaultPollInterval = time.Second
	DefaultWaitTimeout  = 10 * time.Second
)

var ErrNotReady = errors.New("operating context is not populated")

type Container struct {
	mu     sync.RWMutex
	opCtx  *resolver.OperatingContext
	store  *repositories.RecordRepository
	ready  chan struct{}
	closed bool

	PollInterval time.Duration
	WaitTimeout  time.Duration
}

func New(store *repositories.RecordRepository) *Container {
	return &Container{
		store:        store,
		ready:        make(chan struct{}),
		PollInterval: DefaultPollInterval,
		WaitTimeout:  DefaultWaitTimeout,
	}
}

// Set publishes a resolved context. A later call replaces it wholesale, which
// happens when a reconnect delivers a fresh guild snapshot.
func (c *Container) Set(opCtx *resolver.OperatingContext) {
	if opCtx == nil {
		return
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	c.opCtx = opCtx
	if !c.closed {
		close(c.ready)
		c.closed = true
	}
}

// Current returns the context without blocking.
func (c *Container) Current() (*resolver.OperatingContext, bool) {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.opCtx, c.opCtx != nil
}

func (c *Container) Store() *repositories.RecordRepository {
	return c.store
}

// Wait polls for the context every PollInterval for at most WaitTimeout.
func (c *Container) Wait(ctx context.Context) (*resolver.OperatingContext, error) {
	if opCtx, ok := c.Current(); ok {
		return opCtx, nil
	}

	deadline := time.NewTimer(c.WaitTimeout)
	defer deadline.Stop()
	ticker := time.NewTicker(c.PollInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		case <-deadline.C:
			return nil, ErrNotReady
		case <-c.ready:
			if opCtx, ok := c.Current(); ok {
				return opCtx, nil
			}
		case <-ticker.C:
			if opCtx, ok := c.Current(); ok {
				return opCtx, nil
			}
		}
	}
}

// MustWait is Wait for callers that cannot run without a context: exceeding
// the bound terminates the process.
func (c *Container) MustWait(ctx context.Context) *resolver.OperatingContext {
	opCtx, err := c.Wait(ctx)
	if err != nil {
		if errors.Is(err, context.Canceled) {
			return nil
		}
		logging.Fatal("Operating context was not populated in time, refusing to run without it",
			"timeout", c.WaitTimeout.String(),
			"error", err.Error(),
		)
	}
	return opCtx
}
