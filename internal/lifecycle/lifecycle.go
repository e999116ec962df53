// Package lifecycle coordinates startup and shutdown across service systems.
// Systems register startup hooks that run before the service reports ready,
// and shutdown hooks that observe the coordinator context for cancellation.
package lifecycle

import (
	"context"
	"sync"
	"sync/atomic"
)

// ReadinessChecker reports whether startup has completed.
type ReadinessChecker interface {
	Ready() bool
}

// Coordinator tracks registered startup and shutdown hooks and owns the
// context that signals shutdown to long-running systems.
type Coordinator struct {
	ctx     context.Context
	cancel  context.CancelFunc
	mu      sync.Mutex
	startup []func()
	wg      sync.WaitGroup
	ready   atomic.Bool
}

// New creates a Coordinator with an active context.
func New() *Coordinator {
	ctx, cancel := context.WithCancel(context.Background())
	return &Coordinator{
		ctx:    ctx,
		cancel: cancel,
	}
}

// Context returns the coordinator context. It is cancelled when Shutdown is called.
func (c *Coordinator) Context() context.Context {
	return c.ctx
}

// Ready reports whether WaitForStartup has completed.
func (c *Coordinator) Ready() bool {
	return c.ready.Load()
}

// OnStartup registers a function to run during WaitForStartup.
// Functions run in registration order.
func (c *Coordinator) OnStartup(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.startup = append(c.startup, fn)
}

// OnShutdown registers a function that runs on its own goroutine.
// The function should block on Context().Done() and perform cleanup when
// the context is cancelled; Shutdown waits for all such functions to return.
func (c *Coordinator) OnShutdown(fn func()) {
	c.wg.Add(1)
	go func() {
		defer c.wg.Done()
		fn()
	}()
}

// WaitForStartup runs all registered startup functions and marks the
// coordinator ready.
func (c *Coordinator) WaitForStartup() {
	c.mu.Lock()
	fns := c.startup
	c.startup = nil
	c.mu.Unlock()

	for _, fn := range fns {
		fn()
	}

	c.ready.Store(true)
}

// Shutdown cancels the coordinator context and waits for all shutdown
// functions to complete.
func (c *Coordinator) Shutdown() {
	c.cancel()
	c.wg.Wait()
}
