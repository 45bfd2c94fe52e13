// Package flight guards session-driving operations so that at most one runs at a time.
package flight

import (
	"context"
	"sync"
)

// State is the coordinator's externally visible state.
type State int

const (
	Idle State = iota
	Busy
)

func (s State) String() string {
	if s == Busy {
		return "busy"
	}
	return "idle"
}

// Coordinator is a single-slot semaphore. Holding the slot and being Busy are the same
// fact, so checking and acquiring happen in one step.
type Coordinator struct {
	slot chan struct{}
}

// NewCoordinator creates an idle coordinator.
func NewCoordinator() *Coordinator {
	return &Coordinator{slot: make(chan struct{}, 1)}
}

// TryAcquire takes the slot if it is free. ok is false when another operation holds it.
func (c *Coordinator) TryAcquire() (release func(), ok bool) {
	select {
	case c.slot <- struct{}{}:
		return c.releaser(), true
	default:
		return nil, false
	}
}

// Acquire waits for the slot until ctx is done.
func (c *Coordinator) Acquire(ctx context.Context) (release func(), err error) {
	select {
	case c.slot <- struct{}{}:
		return c.releaser(), nil
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// IsBusy reports whether a session operation is in flight.
func (c *Coordinator) IsBusy() bool {
	return len(c.slot) == 1
}

// State returns Busy or Idle.
func (c *Coordinator) State() State {
	if c.IsBusy() {
		return Busy
	}
	return Idle
}

func (c *Coordinator) releaser() func() {
	var once sync.Once
	return func() {
		once.Do(func() { <-c.slot })
	}
}
