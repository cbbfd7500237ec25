// SPDX-License-Identifier: MPL-2.0
// SPDX-FileCopyrightText: Copyright (c) 2024, Emir Aganovic

package wavecycle

import (
	"context"
	"sync"
)

// Event is a single fire, multi waiter completion gate. Created unset, it
// transitions to set exactly once and never resets. Any number of waiters
// may observe it.
type Event struct {
	once sync.Once
	done chan struct{}
}

func NewEvent() *Event {
	return &Event{done: make(chan struct{})}
}

// Set fires the event. Safe to call more than once, only the first takes
// effect.
func (e *Event) Set() {
	e.once.Do(func() {
		close(e.done)
	})
}

func (e *Event) IsSet() bool {
	select {
	case <-e.done:
		return true
	default:
		return false
	}
}

// Done returns channel closed when the event fires.
func (e *Event) Done() <-chan struct{} {
	return e.done
}

// Wait suspends until the event fires or ctx is cancelled.
func (e *Event) Wait(ctx context.Context) error {
	select {
	case <-e.done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
