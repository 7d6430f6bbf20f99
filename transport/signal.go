package transport

import (
	"context"
	"fmt"
	"sync/atomic"

	proto "github.com/ystepanoff/nrfradio/protocol"
)

// Completion holds one pending flag per event. The interrupt handler raises
// flags; foreground code takes them. Raising an already pending flag is a
// no-op, so each event behaves as a single-slot mailbox.
type Completion struct {
	flags [numEvents]atomic.Bool
}

func (c *Completion) raise(e Event) { c.flags[e].Store(true) }

// Pending reports whether e has fired and not been taken.
func (c *Completion) Pending(e Event) bool { return c.flags[e].Load() }

// Take consumes a pending e.
func (c *Completion) Take(e Event) bool { return c.flags[e].CompareAndSwap(true, false) }

// Clear drops a stale e before a new operation is started.
func (c *Completion) Clear(e Event) { c.flags[e].Store(false) }

// Wait blocks until e is taken or ctx is done, calling idle between polls.
// It must not be called inside a critical section: the interrupt that
// raises e could never run.
func (c *Completion) Wait(ctx context.Context, e Event, idle func()) error {
	return poll(ctx, e, func() bool { return c.Take(e) }, idle)
}

// poll calls idle until ready reports true or ctx is done.
func poll(ctx context.Context, e Event, ready func() bool, idle func()) error {
	for !ready() {
		select {
		case <-ctx.Done():
			return fmt.Errorf("%w: waiting for %v: %w", proto.ErrTimeout, e, ctx.Err())
		default:
		}
		if idle != nil {
			idle()
		}
	}
	return nil
}
