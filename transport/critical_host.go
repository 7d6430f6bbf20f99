//go:build !tinygo && !baremetal

package transport

import "sync"

// On the host the interrupt mask is a nesting depth. Simulated interrupts
// wait until it drops to zero and then run with the mask held, so a section
// never opens in the middle of a handler.
var irqMask = struct {
	mu    sync.Mutex
	idle  *sync.Cond
	depth int
}{}

func init() { irqMask.idle = sync.NewCond(&irqMask.mu) }

type irqState struct{}

func disableInterrupts() irqState {
	irqMask.mu.Lock()
	irqMask.depth++
	irqMask.mu.Unlock()
	return irqState{}
}

func restoreInterrupts(irqState) {
	irqMask.mu.Lock()
	irqMask.depth--
	if irqMask.depth == 0 {
		irqMask.idle.Broadcast()
	}
	irqMask.mu.Unlock()
}

// DispatchInterrupt runs handler as the interrupt context of a simulated
// peripheral. It waits for every open critical section to close first.
// handler must not open a critical section.
func DispatchInterrupt(handler func()) {
	irqMask.mu.Lock()
	defer irqMask.mu.Unlock()
	for irqMask.depth > 0 {
		irqMask.idle.Wait()
	}
	handler()
}
