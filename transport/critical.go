package transport

// CriticalSection proves that interrupts are masked. It is only handed out
// by Critical and is worthless after the callback returns.
type CriticalSection struct {
	active bool
}

func (cs *CriticalSection) valid() bool { return cs != nil && cs.active }

// Critical runs fn with the radio interrupt unable to preempt it. Register
// sequences that must not be torn (buffer pointer + mode switch + START)
// run inside it. Sections nest; the interrupt is unmasked when the outermost
// one returns.
func Critical(fn func(cs *CriticalSection) error) error {
	state := disableInterrupts()
	cs := &CriticalSection{active: true}
	defer func() {
		cs.active = false
		restoreInterrupts(state)
	}()
	return fn(cs)
}
