//go:build tinygo || baremetal

package nrf

import (
	"runtime/interrupt"
	"runtime/volatile"
	"sync/atomic"
	"unsafe"

	proto "github.com/ystepanoff/nrfradio/protocol"
	"github.com/ystepanoff/nrfradio/transport"

	"device/nrf"
)

var (
	claimed atomic.Bool
	handler func()
)

// Driver provides a transport.Peripheral backed by the real RADIO registers.
// There is one RADIO per chip, so New hands it out once.
type Driver struct {
	irq interrupt.Interrupt
	// keeps the registered buffer reachable while the peripheral uses it
	ptr *proto.Buffer
}

func New() (*Driver, error) {
	if !claimed.CompareAndSwap(false, true) {
		return nil, proto.ErrPeripheralClaimed
	}
	return &Driver{}, nil
}

func (d *Driver) Configure(cfg proto.Config) error { return configureRadio(cfg) }

func (d *Driver) SetChannel(channel uint8) error {
	if channel > proto.MaxChannel {
		return proto.ErrInvalidChannel
	}
	nrf.RADIO.FREQUENCY.Set(uint32(channel))
	return nil
}

func (d *Driver) State() uint32 { return nrf.RADIO.STATE.Get() }

func (d *Driver) Trigger(t transport.Task) {
	switch t {
	case transport.TaskTXEN:
		nrf.RADIO.TASKS_TXEN.Set(1)
	case transport.TaskRXEN:
		nrf.RADIO.TASKS_RXEN.Set(1)
	case transport.TaskSTART:
		nrf.RADIO.TASKS_START.Set(1)
	case transport.TaskSTOP:
		nrf.RADIO.TASKS_STOP.Set(1)
	case transport.TaskDISABLE:
		nrf.RADIO.TASKS_DISABLE.Set(1)
	}
}

func (d *Driver) SetPacketPtr(buf *proto.Buffer) {
	d.ptr = buf
	nrf.RADIO.PACKETPTR.Set(uint32(uintptr(unsafe.Pointer(&buf[0]))))
}

func (d *Driver) EventSet(e transport.Event) bool {
	reg := eventRegister(e)
	return reg != nil && reg.Get() != 0
}

func (d *Driver) ClearEvent(e transport.Event) {
	if reg := eventRegister(e); reg != nil {
		reg.Set(0)
	}
}

func (d *Driver) EnableInterrupt(e transport.Event) {
	switch e {
	case transport.EventReady:
		nrf.RADIO.INTENSET.Set(nrf.RADIO_INTENSET_READY_Msk)
	case transport.EventEnd:
		nrf.RADIO.INTENSET.Set(nrf.RADIO_INTENSET_END_Msk)
	case transport.EventDisabled:
		nrf.RADIO.INTENSET.Set(nrf.RADIO_INTENSET_DISABLED_Msk)
	}
}

// UnmaskIRQ enables the RADIO line in the NVIC. Its priority is set by the
// board setup before this is called.
func (d *Driver) UnmaskIRQ() { d.irq.Enable() }

func (d *Driver) SetInterruptHandler(fn func()) {
	handler = fn
	d.irq = interrupt.New(nrf.IRQ_RADIO, handleRadio)
}

func handleRadio(interrupt.Interrupt) {
	if handler != nil {
		handler()
	}
}

func eventRegister(e transport.Event) *volatile.Register32 {
	switch e {
	case transport.EventReady:
		return &nrf.RADIO.EVENTS_READY
	case transport.EventEnd:
		return &nrf.RADIO.EVENTS_END
	case transport.EventDisabled:
		return &nrf.RADIO.EVENTS_DISABLED
	}
	return nil
}

var _ transport.Peripheral = (*Driver)(nil)
