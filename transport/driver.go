package transport

import proto "github.com/ystepanoff/nrfradio/protocol"

// Task is a trigger register of the radio.
type Task uint8

const (
	TaskTXEN Task = iota
	TaskRXEN
	TaskSTART
	TaskSTOP
	TaskDISABLE
)

func (t Task) String() string {
	switch t {
	case TaskTXEN:
		return "TXEN"
	case TaskRXEN:
		return "RXEN"
	case TaskSTART:
		return "START"
	case TaskSTOP:
		return "STOP"
	case TaskDISABLE:
		return "DISABLE"
	}
	return "UNKNOWN"
}

// Event is an event register of the radio that may raise an interrupt.
type Event uint8

const (
	EventReady Event = iota
	EventEnd
	EventDisabled

	numEvents
)

func (e Event) String() string {
	switch e {
	case EventReady:
		return "READY"
	case EventEnd:
		return "END"
	case EventDisabled:
		return "DISABLED"
	}
	return "UNKNOWN"
}

// Peripheral is the register block of one radio peripheral. Implementations
// perform plain register accesses; all sequencing lives in Radio.
type Peripheral interface {
	// Configure programs address, channel and packet layout.
	Configure(cfg proto.Config) error
	SetChannel(channel uint8) error

	// State returns the raw STATE register.
	State() uint32
	Trigger(t Task)

	// SetPacketPtr hands buf to the peripheral's EasyDMA. The peripheral
	// reads or writes it whenever START is triggered.
	SetPacketPtr(buf *proto.Buffer)

	EventSet(e Event) bool
	ClearEvent(e Event)

	// EnableInterrupt sets the event's INTENSET bit. UnmaskIRQ enables the
	// radio line in the interrupt controller.
	EnableInterrupt(e Event)
	UnmaskIRQ()

	// SetInterruptHandler binds the radio interrupt entry point.
	SetInterruptHandler(handler func())
}
