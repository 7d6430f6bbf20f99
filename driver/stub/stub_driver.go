//go:build !tinygo && !baremetal

package stub

import (
	"sync"

	proto "github.com/ystepanoff/nrfradio/protocol"
	"github.com/ystepanoff/nrfradio/transport"
)

// Driver simulates the radio peripheral for host-side testing.
//
// Transient states advance one step per STATE read: ramp-up states become
// idle (READY), disabling states become Disabled (DISABLED). START in TxIdle
// sends the frame in the registered buffer and raises END at once; START in
// RxIdle consumes a queued frame or waits in Receiving for the next one.
// Frames arriving outside Receiving are queued. Task sequences the hardware
// would not accept are counted in Violations and otherwise ignored.
type Driver struct {
	mu sync.Mutex

	state   uint32
	events  map[transport.Event]bool
	inten   map[transport.Event]bool
	nvic    bool
	handler func()
	ptr     *proto.Buffer

	layout  proto.Layout
	maxLen  int
	channel uint8

	loopback bool
	peers    []*Driver

	rxQueue frameQueue
	txLog   frameQueue

	tasks      []transport.Task
	violations int
}

var _ transport.Peripheral = (*Driver)(nil)

// DefaultQueueCapacity is how many frames the simulator keeps queued for
// reception and in the transmit log before dropping the oldest.
const DefaultQueueCapacity = 64

type Option func(*Driver)

// WithQueueCapacity bounds the receive queue and the transmit log. Values
// below one are raised to one.
func WithQueueCapacity(n int) Option {
	return func(d *Driver) {
		d.rxQueue = newFrameQueue(n)
		d.txLog = newFrameQueue(n)
	}
}

func New(opts ...Option) *Driver {
	d := &Driver{
		events:  make(map[transport.Event]bool),
		inten:   make(map[transport.Event]bool),
		layout:  proto.Layout{S0: 1},
		maxLen:  proto.MaxFrameSize - 2,
		rxQueue: newFrameQueue(DefaultQueueCapacity),
		txLog:   newFrameQueue(DefaultQueueCapacity),
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// NewLoopback returns a Driver that receives its own transmissions.
func NewLoopback(opts ...Option) *Driver {
	d := New(opts...)
	d.loopback = true
	return d
}

// Connect links two simulated radios so each receives what the other sends.
func Connect(a, b *Driver) {
	a.mu.Lock()
	a.peers = append(a.peers, b)
	a.mu.Unlock()

	b.mu.Lock()
	b.peers = append(b.peers, a)
	b.mu.Unlock()
}

func (d *Driver) Configure(cfg proto.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.layout, d.maxLen = proto.DecodePCNF(cfg.PCNF0(), cfg.PCNF1())
	d.channel = cfg.Channel
	return nil
}

func (d *Driver) SetChannel(channel uint8) error {
	if channel > proto.MaxChannel {
		return proto.ErrInvalidChannel
	}
	d.mu.Lock()
	defer d.mu.Unlock()
	d.channel = channel
	return nil
}

// State returns the state as read, then lets a transient state progress.
func (d *Driver) State() uint32 {
	d.mu.Lock()
	defer d.mu.Unlock()

	s := d.state
	switch d.mode() {
	case proto.ModeRxRampUp:
		d.state = uint32(proto.ModeRxIdle)
		d.raise(transport.EventReady)
	case proto.ModeTxRampUp:
		d.state = uint32(proto.ModeTxIdle)
		d.raise(transport.EventReady)
	case proto.ModeRxDisabling, proto.ModeTxDisabling:
		d.state = uint32(proto.ModeDisabled)
		d.raise(transport.EventDisabled)
	}
	return s
}

func (d *Driver) Trigger(t transport.Task) {
	d.mu.Lock()
	d.tasks = append(d.tasks, t)

	var sent []byte
	mode := d.mode()
	switch t {
	case transport.TaskTXEN, transport.TaskRXEN:
		if mode != proto.ModeDisabled {
			d.violations++
			break
		}
		if t == transport.TaskTXEN {
			d.state = uint32(proto.ModeTxRampUp)
		} else {
			d.state = uint32(proto.ModeRxRampUp)
		}
	case transport.TaskDISABLE:
		switch {
		case mode == proto.ModeDisabled || mode.IsDisabling():
		case mode.IsReceive():
			d.state = uint32(proto.ModeRxDisabling)
		case mode.IsTransmit():
			d.state = uint32(proto.ModeTxDisabling)
		default:
			d.state = uint32(proto.ModeDisabled)
		}
	case transport.TaskSTART:
		switch {
		case d.ptr == nil:
			d.violations++
		case mode == proto.ModeTxIdle:
			sent = d.readFrame()
			d.txLog.push(sent)
			d.raise(transport.EventEnd)
		case mode == proto.ModeRxIdle:
			d.state = uint32(proto.ModeReceiving)
			if frame, ok := d.rxQueue.pop(); ok {
				d.dma(frame)
			}
		default:
			d.violations++
		}
	case transport.TaskSTOP:
		switch mode {
		case proto.ModeReceiving:
			d.state = uint32(proto.ModeRxIdle)
		case proto.ModeTransmitting:
			d.state = uint32(proto.ModeTxIdle)
		}
	}

	var targets []*Driver
	if sent != nil {
		targets = append(targets, d.peers...)
		if d.loopback {
			targets = append(targets, d)
		}
	}
	d.mu.Unlock()

	for _, peer := range targets {
		peer.deliver(sent)
	}
}

func (d *Driver) SetPacketPtr(buf *proto.Buffer) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.ptr = buf
}

func (d *Driver) EventSet(e transport.Event) bool {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.events[e]
}

func (d *Driver) ClearEvent(e transport.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.events[e] = false
}

func (d *Driver) EnableInterrupt(e transport.Event) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.inten[e] = true
}

func (d *Driver) UnmaskIRQ() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.nvic = true
}

func (d *Driver) SetInterruptHandler(handler func()) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handler = handler
}

// mode decodes STATE; forced codes outside the defined set come back as
// ModeUnrecognized. Callers hold d.mu.
func (d *Driver) mode() proto.Mode {
	m, _ := proto.DecodeMode(d.state)
	return m
}

// raise sets an event register and, when enabled, fires the interrupt.
// Callers hold d.mu.
func (d *Driver) raise(e transport.Event) {
	d.events[e] = true
	if d.inten[e] && d.nvic && d.handler != nil {
		go transport.DispatchInterrupt(d.handler)
	}
}

// readFrame copies the outgoing frame out of the registered buffer, payload
// cut to MAXLEN like the hardware does. Callers hold d.mu.
func (d *Driver) readFrame() []byte {
	hdr := d.layout.HeaderSize()
	n := hdr + min(int(d.ptr[d.layout.S0]), d.maxLen)
	frame := make([]byte, n)
	copy(frame, d.ptr[:n])
	return frame
}

// dma writes a received frame into the registered buffer. LENGTH is kept as
// received; the payload is cut to MAXLEN. Callers hold d.mu.
func (d *Driver) dma(frame []byte) {
	n := min(len(frame), d.layout.HeaderSize()+d.maxLen)
	copy(d.ptr[:], frame[:n])
	d.state = uint32(proto.ModeRxIdle)
	d.raise(transport.EventEnd)
}

func (d *Driver) deliver(frame []byte) {
	d.mu.Lock()
	defer d.mu.Unlock()
	if d.mode() == proto.ModeReceiving && d.ptr != nil {
		d.dma(frame)
		return
	}
	cp := make([]byte, len(frame))
	copy(cp, frame)
	d.rxQueue.push(cp)
}

// InjectRx puts a raw frame (RAM layout) on the air for this radio.
func (d *Driver) InjectRx(data []byte) { d.deliver(data) }

// ForceState overwrites STATE, including with codes the hardware never uses.
func (d *Driver) ForceState(raw uint32) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state = raw
}

func (d *Driver) GetTxLog() [][]byte {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.txLog.snapshot()
}

// Tasks returns the task triggers seen so far, oldest first.
func (d *Driver) Tasks() []transport.Task {
	d.mu.Lock()
	defer d.mu.Unlock()
	out := make([]transport.Task, len(d.tasks))
	copy(out, d.tasks)
	return out
}

func (d *Driver) ClearTasks() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.tasks = d.tasks[:0]
}

// Violations counts task triggers the hardware would not have accepted.
func (d *Driver) Violations() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.violations
}

// Dropped counts received frames evicted from a full queue before any
// START consumed them.
func (d *Driver) Dropped() int {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.rxQueue.dropped
}

func (d *Driver) Channel() uint8 {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.channel
}

// frameQueue is a bounded FIFO of frames. When full, a push evicts the
// oldest frame, as a receiver that is not listening misses traffic.
type frameQueue struct {
	frames  [][]byte
	first   int
	n       int
	dropped int
}

func newFrameQueue(capacity int) frameQueue {
	return frameQueue{frames: make([][]byte, max(capacity, 1))}
}

func (q *frameQueue) push(frame []byte) {
	if q.n == len(q.frames) {
		q.frames[q.first] = nil
		q.first = (q.first + 1) % len(q.frames)
		q.n--
		q.dropped++
	}
	q.frames[(q.first+q.n)%len(q.frames)] = frame
	q.n++
}

func (q *frameQueue) pop() ([]byte, bool) {
	if q.n == 0 {
		return nil, false
	}
	frame := q.frames[q.first]
	q.frames[q.first] = nil
	q.first = (q.first + 1) % len(q.frames)
	q.n--
	return frame, true
}

// snapshot copies the queued frames, oldest first.
func (q *frameQueue) snapshot() [][]byte {
	out := make([][]byte, q.n)
	for i := range out {
		f := q.frames[(q.first+i)%len(q.frames)]
		out[i] = append([]byte(nil), f...)
	}
	return out
}
