package transport

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"sync/atomic"
	"time"

	proto "github.com/ystepanoff/nrfradio/protocol"
)

const defaultPollLimit = 1 << 20

// Radio is the single owner of one radio peripheral. Every task, event and
// configuration register write goes through it.
type Radio struct {
	regs Peripheral
	cfg  proto.Config

	signal  Completion
	enabled [numEvents]atomic.Bool
	hook    func(Event)

	// txBuf is the DMA source for SendPacket; armed is whatever PACKETPTR
	// currently points at, nil once a caller's buffer has been handed back.
	txBuf    proto.Buffer
	armed    atomic.Pointer[proto.Buffer]
	inFlight atomic.Bool
	current  atomic.Pointer[Transfer]

	log       *slog.Logger
	idle      func()
	pollLimit int
}

type Option func(*Radio)

// WithLogger enables debug logging. Nothing is logged from interrupt context
// or inside critical sections.
func WithLogger(l *slog.Logger) Option { return func(r *Radio) { r.log = l } }

// WithIdle replaces the function called between completion polls
// (runtime.Gosched by default), e.g. to sleep until the next interrupt.
func WithIdle(fn func()) Option { return func(r *Radio) { r.idle = fn } }

// WithCompletionHook registers fn to be called from the interrupt handler
// after each acknowledged event. fn runs in interrupt context.
func WithCompletionHook(fn func(Event)) Option { return func(r *Radio) { r.hook = fn } }

// WithPollLimit bounds the number of STATE reads spent waiting for a mode.
func WithPollLimit(n int) Option { return func(r *Radio) { r.pollLimit = n } }

// NewRadio takes ownership of p, programs it with cfg and binds the
// interrupt handler. It must be called once per peripheral.
func NewRadio(p Peripheral, cfg proto.Config, opts ...Option) (*Radio, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	r := &Radio{
		regs:      p,
		cfg:       cfg,
		idle:      runtime.Gosched,
		pollLimit: defaultPollLimit,
	}
	for _, opt := range opts {
		opt(r)
	}
	if err := p.Configure(cfg); err != nil {
		return nil, err
	}
	p.SetInterruptHandler(r.handleInterrupt)
	r.debug("radio configured", "channel", cfg.Channel, "frequency", cfg.Frequency().String(), "layout", fmt.Sprintf("%+v", cfg.Layout))
	return r, nil
}

func (r *Radio) Config() proto.Config { return r.cfg }

// Completion exposes the interrupt-driven event flags.
func (r *Radio) Completion() *Completion { return &r.signal }

// CurrentMode reads STATE. An unrecognized code is reported, not trusted.
func (r *Radio) CurrentMode() (proto.Mode, error) {
	return proto.DecodeMode(r.regs.State())
}

// Disable triggers DISABLE. It is valid in every mode.
func (r *Radio) Disable() { r.regs.Trigger(TaskDISABLE) }

func (r *Radio) SwitchToReceive() error { return r.switchTo(TaskRXEN) }

func (r *Radio) SwitchToTransmit() error { return r.switchTo(TaskTXEN) }

// switchTo is the only path to RXEN and TXEN: the radio is disabled and
// observed Disabled before the enable task is triggered.
func (r *Radio) switchTo(enable Task) error {
	r.Disable()
	if err := r.awaitMode(proto.ModeDisabled); err != nil {
		return err
	}
	r.regs.Trigger(enable)
	return nil
}

// Start triggers START on the buffer registered by the last transfer.
// It is meaningful in RxIdle or TxIdle only.
func (r *Radio) Start() error {
	if r.armed.Load() == nil {
		return proto.ErrNoBuffer
	}
	r.regs.Trigger(TaskSTART)
	return nil
}

// Stop aborts a frame in progress.
func (r *Radio) Stop() { r.regs.Trigger(TaskSTOP) }

// EnableReadyInterrupt arms READY and unmasks the radio interrupt line.
// Calling it again is harmless.
func (r *Radio) EnableReadyInterrupt() { r.enableInterrupt(EventReady) }

func (r *Radio) enableInterrupt(e Event) {
	r.enabled[e].Store(true)
	r.regs.EnableInterrupt(e)
	r.regs.UnmaskIRQ()
}

// SetChannel retunes the radio. The radio is left disabled.
func (r *Radio) SetChannel(ch uint8) error {
	if ch > proto.MaxChannel {
		return proto.ErrInvalidChannel
	}
	if err := r.claim(); err != nil {
		return err
	}
	defer r.release()

	r.Disable()
	if err := r.awaitMode(proto.ModeDisabled); err != nil {
		return err
	}
	if err := r.regs.SetChannel(ch); err != nil {
		return err
	}
	r.cfg.Channel = ch
	r.debug("channel set", "channel", ch, "frequency", r.cfg.Frequency().String())
	return nil
}

// SendPacket starts transmitting p. The register sequence (buffer pointer,
// mode switch, START) runs under cs. The returned Transfer owns p until
// Wait or Abort hands it back.
func (r *Radio) SendPacket(cs *CriticalSection, p *proto.Packet) (*Transfer, error) {
	if !cs.valid() {
		return nil, proto.ErrNoCriticalSection
	}
	if p == nil {
		return nil, proto.ErrNoBuffer
	}
	if p.Layout() != r.cfg.Layout {
		return nil, fmt.Errorf("%w: packet %+v, radio %+v", proto.ErrLayoutMismatch, p.Layout(), r.cfg.Layout)
	}
	if p.Len() > int(r.cfg.MaxPayload) {
		return nil, fmt.Errorf("%w: payload %d exceeds MAXLEN %d", proto.ErrOversizedFrame, p.Len(), r.cfg.MaxPayload)
	}
	if err := r.claim(); err != nil {
		return nil, err
	}

	p.MarshalTo(&r.txBuf)
	r.enableInterrupt(EventEnd)
	r.signal.Clear(EventEnd)
	r.regs.ClearEvent(EventEnd)
	r.regs.SetPacketPtr(&r.txBuf)
	r.armed.Store(&r.txBuf)

	if err := r.switchTo(TaskTXEN); err != nil {
		r.release()
		return nil, err
	}
	if err := r.awaitMode(proto.ModeTxIdle); err != nil {
		r.release()
		return nil, err
	}

	t := &Transfer{radio: r, packet: p}
	r.current.Store(t)
	r.regs.Trigger(TaskSTART)
	return t, nil
}

// Send transmits p and waits for END.
func (r *Radio) Send(ctx context.Context, p *proto.Packet) error {
	var tr *Transfer
	err := Critical(func(cs *CriticalSection) (err error) {
		tr, err = r.SendPacket(cs, p)
		return err
	})
	if err != nil {
		return err
	}
	_, err = tr.Wait(ctx)
	return err
}

// ReceivePacket points the radio at buf, receives one frame and returns it.
// buf belongs to the peripheral until ReceivePacket returns. Without a ctx
// deadline, Config.ReceiveTimeout applies. A LENGTH field larger than the
// space in buf (or MAXLEN) is reported as ErrFramingOverrun.
func (r *Radio) ReceivePacket(ctx context.Context, buf *proto.Buffer) (*proto.Packet, error) {
	if buf == nil {
		return nil, proto.ErrNoBuffer
	}
	if err := r.claim(); err != nil {
		return nil, err
	}
	defer r.release()

	r.enableInterrupt(EventEnd)
	err := Critical(func(cs *CriticalSection) error {
		r.signal.Clear(EventEnd)
		r.regs.ClearEvent(EventEnd)
		r.regs.SetPacketPtr(buf)
		r.armed.Store(buf)
		if err := r.switchTo(TaskRXEN); err != nil {
			return err
		}
		if err := r.awaitMode(proto.ModeRxIdle); err != nil {
			return err
		}
		r.regs.Trigger(TaskSTART)
		return nil
	})
	defer r.armed.CompareAndSwap(buf, nil)
	if err != nil {
		r.abort()
		return nil, err
	}

	ctx, cancel := withDefaultTimeout(ctx, r.cfg.ReceiveTimeout)
	defer cancel()
	if err := r.signal.Wait(ctx, EventEnd, r.idle); err != nil {
		r.abort()
		r.debug("receive aborted", "err", err)
		return nil, err
	}

	pkt, err := proto.ParsePacket(buf[:], r.cfg.Layout, int(r.cfg.MaxPayload))
	if err != nil {
		r.debug("framing error", "err", err)
		return nil, err
	}
	r.debug("frame received", "length", pkt.Len())
	return pkt, nil
}

// claim reserves the radio for one operation. A transmission whose END has
// already been signalled is finished here, so a Transfer nobody waits on
// does not keep the radio busy.
func (r *Radio) claim() error {
	if r.inFlight.CompareAndSwap(false, true) {
		return nil
	}
	if t := r.current.Load(); t != nil && t.Done() && r.inFlight.CompareAndSwap(false, true) {
		r.debug("reclaimed finished transfer", "bytes", t.packet.Size())
		return nil
	}
	return proto.ErrBusy
}

func (r *Radio) release() { r.inFlight.Store(false) }

// handleInterrupt is the radio interrupt entry: acknowledge every armed
// event that fired, then hand it off.
func (r *Radio) handleInterrupt() {
	for e := Event(0); e < numEvents; e++ {
		if !r.enabled[e].Load() || !r.regs.EventSet(e) {
			continue
		}
		r.regs.ClearEvent(e)
		r.signal.raise(e)
		if r.hook != nil {
			r.hook(e)
		}
	}
}

// abort stops the current frame and waits until the peripheral is disabled,
// after which it no longer touches the registered buffer.
func (r *Radio) abort() {
	r.Stop()
	r.Disable()
	if err := r.awaitMode(proto.ModeDisabled); err != nil && r.log != nil {
		r.log.Warn("radio did not disable", "err", err)
	}
	r.signal.Clear(EventEnd)
}

// awaitMode polls STATE until it reports want. Unrecognized codes are
// treated as transient.
func (r *Radio) awaitMode(want proto.Mode) error {
	for i := 0; i < r.pollLimit; i++ {
		if m, err := proto.DecodeMode(r.regs.State()); err == nil && m == want {
			return nil
		}
	}
	return fmt.Errorf("%w: radio did not reach %v", proto.ErrTimeout, want)
}

func (r *Radio) debug(msg string, args ...any) {
	if r.log != nil {
		r.log.Debug(msg, args...)
	}
}

func withDefaultTimeout(ctx context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if _, ok := ctx.Deadline(); ok || d <= 0 {
		return ctx, func() {}
	}
	return context.WithTimeout(ctx, d)
}
