package transport

import (
	"context"
	"sync/atomic"

	proto "github.com/ystepanoff/nrfradio/protocol"
)

// Transfer is an in-flight transmission. It holds the packet until the
// peripheral is done with the frame.
//
// A Transfer that is dropped without Wait or Abort is finished by the next
// Radio operation once END has fired.
type Transfer struct {
	radio  *Radio
	packet *proto.Packet
	done   atomic.Bool
}

// Done reports, without blocking, whether END has fired. Once it returns
// true, Wait returns the packet immediately.
func (t *Transfer) Done() bool {
	if !t.done.Load() && t.radio.signal.Take(EventEnd) {
		t.finish()
	}
	return t.done.Load()
}

// Wait blocks until END and hands the packet back. Without a ctx deadline,
// Config.TransmitTimeout applies; on timeout the frame is aborted and the
// packet is returned together with the error.
func (t *Transfer) Wait(ctx context.Context) (*proto.Packet, error) {
	if t.done.Load() {
		return t.packet, nil
	}

	ctx, cancel := withDefaultTimeout(ctx, t.radio.cfg.TransmitTimeout)
	defer cancel()
	if err := poll(ctx, EventEnd, t.Done, t.radio.idle); err != nil {
		t.radio.abort()
		t.finish()
		t.radio.debug("transmit aborted", "err", err)
		return t.packet, err
	}
	t.radio.debug("frame sent", "bytes", t.packet.Size())
	return t.packet, nil
}

// Abort stops the transmission, waits for the radio to disable and returns
// the packet.
func (t *Transfer) Abort() *proto.Packet {
	if !t.done.Load() {
		t.radio.abort()
		t.finish()
	}
	return t.packet
}

// finish releases the radio once; later calls are no-ops.
func (t *Transfer) finish() {
	if !t.done.CompareAndSwap(false, true) {
		return
	}
	t.radio.current.CompareAndSwap(t, nil)
	t.radio.release()
}
