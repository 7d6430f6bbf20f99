//go:build !tinygo && !baremetal

package stub

import (
	"bytes"
	"testing"

	proto "github.com/ystepanoff/nrfradio/protocol"
	"github.com/ystepanoff/nrfradio/transport"
)

func configured(t *testing.T, d *Driver) {
	t.Helper()
	if err := d.Configure(proto.DefaultConfig()); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}
}

func TestRampUpAdvancesOnRead(t *testing.T) {
	d := New()
	configured(t, d)

	d.Trigger(transport.TaskRXEN)
	if got := proto.Mode(d.State()); got != proto.ModeRxRampUp {
		t.Fatalf("first read = %v, want %v", got, proto.ModeRxRampUp)
	}
	if got := proto.Mode(d.State()); got != proto.ModeRxIdle {
		t.Fatalf("second read = %v, want %v", got, proto.ModeRxIdle)
	}
	if !d.EventSet(transport.EventReady) {
		t.Error("READY not raised after ramp-up")
	}
}

func TestEnableOutsideDisabledIsViolation(t *testing.T) {
	d := New()
	configured(t, d)

	d.ForceState(uint32(proto.ModeTxIdle))
	d.Trigger(transport.TaskRXEN)
	if d.Violations() != 1 {
		t.Errorf("Violations() = %d, want 1", d.Violations())
	}
	if got := proto.Mode(d.State()); got != proto.ModeTxIdle {
		t.Errorf("state = %v, want unchanged %v", got, proto.ModeTxIdle)
	}
}

func TestStartWithoutBufferIsViolation(t *testing.T) {
	d := New()
	configured(t, d)

	d.ForceState(uint32(proto.ModeTxIdle))
	d.Trigger(transport.TaskSTART)
	if d.Violations() != 1 {
		t.Errorf("Violations() = %d, want 1", d.Violations())
	}
}

func TestTransmitTruncatesToMaxLen(t *testing.T) {
	cfg := proto.DefaultConfig()
	cfg.MaxPayload = 4
	d := New()
	if err := d.Configure(cfg); err != nil {
		t.Fatalf("Configure() error = %v", err)
	}

	var buf proto.Buffer
	copy(buf[:], []byte{0x00, 6, 1, 2, 3, 4, 5, 6})
	d.SetPacketPtr(&buf)
	d.ForceState(uint32(proto.ModeTxIdle))
	d.Trigger(transport.TaskSTART)

	log := d.GetTxLog()
	if len(log) != 1 {
		t.Fatalf("GetTxLog() has %d frames, want 1", len(log))
	}
	if want := []byte{0x00, 6, 1, 2, 3, 4}; !bytes.Equal(log[0], want) {
		t.Errorf("sent frame = %v, want %v", log[0], want)
	}
	if !d.EventSet(transport.EventEnd) {
		t.Error("END not raised after transmit")
	}
}

func TestReceiveQueuedFrame(t *testing.T) {
	d := New()
	configured(t, d)

	d.InjectRx([]byte{0x00, 2, 0xAB, 0xCD})

	var buf proto.Buffer
	d.SetPacketPtr(&buf)
	d.ForceState(uint32(proto.ModeRxIdle))
	d.Trigger(transport.TaskSTART)

	if !bytes.Equal(buf[:4], []byte{0x00, 2, 0xAB, 0xCD}) {
		t.Errorf("buffer = %v", buf[:4])
	}
	if got := proto.Mode(d.State()); got != proto.ModeRxIdle {
		t.Errorf("state = %v, want %v", got, proto.ModeRxIdle)
	}
}

func TestReceiveWaitsForFrame(t *testing.T) {
	d := New()
	configured(t, d)

	var buf proto.Buffer
	d.SetPacketPtr(&buf)
	d.ForceState(uint32(proto.ModeRxIdle))
	d.Trigger(transport.TaskSTART)
	if got := proto.Mode(d.State()); got != proto.ModeReceiving {
		t.Fatalf("state = %v, want %v", got, proto.ModeReceiving)
	}
	if d.EventSet(transport.EventEnd) {
		t.Fatal("END raised with nothing on air")
	}

	d.InjectRx([]byte{0x00, 1, 0x77})
	if !d.EventSet(transport.EventEnd) {
		t.Error("END not raised after frame arrived")
	}
	if buf[2] != 0x77 {
		t.Errorf("payload byte = %#x, want 0x77", buf[2])
	}
}

func TestConnectDeliversToPeer(t *testing.T) {
	a, b := New(), New()
	configured(t, a)
	configured(t, b)
	Connect(a, b)

	var tx proto.Buffer
	copy(tx[:], []byte{0x00, 3, 7, 8, 9})
	a.SetPacketPtr(&tx)
	a.ForceState(uint32(proto.ModeTxIdle))
	a.Trigger(transport.TaskSTART)

	var rx proto.Buffer
	b.SetPacketPtr(&rx)
	b.ForceState(uint32(proto.ModeRxIdle))
	b.Trigger(transport.TaskSTART)

	if !bytes.Equal(rx[:5], tx[:5]) {
		t.Errorf("peer buffer = %v, want %v", rx[:5], tx[:5])
	}
	if len(a.GetTxLog()) != 1 || len(b.GetTxLog()) != 0 {
		t.Errorf("tx logs = %d/%d, want 1/0", len(a.GetTxLog()), len(b.GetTxLog()))
	}
}

func TestDisableFromUnknownState(t *testing.T) {
	d := New()
	d.ForceState(7)
	d.Trigger(transport.TaskDISABLE)
	if got := d.State(); got != uint32(proto.ModeDisabled) {
		t.Errorf("state = %d, want Disabled", got)
	}
}

func TestFrameQueueOverwritesOldest(t *testing.T) {
	q := newFrameQueue(DefaultQueueCapacity)
	for i := 0; i < DefaultQueueCapacity+3; i++ {
		q.push([]byte{byte(i)})
	}
	if q.n != DefaultQueueCapacity || q.dropped != 3 {
		t.Fatalf("n, dropped = %d, %d, want %d, 3", q.n, q.dropped, DefaultQueueCapacity)
	}
	frame, ok := q.pop()
	if !ok || frame[0] != 3 {
		t.Errorf("pop() = %v, %v, want [3], true", frame, ok)
	}
	if snap := q.snapshot(); len(snap) != DefaultQueueCapacity-1 || snap[0][0] != 4 {
		t.Errorf("snapshot() = %d frames starting %v", len(snap), snap[0])
	}
}

func TestQueueCapacity(t *testing.T) {
	tests := []struct {
		name     string
		capacity int
		inject   int
		want     []byte
		dropped  int
	}{
		{"one slot keeps newest", 1, 3, []byte{0, 1, 2}, 2},
		{"zero raised to one", 0, 2, []byte{0, 1, 1}, 1},
		{"room to spare", 4, 3, []byte{0, 1, 0}, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			d := New(WithQueueCapacity(tt.capacity))
			configured(t, d)
			for i := 0; i < tt.inject; i++ {
				d.InjectRx([]byte{0, 1, byte(i)})
			}
			if got := d.Dropped(); got != tt.dropped {
				t.Errorf("Dropped() = %d, want %d", got, tt.dropped)
			}

			var buf proto.Buffer
			d.SetPacketPtr(&buf)
			d.ForceState(uint32(proto.ModeRxIdle))
			d.Trigger(transport.TaskSTART)
			if !bytes.Equal(buf[:3], tt.want) {
				t.Errorf("received %v, want %v", buf[:3], tt.want)
			}
		})
	}
}

func TestTxLogCapacity(t *testing.T) {
	d := NewLoopback(WithQueueCapacity(2))
	configured(t, d)

	var buf proto.Buffer
	d.SetPacketPtr(&buf)
	for i := byte(0); i < 3; i++ {
		copy(buf[:], []byte{0, 1, i})
		d.ForceState(uint32(proto.ModeTxIdle))
		d.Trigger(transport.TaskSTART)
	}

	log := d.GetTxLog()
	if len(log) != 2 || log[0][2] != 1 || log[1][2] != 2 {
		t.Errorf("GetTxLog() = %v, want the last two frames", log)
	}
}
