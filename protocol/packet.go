package protocol

import "fmt"

// Buffer is the memory the peripheral reads frames from and writes frames
// into. It is the only type ever registered with PACKETPTR.
type Buffer [MaxFrameSize]byte

// Layout describes the widths in bytes of the optional S0 and S1 fields.
type Layout struct {
	S0 int
	S1 int
}

func (l Layout) Validate() error {
	if l.S0 < 0 || l.S0 > MaxS0Size || l.S1 < 0 || l.S1 > MaxS1Size {
		return fmt.Errorf("%w: S0=%d S1=%d", ErrInvalidLayout, l.S0, l.S1)
	}
	return nil
}

// HeaderSize is the number of bytes that precede the payload.
func (l Layout) HeaderSize() int { return l.S0 + LengthFieldSize + l.S1 }

func (l Layout) lengthOffset() int { return l.S0 }

// Packet is one radio frame as the peripheral sees it in RAM.
// Layout: S0(0-1) | LENGTH(1) | S1(0-1) | PAYLOAD(LENGTH)
// Total size max 254 bytes. A Packet cannot be modified once built.
type Packet struct {
	layout  Layout
	s0, s1  byte
	payload []byte
}

// NewPacket builds a frame from its fields. s0 and s1 may be empty.
func NewPacket(s0, s1, payload []byte) (*Packet, error) {
	layout := Layout{S0: len(s0), S1: len(s1)}
	if err := layout.Validate(); err != nil {
		return nil, err
	}

	total := layout.HeaderSize() + len(payload)
	if total > MaxFrameSize {
		return nil, fmt.Errorf("%w: %d bytes", ErrOversizedFrame, total)
	}

	p := &Packet{layout: layout, payload: make([]byte, len(payload))}
	copy(p.payload, payload)
	if layout.S0 > 0 {
		p.s0 = s0[0]
	}
	if layout.S1 > 0 {
		p.s1 = s1[0]
	}
	return p, nil
}

func (p *Packet) Layout() Layout { return p.layout }

func (p *Packet) S0() (byte, bool) { return p.s0, p.layout.S0 > 0 }

func (p *Packet) S1() (byte, bool) { return p.s1, p.layout.S1 > 0 }

// Len is the value of the LENGTH field.
func (p *Packet) Len() int { return len(p.payload) }

// Size is the full frame size in bytes.
func (p *Packet) Size() int { return p.layout.HeaderSize() + len(p.payload) }

// Payload returns a copy of the payload.
func (p *Packet) Payload() []byte {
	out := make([]byte, len(p.payload))
	copy(out, p.payload)
	return out
}

// MarshalTo writes the frame into buf and returns the number of bytes used.
func (p *Packet) MarshalTo(buf *Buffer) int {
	i := 0
	if p.layout.S0 > 0 {
		buf[i] = p.s0
		i++
	}
	buf[i] = byte(len(p.payload))
	i++
	if p.layout.S1 > 0 {
		buf[i] = p.s1
		i++
	}
	return i + copy(buf[i:], p.payload)
}

// Bytes returns the frame in its wire/RAM representation.
func (p *Packet) Bytes() []byte {
	var buf Buffer
	n := p.MarshalTo(&buf)
	out := make([]byte, n)
	copy(out, buf[:n])
	return out
}

// ParsePacket reads a frame laid out according to layout. The LENGTH field
// is checked against the space actually available in frame and against
// maxPayload before any payload byte is copied.
func ParsePacket(frame []byte, layout Layout, maxPayload int) (*Packet, error) {
	if err := layout.Validate(); err != nil {
		return nil, err
	}
	hdr := layout.HeaderSize()
	if len(frame) < hdr {
		return nil, fmt.Errorf("%w: %d byte frame shorter than %d byte header", ErrFramingOverrun, len(frame), hdr)
	}

	capacity := min(len(frame)-hdr, maxPayload)
	length := int(frame[layout.lengthOffset()])
	if length > capacity {
		return nil, fmt.Errorf("%w: length %d, capacity %d", ErrFramingOverrun, length, capacity)
	}

	p := &Packet{layout: layout, payload: make([]byte, length)}
	if layout.S0 > 0 {
		p.s0 = frame[0]
	}
	if layout.S1 > 0 {
		p.s1 = frame[layout.lengthOffset()+LengthFieldSize]
	}
	copy(p.payload, frame[hdr:hdr+length])
	return p, nil
}
