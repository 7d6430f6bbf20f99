package protocol

import (
	"fmt"
	"time"

	"periph.io/x/conn/v3/physic"
)

// Config holds addressing, channel and framing settings for one radio.
// The same value programs the peripheral and validates received frames.
type Config struct {
	Address uint32
	Prefix  byte
	Channel uint8

	Layout     Layout
	MaxPayload uint8

	// Applied when the caller's context carries no deadline.
	ReceiveTimeout  time.Duration
	TransmitTimeout time.Duration
}

func DefaultConfig() Config {
	layout := Layout{S0: 1}
	return Config{
		Address:         DefaultAddress,
		Prefix:          DefaultPrefix,
		Channel:         DefaultChannel,
		Layout:          layout,
		MaxPayload:      uint8(MaxFrameSize - layout.HeaderSize()),
		ReceiveTimeout:  DefaultReceiveTimeout * time.Millisecond,
		TransmitTimeout: DefaultTransmitTimeout * time.Millisecond,
	}
}

func (c Config) Validate() error {
	if c.Channel > MaxChannel {
		return ErrInvalidChannel
	}
	if err := c.Layout.Validate(); err != nil {
		return err
	}
	if total := c.Layout.HeaderSize() + int(c.MaxPayload); total > MaxFrameSize {
		return fmt.Errorf("%w: header %d + max payload %d", ErrOversizedFrame, c.Layout.HeaderSize(), c.MaxPayload)
	}
	if c.ReceiveTimeout < 0 || c.TransmitTimeout < 0 {
		return fmt.Errorf("%w: receive %v, transmit %v", ErrInvalidTimeout, c.ReceiveTimeout, c.TransmitTimeout)
	}
	return nil
}

// Frequency is the carrier frequency selected by Channel.
func (c Config) Frequency() physic.Frequency {
	return 2400*physic.MegaHertz + physic.Frequency(c.Channel)*physic.MegaHertz
}

// PCNF0 encodes the field widths: 8-bit LENGTH, S0 in bytes, S1 in bits.
func (c Config) PCNF0() uint32 {
	var v uint32
	v = putField(v, pcnf0LFLENPos, pcnf0LFLENBits, lengthFieldBits)
	v = putField(v, pcnf0S0LENPos, pcnf0S0LENBits, uint32(c.Layout.S0))
	v = putField(v, pcnf0S1LENPos, pcnf0S1LENBits, uint32(c.Layout.S1*8))
	return v
}

// PCNF1 encodes MAXLEN, a variable-length frame, the address width and
// little-endian field order.
func (c Config) PCNF1() uint32 {
	var v uint32
	v = putField(v, pcnf1MAXLENPos, pcnf1MAXLENBits, uint32(c.MaxPayload))
	v = putField(v, pcnf1STATLENPos, 8, 0)
	v = putField(v, pcnf1BALENPos, pcnf1BALENBits, baseAddressLen)
	v = putField(v, pcnf1ENDIANPos, 1, 0)
	return v
}

// DecodePCNF recovers the RAM layout and MAXLEN from register words.
func DecodePCNF(pcnf0, pcnf1 uint32) (Layout, int) {
	s1Bits := field(pcnf0, pcnf0S1LENPos, pcnf0S1LENBits)
	layout := Layout{
		S0: int(field(pcnf0, pcnf0S0LENPos, pcnf0S0LENBits)),
		S1: int(bytesFor(uint8(s1Bits))),
	}
	return layout, int(field(pcnf1, pcnf1MAXLENPos, pcnf1MAXLENBits))
}
