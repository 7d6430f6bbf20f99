// Package nrfradio provides a façade to access the radio driver.
package nrfradio

import (
	"github.com/ystepanoff/nrfradio/protocol"
	"github.com/ystepanoff/nrfradio/transport"
)

// The actual constructor is split into build-tag specific files:
// - constructors_nrf.go - for embedded platforms (//go:build tinygo || baremetal)
// - constructors_host.go - for development/testing (//go:build !tinygo && !baremetal)

type (
	Radio           = transport.Radio
	Transfer        = transport.Transfer
	CriticalSection = transport.CriticalSection
	Option          = transport.Option
	Event           = transport.Event

	Config = protocol.Config
	Layout = protocol.Layout
	Mode   = protocol.Mode
	Packet = protocol.Packet
	Buffer = protocol.Buffer
)

// Error constants exposed in the public API
var (
	ErrUnrecognizedMode  = protocol.ErrUnrecognizedMode
	ErrOversizedFrame    = protocol.ErrOversizedFrame
	ErrFramingOverrun    = protocol.ErrFramingOverrun
	ErrTimeout           = protocol.ErrTimeout
	ErrBusy              = protocol.ErrBusy
	ErrInvalidChannel    = protocol.ErrInvalidChannel
	ErrNoCriticalSection = protocol.ErrNoCriticalSection
)

// Constants exposed in the public API
const (
	MaxFrameSize = protocol.MaxFrameSize

	ModeDisabled     = protocol.ModeDisabled
	ModeRxRampUp     = protocol.ModeRxRampUp
	ModeRxIdle       = protocol.ModeRxIdle
	ModeReceiving    = protocol.ModeReceiving
	ModeRxDisabling  = protocol.ModeRxDisabling
	ModeTxRampUp     = protocol.ModeTxRampUp
	ModeTxIdle       = protocol.ModeTxIdle
	ModeTransmitting = protocol.ModeTransmitting
	ModeTxDisabling  = protocol.ModeTxDisabling
)

func DefaultConfig() Config { return protocol.DefaultConfig() }

func NewPacket(s0, s1, payload []byte) (*Packet, error) { return protocol.NewPacket(s0, s1, payload) }

// Critical runs fn with the radio interrupt masked; see Radio.SendPacket.
func Critical(fn func(cs *CriticalSection) error) error { return transport.Critical(fn) }
