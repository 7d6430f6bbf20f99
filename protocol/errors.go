package protocol

import (
	"errors"
	"fmt"
)

var (
	ErrUnrecognizedMode  = errors.New("unrecognized radio state")
	ErrOversizedFrame    = errors.New("frame exceeds 254 bytes")
	ErrFramingOverrun    = errors.New("received length exceeds buffer capacity")
	ErrInvalidLayout     = errors.New("invalid S0/S1 field width (valid: 0-1 byte)")
	ErrLayoutMismatch    = errors.New("packet layout differs from radio configuration")
	ErrInvalidChannel    = errors.New("invalid channel (valid range: 0-100)")
	ErrInvalidTimeout    = errors.New("timeouts must not be negative")
	ErrTimeout           = errors.New("operation timed out")
	ErrBusy              = errors.New("transfer already in flight")
	ErrNoBuffer          = errors.New("no packet buffer registered")
	ErrNoCriticalSection = errors.New("call requires an active critical section")
	ErrPeripheralClaimed = errors.New("radio peripheral already claimed")
)

// ModeError reports a status register value outside the defined states.
type ModeError struct {
	Code uint32
}

func (e *ModeError) Error() string {
	return fmt.Sprintf("%v: 0x%X", ErrUnrecognizedMode, e.Code)
}

func (e *ModeError) Unwrap() error { return ErrUnrecognizedMode }
