//go:build !tinygo && !baremetal

// This file is built only for non-embedded targets (host-based testing).
package nrfradio

import (
	"github.com/ystepanoff/nrfradio/driver/stub"
	"github.com/ystepanoff/nrfradio/transport"
)

// New returns a Radio over a simulated peripheral that hears its own
// transmissions.
func New(cfg Config, opts ...Option) (*Radio, error) {
	return transport.NewRadio(stub.NewLoopback(), cfg, opts...)
}
