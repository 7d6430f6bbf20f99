//go:build tinygo || baremetal

// This file is built only for embedded targets (using real radio hardware).
package nrfradio

import (
	"github.com/ystepanoff/nrfradio/driver/nrf"
	"github.com/ystepanoff/nrfradio/transport"
)

// New starts the high-frequency clock and takes the chip's RADIO. A second
// call fails with ErrPeripheralClaimed.
func New(cfg Config, opts ...Option) (*Radio, error) {
	nrf.StartHFCLK()
	p, err := nrf.New()
	if err != nil {
		return nil, err
	}
	return transport.NewRadio(p, cfg, opts...)
}
