//go:build tinygo || baremetal

package nrf

import (
	proto "github.com/ystepanoff/nrfradio/protocol"

	"device/nrf"
)

// StartHFCLK switches the high-frequency clock to the crystal, which the
// radio needs for an accurate carrier. It returns at once when the crystal
// is already running, e.g. after a soft reset or under a bootloader.
func StartHFCLK() {
	if hfxoRunning() {
		return
	}
	nrf.CLOCK.EVENTS_HFCLKSTARTED.Set(0)
	nrf.CLOCK.TASKS_HFCLKSTART.Set(1)
	for nrf.CLOCK.EVENTS_HFCLKSTARTED.Get() == 0 {
	}
	nrf.CLOCK.EVENTS_HFCLKSTARTED.Set(0)
}

func hfxoRunning() bool {
	stat := nrf.CLOCK.HFCLKSTAT.Get()
	running := stat&nrf.CLOCK_HFCLKSTAT_STATE_Msk != 0
	xtal := (stat&nrf.CLOCK_HFCLKSTAT_SRC_Msk)>>nrf.CLOCK_HFCLKSTAT_SRC_Pos == nrf.CLOCK_HFCLKSTAT_SRC_Xtal
	return running && xtal
}

// configureRadio sets up mode, power, addressing and packet layout.
// The radio must be disabled.
func configureRadio(cfg proto.Config) error {
	if err := cfg.Validate(); err != nil {
		return err
	}

	nrf.RADIO.POWER.Set(1)
	nrf.RADIO.MODE.Set(nrf.RADIO_MODE_MODE_Nrf_1Mbit)
	nrf.RADIO.TXPOWER.Set(nrf.RADIO_TXPOWER_TXPOWER_0dBm)
	nrf.RADIO.FREQUENCY.Set(uint32(cfg.Channel))

	nrf.RADIO.BASE0.Set(cfg.Address)
	nrf.RADIO.PREFIX0.Set(uint32(cfg.Prefix))
	nrf.RADIO.TXADDRESS.Set(0)
	nrf.RADIO.RXADDRESSES.Set(1)

	nrf.RADIO.PCNF0.Set(cfg.PCNF0())
	nrf.RADIO.PCNF1.Set(cfg.PCNF1())

	nrf.RADIO.CRCCNF.Set(1)
	nrf.RADIO.CRCINIT.Set(0xFF)
	nrf.RADIO.CRCPOLY.Set(0x107)

	// Every transition is requested explicitly by the driver.
	nrf.RADIO.SHORTS.Set(0)

	return nil
}
