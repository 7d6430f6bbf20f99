//go:build !tinygo && !baremetal

package main

import (
	"bytes"
	"context"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"gopkg.in/natefinch/lumberjack.v2"
	"gopkg.in/yaml.v2"

	"github.com/ystepanoff/nrfradio/driver/stub"
	proto "github.com/ystepanoff/nrfradio/protocol"
	"github.com/ystepanoff/nrfradio/transport"
)

// Scenario describes one simulated run: the radio settings shared by both
// ends of the link and the frames to push across it.
type Scenario struct {
	Radio  RadioConfig `yaml:"radio"`
	Frames []Frame     `yaml:"frames"`
	Repeat int         `yaml:"repeat"`
}

// RadioConfig holds the YAML form of protocol.Config. Zero values keep the
// defaults.
type RadioConfig struct {
	Address           uint32 `yaml:"address"`
	Prefix            uint8  `yaml:"prefix"`
	Channel           *uint8 `yaml:"channel"`
	S0                *int   `yaml:"s0"`
	S1                *int   `yaml:"s1"`
	MaxPayload        uint8  `yaml:"maxPayload"`
	ReceiveTimeoutMs  int    `yaml:"receiveTimeoutMs"`
	TransmitTimeoutMs int    `yaml:"transmitTimeoutMs"`
}

// Frame is one packet to send. Hex takes precedence over Payload.
type Frame struct {
	S0      uint8  `yaml:"s0"`
	S1      uint8  `yaml:"s1"`
	Payload string `yaml:"payload"`
	Hex     string `yaml:"hex"`
}

// Report counts the outcome of a run.
type Report struct {
	Sent     int
	Received int
	Failed   int
}

// LoadScenario reads a YAML scenario from path.
func LoadScenario(path string) (*Scenario, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read scenario %s: %w", path, err)
	}
	return ParseScenario(data)
}

// ParseScenario decodes a YAML scenario and checks the resulting radio
// configuration.
func ParseScenario(data []byte) (*Scenario, error) {
	var sc Scenario
	if err := yaml.UnmarshalStrict(data, &sc); err != nil {
		return nil, fmt.Errorf("failed to parse scenario: %w", err)
	}
	if sc.Repeat < 0 {
		return nil, errors.New("repeat must not be negative")
	}
	if sc.Repeat == 0 {
		sc.Repeat = 1
	}
	if _, err := sc.Config(); err != nil {
		return nil, fmt.Errorf("invalid radio settings: %w", err)
	}
	return &sc, nil
}

// Config applies the scenario's radio settings on top of DefaultConfig.
func (sc *Scenario) Config() (proto.Config, error) {
	cfg := proto.DefaultConfig()
	rc := sc.Radio
	if rc.Address != 0 {
		cfg.Address = rc.Address
	}
	if rc.Prefix != 0 {
		cfg.Prefix = rc.Prefix
	}
	if rc.Channel != nil {
		cfg.Channel = *rc.Channel
	}
	if rc.S0 != nil {
		cfg.Layout.S0 = *rc.S0
	}
	if rc.S1 != nil {
		cfg.Layout.S1 = *rc.S1
	}
	if rc.MaxPayload != 0 {
		cfg.MaxPayload = rc.MaxPayload
	} else if hdr := cfg.Layout.HeaderSize(); hdr+int(cfg.MaxPayload) > proto.MaxFrameSize {
		cfg.MaxPayload = uint8(proto.MaxFrameSize - hdr)
	}
	if rc.ReceiveTimeoutMs != 0 {
		cfg.ReceiveTimeout = time.Duration(rc.ReceiveTimeoutMs) * time.Millisecond
	}
	if rc.TransmitTimeoutMs != 0 {
		cfg.TransmitTimeout = time.Duration(rc.TransmitTimeoutMs) * time.Millisecond
	}
	return cfg, cfg.Validate()
}

// Packet builds the frame for the given layout.
func (f Frame) Packet(layout proto.Layout) (*proto.Packet, error) {
	payload := []byte(f.Payload)
	if f.Hex != "" {
		var err error
		if payload, err = hex.DecodeString(f.Hex); err != nil {
			return nil, fmt.Errorf("bad hex payload: %w", err)
		}
	}
	var s0, s1 []byte
	if layout.S0 > 0 {
		s0 = []byte{f.S0}
	}
	if layout.S1 > 0 {
		s1 = []byte{f.S1}
	}
	return proto.NewPacket(s0, s1, payload)
}

// Run sends every frame from one simulated radio to a linked second one
// and checks that the same payload comes out on the other side. Frames that
// cannot be built, sent or received are counted as failed and logged.
func Run(ctx context.Context, sc *Scenario, log *slog.Logger) (Report, error) {
	var report Report

	cfg, err := sc.Config()
	if err != nil {
		return report, err
	}

	txDev, rxDev := stub.New(), stub.New()
	stub.Connect(txDev, rxDev)

	tx, err := transport.NewRadio(txDev, cfg, transport.WithLogger(log.With("radio", "tx")))
	if err != nil {
		return report, err
	}
	rx, err := transport.NewRadio(rxDev, cfg, transport.WithLogger(log.With("radio", "rx")))
	if err != nil {
		return report, err
	}

	log.Info("link up",
		"channel", cfg.Channel,
		"frequency", cfg.Frequency().String(),
		"address", fmt.Sprintf("0x%02X%08X", cfg.Prefix, cfg.Address),
		"frames", len(sc.Frames),
		"repeat", sc.Repeat)

	var buf proto.Buffer
	for round := 0; round < sc.Repeat; round++ {
		for i, f := range sc.Frames {
			if err := ctx.Err(); err != nil {
				return report, err
			}
			flog := log.With("round", round, "frame", i)

			pkt, err := f.Packet(cfg.Layout)
			if err != nil {
				report.Failed++
				flog.Warn("frame rejected", "err", err)
				continue
			}
			if err := tx.Send(ctx, pkt); err != nil {
				report.Failed++
				flog.Warn("send failed", "err", err)
				continue
			}
			report.Sent++

			got, err := rx.ReceivePacket(ctx, &buf)
			if err != nil {
				report.Failed++
				flog.Warn("receive failed", "err", err)
				continue
			}
			if !bytes.Equal(got.Payload(), pkt.Payload()) {
				report.Failed++
				flog.Warn("payload mismatch", "sent", hex.EncodeToString(pkt.Payload()), "received", hex.EncodeToString(got.Payload()))
				continue
			}
			report.Received++
			flog.Info("frame delivered", "length", got.Len(), "bytes", got.Size())
		}
	}

	if v := txDev.Violations() + rxDev.Violations(); v != 0 {
		return report, fmt.Errorf("simulator saw %d illegal task triggers", v)
	}
	return report, nil
}

// newLogger writes text records to stderr, or to a size-rotated file when
// path is set. The returned func releases the file.
func newLogger(path string, debug bool) (*slog.Logger, func() error) {
	level := slog.LevelInfo
	if debug {
		level = slog.LevelDebug
	}

	var w io.Writer = os.Stderr
	closeFn := func() error { return nil }
	if path != "" {
		lj := &lumberjack.Logger{
			Filename:   path,
			MaxSize:    10, // megabytes
			MaxBackups: 3,
			MaxAge:     28, // days
		}
		w, closeFn = lj, lj.Close
	}
	return slog.New(slog.NewTextHandler(w, &slog.HandlerOptions{Level: level})), closeFn
}
