//go:build !tinygo && !baremetal

// radiosim pushes the frames of a YAML scenario through two linked
// simulated radios and reports what made it across.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"syscall"
)

func main() {
	os.Exit(run())
}

func run() int {
	scenarioPath := flag.String("scenario", "", "YAML scenario file (defaults only when empty)")
	logPath := flag.String("log", "", "log file, rotated by size (stderr when empty)")
	debug := flag.Bool("debug", false, "log driver debug records")
	flag.Parse()

	sc := &Scenario{Repeat: 1, Frames: []Frame{{Payload: "hello"}}}
	if *scenarioPath != "" {
		var err error
		if sc, err = LoadScenario(*scenarioPath); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 2
		}
	}

	log, closeLog := newLogger(*logPath, *debug)
	defer closeLog()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	report, err := Run(ctx, sc, log)
	log.Info("run finished", "sent", report.Sent, "received", report.Received, "failed", report.Failed)
	if err != nil {
		log.Error("run aborted", "err", err)
		return 1
	}
	if report.Failed > 0 {
		return 1
	}
	return 0
}
