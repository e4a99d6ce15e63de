// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package main

import (
	"context"
	"flag"
	"os"
	"os/signal"
	"syscall"
	"time"

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/tiltframe/internal/app"
	"github.com/relabs-tech/tiltframe/internal/orientation"
)

// console runs the whole pipeline in process on the mock source, without a
// broker or config file.
func main() {
	modeFlag := flag.String("mode", "game", "calibration mode: game, world or unmanaged")
	screen := flag.Float64("screen", 0, "screen orientation in degrees (0, 90, 180, 270, -90)")
	interval := flag.Duration("interval", 100*time.Millisecond, "sample interval")
	debug := flag.Bool("debug", false, "enable debug logging")
	flag.Parse()

	if *debug {
		log.SetLevel(log.DebugLevel)
	}

	mode, err := orientation.ParseMode(*modeFlag)
	if err != nil {
		log.WithError(err).Fatal("invalid -mode")
	}

	log.Info("starting tiltframe (mock console)")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunMockConsole(ctx, mode, *screen, *interval); err != nil {
		log.WithError(err).Fatal("fatal")
	}
}
