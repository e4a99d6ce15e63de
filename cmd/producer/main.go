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

	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/tiltframe/internal/app"
	"github.com/relabs-tech/tiltframe/internal/config"
)

func main() {
	configPath := flag.String("config", "tiltframe.yaml", "path to the YAML config file")
	flag.Parse()

	if err := config.InitGlobal(*configPath); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if err := config.Get().Log.ApplyLogging(); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	if !config.Get().IMU.UseMock {
		log.Info("hardware IMU selected; SPI access usually needs root")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunProducer(ctx); err != nil {
		log.WithError(err).Fatal("producer stopped")
	}
}
