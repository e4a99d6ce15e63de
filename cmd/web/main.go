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

	log.Info("starting tiltframe web server (MQTT subscriber)")

	if err := config.InitGlobal(*configPath); err != nil {
		log.WithError(err).Fatal("failed to load config")
	}
	if err := config.Get().Log.ApplyLogging(); err != nil {
		log.WithError(err).Fatal("failed to configure logging")
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunWeb(ctx); err != nil {
		log.WithError(err).Fatal("fatal")
	}
}
