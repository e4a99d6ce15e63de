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

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := app.RunDisplay(ctx); err != nil {
		log.WithError(err).Fatal("display stopped")
	}
}
