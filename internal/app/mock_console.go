// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package app

import (
	"context"
	"fmt"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/tiltframe/internal/fulltilt"
	"github.com/relabs-tech/tiltframe/internal/orientation"
	"github.com/relabs-tech/tiltframe/internal/platform"
	"github.com/relabs-tech/tiltframe/internal/sensors"
)

// runHub pumps feed into hub until ctx ends. Cancellation is the normal
// way out and is not logged.
func runHub(ctx context.Context, hub *platform.Hub, feed platform.Feed, interval time.Duration) {
	if err := hub.Run(ctx, feed, interval); err != nil && !errors.Is(err, context.Canceled) {
		log.WithError(err).Warn("mock console: sample feed stopped")
	}
}

// RunMockConsole runs the whole pipeline in process on the mock source and
// prints one line per interval. No broker is needed.
func RunMockConsole(ctx context.Context, mode orientation.Mode, screenDeg float64, interval time.Duration) error {
	hub := platform.NewHub()
	hub.SetScreenOrientation(screenDeg)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	go runHub(ctx, hub, sensors.NewSourceFeed(orientation.NewMockSource()), interval)

	o, err := fulltilt.GetDeviceOrientation(ctx, hub, orientation.Options{Mode: mode})
	if err != nil {
		return err
	}
	defer o.Stop()

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			if errors.Is(ctx.Err(), context.Canceled) {
				return nil
			}
			return ctx.Err()
		case <-ticker.C:
			fmt.Println(formatOrientation(o.Snapshot()))
		}
	}
}
