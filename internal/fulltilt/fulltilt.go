// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package fulltilt starts orientation and motion adapters and waits for the
// platform to deliver a first sample before handing them out.
package fulltilt

import (
	"context"
	"time"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"

	"github.com/relabs-tech/tiltframe/internal/motion"
	"github.com/relabs-tech/tiltframe/internal/orientation"
)

const (
	DefaultTries    = 20
	DefaultInterval = 50 * time.Millisecond
)

var (
	// ErrNoData is returned when a sensor stays silent for the whole wait.
	ErrNoData = errors.New("no sensor data received")

	ErrOrientationNotSupported = errors.New("device orientation is not supported")
	ErrMotionNotSupported      = errors.New("device motion is not supported")
)

// Sensor is anything that can report whether it has received data.
type Sensor interface {
	HasData() bool
}

// WaitForData checks s up to tries times, sleeping interval between checks.
func WaitForData(ctx context.Context, s Sensor, tries int, interval time.Duration) error {
	if tries <= 0 {
		tries = DefaultTries
	}

	for attempt := 1; ; attempt++ {
		if s.HasData() {
			return nil
		}
		if attempt >= tries {
			return errors.Wrapf(ErrNoData, "after %d tries", tries)
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-time.After(interval):
		}
	}
}

// GetDeviceOrientation starts an orientation adapter on p and waits for its
// first sample. On failure the adapter is stopped.
func GetDeviceOrientation(ctx context.Context, p orientation.Platform, opts orientation.Options) (*orientation.DeviceOrientation, error) {
	d := orientation.NewDeviceOrientation(p, opts)
	d.Start(nil)

	if err := WaitForData(ctx, d, DefaultTries, DefaultInterval); err != nil {
		d.Stop()
		log.WithError(err).Warn("no orientation data")
		return nil, errors.Wrap(ErrOrientationNotSupported, err.Error())
	}
	return d, nil
}

// GetDeviceMotion starts a motion adapter on p and waits for its first
// sample. On failure the adapter is stopped.
func GetDeviceMotion(ctx context.Context, p motion.Platform) (*motion.DeviceMotion, error) {
	d := motion.NewDeviceMotion(p)
	d.Start(nil)

	if err := WaitForData(ctx, d, DefaultTries, DefaultInterval); err != nil {
		d.Stop()
		log.WithError(err).Warn("no motion data")
		return nil, errors.Wrap(ErrMotionNotSupported, err.Error())
	}
	return d, nil
}
