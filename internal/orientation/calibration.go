// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"github.com/pkg/errors"

	"github.com/relabs-tech/tiltframe/internal/rotation"
)

// Mode selects how the heading reference is calibrated.
type Mode string

const (
	// ModeGame locks the reference to the device heading at startup.
	ModeGame Mode = "game"
	// ModeWorld locks the reference to the compass heading.
	ModeWorld Mode = "world"
	// ModeUnmanaged uses whatever reference the platform reports.
	ModeUnmanaged Mode = ""
)

// ParseMode accepts "game", "world" and "" / "unmanaged".
func ParseMode(s string) (Mode, error) {
	switch s {
	case "game":
		return ModeGame, nil
	case "world":
		return ModeWorld, nil
	case "", "unmanaged":
		return ModeUnmanaged, nil
	default:
		return ModeUnmanaged, errors.Errorf("unknown calibration mode %q", s)
	}
}

// CalibrationState tracks the alpha offset calibration.
type CalibrationState int

const (
	Uncalibrated CalibrationState = iota
	Calibrating
	Locked
)

func (s CalibrationState) String() string {
	switch s {
	case Uncalibrated:
		return "uncalibrated"
	case Calibrating:
		return "calibrating"
	case Locked:
		return "locked"
	default:
		return "unknown"
	}
}

// MarshalText implements encoding.TextMarshaler.
func (s CalibrationState) MarshalText() ([]byte, error) {
	return []byte(s.String()), nil
}

// UnmarshalText implements encoding.TextUnmarshaler.
func (s *CalibrationState) UnmarshalText(b []byte) error {
	for _, c := range []CalibrationState{Uncalibrated, Calibrating, Locked} {
		if c.String() == string(b) {
			*s = c
			return nil
		}
	}
	return errors.Errorf("unknown calibration state %q", b)
}

const (
	calibrationSuccessThreshold = 10
	calibrationMaxTries         = 200
	compassAccuracyLimit        = 50
)

// Calibration is the alpha offset calibration state. Offset is nil until
// the first sample is accepted; after that it holds the last accepted value.
type Calibration struct {
	Mode         Mode             `json:"mode"`
	State        CalibrationState `json:"state"`
	Offset       *rotation.Euler  `json:"offset"`
	OffsetScreen float64          `json:"offset_screen"` // radians, world mode only
	Accepted     int              `json:"accepted"`
	Seen         int              `json:"seen"`
}

// listening reports whether the calibration still wants samples.
func (c *Calibration) listening() bool {
	return c.Mode != ModeUnmanaged && c.State != Locked
}

// observe feeds one raw sample taken at screenAngle and returns false once
// the calibration stops listening: after 10 accepted samples or 200 seen,
// whichever comes first.
func (c *Calibration) observe(s Sample, screenAngle float64) bool {
	if !c.listening() {
		return false
	}

	if offset, ok := c.candidate(s, screenAngle); ok {
		c.Offset = &offset
		c.State = Calibrating
		if c.Mode == ModeWorld {
			c.OffsetScreen = screenAngle
		}

		c.Accepted++
		if c.Accepted >= calibrationSuccessThreshold {
			c.State = Locked
			return false
		}
	}

	c.Seen++
	if c.Seen < calibrationMaxTries {
		return true
	}

	c.State = Locked
	return false
}

// candidate derives the offset a sample would produce, if it is usable.
//
// Game mode rotates by -screenAngle and world mode by +screenAngle; the
// asymmetry is deliberate, world mode undoes it later through OffsetScreen.
func (c *Calibration) candidate(s Sample, screenAngle float64) (rotation.Euler, bool) {
	switch c.Mode {
	case ModeGame:
		// Used regardless of s.Absolute.
		if s.Alpha == nil {
			return rotation.Euler{}, false
		}
		return rotation.Euler{Alpha: *s.Alpha}.RotateZ(-screenAngle), true

	case ModeWorld:
		if s.IsAbsolute() || s.CompassAccuracy == nil {
			return rotation.Euler{}, false
		}
		if acc := *s.CompassAccuracy; !(acc >= 0 && acc < compassAccuracyLimit) {
			return rotation.Euler{}, false
		}
		return rotation.Euler{Alpha: value(s.CompassHeading)}.RotateZ(screenAngle), true
	}

	return rotation.Euler{}, false
}
