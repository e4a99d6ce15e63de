// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package orientation turns raw device orientation samples into fixed-frame
// and screen-adjusted rotations, calibrating the heading reference on the
// way.
package orientation

import "github.com/relabs-tech/tiltframe/internal/rotation"

// Sample is a single raw orientation event. Nil fields were not reported
// by the platform.
type Sample struct {
	Alpha    *float64 `json:"alpha"` // degrees around Z
	Beta     *float64 `json:"beta"`  // degrees around X
	Gamma    *float64 `json:"gamma"` // degrees around Y
	Absolute *bool    `json:"absolute"`

	// Compass fields, only used by world mode calibration.
	CompassAccuracy *float64 `json:"compass_accuracy,omitempty"`
	CompassHeading  *float64 `json:"compass_heading,omitempty"`
}

// Angles returns the sample angles with missing values read as 0.
func (s Sample) Angles() rotation.Euler {
	return rotation.Euler{
		Alpha: value(s.Alpha),
		Beta:  value(s.Beta),
		Gamma: value(s.Gamma),
	}
}

// IsAbsolute reports whether the sample is referenced to true north.
func (s Sample) IsAbsolute() bool {
	return s.Absolute != nil && *s.Absolute
}

// Float returns a pointer to v, for building samples.
func Float(v float64) *float64 {
	return &v
}

// Bool returns a pointer to v, for building samples.
func Bool(v bool) *bool {
	return &v
}

func value(p *float64) float64 {
	if p == nil {
		return 0
	}
	return *p
}

// Source is anything that can provide orientation samples over time:
// mock source, IMU tilt tracker, replay, etc.
type Source interface {
	Next() (Sample, error)
}

// Platform is what the adapter needs from the host: the current screen
// rotation and subscriptions to raw samples and screen rotation changes.
// The returned funcs cancel the subscription.
type Platform interface {
	// ScreenAngle returns the current screen rotation in radians.
	ScreenAngle() float64
	OnScreenChange(fn func()) (cancel func())
	OnOrientation(fn func(Sample)) (cancel func())
}
