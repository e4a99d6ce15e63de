// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package orientation

import (
	"math"

	"github.com/relabs-tech/tiltframe/internal/rotation"
)

// TiltTracker turns accelerometer and gyro readings into raw orientation
// samples. Beta and gamma come from the gravity direction; alpha is the
// integrated Z rate, so it is relative to the heading at startup and drifts.
type TiltTracker struct {
	alpha float64
}

// Update computes a sample from accelerations (any unit, only ratios
// matter) and the Z rotation rate in degrees per second over dt seconds.
//
// Uses simple tilt formulas:
//
//	beta  = atan2(ay, az)
//	gamma = atan2(-ax, sqrt(ay² + az²))
func (t *TiltTracker) Update(ax, ay, az, gzDegPerSec, dt float64) Sample {
	beta := math.Atan2(ay, az) * rotation.RadToDeg
	gamma := math.Atan2(-ax, math.Sqrt(ay*ay+az*az)) * rotation.RadToDeg

	t.alpha = math.Mod(t.alpha+gzDegPerSec*dt, 360)
	if t.alpha < 0 {
		t.alpha += 360
	}

	return Sample{
		Alpha:    Float(t.alpha),
		Beta:     Float(beta),
		Gamma:    Float(gamma),
		Absolute: Bool(false),
	}
}
