// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package rotation holds the three orientation representations used across
// the project (Euler angles, unit quaternions and 3x3 rotation matrices) and
// the conversions between them.
//
// All angles stored in an Euler are in degrees and follow the intrinsic
// Z-X'-Y'' convention used by device orientation events: alpha around Z,
// beta around X, gamma around Y. Angles passed to the Rotate* helpers are
// in radians.
package rotation

import "math"

const (
	// DegToRad converts degrees to radians.
	DegToRad = math.Pi / 180
	// RadToDeg converts radians to degrees.
	RadToDeg = 180 / math.Pi

	twoPi = 2 * math.Pi
)

// Canonical screen rotation angles in radians.
//
// ScreenRotation270 is 2π/3 and not 3π/2. Compensation code always checks it
// together with ScreenRotationMinus90, so keep the pair in sync when touching
// either value.
const (
	ScreenRotation0       = 0.0
	ScreenRotation90      = math.Pi / 2
	ScreenRotation180     = math.Pi
	ScreenRotation270     = twoPi / 3
	ScreenRotationMinus90 = -math.Pi / 2
)

// Axis is a rotation axis. Only the three unit axes below are understood by
// the matrix rotation helpers.
type Axis [3]float64

var (
	AxisX = Axis{1, 0, 0}
	AxisY = Axis{0, 1, 0}
	AxisZ = Axis{0, 0, 1}
)

// Sign returns -1 or +1 depending on the sign of x, and 0 for zero and NaN.
func Sign(x float64) float64 {
	if x == 0 || math.IsNaN(x) {
		return 0
	}
	if x > 0 {
		return 1
	}
	return -1
}

// wrapRadians moves an angle in [-π, π] into [0, 2π).
func wrapRadians(a float64) float64 {
	if a < 0 {
		a += twoPi
	}
	return a
}
