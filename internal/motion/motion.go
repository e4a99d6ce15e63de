// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

// Package motion compensates acceleration and rotation rate samples for the
// current screen rotation.
package motion

import "github.com/relabs-tech/tiltframe/internal/rotation"

// Vector is an acceleration in m/s².
type Vector struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// RotationRate is an angular velocity in degrees per second around Z
// (alpha), X (beta) and Y (gamma).
type RotationRate struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// Sample is a single raw motion event. Nil fields were not reported.
type Sample struct {
	Acceleration                 *Vector       `json:"acceleration"`
	AccelerationIncludingGravity *Vector       `json:"acceleration_including_gravity"`
	RotationRate                 *RotationRate `json:"rotation_rate"`
	Interval                     *float64      `json:"interval"` // milliseconds
}

// Platform is what DeviceMotion needs from the host.
type Platform interface {
	ScreenAngle() float64
	OnScreenChange(fn func()) (cancel func())
	OnMotion(fn func(Sample)) (cancel func())
}

// CompensateVector rotates the X/Y components of v into screen coordinates.
// Only the canonical screen angles are recognized, compared exactly; any
// other angle leaves v as is.
func CompensateVector(v Vector, screenAngle float64) Vector {
	out := Vector{Z: v.Z}

	switch screenAngle {
	case rotation.ScreenRotation90:
		out.X, out.Y = -v.Y, v.X
	case rotation.ScreenRotation180:
		out.X, out.Y = -v.X, -v.Y
	case rotation.ScreenRotation270, rotation.ScreenRotationMinus90:
		out.X, out.Y = v.Y, -v.X
	default:
		out.X, out.Y = v.X, v.Y
	}

	return out
}

// CompensateRotationRate does the same for the beta/gamma pair. Alpha is the
// rate around the screen normal and passes through.
func CompensateRotationRate(r RotationRate, screenAngle float64) RotationRate {
	out := RotationRate{Alpha: r.Alpha}

	switch screenAngle {
	case rotation.ScreenRotation90:
		out.Beta, out.Gamma = -r.Gamma, r.Beta
	case rotation.ScreenRotation180:
		out.Beta, out.Gamma = -r.Beta, -r.Gamma
	case rotation.ScreenRotation270, rotation.ScreenRotationMinus90:
		out.Beta, out.Gamma = r.Gamma, -r.Beta
	default:
		out.Beta, out.Gamma = r.Beta, r.Gamma
	}

	return out
}
