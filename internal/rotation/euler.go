// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rotation

import "math"

// Euler is an (alpha, beta, gamma) triple in degrees, intrinsic ZXY order.
type Euler struct {
	Alpha float64 `json:"alpha"`
	Beta  float64 `json:"beta"`
	Gamma float64 `json:"gamma"`
}

// EulerFromMatrix extracts ZXY Euler angles from a rotation matrix.
// Alpha is returned in [0, 360).
func EulerFromMatrix(m Matrix) Euler {
	var alpha, beta, gamma float64

	switch {
	case m[8] > 0: // cos(beta) > 0
		alpha = math.Atan2(-m[1], m[4])
		beta = math.Asin(m[7])
		gamma = math.Atan2(-m[6], m[8])

	case m[8] < 0: // cos(beta) < 0
		alpha = math.Atan2(m[1], -m[4])
		beta = foldBeta(-math.Asin(m[7]))
		gamma = math.Atan2(m[6], -m[8])

	case m[6] > 0: // m[8] == 0, cos(beta) > 0
		alpha = math.Atan2(-m[1], m[4])
		beta = math.Asin(m[7])
		gamma = -math.Pi / 2

	case m[6] < 0: // m[8] == 0, cos(beta) < 0
		alpha = math.Atan2(m[1], -m[4])
		beta = foldBeta(-math.Asin(m[7]))
		gamma = -math.Pi / 2

	default:
		// Gimbal lock: gamma is indeterminate.
		alpha = math.Atan2(m[3], m[0])
		if m[7] > 0 {
			beta = math.Pi / 2
		} else {
			beta = -math.Pi / 2
		}
		gamma = 0
	}

	return Euler{
		Alpha: wrapRadians(alpha) * RadToDeg,
		Beta:  beta * RadToDeg,
		Gamma: gamma * RadToDeg,
	}
}

// foldBeta moves beta into [-π,-π/2) ∪ (π/2,π] for the cos(beta) < 0 case.
func foldBeta(beta float64) float64 {
	if beta >= 0 {
		return beta - math.Pi
	}
	return beta + math.Pi
}

// EulerFromQuaternion extracts ZXY Euler angles from q. q need not be unit
// length. Alpha is returned in [0, 360).
func EulerFromQuaternion(q Quaternion) Euler {
	const epsilon = 1e-6

	sqw := q.W * q.W
	sqx := q.X * q.X
	sqy := q.Y * q.Y
	sqz := q.Z * q.Z

	unitLength := sqw + sqx + sqy + sqz
	wxyz := q.W*q.X + q.Y*q.Z

	var alpha, beta, gamma float64

	switch {
	case wxyz > (0.5-epsilon)*unitLength:
		alpha = 2 * math.Atan2(q.Y, q.W)
		beta = math.Pi / 2
		gamma = 0

	case wxyz < (-0.5+epsilon)*unitLength:
		alpha = -2 * math.Atan2(q.Y, q.W)
		beta = -math.Pi / 2
		gamma = 0

	default:
		aX := sqw - sqx + sqy - sqz
		aY := 2 * (q.W*q.Z - q.X*q.Y)

		gX := sqw - sqx - sqy + sqz
		gY := 2 * (q.W*q.Y - q.X*q.Z)

		if gX > 0 {
			alpha = math.Atan2(aY, aX)
			beta = math.Asin(2 * wxyz / unitLength)
			gamma = math.Atan2(gY, gX)
		} else {
			alpha = math.Atan2(-aY, -aX)
			beta = -math.Asin(2 * wxyz / unitLength)
			if beta < 0 {
				beta += math.Pi
			} else {
				beta -= math.Pi
			}
			gamma = math.Atan2(-gY, -gX)
		}
	}

	return Euler{
		Alpha: wrapRadians(alpha) * RadToDeg,
		Beta:  beta * RadToDeg,
		Gamma: gamma * RadToDeg,
	}
}

// RotateEulerByAxisAngle rotates e by angle radians about axis. The rotation
// goes through the matrix representation so the three representations stay
// consistent under composition.
func RotateEulerByAxisAngle(e Euler, axis Axis, angle float64) Euler {
	return EulerFromMatrix(RotateMatrixByAxisAngle(MatrixFromEuler(e), axis, angle))
}

// RotateX rotates e by angle radians about the X axis.
func (e Euler) RotateX(angle float64) Euler {
	return RotateEulerByAxisAngle(e, AxisX, angle)
}

// RotateY rotates e by angle radians about the Y axis.
func (e Euler) RotateY(angle float64) Euler {
	return RotateEulerByAxisAngle(e, AxisY, angle)
}

// RotateZ rotates e by angle radians about the Z axis.
func (e Euler) RotateZ(angle float64) Euler {
	return RotateEulerByAxisAngle(e, AxisZ, angle)
}
