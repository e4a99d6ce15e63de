// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rotation

import "math"

// Matrix is a 3x3 rotation matrix in row major order.
// m[3*r+c] is the element in row r, column c.
type Matrix [9]float64

// Identity returns the identity rotation matrix.
func Identity() Matrix {
	return Matrix{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
}

// MatrixFromEuler builds the ZXY-ordered rotation matrix for e and
// normalizes it by its determinant.
func MatrixFromEuler(e Euler) Matrix {
	z := e.Alpha * DegToRad
	x := e.Beta * DegToRad
	y := e.Gamma * DegToRad

	cX, sX := math.Cos(x), math.Sin(x)
	cY, sY := math.Cos(y), math.Sin(y)
	cZ, sZ := math.Cos(z), math.Sin(z)

	m := Matrix{
		cZ*cY - sZ*sX*sY, -cX * sZ, cY*sZ*sX + cZ*sY,
		cY*sZ + cZ*sX*sY, cZ * cX, sZ*sY - cZ*cY*sX,
		-cX * sY, sX, cX * cY,
	}

	return m.Normalize()
}

// MatrixFromQuaternion returns the rotation matrix equivalent of q.
// q is expected to be a unit quaternion; no normalization is applied.
func MatrixFromQuaternion(q Quaternion) Matrix {
	sqw := q.W * q.W
	sqx := q.X * q.X
	sqy := q.Y * q.Y
	sqz := q.Z * q.Z

	return Matrix{
		sqw + sqx - sqy - sqz, 2 * (q.X*q.Y - q.W*q.Z), 2 * (q.X*q.Z + q.W*q.Y),
		2 * (q.X*q.Y + q.W*q.Z), sqw - sqx + sqy - sqz, 2 * (q.Y*q.Z - q.W*q.X),
		2 * (q.X*q.Z - q.W*q.Y), 2 * (q.Y*q.Z + q.W*q.X), sqw - sqx - sqy + sqz,
	}
}

// MultiplyMatrices returns the product a×b.
func MultiplyMatrices(a, b Matrix) Matrix {
	return Matrix{
		a[0]*b[0] + a[1]*b[3] + a[2]*b[6],
		a[0]*b[1] + a[1]*b[4] + a[2]*b[7],
		a[0]*b[2] + a[1]*b[5] + a[2]*b[8],

		a[3]*b[0] + a[4]*b[3] + a[5]*b[6],
		a[3]*b[1] + a[4]*b[4] + a[5]*b[7],
		a[3]*b[2] + a[4]*b[5] + a[5]*b[8],

		a[6]*b[0] + a[7]*b[3] + a[8]*b[6],
		a[6]*b[1] + a[7]*b[4] + a[8]*b[7],
		a[6]*b[2] + a[7]*b[5] + a[8]*b[8],
	}
}

// Multiply returns m×b.
func (m Matrix) Multiply(b Matrix) Matrix {
	return MultiplyMatrices(m, b)
}

// Determinant returns the determinant of m.
func (m Matrix) Determinant() float64 {
	return m[0]*m[4]*m[8] -
		m[0]*m[5]*m[7] -
		m[1]*m[3]*m[8] +
		m[1]*m[5]*m[6] +
		m[2]*m[3]*m[7] -
		m[2]*m[4]*m[6]
}

// Normalize divides every element by the determinant. A singular matrix
// yields non-finite elements; callers must not feed degenerate input.
func (m Matrix) Normalize() Matrix {
	det := m.Determinant()
	for i := range m {
		m[i] /= det
	}
	return m
}

// RotateMatrixByAxisAngle returns m×T where T is the elementary rotation of
// angle radians about axis. Any axis other than AxisX, AxisY or AxisZ
// leaves m unchanged.
func RotateMatrixByAxisAngle(m Matrix, axis Axis, angle float64) Matrix {
	t := Identity()
	sA, cA := math.Sin(angle), math.Cos(angle)

	switch axis {
	case AxisX:
		t[4], t[5] = cA, -sA
		t[7], t[8] = sA, cA
	case AxisY:
		t[0], t[2] = cA, sA
		t[6], t[8] = -sA, cA
	case AxisZ:
		t[0], t[1] = cA, -sA
		t[3], t[4] = sA, cA
	default:
		return m
	}

	return MultiplyMatrices(m, t).Normalize()
}

// RotateX rotates m by angle radians about the X axis.
func (m Matrix) RotateX(angle float64) Matrix {
	return RotateMatrixByAxisAngle(m, AxisX, angle)
}

// RotateY rotates m by angle radians about the Y axis.
func (m Matrix) RotateY(angle float64) Matrix {
	return RotateMatrixByAxisAngle(m, AxisY, angle)
}

// RotateZ rotates m by angle radians about the Z axis.
func (m Matrix) RotateZ(angle float64) Matrix {
	return RotateMatrixByAxisAngle(m, AxisZ, angle)
}
