// Copyright (c) 2026 Daniel Alarcon Rubio / Relabs Tech
// SPDX-License-Identifier: MIT
// See LICENSE file for full license text

package rotation

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// Quaternion is a rotation quaternion with vector part (X, Y, Z) and scalar
// part W.
type Quaternion struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
	W float64 `json:"w"`
}

// IdentityQuaternion returns the identity rotation (0, 0, 0, 1).
func IdentityQuaternion() Quaternion {
	return Quaternion{W: 1}
}

// QuaternionFromEuler converts ZXY Euler angles in degrees to a unit
// quaternion.
func QuaternionFromEuler(e Euler) Quaternion {
	z := e.Alpha * DegToRad / 2
	x := e.Beta * DegToRad / 2
	y := e.Gamma * DegToRad / 2

	cX, sX := math.Cos(x), math.Sin(x)
	cY, sY := math.Cos(y), math.Sin(y)
	cZ, sZ := math.Cos(z), math.Sin(z)

	q := Quaternion{
		X: sX*cY*cZ - cX*sY*sZ,
		Y: cX*sY*cZ + sX*cY*sZ,
		Z: cX*cY*sZ + sX*sY*cZ,
		W: cX*cY*cZ - sX*sY*sZ,
	}

	return q.Normalize()
}

// QuaternionFromMatrix extracts a quaternion from a rotation matrix. Each
// component comes from the diagonal and the sign of the vector part is
// taken from the off-diagonal differences, so the sign is not canonical
// near the identity. Exact half turns about an axis have all differences 0
// and a zero W; that zero-length result normalizes to the identity.
func QuaternionFromMatrix(m Matrix) Quaternion {
	q := Quaternion{
		X: halfRoot(1+m[0]-m[4]-m[8]) * Sign(m[7]-m[5]),
		Y: halfRoot(1-m[0]+m[4]-m[8]) * Sign(m[2]-m[6]),
		Z: halfRoot(1-m[0]-m[4]+m[8]) * Sign(m[3]-m[1]),
		W: halfRoot(1 + m[0] + m[4] + m[8]),
	}
	return q.Normalize()
}

// halfRoot returns 0.5·√d. Rounding can push d a few ulps below zero for a
// component that is really zero; that case maps to 0 instead of NaN.
func halfRoot(d float64) float64 {
	if d < 0 {
		return 0
	}
	return 0.5 * math.Sqrt(d)
}

func (q Quaternion) number() quat.Number {
	return quat.Number{Real: q.W, Imag: q.X, Jmag: q.Y, Kmag: q.Z}
}

func fromNumber(n quat.Number) Quaternion {
	return Quaternion{X: n.Imag, Y: n.Jmag, Z: n.Kmag, W: n.Real}
}

// MultiplyQuaternions returns the Hamilton product a·b. The result is not
// renormalized.
func MultiplyQuaternions(a, b Quaternion) Quaternion {
	return fromNumber(quat.Mul(a.number(), b.number()))
}

// Multiply returns q·b.
func (q Quaternion) Multiply(b Quaternion) Quaternion {
	return MultiplyQuaternions(q, b)
}

// Length returns the Euclidean norm of q.
func (q Quaternion) Length() float64 {
	return quat.Abs(q.number())
}

// Normalize scales q to unit length. A zero length quaternion becomes the
// identity.
func (q Quaternion) Normalize() Quaternion {
	l := q.Length()
	if l == 0 {
		return IdentityQuaternion()
	}

	inv := 1 / l
	return Quaternion{
		X: q.X * inv,
		Y: q.Y * inv,
		Z: q.Z * inv,
		W: q.W * inv,
	}
}

// RotateQuaternionByAxisAngle returns q·r normalized, where r is the
// rotation of angle radians about axis.
func RotateQuaternionByAxisAngle(q Quaternion, axis Axis, angle float64) Quaternion {
	half := angle / 2
	sA := math.Sin(half)

	r := Quaternion{
		X: axis[0] * sA,
		Y: axis[1] * sA,
		Z: axis[2] * sA,
		W: math.Cos(half),
	}

	return MultiplyQuaternions(q, r).Normalize()
}

// RotateX rotates q by angle radians about the X axis.
func (q Quaternion) RotateX(angle float64) Quaternion {
	return RotateQuaternionByAxisAngle(q, AxisX, angle)
}

// RotateY rotates q by angle radians about the Y axis.
func (q Quaternion) RotateY(angle float64) Quaternion {
	return RotateQuaternionByAxisAngle(q, AxisY, angle)
}

// RotateZ rotates q by angle radians about the Z axis.
func (q Quaternion) RotateZ(angle float64) Quaternion {
	return RotateQuaternionByAxisAngle(q, AxisZ, angle)
}
