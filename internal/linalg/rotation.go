// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import "math"

// Rotation2 is a 2x2 rotation matrix, grounded on
// original_source/src/math/matrix2.h.
type Rotation2 [2][2]float64

// NewRotation2 builds the rotation of the given angle (radians).
func NewRotation2(angle float64) Rotation2 {
	c, s := math.Cos(angle), math.Sin(angle)
	return Rotation2{{c, -s}, {s, c}}
}

// Apply rotates a 2-vector.
func (r Rotation2) Apply(v [2]float64) [2]float64 {
	return [2]float64{
		r[0][0]*v[0] + r[0][1]*v[1],
		r[1][0]*v[0] + r[1][1]*v[1],
	}
}

// Rotation3 is a 3x3 rotation matrix, grounded on
// original_source/src/math/matrix3.h.
type Rotation3 [3][3]float64

// Identity3 returns the identity rotation.
func Identity3() Rotation3 {
	return Rotation3{{1, 0, 0}, {0, 1, 0}, {0, 0, 1}}
}

// Apply rotates a 3-vector.
func (r Rotation3) Apply(v Point3) Point3 {
	return Point3{
		r[0][0]*v[0] + r[0][1]*v[1] + r[0][2]*v[2],
		r[1][0]*v[0] + r[1][1]*v[1] + r[1][2]*v[2],
		r[2][0]*v[0] + r[2][1]*v[1] + r[2][2]*v[2],
	}
}

// Transposed returns the transpose (== inverse, since rotations are
// orthonormal).
func (r Rotation3) Transposed() Rotation3 {
	var t Rotation3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			t[j][i] = r[i][j]
		}
	}
	return t
}

// Mul returns r*s.
func (r Rotation3) Mul(s Rotation3) Rotation3 {
	var out Rotation3
	for i := 0; i < 3; i++ {
		for j := 0; j < 3; j++ {
			var v float64
			for k := 0; k < 3; k++ {
				v += r[i][k] * s[k][j]
			}
			out[i][j] = v
		}
	}
	return out
}

// Quaternion is a unit quaternion (w,x,y,z) representing a 3D
// rotation; body.Solid's reshape does not use it.
type Quaternion [4]float64

// QuaternionFromAxisAngle builds a unit quaternion from a rotation axis
// (assumed unit length) and an angle in radians.
func QuaternionFromAxisAngle(axis Point3, angle float64) Quaternion {
	h := angle / 2
	s := math.Sin(h)
	return Quaternion{math.Cos(h), axis[0] * s, axis[1] * s, axis[2] * s}
}

// ToRotation3 converts a unit quaternion to its rotation matrix.
func (q Quaternion) ToRotation3() Rotation3 {
	w, x, y, z := q[0], q[1], q[2], q[3]
	return Rotation3{
		{1 - 2*(y*y+z*z), 2 * (x*y - z*w), 2 * (x*z + y*w)},
		{2 * (x*y + z*w), 1 - 2*(x*x+z*z), 2 * (y*z - x*w)},
		{2 * (x*z - y*w), 2 * (y*z + x*w), 1 - 2*(x*x+y*y)},
	}
}

// Mul returns the Hamilton product q*r: as rotations, r is applied first, then q.
func (q Quaternion) Mul(r Quaternion) Quaternion {
	return Quaternion{
		q[0]*r[0] - q[1]*r[1] - q[2]*r[2] - q[3]*r[3],
		q[0]*r[1] + q[1]*r[0] + q[2]*r[3] - q[3]*r[2],
		q[0]*r[2] - q[1]*r[3] + q[2]*r[0] + q[3]*r[1],
		q[0]*r[3] + q[1]*r[2] - q[2]*r[1] + q[3]*r[0],
	}
}

// Normalized returns a unit quaternion along the same direction as q.
func (q Quaternion) Normalized() Quaternion {
	n := math.Sqrt(q[0]*q[0] + q[1]*q[1] + q[2]*q[2] + q[3]*q[3])
	if n < 1e-12 {
		return Quaternion{1, 0, 0, 0}
	}
	return Quaternion{q[0] / n, q[1] / n, q[2] / n, q[3] / n}
}
