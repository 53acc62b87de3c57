// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

// Package linalg provides the small dense building blocks used
// everywhere in the mechanical core: BLAS-1 style wrappers over flat
// []float64 vectors, and the 1/2/3-D rotation matrices and quaternion
// used by Space orientation and Solid rigid-body fitting.
package linalg

import (
	"math"

	"github.com/cpmech/gosl/la"
)

// VecAdd computes Y <- Y + a*X, built on gosl/la's VecAdd2 (result = alpha*x
// + beta*y), mirroring the pattern in msolid/driver.go's strain update
// `la.VecAdd2(o.Eps[k], 1, o.Eps[k-1], 1, Δε)`.
func VecAdd(y []float64, a float64, x []float64) {
	la.VecAdd2(y, 1, y, a, x)
}

// VecCopy copies X into Y, built on gosl/la's scaled-copy primitive.
func VecCopy(y, x []float64) {
	la.VecCopy(y, 1, x)
}

// VecScale scales X in place by a.
func VecScale(x []float64, a float64) {
	for i := range x {
		x[i] *= a
	}
}

// VecFill sets every entry of x to a.
func VecFill(x []float64, a float64) {
	la.VecFill(x, a)
}

// VecDot returns the inner product of two equal-length vectors.
func VecDot(x, y []float64) float64 {
	var s float64
	for i := range x {
		s += x[i] * y[i]
	}
	return s
}

// VecNorm returns the Euclidean norm of x.
func VecNorm(x []float64) float64 {
	return la.VecNorm(x)
}

// VecNormInf returns the infinity norm of x, used by Meca's BiCGStab
// convergence Monitor (spec.md §4.6 step 6).
func VecNormInf(x []float64) float64 {
	var m float64
	for _, v := range x {
		a := math.Abs(v)
		if a > m {
			m = a
		}
	}
	return m
}

// Point3 is a DIM<=3 point/vector; DIM-agnostic code keeps 3 components
// and only uses the leading Dim of them, mirroring cytosim's Vector
// class which is always stored as 3 reals regardless of compile-time DIM.
type Point3 [3]float64

// Sub returns a-b.
func (a Point3) Sub(b Point3) Point3 {
	return Point3{a[0] - b[0], a[1] - b[1], a[2] - b[2]}
}

// Add returns a+b.
func (a Point3) Add(b Point3) Point3 {
	return Point3{a[0] + b[0], a[1] + b[1], a[2] + b[2]}
}

// Scaled returns a*k.
func (a Point3) Scaled(k float64) Point3 {
	return Point3{a[0] * k, a[1] * k, a[2] * k}
}

// Dot returns the inner product.
func (a Point3) Dot(b Point3) float64 {
	return a[0]*b[0] + a[1]*b[1] + a[2]*b[2]
}

// Norm returns the Euclidean length.
func (a Point3) Norm() float64 {
	return math.Sqrt(a.Dot(a))
}

// Normalized returns a unit vector along a, or the zero vector if a is
// (numerically) zero.
func (a Point3) Normalized() Point3 {
	n := a.Norm()
	if n < 1e-12 {
		return Point3{}
	}
	return a.Scaled(1 / n)
}

// Cross returns the cross product a x b.
func (a Point3) Cross(b Point3) Point3 {
	return Point3{
		a[1]*b[2] - a[2]*b[1],
		a[2]*b[0] - a[0]*b[2],
		a[0]*b[1] - a[1]*b[0],
	}
}
