// Copyright 2016 The Cytosim Authors. All rights reserved.
// Use of this source code is governed by a BSD-style
// license that can be found in the LICENSE file.

package linalg

import "math"

// BestFit2D finds the rotation (cos,sin) and translation that best maps
// the reference cloud `ref` (centered on its own centroid) onto the
// current cloud `cur`, both flat [x0,y0,x1,y1,...] arrays of the same
// point count. Grounded on original_source/src/sim/solid.cc's
// Solid::reshape() (DIM==2 branch): the rotation is read off directly
// from the cross/dot sums of the two clouds, no SVD needed in 2D.
func BestFit2D(cur, ref []float64) (cos, sin, cx, cy float64) {
	n := len(cur) / 2
	if n == 0 {
		return 1, 0, 0, 0
	}
	for i := 0; i < n; i++ {
		cx += cur[2*i]
		cy += cur[2*i+1]
	}
	cx /= float64(n)
	cy /= float64(n)

	var a, b float64
	for i := 0; i < n; i++ {
		a += cur[2*i]*ref[2*i] + cur[2*i+1]*ref[2*i+1]
		b += ref[2*i]*cur[2*i+1] - ref[2*i+1]*cur[2*i]
	}
	norm := math.Sqrt(a*a + b*b)
	if norm < 1e-12 {
		return 1, 0, cx, cy
	}
	return a / norm, b / norm, cx, cy
}

// ApplyFit2D writes the rigid transform (cos,sin,translation) applied to
// the reference cloud into out (same layout as BestFit2D's cur/ref).
func ApplyFit2D(out, ref []float64, cos, sin, cx, cy float64) {
	n := len(ref) / 2
	for i := 0; i < n; i++ {
		x, y := ref[2*i], ref[2*i+1]
		out[2*i] = cos*x-sin*y + cx
		out[2*i+1] = sin*x+cos*y + cy
	}
}

// Momentum computes the centroid and the second moment (sqsum, the
// sum of squared distances to the centroid over all axes) of a flat
// DIM-strided point cloud, grounded on Solid::calculateMomentum used by fixShape()/
// rescale() to track the reference shape's size exactly.
func Momentum(points []float64, dim int) (centroid []float64, sqsum float64) {
	n := len(points) / dim
	centroid = make([]float64, dim)
	if n == 0 {
		return
	}
	for i := 0; i < n; i++ {
		for d := 0; d < dim; d++ {
			centroid[d] += points[i*dim+d]
		}
	}
	for d := range centroid {
		centroid[d] /= float64(n)
	}
	for i := 0; i < n; i++ {
		for d := 0; d < dim; d++ {
			v := points[i*dim+d] - centroid[d]
			sqsum += v * v
		}
	}
	return
}

// RescaleFactor returns the isotropic scale factor that restores a
// point cloud's second moment to refSqsum, per Solid::rescale().
func RescaleFactor(curSqsum, refSqsum float64) float64 {
	if curSqsum <= 0 {
		return 1
	}
	return math.Sqrt(refSqsum / curSqsum)
}
