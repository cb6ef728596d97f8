// Package vecutils implements geometric utility functions on 3-vectors
// used for alignment measurement: vector similarity, coordinate
// offsets, and quaternion/Euler rotations.
package vecutils

import (
	"fmt"
	"math"

	"gonum.org/v1/gonum/mat"
	"gonum.org/v1/gonum/num/quat"
)

// CosSim returns the cosine similarity between two vectors. The result
// lies in [-1, 1]. If either vector has zero norm, CosSim returns 0.
func CosSim(a, b mat.Vector) float64 {
	normA := mat.Norm(a, 2)
	normB := mat.Norm(b, 2)
	if normA == 0 || normB == 0 {
		return 0
	}
	return mat.Dot(a, b) / (normA * normB)
}

// Sub returns the element-wise difference a - b as a new vector
func Sub(a, b mat.Vector) *mat.VecDense {
	if a.Len() != b.Len() {
		panic(fmt.Sprintf("sub: mismatched lengths %v != %v", a.Len(),
			b.Len()))
	}
	out := mat.NewVecDense(a.Len(), nil)
	out.SubVec(a, b)
	return out
}

// Dist returns the Euclidean distance between two vectors
func Dist(a, b mat.Vector) float64 {
	return mat.Norm(Sub(a, b), 2)
}

// XYDist returns the Euclidean distance between the horizontal (x, y)
// components of two 3-vectors
func XYDist(a, b mat.Vector) float64 {
	dx := a.AtVec(0) - b.AtVec(0)
	dy := a.AtVec(1) - b.AtVec(1)
	return math.Hypot(dx, dy)
}

// ZDist returns the absolute vertical distance between two 3-vectors
func ZDist(a, b mat.Vector) float64 {
	return math.Abs(a.AtVec(2) - b.AtVec(2))
}

// Offset returns a copy of the 3-vector v translated by (dx, dy, dz)
func Offset(v mat.Vector, dx, dy, dz float64) *mat.VecDense {
	return mat.NewVecDense(3, []float64{
		v.AtVec(0) + dx,
		v.AtVec(1) + dy,
		v.AtVec(2) + dz,
	})
}

// Scaled returns a copy of v scaled by c
func Scaled(v mat.Vector, c float64) *mat.VecDense {
	out := mat.NewVecDense(v.Len(), nil)
	out.ScaleVec(c, v)
	return out
}

// AxisAngleQuat returns the unit quaternion rotating by angle radians
// about the given axis. The axis need not be normalized.
func AxisAngleQuat(axis mat.Vector, angle float64) quat.Number {
	norm := mat.Norm(axis, 2)
	if norm == 0 {
		panic("axisAngleQuat: zero rotation axis")
	}
	s := math.Sin(angle/2) / norm
	return quat.Number{
		Real: math.Cos(angle / 2),
		Imag: axis.AtVec(0) * s,
		Jmag: axis.AtVec(1) * s,
		Kmag: axis.AtVec(2) * s,
	}
}

// EulerZQuat returns the unit quaternion for a rotation of angle
// radians about the world z axis
func EulerZQuat(angle float64) quat.Number {
	return quat.Number{
		Real: math.Cos(angle / 2),
		Kmag: math.Sin(angle / 2),
	}
}

// RotateVec rotates the 3-vector v by the unit quaternion q, returning
// a new vector q v q*
func RotateVec(q quat.Number, v mat.Vector) *mat.VecDense {
	p := quat.Number{
		Imag: v.AtVec(0),
		Jmag: v.AtVec(1),
		Kmag: v.AtVec(2),
	}
	r := quat.Mul(quat.Mul(q, p), quat.Conj(q))
	return mat.NewVecDense(3, []float64{r.Imag, r.Jmag, r.Kmag})
}

// RotateAbout rotates the 3-vector v by angle radians about axis
func RotateAbout(v, axis mat.Vector, angle float64) *mat.VecDense {
	return RotateVec(AxisAngleQuat(axis, angle), v)
}

// QuatYaw returns the rotation about the world z axis, in radians,
// encoded by the unit quaternion q
func QuatYaw(q quat.Number) float64 {
	return math.Atan2(
		2*(q.Real*q.Kmag+q.Imag*q.Jmag),
		1-2*(q.Jmag*q.Jmag+q.Kmag*q.Kmag),
	)
}
