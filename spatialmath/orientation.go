// Package spatialmath defines the poses and orientations used to describe end effector motion.
//
// All translations are in meters and all angles are in radians unless a type says otherwise.
package spatialmath

import (
	"math"

	"gonum.org/v1/gonum/num/quat"
)

// If two angles differ by less than this amount, we consider them the same for the purpose of doing
// math around the poles of orientation.
const angleEpsilon = 0.0001 // radians

// Orientation is an interface used to express the different parameterizations of the orientation
// of a rigid object or a frame of reference in 3D Euclidean space.
type Orientation interface {
	OrientationVectorRadians() *OrientationVector
	OrientationVectorDegrees() *OrientationVectorDegrees
	AxisAngles() *R4AA
	Quaternion() quat.Number
	EulerAngles() *EulerAngles
	RotationMatrix() *RotationMatrix
}

// NewZeroOrientation returns an orientatation which signifies no rotation.
func NewZeroOrientation() Orientation {
	return &Quaternion{1, 0, 0, 0}
}

// OrientationAlmostEqual will return a bool describing whether 2 poses have approximately the same orientation.
func OrientationAlmostEqual(o1, o2 Orientation) bool {
	return QuaternionAlmostEqual(o1.Quaternion(), o2.Quaternion(), 1e-5)
}

// OrientationBetween returns the orientation representing the difference between the two given Orientations.
func OrientationBetween(o1, o2 Orientation) Orientation {
	q := Quaternion(quat.Mul(o2.Quaternion(), quat.Conj(o1.Quaternion())))
	return &q
}

// AngularDistance returns the magnitude in radians of the smallest rotation taking o1 to o2.
func AngularDistance(o1, o2 Orientation) float64 {
	q1 := o1.Quaternion()
	q2 := o2.Quaternion()
	dot := math.Abs(q1.Real*q2.Real + q1.Imag*q2.Imag + q1.Jmag*q2.Jmag + q1.Kmag*q2.Kmag)
	if dot > 1 {
		dot = 1
	}
	return 2 * math.Acos(dot)
}

// QuaternionAlmostEqual is an equality test for all the float components of a quaternion. Quaternions have double coverage,
// the inverse of a quaternion represents the same orientation, so both are checked.
func QuaternionAlmostEqual(a, b quat.Number, tol float64) bool {
	same := math.Abs(a.Real-b.Real) < tol &&
		math.Abs(a.Imag-b.Imag) < tol &&
		math.Abs(a.Jmag-b.Jmag) < tol &&
		math.Abs(a.Kmag-b.Kmag) < tol
	if same {
		return true
	}
	return math.Abs(a.Real+b.Real) < tol &&
		math.Abs(a.Imag+b.Imag) < tol &&
		math.Abs(a.Jmag+b.Jmag) < tol &&
		math.Abs(a.Kmag+b.Kmag) < tol
}
