package spatialmath

import (
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/dualquat"
	"gonum.org/v1/gonum/num/quat"
)

// Pose represents a 6dof pose, position and orientation, with respect to the origin.
// The Point() method returns the position in (x,y,z) meters, and the Orientation() method
// returns an Orientation object, which has methods to parametrize the rotation in multiple ways.
type Pose interface {
	Point() r3.Vector
	Orientation() Orientation
}

// NewZeroPose returns a pose at (0,0,0) with same orientation as whatever frame it is placed in.
func NewZeroPose() Pose {
	return newDualQuaternion()
}

// NewPose takes in a position and orientation and returns a Pose.
func NewPose(p r3.Vector, o Orientation) Pose {
	if o == nil {
		return NewPoseFromPoint(p)
	}
	q := newDualQuaternion()
	q.Real = Normalize(o.Quaternion())
	q.setTranslation(p)
	return q
}

// NewPoseFromPoint takes in a cartesian (x,y,z) and stores it as a vector.
// It will have the same orientation as the frame it is in.
func NewPoseFromPoint(point r3.Vector) Pose {
	q := newDualQuaternion()
	q.setTranslation(point)
	return q
}

// NewPoseFromAxisAngle takes in a positon, rotationAxis, and angle and returns a Pose.
// angle is input in radians.
func NewPoseFromAxisAngle(point, rotationAxis r3.Vector, angle float64) Pose {
	if rotationAxis.Norm2() == 0 {
		return NewPoseFromPoint(point)
	}
	return NewPose(point, &R4AA{Theta: angle, RX: rotationAxis.X, RY: rotationAxis.Y, RZ: rotationAxis.Z})
}

// Compose treats Poses as functions A(x) and B(x), and produces a new function C(x) = A(B(x)).
// It converts the poses to dual quaternions and multiplies them together, normalizes the transform and returns a new Pose.
// Composition does not commute in general, i.e. you cannot guarantee ABx == BAx.
func Compose(a, b Pose) Pose {
	return &dualQuaternion{dualquat.Mul(dualQuaternionFromPose(a).Number, dualQuaternionFromPose(b).Number)}
}

// PoseBetween returns the difference between two dualQuaternions, that is, the dq which if multiplied by one will give the other.
// Example: if PoseBetween(a, b) = c, then Compose(a, c) = b.
func PoseBetween(a, b Pose) Pose {
	return Compose(PoseInverse(a), b)
}

// PoseInverse will return the inverse of a pose. So if a given pose p is the pose of A relative to B, PoseInverse(p) will give
// the pose of B relative to A.
func PoseInverse(p Pose) Pose {
	q := dualQuaternionFromPose(p)
	return &dualQuaternion{dualquat.Number{Real: quat.Conj(q.Real), Dual: quat.Conj(q.Dual)}}
}

// PoseDelta returns the difference between two Poses expressed in the frame of the first: the translation
// from a to b and the rotation from a to b.
func PoseDelta(a, b Pose) Pose {
	return NewPose(b.Point().Sub(a.Point()), OrientationBetween(a.Orientation(), b.Orientation()))
}

// Interpolate will return a new Pose that has been interpolated the set amount between two poses.
// Positions are interpolated linearly and orientations along the shortest great arc.
// by is a number between 0 and 1. 0 will return the pose p1, 1 will return the pose p2.
func Interpolate(p1, p2 Pose, by float64) Pose {
	point := p1.Point().Add(p2.Point().Sub(p1.Point()).Mul(by))
	q := Quaternion(slerp(Normalize(p1.Orientation().Quaternion()), Normalize(p2.Orientation().Quaternion()), by))
	return NewPose(point, &q)
}

// PoseAlmostEqual will return a bool describing whether 2 poses are approximately the same.
func PoseAlmostEqual(a, b Pose) bool {
	return PoseAlmostEqualEps(a, b, 1e-6)
}

// PoseAlmostEqualEps will return a bool describing whether 2 poses are approximately the same, with the
// translation compared within eps meters and the orientation within eps radians.
func PoseAlmostEqualEps(a, b Pose, eps float64) bool {
	return R3VectorAlmostEqual(a.Point(), b.Point(), eps) && AngularDistance(a.Orientation(), b.Orientation()) <= eps
}

// R3VectorAlmostEqual compares two r3.Vector objects and returns if the all elementwise differences are less than epsilon.
func R3VectorAlmostEqual(a, b r3.Vector, epsilon float64) bool {
	return math.Abs(a.X-b.X) < epsilon && math.Abs(a.Y-b.Y) < epsilon && math.Abs(a.Z-b.Z) < epsilon
}

// TranslationDistance is the euclidean distance in meters between the positions of two poses.
func TranslationDistance(a, b Pose) float64 {
	return a.Point().Distance(b.Point())
}

// RotatePoint rotates a point by the orientation of the given pose, ignoring its translation.
func RotatePoint(p Pose, point r3.Vector) r3.Vector {
	return rotateVector(Normalize(p.Orientation().Quaternion()), point)
}

// PoseString formats a pose for logs.
func PoseString(p Pose) string {
	pt := p.Point()
	aa := p.Orientation().AxisAngles()
	return fmt.Sprintf("{X:%.4f Y:%.4f Z:%.4f Theta:%.4f RX:%.3f RY:%.3f RZ:%.3f}",
		pt.X, pt.Y, pt.Z, aa.Theta, aa.RX, aa.RY, aa.RZ)
}
