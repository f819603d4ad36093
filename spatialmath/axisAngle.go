package spatialmath

import (
	"math"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"
)

// R4AA is a rotation of Theta radians about the axis (RX, RY, RZ).
type R4AA struct {
	Theta float64 `json:"th"`
	RX    float64 `json:"x"`
	RY    float64 `json:"y"`
	RZ    float64 `json:"z"`
}

// R3ToR4 splits a rotation vector, whose norm is the angle, into an angle and a unit axis. The zero vector is a
// zero rotation about +Z.
func R3ToR4(aa r3.Vector) *R4AA {
	theta := aa.Norm()
	if theta == 0 {
		return &R4AA{RZ: 1}
	}
	axis := aa.Mul(1 / theta)
	return &R4AA{Theta: theta, RX: axis.X, RY: axis.Y, RZ: axis.Z}
}

func (r4 *R4AA) axis() r3.Vector {
	return r3.Vector{X: r4.RX, Y: r4.RY, Z: r4.RZ}
}

// ToR3 returns the rotation vector: the axis scaled by the angle.
func (r4 *R4AA) ToR3() r3.Vector {
	return r4.axis().Mul(r4.Theta)
}

// Normalize puts the axis on the unit sphere. A zero axis becomes +Z.
func (r4 *R4AA) Normalize() {
	n := r4.axis().Norm()
	if n == 0 {
		r4.RX, r4.RY, r4.RZ = 0, 0, 1
		return
	}
	r4.RX, r4.RY, r4.RZ = r4.RX/n, r4.RY/n, r4.RZ/n
}

// ToQuat returns the unit quaternion of the rotation. The axis need not be normalized.
func (r4 *R4AA) ToQuat() quat.Number {
	n := r4.axis().Norm()
	if r4.Theta == 0 || n == 0 {
		return quat.Number{Real: 1}
	}
	s := math.Sin(r4.Theta/2) / n
	return quat.Number{Real: math.Cos(r4.Theta / 2), Imag: r4.RX * s, Jmag: r4.RY * s, Kmag: r4.RZ * s}
}

// Quaternion implements Orientation.
func (r4 *R4AA) Quaternion() quat.Number {
	return r4.ToQuat()
}

// AxisAngles implements Orientation.
func (r4 *R4AA) AxisAngles() *R4AA {
	return r4
}

// OrientationVectorRadians implements Orientation.
func (r4 *R4AA) OrientationVectorRadians() *OrientationVector {
	return QuatToOV(r4.ToQuat())
}

// OrientationVectorDegrees implements Orientation.
func (r4 *R4AA) OrientationVectorDegrees() *OrientationVectorDegrees {
	return QuatToOVD(r4.ToQuat())
}

// EulerAngles implements Orientation.
func (r4 *R4AA) EulerAngles() *EulerAngles {
	return QuatToEulerAngles(r4.ToQuat())
}

// RotationMatrix implements Orientation.
func (r4 *R4AA) RotationMatrix() *RotationMatrix {
	return QuatToRotationMatrix(r4.ToQuat())
}
