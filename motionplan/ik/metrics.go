package ik

import (
	"math"
	"math/rand"

	"github.com/golang/geo/r3"
	"gonum.org/v1/gonum/num/quat"

	"go.viam.com/cartpath/referenceframe"
	spatial "go.viam.com/cartpath/spatialmath"
)

const orientationDistanceScaling = 10.

// State contains all the information a metric needs to score a configuration.
// Position may be empty, and may be filled in by a metric that needs it.
type State struct {
	Position      spatial.Pose
	Configuration []referenceframe.Input
	Frame         referenceframe.Frame
}

// StateMetric are functions which, given a State, produces some score. Lower is better.
// This is used for gradient descent to converge upon a goal pose, for example.
type StateMetric func(*State) float64

// NewSquaredNormMetric is the default distance function between two poses to be used for gradient descent.
func NewSquaredNormMetric(goal spatial.Pose) StateMetric {
	return func(query *State) float64 {
		delta := spatial.PoseDelta(goal, query.Position)
		// Increase weight for orientation since it's a small number
		return delta.Point().Norm2() + spatial.QuatToR3AA(delta.Orientation().Quaternion()).Mul(orientationDistanceScaling).Norm2()
	}
}

// NewSeedDistanceMetric scores a configuration by its L2 distance in input space from seed. Solvers use it to prefer
// the solution closest to where the robot already is.
func NewSeedDistanceMetric(seed []referenceframe.Input) StateMetric {
	return func(state *State) float64 {
		return referenceframe.InputsL2Distance(seed, state.Configuration)
	}
}

// poseError is the 6-vector from pose to goal: translation error followed by the world-frame rotation vector error.
func poseError(pose, goal spatial.Pose) []float64 {
	dp := goal.Point().Sub(pose.Point())
	dr := rotationVector(spatial.OrientationBetween(pose.Orientation(), goal.Orientation()).Quaternion())
	return []float64{dp.X, dp.Y, dp.Z, dr.X, dr.Y, dr.Z}
}

// rotationVector is the axis-angle vector of a unit quaternion. Unlike spatial.QuatToR3AA it keeps the axis of very
// small rotations, which finite differences depend on.
func rotationVector(q quat.Number) r3.Vector {
	if q.Real < 0 {
		q = quat.Scale(-1, q)
	}
	v := r3.Vector{X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	s := v.Norm()
	if s < 1e-12 {
		return v.Mul(2)
	}
	return v.Mul(2 * math.Atan2(s, q.Real) / s)
}

// randomPositions draws a starting point uniformly within the bounds. Unbounded sides are replaced by a window of
// 2*unboundedRange.
func randomPositions(randSeed *rand.Rand, lower, upper []float64) []float64 {
	pos := make([]float64, len(lower))
	for i, l := range lower {
		u := upper[i]
		switch {
		case math.IsInf(l, -1) && math.IsInf(u, 1):
			l, u = -unboundedRange, unboundedRange
		case math.IsInf(l, -1):
			l = u - 2*unboundedRange
		case math.IsInf(u, 1):
			u = l + 2*unboundedRange
		}
		pos[i] = randSeed.Float64()*(u-l) + l
	}
	return pos
}
