package ik

import (
	"context"
	"math"
	"math/rand"

	"github.com/pkg/errors"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"

	"go.viam.com/cartpath/logging"
	"go.viam.com/cartpath/referenceframe"
	"go.viam.com/cartpath/spatialmath"
)

const (
	jacobianStep = 1e-6
	// no input moves further than this in a single iteration
	maxInputStep   = 0.2
	stallTolerance = 1e-12
)

// JacobianIK solves by damped least squares on a numerically differentiated Jacobian. The first descent starts
// from the seed; each restart starts from a random point within the search bounds.
type JacobianIK struct {
	logger   logging.Logger
	restarts int
	fromSeed bool
	randSeed int64
}

// CreateJacobianIKSolver creates a damped least squares solver. If fromSeed is false every descent, including the
// first, starts from a random point drawn with rseed.
func CreateJacobianIKSolver(logger logging.Logger, restarts int, fromSeed bool, rseed int64) *JacobianIK {
	return &JacobianIK{
		logger:   logger,
		restarts: restarts,
		fromSeed: fromSeed,
		randSeed: rseed,
	}
}

// Solve runs descents until one reaches the goal or every restart is used up.
func (ik *JacobianIK) Solve(
	ctx context.Context,
	frame referenceframe.Frame,
	goal spatialmath.Pose,
	seed []referenceframe.Input,
	opts *Options,
) ([]referenceframe.Input, error) {
	opts = opts.orDefault()
	lower, upper, err := searchBounds(frame, seed, opts)
	if err != nil {
		return nil, err
	}

	//nolint: gosec
	rng := rand.New(rand.NewSource(ik.randSeed))
	for attempt := 0; attempt <= ik.restarts; attempt++ {
		var start []float64
		if attempt == 0 && ik.fromSeed {
			start = referenceframe.InputsToFloats(seed)
		} else {
			start = randomPositions(rng, lower, upper)
		}
		solution, iterations, err := ik.descend(ctx, frame, goal, start, lower, upper, opts)
		if err != nil {
			return nil, err
		}
		if solution != nil {
			ik.logger.Debugw("jacobian IK solved", "attempt", attempt, "iterations", iterations)
			return enforceBounds(frame, referenceframe.FloatsToInputs(solution)), nil
		}
	}
	return nil, ErrNoSolution
}

// descend returns nil without error when the descent stalls or runs out of iterations.
func (ik *JacobianIK) descend(
	ctx context.Context,
	frame referenceframe.Frame,
	goal spatialmath.Pose,
	start, lower, upper []float64,
	opts *Options,
) ([]float64, int, error) {
	x := append([]float64{}, start...)
	clampToBounds(x, lower, upper)
	prev := make([]float64, len(x))
	jac := mat.NewDense(6, len(x), nil)
	damping := opts.Damping * opts.Damping

	for iter := 0; iter < opts.MaxIterations; iter++ {
		if err := ctx.Err(); err != nil {
			return nil, iter, err
		}
		pose, err := transform(frame, x)
		if err != nil {
			return nil, iter, err
		}
		if opts.within(goal, pose) {
			return x, iter, nil
		}
		if err := fillJacobian(frame, x, pose, upper, jac); err != nil {
			return nil, iter, err
		}

		// dx = J^T (J J^T + damping I)^-1 e
		var a mat.Dense
		a.Mul(jac, jac.T())
		for i := 0; i < 6; i++ {
			a.Set(i, i, a.At(i, i)+damping)
		}
		var y mat.VecDense
		if err := y.SolveVec(&a, mat.NewVecDense(6, poseError(pose, goal))); err != nil {
			return nil, iter, nil
		}
		var dx mat.VecDense
		dx.MulVec(jac.T(), &y)
		step := dx.RawVector().Data
		if largest := floats.Norm(step, math.Inf(1)); largest > maxInputStep {
			floats.Scale(maxInputStep/largest, step)
		}

		copy(prev, x)
		floats.Add(x, step)
		clampToBounds(x, lower, upper)
		if floats.Distance(prev, x, 2) < stallTolerance {
			return nil, iter, nil
		}
	}
	return nil, opts.MaxIterations, nil
}

// fillJacobian writes the forward difference of the pose error with respect to each input into jac.
func fillJacobian(frame referenceframe.Frame, x []float64, pose spatialmath.Pose, upper []float64, jac *mat.Dense) error {
	for i := range x {
		xi := x[i]
		h := jacobianStep
		if xi+h > upper[i] {
			h = -h
		}
		x[i] += h
		moved, err := transform(frame, x)
		x[i] = xi
		if err != nil {
			return err
		}
		dp := moved.Point().Sub(pose.Point()).Mul(1 / h)
		dr := rotationVector(spatialmath.OrientationBetween(pose.Orientation(), moved.Orientation()).Quaternion()).Mul(1 / h)
		for row, v := range []float64{dp.X, dp.Y, dp.Z, dr.X, dr.Y, dr.Z} {
			jac.Set(row, i, v)
		}
	}
	return nil
}

// transform returns the pose of the frame at x. Out of bounds errors are ignored since solvers keep their own
// inputs within bounds and the variables they do not control may legitimately be out of bounds.
func transform(frame referenceframe.Frame, x []float64) (spatialmath.Pose, error) {
	pose, err := frame.Transform(referenceframe.FloatsToInputs(x))
	if err != nil && !referenceframe.IsOOBError(err) {
		return nil, err
	}
	if pose == nil {
		return nil, errors.Errorf("frame %q returned no pose", frame.Name())
	}
	return pose, nil
}
