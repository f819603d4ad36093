// Package ik contains inverse kinematics solvers that find joint configurations placing a frame at a goal pose.
package ik

import (
	"context"
	"math"
	"runtime"

	"github.com/pkg/errors"

	"go.viam.com/cartpath/referenceframe"
	"go.viam.com/cartpath/spatialmath"
	"go.viam.com/cartpath/utils"
)

// ThreadsEnvVar overrides the number of parallel solvers used by CreateCombinedIKSolver.
const ThreadsEnvVar = "CARTPATH_IK_THREADS"

// default values for inverse kinematics.
const (
	defaultMaxIterations        = 200
	defaultPositionTolerance    = 1e-5
	defaultOrientationTolerance = 1e-4
	defaultDamping              = 1e-3
	defaultRestarts             = 4

	// half width of the window random restarts are drawn from when a bound is infinite
	unboundedRange = math.Pi
)

var defaultNumThreads = max(1, runtime.NumCPU()/2)

// ErrNoSolution is returned when a solver could not reach the goal within its iteration budget.
var ErrNoSolution = errors.New("kinematics could not solve for position")

var errBadBounds = errors.New("cannot solve for a frame with no degrees of freedom")

// Solver finds inputs for a frame that place it at a goal pose, starting from a seed.
type Solver interface {
	// Solve returns inputs whose transform is within the tolerances of opts of the goal.
	Solve(
		ctx context.Context,
		frame referenceframe.Frame,
		goal spatialmath.Pose,
		seed []referenceframe.Input,
		opts *Options,
	) ([]referenceframe.Input, error)
}

// Options configures a single IK solve.
type Options struct {
	// Max iterations of a single descent from one starting point.
	MaxIterations int `json:"max_iterations"`

	// A solution is accepted when the position error is below PositionTolerance (meters) and the orientation
	// error below OrientationTolerance (radians).
	PositionTolerance    float64 `json:"position_tolerance"`
	OrientationTolerance float64 `json:"orientation_tolerance"`

	// Damping of the least squares step.
	Damping float64 `json:"damping"`

	// ConsistencyLimits, when set, holds one value per input: solutions must stay within that distance of the seed.
	ConsistencyLimits []float64 `json:"-"`
}

// NewDefaultOptions returns the options used when none are given.
func NewDefaultOptions() *Options {
	return &Options{
		MaxIterations:        defaultMaxIterations,
		PositionTolerance:    defaultPositionTolerance,
		OrientationTolerance: defaultOrientationTolerance,
		Damping:              defaultDamping,
	}
}

// WithConsistencyLimits returns a copy of the options with the given consistency limits.
func (opts *Options) WithConsistencyLimits(limits []float64) *Options {
	out := *opts
	out.ConsistencyLimits = limits
	return &out
}

// within reports whether pose is within the tolerances of goal.
func (opts *Options) within(goal, pose spatialmath.Pose) bool {
	return spatialmath.TranslationDistance(goal, pose) <= opts.PositionTolerance &&
		spatialmath.AngularDistance(goal.Orientation(), pose.Orientation()) <= opts.OrientationTolerance
}

func (opts *Options) orDefault() *Options {
	if opts == nil {
		return NewDefaultOptions()
	}
	return opts
}

// boundedFrame is implemented by frames that know how to wrap and clamp their own inputs.
type boundedFrame interface {
	EnforceBounds([]referenceframe.Input) []referenceframe.Input
}

func enforceBounds(frame referenceframe.Frame, inputs []referenceframe.Input) []referenceframe.Input {
	if bf, ok := frame.(boundedFrame); ok {
		return bf.EnforceBounds(inputs)
	}
	return inputs
}

// searchBounds returns the box solutions are searched in: the frame limits, narrowed around the seed by the
// consistency limits when those are set.
func searchBounds(frame referenceframe.Frame, seed []referenceframe.Input, opts *Options) ([]float64, []float64, error) {
	dof := frame.DoF()
	if len(dof) == 0 {
		return nil, nil, errBadBounds
	}
	if len(seed) != len(dof) {
		return nil, nil, referenceframe.NewIncorrectDoFError(len(seed), len(dof))
	}
	if opts.ConsistencyLimits != nil && len(opts.ConsistencyLimits) != len(dof) {
		return nil, nil, errors.Errorf("got %d consistency limits for a frame with %d inputs", len(opts.ConsistencyLimits), len(dof))
	}
	lower, upper := limitsToArrays(dof)
	for i, lim := range opts.ConsistencyLimits {
		lower[i] = math.Max(lower[i], seed[i].Value-lim)
		upper[i] = math.Min(upper[i], seed[i].Value+lim)
		if lower[i] > upper[i] {
			return nil, nil, errors.Wrapf(ErrNoSolution, "input %d has no valid values within %.4f of the seed", i, lim)
		}
	}
	return lower, upper, nil
}

func limitsToArrays(limits []referenceframe.Limit) ([]float64, []float64) {
	var min, max []float64
	for _, limit := range limits {
		min = append(min, limit.Min)
		max = append(max, limit.Max)
	}
	return min, max
}

func clampToBounds(x, lower, upper []float64) {
	for i := range x {
		x[i] = utils.Clamp(x[i], lower[i], upper[i])
	}
}
