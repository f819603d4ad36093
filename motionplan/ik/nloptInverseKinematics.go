//go:build !windows && !no_cgo

package ik

import (
	"context"
	"math/rand"
	"sync"

	"github.com/go-nlopt/nlopt"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"go.viam.com/utils"

	"go.viam.com/cartpath/logging"
	"go.viam.com/cartpath/referenceframe"
	"go.viam.com/cartpath/spatialmath"
)

const nloptStepsPerIter = 4001

// NloptIK minimizes the squared norm pose metric with SLSQP, using a forward difference gradient.
type NloptIK struct {
	logger   logging.Logger
	restarts int
	fromSeed bool
	randSeed int64
}

type optimizeReturn struct {
	solution []float64
	err      error
}

// CreateNloptIKSolver creates an nlopt backed solver. If fromSeed is false every optimization, including the first,
// starts from a random point drawn with rseed.
func CreateNloptIKSolver(logger logging.Logger, restarts int, fromSeed bool, rseed int64) (*NloptIK, error) {
	return &NloptIK{
		logger:   logger,
		restarts: restarts,
		fromSeed: fromSeed,
		randSeed: rseed,
	}, nil
}

// Solve runs optimizations until one reaches the goal within the tolerances of opts or every restart is used up.
func (ik *NloptIK) Solve(
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
	randSeed := rand.New(rand.NewSource(ik.randSeed))
	solveMetric := NewSquaredNormMetric(goal)
	epsilon := opts.PositionTolerance * opts.PositionTolerance

	opt, err := nlopt.NewNLopt(nlopt.LD_SLSQP, uint(len(lower)))
	if err != nil {
		return nil, errors.Wrap(err, "nlopt creation error")
	}
	defer opt.Destroy()

	mInput := &State{Frame: frame}
	var transformErr error
	// x is our set of inputs
	// Gradient is, under the hood, a unsafe C structure that we are meant to mutate in place.
	nloptMinFunc := func(x, gradient []float64) float64 {
		eePos, err := transform(frame, x)
		if err != nil {
			transformErr = err
			ik.logger.Errorw("forcestop error", "error", opt.ForceStop())
			return 0
		}
		mInput.Position = eePos
		dist := solveMetric(mInput)

		for i := range gradient {
			xi := x[i]
			jump := jacobianStep
			if xi+jump > upper[i] {
				jump = -jump
			}
			x[i] += jump
			eePos, err := transform(frame, x)
			x[i] = xi
			if err != nil {
				transformErr = err
				ik.logger.Errorw("forcestop error", "error", opt.ForceStop())
				return 0
			}
			mInput.Position = eePos
			gradient[i] = (solveMetric(mInput) - dist) / jump
		}
		return dist
	}

	err = multierr.Combine(
		opt.SetFtolRel(epsilon),
		opt.SetFtolAbs(epsilon),
		opt.SetLowerBounds(lower),
		opt.SetStopVal(epsilon),
		opt.SetUpperBounds(upper),
		opt.SetXtolRel(epsilon),
		opt.SetMinObjective(nloptMinFunc),
		opt.SetMaxEval(nloptStepsPerIter),
	)
	if err != nil {
		return nil, err
	}

	var activeSolvers sync.WaitGroup
	defer activeSolvers.Wait()
	solveChan := make(chan *optimizeReturn, 1)

	var nloptErrs error
	for attempt := 0; attempt <= ik.restarts; attempt++ {
		start := referenceframe.InputsToFloats(seed)
		if attempt > 0 || !ik.fromSeed {
			start = randomPositions(randSeed, lower, upper)
		}
		clampToBounds(start, lower, upper)

		activeSolvers.Add(1)
		utils.PanicCapturingGo(func() {
			defer activeSolvers.Done()
			solutionRaw, _, nloptErr := opt.Optimize(start)
			solveChan <- &optimizeReturn{solutionRaw, nloptErr}
		})

		var solution *optimizeReturn
		select {
		case <-ctx.Done():
			err := opt.ForceStop()
			activeSolvers.Wait()
			return nil, multierr.Combine(err, ctx.Err())
		case solution = <-solveChan:
		}
		if transformErr != nil {
			return nil, transformErr
		}
		if solution.err != nil {
			// This just *happens* sometimes due to weirdnesses in nonlinear randomized problems.
			// Ignore it, something else will find a solution
			nloptErrs = multierr.Combine(nloptErrs, solution.err)
		}
		if solution.solution == nil {
			continue
		}
		pose, err := transform(frame, solution.solution)
		if err != nil {
			return nil, err
		}
		if opts.within(goal, pose) {
			ik.logger.Debugw("nlopt IK solved", "attempt", attempt)
			return enforceBounds(frame, referenceframe.FloatsToInputs(solution.solution)), nil
		}
	}
	return nil, multierr.Combine(ErrNoSolution, nloptErrs)
}
