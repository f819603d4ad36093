package ik

import (
	"context"
	"math"
	"sync"

	"github.com/pkg/errors"
	"go.uber.org/multierr"
	goutils "go.viam.com/utils"

	"go.viam.com/cartpath/logging"
	"go.viam.com/cartpath/referenceframe"
	"go.viam.com/cartpath/spatialmath"
	"go.viam.com/cartpath/utils"
)

// CombinedIK defines the fields necessary to run a combined solver.
type CombinedIK struct {
	solvers []Solver
	logger  logging.Logger
}

// CreateCombinedIKSolver creates a combined parallel IK solver with nThreads child solvers. The first child descends
// from the seed; on cgo builds the second is an nlopt solver, also starting from the seed; the rest start
// from different random points. When asked to solve, all children are run in parallel and, of the solutions found,
// the one closest to the seed is returned. If nThreads is less than one, CARTPATH_IK_THREADS or half the CPUs is used.
func CreateCombinedIKSolver(logger logging.Logger, nThreads int) (*CombinedIK, error) {
	if nThreads < 1 {
		nThreads = utils.GetenvInt(ThreadsEnvVar, defaultNumThreads)
	}
	if nThreads < 1 {
		return nil, errors.Errorf("%s must be positive, got %d", ThreadsEnvVar, nThreads)
	}
	ik := &CombinedIK{logger: logger}

	logger.Debugf("CreateCombinedIKSolver nThreads: %d", nThreads)
	ik.solvers = append(ik.solvers, CreateJacobianIKSolver(logger, defaultRestarts, true, 0))
	for i := 1; i < nThreads; i++ {
		if i == 1 {
			nloptSolver, err := CreateNloptIKSolver(logger, defaultRestarts, true, int64(i))
			if err == nil {
				ik.solvers = append(ik.solvers, nloptSolver)
				continue
			}
			logger.Debugw("falling back to jacobian solver", "error", err)
		}
		ik.solvers = append(ik.solvers, CreateJacobianIKSolver(logger, defaultRestarts, false, int64(i)))
	}
	return ik, nil
}

// Solve will initiate solving for the given position in all child solvers, seeding with the specified initial joint
// positions. If unable to solve, the returned error will be non-nil.
func (ik *CombinedIK) Solve(
	ctx context.Context,
	frame referenceframe.Frame,
	goal spatialmath.Pose,
	seed []referenceframe.Input,
	opts *Options,
) ([]referenceframe.Input, error) {
	var activeSolvers sync.WaitGroup
	defer activeSolvers.Wait()

	var solveErrors error
	solutions := make([][]referenceframe.Input, len(ik.solvers))
	var solveResultLock sync.Mutex

	for idx, solver := range ik.solvers {
		activeSolvers.Add(1)
		goutils.PanicCapturingGo(func() {
			defer activeSolvers.Done()

			solution, err := solver.Solve(ctx, frame, goal, seed, opts)

			solveResultLock.Lock()
			defer solveResultLock.Unlock()
			if err != nil {
				if !errors.Is(err, ErrNoSolution) {
					solveErrors = multierr.Combine(solveErrors, err)
				}
				return
			}
			solutions[idx] = solution
		})
	}

	activeSolvers.Wait()

	closest := NewSeedDistanceMetric(seed)
	var best []referenceframe.Input
	bestScore := math.Inf(1)
	for _, solution := range solutions {
		if solution == nil {
			continue
		}
		if score := closest(&State{Configuration: solution, Frame: frame}); score < bestScore {
			best, bestScore = solution, score
		}
	}
	if best == nil {
		if solveErrors != nil {
			return nil, solveErrors
		}
		return nil, ErrNoSolution
	}
	return best, nil
}

// Len returns the number of child solvers.
func (ik *CombinedIK) Len() int {
	return len(ik.solvers)
}
