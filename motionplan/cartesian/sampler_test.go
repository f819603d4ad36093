package cartesian

import (
	"context"
	"errors"
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"go.viam.com/test"

	"go.viam.com/cartpath/logging"
	"go.viam.com/cartpath/motionplan/ik"
	"go.viam.com/cartpath/referenceframe"
	"go.viam.com/cartpath/spatialmath"
	"go.viam.com/cartpath/utils"
)

const toolLink = "tool"

func gantryRequest(t *testing.T) *PathRequest {
	t.Helper()
	model, err := referenceframe.ParseModelJSONFile(utils.ResolveFile("referenceframe/testdata/gantry6.json"), "")
	test.That(t, err, test.ShouldBeNil)
	group, err := model.Group("gantry")
	test.That(t, err, test.ShouldBeNil)
	return &PathRequest{Start: referenceframe.NewDefaultState(model), Group: group, Link: toolLink}
}

func jacobianPlanner(t *testing.T) *Planner {
	t.Helper()
	logger := logging.NewTestLogger(t)
	planner, err := NewPlanner(logger, ik.CreateJacobianIKSolver(logger, 0, true, 1))
	test.That(t, err, test.ShouldBeNil)
	return planner
}

func stepOptions(translation, rotation float64) *PathOptions {
	opts := NewBasicPathOptions()
	opts.MaxStep = MaxEEFStep{Translation: translation, Rotation: rotation}
	return opts
}

// scriptedSolver nudges the first input of the seed on every call. It fails on call failAt and jumps the first
// input by jump on call jumpAt, counting calls from one.
type scriptedSolver struct {
	failAt  int
	failErr error
	jumpAt  int
	jump    float64

	calls []scriptedCall
}

type scriptedCall struct {
	goal spatialmath.Pose
	seed []referenceframe.Input
	opts *ik.Options
}

func (s *scriptedSolver) Solve(
	ctx context.Context,
	frame referenceframe.Frame,
	goal spatialmath.Pose,
	seed []referenceframe.Input,
	opts *ik.Options,
) ([]referenceframe.Input, error) {
	s.calls = append(s.calls, scriptedCall{goal: goal, seed: seed, opts: opts})
	n := len(s.calls)
	if n == s.failAt {
		if s.failErr != nil {
			return nil, s.failErr
		}
		return nil, ik.ErrNoSolution
	}
	out := append([]referenceframe.Input{}, seed...)
	out[0].Value += 0.01
	if n == s.jumpAt {
		out[0].Value += s.jump
	}
	return out, nil
}

func scriptedPlanner(t *testing.T, solver *scriptedSolver) (*Planner, func() int) {
	t.Helper()
	logger, logs := logging.NewObservedTestLogger(t)
	planner, err := NewPlanner(logger, solver)
	test.That(t, err, test.ShouldBeNil)
	return planner, func() int { return logs.FilterMessage("cartesian path stopped early").Len() }
}

func linkPose(t *testing.T, state *referenceframe.State) spatialmath.Pose {
	t.Helper()
	pose, err := state.LinkPose(toolLink)
	test.That(t, err, test.ShouldBeNil)
	return pose
}

func TestTranslationGlobal(t *testing.T) {
	planner := jacobianPlanner(t)
	req := gantryRequest(t)
	req.Translation = &r3.Vector{X: 0.1}

	result, err := planner.ComputeCartesianPath(context.Background(), req, stepOptions(0.01, 0.05))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.StopReason, test.ShouldEqual, StopComplete)
	test.That(t, result.Steps, test.ShouldEqual, 10)
	test.That(t, len(result.Trajectory), test.ShouldEqual, 11)
	test.That(t, len(result.Targets), test.ShouldEqual, 11)
	test.That(t, result.Fraction, test.ShouldEqual, 1.)
	test.That(t, result.Trajectory[0], test.ShouldEqual, req.Start)

	start := linkPose(t, req.Start)
	end := linkPose(t, result.Trajectory[10])
	test.That(t, spatialmath.PoseAlmostEqualEps(end, spatialmath.NewPose(start.Point().Add(r3.Vector{X: 0.1}), start.Orientation()), 1e-4),
		test.ShouldBeTrue)

	// every waypoint sits on its target
	for i, wp := range result.Trajectory {
		test.That(t, spatialmath.PoseAlmostEqualEps(linkPose(t, wp), result.Targets[i], 1e-4), test.ShouldBeTrue)
	}
}

func TestTranslationLocal(t *testing.T) {
	planner := jacobianPlanner(t)
	req := gantryRequest(t)
	inputs := req.Start.Inputs()
	inputs[3] = referenceframe.Input{Value: math.Pi / 2}
	start, err := referenceframe.NewState(req.Start.Model(), inputs)
	test.That(t, err, test.ShouldBeNil)
	req.Start = start
	req.Translation = &r3.Vector{X: 0.05}

	opts := stepOptions(0.01, 0.05)
	opts.GlobalReference = false
	result, err := planner.ComputeCartesianPath(context.Background(), req, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.StopReason, test.ShouldEqual, StopComplete)
	test.That(t, len(result.Trajectory), test.ShouldEqual, result.Steps+1)

	// the tool is yawed a quarter turn, so its x axis is the world y axis
	startPose := linkPose(t, start)
	end := linkPose(t, result.Trajectory[len(result.Trajectory)-1])
	test.That(t, spatialmath.R3VectorAlmostEqual(end.Point(), startPose.Point().Add(r3.Vector{Y: 0.05}), 1e-4), test.ShouldBeTrue)
}

func TestPoseTarget(t *testing.T) {
	planner := jacobianPlanner(t)
	req := gantryRequest(t)
	start := linkPose(t, req.Start)
	req.Target = spatialmath.NewPoseFromAxisAngle(start.Point().Add(r3.Vector{X: 0.05, Y: 0.05, Z: -0.05}), r3.Vector{Z: 1}, 0.3)

	result, err := planner.ComputeCartesianPath(context.Background(), req, stepOptions(0.02, 0.05))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.StopReason, test.ShouldEqual, StopComplete)
	test.That(t, result.Fraction, test.ShouldEqual, 1.)
	// rotation needs more steps than translation
	test.That(t, result.Steps, test.ShouldEqual, 6)
	test.That(t, len(result.Trajectory), test.ShouldEqual, 7)
	end := linkPose(t, result.Trajectory[6])
	test.That(t, spatialmath.PoseAlmostEqualEps(end, req.Target, 1e-4), test.ShouldBeTrue)

	// the same target relative to the start pose
	req.Target = spatialmath.PoseBetween(start, req.Target)
	opts := stepOptions(0.02, 0.05)
	opts.GlobalReference = false
	result, err = planner.ComputeCartesianPath(context.Background(), req, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Fraction, test.ShouldEqual, 1.)
	end = linkPose(t, result.Trajectory[len(result.Trajectory)-1])
	test.That(t, spatialmath.PoseAlmostEqualEps(end, spatialmath.Compose(start, req.Target), 1e-4), test.ShouldBeTrue)
}

func TestOffsetFrame(t *testing.T) {
	planner := jacobianPlanner(t)
	req := gantryRequest(t)
	req.Translation = &r3.Vector{Y: 0.04}

	opts := stepOptions(0.01, 0.05)
	opts.Offset = spatialmath.NewPoseFromPoint(r3.Vector{Z: 0.05})
	result, err := planner.ComputeCartesianPath(context.Background(), req, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.StopReason, test.ShouldEqual, StopComplete)

	start := linkPose(t, req.Start)
	test.That(t, spatialmath.R3VectorAlmostEqual(result.Targets[0].Point(), start.Point().Add(r3.Vector{Z: 0.05}), 1e-9), test.ShouldBeTrue)
	for i, wp := range result.Trajectory {
		controlled := spatialmath.Compose(linkPose(t, wp), opts.Offset)
		test.That(t, spatialmath.PoseAlmostEqualEps(controlled, result.Targets[i], 1e-4), test.ShouldBeTrue)
	}
	last := result.Targets[len(result.Targets)-1]
	test.That(t, spatialmath.R3VectorAlmostEqual(last.Point(), start.Point().Add(r3.Vector{Y: 0.04, Z: 0.05}), 1e-9), test.ShouldBeTrue)
}

func TestRotatedOffsetFrame(t *testing.T) {
	planner := jacobianPlanner(t)
	req := gantryRequest(t)
	// turn about the z axis of the offset frame, which is the world -y axis through the controlled point
	req.Target = spatialmath.NewPoseFromAxisAngle(r3.Vector{}, r3.Vector{Z: 1}, 0.3)

	opts := stepOptions(0.01, 0.05)
	opts.GlobalReference = false
	opts.Offset = spatialmath.NewPoseFromAxisAngle(r3.Vector{Z: 0.05}, r3.Vector{X: 1}, math.Pi/2)
	result, err := planner.ComputeCartesianPath(context.Background(), req, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.StopReason, test.ShouldEqual, StopComplete)
	test.That(t, result.Steps, test.ShouldEqual, 6)
	test.That(t, result.Fraction, test.ShouldEqual, 1.)

	controlledStart := spatialmath.Compose(linkPose(t, req.Start), opts.Offset)
	for i, wp := range result.Trajectory {
		controlled := spatialmath.Compose(linkPose(t, wp), opts.Offset)
		test.That(t, spatialmath.PoseAlmostEqualEps(controlled, result.Targets[i], 1e-4), test.ShouldBeTrue)
		// the controlled point stays put while the link swings around it
		test.That(t, spatialmath.R3VectorAlmostEqual(controlled.Point(), controlledStart.Point(), 1e-4), test.ShouldBeTrue)
	}
	end := spatialmath.Compose(linkPose(t, result.Trajectory[len(result.Trajectory)-1]), opts.Offset)
	test.That(t, spatialmath.PoseAlmostEqualEps(end, spatialmath.Compose(controlledStart, req.Target), 1e-4), test.ShouldBeTrue)
	test.That(t, spatialmath.R3VectorAlmostEqual(linkPose(t, result.Trajectory[0]).Point(),
		linkPose(t, result.Trajectory[6]).Point(), 1e-3), test.ShouldBeFalse)
}

func TestStartOutOfBoundsOutsideGroup(t *testing.T) {
	planner := jacobianPlanner(t)
	req := gantryRequest(t)
	xyz, err := req.Start.Model().Group("xyz")
	test.That(t, err, test.ShouldBeNil)
	req.Group = xyz
	inputs := req.Start.Inputs()
	// pitch is limited to 80 degrees
	inputs[4] = referenceframe.Input{Value: 1.4}
	req.Start, err = referenceframe.NewState(req.Start.Model(), inputs)
	test.That(t, err, test.ShouldBeNil)
	_, err = req.Start.LinkPose(toolLink)
	test.That(t, referenceframe.IsOOBError(err), test.ShouldBeTrue)

	req.Translation = &r3.Vector{X: 0.05}
	result, err := planner.ComputeCartesianPath(context.Background(), req, stepOptions(0.01, 0.05))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.StopReason, test.ShouldEqual, StopComplete)
	test.That(t, len(result.Trajectory), test.ShouldEqual, 6)
	test.That(t, result.Fraction, test.ShouldEqual, 1.)

	startPose, _ := req.Start.LinkPose(toolLink)
	endPose, err := result.Trajectory[5].LinkPose(toolLink)
	test.That(t, referenceframe.IsOOBError(err), test.ShouldBeTrue)
	test.That(t, spatialmath.R3VectorAlmostEqual(endPose.Point(), startPose.Point().Add(r3.Vector{X: 0.05}), 1e-4), test.ShouldBeTrue)
	final := result.Trajectory[5].Inputs()
	test.That(t, final[4].Value, test.ShouldEqual, 1.4)
}

func TestNonFiniteMotion(t *testing.T) {
	solver := &scriptedSolver{}
	planner, _ := scriptedPlanner(t, solver)
	ctx := context.Background()
	opts := stepOptions(0.01, 0.05)

	req := gantryRequest(t)
	req.Translation = &r3.Vector{X: math.NaN()}
	_, err := planner.ComputeCartesianPath(ctx, req, opts)
	test.That(t, errors.Is(err, ErrNonFiniteMotion), test.ShouldBeTrue)

	req = gantryRequest(t)
	req.Target = spatialmath.NewPoseFromPoint(r3.Vector{X: math.Inf(1)})
	_, err = planner.ComputeCartesianPath(ctx, req, opts)
	test.That(t, errors.Is(err, ErrNonFiniteMotion), test.ShouldBeTrue)

	req = gantryRequest(t)
	req.Waypoints = []spatialmath.Pose{
		spatialmath.NewPoseFromPoint(r3.Vector{X: 0.1}),
		spatialmath.NewPoseFromPoint(r3.Vector{Y: math.Inf(-1)}),
	}
	_, err = planner.ComputeCartesianPathWaypoints(ctx, req, opts)
	test.That(t, errors.Is(err, ErrNonFiniteMotion), test.ShouldBeTrue)
	test.That(t, err.Error(), test.ShouldContainSubstring, "waypoint 1")
	test.That(t, len(solver.calls), test.ShouldEqual, 0)
}

func TestRelativeThresholdMinSteps(t *testing.T) {
	solver := &scriptedSolver{}
	planner, _ := scriptedPlanner(t, solver)
	req := gantryRequest(t)
	req.Translation = &r3.Vector{X: 0.005}

	result, err := planner.ComputeCartesianPath(context.Background(), req, stepOptions(0.01, 0.05))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Steps, test.ShouldEqual, 1)

	opts := stepOptions(0.01, 0.05)
	opts.JumpThreshold = NewRelativeJumpThreshold(5)
	result, err = planner.ComputeCartesianPath(context.Background(), req, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.Steps, test.ShouldEqual, MinStepsForJumpThreshold)
	test.That(t, len(result.Trajectory), test.ShouldEqual, MinStepsForJumpThreshold+1)
	test.That(t, result.Fraction, test.ShouldEqual, 1.)
}

func TestSeedsFollowAcceptedWaypoints(t *testing.T) {
	solver := &scriptedSolver{}
	planner, _ := scriptedPlanner(t, solver)
	req := gantryRequest(t)
	req.Translation = &r3.Vector{X: 0.05}

	result, err := planner.ComputeCartesianPath(context.Background(), req, stepOptions(0.01, 0.05))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(solver.calls), test.ShouldEqual, 5)
	for i, call := range solver.calls {
		seed, err := result.Trajectory[i].GroupInputs(req.Group)
		test.That(t, err, test.ShouldBeNil)
		test.That(t, call.seed, test.ShouldResemble, seed)
		test.That(t, call.opts.ConsistencyLimits, test.ShouldBeNil)
		test.That(t, spatialmath.PoseAlmostEqual(call.goal, result.Targets[i+1]), test.ShouldBeTrue)
	}
}

func TestIKFailureStopsSampling(t *testing.T) {
	t.Run("first step", func(t *testing.T) {
		solver := &scriptedSolver{failAt: 1}
		planner, stoppedEarly := scriptedPlanner(t, solver)
		req := gantryRequest(t)
		req.Translation = &r3.Vector{X: 0.1}

		result, err := planner.ComputeCartesianPath(context.Background(), req, stepOptions(0.01, 0.05))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, result.StopReason, test.ShouldEqual, StopIKFailed)
		test.That(t, len(result.Trajectory), test.ShouldEqual, 1)
		test.That(t, result.Fraction, test.ShouldEqual, 0.)
		test.That(t, len(solver.calls), test.ShouldEqual, 1)
		test.That(t, stoppedEarly(), test.ShouldEqual, 1)
	})

	t.Run("translation", func(t *testing.T) {
		solver := &scriptedSolver{failAt: 4}
		planner, _ := scriptedPlanner(t, solver)
		req := gantryRequest(t)
		req.Translation = &r3.Vector{X: 0.1}

		result, err := planner.ComputeCartesianPath(context.Background(), req, stepOptions(0.01, 0.05))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, result.StopReason, test.ShouldEqual, StopIKFailed)
		test.That(t, len(result.Trajectory), test.ShouldEqual, 4)
		test.That(t, result.Fraction, test.ShouldAlmostEqual, 0.3)
		test.That(t, len(solver.calls), test.ShouldEqual, 4)
	})

	t.Run("pose target", func(t *testing.T) {
		solver := &scriptedSolver{failAt: 3}
		planner, _ := scriptedPlanner(t, solver)
		req := gantryRequest(t)
		req.Target = spatialmath.NewPoseFromPoint(linkPose(t, req.Start).Point().Add(r3.Vector{Z: -0.05}))

		result, err := planner.ComputeCartesianPath(context.Background(), req, stepOptions(0.01, 0.05))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, result.Steps, test.ShouldEqual, 5)
		test.That(t, len(result.Trajectory), test.ShouldEqual, 3)
		test.That(t, result.Fraction, test.ShouldAlmostEqual, 0.4)
	})

	t.Run("solver error", func(t *testing.T) {
		solver := &scriptedSolver{failAt: 2, failErr: errors.New("broken frame")}
		planner, _ := scriptedPlanner(t, solver)
		req := gantryRequest(t)
		req.Translation = &r3.Vector{X: 0.1}

		_, err := planner.ComputeCartesianPath(context.Background(), req, stepOptions(0.01, 0.05))
		test.That(t, err, test.ShouldNotBeNil)
		test.That(t, err.Error(), test.ShouldContainSubstring, "broken frame")
	})
}

func TestValidityRejects(t *testing.T) {
	solver := &scriptedSolver{}
	planner, _ := scriptedPlanner(t, solver)
	req := gantryRequest(t)
	req.Translation = &r3.Vector{X: 0.1}

	opts := stepOptions(0.01, 0.05)
	checked := 0
	opts.Validity = func(state *referenceframe.State) bool {
		checked++
		return checked < 3
	}
	result, err := planner.ComputeCartesianPath(context.Background(), req, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.StopReason, test.ShouldEqual, StopInvalid)
	test.That(t, len(result.Trajectory), test.ShouldEqual, 3)
	test.That(t, result.Fraction, test.ShouldAlmostEqual, 0.2)
	test.That(t, len(solver.calls), test.ShouldEqual, 3)
}

func TestJumpTruncatesSampledPath(t *testing.T) {
	solver := &scriptedSolver{jumpAt: 5, jump: 0.6}
	planner, stoppedEarly := scriptedPlanner(t, solver)
	req := gantryRequest(t)
	req.Translation = &r3.Vector{X: 0.1}

	opts := stepOptions(0.01, 0.05)
	opts.JumpThreshold = NewAbsoluteJumpThreshold(0.3, 0.5)
	result, err := planner.ComputeCartesianPath(context.Background(), req, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.StopReason, test.ShouldEqual, StopJointSpaceJump)
	test.That(t, len(result.Trajectory), test.ShouldEqual, 5)
	test.That(t, len(result.Targets), test.ShouldEqual, 5)
	test.That(t, result.Fraction, test.ShouldAlmostEqual, 0.4)
	test.That(t, stoppedEarly(), test.ShouldEqual, 1)

	// sampling itself ran to the end
	test.That(t, len(solver.calls), test.ShouldEqual, 10)
	test.That(t, solver.calls[0].opts.ConsistencyLimits, test.ShouldResemble, []float64{0.5, 0.5, 0.5, 0.3, 0.3, 0.3})
}

func TestJumpAfterIKFailure(t *testing.T) {
	solver := &scriptedSolver{jumpAt: 2, jump: 0.6, failAt: 6}
	planner, _ := scriptedPlanner(t, solver)
	req := gantryRequest(t)
	req.Translation = &r3.Vector{X: 0.1}

	opts := stepOptions(0.01, 0.05)
	opts.JumpThreshold = NewAbsoluteJumpThreshold(0, 0.5)
	result, err := planner.ComputeCartesianPath(context.Background(), req, opts)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, result.StopReason, test.ShouldEqual, StopJointSpaceJump)
	test.That(t, len(result.Trajectory), test.ShouldEqual, 2)
	test.That(t, result.Fraction, test.ShouldAlmostEqual, 0.1)
	test.That(t, len(solver.calls), test.ShouldEqual, 6)
}

func TestWaypointsPath(t *testing.T) {
	req := gantryRequest(t)
	start := linkPose(t, req.Start)
	first := spatialmath.NewPose(start.Point().Add(r3.Vector{X: 0.05}), start.Orientation())
	second := spatialmath.NewPose(start.Point().Add(r3.Vector{X: 0.05, Y: 0.05}), start.Orientation())
	req.Waypoints = []spatialmath.Pose{first, second}

	t.Run("complete", func(t *testing.T) {
		result, err := jacobianPlanner(t).ComputeCartesianPathWaypoints(context.Background(), req, stepOptions(0.01, 0.05))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, result.StopReason, test.ShouldEqual, StopComplete)
		test.That(t, result.Steps, test.ShouldEqual, 10)
		test.That(t, len(result.Trajectory), test.ShouldEqual, 11)
		test.That(t, result.Fraction, test.ShouldEqual, 1.)
		test.That(t, spatialmath.PoseAlmostEqualEps(linkPose(t, result.Trajectory[5]), first, 1e-4), test.ShouldBeTrue)
		test.That(t, spatialmath.PoseAlmostEqualEps(linkPose(t, result.Trajectory[10]), second, 1e-4), test.ShouldBeTrue)
	})

	t.Run("cut in the second segment", func(t *testing.T) {
		solver := &scriptedSolver{failAt: 8}
		planner, _ := scriptedPlanner(t, solver)
		result, err := planner.ComputeCartesianPathWaypoints(context.Background(), req, stepOptions(0.01, 0.05))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, result.StopReason, test.ShouldEqual, StopIKFailed)
		test.That(t, len(result.Trajectory), test.ShouldEqual, 8)
		test.That(t, result.Fraction, test.ShouldAlmostEqual, 0.7)
		// the second segment starts from the end of the first
		test.That(t, spatialmath.PoseAlmostEqual(solver.calls[5].goal,
			spatialmath.Interpolate(first, second, 0.2)), test.ShouldBeTrue)
	})

	t.Run("cut at the end of the first segment", func(t *testing.T) {
		solver := &scriptedSolver{failAt: 6}
		planner, _ := scriptedPlanner(t, solver)
		result, err := planner.ComputeCartesianPathWaypoints(context.Background(), req, stepOptions(0.01, 0.05))
		test.That(t, err, test.ShouldBeNil)
		test.That(t, len(result.Trajectory), test.ShouldEqual, 6)
		test.That(t, result.Fraction, test.ShouldAlmostEqual, 0.5)
	})
}

func TestPathRequestErrors(t *testing.T) {
	planner, _ := scriptedPlanner(t, &scriptedSolver{})
	ctx := context.Background()
	opts := stepOptions(0.01, 0.05)

	_, err := planner.ComputeCartesianPath(ctx, &PathRequest{}, opts)
	test.That(t, err, test.ShouldBeError, ErrNilStart)

	req := gantryRequest(t)
	req.Group = nil
	req.Translation = &r3.Vector{X: 0.1}
	_, err = planner.ComputeCartesianPath(ctx, req, opts)
	test.That(t, err, test.ShouldBeError, ErrNilJointGroup)

	req = gantryRequest(t)
	_, err = planner.ComputeCartesianPath(ctx, req, opts)
	test.That(t, err, test.ShouldBeError, ErrNoMotion)
	req.Translation = &r3.Vector{X: 0.1}
	req.Target = spatialmath.NewZeroPose()
	_, err = planner.ComputeCartesianPath(ctx, req, opts)
	test.That(t, err, test.ShouldBeError, ErrNoMotion)

	req = gantryRequest(t)
	_, err = planner.ComputeCartesianPathWaypoints(ctx, req, opts)
	test.That(t, err, test.ShouldBeError, ErrNoWaypoints)

	// translations and targets belong to ComputeCartesianPath, waypoints to ComputeCartesianPathWaypoints
	req.Waypoints = []spatialmath.Pose{spatialmath.NewPoseFromPoint(r3.Vector{X: 0.1})}
	req.Translation = &r3.Vector{X: 0.1}
	_, err = planner.ComputeCartesianPath(ctx, req, opts)
	test.That(t, err, test.ShouldBeError, ErrNoMotion)
	_, err = planner.ComputeCartesianPathWaypoints(ctx, req, opts)
	test.That(t, err, test.ShouldBeError, ErrNoMotion)

	req = gantryRequest(t)
	req.Translation = &r3.Vector{X: 0.1}
	req.Link = "nope"
	_, err = planner.ComputeCartesianPath(ctx, req, opts)
	test.That(t, err, test.ShouldNotBeNil)

	req = gantryRequest(t)
	req.Translation = &r3.Vector{X: 0.1}
	req.Group = twoJointGroup(t)
	_, err = planner.ComputeCartesianPath(ctx, req, opts)
	test.That(t, errors.Is(err, ErrWaypointModelMismatch), test.ShouldBeTrue)

	req = gantryRequest(t)
	req.Translation = &r3.Vector{X: 0.1}
	_, err = planner.ComputeCartesianPath(ctx, req, stepOptions(0, -1))
	test.That(t, err, test.ShouldBeError, NewInvalidStepError(MaxEEFStep{0, -1}))

	bad := stepOptions(0.01, 0.05)
	bad.JumpThreshold = JumpThreshold{Factor: -2}
	_, err = planner.ComputeCartesianPath(ctx, req, bad)
	test.That(t, err, test.ShouldNotBeNil)
}

func TestCancelledPath(t *testing.T) {
	planner := jacobianPlanner(t)
	req := gantryRequest(t)
	req.Translation = &r3.Vector{X: 0.1}

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := planner.ComputeCartesianPath(ctx, req, nil)
	test.That(t, errors.Is(err, context.Canceled), test.ShouldBeTrue)
}

func TestTrajectoryString(t *testing.T) {
	group := twoJointGroup(t)
	traj := jumpFixture(t, group)
	out := traj.String()
	test.That(t, out, test.ShouldContainSubstring, "A-B-JOINT")
	test.That(t, out, test.ShouldContainSubstring, "1.0200")
	test.That(t, Trajectory{}.String(), test.ShouldEqual, "")
	test.That(t, GroupVariableNames(group), test.ShouldResemble, []string{"a-b-joint", "b-c-joint"})

	inputs, err := traj.GroupInputs(group)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, referenceframe.InputsToFloats(inputs[4]), test.ShouldResemble, []float64{1.02, 0.01})

	poses, err := traj.LinkPoses("c")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(poses), test.ShouldEqual, 7)
}
