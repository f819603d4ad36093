// Package cartesian samples straight line end effector motions into joint-space trajectories and guards trajectories
// against joint-space jumps.
package cartesian

import (
	"context"
	"fmt"
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/cartpath/logging"
	"go.viam.com/cartpath/motionplan/ik"
	"go.viam.com/cartpath/referenceframe"
	"go.viam.com/cartpath/spatialmath"
)

// StopReason tells why sampling ended where it did.
type StopReason int

// The reasons sampling can end.
const (
	// StopComplete means every step was sampled and kept.
	StopComplete StopReason = iota
	// StopIKFailed means IK found no configuration for a step.
	StopIKFailed
	// StopInvalid means the validity callback rejected the configuration of a step.
	StopInvalid
	// StopJointSpaceJump means the trajectory was cut at a joint-space jump.
	StopJointSpaceJump
)

func (r StopReason) String() string {
	switch r {
	case StopComplete:
		return "complete"
	case StopIKFailed:
		return "ik_failed"
	case StopInvalid:
		return "invalid"
	case StopJointSpaceJump:
		return "joint_space_jump"
	default:
		return fmt.Sprintf("StopReason(%d)", int(r))
	}
}

// MarshalText encodes the reason as its name.
func (r StopReason) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

// PathRequest describes a motion of a link of the model of Start.
type PathRequest struct {
	Start *referenceframe.State
	Group *referenceframe.JointGroup
	Link  string

	// ComputeCartesianPath moves the controlled point either by Translation, an open ended displacement in meters,
	// or to Target. Exactly one must be set.
	Translation *r3.Vector
	Target      spatialmath.Pose

	// ComputeCartesianPathWaypoints visits each of Waypoints in turn.
	Waypoints []spatialmath.Pose
}

// PathResult is the outcome of a cartesian path request.
type PathResult struct {
	Trajectory Trajectory

	// Targets holds, for every waypoint, the pose of the controlled point it was solved for. The first entry is
	// the start pose.
	Targets []spatialmath.Pose

	// Fraction of the requested motion covered by Trajectory.
	Fraction float64

	StopReason StopReason

	// Steps is the number of steps the motion was split into.
	Steps int
}

// Planner samples cartesian paths with an IK solver.
type Planner struct {
	logger logging.Logger
	solver ik.Solver
}

// NewPlanner returns a planner solving IK with solver. A nil solver is replaced by a combined solver sized by
// CARTPATH_IK_THREADS.
func NewPlanner(logger logging.Logger, solver ik.Solver) (*Planner, error) {
	if solver == nil {
		combined, err := ik.CreateCombinedIKSolver(logger.Sublogger("ik"), 0)
		if err != nil {
			return nil, err
		}
		solver = combined
	}
	return &Planner{logger: logger, solver: solver}, nil
}

// ComputeCartesianPath samples the straight line motion of req into waypoints, each solved by IK seeded with the
// waypoint before it. Sampling stops at the first step IK cannot solve or opts.Validity rejects, and the result is
// then cut at the first joint-space jump. For translations the fraction is the distance covered over the distance
// asked for; for targets it is the share of steps kept, 1 when the target is reached.
func (p *Planner) ComputeCartesianPath(ctx context.Context, req *PathRequest, opts *PathOptions) (*PathResult, error) {
	opts, err := opts.orDefault()
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if (req.Translation == nil) == (req.Target == nil) || len(req.Waypoints) > 0 {
		return nil, ErrNoMotion
	}

	s, err := p.newSampler(req, opts)
	if err != nil {
		return nil, err
	}

	var target spatialmath.Pose
	var requested float64
	if req.Translation != nil {
		dir := *req.Translation
		if !opts.GlobalReference {
			dir = spatialmath.RotatePoint(s.startPose, dir)
		}
		target = spatialmath.NewPose(s.startPose.Point().Add(dir), s.startPose.Orientation())
		requested = dir.Norm()
	} else {
		target = req.Target
		if !opts.GlobalReference {
			target = spatialmath.Compose(s.startPose, req.Target)
		}
	}

	steps, stop, err := s.segment(ctx, 0, s.startPose, target)
	if err != nil {
		return nil, err
	}
	result, err := s.finish(stop, steps, 1)
	if err != nil {
		return nil, err
	}
	if req.Translation != nil && result.StopReason != StopComplete {
		result.Fraction = translationFraction(result.Targets, requested)
	}
	p.logResult(result)
	return result, nil
}

// ComputeCartesianPathWaypoints samples the straight line motions from the start to each of req.Waypoints in turn,
// each segment starting where the previous one ended. Jump checks run once over the whole trajectory. The fraction
// is the number of segments completed, plus the share of steps kept in the segment that was cut, over the number of
// segments.
func (p *Planner) ComputeCartesianPathWaypoints(ctx context.Context, req *PathRequest, opts *PathOptions) (*PathResult, error) {
	opts, err := opts.orDefault()
	if err != nil {
		return nil, err
	}
	if err := req.validate(); err != nil {
		return nil, err
	}
	if len(req.Waypoints) == 0 {
		return nil, ErrNoWaypoints
	}
	if req.Translation != nil || req.Target != nil {
		return nil, ErrNoMotion
	}

	s, err := p.newSampler(req, opts)
	if err != nil {
		return nil, err
	}

	from := s.startPose
	totalSteps := 0
	stop := StopComplete
	for i, wp := range req.Waypoints {
		to := wp
		if !opts.GlobalReference {
			to = spatialmath.Compose(s.startPose, wp)
		}
		steps, segStop, err := s.segment(ctx, i, from, to)
		if err != nil {
			return nil, err
		}
		totalSteps += steps
		if segStop != StopComplete {
			stop = segStop
			break
		}
		from = to
	}

	result, err := s.finish(stop, totalSteps, len(req.Waypoints))
	if err != nil {
		return nil, err
	}
	p.logResult(result)
	return result, nil
}

func (p *Planner) logResult(result *PathResult) {
	if result.StopReason != StopComplete {
		p.logger.Warnw("cartesian path stopped early",
			"reason", result.StopReason.String(),
			"waypoints", len(result.Trajectory),
			"steps", result.Steps,
			"fraction", result.Fraction,
		)
		return
	}
	p.logger.Infow("cartesian path complete", "waypoints", len(result.Trajectory), "fraction", result.Fraction)
}

func (req *PathRequest) validate() error {
	if req == nil || req.Start == nil {
		return ErrNilStart
	}
	if req.Group == nil {
		return ErrNilJointGroup
	}
	if req.Start.Model() != req.Group.Model() {
		return newWaypointModelMismatchError(0)
	}
	if req.Translation != nil && !finiteVector(*req.Translation) {
		return errors.Wrap(ErrNonFiniteMotion, "translation")
	}
	if req.Target != nil && !finitePose(req.Target) {
		return errors.Wrap(ErrNonFiniteMotion, "target")
	}
	for i, wp := range req.Waypoints {
		if wp == nil || !finitePose(wp) {
			return errors.Wrapf(ErrNonFiniteMotion, "waypoint %d", i)
		}
	}
	return nil
}

func finite(values ...float64) bool {
	for _, v := range values {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return false
		}
	}
	return true
}

func finiteVector(v r3.Vector) bool {
	return finite(v.X, v.Y, v.Z)
}

func finitePose(p spatialmath.Pose) bool {
	q := p.Orientation().Quaternion()
	return finiteVector(p.Point()) && finite(q.Real, q.Imag, q.Jmag, q.Kmag)
}

// sampler holds the state of a single request while its segments are sampled.
type sampler struct {
	*Planner
	req       *PathRequest
	opts      *PathOptions
	ikOpts    *ik.Options
	frame     referenceframe.Frame
	offsetInv spatialmath.Pose
	startPose spatialmath.Pose

	traj    Trajectory
	targets []spatialmath.Pose
	// progress records, for each waypoint, its segment and the share of that segment's steps done when it was reached.
	progress []segmentProgress
}

type segmentProgress struct {
	segment int
	done    float64
}

func (p *Planner) newSampler(req *PathRequest, opts *PathOptions) (*sampler, error) {
	// variables outside the group may start out of bounds; the planner never moves them
	linkPose, err := req.Start.LinkPose(req.Link)
	if err != nil && !referenceframe.IsOOBError(err) {
		return nil, errors.Wrap(err, "cannot compute start pose")
	}
	frame, err := referenceframe.NewGroupLinkFrame(req.Start, req.Group, req.Link)
	if err != nil {
		return nil, err
	}
	s := &sampler{
		Planner:   p,
		req:       req,
		opts:      opts,
		ikOpts:    opts.IK.WithConsistencyLimits(consistencyLimits(req.Group, opts.JumpThreshold)),
		frame:     frame,
		startPose: linkPose,
		traj:      Trajectory{req.Start},
		targets:   []spatialmath.Pose{linkPose},
		progress:  []segmentProgress{{}},
	}
	if opts.Offset != nil {
		s.startPose = spatialmath.Compose(linkPose, opts.Offset)
		s.offsetInv = spatialmath.PoseInverse(opts.Offset)
		s.targets[0] = s.startPose
	}
	return s, nil
}

// segment appends waypoints along the straight line from one pose of the controlled point to another, and returns
// how many steps the segment was split into and why it stopped.
func (s *sampler) segment(ctx context.Context, idx int, from, to spatialmath.Pose) (int, StopReason, error) {
	steps := s.opts.MaxStep.Steps(
		spatialmath.TranslationDistance(from, to),
		spatialmath.AngularDistance(from.Orientation(), to.Orientation()),
	)
	steps = max(steps, s.opts.minSteps())
	s.logger.Debugw("sampling segment", "segment", idx, "steps", steps,
		"from", spatialmath.PoseString(from), "to", spatialmath.PoseString(to))

	for k := 1; k <= steps; k++ {
		done := float64(k) / float64(steps)
		target := spatialmath.Interpolate(from, to, done)
		goal := target
		if s.offsetInv != nil {
			goal = spatialmath.Compose(target, s.offsetInv)
		}

		prev := s.traj[len(s.traj)-1]
		seed, err := prev.GroupInputs(s.req.Group)
		if err != nil {
			return steps, StopComplete, err
		}
		solution, err := s.solver.Solve(ctx, s.frame, goal, seed, s.ikOpts)
		if err != nil {
			if ctxErr := ctx.Err(); ctxErr != nil {
				return steps, StopComplete, ctxErr
			}
			if !errors.Is(err, ik.ErrNoSolution) {
				return steps, StopComplete, errors.Wrapf(err, "step %d of segment %d", k, idx)
			}
			s.logger.Debugw("no IK solution", "segment", idx, "step", k, "error", err)
			return steps, StopIKFailed, nil
		}
		state, err := prev.WithGroupInputs(s.req.Group, solution)
		if err != nil {
			return steps, StopComplete, err
		}
		if s.opts.Validity != nil && !s.opts.Validity(state) {
			s.logger.Debugw("waypoint rejected", "segment", idx, "step", k)
			return steps, StopInvalid, nil
		}
		s.logger.Debugw("waypoint accepted", "segment", idx, "step", k, "inputs", referenceframe.InputsToFloats(solution))
		s.traj = append(s.traj, state)
		s.targets = append(s.targets, target)
		s.progress = append(s.progress, segmentProgress{segment: idx, done: done})
	}
	return steps, StopComplete, nil
}

// finish applies the jump checks and computes the share of the segments covered.
func (s *sampler) finish(stop StopReason, steps, segments int) (*PathResult, error) {
	before := len(s.traj)
	if _, err := CheckJointSpaceJump(s.req.Group, &s.traj, s.opts.JumpThreshold); err != nil {
		return nil, err
	}
	if len(s.traj) < before {
		stop = StopJointSpaceJump
	}
	kept := len(s.traj)
	last := s.progress[kept-1]

	fraction := 0.
	switch {
	case stop == StopComplete:
		fraction = 1
	case kept > 1:
		if last.done >= 1 {
			fraction = float64(last.segment+1) / float64(segments)
		} else {
			fraction = (float64(last.segment) + last.done) / float64(segments)
		}
	}

	return &PathResult{
		Trajectory: s.traj,
		Targets:    s.targets[:kept],
		Fraction:   fraction,
		StopReason: stop,
		Steps:      steps,
	}, nil
}

// translationFraction is the distance covered between consecutive targets over the distance requested.
func translationFraction(targets []spatialmath.Pose, requested float64) float64 {
	if requested == 0 {
		return 0
	}
	covered := 0.
	for i := 1; i < len(targets); i++ {
		covered += spatialmath.TranslationDistance(targets[i-1], targets[i])
	}
	return min(covered/requested, 1)
}
