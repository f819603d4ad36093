package cartesian

import (
	"math"

	"github.com/montanaflynn/stats"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/cartpath/referenceframe"
)

// JumpThreshold configures joint-space jump detection. A field of zero disables the check it controls.
type JumpThreshold struct {
	// Revolute is the largest allowed change of any revolute family variable between two waypoints, in radians.
	Revolute float64 `json:"revolute_absolute"`
	// Prismatic is the largest allowed change of any prismatic family variable between two waypoints, in meters.
	Prismatic float64 `json:"prismatic_absolute"`
	// Factor flags a pair of waypoints whose distance exceeds Factor times the average distance of all pairs.
	Factor float64 `json:"relative_factor"`
}

// NewAbsoluteJumpThreshold returns a threshold with only the absolute checks.
func NewAbsoluteJumpThreshold(revolute, prismatic float64) JumpThreshold {
	return JumpThreshold{Revolute: revolute, Prismatic: prismatic}
}

// NewRelativeJumpThreshold returns a threshold with only the relative check.
func NewRelativeJumpThreshold(factor float64) JumpThreshold {
	return JumpThreshold{Factor: factor}
}

// Validate returns an error if any field is negative or not a number.
func (jt JumpThreshold) Validate() error {
	return multierr.Combine(
		validateThreshold("revolute_absolute", jt.Revolute),
		validateThreshold("prismatic_absolute", jt.Prismatic),
		validateThreshold("relative_factor", jt.Factor),
	)
}

// AbsoluteEnabled reports whether either absolute check is on.
func (jt JumpThreshold) AbsoluteEnabled() bool {
	return jt.Revolute > 0 || jt.Prismatic > 0
}

// RelativeEnabled reports whether the relative check is on.
func (jt JumpThreshold) RelativeEnabled() bool {
	return jt.Factor > 0
}

func validateThreshold(name string, v float64) error {
	if math.IsNaN(v) || v < 0 {
		return NewInvalidThresholdError(name, v)
	}
	return nil
}

// CheckJointSpaceJump truncates traj before the first pair of waypoints flagged by any enabled check and returns the
// fraction of waypoints kept. Both checks look at the trajectory as given, and the earlier cut wins.
func CheckJointSpaceJump(group *referenceframe.JointGroup, traj *Trajectory, threshold JumpThreshold) (float64, error) {
	if err := threshold.Validate(); err != nil {
		return 0, err
	}
	dists, err := pairDistances(group, traj)
	if err != nil {
		return 0, err
	}
	keep := len(*traj)
	if threshold.AbsoluteEnabled() {
		keep = min(keep, absoluteCut(dists, threshold.Revolute, threshold.Prismatic))
	}
	if threshold.RelativeEnabled() {
		relKeep, err := relativeCut(dists, threshold.Factor)
		if err != nil {
			return 0, err
		}
		keep = min(keep, relKeep)
	}
	return traj.truncate(keep), nil
}

// CheckAbsoluteJointSpaceJump truncates traj before the first pair of waypoints in which a revolute family variable
// moves more than revolute radians, or a prismatic family variable more than prismatic meters, and returns the
// fraction of waypoints kept. A threshold of zero disables the check for its family.
func CheckAbsoluteJointSpaceJump(group *referenceframe.JointGroup, traj *Trajectory, revolute, prismatic float64) (float64, error) {
	return CheckJointSpaceJump(group, traj, NewAbsoluteJumpThreshold(revolute, prismatic))
}

// CheckRelativeJointSpaceJump truncates traj before the first pair of waypoints whose total joint distance exceeds
// factor times the average over all pairs, and returns the fraction of waypoints kept. A factor of zero disables the
// check.
func CheckRelativeJointSpaceJump(group *referenceframe.JointGroup, traj *Trajectory, factor float64) (float64, error) {
	return CheckJointSpaceJump(group, traj, NewRelativeJumpThreshold(factor))
}

// pairDistances returns, for each consecutive pair of waypoints, the distance of each joint of the group.
func pairDistances(group *referenceframe.JointGroup, traj *Trajectory) ([][]referenceframe.JointDistance, error) {
	if group == nil {
		return nil, ErrNilJointGroup
	}
	if traj == nil || len(*traj) == 0 {
		return nil, ErrEmptyTrajectory
	}
	inputs := make([][]referenceframe.Input, len(*traj))
	for i, wp := range *traj {
		if wp == nil || wp.Model() != group.Model() {
			return nil, newWaypointModelMismatchError(i)
		}
		var err error
		if inputs[i], err = wp.GroupInputs(group); err != nil {
			return nil, err
		}
	}
	dists := make([][]referenceframe.JointDistance, 0, len(inputs)-1)
	for i := 1; i < len(inputs); i++ {
		d, err := group.JointDistances(inputs[i-1], inputs[i])
		if err != nil {
			return nil, errors.Wrapf(err, "waypoints %d and %d", i-1, i)
		}
		dists = append(dists, d)
	}
	return dists, nil
}

// absoluteCut returns the number of waypoints before the first flagged pair.
func absoluteCut(dists [][]referenceframe.JointDistance, revolute, prismatic float64) int {
	for i, pair := range dists {
		for _, d := range pair {
			if (revolute > 0 && d.Revolute > revolute) || (prismatic > 0 && d.Prismatic > prismatic) {
				return i + 1
			}
		}
	}
	return len(dists) + 1
}

// relativeCut returns the number of waypoints before the first pair whose total distance exceeds factor times the
// average.
func relativeCut(dists [][]referenceframe.JointDistance, factor float64) (int, error) {
	if len(dists) == 0 {
		return 1, nil
	}
	totals := lo.Map(dists, func(pair []referenceframe.JointDistance, _ int) float64 {
		return lo.SumBy(pair, func(d referenceframe.JointDistance) float64 { return d.Total() })
	})
	avg, err := stats.Mean(totals)
	if err != nil {
		return 0, err
	}
	threshold := factor * avg
	for i, total := range totals {
		if total > threshold {
			return i + 1, nil
		}
	}
	return len(dists) + 1, nil
}
