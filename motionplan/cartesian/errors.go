package cartesian

import (
	"github.com/pkg/errors"
)

// ErrEmptyTrajectory is returned when a jump check is given a trajectory with no waypoints.
var ErrEmptyTrajectory = errors.New("trajectory has no waypoints")

// ErrNilJointGroup is returned when no joint group is given.
var ErrNilJointGroup = errors.New("joint group is nil")

// ErrWaypointModelMismatch is returned when a waypoint does not belong to the model of the joint group.
var ErrWaypointModelMismatch = errors.New("waypoint does not belong to the model of the joint group")

// ErrNilStart is returned when a path request has no start state.
var ErrNilStart = errors.New("path request has no start state")

// ErrNoMotion is returned when a path request does not name exactly one of a translation, a target or waypoints.
var ErrNoMotion = errors.New("path request needs exactly one of a translation, a target pose or waypoint poses")

// ErrNonFiniteMotion is returned when a translation or pose of a path request has a NaN or infinite component.
var ErrNonFiniteMotion = errors.New("path request motion must be finite")

// ErrNoWaypoints is returned when a multi-waypoint request has no target poses.
var ErrNoWaypoints = errors.New("path request has no waypoint poses")

// NewInvalidThresholdError is returned when a jump threshold is negative or not a number.
func NewInvalidThresholdError(name string, value float64) error {
	return errors.Errorf("jump threshold %s must be a non-negative number, got %v", name, value)
}

// NewInvalidStepError is returned when the max end effector step bounds nothing.
func NewInvalidStepError(step MaxEEFStep) error {
	return errors.Errorf("max end effector step needs a positive translation or rotation bound, got %+v", step)
}

func newWaypointModelMismatchError(idx int) error {
	return errors.Wrapf(ErrWaypointModelMismatch, "waypoint %d", idx)
}
