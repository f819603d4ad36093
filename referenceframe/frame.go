// Package referenceframe defines the kinematic models, joints and robot states used by the path planners.
//
// A model is a serial chain of fixed link transforms and moving joints. A State is an immutable
// configuration of every variable of a model, and a JointGroup selects the joints a planner may move.
package referenceframe

import (
	"fmt"
	"math"
	"strings"

	"github.com/pkg/errors"

	"go.viam.com/cartpath/spatialmath"
	"go.viam.com/cartpath/utils"
)

// World is the name of the root frame that every model is attached to.
const World = "world"

// OOBErrString is a string that all OOB errors should contain, so that they can be checked for distinct from other Transform errors.
const OOBErrString = "input out of bounds"

// Limit represents the limits of motion for a single degree of freedom.
type Limit struct {
	Min float64
	Max float64
}

// Range returns the distance between the limits, which is infinite for unbounded limits.
func (l Limit) Range() float64 {
	return l.Max - l.Min
}

// Contains reports whether value lies within the limit.
func (l Limit) Contains(value float64) bool {
	return value >= l.Min && value <= l.Max
}

func limitsAlmostEqual(a, b []Limit) bool {
	if len(a) != len(b) {
		return false
	}

	const epsilon = 1e-5
	for idx, x := range a {
		if !almostEqualOrInf(x.Min, b[idx].Min, epsilon) || !almostEqualOrInf(x.Max, b[idx].Max, epsilon) {
			return false
		}
	}

	return true
}

func almostEqualOrInf(a, b, epsilon float64) bool {
	if math.IsInf(a, 0) || math.IsInf(b, 0) {
		return a == b
	}
	return utils.Float64AlmostEqual(a, b, epsilon)
}

// Frame represents a reference frame, e.g. a link, a joint or a whole arm.
type Frame interface {
	// Name returns the name of the frame.
	Name() string

	// Transform is the pose (rotation and translation) that goes FROM current frame TO parent's frame.
	Transform([]Input) (spatialmath.Pose, error)

	// DoF will return a slice with length equal to the number of degrees of freedom.
	// Each element describes the min and max movement limit of that degree of freedom.
	// For frames that don't move, it returns an empty slice.
	DoF() []Limit
}

// a static Frame is a simple coordinate system that encodes a fixed translation and rotation
// from the current Frame to the parent frame.
type staticFrame struct {
	name      string
	transform spatialmath.Pose
}

// NewStaticFrame creates a frame given a pose relative to its parent. The pose is fixed for all time.
// Pose is not allowed to be nil.
func NewStaticFrame(name string, pose spatialmath.Pose) (Frame, error) {
	if pose == nil {
		return nil, errors.New("pose is not allowed to be nil")
	}
	return &staticFrame{name, pose}, nil
}

// NewZeroStaticFrame creates a frame with no translation or orientation changes.
func NewZeroStaticFrame(name string) Frame {
	return &staticFrame{name, spatialmath.NewZeroPose()}
}

// Name is the name of the frame.
func (sf *staticFrame) Name() string {
	return sf.name
}

// Transform returns the pose associated with this static frame.
func (sf *staticFrame) Transform(input []Input) (spatialmath.Pose, error) {
	if len(input) != 0 {
		return nil, NewIncorrectDoFError(len(input), 0)
	}
	return sf.transform, nil
}

// DoF are the degrees of freedom of the transform. In the staticFrame, it is always 0.
func (sf *staticFrame) DoF() []Limit {
	return []Limit{}
}

func newOOBError(value float64, limit Limit) error {
	return fmt.Errorf("%.5f %s %v", value, OOBErrString, limit)
}

// IsOOBError reports whether err is only the complaint of a frame about inputs outside its limits. Transforms
// still return a pose alongside such errors.
func IsOOBError(err error) bool {
	return err != nil && strings.Contains(err.Error(), OOBErrString)
}
