package referenceframe

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/cartpath/spatialmath"
	"go.viam.com/cartpath/utils"
)

// LinkConfig is a static frame with a parent: a fixed translation (meters) and orientation from the parent.
type LinkConfig struct {
	ID          string                         `json:"id"`
	Translation spatialmath.TranslationConfig  `json:"translation"`
	Orientation *spatialmath.OrientationConfig `json:"orientation,omitempty"`
	Parent      string                         `json:"parent,omitempty"`
}

// AxisConfig is the json representation of a joint axis.
type AxisConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// ParseConfig converts an AxisConfig into a vector.
func (a AxisConfig) ParseConfig() r3.Vector {
	return r3.Vector{X: a.X, Y: a.Y, Z: a.Z}
}

// JointConfig is a frame with nonzero DOF. Supports revolute, continuous, prismatic, planar, floating and fixed joints.
// Revolute limits are in degrees and all translational limits in meters. Min and Max both zero means unbounded. For
// planar and floating joints the limits bound every translational variable.
type JointConfig struct {
	ID     string                  `json:"id"`
	Type   string                  `json:"type"`
	Parent string                  `json:"parent"`
	Axis   AxisConfig              `json:"axis"`
	Max    float64                 `json:"max"`
	Min    float64                 `json:"min"`
	Origin *spatialmath.PoseConfig `json:"origin,omitempty"`
}

// GroupConfig names an ordered set of joints.
type GroupConfig struct {
	Name   string   `json:"name"`
	Joints []string `json:"joints"`
}

// Pose returns the fixed transform described by the link config.
func (cfg *LinkConfig) Pose() (spatialmath.Pose, error) {
	pt := cfg.Translation.ParseConfig()
	if cfg.Orientation == nil {
		return spatialmath.NewPoseFromPoint(pt), nil
	}
	orient, err := cfg.Orientation.ParseConfig()
	if err != nil {
		return nil, err
	}
	return spatialmath.NewPose(pt, orient), nil
}

// ParseConfig converts a LinkConfig into a static frame.
func (cfg *LinkConfig) ParseConfig() (Frame, error) {
	pose, err := cfg.Pose()
	if err != nil {
		return nil, errors.Wrapf(err, "link %q", cfg.ID)
	}
	return NewStaticFrame(cfg.ID, pose)
}

// ToFrame converts a JointConfig into a Joint.
func (cfg *JointConfig) ToFrame() (*Joint, error) {
	jointType := JointType(cfg.Type)
	kin, ok := jointKinematicsTable[jointType]
	if !ok {
		return nil, NewUnsupportedJointTypeError(cfg.Type)
	}

	var origin spatialmath.Pose
	if cfg.Origin != nil {
		var err error
		origin, err = cfg.Origin.ParseConfig()
		if err != nil {
			return nil, errors.Wrapf(err, "joint %q origin", cfg.ID)
		}
	}

	var limits []Limit
	if cfg.Min != 0 || cfg.Max != 0 {
		limits = make([]Limit, len(kin.families))
		for i, family := range kin.families {
			switch {
			case jointType == RevoluteJoint:
				limits[i] = Limit{utils.DegToRad(cfg.Min), utils.DegToRad(cfg.Max)}
			case family == PrismaticFamily:
				limits[i] = Limit{cfg.Min, cfg.Max}
			default:
				limits[i] = Limit{math.Inf(-1), math.Inf(1)}
			}
		}
	}
	return NewJoint(cfg.ID, jointType, cfg.Axis.ParseConfig(), limits, origin)
}
