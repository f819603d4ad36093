package referenceframe

import (
	"math"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/cartpath/spatialmath"
	"go.viam.com/cartpath/utils"
)

// JointType tags a joint with the kind of motion it allows.
type JointType string

// The supported joint types.
const (
	RevoluteJoint   JointType = "revolute"
	ContinuousJoint JointType = "continuous"
	PrismaticJoint  JointType = "prismatic"
	PlanarJoint     JointType = "planar"
	FloatingJoint   JointType = "floating"
	FixedJoint      JointType = "fixed"
)

// JointFamily classifies a joint variable as rotational or translational.
type JointFamily int

const (
	// RevoluteFamily variables are angles in radians.
	RevoluteFamily JointFamily = iota
	// PrismaticFamily variables are displacements in meters.
	PrismaticFamily
)

func (f JointFamily) String() string {
	if f == RevoluteFamily {
		return "revolute"
	}
	return "prismatic"
}

// JointDistance is the distance between two values of a joint, split by family. Planar and floating joints
// contribute to both families: their linear displacement is prismatic and their rotation is revolute.
type JointDistance struct {
	Revolute  float64
	Prismatic float64
}

// Total is the family-agnostic distance.
func (d JointDistance) Total() float64 {
	return d.Revolute + d.Prismatic
}

// jointKinematics is the per-type entry of the joint dispatch table.
type jointKinematics struct {
	families []JointFamily
	// wrapped marks angular variables that live on the circle rather than in a bounded interval.
	wrapped  []bool
	needAxis bool
	motion   func(axis r3.Vector, values []float64) spatialmath.Pose
	distance func(a, b []float64) JointDistance
}

var jointKinematicsTable = map[JointType]jointKinematics{
	RevoluteJoint: {
		families: []JointFamily{RevoluteFamily},
		wrapped:  []bool{false},
		needAxis: true,
		motion: func(axis r3.Vector, values []float64) spatialmath.Pose {
			return spatialmath.NewPoseFromAxisAngle(r3.Vector{}, axis, values[0])
		},
		distance: func(a, b []float64) JointDistance {
			return JointDistance{Revolute: math.Abs(b[0] - a[0])}
		},
	},
	ContinuousJoint: {
		families: []JointFamily{RevoluteFamily},
		wrapped:  []bool{true},
		needAxis: true,
		motion: func(axis r3.Vector, values []float64) spatialmath.Pose {
			return spatialmath.NewPoseFromAxisAngle(r3.Vector{}, axis, values[0])
		},
		distance: func(a, b []float64) JointDistance {
			return JointDistance{Revolute: math.Abs(utils.AngleDiff(a[0], b[0]))}
		},
	},
	PrismaticJoint: {
		families: []JointFamily{PrismaticFamily},
		wrapped:  []bool{false},
		needAxis: true,
		motion: func(axis r3.Vector, values []float64) spatialmath.Pose {
			return spatialmath.NewPoseFromPoint(axis.Mul(values[0]))
		},
		distance: func(a, b []float64) JointDistance {
			return JointDistance{Prismatic: math.Abs(b[0] - a[0])}
		},
	},
	// planar joints move in the XY plane of their parent and rotate about its Z axis: (x, y, theta)
	PlanarJoint: {
		families: []JointFamily{PrismaticFamily, PrismaticFamily, RevoluteFamily},
		wrapped:  []bool{false, false, true},
		motion: func(_ r3.Vector, values []float64) spatialmath.Pose {
			return spatialmath.NewPoseFromAxisAngle(r3.Vector{X: values[0], Y: values[1]}, r3.Vector{Z: 1}, values[2])
		},
		distance: func(a, b []float64) JointDistance {
			return JointDistance{
				Prismatic: math.Hypot(b[0]-a[0], b[1]-a[1]),
				Revolute:  math.Abs(utils.AngleDiff(a[2], b[2])),
			}
		},
	},
	// floating joints are a translation followed by a rotation vector: (x, y, z, rx, ry, rz)
	FloatingJoint: {
		families: []JointFamily{
			PrismaticFamily, PrismaticFamily, PrismaticFamily,
			RevoluteFamily, RevoluteFamily, RevoluteFamily,
		},
		wrapped: []bool{false, false, false, false, false, false},
		motion: func(_ r3.Vector, values []float64) spatialmath.Pose {
			return spatialmath.NewPose(
				r3.Vector{X: values[0], Y: values[1], Z: values[2]},
				spatialmath.R3ToR4(r3.Vector{X: values[3], Y: values[4], Z: values[5]}),
			)
		},
		distance: func(a, b []float64) JointDistance {
			from := spatialmath.R3ToR4(r3.Vector{X: a[3], Y: a[4], Z: a[5]})
			to := spatialmath.R3ToR4(r3.Vector{X: b[3], Y: b[4], Z: b[5]})
			return JointDistance{
				Prismatic: r3.Vector{X: b[0] - a[0], Y: b[1] - a[1], Z: b[2] - a[2]}.Norm(),
				Revolute:  spatialmath.AngularDistance(from, to),
			}
		},
	},
	FixedJoint: {
		motion: func(_ r3.Vector, _ []float64) spatialmath.Pose {
			return spatialmath.NewZeroPose()
		},
		distance: func(_, _ []float64) JointDistance {
			return JointDistance{}
		},
	},
}

// Joint is a moving frame. Its motion, distance and bounds semantics are selected by its type tag.
type Joint struct {
	name      string
	jointType JointType
	axis      r3.Vector
	limits    []Limit
	origin    spatialmath.Pose
	kin       jointKinematics
}

// NewJoint creates a joint. The axis is required for revolute, continuous and prismatic joints and is normalized.
// Nil limits default to unbounded; continuous joints and the angular variables of planar and floating joints are
// always unbounded. The optional origin is the fixed transform from the parent to the joint before any motion.
func NewJoint(name string, jointType JointType, axis r3.Vector, limits []Limit, origin spatialmath.Pose) (*Joint, error) {
	kin, ok := jointKinematicsTable[jointType]
	if !ok {
		return nil, NewUnsupportedJointTypeError(string(jointType))
	}
	if kin.needAxis {
		if spatialmath.R3VectorAlmostEqual(r3.Vector{}, axis, 1e-8) {
			return nil, errors.Errorf("joint %q: cannot use zero vector as joint axis", name)
		}
		axis = axis.Normalize()
	}
	dof := len(kin.families)
	if limits == nil {
		limits = make([]Limit, dof)
		for i := range limits {
			limits[i] = Limit{math.Inf(-1), math.Inf(1)}
		}
	}
	if len(limits) != dof {
		return nil, errors.Wrapf(NewIncorrectDoFError(len(limits), dof), "joint %q limits", name)
	}
	limits = append([]Limit{}, limits...)
	for i, lim := range limits {
		if kin.wrapped[i] {
			limits[i] = Limit{math.Inf(-1), math.Inf(1)}
			continue
		}
		if lim.Min > lim.Max {
			return nil, errors.Errorf("joint %q: min limit %f greater than max limit %f", name, lim.Min, lim.Max)
		}
	}
	return &Joint{name: name, jointType: jointType, axis: axis, limits: limits, origin: origin, kin: kin}, nil
}

// Name returns the name of the joint.
func (j *Joint) Name() string {
	return j.name
}

// Type returns the joint type tag.
func (j *Joint) Type() JointType {
	return j.jointType
}

// Axis returns the normalized joint axis.
func (j *Joint) Axis() r3.Vector {
	return j.axis
}

// DoF returns the limits of each variable of the joint.
func (j *Joint) DoF() []Limit {
	return j.limits
}

// Families returns the family of each variable of the joint.
func (j *Joint) Families() []JointFamily {
	return j.kin.families
}

// Transform returns the pose of the joint's child relative to its parent. Out of bounds inputs are computed
// but also return an error containing OOBErrString.
func (j *Joint) Transform(input []Input) (spatialmath.Pose, error) {
	if len(input) != len(j.limits) {
		return nil, NewIncorrectDoFError(len(input), len(j.limits))
	}
	var err error
	for i, in := range input {
		if !j.limits[i].Contains(in.Value) {
			multierr.AppendInto(&err, newOOBError(in.Value, j.limits[i]))
		}
	}
	motion := j.kin.motion(j.axis, InputsToFloats(input))
	if j.origin != nil {
		motion = spatialmath.Compose(j.origin, motion)
	}
	return motion, err
}

// Distance returns the type-specific distance between two values of this joint, split by family.
func (j *Joint) Distance(a, b []Input) JointDistance {
	return j.kin.distance(InputsToFloats(a), InputsToFloats(b))
}

// EnforceBounds returns a copy of the input clamped to the joint limits, with angular variables that live on the
// circle wrapped into (-pi, pi].
func (j *Joint) EnforceBounds(input []Input) []Input {
	out := copyInputs(input)
	for i := range out {
		if j.kin.wrapped[i] {
			out[i].Value = utils.WrapAngle(out[i].Value)
			continue
		}
		out[i].Value = utils.Clamp(out[i].Value, j.limits[i].Min, j.limits[i].Max)
	}
	return out
}

// SatisfiesBounds reports whether every variable of the input lies within the joint limits.
func (j *Joint) SatisfiesBounds(input []Input) bool {
	for i, in := range input {
		if !j.limits[i].Contains(in.Value) {
			return false
		}
	}
	return true
}

// MaxExtents returns, per variable, the largest distance the variable can travel: the limit range for bounded
// variables, a full turn for wrapped angles and pi for the rotation of a floating joint.
func (j *Joint) MaxExtents() []float64 {
	extents := make([]float64, len(j.limits))
	for i, lim := range j.limits {
		switch {
		case j.kin.wrapped[i]:
			extents[i] = 2 * math.Pi
		case j.jointType == FloatingJoint && j.kin.families[i] == RevoluteFamily:
			extents[i] = math.Pi
		default:
			extents[i] = lim.Range()
		}
	}
	return extents
}

// DefaultValues returns zero for every variable whose limits contain zero, and the limit midpoint otherwise.
func (j *Joint) DefaultValues() []Input {
	values := make([]Input, len(j.limits))
	for i, lim := range j.limits {
		if !lim.Contains(0) {
			values[i] = Input{(lim.Min + lim.Max) / 2}
		}
	}
	return values
}

// Origin returns the fixed transform applied before the joint motion, or nil.
func (j *Joint) Origin() spatialmath.Pose {
	return j.origin
}
