package cartesian

import (
	"math"

	"github.com/go-viper/mapstructure/v2"
	"github.com/pkg/errors"

	"go.viam.com/cartpath/motionplan/ik"
	"go.viam.com/cartpath/referenceframe"
	"go.viam.com/cartpath/spatialmath"
)

// default values for cartesian path options.
const (
	// max end effector translation per step, in meters.
	defaultMaxTranslationStep = 0.01

	// max end effector rotation per step, in radians.
	defaultMaxRotationStep = 0.05

	// MinStepsForJumpThreshold is the fewest steps a path is sampled with when the relative jump check is on,
	// so that the average step distance is meaningful.
	MinStepsForJumpThreshold = 10

	// distances within this share of a step of a whole number of steps are not rounded up to another step
	stepEpsilon = 1e-9
)

// MaxEEFStep bounds how far the end effector moves between two waypoints. A bound that is not positive is ignored.
type MaxEEFStep struct {
	// Translation is in meters.
	Translation float64 `json:"translation"`
	// Rotation is in radians.
	Rotation float64 `json:"rotation"`
}

// Validate returns an error unless at least one bound is positive.
func (s MaxEEFStep) Validate() error {
	if math.IsNaN(s.Translation) || math.IsNaN(s.Rotation) || (s.Translation <= 0 && s.Rotation <= 0) {
		return NewInvalidStepError(s)
	}
	return nil
}

// Steps returns how many steps a motion covering translation meters and rotation radians is split into. It is
// never less than one.
func (s MaxEEFStep) Steps(translation, rotation float64) int {
	steps := 1.
	if s.Translation > 0 {
		steps = math.Max(steps, math.Ceil(translation/s.Translation-stepEpsilon))
	}
	if s.Rotation > 0 {
		steps = math.Max(steps, math.Ceil(rotation/s.Rotation-stepEpsilon))
	}
	return int(steps)
}

// ValidityFunc rejects waypoints that IK found but that must not be used, for example ones in collision.
type ValidityFunc func(*referenceframe.State) bool

// PathOptions are a set of options to be passed to the cartesian planner.
type PathOptions struct {
	MaxStep MaxEEFStep `json:"max_step"`

	JumpThreshold JumpThreshold `json:"jump_threshold"`

	// When true, translations and targets are in the world frame. Otherwise they are in the frame of the controlled
	// point at the start of the motion.
	GlobalReference bool `json:"global_reference"`

	IK *ik.Options `json:"ik"`

	// Validity, if set, is called on every waypoint IK finds.
	Validity ValidityFunc `json:"-"`

	// Offset is the fixed pose of the controlled point in the frame of the link. Nil means the link origin.
	Offset spatialmath.Pose `json:"-"`
}

// NewBasicPathOptions specifies a set of basic options for the planner.
func NewBasicPathOptions() *PathOptions {
	return &PathOptions{
		MaxStep:         MaxEEFStep{Translation: defaultMaxTranslationStep, Rotation: defaultMaxRotationStep},
		GlobalReference: true,
		IK:              ik.NewDefaultOptions(),
	}
}

// NewPathOptionsFromExtra returns the basic options overridden by the values in extra, using the json names of the
// fields. Unknown keys are an error.
func NewPathOptionsFromExtra(extra map[string]interface{}) (*PathOptions, error) {
	opts := NewBasicPathOptions()
	if len(extra) == 0 {
		return opts, nil
	}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		Result:           opts,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(extra); err != nil {
		return nil, errors.Wrap(err, "cannot decode path options")
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	return opts, nil
}

// Validate returns an error if the step bound or the jump threshold is unusable.
func (opts *PathOptions) Validate() error {
	if err := opts.MaxStep.Validate(); err != nil {
		return err
	}
	return opts.JumpThreshold.Validate()
}

// orDefault validates the options and fills in what is missing, returning basic options for nil.
func (opts *PathOptions) orDefault() (*PathOptions, error) {
	if opts == nil {
		return NewBasicPathOptions(), nil
	}
	if err := opts.Validate(); err != nil {
		return nil, err
	}
	if opts.IK == nil {
		out := *opts
		out.IK = ik.NewDefaultOptions()
		return &out, nil
	}
	return opts, nil
}

// minSteps is the fewest steps a segment is sampled with.
func (opts *PathOptions) minSteps() int {
	if opts.JumpThreshold.RelativeEnabled() {
		return MinStepsForJumpThreshold
	}
	return 1
}

// consistencyLimits bounds how far IK may move each group variable from its seed when the absolute jump check is
// on: the family threshold when it is set, the largest extent of the variable otherwise.
func consistencyLimits(group *referenceframe.JointGroup, jt JumpThreshold) []float64 {
	if !jt.AbsoluteEnabled() {
		return nil
	}
	limits := group.MaxExtents()
	for i, family := range group.Families() {
		switch {
		case family == referenceframe.RevoluteFamily && jt.Revolute > 0:
			limits[i] = jt.Revolute
		case family == referenceframe.PrismaticFamily && jt.Prismatic > 0:
			limits[i] = jt.Prismatic
		}
	}
	return limits
}
