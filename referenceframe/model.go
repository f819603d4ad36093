package referenceframe

import (
	"sort"

	"github.com/pkg/errors"
	"github.com/samber/lo"
	"go.uber.org/multierr"

	"go.viam.com/cartpath/spatialmath"
)

// A Model is a frame made of a serial chain of links and joints, with named joint groups.
type Model interface {
	Frame
	Joints() []*Joint
	Joint(name string) (*Joint, error)
	VariableOffset(joint string) (int, error)
	LinkNames() []string
	LinkPose(inputs []Input, link string) (spatialmath.Pose, error)
	Group(name string) (*JointGroup, error)
	GroupNames() []string
}

// SimpleModel is a serial chain of frames. Static frames are the links and Joints move them.
// Generally speaking, a Joint will attach a link to a frame, and a static frame will attach a frame to a link.
type SimpleModel struct {
	name string
	// ordTransforms is the list of transforms ordered from base to end effector
	ordTransforms []Frame
	frameIndex    map[string]int
	joints        []*Joint
	jointOffsets  map[string]int
	limits        []Limit
	groups        map[string]*JointGroup
	modelConfig   *ModelConfigJSON
}

// NewSimpleModel constructs a new, empty model.
func NewSimpleModel(name string) *SimpleModel {
	return &SimpleModel{
		name:         name,
		frameIndex:   map[string]int{},
		jointOffsets: map[string]int{},
		groups:       map[string]*JointGroup{},
	}
}

// NewSerialModel builds a model from frames ordered from base to end effector. Every Joint in the chain becomes a
// variable of the model and a group named after the model containing all joints is registered.
func NewSerialModel(name string, frames []Frame) (*SimpleModel, error) {
	m := NewSimpleModel(name)
	if err := m.setOrdTransforms(frames); err != nil {
		return nil, err
	}
	if _, err := m.AddGroup(name, lo.Map(m.joints, func(j *Joint, _ int) string { return j.Name() })); err != nil {
		return nil, err
	}
	return m, nil
}

func (m *SimpleModel) setOrdTransforms(frames []Frame) error {
	m.ordTransforms = frames
	m.frameIndex = map[string]int{}
	m.jointOffsets = map[string]int{}
	m.joints = nil
	m.limits = nil
	for i, f := range frames {
		if f.Name() == World {
			return NewReservedWordError("frame", World)
		}
		if _, ok := m.frameIndex[f.Name()]; ok {
			return errors.Errorf("duplicate frame name %q in model %q", f.Name(), m.name)
		}
		m.frameIndex[f.Name()] = i
		if j, ok := f.(*Joint); ok {
			m.jointOffsets[j.Name()] = len(m.limits)
			m.joints = append(m.joints, j)
		}
		m.limits = append(m.limits, f.DoF()...)
	}
	return nil
}

// AddGroup registers a joint group made of the named joints, in the given order.
func (m *SimpleModel) AddGroup(name string, jointNames []string) (*JointGroup, error) {
	g, err := NewJointGroup(m, name, jointNames)
	if err != nil {
		return nil, err
	}
	m.groups[name] = g
	return g, nil
}

// Name returns the name of this model.
func (m *SimpleModel) Name() string {
	return m.name
}

// DoF returns the limits of every variable in the model, from base to end effector.
func (m *SimpleModel) DoF() []Limit {
	return m.limits
}

// Joints returns the joints of the model from base to end effector.
func (m *SimpleModel) Joints() []*Joint {
	return m.joints
}

// Joint returns the named joint.
func (m *SimpleModel) Joint(name string) (*Joint, error) {
	idx, ok := m.frameIndex[name]
	if !ok {
		return nil, NewJointNotInModelError(name, m.name)
	}
	j, ok := m.ordTransforms[idx].(*Joint)
	if !ok {
		return nil, NewJointNotInModelError(name, m.name)
	}
	return j, nil
}

// VariableOffset returns the index of the named joint's first variable in the model's inputs.
func (m *SimpleModel) VariableOffset(joint string) (int, error) {
	offset, ok := m.jointOffsets[joint]
	if !ok {
		return 0, NewJointNotInModelError(joint, m.name)
	}
	return offset, nil
}

// LinkNames returns the names of every frame of the model, from base to end effector.
func (m *SimpleModel) LinkNames() []string {
	return lo.Map(m.ordTransforms, func(f Frame, _ int) string { return f.Name() })
}

// Group returns the named joint group.
func (m *SimpleModel) Group(name string) (*JointGroup, error) {
	g, ok := m.groups[name]
	if !ok {
		return nil, NewGroupNotInModelError(name, m.name)
	}
	return g, nil
}

// GroupNames returns the sorted names of the registered joint groups.
func (m *SimpleModel) GroupNames() []string {
	names := lo.Keys(m.groups)
	sort.Strings(names)
	return names
}

// Transform takes a list of joint inputs and computes the pose of the end effector.
func (m *SimpleModel) Transform(inputs []Input) (spatialmath.Pose, error) {
	if len(m.ordTransforms) == 0 {
		return spatialmath.NewZeroPose(), nil
	}
	return m.transformUpTo(inputs, len(m.ordTransforms)-1)
}

// LinkPose computes the pose in the world frame of the named link or joint.
func (m *SimpleModel) LinkPose(inputs []Input, link string) (spatialmath.Pose, error) {
	idx, ok := m.frameIndex[link]
	if !ok {
		return nil, NewLinkNotInModelError(link, m.name)
	}
	return m.transformUpTo(inputs, idx)
}

// transformUpTo composes the transforms from the base up to and including the frame at index last.
func (m *SimpleModel) transformUpTo(inputs []Input, last int) (spatialmath.Pose, error) {
	if len(inputs) != len(m.limits) {
		return nil, NewIncorrectDoFError(len(inputs), len(m.limits))
	}
	var err error
	composed := spatialmath.NewZeroPose()
	posIdx := 0
	for _, transform := range m.ordTransforms[:last+1] {
		dof := len(transform.DoF()) + posIdx
		input := inputs[posIdx:dof]
		posIdx = dof

		pose, errNew := transform.Transform(input)
		// Fail if inputs are incorrect and pose is nil, but allow querying out-of-bounds positions
		if pose == nil {
			return nil, errNew
		}
		multierr.AppendInto(&err, errNew)
		composed = spatialmath.Compose(composed, pose)
	}
	return composed, err
}

// AreInputsValid checks whether the given inputs violate any limits.
func (m *SimpleModel) AreInputsValid(inputs []Input) bool {
	if len(inputs) != len(m.limits) {
		return false
	}
	for i, lim := range m.limits {
		if !lim.Contains(inputs[i].Value) {
			return false
		}
	}
	return true
}

// AlmostEquals returns true if the only difference between this model and another is floating point imprecision.
func (m *SimpleModel) AlmostEquals(other *SimpleModel) bool {
	if m.name != other.name || len(m.ordTransforms) != len(other.ordTransforms) {
		return false
	}
	for idx, f := range m.ordTransforms {
		o := other.ordTransforms[idx]
		if f.Name() != o.Name() || !limitsAlmostEqual(f.DoF(), o.DoF()) {
			return false
		}
		if sf, ok := f.(*staticFrame); ok {
			osf, ok := o.(*staticFrame)
			if !ok || !spatialmath.PoseAlmostEqual(sf.transform, osf.transform) {
				return false
			}
		}
		if j, ok := f.(*Joint); ok {
			oj, ok := o.(*Joint)
			if !ok || j.jointType != oj.jointType || !spatialmath.R3VectorAlmostEqual(j.axis, oj.axis, 1e-8) {
				return false
			}
		}
	}
	return true
}

// ModelConfig returns the configuration the model was parsed from, if any.
func (m *SimpleModel) ModelConfig() *ModelConfigJSON {
	return m.modelConfig
}
