package referenceframe

import (
	"github.com/pkg/errors"

	"go.viam.com/cartpath/spatialmath"
)

// State is an immutable snapshot of every variable of a model. Link poses are derived by forward kinematics.
type State struct {
	model  Model
	inputs []Input
}

// NewState creates a state for the model from a full input vector, which is copied.
func NewState(model Model, inputs []Input) (*State, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	if len(inputs) != len(model.DoF()) {
		return nil, NewIncorrectDoFError(len(inputs), len(model.DoF()))
	}
	return &State{model: model, inputs: copyInputs(inputs)}, nil
}

// NewDefaultState creates a state where every variable is zero, or the middle of its limits when zero is out of bounds.
func NewDefaultState(model Model) *State {
	inputs := make([]Input, 0, len(model.DoF()))
	for _, j := range model.Joints() {
		inputs = append(inputs, j.DefaultValues()...)
	}
	return &State{model: model, inputs: inputs}
}

// Model returns the model of the state.
func (s *State) Model() Model {
	return s.model
}

// Inputs returns a copy of the full input vector.
func (s *State) Inputs() []Input {
	return copyInputs(s.inputs)
}

func (s *State) checkGroup(g *JointGroup) error {
	if g == nil {
		return errors.New("joint group is nil")
	}
	if g.Model() != s.model {
		return NewModelMismatchError(s.model.Name(), g.Model().Name())
	}
	return nil
}

// GroupInputs returns the variables of the group.
func (s *State) GroupInputs(g *JointGroup) ([]Input, error) {
	if err := s.checkGroup(g); err != nil {
		return nil, err
	}
	return g.Extract(s.inputs), nil
}

// WithGroupInputs returns a new state equal to this one except for the group variables.
func (s *State) WithGroupInputs(g *JointGroup, groupInputs []Input) (*State, error) {
	if err := s.checkGroup(g); err != nil {
		return nil, err
	}
	if len(groupInputs) != len(g.DoF()) {
		return nil, NewIncorrectDoFError(len(groupInputs), len(g.DoF()))
	}
	return &State{model: s.model, inputs: g.Insert(s.inputs, groupInputs)}, nil
}

// LinkPose returns the pose of the named link in the world frame.
func (s *State) LinkPose(link string) (spatialmath.Pose, error) {
	return s.model.LinkPose(s.inputs, link)
}

// Distance returns the aggregate distance over the group between this state and another.
func (s *State) Distance(other *State, g *JointGroup) (float64, error) {
	from, err := s.GroupInputs(g)
	if err != nil {
		return 0, err
	}
	to, err := other.GroupInputs(g)
	if err != nil {
		return 0, err
	}
	return g.Distance(from, to)
}

// Equal reports whether two states belong to the same model and have identical inputs.
func (s *State) Equal(other *State) bool {
	if other == nil || s.model != other.model || len(s.inputs) != len(other.inputs) {
		return false
	}
	for i, in := range s.inputs {
		if in != other.inputs[i] {
			return false
		}
	}
	return true
}

// groupLinkFrame exposes the pose of a link as a function of the variables of a group only, holding every other
// variable at its value in a base state. It is the frame handed to IK solvers.
type groupLinkFrame struct {
	base  *State
	group *JointGroup
	link  string
}

// NewGroupLinkFrame creates a frame whose inputs are the group variables and whose transform is the world pose
// of link, with all other variables taken from base.
func NewGroupLinkFrame(base *State, group *JointGroup, link string) (Frame, error) {
	if err := base.checkGroup(group); err != nil {
		return nil, err
	}
	if _, err := base.LinkPose(link); err != nil && !IsOOBError(err) {
		return nil, err
	}
	return &groupLinkFrame{base: base, group: group, link: link}, nil
}

func (f *groupLinkFrame) Name() string {
	return f.link
}

func (f *groupLinkFrame) DoF() []Limit {
	return f.group.DoF()
}

func (f *groupLinkFrame) Transform(inputs []Input) (spatialmath.Pose, error) {
	if len(inputs) != len(f.group.DoF()) {
		return nil, NewIncorrectDoFError(len(inputs), len(f.group.DoF()))
	}
	return f.base.model.LinkPose(f.group.Insert(f.base.inputs, inputs), f.link)
}

// EnforceBounds clamps and wraps inputs into the group limits.
func (f *groupLinkFrame) EnforceBounds(inputs []Input) []Input {
	return f.group.EnforceBounds(inputs)
}

// Families returns the family of each input.
func (f *groupLinkFrame) Families() []JointFamily {
	return f.group.Families()
}
