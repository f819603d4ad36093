package referenceframe

import (
	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// JointGroup is an ordered set of joints of a model that a planner may move. Group inputs are the concatenation of the
// variables of its joints in group order.
type JointGroup struct {
	name    string
	model   Model
	joints  []*Joint
	offsets []int
	limits  []Limit
}

// NewJointGroup creates a group over the named joints of the model.
func NewJointGroup(model Model, name string, jointNames []string) (*JointGroup, error) {
	if model == nil {
		return nil, ErrNilModel
	}
	if len(jointNames) == 0 {
		return nil, errors.Errorf("joint group %q must contain at least one joint", name)
	}
	if dupes := lo.FindDuplicates(jointNames); len(dupes) > 0 {
		return nil, errors.Errorf("joint group %q lists joints more than once: %v", name, dupes)
	}
	g := &JointGroup{name: name, model: model}
	for _, jName := range jointNames {
		j, err := model.Joint(jName)
		if err != nil {
			return nil, err
		}
		offset, err := model.VariableOffset(jName)
		if err != nil {
			return nil, err
		}
		g.joints = append(g.joints, j)
		g.offsets = append(g.offsets, offset)
		g.limits = append(g.limits, j.DoF()...)
	}
	return g, nil
}

// Name returns the name of the group.
func (g *JointGroup) Name() string {
	return g.name
}

// Model returns the model the group belongs to.
func (g *JointGroup) Model() Model {
	return g.model
}

// Joints returns the joints of the group in group order.
func (g *JointGroup) Joints() []*Joint {
	return g.joints
}

// JointNames returns the names of the joints of the group in group order.
func (g *JointGroup) JointNames() []string {
	return lo.Map(g.joints, func(j *Joint, _ int) string { return j.Name() })
}

// DoF returns the limits of every variable of the group.
func (g *JointGroup) DoF() []Limit {
	return g.limits
}

// Extract returns the group variables of a full model input vector.
func (g *JointGroup) Extract(modelInputs []Input) []Input {
	out := make([]Input, 0, len(g.limits))
	for i, j := range g.joints {
		out = append(out, modelInputs[g.offsets[i]:g.offsets[i]+len(j.DoF())]...)
	}
	return out
}

// Insert returns a copy of modelInputs with the group variables replaced by groupInputs.
func (g *JointGroup) Insert(modelInputs, groupInputs []Input) []Input {
	out := copyInputs(modelInputs)
	idx := 0
	for i, j := range g.joints {
		dof := len(j.DoF())
		copy(out[g.offsets[i]:g.offsets[i]+dof], groupInputs[idx:idx+dof])
		idx += dof
	}
	return out
}

// split cuts group inputs into per-joint slices.
func (g *JointGroup) split(groupInputs []Input) [][]Input {
	parts := make([][]Input, 0, len(g.joints))
	idx := 0
	for _, j := range g.joints {
		dof := len(j.DoF())
		parts = append(parts, groupInputs[idx:idx+dof])
		idx += dof
	}
	return parts
}

// JointDistances returns, for each joint of the group, the distance between two group input vectors.
func (g *JointGroup) JointDistances(from, to []Input) ([]JointDistance, error) {
	if len(from) != len(g.limits) || len(to) != len(g.limits) {
		return nil, NewIncorrectDoFError(len(to), len(g.limits))
	}
	a := g.split(from)
	b := g.split(to)
	out := make([]JointDistance, len(g.joints))
	for i, j := range g.joints {
		out[i] = j.Distance(a[i], b[i])
	}
	return out, nil
}

// Distance returns the sum over the joints of the group of the per-joint distances between two group input vectors.
func (g *JointGroup) Distance(from, to []Input) (float64, error) {
	dists, err := g.JointDistances(from, to)
	if err != nil {
		return 0, err
	}
	return lo.SumBy(dists, func(d JointDistance) float64 { return d.Total() }), nil
}

// Families returns the family of each group variable.
func (g *JointGroup) Families() []JointFamily {
	return lo.FlatMap(g.joints, func(j *Joint, _ int) []JointFamily { return j.Families() })
}

// MaxExtents returns the largest distance each group variable can travel.
func (g *JointGroup) MaxExtents() []float64 {
	return lo.FlatMap(g.joints, func(j *Joint, _ int) []float64 { return j.MaxExtents() })
}

// EnforceBounds clamps and wraps group inputs into the joint limits.
func (g *JointGroup) EnforceBounds(groupInputs []Input) []Input {
	out := make([]Input, 0, len(groupInputs))
	for i, part := range g.split(groupInputs) {
		out = append(out, g.joints[i].EnforceBounds(part)...)
	}
	return out
}

// SatisfiesBounds reports whether every group variable lies within its joint limits.
func (g *JointGroup) SatisfiesBounds(groupInputs []Input) bool {
	if len(groupInputs) != len(g.limits) {
		return false
	}
	for i, part := range g.split(groupInputs) {
		if !g.joints[i].SatisfiesBounds(part) {
			return false
		}
	}
	return true
}
