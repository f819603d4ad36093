package cartesian

import (
	"fmt"

	"github.com/jedib0t/go-pretty/v6/table"

	"go.viam.com/cartpath/referenceframe"
	"go.viam.com/cartpath/spatialmath"
)

// Trajectory is an ordered sequence of waypoints. The first waypoint is where the motion starts.
type Trajectory []*referenceframe.State

// truncate keeps the first keep waypoints and returns the fraction of the original waypoints kept.
func (t *Trajectory) truncate(keep int) float64 {
	total := len(*t)
	if total == 0 {
		return 1
	}
	clear((*t)[keep:])
	*t = (*t)[:keep]
	return float64(keep) / float64(total)
}

// GroupInputs returns the group variables of every waypoint.
func (t Trajectory) GroupInputs(group *referenceframe.JointGroup) ([][]referenceframe.Input, error) {
	out := make([][]referenceframe.Input, 0, len(t))
	for i, wp := range t {
		if wp == nil || group == nil || wp.Model() != group.Model() {
			return nil, newWaypointModelMismatchError(i)
		}
		inputs, err := wp.GroupInputs(group)
		if err != nil {
			return nil, err
		}
		out = append(out, inputs)
	}
	return out, nil
}

// LinkPoses returns the world pose of the link at every waypoint.
func (t Trajectory) LinkPoses(link string) ([]spatialmath.Pose, error) {
	out := make([]spatialmath.Pose, 0, len(t))
	for _, wp := range t {
		pose, err := wp.LinkPose(link)
		if err != nil {
			return nil, err
		}
		out = append(out, pose)
	}
	return out, nil
}

// String prints out a table of the trajectory with one row per waypoint and one column per model variable.
func (t Trajectory) String() string {
	if len(t) == 0 || t[0] == nil {
		return ""
	}
	tw := table.NewWriter()
	header := table.Row{"#"}
	for _, name := range VariableNames(t[0].Model()) {
		header = append(header, name)
	}
	tw.AppendHeader(header)
	for i, wp := range t {
		row := table.Row{fmt.Sprintf("%d", i)}
		for _, in := range wp.Inputs() {
			row = append(row, fmt.Sprintf("%.4f", in.Value))
		}
		tw.AppendRow(row)
	}
	return tw.Render()
}

// VariableNames labels each variable of the model with its joint name, suffixed by the variable index for joints
// with more than one variable.
func VariableNames(model referenceframe.Model) []string {
	return variableNames(model.Joints())
}

// GroupVariableNames labels each variable of the group like VariableNames.
func GroupVariableNames(group *referenceframe.JointGroup) []string {
	return variableNames(group.Joints())
}

func variableNames(joints []*referenceframe.Joint) []string {
	var names []string
	for _, j := range joints {
		dof := len(j.DoF())
		for i := 0; i < dof; i++ {
			if dof == 1 {
				names = append(names, j.Name())
				continue
			}
			names = append(names, fmt.Sprintf("%s[%d]", j.Name(), i))
		}
	}
	return names
}
