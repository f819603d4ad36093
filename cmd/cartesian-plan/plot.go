package main

import (
	"image/color"
	"math"

	"github.com/pkg/errors"
	"gonum.org/v1/plot"
	"gonum.org/v1/plot/plotter"
	"gonum.org/v1/plot/plotutil"
	"gonum.org/v1/plot/vg"

	"go.viam.com/cartpath/motionplan/cartesian"
	"go.viam.com/cartpath/referenceframe"
)

var cutColor = color.RGBA{R: 200, A: 255}

// plotTrajectory draws every group variable against the waypoint index. When cut is positive a dashed line is
// drawn between waypoints cut-1 and cut.
func plotTrajectory(filename, title string, group *referenceframe.JointGroup, traj cartesian.Trajectory, cut int) error {
	inputs, err := traj.GroupInputs(group)
	if err != nil {
		return err
	}
	if len(inputs) == 0 {
		return cartesian.ErrEmptyTrajectory
	}

	p := plot.New()
	p.Title.Text = title
	p.X.Label.Text = "Waypoint"
	p.Y.Label.Text = "Value (rad or m)"

	minY, maxY := math.Inf(1), math.Inf(-1)
	for v, name := range cartesian.GroupVariableNames(group) {
		pts := make(plotter.XYs, len(inputs))
		for i, in := range inputs {
			pts[i] = plotter.XY{X: float64(i), Y: in[v].Value}
			minY = math.Min(minY, in[v].Value)
			maxY = math.Max(maxY, in[v].Value)
		}
		line, err := plotter.NewLine(pts)
		if err != nil {
			return errors.Wrap(err, name)
		}
		line.Color = plotutil.Color(v)
		line.Width = vg.Points(1)
		p.Add(line)
		p.Legend.Add(name, line)
	}

	if cut > 0 {
		x := float64(cut) - 0.5
		cutLine, err := plotter.NewLine(plotter.XYs{{X: x, Y: minY}, {X: x, Y: maxY}})
		if err != nil {
			return err
		}
		cutLine.Color = cutColor
		cutLine.Dashes = []vg.Length{vg.Points(4), vg.Points(2)}
		p.Add(cutLine)
		p.Legend.Add("cut", cutLine)
	}

	return p.Save(8*vg.Inch, 4*vg.Inch, filename)
}
