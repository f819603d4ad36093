package main

import (
	"fmt"
	"slices"

	"github.com/fatih/color"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"

	"go.viam.com/cartpath/logging"
	"go.viam.com/cartpath/motionplan/cartesian"
	"go.viam.com/cartpath/referenceframe"
)

type jumpReport struct {
	name      string
	group     *referenceframe.JointGroup
	original  cartesian.Trajectory
	total     int
	kept      int
	fraction  float64
	threshold cartesian.JumpThreshold
}

func (r jumpReport) String() string {
	if r.kept == r.total {
		return fmt.Sprintf("%s: no joint-space jump in %d waypoints", r.name, r.total)
	}
	return fmt.Sprintf("%s: jump between waypoints %d and %d, kept %d of %d (fraction %.4f)",
		r.name, r.kept-1, r.kept, r.kept, r.total, r.fraction)
}

func (r jumpReport) color() *color.Color {
	if r.kept == r.total {
		return color.New(color.FgGreen)
	}
	return color.New(color.FgRed, color.Bold)
}

func checkJumpsAction(c *cli.Context, logger logging.Logger) error {
	if c.NArg() != 1 {
		return errors.New("expected one trajectory file")
	}
	cfg, err := cartesian.LoadTrajectoryConfig(c.Args().First())
	if err != nil {
		return err
	}

	threshold := cartesian.JumpThreshold{}
	if cfg.JumpThreshold != nil {
		threshold = *cfg.JumpThreshold
	}
	if c.IsSet(flagRevolute) {
		threshold.Revolute = c.Float64(flagRevolute)
	}
	if c.IsSet(flagPrismatic) {
		threshold.Prismatic = c.Float64(flagPrismatic)
	}
	if c.IsSet(flagFactor) {
		threshold.Factor = c.Float64(flagFactor)
	}

	report, err := checkJumps(cfg, threshold)
	if err != nil {
		return err
	}
	logger.Debugw("checked trajectory", "name", report.name, "threshold", report.threshold, "kept", report.kept)
	if _, err := report.color().Fprintln(c.App.Writer, report); err != nil {
		return err
	}
	if filename := c.String(flagPlot); filename != "" {
		cut := -1
		if report.kept < report.total {
			cut = report.kept
		}
		return plotTrajectory(filename, report.String(), report.group, report.original, cut)
	}
	return nil
}

// checkJumps runs the jump checks over the trajectory of cfg. The report keeps the trajectory before it was cut.
func checkJumps(cfg *cartesian.TrajectoryConfig, threshold cartesian.JumpThreshold) (jumpReport, error) {
	group, traj, err := cfg.Build()
	if err != nil {
		return jumpReport{}, err
	}
	original := slices.Clone(traj)
	fraction, err := cartesian.CheckJointSpaceJump(group, &traj, threshold)
	if err != nil {
		return jumpReport{}, err
	}
	return jumpReport{
		name:      cfg.Name,
		group:     group,
		original:  original,
		total:     len(original),
		kept:      len(traj),
		fraction:  fraction,
		threshold: threshold,
	}, nil
}
