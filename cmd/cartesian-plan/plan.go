package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/urfave/cli/v2"
	"golang.org/x/sync/errgroup"

	"go.viam.com/cartpath/logging"
	"go.viam.com/cartpath/motionplan/cartesian"
	"go.viam.com/cartpath/motionplan/ik"
)

type planOutcome struct {
	cfg    *cartesian.PathRequestConfig
	req    *cartesian.PathRequest
	result *cartesian.PathResult
}

func planAction(c *cli.Context, logger logging.Logger) error {
	files := c.Args().Slice()
	if len(files) == 0 {
		return errors.New("no request files given")
	}
	solver, err := ik.CreateCombinedIKSolver(logger.Sublogger("ik"), c.Int(flagIKThreads))
	if err != nil {
		return err
	}

	outcomes, err := planFiles(c.Context, logger, solver, files, c.Int(flagParallel))
	if err != nil {
		return err
	}
	if _, err := fmt.Fprintln(c.App.Writer, summaryTable(outcomes)); err != nil {
		return err
	}
	if c.Bool(flagVerbose) {
		for _, o := range outcomes {
			if _, err := fmt.Fprintf(c.App.Writer, "%s\n%s\n", o.cfg.Name, o.result.Trajectory); err != nil {
				return err
			}
		}
	}
	if dir := c.String(flagOutDir); dir != "" {
		for _, o := range outcomes {
			if err := writeOutcome(dir, o); err != nil {
				return err
			}
		}
		logger.Infow("wrote trajectories", "dir", dir, "count", len(outcomes))
	}
	return nil
}

// planFiles plans every request file, at most parallel at once, sharing solver. The outcomes are in the order of
// files.
func planFiles(
	ctx context.Context,
	logger logging.Logger,
	solver ik.Solver,
	files []string,
	parallel int,
) ([]*planOutcome, error) {
	outcomes := make([]*planOutcome, len(files))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(max(1, parallel))
	for i, filename := range files {
		g.Go(func() error {
			o, err := planFile(ctx, logger, solver, filename)
			if err != nil {
				return errors.Wrap(err, filename)
			}
			outcomes[i] = o
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return outcomes, nil
}

func planFile(ctx context.Context, logger logging.Logger, solver ik.Solver, filename string) (*planOutcome, error) {
	cfg, err := cartesian.LoadPathRequestConfig(filename)
	if err != nil {
		return nil, err
	}
	req, opts, err := cfg.Build()
	if err != nil {
		return nil, err
	}
	planner, err := cartesian.NewPlanner(logger.WithFields("request", cfg.Name), solver)
	if err != nil {
		return nil, err
	}
	var result *cartesian.PathResult
	if cfg.HasWaypoints() {
		result, err = planner.ComputeCartesianPathWaypoints(ctx, req, opts)
	} else {
		result, err = planner.ComputeCartesianPath(ctx, req, opts)
	}
	if err != nil {
		return nil, err
	}
	return &planOutcome{cfg: cfg, req: req, result: result}, nil
}

func summaryTable(outcomes []*planOutcome) string {
	tw := table.NewWriter()
	tw.AppendHeader(table.Row{"Request", "Steps", "Waypoints", "Fraction", "Stop"})
	for _, o := range outcomes {
		tw.AppendRow(table.Row{
			o.cfg.Name,
			o.result.Steps,
			len(o.result.Trajectory),
			fmt.Sprintf("%.4f", o.result.Fraction),
			o.result.StopReason.String(),
		})
	}
	return tw.Render()
}

// writeOutcome writes the trajectory of o as a trajectory file, which check-jumps reads, and a plot of it.
func writeOutcome(dir string, o *planOutcome) error {
	if err := os.MkdirAll(dir, 0o750); err != nil {
		return err
	}
	base := filepath.Join(dir, strings.TrimSuffix(o.cfg.Name, filepath.Ext(o.cfg.Name)))

	trajCfg, err := cartesian.NewTrajectoryConfig(o.cfg.Name, o.cfg.Model, o.req.Group, o.result.Trajectory)
	if err != nil {
		return err
	}
	f, err := os.Create(base + ".trajectory.json")
	if err != nil {
		return err
	}
	if err := writeJSON(f, trajCfg); err != nil {
		return errors.Wrap(err, f.Name())
	}

	cut := -1
	if o.result.StopReason != cartesian.StopComplete {
		cut = len(o.result.Trajectory)
	}
	title := fmt.Sprintf("%s (%s, fraction %.2f)", o.cfg.Name, o.result.StopReason, o.result.Fraction)
	return plotTrajectory(base+".png", title, o.req.Group, o.result.Trajectory, cut)
}

func writeJSON(f *os.File, v interface{}) (err error) {
	defer func() {
		if closeErr := f.Close(); err == nil {
			err = closeErr
		}
	}()
	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
