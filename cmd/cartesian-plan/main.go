// Package main plans cartesian paths from request files and checks trajectories for joint-space jumps.
package main

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/urfave/cli/v2"

	"go.viam.com/cartpath/logging"
	"go.viam.com/cartpath/motionplan/cartesian"
	"go.viam.com/cartpath/motionplan/ik"
)

const (
	// Flags.
	flagDebug     = "debug"
	flagOutDir    = "out"
	flagPlot      = "plot"
	flagParallel  = "parallel"
	flagIKThreads = "ik-threads"
	flagVerbose   = "verbose"
	flagRevolute  = "revolute"
	flagPrismatic = "prismatic"
	flagFactor    = "factor"
)

func main() {
	var logger logging.Logger

	app := &cli.App{
		Name:  "cartesian-plan",
		Usage: "sample straight line end effector motions into joint trajectories",
		Flags: []cli.Flag{
			&cli.BoolFlag{
				Name:    flagDebug,
				Aliases: []string{"vvv"},
				Usage:   "enable debug logging",
			},
		},
		Before: func(c *cli.Context) error {
			if c.Bool(flagDebug) {
				logger = logging.NewDebugLogger("cartesian-plan")
			} else {
				logger = logging.NewLogger("cartesian-plan")
			}
			return nil
		},
		Commands: []*cli.Command{
			{
				Name:      "plan",
				Usage:     "plan every request file and print a summary",
				ArgsUsage: "<request.json>...",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  flagOutDir,
						Usage: "write each trajectory and its plot to `DIR`",
					},
					&cli.IntFlag{
						Name:  flagParallel,
						Value: 1,
						Usage: "requests planned at once",
					},
					&cli.IntFlag{
						Name:  flagIKThreads,
						Usage: "parallel IK solvers, 0 reads " + ik.ThreadsEnvVar,
					},
					&cli.BoolFlag{
						Name:  flagVerbose,
						Usage: "print every waypoint",
					},
				},
				Action: func(c *cli.Context) error {
					return planAction(c, logger)
				},
			},
			{
				Name:      "check-jumps",
				Usage:     "cut a trajectory file at its first joint-space jump",
				ArgsUsage: "<trajectory.json>",
				Flags: []cli.Flag{
					&cli.Float64Flag{
						Name:  flagRevolute,
						Usage: "absolute revolute threshold in radians, overrides the file",
					},
					&cli.Float64Flag{
						Name:  flagPrismatic,
						Usage: "absolute prismatic threshold in meters, overrides the file",
					},
					&cli.Float64Flag{
						Name:  flagFactor,
						Usage: "relative threshold factor, overrides the file",
					},
					&cli.StringFlag{
						Name:  flagPlot,
						Usage: "write a plot of the joint values with the cut marked to `FILE`",
					},
				},
				Action: func(c *cli.Context) error {
					return checkJumpsAction(c, logger)
				},
			},
			{
				Name:  "schema",
				Usage: "print the JSON schema of request files",
				Action: func(c *cli.Context) error {
					out, err := json.MarshalIndent(cartesian.PathRequestSchema(), "", "  ")
					if err != nil {
						return err
					}
					_, err = fmt.Fprintln(c.App.Writer, string(out))
					return err
				},
			},
		},
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
