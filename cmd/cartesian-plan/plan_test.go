package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"go.uber.org/zap"
	"go.viam.com/test"

	"go.viam.com/cartpath/logging"
	"go.viam.com/cartpath/motionplan/cartesian"
	"go.viam.com/cartpath/motionplan/ik"
	"go.viam.com/cartpath/utils"
)

func testSolver(logger logging.Logger) ik.Solver {
	return ik.CreateJacobianIKSolver(logger, 2, true, 1)
}

func TestPlanFiles(t *testing.T) {
	files := []string{
		utils.ResolveFile("motionplan/cartesian/testdata/gantry_translation.json"),
		utils.ResolveFile("motionplan/cartesian/testdata/gantry_waypoints.json"),
	}
	logger, logs := logging.NewObservedTestLogger(t)
	outcomes, err := planFiles(context.Background(), logger, testSolver(logger), files, 2)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, logs.FilterField(zap.String("request", "square")).Len(), test.ShouldBeGreaterThan, 0)
	test.That(t, len(outcomes), test.ShouldEqual, 2)
	test.That(t, outcomes[0].cfg.Name, test.ShouldEqual, "gantry_translation.json")
	test.That(t, outcomes[1].cfg.Name, test.ShouldEqual, "square")
	test.That(t, outcomes[0].result.StopReason, test.ShouldEqual, cartesian.StopComplete)
	test.That(t, outcomes[1].result.Fraction, test.ShouldBeGreaterThan, 0)

	summary := summaryTable(outcomes)
	test.That(t, summary, test.ShouldContainSubstring, "gantry_translation.json")
	test.That(t, summary, test.ShouldContainSubstring, "square")
	test.That(t, summary, test.ShouldContainSubstring, "complete")

	dir := t.TempDir()
	test.That(t, writeOutcome(dir, outcomes[0]), test.ShouldBeNil)
	_, err = os.Stat(filepath.Join(dir, "gantry_translation.png"))
	test.That(t, err, test.ShouldBeNil)

	// the written trajectory reads back for check-jumps
	trajCfg, err := cartesian.LoadTrajectoryConfig(filepath.Join(dir, "gantry_translation.trajectory.json"))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(trajCfg.Waypoints), test.ShouldEqual, len(outcomes[0].result.Trajectory))
	report, err := checkJumps(trajCfg, cartesian.NewAbsoluteJumpThreshold(0.5, 0.1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.kept, test.ShouldEqual, report.total)
	test.That(t, report.String(), test.ShouldContainSubstring, "no joint-space jump")
}

func TestPlanFilesError(t *testing.T) {
	files := []string{
		utils.ResolveFile("motionplan/cartesian/testdata/gantry_translation.json"),
		utils.ResolveFile("motionplan/cartesian/testdata/bad_request.json"),
	}
	logger := logging.NewTestLogger(t)
	_, err := planFiles(context.Background(), logger, testSolver(logger), files, 1)
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, "bad_request.json")
}

func TestCheckJumps(t *testing.T) {
	dir := t.TempDir()
	trajFile := filepath.Join(dir, "jumpy.json")
	model := utils.ResolveFile("referenceframe/testdata/two_joint.json")
	cfg := &cartesian.TrajectoryConfig{
		Model:     model,
		Waypoints: [][]float64{{0, 0}, {0, 0}, {0, 0}, {0.01, 0.01}, {1.02, 0.01}, {1.02, 1.02}, {1.02, 1.02}},
	}
	f, err := os.Create(trajFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, writeJSON(f, cfg), test.ShouldBeNil)

	loaded, err := cartesian.LoadTrajectoryConfig(trajFile)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, loaded.Name, test.ShouldEqual, "jumpy.json")

	report, err := checkJumps(loaded, cartesian.NewAbsoluteJumpThreshold(1, 1))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, report.total, test.ShouldEqual, 7)
	test.That(t, report.kept, test.ShouldEqual, 4)
	test.That(t, len(report.original), test.ShouldEqual, 7)
	test.That(t, report.fraction, test.ShouldAlmostEqual, 4./7.)
	test.That(t, report.String(), test.ShouldContainSubstring, "jump between waypoints 3 and 4")

	plotFile := filepath.Join(dir, "jumpy.png")
	test.That(t, plotTrajectory(plotFile, report.String(), report.group, report.original, report.kept), test.ShouldBeNil)
	_, err = os.Stat(plotFile)
	test.That(t, err, test.ShouldBeNil)

	_, err = checkJumps(loaded, cartesian.JumpThreshold{Factor: -1})
	test.That(t, err, test.ShouldNotBeNil)

	err = plotTrajectory(plotFile, "empty", report.group, cartesian.Trajectory{}, -1)
	test.That(t, err, test.ShouldBeError, cartesian.ErrEmptyTrajectory)
}
