//go:build windows || no_cgo

package ik

import (
	"context"

	"github.com/pkg/errors"

	"go.viam.com/cartpath/logging"
	"go.viam.com/cartpath/referenceframe"
	"go.viam.com/cartpath/spatialmath"
)

var errNloptUnavailable = errors.New("nlopt is not supported on this build")

// CreateNloptIKSolver is not supported on no_cgo or windows builds.
func CreateNloptIKSolver(logger logging.Logger, restarts int, fromSeed bool, rseed int64) (*NloptIK, error) {
	return nil, errNloptUnavailable
}

// NloptIK mimics the type in the cgo compiled code.
type NloptIK struct{}

// Solve refuses to solve problems without cgo.
func (ik *NloptIK) Solve(
	ctx context.Context,
	frame referenceframe.Frame,
	goal spatialmath.Pose,
	seed []referenceframe.Input,
	opts *Options,
) ([]referenceframe.Input, error) {
	return nil, errNloptUnavailable
}
