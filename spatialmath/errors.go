package spatialmath

import "github.com/pkg/errors"

func newOrientationTypeError(oType OrientationType) error {
	return errors.Errorf("orientation type %s not recognized", oType)
}

func newRotationMatrixInputError(m []float64) error {
	return errors.Errorf("input slice has %d elements, need exactly 9", len(m))
}
