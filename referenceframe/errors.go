package referenceframe

import (
	"github.com/pkg/errors"
)

// ErrCircularReference is an error indicating that a circular path exists somewhere between the end effector and the world.
var ErrCircularReference = errors.New("infinite loop finding path from end effector to world")

// ErrNeedOneEndEffector is an error indicating that a model does not have exactly one end effector.
var ErrNeedOneEndEffector = errors.New("need exactly one end effector")

// ErrNoModelInformation is used when there is no model information.
var ErrNoModelInformation = errors.New("no model information")

// ErrNilModel is returned when a state or group is built without a model.
var ErrNilModel = errors.New("model is nil")

// NewIncorrectDoFError returns an error indicating that the length of an input slice does not match the DoF of a frame.
func NewIncorrectDoFError(actual, expected int) error {
	return errors.Errorf("number of inputs does not match frame DoF, expected %d but got %d", expected, actual)
}

// NewUnsupportedJointTypeError returns an error indicating that a given joint type is not supported by current model parsing.
func NewUnsupportedJointTypeError(jointType string) error {
	return errors.Errorf("unsupported joint type detected: %q", jointType)
}

// NewFrameNotInListOfTransformsError returns an error indicating that a frame of the given name
// is missing from the provided list of transforms.
func NewFrameNotInListOfTransformsError(frameName string) error {
	return errors.Errorf("frame named '%s' not in the list of transforms", frameName)
}

// NewParentFrameNotInMapOfParentsError returns an error indicating that a parent from of the given name
// is missing from the provided map of parents.
func NewParentFrameNotInMapOfParentsError(parentFrameName string) error {
	return errors.Errorf("parent frame named '%s' not in the map of parents", parentFrameName)
}

// NewReservedWordError returns an error indicating that the name of a link or joint is a reserved word.
func NewReservedWordError(configType, reservedWord string) error {
	return errors.Errorf("reserved word: cannot name a %s '%s'", configType, reservedWord)
}

// NewLinkNotInModelError returns an error indicating that the named link does not exist in the model.
func NewLinkNotInModelError(link, model string) error {
	return errors.Errorf("link %q not found in model %q", link, model)
}

// NewJointNotInModelError returns an error indicating that the named joint does not exist in the model.
func NewJointNotInModelError(joint, model string) error {
	return errors.Errorf("joint %q not found in model %q", joint, model)
}

// NewGroupNotInModelError returns an error indicating that the named joint group does not exist in the model.
func NewGroupNotInModelError(group, model string) error {
	return errors.Errorf("joint group %q not found in model %q", group, model)
}

// NewModelMismatchError returns an error indicating that a state or group belongs to a different model.
func NewModelMismatchError(expected, actual string) error {
	return errors.Errorf("model mismatch: expected %q but got %q", expected, actual)
}
