package spatialmath

import (
	"encoding/json"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/num/quat"
)

// OrientationType defines what orientation representations are known.
type OrientationType string

// The set of allowed representations for orientation.
const (
	NoOrientationType            = OrientationType("")
	OrientationVectorDegreesType = OrientationType("ov_degrees")
	OrientationVectorRadiansType = OrientationType("ov_radians")
	EulerAnglesType              = OrientationType("euler_angles")
	AxisAnglesType               = OrientationType("axis_angles")
	QuaternionType               = OrientationType("quaternion")
)

// TranslationConfig is the json configuration of a 3D translation, in meters.
type TranslationConfig struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewTranslationConfig creates a TranslationConfig from a vector.
func NewTranslationConfig(vec r3.Vector) *TranslationConfig {
	return &TranslationConfig{X: vec.X, Y: vec.Y, Z: vec.Z}
}

// ParseConfig converts a TranslationConfig into a vector.
func (t *TranslationConfig) ParseConfig() r3.Vector {
	return r3.Vector{X: t.X, Y: t.Y, Z: t.Z}
}

// OrientationConfig holds the underlying type of orientation, and the value.
type OrientationConfig struct {
	Type  OrientationType `json:"type"`
	Value json.RawMessage `json:"value,omitempty"`
}

type quaternionJSON struct {
	W float64 `json:"w"`
	X float64 `json:"x"`
	Y float64 `json:"y"`
	Z float64 `json:"z"`
}

// NewOrientationConfig encodes the orientation interface to something serializable and human readable.
func NewOrientationConfig(o Orientation) (*OrientationConfig, error) {
	var oType OrientationType
	var value interface{}
	switch v := o.(type) {
	case *R4AA:
		oType, value = AxisAnglesType, v
	case *OrientationVector:
		oType, value = OrientationVectorRadiansType, v
	case *OrientationVectorDegrees:
		oType, value = OrientationVectorDegreesType, v
	case *EulerAngles:
		oType, value = EulerAnglesType, v
	default:
		q := o.Quaternion()
		oType, value = QuaternionType, quaternionJSON{W: q.Real, X: q.Imag, Y: q.Jmag, Z: q.Kmag}
	}
	bytes, err := json.Marshal(value)
	if err != nil {
		return nil, err
	}
	return &OrientationConfig{Type: oType, Value: bytes}, nil
}

// ParseConfig will use the Type in OrientationConfig and convert into the correct struct that implements Orientation.
func (config *OrientationConfig) ParseConfig() (Orientation, error) {
	var err error
	switch config.Type {
	case NoOrientationType:
		return NewZeroOrientation(), nil
	case OrientationVectorDegreesType:
		var o OrientationVectorDegrees
		if err = json.Unmarshal(config.Value, &o); err != nil {
			return nil, err
		}
		ov := o.Radians()
		ov.Normalize()
		return ov.Degrees(), nil
	case OrientationVectorRadiansType:
		var o OrientationVector
		if err = json.Unmarshal(config.Value, &o); err != nil {
			return nil, err
		}
		o.Normalize()
		return &o, nil
	case AxisAnglesType:
		var o R4AA
		if err = json.Unmarshal(config.Value, &o); err != nil {
			return nil, err
		}
		o.Normalize()
		return &o, nil
	case EulerAnglesType:
		var o EulerAngles
		if err = json.Unmarshal(config.Value, &o); err != nil {
			return nil, err
		}
		return &o, nil
	case QuaternionType:
		var o quaternionJSON
		if err = json.Unmarshal(config.Value, &o); err != nil {
			return nil, err
		}
		q := Quaternion(Normalize(quat.Number{Real: o.W, Imag: o.X, Jmag: o.Y, Kmag: o.Z}))
		return &q, nil
	default:
		return nil, newOrientationTypeError(config.Type)
	}
}

// PoseConfig encodes a pose as a translation and an orientation.
type PoseConfig struct {
	Translation *TranslationConfig `json:"translation,omitempty"`
	Orientation *OrientationConfig `json:"orientation,omitempty"`
}

// NewPoseConfig encodes a pose for serialization.
func NewPoseConfig(p Pose) (*PoseConfig, error) {
	orient, err := NewOrientationConfig(p.Orientation())
	if err != nil {
		return nil, err
	}
	return &PoseConfig{Translation: NewTranslationConfig(p.Point()), Orientation: orient}, nil
}

// ParseConfig converts a PoseConfig into a Pose.
func (config *PoseConfig) ParseConfig() (Pose, error) {
	var pt r3.Vector
	if config.Translation != nil {
		pt = config.Translation.ParseConfig()
	}
	if config.Orientation == nil {
		return NewPoseFromPoint(pt), nil
	}
	o, err := config.Orientation.ParseConfig()
	if err != nil {
		return nil, errors.Wrap(err, "cannot parse pose orientation")
	}
	return NewPose(pt, o), nil
}
