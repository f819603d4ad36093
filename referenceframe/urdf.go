package referenceframe

import (
	"encoding/xml"
	"os"

	"github.com/golang/geo/r3"
	"github.com/pkg/errors"

	"go.viam.com/cartpath/spatialmath"
	"go.viam.com/cartpath/utils"
)

// URDFConfig represents all supported fields in a Universal Robot Description Format (URDF) file.
type URDFConfig struct {
	XMLName xml.Name    `xml:"robot"`
	Name    string      `xml:"name,attr"`
	Links   []URDFLink  `xml:"link"`
	Joints  []URDFJoint `xml:"joint"`
}

// URDFLink is a struct which details the XML used in a URDF link element.
type URDFLink struct {
	XMLName xml.Name `xml:"link"`
	Name    string   `xml:"name,attr"`
}

// URDFLimit is the limit element of a URDF joint. Translation limits are in meters, revolute limits are in radians.
type URDFLimit struct {
	XMLName xml.Name `xml:"limit"`
	Lower   float64  `xml:"lower,attr"`
	Upper   float64  `xml:"upper,attr"`
}

// URDFFrame references a link by name.
type URDFFrame struct {
	Link string `xml:"link,attr"`
}

// URDFPose is the origin element of a URDF joint.
type URDFPose struct {
	XYZ string `xml:"xyz,attr"`
	RPY string `xml:"rpy,attr"`
}

// URDFAxis is the axis element of a URDF joint.
type URDFAxis struct {
	XYZ string `xml:"xyz,attr"`
}

// URDFJoint is a struct which details the XML used in a URDF joint element.
type URDFJoint struct {
	XMLName xml.Name   `xml:"joint"`
	Name    string     `xml:"name,attr"`
	Type    string     `xml:"type,attr"`
	Parent  URDFFrame  `xml:"parent"`
	Child   URDFFrame  `xml:"child"`
	Origin  *URDFPose  `xml:"origin,omitempty"`
	Axis    *URDFAxis  `xml:"axis,omitempty"`
	Limit   *URDFLimit `xml:"limit,omitempty"`
}

// Parse converts the origin into a pose. Missing attributes default to zero.
func (p *URDFPose) Parse() (spatialmath.Pose, error) {
	if p == nil {
		return spatialmath.NewZeroPose(), nil
	}
	xyz, err := parseTriple(p.XYZ, "xyz")
	if err != nil {
		return nil, err
	}
	rpy, err := parseTriple(p.RPY, "rpy")
	if err != nil {
		return nil, err
	}
	return spatialmath.NewPose(
		r3.Vector{X: xyz[0], Y: xyz[1], Z: xyz[2]},
		&spatialmath.EulerAngles{Roll: rpy[0], Pitch: rpy[1], Yaw: rpy[2]},
	), nil
}

// Parse converts the axis into a JSON axis config. URDF joints without an axis rotate about X.
func (a *URDFAxis) Parse() (AxisConfig, error) {
	if a == nil {
		return AxisConfig{X: 1}, nil
	}
	xyz, err := parseTriple(a.XYZ, "axis")
	if err != nil {
		return AxisConfig{}, err
	}
	return AxisConfig{X: xyz[0], Y: xyz[1], Z: xyz[2]}, nil
}

func parseTriple(s, attr string) ([]float64, error) {
	if s == "" {
		return []float64{0, 0, 0}, nil
	}
	vals := utils.SpaceDelimitedStringToFloatSlice(s)
	if len(vals) != 3 {
		return nil, errors.Errorf("URDF %s attribute %q must have 3 values", attr, s)
	}
	for _, v := range vals {
		if v != v {
			return nil, errors.Errorf("URDF %s attribute %q is not numeric", attr, s)
		}
	}
	return vals, nil
}

// ParseURDFFile will read a given file and parse the contained URDF XML data into a model.
func ParseURDFFile(filename, modelName string) (*SimpleModel, error) {
	//nolint:gosec
	xmlData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read URDF file")
	}

	mc, err := ConvertURDFToConfig(xmlData, modelName)
	if err != nil {
		return nil, err
	}
	mc.OriginalFile = &ModelFile{Bytes: xmlData, Extension: "urdf"}

	return mc.ParseConfig(modelName)
}

// ConvertURDFToConfig will transfer the given URDF XML data into an equivalent ModelConfigJSON. The origin of each
// URDF joint becomes the origin of the joint, applied before its motion, and child links are attached to their joint
// with no further offset.
func ConvertURDFToConfig(xmlData []byte, modelName string) (*ModelConfigJSON, error) {
	// empty data probably means that the read URDF has no actionable information
	if len(xmlData) == 0 {
		return nil, ErrNoModelInformation
	}

	urdf := &URDFConfig{}
	if err := xml.Unmarshal(xmlData, urdf); err != nil {
		return nil, errors.Wrap(err, "failed to convert URDF data to equivalent URDFConfig struct")
	}

	if modelName == "" {
		modelName = urdf.Name
	}
	mc := &ModelConfigJSON{Name: modelName, KinParamType: "SVA"}
	children := map[string]bool{}

	for _, jointElem := range urdf.Joints {
		if jointElem.Name == World {
			return nil, NewReservedWordError("joint", World)
		}
		children[jointElem.Child.Link] = true

		origin, err := jointElem.Origin.Parse()
		if err != nil {
			return nil, errors.Wrapf(err, "joint %q", jointElem.Name)
		}

		switch JointType(jointElem.Type) {
		case FixedJoint:
			// fixed joints become static links
			linkCfg := LinkConfig{
				ID:          jointElem.Name,
				Translation: *spatialmath.NewTranslationConfig(origin.Point()),
				Parent:      jointElem.Parent.Link,
			}
			linkCfg.Orientation, err = spatialmath.NewOrientationConfig(origin.Orientation().AxisAngles())
			if err != nil {
				return nil, err
			}
			mc.Links = append(mc.Links, linkCfg)
		case RevoluteJoint, ContinuousJoint, PrismaticJoint, PlanarJoint, FloatingJoint:
			originCfg, err := spatialmath.NewPoseConfig(origin)
			if err != nil {
				return nil, err
			}
			jointCfg := JointConfig{
				ID:     jointElem.Name,
				Type:   jointElem.Type,
				Parent: jointElem.Parent.Link,
				Origin: originCfg,
			}
			jointCfg.Axis, err = jointElem.Axis.Parse()
			if err != nil {
				return nil, errors.Wrapf(err, "joint %q", jointElem.Name)
			}
			if jointElem.Limit != nil {
				jointCfg.Min, jointCfg.Max = jointElem.Limit.Lower, jointElem.Limit.Upper
				if JointType(jointElem.Type) == RevoluteJoint {
					jointCfg.Min, jointCfg.Max = utils.RadToDeg(jointElem.Limit.Lower), utils.RadToDeg(jointElem.Limit.Upper)
				}
			}
			mc.Joints = append(mc.Joints, jointCfg)
		default:
			return nil, NewUnsupportedJointTypeError(jointElem.Type)
		}

		mc.Links = append(mc.Links, LinkConfig{ID: jointElem.Child.Link, Parent: jointElem.Name})
	}

	// links which are nobody's child hang off the world
	for _, linkElem := range urdf.Links {
		if linkElem.Name == World || children[linkElem.Name] {
			continue
		}
		mc.Links = append(mc.Links, LinkConfig{ID: linkElem.Name, Parent: World})
	}

	return mc, nil
}
