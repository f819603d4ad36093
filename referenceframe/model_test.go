package referenceframe

import (
	"math"
	"testing"

	"github.com/golang/geo/r3"
	"github.com/google/go-cmp/cmp"
	"go.viam.com/test"

	"go.viam.com/cartpath/spatialmath"
	"go.viam.com/cartpath/utils"
)

func TestParseJSONFile(t *testing.T) {
	goodFiles := []string{
		"referenceframe/testdata/two_joint.json",
		"referenceframe/testdata/gantry6.json",
		"referenceframe/testdata/ur5e.json",
	}
	for _, f := range goodFiles {
		t.Run(f, func(t *testing.T) {
			model, err := ParseModelJSONFile(utils.ResolveFile(f), "")
			test.That(t, err, test.ShouldBeNil)
			test.That(t, len(model.GroupNames()), test.ShouldBeGreaterThan, 0)
			test.That(t, model.ModelConfig().OriginalFile.Extension, test.ShouldEqual, "json")

			again, err := ParseModelJSONFile(utils.ResolveFile(f), "")
			test.That(t, err, test.ShouldBeNil)
			test.That(t, model.AlmostEquals(again), test.ShouldBeTrue)
		})
	}

	_, err := ParseModelJSONFile(utils.ResolveFile("referenceframe/testdata/kinematicsloop.json"), "")
	test.That(t, err, test.ShouldBeError, ErrCircularReference)

	_, err = UnmarshalModelJSON(nil, "")
	test.That(t, err, test.ShouldBeError, ErrNoModelInformation)

	_, err = UnmarshalModelJSON([]byte(`{"name": "bad", "links": [{"id": "world"}]}`), "")
	test.That(t, err, test.ShouldBeError, NewReservedWordError("link", World))

	_, err = UnmarshalModelJSON([]byte(`{"name": "bad", "joints": [{"id": "j", "type": "helical", "parent": "world"}]}`), "")
	test.That(t, err, test.ShouldBeError, NewUnsupportedJointTypeError("helical"))

	_, err = UnmarshalModelJSON([]byte(`{
		"name": "forked",
		"links": [{"id": "a"}, {"id": "b", "parent": "a"}, {"id": "c", "parent": "a"}]
	}`), "")
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, ErrNeedOneEndEffector.Error())
}

func TestTwoJointModel(t *testing.T) {
	model, err := ParseModelJSONFile(utils.ResolveFile("referenceframe/testdata/two_joint.json"), "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.LinkNames(), test.ShouldResemble, []string{"a", "a-b-joint", "b", "b-c-joint", "c"})

	group, err := model.Group("group")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, group.JointNames(), test.ShouldResemble, []string{"a-b-joint", "b-c-joint"})
	test.That(t, group.Families(), test.ShouldResemble, []JointFamily{RevoluteFamily, PrismaticFamily})

	continuous := group.Joints()[0]
	test.That(t, continuous.Type(), test.ShouldEqual, ContinuousJoint)
	test.That(t, math.IsInf(continuous.DoF()[0].Max, 1), test.ShouldBeTrue)

	prismatic := group.Joints()[1]
	test.That(t, prismatic.DoF(), test.ShouldResemble, []Limit{{-5, 5}})

	state, err := NewState(model, FloatsToInputs([]float64{math.Pi / 2, 0.3}))
	test.That(t, err, test.ShouldBeNil)
	pose, err := state.LinkPose("c")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 0, Y: 0.5, Z: 0}, 1e-9), test.ShouldBeTrue)

	_, err = state.LinkPose("d")
	test.That(t, err, test.ShouldBeError, NewLinkNotInModelError("d", "two_joint"))

	_, err = model.Group("arm")
	test.That(t, err, test.ShouldBeError, NewGroupNotInModelError("arm", "two_joint"))
}

func TestJointDistances(t *testing.T) {
	continuous, err := NewJoint("c", ContinuousJoint, r3.Vector{Z: 1}, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	d := continuous.Distance(FloatsToInputs([]float64{3}), FloatsToInputs([]float64{-3}))
	test.That(t, d.Revolute, test.ShouldAlmostEqual, 2*math.Pi-6)
	test.That(t, d.Prismatic, test.ShouldEqual, 0.)

	revolute, err := NewJoint("r", RevoluteJoint, r3.Vector{Z: 1}, []Limit{{-4, 4}}, nil)
	test.That(t, err, test.ShouldBeNil)
	d = revolute.Distance(FloatsToInputs([]float64{3}), FloatsToInputs([]float64{-3}))
	test.That(t, d.Revolute, test.ShouldAlmostEqual, 6.)

	planar, err := NewJoint("p", PlanarJoint, r3.Vector{}, []Limit{{-1, 1}, {-1, 1}, {0, 0}}, nil)
	test.That(t, err, test.ShouldBeNil)
	d = planar.Distance(FloatsToInputs([]float64{0, 0, 0.1}), FloatsToInputs([]float64{0.3, 0.4, -0.1}))
	test.That(t, d.Prismatic, test.ShouldAlmostEqual, 0.5)
	test.That(t, d.Revolute, test.ShouldAlmostEqual, 0.2)
	test.That(t, d.Total(), test.ShouldAlmostEqual, 0.7)
	// the angular variable of a planar joint is never bounded
	test.That(t, math.IsInf(planar.DoF()[2].Min, -1), test.ShouldBeTrue)

	floating, err := NewJoint("f", FloatingJoint, r3.Vector{}, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	d = floating.Distance(
		FloatsToInputs([]float64{0, 0, 0, 0, 0, 0}),
		FloatsToInputs([]float64{1, 2, 2, 0, 0, 0.5}),
	)
	test.That(t, d.Prismatic, test.ShouldAlmostEqual, 3.)
	test.That(t, d.Revolute, test.ShouldAlmostEqual, 0.5)

	fixed, err := NewJoint("x", FixedJoint, r3.Vector{}, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, fixed.DoF(), test.ShouldBeEmpty)
	test.That(t, fixed.Distance(nil, nil), test.ShouldResemble, JointDistance{})

	_, err = NewJoint("bad", RevoluteJoint, r3.Vector{}, nil, nil)
	test.That(t, err, test.ShouldNotBeNil)
	_, err = NewJoint("bad", "spherical", r3.Vector{Z: 1}, nil, nil)
	test.That(t, err, test.ShouldBeError, NewUnsupportedJointTypeError("spherical"))
}

func TestEnforceBounds(t *testing.T) {
	continuous, err := NewJoint("c", ContinuousJoint, r3.Vector{Z: 1}, nil, nil)
	test.That(t, err, test.ShouldBeNil)
	wrapped := continuous.EnforceBounds(FloatsToInputs([]float64{3 * math.Pi / 2}))
	test.That(t, wrapped[0].Value, test.ShouldAlmostEqual, -math.Pi/2)
	test.That(t, continuous.MaxExtents(), test.ShouldResemble, []float64{2 * math.Pi})

	prismatic, err := NewJoint("p", PrismaticJoint, r3.Vector{X: 2}, []Limit{{-0.5, 0.5}}, nil)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, prismatic.Axis(), test.ShouldResemble, r3.Vector{X: 1})
	clamped := prismatic.EnforceBounds(FloatsToInputs([]float64{0.7}))
	test.That(t, clamped[0].Value, test.ShouldEqual, 0.5)
	test.That(t, prismatic.MaxExtents(), test.ShouldResemble, []float64{1.})

	_, err = prismatic.Transform(FloatsToInputs([]float64{0.7}))
	test.That(t, err, test.ShouldNotBeNil)
	test.That(t, err.Error(), test.ShouldContainSubstring, OOBErrString)
}

func TestDefaultState(t *testing.T) {
	j1, err := NewJoint("j1", RevoluteJoint, r3.Vector{Z: 1}, []Limit{{-1, 1}}, nil)
	test.That(t, err, test.ShouldBeNil)
	j2, err := NewJoint("j2", PrismaticJoint, r3.Vector{Z: 1}, []Limit{{0.2, 0.6}}, nil)
	test.That(t, err, test.ShouldBeNil)
	link := NewZeroStaticFrame("link")
	model, err := NewSerialModel("m", []Frame{j1, link, j2})
	test.That(t, err, test.ShouldBeNil)

	state := NewDefaultState(model)
	test.That(t, InputsToFloats(state.Inputs()), test.ShouldResemble, []float64{0, 0.4})
	test.That(t, model.AreInputsValid(state.Inputs()), test.ShouldBeTrue)
	test.That(t, model.AreInputsValid(FloatsToInputs([]float64{0, 0.7})), test.ShouldBeFalse)
	test.That(t, model.AreInputsValid(FloatsToInputs([]float64{0})), test.ShouldBeFalse)

	group, err := model.Group("m")
	test.That(t, err, test.ShouldBeNil)
	moved, err := state.WithGroupInputs(group, FloatsToInputs([]float64{0.5, 0.3}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, InputsToFloats(moved.Inputs()), test.ShouldResemble, []float64{0.5, 0.3})
	// the original state is untouched
	test.That(t, InputsToFloats(state.Inputs()), test.ShouldResemble, []float64{0, 0.4})
	test.That(t, state.Equal(NewDefaultState(model)), test.ShouldBeTrue)
	test.That(t, state.Equal(moved), test.ShouldBeFalse)

	dist, err := state.Distance(moved, group)
	test.That(t, err, test.ShouldBeNil)
	test.That(t, dist, test.ShouldAlmostEqual, 0.6)

	other, err := NewSerialModel("other", []Frame{j1})
	test.That(t, err, test.ShouldBeNil)
	otherGroup, err := other.Group("other")
	test.That(t, err, test.ShouldBeNil)
	_, err = state.GroupInputs(otherGroup)
	test.That(t, err, test.ShouldBeError, NewModelMismatchError("m", "other"))

	_, err = NewState(model, FloatsToInputs([]float64{1}))
	test.That(t, err, test.ShouldBeError, NewIncorrectDoFError(1, 2))
}

func TestGroupSubset(t *testing.T) {
	model, err := ParseModelJSONFile(utils.ResolveFile("referenceframe/testdata/gantry6.json"), "")
	test.That(t, err, test.ShouldBeNil)
	xyz, err := model.Group("xyz")
	test.That(t, err, test.ShouldBeNil)

	full := FloatsToInputs([]float64{0.1, 0.2, 0.3, 0.4, 0.5, 0.6})
	test.That(t, InputsToFloats(xyz.Extract(full)), test.ShouldResemble, []float64{0.1, 0.2, 0.3})

	inserted := xyz.Insert(full, FloatsToInputs([]float64{-0.1, -0.2, -0.3}))
	if diff := cmp.Diff([]float64{-0.1, -0.2, -0.3, 0.4, 0.5, 0.6}, InputsToFloats(inserted)); diff != "" {
		t.Fatalf("unexpected inputs (-want +got):\n%s", diff)
	}

	base, err := NewState(model, full)
	test.That(t, err, test.ShouldBeNil)
	frame, err := NewGroupLinkFrame(base, xyz, "tool")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, len(frame.DoF()), test.ShouldEqual, 3)

	viaFrame, err := frame.Transform(FloatsToInputs([]float64{-0.1, -0.2, -0.3}))
	test.That(t, err, test.ShouldBeNil)
	viaModel, err := model.LinkPose(inserted, "tool")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.PoseAlmostEqual(viaFrame, viaModel), test.ShouldBeTrue)
}

func TestURDF(t *testing.T) {
	model, err := ParseURDFFile(utils.ResolveFile("referenceframe/testdata/planar_arm.urdf"), "")
	test.That(t, err, test.ShouldBeNil)
	test.That(t, model.Name(), test.ShouldEqual, "planar_arm")
	test.That(t, len(model.DoF()), test.ShouldEqual, 2)
	test.That(t, model.DoF()[1].Max, test.ShouldAlmostEqual, 2.5)

	pose, err := model.Transform(FloatsToInputs([]float64{0, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 0.9, Y: 0, Z: 0.2}, 1e-9), test.ShouldBeTrue)
	test.That(t, pose.Orientation().EulerAngles().Yaw, test.ShouldAlmostEqual, math.Pi/2)

	pose, err = model.Transform(FloatsToInputs([]float64{math.Pi / 2, 0}))
	test.That(t, err, test.ShouldBeNil)
	test.That(t, spatialmath.R3VectorAlmostEqual(pose.Point(), r3.Vector{X: 0, Y: 0.9, Z: 0.2}, 1e-9), test.ShouldBeTrue)

	_, err = ConvertURDFToConfig(nil, "")
	test.That(t, err, test.ShouldBeError, ErrNoModelInformation)
}
