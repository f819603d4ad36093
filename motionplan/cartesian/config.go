package cartesian

import (
	"encoding/json"
	"os"
	"path/filepath"

	"github.com/invopop/jsonschema"
	"github.com/pkg/errors"
	"go.uber.org/multierr"

	"go.viam.com/cartpath/referenceframe"
	"go.viam.com/cartpath/spatialmath"
)

// PathRequestConfig is the json description of a cartesian path request.
type PathRequestConfig struct {
	Name string `json:"name,omitempty" jsonschema:"description=Label for the request in logs and output"`

	Model string `json:"model" jsonschema:"description=Kinematics file (.json or .urdf), relative to the request file"`
	Group string `json:"group,omitempty" jsonschema:"description=Joint group to move. May be omitted when the model has one group"`
	Link  string `json:"link" jsonschema:"description=Link whose motion is planned"`

	Start []float64 `json:"start,omitempty" jsonschema:"description=Every model variable in radians or meters. Defaults to the model default state"`

	Translation *spatialmath.TranslationConfig `json:"translation,omitempty"`
	Target      *spatialmath.PoseConfig        `json:"target,omitempty"`
	Waypoints   []*spatialmath.PoseConfig      `json:"waypoints,omitempty"`

	Offset *spatialmath.PoseConfig `json:"offset,omitempty" jsonschema:"description=Pose of the controlled point in the link frame"`

	Options map[string]interface{} `json:"options,omitempty" jsonschema:"description=Overrides of the path options by json name"`
}

// PathRequestSchema returns the JSON schema of PathRequestConfig. Fields without omitempty are required.
func PathRequestSchema() *jsonschema.Schema {
	return jsonschema.Reflect(&PathRequestConfig{})
}

// LoadPathRequestConfig reads a request file. A relative model path is made relative to the directory of the file.
func LoadPathRequestConfig(filename string) (*PathRequestConfig, error) {
	//nolint:gosec
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read request file")
	}
	cfg := &PathRequestConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal request file %s", filename)
	}
	if cfg.Model != "" && !filepath.IsAbs(cfg.Model) {
		cfg.Model = filepath.Join(filepath.Dir(filename), cfg.Model)
	}
	if cfg.Name == "" {
		cfg.Name = filepath.Base(filename)
	}
	return cfg, nil
}

// Validate returns every problem with the config that can be found without loading the model.
func (cfg *PathRequestConfig) Validate() error {
	var err error
	if cfg.Model == "" {
		err = multierr.Append(err, errors.New("request has no model"))
	}
	if cfg.Link == "" {
		err = multierr.Append(err, errors.New("request has no link"))
	}
	motions := 0
	for _, set := range []bool{cfg.Translation != nil, cfg.Target != nil, len(cfg.Waypoints) > 0} {
		if set {
			motions++
		}
	}
	if motions != 1 {
		err = multierr.Append(err, errors.New("request needs exactly one of translation, target or waypoints"))
	}
	return err
}

// HasWaypoints reports whether the request is a multi-waypoint request.
func (cfg *PathRequestConfig) HasWaypoints() bool {
	return len(cfg.Waypoints) > 0
}

// Build loads the model and turns the config into a request and its options.
func (cfg *PathRequestConfig) Build() (*PathRequest, *PathOptions, error) {
	if err := cfg.Validate(); err != nil {
		return nil, nil, err
	}
	model, err := referenceframe.ParseModelFile(cfg.Model, "")
	if err != nil {
		return nil, nil, err
	}

	req := &PathRequest{Link: cfg.Link}
	req.Group, err = modelGroup(model, cfg.Group)
	if err != nil {
		return nil, nil, err
	}
	req.Start = referenceframe.NewDefaultState(model)
	if len(cfg.Start) > 0 {
		req.Start, err = referenceframe.NewState(model, referenceframe.FloatsToInputs(cfg.Start))
		if err != nil {
			return nil, nil, errors.Wrap(err, "bad start")
		}
	}

	switch {
	case cfg.Translation != nil:
		t := cfg.Translation.ParseConfig()
		req.Translation = &t
	case cfg.Target != nil:
		if req.Target, err = cfg.Target.ParseConfig(); err != nil {
			return nil, nil, errors.Wrap(err, "bad target")
		}
	default:
		for i, wp := range cfg.Waypoints {
			pose, err := wp.ParseConfig()
			if err != nil {
				return nil, nil, errors.Wrapf(err, "bad waypoint %d", i)
			}
			req.Waypoints = append(req.Waypoints, pose)
		}
	}

	opts, err := NewPathOptionsFromExtra(cfg.Options)
	if err != nil {
		return nil, nil, err
	}
	if cfg.Offset != nil {
		if opts.Offset, err = cfg.Offset.ParseConfig(); err != nil {
			return nil, nil, errors.Wrap(err, "bad offset")
		}
	}
	return req, opts, nil
}

// modelGroup returns the named group, or the only group of the model when name is empty.
func modelGroup(model referenceframe.Model, name string) (*referenceframe.JointGroup, error) {
	if name != "" {
		return model.Group(name)
	}
	names := model.GroupNames()
	if len(names) != 1 {
		return nil, errors.Errorf("model %q has groups %v, one must be named", model.Name(), names)
	}
	return model.Group(names[0])
}

// TrajectoryConfig is the json description of a trajectory, one entry of every model variable per waypoint.
type TrajectoryConfig struct {
	Name          string         `json:"name,omitempty"`
	Model         string         `json:"model"`
	Group         string         `json:"group,omitempty"`
	Variables     []string       `json:"variables,omitempty"`
	Waypoints     [][]float64    `json:"waypoints"`
	JumpThreshold *JumpThreshold `json:"jump_threshold,omitempty"`
}

// NewTrajectoryConfig describes traj, whose model was loaded from modelFile.
func NewTrajectoryConfig(name, modelFile string, group *referenceframe.JointGroup, traj Trajectory) (*TrajectoryConfig, error) {
	if group == nil {
		return nil, ErrNilJointGroup
	}
	if abs, err := filepath.Abs(modelFile); err == nil {
		modelFile = abs
	}
	cfg := &TrajectoryConfig{
		Name:      name,
		Model:     modelFile,
		Group:     group.Name(),
		Variables: VariableNames(group.Model()),
		Waypoints: make([][]float64, 0, len(traj)),
	}
	for i, wp := range traj {
		if wp == nil || wp.Model() != group.Model() {
			return nil, newWaypointModelMismatchError(i)
		}
		cfg.Waypoints = append(cfg.Waypoints, referenceframe.InputsToFloats(wp.Inputs()))
	}
	return cfg, nil
}

// LoadTrajectoryConfig reads a trajectory file. A relative model path is made relative to the directory of the file.
func LoadTrajectoryConfig(filename string) (*TrajectoryConfig, error) {
	//nolint:gosec
	data, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read trajectory file")
	}
	cfg := &TrajectoryConfig{}
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.Wrapf(err, "failed to unmarshal trajectory file %s", filename)
	}
	if cfg.Model != "" && !filepath.IsAbs(cfg.Model) {
		cfg.Model = filepath.Join(filepath.Dir(filename), cfg.Model)
	}
	if cfg.Name == "" {
		cfg.Name = filepath.Base(filename)
	}
	return cfg, nil
}

// Build loads the model and returns the group and the trajectory.
func (cfg *TrajectoryConfig) Build() (*referenceframe.JointGroup, Trajectory, error) {
	if cfg.Model == "" {
		return nil, nil, errors.New("trajectory has no model")
	}
	model, err := referenceframe.ParseModelFile(cfg.Model, "")
	if err != nil {
		return nil, nil, err
	}
	group, err := modelGroup(model, cfg.Group)
	if err != nil {
		return nil, nil, err
	}
	traj := make(Trajectory, 0, len(cfg.Waypoints))
	for i, values := range cfg.Waypoints {
		state, err := referenceframe.NewState(model, referenceframe.FloatsToInputs(values))
		if err != nil {
			return nil, nil, errors.Wrapf(err, "bad waypoint %d", i)
		}
		traj = append(traj, state)
	}
	return group, traj, nil
}
