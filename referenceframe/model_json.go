package referenceframe

import (
	"encoding/json"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/pkg/errors"
	"github.com/samber/lo"
)

// ModelConfigJSON represents all supported fields in a kinematics JSON file.
type ModelConfigJSON struct {
	Name         string        `json:"name"`
	KinParamType string        `json:"kinematic_param_type,omitempty"`
	Links        []LinkConfig  `json:"links,omitempty"`
	Joints       []JointConfig `json:"joints,omitempty"`
	Groups       []GroupConfig `json:"groups,omitempty"`
	OriginalFile *ModelFile    `json:"-"`
}

// ModelFile is a struct that stores the raw bytes of the file used to create the model as well as its extension,
// which is useful for knowing how to unmarshal it.
type ModelFile struct {
	Bytes     []byte
	Extension string
}

// UnmarshalModelJSON will parse the given JSON data into a kinematics model. modelName sets the name of the model,
// will use the name from the JSON if string is empty.
func UnmarshalModelJSON(jsonData []byte, modelName string) (*SimpleModel, error) {
	m := &ModelConfigJSON{OriginalFile: &ModelFile{Bytes: jsonData, Extension: "json"}}

	// empty data probably means that the robot component has no model information
	if len(jsonData) == 0 {
		return nil, ErrNoModelInformation
	}

	err := json.Unmarshal(jsonData, m)
	if err != nil {
		return nil, errors.Wrap(err, "failed to unmarshal json file")
	}

	return m.ParseConfig(modelName)
}

// ParseModelJSONFile will read a given file and then parse the contained JSON data.
func ParseModelJSONFile(filename, modelName string) (*SimpleModel, error) {
	//nolint:gosec
	jsonData, err := os.ReadFile(filename)
	if err != nil {
		return nil, errors.Wrap(err, "failed to read json file")
	}
	return UnmarshalModelJSON(jsonData, modelName)
}

// ParseModelFile reads a kinematics file, choosing the format by extension: .urdf files are URDF and everything else
// is parsed as JSON.
func ParseModelFile(filename, modelName string) (*SimpleModel, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".urdf":
		return ParseURDFFile(filename, modelName)
	default:
		return ParseModelJSONFile(filename, modelName)
	}
}

// ParseConfig converts the ModelConfigJSON struct into a full Model with the name modelName. When the config has no
// groups, a single group named after the model containing every joint is created.
func (cfg *ModelConfigJSON) ParseConfig(modelName string) (*SimpleModel, error) {
	if modelName == "" {
		modelName = cfg.Name
	}
	if cfg.KinParamType != "" && cfg.KinParamType != "SVA" {
		return nil, errors.Errorf("unsupported param type: %s, supported params are SVA", cfg.KinParamType)
	}
	if lo.ContainsBy(cfg.Links, func(l LinkConfig) bool { return l.ID == World }) {
		return nil, NewReservedWordError("link", World)
	}
	if lo.ContainsBy(cfg.Joints, func(j JointConfig) bool { return j.ID == World }) {
		return nil, NewReservedWordError("joint", World)
	}

	// links and joints may be listed in any order, so frames are collected by name and chained afterwards
	frames := make(map[string]Frame, len(cfg.Links)+len(cfg.Joints))
	parents := make(map[string]string, len(cfg.Links)+len(cfg.Joints))
	for _, link := range cfg.Links {
		frame, err := link.ParseConfig()
		if err != nil {
			return nil, err
		}
		frames[link.ID] = frame
		parents[link.ID] = lo.Ternary(link.Parent == "", World, link.Parent)
	}
	for _, joint := range cfg.Joints {
		frame, err := joint.ToFrame()
		if err != nil {
			return nil, err
		}
		frames[joint.ID] = frame
		parents[joint.ID] = joint.Parent
	}

	chain, err := chainFrames(frames, parents)
	if err != nil {
		return nil, err
	}
	model := NewSimpleModel(modelName)
	model.modelConfig = cfg
	if err := model.setOrdTransforms(chain); err != nil {
		return nil, err
	}

	groups := cfg.Groups
	if len(groups) == 0 {
		groups = []GroupConfig{{
			Name:   modelName,
			Joints: lo.Map(model.Joints(), func(j *Joint, _ int) string { return j.Name() }),
		}}
	}
	for _, group := range groups {
		if _, err := model.AddGroup(group.Name, group.Joints); err != nil {
			return nil, err
		}
	}
	return model, nil
}

// chainFrames orders the frames from the world to the single frame nothing is attached to, following parents.
func chainFrames(frames map[string]Frame, parents map[string]string) ([]Frame, error) {
	leaves := lo.Without(lo.Keys(parents), lo.Values(parents)...)
	if len(leaves) != 1 {
		return nil, errors.Wrapf(ErrNeedOneEndEffector, "have %v", leaves)
	}

	chain := make([]Frame, 0, len(frames))
	visited := map[string]bool{}
	for name := leaves[0]; name != World; {
		if visited[name] {
			return nil, ErrCircularReference
		}
		visited[name] = true
		frame, ok := frames[name]
		if !ok {
			return nil, NewFrameNotInListOfTransformsError(name)
		}
		chain = append(chain, frame)
		parent, ok := parents[name]
		if !ok {
			return nil, NewParentFrameNotInMapOfParentsError(name)
		}
		name = parent
	}
	if len(chain) != len(parents) {
		return nil, errors.Errorf("%d frames are not on the chain from the world to the end effector", len(parents)-len(chain))
	}
	slices.Reverse(chain)
	return chain, nil
}
