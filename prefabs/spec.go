package prefabs

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// StorySpec is a story prefab: a named graph of states plus the animation
// tracks and properties of the entity that tells it.
type StorySpec struct {
	Name       string                `yaml:"name"`
	Root       string                `yaml:"root"`
	Tracks     map[string]TrackSpec  `yaml:"tracks"`
	Properties map[string]any        `yaml:"properties"`
	Transform  TransformSpec         `yaml:"transform"`
	Body       *BodySpec             `yaml:"body"`
	States     map[string]*StateSpec `yaml:"states"`

	// Source is where the spec was loaded from.
	Source string `yaml:"-"`
}

// StateNames returns the declared state names in sorted order.
func (s *StorySpec) StateNames() []string {
	names := make([]string, 0, len(s.States))
	for name := range s.States {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// TrackSpec declares an animation track and, optionally, a clip that plays
// on it from the start.
type TrackSpec struct {
	Clip     string  `yaml:"clip"`
	Start    float64 `yaml:"start"`
	End      float64 `yaml:"end"`
	Speed    float64 `yaml:"speed"`
	Loop     bool    `yaml:"loop"`
	Autoplay bool    `yaml:"autoplay"`
}

type TransformSpec struct {
	X float64 `yaml:"x"`
	Y float64 `yaml:"y"`
}

// BodySpec gives the storyteller a physics body that impulse actions push.
type BodySpec struct {
	Mass   float64 `yaml:"mass"`
	Radius float64 `yaml:"radius"`
}

// StateSpec is one state. Sub-steps and successors are either the name of a
// state declared under `states` or an inline state.
type StateSpec struct {
	Name       string      `yaml:"name"`
	Conditions []PartSpec  `yaml:"conditions"`
	Actions    []PartSpec  `yaml:"actions"`
	OnExit     []PartSpec  `yaml:"on_exit"`
	SubSteps   []*StateRef `yaml:"sub_steps"`
	Successors []*StateRef `yaml:"successors"`
}

var stateKeys = map[string]bool{
	"name": true, "conditions": true, "actions": true,
	"on_exit": true, "sub_steps": true, "successors": true,
}

// StateRef is a reference to a named state or an inline state.
type StateRef struct {
	Ref    string
	Inline *StateSpec
}

func (r *StateRef) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		r.Ref = strings.TrimSpace(node.Value)
		if r.Ref == "" {
			return fmt.Errorf("line %d: empty state reference", node.Line)
		}
		return nil
	}
	if node.Kind == yaml.MappingNode {
		for i := 0; i+1 < len(node.Content); i += 2 {
			key := node.Content[i]
			if !stateKeys[key.Value] {
				return fmt.Errorf("line %d: field %s not found in state", key.Line, key.Value)
			}
		}
	}
	var inline StateSpec
	if err := node.Decode(&inline); err != nil {
		return err
	}
	r.Inline = &inline
	return nil
}

// PartSpec is one condition or action: either a bare name (`always`,
// `destroy`) or a single-key mapping from the name to its arguments.
type PartSpec struct {
	Kind string
	Args *yaml.Node
	Line int
}

func (p *PartSpec) UnmarshalYAML(node *yaml.Node) error {
	p.Line = node.Line
	switch node.Kind {
	case yaml.ScalarNode:
		p.Kind = strings.TrimSpace(node.Value)
		return nil
	case yaml.MappingNode:
		if len(node.Content) != 2 {
			return fmt.Errorf("line %d: expected a single key naming the part, got %d keys", node.Line, len(node.Content)/2)
		}
		p.Kind = strings.TrimSpace(node.Content[0].Value)
		p.Args = node.Content[1]
		return nil
	}
	return fmt.Errorf("line %d: expected a name or a single-key mapping", node.Line)
}

// LoadStorySpec loads a story prefab by name.
func LoadStorySpec(name string) (*StorySpec, error) {
	data, err := Load(name)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", name, err)
	}
	return ParseStorySpec(data, cleanStoryPath(name))
}

// LoadStorySpecFile loads a story prefab from an arbitrary file.
func LoadStorySpecFile(path string) (*StorySpec, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("prefabs: load %s: %w", path, err)
	}
	return ParseStorySpec(data, path)
}

// ParseStorySpec decodes a story prefab. Unknown keys are rejected so typos
// in hand-written stories surface early.
func ParseStorySpec(data []byte, source string) (*StorySpec, error) {
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)

	var spec StorySpec
	if err := dec.Decode(&spec); err != nil {
		return nil, fmt.Errorf("prefabs: unmarshal %s: %w", source, err)
	}
	spec.Source = source
	if spec.Name == "" {
		base := filepath.Base(source)
		spec.Name = strings.TrimSuffix(base, filepath.Ext(base))
	}
	if spec.Root == "" {
		return nil, fmt.Errorf("prefabs: %s: root state is required", source)
	}
	if len(spec.States) == 0 {
		return nil, fmt.Errorf("prefabs: %s: no states", source)
	}
	for name, st := range spec.States {
		if st == nil {
			spec.States[name] = &StateSpec{}
		}
	}
	return &spec, nil
}
