// Package storyspec turns story prefabs into story graphs. Condition and
// action names in a prefab are looked up in a Registry, which callers may
// extend with their own parts.
package storyspec

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/storyline/prefabs"
	"github.com/milk9111/storyline/story"
)

var (
	ErrUnknownCondition = errors.New("storyspec: unknown condition")
	ErrUnknownAction    = errors.New("storyspec: unknown action")
	ErrUnknownState     = errors.New("storyspec: unknown state")
	ErrBadArgs          = errors.New("storyspec: bad arguments")
)

type ConditionFactory func(args Args) (story.Condition, error)

type ActionFactory func(args Args) (story.Action, error)

// Registry maps part names to factories.
type Registry struct {
	conditions map[string]ConditionFactory
	actions    map[string]ActionFactory
	scripts    func(name string) ([]byte, error)
}

type RegistryOption func(*Registry)

// WithScriptLoader sets how `script:` parts find their source. The default
// loads from prefabs.
func WithScriptLoader(load func(name string) ([]byte, error)) RegistryOption {
	return func(r *Registry) { r.scripts = load }
}

// NewRegistry returns a registry holding the built-in parts.
func NewRegistry(opts ...RegistryOption) *Registry {
	r := &Registry{
		conditions: make(map[string]ConditionFactory, len(conditionRegistry)),
		actions:    make(map[string]ActionFactory, len(actionRegistry)),
		scripts:    prefabs.LoadScript,
	}
	for name, f := range conditionRegistry {
		r.conditions[name] = f
	}
	for name, f := range actionRegistry {
		r.actions[name] = f
	}
	for _, opt := range opts {
		opt(r)
	}
	return r
}

// RegisterCondition adds or replaces a condition factory.
func (r *Registry) RegisterCondition(name string, f ConditionFactory) {
	r.conditions[name] = f
}

// RegisterAction adds or replaces an action factory.
func (r *Registry) RegisterAction(name string, f ActionFactory) {
	r.actions[name] = f
}

func (r *Registry) ConditionNames() []string { return sortedKeys(r.conditions) }

func (r *Registry) ActionNames() []string { return sortedKeys(r.actions) }

// Condition builds one condition part.
func (r *Registry) Condition(part prefabs.PartSpec) (story.Condition, error) {
	f, ok := r.conditions[part.Kind]
	if !ok {
		return nil, fmt.Errorf("%w %q (line %d)", ErrUnknownCondition, part.Kind, part.Line)
	}
	c, err := f(Args{kind: part.Kind, node: part.Args, reg: r})
	if err != nil {
		return nil, fmt.Errorf("%s (line %d): %w", part.Kind, part.Line, err)
	}
	return c, nil
}

// Action builds one action part.
func (r *Registry) Action(part prefabs.PartSpec) (story.Action, error) {
	f, ok := r.actions[part.Kind]
	if !ok {
		return nil, fmt.Errorf("%w %q (line %d)", ErrUnknownAction, part.Kind, part.Line)
	}
	a, err := f(Args{kind: part.Kind, node: part.Args, reg: r})
	if err != nil {
		return nil, fmt.Errorf("%s (line %d): %w", part.Kind, part.Line, err)
	}
	return a, nil
}

// Args are the arguments of one part.
type Args struct {
	kind string
	node *yaml.Node
	reg  *Registry
}

func (a Args) Kind() string { return a.kind }

// Empty reports whether the part was given no arguments.
func (a Args) Empty() bool {
	return a.node == nil || (a.node.Kind == yaml.ScalarNode && a.node.Tag == "!!null")
}

func (a Args) IsScalar() bool {
	return a.node != nil && a.node.Kind == yaml.ScalarNode && !a.Empty()
}

// Scalar returns the argument when it is a plain value.
func (a Args) Scalar() (string, error) {
	if !a.IsScalar() {
		return "", fmt.Errorf("%w: %s expects a single value", ErrBadArgs, a.kind)
	}
	return a.node.Value, nil
}

// Has reports whether a mapping argument sets key.
func (a Args) Has(key string) bool {
	if a.node == nil || a.node.Kind != yaml.MappingNode {
		return false
	}
	for i := 0; i+1 < len(a.node.Content); i += 2 {
		if a.node.Content[i].Value == key {
			return true
		}
	}
	return false
}

// Decode decodes the argument into v. Unknown keys are rejected.
func (a Args) Decode(v any) error {
	if a.Empty() {
		return nil
	}
	if a.node.Kind == yaml.MappingNode {
		if err := checkKeys(a.node, v); err != nil {
			return err
		}
	}
	if err := a.node.Decode(v); err != nil {
		return fmt.Errorf("%w: %s: %v", ErrBadArgs, a.kind, err)
	}
	return nil
}

// Parts decodes a list (or a single part) of nested parts.
func (a Args) Parts() ([]prefabs.PartSpec, error) {
	if a.Empty() {
		return nil, nil
	}
	if a.node.Kind == yaml.SequenceNode {
		var parts []prefabs.PartSpec
		if err := a.node.Decode(&parts); err != nil {
			return nil, fmt.Errorf("%w: %s: %v", ErrBadArgs, a.kind, err)
		}
		return parts, nil
	}
	var part prefabs.PartSpec
	if err := a.node.Decode(&part); err != nil {
		return nil, fmt.Errorf("%w: %s: %v", ErrBadArgs, a.kind, err)
	}
	return []prefabs.PartSpec{part}, nil
}

// Conditions builds the nested condition parts.
func (a Args) Conditions() ([]story.Condition, error) {
	parts, err := a.Parts()
	if err != nil {
		return nil, err
	}
	out := make([]story.Condition, 0, len(parts))
	for _, p := range parts {
		c, err := a.reg.Condition(p)
		if err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, nil
}

// Actions builds the nested action parts.
func (a Args) Actions() ([]story.Action, error) {
	parts, err := a.Parts()
	if err != nil {
		return nil, err
	}
	out := make([]story.Action, 0, len(parts))
	for _, p := range parts {
		act, err := a.reg.Action(p)
		if err != nil {
			return nil, err
		}
		out = append(out, act)
	}
	return out, nil
}

// Script loads a script source through the registry's loader.
func (a Args) Script(name string) ([]byte, error) {
	if a.reg == nil || a.reg.scripts == nil {
		return nil, fmt.Errorf("storyspec: no script loader for %s", name)
	}
	return a.reg.scripts(name)
}

// checkKeys rejects mapping keys that v has no yaml tag for.
func checkKeys(node *yaml.Node, v any) error {
	allowed := yamlKeys(v)
	if allowed == nil {
		return nil
	}
	var unknown []string
	for i := 0; i+1 < len(node.Content); i += 2 {
		if !allowed[node.Content[i].Value] {
			unknown = append(unknown, node.Content[i].Value)
		}
	}
	if len(unknown) > 0 {
		return fmt.Errorf("%w: unknown keys %s", ErrBadArgs, strings.Join(unknown, ", "))
	}
	return nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
