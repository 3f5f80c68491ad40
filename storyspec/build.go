package storyspec

import (
	"errors"
	"fmt"
	"strconv"

	"github.com/milk9111/storyline/prefabs"
	"github.com/milk9111/storyline/story"
)

// Build constructs the graph described by spec and returns its root. Each
// named state becomes one *story.State shared by every reference to it;
// inline states are named after their parent. All problems are reported
// together as GraphConstructionErrors.
func Build(spec *prefabs.StorySpec, reg *Registry) (*story.State, error) {
	if spec == nil {
		return nil, &story.GraphConstructionError{State: "<spec>", Err: story.ErrNilState}
	}
	if reg == nil {
		reg = NewRegistry()
	}

	b := &builder{reg: reg, named: make(map[string]*story.State, len(spec.States))}
	for _, name := range spec.StateNames() {
		b.named[name] = story.NewState(name)
	}
	root, ok := b.named[spec.Root]
	if !ok {
		return nil, &story.GraphConstructionError{State: spec.Root, Err: fmt.Errorf("%w: root", ErrUnknownState)}
	}
	for _, name := range spec.StateNames() {
		b.fill(b.named[name], spec.States[name])
	}
	if err := errors.Join(b.errs...); err != nil {
		return nil, err
	}
	if err := story.Validate(root); err != nil {
		return nil, err
	}
	return root, nil
}

// BuildMachine builds spec and wraps it in a machine named after the spec.
func BuildMachine(spec *prefabs.StorySpec, reg *Registry, opts ...story.Option) (*story.Machine, error) {
	root, err := Build(spec, reg)
	if err != nil {
		return nil, err
	}
	opts = append([]story.Option{story.WithName(spec.Name)}, opts...)
	return story.NewMachine(root, opts...)
}

type builder struct {
	reg   *Registry
	named map[string]*story.State
	errs  []error
}

func (b *builder) fail(s *story.State, err error) {
	b.errs = append(b.errs, &story.GraphConstructionError{State: s.Name, Err: err})
}

func (b *builder) fill(s *story.State, spec *prefabs.StateSpec) {
	if spec == nil {
		return
	}
	for _, part := range spec.Conditions {
		c, err := b.reg.Condition(part)
		if err != nil {
			b.fail(s, err)
			continue
		}
		s.AddCondition(c)
	}
	for _, part := range spec.Actions {
		a, err := b.reg.Action(part)
		if err != nil {
			b.fail(s, err)
			continue
		}
		s.AddAction(a)
	}
	for _, part := range spec.OnExit {
		a, err := b.reg.Action(part)
		if err != nil {
			b.fail(s, err)
			continue
		}
		s.AddExitAction(a)
	}
	for i, ref := range spec.SubSteps {
		if sub := b.resolve(s, ref, "sub", i); sub != nil {
			s.AddSubStep(sub)
		}
	}
	for i, ref := range spec.Successors {
		if next := b.resolve(s, ref, "next", i); next != nil {
			s.AddSuccessor(next)
		}
	}
}

func (b *builder) resolve(parent *story.State, ref *prefabs.StateRef, role string, i int) *story.State {
	if ref == nil {
		b.fail(parent, fmt.Errorf("%s %d: %w", role, i, story.ErrNilState))
		return nil
	}
	if ref.Inline == nil {
		s, ok := b.named[ref.Ref]
		if !ok {
			b.fail(parent, fmt.Errorf("%w %q", ErrUnknownState, ref.Ref))
			return nil
		}
		return s
	}
	name := ref.Inline.Name
	if name == "" {
		name = role + strconv.Itoa(i)
	}
	s := story.NewState(parent.Name + "/" + name)
	b.fill(s, ref.Inline)
	return s
}
