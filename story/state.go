package story

import (
	"fmt"
	"log/slog"
	"path/filepath"
	"runtime"
)

// State is a node of a story graph.
//
// A state's conditions guard entry into it: when it is a successor of the
// active state, it becomes active once all of them hold; when it is a
// sub-step, its actions fire on every frame all of them hold. A state is
// owned by whoever built the graph; successors and sub-steps are references,
// and successor links may form cycles.
type State struct {
	Name string

	conditions []*conditionSlot
	actions    []Action
	exit       []Action
	subSteps   []*State
	successors []*State
	errs       []error
}

type conditionSlot struct {
	Condition
	broken bool
}

// NewState creates a state. An empty name is replaced by the file:line of
// the caller so log lines point back at the authoring code.
func NewState(name string) *State {
	if name == "" {
		name = callerInfo(2)
	}
	return &State{Name: name}
}

func callerInfo(skip int) string {
	_, file, line, ok := runtime.Caller(skip)
	if !ok {
		return "?"
	}
	return fmt.Sprintf("%s:%d", filepath.Base(file), line)
}

// AddCondition adds a condition that guards entry into this state.
func (s *State) AddCondition(c Condition) *State {
	if c == nil {
		s.fail(fmt.Errorf("%w: nil condition", ErrUnsupportedPart))
		return s
	}
	s.conditions = append(s.conditions, &conditionSlot{Condition: c})
	return s
}

// AddAction adds an action fired when this state becomes active.
func (s *State) AddAction(a Action) *State {
	if a == nil {
		s.fail(fmt.Errorf("%w: nil action", ErrUnsupportedPart))
		return s
	}
	s.actions = append(s.actions, a)
	return s
}

// AddEvent adds a same-frame SendEvent action.
func (s *State) AddEvent(subject string, body any) *State {
	return s.AddAction(Emit(subject, body))
}

// AddExitAction adds an action fired when this state is deactivated,
// including when its machine is aborted.
func (s *State) AddExitAction(a Action) *State {
	if a == nil {
		s.fail(fmt.Errorf("%w: nil exit action", ErrUnsupportedPart))
		return s
	}
	s.exit = append(s.exit, a)
	return s
}

// AddSubStep adds a sub-step. Sub-steps are evaluated every frame this state
// is active and are never transitioned to.
func (s *State) AddSubStep(sub *State) *State {
	if sub == nil {
		s.fail(fmt.Errorf("%w: sub-step", ErrNilState))
		return s
	}
	s.subSteps = append(s.subSteps, sub)
	return s
}

// CreateSubStep creates a state, adds it as a sub-step and returns it.
func (s *State) CreateSubStep(name string) *State {
	if name == "" {
		name = callerInfo(2)
	}
	sub := &State{Name: name}
	s.AddSubStep(sub)
	return sub
}

// AddSuccessor links next after this state. Successors are tested in the
// order they were added and the first whose conditions all hold wins.
// Adding the same successor twice is a construction error.
func (s *State) AddSuccessor(next *State) *State {
	if next == nil {
		s.fail(fmt.Errorf("%w: successor", ErrNilState))
		return s
	}
	for _, existing := range s.successors {
		if existing == next {
			s.fail(fmt.Errorf("%w: %s", ErrDuplicateSuccessor, next.Name))
			return s
		}
	}
	s.successors = append(s.successors, next)
	return s
}

// AddPredecessor makes this state a successor of prev.
func (s *State) AddPredecessor(prev *State) *State {
	if prev == nil {
		s.fail(fmt.Errorf("%w: predecessor", ErrNilState))
		return s
	}
	prev.AddSuccessor(s)
	return s
}

// CreateSuccessor creates a state, adds it as a successor and returns it.
func (s *State) CreateSuccessor(name string) *State {
	if name == "" {
		name = callerInfo(2)
	}
	next := &State{Name: name}
	s.AddSuccessor(next)
	return next
}

// With adds each part according to its type: a Condition is added with
// AddCondition, an Action with AddAction and a *State with AddSubStep.
//
//	s.With(story.Tap("body", 25)).With(story.Say("hi")).With(sub)
//
// builds the same graph as the equivalent Add* calls.
func (s *State) With(parts ...any) *State {
	for _, p := range parts {
		switch v := p.(type) {
		case *State:
			s.AddSubStep(v)
		case Condition:
			s.AddCondition(v)
		case Action:
			s.AddAction(v)
		default:
			s.fail(fmt.Errorf("%w: %T", ErrUnsupportedPart, p))
		}
	}
	return s
}

func (s *State) fail(err error) {
	s.errs = append(s.errs, &GraphConstructionError{State: s.Name, Err: err})
}

// Conditions returns the entry conditions in declaration order.
func (s *State) Conditions() []Condition {
	out := make([]Condition, 0, len(s.conditions))
	for _, slot := range s.conditions {
		out = append(out, slot.Condition)
	}
	return out
}

func (s *State) Actions() []Action     { return append([]Action(nil), s.actions...) }
func (s *State) ExitActions() []Action { return append([]Action(nil), s.exit...) }
func (s *State) SubSteps() []*State    { return append([]*State(nil), s.subSteps...) }
func (s *State) Successors() []*State  { return append([]*State(nil), s.successors...) }

// Terminal reports whether the state has no successors.
func (s *State) Terminal() bool { return len(s.successors) == 0 }

func (s *State) String() string {
	return fmt.Sprintf("State(%s)", s.Name)
}

// Activate arms the one-shot conditions this state will watch (its own, its
// sub-steps' and its successors') and fires its actions in order.
func (s *State) Activate(ctx *Context) {
	ctx.logger().Debug("story: activating", "state", s.Name)
	s.arm(ctx)
	for _, sub := range s.subSteps {
		sub.armTree(ctx)
	}
	for _, next := range s.successors {
		next.arm(ctx)
	}
	s.fire(ctx, s.actions, false)
}

// Step runs one frame of an active state: continuous actions, then
// sub-steps, then the successor tests. It returns the successor to move to,
// or nil to stay.
func (s *State) Step(ctx *Context) *State {
	return s.step(ctx, true)
}

// step runs one frame. continuous is false on the frame the state was
// activated, since Activate has already applied every action once.
func (s *State) step(ctx *Context, continuous bool) *State {
	if continuous {
		s.fire(ctx, s.actions, true)
	}
	for _, sub := range s.subSteps {
		sub.runSubStep(ctx)
	}
	for _, next := range s.successors {
		if next.Test(ctx) {
			return next
		}
	}
	return nil
}

// Deactivate fires the exit actions and releases anything the state's
// actions (and its sub-steps' actions) still hold.
func (s *State) Deactivate(ctx *Context) {
	ctx.logger().Debug("story: deactivating", "state", s.Name)
	s.fire(ctx, s.exit, false)
	s.release(ctx)
}

// Test reports whether all of the state's conditions hold. A condition that
// fails to evaluate is logged once and counts as false from then on.
func (s *State) Test(ctx *Context) bool {
	for _, slot := range s.conditions {
		if slot.broken {
			return false
		}
		ok, err := evaluate(slot.Condition, ctx)
		if err != nil {
			slot.broken = true
			err = &ConditionEvaluationError{State: s.Name, Condition: slot.String(), Err: err}
			ctx.logger().Error("story: condition disabled", "state", s.Name, "condition", slot.String(), "error", err)
			conditionFailures.WithLabelValues(ctx.machine, kindOf(slot.Condition)).Inc()
			return false
		}
		if !ok {
			return false
		}
	}
	return true
}

func (s *State) runSubStep(ctx *Context) {
	if !s.Test(ctx) {
		return
	}
	s.fire(ctx, s.actions, false)
	for _, sub := range s.subSteps {
		sub.runSubStep(ctx)
	}
}

func (s *State) arm(ctx *Context) {
	for _, slot := range s.conditions {
		if r, ok := slot.Condition.(Resetter); ok {
			r.Reset(ctx)
		}
	}
}

func (s *State) armTree(ctx *Context) {
	s.arm(ctx)
	for _, sub := range s.subSteps {
		sub.armTree(ctx)
	}
}

func (s *State) release(ctx *Context) {
	for _, a := range s.actions {
		if st, ok := a.(Stopper); ok {
			st.Stop(ctx)
		}
	}
	for _, sub := range s.subSteps {
		sub.release(ctx)
	}
}

// fire applies actions in order. With onlyContinuous set, non-continuous
// actions are skipped. Failures are logged and never stop the remaining
// actions.
func (s *State) fire(ctx *Context, actions []Action, onlyContinuous bool) {
	for _, a := range actions {
		if onlyContinuous && !IsContinuous(a) {
			continue
		}
		if err := apply(a, ctx); err != nil {
			err = &ActionResolutionError{State: s.Name, Action: a.String(), Err: err}
			ctx.logger().Warn("story: action failed", "state", s.Name, "action", a.String(), "error", err)
			actionFailures.WithLabelValues(ctx.machine, kindOf(a)).Inc()
			continue
		}
		if !onlyContinuous {
			ctx.logger().Debug("story: action", "state", s.Name, "action", a.String())
		}
	}
}

func apply(a Action, ctx *Context) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = recovered(r)
		}
	}()
	return a.Apply(ctx)
}

func evaluate(c Condition, ctx *Context) (ok bool, err error) {
	defer func() {
		if r := recover(); r != nil {
			ok, err = false, recovered(r)
		}
	}()
	return c.Evaluate(ctx)
}

// logAttrs groups the fields that identify a state in logs.
func (s *State) logAttrs() slog.Attr {
	return slog.Group("state", "name", s.Name, "terminal", s.Terminal())
}
