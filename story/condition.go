package story

import (
	"fmt"
	"reflect"
	"strings"
)

// Condition is a predicate evaluated against the current frame. Evaluate
// must not change world state; one-shot conditions may update their own
// bookkeeping.
type Condition interface {
	Evaluate(ctx *Context) (bool, error)
	String() string
}

// Resetter is implemented by conditions with per-activation bookkeeping.
// Reset is called whenever the state that owns the condition is (re)armed.
type Resetter interface {
	Reset(ctx *Context)
}

// FrameReached holds once the animation track reaches Frame.
//
// With Tap set it holds only on the frame the threshold is first reached and
// then stays false until reset. Rearm additionally re-arms a tapped condition
// when the track falls back below the threshold, as it does when a looping
// animation wraps around.
type FrameReached struct {
	Track string
	Frame float64
	Tap   bool
	Rearm bool

	fired bool
}

// Reached returns a level-triggered FrameReached.
func Reached(track string, frame float64) *FrameReached {
	return &FrameReached{Track: track, Frame: frame}
}

// Tap returns a one-shot FrameReached.
func Tap(track string, frame float64) *FrameReached {
	return &FrameReached{Track: track, Frame: frame, Tap: true}
}

func (c *FrameReached) Evaluate(ctx *Context) (bool, error) {
	if ctx.Animator == nil {
		return false, missing("animator")
	}
	cur, err := ctx.Animator.CurrentFrame(c.Track)
	if err != nil {
		return false, err
	}
	if !c.Tap {
		return cur >= c.Frame, nil
	}
	if c.fired {
		if c.Rearm && cur < c.Frame {
			c.fired = false
		}
		return false, nil
	}
	if cur >= c.Frame {
		c.fired = true
		return true, nil
	}
	return false, nil
}

func (c *FrameReached) Reset(*Context) {
	c.fired = false
}

func (c *FrameReached) String() string {
	s := fmt.Sprintf("FrameReached(%s >= %g", c.Track, c.Frame)
	if c.Tap {
		s += ", tap"
	}
	return s + ")"
}

// EventReceived holds while a matching event is visible on the event
// transport. When MatchBody is set the event body must equal Body, or differ
// from it when NotBody is also set. A body mismatch is not the same as no
// event: NotBody stays false until some event with the subject arrives.
type EventReceived struct {
	Subject   string
	Body      any
	MatchBody bool
	NotBody   bool
}

func OnEvent(subject string) *EventReceived {
	return &EventReceived{Subject: subject}
}

func OnEventBody(subject string, body any) *EventReceived {
	return &EventReceived{Subject: subject, Body: body, MatchBody: true}
}

func OnEventBodyNot(subject string, body any) *EventReceived {
	return &EventReceived{Subject: subject, Body: body, MatchBody: true, NotBody: true}
}

func (c *EventReceived) Evaluate(ctx *Context) (bool, error) {
	if ctx.Events == nil {
		return false, missing("events")
	}
	for _, evt := range ctx.Events.Poll(c.Subject) {
		if !c.MatchBody {
			return true, nil
		}
		if equal(evt.Body, c.Body) != c.NotBody {
			return true, nil
		}
	}
	return false, nil
}

func (c *EventReceived) String() string {
	switch {
	case !c.MatchBody:
		return fmt.Sprintf("EventReceived(%s)", c.Subject)
	case c.NotBody:
		return fmt.Sprintf("EventReceived(%s != %v)", c.Subject, c.Body)
	default:
		return fmt.Sprintf("EventReceived(%s == %v)", c.Subject, c.Body)
	}
}

// TimerElapsed holds once Frames frames have passed since the owning state
// was armed.
type TimerElapsed struct {
	Frames int

	start int
	armed bool
}

func Wait(frames int) *TimerElapsed {
	return &TimerElapsed{Frames: frames}
}

func (c *TimerElapsed) Reset(ctx *Context) {
	c.start = ctx.Frame()
	c.armed = true
}

func (c *TimerElapsed) Evaluate(ctx *Context) (bool, error) {
	if !c.armed {
		c.Reset(ctx)
	}
	return ctx.Frame()-c.start >= c.Frames, nil
}

func (c *TimerElapsed) String() string {
	return fmt.Sprintf("TimerElapsed(%d)", c.Frames)
}

// Op is a comparison operator.
type Op string

const (
	OpEq Op = "=="
	OpNe Op = "!="
	OpLt Op = "<"
	OpLe Op = "<="
	OpGt Op = ">"
	OpGe Op = ">="
)

// ParseOp accepts the symbolic operators and their two-letter names
// (eq, ne, lt, le, gt, ge).
func ParseOp(s string) (Op, error) {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "==", "=", "eq", "":
		return OpEq, nil
	case "!=", "ne":
		return OpNe, nil
	case "<", "lt":
		return OpLt, nil
	case "<=", "le":
		return OpLe, nil
	case ">", "gt":
		return OpGt, nil
	case ">=", "ge":
		return OpGe, nil
	}
	return "", fmt.Errorf("story: unknown operator %q", s)
}

// PropertyCompare compares a property of the story's owner with Value.
type PropertyCompare struct {
	Name  string
	Op    Op
	Value any
}

func PropertyIs(name string, op Op, value any) *PropertyCompare {
	return &PropertyCompare{Name: name, Op: op, Value: value}
}

func (c *PropertyCompare) Evaluate(ctx *Context) (bool, error) {
	if ctx.Properties == nil {
		return false, missing("properties")
	}
	v, ok := ctx.Properties.Property(c.Name)
	if !ok {
		return false, fmt.Errorf("%w: %s", ErrMissingProperty, c.Name)
	}
	return compare(v, c.Op, c.Value)
}

func (c *PropertyCompare) String() string {
	return fmt.Sprintf("PropertyCompare(%s %s %v)", c.Name, c.Op, c.Value)
}

// StoreEquals holds when the save-store value at Path equals Value. Default
// stands in for a path that has never been written.
type StoreEquals struct {
	Path    string
	Value   any
	Default any
}

func (c *StoreEquals) Evaluate(ctx *Context) (bool, error) {
	if ctx.Store == nil {
		return false, missing("store")
	}
	v, ok := ctx.Store.Get(c.Path)
	if !ok {
		v = c.Default
	}
	return equal(v, c.Value), nil
}

func (c *StoreEquals) String() string {
	return fmt.Sprintf("StoreEquals(%s == %v)", c.Path, c.Value)
}

type allOf []Condition

// All holds when every child holds. Evaluation stops at the first false
// child. All() is true.
func All(conds ...Condition) Condition { return allOf(conds) }

func (c allOf) Evaluate(ctx *Context) (bool, error) {
	for _, child := range c {
		ok, err := child.Evaluate(ctx)
		if err != nil || !ok {
			return false, err
		}
	}
	return true, nil
}

func (c allOf) Reset(ctx *Context) { resetAll(ctx, c) }

func (c allOf) String() string { return "All(" + joinConditions(c) + ")" }

type anyOf []Condition

// Any holds when some child holds. Evaluation stops at the first true child.
// Any() is false.
func Any(conds ...Condition) Condition { return anyOf(conds) }

func (c anyOf) Evaluate(ctx *Context) (bool, error) {
	for _, child := range c {
		ok, err := child.Evaluate(ctx)
		if err != nil {
			return false, err
		}
		if ok {
			return true, nil
		}
	}
	return false, nil
}

func (c anyOf) Reset(ctx *Context) { resetAll(ctx, c) }

func (c anyOf) String() string { return "Any(" + joinConditions(c) + ")" }

type notCond struct{ wrapped Condition }

// Not inverts a condition. Errors pass through unchanged.
func Not(c Condition) Condition { return notCond{wrapped: c} }

func (c notCond) Evaluate(ctx *Context) (bool, error) {
	ok, err := c.wrapped.Evaluate(ctx)
	if err != nil {
		return false, err
	}
	return !ok, nil
}

func (c notCond) Reset(ctx *Context) { resetAll(ctx, []Condition{c.wrapped}) }

func (c notCond) String() string { return "Not(" + c.wrapped.String() + ")" }

type predicate struct {
	name string
	fn   func(ctx *Context) (bool, error)
}

// Predicate wraps a Go function as a condition.
func Predicate(name string, fn func(ctx *Context) bool) Condition {
	return predicate{name: name, fn: func(ctx *Context) (bool, error) { return fn(ctx), nil }}
}

// PredicateErr wraps a fallible Go function as a condition.
func PredicateErr(name string, fn func(ctx *Context) (bool, error)) Condition {
	return predicate{name: name, fn: fn}
}

func (c predicate) Evaluate(ctx *Context) (bool, error) { return c.fn(ctx) }

func (c predicate) String() string { return fmt.Sprintf("Predicate(%s)", c.name) }

func resetAll(ctx *Context, conds []Condition) {
	for _, c := range conds {
		if r, ok := c.(Resetter); ok {
			r.Reset(ctx)
		}
	}
}

func joinConditions(conds []Condition) string {
	parts := make([]string, 0, len(conds))
	for _, c := range conds {
		parts = append(parts, c.String())
	}
	return strings.Join(parts, ", ")
}

func equal(a, b any) bool {
	if fa, ok := toFloat(a); ok {
		if fb, ok := toFloat(b); ok {
			return fa == fb
		}
	}
	return reflect.DeepEqual(a, b)
}

func compare(a any, op Op, b any) (bool, error) {
	switch op {
	case OpEq:
		return equal(a, b), nil
	case OpNe:
		return !equal(a, b), nil
	}

	var cmp int
	fa, okA := toFloat(a)
	fb, okB := toFloat(b)
	switch {
	case okA && okB:
		cmp = compareOrdered(fa, fb)
	default:
		sa, okA := a.(string)
		sb, okB := b.(string)
		if !okA || !okB {
			return false, fmt.Errorf("%w: %v %s %v", ErrIncomparable, a, op, b)
		}
		cmp = strings.Compare(sa, sb)
	}

	switch op {
	case OpLt:
		return cmp < 0, nil
	case OpLe:
		return cmp <= 0, nil
	case OpGt:
		return cmp > 0, nil
	case OpGe:
		return cmp >= 0, nil
	}
	return false, fmt.Errorf("story: unknown operator %q", op)
}

func compareOrdered(a, b float64) int {
	switch {
	case a < b:
		return -1
	case a > b:
		return 1
	}
	return 0
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8:
		return float64(n), true
	case int16:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case uint:
		return float64(n), true
	case uint8:
		return float64(n), true
	case uint16:
		return float64(n), true
	case uint32:
		return float64(n), true
	case uint64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
