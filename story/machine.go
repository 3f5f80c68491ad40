package story

import (
	"log/slog"

	"github.com/google/uuid"
)

// Machine drives one story thread. It holds the active state and advances
// it once per frame. A Machine is not safe for concurrent use; separate
// machines may be advanced from separate goroutines if they share only an
// EventBus.
type Machine struct {
	id      uuid.UUID
	name    string
	root    *State
	active  *State
	entered bool
	log     *slog.Logger
}

// Option configures a Machine.
type Option func(*Machine)

// WithName sets the name used in logs and metrics.
func WithName(name string) Option {
	return func(m *Machine) { m.name = name }
}

// WithLogger sets the machine's logger. It takes precedence over the
// context logger.
func WithLogger(l *slog.Logger) Option {
	return func(m *Machine) { m.log = l }
}

// NewMachine validates the graph under root and returns a machine whose
// active state is root. Root's actions fire on the first Advance.
func NewMachine(root *State, opts ...Option) (*Machine, error) {
	if err := Validate(root); err != nil {
		return nil, err
	}
	m := &Machine{id: uuid.New(), root: root, active: root}
	for _, opt := range opts {
		opt(m)
	}
	if m.name == "" {
		m.name = root.Name
	}
	return m, nil
}

func (m *Machine) ID() uuid.UUID  { return m.id }
func (m *Machine) Name() string   { return m.name }
func (m *Machine) Root() *State   { return m.root }
func (m *Machine) Active() *State { return m.active }

// Dormant reports whether the machine has no active state.
func (m *Machine) Dormant() bool { return m == nil || m.active == nil }

// bind returns a copy of ctx scoped to this machine.
func (m *Machine) bind(ctx *Context) *Context {
	c := *ctx
	log := m.log
	if log == nil {
		log = ctx.logger()
	}
	c.Log = log.With("machine", m.name)
	c.machine = m.name
	return &c
}

// Advance runs one frame:
//
//  1. delayed events due this frame are delivered;
//  2. on the first frame, the root state is activated;
//  3. the active state steps;
//  4. if it chose a successor, the active state is deactivated and the
//     successor activated;
//  5. same-frame events are dropped, unless ctx.SharedEvents is set.
//
// Advance on a dormant machine does nothing. Failures inside actions and
// conditions are logged; Advance never panics.
func (m *Machine) Advance(ctx *Context) {
	if m.Dormant() || ctx == nil {
		return
	}
	c := m.bind(ctx)

	if fs, ok := c.Events.(FrameScoped); ok {
		fs.BeginFrame(c.Frame())
		if !c.SharedEvents {
			defer fs.EndFrame()
		}
	}
	defer func() {
		if r := recover(); r != nil {
			c.Log.Error("story: advance failed", "error", recovered(r), "active", m.active)
		}
	}()

	continuous := true
	if !m.entered {
		m.entered = true
		continuous = false
		m.active.Activate(c)
		if m.active == nil {
			return
		}
	}

	next := m.active.step(c, continuous)
	if next == nil || m.active == nil {
		return
	}
	m.transition(c, next)
}

func (m *Machine) transition(c *Context, next *State) {
	prev := m.active
	prev.Deactivate(c)
	m.active = next
	transitionsTotal.WithLabelValues(m.name, prev.Name, next.Name).Inc()
	c.Log.Info("story: transitioned", slog.String("from", prev.Name), next.logAttrs(), slog.Int("frame", c.Frame()))
	if c.Observer != nil {
		c.Observer.Transitioned(m, prev, next)
	}
	next.Activate(c)
}

// Redirect makes s the active state, deactivating the current one first.
// It wakes a dormant machine.
func (m *Machine) Redirect(ctx *Context, s *State) {
	if m == nil || ctx == nil || s == nil {
		return
	}
	c := m.bind(ctx)
	if m.active == nil || !m.entered {
		m.active = s
		m.entered = true
		c.Log.Info("story: redirected", "to", s.Name)
		s.Activate(c)
		return
	}
	m.transition(c, s)
}

// Abort tears the thread down: the active state is deactivated (its exit
// actions fire and looping sounds stop) and the machine becomes dormant.
func (m *Machine) Abort(ctx *Context) {
	if m.Dormant() {
		return
	}
	prev := m.active
	m.active = nil
	if ctx == nil || !m.entered {
		return
	}
	c := m.bind(ctx)
	c.Log.Info("story: aborted", "state", prev.Name)
	func() {
		defer func() {
			if r := recover(); r != nil {
				c.Log.Error("story: abort failed", "error", recovered(r))
			}
		}()
		prev.Deactivate(c)
	}()
}

// Restart aborts the thread and starts it again from the root on the next
// Advance.
func (m *Machine) Restart(ctx *Context) {
	if m == nil {
		return
	}
	m.Abort(ctx)
	m.active = m.root
	m.entered = false
}
