package script

import (
	"fmt"
	"strings"
	"sync"

	lua "github.com/Shopify/go-lua"
	"github.com/milk9111/storyline/story"
)

const luaMain = "__story_main"

// Lua is a compiled Lua chunk with its own interpreter state. It is safe for
// concurrent use; runs are serialized.
type Lua struct {
	name string

	mu    sync.Mutex
	state *lua.State
	host  host
}

// CompileLua loads src into a fresh interpreter. The chunk sees the story
// module as the global table `story`.
func CompileLua(name, src string) (*Lua, error) {
	l := &Lua{name: name, state: lua.NewState()}
	lua.OpenLibraries(l.state)

	l.state.NewTable()
	lua.SetFunctions(l.state, l.functions(), 0)
	l.state.SetGlobal("story")

	if err := lua.LoadString(l.state, src); err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	l.state.SetGlobal(luaMain)
	return l, nil
}

// Run calls the chunk and reports the truth of its first return value.
func (l *Lua) Run(ctx *story.Context) (bool, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	l.host = host{ctx: ctx}
	defer func() { l.host = host{} }()

	l.state.Global(luaMain)
	if err := l.state.ProtectedCall(0, 1, 0); err != nil {
		return false, fmt.Errorf("script: run %s: %w", l.name, err)
	}
	ok := l.state.ToBoolean(-1)
	l.state.Pop(1)
	return ok, nil
}

func (l *Lua) Name() string { return l.name }

type luaCondition struct{ *Lua }

// LuaCondition compiles a Lua condition. A one-line source without `return`
// is treated as an expression.
func LuaCondition(name, src string) (story.Condition, error) {
	if isExpression(src, "return") {
		src = "return (" + strings.TrimSpace(src) + ")"
	}
	l, err := CompileLua(name, src)
	if err != nil {
		return nil, err
	}
	return luaCondition{l}, nil
}

func (c luaCondition) Evaluate(ctx *story.Context) (bool, error) { return c.Run(ctx) }

func (c luaCondition) String() string { return fmt.Sprintf("Lua(%s)", c.name) }

type luaAction struct{ *Lua }

// LuaAction compiles a Lua action.
func LuaAction(name, src string) (story.Action, error) {
	l, err := CompileLua(name, src)
	if err != nil {
		return nil, err
	}
	return luaAction{l}, nil
}

func (a luaAction) Apply(ctx *story.Context) error {
	_, err := a.Run(ctx)
	return err
}

func (a luaAction) String() string { return fmt.Sprintf("Lua(%s)", a.name) }

func (l *Lua) functions() []lua.RegistryFunction {
	check := func(s *lua.State, err error) {
		if err != nil {
			lua.Errorf(s, "%s", err.Error())
		}
	}
	return []lua.RegistryFunction{
		{Name: "frame", Function: func(s *lua.State) int {
			s.PushInteger(l.host.frame())
			return 1
		}},
		{Name: "prop", Function: func(s *lua.State) int {
			v, err := l.host.prop(lua.CheckString(s, 1))
			check(s, err)
			pushValue(s, v)
			return 1
		}},
		{Name: "set_prop", Function: func(s *lua.State) int {
			check(s, l.host.setProp(lua.CheckString(s, 1), toValue(s, 2)))
			return 0
		}},
		{Name: "event", Function: func(s *lua.State) int {
			evts, err := l.host.events(lua.CheckString(s, 1))
			check(s, err)
			s.PushBoolean(len(evts) > 0)
			return 1
		}},
		{Name: "event_body", Function: func(s *lua.State) int {
			evts, err := l.host.events(lua.CheckString(s, 1))
			check(s, err)
			if len(evts) == 0 {
				s.PushNil()
				return 1
			}
			pushValue(s, evts[0].Body)
			return 1
		}},
		{Name: "emit", Function: func(s *lua.State) int {
			subject := lua.CheckString(s, 1)
			body := toValue(s, 2)
			delay := lua.OptInteger(s, 3, 0)
			check(s, l.host.emit(subject, body, delay))
			return 0
		}},
		{Name: "message", Function: func(s *lua.State) int {
			check(s, l.host.message(lua.CheckString(s, 1)))
			return 0
		}},
		{Name: "store_get", Function: func(s *lua.State) int {
			v, err := l.host.storeGet(lua.CheckString(s, 1), toValue(s, 2))
			check(s, err)
			pushValue(s, v)
			return 1
		}},
		{Name: "store_put", Function: func(s *lua.State) int {
			check(s, l.host.storePut(lua.CheckString(s, 1), toValue(s, 2)))
			return 0
		}},
		{Name: "track_frame", Function: func(s *lua.State) int {
			f, err := l.host.trackFrame(lua.CheckString(s, 1))
			check(s, err)
			s.PushNumber(f)
			return 1
		}},
	}
}

func pushValue(s *lua.State, v any) {
	switch x := v.(type) {
	case nil:
		s.PushNil()
	case bool:
		s.PushBoolean(x)
	case string:
		s.PushString(x)
	case int:
		s.PushInteger(x)
	case int64:
		s.PushNumber(float64(x))
	case float64:
		s.PushNumber(x)
	case float32:
		s.PushNumber(float64(x))
	default:
		s.PushString(fmt.Sprint(x))
	}
}

func toValue(s *lua.State, idx int) any {
	switch s.TypeOf(idx) {
	case lua.TypeBoolean:
		return s.ToBoolean(idx)
	case lua.TypeNumber:
		if n, ok := s.ToInteger(idx); ok {
			if f, _ := s.ToNumber(idx); f == float64(n) {
				return n
			}
		}
		f, _ := s.ToNumber(idx)
		return f
	case lua.TypeString:
		str, _ := s.ToString(idx)
		return str
	}
	return nil
}
