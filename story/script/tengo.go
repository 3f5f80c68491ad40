package script

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/d5/tengo/v2"
	"github.com/d5/tengo/v2/stdlib"
	"github.com/milk9111/storyline/story"
)

const (
	tengoPrelude = "story := __story\n"
	runTimeout   = 100 * time.Millisecond
)

// Tengo is a compiled Tengo program. It is safe for concurrent use; runs
// are serialized.
type Tengo struct {
	name string

	mu       sync.Mutex
	compiled *tengo.Compiled
}

// CompileTengo compiles src. The program sees the story module as `story`
// and may assign a truth value to `result`.
func CompileTengo(name, src string) (*Tengo, error) {
	s := tengo.NewScript([]byte(tengoPrelude + src))
	if err := s.Add("__story", map[string]any{}); err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	if err := s.Add("result", false); err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	s.SetImports(stdlib.GetModuleMap("math", "text", "rand", "fmt"))

	compiled, err := s.Compile()
	if err != nil {
		return nil, fmt.Errorf("script: compile %s: %w", name, err)
	}
	return &Tengo{name: name, compiled: compiled}, nil
}

// Run executes the program against ctx and returns the value of `result`.
func (t *Tengo) Run(ctx *story.Context) (bool, error) {
	t.mu.Lock()
	defer t.mu.Unlock()

	if err := t.compiled.Set("__story", tengoModule(host{ctx: ctx})); err != nil {
		return false, err
	}
	if err := t.compiled.Set("result", false); err != nil {
		return false, err
	}
	runCtx, cancel := context.WithTimeout(context.Background(), runTimeout)
	defer cancel()
	if err := t.compiled.RunContext(runCtx); err != nil {
		return false, fmt.Errorf("script: run %s: %w", t.name, err)
	}
	return t.compiled.Get("result").Bool(), nil
}

func (t *Tengo) Name() string { return t.name }

type tengoCondition struct{ *Tengo }

// TengoCondition compiles a Tengo condition. A one-line source without
// `result` is treated as an expression.
func TengoCondition(name, src string) (story.Condition, error) {
	if isExpression(src, "result") {
		src = "result = (" + strings.TrimSpace(src) + ")"
	}
	t, err := CompileTengo(name, src)
	if err != nil {
		return nil, err
	}
	return tengoCondition{t}, nil
}

func (c tengoCondition) Evaluate(ctx *story.Context) (bool, error) { return c.Run(ctx) }

func (c tengoCondition) String() string { return fmt.Sprintf("Tengo(%s)", c.name) }

type tengoAction struct{ *Tengo }

// TengoAction compiles a Tengo action.
func TengoAction(name, src string) (story.Action, error) {
	t, err := CompileTengo(name, src)
	if err != nil {
		return nil, err
	}
	return tengoAction{t}, nil
}

func (a tengoAction) Apply(ctx *story.Context) error {
	_, err := a.Run(ctx)
	return err
}

func (a tengoAction) String() string { return fmt.Sprintf("Tengo(%s)", a.name) }

func tengoModule(h host) *tengo.ImmutableMap {
	fn := func(name string, f func(args ...tengo.Object) (tengo.Object, error)) *tengo.UserFunction {
		return &tengo.UserFunction{Name: name, Value: f}
	}

	values := map[string]tengo.Object{}
	values["frame"] = fn("frame", func(args ...tengo.Object) (tengo.Object, error) {
		return &tengo.Int{Value: int64(h.frame())}, nil
	})
	values["prop"] = fn("prop", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		v, err := h.prop(objectAsString(args[0]))
		if err != nil {
			return nil, err
		}
		return fromGo(v)
	})
	values["set_prop"] = fn("set_prop", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		return tengo.UndefinedValue, h.setProp(objectAsString(args[0]), toGo(args[1]))
	})
	values["event"] = fn("event", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		evts, err := h.events(objectAsString(args[0]))
		if err != nil {
			return nil, err
		}
		if len(evts) > 0 {
			return tengo.TrueValue, nil
		}
		return tengo.FalseValue, nil
	})
	values["event_body"] = fn("event_body", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		evts, err := h.events(objectAsString(args[0]))
		if err != nil || len(evts) == 0 {
			return tengo.UndefinedValue, err
		}
		return fromGo(evts[0].Body)
	})
	values["emit"] = fn("emit", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 || len(args) > 3 {
			return nil, tengo.ErrWrongNumArguments
		}
		var body any
		if len(args) > 1 {
			body = toGo(args[1])
		}
		delay := 0
		if len(args) > 2 {
			delay, _ = tengo.ToInt(args[2])
		}
		return tengo.UndefinedValue, h.emit(objectAsString(args[0]), body, delay)
	})
	values["message"] = fn("message", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		return tengo.UndefinedValue, h.message(objectAsString(args[0]))
	})
	values["store_get"] = fn("store_get", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) < 1 || len(args) > 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		var def any
		if len(args) == 2 {
			def = toGo(args[1])
		}
		v, err := h.storeGet(objectAsString(args[0]), def)
		if err != nil {
			return nil, err
		}
		return fromGo(v)
	})
	values["store_put"] = fn("store_put", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 2 {
			return nil, tengo.ErrWrongNumArguments
		}
		return tengo.UndefinedValue, h.storePut(objectAsString(args[0]), toGo(args[1]))
	})
	values["track_frame"] = fn("track_frame", func(args ...tengo.Object) (tengo.Object, error) {
		if len(args) != 1 {
			return nil, tengo.ErrWrongNumArguments
		}
		f, err := h.trackFrame(objectAsString(args[0]))
		if err != nil {
			return nil, err
		}
		return &tengo.Float{Value: f}, nil
	})

	return &tengo.ImmutableMap{Value: values}
}

func objectAsString(obj tengo.Object) string {
	if obj == nil {
		return ""
	}
	switch v := obj.(type) {
	case *tengo.String:
		return v.Value
	default:
		return strings.Trim(v.String(), "\"")
	}
}

func toGo(obj tengo.Object) any {
	switch v := obj.(type) {
	case nil, *tengo.Undefined:
		return nil
	case *tengo.Int:
		return int(v.Value)
	default:
		return tengo.ToInterface(obj)
	}
}

func fromGo(v any) (tengo.Object, error) {
	if v == nil {
		return tengo.UndefinedValue, nil
	}
	return tengo.FromInterface(v)
}
