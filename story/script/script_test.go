package script

import (
	"testing"

	"github.com/neilotoole/slogt"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/milk9111/storyline/story"
)

type props map[string]any

func (p props) Property(name string) (any, bool) {
	v, ok := p[name]
	return v, ok
}

func (p props) SetProperty(name string, v any) error {
	p[name] = v
	return nil
}

type store map[string]any

func (s store) Get(path string) (any, bool) {
	v, ok := s[path]
	return v, ok
}

func (s store) Put(path string, v any) error {
	s[path] = v
	return nil
}

type messages []string

func (m *messages) Show(text string) error {
	*m = append(*m, text)
	return nil
}

type env struct {
	clock *story.ManualClock
	bus   *story.EventBus
	props props
	store store
	msgs  *messages
	ctx   *story.Context
}

func newEnv(t *testing.T) *env {
	e := &env{clock: &story.ManualClock{N: 12}, props: props{}, store: store{}, msgs: &messages{}}
	e.bus = story.NewEventBus(e.clock)
	e.bus.BeginFrame(e.clock.N)
	e.ctx = &story.Context{
		Clock:      e.clock,
		Events:     e.bus,
		Properties: e.props,
		Store:      e.store,
		Messages:   e.msgs,
		Log:        slogt.New(t),
	}
	return e
}

func TestConditions(t *testing.T) {
	tests := []struct {
		name  string
		lang  Lang
		src   string
		setup func(e *env)
		want  bool
	}{
		{name: "tengo frame expression", lang: LangTengo, src: `story.frame() >= 10`, want: true},
		{name: "lua frame expression", lang: LangLua, src: `story.frame() >= 20`, want: false},
		{
			name:  "tengo property",
			lang:  LangTengo,
			src:   `story.prop("mood") == "happy"`,
			setup: func(e *env) { e.props["mood"] = "happy" },
			want:  true,
		},
		{
			name:  "lua property",
			lang:  LangLua,
			src:   `story.prop("count") > 2`,
			setup: func(e *env) { e.props["count"] = 3 },
			want:  true,
		},
		{
			name:  "tengo event",
			lang:  LangTengo,
			src:   `story.event("door") && story.event_body("door") == "open"`,
			setup: func(e *env) { e.bus.Send(story.Event{Subject: "door", Body: "open"}, 0) },
			want:  true,
		},
		{
			name: "lua event missing",
			lang: LangLua,
			src:  `story.event("door")`,
			want: false,
		},
		{
			name: "tengo multi-line result",
			lang: LangTengo,
			src: `
n := story.store_get("visits", 0)
result = n == 0
`,
			want: true,
		},
		{
			name:  "lua multi-line return",
			lang:  LangLua,
			src:   "local n = story.store_get(\"visits\", 0)\nreturn n == 4",
			setup: func(e *env) { e.store["visits"] = 4 },
			want:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := newEnv(t)
			if tt.setup != nil {
				tt.setup(e)
			}
			c, err := Condition(tt.lang, tt.name, tt.src)
			require.NoError(t, err)

			got, err := c.Evaluate(e.ctx)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestActions(t *testing.T) {
	for _, tt := range []struct {
		lang Lang
		src  string
	}{
		{LangTengo, `
story.set_prop("mood", "curious")
story.emit("greet", "hello")
story.emit("later", 1, 3)
story.message("Who goes there?")
story.store_put("bird/met", true)
`},
		{LangLua, `
story.set_prop("mood", "curious")
story.emit("greet", "hello")
story.emit("later", 1, 3)
story.message("Who goes there?")
story.store_put("bird/met", true)
`},
	} {
		t.Run(string(tt.lang), func(t *testing.T) {
			e := newEnv(t)
			a, err := Action(tt.lang, "greet", tt.src)
			require.NoError(t, err)

			require.NoError(t, a.Apply(e.ctx))

			assert.Equal(t, "curious", e.props["mood"])
			assert.Equal(t, []string{"Who goes there?"}, []string(*e.msgs))
			assert.Equal(t, true, e.store["bird/met"])

			greet := e.bus.Poll("greet")
			require.Len(t, greet, 1)
			assert.Equal(t, "hello", greet[0].Body)
			assert.Equal(t, 1, e.bus.Pending())
		})
	}
}

func TestCompileErrors(t *testing.T) {
	_, err := TengoCondition("bad", `story.frame( >`)
	assert.Error(t, err)

	_, err = LuaAction("bad", `story.frame(`)
	assert.Error(t, err)

	_, err = Condition("python", "bad", `True`)
	assert.Error(t, err)
}

func TestCompileTengoDeclaresGlobals(t *testing.T) {
	_, err := CompileTengo("reads", "x := result\ny := [x, __story]")
	require.NoError(t, err)

	_, err = CompileTengo("broken", `story.frame( >`)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "script: compile broken")
}

func TestRuntimeErrorsSurface(t *testing.T) {
	e := newEnv(t)
	e.ctx.Messages = nil

	for _, lang := range []Lang{LangTengo, LangLua} {
		a, err := Action(lang, "speak", `story.message("hi")`)
		require.NoError(t, err)
		err = a.Apply(e.ctx)
		require.Error(t, err, string(lang))
		assert.Contains(t, err.Error(), "collaborator not available", string(lang))
	}
}

func TestScriptsDriveAMachine(t *testing.T) {
	e := newEnv(t)

	cond, err := TengoCondition("mood", `story.prop("mood") == "curious"`)
	require.NoError(t, err)
	act, err := LuaAction("curious", `story.set_prop("mood", "curious")`)
	require.NoError(t, err)

	root := story.NewState("root").With(act)
	next := root.CreateSuccessor("next").With(cond)

	m, err := story.NewMachine(root)
	require.NoError(t, err)
	m.Advance(e.ctx)

	assert.Same(t, next, m.Active())
}

func TestLangOf(t *testing.T) {
	lang, err := LangOf("scripts/greeting.tengo")
	require.NoError(t, err)
	assert.Equal(t, LangTengo, lang)

	lang, err = LangOf("scripts/GREETING.LUA")
	require.NoError(t, err)
	assert.Equal(t, LangLua, lang)

	_, err = LangOf("scripts/greeting.py")
	assert.Error(t, err)
}
