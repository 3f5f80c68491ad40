package story

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuilderFormsProduceIdenticalGraphs(t *testing.T) {
	chained := func() *State {
		root := NewState("intro")
		root.AddAction(Loop("body", "idle", 0, 40))
		root.CreateSubStep("chirp").
			AddCondition(Tap("body", 25)).
			AddAction(PlaySound(Sound{Path: "sfx/chirp.wav", Volume: 0.8}))
		root.CreateSuccessor("greet").
			AddCondition(OnEvent("player-near")).
			AddAction(Say("Hello there."))
		return root
	}

	composed := func() *State {
		chirp := NewState("chirp").With(
			Tap("body", 25),
			PlaySound(Sound{Path: "sfx/chirp.wav", Volume: 0.8}),
		)
		greet := NewState("greet").With(OnEvent("player-near"), Say("Hello there."))
		root := NewState("intro").With(Loop("body", "idle", 0, 40), chirp)
		greet.AddPredecessor(root)
		return root
	}

	assert.Equal(t, Dump(chained()), Dump(composed()))
}

func TestDumpTerminatesOnCycles(t *testing.T) {
	a := NewState("a")
	b := a.CreateSuccessor("b")
	b.AddSuccessor(a)

	out := Dump(a)
	assert.Equal(t, "State(a)\n  -> State(b)\n    -> State(a) (see above)\n", out)
}

func TestEmptyNameUsesCallerLocation(t *testing.T) {
	s := NewState("")
	sub := s.CreateSubStep("")
	next := s.CreateSuccessor("")

	for _, st := range []*State{s, sub, next} {
		assert.True(t, strings.HasPrefix(st.Name, "graph_test.go:"), st.Name)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name  string
		build func() *State
		want  error
	}{
		{
			name:  "nil root",
			build: func() *State { return nil },
			want:  ErrNilState,
		},
		{
			name: "duplicate successor",
			build: func() *State {
				root := NewState("root")
				next := NewState("next")
				root.AddSuccessor(next).AddSuccessor(next)
				return root
			},
			want: ErrDuplicateSuccessor,
		},
		{
			name: "sub-step cycle",
			build: func() *State {
				root := NewState("root")
				a := root.CreateSubStep("a")
				b := a.CreateSubStep("b")
				b.AddSubStep(a)
				return root
			},
			want: ErrSubStepCycle,
		},
		{
			name: "root nested under itself",
			build: func() *State {
				root := NewState("root")
				root.AddSubStep(root)
				return root
			},
			want: ErrSubStepCycle,
		},
		{
			name: "sub-step with successors",
			build: func() *State {
				root := NewState("root")
				root.CreateSubStep("sub").CreateSuccessor("elsewhere")
				return root
			},
			want: ErrSubStepSuccessor,
		},
		{
			name: "unsupported part",
			build: func() *State {
				return NewState("root").With(42)
			},
			want: ErrUnsupportedPart,
		},
		{
			name: "nil successor",
			build: func() *State {
				return NewState("root").AddSuccessor(nil)
			},
			want: ErrNilState,
		},
		{
			name: "successor cycle is fine",
			build: func() *State {
				a := NewState("a")
				b := a.CreateSuccessor("b")
				b.AddSuccessor(a)
				return a
			},
		},
		{
			name: "shared sub-step is fine",
			build: func() *State {
				shared := NewState("shared")
				root := NewState("root").AddSubStep(shared)
				root.CreateSuccessor("next").AddSubStep(shared)
				return root
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := Validate(tt.build())
			if tt.want == nil {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.want)

			var gce *GraphConstructionError
			assert.True(t, errors.As(err, &gce), "want GraphConstructionError, got %T", err)
		})
	}
}

func TestWalkVisitsEachStateOnce(t *testing.T) {
	a := NewState("a")
	b := a.CreateSuccessor("b")
	c := b.CreateSuccessor("c")
	c.AddSuccessor(a)
	a.CreateSubStep("a.sub")

	var names []string
	Walk(a, func(s *State) { names = append(names, s.Name) })

	assert.Equal(t, []string{"a", "a.sub", "b", "c"}, names)
}
