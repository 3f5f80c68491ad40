package prefabs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const doorStory = `
root: closed
transform: {x: 4, y: 8}
body: {mass: 2, radius: 3}
tracks:
  door: {clip: shut, start: 0, end: 10}
properties:
  locked: true
states:
  closed:
    actions:
      - set_property: {name: locked, value: true}
      - destroy
    sub_steps:
      - name: rattle
        conditions: [{event: Knock}]
    successors: [open]
  open:
    conditions:
      - event: {subject: Key, body: brass}
    on_exit:
      - print: closing
    successors:
      - closed
      - name: jammed
        conditions: [always]
`

func TestParseStorySpec(t *testing.T) {
	spec, err := ParseStorySpec([]byte(doorStory), "stories/door.yaml")
	require.NoError(t, err)

	assert.Equal(t, "door", spec.Name)
	assert.Equal(t, "stories/door.yaml", spec.Source)
	assert.Equal(t, "closed", spec.Root)
	assert.Equal(t, TransformSpec{X: 4, Y: 8}, spec.Transform)
	require.NotNil(t, spec.Body)
	assert.Equal(t, BodySpec{Mass: 2, Radius: 3}, *spec.Body)
	assert.Equal(t, TrackSpec{Clip: "shut", End: 10}, spec.Tracks["door"])
	assert.Equal(t, true, spec.Properties["locked"])
	assert.Equal(t, []string{"closed", "open"}, spec.StateNames())

	closed := spec.States["closed"]
	require.Len(t, closed.Actions, 2)
	assert.Equal(t, "set_property", closed.Actions[0].Kind)
	require.NotNil(t, closed.Actions[0].Args)
	assert.Equal(t, "destroy", closed.Actions[1].Kind)
	assert.Nil(t, closed.Actions[1].Args)

	require.Len(t, closed.SubSteps, 1)
	require.NotNil(t, closed.SubSteps[0].Inline)
	assert.Equal(t, "rattle", closed.SubSteps[0].Inline.Name)
	assert.Equal(t, "event", closed.SubSteps[0].Inline.Conditions[0].Kind)

	require.Len(t, closed.Successors, 1)
	assert.Equal(t, "open", closed.Successors[0].Ref)

	open := spec.States["open"]
	assert.Equal(t, "print", open.OnExit[0].Kind)
	require.Len(t, open.Successors, 2)
	assert.Equal(t, "closed", open.Successors[0].Ref)
	assert.Equal(t, "jammed", open.Successors[1].Inline.Name)
	assert.Equal(t, "always", open.Successors[1].Inline.Conditions[0].Kind)
}

func TestParseStorySpecErrors(t *testing.T) {
	tests := []struct {
		name string
		src  string
	}{
		{name: "no root", src: "states:\n  a: {}\n"},
		{name: "no states", src: "root: a\n"},
		{name: "unknown top-level key", src: "root: a\nstate:\n  a: {}\n"},
		{name: "unknown inline state key", src: "root: a\nstates:\n  a:\n    successors:\n      - name: b\n        action: [destroy]\n"},
		{name: "part with two keys", src: "root: a\nstates:\n  a:\n    actions:\n      - {print: x, destroy: y}\n"},
		{name: "empty reference", src: "root: a\nstates:\n  a:\n    successors: [\"\"]\n"},
		{name: "part is a list", src: "root: a\nstates:\n  a:\n    actions:\n      - [print]\n"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseStorySpec([]byte(tt.src), "bad.yaml")
			assert.Error(t, err)
		})
	}
}

func TestParseStorySpecEmptyState(t *testing.T) {
	spec, err := ParseStorySpec([]byte("name: tiny\nroot: a\nstates:\n  a:\n"), "x.yaml")
	require.NoError(t, err)
	assert.Equal(t, "tiny", spec.Name)
	assert.NotNil(t, spec.States["a"])
}

func TestLoadStorySpecFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "door.yaml")
	require.NoError(t, os.WriteFile(path, []byte(doorStory), 0o644))

	spec, err := LoadStorySpecFile(path)
	require.NoError(t, err)
	assert.Equal(t, "door", spec.Name)

	_, err = LoadStorySpecFile(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
