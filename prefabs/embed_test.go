package prefabs

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCleanPaths(t *testing.T) {
	stories := map[string]string{
		"lamp":                      "stories/lamp.yaml",
		"lamp.yaml":                 "stories/lamp.yaml",
		"stories/lamp.yml":          "stories/lamp.yml",
		"prefabs/stories/lamp.yaml": "stories/lamp.yaml",
		"":                          "",
	}
	for in, want := range stories {
		assert.Equal(t, want, cleanStoryPath(in), in)
	}

	scripts := map[string]string{
		"greeting.tengo":               "scripts/greeting.tengo",
		"scripts/greeting.tengo":       "scripts/greeting.tengo",
		"prefabs/scripts/farewell.lua": "scripts/farewell.lua",
		"prefabs/greeting.tengo":       "scripts/greeting.tengo",
		"":                             "",
	}
	for in, want := range scripts {
		assert.Equal(t, want, cleanScriptPath(in), in)
	}
}

func TestEmbeddedPrefabs(t *testing.T) {
	names, err := Stories()
	require.NoError(t, err)
	assert.Equal(t, []string{"bird_intro", "lamp"}, names)

	withDiskRoot(t, "")
	for _, name := range names {
		spec, err := LoadStorySpec(name)
		require.NoError(t, err, name)
		assert.Equal(t, name, spec.Name)
	}

	for _, script := range []string{"greeting.tengo", "farewell.lua"} {
		data, err := LoadScript(script)
		require.NoError(t, err, script)
		assert.NotEmpty(t, data)
	}

	_, err = LoadStorySpec("no_such_story")
	assert.Error(t, err)
}

func TestDiskOverride(t *testing.T) {
	dir := t.TempDir()
	withDiskRoot(t, dir)
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "stories"), 0o755))
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "scripts"), 0o755))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "stories", "lamp.yaml"), []byte("name: lamp\nroot: off\nstates:\n  off: {}\n"), 0o644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "scripts", "greeting.tengo"), []byte("// override\n"), 0o644))

	spec, err := LoadStorySpec("lamp")
	require.NoError(t, err)
	assert.Equal(t, "off", spec.Root)

	data, err := LoadScript("greeting.tengo")
	require.NoError(t, err)
	assert.Equal(t, "// override\n", string(data))

	// Stories without an override still come from the embedded copy.
	spec, err = LoadStorySpec("bird_intro")
	require.NoError(t, err)
	assert.Equal(t, "init", spec.Root)
}

func withDiskRoot(t *testing.T, dir string) {
	t.Helper()
	prev := DiskRoot()
	SetDiskRoot(dir)
	t.Cleanup(func() { SetDiskRoot(prev) })
}
