package prefabs

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path"
	"path/filepath"
	"sort"
	"strings"
	"sync"
)

//go:embed scripts/*.tengo scripts/*.lua
var ScriptsFS embed.FS

//go:embed stories/*.yaml
var StoriesFS embed.FS

var (
	diskMu   sync.RWMutex
	diskRoot = "prefabs"
)

// SetDiskRoot sets the directory checked for prefab overrides before the
// embedded copies. An empty dir disables overrides.
func SetDiskRoot(dir string) {
	diskMu.Lock()
	defer diskMu.Unlock()
	diskRoot = dir
}

// DiskRoot returns the override directory.
func DiskRoot() string {
	diskMu.RLock()
	defer diskMu.RUnlock()
	return diskRoot
}

// LoadScript loads a script by name, e.g. "greeting.tengo" or
// "scripts/greeting.tengo".
func LoadScript(name string) ([]byte, error) {
	clean := cleanScriptPath(name)
	if data, err := readDisk(clean); err == nil {
		return data, nil
	}
	return ScriptsFS.ReadFile(clean)
}

// Load loads a story prefab by name, e.g. "bird_intro",
// "bird_intro.yaml" or "stories/bird_intro.yaml".
func Load(name string) ([]byte, error) {
	clean := cleanStoryPath(name)
	if data, err := readDisk(clean); err == nil {
		return data, nil
	}
	return StoriesFS.ReadFile(clean)
}

// Stories lists the names of the embedded story prefabs.
func Stories() ([]string, error) {
	entries, err := fs.ReadDir(StoriesFS, "stories")
	if err != nil {
		return nil, err
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !isSpecFile(e.Name()) {
			continue
		}
		names = append(names, strings.TrimSuffix(e.Name(), path.Ext(e.Name())))
	}
	sort.Strings(names)
	return names, nil
}

func readDisk(clean string) ([]byte, error) {
	p, ok := diskPath(clean)
	if !ok {
		return nil, fs.ErrNotExist
	}
	return os.ReadFile(p)
}

func diskPath(clean string) (string, bool) {
	root := DiskRoot()
	if root == "" || clean == "" {
		return "", false
	}
	return filepath.Join(root, filepath.FromSlash(clean)), true
}

func cleanStoryPath(p string) string {
	if p == "" {
		return ""
	}
	s := filepath.ToSlash(p)
	s = strings.TrimPrefix(s, "prefabs/")
	s = strings.TrimPrefix(s, "stories/")
	if !isSpecFile(s) {
		s += ".yaml"
	}
	return fmt.Sprintf("stories/%s", s)
}

func cleanScriptPath(p string) string {
	if p == "" {
		return ""
	}

	s := filepath.ToSlash(p)

	if after, ok := strings.CutPrefix(s, "prefabs/scripts/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "prefabs/"); ok {
		s = after
	}

	if after, ok := strings.CutPrefix(s, "scripts/"); ok {
		s = after
	}

	return fmt.Sprintf("scripts/%s", s)
}
