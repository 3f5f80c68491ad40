package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/storyline/common"
	"github.com/milk9111/storyline/config"
	"github.com/milk9111/storyline/logging"
	"github.com/milk9111/storyline/prefabs"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run() error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	stories := flag.String("story", strings.Join(cfg.Stories, ","), "comma separated story prefabs to spawn")
	storyDir := flag.String("story-dir", cfg.StoryDir, "directory whose stories/ and scripts/ override the embedded prefabs")
	watch := flag.Bool("watch", cfg.Watch, "reload stories when their files change")
	debug := flag.Bool("debug", cfg.Debug, "show story state labels")
	baseMonitor := flag.Bool("m", false, "use base monitor instead of primary (for multi-monitor setups)")
	flag.Parse()

	cfg.Stories = splitList(*stories)
	cfg.StoryDir = *storyDir
	cfg.Watch = *watch
	cfg.Debug = *debug

	log, err := logging.New(logging.Options{Level: cfg.LogLevel, JSON: cfg.LogJSON})
	if err != nil {
		return err
	}
	prefabs.SetDiskRoot(cfg.StoryDir)

	if *baseMonitor {
		ebiten.SetMonitor(ebiten.AppendMonitors(nil)[0])
	}
	ebiten.SetTPS(cfg.TPS)
	ebiten.SetWindowResizingMode(ebiten.WindowResizingModeEnabled)
	ebiten.SetWindowSize(common.BaseWidth*2, common.BaseHeight*2)
	ebiten.SetWindowTitle("storyline")

	game, err := NewGame(cfg, log)
	if err != nil {
		return err
	}
	runErr := ebiten.RunGame(game)
	if errors.Is(runErr, ebiten.Termination) {
		runErr = nil
	}
	return errors.Join(runErr, game.Close())
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
