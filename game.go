package main

import (
	"errors"
	"fmt"
	"image/color"
	"log/slog"
	"path/filepath"

	"github.com/ebitenui/ebitenui"
	"github.com/hajimehoshi/ebiten/v2"
	"github.com/hajimehoshi/ebiten/v2/ebitenutil"
	"github.com/hajimehoshi/ebiten/v2/inpututil"

	"github.com/milk9111/storyline/assets"
	"github.com/milk9111/storyline/common"
	"github.com/milk9111/storyline/config"
	"github.com/milk9111/storyline/ecs"
	"github.com/milk9111/storyline/ecs/component"
	"github.com/milk9111/storyline/ecs/entity"
	"github.com/milk9111/storyline/ecs/system"
	"github.com/milk9111/storyline/prefabs"
	"github.com/milk9111/storyline/storyspec"
)

var background = color.RGBA{R: 0x1d, G: 0x2b, B: 0x35, A: 0xff}

type Game struct {
	cfg config.Config
	log *slog.Logger
	reg *storyspec.Registry

	world       *ecs.World
	stories     *system.StorySystem
	persistence *system.PersistenceSystem
	debug       *system.StoryDebugSystem

	watcher *prefabs.Watcher
	pauseUI *ebitenui.UI
	paused  bool
	quit    bool
}

func NewGame(cfg config.Config, log *slog.Logger) (*Game, error) {
	g := &Game{
		cfg:   cfg,
		log:   log,
		reg:   storyspec.NewRegistry(),
		world: ecs.NewWorld(),
	}

	g.stories = system.NewStorySystem(
		system.WithStoryLogger(log),
		system.WithAssetCheck(assets.Exists),
		system.WithMessageFrames(cfg.MessageTicks),
	)
	g.persistence = system.NewPersistenceSystem(0, log)
	g.debug = system.NewStoryDebugSystem(cfg.Debug)

	g.world.AddSystem(system.NewInputSystem(g.stories,
		&system.KeyBinding{Key: ebiten.KeySpace, Button: ebiten.StandardGamepadButtonRightBottom, HasButton: true, Subject: "ShowDialogue"},
		&system.KeyBinding{Key: ebiten.KeyL, Button: ebiten.StandardGamepadButtonRightRight, HasButton: true, Subject: "Switch", Bodies: []any{"on", "off"}},
	))
	physics := system.NewPhysicsSystem(0)
	g.world.AddSystem(storyStage(g.stories, physics))
	g.world.AddSystem(system.NewAudioSystem(assets.Voices{}, cfg.MaxVoices, log))
	g.world.AddSystem(system.NewMusicSystem(assets.Voices{}, nil, log))
	g.world.AddSystem(system.NewRenderSystem())
	g.world.AddSystem(system.NewMessageSystem(0))
	g.world.AddSystem(system.NewTTLSystem())
	g.world.AddSystem(g.persistence)
	g.world.AddSystem(g.debug)

	if _, err := entity.NewMusicPlayer(g.world, nil); err != nil {
		return nil, err
	}
	if _, err := entity.NewSaveStore(g.world, cfg.SavePath); err != nil {
		return nil, err
	}
	if err := g.spawnStories(); err != nil {
		return nil, err
	}

	if cfg.Watch && prefabs.DiskRoot() != "" {
		watcher, err := prefabs.NewWatcher(log, prefabs.DiskRoot())
		if err != nil {
			log.Warn("game: hot reload disabled", "dir", prefabs.DiskRoot(), "error", err)
		} else {
			g.watcher = watcher
		}
	}

	g.pauseUI = NewPauseUI(g)
	return g, nil
}

// storyStage runs the systems stories read from and write to, in the order
// they depend on each other: animation frames first, then the stories, then
// the physics their impulses push.
func storyStage(stories *system.StorySystem, physics *system.PhysicsSystem) *ecs.Scheduler {
	return ecs.NewScheduler(system.NewAnimationSystem(), stories, physics)
}

// spawnStories spawns every configured story. A story that fails to build
// is logged and skipped so the rest still run.
func (g *Game) spawnStories() error {
	spawned := 0
	var errs []error
	for _, name := range g.cfg.Stories {
		if _, err := entity.LoadStoryteller(g.world, name, g.reg); err != nil {
			g.log.Error("game: story not loaded", "story", name, "error", err)
			errs = append(errs, err)
			continue
		}
		spawned++
	}
	if spawned == 0 && len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

// reload replaces every storyteller with a fresh copy of its prefab. The
// music player and save store survive.
func (g *Game) reload(path string) {
	g.log.Info("game: reloading stories", "changed", filepath.Base(path))
	entity.ClearStorytellers(g.world)
	if err := g.spawnStories(); err != nil {
		g.log.Error("game: reload failed", "error", err)
	}
}

func (g *Game) restart() {
	ecs.ForEach(g.world, component.StoryComponent.Kind(), func(e ecs.Entity, _ *component.Story) {
		g.stories.Restart(g.world, e)
	})
}

func (g *Game) pollWatcher() {
	if g.watcher == nil {
		return
	}
	changed := ""
	for {
		select {
		case path, ok := <-g.watcher.Events:
			if !ok {
				g.watcher = nil
				return
			}
			changed = path
			continue
		case err, ok := <-g.watcher.Errors:
			if ok {
				g.log.Warn("game: watcher error", "error", err)
			}
			continue
		default:
		}
		break
	}
	if changed != "" {
		g.reload(changed)
	}
}

func (g *Game) Update() error {
	if g.quit {
		return ebiten.Termination
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyEscape) || inpututil.IsKeyJustPressed(ebiten.KeyP) {
		g.paused = !g.paused
	}
	if g.paused {
		g.pauseUI.Update()
		return nil
	}

	if inpututil.IsKeyJustPressed(ebiten.KeyR) {
		g.restart()
	}
	if inpututil.IsKeyJustPressed(ebiten.KeyF3) {
		g.debug.Enabled = !g.debug.Enabled
	}

	g.pollWatcher()
	g.world.Update()
	return nil
}

func (g *Game) Draw(screen *ebiten.Image) {
	screen.Fill(background)
	g.world.Draw(screen)

	if g.debug.Enabled {
		ebitenutil.DebugPrint(screen, fmt.Sprintf("Frame: %d    FPS: %.2f", g.world.Frame(), ebiten.ActualFPS()))
	}
	if g.paused {
		g.pauseUI.Draw(screen)
	}
}

func (g *Game) Layout(outsideWidth, outsideHeight int) (int, int) {
	return common.BaseWidth, common.BaseHeight
}

// Close saves unsaved story progress and stops hot reload.
func (g *Game) Close() error {
	var errs []error
	if err := g.persistence.Flush(g.world); err != nil {
		errs = append(errs, err)
	}
	if g.watcher != nil {
		if err := g.watcher.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
