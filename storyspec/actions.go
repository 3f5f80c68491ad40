package storyspec

import (
	"fmt"
	"log/slog"

	"gopkg.in/yaml.v3"

	"github.com/milk9111/storyline/story"
	"github.com/milk9111/storyline/story/script"
)

// Range is a [min, max] pair that may be written as a single number.
type Range [2]float64

func (r *Range) UnmarshalYAML(node *yaml.Node) error {
	if node.Kind == yaml.ScalarNode {
		var v float64
		if err := node.Decode(&v); err != nil {
			return err
		}
		*r = Range{v, v}
		return nil
	}
	var pair []float64
	if err := node.Decode(&pair); err != nil {
		return err
	}
	if len(pair) != 2 {
		return fmt.Errorf("line %d: range needs two values, got %d", node.Line, len(pair))
	}
	*r = Range{pair[0], pair[1]}
	return nil
}

var actionRegistry = map[string]ActionFactory{
	"play_animation": func(args Args) (story.Action, error) {
		var spec struct {
			Track string  `yaml:"track"`
			Clip  string  `yaml:"clip"`
			Start float64 `yaml:"start"`
			End   float64 `yaml:"end"`
			Loop  bool    `yaml:"loop"`
			Speed float64 `yaml:"speed"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		if spec.Track == "" {
			return nil, fmt.Errorf("%w: play_animation needs a track", ErrBadArgs)
		}
		return &story.PlayAnimation{Clip: story.Clip{
			Track: spec.Track, Name: spec.Clip, Start: spec.Start, End: spec.End, Loop: spec.Loop, Speed: spec.Speed,
		}}, nil
	},
	"stop_animation": func(args Args) (story.Action, error) {
		track, err := scalarOr(args, "track")
		if err != nil {
			return nil, err
		}
		return &story.StopAnimation{Track: track}, nil
	},
	"play_sound": func(args Args) (story.Action, error) {
		if args.IsScalar() {
			path, _ := args.Scalar()
			return story.PlaySound(story.Sound{Path: path, Volume: 1}), nil
		}
		spec := struct {
			Path     string  `yaml:"path"`
			Volume   float64 `yaml:"volume"`
			Pitch    Range   `yaml:"pitch"`
			Priority int     `yaml:"priority"`
			Loop     bool    `yaml:"loop"`
		}{Volume: 1, Pitch: Range{1, 1}}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		if spec.Path == "" {
			return nil, fmt.Errorf("%w: play_sound needs a path", ErrBadArgs)
		}
		return story.PlaySound(story.Sound{
			Path: spec.Path, Volume: spec.Volume, PitchMin: spec.Pitch[0], PitchMax: spec.Pitch[1],
			Priority: spec.Priority, Loop: spec.Loop,
		}), nil
	},
	"play_music": func(args Args) (story.Action, error) {
		if args.IsScalar() {
			track, _ := args.Scalar()
			return story.PlayMusic(story.Music{Tracks: []string{track}, Volume: 1, Loop: true}), nil
		}
		spec := struct {
			Tracks   []string `yaml:"tracks"`
			Track    string   `yaml:"track"`
			Volume   float64  `yaml:"volume"`
			Loop     bool     `yaml:"loop"`
			Priority int      `yaml:"priority"`
			Fade     int      `yaml:"fade"`
		}{Volume: 1, Loop: true}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		if spec.Track != "" {
			spec.Tracks = append(spec.Tracks, spec.Track)
		}
		if len(spec.Tracks) == 0 {
			return nil, fmt.Errorf("%w: play_music needs a track", ErrBadArgs)
		}
		return story.PlayMusic(story.Music{
			Tracks: spec.Tracks, Volume: spec.Volume, Loop: spec.Loop, Priority: spec.Priority, FadeFrames: spec.Fade,
		}), nil
	},
	"stop_music": func(args Args) (story.Action, error) {
		var spec struct {
			Fade int `yaml:"fade"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		return &story.StopMusic{FadeFrames: spec.Fade}, nil
	},
	"event":      sendEvent,
	"send_event": sendEvent,
	"message": func(args Args) (story.Action, error) {
		text, err := scalarOr(args, "text")
		if err != nil {
			return nil, err
		}
		return story.Say(text), nil
	},
	"set_property": func(args Args) (story.Action, error) {
		var spec struct {
			Name  string `yaml:"name"`
			Value any    `yaml:"value"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		return &story.SetProperty{Name: spec.Name, Value: spec.Value}, nil
	},
	"lerp_property": func(args Args) (story.Action, error) {
		var spec struct {
			Name   string  `yaml:"name"`
			From   float64 `yaml:"from"`
			To     float64 `yaml:"to"`
			Frames int     `yaml:"frames"`
			Clamp  bool    `yaml:"clamp"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		return &story.LerpProperty{Name: spec.Name, From: spec.From, To: spec.To, Frames: spec.Frames, Clamp: spec.Clamp}, nil
	},
	"fade_property": func(args Args) (story.Action, error) {
		var spec struct {
			Name  string  `yaml:"name"`
			Track string  `yaml:"track"`
			From  float64 `yaml:"from"`
			To    float64 `yaml:"to"`
			Start float64 `yaml:"start"`
			End   float64 `yaml:"end"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		return &story.FadeProperty{
			Name: spec.Name, Track: spec.Track, From: spec.From, To: spec.To, StartFrame: spec.Start, EndFrame: spec.End,
		}, nil
	},
	"set_store": func(args Args) (story.Action, error) {
		var spec struct {
			Path  string `yaml:"path"`
			Value any    `yaml:"value"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		return &story.SetStore{Path: spec.Path, Value: spec.Value}, nil
	},
	"destroy": func(Args) (story.Action, error) {
		return story.DestroyOwner{}, nil
	},
	"impulse": func(args Args) (story.Action, error) {
		var spec struct {
			X float64 `yaml:"x"`
			Y float64 `yaml:"y"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		impulse := [2]float64{spec.X, spec.Y}
		return story.Call(fmt.Sprintf("impulse %g,%g", spec.X, spec.Y), func(ctx *story.Context) error {
			if ctx.Properties == nil {
				return fmt.Errorf("%w: properties", story.ErrMissingCollaborator)
			}
			return ctx.Properties.SetProperty(story.ImpulseProperty, impulse)
		}), nil
	},
	"print": func(args Args) (story.Action, error) {
		text, err := args.Scalar()
		if err != nil {
			return nil, err
		}
		return story.Do("print "+text, func(ctx *story.Context) {
			log := ctx.Log
			if log == nil {
				log = slog.Default()
			}
			log.Info(text, "frame", ctx.Frame())
		}), nil
	},
	"tengo": func(args Args) (story.Action, error) {
		src, err := args.Scalar()
		if err != nil {
			return nil, err
		}
		return script.TengoAction("inline", src)
	},
	"lua": func(args Args) (story.Action, error) {
		src, err := args.Scalar()
		if err != nil {
			return nil, err
		}
		return script.LuaAction("inline", src)
	},
	"script": func(args Args) (story.Action, error) {
		lang, name, src, err := loadScript(args)
		if err != nil {
			return nil, err
		}
		return script.Action(lang, name, src)
	},
	"every": func(args Args) (story.Action, error) {
		acts, err := args.Actions()
		if err != nil {
			return nil, err
		}
		if len(acts) != 1 {
			return nil, fmt.Errorf("%w: every wraps exactly one action", ErrBadArgs)
		}
		return story.Every(acts[0]), nil
	},
}

func sendEvent(args Args) (story.Action, error) {
	if args.IsScalar() {
		subject, _ := args.Scalar()
		return story.Emit(subject, nil), nil
	}
	var spec struct {
		Subject string `yaml:"subject"`
		Body    any    `yaml:"body"`
		Delay   int    `yaml:"delay"`
	}
	if err := args.Decode(&spec); err != nil {
		return nil, err
	}
	if spec.Subject == "" {
		return nil, fmt.Errorf("%w: %s needs a subject", ErrBadArgs, args.Kind())
	}
	return story.EmitAfter(spec.Subject, spec.Body, spec.Delay), nil
}

// scalarOr accepts either a plain value or a mapping with key.
func scalarOr(args Args, key string) (string, error) {
	if args.IsScalar() {
		return args.Scalar()
	}
	var m map[string]string
	if err := args.Decode(&m); err != nil {
		return "", err
	}
	v, ok := m[key]
	if !ok || v == "" {
		return "", fmt.Errorf("%w: %s needs %s", ErrBadArgs, args.Kind(), key)
	}
	return v, nil
}
