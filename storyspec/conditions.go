package storyspec

import (
	"fmt"
	"strconv"

	"github.com/milk9111/storyline/story"
	"github.com/milk9111/storyline/story/script"
)

var conditionRegistry = map[string]ConditionFactory{
	"frame_reached": func(args Args) (story.Condition, error) {
		var spec struct {
			Track string  `yaml:"track"`
			Frame float64 `yaml:"frame"`
			Tap   bool    `yaml:"tap"`
			Rearm bool    `yaml:"rearm"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		if spec.Track == "" {
			return nil, fmt.Errorf("%w: frame_reached needs a track", ErrBadArgs)
		}
		return &story.FrameReached{Track: spec.Track, Frame: spec.Frame, Tap: spec.Tap, Rearm: spec.Rearm}, nil
	},
	"event": func(args Args) (story.Condition, error) {
		if args.IsScalar() {
			subject, _ := args.Scalar()
			return story.OnEvent(subject), nil
		}
		var spec struct {
			Subject string `yaml:"subject"`
			Body    any    `yaml:"body"`
			Not     bool   `yaml:"not"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		if spec.Subject == "" {
			return nil, fmt.Errorf("%w: event needs a subject", ErrBadArgs)
		}
		switch {
		case !args.Has("body") && spec.Not:
			return nil, fmt.Errorf("%w: event not needs a body", ErrBadArgs)
		case !args.Has("body"):
			return story.OnEvent(spec.Subject), nil
		case spec.Not:
			return story.OnEventBodyNot(spec.Subject, spec.Body), nil
		default:
			return story.OnEventBody(spec.Subject, spec.Body), nil
		}
	},
	"wait": func(args Args) (story.Condition, error) {
		if args.IsScalar() {
			s, _ := args.Scalar()
			n, err := strconv.Atoi(s)
			if err != nil {
				return nil, fmt.Errorf("%w: wait: %v", ErrBadArgs, err)
			}
			return story.Wait(n), nil
		}
		var spec struct {
			Frames int `yaml:"frames"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		return story.Wait(spec.Frames), nil
	},
	"property": func(args Args) (story.Condition, error) {
		var spec struct {
			Name  string `yaml:"name"`
			Op    string `yaml:"op"`
			Value any    `yaml:"value"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		op, err := story.ParseOp(spec.Op)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadArgs, err)
		}
		return story.PropertyIs(spec.Name, op, spec.Value), nil
	},
	"store": func(args Args) (story.Condition, error) {
		var spec struct {
			Path    string `yaml:"path"`
			Value   any    `yaml:"value"`
			Default any    `yaml:"default"`
		}
		if err := args.Decode(&spec); err != nil {
			return nil, err
		}
		return &story.StoreEquals{Path: spec.Path, Value: spec.Value, Default: spec.Default}, nil
	},
	"all": func(args Args) (story.Condition, error) {
		conds, err := args.Conditions()
		if err != nil {
			return nil, err
		}
		return story.All(conds...), nil
	},
	"any": func(args Args) (story.Condition, error) {
		conds, err := args.Conditions()
		if err != nil {
			return nil, err
		}
		return story.Any(conds...), nil
	},
	"not": func(args Args) (story.Condition, error) {
		conds, err := args.Conditions()
		if err != nil {
			return nil, err
		}
		if len(conds) != 1 {
			return nil, fmt.Errorf("%w: not takes exactly one condition", ErrBadArgs)
		}
		return story.Not(conds[0]), nil
	},
	"always": func(Args) (story.Condition, error) {
		return story.Predicate("always", func(*story.Context) bool { return true }), nil
	},
	"tengo": func(args Args) (story.Condition, error) {
		src, err := args.Scalar()
		if err != nil {
			return nil, err
		}
		return script.TengoCondition("inline", src)
	},
	"lua": func(args Args) (story.Condition, error) {
		src, err := args.Scalar()
		if err != nil {
			return nil, err
		}
		return script.LuaCondition("inline", src)
	},
	"script": func(args Args) (story.Condition, error) {
		lang, name, src, err := loadScript(args)
		if err != nil {
			return nil, err
		}
		return script.Condition(lang, name, src)
	},
}

func loadScript(args Args) (script.Lang, string, string, error) {
	name, err := args.Scalar()
	if err != nil {
		return "", "", "", err
	}
	lang, err := script.LangOf(name)
	if err != nil {
		return "", "", "", err
	}
	src, err := args.Script(name)
	if err != nil {
		return "", "", "", fmt.Errorf("load script %s: %w", name, err)
	}
	return lang, name, string(src), nil
}
