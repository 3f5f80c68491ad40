// Package script lets story conditions and actions be written as small
// Tengo or Lua programs.
//
// Scripts see a `story` module with these functions:
//
//	frame()                      current simulation frame
//	prop(name)                   property of the story's owner, or undefined/nil
//	set_prop(name, value)
//	event(subject)               true when an event with subject is visible
//	event_body(subject)          body of the first visible event with subject
//	emit(subject[, body[, delay]])
//	message(text)
//	store_get(path[, default])
//	store_put(path, value)
//	track_frame(track)           current frame of an animation track
//
// A condition written as a single expression is evaluated as that
// expression. Longer Tengo conditions assign to `result`; longer Lua
// conditions return a value.
package script

import (
	"fmt"
	"path/filepath"
	"strings"

	"github.com/milk9111/storyline/story"
)

// Lang is a scripting language.
type Lang string

const (
	LangTengo Lang = "tengo"
	LangLua   Lang = "lua"
)

// LangOf picks a language from a file extension.
func LangOf(path string) (Lang, error) {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".tengo":
		return LangTengo, nil
	case ".lua":
		return LangLua, nil
	}
	return "", fmt.Errorf("script: no language for %q", path)
}

// Condition compiles src as a story condition.
func Condition(lang Lang, name, src string) (story.Condition, error) {
	switch lang {
	case LangTengo:
		return TengoCondition(name, src)
	case LangLua:
		return LuaCondition(name, src)
	}
	return nil, fmt.Errorf("script: unknown language %q", lang)
}

// Action compiles src as a story action.
func Action(lang Lang, name, src string) (story.Action, error) {
	switch lang {
	case LangTengo:
		return TengoAction(name, src)
	case LangLua:
		return LuaAction(name, src)
	}
	return nil, fmt.Errorf("script: unknown language %q", lang)
}

func isExpression(src, keyword string) bool {
	src = strings.TrimSpace(src)
	return src != "" && !strings.Contains(src, "\n") && !strings.Contains(src, keyword)
}

// host implements the script-facing story functions against a context.
type host struct {
	ctx *story.Context
}

func (h host) frame() int { return h.ctx.Frame() }

func (h host) prop(name string) (any, error) {
	if h.ctx.Properties == nil {
		return nil, fmt.Errorf("%w: properties", story.ErrMissingCollaborator)
	}
	v, _ := h.ctx.Properties.Property(name)
	return v, nil
}

func (h host) setProp(name string, v any) error {
	if h.ctx.Properties == nil {
		return fmt.Errorf("%w: properties", story.ErrMissingCollaborator)
	}
	return h.ctx.Properties.SetProperty(name, v)
}

func (h host) events(subject string) ([]story.Event, error) {
	if h.ctx.Events == nil {
		return nil, fmt.Errorf("%w: events", story.ErrMissingCollaborator)
	}
	return h.ctx.Events.Poll(subject), nil
}

func (h host) emit(subject string, body any, delay int) error {
	if h.ctx.Events == nil {
		return fmt.Errorf("%w: events", story.ErrMissingCollaborator)
	}
	h.ctx.Events.Send(story.Event{Subject: subject, Body: body}, delay)
	return nil
}

func (h host) message(text string) error {
	if h.ctx.Messages == nil {
		return fmt.Errorf("%w: messages", story.ErrMissingCollaborator)
	}
	return h.ctx.Messages.Show(text)
}

func (h host) storeGet(path string, def any) (any, error) {
	if h.ctx.Store == nil {
		return nil, fmt.Errorf("%w: store", story.ErrMissingCollaborator)
	}
	if v, ok := h.ctx.Store.Get(path); ok {
		return v, nil
	}
	return def, nil
}

func (h host) storePut(path string, v any) error {
	if h.ctx.Store == nil {
		return fmt.Errorf("%w: store", story.ErrMissingCollaborator)
	}
	return h.ctx.Store.Put(path, v)
}

func (h host) trackFrame(track string) (float64, error) {
	if h.ctx.Animator == nil {
		return 0, fmt.Errorf("%w: animator", story.ErrMissingCollaborator)
	}
	return h.ctx.Animator.CurrentFrame(track)
}
