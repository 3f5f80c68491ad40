package component

import (
	"errors"
	"fmt"
	"sync/atomic"
)

var (
	ErrEntityNotAlive       = errors.New("ecs: entity not alive")
	ErrNilComponent         = errors.New("ecs: component is nil")
	ErrInvalidComponentKind = errors.New("ecs: invalid component kind")
)

// ComponentKind identifies the storage for components of type T.
type ComponentKind[T any] struct {
	id ComponentID
}

func NewComponentKind[T any]() ComponentKind[T] {
	return ComponentKind[T]{id: ComponentID(nextComponentID.Add(1))}
}

func (k ComponentKind[T]) ID() ComponentID {
	return k.id
}

func (k ComponentKind[T]) Valid() bool {
	return k.id != 0
}

// ComponentHandle is the package-level registration of a component type,
// e.g. StoryComponent.
type ComponentHandle[T any] struct {
	kind ComponentKind[T]
	name string
}

func NewComponent[T any]() ComponentHandle[T] {
	var zero T
	return ComponentHandle[T]{kind: NewComponentKind[T](), name: fmt.Sprintf("%T", zero)}
}

func (h ComponentHandle[T]) Kind() ComponentKind[T] {
	return h.kind
}

// Name is the component's type name, used in logs and debug dumps.
func (h ComponentHandle[T]) Name() string {
	return h.name
}

type ComponentID uint32

var nextComponentID atomic.Uint32
