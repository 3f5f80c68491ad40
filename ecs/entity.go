package ecs

import "fmt"

// Entity is a generational handle: the low 32 bits hold the slot and the
// high 32 bits hold the slot generation, bumped each time the slot is
// reused. The zero Entity is never alive.
type Entity uint64

type entityID uint32
type generation uint32

const entityIDBits = 32

func newEntity(id entityID, gen generation) Entity {
	return Entity(uint64(gen)<<entityIDBits | uint64(id))
}

func (e Entity) id() entityID { return entityID(uint32(e)) }

func (e Entity) generation() generation { return generation(uint32(uint64(e) >> entityIDBits)) }

// String formats e as slot/generation, e.g. "3/1", which is what story
// log lines carry.
func (e Entity) String() string {
	if e == 0 {
		return "none"
	}
	return fmt.Sprintf("%d/%d", e.id(), e.generation())
}

func (e Entity) Valid() bool {
	return e > 0
}
