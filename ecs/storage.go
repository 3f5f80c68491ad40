package ecs

// entityStore tracks slot generations and recycled slot ids. Slot ids start
// at 1 so that a zero Entity is never valid.
type entityStore struct {
	gens  []generation
	alive []bool
	free  []entityID
	count int
}

func (s *entityStore) create() Entity {
	var id entityID
	if n := len(s.free); n > 0 {
		id = s.free[n-1]
		s.free = s.free[:n-1]
	} else {
		s.gens = append(s.gens, 0)
		s.alive = append(s.alive, false)
		id = entityID(len(s.gens))
	}
	s.alive[id-1] = true
	s.count++
	return newEntity(id, s.gens[id-1])
}

func (s *entityStore) destroy(e Entity) bool {
	if !s.isAlive(e) {
		return false
	}
	idx := e.id() - 1
	s.alive[idx] = false
	s.gens[idx]++
	s.free = append(s.free, e.id())
	s.count--
	return true
}

func (s *entityStore) isAlive(e Entity) bool {
	id := e.id()
	if id == 0 || int(id) > len(s.gens) {
		return false
	}
	return s.alive[id-1] && s.gens[id-1] == e.generation()
}

func (s *entityStore) list() []Entity {
	out := make([]Entity, 0, s.count)
	for i, alive := range s.alive {
		if alive {
			out = append(out, newEntity(entityID(i+1), s.gens[i]))
		}
	}
	return out
}

// componentStore is a sparse set of component values keyed by entity slot.
// Dense order is insertion order, with swap-remove on deletion.
type componentStore struct {
	dense  []Entity
	values []any
	sparse map[entityID]int
}

func newComponentStore() *componentStore {
	return &componentStore{sparse: make(map[entityID]int)}
}

func (s *componentStore) get(e Entity) (any, bool) {
	idx, ok := s.sparse[e.id()]
	if !ok || s.dense[idx] != e {
		return nil, false
	}
	return s.values[idx], true
}

func (s *componentStore) set(e Entity, v any) {
	if idx, ok := s.sparse[e.id()]; ok {
		s.dense[idx] = e
		s.values[idx] = v
		return
	}
	s.sparse[e.id()] = len(s.dense)
	s.dense = append(s.dense, e)
	s.values = append(s.values, v)
}

func (s *componentStore) remove(e Entity) bool {
	idx, ok := s.sparse[e.id()]
	if !ok || s.dense[idx] != e {
		return false
	}
	last := len(s.dense) - 1
	moved := s.dense[last]
	s.dense[idx] = moved
	s.values[idx] = s.values[last]
	s.sparse[moved.id()] = idx
	s.dense = s.dense[:last]
	s.values = s.values[:last]
	delete(s.sparse, e.id())
	return true
}

func (s *componentStore) len() int {
	return len(s.dense)
}
