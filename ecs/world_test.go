package ecs

import (
	"testing"

	"github.com/hajimehoshi/ebiten/v2"

	"github.com/milk9111/storyline/ecs/component"
)

func TestWorldEntityLifecycle(t *testing.T) {
	cases := []struct {
		name         string
		create       int
		destroyIndex int // -1 = none
	}{
		{"single", 1, 0},
		{"three_create_destroy_middle", 3, 1},
		{"none_destroy", 2, -1},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			w := NewWorld()
			ents := make([]Entity, 0, c.create)
			for i := 0; i < c.create; i++ {
				ents = append(ents, CreateEntity(w))
			}
			if len(Entities(w)) != c.create {
				t.Fatalf("expected %d entities, got %d", c.create, len(Entities(w)))
			}
			if c.destroyIndex >= 0 {
				if !DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return true for alive entity")
				}
				if IsAlive(w, ents[c.destroyIndex]) {
					t.Fatalf("entity should not be alive after destruction")
				}
				if DestroyEntity(w, ents[c.destroyIndex]) {
					t.Fatalf("DestroyEntity should return false for a dead entity")
				}
			}
		})
	}
}

func TestRecycledSlotGetsNewGeneration(t *testing.T) {
	w := NewWorld()
	k := component.NewComponentKind[int]()

	old := CreateEntity(w)
	if err := Add(w, old, k, intPtr(1)); err != nil {
		t.Fatal(err)
	}
	DestroyEntity(w, old)

	fresh := CreateEntity(w)
	if fresh.id() != old.id() {
		t.Fatalf("expected slot %d to be reused, got %d", old.id(), fresh.id())
	}
	if fresh == old {
		t.Fatalf("recycled entity must not equal the stale handle")
	}
	if old.String() != "1/0" || fresh.String() != "1/1" {
		t.Fatalf("expected 1/0 and 1/1, got %s and %s", old, fresh)
	}
	if Entity(0).String() != "none" {
		t.Fatalf("zero entity formatted as %q", Entity(0).String())
	}
	if IsAlive(w, old) {
		t.Fatalf("stale handle reported alive")
	}
	if _, ok := Get(w, fresh, k); ok {
		t.Fatalf("recycled entity inherited a component")
	}
	if err := Add(w, old, k, intPtr(2)); err != component.ErrEntityNotAlive {
		t.Fatalf("expected ErrEntityNotAlive, got %v", err)
	}
}

func intPtr(i int) *int {
	return &i
}

func stringPtr(s string) *string {
	return &s
}

func TestWorldComponents(t *testing.T) {
	w := NewWorld()

	h1 := component.NewComponent[int]()
	h2 := component.NewComponent[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)

	tests := []struct {
		name     string
		setup    func() error
		check    func(t *testing.T)
		teardown func() bool
	}{
		{
			name:  "add_int_to_e1",
			setup: func() error { return Add(w, e1, h1.Kind(), intPtr(10)) },
			check: func(t *testing.T) {
				v, ok := Get(w, e1, h1.Kind())
				if !ok || *v != 10 {
					t.Fatalf("expected 10, got %v ok=%v", v, ok)
				}
			},
			teardown: func() bool { return Remove(w, e1, h1.Kind()) },
		},
		{
			name: "add_str_to_e1_and_e2",
			setup: func() error {
				if err := Add(w, e1, h2.Kind(), stringPtr("a")); err != nil {
					return err
				}
				return Add(w, e2, h2.Kind(), stringPtr("b"))
			},
			check: func(t *testing.T) {
				if !Has(w, e1, h2.Kind()) || !Has(w, e2, h2.Kind()) {
					t.Fatalf("expected both entities to have string component")
				}
			},
			teardown: func() bool { return Remove(w, e1, h2.Kind()) },
		},
		{
			name:  "replace_value",
			setup: func() error { return Add(w, e2, h1.Kind(), intPtr(7)) },
			check: func(t *testing.T) {
				if err := Add(w, e2, h1.Kind(), intPtr(8)); err != nil {
					t.Fatal(err)
				}
				v, _ := Get(w, e2, h1.Kind())
				if *v != 8 {
					t.Fatalf("expected replaced value 8, got %d", *v)
				}
			},
			teardown: func() bool { return Remove(w, e2, h1.Kind()) },
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if err := tc.setup(); err != nil {
				t.Fatalf("setup failed: %v", err)
			}
			tc.check(t)
			if !tc.teardown() {
				t.Fatalf("teardown failed for %s", tc.name)
			}
		})
	}

	if err := Add[int](w, e1, h1.Kind(), nil); err != component.ErrNilComponent {
		t.Fatalf("expected ErrNilComponent, got %v", err)
	}
	if err := Add(w, e1, component.ComponentKind[int]{}, intPtr(1)); err != component.ErrInvalidComponentKind {
		t.Fatalf("expected ErrInvalidComponentKind, got %v", err)
	}
}

func TestForEachAllowsDestroyDuringIteration(t *testing.T) {
	w := NewWorld()
	k := component.NewComponentKind[int]()

	var ents []Entity
	for i := 0; i < 4; i++ {
		e := CreateEntity(w)
		ents = append(ents, e)
		if err := Add(w, e, k, intPtr(i)); err != nil {
			t.Fatal(err)
		}
	}

	visited := 0
	ForEach(w, k, func(e Entity, v *int) {
		visited++
		if *v == 0 {
			DestroyEntity(w, ents[3])
		}
	})
	if visited != 3 {
		t.Fatalf("expected 3 visits after destroying one entity mid-iteration, got %d", visited)
	}
}

func TestForEach2(t *testing.T) {
	w := NewWorld()
	ka := component.NewComponentKind[int]()
	kb := component.NewComponentKind[string]()

	e1 := CreateEntity(w)
	e2 := CreateEntity(w)
	_ = Add(w, e1, ka, intPtr(1))
	_ = Add(w, e2, ka, intPtr(2))
	_ = Add(w, e2, kb, stringPtr("two"))

	var res []Entity
	ForEach2(w, ka, kb, func(e Entity, _ *int, s *string) {
		if *s != "two" {
			t.Fatalf("unexpected value %q", *s)
		}
		res = append(res, e)
	})
	if len(res) != 1 || res[0] != e2 {
		t.Fatalf("expected only e2, got %v", res)
	}

	if first, ok := First(w, kb); !ok || first != e2 {
		t.Fatalf("expected First to return e2, got %v ok=%v", first, ok)
	}
}

func TestDestroyHooksSeeComponents(t *testing.T) {
	w := NewWorld()
	k := component.NewComponentKind[string]()
	e := CreateEntity(w)
	_ = Add(w, e, k, stringPtr("bird"))

	var seen string
	w.OnDestroy(func(w *World, e Entity) {
		if v, ok := Get(w, e, k); ok {
			seen = *v
		}
	})
	DestroyEntity(w, e)

	if seen != "bird" {
		t.Fatalf("expected hook to see component, got %q", seen)
	}
}

type recordingSystem struct {
	name  string
	order *[]string
}

func (s recordingSystem) Update(w *World) {
	*s.order = append(*s.order, s.name)
	w.Events().Push(Event{Type: s.name, Data: w.Frame()})
}

func TestUpdateOrderFrameAndEvents(t *testing.T) {
	w := NewWorld()
	var order []string
	w.AddSystem(recordingSystem{name: "a", order: &order})
	w.AddSystem(NewScheduler(recordingSystem{name: "b", order: &order}, recordingSystem{name: "c", order: &order}))

	w.Update()
	if got := w.Frame(); got != 1 {
		t.Fatalf("expected frame 1, got %d", got)
	}
	if evts := w.Events().Peek(); len(evts) != 3 || evts[0].Data != 0 {
		t.Fatalf("expected three frame-0 events after update, got %v", evts)
	}

	w.Update()
	if evts := w.Events().Drain(); len(evts) != 3 || evts[0].Data != 1 {
		t.Fatalf("expected only frame-1 events, got %v", evts)
	}
	if evts := w.Events().Peek(); len(evts) != 0 {
		t.Fatalf("expected empty queue after drain, got %v", evts)
	}

	want := []string{"a", "b", "c", "a", "b", "c"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}

type drawingSystem struct {
	recordingSystem
}

func (s drawingSystem) Draw(w *World, screen *ebiten.Image) {
	*s.order = append(*s.order, "draw "+s.name)
}

func TestDrawReachesScheduledRenderSystems(t *testing.T) {
	w := NewWorld()
	var order []string
	w.AddSystem(drawingSystem{recordingSystem{name: "a", order: &order}})
	w.AddSystem(NewScheduler(
		recordingSystem{name: "b", order: &order},
		drawingSystem{recordingSystem{name: "c", order: &order}},
	))
	w.AddSystem(drawingSystem{recordingSystem{name: "d", order: &order}})

	w.draw(w.systems, nil)
	want := []string{"draw a", "draw c", "draw d"}
	if len(order) != len(want) {
		t.Fatalf("expected %v, got %v", want, order)
	}
	for i := range want {
		if order[i] != want[i] {
			t.Fatalf("expected %v, got %v", want, order)
		}
	}
}
