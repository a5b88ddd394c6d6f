package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestWorldAddAssignsIDsInOrder(t *testing.T) {
	w := NewWorld(50)
	a := newProbe(mgl64.Vec3{}, 1)
	b := newProbe(mgl64.Vec3{10, 0, 0}, 1)
	w.Add(a)
	w.Add(b)
	w.Add(a) // duplicate add is ignored

	if w.Len() != 2 {
		t.Fatalf("expected 2 entities, got %d", w.Len())
	}
	if a.ID() != 1 || b.ID() != 2 {
		t.Errorf("expected ids 1 and 2, got %d and %d", a.ID(), b.ID())
	}
	if w.SpatialIndex().Len() != 2 {
		t.Errorf("expected 2 indexed entities, got %d", w.SpatialIndex().Len())
	}
}

func TestWorldAddPresetIDAdvancesCounter(t *testing.T) {
	w := NewWorld(50)
	preset := newProbe(mgl64.Vec3{}, 1)
	preset.setID(5)
	w.Add(preset)

	next := newProbe(mgl64.Vec3{}, 1)
	w.Add(next)
	if next.ID() != 6 {
		t.Errorf("expected id 6 after a preset id of 5, got %d", next.ID())
	}
	q := w.Query()
	if q[0] != preset || q[1] != next {
		t.Error("expected entities ordered by id")
	}
}

func TestWorldRemoveAndReAdd(t *testing.T) {
	w := NewWorld(50)
	a := newProbe(mgl64.Vec3{}, 1)
	b := newProbe(mgl64.Vec3{}, 1)
	w.Add(a)
	w.Add(b)
	w.Remove(a)
	if w.Contains(a) {
		t.Error("removed entity should not be a member")
	}
	if w.SpatialIndex().Len() != 1 {
		t.Errorf("expected 1 indexed entity, got %d", w.SpatialIndex().Len())
	}

	w.Add(a)
	q := w.Query()
	if len(q) != 2 || q[0] != a || q[1] != b {
		t.Error("re-added entity should keep its id and order")
	}
}

func TestWorldWithoutIndex(t *testing.T) {
	w := NewWorld(0)
	if w.SpatialIndex() != nil {
		t.Fatal("expected no spatial index")
	}
	a := newProbe(mgl64.Vec3{1000, 0, 0}, 1)
	w.Add(a)
	if got := w.QueryNearby(mgl64.Vec3{}, 1); len(got) != 1 {
		t.Errorf("expected every member without an index, got %d", len(got))
	}
}

type mover struct {
	probe
	world  *World
	victim Entity
}

func (m *mover) Update(dt float64) {
	m.Pos = m.Pos.Add(mgl64.Vec3{100, 0, 0})
	if m.victim != nil {
		m.world.Remove(m.victim)
	}
}

func TestWorldUpdateSyncsAndSkipsRemoved(t *testing.T) {
	w := NewWorld(50)
	m := &mover{probe: *newProbe(mgl64.Vec3{}, 1), world: w}
	other := &mover{probe: *newProbe(mgl64.Vec3{}, 1), world: w}
	m.victim = other
	w.Add(m)
	w.Add(other)

	w.Update(1.0 / 60)

	if other.Pos[0] != 0 {
		t.Error("entity removed mid-update should not update")
	}
	key, _ := w.SpatialIndex().CellOf(m)
	if key != (cellKey{2, 0, 0}) {
		t.Errorf("expected mover re-bucketed to (2,0,0), got %v", key)
	}
}
