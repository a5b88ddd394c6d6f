package main

import (
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

// World owns the live entity set and its spatial index. It is mutated only from the
// simulation goroutine and needs no locking.
type World struct {
	entities []Entity // ordered by id
	members  map[Entity]struct{}
	index    *SpatialHashGrid
	nextID   int
}

// NewWorld creates a world. A cellSize of zero or less disables the spatial index.
func NewWorld(cellSize float64) *World {
	w := &World{
		members: make(map[Entity]struct{}),
		nextID:  1,
	}
	if cellSize > 0 {
		w.index = NewSpatialHashGrid(cellSize)
	}
	return w
}

// SpatialIndex returns the grid, or nil when the world has none
func (w *World) SpatialIndex() *SpatialHashGrid {
	return w.index
}

// Add inserts e, assigning a fresh id the first time it is seen. A preset id moves
// the counter past it.
func (w *World) Add(e Entity) {
	if _, ok := w.members[e]; ok {
		return
	}
	if e.ID() == 0 {
		e.setID(w.nextID)
		w.nextID++
	} else if e.ID() >= w.nextID {
		w.nextID = e.ID() + 1
	}
	w.members[e] = struct{}{}
	w.insertOrdered(e)
	if p, ok := e.(Positioned); ok && w.index != nil {
		w.index.Insert(e, p.Position())
	}
}

// Remove deletes e from the entity set and the index. Non-members are ignored.
func (w *World) Remove(e Entity) {
	if _, ok := w.members[e]; !ok {
		return
	}
	delete(w.members, e)
	i := w.indexOf(e)
	if i >= 0 {
		w.entities = append(w.entities[:i], w.entities[i+1:]...)
	}
	if w.index != nil {
		w.index.Remove(e)
	}
}

// Contains reports membership
func (w *World) Contains(e Entity) bool {
	if e == nil {
		return false
	}
	_, ok := w.members[e]
	return ok
}

// Len returns the number of members
func (w *World) Len() int {
	return len(w.entities)
}

// Query returns a snapshot of all members ordered by id
func (w *World) Query() []Entity {
	out := make([]Entity, len(w.entities))
	copy(out, w.entities)
	return out
}

// QueryNearby returns broad-phase candidates around pos. Without an index it returns
// every member.
func (w *World) QueryNearby(pos mgl64.Vec3, radius float64) []Entity {
	if w.index == nil {
		return w.Query()
	}
	return w.index.QueryRadius(pos, radius)
}

// MaxColliderRadius returns the largest collider among the members
func (w *World) MaxColliderRadius() float64 {
	largest := 0.0
	for _, e := range w.entities {
		if r, ok := colliderOf(e); ok && r > largest {
			largest = r
		}
	}
	return largest
}

// SyncSpatial re-buckets one entity from its current position
func (w *World) SyncSpatial(e Entity) {
	if w.index == nil {
		return
	}
	if p, ok := e.(Positioned); ok {
		w.index.Update(e, p.Position())
	}
}

// Update runs each entity's own Update and then re-syncs its bucket, so behavior for
// this tick observes pre-move positions of entities that have not updated yet.
// Entities removed mid-update are skipped.
func (w *World) Update(dt float64) {
	for _, e := range w.Query() {
		if !w.Contains(e) {
			continue
		}
		if u, ok := e.(Updater); ok {
			u.Update(dt)
		}
		if w.Contains(e) {
			w.SyncSpatial(e)
		}
	}
}

func (w *World) insertOrdered(e Entity) {
	id := e.ID()
	n := len(w.entities)
	if n == 0 || w.entities[n-1].ID() < id {
		w.entities = append(w.entities, e)
		return
	}
	// Re-added entity keeps its old id
	i := sort.Search(n, func(i int) bool { return w.entities[i].ID() >= id })
	w.entities = append(w.entities, nil)
	copy(w.entities[i+1:], w.entities[i:])
	w.entities[i] = e
}

func (w *World) indexOf(e Entity) int {
	id := e.ID()
	i := sort.Search(len(w.entities), func(i int) bool { return w.entities[i].ID() >= id })
	if i < len(w.entities) && w.entities[i] == e {
		return i
	}
	for j, other := range w.entities {
		if other == e {
			return j
		}
	}
	return -1
}
