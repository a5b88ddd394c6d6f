package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestSpatialGridInsertAndQuery(t *testing.T) {
	grid := NewSpatialHashGrid(50)
	p := newProbe(mgl64.Vec3{100, 100, 100}, 1)
	p.setID(1)
	grid.Insert(p, p.Pos)

	found := false
	for _, e := range grid.QueryRadius(mgl64.Vec3{100, 100, 100}, 10) {
		if e == p {
			found = true
		}
	}
	if !found {
		t.Error("expected to find entity at (100,100,100)")
	}

	if got := grid.QueryRadius(mgl64.Vec3{3000, 3000, 3000}, 50); len(got) != 0 {
		t.Errorf("expected 0 results far away, got %d", len(got))
	}
}

func TestSpatialGridNegativeCoordinates(t *testing.T) {
	grid := NewSpatialHashGrid(50)
	p := newProbe(mgl64.Vec3{-1, -1, -1}, 1)
	grid.Insert(p, p.Pos)

	key, ok := grid.CellOf(p)
	if !ok {
		t.Fatal("expected entity to be bucketed")
	}
	if key != (cellKey{-1, -1, -1}) {
		t.Errorf("expected cell (-1,-1,-1), got %v", key)
	}
}

func TestSpatialGridUpdateMovesBucket(t *testing.T) {
	grid := NewSpatialHashGrid(10)
	p := newProbe(mgl64.Vec3{1, 1, 1}, 1)
	grid.Insert(p, p.Pos)

	grid.Update(p, mgl64.Vec3{5, 5, 5})
	if grid.BucketCount() != 1 {
		t.Errorf("expected 1 bucket after same-cell move, got %d", grid.BucketCount())
	}

	grid.Update(p, mgl64.Vec3{25, 1, 1})
	key, _ := grid.CellOf(p)
	if key != (cellKey{2, 0, 0}) {
		t.Errorf("expected cell (2,0,0), got %v", key)
	}
	if grid.BucketCount() != 1 {
		t.Errorf("expected empty bucket to be dropped, got %d buckets", grid.BucketCount())
	}
}

func TestSpatialGridRemove(t *testing.T) {
	grid := NewSpatialHashGrid(10)
	p := newProbe(mgl64.Vec3{}, 1)
	grid.Insert(p, p.Pos)
	grid.Remove(p)
	grid.Remove(p) // no-op

	if grid.Len() != 0 || grid.BucketCount() != 0 {
		t.Errorf("expected empty grid, got %d members in %d buckets", grid.Len(), grid.BucketCount())
	}

	grid.Update(p, mgl64.Vec3{100, 0, 0})
	if grid.Len() != 0 {
		t.Error("update of a non-member should not insert it")
	}
}

func TestSpatialGridQueryNeverMisses(t *testing.T) {
	grid := NewSpatialHashGrid(10)
	var all []*probe
	for i := 0; i < 20; i++ {
		p := newProbe(mgl64.Vec3{float64(i) * 7, float64(i%5) * 3, -float64(i) * 2}, 1)
		p.setID(i + 1)
		grid.Insert(p, p.Pos)
		all = append(all, p)
	}

	center := mgl64.Vec3{40, 5, -10}
	radius := 25.0
	got := map[Entity]bool{}
	result := grid.QueryRadius(center, radius)
	for _, e := range result {
		got[e] = true
	}
	for _, p := range all {
		if Distance(center, p.Pos) <= radius && !got[p] {
			t.Errorf("entity %d inside radius was missed", p.ID())
		}
	}
	for i := 1; i < len(result); i++ {
		if result[i-1].ID() >= result[i].ID() {
			t.Error("expected results ordered by id")
		}
	}
}

func TestSpatialGridDefaultCellSize(t *testing.T) {
	grid := NewSpatialHashGrid(0)
	if grid.CellSize() != DefaultSpatialCellSize {
		t.Errorf("expected default cell size %v, got %v", DefaultSpatialCellSize, grid.CellSize())
	}
}
