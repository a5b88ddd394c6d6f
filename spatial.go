package main

import (
	"math"
	"sort"

	"github.com/go-gl/mathgl/mgl64"
)

const DefaultSpatialCellSize = 50.0

// cellKey is the integer cell coordinate triple
type cellKey [3]int

// SpatialHashGrid is a uniform broad-phase grid keyed by integer cell coordinates.
// Each member lives in exactly one bucket; empty buckets are dropped.
type SpatialHashGrid struct {
	cellSize float64
	cells    map[cellKey]map[Entity]struct{}
	entityAt map[Entity]cellKey
}

// NewSpatialHashGrid creates a grid. Non-positive sizes fall back to the default.
func NewSpatialHashGrid(cellSize float64) *SpatialHashGrid {
	if cellSize <= 0 {
		cellSize = DefaultSpatialCellSize
	}
	return &SpatialHashGrid{
		cellSize: cellSize,
		cells:    make(map[cellKey]map[Entity]struct{}),
		entityAt: make(map[Entity]cellKey),
	}
}

// CellSize returns the edge length of one cell
func (g *SpatialHashGrid) CellSize() float64 {
	return g.cellSize
}

func (g *SpatialHashGrid) keyFor(pos mgl64.Vec3) cellKey {
	return cellKey{
		int(math.Floor(pos[0] / g.cellSize)),
		int(math.Floor(pos[1] / g.cellSize)),
		int(math.Floor(pos[2] / g.cellSize)),
	}
}

// Insert places e in the bucket for pos, moving it if already present
func (g *SpatialHashGrid) Insert(e Entity, pos mgl64.Vec3) {
	if _, ok := g.entityAt[e]; ok {
		g.Update(e, pos)
		return
	}
	g.add(e, g.keyFor(pos))
}

// Update re-buckets e only if its cell changed. Non-members are ignored.
func (g *SpatialHashGrid) Update(e Entity, pos mgl64.Vec3) {
	old, ok := g.entityAt[e]
	if !ok {
		return
	}
	key := g.keyFor(pos)
	if key == old {
		return
	}
	g.drop(e, old)
	g.add(e, key)
}

// Remove deletes e from the grid. Non-members are ignored.
func (g *SpatialHashGrid) Remove(e Entity) {
	key, ok := g.entityAt[e]
	if !ok {
		return
	}
	g.drop(e, key)
	delete(g.entityAt, e)
}

func (g *SpatialHashGrid) add(e Entity, key cellKey) {
	bucket, ok := g.cells[key]
	if !ok {
		bucket = make(map[Entity]struct{})
		g.cells[key] = bucket
	}
	bucket[e] = struct{}{}
	g.entityAt[e] = key
}

func (g *SpatialHashGrid) drop(e Entity, key cellKey) {
	bucket, ok := g.cells[key]
	if !ok {
		return
	}
	delete(bucket, e)
	if len(bucket) == 0 {
		delete(g.cells, key)
	}
}

// QueryRadius returns every member of the cube of cells within ceil(radius/cellSize)
// of the center cell. The result may include entities outside the sphere; it never
// misses one inside it. Results are ordered by id.
func (g *SpatialHashGrid) QueryRadius(pos mgl64.Vec3, radius float64) []Entity {
	center := g.keyFor(pos)
	reach := int(math.Ceil(math.Max(0, radius) / g.cellSize))

	var result []Entity
	// Few buckets are populated relative to the cube at large radii
	span := 2*reach + 1
	if reach > 64 || span*span*span > len(g.cells) {
		for key, bucket := range g.cells {
			if abs(key[0]-center[0]) > reach || abs(key[1]-center[1]) > reach || abs(key[2]-center[2]) > reach {
				continue
			}
			for e := range bucket {
				result = append(result, e)
			}
		}
	} else {
		for dx := -reach; dx <= reach; dx++ {
			for dy := -reach; dy <= reach; dy++ {
				for dz := -reach; dz <= reach; dz++ {
					bucket, ok := g.cells[cellKey{center[0] + dx, center[1] + dy, center[2] + dz}]
					if !ok {
						continue
					}
					for e := range bucket {
						result = append(result, e)
					}
				}
			}
		}
	}
	sortByID(result)
	return result
}

// CellOf reports the cell an entity is bucketed in
func (g *SpatialHashGrid) CellOf(e Entity) (cellKey, bool) {
	key, ok := g.entityAt[e]
	return key, ok
}

// Len returns the number of members
func (g *SpatialHashGrid) Len() int {
	return len(g.entityAt)
}

// BucketCount returns the number of non-empty buckets
func (g *SpatialHashGrid) BucketCount() int {
	return len(g.cells)
}

func sortByID(list []Entity) {
	sort.Slice(list, func(i, j int) bool { return list[i].ID() < list[j].ID() })
}

func abs(v int) int {
	if v < 0 {
		return -v
	}
	return v
}
