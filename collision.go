package main

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// CheckCollision checks if two spheres overlap
func CheckCollision(a mgl64.Vec3, ra float64, b mgl64.Vec3, rb float64) bool {
	radSum := ra + rb
	return DistanceSq(a, b) <= radSum*radSum
}

// raySphere returns the distance along a unit-length dir from origin to the first
// intersection with the sphere, or false. An origin inside the sphere hits at the
// exit point.
func raySphere(origin, dir, center mgl64.Vec3, r float64) (float64, bool) {
	f := origin.Sub(center)
	b := f.Dot(dir)
	c := f.Dot(f) - r*r
	discriminant := b*b - c
	if discriminant < 0 {
		return 0, false
	}
	sq := math.Sqrt(discriminant)
	t := -b - sq
	if t < 0 {
		t = -b + sq
	}
	if t < 0 {
		return 0, false
	}
	return t, true
}

// segmentSphereIntersect checks if the segment p0-p1 touches the sphere, returning
// the fraction along the segment of the first contact.
func segmentSphereIntersect(p0, p1, center mgl64.Vec3, r float64) (float64, bool) {
	d := p1.Sub(p0)
	f := p0.Sub(center)
	a := d.Dot(d)
	c := f.Dot(f) - r*r
	if a == 0 {
		return 0, c <= 0
	}
	b := 2 * f.Dot(d)
	discriminant := b*b - 4*a*c
	if discriminant < 0 {
		return 0, false
	}
	discriminant = math.Sqrt(discriminant)
	t1 := (-b - discriminant) / (2 * a)
	t2 := (-b + discriminant) / (2 * a)
	switch {
	case t1 >= 0 && t1 <= 1:
		return t1, true
	case t1 <= 0 && t2 >= 0:
		// Starts inside
		return 0, true
	}
	return 0, false
}

// CollisionPair is one resolved contact from the last tick
type CollisionPair struct {
	A, B     Entity
	Distance float64
}

// CollisionSystem separates overlapping spheres and exchanges an impulse along
// the contact normal. It runs after the world update.
type CollisionSystem struct {
	Restitution float64
	Slop        float64

	rng       *rand.Rand
	lastPairs []CollisionPair
}

func NewCollisionSystem(rng *rand.Rand) *CollisionSystem {
	return &CollisionSystem{Restitution: 0.6, Slop: 0.01, rng: rng}
}

// LastPairs returns the contacts resolved on the previous tick
func (s *CollisionSystem) LastPairs() []CollisionPair {
	return s.lastPairs
}

func collidable(e Entity) (Positioned, float64, bool) {
	p, ok := e.(Positioned)
	if !ok {
		return nil, 0, false
	}
	r, ok := colliderOf(e)
	if !ok || !isVisible(e) || !isAlive(e) {
		return nil, 0, false
	}
	return p, r, true
}

func (s *CollisionSystem) AfterUpdate(ctx StepContext) {
	s.Resolve(ctx.World)
}

// Resolve runs one collision pass over w
func (s *CollisionSystem) Resolve(w *World) []CollisionPair {
	type body struct {
		e Entity
		p Positioned
		r float64
	}
	var bodies []body
	maxRadius := 0.0
	for _, e := range w.Query() {
		p, r, ok := collidable(e)
		if !ok {
			continue
		}
		bodies = append(bodies, body{e, p, r})
		maxRadius = math.Max(maxRadius, r)
	}

	var pairs []CollisionPair
	for _, a := range bodies {
		posA := a.p.Position()
		for _, other := range w.QueryNearby(posA, a.r+maxRadius) {
			if other == a.e || other.ID() <= a.e.ID() {
				continue
			}
			pb, rb, ok := collidable(other)
			if !ok {
				continue
			}
			velA, velB := velocityOf(a.e), velocityOf(other)
			if velA == nil && velB == nil {
				continue
			}
			posB := pb.Position()
			radius := a.r + rb
			distSq := DistanceSq(posA, posB)
			if distSq > radius*radius {
				continue
			}
			distance := math.Sqrt(distSq)
			pairs = append(pairs, CollisionPair{A: a.e, B: other, Distance: distance})
			s.separate(w, a.e, other, posA, posB, radius, distance, velA, velB)
			if h, ok := a.e.(CollisionHandler); ok {
				h.OnCollision(other)
			}
			if h, ok := other.(CollisionHandler); ok {
				h.OnCollision(a.e)
			}
		}
	}
	s.lastPairs = pairs
	return pairs
}

func (s *CollisionSystem) randomUnit() mgl64.Vec3 {
	for {
		v := mgl64.Vec3{s.rng.Float64() - 0.5, s.rng.Float64() - 0.5, s.rng.Float64() - 0.5}
		if n, ok := normalizeVec(v); ok {
			return n
		}
	}
}

func (s *CollisionSystem) separate(w *World, a, b Entity, posA, posB mgl64.Vec3, radius, distance float64, velA, velB *mgl64.Vec3) {
	normal, ok := normalizeVec(posA.Sub(posB))
	if !ok {
		normal = s.randomUnit()
	}
	movableA, movableB := velA != nil, velB != nil
	share := 1.0
	if movableA && movableB {
		share = 0.5
	}

	if penetration := math.Max(0, radius-distance+s.Slop); penetration > 0 {
		if pa, ok := a.(Placeable); ok && movableA {
			pa.SetPosition(a.(Positioned).Position().Add(normal.Mul(penetration * share)))
			w.SyncSpatial(a)
		}
		if pb, ok := b.(Placeable); ok && movableB {
			pb.SetPosition(b.(Positioned).Position().Sub(normal.Mul(penetration * share)))
			w.SyncSpatial(b)
		}
	}

	var rel mgl64.Vec3
	if movableA {
		rel = *velA
	}
	if movableB {
		rel = rel.Sub(*velB)
	}
	along := rel.Dot(normal)
	if along > 0 {
		return
	}
	impulse := (1 + s.Restitution) * along
	if movableA {
		*velA = velA.Sub(normal.Mul(impulse * share))
	}
	if movableB {
		*velB = velB.Add(normal.Mul(impulse * share))
	}
}
