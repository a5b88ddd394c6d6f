package main

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func TestCheckCollision(t *testing.T) {
	if !CheckCollision(mgl64.Vec3{}, 10, mgl64.Vec3{15, 0, 0}, 10) {
		t.Error("spheres should collide (overlapping)")
	}
	if !CheckCollision(mgl64.Vec3{}, 10, mgl64.Vec3{0, 20, 0}, 10) {
		t.Error("spheres should collide (touching)")
	}
	if CheckCollision(mgl64.Vec3{}, 10, mgl64.Vec3{0, 0, 25}, 10) {
		t.Error("spheres should not collide")
	}
}

func TestSegmentSphereIntersect(t *testing.T) {
	tHit, ok := segmentSphereIntersect(mgl64.Vec3{}, mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 0, 6}, 1)
	if !ok || !approx(tHit, 0.5, 1e-9) {
		t.Errorf("expected contact at 0.5, got %v %v", tHit, ok)
	}
	if _, ok := segmentSphereIntersect(mgl64.Vec3{}, mgl64.Vec3{0, 0, 3}, mgl64.Vec3{0, 0, 6}, 1); ok {
		t.Error("short segment should not reach the sphere")
	}
	tHit, ok = segmentSphereIntersect(mgl64.Vec3{0, 0, 6}, mgl64.Vec3{0, 0, 10}, mgl64.Vec3{0, 0, 6}, 1)
	if !ok || tHit != 0 {
		t.Errorf("segment starting inside should hit at 0, got %v %v", tHit, ok)
	}
}

func newCollisionFixture() (*World, *CollisionSystem) {
	return NewWorld(50), NewCollisionSystem(rand.New(rand.NewSource(1)))
}

func TestCollisionEachPairOnce(t *testing.T) {
	w, cs := newCollisionFixture()
	a := newProbe(mgl64.Vec3{}, 1)
	b := newProbe(mgl64.Vec3{1.5, 0, 0}, 1)
	w.Add(a)
	w.Add(b)

	pairs := cs.Resolve(w)
	if len(pairs) != 1 {
		t.Fatalf("expected 1 pair, got %d", len(pairs))
	}
	if len(a.hits) != 1 || a.hits[0] != b || len(b.hits) != 1 || b.hits[0] != a {
		t.Errorf("expected each side notified once, got %d and %d", len(a.hits), len(b.hits))
	}
	if len(cs.LastPairs()) != 1 {
		t.Errorf("expected last pairs recorded, got %d", len(cs.LastPairs()))
	}
}

func TestCollisionApproachingImpulse(t *testing.T) {
	w, cs := newCollisionFixture()
	a := newProbe(mgl64.Vec3{}, 1)
	b := newProbe(mgl64.Vec3{1.5, 0, 0}, 1)
	a.vel = mgl64.Vec3{1, 0, 0}
	b.vel = mgl64.Vec3{-1, 0, 0}
	w.Add(a)
	w.Add(b)

	cs.Resolve(w)
	if !approx(a.vel[0], -0.6, 1e-9) || !approx(b.vel[0], 0.6, 1e-9) {
		t.Errorf("expected velocities -0.6 and 0.6, got %v and %v", a.vel[0], b.vel[0])
	}
	if d := Distance(a.Pos, b.Pos); d < 2 {
		t.Errorf("expected bodies separated to at least 2, got %v", d)
	}
}

func TestCollisionSeparatingVelocityUnchanged(t *testing.T) {
	w, cs := newCollisionFixture()
	a := newProbe(mgl64.Vec3{}, 1)
	b := newProbe(mgl64.Vec3{1.5, 0, 0}, 1)
	a.vel = mgl64.Vec3{-1, 0, 0}
	b.vel = mgl64.Vec3{1, 0, 0}
	w.Add(a)
	w.Add(b)

	cs.Resolve(w)
	if a.vel[0] != -1 || b.vel[0] != 1 {
		t.Errorf("separating bodies should keep their velocity, got %v and %v", a.vel, b.vel)
	}
}

func TestCollisionStaticPairsSkipped(t *testing.T) {
	w, cs := newCollisionFixture()
	a := &staticProbe{Body: newBody(mgl64.Vec3{}), radius: 5}
	b := &staticProbe{Body: newBody(mgl64.Vec3{1, 0, 0}), radius: 5}
	w.Add(a)
	w.Add(b)

	if pairs := cs.Resolve(w); len(pairs) != 0 {
		t.Errorf("expected no static-static pairs, got %d", len(pairs))
	}
	if a.hits != 0 || b.hits != 0 {
		t.Error("static bodies should not be notified")
	}
}

func TestCollisionMovesOnlyTheMovableSide(t *testing.T) {
	w, cs := newCollisionFixture()
	a := newProbe(mgl64.Vec3{}, 1)
	a.vel = mgl64.Vec3{1, 0, 0}
	rock := &staticProbe{Body: newBody(mgl64.Vec3{1.5, 0, 0}), radius: 1}
	w.Add(a)
	w.Add(rock)

	cs.Resolve(w)
	if rock.Pos[0] != 1.5 {
		t.Errorf("static body should not move, got %v", rock.Pos)
	}
	if !approx(a.Pos[0], -0.51, 1e-9) {
		t.Errorf("expected full correction on the movable body, got %v", a.Pos)
	}
	if !approx(a.vel[0], -0.6, 1e-9) {
		t.Errorf("expected bounce off the static body, got %v", a.vel)
	}
}

func TestCollisionCoincidentCenters(t *testing.T) {
	w, cs := newCollisionFixture()
	a := newProbe(mgl64.Vec3{3, 3, 3}, 1)
	b := newProbe(mgl64.Vec3{3, 3, 3}, 1)
	w.Add(a)
	w.Add(b)

	cs.Resolve(w)
	if d := Distance(a.Pos, b.Pos); !approx(d, 2+cs.Slop, 1e-9) {
		t.Errorf("expected coincident bodies pushed apart to %v, got %v", 2+cs.Slop, d)
	}
}

func TestCollisionIgnoresHiddenAndDead(t *testing.T) {
	w, cs := newCollisionFixture()
	a := newProbe(mgl64.Vec3{}, 1)
	b := newProbe(mgl64.Vec3{1, 0, 0}, 1)
	c := newProbe(mgl64.Vec3{-1, 0, 0}, 1)
	b.Hidden = true
	c.HP = 0
	w.Add(a)
	w.Add(b)
	w.Add(c)

	if pairs := cs.Resolve(w); len(pairs) != 0 {
		t.Errorf("expected hidden and dead bodies skipped, got %d pairs", len(pairs))
	}
}
