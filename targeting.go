package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type TargetingConfig struct {
	MaxDistance     float64 `json:"maxDistance"`
	FOV             float64 `json:"fov"` // full cone angle in degrees
	LockOffDistance float64 `json:"lockOffDistance"`
}

func DefaultTargetingConfig() TargetingConfig {
	return TargetingConfig{MaxDistance: 300, FOV: 30, LockOffDistance: 350}
}

// Targeting holds the player's lock-on. The lock-on button toggles it.
type Targeting struct {
	Config TargetingConfig

	owner   Positioned
	current Entity
	press   edge
}

func NewTargeting(owner Positioned, cfg TargetingConfig) *Targeting {
	return &Targeting{Config: cfg, owner: owner}
}

// SetOwner rebinds targeting to the craft it aims from
func (t *Targeting) SetOwner(owner Positioned) {
	t.owner = owner
}

func (t *Targeting) CurrentTarget() Entity {
	return t.current
}

func (t *Targeting) Clear() {
	t.current = nil
}

func lockable(e Entity) bool {
	return isTargetable(e) && teamOf(e) != TeamAlly && isAlive(e) && isVisible(e)
}

// Acquire picks the candidate nearest the crosshair inside the cone, falling back
// to the nearest in range.
func (t *Targeting) Acquire(candidates []Entity) Entity {
	origin := t.owner.Position()
	forward := t.owner.Orientation().Rotate(axisForward)
	halfCone := mgl64.DegToRad(t.Config.FOV) / 2

	var inCone, nearest Entity
	bestAngle, bestDist := math.Inf(1), math.Inf(1)
	for _, e := range candidates {
		if !lockable(e) {
			continue
		}
		p, ok := e.(Positioned)
		if !ok {
			continue
		}
		to := p.Position().Sub(origin)
		dist := to.Len()
		if dist > t.Config.MaxDistance {
			continue
		}
		if dist < bestDist {
			nearest, bestDist = e, dist
		}
		dir, ok := normalizeVec(to)
		if !ok {
			continue
		}
		if a := angleBetween(forward, dir); a <= halfCone && a < bestAngle {
			inCone, bestAngle = e, a
		}
	}
	if inCone != nil {
		t.current = inCone
	} else {
		t.current = nearest
	}
	return t.current
}

func (t *Targeting) stillValid(w *World) bool {
	e := t.current
	if e == nil || !w.Contains(e) || !isAlive(e) || !isVisible(e) {
		return false
	}
	p, ok := e.(Positioned)
	return ok && Distance(t.owner.Position(), p.Position()) <= t.Config.LockOffDistance
}

// Update drops a stale lock, then toggles on the lock-on press
func (t *Targeting) Update(ctx StepContext) {
	if t.current != nil && !t.stillValid(ctx.World) {
		t.current = nil
	}
	if !t.press.rising(ctx.Input.LockOn && isAlive(t.owner)) {
		return
	}
	if t.current != nil {
		t.current = nil
		return
	}
	t.Acquire(ctx.World.QueryNearby(t.owner.Position(), t.Config.MaxDistance))
}
