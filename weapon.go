package main

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Weapon is owned by the entity that fires it
type Weapon interface {
	TriggerStart()
	TriggerEnd()
	Update(dt float64)
	Enabled() bool
	SetEnabled(on bool)
}

// Shot describes one resolved discharge. HitPoint is the end of the beam or the
// detonation point; Hit is nil on a miss.
type Shot struct {
	Origin   mgl64.Vec3
	HitPoint mgl64.Vec3
	Hit      Entity
}

// ShotFunc is called synchronously when a weapon resolves a shot
type ShotFunc func(Shot)

// VecFunc supplies a muzzle position or aim direction. ok false means use the default.
type VecFunc func() (mgl64.Vec3, bool)

// hitFilter keeps entities a weapon owned by owner may hit
func hitFilter(owner, e Entity) bool {
	if e == owner {
		return false
	}
	if _, ok := e.(Positioned); !ok {
		return false
	}
	if _, ok := colliderOf(e); !ok {
		return false
	}
	if sameTeam(owner, e) {
		return false
	}
	return isAlive(e)
}

// castRay returns the nearest entity whose collider the ray enters before maxDist
func castRay(w *World, owner Entity, origin, dir mgl64.Vec3, maxDist float64) (Entity, float64) {
	var hit Entity
	hitDist := maxDist
	for _, e := range w.QueryNearby(origin, maxDist) {
		if !hitFilter(owner, e) {
			continue
		}
		r, _ := colliderOf(e)
		t, ok := raySphere(origin, dir, e.(Positioned).Position(), r)
		if ok && t < hitDist {
			hit, hitDist = e, t
		}
	}
	return hit, hitDist
}

// aimFrom resolves muzzle and direction, falling back to the owner transform
func aimFrom(owner Positioned, muzzle, aim VecFunc) (mgl64.Vec3, mgl64.Vec3) {
	origin := owner.Position()
	if muzzle != nil {
		if p, ok := muzzle(); ok {
			origin = p
		}
	}
	dir := owner.Orientation().Rotate(axisForward)
	if aim != nil {
		if d, ok := aim(); ok {
			dir = d
		}
	}
	if n, ok := normalizeVec(dir); ok {
		dir = n
	} else {
		dir = axisForward
	}
	return origin, dir
}

type weaponBase struct {
	owner    Positioned
	world    *World
	enabled  bool
	firing   bool
	cooldown float64
}

func (w *weaponBase) TriggerStart() {
	if w.enabled {
		w.firing = true
	}
}

func (w *weaponBase) TriggerEnd() { w.firing = false }

func (w *weaponBase) Enabled() bool { return w.enabled }

func (w *weaponBase) Triggered() bool { return w.firing }

func (w *weaponBase) Cooldown() float64 { return w.cooldown }

func (w *weaponBase) SetEnabled(on bool) {
	w.enabled = on
	if !on {
		w.firing = false
	}
}

// WeaponSwitch toggles the primary weapon between laser and bazooka on the rising
// edge of switchWeapon. A reloading bazooka hands control back to the laser.
type WeaponSwitch struct {
	Laser   Weapon
	Bazooka *Bazooka
	press   edge
}

func NewWeaponSwitch(laser Weapon, bazooka *Bazooka) *WeaponSwitch {
	laser.SetEnabled(true)
	bazooka.SetEnabled(false)
	return &WeaponSwitch{Laser: laser, Bazooka: bazooka}
}

// Active returns the enabled weapon
func (s *WeaponSwitch) Active() Weapon {
	if s.Bazooka.Enabled() {
		return s.Bazooka
	}
	return s.Laser
}

func (s *WeaponSwitch) BeforeUpdate(ctx StepContext) {
	if s.press.rising(ctx.Input.SwitchWeapon) && !s.Bazooka.Reloading() {
		s.selectBazooka(!s.Bazooka.Enabled())
	}
	if s.Bazooka.Enabled() && s.Bazooka.Reloading() {
		s.selectBazooka(false)
	}
}

func (s *WeaponSwitch) selectBazooka(on bool) {
	s.Bazooka.SetEnabled(on)
	s.Laser.SetEnabled(!on)
}
