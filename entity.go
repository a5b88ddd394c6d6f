package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// Team is the allegiance used by targeting and friendly-fire filters
type Team string

const (
	TeamNeutral Team = ""
	TeamEnemy   Team = "enemy"
	TeamAlly    Team = "ally"
)

// Entity is anything a World can hold. Ids are assigned by World.Add.
type Entity interface {
	ID() int
	setID(id int)
}

// Positioned entities take part in the spatial index.
type Positioned interface {
	Entity
	Position() mgl64.Vec3
	Orientation() mgl64.Quat
}

type Updater interface {
	Update(dt float64)
}

type Collidable interface {
	ColliderRadius() float64
}

// Damageable entities carry hp/shield. Damage reports whether this call killed the entity.
type Damageable interface {
	Damage(amount float64, source Entity) bool
	Alive() bool
	Vitals() *Health
}

type Teamed interface {
	Team() Team
}

// Movable entities expose their velocity to the collision response.
type Movable interface {
	Velocity() *mgl64.Vec3
}

// Placeable entities can be moved by collision correction and respawn
type Placeable interface {
	SetPosition(pos mgl64.Vec3)
}

type Hideable interface {
	Visible() bool
}

type CollisionHandler interface {
	OnCollision(other Entity)
}

type Recoiler interface {
	ApplyRecoil(kick float64)
}

type Stunnable interface {
	ApplyStun(duration float64)
}

type Targetable interface {
	Targetable() bool
}

type CapitalShip interface {
	IsCapitalShip() bool
}

type Destroyer interface {
	Destroy()
}

// Body is the transform shared by every simulated object
type Body struct {
	id     int
	Pos    mgl64.Vec3
	Rot    mgl64.Quat
	Hidden bool
}

func newBody(pos mgl64.Vec3) Body {
	return Body{Pos: pos, Rot: mgl64.QuatIdent()}
}

func (b *Body) ID() int       { return b.id }
func (b *Body) setID(id int)  { b.id = id }
func (b *Body) Visible() bool { return !b.Hidden }

func (b *Body) Position() mgl64.Vec3 { return b.Pos }

func (b *Body) Orientation() mgl64.Quat { return b.Rot }

func (b *Body) SetPosition(pos mgl64.Vec3) { b.Pos = pos }

// Forward is the world-space facing direction
func (b *Body) Forward() mgl64.Vec3 {
	return b.Rot.Rotate(axisForward)
}

// LocalToWorld maps an offset in the body frame to a world position
func (b *Body) LocalToWorld(offset mgl64.Vec3) mgl64.Vec3 {
	return b.Pos.Add(b.Rot.Rotate(offset))
}

// Health is the shield-then-hull damage model
type Health struct {
	HP        float64
	MaxHP     float64
	Shield    float64
	MaxShield float64
}

func newHealth(hp, shield float64) Health {
	return Health{HP: hp, MaxHP: hp, Shield: shield, MaxShield: shield}
}

// absorb applies damage to the shield first, then to hp. It returns true if the
// combined pool dropped.
func (h *Health) absorb(amount float64) bool {
	if amount <= 0 || h.HP <= 0 {
		return false
	}
	before := h.HP + h.Shield
	remaining := amount
	if h.Shield > 0 {
		absorbed := math.Min(h.Shield, remaining)
		h.Shield -= absorbed
		remaining -= absorbed
	}
	if remaining > 0 {
		h.HP = math.Max(0, h.HP-remaining)
	}
	return h.HP+h.Shield < before
}

func (h *Health) Alive() bool { return h.HP > 0 }

func (h *Health) Vitals() *Health { return h }

// Restore refills hp and shield
func (h *Health) Restore() {
	h.HP = h.MaxHP
	h.Shield = h.MaxShield
}

// isAlive treats entities without health as alive
func isAlive(e Entity) bool {
	if d, ok := e.(Damageable); ok {
		return d.Alive()
	}
	return true
}

func isVisible(e Entity) bool {
	if h, ok := e.(Hideable); ok {
		return h.Visible()
	}
	return true
}

func teamOf(e Entity) Team {
	if t, ok := e.(Teamed); ok {
		return t.Team()
	}
	return TeamNeutral
}

// sameTeam is true only when both sides have a non-neutral team and it matches
func sameTeam(a, b Entity) bool {
	ta, tb := teamOf(a), teamOf(b)
	return ta != TeamNeutral && ta == tb
}

func isCapitalShip(e Entity) bool {
	c, ok := e.(CapitalShip)
	return ok && c.IsCapitalShip()
}

func isTargetable(e Entity) bool {
	t, ok := e.(Targetable)
	return ok && t.Targetable()
}

func colliderOf(e Entity) (float64, bool) {
	if c, ok := e.(Collidable); ok {
		return c.ColliderRadius(), true
	}
	return 0, false
}

func velocityOf(e Entity) *mgl64.Vec3 {
	if m, ok := e.(Movable); ok {
		return m.Velocity()
	}
	return nil
}
