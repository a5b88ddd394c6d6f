package main

import "github.com/go-gl/mathgl/mgl64"

// probe is a minimal entity for exercising the world and systems
type probe struct {
	Body
	Health
	team   Team
	radius float64
	vel    mgl64.Vec3
	hits   []Entity
	stun   float64
}

func newProbe(pos mgl64.Vec3, radius float64) *probe {
	return &probe{Body: newBody(pos), Health: newHealth(100, 0), radius: radius}
}

func (p *probe) ColliderRadius() float64 { return p.radius }
func (p *probe) Team() Team              { return p.team }
func (p *probe) Velocity() *mgl64.Vec3   { return &p.vel }
func (p *probe) OnCollision(other Entity) {
	p.hits = append(p.hits, other)
}
func (p *probe) ApplyStun(d float64) { p.stun = d }

func (p *probe) Damage(amount float64, source Entity) bool {
	wasAlive := p.Alive()
	p.absorb(amount)
	return wasAlive && !p.Alive()
}

// staticProbe has no velocity
type staticProbe struct {
	Body
	radius float64
	hits   int
}

func (s *staticProbe) ColliderRadius() float64  { return s.radius }
func (s *staticProbe) OnCollision(other Entity) { s.hits++ }

func approx(a, b, eps float64) bool {
	d := a - b
	if d < 0 {
		d = -d
	}
	return d <= eps
}
