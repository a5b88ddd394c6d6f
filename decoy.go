package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	DecoyColliderRadius = 2.0
	DecoyHP             = 30.0
	decoyDeathDelay     = 0.35 // seconds before the wreck disappears
)

type DecoyConfig struct {
	RespawnDelay float64 `json:"respawnDelay"`
}

// Decoy is a neutral practice target that comes back after being destroyed
type Decoy struct {
	Body
	Health
	RespawnDelay float64

	events     *EventBus
	deathDelay float64
	respawn    float64
}

func NewDecoy(pos mgl64.Vec3, respawnDelay float64, events *EventBus) *Decoy {
	return &Decoy{
		Body:         newBody(pos),
		Health:       newHealth(DecoyHP, 0),
		RespawnDelay: respawnDelay,
		events:       events,
	}
}

func (d *Decoy) ColliderRadius() float64 { return DecoyColliderRadius }

func (d *Decoy) Targetable() bool { return true }

// Respawning reports whether the decoy is waiting to come back
func (d *Decoy) Respawning() bool { return d.respawn > 0 }

func (d *Decoy) Damage(amount float64, source Entity) bool {
	if d.HP <= 0 {
		return false
	}
	d.absorb(amount)
	if d.HP > 0 {
		return false
	}
	d.deathDelay = decoyDeathDelay
	if d.events != nil {
		d.events.Emit(Event{Topic: TopicDecoyDestroyed, Entity: d, Source: source})
	}
	return true
}

func (d *Decoy) Update(dt float64) {
	if d.deathDelay > 0 {
		d.deathDelay = math.Max(0, d.deathDelay-dt)
		if d.deathDelay == 0 {
			d.Hidden = true
			d.respawn = d.RespawnDelay
		}
	}
	if d.respawn > 0 {
		d.respawn = math.Max(0, d.respawn-dt)
		if d.respawn == 0 {
			d.Restore()
			d.Hidden = false
		}
	}
}
