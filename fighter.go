package main

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	FighterColliderRadius = 1.4
	fighterTurnRate       = 2.2 // slerp factor per second toward the desired heading
)

// FighterType is one row of the enemy or ally roster
type FighterType struct {
	Name     string         `json:"name"`
	HP       float64        `json:"hp"`
	Shield   float64        `json:"shield"`
	Score    int            `json:"score"`
	FireRate float64        `json:"fireRate"`
	Profile  AIProfile      `json:"profile"`
	Laser    LaserConfig    `json:"laser"`
	Movement MovementConfig `json:"movement"`
}

func DefaultEnemyTypes() map[string]FighterType {
	move := MovementConfig{MaxSpeed: 60, Acceleration: 28, BoostMultiplier: 1.2, Mode: MoveCoast}
	laser := LaserConfig{Damage: 8, Range: 400, FireRate: 2}

	grunt := EnemyProfile()
	grunt.ChaseDistance, grunt.AttackDistance, grunt.AttackAngle = 400, 250, 20
	grunt.StandoffDistance, grunt.StandoffBand = 220, 40

	ace := EnemyProfile()
	ace.ChaseDistance, ace.AttackDistance, ace.AttackAngle = 450, 280, 22
	ace.StandoffDistance, ace.StandoffBand = 240, 50

	return map[string]FighterType{
		"grunt": {Name: "grunt", HP: 60, Shield: 30, Score: 100, FireRate: 4, Profile: grunt, Laser: laser, Movement: move},
		"ace":   {Name: "ace", HP: 120, Shield: 60, Score: 250, FireRate: 6, Profile: ace, Laser: laser, Movement: move},
	}
}

func DefaultAllyTypes() map[string]FighterType {
	return map[string]FighterType{
		"wing": {
			Name: "wing", HP: 80, Shield: 20, FireRate: 3,
			Profile:  AllyProfile(),
			Laser:    LaserConfig{Damage: 10, Range: 500, FireRate: 8},
			Movement: MovementConfig{MaxSpeed: 70, Acceleration: 30, BoostMultiplier: 1.3, Mode: MoveDamped, Damping: 0.99},
		},
	}
}

// Fighter is an AI-driven craft on either side
type Fighter struct {
	Body
	Health
	Kind  string
	Score int

	Movement *Movement
	AI       *AIController
	Laser    *Laser

	team       Team
	events     *EventBus
	lastSource Entity
	stunTimer  float64
	stunPhase  float64
	baseRot    mgl64.Quat
}

// NewFighter builds a fighter of type ft for team. fixed is tracked ahead of the
// selector; either may be nil.
func NewFighter(ft FighterType, team Team, pos mgl64.Vec3, world *World, events *EventBus, rng *rand.Rand, fixed Entity, selector TargetSelector) *Fighter {
	f := &Fighter{
		Body:     newBody(pos),
		Health:   newHealth(ft.HP, ft.Shield),
		Kind:     ft.Name,
		Score:    ft.Score,
		Movement: NewMovement(ft.Movement),
		team:     team,
		events:   events,
	}
	f.baseRot = f.Rot
	f.AI = NewAIController(f, ft.Profile, world, rng, fixed, selector)
	laser := ft.Laser
	if ft.FireRate > 0 {
		laser.FireRate = ft.FireRate
	}
	f.Laser = NewLaser(f, world, laser)
	f.Laser.Muzzle = func() (mgl64.Vec3, bool) {
		return f.LocalToWorld(mgl64.Vec3{0.6, 0.9, 1.0}), true
	}
	return f
}

func (f *Fighter) Team() Team { return f.team }

func (f *Fighter) ColliderRadius() float64 { return FighterColliderRadius }

func (f *Fighter) Velocity() *mgl64.Vec3 { return &f.Movement.Vel }

func (f *Fighter) Targetable() bool { return true }

// LastDamageSource is the entity that hit this fighter most recently
func (f *Fighter) LastDamageSource() Entity { return f.lastSource }

func (f *Fighter) ApplyStun(duration float64) {
	f.stunTimer = math.Max(f.stunTimer, duration)
}

func (f *Fighter) hitTopics() (hit, killed string) {
	if f.team == TeamEnemy {
		return TopicEnemyHit, TopicEnemyKilled
	}
	return TopicAllyHit, TopicAllyKilled
}

func (f *Fighter) Damage(amount float64, source Entity) bool {
	if f.HP <= 0 {
		return false
	}
	f.lastSource = source
	dropped := f.absorb(amount)
	hit, killed := f.hitTopics()
	if dropped && f.events != nil {
		f.events.Emit(Event{Topic: hit, Entity: f, Source: source})
	}
	if f.HP > 0 {
		return false
	}
	f.Laser.TriggerEnd()
	f.Hidden = true
	if f.events != nil {
		f.events.Emit(Event{Topic: killed, Entity: f, Source: source})
	}
	return true
}

// Face turns the fighter toward point immediately
func (f *Fighter) Face(point mgl64.Vec3) {
	if dir, ok := normalizeVec(point.Sub(f.Pos)); ok {
		f.Rot = lookRotation(dir)
		f.baseRot = f.Rot
	}
}

func (f *Fighter) Update(dt float64) {
	if f.HP <= 0 {
		return
	}
	if f.stunTimer > 0 {
		f.stunTimer = math.Max(0, f.stunTimer-dt)
		f.stunPhase += dt * 10
		f.Rot = f.baseRot.Mul(stunWobble(f.stunPhase, 0.07, 0.1))
		return
	}

	intent := f.AI.Update(dt)
	if intent.HasDirection {
		if dir, ok := normalizeVec(intent.Direction); ok {
			f.Rot = slerpShortest(f.Rot, lookRotation(dir), math.Min(1, dt*fighterTurnRate))
		}
	}
	f.baseRot = f.Rot

	f.Movement.ApplyForces(f.Rot, intent.Move, false, dt)
	f.Movement.Integrate(&f.Pos, false, dt)

	if intent.Fire {
		f.Laser.TriggerStart()
	} else {
		f.Laser.TriggerEnd()
	}
	f.Laser.Update(dt)
}
