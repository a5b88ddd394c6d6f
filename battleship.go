package main

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

type BattleshipConfig struct {
	HP                 float64      `json:"hp"`
	Shield             float64      `json:"shield"`
	ColliderRadius     float64      `json:"colliderRadius"`
	Beam               LaserConfig  `json:"beam"`
	InaccuracyDeg      float64      `json:"inaccuracyDeg"`
	EnrageDuration     float64      `json:"enrageDuration"`
	EnrageFireRateMult float64      `json:"enrageFireRateMult"`
	EnrageDamageMult   float64      `json:"enrageDamageMult"`
	EnemyPositions     []mgl64.Vec3 `json:"enemyPositions"`
	AllyPositions      []mgl64.Vec3 `json:"allyPositions"`
	Spawn              SpawnConfig  `json:"spawn"`
}

func DefaultBattleshipConfig() BattleshipConfig {
	return BattleshipConfig{
		HP:                 900,
		ColliderRadius:     14,
		Beam:               LaserConfig{Damage: 14, Range: 420, FireRate: 1.5},
		InaccuracyDeg:      12,
		EnrageDuration:     4,
		EnrageFireRateMult: 1.6,
		EnrageDamageMult:   1.3,
		EnemyPositions:     []mgl64.Vec3{{0, 0, -520}, {140, 30, -480}},
		AllyPositions:      []mgl64.Vec3{{0, 0, 520}, {-140, -30, 480}},
		Spawn:              DefaultSpawnConfig(),
	}
}

var (
	battleshipLaunchOffset = mgl64.Vec3{0, -1.2, 26}
	battleshipTurretOffset = mgl64.Vec3{0, 5.1, 4}
)

const battleshipBarrelLength = 10.2

// Battleship is a static capital ship with a turret beam
type Battleship struct {
	Body
	Health
	Config BattleshipConfig
	Beam   *Laser

	team       Team
	events     *EventBus
	rng        *rand.Rand
	resolver   TargetSelector
	target     Entity
	enrage     float64
	lastSource Entity
}

func NewBattleship(cfg BattleshipConfig, team Team, pos mgl64.Vec3, world *World, events *EventBus, rng *rand.Rand) *Battleship {
	s := &Battleship{
		Body:   newBody(pos),
		Health: newHealth(cfg.HP, cfg.Shield),
		Config: cfg,
		team:   team,
		events: events,
		rng:    rng,
	}
	// Face the opposing fleet across the origin
	s.Rot = lookRotation(mgl64.Vec3{0, 0, -pos[2]})
	s.Beam = NewLaser(s, world, cfg.Beam)
	s.Beam.Muzzle = s.muzzle
	s.Beam.Aim = s.aim
	return s
}

func (s *Battleship) Team() Team { return s.team }

func (s *Battleship) ColliderRadius() float64 { return s.Config.ColliderRadius }

func (s *Battleship) IsCapitalShip() bool { return true }

func (s *Battleship) Targetable() bool { return true }

func (s *Battleship) Target() Entity { return s.target }

func (s *Battleship) Enraged() bool { return s.enrage > 0 }

func (s *Battleship) LastDamageSource() Entity { return s.lastSource }

// SetTargetResolver installs the per-tick target lookup
func (s *Battleship) SetTargetResolver(r TargetSelector) {
	s.resolver = r
}

// LaunchPoint is where this ship's hangar releases craft
func (s *Battleship) LaunchPoint() mgl64.Vec3 {
	return s.LocalToWorld(battleshipLaunchOffset)
}

func (s *Battleship) turret() mgl64.Vec3 {
	return s.LocalToWorld(battleshipTurretOffset)
}

func (s *Battleship) targetDir() (mgl64.Vec3, bool) {
	p, ok := s.target.(Positioned)
	if !ok {
		return mgl64.Vec3{}, false
	}
	return normalizeVec(p.Position().Sub(s.turret()))
}

func (s *Battleship) muzzle() (mgl64.Vec3, bool) {
	dir, ok := s.targetDir()
	if !ok {
		dir = s.Forward()
	}
	return s.turret().Add(dir.Mul(battleshipBarrelLength)), true
}

// aim points at the target with a random deviation of up to InaccuracyDeg
func (s *Battleship) aim() (mgl64.Vec3, bool) {
	dir, ok := s.targetDir()
	if !ok {
		return s.Forward(), true
	}
	if s.Config.InaccuracyDeg <= 0 {
		return dir, true
	}
	angle := s.rng.Float64() * mgl64.DegToRad(s.Config.InaccuracyDeg)
	axis, ok := normalizeVec(mgl64.Vec3{s.rng.Float64() - 0.5, s.rng.Float64() - 0.5, s.rng.Float64() - 0.5})
	if !ok {
		return dir, true
	}
	return mgl64.QuatRotate(angle, axis).Rotate(dir).Normalize(), true
}

func (s *Battleship) Damage(amount float64, source Entity) bool {
	if s.HP <= 0 {
		return false
	}
	s.lastSource = source
	dropped := s.absorb(amount)
	if dropped && s.events != nil {
		s.events.Emit(Event{Topic: TopicBattleshipHit, Entity: s, Source: source})
	}
	if dropped && s.team == TeamEnemy && s.Config.EnrageDuration > 0 {
		s.enrage = s.Config.EnrageDuration
	}
	if s.HP > 0 {
		return false
	}
	s.Hidden = true
	s.Beam.TriggerEnd()
	if s.events != nil {
		s.events.Emit(Event{Topic: TopicBattleshipDestroyed, Entity: s, Source: source})
	}
	return true
}

func (s *Battleship) Update(dt float64) {
	if s.HP <= 0 {
		return
	}
	if s.resolver != nil {
		s.target = s.resolver.Select(s)
	}
	if s.enrage > 0 {
		s.enrage = math.Max(0, s.enrage-dt)
	}
	if s.enrage > 0 {
		s.Beam.RateScale = s.Config.EnrageFireRateMult
		s.Beam.DamageScale = s.Config.EnrageDamageMult
	} else {
		s.Beam.RateScale, s.Beam.DamageScale = 1, 1
	}
	if s.target != nil && isAlive(s.target) {
		s.Beam.TriggerStart()
	} else {
		s.Beam.TriggerEnd()
	}
	s.Beam.Update(dt)
}
