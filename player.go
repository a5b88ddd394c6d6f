package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

const (
	PlayerColliderRadius  = 1.2
	PlayerMouseSens       = 0.002 // radians per mouse unit
	PlayerPitchLimitDeg   = 60.0
	PlayerRollSpeedDeg    = 160.0 // degrees/s at full roll input
	PlayerMaxRecoil       = 0.45
	PlayerRecoilDamping   = 12.0
	PlayerCollisionDamage = 5.0
	PlayerCollisionCD     = 0.5 // seconds between collision hits
)

type PlayerConfig struct {
	HP               float64        `json:"hp"`
	Shield           float64        `json:"shield"`
	ShieldRegenDelay float64        `json:"shieldRegenDelay"`
	ShieldRegenRate  float64        `json:"shieldRegenRate"`
	MaxBoostFuel     float64        `json:"maxBoostFuel"`
	BoostRegenDelay  float64        `json:"boostRegenDelay"`
	BoostRegenRate   float64        `json:"boostRegenRate"`
	Movement         MovementConfig `json:"movement"`
	Laser            LaserConfig    `json:"laser"`
	Bazooka          BazookaConfig  `json:"bazooka"`
	Funnel           FunnelConfig   `json:"funnel"`
}

func DefaultPlayerConfig() PlayerConfig {
	funnel := DefaultFunnelConfig()
	funnel.Count = 5
	return PlayerConfig{
		HP:               100,
		Shield:           60,
		ShieldRegenDelay: 2,
		MaxBoostFuel:     5,
		BoostRegenDelay:  1,
		BoostRegenRate:   0.5,
		Movement:         MovementConfig{MaxSpeed: 80, Acceleration: 40, BoostMultiplier: 2, Mode: MoveCoast},
		Laser:            LaserConfig{Damage: 10, Range: 500, FireRate: 8, Recoil: 0.35},
		Bazooka:          DefaultBazookaConfig(),
		Funnel:           funnel,
	}
}

// Player is the piloted craft
type Player struct {
	Body
	Health
	Config PlayerConfig

	Movement *Movement
	Laser    *Laser
	Bazooka  *Bazooka
	Funnel   *Funnel
	Switch   *WeaponSwitch

	// Invulnerable is set while respawning and after the battle is decided
	Invulnerable bool

	events *EventBus
	input  InputSnapshot

	yaw, pitch, roll float64
	boostFuel        float64
	sinceBoost       float64
	sinceDamage      float64
	collisionCD      float64
	recoil           float64
	stunTimer        float64
	stunPhase        float64
	boosting         bool
	deathHandled     bool
	funnelPress      edge
}

// NewPlayer creates the craft and its weapons. The funnel drones are added to the
// manager's world; targeting feeds the funnel its target.
func NewPlayer(cfg PlayerConfig, manager *EntityManager, events *EventBus, targeting TargetProvider) *Player {
	p := &Player{
		Body:      newBody(mgl64.Vec3{}),
		Health:    newHealth(cfg.HP, cfg.Shield),
		Config:    cfg,
		Movement:  NewMovement(cfg.Movement),
		events:    events,
		boostFuel: cfg.MaxBoostFuel,
	}
	p.Laser = NewLaser(p, manager.world, cfg.Laser)
	p.Laser.Muzzle = p.muzzle
	p.Bazooka = NewBazooka(p, manager, cfg.Bazooka)
	p.Bazooka.Muzzle = p.muzzle
	p.Funnel = NewFunnel(p, manager.world, targeting, cfg.Funnel)
	p.Switch = NewWeaponSwitch(p.Laser, p.Bazooka)
	return p
}

func (p *Player) muzzle() (mgl64.Vec3, bool) {
	return p.LocalToWorld(mgl64.Vec3{0.6, -0.2, 1.6}), true
}

func (p *Player) Team() Team { return TeamAlly }

func (p *Player) ColliderRadius() float64 { return PlayerColliderRadius }

func (p *Player) Velocity() *mgl64.Vec3 { return &p.Movement.Vel }

func (p *Player) BoostFuel() float64 { return p.boostFuel }

func (p *Player) Boosting() bool { return p.boosting }

func (p *Player) Recoil() float64 { return p.recoil }

func (p *Player) Stunned() bool { return p.stunTimer > 0 }

// SetInput stores the control state for the next Update
func (p *Player) SetInput(in InputSnapshot) {
	p.input = in
}

func (p *Player) ApplyStun(duration float64) {
	p.stunTimer = math.Max(p.stunTimer, duration)
}

func (p *Player) ApplyRecoil(kick float64) {
	p.recoil = math.Min(p.recoil+kick, PlayerMaxRecoil)
}

// Damage applies shield-then-hull damage and reports whether this hit destroyed the craft.
// It is ignored while Invulnerable.
func (p *Player) Damage(amount float64, source Entity) bool {
	if p.Invulnerable {
		return false
	}
	p.sinceDamage = 0
	dropped := p.absorb(amount)
	if dropped && p.events != nil {
		p.events.Emit(Event{Topic: TopicPlayerHit, Entity: p, Source: source})
	}
	killed := p.HP <= 0 && !p.deathHandled
	if killed {
		p.deathHandled = true
		p.Laser.TriggerEnd()
		p.Bazooka.TriggerEnd()
		p.Funnel.Reset()
		if p.events != nil {
			p.events.Emit(Event{Topic: TopicPlayerKilled, Entity: p, Source: source})
		}
	}
	return killed
}

func (p *Player) OnCollision(other Entity) {
	if p.collisionCD > 0 {
		return
	}
	p.Damage(PlayerCollisionDamage, other)
	p.collisionCD = PlayerCollisionCD
}

// Respawn restores the craft at pos facing +Z with no velocity
func (p *Player) Respawn(pos mgl64.Vec3) {
	p.Restore()
	p.deathHandled = false
	p.Hidden = false
	p.Pos = pos
	p.yaw, p.pitch, p.roll = 0, 0, 0
	p.Rot = mgl64.QuatIdent()
	p.Movement.Vel = mgl64.Vec3{}
	p.Funnel.Reset()
}

func (p *Player) Update(dt float64) {
	if p.collisionCD > 0 {
		p.collisionCD = math.Max(0, p.collisionCD-dt)
	}
	p.sinceDamage += dt
	c := p.Config
	if c.ShieldRegenRate > 0 && p.sinceDamage >= c.ShieldRegenDelay && p.Shield < p.MaxShield {
		p.Shield = math.Min(p.MaxShield, p.Shield+c.ShieldRegenRate*dt)
	}

	in := p.input
	if p.stunTimer > 0 {
		in = InputSnapshot{SwitchWeapon: in.SwitchWeapon, Mouse: in.Mouse}
	}

	p.boosting = in.Boost && !in.Move.IsZero() && p.boostFuel > 0
	if p.boosting {
		p.boostFuel = math.Max(0, p.boostFuel-dt)
		p.sinceBoost = 0
	} else {
		p.sinceBoost += dt
		if p.sinceBoost >= c.BoostRegenDelay && p.boostFuel < c.MaxBoostFuel {
			p.boostFuel = math.Min(c.MaxBoostFuel, p.boostFuel+c.BoostRegenRate*dt)
		}
	}

	p.yaw = math.Remainder(p.yaw-finite(in.Mouse.X)*PlayerMouseSens, 2*math.Pi)
	p.pitch -= finite(in.Mouse.Y) * PlayerMouseSens
	limit := mgl64.DegToRad(PlayerPitchLimitDeg)
	p.pitch = Clamp(p.pitch, -limit, limit)
	p.roll = math.Remainder(p.roll+finite(in.Roll)*mgl64.DegToRad(PlayerRollSpeedDeg)*dt, 2*math.Pi)

	rot := eulerYXZ(p.yaw, p.pitch, p.roll)
	if p.stunTimer > 0 {
		p.stunTimer = math.Max(0, p.stunTimer-dt)
		p.stunPhase += dt * 10
		rot = rot.Mul(stunWobble(p.stunPhase, 0.08, 0.12))
	}
	p.Rot = rot

	if p.HP > 0 {
		p.Movement.ApplyForces(p.Rot, in.Move, p.boosting, dt)
		p.Movement.Integrate(&p.Pos, p.boosting, dt)
	}

	p.triggerWeapon(p.Laser, in.Fire)
	p.triggerWeapon(p.Bazooka, in.Fire)
	p.Laser.Update(dt)
	p.Bazooka.Update(dt)
	if p.funnelPress.rising(in.Funnel) && p.Funnel.Enabled() {
		p.Funnel.TriggerStart()
	}
	p.Funnel.Update(dt)

	p.recoil += (0 - p.recoil) * expLerpFactor(PlayerRecoilDamping, dt)
}

func (p *Player) triggerWeapon(w Weapon, pressed bool) {
	if pressed && w.Enabled() {
		w.TriggerStart()
		return
	}
	w.TriggerEnd()
}

// stunWobble is the small oscillating tilt shown while stunned
func stunWobble(phase, pitchAmp, rollAmp float64) mgl64.Quat {
	qx := mgl64.QuatRotate(math.Sin(phase)*pitchAmp, axisRight)
	qz := mgl64.QuatRotate(math.Cos(phase)*rollAmp, axisForward)
	return qx.Mul(qz)
}

// PlayerInputSystem hands the step's input to the player, or a neutral snapshot
// while the player cannot act.
type PlayerInputSystem struct {
	Player *Player
	State  *GameState
}

func (s *PlayerInputSystem) BeforeUpdate(ctx StepContext) {
	if s.Player.HP <= 0 || (s.State != nil && (s.State.Respawning || s.State.Result != "")) {
		s.Player.SetInput(InputSnapshot{})
		return
	}
	s.Player.SetInput(ctx.Input)
}
