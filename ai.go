package main

import (
	"math"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

type AIState int

const (
	AIIdle AIState = iota
	AIPatrol
	AIChase
	AIAttack
)

func (s AIState) String() string {
	switch s {
	case AIPatrol:
		return "patrol"
	case AIChase:
		return "chase"
	case AIAttack:
		return "attack"
	default:
		return "idle"
	}
}

// AIProfile holds the engagement distances and timers. AttackAngle is in degrees.
type AIProfile struct {
	ChaseDistance    float64 `json:"chaseDistance"`
	AttackDistance   float64 `json:"attackDistance"`
	AttackAngle      float64 `json:"attackAngleDeg"`
	StandoffDistance float64 `json:"standoffDistance"`
	StandoffBand     float64 `json:"standoffBand"`
	HoldDuration     float64 `json:"holdDuration"`
	BurstDuration    float64 `json:"burstDuration"`
	PatrolThrottle   float64 `json:"patrolThrottle"`
	ApproachThrottle float64 `json:"approachThrottle"`
	BoundaryRadius   float64 `json:"boundaryRadius,omitempty"`
	// PatrolWithoutTarget makes the controller patrol instead of idling when nothing
	// can be targeted.
	PatrolWithoutTarget bool `json:"patrolWithoutTarget,omitempty"`
}

const (
	chaseThrottle   = 0.85
	retreatThrottle = -0.4
)

func EnemyProfile() AIProfile {
	return AIProfile{
		ChaseDistance: 400, AttackDistance: 260, AttackAngle: 18,
		StandoffDistance: 240, StandoffBand: 40,
		HoldDuration: 4.5, BurstDuration: 1.0,
		PatrolThrottle: 0.4, ApproachThrottle: 0.55,
		BoundaryRadius: 765,
	}
}

func AllyProfile() AIProfile {
	return AIProfile{
		ChaseDistance: 420, AttackDistance: 260, AttackAngle: 18,
		StandoffDistance: 220, StandoffBand: 40,
		HoldDuration: 4.0, BurstDuration: 1.0,
		PatrolThrottle: 0.35, ApproachThrottle: 0.5,
		PatrolWithoutTarget: true,
	}
}

// AIIntent is what a controller asks its craft to do this tick. Direction is only
// meaningful when HasDirection is set.
type AIIntent struct {
	Move         MoveAxes
	Fire         bool
	Direction    mgl64.Vec3
	HasDirection bool
}

// AIController drives one craft toward, around and at a target
type AIController struct {
	Profile AIProfile
	State   AIState

	owner Positioned
	// fixed is tracked while alive, selector is the fallback
	fixed    Entity
	selector TargetSelector
	world    *World
	rng      *rand.Rand

	target      Entity
	holdTimer   float64
	burstTimer  float64
	patrolTimer float64
	patrolDir   mgl64.Vec3
}

// NewAIController creates a controller. fixed may be nil; selector may be nil.
func NewAIController(owner Positioned, profile AIProfile, world *World, rng *rand.Rand, fixed Entity, selector TargetSelector) *AIController {
	dir, _ := normalizeVec(mgl64.Vec3{0.3, 0.1, 1})
	initial := AIIdle
	if profile.PatrolWithoutTarget || fixed != nil {
		initial = AIPatrol
	}
	return &AIController{
		Profile:   profile,
		State:     initial,
		owner:     owner,
		fixed:     fixed,
		selector:  selector,
		world:     world,
		rng:       rng,
		patrolDir: dir,
	}
}

// Target is the entity selected on the last update
func (c *AIController) Target() Entity {
	return c.target
}

// SetFixedTarget replaces the tracked target
func (c *AIController) SetFixedTarget(e Entity) {
	c.fixed = e
}

// Timers exposes hold and burst for inspection
func (c *AIController) Timers() (hold, burst float64) {
	return c.holdTimer, c.burstTimer
}

func (c *AIController) validTarget(e Entity) bool {
	if e == nil || e == Entity(c.owner) {
		return false
	}
	if c.world != nil && !c.world.Contains(e) {
		return false
	}
	if _, ok := e.(Positioned); !ok {
		return false
	}
	return isAlive(e)
}

func (c *AIController) resolveTarget() Entity {
	if c.validTarget(c.fixed) {
		return c.fixed
	}
	if c.selector != nil {
		if t := c.selector.Select(c.owner); c.validTarget(t) {
			return t
		}
	}
	return nil
}

func (c *AIController) setState(s AIState) {
	if s != c.State {
		c.holdTimer = 0
		c.burstTimer = 0
		c.State = s
	}
}

// Update advances the state machine and returns this tick's intent
func (c *AIController) Update(dt float64) AIIntent {
	pos := c.owner.Position()

	if r := c.Profile.BoundaryRadius; r > 0 && pos.Dot(pos) > r*r {
		home, _ := normalizeVec(pos.Mul(-1))
		return AIIntent{Move: MoveAxes{Forward: 1}, Direction: home, HasDirection: true}
	}

	c.target = c.resolveTarget()
	if c.target == nil {
		if c.Profile.PatrolWithoutTarget {
			c.setState(AIPatrol)
			return c.patrol(dt)
		}
		c.setState(AIIdle)
		return AIIntent{}
	}

	toTarget := c.target.(Positioned).Position().Sub(pos)
	distance := toTarget.Len()
	direction, ok := normalizeVec(toTarget)
	if !ok {
		direction = c.owner.Orientation().Rotate(axisForward)
	}
	forward := c.owner.Orientation().Rotate(axisForward)
	angle := angleBetween(forward, direction)

	p := c.Profile
	switch {
	case distance > p.ChaseDistance:
		c.setState(AIPatrol)
	case distance > p.StandoffDistance+p.StandoffBand:
		c.setState(AIChase)
	default:
		c.setState(AIAttack)
	}

	switch c.State {
	case AIPatrol:
		return c.patrol(dt)
	case AIChase:
		c.tickTimers(dt)
		intent := AIIntent{Direction: direction, HasDirection: true}
		if c.burstTimer > 0 {
			intent.Move.Forward = chaseThrottle
		}
		return intent
	}

	c.tickTimers(dt)
	moving := c.burstTimer > 0
	var intent AIIntent
	if moving {
		if distance < p.StandoffDistance-p.StandoffBand {
			intent.Move.Forward = retreatThrottle
		} else if distance > p.StandoffDistance+p.StandoffBand {
			intent.Move.Forward = p.ApproachThrottle
		}
	} else {
		intent.Direction = direction
		intent.HasDirection = true
	}
	intent.Fire = !moving && distance < p.AttackDistance && angle < mgl64.DegToRad(p.AttackAngle)
	return intent
}

func (c *AIController) tickTimers(dt float64) {
	c.holdTimer -= dt
	c.burstTimer = math.Max(0, c.burstTimer-dt)
	if c.holdTimer <= 0 {
		c.holdTimer = c.Profile.HoldDuration
		c.burstTimer = c.Profile.BurstDuration
	}
}

func (c *AIController) patrol(dt float64) AIIntent {
	c.patrolTimer -= dt
	if c.patrolTimer <= 0 {
		c.patrolTimer = 2.5 + c.rng.Float64()*2.0
		dir := mgl64.Vec3{c.rng.Float64() - 0.5, c.rng.Float64() - 0.5, 1}
		c.patrolDir, _ = normalizeVec(dir)
	}
	return AIIntent{
		Move:         MoveAxes{Forward: c.Profile.PatrolThrottle},
		Direction:    c.patrolDir,
		HasDirection: true,
	}
}
