package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

type FunnelConfig struct {
	Count                 int     `json:"count"`
	AttackCycles          int     `json:"attackCycles"`
	CycleInterval         float64 `json:"cycleInterval"`
	Cooldown              float64 `json:"cooldown"`
	Damage                float64 `json:"damage"`
	OrbitRadius           float64 `json:"orbitRadius"`
	OrbitHeight           float64 `json:"orbitHeight"`
	OrbitSpeed            float64 `json:"orbitSpeed"`
	FollowRadius          float64 `json:"followRadius"`
	FollowHeight          float64 `json:"followHeight"`
	FollowSpeed           float64 `json:"followSpeed"`
	ReturnSpeed           float64 `json:"returnSpeed"`
	DeployArrivalDistance float64 `json:"deployArrivalDistance"`
	DockDistance          float64 `json:"dockDistance"`
	MaxRange              float64 `json:"maxRange"`
}

func DefaultFunnelConfig() FunnelConfig {
	return FunnelConfig{
		Count:                 3,
		AttackCycles:          3,
		CycleInterval:         0.45,
		Cooldown:              3.0,
		Damage:                6,
		OrbitRadius:           6,
		OrbitHeight:           2,
		OrbitSpeed:            1.6,
		FollowRadius:          4.5,
		FollowHeight:          1.2,
		FollowSpeed:           6,
		ReturnSpeed:           7,
		DeployArrivalDistance: 1.0,
		DockDistance:          0.4,
		MaxRange:              350,
	}
}

type FunnelState int

const (
	FunnelIdle FunnelState = iota
	FunnelDeploying
	FunnelAttacking
	FunnelReturning
)

func (s FunnelState) String() string {
	switch s {
	case FunnelDeploying:
		return "deploying"
	case FunnelAttacking:
		return "attacking"
	case FunnelReturning:
		return "returning"
	default:
		return "idle"
	}
}

// TargetProvider exposes the current lock-on target
type TargetProvider interface {
	CurrentTarget() Entity
}

type droneMode int

const (
	droneDock droneMode = iota
	droneOrbit
	droneReturn
)

// FunnelDrone is one remote weapon pod. It moves itself toward the goal its
// funnel sets each tick.
type FunnelDrone struct {
	Body
	mode  droneMode
	goal  mgl64.Vec3
	speed float64
	dock  float64
}

// droneMinSpeed floors the closing speed so drones catch a goal that moves with a
// boosting craft
const droneMinSpeed = 200.0

func (d *FunnelDrone) Update(dt float64) {
	to := d.goal.Sub(d.Pos)
	gap := to.Len()
	step := math.Max(gap*expLerpFactor(d.speed, dt), droneMinSpeed*dt)
	if step >= gap {
		d.Pos = d.goal
	} else {
		d.Pos = d.Pos.Add(to.Mul(step / gap))
	}
	if d.mode == droneReturn && Distance(d.Pos, d.goal) < d.dock {
		d.mode = droneDock
	}
}

// Docked reports whether the drone has reached its slot around the owner
func (d *FunnelDrone) Docked() bool {
	return d.mode == droneDock
}

// Funnel deploys drones around the lock-on target and damages it once per cycle
type Funnel struct {
	Config FunnelConfig

	owner     Positioned
	world     *World
	targeting TargetProvider
	drones    []*FunnelDrone
	enabled   bool

	state     FunnelState
	cycles    int
	cycleTime float64
	cooldown  float64
	orbitTime float64
	target    Entity
	ticks     int
}

// NewFunnel creates the drones and adds them to the world at the owner's position
func NewFunnel(owner Positioned, world *World, targeting TargetProvider, cfg FunnelConfig) *Funnel {
	f := &Funnel{
		Config:    cfg,
		owner:     owner,
		world:     world,
		targeting: targeting,
		enabled:   true,
	}
	for i := 0; i < cfg.Count; i++ {
		d := &FunnelDrone{Body: newBody(owner.Position()), speed: cfg.FollowSpeed, dock: cfg.DockDistance}
		d.goal = f.dockSlot(i)
		d.Pos = d.goal
		world.Add(d)
		f.drones = append(f.drones, d)
	}
	return f
}

func (f *Funnel) State() FunnelState { return f.state }

func (f *Funnel) Drones() []*FunnelDrone { return f.drones }

func (f *Funnel) Cooldown() float64 { return f.cooldown }

// DamageTicks counts the cycles that have hit a target
func (f *Funnel) DamageTicks() int { return f.ticks }

func (f *Funnel) Enabled() bool { return f.enabled }

func (f *Funnel) SetEnabled(on bool) { f.enabled = on }

func (f *Funnel) TriggerEnd() {}

// TriggerStart deploys toward the current lock-on target if the funnel is ready
func (f *Funnel) TriggerStart() {
	if !f.enabled || f.cooldown > 0 || f.state == FunnelAttacking {
		return
	}
	var t Entity
	if f.targeting != nil {
		t = f.targeting.CurrentTarget()
	}
	if !f.validTarget(t) {
		return
	}
	f.target = t
	f.state = FunnelDeploying
	f.cycles = f.Config.AttackCycles
	f.cycleTime = 0
	f.orbitTime = 0
}

func (f *Funnel) validTarget(t Entity) bool {
	if t == nil || !f.world.Contains(t) || !isAlive(t) || !isVisible(t) {
		return false
	}
	p, ok := t.(Positioned)
	if !ok {
		return false
	}
	return Distance(f.owner.Position(), p.Position()) <= f.Config.MaxRange
}

func (f *Funnel) slotAngle(i int) float64 {
	n := max(f.Config.Count, 1)
	return float64(i) / float64(n) * 2 * math.Pi
}

func (f *Funnel) dockSlot(i int) mgl64.Vec3 {
	angle := f.orbitTime + f.slotAngle(i)
	offset := mgl64.Vec3{math.Cos(angle) * f.Config.FollowRadius, f.Config.FollowHeight, math.Sin(angle) * f.Config.FollowRadius}
	return f.owner.Position().Add(f.owner.Orientation().Rotate(offset))
}

func (f *Funnel) orbitSlot(center mgl64.Vec3, angle float64) mgl64.Vec3 {
	h := f.Config.OrbitHeight
	offset := mgl64.Vec3{math.Cos(angle), math.Sin(angle*0.7) * h, math.Sin(angle)}.Mul(f.Config.OrbitRadius)
	offset[1] += h
	return center.Add(offset)
}

func (f *Funnel) Update(dt float64) {
	if f.cooldown > 0 {
		f.cooldown = math.Max(0, f.cooldown-dt)
	}
	f.orbitTime += dt * f.Config.OrbitSpeed

	if f.state == FunnelIdle {
		for i, d := range f.drones {
			d.mode, d.goal, d.speed = droneDock, f.dockSlot(i), f.Config.FollowSpeed
		}
		return
	}

	if (f.state == FunnelDeploying || f.state == FunnelAttacking) && !f.validTarget(f.target) {
		f.state = FunnelReturning
		f.target = nil
	}

	switch f.state {
	case FunnelDeploying:
		center := f.target.(Positioned).Position()
		arrived := true
		for i, d := range f.drones {
			d.mode, d.speed = droneOrbit, f.Config.FollowSpeed
			d.goal = f.orbitSlot(center, f.slotAngle(i))
			if Distance(d.Pos, d.goal) > f.Config.DeployArrivalDistance {
				arrived = false
			}
		}
		if arrived {
			f.state = FunnelAttacking
			f.cycleTime = 0
		}
	case FunnelAttacking:
		center := f.target.(Positioned).Position()
		for i, d := range f.drones {
			d.mode, d.speed = droneOrbit, f.Config.FollowSpeed
			d.goal = f.orbitSlot(center, f.orbitTime+f.slotAngle(i))
		}
		f.cycleTime -= dt
		if f.cycleTime <= 0 && f.cycles > 0 {
			f.cycles--
			f.cycleTime = f.Config.CycleInterval
			f.ticks++
			if dmg, ok := f.target.(Damageable); ok {
				dmg.Damage(f.Config.Damage, f.owner)
			}
			if f.cycles <= 0 {
				f.state = FunnelReturning
				f.cooldown = f.Config.Cooldown
				f.target = nil
			}
		}
	}

	if f.state == FunnelReturning {
		docked := true
		for i, d := range f.drones {
			if d.mode != droneDock {
				d.mode = droneReturn
			}
			d.goal, d.speed = f.dockSlot(i), f.Config.ReturnSpeed
			if d.mode != droneDock {
				docked = false
			}
		}
		if docked {
			f.state = FunnelIdle
		}
	}
}

// Reset snaps every drone to its dock slot and cancels any attack
func (f *Funnel) Reset() {
	f.state = FunnelIdle
	f.target = nil
	f.cycles = 0
	f.cycleTime = 0
	for i, d := range f.drones {
		d.mode = droneDock
		d.goal = f.dockSlot(i)
		d.Pos = d.goal
		f.world.SyncSpatial(d)
	}
}

// Destroy removes the drones from the world
func (f *Funnel) Destroy() {
	for _, d := range f.drones {
		f.world.Remove(d)
	}
}
