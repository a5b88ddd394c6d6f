package main

import (
	"math"

	"github.com/go-gl/mathgl/mgl64"
)

// MovementMode selects what happens to velocity when there is no thrust input
type MovementMode int

const (
	MoveCoast   MovementMode = iota // momentum is conserved
	MoveDamped                      // exponential decay by Damping per 1/60 s
	MoveBraking                     // linear deceleration to a stop
)

func (m MovementMode) String() string {
	switch m {
	case MoveDamped:
		return "damped"
	case MoveBraking:
		return "braking"
	default:
		return "coast"
	}
}

// MoveAxes is thrust input in the craft's local frame, each axis in [-1, 1]
type MoveAxes struct {
	Forward float64 `json:"forward" msgpack:"forward"`
	Right   float64 `json:"right" msgpack:"right"`
	Up      float64 `json:"up" msgpack:"up"`
}

func (a MoveAxes) IsZero() bool {
	return a.Forward == 0 && a.Right == 0 && a.Up == 0
}

type MovementConfig struct {
	MaxSpeed          float64      `json:"maxSpeed"`
	Acceleration      float64      `json:"acceleration"`
	BoostMultiplier   float64      `json:"boostMultiplier"`
	Mode              MovementMode `json:"mode"`
	Damping           float64      `json:"damping,omitempty"`
	BrakeDeceleration float64      `json:"brakeDeceleration,omitempty"`
}

// Movement integrates orientation-relative thrust into velocity and position
type Movement struct {
	MovementConfig
	Vel mgl64.Vec3
}

func NewMovement(cfg MovementConfig) *Movement {
	if cfg.BoostMultiplier <= 0 {
		cfg.BoostMultiplier = 1
	}
	return &Movement{MovementConfig: cfg}
}

func (m *Movement) boostFactor(boost bool) float64 {
	if boost {
		return m.BoostMultiplier
	}
	return 1
}

// ApplyForces adds thrust along the local axes rotated by orient
func (m *Movement) ApplyForces(orient mgl64.Quat, axes MoveAxes, boost bool, dt float64) {
	if axes.IsZero() {
		m.idle(dt)
		return
	}
	local, ok := normalizeVec(mgl64.Vec3{axes.Right, axes.Up, axes.Forward})
	if !ok {
		return
	}
	dir := orient.Rotate(local)
	accel := m.Acceleration * m.boostFactor(boost)
	m.Vel = m.Vel.Add(dir.Mul(accel * dt))
}

func (m *Movement) idle(dt float64) {
	switch m.Mode {
	case MoveDamped:
		if m.Damping > 0 && m.Damping < 1 {
			m.Vel = m.Vel.Mul(math.Pow(m.Damping, dt*60))
		}
	case MoveBraking:
		speed := m.Vel.Len()
		if speed == 0 {
			return
		}
		next := math.Max(0, speed-m.BrakeDeceleration*dt)
		m.Vel = m.Vel.Mul(next / speed)
	}
}

// Integrate clamps speed and advances pos by velocity*dt
func (m *Movement) Integrate(pos *mgl64.Vec3, boost bool, dt float64) {
	max := m.MaxSpeed * m.boostFactor(boost)
	m.Vel = clampLength(m.Vel, max)
	*pos = pos.Add(m.Vel.Mul(dt))
}

// Speed returns the current speed
func (m *Movement) Speed() float64 {
	return m.Vel.Len()
}
