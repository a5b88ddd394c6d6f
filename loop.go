package main

import (
	"log"
	"math"
)

const (
	FixedStep     = 1.0 / 60.0
	MaxFrameDelta = 1.0 / 15.0
)

// StepContext is handed to every system on each fixed step
type StepContext struct {
	World *World
	Input InputSnapshot
	DT    float64
}

type BeforeUpdater interface {
	BeforeUpdate(ctx StepContext)
}

type StepUpdater interface {
	Update(ctx StepContext)
}

type AfterUpdater interface {
	AfterUpdate(ctx StepContext)
}

// HUDView is the read-only state given to the HUD once per frame
type HUDView struct {
	World *World
	Input InputSnapshot
	DT    float64
	Steps int
	State *GameState
}

type HUD interface {
	Render(view HUDView)
}

// LogHUD writes a status line every Interval seconds of frame time
type LogHUD struct {
	Interval float64
	Prefix   string
	acc      float64
}

func (h *LogHUD) Render(view HUDView) {
	h.acc += view.DT
	if h.acc < h.Interval {
		return
	}
	h.acc = 0
	if view.State == nil {
		log.Printf("%sentities=%d", h.Prefix, view.World.Len())
		return
	}
	s := view.State
	log.Printf("%sentities=%d score=%d kills=%d lives=%d combo=%d time=%.0f",
		h.Prefix, view.World.Len(), s.Score, s.Kills, s.Lives, s.Combo, s.Elapsed)
}

// Loop is the fixed-timestep accumulator. Systems may implement any of
// BeforeUpdater, StepUpdater and AfterUpdater.
type Loop struct {
	FixedStep float64
	MaxFrame  float64

	world   *World
	input   InputSource
	hud     HUD
	state   *GameState
	systems []any

	acc       float64
	lastInput InputSnapshot
	steps     uint64
}

func NewLoop(world *World, input InputSource, systems ...any) *Loop {
	return &Loop{
		FixedStep: FixedStep,
		MaxFrame:  MaxFrameDelta,
		world:     world,
		input:     input,
		systems:   systems,
	}
}

func (l *Loop) AddSystem(s any) {
	l.systems = append(l.systems, s)
}

func (l *Loop) SetHUD(h HUD, state *GameState) {
	l.hud = h
	l.state = state
}

func (l *Loop) SetInput(in InputSource) {
	l.input = in
}

// Steps returns the number of fixed steps run so far
func (l *Loop) Steps() uint64 {
	return l.steps
}

// Accumulated returns the leftover frame time not yet stepped
func (l *Loop) Accumulated() float64 {
	return l.acc
}

// Advance consumes one frame's delta, clamped to MaxFrame, runs as many fixed steps
// as fit and renders the HUD once. It returns the number of steps run.
func (l *Loop) Advance(frameDelta float64) int {
	delta := math.Min(math.Max(frameDelta, 0), l.MaxFrame)
	l.acc += delta
	n := 0
	for l.acc >= l.FixedStep {
		l.Step(l.readInput())
		l.acc -= l.FixedStep
		n++
	}
	if l.hud != nil {
		l.hud.Render(HUDView{World: l.world, Input: l.lastInput, DT: delta, Steps: n, State: l.state})
	}
	return n
}

func (l *Loop) readInput() InputSnapshot {
	if l.input == nil {
		return InputSnapshot{}
	}
	return l.input.Snapshot()
}

// Step runs one fixed step with the given input
func (l *Loop) Step(in InputSnapshot) {
	l.lastInput = in
	ctx := StepContext{World: l.world, Input: in, DT: l.FixedStep}
	for _, s := range l.systems {
		if b, ok := s.(BeforeUpdater); ok {
			b.BeforeUpdate(ctx)
		}
	}
	for _, s := range l.systems {
		if u, ok := s.(StepUpdater); ok {
			u.Update(ctx)
		}
	}
	l.world.Update(ctx.DT)
	for _, s := range l.systems {
		if a, ok := s.(AfterUpdater); ok {
			a.AfterUpdate(ctx)
		}
	}
	l.steps++
}
