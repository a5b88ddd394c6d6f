package main

import (
	"math"
	"sync"
)

// MaxMouseDelta bounds the mouse motion held between two reads
const MaxMouseDelta = 4000.0

// MouseDelta is pointer motion accumulated since the previous read
type MouseDelta struct {
	X float64 `json:"x" msgpack:"x"`
	Y float64 `json:"y" msgpack:"y"`
}

// InputSnapshot is the per-step control state, passed by value
type InputSnapshot struct {
	Move         MoveAxes   `json:"move" msgpack:"move"`
	Roll         float64    `json:"roll" msgpack:"roll"`
	Boost        bool       `json:"boost" msgpack:"boost"`
	Fire         bool       `json:"fire" msgpack:"fire"`
	LockOn       bool       `json:"lockOn" msgpack:"lockOn"`
	SwitchWeapon bool       `json:"switchWeapon" msgpack:"switchWeapon"`
	Funnel       bool       `json:"funnel" msgpack:"funnel"`
	Mouse        MouseDelta `json:"mouse" msgpack:"mouse"`
}

// InputSource yields the snapshot for the next step
type InputSource interface {
	Snapshot() InputSnapshot
}

// StaticInput always returns the same snapshot
type StaticInput InputSnapshot

func (s StaticInput) Snapshot() InputSnapshot {
	return InputSnapshot(s)
}

// InputBuffer collects input from a connection goroutine. Button state is latched,
// mouse motion accumulates until the simulation reads it.
type InputBuffer struct {
	mu    sync.Mutex
	state InputSnapshot
}

// Apply replaces the held state and adds the mouse motion
func (b *InputBuffer) Apply(in InputSnapshot) {
	b.mu.Lock()
	defer b.mu.Unlock()
	mouse := b.state.Mouse
	b.state = in
	b.state.Move.Forward = Clamp(finite(in.Move.Forward), -1, 1)
	b.state.Move.Right = Clamp(finite(in.Move.Right), -1, 1)
	b.state.Move.Up = Clamp(finite(in.Move.Up), -1, 1)
	b.state.Roll = Clamp(finite(in.Roll), -1, 1)
	b.state.Mouse = MouseDelta{
		X: Clamp(mouse.X+finite(in.Mouse.X), -MaxMouseDelta, MaxMouseDelta),
		Y: Clamp(mouse.Y+finite(in.Mouse.Y), -MaxMouseDelta, MaxMouseDelta),
	}
}

// finite maps NaN and the infinities to zero
func finite(v float64) float64 {
	if math.IsNaN(v) || math.IsInf(v, 0) {
		return 0
	}
	return v
}

// Snapshot returns the current state and clears the accumulated mouse motion
func (b *InputBuffer) Snapshot() InputSnapshot {
	b.mu.Lock()
	defer b.mu.Unlock()
	out := b.state
	b.state.Mouse = MouseDelta{}
	return out
}

// Reset drops all held input
func (b *InputBuffer) Reset() {
	b.mu.Lock()
	b.state = InputSnapshot{}
	b.mu.Unlock()
}

// edge tracks the rising edge of a button across steps
type edge struct {
	prev bool
}

func (e *edge) rising(down bool) bool {
	r := down && !e.prev
	e.prev = down
	return r
}
