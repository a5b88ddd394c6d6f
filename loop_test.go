package main

import (
	"bytes"
	"log"
	"math"
	"os"
	"strings"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type recorder struct {
	log *[]string
	dts []float64
	ins []InputSnapshot
}

func (r *recorder) BeforeUpdate(ctx StepContext) { *r.log = append(*r.log, "before") }
func (r *recorder) Update(ctx StepContext) {
	*r.log = append(*r.log, "update")
	r.dts = append(r.dts, ctx.DT)
	r.ins = append(r.ins, ctx.Input)
}
func (r *recorder) AfterUpdate(ctx StepContext) { *r.log = append(*r.log, "after") }

type worldTicker struct {
	probe
	log *[]string
}

func (w *worldTicker) Update(dt float64) { *w.log = append(*w.log, "world") }

type countingHUD struct {
	frames []HUDView
}

func (h *countingHUD) Render(v HUDView) { h.frames = append(h.frames, v) }

func newTestLoop() (*Loop, *recorder, *[]string) {
	var log []string
	w := NewWorld(50)
	w.Add(&worldTicker{probe: *newProbe(mgl64.Vec3{}, 1), log: &log})
	rec := &recorder{log: &log}
	l := NewLoop(w, nil, rec)
	l.FixedStep = 0.25
	l.MaxFrame = 1.0
	return l, rec, &log
}

func TestLoopStepOrder(t *testing.T) {
	l, _, log := newTestLoop()
	l.Step(InputSnapshot{})

	want := []string{"before", "update", "world", "after"}
	if len(*log) != len(want) {
		t.Fatalf("expected %v, got %v", want, *log)
	}
	for i := range want {
		if (*log)[i] != want[i] {
			t.Errorf("step %d: expected %s, got %s", i, want[i], (*log)[i])
		}
	}
	if l.Steps() != 1 {
		t.Errorf("expected 1 step, got %d", l.Steps())
	}
}

func TestLoopClampsFrameDelta(t *testing.T) {
	l, rec, _ := newTestLoop()
	if n := l.Advance(5.0); n != 4 {
		t.Errorf("expected 4 steps for a clamped frame, got %d", n)
	}
	for _, dt := range rec.dts {
		if dt != 0.25 {
			t.Errorf("expected fixed dt 0.25, got %v", dt)
		}
	}
	if n := l.Advance(-1); n != 0 {
		t.Errorf("expected negative delta to run nothing, got %d", n)
	}
}

func TestLoopAccumulatesRemainder(t *testing.T) {
	l, _, _ := newTestLoop()
	if n := l.Advance(0.125); n != 0 {
		t.Errorf("expected 0 steps, got %d", n)
	}
	if l.Accumulated() != 0.125 {
		t.Errorf("expected 0.125 accumulated, got %v", l.Accumulated())
	}
	if n := l.Advance(0.125); n != 1 {
		t.Errorf("expected 1 step, got %d", n)
	}
	if l.Accumulated() != 0 {
		t.Errorf("expected empty accumulator, got %v", l.Accumulated())
	}
}

func TestLoopRendersHUDOncePerFrame(t *testing.T) {
	l, _, _ := newTestLoop()
	hud := &countingHUD{}
	l.SetHUD(hud, nil)

	l.Advance(0.5)
	l.Advance(0.1)
	if len(hud.frames) != 2 {
		t.Fatalf("expected 2 renders, got %d", len(hud.frames))
	}
	if hud.frames[0].Steps != 2 || hud.frames[1].Steps != 0 {
		t.Errorf("expected steps 2 and 0, got %d and %d", hud.frames[0].Steps, hud.frames[1].Steps)
	}
}

func TestLoopReadsInputEachStep(t *testing.T) {
	l, rec, _ := newTestLoop()
	l.SetInput(StaticInput{Fire: true})
	l.Advance(0.5)
	if len(rec.ins) != 2 {
		t.Fatalf("expected 2 inputs, got %d", len(rec.ins))
	}
	for _, in := range rec.ins {
		if !in.Fire {
			t.Error("expected fire held on every step")
		}
	}
}

func TestInputBufferAccumulatesMouse(t *testing.T) {
	var b InputBuffer
	b.Apply(InputSnapshot{Mouse: MouseDelta{X: 3}, Move: MoveAxes{Forward: 5}})
	b.Apply(InputSnapshot{Mouse: MouseDelta{X: 2, Y: 1}, Fire: true, Move: MoveAxes{Forward: 5, Right: -3}})

	in := b.Snapshot()
	if in.Mouse.X != 5 || in.Mouse.Y != 1 {
		t.Errorf("expected mouse (5,1), got (%v,%v)", in.Mouse.X, in.Mouse.Y)
	}
	if in.Move.Forward != 1 || in.Move.Right != -1 {
		t.Errorf("expected clamped axes, got %+v", in.Move)
	}
	if !in.Fire {
		t.Error("expected latched fire")
	}

	again := b.Snapshot()
	if again.Mouse.X != 0 || !again.Fire {
		t.Error("expected mouse cleared and buttons kept after a read")
	}

	b.Reset()
	if b.Snapshot().Fire {
		t.Error("expected reset to release buttons")
	}
}

func TestInputBufferRejectsNonFinite(t *testing.T) {
	var b InputBuffer
	b.Apply(InputSnapshot{Mouse: MouseDelta{X: 1e308}})
	b.Apply(InputSnapshot{Mouse: MouseDelta{X: 1e308, Y: math.NaN()}, Roll: math.Inf(1), Move: MoveAxes{Forward: math.NaN()}})

	in := b.Snapshot()
	if in.Mouse.X != MaxMouseDelta || in.Mouse.Y != 0 {
		t.Errorf("expected mouse clamped to %v and NaN dropped, got %+v", MaxMouseDelta, in.Mouse)
	}
	if in.Roll != 0 || in.Move.Forward != 0 {
		t.Errorf("expected non-finite axes dropped, got roll %v forward %v", in.Roll, in.Move.Forward)
	}
}

func TestEdgeRising(t *testing.T) {
	var e edge
	seq := []bool{true, true, false, true}
	want := []bool{true, false, false, true}
	for i, down := range seq {
		if got := e.rising(down); got != want[i] {
			t.Errorf("press %d: expected %v, got %v", i, want[i], got)
		}
	}
}

func TestLogHUDInterval(t *testing.T) {
	var buf bytes.Buffer
	log.SetOutput(&buf)
	defer log.SetOutput(os.Stderr)

	w := NewWorld(50)
	w.Add(newProbe(mgl64.Vec3{}, 1))
	hud := &LogHUD{Interval: 1, Prefix: "battle: "}
	for i := 0; i < 25; i++ {
		hud.Render(HUDView{World: w, DT: 0.1})
	}
	lines := strings.Count(buf.String(), "battle: entities=1")
	if lines != 2 {
		t.Errorf("expected 2 status lines, got %d: %q", lines, buf.String())
	}
}
