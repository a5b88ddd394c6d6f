package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type fixedTarget struct {
	e Entity
}

func (f fixedTarget) CurrentTarget() Entity { return f.e }

func funnelFixture(targetPos mgl64.Vec3) (*World, *probe, *Funnel) {
	w := NewWorld(50)
	owner := newProbe(mgl64.Vec3{}, 1)
	owner.team = TeamAlly
	w.Add(owner)
	target := newProbe(targetPos, 2)
	target.team = TeamEnemy
	w.Add(target)

	cfg := DefaultFunnelConfig()
	cfg.Count = 5
	f := NewFunnel(owner, w, fixedTarget{target}, cfg)
	return w, target, f
}

func stepFunnel(w *World, f *Funnel, dt float64) {
	f.Update(dt)
	w.Update(dt)
}

// deployUntilAttacking steps until the drones arrive at the target
func deployUntilAttacking(t *testing.T, w *World, f *Funnel) {
	t.Helper()
	f.TriggerStart()
	if f.State() != FunnelDeploying {
		t.Fatalf("expected deploying after trigger, got %s", f.State())
	}
	for i := 0; i < 600 && f.State() == FunnelDeploying; i++ {
		stepFunnel(w, f, 1.0/60)
	}
	if f.State() != FunnelAttacking {
		t.Fatalf("expected attacking after deployment, got %s", f.State())
	}
}

func TestFunnelCreatesDrones(t *testing.T) {
	w, _, f := funnelFixture(mgl64.Vec3{0, 0, 50})
	if len(f.Drones()) != 5 {
		t.Fatalf("expected 5 drones, got %d", len(f.Drones()))
	}
	for _, d := range f.Drones() {
		if !w.Contains(d) || !d.Docked() {
			t.Error("expected every drone docked in the world")
		}
	}
}

func TestFunnelAttackCycles(t *testing.T) {
	w, target, f := funnelFixture(mgl64.Vec3{0, 0, 50})
	deployUntilAttacking(t, w, f)

	for i := 0; i < 81; i++ { // 1.35s
		stepFunnel(w, f, 1.0/60)
	}
	if f.DamageTicks() != 3 {
		t.Errorf("expected exactly 3 damage ticks, got %d", f.DamageTicks())
	}
	if target.HP != 100-3*f.Config.Damage {
		t.Errorf("expected HP %v, got %v", 100-3*f.Config.Damage, target.HP)
	}
	if f.State() == FunnelAttacking {
		t.Error("expected the funnel to leave attacking after its cycles")
	}
	if f.Cooldown() <= 0 {
		t.Error("expected a cooldown after the attack")
	}

	for i := 0; i < 120; i++ {
		stepFunnel(w, f, 1.0/60)
	}
	if f.DamageTicks() != 3 {
		t.Errorf("expected no further ticks, got %d", f.DamageTicks())
	}
	if f.State() != FunnelIdle {
		t.Errorf("expected the drones to dock, got %s", f.State())
	}

	f.TriggerStart()
	if f.State() != FunnelIdle {
		t.Error("trigger should be ignored during cooldown")
	}
}

func TestFunnelDeadTargetForcesReturn(t *testing.T) {
	w, target, f := funnelFixture(mgl64.Vec3{0, 0, 50})
	deployUntilAttacking(t, w, f)

	target.HP = 0
	stepFunnel(w, f, 1.0/60)
	if f.State() != FunnelReturning {
		t.Fatalf("expected returning, got %s", f.State())
	}
	if f.DamageTicks() != 0 {
		t.Errorf("expected no damage to a dead target, got %d ticks", f.DamageTicks())
	}
	for i := 0; i < 120 && f.State() != FunnelIdle; i++ {
		stepFunnel(w, f, 1.0/60)
	}
	if f.State() != FunnelIdle {
		t.Errorf("expected idle after docking, got %s", f.State())
	}
}

func TestFunnelIgnoresOutOfRangeTarget(t *testing.T) {
	_, _, f := funnelFixture(mgl64.Vec3{0, 0, 1000})
	f.TriggerStart()
	if f.State() != FunnelIdle {
		t.Errorf("expected idle for a target beyond max range, got %s", f.State())
	}
}

func TestFunnelResetDocksDrones(t *testing.T) {
	w, _, f := funnelFixture(mgl64.Vec3{0, 0, 50})
	deployUntilAttacking(t, w, f)
	f.Reset()
	if f.State() != FunnelIdle {
		t.Errorf("expected idle after reset, got %s", f.State())
	}
	for _, d := range f.Drones() {
		if !d.Docked() {
			t.Error("expected every drone docked after reset")
		}
	}
}
