package main

import (
	"math/rand"
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

func aiFixture(targetPos mgl64.Vec3, profile AIProfile) (*AIController, *probe, *probe) {
	w := NewWorld(50)
	owner := newProbe(mgl64.Vec3{}, 2)
	target := newProbe(targetPos, 2)
	w.Add(owner)
	w.Add(target)
	c := NewAIController(owner, profile, w, rand.New(rand.NewSource(1)), target, nil)
	return c, owner, target
}

func TestAIIdleWithoutTarget(t *testing.T) {
	w := NewWorld(50)
	owner := newProbe(mgl64.Vec3{}, 2)
	w.Add(owner)
	c := NewAIController(owner, EnemyProfile(), w, rand.New(rand.NewSource(1)), nil, nil)

	intent := c.Update(1.0 / 60)
	if c.State != AIIdle {
		t.Errorf("expected idle, got %s", c.State)
	}
	if intent.Fire || !intent.Move.IsZero() || intent.HasDirection {
		t.Errorf("expected empty intent, got %+v", intent)
	}
}

func TestAIAllyPatrolsWithoutTarget(t *testing.T) {
	w := NewWorld(50)
	owner := newProbe(mgl64.Vec3{}, 2)
	w.Add(owner)
	c := NewAIController(owner, AllyProfile(), w, rand.New(rand.NewSource(1)), nil, nil)

	intent := c.Update(1.0 / 60)
	if c.State != AIPatrol {
		t.Errorf("expected patrol, got %s", c.State)
	}
	if intent.Move.Forward != AllyProfile().PatrolThrottle {
		t.Errorf("expected patrol throttle %v, got %v", AllyProfile().PatrolThrottle, intent.Move.Forward)
	}
}

func TestAIReturnsInsideBoundary(t *testing.T) {
	c, owner, _ := aiFixture(mgl64.Vec3{0, 0, 900}, EnemyProfile())
	owner.Pos = mgl64.Vec3{800, 0, 0}

	intent := c.Update(1.0 / 60)
	if intent.Move.Forward != 1 || !intent.HasDirection {
		t.Fatalf("expected full throttle home, got %+v", intent)
	}
	if !approx(intent.Direction[0], -1, 1e-9) {
		t.Errorf("expected direction toward origin, got %v", intent.Direction)
	}
}

func TestAIChaseBurst(t *testing.T) {
	c, _, _ := aiFixture(mgl64.Vec3{0, 0, 350}, EnemyProfile())

	intent := c.Update(0.1)
	if c.State != AIChase {
		t.Fatalf("expected chase, got %s", c.State)
	}
	if intent.Move.Forward != chaseThrottle {
		t.Errorf("expected chase throttle during burst, got %v", intent.Move.Forward)
	}
	if !approx(intent.Direction[2], 1, 1e-9) {
		t.Errorf("expected direction toward target, got %v", intent.Direction)
	}
}

func TestAIAttackFiresAfterBurst(t *testing.T) {
	c, _, _ := aiFixture(mgl64.Vec3{0, 0, 220}, EnemyProfile())

	intent := c.Update(0.1)
	if c.State != AIAttack {
		t.Fatalf("expected attack, got %s", c.State)
	}
	if intent.Fire {
		t.Error("should not fire while repositioning")
	}
	for i := 0; i < 12; i++ {
		intent = c.Update(0.1)
	}
	if !intent.Fire {
		t.Error("expected to fire once the burst is over with the target ahead")
	}
}

func TestAIPatrolsBeyondChaseDistance(t *testing.T) {
	c, _, _ := aiFixture(mgl64.Vec3{0, 0, 600}, EnemyProfile())
	intent := c.Update(1.0 / 60)
	if c.State != AIPatrol {
		t.Errorf("expected patrol, got %s", c.State)
	}
	if intent.Fire {
		t.Error("should not fire while patrolling")
	}
}

func TestAIStandoffHysteresis(t *testing.T) {
	p := EnemyProfile()
	c, _, target := aiFixture(mgl64.Vec3{0, 0, p.StandoffDistance}, p)

	c.Update(0.1)
	if c.State != AIAttack {
		t.Fatalf("expected attack at the standoff distance, got %s", c.State)
	}

	// inside the band the state holds
	target.Pos = mgl64.Vec3{0, 0, p.StandoffDistance + p.StandoffBand}
	c.Update(0.1)
	if c.State != AIAttack {
		t.Errorf("expected attack at the band edge, got %s", c.State)
	}

	target.Pos = mgl64.Vec3{0, 0, p.StandoffDistance + p.StandoffBand + 1}
	c.Update(0.1)
	if c.State != AIChase {
		t.Errorf("expected chase past the band, got %s", c.State)
	}

	target.Pos = mgl64.Vec3{0, 0, p.ChaseDistance + 1}
	c.Update(0.1)
	if c.State != AIPatrol {
		t.Errorf("expected patrol beyond chase distance, got %s", c.State)
	}
}

func TestAITimersResetOnStateChange(t *testing.T) {
	p := EnemyProfile()
	c, _, target := aiFixture(mgl64.Vec3{0, 0, p.StandoffDistance}, p)

	c.Update(0.1)
	c.Update(0.1)
	hold, burst := c.Timers()
	if !approx(hold, p.HoldDuration-0.1, 1e-9) || !approx(burst, p.BurstDuration-0.1, 1e-9) {
		t.Fatalf("expected timers %v/%v, got %v/%v", p.HoldDuration-0.1, p.BurstDuration-0.1, hold, burst)
	}

	target.Pos = mgl64.Vec3{0, 0, p.StandoffDistance + p.StandoffBand + 1}
	c.Update(0.1)
	hold, burst = c.Timers()
	if !approx(hold, p.HoldDuration, 1e-9) || !approx(burst, p.BurstDuration, 1e-9) {
		t.Errorf("expected timers re-armed on chase, got %v/%v", hold, burst)
	}

	target.Pos = mgl64.Vec3{0, 0, p.ChaseDistance + 1}
	c.Update(0.1)
	if hold, burst = c.Timers(); hold != 0 || burst != 0 {
		t.Errorf("expected timers cleared on patrol, got %v/%v", hold, burst)
	}
}

func TestAIDeadFixedTargetFallsBack(t *testing.T) {
	w := NewWorld(50)
	owner := newProbe(mgl64.Vec3{}, 2)
	fixed := newProbe(mgl64.Vec3{0, 0, 300}, 2)
	other := newProbe(mgl64.Vec3{0, 0, 350}, 2)
	w.Add(owner)
	w.Add(fixed)
	w.Add(other)
	fixed.HP = 0

	sel := TargetFunc(func(Positioned) Entity { return other })
	c := NewAIController(owner, EnemyProfile(), w, rand.New(rand.NewSource(1)), fixed, sel)
	c.Update(1.0 / 60)
	if c.Target() != other {
		t.Error("expected selector target when the fixed target is dead")
	}
}
