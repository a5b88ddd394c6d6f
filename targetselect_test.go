package main

import (
	"testing"

	"github.com/go-gl/mathgl/mgl64"
)

type capitalProbe struct {
	probe
}

func (c *capitalProbe) IsCapitalShip() bool { return true }

func enemyAt(w *World, z float64) *probe {
	p := newProbe(mgl64.Vec3{0, 0, z}, 2)
	p.team = TeamEnemy
	w.Add(p)
	return p
}

func TestTieredSelectorOrder(t *testing.T) {
	w := NewWorld(50)
	owner := newProbe(mgl64.Vec3{}, 2)
	owner.team = TeamAlly
	w.Add(owner)

	capital := &capitalProbe{probe: *newProbe(mgl64.Vec3{0, 0, 500}, 20)}
	capital.team = TeamEnemy
	w.Add(capital)
	engaged := enemyAt(w, 300)
	threat := enemyAt(w, 100)
	far := enemyAt(w, 450)

	sel := NewTieredSelector(w, TeamEnemy, EnemyProfile())

	if got := sel.Select(owner); got != threat {
		t.Errorf("expected the emergency threat, got %v", got)
	}

	threat.HP = 0
	if got := sel.Select(owner); got != capital {
		t.Errorf("expected the capital ship, got %v", got)
	}

	w.Remove(capital)
	if got := sel.Select(owner); got != engaged {
		t.Errorf("expected the opponent within engage range, got %v", got)
	}

	w.Remove(engaged)
	if got := sel.Select(owner); got != far {
		t.Errorf("expected the nearest opponent, got %v", got)
	}
}

func TestTieredSelectorIgnoresOwnTeam(t *testing.T) {
	w := NewWorld(50)
	owner := newProbe(mgl64.Vec3{}, 2)
	owner.team = TeamEnemy
	w.Add(owner)
	enemyAt(w, 50)

	sel := NewTieredSelector(w, TeamAlly, EnemyProfile())
	if got := sel.Select(owner); got != nil {
		t.Errorf("expected no target, got %v", got)
	}
}

func TestNearestSelectorSkipsHidden(t *testing.T) {
	w := NewWorld(50)
	owner := newProbe(mgl64.Vec3{}, 2)
	w.Add(owner)
	near := enemyAt(w, 10)
	farther := enemyAt(w, 40)
	near.Hidden = true

	sel := &NearestSelector{World: w, Opponent: TeamEnemy}
	if got := sel.Select(owner); got != farther {
		t.Error("expected the nearest visible enemy")
	}
}
