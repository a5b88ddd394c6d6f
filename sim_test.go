package main

import (
	"errors"
	"reflect"
	"testing"
)

func kindCounts(snap BattleSnapshot) map[string]int {
	counts := map[string]int{}
	for _, e := range snap.Entities {
		counts[e.Kind]++
	}
	return counts
}

func TestNewSim(t *testing.T) {
	cfg := DefaultConfig()
	s := NewSim(cfg, 1)
	defer s.Close()

	if len(s.EnemyFleet) != 2 || len(s.AllyFleet) != 2 {
		t.Fatalf("expected 2 battleships per fleet, got %d and %d", len(s.EnemyFleet), len(s.AllyFleet))
	}
	if s.Player.Pos != s.AllyFleet[0].Pos.Add(playerRespawnOffset) {
		t.Errorf("expected the pilot above the flagship, got %v", s.Player.Pos)
	}

	snap := s.Snapshot()
	counts := kindCounts(snap)
	if counts["player"] != 1 || counts["battleship"] != 4 || counts["asteroid"] != cfg.Obstacles.Count {
		t.Errorf("unexpected entity mix %v", counts)
	}
	if snap.Lives != cfg.Gameplay.Lives || snap.Result != "" {
		t.Errorf("expected %d lives and no result, got %d and %q", cfg.Gameplay.Lives, snap.Lives, snap.Result)
	}
	if snap.Pilot.ID != s.Player.ID() || snap.Pilot.Weapon != "laser" || snap.Pilot.HP != 100 {
		t.Errorf("unexpected pilot state %+v", snap.Pilot)
	}
	for _, e := range snap.Entities {
		if e.Kind == "battleship" && (e.Team == "" || e.MaxHP == 0 || e.Radius == 0) {
			t.Errorf("expected team, health and collider on battleship %d, got %+v", e.ID, e)
		}
	}
}

func TestSimDeterministic(t *testing.T) {
	in := InputSnapshot{Move: MoveAxes{Forward: 1}, Fire: true, Mouse: MouseDelta{X: 3}}
	run := func(seed int64) BattleSnapshot {
		s := NewSim(DefaultConfig(), seed)
		defer s.Close()
		for i := 0; i < 600; i++ {
			s.Step(in)
		}
		return s.Snapshot()
	}

	a, b := run(42), run(42)
	if !reflect.DeepEqual(a, b) {
		t.Error("expected equal seeds and inputs to replay identically")
	}
	if a.Tick != 600 {
		t.Errorf("expected tick 600, got %d", a.Tick)
	}
	if reflect.DeepEqual(a, run(43)) {
		t.Error("expected a different seed to change the battle")
	}
}

func TestSimFactory(t *testing.T) {
	s := NewSim(DefaultConfig(), 5)
	defer s.Close()

	e, err := s.Manager.Spawn("enemy", SpawnParams{"type": "nonexistent"})
	if err != nil {
		t.Fatalf("expected unknown enemy types to fall back, got %v", err)
	}
	if f := e.(*Fighter); f.Kind != "grunt" || f.Team() != TeamEnemy {
		t.Errorf("expected an enemy grunt, got %s %s", f.Team(), f.Kind)
	}

	e, err = s.Manager.Spawn("enemy", SpawnParams{"type": "ace"})
	if err != nil || e.(*Fighter).Kind != "ace" {
		t.Errorf("expected an ace, got %v", err)
	}

	if _, err := s.Manager.Spawn("ally", SpawnParams{"type": "nonexistent"}); !errors.Is(err, ErrUnknownEntityType) {
		t.Errorf("expected ErrUnknownEntityType for an unknown ally, got %v", err)
	}
	if _, err := s.Manager.Spawn("mothership", nil); !errors.Is(err, ErrUnknownEntityType) {
		t.Errorf("expected ErrUnknownEntityType for an unknown kind, got %v", err)
	}
}

func TestSimBattleCanBeWon(t *testing.T) {
	s := NewSim(DefaultConfig(), 9)
	defer s.Close()
	for _, ship := range s.EnemyFleet {
		ship.Damage(1e6, nil)
	}
	s.Step(InputSnapshot{})
	snap := s.Snapshot()
	if snap.Result != ResultVictory {
		t.Errorf("expected victory once the enemy fleet is gone, got %q", snap.Result)
	}
	if counts := kindCounts(snap); counts["battleship"] != 2 {
		t.Errorf("expected destroyed battleships hidden from the snapshot, got %d", counts["battleship"])
	}
}

func TestSimClose(t *testing.T) {
	s := NewSim(DefaultConfig(), 1)
	s.Close()
	if n := s.Events.ListenerCount(TopicEnemyKilled); n != 0 {
		t.Errorf("expected no listeners after Close, got %d", n)
	}
}
