package main

import (
	"log"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

type SpawnConfig struct {
	EnemyInterval  float64 `json:"enemyInterval"`
	AllyInterval   float64 `json:"allyInterval"`
	DecoyInterval  float64 `json:"decoyInterval"`
	MaxEnemyActive int     `json:"maxEnemyActive"`
	MaxAllyActive  int     `json:"maxAllyActive"`
	MaxDecoyActive int     `json:"maxDecoyActive"`
}

func DefaultSpawnConfig() SpawnConfig {
	return SpawnConfig{
		EnemyInterval:  8,
		AllyInterval:   10,
		DecoyInterval:  12,
		MaxEnemyActive: 10,
		MaxAllyActive:  6,
		MaxDecoyActive: 4,
	}
}

type hangar struct {
	enemy, decoy, ally float64
}

// SpawnDirector launches fighters and decoys from living battleships on timers,
// up to the per-kind active caps.
type SpawnDirector struct {
	Config SpawnConfig

	manager    *EntityManager
	rng        *rand.Rand
	state      *GameState
	enemyFleet []*Battleship
	allyFleet  []*Battleship
	hangars    map[*Battleship]*hangar
}

func NewSpawnDirector(cfg SpawnConfig, manager *EntityManager, rng *rand.Rand, state *GameState, enemyFleet, allyFleet []*Battleship) *SpawnDirector {
	d := &SpawnDirector{
		Config:     cfg,
		manager:    manager,
		rng:        rng,
		state:      state,
		enemyFleet: enemyFleet,
		allyFleet:  allyFleet,
		hangars:    make(map[*Battleship]*hangar),
	}
	for _, ship := range append(append([]*Battleship{}, enemyFleet...), allyFleet...) {
		d.hangars[ship] = &hangar{
			enemy: randomInRange(rng, 1.5, cfg.EnemyInterval),
			decoy: randomInRange(rng, 2.5, cfg.DecoyInterval),
			ally:  randomInRange(rng, 1.5, cfg.AllyInterval),
		}
	}
	return d
}

func (d *SpawnDirector) jitter(x, y, z float64) mgl64.Vec3 {
	return mgl64.Vec3{
		randomInRange(d.rng, -x, x),
		randomInRange(d.rng, -y, y),
		randomInRange(d.rng, -z, z),
	}
}

// ChooseEnemyType picks grunt or ace, with aces more likely late in the battle
func (d *SpawnDirector) ChooseEnemyType() string {
	t := d.state.Elapsed
	limit := d.state.Config.TimeLimit
	if t > limit*0.6 && d.rng.Float64() < 0.4 {
		return "ace"
	}
	if t > limit*0.3 && d.rng.Float64() < 0.2 {
		return "ace"
	}
	return "grunt"
}

// Active counts living fighters per team and decoys
func (d *SpawnDirector) Active(w *World) (enemies, allies, decoys int) {
	for _, e := range w.Query() {
		if !isAlive(e) {
			continue
		}
		switch v := e.(type) {
		case *Fighter:
			if v.Team() == TeamEnemy {
				enemies++
			} else {
				allies++
			}
		case *Decoy:
			decoys++
		}
	}
	return
}

func (d *SpawnDirector) firstAliveAllyShip() *Battleship {
	for _, s := range d.allyFleet {
		if s.Alive() {
			return s
		}
	}
	if len(d.allyFleet) > 0 {
		return d.allyFleet[0]
	}
	return nil
}

func (d *SpawnDirector) spawn(kind string, params SpawnParams) Entity {
	e, err := d.manager.Spawn(kind, params)
	if err != nil {
		log.Printf("spawn: %v", err)
		return nil
	}
	return e
}

func (d *SpawnDirector) AfterUpdate(ctx StepContext) {
	if d.state != nil && d.state.Result != "" {
		return
	}
	dt := ctx.DT
	enemies, allies, decoys := d.Active(ctx.World)
	c := d.Config

	for _, ship := range d.enemyFleet {
		h := d.hangars[ship]
		if h == nil || !ship.Alive() {
			continue
		}
		forward := ship.Forward()
		h.enemy -= dt
		if h.enemy <= 0 && enemies < c.MaxEnemyActive {
			pos := ship.LaunchPoint().Add(forward.Mul(18)).Add(d.jitter(6, 4, 6))
			e := d.spawn("enemy", SpawnParams{"position": pos, "type": d.ChooseEnemyType()})
			if f, ok := e.(*Fighter); ok {
				if target := d.firstAliveAllyShip(); target != nil {
					f.Face(target.Pos)
				}
			}
			h.enemy = c.EnemyInterval
		}
		h.decoy -= dt
		if h.decoy <= 0 && decoys < c.MaxDecoyActive {
			pos := ship.LaunchPoint().Add(forward.Mul(16)).Add(d.jitter(8, 6, 6))
			d.spawn("decoy", SpawnParams{"position": pos})
			h.decoy = c.DecoyInterval
		}
	}

	for _, ship := range d.allyFleet {
		h := d.hangars[ship]
		if h == nil || !ship.Alive() {
			continue
		}
		h.ally -= dt
		if h.ally <= 0 && allies < c.MaxAllyActive {
			pos := ship.LaunchPoint().Add(d.jitter(6, 4, 8))
			d.spawn("ally", SpawnParams{"position": pos, "type": "wing"})
			h.ally = c.AllyInterval
		}
	}
}
