package main

import (
	"fmt"
	"math/rand"

	"github.com/go-gl/mathgl/mgl64"
)

// Sim is one battle: the world, its systems and the rules, driven by a seeded RNG.
// It is not safe for concurrent use; Game serializes access.
type Sim struct {
	Config Config
	Seed   int64

	World      *World
	Events     *EventBus
	Manager    *EntityManager
	Player     *Player
	Targeting  *Targeting
	State      *GameState
	Spawner    *SpawnDirector
	Collision  *CollisionSystem
	EnemyFleet []*Battleship
	AllyFleet  []*Battleship

	rng  *rand.Rand
	loop *Loop
}

func vecParam(params SpawnParams, key string) mgl64.Vec3 {
	switch v := params[key].(type) {
	case mgl64.Vec3:
		return v
	case [3]float64:
		return mgl64.Vec3(v)
	}
	return mgl64.Vec3{}
}

func stringParam(params SpawnParams, key, fallback string) string {
	if s, ok := params[key].(string); ok && s != "" {
		return s
	}
	return fallback
}

func floatParam(params SpawnParams, key string, fallback float64) float64 {
	if f, ok := params[key].(float64); ok {
		return f
	}
	return fallback
}

// NewSim assembles a battle from cfg. Equal seeds and inputs replay identically.
func NewSim(cfg Config, seed int64) *Sim {
	s := &Sim{
		Config: cfg,
		Seed:   seed,
		World:  NewWorld(cfg.Spatial.CellSize),
		Events: NewEventBus(),
		rng:    rand.New(rand.NewSource(seed)),
	}
	s.Manager = NewEntityManager(s.World, FactoryFunc(s.create))

	s.Targeting = NewTargeting(nil, cfg.Targeting)
	s.Player = NewPlayer(cfg.Player, s.Manager, s.Events, s.Targeting)
	s.Targeting.SetOwner(s.Player)

	for _, pos := range cfg.Battleships.EnemyPositions {
		ship := s.Manager.MustSpawn("battleship", SpawnParams{"position": pos, "team": string(TeamEnemy)}).(*Battleship)
		s.EnemyFleet = append(s.EnemyFleet, ship)
	}
	for _, pos := range cfg.Battleships.AllyPositions {
		ship := s.Manager.MustSpawn("battleship", SpawnParams{"position": pos, "team": string(TeamAlly)}).(*Battleship)
		s.AllyFleet = append(s.AllyFleet, ship)
	}
	player := s.Player
	for _, ship := range s.EnemyFleet {
		ship.SetTargetResolver(TargetFunc(func(Positioned) Entity { return player }))
	}
	for _, ship := range s.AllyFleet {
		ship.SetTargetResolver(&NearestSelector{World: s.World, Opponent: TeamEnemy})
	}

	s.Player.Pos = s.AllyFleet[0].Pos.Add(playerRespawnOffset)
	s.World.Add(s.Player)

	for _, params := range ObstacleField(cfg.Obstacles, s.rng) {
		s.Manager.MustSpawn("asteroid", params)
	}

	s.State = NewGameState(cfg.Gameplay, s.Manager, s.Events, s.Player, s.EnemyFleet, s.AllyFleet)
	s.Spawner = NewSpawnDirector(cfg.Battleships.Spawn, s.Manager, s.rng, s.State, s.EnemyFleet, s.AllyFleet)
	s.Collision = NewCollisionSystem(s.rng)
	s.Collision.Restitution = cfg.Collision.Restitution
	s.Collision.Slop = cfg.Collision.Slop

	s.loop = NewLoop(s.World, nil,
		&PlayerInputSystem{Player: s.Player, State: s.State},
		s.Player.Switch,
		s.Targeting,
		s.Collision,
		s.Spawner,
		s.State,
	)
	s.loop.FixedStep = cfg.Loop.FixedStep
	s.loop.MaxFrame = cfg.Loop.MaxFrameDelta
	s.loop.SetHUD(nil, s.State)
	return s
}

// create is the entity factory behind Manager
func (s *Sim) create(kind string, params SpawnParams) (Entity, error) {
	pos := vecParam(params, "position")
	switch kind {
	case "decoy":
		return NewDecoy(pos, s.Config.Decoy.RespawnDelay, s.Events), nil
	case "enemy":
		name := stringParam(params, "type", "grunt")
		ft, ok := s.Config.Enemies[name]
		if !ok {
			ft, ok = s.Config.Enemies["grunt"]
		}
		if !ok {
			return nil, fmt.Errorf("enemy type %q: %w", name, ErrUnknownEntityType)
		}
		selector := NewTieredSelector(s.World, TeamAlly, ft.Profile)
		return NewFighter(ft, TeamEnemy, pos, s.World, s.Events, s.rng, s.Player, selector), nil
	case "ally":
		name := stringParam(params, "type", "wing")
		ft, ok := s.Config.Allies[name]
		if !ok {
			return nil, fmt.Errorf("ally type %q: %w", name, ErrUnknownEntityType)
		}
		selector := NewTieredSelector(s.World, TeamEnemy, ft.Profile)
		return NewFighter(ft, TeamAlly, pos, s.World, s.Events, s.rng, nil, selector), nil
	case "battleship":
		team := Team(stringParam(params, "team", string(TeamEnemy)))
		return NewBattleship(s.Config.Battleships, team, pos, s.World, s.Events, s.rng), nil
	case "asteroid":
		return NewAsteroid(pos, floatParam(params, "radius", 10), s.rng), nil
	}
	return nil, nil
}

// Loop returns the frame accumulator driving this sim
func (s *Sim) Loop() *Loop {
	return s.loop
}

// Step advances exactly one fixed step
func (s *Sim) Step(in InputSnapshot) {
	s.loop.Step(in)
}

// Close detaches the rule handlers from the event bus
func (s *Sim) Close() {
	s.State.Close()
}

func entityKind(e Entity) string {
	switch v := e.(type) {
	case *Player:
		return "player"
	case *Fighter:
		return v.Kind
	case *Battleship:
		return "battleship"
	case *Decoy:
		return "decoy"
	case *Asteroid:
		return "asteroid"
	case *Rocket:
		return "rocket"
	case *FunnelDrone:
		return "drone"
	}
	return "unknown"
}

// Snapshot captures what a client needs to draw the current step
func (s *Sim) Snapshot() BattleSnapshot {
	st := s.State
	p := s.Player
	snap := BattleSnapshot{
		Tick:       s.loop.Steps(),
		Time:       st.Elapsed,
		Score:      st.Score,
		Kills:      st.Kills,
		Lives:      st.Lives,
		Combo:      st.Combo,
		AllyDeaths: st.AllyDeaths,
		Respawning: st.Respawning,
		Result:     st.Result,
		Pilot: PilotState{
			ID:        p.ID(),
			HP:        p.HP,
			Shield:    p.Shield,
			BoostFuel: p.BoostFuel(),
			Weapon:    "laser",
			Ammo:      p.Bazooka.Ammo(),
			Reloading: p.Bazooka.Reloading(),
			Funnel:    p.Funnel.State().String(),
			Stunned:   p.Stunned(),
		},
	}
	if p.Switch.Active() == Weapon(p.Bazooka) {
		snap.Pilot.Weapon = "bazooka"
	}
	if t := s.Targeting.CurrentTarget(); t != nil {
		snap.Pilot.Lock = t.ID()
	}
	for _, e := range s.World.Query() {
		pos, ok := e.(Positioned)
		if !ok || !isVisible(e) {
			continue
		}
		q := pos.Orientation()
		es := EntityState{
			ID:   e.ID(),
			Kind: entityKind(e),
			Team: string(teamOf(e)),
			Pos:  [3]float64(pos.Position()),
			Rot:  [4]float64{q.W, q.V[0], q.V[1], q.V[2]},
		}
		if d, ok := e.(Damageable); ok {
			h := d.Vitals()
			es.HP, es.MaxHP, es.Shield = h.HP, h.MaxHP, h.Shield
		}
		if r, ok := colliderOf(e); ok {
			es.Radius = r
		}
		snap.Entities = append(snap.Entities, es)
	}
	return snap
}
