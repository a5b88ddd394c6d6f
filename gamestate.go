package main

import (
	"github.com/go-gl/mathgl/mgl64"
)

// Battle outcomes
const (
	ResultVictory = "VICTORY"
	ResultDefeat  = "DEFEAT"
)

const (
	arenaKillDamage = 9999.0
	killStunRadius  = 55.0
	killStunTime    = 0.9
)

var playerRespawnOffset = mgl64.Vec3{0, 16, 16}

type GameplayConfig struct {
	Lives        int     `json:"lives"`
	RespawnDelay float64 `json:"respawnDelay"`
	TimeLimit    float64 `json:"timeLimit"` // seconds, 0 disables
	KillTarget   int     `json:"killTarget"`
	ComboWindow  float64 `json:"comboWindow"`
	ComboBonus   int     `json:"comboBonus"`
	ArenaRadius  float64 `json:"arenaRadius"`
}

func DefaultGameplayConfig() GameplayConfig {
	return GameplayConfig{
		Lives:        3,
		RespawnDelay: 3,
		TimeLimit:    300,
		KillTarget:   20,
		ComboWindow:  10,
		ComboBonus:   50,
		ArenaRadius:  900,
	}
}

// GameState keeps score and lives and decides the battle
type GameState struct {
	Config GameplayConfig

	Score      int
	Kills      int
	Lives      int
	Combo      int
	AllyDeaths int
	Elapsed    float64
	Respawning bool
	Result     string

	manager      *EntityManager
	events       *EventBus
	player       *Player
	enemyFleet   []*Battleship
	allyFleet    []*Battleship
	respawnTimer float64
	lastKill     float64
	announced    bool
	unsubscribe  []func()
}

func NewGameState(cfg GameplayConfig, manager *EntityManager, events *EventBus, player *Player, enemyFleet, allyFleet []*Battleship) *GameState {
	g := &GameState{
		Config:     cfg,
		Lives:      cfg.Lives,
		manager:    manager,
		events:     events,
		player:     player,
		enemyFleet: enemyFleet,
		allyFleet:  allyFleet,
		lastKill:   -cfg.ComboWindow - 1,
	}
	if events != nil {
		g.unsubscribe = append(g.unsubscribe,
			events.On(TopicEnemyKilled, g.onEnemyKilled),
			events.On(TopicAllyKilled, func(Event) { g.AllyDeaths++ }),
		)
	}
	return g
}

// Close detaches the event handlers
func (g *GameState) Close() {
	for _, off := range g.unsubscribe {
		off()
	}
	g.unsubscribe = nil
}

func (g *GameState) onEnemyKilled(ev Event) {
	if g.Result != "" {
		return
	}
	if g.Elapsed-g.lastKill <= g.Config.ComboWindow {
		g.Combo++
		g.Score += g.Config.ComboBonus
	} else {
		g.Combo = 1
	}
	g.lastKill = g.Elapsed
	g.Kills++
	if f, ok := ev.Entity.(*Fighter); ok {
		g.Score += f.Score
	}
	if isCapitalShip(ev.Entity) {
		return
	}
	victim, ok := ev.Entity.(Positioned)
	if !ok {
		return
	}
	center := victim.Position()
	for _, e := range g.manager.world.QueryNearby(center, killStunRadius) {
		if e == ev.Entity || !isAlive(e) {
			continue
		}
		s, ok := e.(Stunnable)
		if !ok {
			continue
		}
		if p, ok := e.(Positioned); ok && Distance(center, p.Position()) <= killStunRadius {
			s.ApplyStun(killStunTime)
		}
	}
}

func anyAlive(fleet []*Battleship) bool {
	for _, s := range fleet {
		if s.Alive() {
			return true
		}
	}
	return false
}

// respawnPoint is above and behind the first living ally battleship
func (g *GameState) respawnPoint() mgl64.Vec3 {
	for _, s := range g.allyFleet {
		if s.Alive() {
			return s.Pos.Add(playerRespawnOffset)
		}
	}
	if len(g.allyFleet) > 0 {
		return g.allyFleet[0].Pos.Add(playerRespawnOffset)
	}
	return playerRespawnOffset
}

// enforceArena destroys anything that left the arena sphere
func (g *GameState) enforceArena(w *World) {
	r2 := g.Config.ArenaRadius * g.Config.ArenaRadius
	if r2 <= 0 {
		return
	}
	for _, e := range w.Query() {
		p, ok := e.(Positioned)
		if !ok || p.Position().LenSqr() <= r2 {
			continue
		}
		if _, drone := e.(*FunnelDrone); drone {
			continue
		}
		if d, ok := e.(Damageable); ok {
			if d.Alive() {
				d.Damage(arenaKillDamage, nil)
			}
			continue
		}
		g.manager.Destroy(e)
	}
}

func (g *GameState) setResult(result string) {
	if g.Result != "" {
		return
	}
	g.Result = result
	if g.player != nil {
		g.player.Invulnerable = true
	}
	if g.events != nil && !g.announced {
		g.announced = true
		g.events.Emit(Event{Topic: TopicBattleResult, Result: result})
	}
}

// sweepWrecks removes dead fighters once their kill events have run
func (g *GameState) sweepWrecks(w *World) {
	for _, e := range w.Query() {
		if f, ok := e.(*Fighter); ok && f.HP <= 0 {
			g.manager.Destroy(f)
		}
	}
}

func (g *GameState) AfterUpdate(ctx StepContext) {
	g.sweepWrecks(ctx.World)
	if g.Result != "" {
		return
	}
	g.Elapsed += ctx.DT
	g.enforceArena(ctx.World)

	p := g.player
	if p != nil {
		switch {
		case g.Respawning:
			g.respawnTimer -= ctx.DT
			if g.respawnTimer <= 0 {
				g.Respawning = false
				p.Respawn(g.respawnPoint())
				p.Invulnerable = false
				ctx.World.SyncSpatial(p)
			}
		case p.HP <= 0:
			g.Lives--
			p.Hidden = true
			if g.Lives <= 0 {
				g.Lives = 0
				g.setResult(ResultDefeat)
				return
			}
			g.Respawning = true
			g.respawnTimer = g.Config.RespawnDelay
			p.Invulnerable = true
		}
	}

	if len(g.allyFleet) > 0 && !anyAlive(g.allyFleet) {
		g.setResult(ResultDefeat)
		return
	}
	if len(g.enemyFleet) > 0 && !anyAlive(g.enemyFleet) {
		g.setResult(ResultVictory)
		return
	}
	if g.Config.TimeLimit > 0 && g.Elapsed >= g.Config.TimeLimit {
		if g.Kills >= g.Config.KillTarget {
			g.setResult(ResultVictory)
		} else {
			g.setResult(ResultDefeat)
		}
	}
}
