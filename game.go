package main

import (
	"errors"
	"log"
	"sync"
	"sync/atomic"
	"time"

	"github.com/vmihailenco/msgpack/v5"
)

const (
	TickRate       = 60 // physics ticks per second
	BroadcastRate  = 30 // state broadcasts per second
	TickDuration   = time.Second / TickRate
	BroadcastEvery = TickRate / BroadcastRate
)

const maxSpectatorsPerSession = 16

var (
	ErrPilotSeatTaken = errors.New("battle already has a pilot")
	ErrSessionFull    = errors.New("session full")
)

// Broadcaster is the outgoing side of a connection
type Broadcaster interface {
	SendJSON(msg interface{})
	SendBinary(data []byte)
}

// Progress is what a finished battle earned the pilot's account
type Progress struct {
	XP     int
	Level  int
	Medals []MedalDef
}

// ResultHook persists a finished battle
type ResultHook func(rec BattleRecord) Progress

// Game runs one battle on its own goroutine and streams it to the pilot and
// spectators.
type Game struct {
	ID string

	mu         sync.Mutex
	sim        *Sim
	input      InputBuffer
	pilotKey   string
	pilot      Broadcaster
	spectators map[string]Broadcaster
	account    atomic.Int64 // authenticated pilot, 0 for guests
	onResult   ResultHook
	sinceSend  int
	reported   bool
	closed     bool
	stop       chan struct{}
}

func NewGame(id string, cfg Config, seed int64) *Game {
	g := &Game{
		ID:         id,
		sim:        NewSim(cfg, seed),
		spectators: make(map[string]Broadcaster),
		stop:       make(chan struct{}),
	}
	g.sim.Loop().SetInput(&g.input)
	return g
}

// OnResult installs the persistence hook. It runs on the game goroutine.
func (g *Game) OnResult(h ResultHook) {
	g.mu.Lock()
	g.onResult = h
	g.mu.Unlock()
}

// Run drives the simulation from wall-clock time until Stop
func (g *Game) Run() {
	g.mu.Lock()
	closed := g.closed
	g.mu.Unlock()
	if closed {
		return
	}

	ticker := time.NewTicker(TickDuration)
	defer ticker.Stop()

	last := time.Now()
	for {
		select {
		case now := <-ticker.C:
			g.Advance(now.Sub(last).Seconds())
			last = now
		case <-g.stop:
			return
		}
	}
}

// Stop terminates the game loop
func (g *Game) Stop() {
	g.mu.Lock()
	defer g.mu.Unlock()
	if !g.closed {
		g.closed = true
		close(g.stop)
		g.sim.Close()
	}
}

// Advance feeds one frame of delta seconds to the battle, broadcasts on the
// snapshot cadence and reports the result once.
func (g *Game) Advance(delta float64) {
	g.mu.Lock()
	if g.closed {
		g.mu.Unlock()
		return
	}
	steps := g.sim.Loop().Advance(delta)
	g.sinceSend += steps
	if g.sinceSend >= BroadcastEvery {
		g.sinceSend = 0
		g.broadcastSnapshot()
	}
	var rec *BattleRecord
	if g.sim.State.Result != "" && !g.reported {
		g.reported = true
		r := g.record()
		rec = &r
	}
	hook := g.onResult
	g.mu.Unlock()

	if rec == nil {
		return
	}
	msg := ResultMsg{
		Outcome:    rec.Outcome,
		Score:      rec.Score,
		Kills:      rec.Kills,
		AllyDeaths: rec.AllyDeaths,
		Duration:   rec.Duration,
	}
	if hook != nil {
		p := hook(*rec)
		msg.XP, msg.Level, msg.Medals = p.XP, p.Level, p.Medals
	}
	log.Printf("session %s: %s score=%d kills=%d", g.ID, rec.Outcome, rec.Score, rec.Kills)
	g.broadcast(Envelope{T: MsgResult, Data: msg})
}

func (g *Game) record() BattleRecord {
	st := g.sim.State
	return BattleRecord{
		SessionID:  g.ID,
		PilotID:    g.account.Load(),
		Outcome:    st.Result,
		Score:      st.Score,
		Kills:      st.Kills,
		Deaths:     st.Config.Lives - st.Lives,
		AllyDeaths: st.AllyDeaths,
		Duration:   st.Elapsed,
		Seed:       g.sim.Seed,
	}
}

// EncodeSnapshot frames a snapshot for the wire
func EncodeSnapshot(snap BattleSnapshot) ([]byte, error) {
	body, err := msgpack.Marshal(&snap)
	if err != nil {
		return nil, err
	}
	return append([]byte{FrameSnapshot}, body...), nil
}

func (g *Game) broadcastSnapshot() {
	if g.pilot == nil && len(g.spectators) == 0 {
		return
	}
	data, err := EncodeSnapshot(g.sim.Snapshot())
	if err != nil {
		log.Printf("session %s: snapshot encode error: %v", g.ID, err)
		return
	}
	if g.pilot != nil {
		g.pilot.SendBinary(data)
	}
	for _, s := range g.spectators {
		s.SendBinary(data)
	}
}

func (g *Game) broadcast(msg Envelope) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pilot != nil {
		g.pilot.SendJSON(msg)
	}
	for _, s := range g.spectators {
		s.SendJSON(msg)
	}
}

// SetPilot seats the connection identified by key as the pilot
func (g *Game) SetPilot(key string, b Broadcaster, account int64) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if g.pilot != nil && g.pilotKey != key {
		return ErrPilotSeatTaken
	}
	g.pilotKey = key
	g.pilot = b
	g.account.Store(account)
	return nil
}

func (g *Game) AddSpectator(key string, b Broadcaster) error {
	g.mu.Lock()
	defer g.mu.Unlock()
	if len(g.spectators) >= maxSpectatorsPerSession {
		return ErrSessionFull
	}
	g.spectators[key] = b
	return nil
}

// RemoveViewer drops a pilot or spectator. A departing pilot leaves the craft idle.
func (g *Game) RemoveViewer(key string) {
	g.mu.Lock()
	defer g.mu.Unlock()
	if key == g.pilotKey {
		g.pilot = nil
		g.pilotKey = ""
		g.input.Reset()
		return
	}
	delete(g.spectators, key)
}

// HandleInput accepts control state from the pilot only
func (g *Game) HandleInput(key string, in InputSnapshot) {
	g.mu.Lock()
	isPilot := key != "" && key == g.pilotKey
	g.mu.Unlock()
	if isPilot {
		g.input.Apply(in)
	}
}

func (g *Game) HasPilot() bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.pilot != nil
}

func (g *Game) ViewerCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	n := len(g.spectators)
	if g.pilot != nil {
		n++
	}
	return n
}

func (g *Game) SpectatorCount() int {
	g.mu.Lock()
	defer g.mu.Unlock()
	return len(g.spectators)
}

func (g *Game) Result() string {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.State.Result
}

func (g *Game) Seed() int64 {
	return g.sim.Seed
}

// PilotEntityID is the world id of the player craft
func (g *Game) PilotEntityID() int {
	return g.sim.Player.ID()
}

// PilotAccount returns the authenticated pilot id, safe from any goroutine
func (g *Game) PilotAccount() int64 {
	return g.account.Load()
}

// Snapshot returns the current state under the game lock
func (g *Game) Snapshot() BattleSnapshot {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.sim.Snapshot()
}
