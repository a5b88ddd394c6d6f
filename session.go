package main

import (
	"log"
	"sort"
	"sync"
	"time"
)

const maxSessions = 100

// Session is one battle that a pilot flies and others may watch
type Session struct {
	ID        string
	Name      string
	Game      *Game
	CreatedAt time.Time

	unbind func()
}

// SessionManager handles creation and lookup of sessions
type SessionManager struct {
	mu       sync.RWMutex
	sessions map[string]*Session

	cfg       Config
	db        *DB
	analytics *Analytics

	// DefaultSeed replaces a zero seed when set, for reproducible servers
	DefaultSeed int64
	// StatusInterval logs a status line per battle every so many seconds; 0 is quiet
	StatusInterval float64
}

func NewSessionManager(cfg Config, db *DB, analytics *Analytics) *SessionManager {
	return &SessionManager{
		sessions:  make(map[string]*Session),
		cfg:       cfg,
		db:        db,
		analytics: analytics,
	}
}

// CreateSession starts a new battle. A zero seed picks one from the clock. It
// returns nil when the session limit is reached.
func (sm *SessionManager) CreateSession(name string, seed int64) *Session {
	sm.mu.Lock()
	defer sm.mu.Unlock()

	if len(sm.sessions) >= maxSessions {
		return nil
	}
	if seed == 0 {
		seed = sm.DefaultSeed
	}
	if seed == 0 {
		seed = time.Now().UnixNano()
	}

	id := GenerateUUID()
	game := NewGame(id, sm.cfg, seed)
	if sm.StatusInterval > 0 {
		game.sim.Loop().SetHUD(&LogHUD{Interval: sm.StatusInterval, Prefix: "session " + id[:8] + ": "}, game.sim.State)
	}
	sess := &Session{ID: id, Name: name, Game: game, CreatedAt: time.Now()}
	game.OnResult(sm.persist)
	if sm.analytics != nil {
		sess.unbind = sm.analytics.BindBattle(game.sim.Events, id, game.PilotAccount)
		sm.analytics.Track(EvtSessionStart, 0, id, "")
	}
	sm.sessions[id] = sess
	go game.Run()
	return sess
}

func (sm *SessionManager) persist(rec BattleRecord) Progress {
	if sm.db == nil {
		return Progress{}
	}
	xp, level, err := sm.db.RecordBattle(rec)
	if err != nil {
		log.Printf("session %s: record battle: %v", rec.SessionID, err)
		return Progress{}
	}
	return Progress{XP: xp, Level: level, Medals: CheckMedals(sm.db, rec)}
}

func (sm *SessionManager) GetSession(id string) *Session {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return sm.sessions[id]
}

// RemoveViewer detaches a connection and closes the session once nobody is left
func (sm *SessionManager) RemoveViewer(sessionID, key string) {
	sess := sm.GetSession(sessionID)
	if sess == nil {
		return
	}
	sess.Game.RemoveViewer(key)
	if sess.Game.ViewerCount() > 0 {
		return
	}
	sm.mu.Lock()
	if sm.sessions[sessionID] != sess {
		sm.mu.Unlock()
		return
	}
	delete(sm.sessions, sessionID)
	sm.mu.Unlock()

	sess.Game.Stop()
	if sess.unbind != nil {
		sess.unbind()
	}
	if sm.analytics != nil {
		sm.analytics.Track(EvtSessionEnd, sess.Game.PilotAccount(), sessionID, "")
	}
}

// Count returns the number of live sessions
func (sm *SessionManager) Count() int {
	sm.mu.RLock()
	defer sm.mu.RUnlock()
	return len(sm.sessions)
}

// ListSessions returns live sessions, oldest first
func (sm *SessionManager) ListSessions() []SessionInfo {
	sm.mu.RLock()
	list := make([]*Session, 0, len(sm.sessions))
	for _, sess := range sm.sessions {
		list = append(list, sess)
	}
	sm.mu.RUnlock()

	sort.Slice(list, func(i, j int) bool { return list[i].CreatedAt.Before(list[j].CreatedAt) })
	out := make([]SessionInfo, 0, len(list))
	for _, sess := range list {
		out = append(out, SessionInfo{
			ID:         sess.ID,
			Name:       sess.Name,
			HasPilot:   sess.Game.HasPilot(),
			Spectators: sess.Game.SpectatorCount(),
			Result:     sess.Game.Result(),
		})
	}
	return out
}

// StopAll ends every battle, used on shutdown
func (sm *SessionManager) StopAll() {
	sm.mu.Lock()
	sessions := sm.sessions
	sm.sessions = make(map[string]*Session)
	sm.mu.Unlock()
	for _, sess := range sessions {
		sess.Game.Stop()
		if sess.unbind != nil {
			sess.unbind()
		}
	}
}
