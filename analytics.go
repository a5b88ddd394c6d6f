package main

import (
	"database/sql"
	"encoding/json"
	"log"
	"sync"
	"time"
)

// Analytics event types
const (
	EvtSessionStart   = "session_start"
	EvtSessionEnd     = "session_end"
	EvtEnemyKilled    = "enemy_killed"
	EvtAllyKilled     = "ally_killed"
	EvtPilotKilled    = "pilot_killed"
	EvtBattleshipLost = "battleship_destroyed"
	EvtBattleResult   = "battle_result"
)

const (
	analyticsBatchSize   = 50
	analyticsFlushPeriod = 5 * time.Second
)

// AnalyticsEvent is a single trackable event
type AnalyticsEvent struct {
	Type      string
	PilotID   int64
	SessionID string
	Data      string // JSON metadata (optional)
	Timestamp time.Time
}

// Analytics records battle telemetry through a batched background writer
type Analytics struct {
	db     *DB
	events chan AnalyticsEvent
	stop   chan struct{}
	wg     sync.WaitGroup
	once   sync.Once

	mu      sync.Mutex
	dropped int
}

// NewAnalytics starts the background writer. A nil db discards everything.
func NewAnalytics(db *DB) *Analytics {
	a := &Analytics{
		db:     db,
		events: make(chan AnalyticsEvent, 1024),
		stop:   make(chan struct{}),
	}
	a.wg.Add(1)
	go a.writer()
	return a
}

// Track enqueues an event without blocking the simulation
func (a *Analytics) Track(evtType string, pilotID int64, sessionID string, data string) {
	select {
	case a.events <- AnalyticsEvent{
		Type:      evtType,
		PilotID:   pilotID,
		SessionID: sessionID,
		Data:      data,
		Timestamp: time.Now().UTC(),
	}:
	default:
		a.mu.Lock()
		a.dropped++
		a.mu.Unlock()
	}
}

// Dropped reports how many events were discarded on a full queue
func (a *Analytics) Dropped() int {
	a.mu.Lock()
	defer a.mu.Unlock()
	return a.dropped
}

func entityMeta(e Entity) string {
	if e == nil {
		return ""
	}
	meta := map[string]any{"id": e.ID(), "kind": entityKind(e)}
	if p, ok := e.(Positioned); ok {
		pos := p.Position()
		meta["pos"] = [3]float64{pos[0], pos[1], pos[2]}
	}
	b, err := json.Marshal(meta)
	if err != nil {
		return ""
	}
	return string(b)
}

// BindBattle forwards a battle's bus topics as telemetry. The returned func
// unsubscribes.
func (a *Analytics) BindBattle(events *EventBus, sessionID string, pilotID func() int64) func() {
	forward := map[string]string{
		TopicEnemyKilled:         EvtEnemyKilled,
		TopicAllyKilled:          EvtAllyKilled,
		TopicPlayerKilled:        EvtPilotKilled,
		TopicBattleshipDestroyed: EvtBattleshipLost,
	}
	var offs []func()
	for _, topic := range []string{TopicEnemyKilled, TopicAllyKilled, TopicPlayerKilled, TopicBattleshipDestroyed} {
		evt := forward[topic]
		offs = append(offs, events.On(topic, func(ev Event) {
			a.Track(evt, pilotID(), sessionID, entityMeta(ev.Entity))
		}))
	}
	offs = append(offs, events.On(TopicBattleResult, func(ev Event) {
		data, _ := json.Marshal(map[string]string{"outcome": ev.Result})
		a.Track(EvtBattleResult, pilotID(), sessionID, string(data))
	}))
	return func() {
		for _, off := range offs {
			off()
		}
	}
}

// Stop flushes what is queued and ends the writer
func (a *Analytics) Stop() {
	a.once.Do(func() { close(a.stop) })
	a.wg.Wait()
}

func (a *Analytics) writer() {
	defer a.wg.Done()

	batch := make([]AnalyticsEvent, 0, 64)
	ticker := time.NewTicker(analyticsFlushPeriod)
	defer ticker.Stop()

	for {
		select {
		case evt := <-a.events:
			batch = append(batch, evt)
			if len(batch) >= analyticsBatchSize {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-ticker.C:
			if len(batch) > 0 {
				a.flush(batch)
				batch = batch[:0]
			}
		case <-a.stop:
			for {
				select {
				case evt := <-a.events:
					batch = append(batch, evt)
				default:
					a.flush(batch)
					return
				}
			}
		}
	}
}

func (a *Analytics) flush(events []AnalyticsEvent) {
	if a.db == nil || len(events) == 0 {
		return
	}
	tx, err := a.db.conn.Begin()
	if err != nil {
		log.Printf("analytics: begin tx error: %v", err)
		return
	}
	defer tx.Rollback()

	stmt, err := tx.Prepare(`INSERT INTO analytics_events (event_type, pilot_id, session_id, data, created_at) VALUES (?, ?, ?, ?, ?)`)
	if err != nil {
		log.Printf("analytics: prepare error: %v", err)
		return
	}
	defer stmt.Close()

	for _, evt := range events {
		pid := sql.NullInt64{Int64: evt.PilotID, Valid: evt.PilotID > 0}
		sid := sql.NullString{String: evt.SessionID, Valid: evt.SessionID != ""}
		data := sql.NullString{String: evt.Data, Valid: evt.Data != ""}
		if _, err := stmt.Exec(evt.Type, pid, sid, data, evt.Timestamp.Format(time.RFC3339)); err != nil {
			log.Printf("analytics: insert error: %v", err)
		}
	}
	if err := tx.Commit(); err != nil {
		log.Printf("analytics: commit error: %v", err)
	}
}

// EventCounts returns counts of each event type for the last N days
func (a *Analytics) EventCounts(days int) (map[string]int, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT event_type, COUNT(*) FROM analytics_events
		WHERE created_at >= date('now', '-' || ? || ' days')
		GROUP BY event_type ORDER BY COUNT(*) DESC
	`, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var evtType string
		var count int
		if err := rows.Scan(&evtType, &count); err != nil {
			return nil, err
		}
		result[evtType] = count
	}
	return result, rows.Err()
}

// OutcomeCounts tallies battle results by outcome for the last N days
func (a *Analytics) OutcomeCounts(days int) (map[string]int, error) {
	if a.db == nil {
		return nil, nil
	}
	rows, err := a.db.conn.Query(`
		SELECT COALESCE(json_extract(data, '$.outcome'), 'unknown'), COUNT(*)
		FROM analytics_events
		WHERE event_type = ? AND json_valid(data) AND created_at >= date('now', '-' || ? || ' days')
		GROUP BY 1
	`, EvtBattleResult, days)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	result := make(map[string]int)
	for rows.Next() {
		var outcome string
		var count int
		if err := rows.Scan(&outcome, &count); err != nil {
			return nil, err
		}
		result[outcome] = count
	}
	return result, rows.Err()
}
