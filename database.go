package main

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"math"
	"time"

	_ "modernc.org/sqlite"
)

// DB wraps the SQLite database connection
type DB struct {
	conn *sql.DB
}

// PilotRow is an account record
type PilotRow struct {
	ID        int64
	Username  string
	PassHash  string
	CreatedAt time.Time
}

// StatsRow is the lifetime record of one pilot
type StatsRow struct {
	PilotID  int64
	Kills    int
	Deaths   int
	Wins     int
	Losses   int
	Playtime float64 // seconds
	XP       int
	Level    int
}

// BattleRecord is one finished battle
type BattleRecord struct {
	ID         int64     `json:"id"`
	SessionID  string    `json:"sid"`
	PilotID    int64     `json:"pid,omitempty"` // 0 for guests
	Outcome    string    `json:"outcome"`
	Score      int       `json:"score"`
	Kills      int       `json:"kills"`
	Deaths     int       `json:"deaths"`
	AllyDeaths int       `json:"allyDeaths"`
	Duration   float64   `json:"duration"`
	Seed       int64     `json:"seed"`
	CreatedAt  time.Time `json:"createdAt"`
}

// LeaderboardEntry represents one row in the leaderboard
type LeaderboardEntry struct {
	Rank     int    `json:"rank"`
	Username string `json:"username"`
	Level    int    `json:"level"`
	XP       int    `json:"xp"`
	Kills    int    `json:"kills"`
	Deaths   int    `json:"deaths"`
	Wins     int    `json:"wins"`
	Losses   int    `json:"losses"`
}

// OpenDB opens (or creates) the SQLite database
func OpenDB(path string) (*DB, error) {
	conn, err := sql.Open("sqlite", path)
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", path, err)
	}
	// a single writer keeps :memory: databases shared across calls
	conn.SetMaxOpenConns(1)

	for _, pragma := range []string{"PRAGMA journal_mode=WAL", "PRAGMA foreign_keys=ON"} {
		if _, err := conn.Exec(pragma); err != nil {
			conn.Close()
			return nil, fmt.Errorf("%s: %w", pragma, err)
		}
	}

	db := &DB{conn: conn}
	if err := db.migrate(); err != nil {
		conn.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.conn.Close()
}

func (db *DB) migrate() error {
	schema := `
	CREATE TABLE IF NOT EXISTS pilots (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		username TEXT NOT NULL UNIQUE,
		pass_hash TEXT NOT NULL DEFAULT '',
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS stats (
		pilot_id INTEGER PRIMARY KEY REFERENCES pilots(id),
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		wins INTEGER NOT NULL DEFAULT 0,
		losses INTEGER NOT NULL DEFAULT 0,
		playtime REAL NOT NULL DEFAULT 0,
		xp INTEGER NOT NULL DEFAULT 0,
		level INTEGER NOT NULL DEFAULT 1
	);

	CREATE TABLE IF NOT EXISTS battles (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		session_id TEXT NOT NULL,
		pilot_id INTEGER,
		outcome TEXT NOT NULL,
		score INTEGER NOT NULL DEFAULT 0,
		kills INTEGER NOT NULL DEFAULT 0,
		deaths INTEGER NOT NULL DEFAULT 0,
		ally_deaths INTEGER NOT NULL DEFAULT 0,
		duration REAL NOT NULL DEFAULT 0,
		seed INTEGER NOT NULL DEFAULT 0,
		created_at DATETIME DEFAULT CURRENT_TIMESTAMP
	);

	CREATE TABLE IF NOT EXISTS analytics_events (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		event_type TEXT NOT NULL,
		pilot_id INTEGER,
		session_id TEXT,
		data TEXT,
		created_at TEXT NOT NULL
	);

	CREATE TABLE IF NOT EXISTS medals (
		pilot_id INTEGER NOT NULL REFERENCES pilots(id),
		medal_id TEXT NOT NULL,
		awarded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
		PRIMARY KEY (pilot_id, medal_id)
	);

	CREATE TABLE IF NOT EXISTS settings (
		key TEXT PRIMARY KEY,
		value TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_battles_pilot ON battles(pilot_id);
	CREATE INDEX IF NOT EXISTS idx_analytics_type ON analytics_events(event_type);
	`
	if _, err := db.conn.Exec(schema); err != nil {
		log.Printf("db migration error: %v", err)
		return fmt.Errorf("migrate: %w", err)
	}
	return nil
}

// CreatePilot creates an account and its stats row, returning the pilot id
func (db *DB) CreatePilot(username, passHash string) (int64, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, err
	}
	defer tx.Rollback()

	res, err := tx.Exec("INSERT INTO pilots (username, pass_hash) VALUES (?, ?)", username, passHash)
	if err != nil {
		return 0, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, err
	}
	if _, err := tx.Exec("INSERT INTO stats (pilot_id) VALUES (?)", id); err != nil {
		return 0, err
	}
	return id, tx.Commit()
}

// PilotByUsername returns nil, nil when there is no such pilot
func (db *DB) PilotByUsername(username string) (*PilotRow, error) {
	p := &PilotRow{}
	err := db.conn.QueryRow(
		"SELECT id, username, pass_hash, created_at FROM pilots WHERE username = ?", username,
	).Scan(&p.ID, &p.Username, &p.PassHash, &p.CreatedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return p, err
}

func (db *DB) UsernameExists(username string) (bool, error) {
	var count int
	err := db.conn.QueryRow("SELECT COUNT(*) FROM pilots WHERE username = ?", username).Scan(&count)
	return count > 0, err
}

// GetStats returns nil, nil for an unknown pilot
func (db *DB) GetStats(pilotID int64) (*StatsRow, error) {
	s := &StatsRow{}
	err := db.conn.QueryRow(
		"SELECT pilot_id, kills, deaths, wins, losses, playtime, xp, level FROM stats WHERE pilot_id = ?",
		pilotID,
	).Scan(&s.PilotID, &s.Kills, &s.Deaths, &s.Wins, &s.Losses, &s.Playtime, &s.XP, &s.Level)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	return s, err
}

// XPForLevel returns the total XP required to reach a given level.
// Formula: sum of 100 * i^1.5 for i in 1..level-1
func XPForLevel(level int) int {
	total := 0.0
	for i := 1; i < level; i++ {
		total += 100.0 * math.Pow(float64(i), 1.5)
	}
	return int(total)
}

// CalculateLevel returns the level for a total XP amount, capped at 100
func CalculateLevel(totalXP int) int {
	level := 1
	for level < 100 && totalXP >= XPForLevel(level+1) {
		level++
	}
	return level
}

// BattleXP is the experience a battle is worth: score/10, a victory bonus and a
// floor for showing up.
func BattleXP(r BattleRecord) int {
	xp := r.Score/10 + 10
	if r.Outcome == ResultVictory {
		xp += 100
	}
	return xp
}

// RecordBattle stores r and, for an account, folds it into the pilot's stats. It
// returns the pilot's new total XP and level (zero for guests).
func (db *DB) RecordBattle(r BattleRecord) (int, int, error) {
	tx, err := db.conn.Begin()
	if err != nil {
		return 0, 0, err
	}
	defer tx.Rollback()

	pid := sql.NullInt64{Int64: r.PilotID, Valid: r.PilotID > 0}
	if _, err := tx.Exec(
		`INSERT INTO battles (session_id, pilot_id, outcome, score, kills, deaths, ally_deaths, duration, seed)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		r.SessionID, pid, r.Outcome, r.Score, r.Kills, r.Deaths, r.AllyDeaths, r.Duration, r.Seed,
	); err != nil {
		return 0, 0, fmt.Errorf("insert battle: %w", err)
	}
	if r.PilotID == 0 {
		return 0, 0, tx.Commit()
	}

	win, loss := 0, 1
	if r.Outcome == ResultVictory {
		win, loss = 1, 0
	}
	if _, err := tx.Exec(`
		UPDATE stats SET
			kills = kills + ?,
			deaths = deaths + ?,
			wins = wins + ?,
			losses = losses + ?,
			playtime = playtime + ?,
			xp = xp + ?
		WHERE pilot_id = ?`,
		r.Kills, r.Deaths, win, loss, r.Duration, BattleXP(r), r.PilotID,
	); err != nil {
		return 0, 0, fmt.Errorf("update stats: %w", err)
	}

	var totalXP int
	if err := tx.QueryRow("SELECT xp FROM stats WHERE pilot_id = ?", r.PilotID).Scan(&totalXP); err != nil {
		return 0, 0, err
	}
	level := CalculateLevel(totalXP)
	if _, err := tx.Exec("UPDATE stats SET level = ? WHERE pilot_id = ?", level, r.PilotID); err != nil {
		return 0, 0, err
	}
	return totalXP, level, tx.Commit()
}

// RecentBattles lists a pilot's last battles, newest first
func (db *DB) RecentBattles(pilotID int64, limit int) ([]BattleRecord, error) {
	rows, err := db.conn.Query(`
		SELECT id, session_id, COALESCE(pilot_id, 0), outcome, score, kills, deaths, ally_deaths, duration, seed, created_at
		FROM battles WHERE pilot_id = ?
		ORDER BY id DESC LIMIT ?`,
		pilotID, limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []BattleRecord
	for rows.Next() {
		var r BattleRecord
		if err := rows.Scan(&r.ID, &r.SessionID, &r.PilotID, &r.Outcome, &r.Score, &r.Kills,
			&r.Deaths, &r.AllyDeaths, &r.Duration, &r.Seed, &r.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, r)
	}
	return out, rows.Err()
}

// GetLeaderboard returns top pilots sorted by the given field
func (db *DB) GetLeaderboard(orderBy string, limit int) ([]LeaderboardEntry, error) {
	// Whitelist valid order columns
	validCols := map[string]string{
		"kills": "s.kills", "wins": "s.wins", "level": "s.level",
		"xp": "s.xp", "kd": "CASE WHEN s.deaths > 0 THEN CAST(s.kills AS REAL)/s.deaths ELSE s.kills END",
	}
	col, ok := validCols[orderBy]
	if !ok {
		col = "s.xp"
	}
	if limit <= 0 || limit > 100 {
		limit = 10
	}

	rows, err := db.conn.Query(`SELECT p.username, s.level, s.xp, s.kills, s.deaths, s.wins, s.losses
		FROM stats s JOIN pilots p ON p.id = s.pilot_id
		ORDER BY `+col+` DESC, p.id ASC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []LeaderboardEntry
	for rows.Next() {
		e := LeaderboardEntry{Rank: len(result) + 1}
		if err := rows.Scan(&e.Username, &e.Level, &e.XP, &e.Kills, &e.Deaths, &e.Wins, &e.Losses); err != nil {
			return nil, err
		}
		result = append(result, e)
	}
	return result, rows.Err()
}

// GetMedals lists the medal ids a pilot holds
func (db *DB) GetMedals(pilotID int64) ([]string, error) {
	rows, err := db.conn.Query("SELECT medal_id FROM medals WHERE pilot_id = ? ORDER BY awarded_at, medal_id", pilotID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, err
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}

// AwardMedal reports whether the medal was new for this pilot
func (db *DB) AwardMedal(pilotID int64, medalID string) (bool, error) {
	res, err := db.conn.Exec("INSERT OR IGNORE INTO medals (pilot_id, medal_id) VALUES (?, ?)", pilotID, medalID)
	if err != nil {
		return false, err
	}
	n, err := res.RowsAffected()
	return n > 0, err
}

// GetSetting returns "" for a missing key
func (db *DB) GetSetting(key string) string {
	var v string
	if err := db.conn.QueryRow("SELECT value FROM settings WHERE key = ?", key).Scan(&v); err != nil {
		return ""
	}
	return v
}

func (db *DB) SetSetting(key, value string) error {
	_, err := db.conn.Exec(
		"INSERT INTO settings (key, value) VALUES (?, ?) ON CONFLICT(key) DO UPDATE SET value = excluded.value",
		key, value,
	)
	return err
}
