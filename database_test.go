package main

import "testing"

func openTestDB(t *testing.T) *DB {
	t.Helper()
	db, err := OpenDB(":memory:")
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	t.Cleanup(func() { db.Close() })
	return db
}

func TestCreatePilot(t *testing.T) {
	db := openTestDB(t)
	id, err := db.CreatePilot("maverick", "hash")
	if err != nil || id <= 0 {
		t.Fatalf("expected a pilot id, got %d (%v)", id, err)
	}
	if _, err := db.CreatePilot("maverick", "hash"); err == nil {
		t.Error("expected a duplicate username to fail")
	}

	p, err := db.PilotByUsername("maverick")
	if err != nil || p == nil || p.ID != id {
		t.Fatalf("expected to find pilot %d, got %+v (%v)", id, p, err)
	}
	if p, _ := db.PilotByUsername("goose"); p != nil {
		t.Error("expected nil for an unknown pilot")
	}
	if ok, _ := db.UsernameExists("maverick"); !ok {
		t.Error("expected the username to exist")
	}

	stats, err := db.GetStats(id)
	if err != nil || stats == nil {
		t.Fatalf("expected a stats row, got %v", err)
	}
	if stats.Level != 1 || stats.XP != 0 {
		t.Errorf("expected level 1 with no XP, got %d and %d", stats.Level, stats.XP)
	}
}

func TestLevelCurve(t *testing.T) {
	if XPForLevel(1) != 0 || XPForLevel(2) != 100 {
		t.Errorf("expected 0 and 100, got %d and %d", XPForLevel(1), XPForLevel(2))
	}
	if CalculateLevel(0) != 1 || CalculateLevel(99) != 1 || CalculateLevel(100) != 2 {
		t.Error("unexpected level at the first threshold")
	}
	if CalculateLevel(1 << 30) != 100 {
		t.Errorf("expected the level cap of 100, got %d", CalculateLevel(1<<30))
	}
}

func TestRecordBattle(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreatePilot("maverick", "hash")

	xp, level, err := db.RecordBattle(BattleRecord{SessionID: "guest", Outcome: ResultDefeat, Score: 500})
	if err != nil || xp != 0 || level != 0 {
		t.Errorf("expected guests to earn nothing, got %d/%d (%v)", xp, level, err)
	}

	rec := BattleRecord{
		SessionID: "s1", PilotID: id, Outcome: ResultVictory,
		Score: 1000, Kills: 12, Deaths: 1, Duration: 180, Seed: 42,
	}
	xp, level, err = db.RecordBattle(rec)
	if err != nil {
		t.Fatalf("record: %v", err)
	}
	if xp != 210 || level != 2 {
		t.Errorf("expected 210 XP at level 2, got %d at %d", xp, level)
	}

	stats, _ := db.GetStats(id)
	if stats.Kills != 12 || stats.Deaths != 1 || stats.Wins != 1 || stats.Losses != 0 || stats.Playtime != 180 {
		t.Errorf("unexpected stats %+v", stats)
	}

	battles, err := db.RecentBattles(id, 10)
	if err != nil || len(battles) != 1 {
		t.Fatalf("expected 1 battle, got %d (%v)", len(battles), err)
	}
	if b := battles[0]; b.Seed != 42 || b.Outcome != ResultVictory || b.PilotID != id {
		t.Errorf("unexpected battle %+v", b)
	}
}

func TestLeaderboard(t *testing.T) {
	db := openTestDB(t)
	a, _ := db.CreatePilot("alpha", "hash")
	b, _ := db.CreatePilot("bravo", "hash")
	db.RecordBattle(BattleRecord{SessionID: "s1", PilotID: a, Outcome: ResultDefeat, Kills: 3, Deaths: 3})
	db.RecordBattle(BattleRecord{SessionID: "s2", PilotID: b, Outcome: ResultVictory, Kills: 9, Deaths: 1})

	entries, err := db.GetLeaderboard("kills", 10)
	if err != nil {
		t.Fatalf("leaderboard: %v", err)
	}
	if len(entries) != 2 {
		t.Fatalf("expected 2 entries, got %d", len(entries))
	}
	if entries[0].Username != "bravo" || entries[0].Rank != 1 || entries[1].Rank != 2 {
		t.Errorf("expected bravo first, got %+v", entries)
	}

	// unknown columns fall back to xp
	entries, err = db.GetLeaderboard("1; DROP TABLE pilots", 1)
	if err != nil || len(entries) != 1 || entries[0].Username != "bravo" {
		t.Errorf("expected the xp leader only, got %+v (%v)", entries, err)
	}
}

func TestSettings(t *testing.T) {
	db := openTestDB(t)
	if v := db.GetSetting("motd"); v != "" {
		t.Errorf("expected empty setting, got %q", v)
	}
	db.SetSetting("motd", "hello")
	db.SetSetting("motd", "scramble")
	if v := db.GetSetting("motd"); v != "scramble" {
		t.Errorf("expected scramble, got %q", v)
	}
}

func TestCheckMedals(t *testing.T) {
	db := openTestDB(t)
	id, _ := db.CreatePilot("maverick", "hash")
	rec := BattleRecord{SessionID: "s1", PilotID: id, Outcome: ResultVictory, Kills: 12, Duration: 60}
	db.RecordBattle(rec)

	got := map[string]bool{}
	for _, m := range CheckMedals(db, rec) {
		got[m.ID] = true
	}
	for _, want := range []string{"first_blood", "ace", "flawless", "guardian"} {
		if !got[want] {
			t.Errorf("expected medal %s, got %v", want, got)
		}
	}
	if got["victor"] || got["centurion"] {
		t.Errorf("unearned medals awarded: %v", got)
	}

	if again := CheckMedals(db, rec); len(again) != 0 {
		t.Errorf("expected medals to be awarded once, got %v", again)
	}
	held, _ := db.GetMedals(id)
	if len(held) != 4 {
		t.Errorf("expected 4 held medals, got %v", held)
	}

	if m := CheckMedals(db, BattleRecord{Outcome: ResultVictory, Kills: 50}); m != nil {
		t.Errorf("expected guests to earn no medals, got %v", m)
	}
	if m := CheckMedals(nil, rec); m != nil {
		t.Error("expected no medals without a database")
	}
}
