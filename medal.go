package main

// MedalDef describes one unlockable medal
type MedalDef struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
}

var Medals = []MedalDef{
	{"first_blood", "First Blood", "Shoot down your first enemy"},
	{"ace", "Ace Pilot", "Shoot down 10 enemies in a single battle"},
	{"centurion", "Centurion", "Reach 100 total kills"},
	{"flawless", "Flawless Victory", "Win a battle without losing a life"},
	{"guardian", "Guardian", "Win a battle without losing a wingman"},
	{"victor", "Victor", "Win 10 battles"},
	{"veteran", "Veteran", "Reach level 10"},
	{"legend", "Legend", "Reach level 50"},
	{"survivor", "Survivor", "Fly for 1 hour total"},
}

// CheckMedals awards what rec and the pilot's updated totals have earned and
// returns the newly awarded medals. Guests earn nothing.
func CheckMedals(db *DB, rec BattleRecord) []MedalDef {
	if db == nil || rec.PilotID == 0 {
		return nil
	}

	stats, err := db.GetStats(rec.PilotID)
	if err != nil || stats == nil {
		return nil
	}
	held, err := db.GetMedals(rec.PilotID)
	if err != nil {
		return nil
	}
	has := make(map[string]bool, len(held))
	for _, id := range held {
		has[id] = true
	}

	won := rec.Outcome == ResultVictory
	earned := func(id string) bool {
		switch id {
		case "first_blood":
			return stats.Kills >= 1
		case "ace":
			return rec.Kills >= 10
		case "centurion":
			return stats.Kills >= 100
		case "flawless":
			return won && rec.Deaths == 0
		case "guardian":
			return won && rec.AllyDeaths == 0
		case "victor":
			return stats.Wins >= 10
		case "veteran":
			return stats.Level >= 10
		case "legend":
			return stats.Level >= 50
		case "survivor":
			return stats.Playtime >= 3600
		}
		return false
	}

	var awarded []MedalDef
	for _, def := range Medals {
		if has[def.ID] || !earned(def.ID) {
			continue
		}
		if isNew, err := db.AwardMedal(rec.PilotID, def.ID); err == nil && isNew {
			awarded = append(awarded, def)
		}
	}
	return awarded
}
