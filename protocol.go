package main

import "encoding/json"

// Client -> Server message types
const (
	MsgCreate      = "create"   // create a battle and fly it
	MsgJoin        = "join"     // take the pilot seat of an existing battle
	MsgSpectate    = "spectate" // watch a battle
	MsgInput       = "input"
	MsgLeave       = "leave"
	MsgList        = "list"
	MsgRegister    = "register"
	MsgLogin       = "login"
	MsgAuth        = "auth" // resume with a token
	MsgLeaderboard = "leaderboard"
)

// Server -> Client message types
const (
	MsgCreated  = "created"
	MsgJoined   = "joined"
	MsgSessions = "sessions"
	MsgError    = "error"
	MsgAuthOK   = "auth_ok"
	MsgResult   = "result"
	// leaderboard replies reuse MsgLeaderboard
)

// Binary frame tags. Snapshots go out as msgpack after the tag byte; pilots may send
// msgpack input the same way.
const (
	FrameInput    byte = 0x01
	FrameSnapshot byte = 0x02
)

// Envelope wraps all outgoing JSON messages with a type field
type Envelope struct {
	T    string      `json:"t"`
	Data interface{} `json:"d,omitempty"`
}

// InEnvelope defers decoding of the payload until the type is known
type InEnvelope struct {
	T string          `json:"t"`
	D json.RawMessage `json:"d,omitempty"`
}

type CreateMsg struct {
	Name        string `json:"name"`
	SessionName string `json:"sname"`
	Seed        int64  `json:"seed,omitempty"` // 0 picks one
}

type JoinMsg struct {
	Name      string `json:"name"`
	SessionID string `json:"sid"`
}

type SpectateMsg struct {
	SessionID string `json:"sid"`
}

type RegisterMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type LoginMsg struct {
	Username string `json:"username"`
	Password string `json:"password"`
}

type AuthMsg struct {
	Token string `json:"token"`
}

type LeaderboardMsg struct {
	OrderBy string `json:"order,omitempty"`
	Limit   int    `json:"limit,omitempty"`
}

type AuthOKMsg struct {
	Token    string `json:"token"`
	Username string `json:"username"`
	PilotID  int64  `json:"pid"`
}

type JoinedMsg struct {
	SessionID string `json:"sid"`
	Seed      int64  `json:"seed"`
	Pilot     bool   `json:"pilot"`
	EntityID  int    `json:"eid,omitempty"`
}

// ResultMsg announces the end of a battle
type ResultMsg struct {
	Outcome    string     `json:"outcome"`
	Score      int        `json:"score"`
	Kills      int        `json:"kills"`
	AllyDeaths int        `json:"allyDeaths"`
	Duration   float64    `json:"duration"`
	XP         int        `json:"xp,omitempty"`
	Level      int        `json:"level,omitempty"`
	Medals     []MedalDef `json:"medals,omitempty"`
}

type SessionInfo struct {
	ID         string `json:"id"`
	Name       string `json:"name"`
	HasPilot   bool   `json:"pilot"`
	Spectators int    `json:"spectators"`
	Result     string `json:"result,omitempty"`
}

// PilotProfile is the public view of an account
type PilotProfile struct {
	Username string         `json:"username"`
	Level    int            `json:"level"`
	XP       int            `json:"xp"`
	Kills    int            `json:"kills"`
	Deaths   int            `json:"deaths"`
	Wins     int            `json:"wins"`
	Losses   int            `json:"losses"`
	Playtime float64        `json:"playtime"`
	Medals   []string       `json:"medals"`
	Battles  []BattleRecord `json:"battles"`
}

type ErrorMsg struct {
	Msg string `json:"msg"`
}

// EntityState is one visible entity in a snapshot
type EntityState struct {
	ID     int        `msgpack:"id" json:"id"`
	Kind   string     `msgpack:"k" json:"k"`
	Team   string     `msgpack:"tm,omitempty" json:"tm,omitempty"`
	Pos    [3]float64 `msgpack:"p" json:"p"`
	Rot    [4]float64 `msgpack:"q" json:"q"` // w, x, y, z
	HP     float64    `msgpack:"hp,omitempty" json:"hp,omitempty"`
	MaxHP  float64    `msgpack:"mhp,omitempty" json:"mhp,omitempty"`
	Shield float64    `msgpack:"sh,omitempty" json:"sh,omitempty"`
	Radius float64    `msgpack:"r,omitempty" json:"r,omitempty"`
}

// PilotState is the HUD data of the player craft
type PilotState struct {
	ID        int     `msgpack:"id" json:"id"`
	HP        float64 `msgpack:"hp" json:"hp"`
	Shield    float64 `msgpack:"sh" json:"sh"`
	BoostFuel float64 `msgpack:"bf" json:"bf"`
	Weapon    string  `msgpack:"w" json:"w"`
	Ammo      int     `msgpack:"am" json:"am"`
	Reloading bool    `msgpack:"rl,omitempty" json:"rl,omitempty"`
	Funnel    string  `msgpack:"fn" json:"fn"`
	Lock      int     `msgpack:"lk,omitempty" json:"lk,omitempty"`
	Stunned   bool    `msgpack:"st,omitempty" json:"st,omitempty"`
}

// BattleSnapshot is the state frame streamed to pilot and spectators
type BattleSnapshot struct {
	Tick       uint64        `msgpack:"tick" json:"tick"`
	Time       float64       `msgpack:"t" json:"t"`
	Score      int           `msgpack:"sc" json:"sc"`
	Kills      int           `msgpack:"k" json:"k"`
	Lives      int           `msgpack:"l" json:"l"`
	Combo      int           `msgpack:"c" json:"c"`
	AllyDeaths int           `msgpack:"ad" json:"ad"`
	Respawning bool          `msgpack:"rs,omitempty" json:"rs,omitempty"`
	Result     string        `msgpack:"res,omitempty" json:"res,omitempty"`
	Pilot      PilotState    `msgpack:"pl" json:"pl"`
	Entities   []EntityState `msgpack:"e" json:"e"`
}
