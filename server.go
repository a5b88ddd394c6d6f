package main

import (
	"encoding/json"
	"log"
	"net"
	"net/http"
	"net/url"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/gorilla/websocket"
	"github.com/skip2/go-qrcode"
)

var uuidPathRe = regexp.MustCompile(`^/[0-9a-f]{8}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{4}-[0-9a-f]{12}$`)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true // Non-browser clients don't send Origin
		}
		u, err := url.Parse(origin)
		if err != nil {
			return false
		}
		return u.Host == r.Host
	},
}

func extractIP(r *http.Request) string {
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.Printf("http encode error: %v", err)
	}
}

// SetupRoutes configures HTTP routes. clientDir may be empty to run headless.
// publicURL is the base used in spectate links.
func SetupRoutes(hub *Hub, clientDir, publicURL string) *http.ServeMux {
	mux := http.NewServeMux()

	if clientDir != "" {
		// no-cache so browsers always revalidate
		fs := http.FileServer(http.Dir(clientDir))
		mux.Handle("/", http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Cache-Control", "no-cache")
			if r.URL.Path == "/" || uuidPathRe.MatchString(r.URL.Path) {
				http.ServeFile(w, r, filepath.Join(clientDir, "index.html"))
				return
			}
			fs.ServeHTTP(w, r)
		}))
	}

	mux.HandleFunc("/ws", func(w http.ResponseWriter, r *http.Request) {
		ip := extractIP(r)
		if !hub.CanAccept(ip) {
			http.Error(w, "too many connections", http.StatusServiceUnavailable)
			return
		}

		conn, err := upgrader.Upgrade(w, r, nil)
		if err != nil {
			log.Printf("upgrade error: %v", err)
			return
		}

		hub.TrackConnect(ip)

		client := NewClient(hub, conn, ip)
		hub.register <- client

		go client.WritePump()
		go client.ReadPump()
	})

	// QR code pointing spectators at a session
	mux.HandleFunc("/qr/", func(w http.ResponseWriter, r *http.Request) {
		sid := strings.TrimPrefix(r.URL.Path, "/qr/")
		if hub.sessions.GetSession(sid) == nil {
			http.NotFound(w, r)
			return
		}
		base := publicURL
		if base == "" {
			base = "http://" + r.Host
		}
		png, err := qrcode.Encode(strings.TrimRight(base, "/")+"/"+sid, qrcode.Medium, 256)
		if err != nil {
			http.Error(w, "qr encode failed", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "image/png")
		w.Write(png)
	})

	mux.HandleFunc("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, map[string]int{
			"clients":  hub.ClientCount(),
			"conns":    hub.TotalConns(),
			"sessions": hub.sessions.Count(),
		})
	})

	mux.HandleFunc("/api/sessions", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, hub.sessions.ListSessions())
	})

	mux.HandleFunc("/api/leaderboard", func(w http.ResponseWriter, r *http.Request) {
		if hub.db == nil {
			http.Error(w, "leaderboard unavailable", http.StatusServiceUnavailable)
			return
		}
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		entries, err := hub.db.GetLeaderboard(r.URL.Query().Get("order"), limit)
		if err != nil {
			log.Printf("leaderboard error: %v", err)
			http.Error(w, "leaderboard unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, entries)
	})

	// Public pilot profile: lifetime stats, medals and recent battles
	mux.HandleFunc("/api/pilots/", func(w http.ResponseWriter, r *http.Request) {
		if hub.db == nil {
			http.Error(w, "accounts disabled", http.StatusServiceUnavailable)
			return
		}
		p, err := hub.db.PilotByUsername(strings.TrimPrefix(r.URL.Path, "/api/pilots/"))
		if err != nil {
			log.Printf("pilot lookup error: %v", err)
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
		if p == nil {
			http.NotFound(w, r)
			return
		}
		stats, err := hub.db.GetStats(p.ID)
		if err != nil || stats == nil {
			http.Error(w, "lookup failed", http.StatusInternalServerError)
			return
		}
		medals, _ := hub.db.GetMedals(p.ID)
		battles, _ := hub.db.RecentBattles(p.ID, 10)
		writeJSON(w, PilotProfile{
			Username: p.Username,
			Level:    stats.Level,
			XP:       stats.XP,
			Kills:    stats.Kills,
			Deaths:   stats.Deaths,
			Wins:     stats.Wins,
			Losses:   stats.Losses,
			Playtime: stats.Playtime,
			Medals:   medals,
			Battles:  battles,
		})
	})

	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		if hub.analytics == nil || hub.db == nil {
			http.Error(w, "stats unavailable", http.StatusServiceUnavailable)
			return
		}
		days, _ := strconv.Atoi(r.URL.Query().Get("days"))
		if days <= 0 {
			days = 7
		}
		events, err := hub.analytics.EventCounts(days)
		if err != nil {
			log.Printf("stats error: %v", err)
			http.Error(w, "stats unavailable", http.StatusInternalServerError)
			return
		}
		outcomes, err := hub.analytics.OutcomeCounts(days)
		if err != nil {
			log.Printf("stats error: %v", err)
			http.Error(w, "stats unavailable", http.StatusInternalServerError)
			return
		}
		writeJSON(w, map[string]map[string]int{"events": events, "outcomes": outcomes})
	})

	mux.HandleFunc("/schema", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, ConfigSchema())
	})

	return mux
}
