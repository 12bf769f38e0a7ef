package handlers

import (
	"encoding/json"
	"net/http"
	"time"
)

// StatusHandler serves the root health/status page with registry stats.
func StatusHandler(srv *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		stats := srv.Registry.Stats()
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(map[string]interface{}{
			"status":       "Sabotage server running",
			"timestamp":    time.Now().UTC().Format(time.RFC3339),
			"activeRooms":  stats.ActiveRooms,
			"totalPlayers": stats.TotalPlayers,
			"rooms":        stats.Rooms,
		})
	}
}

// StatsHandler serves the raw registry stats snapshot.
func StatsHandler(srv *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		json.NewEncoder(w).Encode(srv.Registry.Stats())
	}
}
