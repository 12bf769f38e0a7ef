package game

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	// RoomTTL is a hard lifetime: the sweeper removes rooms older than
	// this regardless of game state, even mid-game.
	RoomTTL = time.Hour
	// SweepInterval is how often the background sweep runs.
	SweepInterval = 5 * time.Minute
)

// RoomRegistry owns every active GameRoom exclusively; rooms are reachable
// only through it. It allocates the 4-digit room codes, gates joins and
// runs the periodic TTL sweep.
type RoomRegistry struct {
	mu    sync.Mutex
	rooms map[string]*GameRoom

	rng *rand.Rand
	now func() time.Time

	// OnRoomRemoved is called (outside the registry lock) whenever a room
	// is deleted, so the transport layer can tear down its connection hub.
	OnRoomRemoved func(roomCode string)
}

// NewRoomRegistry builds an empty registry. The random source seeds room
// codes and per-room generators; the clock is injectable for TTL tests.
func NewRoomRegistry(rng *rand.Rand, now func() time.Time) *RoomRegistry {
	if now == nil {
		now = time.Now
	}
	return &RoomRegistry{
		rooms: make(map[string]*GameRoom),
		rng:   rng,
		now:   now,
	}
}

// CreateRoom allocates a unique room code, constructs the room and adds the
// host as its first player.
func (reg *RoomRegistry) CreateRoom(hostID uuid.UUID, hostName string) (*GameRoom, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	code := reg.generateRoomCodeLocked()
	roomRng := rand.New(rand.NewSource(reg.rng.Int63()))
	room := NewGameRoom(code, hostID, NewTaskCatalog(roomRng), roomRng, reg.now)
	if err := room.AddPlayer(hostID, hostName); err != nil {
		return nil, err
	}
	reg.rooms[code] = room
	return room, nil
}

// generateRoomCodeLocked draws 4-digit codes until one is free. Assumes the
// registry lock is held.
func (reg *RoomRegistry) generateRoomCodeLocked() string {
	for {
		code := fmt.Sprintf("%04d", 1000+reg.rng.Intn(9000))
		if _, taken := reg.rooms[code]; !taken {
			return code
		}
	}
}

// JoinRoom adds a player to a lobby-state room. A room that exists but has
// already started is reported as not found, same as an unknown code. The
// registry lock is held across the add so a join cannot interleave with
// LeaveRoom deleting the room out from under the newest member.
func (reg *RoomRegistry) JoinRoom(roomCode string, playerID uuid.UUID, name string) (*GameRoom, error) {
	reg.mu.Lock()
	defer reg.mu.Unlock()

	room, ok := reg.rooms[roomCode]
	if !ok {
		return nil, ErrRoomNotFound
	}
	if err := room.AddPlayer(playerID, name); err != nil {
		if errors.Is(err, ErrWrongState) {
			return nil, ErrRoomNotFound
		}
		return nil, err
	}
	return room, nil
}

// LeaveRoom removes a player from a room, deleting the room once the last
// player is gone. Returns whether the room was deleted. Removal and the map
// delete happen under one registry critical section, mirroring JoinRoom.
func (reg *RoomRegistry) LeaveRoom(roomCode string, playerID uuid.UUID) bool {
	reg.mu.Lock()
	room, ok := reg.rooms[roomCode]
	if !ok {
		reg.mu.Unlock()
		return false
	}

	_, empty := room.RemovePlayer(playerID)
	if empty {
		delete(reg.rooms, roomCode)
	}
	reg.mu.Unlock()

	if empty {
		reg.notifyRemoved(roomCode)
	}
	return empty
}

// GetRoom resolves a room code.
func (reg *RoomRegistry) GetRoom(roomCode string) (*GameRoom, bool) {
	reg.mu.Lock()
	defer reg.mu.Unlock()
	room, ok := reg.rooms[roomCode]
	return room, ok
}

// Sweep removes rooms that are empty or past the hard TTL. Room age and
// emptiness are read under each room's own lock, so a sweep never overlaps
// an in-flight mutation on the same room.
func (reg *RoomRegistry) Sweep() int {
	now := reg.now()

	reg.mu.Lock()
	var stale []string
	for code, room := range reg.rooms {
		if room.PlayerCount() == 0 || now.Sub(room.CreatedAt) > RoomTTL {
			stale = append(stale, code)
		}
	}
	for _, code := range stale {
		delete(reg.rooms, code)
	}
	reg.mu.Unlock()

	for _, code := range stale {
		reg.notifyRemoved(code)
	}
	return len(stale)
}

// RunSweeper runs Sweep every SweepInterval until ctx is cancelled.
func (reg *RoomRegistry) RunSweeper(ctx context.Context) {
	ticker := time.NewTicker(SweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			reg.Sweep()
		}
	}
}

func (reg *RoomRegistry) notifyRemoved(roomCode string) {
	if reg.OnRoomRemoved != nil {
		reg.OnRoomRemoved(roomCode)
	}
}

// RoomSummary is one room's line in the registry stats.
type RoomSummary struct {
	Code       string    `json:"code"`
	Players    int       `json:"players"`
	State      GameState `json:"state"`
	MaxPlayers int       `json:"maxPlayers"`
}

// RegistryStats is the snapshot served by the status endpoints.
type RegistryStats struct {
	ActiveRooms  int           `json:"activeRooms"`
	TotalPlayers int           `json:"totalPlayers"`
	Rooms        []RoomSummary `json:"rooms"`
}

// Stats gathers a point-in-time summary of all active rooms.
func (reg *RoomRegistry) Stats() RegistryStats {
	reg.mu.Lock()
	rooms := make([]*GameRoom, 0, len(reg.rooms))
	for _, room := range reg.rooms {
		rooms = append(rooms, room)
	}
	reg.mu.Unlock()

	stats := RegistryStats{Rooms: make([]RoomSummary, 0, len(rooms))}
	for _, room := range rooms {
		n := room.PlayerCount()
		stats.ActiveRooms++
		stats.TotalPlayers += n
		stats.Rooms = append(stats.Rooms, RoomSummary{
			Code:       room.RoomCode,
			Players:    n,
			State:      room.CurrentState(),
			MaxPlayers: MaxPlayers,
		})
	}
	return stats
}
