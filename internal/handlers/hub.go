package handlers

import (
	"sync"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/officeparty/sabotage/internal/game"
)

// connection is a single player's live WebSocket presence in a room.
type connection struct {
	PlayerID uuid.UUID
	Name     string
	Cancel   func()
	OutChan  chan game.GameEvent

	logger *logrus.Logger

	// roomCode is the room this connection currently belongs to, empty
	// outside any room. Only the connection's own readPump touches it.
	roomCode string
}

// Write pushes an event onto the connection's OutChan non-blockingly.
// Drops (and logs) when the channel is closed or full.
func (conn *connection) Write(ev game.GameEvent) {
	select {
	case conn.OutChan <- ev:
	default:
		conn.logger.Warnf("OutChan for player %s closed or full, dropped %q event", conn.PlayerID, ev.Type)
	}
}

// WriteError sends an error event to this connection only.
func (conn *connection) WriteError(msg string) {
	conn.Write(game.GameEvent{
		Type:    game.EventError,
		Payload: map[string]interface{}{"message": msg},
	})
}

// roomHub fans room events out to every connection in one room. The room's
// BroadcastFn points at broadcast, so events emitted under the room lock go
// through the non-blocking per-connection channels.
type roomHub struct {
	mu     sync.Mutex
	conns  map[uuid.UUID]*connection
	logger *logrus.Logger
}

func newRoomHub(logger *logrus.Logger) *roomHub {
	return &roomHub{
		conns:  make(map[uuid.UUID]*connection),
		logger: logger,
	}
}

func (hub *roomHub) add(conn *connection) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	hub.conns[conn.PlayerID] = conn
}

func (hub *roomHub) remove(playerID uuid.UUID) {
	hub.mu.Lock()
	defer hub.mu.Unlock()
	delete(hub.conns, playerID)
}

func (hub *roomHub) broadcast(ev game.GameEvent) {
	hub.mu.Lock()
	conns := make([]*connection, 0, len(hub.conns))
	for _, conn := range hub.conns {
		conns = append(conns, conn)
	}
	hub.mu.Unlock()

	for _, conn := range conns {
		conn.Write(ev)
	}
}

// broadcastExcept sends to every connection but the named player, e.g. a
// join notice that the joiner already received in another form.
func (hub *roomHub) broadcastExcept(playerID uuid.UUID, ev game.GameEvent) {
	hub.mu.Lock()
	conns := make([]*connection, 0, len(hub.conns))
	for id, conn := range hub.conns {
		if id != playerID {
			conns = append(conns, conn)
		}
	}
	hub.mu.Unlock()

	for _, conn := range conns {
		conn.Write(ev)
	}
}

// closeAll cancels every remaining connection. Used when a room is removed
// out from under its clients (TTL sweep).
func (hub *roomHub) closeAll() {
	hub.mu.Lock()
	conns := make([]*connection, 0, len(hub.conns))
	for _, conn := range hub.conns {
		conns = append(conns, conn)
	}
	hub.conns = make(map[uuid.UUID]*connection)
	hub.mu.Unlock()

	for _, conn := range conns {
		if conn.Cancel != nil {
			conn.Cancel()
		}
	}
}
