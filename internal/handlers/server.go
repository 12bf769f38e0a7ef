package handlers

import (
	"context"
	"math/rand"
	"net/http"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/officeparty/sabotage/internal/game"
	"github.com/officeparty/sabotage/internal/history"
)

// GameServer owns the room registry and the per-room connection hubs that
// fan events out to clients.
type GameServer struct {
	Registry *game.RoomRegistry

	mu   sync.Mutex
	hubs map[string]*roomHub

	recorder *history.Recorder
	logger   *logrus.Logger

	// resolveGuest yields the connecting player's identity, defaulting to
	// the guest-cookie flow. Injectable for tests.
	resolveGuest func(http.ResponseWriter, *http.Request) (uuid.UUID, error)
}

// NewGameServer builds a GameServer over a fresh registry. Hub teardown is
// hooked to registry room removal so sweeps also disconnect clients.
func NewGameServer(logger *logrus.Logger) *GameServer {
	rng := rand.New(rand.NewSource(time.Now().UnixNano()))
	srv := &GameServer{
		Registry:     game.NewRoomRegistry(rng, time.Now),
		hubs:         make(map[string]*roomHub),
		logger:       logger,
		resolveGuest: EnsureGuestUser,
	}
	srv.Registry.OnRoomRemoved = srv.closeHub
	return srv
}

// SetRecorder wires the optional history recorder; rooms created afterwards
// publish their action records through it.
func (srv *GameServer) SetRecorder(rec *history.Recorder) {
	srv.recorder = rec
}

// attachRoom creates the room's hub and injects the broadcast and history
// hooks. Called once, right after the registry constructs the room.
func (srv *GameServer) attachRoom(room *game.GameRoom) *roomHub {
	hub := newRoomHub(srv.logger)
	room.BroadcastFn = hub.broadcast

	if rec := srv.recorder; rec != nil {
		code := room.RoomCode
		room.OnAction = func(actionType string, actorID uuid.UUID, payload map[string]interface{}) {
			record := history.RoomActionRecord{
				RoomCode:      code,
				ActorPlayerID: actorID,
				ActionType:    actionType,
				ActionPayload: payload,
				Timestamp:     time.Now().UnixMilli(),
			}
			go func() {
				ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
				defer cancel()
				if err := rec.Publish(ctx, record); err != nil {
					srv.logger.Warnf("history publish failed for room %s: %v", code, err)
				}
			}()
		}
	}

	srv.mu.Lock()
	srv.hubs[room.RoomCode] = hub
	srv.mu.Unlock()
	return hub
}

// hubFor resolves the hub of an active room.
func (srv *GameServer) hubFor(roomCode string) (*roomHub, bool) {
	srv.mu.Lock()
	defer srv.mu.Unlock()
	hub, ok := srv.hubs[roomCode]
	return hub, ok
}

// closeHub tears down a room's hub, disconnecting any remaining clients.
// Invoked via Registry.OnRoomRemoved, including from the TTL sweeper.
func (srv *GameServer) closeHub(roomCode string) {
	srv.mu.Lock()
	hub, ok := srv.hubs[roomCode]
	delete(srv.hubs, roomCode)
	srv.mu.Unlock()
	if ok {
		hub.closeAll()
	}
}
