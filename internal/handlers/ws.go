package handlers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/officeparty/sabotage/internal/game"
	"github.com/officeparty/sabotage/internal/middleware"
)

// clientMessage is the envelope for inbound player actions.
type clientMessage struct {
	Type       string `json:"type"`
	PlayerName string `json:"playerName,omitempty"`
	RoomCode   string `json:"roomCode,omitempty"`
	Reason     string `json:"reason,omitempty"`
	TargetID   string `json:"targetId,omitempty"`
	TaskID     string `json:"taskId,omitempty"`
	Message    string `json:"message,omitempty"`
}

// RoomWSHandler upgrades the connection to WebSocket and runs the player's
// session: one read loop dispatching actions into the game core, one write
// pump draining the outbound event channel. Each inbound action is handled
// to completion (including broadcasts) before the next is read.
func RoomWSHandler(logger *logrus.Logger, srv *GameServer) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		// Resolve identity before the upgrade so a fresh guest cookie can
		// still ride the handshake response.
		playerID, authErr := srv.resolveGuest(w, r)

		c, err := websocket.Accept(w, r, &websocket.AcceptOptions{
			Subprotocols:   []string{"sabotage"},
			OriginPatterns: []string{"*"}, // Adjust in production.
		})
		if err != nil {
			logger.Warnf("websocket accept error: %v", err)
			return
		}
		defer c.Close(websocket.StatusInternalError, "handler finished")

		if authErr != nil {
			logger.Warnf("guest auth failed: %v", authErr)
			c.Close(InvalidAuthTokenError, "could not establish player identity")
			return
		}
		if c.Subprotocol() != "sabotage" {
			c.Close(BadSubprotocolError, "client must speak the sabotage subprotocol")
			return
		}

		middleware.LogWebSocketConnect(logger, r.RemoteAddr, r.URL.Path)

		ctx, cancel := context.WithCancel(r.Context())
		defer cancel()
		conn := &connection{
			PlayerID: playerID,
			Cancel:   cancel,
			OutChan:  make(chan game.GameEvent, 16),
			logger:   logger,
		}

		go writePump(ctx, c, conn, logger)
		readErr := readPump(ctx, c, srv, conn, logger)

		// Disconnect: drop the player from whatever room they were in.
		leaveCurrentRoom(srv, conn)
		middleware.LogWebSocketDisconnect(logger, r.RemoteAddr, r.URL.Path, readErr)
	}
}

// readPump handles incoming player actions until the connection closes.
func readPump(ctx context.Context, c *websocket.Conn, srv *GameServer, conn *connection, logger *logrus.Logger) error {
	for {
		typ, data, err := c.Read(ctx)
		if err != nil {
			closeStatus := websocket.CloseStatus(err)
			if closeStatus == websocket.StatusNormalClosure || closeStatus == websocket.StatusGoingAway {
				return nil
			}
			if strings.Contains(err.Error(), "context canceled") {
				return nil
			}
			return err
		}
		if typ != websocket.MessageText {
			logger.Warnf("ignoring non-text message from player %s", conn.PlayerID)
			continue
		}

		var msg clientMessage
		if err := json.Unmarshal(data, &msg); err != nil {
			logger.Warnf("invalid json from player %s: %v", conn.PlayerID, err)
			conn.WriteError("Invalid JSON format")
			continue
		}

		handleClientMessage(srv, conn, msg, logger)
	}
}

// handleClientMessage dispatches one player action into the game core. Per
// the room's own locking, each action applies atomically; errors go back to
// the acting player only, never to the room.
func handleClientMessage(srv *GameServer, conn *connection, msg clientMessage, logger *logrus.Logger) {
	switch msg.Type {
	case "create_room":
		if conn.roomCode != "" {
			conn.WriteError("Already in a room")
			return
		}
		room, err := srv.Registry.CreateRoom(conn.PlayerID, msg.PlayerName)
		if err != nil {
			conn.WriteError("Cannot create room")
			return
		}
		hub := srv.attachRoom(room)
		hub.add(conn)
		conn.roomCode = room.RoomCode
		conn.Name = msg.PlayerName
		conn.Write(game.GameEvent{
			Type: game.EventRoomCreated,
			Payload: map[string]interface{}{
				"roomCode": room.RoomCode,
				"players":  room.Players(),
			},
		})

	case "join_room":
		if conn.roomCode != "" {
			conn.WriteError("Already in a room")
			return
		}
		room, err := srv.Registry.JoinRoom(msg.RoomCode, conn.PlayerID, msg.PlayerName)
		if err != nil {
			switch {
			case errors.Is(err, game.ErrRoomFull):
				conn.WriteError("Room is full")
			default:
				conn.WriteError("Room not found or game already started")
			}
			return
		}
		hub, ok := srv.hubFor(room.RoomCode)
		if !ok {
			// Room outlived its hub; treat as gone.
			srv.Registry.LeaveRoom(room.RoomCode, conn.PlayerID)
			conn.WriteError("Room not found or game already started")
			return
		}
		hub.add(conn)
		conn.roomCode = room.RoomCode
		conn.Name = msg.PlayerName
		players := room.Players()
		conn.Write(game.GameEvent{
			Type: game.EventPlayerJoined,
			Payload: map[string]interface{}{
				"roomCode": room.RoomCode,
				"you":      conn.PlayerID,
				"players":  players,
			},
		})
		hub.broadcastExcept(conn.PlayerID, game.GameEvent{
			Type:    game.EventPlayerJoined,
			Payload: map[string]interface{}{"players": players},
		})

	case "start_game":
		room, ok := srv.Registry.GetRoom(conn.roomCode)
		if !ok {
			conn.WriteError("Not in a room")
			return
		}
		if err := room.StartGame(conn.PlayerID); err != nil {
			conn.WriteError(startGameErrorMessage(err))
		}

	case "chat":
		if conn.roomCode == "" || msg.Message == "" {
			return
		}
		hub, ok := srv.hubFor(conn.roomCode)
		if !ok {
			return
		}
		// Pure pass-through, no state change. The sender's name was fixed
		// at create/join time.
		hub.broadcast(game.GameEvent{
			Type: game.EventChat,
			Payload: map[string]interface{}{
				"playerId":   conn.PlayerID,
				"playerName": conn.Name,
				"message":    msg.Message,
				"timestamp":  time.Now().UnixMilli(),
			},
		})

	case "call_meeting":
		room, ok := srv.Registry.GetRoom(conn.roomCode)
		if !ok {
			return
		}
		// Not callable right now (wrong state, dead caller): silent noop.
		_ = room.CallMeeting(conn.PlayerID, msg.Reason)

	case "report_body":
		room, ok := srv.Registry.GetRoom(conn.roomCode)
		if !ok {
			return
		}
		_ = room.ReportBody(conn.PlayerID)

	case "cast_vote":
		room, ok := srv.Registry.GetRoom(conn.roomCode)
		if !ok {
			return
		}
		targetID, err := uuid.Parse(msg.TargetID)
		if err != nil {
			conn.WriteError("Invalid vote")
			return
		}
		if err := room.CastVote(conn.PlayerID, targetID); err != nil {
			conn.WriteError("Invalid vote")
		}

	case "complete_task":
		room, ok := srv.Registry.GetRoom(conn.roomCode)
		if !ok {
			return
		}
		// Unknown or stale task ids are silently rejected to tolerate
		// duplicate client messages.
		_, _ = room.CompleteTask(conn.PlayerID, msg.TaskID)

	case "sabotage":
		room, ok := srv.Registry.GetRoom(conn.roomCode)
		if !ok {
			return
		}
		_, _ = room.TriggerSabotage(conn.PlayerID)

	case "leave_room":
		leaveCurrentRoom(srv, conn)

	default:
		logger.Warnf("unknown action %q from player %s", msg.Type, conn.PlayerID)
		conn.WriteError("Unknown action type: " + msg.Type)
	}
}

func startGameErrorMessage(err error) string {
	switch {
	case errors.Is(err, game.ErrNotHost):
		return "Only host can start the game"
	case errors.Is(err, game.ErrNotReadyToStart):
		return "Cannot start game"
	default:
		return "Cannot start game"
	}
}

// leaveCurrentRoom removes the connection's player from their room, if any,
// broadcasting the departure to whoever remains.
func leaveCurrentRoom(srv *GameServer, conn *connection) {
	code := conn.roomCode
	if code == "" {
		return
	}
	conn.roomCode = ""

	if hub, ok := srv.hubFor(code); ok {
		hub.remove(conn.PlayerID)
	}
	deleted := srv.Registry.LeaveRoom(code, conn.PlayerID)
	if deleted {
		return
	}
	room, ok := srv.Registry.GetRoom(code)
	if !ok {
		return
	}
	if hub, ok := srv.hubFor(code); ok {
		hub.broadcast(game.GameEvent{
			Type: game.EventPlayerLeft,
			Payload: map[string]interface{}{
				"playerId": conn.PlayerID,
				"players":  room.Players(),
			},
		})
	}
}

// writePump drains the connection's outbound channel onto the socket and
// keeps the connection alive with periodic pings.
func writePump(ctx context.Context, c *websocket.Conn, conn *connection, logger *logrus.Logger) {
	ticker := time.NewTicker(30 * time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case ev, ok := <-conn.OutChan:
			if !ok {
				return
			}
			data, err := json.Marshal(ev)
			if err != nil {
				logger.Warnf("failed to marshal outgoing %q event for player %s: %v", ev.Type, conn.PlayerID, err)
				continue
			}
			writeCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
			err = c.Write(writeCtx, websocket.MessageText, data)
			cancel()
			if err != nil {
				logger.Warnf("failed to write to websocket for player %s: %v", conn.PlayerID, err)
				return
			}
		case <-ticker.C:
			pingCtx, cancel := context.WithTimeout(ctx, 15*time.Second)
			err := c.Ping(pingCtx)
			cancel()
			if err != nil {
				logger.Warnf("ping failed for player %s, assuming disconnect: %v", conn.PlayerID, err)
				return
			}
		}
	}
}
