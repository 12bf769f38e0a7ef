package handlers

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/coder/websocket"
	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/officeparty/sabotage/internal/game"
)

// newTestConn builds a connection without a real socket; events land in
// OutChan and are drained by the assertions.
func newTestConn() *connection {
	logger := logrus.New()
	logger.SetOutput(io.Discard)
	return &connection{
		PlayerID: uuid.New(),
		OutChan:  make(chan game.GameEvent, 64),
		logger:   logger,
	}
}

func drainEvents(conn *connection) []game.GameEvent {
	var out []game.GameEvent
	for {
		select {
		case ev := <-conn.OutChan:
			out = append(out, ev)
		default:
			return out
		}
	}
}

func lastEventOfType(events []game.GameEvent, t game.GameEventType) *game.GameEvent {
	for i := len(events) - 1; i >= 0; i-- {
		if events[i].Type == t {
			return &events[i]
		}
	}
	return nil
}

func TestCreateAndJoinRoomFlow(t *testing.T) {
	srv := newTestServer(t)
	logger := srv.logger
	host := newTestConn()

	handleClientMessage(srv, host, clientMessage{Type: "create_room", PlayerName: "alice"}, logger)

	events := drainEvents(host)
	created := lastEventOfType(events, game.EventRoomCreated)
	require.NotNil(t, created, "host receives room_created")
	roomCode := created.Payload["roomCode"].(string)
	require.Equal(t, roomCode, host.roomCode)

	joiner := newTestConn()
	handleClientMessage(srv, joiner, clientMessage{Type: "join_room", RoomCode: roomCode, PlayerName: "bob"}, logger)

	joinEv := lastEventOfType(drainEvents(joiner), game.EventPlayerJoined)
	require.NotNil(t, joinEv, "joiner receives player_joined")
	hostNotice := lastEventOfType(drainEvents(host), game.EventPlayerJoined)
	require.NotNil(t, hostNotice, "host is notified of the join")

	room, ok := srv.Registry.GetRoom(roomCode)
	require.True(t, ok)
	assert.Equal(t, 2, room.PlayerCount())

	// Joining a second room while in one is rejected.
	handleClientMessage(srv, joiner, clientMessage{Type: "join_room", RoomCode: roomCode, PlayerName: "bob"}, logger)
	errEv := lastEventOfType(drainEvents(joiner), game.EventError)
	require.NotNil(t, errEv)
}

func TestJoinRoomErrorsReachActorOnly(t *testing.T) {
	srv := newTestServer(t)
	logger := srv.logger

	conn := newTestConn()
	handleClientMessage(srv, conn, clientMessage{Type: "join_room", RoomCode: "0000", PlayerName: "bob"}, logger)

	errEv := lastEventOfType(drainEvents(conn), game.EventError)
	require.NotNil(t, errEv)
	assert.Contains(t, errEv.Payload["message"], "not found")
}

func TestWSClosesWithAuthCodeWhenIdentityFails(t *testing.T) {
	srv := newTestServer(t)
	srv.resolveGuest = func(http.ResponseWriter, *http.Request) (uuid.UUID, error) {
		return uuid.Nil, errors.New("identity unavailable")
	}

	ts := httptest.NewServer(RoomWSHandler(srv.logger, srv))
	defer ts.Close()

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	c, _, err := websocket.Dial(ctx, "ws"+strings.TrimPrefix(ts.URL, "http"), &websocket.DialOptions{
		Subprotocols: []string{"sabotage"},
	})
	require.NoError(t, err)
	defer c.CloseNow()

	_, _, err = c.Read(ctx)
	require.Error(t, err)
	assert.Equal(t, websocket.StatusCode(InvalidAuthTokenError), websocket.CloseStatus(err))
}

func TestFullGameOverWS(t *testing.T) {
	srv := newTestServer(t)
	logger := srv.logger

	host := newTestConn()
	handleClientMessage(srv, host, clientMessage{Type: "create_room", PlayerName: "p0"}, logger)
	created := lastEventOfType(drainEvents(host), game.EventRoomCreated)
	require.NotNil(t, created)
	roomCode := created.Payload["roomCode"].(string)

	conns := []*connection{host}
	for i := 1; i < 4; i++ {
		conn := newTestConn()
		handleClientMessage(srv, conn, clientMessage{Type: "join_room", RoomCode: roomCode, PlayerName: "p"}, logger)
		conns = append(conns, conn)
	}

	// Non-host cannot start.
	handleClientMessage(srv, conns[1], clientMessage{Type: "start_game"}, logger)
	errEv := lastEventOfType(drainEvents(conns[1]), game.EventError)
	require.NotNil(t, errEv)
	assert.Equal(t, "Only host can start the game", errEv.Payload["message"])

	handleClientMessage(srv, host, clientMessage{Type: "start_game"}, logger)
	room, ok := srv.Registry.GetRoom(roomCode)
	require.True(t, ok)
	require.Equal(t, game.StatePlaying, room.CurrentState())
	for _, conn := range conns {
		started := lastEventOfType(drainEvents(conn), game.EventGameStarted)
		assert.NotNil(t, started, "every player sees game_started")
	}

	// Chat is a pure pass-through broadcast carrying the sender's name.
	handleClientMessage(srv, conns[1], clientMessage{Type: "chat", Message: "hello"}, logger)
	chatEv := lastEventOfType(drainEvents(conns[2]), game.EventChat)
	require.NotNil(t, chatEv)
	assert.Equal(t, "hello", chatEv.Payload["message"])
	assert.Equal(t, conns[1].Name, chatEv.Payload["playerName"])
	assert.Equal(t, game.StatePlaying, room.CurrentState())

	// Meeting and voting ride the same dispatch path.
	handleClientMessage(srv, conns[1], clientMessage{Type: "call_meeting", Reason: "sus"}, logger)
	require.Equal(t, game.StateMeeting, room.CurrentState())
	meetingEv := lastEventOfType(drainEvents(conns[3]), game.EventMeetingCalled)
	require.NotNil(t, meetingEv)

	// Self-vote bounces back to the voter only.
	handleClientMessage(srv, conns[1], clientMessage{Type: "cast_vote", TargetID: conns[1].PlayerID.String()}, logger)
	errEv = lastEventOfType(drainEvents(conns[1]), game.EventError)
	require.NotNil(t, errEv)
	assert.Equal(t, "Invalid vote", errEv.Payload["message"])

	// Disconnect removes the player and notifies the room.
	leaveCurrentRoom(srv, conns[3])
	assert.Equal(t, 3, room.PlayerCount())
	leftEv := lastEventOfType(drainEvents(host), game.EventPlayerLeft)
	require.NotNil(t, leftEv)
	assert.Equal(t, "", conns[3].roomCode)
}
