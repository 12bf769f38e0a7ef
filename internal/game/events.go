package game

import "github.com/google/uuid"

// GameEventType is an enum-like type for broadcasting room events.
type GameEventType string

const (
	EventRoomCreated       GameEventType = "room_created"
	EventPlayerJoined      GameEventType = "player_joined"
	EventPlayerLeft        GameEventType = "player_left"
	EventGameStarted       GameEventType = "game_started"
	EventChat              GameEventType = "chat"
	EventMeetingCalled     GameEventType = "meeting_called"
	EventVotingResults     GameEventType = "voting_results"
	EventMeetingEnded      GameEventType = "meeting_ended"
	EventGameEnded         GameEventType = "game_ended"
	EventTaskCompleted     GameEventType = "task_completed"
	EventSabotageTriggered GameEventType = "sabotage_triggered"
	EventError             GameEventType = "error"
)

// GameEvent holds data about a room event in a consistent broadcast format.
// Payload carries event-specific fields keyed by their wire names.
type GameEvent struct {
	Type    GameEventType          `json:"type"`
	Payload map[string]interface{} `json:"payload,omitempty"`
}

// BroadcastFunc sends an event to every connected player in a room.
type BroadcastFunc func(ev GameEvent)

// ActionFunc receives a record of each accepted mutating operation,
// e.g. for the history recorder. Must not block.
type ActionFunc func(actionType string, actorID uuid.UUID, payload map[string]interface{})
