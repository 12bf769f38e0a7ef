package game

import (
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/officeparty/sabotage/internal/models"
)

// GameState is the lifecycle phase of a room.
type GameState string

const (
	StateLobby   GameState = "lobby"
	StatePlaying GameState = "playing"
	StateMeeting GameState = "meeting"
	StateEnded   GameState = "ended"
)

// Winner identifies which faction won a finished game.
type Winner string

const (
	WinnerNone      Winner = ""
	WinnerSaboteurs Winner = "saboteurs"
	WinnerEmployees Winner = "employees"
)

const (
	// MaxPlayers caps room membership.
	MaxPlayers = 8
	// MinPlayersToStart gates the lobby -> playing transition.
	MinPlayersToStart = 4
)

// GameRoom holds the entire state for one game session in memory. All
// mutating operations serialize on Mu, so a vote that reaches quorum
// tallies and transitions atomically before the next action is handled.
//
// Players keep insertion order throughout: roles and task chunks are
// assigned positionally, and host promotion after the host leaves picks
// the first remaining player.
type GameRoom struct {
	RoomCode  string
	HostID    uuid.UUID
	State     GameState
	CreatedAt time.Time

	players       []*models.Player
	currentVoting *VotingSession

	catalog *TaskCatalog
	rng     *rand.Rand
	now     func() time.Time

	Mu sync.Mutex

	// BroadcastFn sends game-flow events to every connected player.
	// If nil, no broadcast is done (tests inject a collector).
	BroadcastFn BroadcastFunc

	// OnAction, when set, receives a record of each accepted mutating
	// operation for the history recorder.
	OnAction ActionFunc
}

// NewGameRoom builds an empty room in the lobby state. The host is not yet
// a member; the registry adds them as the first player.
func NewGameRoom(roomCode string, hostID uuid.UUID, catalog *TaskCatalog, rng *rand.Rand, now func() time.Time) *GameRoom {
	if now == nil {
		now = time.Now
	}
	return &GameRoom{
		RoomCode:  roomCode,
		HostID:    hostID,
		State:     StateLobby,
		CreatedAt: now(),
		catalog:   catalog,
		rng:       rng,
		now:       now,
	}
}

// AddPlayer appends a player in insertion order. Only a lobby-state room
// accepts joins; the gate lives here, under the room lock, so a join can
// never interleave with a concurrent StartGame. Fails with ErrRoomFull at
// capacity.
func (r *GameRoom) AddPlayer(playerID uuid.UUID, name string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StateLobby {
		return ErrWrongState
	}
	if len(r.players) >= MaxPlayers {
		return ErrRoomFull
	}
	r.players = append(r.players, &models.Player{
		ID:      playerID,
		Name:    name,
		IsAlive: true,
		IsHost:  playerID == r.HostID,
	})
	return nil
}

// RemovePlayer removes a player, promoting the first remaining player to
// host if the host left. Returns the removed player (nil if unknown) and
// whether the room is now empty. Mid-game no role or vote rebalancing
// happens: a removed voter's ballot stays counted.
func (r *GameRoom) RemovePlayer(playerID uuid.UUID) (*models.Player, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	idx := -1
	for i, p := range r.players {
		if p.ID == playerID {
			idx = i
			break
		}
	}
	if idx == -1 {
		return nil, len(r.players) == 0
	}

	removed := r.players[idx]
	r.players = append(r.players[:idx], r.players[idx+1:]...)

	if removed.IsHost && len(r.players) > 0 {
		newHost := r.players[0]
		newHost.IsHost = true
		r.HostID = newHost.ID
	}
	return removed, len(r.players) == 0
}

// StartGame transitions lobby -> playing: host-only, at least four players.
// Roles are assigned to players in insertion order, then every player gets
// the same number of tasks (3 or 4, one draw per start) as a contiguous
// slice of a single catalog sample.
func (r *GameRoom) StartGame(requesterID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StateLobby {
		return ErrWrongState
	}
	requester := r.getPlayerLocked(requesterID)
	if requester == nil || !requester.IsHost {
		return ErrNotHost
	}
	if len(r.players) < MinPlayersToStart {
		return ErrNotReadyToStart
	}

	roles, err := AssignRoles(r.rng, len(r.players))
	if err != nil {
		return err
	}

	tasksPerPlayer := 3 + r.rng.Intn(2)
	allTasks, err := r.catalog.Sample(len(r.players) * tasksPerPlayer)
	if err != nil {
		return err
	}

	for i, p := range r.players {
		p.Role = roles[i]
		p.Tasks = allTasks[i*tasksPerPlayer : (i+1)*tasksPerPlayer]
		p.TasksCompleted = 0
	}
	r.State = StatePlaying

	r.broadcastLocked(GameEvent{
		Type:    EventGameStarted,
		Payload: map[string]interface{}{"players": r.playersSnapshotLocked()},
	})
	r.logActionLocked("start_game", requesterID, map[string]interface{}{
		"tasksPerPlayer": tasksPerPlayer,
	})
	return nil
}

// CallMeeting transitions playing -> meeting and opens a fresh voting
// session. The caller must be a living member of the room.
func (r *GameRoom) CallMeeting(playerID uuid.UUID, reason string) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StatePlaying {
		return ErrWrongState
	}
	caller := r.getPlayerLocked(playerID)
	if caller == nil || !caller.IsAlive {
		return ErrInvalidVote
	}

	r.State = StateMeeting
	r.currentVoting = NewVotingSession(reason, r.now())

	r.broadcastLocked(GameEvent{
		Type: EventMeetingCalled,
		Payload: map[string]interface{}{
			"calledBy": map[string]interface{}{"id": caller.ID, "name": caller.Name},
			"reason":   reason,
			"players":  r.playersSnapshotLocked(),
		},
	})
	r.logActionLocked("call_meeting", playerID, map[string]interface{}{"reason": reason})
	return nil
}

// ReportBody is CallMeeting with a fixed reason.
func (r *GameRoom) ReportBody(playerID uuid.UUID) error {
	return r.CallMeeting(playerID, "Body reported")
}

// CastVote records a ballot during a meeting. A repeat vote by the same
// voter overwrites the earlier one. When every living player has voted the
// session tallies immediately: the plurality target (first-to-max on ties)
// is eliminated, the win condition is evaluated, and the room transitions
// to ended or back to playing.
func (r *GameRoom) CastVote(voterID, targetID uuid.UUID) error {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StateMeeting || r.currentVoting == nil {
		return ErrInvalidVote
	}
	voter := r.getPlayerLocked(voterID)
	target := r.getPlayerLocked(targetID)
	if voter == nil || target == nil || !voter.IsAlive || voterID == targetID {
		return ErrInvalidVote
	}

	r.currentVoting.Record(voterID, targetID)
	r.logActionLocked("cast_vote", voterID, map[string]interface{}{"target": targetID.String()})

	if r.currentVoting.VoteCount() == r.aliveCountLocked() {
		r.resolveMeetingLocked()
	}
	return nil
}

// resolveMeetingLocked tallies the current voting session, applies the
// elimination, checks the win condition and transitions the room state.
// Assumes the lock is held and a session is present.
func (r *GameRoom) resolveMeetingLocked() {
	result := r.currentVoting.Tally()
	r.currentVoting = nil

	var eliminated *models.Player
	if result.Eliminated != uuid.Nil {
		eliminated = r.getPlayerLocked(result.Eliminated)
		if eliminated != nil {
			eliminated.IsAlive = false
		}
	}

	counts := make(map[string]int, len(result.Counts))
	for targetID, n := range result.Counts {
		counts[targetID.String()] = n
	}
	payload := map[string]interface{}{"voteCount": counts}
	if eliminated != nil {
		payload["eliminated"] = *eliminated
	}
	r.broadcastLocked(GameEvent{Type: EventVotingResults, Payload: payload})

	if winner := r.checkWinConditionLocked(); winner != WinnerNone {
		r.State = StateEnded
		r.broadcastLocked(GameEvent{
			Type: EventGameEnded,
			Payload: map[string]interface{}{
				"winner":  winner,
				"players": r.playersSnapshotLocked(),
			},
		})
		return
	}

	r.State = StatePlaying
	r.broadcastLocked(GameEvent{
		Type:    EventMeetingEnded,
		Payload: map[string]interface{}{"players": r.playersSnapshotLocked()},
	})
}

// checkWinConditionLocked evaluates the faction win condition. Saboteurs
// win on reaching numeric parity with the living (real division: one
// saboteur among two alive wins); employees win once no saboteur lives.
// Only meeting resolution calls this; eliminations happen nowhere else.
func (r *GameRoom) checkWinConditionLocked() Winner {
	alive := 0
	aliveSaboteurs := 0
	for _, p := range r.players {
		if !p.IsAlive {
			continue
		}
		alive++
		if p.Role == models.RoleSaboteur {
			aliveSaboteurs++
		}
	}

	if float64(aliveSaboteurs) >= float64(alive)/2 {
		return WinnerSaboteurs
	}
	if aliveSaboteurs == 0 {
		return WinnerEmployees
	}
	return WinnerNone
}

// CompleteTask marks the player's task completed and increments their
// counter. The increment is unconditional: completing the same task twice
// counts twice, mirroring the historical behavior clients rely on.
// Unknown task ids fail with ErrUnknownTask, which the dispatch layer
// swallows to tolerate stale or duplicate client messages.
func (r *GameRoom) CompleteTask(playerID uuid.UUID, taskID string) (models.PlayerStats, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StatePlaying {
		return models.PlayerStats{}, ErrWrongState
	}
	player := r.getPlayerLocked(playerID)
	if player == nil || !player.IsAlive {
		return models.PlayerStats{}, ErrWrongState
	}

	found := false
	for i := range player.Tasks {
		if player.Tasks[i].ID == taskID {
			player.Tasks[i].Completed = true
			found = true
			break
		}
	}
	if !found {
		return models.PlayerStats{}, ErrUnknownTask
	}
	player.TasksCompleted++

	stats := player.Stats()
	r.broadcastLocked(GameEvent{
		Type: EventTaskCompleted,
		Payload: map[string]interface{}{
			"playerId": playerID,
			"taskId":   taskID,
			"progress": stats,
		},
	})
	r.logActionLocked("complete_task", playerID, map[string]interface{}{"taskId": taskID})
	return stats, nil
}

// TriggerSabotage lets a living saboteur broadcast a random sabotage during
// free play. No room state changes; the effect is client-side theater.
func (r *GameRoom) TriggerSabotage(playerID uuid.UUID) (models.Sabotage, error) {
	r.Mu.Lock()
	defer r.Mu.Unlock()

	if r.State != StatePlaying {
		return models.Sabotage{}, ErrWrongState
	}
	player := r.getPlayerLocked(playerID)
	if player == nil || !player.IsAlive || player.Role != models.RoleSaboteur {
		return models.Sabotage{}, ErrWrongState
	}

	sab := r.catalog.RandomSabotage()
	r.broadcastLocked(GameEvent{
		Type:    EventSabotageTriggered,
		Payload: map[string]interface{}{"sabotage": sab},
	})
	r.logActionLocked("sabotage", playerID, map[string]interface{}{"sabotageId": sab.ID})
	return sab, nil
}

// Players returns a snapshot copy of the member list in insertion order.
func (r *GameRoom) Players() []models.Player {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.playersSnapshotLocked()
}

// GetPlayer returns a snapshot of one player and whether they are a member.
func (r *GameRoom) GetPlayer(playerID uuid.UUID) (models.Player, bool) {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	p := r.getPlayerLocked(playerID)
	if p == nil {
		return models.Player{}, false
	}
	return *p, true
}

// PlayerCount returns the current member count.
func (r *GameRoom) PlayerCount() int {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return len(r.players)
}

// CurrentState returns the room's lifecycle phase.
func (r *GameRoom) CurrentState() GameState {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.State
}

// CurrentVoting returns the active voting session, or nil outside meetings.
func (r *GameRoom) CurrentVoting() *VotingSession {
	r.Mu.Lock()
	defer r.Mu.Unlock()
	return r.currentVoting
}

func (r *GameRoom) getPlayerLocked(playerID uuid.UUID) *models.Player {
	for _, p := range r.players {
		if p.ID == playerID {
			return p
		}
	}
	return nil
}

func (r *GameRoom) aliveCountLocked() int {
	n := 0
	for _, p := range r.players {
		if p.IsAlive {
			n++
		}
	}
	return n
}

func (r *GameRoom) playersSnapshotLocked() []models.Player {
	out := make([]models.Player, 0, len(r.players))
	for _, p := range r.players {
		out = append(out, *p)
	}
	return out
}

// broadcastLocked pushes an event through BroadcastFn. Safe to call with
// the lock held: the transport's send path is non-blocking.
func (r *GameRoom) broadcastLocked(ev GameEvent) {
	if r.BroadcastFn != nil {
		r.BroadcastFn(ev)
	}
}

func (r *GameRoom) logActionLocked(actionType string, actorID uuid.UUID, payload map[string]interface{}) {
	if r.OnAction != nil {
		r.OnAction(actionType, actorID, payload)
	}
}
