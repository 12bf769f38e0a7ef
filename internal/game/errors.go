package game

import "errors"

// Recoverable operation errors. Each one fails a single operation and is
// reported back to the originating player only; none of them terminate a
// room or leave it partially mutated.
var (
	ErrRoomNotFound       = errors.New("room not found")
	ErrRoomFull           = errors.New("room is full")
	ErrNotHost            = errors.New("only the host can do that")
	ErrNotReadyToStart    = errors.New("not enough players to start")
	ErrInvalidVote        = errors.New("invalid vote")
	ErrInvalidPlayerCount = errors.New("invalid player count")
	ErrUnknownTask        = errors.New("unknown task")
	ErrEmptyCatalog       = errors.New("task catalog is empty")
	ErrWrongState         = errors.New("operation not valid in current game state")
)
