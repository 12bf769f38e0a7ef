package game

import (
	"time"

	"github.com/google/uuid"
)

// MeetingDuration is advisory metadata sent to clients; the server does not
// force-resolve a meeting when it elapses.
const MeetingDuration = 2 * time.Minute

// VotingSession is the ephemeral ballot box for one meeting. Ballots keep
// their insertion order: a voter changing their vote overwrites the target
// but keeps the original position, which is what makes the tally's tie rule
// deterministic.
type VotingSession struct {
	Reason    string
	StartTime time.Time
	Duration  time.Duration

	votes map[uuid.UUID]uuid.UUID
	order []uuid.UUID
}

// NewVotingSession opens an empty ballot box for a meeting.
func NewVotingSession(reason string, now time.Time) *VotingSession {
	return &VotingSession{
		Reason:    reason,
		StartTime: now,
		Duration:  MeetingDuration,
		votes:     make(map[uuid.UUID]uuid.UUID),
	}
}

// Record stores voterID's ballot for targetID. A repeat vote by the same
// voter overwrites the previous target (last writer wins).
func (v *VotingSession) Record(voterID, targetID uuid.UUID) {
	if _, voted := v.votes[voterID]; !voted {
		v.order = append(v.order, voterID)
	}
	v.votes[voterID] = targetID
}

// VoteCount returns how many distinct voters have cast a ballot.
func (v *VotingSession) VoteCount() int {
	return len(v.votes)
}

// TallyResult is the outcome of a resolved meeting.
type TallyResult struct {
	// Eliminated is the voted-out player, or uuid.Nil if nobody received
	// a strict maximum of votes.
	Eliminated uuid.UUID
	// Counts is votes received per target.
	Counts map[uuid.UUID]int
}

// Tally counts votes per target and picks the winner of the plurality.
// The scan keeps the first target to reach the running maximum: a later
// count strictly greater than the leader replaces it, an equal count does
// not. Ties therefore resolve in favor of whichever target was first voted
// for, not by timestamp.
func (v *VotingSession) Tally() TallyResult {
	counts := make(map[uuid.UUID]int, len(v.votes))
	var targetOrder []uuid.UUID
	for _, voterID := range v.order {
		targetID := v.votes[voterID]
		if _, seen := counts[targetID]; !seen {
			targetOrder = append(targetOrder, targetID)
		}
		counts[targetID]++
	}

	maxVotes := 0
	eliminated := uuid.Nil
	for _, targetID := range targetOrder {
		if counts[targetID] > maxVotes {
			maxVotes = counts[targetID]
			eliminated = targetID
		}
	}

	return TallyResult{Eliminated: eliminated, Counts: counts}
}
