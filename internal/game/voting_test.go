package game

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTallyStrictMaximum(t *testing.T) {
	voterA, voterC, voterD := uuid.New(), uuid.New(), uuid.New()
	targetB, targetE := uuid.New(), uuid.New()

	v := NewVotingSession("test", time.Now())
	v.Record(voterA, targetB)
	v.Record(voterC, targetB)
	v.Record(voterD, targetE)

	result := v.Tally()
	assert.Equal(t, targetB, result.Eliminated)
	assert.Equal(t, 2, result.Counts[targetB])
	assert.Equal(t, 1, result.Counts[targetE])
}

// The tally scan keeps the first target to reach the running maximum: a
// later equal count never replaces the leader. With B voted for before E
// and both ending on two votes, B is eliminated.
func TestTallyTieKeepsFirstSeenTarget(t *testing.T) {
	voters := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	targetB, targetE := uuid.New(), uuid.New()

	v := NewVotingSession("test", time.Now())
	v.Record(voters[0], targetB)
	v.Record(voters[1], targetB)
	v.Record(voters[2], targetE)
	v.Record(voters[3], targetE)

	result := v.Tally()
	assert.Equal(t, targetB, result.Eliminated, "first target to reach the max must win the tie")
	assert.Equal(t, 2, result.Counts[targetB])
	assert.Equal(t, 2, result.Counts[targetE])
}

// A later strictly greater count does replace the leader.
func TestTallyLaterStrictMaxReplacesLeader(t *testing.T) {
	voters := []uuid.UUID{uuid.New(), uuid.New(), uuid.New(), uuid.New(), uuid.New()}
	targetB, targetE := uuid.New(), uuid.New()

	v := NewVotingSession("test", time.Now())
	v.Record(voters[0], targetB)
	v.Record(voters[1], targetB)
	v.Record(voters[2], targetE)
	v.Record(voters[3], targetE)
	v.Record(voters[4], targetE)

	result := v.Tally()
	assert.Equal(t, targetE, result.Eliminated)
	assert.Equal(t, 3, result.Counts[targetE])
}

func TestRecordLastWriterWinsKeepsBallotPosition(t *testing.T) {
	voter1, voter2 := uuid.New(), uuid.New()
	targetB, targetE := uuid.New(), uuid.New()

	v := NewVotingSession("test", time.Now())
	v.Record(voter1, targetB)
	v.Record(voter2, targetE)
	require.Equal(t, 2, v.VoteCount())

	// Voter 1 changes their mind: ballot count stays, target moves.
	v.Record(voter1, targetE)
	require.Equal(t, 2, v.VoteCount())

	result := v.Tally()
	assert.Equal(t, targetE, result.Eliminated)
	assert.Equal(t, 2, result.Counts[targetE])
	assert.Zero(t, result.Counts[targetB])
}

func TestTallyNoVotes(t *testing.T) {
	v := NewVotingSession("test", time.Now())

	result := v.Tally()
	assert.Equal(t, uuid.Nil, result.Eliminated)
	assert.Empty(t, result.Counts)
}
