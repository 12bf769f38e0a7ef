package game

import (
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSampleReturnsRequestedCount(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	catalog := NewTaskCatalog(rng)

	for _, count := range []int{1, 3, 12, 20} {
		tasks, err := catalog.Sample(count)
		require.NoError(t, err)
		assert.Len(t, tasks, count)
	}
}

func TestSampleDrawsWithoutReplacementUntilPoolExhausted(t *testing.T) {
	rng := rand.New(rand.NewSource(42))
	catalog := NewTaskCatalog(rng)
	poolSize := len(catalog.tasks)

	// Two full pool cycles: within each cycle every task appears exactly once.
	tasks, err := catalog.Sample(poolSize * 2)
	require.NoError(t, err)
	require.Len(t, tasks, poolSize*2)

	for cycle := 0; cycle < 2; cycle++ {
		seen := make(map[string]bool, poolSize)
		for _, task := range tasks[cycle*poolSize : (cycle+1)*poolSize] {
			assert.False(t, seen[task.ID], "task %s repeated within one pool cycle", task.ID)
			seen[task.ID] = true
		}
		assert.Len(t, seen, poolSize)
	}
}

func TestSampleEmptyCatalog(t *testing.T) {
	catalog := &TaskCatalog{rng: rand.New(rand.NewSource(1))}

	_, err := catalog.Sample(3)
	assert.ErrorIs(t, err, ErrEmptyCatalog)
}

func TestRandomSabotageDrawsFromPool(t *testing.T) {
	rng := rand.New(rand.NewSource(7))
	catalog := NewTaskCatalog(rng)

	valid := make(map[string]bool)
	for _, s := range catalog.sabotages {
		valid[s.ID] = true
	}
	for i := 0; i < 20; i++ {
		sab := catalog.RandomSabotage()
		assert.True(t, valid[sab.ID], "unexpected sabotage id %s", sab.ID)
	}
}
