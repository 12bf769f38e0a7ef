package game

import (
	"math/rand"

	"github.com/officeparty/sabotage/internal/models"
)

// defaultTasks is the built-in pool of office busywork.
var defaultTasks = []models.Task{
	{ID: "task1", Name: "File the report", Description: "Complete the monthly sales report", Category: "normal", Duration: 30000},
	{ID: "task2", Name: "Check inventory", Description: "Verify the warehouse inventory", Category: "normal", Duration: 45000},
	{ID: "task3", Name: "Update the database", Description: "Sync the database with the server", Category: "normal", Duration: 60000},
	{ID: "task4", Name: "Configure the module", Description: "Set up the new accounting module", Category: "normal", Duration: 40000},
	{ID: "task5", Name: "Review errors", Description: "Find and fix errors in the system", Category: "normal", Duration: 35000},
}

// defaultSabotages is the built-in pool of saboteur disruptions.
var defaultSabotages = []models.Sabotage{
	{ID: "sabotage1", Name: "Cut the power", Description: "Shut down the server power", Category: "critical", Duration: 120000},
	{ID: "sabotage2", Name: "Corrupt the database", Description: "Corrupt the main database", Category: "critical", Duration: 90000},
	{ID: "sabotage3", Name: "Block the network", Description: "Block the network connection", Category: "normal", Duration: 60000},
}

// TaskCatalog is a fixed pool of task definitions with a sampling strategy
// that avoids immediate repetition: tasks are drawn without replacement, and
// the working pool is refilled from the full catalog only once exhausted.
// Long task lists therefore contain repeats across refills, but no two
// consecutively drawn tasks are identical unless the pool size is 1.
type TaskCatalog struct {
	tasks     []models.Task
	sabotages []models.Sabotage
	rng       *rand.Rand
}

// NewTaskCatalog builds a catalog over the built-in pools. The random source
// is injectable so tests can pin draws.
func NewTaskCatalog(rng *rand.Rand) *TaskCatalog {
	return &TaskCatalog{
		tasks:     defaultTasks,
		sabotages: defaultSabotages,
		rng:       rng,
	}
}

// Sample returns count task copies drawn from the pool without replacement,
// refilling the pool from the catalog whenever it empties.
func (c *TaskCatalog) Sample(count int) ([]models.Task, error) {
	if len(c.tasks) == 0 {
		return nil, ErrEmptyCatalog
	}

	var pool []models.Task
	selected := make([]models.Task, 0, count)
	for len(selected) < count {
		if len(pool) == 0 {
			pool = make([]models.Task, len(c.tasks))
			copy(pool, c.tasks)
		}
		i := c.rng.Intn(len(pool))
		selected = append(selected, pool[i])
		pool = append(pool[:i], pool[i+1:]...)
	}
	return selected, nil
}

// RandomSabotage returns a copy of one sabotage drawn uniformly from the pool.
func (c *TaskCatalog) RandomSabotage() models.Sabotage {
	return c.sabotages[c.rng.Intn(len(c.sabotages))]
}
