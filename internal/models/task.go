package models

// Task is one unit of busywork assigned to a player at game start.
// Catalog entries are immutable templates; each player receives copies,
// which additionally track completion.
type Task struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	// Duration is advisory client-side timing, in milliseconds.
	Duration  int  `json:"duration"`
	Completed bool `json:"completed"`
}

// Sabotage is a disruption a saboteur can trigger during free play.
// Purely cosmetic on the server side: it is broadcast, never enforced.
type Sabotage struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Duration    int    `json:"duration"`
}
