package models

import "github.com/google/uuid"

// Role is a player's hidden role, assigned when the game starts.
type Role string

const (
	RoleEmployee   Role = "employee"
	RoleSaboteur   Role = "saboteur"
	RoleAnalyst    Role = "analyst"
	RoleTechnician Role = "technician"
)

// Player is one participant in a room. Role is empty until the host
// starts the game.
type Player struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Role           Role      `json:"role,omitempty"`
	IsAlive        bool      `json:"isAlive"`
	IsHost         bool      `json:"isHost"`
	TasksCompleted int       `json:"tasksCompleted"`
	Tasks          []Task    `json:"tasks,omitempty"`
}

// PlayerStats is the progress snapshot sent back after a task completion.
type PlayerStats struct {
	ID             uuid.UUID `json:"id"`
	Name           string    `json:"name"`
	Role           Role      `json:"role,omitempty"`
	IsAlive        bool      `json:"isAlive"`
	TasksCompleted int       `json:"tasksCompleted"`
	TotalTasks     int       `json:"totalTasks"`
	Progress       float64   `json:"progress"`
}

// Stats builds the progress snapshot for this player.
func (p *Player) Stats() PlayerStats {
	progress := 0.0
	if len(p.Tasks) > 0 {
		progress = float64(p.TasksCompleted) / float64(len(p.Tasks)) * 100
	}
	return PlayerStats{
		ID:             p.ID,
		Name:           p.Name,
		Role:           p.Role,
		IsAlive:        p.IsAlive,
		TasksCompleted: p.TasksCompleted,
		TotalTasks:     len(p.Tasks),
		Progress:       progress,
	}
}
