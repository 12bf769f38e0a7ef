package game

import (
	"math/rand"

	"github.com/officeparty/sabotage/internal/models"
)

// AssignRoles builds a shuffled role list for playerCount players:
// one saboteur up to 6 players, two beyond that; an analyst and a
// technician join at 6 players; everyone else is an employee.
// Roles are handed out to players in room insertion order, so the
// returned list's order is the assignment order.
func AssignRoles(rng *rand.Rand, playerCount int) ([]models.Role, error) {
	if playerCount < 1 {
		return nil, ErrInvalidPlayerCount
	}

	saboteurCount := 1
	if playerCount > 6 {
		saboteurCount = 2
	}

	roles := make([]models.Role, 0, playerCount)
	for i := 0; i < saboteurCount; i++ {
		roles = append(roles, models.RoleSaboteur)
	}
	if playerCount >= 6 {
		roles = append(roles, models.RoleAnalyst, models.RoleTechnician)
	}
	for len(roles) < playerCount {
		roles = append(roles, models.RoleEmployee)
	}

	// Fisher-Yates
	for i := len(roles) - 1; i > 0; i-- {
		j := rng.Intn(i + 1)
		roles[i], roles[j] = roles[j], roles[i]
	}
	return roles, nil
}
