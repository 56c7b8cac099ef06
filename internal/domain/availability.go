package domain

import "github.com/google/uuid"

// AvailablePlayers derives the draftable pool: players that are not yet
// drafted and are not linked to any captain. The commit protocol and the
// snapshot both go through this function so enforcement and what clients see
// can never diverge.
func AvailablePlayers(players []*Player, captains []*Captain) []*Player {
	captainLinked := make(map[uuid.UUID]bool, len(captains))
	for _, c := range captains {
		if c.PlayerID != nil {
			captainLinked[*c.PlayerID] = true
		}
	}

	available := make([]*Player, 0, len(players))
	for _, p := range players {
		if p.Drafted() || captainLinked[p.ID] {
			continue
		}
		available = append(available, p)
	}
	return available
}

// TotalPicks is the number of turns the draft will take: everyone still in
// the pool plus everyone already picked.
func TotalPicks(players []*Player, captains []*Captain, picksMade int) int {
	return len(AvailablePlayers(players, captains)) + picksMade
}
