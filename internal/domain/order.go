package domain

import (
	"sort"

	"github.com/google/uuid"
)

// SortCaptainsByPosition returns the captains ordered by draft position
// ascending without mutating the input slice.
func SortCaptainsByPosition(captains []*Captain) []*Captain {
	sorted := make([]*Captain, len(captains))
	copy(sorted, captains)
	sort.Slice(sorted, func(i, j int) bool {
		return sorted[i].DraftPosition < sorted[j].DraftPosition
	})
	return sorted
}

// CaptainAtPick maps a 0-based pick index to the acting captain. Round robin
// repeats the position order every round; snake reverses it on odd rounds.
// Total for any pickIndex >= 0, so callers can preview turns that have not
// happened yet. Returns nil when the league has no captains.
func CaptainAtPick(captains []*Captain, pickIndex int, algorithm DraftAlgorithm) *Captain {
	n := len(captains)
	if n == 0 || pickIndex < 0 {
		return nil
	}
	sorted := SortCaptainsByPosition(captains)

	round := pickIndex / n
	posInRound := pickIndex % n
	if algorithm == DraftAlgorithmSnake && round%2 == 1 {
		return sorted[n-1-posInRound]
	}
	return sorted[posInRound]
}

// UpcomingOrder previews the captains acting at pickIndex fromIndex,
// fromIndex+1, ... for count turns.
func UpcomingOrder(captains []*Captain, fromIndex, count int, algorithm DraftAlgorithm) []uuid.UUID {
	if len(captains) == 0 || count <= 0 {
		return nil
	}
	order := make([]uuid.UUID, 0, count)
	for i := 0; i < count; i++ {
		c := CaptainAtPick(captains, fromIndex+i, algorithm)
		if c == nil {
			break
		}
		order = append(order, c.ID)
	}
	return order
}
