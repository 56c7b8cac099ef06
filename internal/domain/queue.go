package domain

import (
	"time"

	"github.com/google/uuid"
)

// QueueEntry is one slot in a captain's private preference list, consumed by
// autodraft when the captain's auto-pick toggle is on. Positions are unique
// per captain and reordered with the same two-phase write as draft positions.
type QueueEntry struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	CaptainID uuid.UUID `json:"captainId" gorm:"type:uuid;not null;index;uniqueIndex:idx_queue_captain_position,priority:1;uniqueIndex:idx_queue_captain_player,priority:1"`
	PlayerID  uuid.UUID `json:"playerId" gorm:"type:uuid;not null;uniqueIndex:idx_queue_captain_player,priority:2"`
	Position  int       `json:"position" gorm:"not null;uniqueIndex:idx_queue_captain_position,priority:2"`
	CreatedAt time.Time `json:"createdAt"`

	// Relations
	Player *Player `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
}
