package domain

import (
	"time"

	"github.com/google/uuid"
)

// Player is a draftable person. DraftedBy and PickNumber are set together by
// a committed pick and cleared together by undo/restart; a player whose id
// appears as some captain's PlayerID never enters the pool.
type Player struct {
	ID         uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LeagueID   uuid.UUID  `json:"leagueId" gorm:"type:uuid;not null;index"`
	Name       string     `json:"name" gorm:"not null"`
	DraftedBy  *uuid.UUID `json:"draftedBy" gorm:"type:uuid;index"`
	PickNumber *int       `json:"pickNumber"`
	CreatedAt  time.Time  `json:"createdAt"`
	UpdatedAt  time.Time  `json:"updatedAt"`
}

func (p *Player) Drafted() bool {
	return p.DraftedBy != nil
}
