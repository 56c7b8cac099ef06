package domain

import (
	"time"

	"github.com/google/uuid"
)

// Captain is a drafting seat within a league. DraftPosition is the sort key
// for the turn order and must stay a contiguous 1..N sequence per league;
// the unique index enforces that even mid-reorder, which is why reorders use
// the two-phase write in the captain repository.
type Captain struct {
	ID              uuid.UUID  `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LeagueID        uuid.UUID  `json:"leagueId" gorm:"type:uuid;not null;index;uniqueIndex:idx_captains_league_position,priority:1"`
	Name            string     `json:"name" gorm:"not null"`
	DraftPosition   int        `json:"draftPosition" gorm:"not null;uniqueIndex:idx_captains_league_position,priority:2"`
	PlayerID        *uuid.UUID `json:"playerId" gorm:"type:uuid"`
	AutoPickEnabled bool       `json:"autoPickEnabled" gorm:"not null;default:false"`
	AccessToken     string     `json:"-" gorm:"uniqueIndex;not null"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`

	// Relations
	Player *Player `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
}
