package domain

import (
	"time"

	"github.com/google/uuid"
)

// DraftPick is the append-only ledger of committed turns. Pick numbers are
// 1-based and gap-free; the unique indexes back the commit protocol's
// stale-state check at the storage level.
type DraftPick struct {
	ID         uuid.UUID `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LeagueID   uuid.UUID `json:"leagueId" gorm:"type:uuid;not null;index;uniqueIndex:idx_picks_league_number,priority:1;uniqueIndex:idx_picks_league_player,priority:1"`
	CaptainID  uuid.UUID `json:"captainId" gorm:"type:uuid;not null;index"`
	PlayerID   uuid.UUID `json:"playerId" gorm:"type:uuid;not null;uniqueIndex:idx_picks_league_player,priority:2"`
	PickNumber int       `json:"pickNumber" gorm:"not null;uniqueIndex:idx_picks_league_number,priority:2"`
	IsAutoPick bool      `json:"isAutoPick" gorm:"not null;default:false"`
	CreatedAt  time.Time `json:"createdAt"`

	// Relations
	Captain *Captain `json:"captain,omitempty" gorm:"foreignKey:CaptainID"`
	Player  *Player  `json:"player,omitempty" gorm:"foreignKey:PlayerID"`
}
