package domain

import (
	"time"

	"github.com/google/uuid"
)

type DraftAlgorithm string

const (
	DraftAlgorithmSnake      DraftAlgorithm = "snake"
	DraftAlgorithmRoundRobin DraftAlgorithm = "round_robin"
)

type LeagueStatus string

const (
	LeagueStatusNotStarted LeagueStatus = "not_started"
	LeagueStatusInProgress LeagueStatus = "in_progress"
	LeagueStatusPaused     LeagueStatus = "paused"
	LeagueStatusCompleted  LeagueStatus = "completed"
)

type League struct {
	ID                   uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	Name                 string         `json:"name" gorm:"not null"`
	CreatedBy            uuid.UUID      `json:"createdBy" gorm:"type:uuid;not null;index"`
	DraftAlgorithm       DraftAlgorithm `json:"draftAlgorithm" gorm:"not null;default:'snake'"`
	TimeLimitSeconds     int            `json:"timeLimitSeconds" gorm:"not null;default:60"`
	Status               LeagueStatus   `json:"status" gorm:"not null;default:'not_started';index"`
	CurrentPickIndex     int            `json:"currentPickIndex" gorm:"not null;default:0"`
	CurrentPickStartedAt *time.Time     `json:"currentPickStartedAt"`
	ScheduledStartAt     *time.Time     `json:"scheduledStartAt"`
	SpectatorToken       string         `json:"-" gorm:"uniqueIndex;not null"`
	CreatedAt            time.Time      `json:"createdAt"`
	UpdatedAt            time.Time      `json:"updatedAt"`

	// Relations
	Owner *User `json:"owner,omitempty" gorm:"foreignKey:CreatedBy"`
}

// legalTransitions is the draft state machine. Completion is reached from
// in_progress when the pool drains; restart is the only way out of paused
// besides resume, and it is destructive.
var legalTransitions = map[LeagueStatus][]LeagueStatus{
	LeagueStatusNotStarted: {LeagueStatusInProgress},
	LeagueStatusInProgress: {LeagueStatusPaused, LeagueStatusCompleted},
	LeagueStatusPaused:     {LeagueStatusInProgress, LeagueStatusNotStarted},
	LeagueStatusCompleted:  {},
}

func ValidTransition(from, to LeagueStatus) bool {
	for _, next := range legalTransitions[from] {
		if next == to {
			return true
		}
	}
	return false
}

// AutoPickEligibleAt returns the earliest instant the server accepts an
// auto-pick for the current turn: the per-pick limit minus the grace window,
// so a caller whose clock runs slightly ahead is not rejected. Meaningful
// only while the league is in progress.
func (l *League) AutoPickEligibleAt(grace time.Duration) (time.Time, bool) {
	if l.Status != LeagueStatusInProgress || l.CurrentPickStartedAt == nil {
		return time.Time{}, false
	}
	limit := time.Duration(l.TimeLimitSeconds) * time.Second
	return l.CurrentPickStartedAt.Add(limit - grace), true
}
