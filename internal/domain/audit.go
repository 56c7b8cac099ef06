package domain

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// Audit actions recorded by the commit protocol and the state machine ops.
const (
	AuditDraftStart      = "draft.start"
	AuditDraftPause      = "draft.pause"
	AuditDraftResume     = "draft.resume"
	AuditDraftRestart    = "draft.restart"
	AuditDraftPick       = "draft.pick"
	AuditDraftAutoPick   = "draft.auto_pick"
	AuditDraftUndo       = "draft.undo"
	AuditCaptainsReorder = "captains.reorder"
)

type AuditEntry struct {
	ID        uuid.UUID      `json:"id" gorm:"type:uuid;primary_key;default:gen_random_uuid()"`
	LeagueID  uuid.UUID      `json:"leagueId" gorm:"type:uuid;not null;index"`
	Action    string         `json:"action" gorm:"not null"`
	ActorType ActorType      `json:"actorType" gorm:"not null"`
	ActorID   *uuid.UUID     `json:"actorId" gorm:"type:uuid"`
	Metadata  datatypes.JSON `json:"metadata" gorm:"type:jsonb"`
	IP        string         `json:"ip"`
	CreatedAt time.Time      `json:"createdAt"`
}
