package domain

import "github.com/google/uuid"

type ActorType string

const (
	ActorManager   ActorType = "manager"
	ActorCaptain   ActorType = "captain"
	ActorSpectator ActorType = "spectator"
	ActorSystem    ActorType = "system"
)

// Actor is the resolved identity behind a request: the league owner's JWT, a
// captain's access token, the league's spectator token, or the internal
// scheduler. The draft service trusts this resolution and only checks what
// each type is allowed to do.
type Actor struct {
	Type      ActorType
	UserID    *uuid.UUID
	CaptainID *uuid.UUID
	IP        string
}

// CanManage reports whether the actor may drive the state machine and undo
// picks. The scheduler has the same authority as the manager.
func (a Actor) CanManage() bool {
	return a.Type == ActorManager || a.Type == ActorSystem
}

func (a Actor) IsCaptain(id uuid.UUID) bool {
	return a.Type == ActorCaptain && a.CaptainID != nil && *a.CaptainID == id
}

// ID returns the identifier to record in the audit log, if any.
func (a Actor) ID() *uuid.UUID {
	switch a.Type {
	case ActorManager:
		return a.UserID
	case ActorCaptain:
		return a.CaptainID
	default:
		return nil
	}
}

func SystemActor() Actor {
	return Actor{Type: ActorSystem}
}
