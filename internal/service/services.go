package service

import (
	"github.com/jonboulle/clockwork"
	"github.com/rfox/draftroom/internal/config"
	"github.com/rfox/draftroom/internal/events"
	"github.com/rfox/draftroom/internal/repository"
)

type Services struct {
	Auth   *AuthService
	League *LeagueService
	Queue  *QueueService
	Draft  *DraftService
	Audit  *AuditService
}

func NewServices(repos *repository.Repositories, tx repository.Transactor, bus *events.Bus, clock clockwork.Clock, cfg *config.Config) *Services {
	audit := NewAuditService(repos.Audit)

	return &Services{
		Auth:   NewAuthService(repos.User, repos.Session, repos.Captain, cfg),
		League: NewLeagueService(repos, tx, bus, audit, cfg),
		Queue:  NewQueueService(repos, tx, bus),
		Draft:  NewDraftService(repos, tx, bus, audit, clock, cfg.AutoPickGrace),
		Audit:  audit,
	}
}
