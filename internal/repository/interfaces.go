package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
)

type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	GetByDisplayName(ctx context.Context, displayName string) (*domain.User, error)
}

type SessionRepository interface {
	Create(ctx context.Context, session *domain.UserSession) error
	DeleteByUserID(ctx context.Context, userID uuid.UUID) error
}

type LeagueRepository interface {
	Create(ctx context.Context, league *domain.League) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.League, error)
	// GetByIDForUpdate locks the league row for the remainder of the
	// surrounding transaction. Only meaningful on a Transact-bound repo.
	GetByIDForUpdate(ctx context.Context, id uuid.UUID) (*domain.League, error)
	Update(ctx context.Context, league *domain.League) error
	ListByOwner(ctx context.Context, userID uuid.UUID) ([]*domain.League, error)
	ListByStatus(ctx context.Context, status domain.LeagueStatus) ([]*domain.League, error)
	ListScheduledToStart(ctx context.Context, now time.Time) ([]*domain.League, error)
}

type CaptainRepository interface {
	Create(ctx context.Context, captain *domain.Captain) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Captain, error)
	GetByAccessToken(ctx context.Context, leagueID uuid.UUID, token string) (*domain.Captain, error)
	Update(ctx context.Context, captain *domain.Captain) error
	ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]*domain.Captain, error)
	// ReorderPositions rewrites draft positions to match orderedIDs using the
	// two-phase write (temporary negative positions, then final 1..N).
	ReorderPositions(ctx context.Context, leagueID uuid.UUID, orderedIDs []uuid.UUID) error
}

type PlayerRepository interface {
	Create(ctx context.Context, player *domain.Player) error
	GetByID(ctx context.Context, id uuid.UUID) (*domain.Player, error)
	ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]*domain.Player, error)
	MarkDrafted(ctx context.Context, playerID, captainID uuid.UUID, pickNumber int) error
	ClearDrafted(ctx context.Context, playerID uuid.UUID) error
	ClearAllDrafted(ctx context.Context, leagueID uuid.UUID) error
}

type PickRepository interface {
	Create(ctx context.Context, pick *domain.DraftPick) error
	ListByLeague(ctx context.Context, leagueID uuid.UUID) ([]*domain.DraftPick, error)
	CountByLeague(ctx context.Context, leagueID uuid.UUID) (int, error)
	GetLast(ctx context.Context, leagueID uuid.UUID) (*domain.DraftPick, error)
	Delete(ctx context.Context, id uuid.UUID) error
	DeleteByLeague(ctx context.Context, leagueID uuid.UUID) error
}

type QueueRepository interface {
	Add(ctx context.Context, entry *domain.QueueEntry) error
	Remove(ctx context.Context, captainID, playerID uuid.UUID) error
	ListByCaptain(ctx context.Context, captainID uuid.UUID) ([]*domain.QueueEntry, error)
	// Reorder rewrites queue positions to match orderedPlayerIDs with the
	// same two-phase write as captain draft positions.
	Reorder(ctx context.Context, captainID uuid.UUID, orderedPlayerIDs []uuid.UUID) error
}

type AuditRepository interface {
	Create(ctx context.Context, entry *domain.AuditEntry) error
	ListByLeague(ctx context.Context, leagueID uuid.UUID, limit int) ([]*domain.AuditEntry, error)
}

// Transactor runs fn with a set of repositories bound to one database
// transaction. The commit protocol's read-validate-write sequence runs
// entirely inside such a transaction; a returned error rolls everything back.
type Transactor interface {
	Transact(ctx context.Context, fn func(repos *Repositories) error) error
}

type Repositories struct {
	User    UserRepository
	Session SessionRepository
	League  LeagueRepository
	Captain CaptainRepository
	Player  PlayerRepository
	Pick    PickRepository
	Queue   QueueRepository
	Audit   AuditRepository
}
