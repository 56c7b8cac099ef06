package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/config"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/events"
	"github.com/rfox/draftroom/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrLeagueNotFound      = errors.New("league not found")
	ErrPlayerNotFound      = errors.New("player not found")
	ErrCaptainNotFound     = errors.New("captain not found")
	ErrPlayerAlreadyLinked = errors.New("player is already linked to a captain")
	ErrInvalidOrder        = errors.New("order must be a permutation of the current set")
	ErrInvalidAlgorithm    = errors.New("unknown draft algorithm")
)

type LeagueService struct {
	repos  *repository.Repositories
	tx     repository.Transactor
	bus    *events.Bus
	audits *AuditService
	cfg    *config.Config
}

func NewLeagueService(repos *repository.Repositories, tx repository.Transactor, bus *events.Bus, audits *AuditService, cfg *config.Config) *LeagueService {
	return &LeagueService{
		repos:  repos,
		tx:     tx,
		bus:    bus,
		audits: audits,
		cfg:    cfg,
	}
}

type CreateLeagueInput struct {
	Name             string
	DraftAlgorithm   domain.DraftAlgorithm
	TimeLimitSeconds int
	ScheduledStartAt *time.Time
}

func (s *LeagueService) CreateLeague(ctx context.Context, ownerID uuid.UUID, input CreateLeagueInput) (*domain.League, error) {
	algorithm := input.DraftAlgorithm
	if algorithm == "" {
		algorithm = domain.DraftAlgorithmSnake
	}
	if algorithm != domain.DraftAlgorithmSnake && algorithm != domain.DraftAlgorithmRoundRobin {
		return nil, ErrInvalidAlgorithm
	}

	timeLimit := input.TimeLimitSeconds
	if timeLimit <= 0 {
		timeLimit = int(s.cfg.DefaultTimeLimit.Seconds())
	}

	spectatorToken, err := generateToken(16)
	if err != nil {
		return nil, err
	}

	league := &domain.League{
		ID:               uuid.New(),
		Name:             input.Name,
		CreatedBy:        ownerID,
		DraftAlgorithm:   algorithm,
		TimeLimitSeconds: timeLimit,
		Status:           domain.LeagueStatusNotStarted,
		ScheduledStartAt: input.ScheduledStartAt,
		SpectatorToken:   spectatorToken,
	}

	if err := s.repos.League.Create(ctx, league); err != nil {
		return nil, err
	}

	return league, nil
}

func (s *LeagueService) GetLeague(ctx context.Context, id uuid.UUID) (*domain.League, error) {
	league, err := s.repos.League.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return league, nil
}

func (s *LeagueService) ListOwned(ctx context.Context, ownerID uuid.UUID) ([]*domain.League, error) {
	return s.repos.League.ListByOwner(ctx, ownerID)
}

type AddCaptainInput struct {
	Name     string
	PlayerID *uuid.UUID
}

// AddCaptain appends a captain at draft position N+1. The linked player, if
// given, must belong to the league and not already be another captain's link.
func (s *LeagueService) AddCaptain(ctx context.Context, leagueID uuid.UUID, input AddCaptainInput, actor domain.Actor) (*domain.Captain, error) {
	if !actor.CanManage() {
		return nil, domain.ErrTokenMismatch()
	}

	accessToken, err := generateToken(16)
	if err != nil {
		return nil, err
	}

	var captain *domain.Captain
	err = s.tx.Transact(ctx, func(r *repository.Repositories) error {
		league, err := r.League.GetByIDForUpdate(ctx, leagueID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		if league.Status != domain.LeagueStatusNotStarted {
			return domain.ErrInvalidTransition(league.Status, "add a captain")
		}

		captains, err := r.Captain.ListByLeague(ctx, leagueID)
		if err != nil {
			return err
		}

		if input.PlayerID != nil {
			player, err := r.Player.GetByID(ctx, *input.PlayerID)
			if err != nil || player.LeagueID != leagueID {
				return ErrPlayerNotFound
			}
			for _, c := range captains {
				if c.PlayerID != nil && *c.PlayerID == player.ID {
					return ErrPlayerAlreadyLinked
				}
			}
		}

		captain = &domain.Captain{
			ID:            uuid.New(),
			LeagueID:      leagueID,
			Name:          input.Name,
			DraftPosition: len(captains) + 1,
			PlayerID:      input.PlayerID,
			AccessToken:   accessToken,
		}
		return r.Captain.Create(ctx, captain)
	})
	if err != nil {
		return nil, err
	}

	return captain, nil
}

func (s *LeagueService) AddPlayer(ctx context.Context, leagueID uuid.UUID, name string, actor domain.Actor) (*domain.Player, error) {
	if !actor.CanManage() {
		return nil, domain.ErrTokenMismatch()
	}

	var player *domain.Player
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		league, err := r.League.GetByIDForUpdate(ctx, leagueID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		if league.Status != domain.LeagueStatusNotStarted {
			return domain.ErrInvalidTransition(league.Status, "add a player")
		}

		player = &domain.Player{
			ID:       uuid.New(),
			LeagueID: leagueID,
			Name:     name,
		}
		return r.Player.Create(ctx, player)
	})
	if err != nil {
		return nil, err
	}

	return player, nil
}

// ReorderCaptains replaces the draft order with orderedIDs. The new order must
// be a permutation of the current captain set; it is applied with the
// two-phase position writer so a failure at any point rolls back to the
// previous order.
func (s *LeagueService) ReorderCaptains(ctx context.Context, leagueID uuid.UUID, orderedIDs []uuid.UUID, actor domain.Actor) ([]*domain.Captain, error) {
	if !actor.CanManage() {
		return nil, domain.ErrTokenMismatch()
	}

	var reordered []*domain.Captain
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		league, err := r.League.GetByIDForUpdate(ctx, leagueID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrLeagueNotFound
			}
			return err
		}
		if league.Status != domain.LeagueStatusNotStarted {
			return domain.ErrInvalidTransition(league.Status, "reorder captains")
		}

		captains, err := r.Captain.ListByLeague(ctx, leagueID)
		if err != nil {
			return err
		}
		if !isPermutation(captains, orderedIDs) {
			return ErrInvalidOrder
		}

		if err := r.Captain.ReorderPositions(ctx, leagueID, orderedIDs); err != nil {
			return err
		}

		reordered, err = r.Captain.ListByLeague(ctx, leagueID)
		return err
	})
	if err != nil {
		return nil, err
	}

	s.audits.Record(ctx, leagueID, domain.AuditCaptainsReorder, actor, map[string]any{
		"order": orderedIDs,
	})
	s.bus.Publish(events.New(events.CaptainsReorder, leagueID, nil))

	return reordered, nil
}

func isPermutation(captains []*domain.Captain, ids []uuid.UUID) bool {
	if len(captains) != len(ids) {
		return false
	}
	current := make(map[uuid.UUID]bool, len(captains))
	for _, c := range captains {
		current[c.ID] = true
	}
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if !current[id] || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}

func generateToken(length int) (string, error) {
	bytes := make([]byte, length)
	if _, err := rand.Read(bytes); err != nil {
		return "", err
	}
	return hex.EncodeToString(bytes), nil
}
