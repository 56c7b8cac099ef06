package service

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/events"
	"github.com/rfox/draftroom/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrPlayerNotQueueable = errors.New("player cannot be queued")
	ErrNotInQueue         = errors.New("player is not in the queue")
)

// QueueService manages each captain's private pick-preference list. Queue
// edits are legal at any draft status; the list only matters when autodraft
// takes a turn for its owner.
type QueueService struct {
	repos *repository.Repositories
	tx    repository.Transactor
	bus   *events.Bus
}

func NewQueueService(repos *repository.Repositories, tx repository.Transactor, bus *events.Bus) *QueueService {
	return &QueueService{repos: repos, tx: tx, bus: bus}
}

func (s *QueueService) GetQueue(ctx context.Context, leagueID uuid.UUID, actor domain.Actor) ([]*domain.QueueEntry, error) {
	captain, err := s.resolveCaptain(ctx, s.repos, leagueID, actor)
	if err != nil {
		return nil, err
	}
	return s.repos.Queue.ListByCaptain(ctx, captain.ID)
}

func (s *QueueService) AddToQueue(ctx context.Context, leagueID, playerID uuid.UUID, actor domain.Actor) ([]*domain.QueueEntry, error) {
	var entries []*domain.QueueEntry
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		captain, err := s.resolveCaptain(ctx, r, leagueID, actor)
		if err != nil {
			return err
		}

		player, err := r.Player.GetByID(ctx, playerID)
		if err != nil || player.LeagueID != leagueID {
			return ErrPlayerNotFound
		}
		if player.Drafted() {
			return ErrPlayerNotQueueable
		}
		captains, err := r.Captain.ListByLeague(ctx, leagueID)
		if err != nil {
			return err
		}
		for _, c := range captains {
			if c.PlayerID != nil && *c.PlayerID == playerID {
				return ErrPlayerNotQueueable
			}
		}

		existing, err := r.Queue.ListByCaptain(ctx, captain.ID)
		if err != nil {
			return err
		}
		for _, e := range existing {
			if e.PlayerID == playerID {
				entries = existing
				return nil
			}
		}

		entry := &domain.QueueEntry{
			ID:        uuid.New(),
			CaptainID: captain.ID,
			PlayerID:  playerID,
			Position:  len(existing) + 1,
		}
		if err := r.Queue.Add(ctx, entry); err != nil {
			return err
		}

		entries, err = r.Queue.ListByCaptain(ctx, captain.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// RemoveFromQueue drops a player and compacts the remaining positions back to
// a contiguous 1..N run.
func (s *QueueService) RemoveFromQueue(ctx context.Context, leagueID, playerID uuid.UUID, actor domain.Actor) ([]*domain.QueueEntry, error) {
	var entries []*domain.QueueEntry
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		captain, err := s.resolveCaptain(ctx, r, leagueID, actor)
		if err != nil {
			return err
		}

		existing, err := r.Queue.ListByCaptain(ctx, captain.ID)
		if err != nil {
			return err
		}
		found := false
		remaining := make([]uuid.UUID, 0, len(existing))
		for _, e := range existing {
			if e.PlayerID == playerID {
				found = true
				continue
			}
			remaining = append(remaining, e.PlayerID)
		}
		if !found {
			return ErrNotInQueue
		}

		if err := r.Queue.Remove(ctx, captain.ID, playerID); err != nil {
			return err
		}
		if len(remaining) > 0 {
			if err := r.Queue.Reorder(ctx, captain.ID, remaining); err != nil {
				return err
			}
		}

		entries, err = r.Queue.ListByCaptain(ctx, captain.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

func (s *QueueService) ReorderQueue(ctx context.Context, leagueID uuid.UUID, orderedPlayerIDs []uuid.UUID, actor domain.Actor) ([]*domain.QueueEntry, error) {
	var entries []*domain.QueueEntry
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		captain, err := s.resolveCaptain(ctx, r, leagueID, actor)
		if err != nil {
			return err
		}

		existing, err := r.Queue.ListByCaptain(ctx, captain.ID)
		if err != nil {
			return err
		}
		if !isQueuePermutation(existing, orderedPlayerIDs) {
			return ErrInvalidOrder
		}

		if err := r.Queue.Reorder(ctx, captain.ID, orderedPlayerIDs); err != nil {
			return err
		}

		entries, err = r.Queue.ListByCaptain(ctx, captain.ID)
		return err
	})
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// SetAutoPick flips the captain's autodraft toggle. Enabling it pokes the
// scheduler through the bus so a captain already on the clock is picked for
// right away.
func (s *QueueService) SetAutoPick(ctx context.Context, leagueID uuid.UUID, enabled bool, actor domain.Actor) (*domain.Captain, error) {
	captain, err := s.resolveCaptain(ctx, s.repos, leagueID, actor)
	if err != nil {
		return nil, err
	}

	captain.AutoPickEnabled = enabled
	if err := s.repos.Captain.Update(ctx, captain); err != nil {
		return nil, err
	}

	s.bus.Publish(events.New(events.AutoPickToggled, leagueID, map[string]any{
		"captainId": captain.ID.String(),
		"enabled":   enabled,
	}))

	return captain, nil
}

func (s *QueueService) resolveCaptain(ctx context.Context, r *repository.Repositories, leagueID uuid.UUID, actor domain.Actor) (*domain.Captain, error) {
	if actor.CaptainID == nil {
		return nil, domain.ErrTokenMismatch()
	}
	captain, err := r.Captain.GetByID(ctx, *actor.CaptainID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrCaptainNotFound
		}
		return nil, err
	}
	if captain.LeagueID != leagueID {
		return nil, domain.ErrTokenMismatch()
	}
	return captain, nil
}

func isQueuePermutation(entries []*domain.QueueEntry, playerIDs []uuid.UUID) bool {
	if len(entries) != len(playerIDs) {
		return false
	}
	current := make(map[uuid.UUID]bool, len(entries))
	for _, e := range entries {
		current[e.PlayerID] = true
	}
	seen := make(map[uuid.UUID]bool, len(playerIDs))
	for _, id := range playerIDs {
		if !current[id] || seen[id] {
			return false
		}
		seen[id] = true
	}
	return true
}
