package scheduler

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/events"
	"github.com/rfox/draftroom/internal/repository"
	"github.com/rfox/draftroom/internal/service"
	"github.com/rs/zerolog/log"
)

const (
	// idlePollInterval bounds how stale the scheduler's view can get when no
	// deadline is pending: scheduled starts and toggle flips are noticed
	// within this window even if no bus event arrives.
	idlePollInterval = 5 * time.Second

	// minWait keeps a deadline that raced into the past from spinning the
	// loop hot.
	minWait = 100 * time.Millisecond
)

// Scheduler drives the draft clock server-side: it auto-starts scheduled
// leagues, takes turns for captains who enabled autodraft, and fires the
// timer auto-pick once a pick's limit plus grace has fully elapsed. It holds
// no draft state of its own; every action goes through the commit protocol
// like any other client, so losing a race to a human pick is normal and
// ignored.
type Scheduler struct {
	repos  *repository.Repositories
	drafts *service.DraftService
	bus    *events.Bus
	clock  clockwork.Clock
	grace  time.Duration
	wakeCh chan struct{}
}

func New(repos *repository.Repositories, drafts *service.DraftService, bus *events.Bus, clock clockwork.Clock, grace time.Duration) *Scheduler {
	return &Scheduler{
		repos:  repos,
		drafts: drafts,
		bus:    bus,
		clock:  clock,
		grace:  grace,
		wakeCh: make(chan struct{}, 1),
	}
}

// Run loops until ctx is cancelled: one pass over the leagues, then sleep
// until the earliest deadline, an event bus poke, or the idle poll.
func (s *Scheduler) Run(ctx context.Context) {
	log.Info().Msg("Scheduler started")

	sub := s.bus.Subscribe()
	defer s.bus.Unsubscribe(sub)
	go func() {
		for range sub {
			s.wake()
		}
	}()

	timer := s.clock.NewTimer(idlePollInterval)
	defer timer.Stop()

	for {
		select {
		case <-s.wakeCh:
		default:
		}

		next := s.pass(ctx)

		wait := idlePollInterval
		if !next.IsZero() {
			if d := next.Sub(s.clock.Now()); d < wait {
				wait = d
			}
		}
		if wait < minWait {
			wait = minWait
		}

		timer.Reset(wait)
		select {
		case <-ctx.Done():
			log.Info().Msg("Scheduler stopped")
			return
		case <-timer.Chan():
		case <-s.wakeCh:
		}
	}
}

// wake nudges the run loop without blocking; a pending poke is enough.
func (s *Scheduler) wake() {
	select {
	case s.wakeCh <- struct{}{}:
	default:
	}
}

// pass does all currently-due work and returns the earliest future auto-pick
// deadline, or the zero time when no draft is on the clock.
func (s *Scheduler) pass(ctx context.Context) time.Time {
	now := s.clock.Now().UTC()

	due, err := s.repos.League.ListScheduledToStart(ctx, now)
	if err != nil {
		log.Error().Err(err).Msg("Scheduler failed to list scheduled leagues")
	}
	for _, lg := range due {
		if _, err := s.drafts.StartDraft(ctx, lg.ID, domain.SystemActor()); err != nil {
			s.logReject(lg.ID, "scheduled start", err)
			continue
		}
		log.Info().Str("league_id", lg.ID.String()).Msg("Scheduled draft auto-started")
	}

	running, err := s.repos.League.ListByStatus(ctx, domain.LeagueStatusInProgress)
	if err != nil {
		log.Error().Err(err).Msg("Scheduler failed to list running drafts")
		return time.Time{}
	}

	var earliest time.Time
	for _, lg := range running {
		deadline := s.handleRunning(ctx, lg)
		if deadline.IsZero() {
			continue
		}
		if earliest.IsZero() || deadline.Before(earliest) {
			earliest = deadline
		}
	}
	return earliest
}

// handleRunning fires whatever is due for one in-progress league and returns
// its next deadline (zero when none remains, e.g. the pick just completed the
// draft).
func (s *Scheduler) handleRunning(ctx context.Context, lg *domain.League) time.Time {
	captains, err := s.repos.Captain.ListByLeague(ctx, lg.ID)
	if err != nil {
		log.Error().Err(err).Str("league_id", lg.ID.String()).Msg("Scheduler failed to list captains")
		return time.Time{}
	}

	acting := domain.CaptainAtPick(captains, lg.CurrentPickIndex, lg.DraftAlgorithm)
	if acting == nil || lg.CurrentPickStartedAt == nil {
		log.Warn().Str("league_id", lg.ID.String()).Msg("Running draft has no acting captain or timer anchor")
		return time.Time{}
	}

	if acting.AutoPickEnabled {
		cp, err := s.drafts.AutodraftPick(ctx, lg.ID, lg.CurrentPickIndex)
		if err != nil {
			s.logReject(lg.ID, "autodraft", err)
			return time.Time{}
		}
		log.Info().
			Str("league_id", lg.ID.String()).
			Str("captain_id", acting.ID.String()).
			Int("pick_number", cp.Pick.PickNumber).
			Msg("Autodraft pick made")
		// The committed pick's event pokes the wake channel; the next pass
		// re-reads the league and handles the following turn.
		return time.Time{}
	}

	limit := time.Duration(lg.TimeLimitSeconds) * time.Second
	deadline := lg.CurrentPickStartedAt.Add(limit + s.grace)
	if s.clock.Now().Before(deadline) {
		return deadline
	}

	cp, err := s.drafts.AutoPick(ctx, lg.ID, lg.CurrentPickIndex, domain.SystemActor())
	if err != nil {
		s.logReject(lg.ID, "auto-pick", err)
		return time.Time{}
	}
	log.Info().
		Str("league_id", lg.ID.String()).
		Str("captain_id", cp.Pick.CaptainID.String()).
		Int("pick_number", cp.Pick.PickNumber).
		Msg("Timer auto-pick made")
	return time.Time{}
}

// logReject separates the rejects that concurrency makes routine (a human
// pick won the race, the draft paused under us) from real failures.
func (s *Scheduler) logReject(leagueID uuid.UUID, op string, err error) {
	if domain.IsExpected(err) {
		log.Debug().
			Str("league_id", leagueID.String()).
			Str("op", op).
			Str("code", string(domain.CodeOf(err))).
			Msg("Scheduler action rejected")
		return
	}
	log.Error().Err(err).
		Str("league_id", leagueID.String()).
		Str("op", op).
		Msg("Scheduler action failed")
}
