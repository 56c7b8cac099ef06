package service

import (
	"context"
	"errors"
	"fmt"
	"math/rand"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/events"
	"github.com/rfox/draftroom/internal/repository"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"
)

// upcomingPreviewLength caps the pick-order preview in snapshots.
const upcomingPreviewLength = 16

// DraftService owns the draft state machine and the commit protocol. Every
// mutation re-reads the league row under a lock inside one transaction,
// re-validates against that fresh state, and either applies the change or
// rejects with a classified DraftError. Concurrent callers never corrupt
// state; at most one wins each turn.
type DraftService struct {
	repos  *repository.Repositories
	tx     repository.Transactor
	bus    *events.Bus
	audits *AuditService
	clock  clockwork.Clock
	grace  time.Duration

	rngMu sync.Mutex
	rng   *rand.Rand
}

func NewDraftService(repos *repository.Repositories, tx repository.Transactor, bus *events.Bus, audits *AuditService, clock clockwork.Clock, grace time.Duration) *DraftService {
	return &DraftService{
		repos:  repos,
		tx:     tx,
		bus:    bus,
		audits: audits,
		clock:  clock,
		grace:  grace,
		rng:    rand.New(rand.NewSource(time.Now().UnixNano())),
	}
}

// StartDraft moves a league from not_started to in_progress, anchoring the
// first pick's timer. A league with no captains or an empty available pool
// cannot start.
func (s *DraftService) StartDraft(ctx context.Context, leagueID uuid.UUID, actor domain.Actor) (*domain.League, error) {
	if !actor.CanManage() {
		return nil, domain.ErrTokenMismatch()
	}

	var league *domain.League
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		lg, err := lockLeague(ctx, r, leagueID)
		if err != nil {
			return err
		}
		if lg.Status != domain.LeagueStatusNotStarted {
			return domain.ErrInvalidTransition(lg.Status, "start")
		}

		captains, err := r.Captain.ListByLeague(ctx, leagueID)
		if err != nil {
			return err
		}
		if len(captains) == 0 {
			return domain.NewDraftError(domain.CodeInvalidTransition, "cannot start a draft with no captains")
		}
		players, err := r.Player.ListByLeague(ctx, leagueID)
		if err != nil {
			return err
		}
		if len(domain.AvailablePlayers(players, captains)) == 0 {
			return domain.ErrPoolExhausted()
		}

		now := s.clock.Now().UTC()
		lg.Status = domain.LeagueStatusInProgress
		lg.CurrentPickIndex = 0
		lg.CurrentPickStartedAt = &now
		if err := r.League.Update(ctx, lg); err != nil {
			return err
		}
		league = lg
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("league_id", leagueID.String()).Msg("Draft started")
	s.audits.Record(ctx, leagueID, domain.AuditDraftStart, actor, nil)
	s.bus.Publish(events.New(events.DraftStarted, leagueID, nil))
	return league, nil
}

// PauseDraft suspends an in-progress draft and clears the timer anchor.
func (s *DraftService) PauseDraft(ctx context.Context, leagueID uuid.UUID, actor domain.Actor) (*domain.League, error) {
	if !actor.CanManage() {
		return nil, domain.ErrTokenMismatch()
	}

	var league *domain.League
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		lg, err := lockLeague(ctx, r, leagueID)
		if err != nil {
			return err
		}
		if lg.Status != domain.LeagueStatusInProgress {
			return domain.ErrInvalidTransition(lg.Status, "pause")
		}

		lg.Status = domain.LeagueStatusPaused
		lg.CurrentPickStartedAt = nil
		if err := r.League.Update(ctx, lg); err != nil {
			return err
		}
		league = lg
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("league_id", leagueID.String()).Msg("Draft paused")
	s.audits.Record(ctx, leagueID, domain.AuditDraftPause, actor, nil)
	s.bus.Publish(events.New(events.DraftPaused, leagueID, nil))
	return league, nil
}

// ResumeDraft returns a paused draft to in_progress. The acting captain gets
// the full time limit again; remaining time from before the pause is not
// carried over.
func (s *DraftService) ResumeDraft(ctx context.Context, leagueID uuid.UUID, actor domain.Actor) (*domain.League, error) {
	if !actor.CanManage() {
		return nil, domain.ErrTokenMismatch()
	}

	var league *domain.League
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		lg, err := lockLeague(ctx, r, leagueID)
		if err != nil {
			return err
		}
		if lg.Status != domain.LeagueStatusPaused {
			return domain.ErrInvalidTransition(lg.Status, "resume")
		}

		now := s.clock.Now().UTC()
		lg.Status = domain.LeagueStatusInProgress
		lg.CurrentPickStartedAt = &now
		if err := r.League.Update(ctx, lg); err != nil {
			return err
		}
		league = lg
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("league_id", leagueID.String()).Msg("Draft resumed")
	s.audits.Record(ctx, leagueID, domain.AuditDraftResume, actor, nil)
	s.bus.Publish(events.New(events.DraftResumed, leagueID, nil))
	return league, nil
}

// RestartDraft wipes a paused draft back to not_started: the pick ledger is
// deleted, every player's drafted state is cleared, and the index resets.
// Captains, their positions and linked players, and queues all survive.
func (s *DraftService) RestartDraft(ctx context.Context, leagueID uuid.UUID, actor domain.Actor) (*domain.League, error) {
	if !actor.CanManage() {
		return nil, domain.ErrTokenMismatch()
	}

	var league *domain.League
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		lg, err := lockLeague(ctx, r, leagueID)
		if err != nil {
			return err
		}
		if lg.Status != domain.LeagueStatusPaused {
			return domain.ErrInvalidTransition(lg.Status, "restart")
		}

		if err := r.Pick.DeleteByLeague(ctx, leagueID); err != nil {
			return err
		}
		if err := r.Player.ClearAllDrafted(ctx, leagueID); err != nil {
			return err
		}

		lg.Status = domain.LeagueStatusNotStarted
		lg.CurrentPickIndex = 0
		lg.CurrentPickStartedAt = nil
		if err := r.League.Update(ctx, lg); err != nil {
			return err
		}
		league = lg
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().Str("league_id", leagueID.String()).Msg("Draft restarted")
	s.audits.Record(ctx, leagueID, domain.AuditDraftRestart, actor, nil)
	s.bus.Publish(events.New(events.DraftRestarted, leagueID, nil))
	return league, nil
}

type SubmitPickInput struct {
	CaptainID         uuid.UUID
	PlayerID          uuid.UUID
	ExpectedPickIndex int
}

// CommittedPick is the result of a successful commit, returned to the caller
// and mirrored onto the event bus for everyone else.
type CommittedPick struct {
	Pick         *domain.DraftPick `json:"pick"`
	Captain      *domain.Captain   `json:"captain"`
	Player       *domain.Player    `json:"player"`
	NewPickIndex int               `json:"newPickIndex"`
	Completed    bool              `json:"completed"`
}

// SubmitPick commits a human pick. The caller must be the manager or the
// captain named in the input; the input captain must be on the clock.
func (s *DraftService) SubmitPick(ctx context.Context, leagueID uuid.UUID, input SubmitPickInput, actor domain.Actor) (*CommittedPick, error) {
	if !actor.CanManage() && !actor.IsCaptain(input.CaptainID) {
		return nil, domain.ErrTokenMismatch()
	}

	var committed *CommittedPick
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		var err error
		committed, err = s.commitPick(ctx, r, leagueID, commitInput{
			expectedPickIndex: input.ExpectedPickIndex,
			captainID:         &input.CaptainID,
			playerID:          &input.PlayerID,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, leagueID, domain.AuditDraftPick, actor, committed, nil)
	return committed, nil
}

// AutoPick commits a uniformly random pick for the on-clock captain once the
// pick timer has run down into the grace window. Any authenticated actor may
// invoke it; the timer precondition, not the caller's identity, decides
// whether it commits. Racing invocations are safe: one wins, the rest get
// StaleState or TimerNotExpired.
func (s *DraftService) AutoPick(ctx context.Context, leagueID uuid.UUID, expectedPickIndex int, actor domain.Actor) (*CommittedPick, error) {
	var committed *CommittedPick
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		var err error
		committed, err = s.commitPick(ctx, r, leagueID, commitInput{
			expectedPickIndex: expectedPickIndex,
			isAutoPick:        true,
			enforceTimer:      true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, leagueID, domain.AuditDraftAutoPick, actor, committed, map[string]any{"source": "timer"})
	return committed, nil
}

// AutodraftPick commits a pick for a captain who enabled the auto-pick
// toggle: the first still-available player from their queue, else uniform
// random. Scheduler-only; the toggle is re-checked inside the transaction so
// a captain who flips it off mid-flight keeps their turn.
func (s *DraftService) AutodraftPick(ctx context.Context, leagueID uuid.UUID, expectedPickIndex int) (*CommittedPick, error) {
	var committed *CommittedPick
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		var err error
		committed, err = s.commitPick(ctx, r, leagueID, commitInput{
			expectedPickIndex: expectedPickIndex,
			isAutoPick:        true,
			enforceToggle:     true,
			useQueue:          true,
		})
		return err
	})
	if err != nil {
		return nil, err
	}

	s.afterCommit(ctx, leagueID, domain.AuditDraftAutoPick, domain.SystemActor(), committed, map[string]any{"source": "autodraft"})
	return committed, nil
}

// UndoLastPick removes the most recent ledger entry and returns its player to
// the pool. The index decrements; if the draft is running the acting captain
// gets a fresh timer. Manager only, and only with at least one pick made.
func (s *DraftService) UndoLastPick(ctx context.Context, leagueID uuid.UUID, actor domain.Actor) (*domain.DraftPick, error) {
	if !actor.CanManage() {
		return nil, domain.ErrTokenMismatch()
	}

	var undone *domain.DraftPick
	var newIndex int
	err := s.tx.Transact(ctx, func(r *repository.Repositories) error {
		lg, err := lockLeague(ctx, r, leagueID)
		if err != nil {
			return err
		}
		if lg.Status != domain.LeagueStatusInProgress && lg.Status != domain.LeagueStatusPaused {
			return domain.ErrInvalidTransition(lg.Status, "undo")
		}
		if lg.CurrentPickIndex == 0 {
			return domain.NewDraftError(domain.CodeStaleState, "no picks to undo")
		}

		last, err := r.Pick.GetLast(ctx, leagueID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return domain.NewDraftError(domain.CodeStaleState, "no picks to undo")
			}
			return err
		}

		if err := r.Pick.Delete(ctx, last.ID); err != nil {
			return err
		}
		if err := r.Player.ClearDrafted(ctx, last.PlayerID); err != nil {
			return err
		}

		lg.CurrentPickIndex--
		if lg.Status == domain.LeagueStatusInProgress {
			now := s.clock.Now().UTC()
			lg.CurrentPickStartedAt = &now
		}
		if err := r.League.Update(ctx, lg); err != nil {
			return err
		}

		undone = last
		newIndex = lg.CurrentPickIndex
		return nil
	})
	if err != nil {
		return nil, err
	}

	log.Info().
		Str("league_id", leagueID.String()).
		Int("pick_number", undone.PickNumber).
		Msg("Pick undone")
	s.audits.Record(ctx, leagueID, domain.AuditDraftUndo, actor, map[string]any{
		"pickNumber": undone.PickNumber,
		"captainId":  undone.CaptainID.String(),
		"playerId":   undone.PlayerID.String(),
	})
	s.bus.Publish(events.New(events.PickUndone, leagueID, events.PickPayload{
		PickNumber:   undone.PickNumber,
		CaptainID:    undone.CaptainID,
		PlayerID:     undone.PlayerID,
		IsAutoPick:   undone.IsAutoPick,
		NewPickIndex: newIndex,
	}))
	return undone, nil
}

type commitInput struct {
	expectedPickIndex int
	captainID         *uuid.UUID // human pick: must match the on-clock captain
	playerID          *uuid.UUID // nil means the server selects
	isAutoPick        bool
	enforceTimer      bool
	enforceToggle     bool
	useQueue          bool
}

// commitPick is the single write path for draft picks. It runs inside the
// caller's transaction with the league row locked, validates only against
// state read after the lock, and applies: insert ledger row, mark the player
// drafted, advance the index, complete or re-stamp the timer.
func (s *DraftService) commitPick(ctx context.Context, r *repository.Repositories, leagueID uuid.UUID, in commitInput) (*CommittedPick, error) {
	league, err := lockLeague(ctx, r, leagueID)
	if err != nil {
		return nil, err
	}
	if league.Status != domain.LeagueStatusInProgress {
		return nil, domain.ErrInvalidTransition(league.Status, "pick")
	}
	if in.expectedPickIndex != league.CurrentPickIndex {
		return nil, domain.ErrStaleState(in.expectedPickIndex, league.CurrentPickIndex)
	}

	captains, err := r.Captain.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	players, err := r.Player.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	acting := domain.CaptainAtPick(captains, league.CurrentPickIndex, league.DraftAlgorithm)
	if acting == nil {
		return nil, fmt.Errorf("no acting captain at pick index %d", league.CurrentPickIndex)
	}
	if in.captainID != nil && *in.captainID != acting.ID {
		return nil, domain.ErrNotYourTurn(league.CurrentPickIndex)
	}

	if in.enforceTimer {
		eligibleAt, ok := league.AutoPickEligibleAt(s.grace)
		if !ok {
			return nil, fmt.Errorf("pick timer is not running for league %s", leagueID)
		}
		if now := s.clock.Now(); now.Before(eligibleAt) {
			return nil, domain.ErrTimerNotExpired(eligibleAt.Sub(now).Seconds())
		}
	}
	if in.enforceToggle && !acting.AutoPickEnabled {
		return nil, domain.NewDraftError(domain.CodeStaleState, "autodraft is no longer enabled for the acting captain")
	}

	available := domain.AvailablePlayers(players, captains)
	totalPicks := len(available) + league.CurrentPickIndex

	target, err := s.selectTarget(ctx, r, in, acting, available, leagueID)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now().UTC()
	pick := &domain.DraftPick{
		ID:         uuid.New(),
		LeagueID:   leagueID,
		CaptainID:  acting.ID,
		PlayerID:   target.ID,
		PickNumber: league.CurrentPickIndex + 1,
		IsAutoPick: in.isAutoPick,
	}
	if err := r.Pick.Create(ctx, pick); err != nil {
		return nil, err
	}
	if err := r.Player.MarkDrafted(ctx, target.ID, acting.ID, pick.PickNumber); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, domain.NewDraftError(domain.CodeStaleState, "player %s is no longer available", target.ID)
		}
		return nil, err
	}

	league.CurrentPickIndex++
	completed := league.CurrentPickIndex >= totalPicks
	if completed {
		league.Status = domain.LeagueStatusCompleted
		league.CurrentPickStartedAt = nil
	} else {
		league.CurrentPickStartedAt = &now
	}
	if err := r.League.Update(ctx, league); err != nil {
		return nil, err
	}

	target.DraftedBy = &acting.ID
	pn := pick.PickNumber
	target.PickNumber = &pn

	return &CommittedPick{
		Pick:         pick,
		Captain:      acting,
		Player:       target,
		NewPickIndex: league.CurrentPickIndex,
		Completed:    completed,
	}, nil
}

// selectTarget resolves which player the commit drafts: the submitted player
// if still available, the queue head for autodraft, else uniform random.
func (s *DraftService) selectTarget(ctx context.Context, r *repository.Repositories, in commitInput, acting *domain.Captain, available []*domain.Player, leagueID uuid.UUID) (*domain.Player, error) {
	if in.playerID != nil {
		for _, p := range available {
			if p.ID == *in.playerID {
				return p, nil
			}
		}
		player, err := r.Player.GetByID(ctx, *in.playerID)
		if err != nil || player.LeagueID != leagueID {
			return nil, ErrPlayerNotFound
		}
		return nil, domain.NewDraftError(domain.CodeStaleState, "player %s is no longer available", *in.playerID)
	}

	if len(available) == 0 {
		return nil, domain.ErrPoolExhausted()
	}

	if in.useQueue {
		entries, err := r.Queue.ListByCaptain(ctx, acting.ID)
		if err != nil {
			return nil, err
		}
		availableByID := make(map[uuid.UUID]*domain.Player, len(available))
		for _, p := range available {
			availableByID[p.ID] = p
		}
		for _, e := range entries {
			if p, ok := availableByID[e.PlayerID]; ok {
				return p, nil
			}
		}
	}

	return available[s.randIntn(len(available))], nil
}

func (s *DraftService) afterCommit(ctx context.Context, leagueID uuid.UUID, action string, actor domain.Actor, cp *CommittedPick, extra map[string]any) {
	log.Debug().
		Str("league_id", leagueID.String()).
		Int("pick_number", cp.Pick.PickNumber).
		Bool("auto_pick", cp.Pick.IsAutoPick).
		Msg("Pick committed")

	meta := map[string]any{
		"pickNumber": cp.Pick.PickNumber,
		"captainId":  cp.Pick.CaptainID.String(),
		"playerId":   cp.Pick.PlayerID.String(),
	}
	for k, v := range extra {
		meta[k] = v
	}
	s.audits.Record(ctx, leagueID, action, actor, meta)

	s.bus.Publish(events.New(events.PickCommitted, leagueID, events.PickPayload{
		PickNumber:   cp.Pick.PickNumber,
		CaptainID:    cp.Pick.CaptainID,
		PlayerID:     cp.Pick.PlayerID,
		IsAutoPick:   cp.Pick.IsAutoPick,
		NewPickIndex: cp.NewPickIndex,
	}))
	if cp.Completed {
		log.Info().Str("league_id", leagueID.String()).Msg("Draft completed")
		s.bus.Publish(events.New(events.DraftCompleted, leagueID, nil))
	}
}

type UpcomingTurn struct {
	PickIndex int       `json:"pickIndex"`
	CaptainID uuid.UUID `json:"captainId"`
}

// DraftSnapshot is the full authoritative view of one league's draft, served
// over REST and pushed on the websocket feed. Clients render from this and
// never derive pool membership themselves.
type DraftSnapshot struct {
	League             *domain.League      `json:"league"`
	Captains           []*domain.Captain   `json:"captains"`
	Players            []*domain.Player    `json:"players"`
	Picks              []*domain.DraftPick `json:"picks"`
	AvailablePlayerIDs []uuid.UUID         `json:"availablePlayerIds"`
	CurrentCaptainID   *uuid.UUID          `json:"currentCaptainId"`
	Upcoming           []UpcomingTurn      `json:"upcoming"`
	TotalPicks         int                 `json:"totalPicks"`
	GraceSeconds       int                 `json:"graceSeconds"`
	ServerTime         time.Time           `json:"serverTime"`
}

func (s *DraftService) Snapshot(ctx context.Context, leagueID uuid.UUID) (*DraftSnapshot, error) {
	league, err := s.repos.League.GetByID(ctx, leagueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	captains, err := s.repos.Captain.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	players, err := s.repos.Player.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}
	picks, err := s.repos.Pick.ListByLeague(ctx, leagueID)
	if err != nil {
		return nil, err
	}

	available := domain.AvailablePlayers(players, captains)
	availableIDs := make([]uuid.UUID, len(available))
	for i, p := range available {
		availableIDs[i] = p.ID
	}
	totalPicks := len(available) + len(picks)

	var currentCaptainID *uuid.UUID
	if league.Status == domain.LeagueStatusInProgress {
		if acting := domain.CaptainAtPick(captains, league.CurrentPickIndex, league.DraftAlgorithm); acting != nil {
			currentCaptainID = &acting.ID
		}
	}

	var upcoming []UpcomingTurn
	if league.Status != domain.LeagueStatusCompleted {
		from := league.CurrentPickIndex
		count := totalPicks - from
		if count > upcomingPreviewLength {
			count = upcomingPreviewLength
		}
		for i, id := range domain.UpcomingOrder(captains, from, count, league.DraftAlgorithm) {
			upcoming = append(upcoming, UpcomingTurn{PickIndex: from + i, CaptainID: id})
		}
	}

	return &DraftSnapshot{
		League:             league,
		Captains:           domain.SortCaptainsByPosition(captains),
		Players:            players,
		Picks:              picks,
		AvailablePlayerIDs: availableIDs,
		CurrentCaptainID:   currentCaptainID,
		Upcoming:           upcoming,
		TotalPicks:         totalPicks,
		GraceSeconds:       int(s.grace.Seconds()),
		ServerTime:         s.clock.Now().UTC(),
	}, nil
}

func (s *DraftService) randIntn(n int) int {
	s.rngMu.Lock()
	defer s.rngMu.Unlock()
	return s.rng.Intn(n)
}

func lockLeague(ctx context.Context, r *repository.Repositories, leagueID uuid.UUID) (*domain.League, error) {
	league, err := r.League.GetByIDForUpdate(ctx, leagueID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrLeagueNotFound
		}
		return nil, err
	}
	return league, nil
}
