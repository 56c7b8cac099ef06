package service_test

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/events"
	"github.com/rfox/draftroom/internal/repository"
	"github.com/rfox/draftroom/internal/repository/postgres"
	"github.com/rfox/draftroom/internal/service"
	"github.com/rfox/draftroom/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testGrace = 2 * time.Second

type draftFixture struct {
	db     *testutil.TestDB
	repos  *repository.Repositories
	bus    *events.Bus
	clock  *clockwork.FakeClock
	drafts *service.DraftService
}

func newDraftFixture(t *testing.T) *draftFixture {
	t.Helper()

	testDB := testutil.NewTestDB(t)
	repos := postgres.NewRepositories(testDB.DB)
	tx := postgres.NewTransactor(testDB.DB)
	bus := events.NewBus()
	clock := clockwork.NewFakeClock()
	audits := service.NewAuditService(repos.Audit)

	return &draftFixture{
		db:     testDB,
		repos:  repos,
		bus:    bus,
		clock:  clock,
		drafts: service.NewDraftService(repos, tx, bus, audits, clock, testGrace),
	}
}

func managerActor() domain.Actor {
	return domain.Actor{Type: domain.ActorManager}
}

func captainActor(c *domain.Captain) domain.Actor {
	return domain.Actor{Type: domain.ActorCaptain, CaptainID: &c.ID}
}

func TestDraftService_StartDraft(t *testing.T) {
	fx := newDraftFixture(t)
	ctx := context.Background()

	t.Run("starts a ready league", func(t *testing.T) {
		league, _, _ := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)

		updated, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		assert.Equal(t, domain.LeagueStatusInProgress, updated.Status)
		assert.Equal(t, 0, updated.CurrentPickIndex)
		require.NotNil(t, updated.CurrentPickStartedAt)
		assert.Equal(t, fx.clock.Now().UTC(), *updated.CurrentPickStartedAt)
	})

	t.Run("rejects a second start", func(t *testing.T) {
		league, _, _ := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)

		_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		_, err = fx.drafts.StartDraft(ctx, league.ID, managerActor())
		assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	})

	t.Run("rejects non-manager actors", func(t *testing.T) {
		league, captains, _ := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)

		_, err := fx.drafts.StartDraft(ctx, league.ID, captainActor(captains[0]))
		assert.Equal(t, domain.CodeTokenMismatch, domain.CodeOf(err))

		fresh, err := fx.repos.League.GetByID(ctx, league.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LeagueStatusNotStarted, fresh.Status)
	})

	t.Run("rejects a league with no captains", func(t *testing.T) {
		league, _, _ := testutil.SeedDraftLeague(t, fx.db.DB, 0, 4)

		_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	})

	t.Run("rejects an empty pool", func(t *testing.T) {
		league := testutil.NewLeagueBuilder().Build(t, fx.db.DB)
		p1 := testutil.NewPlayerBuilder(league).Build(t, fx.db.DB)
		p2 := testutil.NewPlayerBuilder(league).Build(t, fx.db.DB)
		testutil.NewCaptainBuilder(league).WithPosition(1).WithLinkedPlayer(p1).Build(t, fx.db.DB)
		testutil.NewCaptainBuilder(league).WithPosition(2).WithLinkedPlayer(p2).Build(t, fx.db.DB)

		_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		assert.Equal(t, domain.CodePoolExhausted, domain.CodeOf(err))
	})
}

func TestDraftService_SnakeDraftRunsToCompletion(t *testing.T) {
	fx := newDraftFixture(t)
	ctx := context.Background()

	league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 3, 6)
	_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
	require.NoError(t, err)

	// Snake over positions 1,2,3: forward, then reversed
	wantCaptains := []*domain.Captain{
		captains[0], captains[1], captains[2],
		captains[2], captains[1], captains[0],
	}

	for i, captain := range wantCaptains {
		snap, err := fx.drafts.Snapshot(ctx, league.ID)
		require.NoError(t, err)
		require.NotNil(t, snap.CurrentCaptainID)
		assert.Equal(t, captain.ID, *snap.CurrentCaptainID, "pick index %d", i)

		committed, err := fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID:         captain.ID,
			PlayerID:          players[i].ID,
			ExpectedPickIndex: i,
		}, captainActor(captain))
		require.NoError(t, err, "pick index %d", i)

		assert.Equal(t, i+1, committed.Pick.PickNumber)
		assert.Equal(t, i+1, committed.NewPickIndex)
		assert.Equal(t, captain.ID, committed.Captain.ID)
		assert.Equal(t, players[i].ID, committed.Player.ID)
		assert.False(t, committed.Pick.IsAutoPick)
		assert.Equal(t, i == len(wantCaptains)-1, committed.Completed)
	}

	final, err := fx.repos.League.GetByID(ctx, league.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.LeagueStatusCompleted, final.Status)
	assert.Equal(t, 6, final.CurrentPickIndex)
	assert.Nil(t, final.CurrentPickStartedAt)

	picks, err := fx.repos.Pick.ListByLeague(ctx, league.ID)
	require.NoError(t, err)
	require.Len(t, picks, 6)
	for i, pick := range picks {
		assert.Equal(t, i+1, pick.PickNumber)
	}

	pool, err := fx.repos.Player.ListByLeague(ctx, league.ID)
	require.NoError(t, err)
	for _, p := range pool {
		assert.True(t, p.Drafted(), "player %s", p.Name)
	}
}

func TestDraftService_RoundRobinOrder(t *testing.T) {
	fx := newDraftFixture(t)
	ctx := context.Background()

	league := testutil.NewLeagueBuilder().
		WithAlgorithm(domain.DraftAlgorithmRoundRobin).
		Build(t, fx.db.DB)
	c1 := testutil.NewCaptainBuilder(league).WithPosition(1).Build(t, fx.db.DB)
	c2 := testutil.NewCaptainBuilder(league).WithPosition(2).Build(t, fx.db.DB)
	players := make([]*domain.Player, 4)
	for i := range players {
		players[i] = testutil.NewPlayerBuilder(league).Build(t, fx.db.DB)
	}

	_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
	require.NoError(t, err)

	// Round robin never reverses: 1,2,1,2
	for i, captain := range []*domain.Captain{c1, c2, c1, c2} {
		committed, err := fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID:         captain.ID,
			PlayerID:          players[i].ID,
			ExpectedPickIndex: i,
		}, captainActor(captain))
		require.NoError(t, err, "pick index %d", i)
		assert.Equal(t, captain.ID, committed.Captain.ID)
	}
}

func TestDraftService_SubmitPick_Rejections(t *testing.T) {
	fx := newDraftFixture(t)
	ctx := context.Background()

	t.Run("rejects a pick before the draft starts", func(t *testing.T) {
		league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)

		_, err := fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID: captains[0].ID,
			PlayerID:  players[0].ID,
		}, captainActor(captains[0]))
		assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	})

	t.Run("rejects a stale pick index", func(t *testing.T) {
		league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)
		_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID:         captains[0].ID,
			PlayerID:          players[0].ID,
			ExpectedPickIndex: 3,
		}, captainActor(captains[0]))
		assert.Equal(t, domain.CodeStaleState, domain.CodeOf(err))
	})

	t.Run("rejects a captain out of turn", func(t *testing.T) {
		league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)
		_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID:         captains[1].ID,
			PlayerID:          players[0].ID,
			ExpectedPickIndex: 0,
		}, captainActor(captains[1]))
		assert.Equal(t, domain.CodeNotYourTurn, domain.CodeOf(err))
	})

	t.Run("rejects submitting for another captain", func(t *testing.T) {
		league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)
		_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID:         captains[0].ID,
			PlayerID:          players[0].ID,
			ExpectedPickIndex: 0,
		}, captainActor(captains[1]))
		assert.Equal(t, domain.CodeTokenMismatch, domain.CodeOf(err))
	})

	t.Run("rejects spectators", func(t *testing.T) {
		league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)
		_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID:         captains[0].ID,
			PlayerID:          players[0].ID,
			ExpectedPickIndex: 0,
		}, domain.Actor{Type: domain.ActorSpectator})
		assert.Equal(t, domain.CodeTokenMismatch, domain.CodeOf(err))
	})

	t.Run("rejects an already drafted player", func(t *testing.T) {
		league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)
		_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID:         captains[0].ID,
			PlayerID:          players[0].ID,
			ExpectedPickIndex: 0,
		}, captainActor(captains[0]))
		require.NoError(t, err)

		_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID:         captains[1].ID,
			PlayerID:          players[0].ID,
			ExpectedPickIndex: 1,
		}, captainActor(captains[1]))
		assert.Equal(t, domain.CodeStaleState, domain.CodeOf(err))
	})

	t.Run("rejects a player from another league", func(t *testing.T) {
		league, captains, _ := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)
		_, _, otherPlayers := testutil.SeedDraftLeague(t, fx.db.DB, 1, 1)

		_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID:         captains[0].ID,
			PlayerID:          otherPlayers[0].ID,
			ExpectedPickIndex: 0,
		}, captainActor(captains[0]))
		assert.ErrorIs(t, err, service.ErrPlayerNotFound)
	})

	t.Run("rejects picks on an unknown league", func(t *testing.T) {
		_, err := fx.drafts.SubmitPick(ctx, uuid.New(), service.SubmitPickInput{
			CaptainID: uuid.New(),
			PlayerID:  uuid.New(),
		}, managerActor())
		assert.ErrorIs(t, err, service.ErrLeagueNotFound)
	})
}

func TestDraftService_SubmitPick_ConcurrentSameIndex(t *testing.T) {
	fx := newDraftFixture(t)
	ctx := context.Background()

	league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 2, 8)
	_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
	require.NoError(t, err)

	// Eight rival submissions for the same turn, each naming a different
	// player. The commit protocol must let exactly one through.
	const racers = 8
	results := make([]error, racers)
	var wg sync.WaitGroup
	for i := 0; i < racers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, results[i] = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
				CaptainID:         captains[0].ID,
				PlayerID:          players[i].ID,
				ExpectedPickIndex: 0,
			}, captainActor(captains[0]))
		}(i)
	}
	wg.Wait()

	wins := 0
	for _, err := range results {
		if err == nil {
			wins++
			continue
		}
		assert.Equal(t, domain.CodeStaleState, domain.CodeOf(err))
	}
	assert.Equal(t, 1, wins)

	final, err := fx.repos.League.GetByID(ctx, league.ID)
	require.NoError(t, err)
	assert.Equal(t, 1, final.CurrentPickIndex)

	picks, err := fx.repos.Pick.ListByLeague(ctx, league.ID)
	require.NoError(t, err)
	assert.Len(t, picks, 1)
}

func TestDraftService_AutoPick(t *testing.T) {
	fx := newDraftFixture(t)
	ctx := context.Background()

	league, _, _ := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)
	_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
	require.NoError(t, err)

	t.Run("rejects before the timer runs down", func(t *testing.T) {
		_, err := fx.drafts.AutoPick(ctx, league.ID, 0, domain.Actor{Type: domain.ActorSpectator})
		assert.Equal(t, domain.CodeTimerNotExpired, domain.CodeOf(err))
	})

	t.Run("commits a random pick once eligible", func(t *testing.T) {
		// Seeded leagues use a 30s limit; eligibility opens grace early
		fx.clock.Advance(30*time.Second - testGrace)

		committed, err := fx.drafts.AutoPick(ctx, league.ID, 0, domain.Actor{Type: domain.ActorSpectator})
		require.NoError(t, err)
		assert.True(t, committed.Pick.IsAutoPick)
		assert.Equal(t, 1, committed.NewPickIndex)
		assert.Equal(t, 1, committed.Pick.PickNumber)
	})

	t.Run("losers of the race get stale state", func(t *testing.T) {
		_, err := fx.drafts.AutoPick(ctx, league.ID, 0, domain.Actor{Type: domain.ActorSpectator})
		assert.Equal(t, domain.CodeStaleState, domain.CodeOf(err))
	})

	t.Run("rejects while paused", func(t *testing.T) {
		_, err := fx.drafts.PauseDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		_, err = fx.drafts.AutoPick(ctx, league.ID, 1, domain.Actor{Type: domain.ActorSpectator})
		assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	})
}

func TestDraftService_AutodraftPick(t *testing.T) {
	fx := newDraftFixture(t)
	ctx := context.Background()

	league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)
	c1, c2 := captains[0], captains[1]

	// Captain 1 queues players 2 and 3 and hands their turns to autodraft
	c1.AutoPickEnabled = true
	require.NoError(t, fx.repos.Captain.Update(ctx, c1))
	require.NoError(t, fx.repos.Queue.Add(ctx, &domain.QueueEntry{
		ID: uuid.New(), CaptainID: c1.ID, PlayerID: players[1].ID, Position: 1,
	}))
	require.NoError(t, fx.repos.Queue.Add(ctx, &domain.QueueEntry{
		ID: uuid.New(), CaptainID: c1.ID, PlayerID: players[2].ID, Position: 2,
	}))

	_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
	require.NoError(t, err)

	t.Run("drafts the queue head", func(t *testing.T) {
		committed, err := fx.drafts.AutodraftPick(ctx, league.ID, 0)
		require.NoError(t, err)
		assert.Equal(t, c1.ID, committed.Captain.ID)
		assert.Equal(t, players[1].ID, committed.Player.ID)
		assert.True(t, committed.Pick.IsAutoPick)
	})

	t.Run("rejects when the toggle is off", func(t *testing.T) {
		// Snake with two captains: index 1 is captain 2's turn
		_, err := fx.drafts.AutodraftPick(ctx, league.ID, 1)
		assert.Equal(t, domain.CodeStaleState, domain.CodeOf(err))
	})

	t.Run("falls back to random with an empty queue", func(t *testing.T) {
		c2.AutoPickEnabled = true
		require.NoError(t, fx.repos.Captain.Update(ctx, c2))

		committed, err := fx.drafts.AutodraftPick(ctx, league.ID, 1)
		require.NoError(t, err)
		assert.Equal(t, c2.ID, committed.Captain.ID)
		assert.Contains(t, []uuid.UUID{players[0].ID, players[2].ID, players[3].ID}, committed.Player.ID)
	})

	t.Run("skips queued players drafted by others", func(t *testing.T) {
		// Captain 2 takes index 2 as well (snake), shrinking the pool to one.
		committed, err := fx.drafts.AutodraftPick(ctx, league.ID, 2)
		require.NoError(t, err)
		require.Equal(t, c2.ID, committed.Captain.ID)

		// Captain 1's queue holds only drafted players by now; the pick
		// falls through to the last one standing and completes the draft.
		committed, err = fx.drafts.AutodraftPick(ctx, league.ID, 3)
		require.NoError(t, err)
		assert.Equal(t, c1.ID, committed.Captain.ID)
		assert.NotEqual(t, players[1].ID, committed.Player.ID)
		assert.True(t, committed.Completed)

		final, err := fx.repos.League.GetByID(ctx, league.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LeagueStatusCompleted, final.Status)
	})
}

func TestDraftService_UndoLastPick(t *testing.T) {
	fx := newDraftFixture(t)
	ctx := context.Background()

	league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)
	c1, c2 := captains[0], captains[1]

	_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
	require.NoError(t, err)

	_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
		CaptainID: c1.ID, PlayerID: players[0].ID, ExpectedPickIndex: 0,
	}, captainActor(c1))
	require.NoError(t, err)
	_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
		CaptainID: c2.ID, PlayerID: players[1].ID, ExpectedPickIndex: 1,
	}, captainActor(c2))
	require.NoError(t, err)

	t.Run("rejects captains", func(t *testing.T) {
		_, err := fx.drafts.UndoLastPick(ctx, league.ID, captainActor(c1))
		assert.Equal(t, domain.CodeTokenMismatch, domain.CodeOf(err))
	})

	t.Run("removes the newest pick and re-stamps the timer", func(t *testing.T) {
		fx.clock.Advance(5 * time.Second)

		undone, err := fx.drafts.UndoLastPick(ctx, league.ID, managerActor())
		require.NoError(t, err)
		assert.Equal(t, 2, undone.PickNumber)
		assert.Equal(t, players[1].ID, undone.PlayerID)

		fresh, err := fx.repos.League.GetByID(ctx, league.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, fresh.CurrentPickIndex)
		require.NotNil(t, fresh.CurrentPickStartedAt)
		assert.Equal(t, fx.clock.Now().UTC(), *fresh.CurrentPickStartedAt)

		player, err := fx.repos.Player.GetByID(ctx, players[1].ID)
		require.NoError(t, err)
		assert.False(t, player.Drafted())

		snap, err := fx.drafts.Snapshot(ctx, league.ID)
		require.NoError(t, err)
		assert.Contains(t, snap.AvailablePlayerIDs, players[1].ID)
	})

	t.Run("keeps the timer cleared when paused", func(t *testing.T) {
		_, err := fx.drafts.PauseDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		undone, err := fx.drafts.UndoLastPick(ctx, league.ID, managerActor())
		require.NoError(t, err)
		assert.Equal(t, 1, undone.PickNumber)

		fresh, err := fx.repos.League.GetByID(ctx, league.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LeagueStatusPaused, fresh.Status)
		assert.Equal(t, 0, fresh.CurrentPickIndex)
		assert.Nil(t, fresh.CurrentPickStartedAt)
	})

	t.Run("rejects with nothing to undo", func(t *testing.T) {
		_, err := fx.drafts.UndoLastPick(ctx, league.ID, managerActor())
		assert.Equal(t, domain.CodeStaleState, domain.CodeOf(err))
	})

	t.Run("rejects once completed", func(t *testing.T) {
		_, err := fx.drafts.ResumeDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		order := []*domain.Captain{c1, c2, c2, c1}
		for i, captain := range order {
			snap, err := fx.drafts.Snapshot(ctx, league.ID)
			require.NoError(t, err)
			_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
				CaptainID:         captain.ID,
				PlayerID:          snap.AvailablePlayerIDs[0],
				ExpectedPickIndex: i,
			}, captainActor(captain))
			require.NoError(t, err, "pick index %d", i)
		}

		_, err = fx.drafts.UndoLastPick(ctx, league.ID, managerActor())
		assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	})
}

func TestDraftService_PauseResume(t *testing.T) {
	fx := newDraftFixture(t)
	ctx := context.Background()

	league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 2, 4)

	t.Run("cannot pause before starting", func(t *testing.T) {
		_, err := fx.drafts.PauseDraft(ctx, league.ID, managerActor())
		assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	})

	t.Run("pause clears the timer anchor", func(t *testing.T) {
		_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		paused, err := fx.drafts.PauseDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)
		assert.Equal(t, domain.LeagueStatusPaused, paused.Status)
		assert.Nil(t, paused.CurrentPickStartedAt)
	})

	t.Run("no picks land while paused", func(t *testing.T) {
		_, err := fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID: captains[0].ID, PlayerID: players[0].ID, ExpectedPickIndex: 0,
		}, captainActor(captains[0]))
		assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	})

	t.Run("resume grants the full limit again", func(t *testing.T) {
		fx.clock.Advance(10 * time.Minute)

		resumed, err := fx.drafts.ResumeDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)
		assert.Equal(t, domain.LeagueStatusInProgress, resumed.Status)
		require.NotNil(t, resumed.CurrentPickStartedAt)
		assert.Equal(t, fx.clock.Now().UTC(), *resumed.CurrentPickStartedAt)
	})

	t.Run("cannot resume a running draft", func(t *testing.T) {
		_, err := fx.drafts.ResumeDraft(ctx, league.ID, managerActor())
		assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	})
}

func TestDraftService_RestartDraft(t *testing.T) {
	fx := newDraftFixture(t)
	ctx := context.Background()

	league, captains, players := testutil.SeedDraftLeague(t, fx.db.DB, 2, 3)
	c1, c2 := captains[0], captains[1]

	require.NoError(t, fx.repos.Queue.Add(ctx, &domain.QueueEntry{
		ID: uuid.New(), CaptainID: c1.ID, PlayerID: players[2].ID, Position: 1,
	}))

	_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
	require.NoError(t, err)

	_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
		CaptainID: c1.ID, PlayerID: players[0].ID, ExpectedPickIndex: 0,
	}, captainActor(c1))
	require.NoError(t, err)
	_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
		CaptainID: c2.ID, PlayerID: players[1].ID, ExpectedPickIndex: 1,
	}, captainActor(c2))
	require.NoError(t, err)

	t.Run("only a paused draft restarts", func(t *testing.T) {
		_, err := fx.drafts.RestartDraft(ctx, league.ID, managerActor())
		assert.Equal(t, domain.CodeInvalidTransition, domain.CodeOf(err))
	})

	t.Run("wipes picks but keeps the roster", func(t *testing.T) {
		_, err := fx.drafts.PauseDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)

		restarted, err := fx.drafts.RestartDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)
		assert.Equal(t, domain.LeagueStatusNotStarted, restarted.Status)
		assert.Equal(t, 0, restarted.CurrentPickIndex)
		assert.Nil(t, restarted.CurrentPickStartedAt)

		picks, err := fx.repos.Pick.ListByLeague(ctx, league.ID)
		require.NoError(t, err)
		assert.Empty(t, picks)

		pool, err := fx.repos.Player.ListByLeague(ctx, league.ID)
		require.NoError(t, err)
		for _, p := range pool {
			assert.False(t, p.Drafted(), "player %s", p.Name)
			assert.Nil(t, p.PickNumber)
		}

		// Captains, their order, and queues all survive a restart
		remaining, err := fx.repos.Captain.ListByLeague(ctx, league.ID)
		require.NoError(t, err)
		require.Len(t, remaining, 2)
		assert.Equal(t, c1.ID, remaining[0].ID)
		assert.Equal(t, c2.ID, remaining[1].ID)

		queue, err := fx.repos.Queue.ListByCaptain(ctx, c1.ID)
		require.NoError(t, err)
		assert.Len(t, queue, 1)
	})
}

func TestDraftService_Snapshot(t *testing.T) {
	fx := newDraftFixture(t)
	ctx := context.Background()

	t.Run("unknown league", func(t *testing.T) {
		_, err := fx.drafts.Snapshot(ctx, uuid.New())
		assert.ErrorIs(t, err, service.ErrLeagueNotFound)
	})

	league := testutil.NewLeagueBuilder().Build(t, fx.db.DB)
	players := make([]*domain.Player, 5)
	for i := range players {
		players[i] = testutil.NewPlayerBuilder(league).Build(t, fx.db.DB)
	}
	c1 := testutil.NewCaptainBuilder(league).WithPosition(1).WithLinkedPlayer(players[4]).Build(t, fx.db.DB)
	c2 := testutil.NewCaptainBuilder(league).WithPosition(2).Build(t, fx.db.DB)
	c3 := testutil.NewCaptainBuilder(league).WithPosition(3).Build(t, fx.db.DB)

	t.Run("mid-draft view", func(t *testing.T) {
		_, err := fx.drafts.StartDraft(ctx, league.ID, managerActor())
		require.NoError(t, err)
		_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
			CaptainID: c1.ID, PlayerID: players[0].ID, ExpectedPickIndex: 0,
		}, captainActor(c1))
		require.NoError(t, err)

		snap, err := fx.drafts.Snapshot(ctx, league.ID)
		require.NoError(t, err)

		assert.Equal(t, 1, snap.League.CurrentPickIndex)
		require.Len(t, snap.Captains, 3)
		assert.Equal(t, c1.ID, snap.Captains[0].ID)

		// Pool: five players minus one drafted minus one captain-linked
		assert.Len(t, snap.AvailablePlayerIDs, 3)
		assert.NotContains(t, snap.AvailablePlayerIDs, players[0].ID)
		assert.NotContains(t, snap.AvailablePlayerIDs, players[4].ID)

		assert.Equal(t, 4, snap.TotalPicks)
		assert.Equal(t, int(testGrace.Seconds()), snap.GraceSeconds)
		require.NotNil(t, snap.CurrentCaptainID)
		assert.Equal(t, c2.ID, *snap.CurrentCaptainID)

		require.Len(t, snap.Upcoming, 3)
		assert.Equal(t, 1, snap.Upcoming[0].PickIndex)
		assert.Equal(t, c2.ID, snap.Upcoming[0].CaptainID)
		assert.Equal(t, c3.ID, snap.Upcoming[1].CaptainID)
		assert.Equal(t, c3.ID, snap.Upcoming[2].CaptainID)

		require.Len(t, snap.Picks, 1)
		assert.Equal(t, 1, snap.Picks[0].PickNumber)
	})

	t.Run("completed view has no turn", func(t *testing.T) {
		for i, captain := range []*domain.Captain{c2, c3, c3} {
			snap, err := fx.drafts.Snapshot(ctx, league.ID)
			require.NoError(t, err)
			_, err = fx.drafts.SubmitPick(ctx, league.ID, service.SubmitPickInput{
				CaptainID:         captain.ID,
				PlayerID:          snap.AvailablePlayerIDs[0],
				ExpectedPickIndex: i + 1,
			}, captainActor(captain))
			require.NoError(t, err, "pick index %d", i+1)
		}

		snap, err := fx.drafts.Snapshot(ctx, league.ID)
		require.NoError(t, err)
		assert.Equal(t, domain.LeagueStatusCompleted, snap.League.Status)
		assert.Nil(t, snap.CurrentCaptainID)
		assert.Empty(t, snap.Upcoming)
		assert.Empty(t, snap.AvailablePlayerIDs)
	})
}
