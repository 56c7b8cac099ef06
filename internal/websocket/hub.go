package websocket

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/events"
	"github.com/rfox/draftroom/internal/service"
	"github.com/rs/zerolog/log"
)

type LeagueProvider interface {
	GetLeague(ctx context.Context, id uuid.UUID) (*domain.League, error)
}

type SnapshotProvider interface {
	Snapshot(ctx context.Context, leagueID uuid.UUID) (*service.DraftSnapshot, error)
}

type ActorResolver interface {
	ResolveActor(ctx context.Context, league *domain.League, creds service.Credentials, ip string) (domain.Actor, error)
}

// Hub accepts websocket clients and routes them into per-league rooms. It
// owns the bus subscription: events fan out to the room for their league,
// which rebroadcasts them with a fresh snapshot.
type Hub struct {
	leagues   LeagueProvider
	snapshots SnapshotProvider
	auth      ActorResolver
	bus       *events.Bus
	clock     clockwork.Clock

	rooms   map[uuid.UUID]*Room
	clients map[*Client]bool

	register   chan *Client
	unregister chan *Client
	joinLeague chan *JoinLeagueRequest

	stop    chan struct{}
	done    chan struct{}
	stopped bool
	mu      sync.RWMutex
}

type JoinLeagueRequest struct {
	Client  *Client
	Payload JoinLeaguePayload
}

func NewHub(leagues LeagueProvider, snapshots SnapshotProvider, auth ActorResolver, bus *events.Bus, clock clockwork.Clock) *Hub {
	return &Hub{
		leagues:    leagues,
		snapshots:  snapshots,
		auth:       auth,
		bus:        bus,
		clock:      clock,
		rooms:      make(map[uuid.UUID]*Room),
		clients:    make(map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		joinLeague: make(chan *JoinLeagueRequest),
		stop:       make(chan struct{}),
		done:       make(chan struct{}),
	}
}

func (h *Hub) Run() {
	defer close(h.done)

	sub := h.bus.Subscribe()
	defer h.bus.Unsubscribe(sub)

	for {
		select {
		case <-h.stop:
			h.shutdown()
			return

		case client := <-h.register:
			h.clients[client] = true

		case client := <-h.unregister:
			if _, ok := h.clients[client]; ok {
				delete(h.clients, client)
				if client.room != nil {
					client.room.leave <- client
				}
				client.Close()
			}

		case req := <-h.joinLeague:
			h.handleJoinLeague(req)

		case event := <-sub:
			if room, ok := h.rooms[event.LeagueID]; ok {
				room.deliver(event)
			}
		}
	}
}

// Stop shuts down every room, closes every client, and blocks until the hub
// loop has exited.
func (h *Hub) Stop() {
	h.mu.Lock()
	if h.stopped {
		h.mu.Unlock()
		return
	}
	h.stopped = true
	h.mu.Unlock()

	close(h.stop)
	<-h.done
}

func (h *Hub) shutdown() {
	for _, room := range h.rooms {
		room.Stop()
	}
	for client := range h.clients {
		client.Close()
	}
	h.rooms = make(map[uuid.UUID]*Room)
	h.clients = make(map[*Client]bool)
}

func (h *Hub) Register(client *Client) {
	select {
	case h.register <- client:
	case <-h.stop:
	}
}

func (h *Hub) Unregister(client *Client) {
	select {
	case h.unregister <- client:
	case <-h.stop:
	}
}

// handleJoinLeague resolves the client's credentials against the league and,
// on success, places the client in that league's room. Joining is how a
// connection proves it may watch a league; the room sends the first
// STATE_SYNC on entry.
func (h *Hub) handleJoinLeague(req *JoinLeagueRequest) {
	leagueID, err := uuid.Parse(req.Payload.LeagueID)
	if err != nil {
		req.Client.sendError("INVALID_PAYLOAD", "leagueId is not a valid UUID")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	league, err := h.leagues.GetLeague(ctx, leagueID)
	if err != nil {
		if errors.Is(err, service.ErrLeagueNotFound) {
			req.Client.sendError("LEAGUE_NOT_FOUND", "League does not exist")
		} else {
			log.Error().Err(err).Str("league_id", leagueID.String()).Msg("Failed to load league for join")
			req.Client.sendError("SYNC_FAILED", "Could not load the league")
		}
		return
	}

	creds := service.Credentials{UserID: req.Client.userID, Token: req.Payload.Token}
	actor, err := h.auth.ResolveActor(ctx, league, creds, req.Client.ip)
	if err != nil {
		req.Client.sendError(string(domain.CodeTokenMismatch), "Credentials do not grant access to this league")
		return
	}

	if req.Client.room != nil {
		req.Client.room.leave <- req.Client
	}

	room, ok := h.rooms[leagueID]
	if !ok {
		room = NewRoom(leagueID, h.snapshots, h.clock)
		h.rooms[leagueID] = room
		go room.Run()
		log.Debug().Str("league_id", leagueID.String()).Msg("Opened feed room")
	}

	req.Client.actor = &actor
	req.Client.room = room
	room.join <- req.Client
}
