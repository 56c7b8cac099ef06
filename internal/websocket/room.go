package websocket

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jonboulle/clockwork"
	"github.com/rfox/draftroom/internal/domain"
	"github.com/rfox/draftroom/internal/events"
	"github.com/rfox/draftroom/internal/service"
	"github.com/rs/zerolog/log"
)

// eventMessages maps bus events to the feed message broadcast for them. Each
// event message is followed by a fresh STATE_SYNC, so clients may treat the
// event itself as a notification and render from the snapshot.
var eventMessages = map[events.EventType]MessageType{
	events.DraftStarted:    MessageTypeDraftStarted,
	events.DraftPaused:     MessageTypeDraftPaused,
	events.DraftResumed:    MessageTypeDraftResumed,
	events.DraftRestarted:  MessageTypeDraftRestarted,
	events.DraftCompleted:  MessageTypeDraftCompleted,
	events.PickCommitted:   MessageTypePickCommitted,
	events.PickUndone:      MessageTypePickUndone,
	events.CaptainsReorder: MessageTypeOrderChanged,
	events.AutoPickToggled: MessageTypeAutoPickToggled,
}

// Room fans one league's feed out to its connected clients: bus events,
// snapshot syncs, and a once-per-second timer tick while a pick is on the
// clock. The tick is advisory; the commit protocol is the only place timing
// is enforced.
type Room struct {
	leagueID  uuid.UUID
	snapshots SnapshotProvider
	clock     clockwork.Clock

	clients  map[*Client]bool
	lastSnap *service.DraftSnapshot

	join      chan *Client
	leave     chan *Client
	events    chan events.Event
	syncState chan *Client
	stop      chan struct{}
	done      chan struct{}
}

func NewRoom(leagueID uuid.UUID, snapshots SnapshotProvider, clock clockwork.Clock) *Room {
	return &Room{
		leagueID:  leagueID,
		snapshots: snapshots,
		clock:     clock,
		clients:   make(map[*Client]bool),
		join:      make(chan *Client),
		leave:     make(chan *Client, 32),
		events:    make(chan events.Event, 32),
		syncState: make(chan *Client),
		stop:      make(chan struct{}),
		done:      make(chan struct{}),
	}
}

func (r *Room) Run() {
	defer close(r.done)

	ticker := r.clock.NewTicker(time.Second)
	defer ticker.Stop()

	for {
		select {
		case <-r.stop:
			return

		case client := <-r.join:
			r.clients[client] = true
			r.sendStateSync(client)

		case client := <-r.leave:
			delete(r.clients, client)

		case event := <-r.events:
			r.handleEvent(event)

		case client := <-r.syncState:
			r.sendStateSync(client)

		case <-ticker.Chan():
			r.broadcastTimerTick()
		}
	}
}

// Stop shuts the room down and waits for its loop to exit.
func (r *Room) Stop() {
	close(r.stop)
	<-r.done
}

// deliver hands a bus event to the room without blocking the hub. A full
// buffer drops the event; the periodic resync makes that loss invisible.
func (r *Room) deliver(event events.Event) {
	select {
	case r.events <- event:
	default:
		log.Warn().
			Str("league_id", r.leagueID.String()).
			Str("type", string(event.Type)).
			Msg("Room event buffer full; event dropped")
	}
}

func (r *Room) handleEvent(event events.Event) {
	msgType, ok := eventMessages[event.Type]
	if !ok {
		return
	}

	msg := &Message{
		Type:      msgType,
		Payload:   event.Payload,
		Timestamp: event.At.UnixMilli(),
	}
	r.broadcast(msg)

	// Every event invalidates the cached snapshot; rebroadcast the
	// authoritative state so clients never have to apply deltas.
	if snap := r.fetchSnapshot(); snap != nil {
		for client := range r.clients {
			r.sendSnapshot(client, snap)
		}
	}
}

func (r *Room) sendStateSync(client *Client) {
	snap := r.fetchSnapshot()
	if snap == nil {
		client.sendError("SYNC_FAILED", "Could not load the draft snapshot")
		return
	}
	r.sendSnapshot(client, snap)
}

func (r *Room) sendSnapshot(client *Client, snap *service.DraftSnapshot) {
	payload := StateSyncPayload{Snapshot: snap}
	if client.actor != nil {
		payload.YourRole = string(client.actor.Type)
		payload.YourCaptainID = client.actor.CaptainID
	}
	msg, err := NewMessage(MessageTypeStateSync, payload)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to build state sync message")
		return
	}
	client.Send(msg)
}

func (r *Room) fetchSnapshot() *service.DraftSnapshot {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	snap, err := r.snapshots.Snapshot(ctx, r.leagueID)
	if err != nil {
		log.Warn().Err(err).Str("league_id", r.leagueID.String()).Msg("Failed to fetch snapshot")
		return nil
	}
	r.lastSnap = snap
	return snap
}

func (r *Room) broadcastTimerTick() {
	if len(r.clients) == 0 || r.lastSnap == nil {
		return
	}
	league := r.lastSnap.League
	if league.Status != domain.LeagueStatusInProgress || league.CurrentPickStartedAt == nil {
		return
	}

	deadline := league.CurrentPickStartedAt.Add(time.Duration(league.TimeLimitSeconds) * time.Second)
	remaining := deadline.Sub(r.clock.Now()).Seconds()
	if remaining < 0 {
		remaining = 0
	}

	msg, err := NewMessage(MessageTypeTimerTick, TimerTickPayload{
		PickIndex:        league.CurrentPickIndex,
		RemainingSeconds: remaining,
	})
	if err != nil {
		return
	}
	r.broadcast(msg)
}

func (r *Room) broadcast(msg *Message) {
	data, err := json.Marshal(msg)
	if err != nil {
		log.Warn().Err(err).Msg("Failed to marshal broadcast message")
		return
	}
	for client := range r.clients {
		select {
		case client.send <- data:
		default:
			// Slow client; it catches up from the next state sync.
		}
	}
}
