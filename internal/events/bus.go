package events

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
)

type EventType string

const (
	DraftStarted    EventType = "draft.started"
	DraftPaused     EventType = "draft.paused"
	DraftResumed    EventType = "draft.resumed"
	DraftRestarted  EventType = "draft.restarted"
	DraftCompleted  EventType = "draft.completed"
	PickCommitted   EventType = "pick.committed"
	PickUndone      EventType = "pick.undone"
	CaptainsReorder EventType = "captains.reordered"
	AutoPickToggled EventType = "autopick.toggled"
)

// Event is one committed change to a league's draft state. Events are a
// latency optimization over snapshot polling: consumers re-read authoritative
// state rather than applying payloads as deltas.
type Event struct {
	Type     EventType       `json:"type"`
	LeagueID uuid.UUID       `json:"leagueId"`
	At       time.Time       `json:"at"`
	Payload  json.RawMessage `json:"payload,omitempty"`
}

type PickPayload struct {
	PickNumber   int       `json:"pickNumber"`
	CaptainID    uuid.UUID `json:"captainId"`
	PlayerID     uuid.UUID `json:"playerId"`
	IsAutoPick   bool      `json:"isAutoPick"`
	NewPickIndex int       `json:"newPickIndex"`
}

func New(eventType EventType, leagueID uuid.UUID, payload any) Event {
	e := Event{Type: eventType, LeagueID: leagueID, At: time.Now().UTC()}
	if payload != nil {
		data, err := json.Marshal(payload)
		if err != nil {
			log.Warn().Err(err).Str("type", string(eventType)).Msg("failed to marshal event payload")
		} else {
			e.Payload = data
		}
	}
	return e
}

// Upstream bridges events across service instances (e.g. NATS). When one is
// configured, publishes go to the upstream only and come back through its
// subscription, so every instance sees one stream.
type Upstream interface {
	Publish(Event)
	Subscribe() chan Event
	Close()
}

type Bus struct {
	mu          sync.RWMutex
	subscribers []chan Event
	upstream    Upstream
}

func NewBus() *Bus {
	return &Bus{}
}

func NewBusWithUpstream(upstream Upstream) *Bus {
	b := &Bus{upstream: upstream}
	go func() {
		for event := range upstream.Subscribe() {
			b.publishLocal(event)
		}
	}()
	return b
}

func (b *Bus) Subscribe() chan Event {
	b.mu.Lock()
	defer b.mu.Unlock()

	ch := make(chan Event, 32)
	b.subscribers = append(b.subscribers, ch)
	return ch
}

func (b *Bus) Unsubscribe(ch chan Event) {
	b.mu.Lock()
	defer b.mu.Unlock()

	for i, sub := range b.subscribers {
		if sub == ch {
			close(ch)
			b.subscribers = append(b.subscribers[:i], b.subscribers[i+1:]...)
			break
		}
	}
}

func (b *Bus) Publish(event Event) {
	if b.upstream != nil {
		b.upstream.Publish(event)
		return
	}
	b.publishLocal(event)
}

func (b *Bus) publishLocal(event Event) {
	b.mu.RLock()
	subs := make([]chan Event, len(b.subscribers))
	copy(subs, b.subscribers)
	b.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
			// Slow subscriber; it will catch up from the next snapshot.
		}
	}
}

func (b *Bus) Close() {
	if b.upstream != nil {
		b.upstream.Close()
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	for _, ch := range b.subscribers {
		close(ch)
	}
	b.subscribers = nil
}
