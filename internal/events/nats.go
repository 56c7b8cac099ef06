package events

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nats-io/nats.go"
	"github.com/rs/zerolog/log"
)

// NATSUpstream fans events out over core NATS so multiple service instances
// share one event stream. Each league gets its own subject under a common
// prefix; we subscribe to the wildcard. Plain pub/sub is deliberate: the feed
// is a latency hint and consumers re-read authoritative state, so replay adds
// nothing.
type NATSUpstream struct {
	nc          *nats.Conn
	sub         *nats.Subscription
	prefix      string
	mu          sync.RWMutex
	subscribers []chan Event
}

func NewNATSUpstream(natsURL, prefix string) (*NATSUpstream, error) {
	nc, err := nats.Connect(natsURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to NATS: %w", err)
	}

	u := &NATSUpstream{
		nc:     nc,
		prefix: prefix,
	}

	u.sub, err = nc.Subscribe(prefix+".*", func(msg *nats.Msg) {
		var event Event
		if err := json.Unmarshal(msg.Data, &event); err != nil {
			log.Warn().Err(err).Msg("failed to unmarshal NATS event")
			return
		}
		u.deliver(event)
	})
	if err != nil {
		nc.Close()
		return nil, fmt.Errorf("failed to subscribe to %s.*: %w", prefix, err)
	}

	return u, nil
}

func (u *NATSUpstream) Publish(event Event) {
	data, err := json.Marshal(event)
	if err != nil {
		log.Warn().Err(err).Msg("failed to marshal event for NATS")
		return
	}
	subject := fmt.Sprintf("%s.%s", u.prefix, event.LeagueID)
	if err := u.nc.Publish(subject, data); err != nil {
		log.Warn().Err(err).Msg("failed to publish event to NATS")
	}
}

func (u *NATSUpstream) Subscribe() chan Event {
	u.mu.Lock()
	defer u.mu.Unlock()

	ch := make(chan Event, 32)
	u.subscribers = append(u.subscribers, ch)
	return ch
}

func (u *NATSUpstream) deliver(event Event) {
	u.mu.RLock()
	subs := make([]chan Event, len(u.subscribers))
	copy(subs, u.subscribers)
	u.mu.RUnlock()

	for _, ch := range subs {
		select {
		case ch <- event:
		default:
		}
	}
}

func (u *NATSUpstream) Close() {
	if u.sub != nil {
		_ = u.sub.Unsubscribe()
	}
	u.mu.Lock()
	for _, ch := range u.subscribers {
		close(ch)
	}
	u.subscribers = nil
	u.mu.Unlock()

	u.nc.Close()
}
