package broadcast

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft/events"
)

const subscriptionBuffer = 256

// Bus is the in-process broadcaster: a typed event stream with per-league
// subscriptions plus firehose subscriptions for transports that route
// themselves. Sends never block; a subscriber that cannot keep up drops
// events and reconciles via snapshot.
type Bus struct {
	mu       sync.RWMutex
	byLeague map[uuid.UUID]map[*Subscription]bool
	all      map[*Subscription]bool
}

// Subscription receives events on C until Unsubscribe is called.
type Subscription struct {
	C chan events.Event

	bus      *Bus
	leagueID uuid.UUID
	firehose bool
}

func NewBus() *Bus {
	return &Bus{
		byLeague: make(map[uuid.UUID]map[*Subscription]bool),
		all:      make(map[*Subscription]bool),
	}
}

// Subscribe returns a subscription for one league's events.
func (b *Bus) Subscribe(leagueID uuid.UUID) *Subscription {
	sub := &Subscription{
		C:        make(chan events.Event, subscriptionBuffer),
		bus:      b,
		leagueID: leagueID,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.byLeague[leagueID] == nil {
		b.byLeague[leagueID] = make(map[*Subscription]bool)
	}
	b.byLeague[leagueID][sub] = true
	return sub
}

// SubscribeAll returns a subscription receiving every league's events.
func (b *Bus) SubscribeAll() *Subscription {
	sub := &Subscription{
		C:        make(chan events.Event, subscriptionBuffer),
		bus:      b,
		firehose: true,
	}
	b.mu.Lock()
	defer b.mu.Unlock()
	b.all[sub] = true
	return sub
}

// Unsubscribe removes the subscription and closes its channel.
func (s *Subscription) Unsubscribe() {
	b := s.bus
	b.mu.Lock()
	defer b.mu.Unlock()
	if s.firehose {
		if b.all[s] {
			delete(b.all, s)
			close(s.C)
		}
		return
	}
	subs := b.byLeague[s.leagueID]
	if subs != nil && subs[s] {
		delete(subs, s)
		close(s.C)
		if len(subs) == 0 {
			delete(b.byLeague, s.leagueID)
		}
	}
}

// Publish implements Broadcaster.
func (b *Bus) Publish(ctx context.Context, event events.Event) error {
	leagueID, err := uuid.Parse(event.LeagueID)
	if err != nil {
		return err
	}

	b.mu.RLock()
	targets := make([]*Subscription, 0, len(b.byLeague[leagueID])+len(b.all))
	for sub := range b.byLeague[leagueID] {
		targets = append(targets, sub)
	}
	for sub := range b.all {
		targets = append(targets, sub)
	}
	b.mu.RUnlock()

	for _, sub := range targets {
		select {
		case sub.C <- event:
		default:
			log.Warn().
				Str("event_type", string(event.Type)).
				Str("league_id", event.LeagueID).
				Msg("subscriber buffer full, dropping event")
		}
	}
	return nil
}
