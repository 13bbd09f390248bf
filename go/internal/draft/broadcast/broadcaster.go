package broadcast

import (
	"context"

	"github.com/rs/zerolog/log"

	"github.com/mcdev12/draftroom/go/internal/draft/events"
)

// Broadcaster delivers session events to subscribers. Delivery is
// best-effort relative to state mutation: committed state is the source of
// truth and a transport failure never rolls a command back.
type Broadcaster interface {
	Publish(ctx context.Context, event events.Event) error
}

// Fanout publishes to every wrapped broadcaster. Individual failures are
// logged and do not stop the rest of the fan-out.
type Fanout []Broadcaster

func (f Fanout) Publish(ctx context.Context, event events.Event) error {
	for _, b := range f {
		if err := b.Publish(ctx, event); err != nil {
			log.Error().
				Err(err).
				Str("event_id", event.ID).
				Str("event_type", string(event.Type)).
				Str("league_id", event.LeagueID).
				Msg("broadcast delivery failed")
		}
	}
	return nil
}
