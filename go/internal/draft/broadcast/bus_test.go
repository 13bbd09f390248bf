package broadcast

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mcdev12/draftroom/go/internal/draft/events"
)

func testEvent(t *testing.T, leagueID uuid.UUID) events.Event {
	t.Helper()
	ev, err := events.New(leagueID, events.EventTypeTimerTick, events.TimerTickPayload{SecondsRemaining: 10}, time.Now())
	require.NoError(t, err)
	return ev
}

func receive(t *testing.T, sub *Subscription) events.Event {
	t.Helper()
	select {
	case ev := <-sub.C:
		return ev
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for event")
		return events.Event{}
	}
}

func TestBusRoutesByLeague(t *testing.T) {
	bus := NewBus()
	leagueA := uuid.New()
	leagueB := uuid.New()

	subA := bus.Subscribe(leagueA)
	defer subA.Unsubscribe()
	subB := bus.Subscribe(leagueB)
	defer subB.Unsubscribe()

	ev := testEvent(t, leagueA)
	require.NoError(t, bus.Publish(context.Background(), ev))

	got := receive(t, subA)
	assert.Equal(t, ev.ID, got.ID)

	select {
	case <-subB.C:
		t.Fatal("league B subscriber received league A event")
	case <-time.After(50 * time.Millisecond):
	}
}

func TestBusFirehoseReceivesAllLeagues(t *testing.T) {
	bus := NewBus()
	all := bus.SubscribeAll()
	defer all.Unsubscribe()

	evA := testEvent(t, uuid.New())
	evB := testEvent(t, uuid.New())
	require.NoError(t, bus.Publish(context.Background(), evA))
	require.NoError(t, bus.Publish(context.Background(), evB))

	assert.Equal(t, evA.ID, receive(t, all).ID)
	assert.Equal(t, evB.ID, receive(t, all).ID)
}

func TestBusUnsubscribeClosesChannel(t *testing.T) {
	bus := NewBus()
	leagueID := uuid.New()
	sub := bus.Subscribe(leagueID)

	sub.Unsubscribe()
	_, open := <-sub.C
	assert.False(t, open)

	// publishing after unsubscribe is harmless
	require.NoError(t, bus.Publish(context.Background(), testEvent(t, leagueID)))
}

func TestBusDropsWhenSubscriberFull(t *testing.T) {
	bus := NewBus()
	leagueID := uuid.New()
	sub := bus.Subscribe(leagueID)
	defer sub.Unsubscribe()

	for i := 0; i < subscriptionBuffer+10; i++ {
		require.NoError(t, bus.Publish(context.Background(), testEvent(t, leagueID)))
	}
	assert.Len(t, sub.C, subscriptionBuffer)
}

type failingBroadcaster struct{}

func (failingBroadcaster) Publish(ctx context.Context, event events.Event) error {
	return errors.New("transport down")
}

func TestFanoutContinuesPastFailure(t *testing.T) {
	bus := NewBus()
	leagueID := uuid.New()
	sub := bus.Subscribe(leagueID)
	defer sub.Unsubscribe()

	fanout := Fanout{failingBroadcaster{}, bus}
	ev := testEvent(t, leagueID)
	require.NoError(t, fanout.Publish(context.Background(), ev))

	assert.Equal(t, ev.ID, receive(t, sub).ID)
}
