package events

import (
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// EventType represents the type of draft event.
type EventType string

const (
	EventTypeDraftStarted   EventType = "DraftStarted"
	EventTypeTurnChanged    EventType = "TurnChanged"
	EventTypePickRecorded   EventType = "PickRecorded"
	EventTypeTimerTick      EventType = "TimerTick"
	EventTypeDraftPaused    EventType = "DraftPaused"
	EventTypeDraftResumed   EventType = "DraftResumed"
	EventTypeDraftCompleted EventType = "DraftCompleted"
	EventTypeDraftReset     EventType = "DraftReset"
	EventTypePickRejected   EventType = "PickRejected"
)

// Event is the envelope for all draft events on the wire.
type Event struct {
	ID        string          `json:"event_id"`
	LeagueID  string          `json:"league_id"`
	Type      EventType       `json:"type"`
	Timestamp time.Time       `json:"timestamp"`
	Payload   json.RawMessage `json:"payload"`
}

// New wraps a payload in an envelope with a fresh event ID.
func New(leagueID uuid.UUID, typ EventType, payload any, now time.Time) (Event, error) {
	data, err := json.Marshal(payload)
	if err != nil {
		return Event{}, fmt.Errorf("marshal %s payload: %w", typ, err)
	}
	return Event{
		ID:        uuid.New().String(),
		LeagueID:  leagueID.String(),
		Type:      typ,
		Timestamp: now,
		Payload:   data,
	}, nil
}

// ParsePayload decodes the envelope's payload into the typed struct for
// its event type. Unknown types return nil, nil.
func ParsePayload(e Event) (any, error) {
	switch e.Type {
	case EventTypeDraftStarted:
		var p DraftStartedPayload
		return &p, json.Unmarshal(e.Payload, &p)
	case EventTypeTurnChanged:
		var p TurnChangedPayload
		return &p, json.Unmarshal(e.Payload, &p)
	case EventTypePickRecorded:
		var p PickRecordedPayload
		return &p, json.Unmarshal(e.Payload, &p)
	case EventTypeTimerTick:
		var p TimerTickPayload
		return &p, json.Unmarshal(e.Payload, &p)
	case EventTypeDraftPaused:
		var p DraftPausedPayload
		return &p, json.Unmarshal(e.Payload, &p)
	case EventTypeDraftResumed:
		var p DraftResumedPayload
		return &p, json.Unmarshal(e.Payload, &p)
	case EventTypeDraftCompleted:
		var p DraftCompletedPayload
		return &p, json.Unmarshal(e.Payload, &p)
	case EventTypeDraftReset:
		var p DraftResetPayload
		return &p, json.Unmarshal(e.Payload, &p)
	case EventTypePickRejected:
		var p PickRejectedPayload
		return &p, json.Unmarshal(e.Payload, &p)
	default:
		return nil, nil
	}
}
