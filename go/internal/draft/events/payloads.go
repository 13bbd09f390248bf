package events

import (
	"time"

	"github.com/mcdev12/draftroom/go/internal/models"
)

// Typed payloads for each event in the envelope's Payload field.

// DraftStartedPayload is the payload for a DraftStarted event.
type DraftStartedPayload struct {
	LeagueID    string    `json:"league_id"`
	StartedAt   time.Time `json:"started_at"`
	TotalRounds int       `json:"total_rounds"`
	TotalPicks  int       `json:"total_picks"`
	OrderPolicy string    `json:"order_policy"`
}

// TurnChangedPayload announces whose turn it is and when it auto-resolves.
type TurnChangedPayload struct {
	ParticipantID string    `json:"participant_id"`
	PickNumber    int       `json:"pick_number"`
	Round         int       `json:"round"`
	Deadline      time.Time `json:"deadline"`
}

// PickRecordedPayload is the payload for a PickRecorded event.
type PickRecordedPayload struct {
	Pick models.DraftPick `json:"pick"`
}

// TimerTickPayload carries the seconds remaining on the current pick,
// derived from the deadline so countdowns never accumulate drift.
type TimerTickPayload struct {
	PickNumber       int `json:"pick_number"`
	SecondsRemaining int `json:"seconds_remaining"`
}

// DraftPausedPayload is the payload for a DraftPaused event.
type DraftPausedPayload struct {
	PausedAt time.Time `json:"paused_at"`
	Reason   string    `json:"reason"`
}

// DraftResumedPayload is the payload for a DraftResumed event.
type DraftResumedPayload struct {
	ResumedAt time.Time `json:"resumed_at"`
	Deadline  time.Time `json:"deadline"`
}

// DraftCompletedPayload is the payload for a DraftCompleted event.
type DraftCompletedPayload struct {
	CompletedAt time.Time `json:"completed_at"`
	Duration    string    `json:"duration"`
	TotalPicks  int       `json:"total_picks"`
}

// DraftResetPayload is the payload for a DraftReset event.
type DraftResetPayload struct {
	ResetAt time.Time `json:"reset_at"`
}

// PickRejectedPayload is delivered only to the originating caller, never
// broadcast, so one participant's invalid attempt does not confuse others.
type PickRejectedPayload struct {
	ParticipantID string `json:"participant_id"`
	PlayerID      string `json:"player_id,omitempty"`
	Reason        string `json:"reason"`
	Message       string `json:"message"`
}
