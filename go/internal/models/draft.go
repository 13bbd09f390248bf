package models

import (
	"time"

	"github.com/google/uuid"
)

// DraftStatus defines the lifecycle state of a draft session.
type DraftStatus string

const (
	DraftStatusCreated   DraftStatus = "CREATED"
	DraftStatusActive    DraftStatus = "ACTIVE"
	DraftStatusPaused    DraftStatus = "PAUSED"
	DraftStatusCompleted DraftStatus = "COMPLETED"
)

// OrderPolicy defines how the participant order maps onto pick numbers.
// Round-robin repeats the same order every round; snake reverses it on
// every even round. The policy is fixed league configuration, never inferred.
type OrderPolicy string

const (
	OrderPolicyRoundRobin OrderPolicy = "ROUND_ROBIN"
	OrderPolicySnake      OrderPolicy = "SNAKE"
)

// DraftSettings holds league-configured draft parameters.
type DraftSettings struct {
	MaxRounds      int         `json:"max_rounds"`
	TimePerPickSec int         `json:"time_per_pick_sec"`
	OrderPolicy    OrderPolicy `json:"order_policy"`
}

// DraftSession is the root aggregate for one league's live draft.
// At most one session exists per league; all mutation goes through the
// session manager's command surface.
type DraftSession struct {
	LeagueID          uuid.UUID     `json:"league_id"`
	ParticipantOrder  []uuid.UUID   `json:"participant_order"`
	Picks             []DraftPick   `json:"picks"`
	CurrentPickNumber int           `json:"current_pick_number"`
	Status            DraftStatus   `json:"status"`
	Settings          DraftSettings `json:"settings"`
	TimerDeadline     *time.Time    `json:"timer_deadline,omitempty"`
	CreatedAt         time.Time     `json:"created_at"`
	StartedAt         *time.Time    `json:"started_at,omitempty"`
	CompletedAt       *time.Time    `json:"completed_at,omitempty"`
}

// TotalPicks returns the number of picks a full draft records.
func (s *DraftSession) TotalPicks() int {
	return s.Settings.MaxRounds * len(s.ParticipantOrder)
}
