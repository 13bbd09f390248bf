package engine

import (
	"time"

	"github.com/google/uuid"

	"github.com/mcdev12/draftroom/go/internal/models"
)

// Session state transitions and pick validation. These functions are
// synchronous and never block; the session manager serializes access.

const minParticipants = 2

// NewSession validates the participant order and returns a fresh session
// in CREATED status.
func NewSession(leagueID uuid.UUID, order []uuid.UUID, settings models.DraftSettings, now time.Time) (*models.DraftSession, error) {
	if len(order) < minParticipants {
		return nil, ErrInvalidParticipantOrder
	}
	seen := make(map[uuid.UUID]bool, len(order))
	for _, p := range order {
		if seen[p] {
			return nil, ErrInvalidParticipantOrder
		}
		seen[p] = true
	}
	if settings.OrderPolicy == "" {
		settings.OrderPolicy = models.OrderPolicyRoundRobin
	}
	return &models.DraftSession{
		LeagueID:         leagueID,
		ParticipantOrder: append([]uuid.UUID(nil), order...),
		Picks:            []models.DraftPick{},
		Status:           models.DraftStatusCreated,
		Settings:         settings,
		CreatedAt:        now,
	}, nil
}

// ValidatePick checks a proposed pick against the current turn and
// availability invariants. pickNumber < 0 means "the current pick".
// The available set comes from the pool provider; players already in
// s.Picks are rejected regardless of what the provider reports.
func ValidatePick(s *models.DraftSession, participantID, playerID uuid.UUID, pickNumber int, available map[uuid.UUID]models.Player) error {
	if s.Status != models.DraftStatusActive {
		return ErrNotActive
	}
	if pickNumber >= 0 && pickNumber != s.CurrentPickNumber {
		return ErrDuplicateSubmission
	}
	current, _, _ := CurrentTurn(s)
	if participantID != current {
		return ErrNotYourTurn
	}
	for i := range s.Picks {
		if s.Picks[i].PlayerID == playerID {
			return ErrPlayerUnavailable
		}
	}
	if _, ok := available[playerID]; !ok {
		return ErrPlayerUnavailable
	}
	return nil
}

// ApplyPick appends a DraftPick for the current pick number and advances
// the sequencer. Callers must have validated first. The second return is
// true when this pick completed the draft.
func ApplyPick(s *models.DraftSession, participantID uuid.UUID, player models.Player, isAutoPick bool, now time.Time) (models.DraftPick, bool) {
	n := len(s.ParticipantOrder)
	pick := models.DraftPick{
		PickNumber:    s.CurrentPickNumber,
		Round:         RoundOf(s.CurrentPickNumber, n),
		RoundPick:     RoundPickOf(s.CurrentPickNumber, n),
		ParticipantID: participantID,
		PlayerID:      player.ID,
		Player:        player,
		IsAutoPick:    isAutoPick,
		RecordedAt:    now,
	}
	s.Picks = append(s.Picks, pick)
	s.CurrentPickNumber++

	if s.CurrentPickNumber == s.TotalPicks() {
		s.Status = models.DraftStatusCompleted
		s.TimerDeadline = nil
		completedAt := now
		s.CompletedAt = &completedAt
		return pick, true
	}
	return pick, false
}

// Reset returns the session to a fresh CREATED state with picks cleared.
// Valid from any status.
func Reset(s *models.DraftSession) {
	s.Picks = []models.DraftPick{}
	s.CurrentPickNumber = 0
	s.Status = models.DraftStatusCreated
	s.TimerDeadline = nil
	s.StartedAt = nil
	s.CompletedAt = nil
}

// Snapshot returns a deep copy safe to hand to subscribers.
func Snapshot(s *models.DraftSession) *models.DraftSession {
	cp := *s
	cp.ParticipantOrder = append([]uuid.UUID(nil), s.ParticipantOrder...)
	cp.Picks = append([]models.DraftPick(nil), s.Picks...)
	if s.TimerDeadline != nil {
		d := *s.TimerDeadline
		cp.TimerDeadline = &d
	}
	if s.StartedAt != nil {
		t := *s.StartedAt
		cp.StartedAt = &t
	}
	if s.CompletedAt != nil {
		t := *s.CompletedAt
		cp.CompletedAt = &t
	}
	return &cp
}
