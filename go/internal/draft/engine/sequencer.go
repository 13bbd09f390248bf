package engine

import (
	"github.com/google/uuid"

	"github.com/mcdev12/draftroom/go/internal/models"
)

// Turn sequencing is pure arithmetic over the fixed participant order.
// Advancing a draft is always currentPickNumber+1, including auto-picks.

// RoundOf returns the 1-indexed round a pick number falls in.
func RoundOf(pickNumber, numParticipants int) int {
	return pickNumber/numParticipants + 1
}

// RoundPickOf returns the 0-indexed slot of a pick number within its round.
func RoundPickOf(pickNumber, numParticipants int) int {
	return pickNumber % numParticipants
}

// ParticipantAt returns whose turn a pick number is under the given policy.
func ParticipantAt(order []uuid.UUID, policy models.OrderPolicy, pickNumber int) uuid.UUID {
	n := len(order)
	slot := pickNumber % n
	if policy == models.OrderPolicySnake && (pickNumber/n)%2 == 1 {
		slot = n - 1 - slot
	}
	return order[slot]
}

// CurrentTurn resolves the session's current participant, round and
// round-pick index from its pick number.
func CurrentTurn(s *models.DraftSession) (participant uuid.UUID, round, roundPick int) {
	n := len(s.ParticipantOrder)
	return ParticipantAt(s.ParticipantOrder, s.Settings.OrderPolicy, s.CurrentPickNumber),
		RoundOf(s.CurrentPickNumber, n),
		RoundPickOf(s.CurrentPickNumber, n)
}
